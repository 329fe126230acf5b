// Package auth mints and verifies session tokens. A token is a signed JWT
// whose JTI keys a server-side session record; the signature alone never
// grants access, the record must still exist (revocation by deletion).
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Claims struct {
	UserID    string `json:"sub"`
	TokenType string `json:"typ"`
	JTI       string `json:"jti"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// GenerateSessionToken returns the raw token, its JTI, and its expiry.
func (m *Manager) GenerateSessionToken(userID string) (raw string, jti string, expiresAt time.Time, err error) {
	now := time.Now().UTC()
	jti = uuid.NewString()
	expiresAt = now.Add(m.ttl)

	claims := Claims{
		UserID:    userID,
		TokenType: "session",
		JTI:       jti,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Subject:   userID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	raw, err = token.SignedString(m.secret)

	return
}

func (m *Manager) VerifySessionToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256
		_, ok := t.Method.(*jwt.SigningMethodHMAC)

		if !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)

	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	if claims.TokenType != "session" {
		return nil, errors.New("invalid token type")
	}

	if claims.JTI == "" {
		return nil, errors.New("missing jti")
	}

	return claims, nil
}

// HashToken is a deterministic HMAC of the raw token (server-side pepper =
// signing secret). The store keeps this hash, never the raw token.
func (m *Manager) HashToken(raw string) string {
	h := hmac.New(sha256.New, m.secret)
	h.Write([]byte(raw))
	return hex.EncodeToString(h.Sum(nil))
}
