// Package session binds request-scoped identity to server-side state.
// A session exists only while its store record does: destroying the record
// makes the token dead immediately, whatever its signed expiry says.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/avelasq/taskhub/internal/auth"
	"github.com/avelasq/taskhub/internal/observability"
)

// ErrNoSession is the single resolution failure. Callers cannot tell a
// missing session from an expired or tampered one.
var ErrNoSession = errors.New("no session")

type Record struct {
	JTI       string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
}

type Store interface {
	Save(ctx context.Context, rec Record) error
	// Get returns ErrNoSession for absent or expired records.
	Get(ctx context.Context, jti string) (Record, error)
	// Delete is idempotent: deleting an absent record is not an error.
	Delete(ctx context.Context, jti string) error
	// DeleteAllForUser removes every session of the user except keepJTI
	// (pass "" to remove all of them).
	DeleteAllForUser(ctx context.Context, userID, keepJTI string) error
}

type Manager struct {
	tokens *auth.Manager
	store  Store
	prom   *observability.Prom
}

func NewManager(tokens *auth.Manager, store Store, prom *observability.Prom) *Manager {
	return &Manager{
		tokens: tokens,
		store:  store,
		prom:   prom,
	}
}

// Create mints a token for the identity and persists its record.
// Called only after a successful credential check.
func (m *Manager) Create(ctx context.Context, userID string) (string, error) {
	raw, jti, expiresAt, err := m.tokens.GenerateSessionToken(userID)

	if err != nil {
		return "", err
	}

	rec := Record{
		JTI:       jti,
		UserID:    userID,
		TokenHash: m.tokens.HashToken(raw),
		ExpiresAt: expiresAt,
	}

	if err := m.store.Save(ctx, rec); err != nil {
		return "", err
	}

	if m.prom != nil {
		m.prom.SessionsCreated.Inc()
	}

	return raw, nil
}

// Resolve maps a raw token to its live session record.
func (m *Manager) Resolve(ctx context.Context, raw string) (Record, error) {
	claims, err := m.tokens.VerifySessionToken(raw)

	if err != nil {
		return Record{}, ErrNoSession
	}

	rec, err := m.store.Get(ctx, claims.JTI)

	if err != nil {
		return Record{}, ErrNoSession
	}

	// prevents token substitution under a reused JTI
	if rec.TokenHash != m.tokens.HashToken(raw) {
		return Record{}, ErrNoSession
	}

	if rec.UserID != claims.UserID {
		return Record{}, ErrNoSession
	}

	return rec, nil
}

// Destroy invalidates the session carried by raw. Idempotent: an
// unparseable or already-absent token destroys nothing and returns nil.
func (m *Manager) Destroy(ctx context.Context, raw string) error {
	claims, err := m.tokens.VerifySessionToken(raw)

	if err != nil {
		return nil
	}

	if err := m.store.Delete(ctx, claims.JTI); err != nil {
		return err
	}

	if m.prom != nil {
		m.prom.SessionsDestroyed.Inc()
	}

	return nil
}

// DestroyAllForUser invalidates every session of the user except keepJTI.
func (m *Manager) DestroyAllForUser(ctx context.Context, userID, keepJTI string) error {
	return m.store.DeleteAllForUser(ctx, userID, keepJTI)
}
