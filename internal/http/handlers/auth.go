package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avelasq/taskhub/internal/accounts"
	"github.com/avelasq/taskhub/internal/config"
	"github.com/avelasq/taskhub/internal/domain/user"
	"github.com/avelasq/taskhub/internal/http/middlewares"
	"github.com/avelasq/taskhub/internal/observability"
)

type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (user.User, error)
}

type SessionWriter interface {
	Create(ctx context.Context, userID string) (string, error)
	Destroy(ctx context.Context, raw string) error
}

type AuthHandler struct {
	auth     Authenticator
	sessions SessionWriter
	prom     *observability.Prom
}

func NewAuthHandler(auth Authenticator, sessions SessionWriter, prom *observability.Prom) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		sessions: sessions,
		prom:     prom,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for the credential lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.auth.Authenticate(cctx, req.Email, req.Password)

	if err != nil {
		if errors.Is(err, accounts.ErrInvalidCredentials) {
			if h.prom != nil {
				h.prom.LoginFailures.Inc()
			}
			// one shape for every failure cause
			RespondUnauthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
			return
		}

		RespondInternal(ctx, "Could not log in")
		return
	}

	token, err := h.sessions.Create(cctx, u.ID)

	if err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  u,
	})
}

// Logout sits behind RequireAuth: an anonymous logout is a 401 before it
// ever gets here. Destroying the session is idempotent past that gate.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	raw, ok := middlewares.RawTokenFromContext(ctx)

	if !ok || raw == "" {
		RespondUnauthorized(ctx, "unauthorized", "Must be logged in to log out.")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	if err := h.sessions.Destroy(cctx, raw); err != nil {
		RespondInternal(ctx, "Could not destroy session")
		return
	}

	ctx.Status(http.StatusNoContent)
}
