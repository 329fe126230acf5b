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
)

type AccountsService interface {
	Register(ctx context.Context, req accounts.RegisterRequest) (user.User, error)
	Get(ctx context.Context, id string) (user.User, error)
	Update(ctx context.Context, actor accounts.Identity, targetID string, req accounts.UpdateRequest) (user.User, error)
	Delete(ctx context.Context, actor accounts.Identity, targetID string) error
}

type AccountsHandler struct {
	svc AccountsService
}

func NewAccountsHandler(svc AccountsService) *AccountsHandler {
	return &AccountsHandler{svc: svc}
}

type SignUpRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password1 string `json:"password1" binding:"required,min=8"`
	Password2 string `json:"password2" binding:"required"`
	FirstName string `json:"firstName" binding:"omitempty,max=150"`
	LastName  string `json:"lastName" binding:"omitempty,max=150"`
}

type UpdateAccountRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password1 string `json:"password1" binding:"omitempty,min=8"`
	Password2 string `json:"password2" binding:"omitempty"`
	FirstName string `json:"firstName" binding:"omitempty,max=150"`
	LastName  string `json:"lastName" binding:"omitempty,max=150"`
}

// actorFrom builds the explicit identity handed to the service layer.
func actorFrom(ctx *gin.Context) accounts.Identity {
	userID, _ := middlewares.UserIDFromContext(ctx)
	jti, _ := middlewares.SessionJTIFromContext(ctx)

	return accounts.Identity{
		UserID:     userID,
		SessionJTI: jti,
	}
}

// SignUp registers a new account. It deliberately creates no session: the
// new user signs in through the login endpoint.
func (h *AccountsHandler) SignUp(ctx *gin.Context) {
	var req SignUpRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.svc.Register(cctx, accounts.RegisterRequest{
		Email:     req.Email,
		Password1: req.Password1,
		Password2: req.Password2,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})

	if err != nil {
		h.respondAccountError(ctx, err, "Could not create account")
		return
	}

	ctx.JSON(http.StatusCreated, u)
}

func (h *AccountsHandler) Me(ctx *gin.Context) {
	actor := actorFrom(ctx)

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.svc.Get(cctx, actor.UserID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "Account not found")
			return
		}

		RespondInternal(ctx, "Could not load account")
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *AccountsHandler) Update(ctx *gin.Context) {
	var req UpdateAccountRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.svc.Update(cctx, actorFrom(ctx), ctx.Param("id"), accounts.UpdateRequest{
		Email:     req.Email,
		Password1: req.Password1,
		Password2: req.Password2,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})

	if err != nil {
		h.respondAccountError(ctx, err, "Could not update account")
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *AccountsHandler) Delete(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.svc.Delete(cctx, actorFrom(ctx), ctx.Param("id"))

	if err != nil {
		h.respondAccountError(ctx, err, "Could not delete account")
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *AccountsHandler) respondAccountError(ctx *gin.Context, err error, internalMsg string) {
	switch {
	case errors.Is(err, accounts.ErrForbidden):
		RespondForbidden(ctx)
	case errors.Is(err, accounts.ErrPasswordMismatch):
		RespondError(ctx, http.StatusBadRequest, "password_mismatch", "Password confirmation does not match.", nil)
	case errors.Is(err, user.ErrEmailTaken):
		RespondConflict(ctx, "email_taken", "Email is already in use.")
	case errors.Is(err, user.ErrNotFound):
		RespondNotFound(ctx, "Account not found")
	default:
		RespondInternal(ctx, internalMsg)
	}
}
