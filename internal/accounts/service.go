// Package accounts holds the identity core: credential verification,
// account lifecycle, and the self-only ownership rule. Handlers stay thin;
// every security-relevant invariant is re-checked here regardless of what
// the form layer validated.
package accounts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/avelasq/taskhub/internal/domain/user"
	"github.com/avelasq/taskhub/internal/security"
)

var (
	// ErrInvalidCredentials is the single login failure. Unknown email and
	// wrong password are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordMismatch   = errors.New("password confirmation does not match")
	ErrForbidden          = errors.New("forbidden")
)

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	Create(ctx context.Context, u user.User) error
	Update(ctx context.Context, u user.User) (user.User, error)
	Delete(ctx context.Context, id string) error
}

// SessionRevoker is the slice of the session manager the account lifecycle
// needs: invalidating sessions on delete and password change.
type SessionRevoker interface {
	DestroyAllForUser(ctx context.Context, userID, keepJTI string) error
}

// Identity is the resolved caller of a request: who they are and which
// session said so. Threaded explicitly, never read from ambient state.
type Identity struct {
	UserID     string
	SessionJTI string
}

type Service struct {
	users    UserStore
	sessions SessionRevoker
}

func NewService(users UserStore, sessions SessionRevoker) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
	}
}

type RegisterRequest struct {
	Email     string
	Password1 string
	Password2 string
	FirstName string
	LastName  string
}

type UpdateRequest struct {
	Email     string
	Password1 string
	Password2 string
	FirstName string
	LastName  string
}

// Authenticate verifies email/password. It creates no session; that is the
// caller's job.
func (s *Service) Authenticate(ctx context.Context, email, password string) (user.User, error) {
	if password == "" {
		return user.User{}, ErrInvalidCredentials
	}

	u, err := s.users.GetByEmail(ctx, user.NormalizeEmail(email))

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrInvalidCredentials
		}

		return user.User{}, err
	}

	if err := security.CheckPassword(u.PasswordHash, password); err != nil {
		return user.User{}, ErrInvalidCredentials
	}

	return u, nil
}

// Register creates a new account. Validation order: password confirmation
// first, then email availability. The store's unique constraint is the
// real guarantee against the concurrent-register race; the lookup here
// only buys a friendlier error.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (user.User, error) {
	if req.Password1 == "" || req.Password1 != req.Password2 {
		return user.User{}, ErrPasswordMismatch
	}

	email := user.NormalizeEmail(req.Email)

	_, err := s.users.GetByEmail(ctx, email)

	if err == nil {
		return user.User{}, user.ErrEmailTaken
	}

	if !errors.Is(err, user.ErrNotFound) {
		return user.User{}, err
	}

	hash, err := security.HashPassword(req.Password1)

	if err != nil {
		return user.User{}, err
	}

	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, u); err != nil {
		return user.User{}, err
	}

	// no auto-login: the new user signs in through the login endpoint
	return u, nil
}

// Get returns the account profile.
func (s *Service) Get(ctx context.Context, id string) (user.User, error) {
	return s.users.GetByID(ctx, id)
}

// Update is the self-service account edit. The ownership check runs before
// any data is touched. Changing the password invalidates every other
// session of the account; the one performing the change stays valid.
func (s *Service) Update(ctx context.Context, actor Identity, targetID string, req UpdateRequest) (user.User, error) {
	if !AuthorizeSelf(actor.UserID, targetID) {
		return user.User{}, ErrForbidden
	}

	current, err := s.users.GetByID(ctx, targetID)

	if err != nil {
		return user.User{}, err
	}

	passwordChanged := false

	if req.Password1 != "" {
		if req.Password1 != req.Password2 {
			return user.User{}, ErrPasswordMismatch
		}

		hash, err := security.HashPassword(req.Password1)

		if err != nil {
			return user.User{}, err
		}

		current.PasswordHash = hash
		passwordChanged = true
	}

	email := user.NormalizeEmail(req.Email)

	if email != current.Email {
		if _, err := s.users.GetByEmail(ctx, email); err == nil {
			return user.User{}, user.ErrEmailTaken
		} else if !errors.Is(err, user.ErrNotFound) {
			return user.User{}, err
		}
	}

	current.Email = email
	current.FirstName = req.FirstName
	current.LastName = req.LastName

	updated, err := s.users.Update(ctx, current)

	if err != nil {
		return user.User{}, err
	}

	if passwordChanged {
		if err := s.sessions.DestroyAllForUser(ctx, updated.ID, actor.SessionJTI); err != nil {
			return user.User{}, err
		}
	}

	return updated, nil
}

// Delete removes the account, cascades to its tasks, and invalidates every
// session bound to it, the current one included.
func (s *Service) Delete(ctx context.Context, actor Identity, targetID string) error {
	if !AuthorizeSelf(actor.UserID, targetID) {
		return ErrForbidden
	}

	if err := s.users.Delete(ctx, targetID); err != nil {
		return err
	}

	return s.sessions.DestroyAllForUser(ctx, targetID, "")
}
