package memory

import (
	"context"
	"sync"
	"time"

	"github.com/avelasq/taskhub/internal/domain/user"
)

// UsersRepo is the in-memory mirror of the postgres users repo, including
// its email-uniqueness behavior. Used by unit tests.
type UsersRepo struct {
	mu    sync.RWMutex
	items map[string]user.User

	tasks *TasksRepo // optional; enables the delete cascade
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[string]user.User),
	}
}

// WithTasks wires the cascade target, mirroring the FK in postgres.
func (r *UsersRepo) WithTasks(tasks *TasksRepo) *UsersRepo {
	r.tasks = tasks
	return r
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if u.Email == email {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) GetByID(_ context.Context, id string) (user.User, error) {
	r.mu.RLock()
	u, ok := r.items[id]
	r.mu.RUnlock()

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) Create(_ context.Context, u user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.Email == u.Email {
			return user.ErrEmailTaken
		}
	}

	r.items[u.ID] = u

	return nil
}

func (r *UsersRepo) Update(_ context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[u.ID]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	for id, existing := range r.items {
		if id != u.ID && existing.Email == u.Email {
			return user.User{}, user.ErrEmailTaken
		}
	}

	u.CreatedAt = current.CreatedAt
	u.UpdatedAt = time.Now().UTC()
	r.items[u.ID] = u

	return u, nil
}

func (r *UsersRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()

	_, ok := r.items[id]

	if !ok {
		r.mu.Unlock()
		return user.ErrNotFound
	}

	delete(r.items, id)
	r.mu.Unlock()

	if r.tasks != nil {
		r.tasks.deleteAllForOwner(id)
	}

	return nil
}
