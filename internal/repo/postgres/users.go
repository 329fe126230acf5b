package postgres

import (
	"context"
	"errors"

	"github.com/avelasq/taskhub/internal/domain/user"
	"github.com/avelasq/taskhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_email", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, email, password_hash, first_name, last_name, created_at, updated_at
			 FROM users
			 WHERE email = $1`,
			email,
		).Scan(
			&u.ID,
			&u.Email,
			&u.PasswordHash,
			&u.FirstName,
			&u.LastName,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_id", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, email, password_hash, first_name, last_name, created_at, updated_at
			 FROM users
			 WHERE id = $1`,
			id,
		).Scan(
			&u.ID,
			&u.Email,
			&u.PasswordHash,
			&u.FirstName,
			&u.LastName,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

// Create inserts a fully built user row. The unique index on email closes
// the register/register race; the violation surfaces as ErrEmailTaken.
func (r *UsersRepo) Create(ctx context.Context, u user.User) error {
	err := r.observe("users.create", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO users (id, email, password_hash, first_name, last_name, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.CreatedAt, u.UpdatedAt,
		)
		return e
	})

	if err != nil {
		if isUniqueViolation(err) {
			return user.ErrEmailTaken
		}
		return err
	}

	return nil
}

func (r *UsersRepo) Update(ctx context.Context, u user.User) (user.User, error) {
	var out user.User

	err := r.observe("users.update", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE users
			 SET email = $2,
			     password_hash = $3,
			     first_name = $4,
			     last_name = $5,
			     updated_at = NOW()
			 WHERE id = $1
			 RETURNING id, email, password_hash, first_name, last_name, created_at, updated_at`,
			u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName,
		).Scan(
			&out.ID,
			&out.Email,
			&out.PasswordHash,
			&out.FirstName,
			&out.LastName,
			&out.CreatedAt,
			&out.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}

		return user.User{}, err
	}

	return out, nil
}

// Delete removes the user and all their tasks in one transaction. The FK
// cascade would handle the tasks on its own; the explicit delete keeps the
// invariant visible and observable per table.
func (r *UsersRepo) Delete(ctx context.Context, id string) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = r.observe("users.delete.tasks", func() error {
		_, e := tx.Exec(ctx, `DELETE FROM tasks WHERE owner_id = $1`, id)
		return e
	})

	if err != nil {
		return err
	}

	var tag pgconn.CommandTag

	err = r.observe("users.delete", func() error {
		var e error
		tag, e = tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		return e
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}

	return tx.Commit(ctx)
}
