package postgres

import (
	"context"
	"errors"

	"github.com/avelasq/taskhub/internal/domain/task"
	"github.com/avelasq/taskhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TasksRepo scopes every read and write by owner. A task id belonging to
// someone else behaves exactly like a missing id.
type TasksRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewTasksRepo(pool *pgxpool.Pool, prom *observability.Prom) *TasksRepo {
	return &TasksRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *TasksRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *TasksRepo) Create(ctx context.Context, t task.Task) error {
	return r.observe("tasks.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO tasks (id, title, description, status, owner_id, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			t.ID, t.Title, t.Description, t.Status, t.OwnerID, t.CreatedAt, t.UpdatedAt,
		)
		return err
	})
}

func (r *TasksRepo) ListByOwner(ctx context.Context, ownerID string) (tasks []task.Task, err error) {
	var rows pgx.Rows

	err = r.observe("tasks.list_by_owner", func() error {
		rows, err = r.pool.Query(ctx,
			`SELECT id, title, description, status, owner_id, created_at, updated_at
			 FROM tasks
			 WHERE owner_id = $1
			 ORDER BY created_at DESC, id DESC`,
			ownerID,
		)
		return err
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	tasks = make([]task.Task, 0)

	for rows.Next() {
		var t task.Task

		if e := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt); e != nil {
			return nil, e
		}

		tasks = append(tasks, t)
	}

	if e := rows.Err(); e != nil {
		return nil, e
	}

	return tasks, nil
}

func (r *TasksRepo) GetByID(ctx context.Context, id, ownerID string) (task.Task, error) {
	var t task.Task

	err := r.observe("tasks.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, title, description, status, owner_id, created_at, updated_at
			 FROM tasks
			 WHERE id = $1 AND owner_id = $2`,
			id, ownerID,
		).Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}

		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) Update(ctx context.Context, id, ownerID string, req task.UpdateTaskRequest) (task.Task, error) {
	var t task.Task

	err := r.observe("tasks.update", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE tasks
			 SET title = $3,
			     description = $4,
			     status = $5,
			     updated_at = NOW()
			 WHERE id = $1 AND owner_id = $2
			 RETURNING id, title, description, status, owner_id, created_at, updated_at`,
			id, ownerID, req.Title, req.Description, req.Status,
		).Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}

		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) Delete(ctx context.Context, id, ownerID string) error {
	var tag pgconn.CommandTag

	err := r.observe("tasks.delete", func() error {
		var e error
		tag, e = r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`, id, ownerID)
		return e
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return task.ErrNotFound
	}

	return nil
}
