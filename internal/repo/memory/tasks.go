package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/avelasq/taskhub/internal/domain/task"
)

type TasksRepo struct {
	mu    sync.RWMutex
	items map[string]task.Task
}

func NewTasksRepo() *TasksRepo {
	return &TasksRepo{
		items: make(map[string]task.Task),
	}
}

func (r *TasksRepo) Create(_ context.Context, t task.Task) error {
	r.mu.Lock()
	r.items[t.ID] = t
	r.mu.Unlock()

	return nil
}

func (r *TasksRepo) ListByOwner(_ context.Context, ownerID string) ([]task.Task, error) {
	r.mu.RLock()

	out := make([]task.Task, 0)

	for _, t := range r.items {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}

	r.mu.RUnlock()

	// newest first, matching the postgres ordering
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (r *TasksRepo) GetByID(_ context.Context, id, ownerID string) (task.Task, error) {
	r.mu.RLock()
	t, ok := r.items[id]
	r.mu.RUnlock()

	if !ok || t.OwnerID != ownerID {
		return task.Task{}, task.ErrNotFound
	}

	return t, nil
}

func (r *TasksRepo) Update(_ context.Context, id, ownerID string, req task.UpdateTaskRequest) (task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]

	if !ok || t.OwnerID != ownerID {
		return task.Task{}, task.ErrNotFound
	}

	t.Title = req.Title
	t.Description = req.Description
	t.Status = req.Status
	t.UpdatedAt = time.Now().UTC()
	r.items[id] = t

	return t, nil
}

func (r *TasksRepo) Delete(_ context.Context, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]

	if !ok || t.OwnerID != ownerID {
		return task.ErrNotFound
	}

	delete(r.items, id)

	return nil
}

func (r *TasksRepo) deleteAllForOwner(ownerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, t := range r.items {
		if t.OwnerID == ownerID {
			delete(r.items, id)
		}
	}
}
