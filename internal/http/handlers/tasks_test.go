package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/avelasq/taskhub/internal/domain/task"
	"github.com/avelasq/taskhub/internal/http/handlers"
	"github.com/avelasq/taskhub/internal/http/middlewares"
)

// Keep Gin quiet during the tests.

func init() {
	gin.SetMode(gin.TestMode)
}

func newUUID() string {
	return uuid.NewString()
}

// Fake repository implementation of the handlers.TaskStore interface.

type fakeTasksRepo struct {
	createFn func(ctx context.Context, t task.Task) error
	listFn   func(ctx context.Context, ownerID string) ([]task.Task, error)
	getFn    func(ctx context.Context, id, ownerID string) (task.Task, error)
	updateFn func(ctx context.Context, id, ownerID string, req task.UpdateTaskRequest) (task.Task, error)
	deleteFn func(ctx context.Context, id, ownerID string) error
}

func (f *fakeTasksRepo) Create(ctx context.Context, t task.Task) error {
	if f.createFn != nil {
		return f.createFn(ctx, t)
	}

	return nil
}

func (f *fakeTasksRepo) ListByOwner(ctx context.Context, ownerID string) ([]task.Task, error) {
	if f.listFn != nil {
		return f.listFn(ctx, ownerID)
	}

	return nil, nil
}

func (f *fakeTasksRepo) GetByID(ctx context.Context, id, ownerID string) (task.Task, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id, ownerID)
	}

	return task.Task{}, nil
}

func (f *fakeTasksRepo) Update(ctx context.Context, id, ownerID string, req task.UpdateTaskRequest) (task.Task, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, ownerID, req)
	}

	return task.Task{}, nil
}

func (f *fakeTasksRepo) Delete(ctx context.Context, id, ownerID string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id, ownerID)
	}

	return nil
}

// setupRouter mounts one handler per test. The asUser middleware stands in
// for the session resolver and plants the identity the way RequireAuth does.

func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h)

	return r
}

func asUser(userID, jti string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middlewares.CtxUserIDKey, userID)
		c.Set(middlewares.CtxSessionKey, jti)

		c.Next()
	}
}

func setupAuthedRouter(method, path, userID string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, asUser(userID, newUUID()), h)

	return r
}

func TestCreateTaskHandler(t *testing.T) {
	ownerID := newUUID()

	tests := []struct {
		name           string
		body           string
		repoSetUp      func(*fakeTasksRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{"title": "Buy milk", "description": "2 percent"}`,
			repoSetUp: func(f *fakeTasksRepo) {
				f.createFn = func(ctx context.Context, tk task.Task) error {
					if tk.OwnerID != ownerID {
						return errors.New("owner not taken from session")
					}
					if tk.ID == "" {
						return errors.New("id not assigned")
					}
					return nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name: "validation_error_empty_title",
			body: `{"title": ""}`,
			repoSetUp: func(f *fakeTasksRepo) {
				f.createFn = func(ctx context.Context, tk task.Task) error {
					return errors.New("repo should not be called")
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "validation_error_title_too_long",
			body: `{"title": "` + string(bytes.Repeat([]byte("a"), 251)) + `"}`,
			repoSetUp: func(f *fakeTasksRepo) {
				f.createFn = func(ctx context.Context, tk task.Task) error {
					return errors.New("repo should not be called")
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			body: `{"title": "Buy milk"}`,
			repoSetUp: func(f *fakeTasksRepo) {
				f.createFn = func(ctx context.Context, tk task.Task) error {
					return errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeTasksRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(repo)
			}

			h := handlers.NewTasksHandler(repo)

			r := setupAuthedRouter(http.MethodPost, "/tasks", ownerID, h.CreateTask)

			req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestListTasksHandler(t *testing.T) {
	now := time.Now().UTC()
	ownerID := newUUID()

	repo := &fakeTasksRepo{
		listFn: func(ctx context.Context, gotOwner string) ([]task.Task, error) {
			if gotOwner != ownerID {
				t.Fatalf("listed with owner %q, want %q", gotOwner, ownerID)
			}

			return []task.Task{
				{ID: newUUID(), Title: "Task B", OwnerID: ownerID, CreatedAt: now, UpdatedAt: now},
				{ID: newUUID(), Title: "Task A", OwnerID: ownerID, CreatedAt: now.Add(-time.Minute), UpdatedAt: now},
			}, nil
		},
	}

	h := handlers.NewTasksHandler(repo)
	r := setupAuthedRouter(http.MethodGet, "/tasks", ownerID, h.ListTasks)

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp struct {
		Items []task.Task `json:"items"`
		Count int         `json:"count"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Count != 2 || len(resp.Items) != 2 {
		t.Fatalf("got count=%d items=%d, want 2 of each", resp.Count, len(resp.Items))
	}
}

func TestGetTaskByIDHandler(t *testing.T) {
	ownerID := newUUID()
	taskID := newUUID()

	tests := []struct {
		name           string
		repoSetUp      func(*fakeTasksRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			repoSetUp: func(f *fakeTasksRepo) {
				f.getFn = func(ctx context.Context, id, gotOwner string) (task.Task, error) {
					return task.Task{ID: id, Title: "Mine", OwnerID: gotOwner}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			// someone else's task resolves exactly like a missing one
			name: "not_found",
			repoSetUp: func(f *fakeTasksRepo) {
				f.getFn = func(ctx context.Context, id, gotOwner string) (task.Task, error) {
					return task.Task{}, task.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "repo_error",
			repoSetUp: func(f *fakeTasksRepo) {
				f.getFn = func(ctx context.Context, id, gotOwner string) (task.Task, error) {
					return task.Task{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeTasksRepo{}
			tt.repoSetUp(repo)

			h := handlers.NewTasksHandler(repo)
			r := setupAuthedRouter(http.MethodGet, "/tasks/:id", ownerID, h.GetTaskByID)

			req := httptest.NewRequest(http.MethodGet, "/tasks/"+taskID, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestUpdateTaskHandler(t *testing.T) {
	ownerID := newUUID()
	taskID := newUUID()

	tests := []struct {
		name           string
		body           string
		repoSetUp      func(*fakeTasksRepo)
		wantStatusCode int
	}{
		{
			name: "success_toggle_status",
			body: `{"title": "Buy milk", "status": true}`,
			repoSetUp: func(f *fakeTasksRepo) {
				f.updateFn = func(ctx context.Context, id, gotOwner string, req task.UpdateTaskRequest) (task.Task, error) {
					return task.Task{ID: id, Title: req.Title, Status: req.Status, OwnerID: gotOwner}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "validation_error",
			body: `{"title": ""}`,
			repoSetUp: func(f *fakeTasksRepo) {
				f.updateFn = func(ctx context.Context, id, gotOwner string, req task.UpdateTaskRequest) (task.Task, error) {
					return task.Task{}, errors.New("repo should not be called")
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "not_found",
			body: `{"title": "Buy milk"}`,
			repoSetUp: func(f *fakeTasksRepo) {
				f.updateFn = func(ctx context.Context, id, gotOwner string, req task.UpdateTaskRequest) (task.Task, error) {
					return task.Task{}, task.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeTasksRepo{}
			tt.repoSetUp(repo)

			h := handlers.NewTasksHandler(repo)
			r := setupAuthedRouter(http.MethodPut, "/tasks/:id", ownerID, h.UpdateTask)

			req := httptest.NewRequest(http.MethodPut, "/tasks/"+taskID, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestDeleteTaskHandler(t *testing.T) {
	ownerID := newUUID()
	taskID := newUUID()

	tests := []struct {
		name           string
		repoSetUp      func(*fakeTasksRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			repoSetUp: func(f *fakeTasksRepo) {
				f.deleteFn = func(ctx context.Context, id, gotOwner string) error {
					return nil
				}
			},
			wantStatusCode: http.StatusNoContent,
		},
		{
			name: "not_found",
			repoSetUp: func(f *fakeTasksRepo) {
				f.deleteFn = func(ctx context.Context, id, gotOwner string) error {
					return task.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeTasksRepo{}
			tt.repoSetUp(repo)

			h := handlers.NewTasksHandler(repo)
			r := setupAuthedRouter(http.MethodDelete, "/tasks/:id", ownerID, h.DeleteTask)

			req := httptest.NewRequest(http.MethodDelete, "/tasks/"+taskID, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}
