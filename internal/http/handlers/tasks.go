package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avelasq/taskhub/internal/config"
	"github.com/avelasq/taskhub/internal/domain/task"
	"github.com/avelasq/taskhub/internal/http/middlewares"
)

type TaskStore interface {
	Create(ctx context.Context, t task.Task) error
	ListByOwner(ctx context.Context, ownerID string) ([]task.Task, error)
	GetByID(ctx context.Context, id, ownerID string) (task.Task, error)
	Update(ctx context.Context, id, ownerID string, req task.UpdateTaskRequest) (task.Task, error)
	Delete(ctx context.Context, id, ownerID string) error
}

// TasksHandler serves the per-user task list. Every operation is scoped by
// the session identity; a task someone else owns is indistinguishable from
// a task that does not exist.
type TasksHandler struct {
	repo TaskStore
}

func NewTasksHandler(repo TaskStore) *TasksHandler {
	return &TasksHandler{repo: repo}
}

func (h *TasksHandler) CreateTask(ctx *gin.Context) {
	var req task.CreateTaskRequest

	if !BindJSON(ctx, &req) {
		return
	}

	ownerID, _ := middlewares.UserIDFromContext(ctx)

	// owner comes from the session, never from the payload
	t := task.NewFromCreateRequest(ownerID, req)

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	if err := h.repo.Create(cctx, t); err != nil {
		RespondInternal(ctx, "Could not create task")
		return
	}

	ctx.JSON(http.StatusCreated, t)
}

func (h *TasksHandler) ListTasks(ctx *gin.Context) {
	ownerID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	tasks, err := h.repo.ListByOwner(cctx, ownerID)

	if err != nil {
		RespondInternal(ctx, "Could not list tasks")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": tasks,
		"count": len(tasks),
	})
}

func (h *TasksHandler) GetTaskByID(ctx *gin.Context) {
	ownerID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	t, err := h.repo.GetByID(cctx, ctx.Param("id"), ownerID)

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			RespondNotFound(ctx, "Task not found")
			return
		}

		RespondInternal(ctx, "Could not fetch task")
		return
	}

	ctx.JSON(http.StatusOK, t)
}

func (h *TasksHandler) UpdateTask(ctx *gin.Context) {
	var req task.UpdateTaskRequest

	if !BindJSON(ctx, &req) {
		return
	}

	ownerID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	t, err := h.repo.Update(cctx, ctx.Param("id"), ownerID, req)

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			RespondNotFound(ctx, "Task not found")
			return
		}

		RespondInternal(ctx, "Could not update task")
		return
	}

	ctx.JSON(http.StatusOK, t)
}

func (h *TasksHandler) DeleteTask(ctx *gin.Context) {
	ownerID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, ctx.Param("id"), ownerID)

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			RespondNotFound(ctx, "Task not found")
			return
		}

		RespondInternal(ctx, "Could not delete task")
		return
	}

	ctx.Status(http.StatusNoContent)
}
