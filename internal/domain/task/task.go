package task

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("task not found")

type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      bool      `json:"status"`
	OwnerID     string    `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required,max=250"`
	Description string `json:"description" binding:"omitempty,max=5000"`
}

// Full update payload. Status travels here too so a task can be
// toggled complete/incomplete with the same endpoint.
type UpdateTaskRequest struct {
	Title       string `json:"title" binding:"required,max=250"`
	Description string `json:"description" binding:"omitempty,max=5000"`
	Status      bool   `json:"status"`
}
