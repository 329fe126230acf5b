package task

import (
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(ownerID string, req CreateTaskRequest) Task {
	now := time.Now().UTC()

	return Task{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Status:      false,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
