package services

import (
	"context"
	"errors"
	"log"
	"time"

	"simia-portal/internal/adapters/persistence/models"
	"simia-portal/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Task errors
var (
	// ErrTaskNotFound is returned both for a missing id and for a caller
	// who is not the task's creator, so update/delete never leak existence.
	ErrTaskNotFound  = errors.New("task not found")
	ErrInvalidStatus = errors.New("invalid task status")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo repositories.TaskRepository
}

// NewTaskService creates a new task service
func NewTaskService(taskRepo repositories.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

// CreateTaskInput represents task creation input. CreatedBy is deliberately
// absent: it is always taken from the authenticated caller.
type CreateTaskInput struct {
	Title        string
	Description  *string
	Status       string
	DueDate      *time.Time
	AssignedTo   *string
	PolicyNumber *string
}

// UpdateTaskInput represents a partial task update; nil fields are untouched
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Status       *string
	DueDate      *time.Time
	AssignedTo   *string
	PolicyNumber *string
}

// Create persists a new task with created_by forced to creatorID
func (s *TaskService) Create(ctx context.Context, input *CreateTaskInput, creatorID string) (*models.Task, error) {
	status := input.Status
	if status == "" {
		status = models.TaskStatusPending
	}
	if !models.ValidTaskStatus(status) {
		return nil, ErrInvalidStatus
	}

	task := &models.Task{
		Title:        input.Title,
		Description:  input.Description,
		Status:       status,
		DueDate:      input.DueDate,
		AssignedTo:   input.AssignedTo,
		CreatedBy:    creatorID,
		PolicyNumber: input.PolicyNumber,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}

	log.Printf("✅ Task created: %s (%s)", task.Title, task.ID)
	return task, nil
}

// List returns tasks matching the optional status/assignee filters
func (s *TaskService) List(ctx context.Context, filter models.TaskFilter) ([]*models.Task, error) {
	return s.taskRepo.List(ctx, filter)
}

// GetByID returns a single task
func (s *TaskService) GetByID(ctx context.Context, id string) (*models.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

// Update applies a partial update; only the creator's rows are reachable
func (s *TaskService) Update(ctx context.Context, id, callerID string, input *UpdateTaskInput) (*models.Task, error) {
	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Status != nil {
		if !models.ValidTaskStatus(*input.Status) {
			return nil, ErrInvalidStatus
		}
		updates["status"] = *input.Status
	}
	if input.DueDate != nil {
		updates["due_date"] = *input.DueDate
	}
	if input.AssignedTo != nil {
		updates["assigned_to"] = *input.AssignedTo
	}
	if input.PolicyNumber != nil {
		updates["policy_number"] = *input.PolicyNumber
	}
	updates["updated_at"] = time.Now()

	task, err := s.taskRepo.UpdateOwned(ctx, id, callerID, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

// Delete soft deletes a task; only the creator's rows are reachable
func (s *TaskService) Delete(ctx context.Context, id, callerID string) error {
	if err := s.taskRepo.DeleteOwned(ctx, id, callerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return err
	}
	log.Printf("✅ Task deleted: %s", id)
	return nil
}
