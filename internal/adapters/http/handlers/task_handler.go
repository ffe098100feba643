package handlers

import (
	"errors"
	"time"

	"simia-portal/internal/adapters/persistence/models"
	"simia-portal/internal/core/services"
	"simia-portal/internal/pkg/response"
	"simia-portal/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// TaskHandler handles task CRUD endpoints
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// CreateTaskRequest represents task creation request body.
// CreatedBy is accepted on the wire but ignored: the server always uses the
// authenticated caller. Amount is accepted and discarded because the tasks
// table has no such column (the client still sends it).
type CreateTaskRequest struct {
	Title        string   `json:"title" validate:"required,max=255"`
	Description  *string  `json:"description"`
	Status       string   `json:"status" validate:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED CANCELLED"`
	DueDate      *string  `json:"dueDate"`
	AssignedTo   *string  `json:"assignedTo"`
	CreatedBy    string   `json:"createdBy"`
	PolicyNumber *string  `json:"policyNumber" validate:"omitempty,max=50"`
	Amount       *float64 `json:"amount"`
}

// UpdateTaskRequest represents a partial task update; nil fields are untouched
type UpdateTaskRequest struct {
	Title        *string `json:"title" validate:"omitempty,max=255"`
	Description  *string `json:"description"`
	Status       *string `json:"status" validate:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED CANCELLED"`
	DueDate      *string `json:"dueDate"`
	AssignedTo   *string `json:"assignedTo"`
	PolicyNumber *string `json:"policyNumber" validate:"omitempty,max=50"`
}

// parseDueDate accepts RFC3339 timestamps or bare dates
func parseDueDate(s string) (*time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns tasks, optionally filtered by status and assignee
// @Summary List tasks
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param assignedTo query string false "Filter by assignee id"
// @Success 200 {object} response.Response
// @Router /tasks [get]
func (h *TaskHandler) List(c *fiber.Ctx) error {
	filter := models.TaskFilter{
		Status:     c.Query("status"),
		AssignedTo: c.Query("assignedTo"),
	}

	tasks, err := h.taskService.List(c.Context(), filter)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch tasks")
	}

	return response.Success(c, "Tasks retrieved successfully", tasks)
}

// GetByID returns a single task
// @Summary Get task
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task id"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *fiber.Ctx) error {
	task, err := h.taskService.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			return response.NotFound(c, "Task not found")
		}
		return response.InternalServerError(c, "Failed to fetch task")
	}

	return response.Success(c, "Task retrieved successfully", task)
}

// Create creates a new task for the authenticated caller
// @Summary Create task
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateTaskRequest true "Task data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /tasks [post]
func (h *TaskHandler) Create(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if fieldErrors := validation.Struct(&req); fieldErrors != nil {
		return response.ValidationError(c, fieldErrors)
	}

	var dueDate *time.Time
	if req.DueDate != nil && *req.DueDate != "" {
		parsed, err := parseDueDate(*req.DueDate)
		if err != nil {
			return response.BadRequest(c, "Invalid dueDate format")
		}
		dueDate = parsed
	}

	input := &services.CreateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		DueDate:      dueDate,
		AssignedTo:   req.AssignedTo,
		PolicyNumber: req.PolicyNumber,
	}

	// createdBy comes from the token, never from the body
	task, err := h.taskService.Create(c.Context(), input, userID)
	if err != nil {
		if errors.Is(err, services.ErrInvalidStatus) {
			return response.BadRequest(c, "Invalid task status")
		}
		return response.InternalServerError(c, "Failed to create task")
	}

	return response.Created(c, "Task created successfully", task)
}

// Update applies a partial update; creator-only, otherwise 404
// @Summary Update task
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task id"
// @Param body body UpdateTaskRequest true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /tasks/{id} [put]
func (h *TaskHandler) Update(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if fieldErrors := validation.Struct(&req); fieldErrors != nil {
		return response.ValidationError(c, fieldErrors)
	}

	input := &services.UpdateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		AssignedTo:   req.AssignedTo,
		PolicyNumber: req.PolicyNumber,
	}
	if req.DueDate != nil && *req.DueDate != "" {
		parsed, err := parseDueDate(*req.DueDate)
		if err != nil {
			return response.BadRequest(c, "Invalid dueDate format")
		}
		input.DueDate = parsed
	}

	task, err := h.taskService.Update(c.Context(), c.Params("id"), userID, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTaskNotFound):
			// Not-found and not-the-creator are deliberately identical
			return response.NotFound(c, "Task not found or unauthorized")
		case errors.Is(err, services.ErrInvalidStatus):
			return response.BadRequest(c, "Invalid task status")
		default:
			return response.InternalServerError(c, "Failed to update task")
		}
	}

	return response.Success(c, "Task updated successfully", task)
}

// Delete soft deletes a task; creator-only, otherwise 404
// @Summary Delete task
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task id"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	if err := h.taskService.Delete(c.Context(), c.Params("id"), userID); err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			return response.NotFound(c, "Task not found or unauthorized")
		}
		return response.InternalServerError(c, "Failed to delete task")
	}

	return response.Success(c, "Task deleted successfully", nil)
}
