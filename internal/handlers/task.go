package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/yukikurage/consultant-ledger/internal/dto"
	apierrors "github.com/yukikurage/consultant-ledger/internal/errors"
	"github.com/yukikurage/consultant-ledger/internal/middleware"
	"github.com/yukikurage/consultant-ledger/internal/models"
	"github.com/yukikurage/consultant-ledger/internal/services"
)

type TaskHandler struct {
	tasks    *services.TaskService
	subtasks *services.SubtaskService
	logs     *services.TimeLogService
}

func NewTaskHandler(tasks *services.TaskService, subtasks *services.SubtaskService, logs *services.TimeLogService) *TaskHandler {
	return &TaskHandler{
		tasks:    tasks,
		subtasks: subtasks,
		logs:     logs,
	}
}

// ListTasks returns every task with its rolled-up values
func (h *TaskHandler) ListTasks(c *gin.Context) {
	summaries, err := h.tasks.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToTaskDTOs(summaries),
	})
}

// GetTask returns a specific task by ID
// Task existence is checked by the LoadTask middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	result, err := h.tasks.Get(c.Request.Context(), task.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*result))
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	type CreateTaskRequest struct {
		ClientID       string            `json:"client_id" binding:"required"`
		ProjectName    string            `json:"project_name"`
		Title          string            `json:"title" binding:"required"`
		Category       string            `json:"category"`
		StartDate      string            `json:"start_date"`
		DueDate        *string           `json:"due_date"`
		Status         models.TaskStatus `json:"status"`
		EstimatedHours float64           `json:"estimated_hours"`
		HourlyRate     float64           `json:"hourly_rate"`
		IsBillable     bool              `json:"is_billable"`
		Notes          string            `json:"notes"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	due, err := parseOptionalDate("due_date", req.DueDate)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), services.CreateTaskInput{
		ClientID:       req.ClientID,
		ProjectName:    req.ProjectName,
		Title:          req.Title,
		Category:       req.Category,
		StartDate:      start,
		DueDate:        due,
		Status:         req.Status,
		EstimatedHours: req.EstimatedHours,
		HourlyRate:     req.HourlyRate,
		IsBillable:     req.IsBillable,
		Notes:          req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update. Only fields present in the body are
// changed; "due_date": null clears the due date.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	type UpdateTaskRequest struct {
		ClientID       *string            `json:"client_id"`
		ProjectName    *string            `json:"project_name"`
		Title          *string            `json:"title"`
		Category       *string            `json:"category"`
		StartDate      *string            `json:"start_date"`
		DueDate        *string            `json:"due_date"`
		Status         *models.TaskStatus `json:"status"`
		EstimatedHours *float64           `json:"estimated_hours"`
		HourlyRate     *float64           `json:"hourly_rate"`
		IsBillable     *bool              `json:"is_billable"`
		Notes          *string            `json:"notes"`
	}

	// Bind twice: typed fields, then the raw keys to tell null from absent
	var req UpdateTaskRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	var rawReq map[string]any
	if err := c.ShouldBindBodyWith(&rawReq, binding.JSON); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateTaskInput{
		ClientID:       req.ClientID,
		ProjectName:    req.ProjectName,
		Title:          req.Title,
		Category:       req.Category,
		Status:         req.Status,
		EstimatedHours: req.EstimatedHours,
		HourlyRate:     req.HourlyRate,
		IsBillable:     req.IsBillable,
		Notes:          req.Notes,
	}

	if req.StartDate != nil {
		start, err := parseDate("start_date", *req.StartDate)
		if err != nil || start.IsZero() {
			apierrors.BadRequest(c, "start_date must be a date in YYYY-MM-DD format")
			return
		}
		input.StartDate = &start
	}
	if value, present := rawReq["due_date"]; present {
		if value == nil {
			input.ClearDueDate = true
		} else {
			due, err := parseOptionalDate("due_date", req.DueDate)
			if err != nil {
				apierrors.BadRequest(c, err.Error())
				return
			}
			input.DueDate = due
			input.ClearDueDate = due == nil
		}
	}

	result, err := h.tasks.Update(c.Request.Context(), task.ID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*result))
}

// DeleteTask deletes a task with its subtasks and time logs
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	pruning, err := h.tasks.Delete(c.Request.Context(), task.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
		"pruned":  pruning,
	})
}

// SyncSubtasks replaces the subtasks of a task with the submitted list.
// Entries with a temporary id are created, stored ids are updated and
// stored subtasks missing from the list are deleted.
func (h *TaskHandler) SyncSubtasks(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	type SubtaskRequest struct {
		ID              string            `json:"id"`
		Title           string            `json:"title"`
		Priority        models.Priority   `json:"priority"`
		AssignedTo      string            `json:"assigned_to"`
		EstimatedHours  float64           `json:"estimated_hours"`
		PercentComplete int               `json:"percent_complete"`
		Status          models.TaskStatus `json:"status"`
	}
	type SyncSubtasksRequest struct {
		Subtasks []SubtaskRequest `json:"subtasks" binding:"required"`
	}

	var req SyncSubtasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	desired := make([]models.Subtask, len(req.Subtasks))
	for i, s := range req.Subtasks {
		desired[i] = models.Subtask{
			ID:              s.ID,
			ParentID:        task.ID,
			Title:           s.Title,
			Priority:        s.Priority,
			AssignedTo:      s.AssignedTo,
			EstimatedHours:  s.EstimatedHours,
			PercentComplete: s.PercentComplete,
			Status:          s.Status,
		}
	}

	ctx := c.Request.Context()
	stored, err := h.subtasks.Sync(ctx, task.ID, desired)

	var batchErr *services.PartialBatchError
	if err != nil && !errors.As(err, &batchErr) {
		respondServiceError(c, err)
		return
	}

	result := dto.SyncResultDTO{Subtasks: dto.ToSubtaskDTOs(stored)}
	if updated, err := h.tasks.Get(ctx, task.ID); err == nil {
		taskDTO := dto.ToTaskDTO(*updated)
		result.Task = &taskDTO
	}

	if batchErr != nil {
		for _, change := range batchErr.Succeeded {
			result.Succeeded = append(result.Succeeded, dto.ToChangeDTO(change, nil))
		}
		for _, failed := range batchErr.Failed {
			result.Failed = append(result.Failed, dto.ToChangeDTO(failed.Change, failed.Err))
		}
		apierrors.PartialFailure(c, batchErr.Error(), result)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SuggestSubtasks proposes subtasks for a task without storing them
func (h *TaskHandler) SuggestSubtasks(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	type SuggestRequest struct {
		Notes string `json:"notes"`
	}

	var req SuggestRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apierrors.BadRequest(c, "Invalid request body")
			return
		}
	}

	suggested, err := h.subtasks.Suggest(c.Request.Context(), task.ID, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subtasks": dto.ToSubtaskDTOs(suggested),
	})
}

// InvoiceSummary drafts an invoice description of the work logged on a task
func (h *TaskHandler) InvoiceSummary(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	text, err := h.logs.InvoiceSummary(c.Request.Context(), task.ID, c.Query("month"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summary": text,
	})
}
