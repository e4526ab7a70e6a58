package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/consultant-ledger/internal/models"
	"github.com/yukikurage/consultant-ledger/internal/repository"
	"github.com/yukikurage/consultant-ledger/internal/summary"
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo    repository.TaskRepository
	clientRepo  repository.ClientRepository
	subtaskRepo repository.SubtaskRepository
	logRepo     repository.TimeLogRepository
	now         func() time.Time
}

// NewTaskService creates a new TaskService
func NewTaskService(
	taskRepo repository.TaskRepository,
	clientRepo repository.ClientRepository,
	subtaskRepo repository.SubtaskRepository,
	logRepo repository.TimeLogRepository,
) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		clientRepo:  clientRepo,
		subtaskRepo: subtaskRepo,
		logRepo:     logRepo,
		now:         time.Now,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	ClientID       string
	ProjectName    string
	Title          string
	Category       string
	StartDate      time.Time
	DueDate        *time.Time
	Status         models.TaskStatus
	EstimatedHours float64
	HourlyRate     float64
	IsBillable     bool
	Notes          string
}

// UpdateTaskInput represents a partial update. Nil fields are left untouched.
type UpdateTaskInput struct {
	ClientID       *string
	ProjectName    *string
	Title          *string
	Category       *string
	StartDate      *time.Time
	DueDate        *time.Time
	ClearDueDate   bool
	Status         *models.TaskStatus
	EstimatedHours *float64
	HourlyRate     *float64
	IsBillable     *bool
	Notes          *string
}

// List returns every task rolled up from the current subtasks and logs.
func (s *TaskService) List(ctx context.Context) ([]summary.TaskSummary, error) {
	tasks, err := s.taskRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	subtasks, err := s.subtaskRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list subtasks: %w", err)
	}
	logs, _, err := s.logRepo.List(ctx, repository.TimeLogFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list time logs: %w", err)
	}
	return summary.Summarize(tasks, subtasks, logs), nil
}

// Get returns one task rolled up from its subtasks and logs.
func (s *TaskService) Get(ctx context.Context, id string) (*summary.TaskSummary, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, ErrTaskNotFound, "find task")
	}
	return s.summarize(ctx, *task)
}

// Create validates and stores a new task.
func (s *TaskService) Create(ctx context.Context, input CreateTaskInput) (*summary.TaskSummary, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, invalid("title", "is required")
	}
	if input.ClientID == "" {
		return nil, invalid("client_id", "is required")
	}
	if input.Status == "" {
		input.Status = models.TaskStatusNotStarted
	}
	if !input.Status.Valid() {
		return nil, invalid("status", fmt.Sprintf("unknown status %q", input.Status))
	}
	if err := validateHoursAndRate(input.EstimatedHours, input.HourlyRate); err != nil {
		return nil, err
	}
	if input.StartDate.IsZero() {
		now := s.now()
		input.StartDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	if err := validateSchedule(input.StartDate, input.DueDate); err != nil {
		return nil, err
	}

	if _, err := s.clientRepo.FindByID(ctx, input.ClientID); err != nil {
		return nil, storeErr(err, ErrClientNotFound, "find client")
	}

	task := &models.Task{
		ClientID:       input.ClientID,
		ProjectName:    strings.TrimSpace(input.ProjectName),
		Title:          title,
		Category:       input.Category,
		StartDate:      input.StartDate,
		DueDate:        input.DueDate,
		Status:         input.Status,
		EstimatedHours: input.EstimatedHours,
		HourlyRate:     input.HourlyRate,
		IsBillable:     input.IsBillable,
		Notes:          input.Notes,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	result := summary.SummarizeTask(*task, nil, nil)
	return &result, nil
}

// Update applies a partial update and returns the task recomputed from
// confirmed state.
func (s *TaskService) Update(ctx context.Context, id string, input UpdateTaskInput) (*summary.TaskSummary, error) {
	current, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, ErrTaskNotFound, "find task")
	}

	fields := make(map[string]any)
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, invalid("title", "cannot be empty")
		}
		fields["title"] = title
	}
	if input.ClientID != nil && *input.ClientID != current.ClientID {
		if _, err := s.clientRepo.FindByID(ctx, *input.ClientID); err != nil {
			return nil, storeErr(err, ErrClientNotFound, "find client")
		}
		fields["client_id"] = *input.ClientID
	}
	if input.ProjectName != nil {
		fields["project_name"] = strings.TrimSpace(*input.ProjectName)
	}
	if input.Category != nil {
		fields["category"] = *input.Category
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, invalid("status", fmt.Sprintf("unknown status %q", *input.Status))
		}
		fields["status"] = *input.Status
	}
	if input.Notes != nil {
		fields["notes"] = *input.Notes
	}
	if input.IsBillable != nil {
		fields["is_billable"] = *input.IsBillable
	}

	estimate, rate := current.EstimatedHours, current.HourlyRate
	if input.EstimatedHours != nil {
		estimate = *input.EstimatedHours
		fields["estimated_hours"] = estimate
	}
	if input.HourlyRate != nil {
		rate = *input.HourlyRate
		fields["hourly_rate"] = rate
	}
	if err := validateHoursAndRate(estimate, rate); err != nil {
		return nil, err
	}

	start, due := current.StartDate, current.DueDate
	if input.StartDate != nil {
		start = *input.StartDate
		fields["start_date"] = start
	}
	if input.ClearDueDate {
		due = nil
		fields["due_date"] = nil
	} else if input.DueDate != nil {
		due = input.DueDate
		fields["due_date"] = *due
	}
	if err := validateSchedule(start, due); err != nil {
		return nil, err
	}

	task, err := s.taskRepo.Update(ctx, id, fields)
	if err != nil {
		return nil, storeErr(err, ErrTaskNotFound, "update task")
	}
	return s.summarize(ctx, *task)
}

// Delete removes a task with its subtasks and logs. The returned Pruning
// lists every removed id.
func (s *TaskService) Delete(ctx context.Context, id string) (Pruning, error) {
	cascade, err := s.taskRepo.Delete(ctx, id)
	if err != nil {
		return Pruning{}, storeErr(err, ErrTaskNotFound, "delete task")
	}
	return pruningFrom(cascade), nil
}

func (s *TaskService) summarize(ctx context.Context, task models.Task) (*summary.TaskSummary, error) {
	subtasks, err := s.subtaskRepo.ListByTask(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subtasks: %w", err)
	}
	logs, _, err := s.logRepo.List(ctx, repository.TimeLogFilter{TaskID: task.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to list time logs: %w", err)
	}
	result := summary.SummarizeTask(task, subtasks, logs)
	return &result, nil
}

func validateHoursAndRate(estimate, rate float64) error {
	if estimate < 0 {
		return invalid("estimated_hours", "must not be negative")
	}
	if rate < 0 {
		return invalid("hourly_rate", "must not be negative")
	}
	return nil
}

func validateSchedule(start time.Time, due *time.Time) error {
	if due != nil && !start.IsZero() && due.Before(start) {
		return invalid("due_date", "must not be before start_date")
	}
	return nil
}
