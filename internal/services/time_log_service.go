package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/consultant-ledger/internal/constants"
	"github.com/yukikurage/consultant-ledger/internal/logging"
	"github.com/yukikurage/consultant-ledger/internal/models"
	"github.com/yukikurage/consultant-ledger/internal/repository"
	"github.com/yukikurage/consultant-ledger/internal/summary"
)

// TimeLogService handles time logging and the reports built from logs
type TimeLogService struct {
	logRepo     repository.TimeLogRepository
	taskRepo    repository.TaskRepository
	subtaskRepo repository.SubtaskRepository
	clientRepo  repository.ClientRepository
	assistant   Assistant
	now         func() time.Time
}

// NewTimeLogService creates a new TimeLogService. assistant may be nil.
func NewTimeLogService(
	logRepo repository.TimeLogRepository,
	taskRepo repository.TaskRepository,
	subtaskRepo repository.SubtaskRepository,
	clientRepo repository.ClientRepository,
	assistant Assistant,
) *TimeLogService {
	return &TimeLogService{
		logRepo:     logRepo,
		taskRepo:    taskRepo,
		subtaskRepo: subtaskRepo,
		clientRepo:  clientRepo,
		assistant:   assistant,
		now:         time.Now,
	}
}

// CreateTimeLogInput represents input for logging time
type CreateTimeLogInput struct {
	TaskID    string
	SubtaskID *string
	Date      time.Time
	Hours     float64
	Notes     string
}

// ListTimeLogsInput represents filters for listing time logs
type ListTimeLogsInput struct {
	TaskID string
	From   time.Time
	To     time.Time
	Offset int
	Limit  int
}

// Create records a work session against a task and optionally one of its
// subtasks. Logs are never edited afterwards.
func (s *TimeLogService) Create(ctx context.Context, input CreateTimeLogInput) (*models.TimeLog, error) {
	if input.Hours <= 0 {
		return nil, invalid("hours", "must be greater than zero")
	}
	if input.Hours > 24 {
		return nil, invalid("hours", "must not exceed 24")
	}
	if input.TaskID == "" {
		return nil, invalid("task_id", "is required")
	}
	if input.Date.IsZero() {
		now := s.now()
		input.Date = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}

	if _, err := s.taskRepo.FindByID(ctx, input.TaskID); err != nil {
		return nil, storeErr(err, ErrTaskNotFound, "find task")
	}

	if input.SubtaskID != nil && *input.SubtaskID == "" {
		input.SubtaskID = nil
	}
	if input.SubtaskID != nil {
		subtasks, err := s.subtaskRepo.ListByTask(ctx, input.TaskID)
		if err != nil {
			return nil, fmt.Errorf("failed to list subtasks: %w", err)
		}
		if !containsSubtask(subtasks, *input.SubtaskID) {
			return nil, invalid("subtask_id", "does not belong to the task")
		}
	}

	log := &models.TimeLog{
		TaskID:    input.TaskID,
		SubtaskID: input.SubtaskID,
		Date:      input.Date,
		Hours:     input.Hours,
		Notes:     strings.TrimSpace(input.Notes),
	}
	if err := s.logRepo.Create(ctx, log); err != nil {
		return nil, fmt.Errorf("failed to create time log: %w", err)
	}
	return log, nil
}

// List returns logs newest first with the total number of matches.
func (s *TimeLogService) List(ctx context.Context, input ListTimeLogsInput) ([]models.TimeLog, int64, error) {
	if !input.From.IsZero() && !input.To.IsZero() && input.To.Before(input.From) {
		return nil, 0, invalid("to", "must not be before from")
	}
	logs, total, err := s.logRepo.List(ctx, repository.TimeLogFilter{
		TaskID: input.TaskID,
		From:   input.From,
		To:     input.To,
		Offset: input.Offset,
		Limit:  input.Limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list time logs: %w", err)
	}
	return logs, total, nil
}

// Timesheet groups logs by client and month. month is YYYY-MM, "ALL" or empty.
func (s *TimeLogService) Timesheet(ctx context.Context, month string) (*summary.Timesheet, error) {
	month = strings.ToUpper(strings.TrimSpace(month))
	if month != "" && month != summary.AllMonths {
		if _, err := time.Parse(constants.MonthLayout, month); err != nil {
			return nil, invalid("month", "must be YYYY-MM or ALL")
		}
	}

	logs, _, err := s.logRepo.List(ctx, repository.TimeLogFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list time logs: %w", err)
	}
	tasks, err := s.taskRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	clients, err := s.clientRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	sheet := summary.BuildTimesheet(logs, tasks, clients, month)
	return &sheet, nil
}

// InvoiceSummary drafts an invoice description of the work logged on a task,
// optionally limited to one YYYY-MM month. It is empty when there is nothing
// logged, no assistant or the assistant fails.
func (s *TimeLogService) InvoiceSummary(ctx context.Context, taskID, month string) (string, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return "", storeErr(err, ErrTaskNotFound, "find task")
	}

	filter := repository.TimeLogFilter{TaskID: taskID}
	if month != "" && !strings.EqualFold(month, summary.AllMonths) {
		start, err := time.Parse(constants.MonthLayout, month)
		if err != nil {
			return "", invalid("month", "must be YYYY-MM or ALL")
		}
		filter.From = start
		filter.To = start.AddDate(0, 1, -1)
	}

	logs, _, err := s.logRepo.List(ctx, filter)
	if err != nil {
		return "", fmt.Errorf("failed to list time logs: %w", err)
	}
	if len(logs) == 0 || s.assistant == nil {
		return "", nil
	}

	text, err := s.assistant.SummarizeForInvoice(ctx, *task, logs)
	if err != nil {
		logging.Logger.WithField("task_id", taskID).Warnf("Invoice summary failed: %v", err)
		return "", nil
	}
	return text, nil
}

func containsSubtask(subtasks []models.Subtask, id string) bool {
	for _, s := range subtasks {
		if s.ID == id {
			return true
		}
	}
	return false
}
