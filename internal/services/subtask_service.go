package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/consultant-ledger/internal/constants"
	"github.com/yukikurage/consultant-ledger/internal/logging"
	"github.com/yukikurage/consultant-ledger/internal/models"
	"github.com/yukikurage/consultant-ledger/internal/repository"
	"github.com/yukikurage/consultant-ledger/internal/summary"
	"github.com/yukikurage/consultant-ledger/internal/utils"
	"gorm.io/gorm"
)

// FailedChange is a reconciliation operation the store rejected.
type FailedChange struct {
	Change summary.Change
	Err    error
}

// PartialBatchError reports a subtask sync in which some operations were
// applied and others failed. Applied operations are not rolled back.
type PartialBatchError struct {
	Succeeded []summary.Change
	Failed    []FailedChange
}

func (e *PartialBatchError) Error() string {
	total := len(e.Succeeded) + len(e.Failed)
	return fmt.Sprintf("%d of %d subtask operations failed", len(e.Failed), total)
}

func (e *PartialBatchError) Unwrap() []error {
	errs := make([]error, len(e.Failed))
	for i, f := range e.Failed {
		errs[i] = f.Err
	}
	return errs
}

// SubtaskService handles subtask business logic
type SubtaskService struct {
	taskRepo    repository.TaskRepository
	subtaskRepo repository.SubtaskRepository
	assistant   Assistant
}

// NewSubtaskService creates a new SubtaskService. assistant may be nil.
func NewSubtaskService(taskRepo repository.TaskRepository, subtaskRepo repository.SubtaskRepository, assistant Assistant) *SubtaskService {
	return &SubtaskService{
		taskRepo:    taskRepo,
		subtaskRepo: subtaskRepo,
		assistant:   assistant,
	}
}

// Sync replaces the subtasks of a task with desired.
//
// Deletes run first, then updates and creates in desired order. Each
// operation is attempted once and independently of the others. When some
// fail, the subtasks as now stored are returned together with a
// *PartialBatchError.
func (s *SubtaskService) Sync(ctx context.Context, taskID string, desired []models.Subtask) ([]models.Subtask, error) {
	if _, err := s.taskRepo.FindByID(ctx, taskID); err != nil {
		return nil, storeErr(err, ErrTaskNotFound, "find task")
	}

	desired = slices.Clone(desired)
	for i := range desired {
		if err := normalizeSubtask(&desired[i]); err != nil {
			return nil, err
		}
	}

	current, err := s.subtaskRepo.ListByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subtasks: %w", err)
	}

	plan := summary.Reconcile(taskID, current, desired)
	batch := &PartialBatchError{Succeeded: []summary.Change{}, Failed: []FailedChange{}}

	for _, change := range plan.Changes {
		if err := s.apply(ctx, change); err != nil {
			logging.Logger.WithFields(logrus.Fields{
				"task_id":    taskID,
				"subtask_id": change.Subtask.ID,
				"kind":       change.Kind,
			}).Warnf("Subtask operation failed: %v", err)
			batch.Failed = append(batch.Failed, FailedChange{Change: change, Err: err})
			continue
		}
		batch.Succeeded = append(batch.Succeeded, change)
	}

	stored, err := s.subtaskRepo.ListByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload subtasks: %w", err)
	}

	if len(batch.Failed) > 0 {
		return stored, batch
	}
	return stored, nil
}

func (s *SubtaskService) apply(ctx context.Context, change summary.Change) error {
	sub := change.Subtask

	switch change.Kind {
	case summary.ChangeDelete:
		if err := s.subtaskRepo.Delete(ctx, sub.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubtaskNotFound
			}
			return fmt.Errorf("failed to delete subtask: %w", err)
		}
	case summary.ChangeUpdate:
		_, err := s.subtaskRepo.Update(ctx, sub.ID, map[string]any{
			"title":            sub.Title,
			"priority":         sub.Priority,
			"assigned_to":      sub.AssignedTo,
			"estimated_hours":  sub.EstimatedHours,
			"percent_complete": sub.PercentComplete,
			"status":           sub.Status,
		})
		if err != nil {
			return storeErr(err, ErrSubtaskNotFound, "update subtask")
		}
	case summary.ChangeCreate:
		if err := s.subtaskRepo.Create(ctx, &sub); err != nil {
			return fmt.Errorf("failed to create subtask: %w", err)
		}
	}
	return nil
}

// Suggest proposes subtasks for a task. Suggestions carry temporary ids and
// are not stored; they become real once passed back through Sync. Without an
// assistant, or when it fails, there are no suggestions.
func (s *SubtaskService) Suggest(ctx context.Context, taskID, notes string) ([]models.Subtask, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, storeErr(err, ErrTaskNotFound, "find task")
	}

	subtasks := []models.Subtask{}
	if s.assistant == nil {
		return subtasks, nil
	}

	suggestions, err := s.assistant.SuggestSubtasks(ctx, *task, notes)
	if err != nil {
		logging.Logger.WithField("task_id", taskID).Warnf("Subtask suggestion failed: %v", err)
		return subtasks, nil
	}

	for _, suggestion := range suggestions {
		title := strings.TrimSpace(suggestion.Title)
		if title == "" {
			continue
		}
		id, err := utils.GenerateTempID()
		if err != nil {
			logging.Logger.Warnf("Temporary id generation failed: %v", err)
			return []models.Subtask{}, nil
		}

		priority := suggestion.Priority
		if !priority.Valid() {
			priority = models.PriorityMedium
		}

		subtasks = append(subtasks, models.Subtask{
			ID:              id,
			ParentID:        taskID,
			Title:           title,
			Priority:        priority,
			AssignedTo:      constants.DefaultSubtaskAssignee,
			EstimatedHours:  max(0, suggestion.EstimatedHours),
			PercentComplete: 0,
			Status:          models.TaskStatusNotStarted,
		})
		if len(subtasks) == constants.MaxAISuggestedSubtasks {
			break
		}
	}
	return subtasks, nil
}

func normalizeSubtask(sub *models.Subtask) error {
	sub.Title = strings.TrimSpace(sub.Title)
	if sub.Title == "" {
		return invalid("title", "subtask title is required")
	}
	if sub.Priority == "" {
		sub.Priority = models.PriorityMedium
	}
	if !sub.Priority.Valid() {
		return invalid("priority", fmt.Sprintf("unknown priority %q", sub.Priority))
	}
	if sub.Status == "" {
		sub.Status = models.TaskStatusNotStarted
	}
	if !sub.Status.Valid() {
		return invalid("status", fmt.Sprintf("unknown status %q", sub.Status))
	}
	if sub.PercentComplete < 0 || sub.PercentComplete > 100 {
		return invalid("percent_complete", "must be between 0 and 100")
	}
	if sub.EstimatedHours < 0 {
		return invalid("estimated_hours", "must not be negative")
	}
	return nil
}
