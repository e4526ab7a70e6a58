package services

import (
	"errors"
	"fmt"

	"github.com/yukikurage/consultant-ledger/internal/repository"
	"gorm.io/gorm"
)

// ValidationError reports input that was rejected before reaching the store.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

var (
	ErrClientNotFound  = errors.New("client not found")
	ErrTaskNotFound    = errors.New("task not found")
	ErrSubtaskNotFound = errors.New("subtask not found")
)

// Pruning names the rows removed by a cascading delete. Callers holding a
// local copy of the workspace drop these ids to stay consistent.
type Pruning struct {
	TaskIDs    []string `json:"task_ids"`
	SubtaskIDs []string `json:"subtask_ids"`
	TimeLogIDs []string `json:"time_log_ids"`
}

func pruningFrom(c repository.Cascade) Pruning {
	p := Pruning{TaskIDs: c.TaskIDs, SubtaskIDs: c.SubtaskIDs, TimeLogIDs: c.TimeLogIDs}
	if p.TaskIDs == nil {
		p.TaskIDs = []string{}
	}
	if p.SubtaskIDs == nil {
		p.SubtaskIDs = []string{}
	}
	if p.TimeLogIDs == nil {
		p.TimeLogIDs = []string{}
	}
	return p
}

// storeErr maps gorm.ErrRecordNotFound to sentinel and wraps anything else
// as a store failure.
func storeErr(err error, sentinel error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
