package repository

import (
	"context"
	"time"

	"github.com/yukikurage/consultant-ledger/internal/models"
)

// Cascade lists the rows removed together with a deleted client or task.
type Cascade struct {
	TaskIDs    []string
	SubtaskIDs []string
	TimeLogIDs []string
}

// ClientRepository defines the interface for client data access
type ClientRepository interface {
	// List returns every client ordered by name
	List(ctx context.Context) ([]models.Client, error)

	// FindByID finds a client by ID
	FindByID(ctx context.Context, id string) (*models.Client, error)

	// Create creates a new client and assigns its ID
	Create(ctx context.Context, client *models.Client) error

	// Delete deletes a client with its tasks and their subtasks and time logs
	Delete(ctx context.Context, id string) (Cascade, error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// List returns every task in creation order
	List(ctx context.Context) ([]models.Task, error)

	// FindByID finds a task by ID
	FindByID(ctx context.Context, id string) (*models.Task, error)

	// Create creates a new task and assigns its ID
	Create(ctx context.Context, task *models.Task) error

	// Update sets the given columns and returns the updated task
	Update(ctx context.Context, id string, fields map[string]any) (*models.Task, error)

	// Delete deletes a task with its subtasks and time logs
	Delete(ctx context.Context, id string) (Cascade, error)
}

// SubtaskRepository defines the interface for subtask data access
type SubtaskRepository interface {
	// List returns every subtask in creation order
	List(ctx context.Context) ([]models.Subtask, error)

	// ListByTask returns the subtasks of one task in creation order
	ListByTask(ctx context.Context, taskID string) ([]models.Subtask, error)

	// Create creates a new subtask and assigns its ID
	Create(ctx context.Context, subtask *models.Subtask) error

	// Update sets the given columns of a subtask
	Update(ctx context.Context, id string, fields map[string]any) (*models.Subtask, error)

	// Delete deletes a subtask
	Delete(ctx context.Context, id string) error
}

// TimeLogRepository defines the interface for time log data access.
// Logs are append-only.
type TimeLogRepository interface {
	// List returns the logs matching filter, newest first, and the total
	// number of matches before pagination
	List(ctx context.Context, filter TimeLogFilter) ([]models.TimeLog, int64, error)

	// Create creates a new time log and assigns its ID
	Create(ctx context.Context, log *models.TimeLog) error
}

// TimeLogFilter holds filtering options for listing time logs
type TimeLogFilter struct {
	TaskID string
	From   time.Time
	To     time.Time
	Offset int
	Limit  int
}

// ProfileRepository defines the interface for the single user profile
type ProfileRepository interface {
	// Get returns the stored profile
	Get(ctx context.Context) (*models.UserProfile, error)

	// Upsert creates or replaces the profile
	Upsert(ctx context.Context, profile *models.UserProfile) error
}
