package services

import (
	"context"
	"fmt"

	"github.com/yukikurage/consultant-ledger/internal/models"
	"github.com/yukikurage/consultant-ledger/internal/repository"
	"github.com/yukikurage/consultant-ledger/internal/summary"
	"golang.org/x/sync/errgroup"
)

// Workspace is the full confirmed state with every task rolled up.
type Workspace struct {
	Clients  []models.Client
	Tasks    []summary.TaskSummary
	Subtasks []models.Subtask
	Logs     []models.TimeLog
	Profile  models.UserProfile
}

// WorkspaceService loads the whole workspace in one go.
type WorkspaceService struct {
	clientRepo  repository.ClientRepository
	taskRepo    repository.TaskRepository
	subtaskRepo repository.SubtaskRepository
	logRepo     repository.TimeLogRepository
	profileRepo repository.ProfileRepository
}

// NewWorkspaceService creates a new WorkspaceService
func NewWorkspaceService(
	clientRepo repository.ClientRepository,
	taskRepo repository.TaskRepository,
	subtaskRepo repository.SubtaskRepository,
	logRepo repository.TimeLogRepository,
	profileRepo repository.ProfileRepository,
) *WorkspaceService {
	return &WorkspaceService{
		clientRepo:  clientRepo,
		taskRepo:    taskRepo,
		subtaskRepo: subtaskRepo,
		logRepo:     logRepo,
		profileRepo: profileRepo,
	}
}

// Load fetches clients, tasks, subtasks, logs and the profile concurrently
// and joins them. If any fetch fails the others are cancelled and the load
// fails as a whole.
func (s *WorkspaceService) Load(ctx context.Context) (*Workspace, error) {
	var (
		ws    Workspace
		tasks []models.Task
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if ws.Clients, err = s.clientRepo.List(ctx); err != nil {
			return fmt.Errorf("failed to list clients: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if tasks, err = s.taskRepo.List(ctx); err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if ws.Subtasks, err = s.subtaskRepo.List(ctx); err != nil {
			return fmt.Errorf("failed to list subtasks: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if ws.Logs, _, err = s.logRepo.List(ctx, repository.TimeLogFilter{}); err != nil {
			return fmt.Errorf("failed to list time logs: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		profile, err := loadProfile(ctx, s.profileRepo)
		if err != nil {
			return err
		}
		ws.Profile = *profile
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	ws.Tasks = summary.Summarize(tasks, ws.Subtasks, ws.Logs)
	return &ws, nil
}
