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

// ClientService handles client business logic
type ClientService struct {
	clientRepo repository.ClientRepository
	tasks      *TaskService
	now        func() time.Time
}

// NewClientService creates a new ClientService
func NewClientService(clientRepo repository.ClientRepository, tasks *TaskService) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		tasks:      tasks,
		now:        time.Now,
	}
}

// CreateClientInput represents input for creating a client
type CreateClientInput struct {
	Name    string
	Color   string
	Address string
	Logo    string
}

func (s *ClientService) List(ctx context.Context) ([]models.Client, error) {
	clients, err := s.clientRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

func (s *ClientService) Get(ctx context.Context, id string) (*models.Client, error) {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, ErrClientNotFound, "find client")
	}
	return client, nil
}

// Create stores a new client. Without a color the next palette entry is used.
func (s *ClientService) Create(ctx context.Context, input CreateClientInput) (*models.Client, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalid("name", "is required")
	}

	color := input.Color
	if color == "" {
		existing, err := s.clientRepo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list clients: %w", err)
		}
		color = models.ClientColors[len(existing)%len(models.ClientColors)]
	}

	client := &models.Client{
		Name:    name,
		Color:   color,
		Address: strings.TrimSpace(input.Address),
		Logo:    input.Logo,
	}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// Delete removes a client with all of its tasks, subtasks and logs.
func (s *ClientService) Delete(ctx context.Context, id string) (Pruning, error) {
	cascade, err := s.clientRepo.Delete(ctx, id)
	if err != nil {
		return Pruning{}, storeErr(err, ErrClientNotFound, "delete client")
	}
	return pruningFrom(cascade), nil
}

// Overviews returns the headline numbers of every client.
func (s *ClientService) Overviews(ctx context.Context) ([]summary.ClientOverview, error) {
	clients, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	summaries, err := s.tasks.List(ctx)
	if err != nil {
		return nil, err
	}
	return summary.ClientOverviews(clients, summaries), nil
}

// Months returns the tasks of a client grouped by start month.
func (s *ClientService) Months(ctx context.Context, id string) ([]summary.ClientMonth, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	summaries, err := s.tasks.List(ctx)
	if err != nil {
		return nil, err
	}
	return summary.ClientMonths(id, summaries, s.now()), nil
}
