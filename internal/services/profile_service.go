package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/consultant-ledger/internal/constants"
	"github.com/yukikurage/consultant-ledger/internal/models"
	"github.com/yukikurage/consultant-ledger/internal/repository"
	"gorm.io/gorm"
)

// ProfileService handles the single user profile
type ProfileService struct {
	profileRepo repository.ProfileRepository
}

// NewProfileService creates a new ProfileService
func NewProfileService(profileRepo repository.ProfileRepository) *ProfileService {
	return &ProfileService{profileRepo: profileRepo}
}

// UpdateProfileInput represents input for saving the profile
type UpdateProfileInput struct {
	Name     string
	Role     string
	Initials string
}

// Get returns the stored profile, or the defaults before one is saved.
func (s *ProfileService) Get(ctx context.Context) (*models.UserProfile, error) {
	return loadProfile(ctx, s.profileRepo)
}

// Update creates or replaces the profile.
func (s *ProfileService) Update(ctx context.Context, input UpdateProfileInput) (*models.UserProfile, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalid("name", "is required")
	}

	initials := strings.ToUpper(strings.TrimSpace(input.Initials))
	if initials == "" {
		initials = initialsOf(name)
	}
	if len(initials) > 10 {
		return nil, invalid("initials", "must be at most 10 characters")
	}

	profile := &models.UserProfile{
		Name:     name,
		Role:     strings.TrimSpace(input.Role),
		Initials: initials,
	}
	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return profile, nil
}

func loadProfile(ctx context.Context, repo repository.ProfileRepository) (*models.UserProfile, error) {
	profile, err := repo.Get(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.UserProfile{
			Name:     constants.DefaultProfileName,
			Role:     constants.DefaultProfileRole,
			Initials: constants.DefaultProfileInitials,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return profile, nil
}

func initialsOf(name string) string {
	var initials []rune
	for _, word := range strings.Fields(name) {
		initials = append(initials, []rune(word)[0])
		if len(initials) == 2 {
			break
		}
	}
	return strings.ToUpper(string(initials))
}
