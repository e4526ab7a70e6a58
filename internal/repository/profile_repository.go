package repository

import (
	"context"

	"github.com/yukikurage/consultant-ledger/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProfileRepository is a GORM implementation of ProfileRepository
type GormProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &GormProfileRepository{db: db}
}

// Get returns the profile row, or gorm.ErrRecordNotFound before the first Upsert
func (r *GormProfileRepository) Get(ctx context.Context) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := r.db.WithContext(ctx).Where("id = ?", models.ProfileID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// Upsert creates or replaces the profile row
func (r *GormProfileRepository) Upsert(ctx context.Context, profile *models.UserProfile) error {
	profile.ID = models.ProfileID
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "role", "initials", "updated_at"}),
		}).
		Create(profile).Error
}
