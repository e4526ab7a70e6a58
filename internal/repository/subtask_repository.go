package repository

import (
	"context"

	"github.com/yukikurage/consultant-ledger/internal/models"
	"gorm.io/gorm"
)

// GormSubtaskRepository is a GORM implementation of SubtaskRepository
type GormSubtaskRepository struct {
	db *gorm.DB
}

// NewSubtaskRepository creates a new SubtaskRepository
func NewSubtaskRepository(db *gorm.DB) SubtaskRepository {
	return &GormSubtaskRepository{db: db}
}

func (r *GormSubtaskRepository) List(ctx context.Context) ([]models.Subtask, error) {
	subtasks := []models.Subtask{}
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&subtasks).Error; err != nil {
		return nil, err
	}
	return subtasks, nil
}

func (r *GormSubtaskRepository) ListByTask(ctx context.Context, taskID string) ([]models.Subtask, error) {
	subtasks := []models.Subtask{}
	err := r.db.WithContext(ctx).
		Where("parent_id = ?", taskID).
		Order("created_at ASC, id ASC").
		Find(&subtasks).Error
	if err != nil {
		return nil, err
	}
	return subtasks, nil
}

func (r *GormSubtaskRepository) Create(ctx context.Context, subtask *models.Subtask) error {
	return r.db.WithContext(ctx).Create(subtask).Error
}

// Update sets only the given columns. A missing subtask yields gorm.ErrRecordNotFound.
func (r *GormSubtaskRepository) Update(ctx context.Context, id string, fields map[string]any) (*models.Subtask, error) {
	var subtask models.Subtask
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&subtask).Error; err != nil {
			return err
		}
		if len(fields) == 0 {
			return nil
		}
		if err := tx.Model(&subtask).Updates(fields).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&subtask).Error
	})
	if err != nil {
		return nil, err
	}
	return &subtask, nil
}

// Delete deletes a subtask. Time logs that referenced it keep their hours.
func (r *GormSubtaskRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.TimeLog{}).Where("subtask_id = ?", id).Update("subtask_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Subtask{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
