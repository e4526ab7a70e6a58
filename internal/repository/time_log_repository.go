package repository

import (
	"context"

	"github.com/yukikurage/consultant-ledger/internal/database"
	"github.com/yukikurage/consultant-ledger/internal/models"
	"gorm.io/gorm"
)

// GormTimeLogRepository is a GORM implementation of TimeLogRepository
type GormTimeLogRepository struct {
	db *gorm.DB
}

// NewTimeLogRepository creates a new TimeLogRepository
func NewTimeLogRepository(db *gorm.DB) TimeLogRepository {
	return &GormTimeLogRepository{db: db}
}

// List retrieves time logs with filtering and pagination, newest first
func (r *GormTimeLogRepository) List(ctx context.Context, filter TimeLogFilter) ([]models.TimeLog, int64, error) {
	logs := []models.TimeLog{}

	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.filtered(ctx, filter).
		Scopes(database.Paginate(filter.Offset, filter.Limit)).
		Order("date DESC, created_at DESC").
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func (r *GormTimeLogRepository) filtered(ctx context.Context, filter TimeLogFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.TimeLog{}).
		Scopes(database.DateBetween("date", filter.From, filter.To))
	if filter.TaskID != "" {
		query = query.Where("task_id = ?", filter.TaskID)
	}
	return query
}

// Create creates a new time log
func (r *GormTimeLogRepository) Create(ctx context.Context, log *models.TimeLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}
