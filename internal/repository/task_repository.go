package repository

import (
	"context"

	"github.com/yukikurage/consultant-ledger/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// List returns every task in creation order
func (r *GormTaskRepository) List(ctx context.Context) ([]models.Task, error) {
	tasks := []models.Task{}
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// Update sets only the given columns. A missing task yields gorm.ErrRecordNotFound.
func (r *GormTaskRepository) Update(ctx context.Context, id string, fields map[string]any) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&task).Error; err != nil {
			return err
		}
		if len(fields) == 0 {
			return nil
		}
		if err := tx.Model(&task).Updates(fields).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&task).Error
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Delete removes the task's time logs, then its subtasks, then the task, in
// one transaction.
func (r *GormTaskRepository) Delete(ctx context.Context, id string) (Cascade, error) {
	var cascade Cascade
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		cascade, err = deleteTasks(tx, []string{id})
		if err != nil {
			return err
		}
		if len(cascade.TaskIDs) == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return Cascade{}, err
	}
	return cascade, nil
}

// deleteTasks removes the given tasks and every row that depends on them.
func deleteTasks(tx *gorm.DB, taskIDs []string) (Cascade, error) {
	cascade := Cascade{TaskIDs: []string{}, SubtaskIDs: []string{}, TimeLogIDs: []string{}}
	if len(taskIDs) == 0 {
		return cascade, nil
	}

	if err := tx.Model(&models.TimeLog{}).Where("task_id IN ?", taskIDs).Pluck("id", &cascade.TimeLogIDs).Error; err != nil {
		return cascade, err
	}
	if err := tx.Model(&models.Subtask{}).Where("parent_id IN ?", taskIDs).Pluck("id", &cascade.SubtaskIDs).Error; err != nil {
		return cascade, err
	}

	if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.TimeLog{}).Error; err != nil {
		return cascade, err
	}
	if err := tx.Where("parent_id IN ?", taskIDs).Delete(&models.Subtask{}).Error; err != nil {
		return cascade, err
	}

	res := tx.Where("id IN ?", taskIDs).Delete(&models.Task{})
	if res.Error != nil {
		return cascade, res.Error
	}
	if res.RowsAffected > 0 {
		cascade.TaskIDs = taskIDs
	}
	return cascade, nil
}
