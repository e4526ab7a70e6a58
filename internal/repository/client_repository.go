package repository

import (
	"context"

	"github.com/yukikurage/consultant-ledger/internal/models"
	"gorm.io/gorm"
)

// GormClientRepository is a GORM implementation of ClientRepository
type GormClientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new ClientRepository
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &GormClientRepository{db: db}
}

// List returns every client ordered by name
func (r *GormClientRepository) List(ctx context.Context) ([]models.Client, error) {
	clients := []models.Client{}
	if err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

// FindByID finds a client by ID
func (r *GormClientRepository) FindByID(ctx context.Context, id string) (*models.Client, error) {
	var client models.Client
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// Create creates a new client
func (r *GormClientRepository) Create(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

// Delete deletes a client and all related data in a transaction
func (r *GormClientRepository) Delete(ctx context.Context, id string) (Cascade, error) {
	var cascade Cascade
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taskIDs []string
		if err := tx.Model(&models.Task{}).Where("client_id = ?", id).Pluck("id", &taskIDs).Error; err != nil {
			return err
		}

		var err error
		cascade, err = deleteTasks(tx, taskIDs)
		if err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&models.Client{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return Cascade{}, err
	}
	return cascade, nil
}
