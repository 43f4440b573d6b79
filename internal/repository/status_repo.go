package repository

import (
	"context"
	"errors"

	"absence-tracker/internal/models"

	"gorm.io/gorm"
)

type StatusRepository interface {
	GetAll(ctx context.Context) ([]models.Status, error)
	GetByID(ctx context.Context, id uint) (*models.Status, error)
}

type GormStatusRepository struct {
	db *gorm.DB
}

func NewGormStatusRepository(db *gorm.DB) *GormStatusRepository {
	return &GormStatusRepository{db: db}
}

func (r *GormStatusRepository) GetAll(ctx context.Context) ([]models.Status, error) {
	statuses := []models.Status{}
	err := r.db.WithContext(ctx).Order("id ASC").Find(&statuses).Error
	return statuses, err
}

func (r *GormStatusRepository) GetByID(ctx context.Context, id uint) (*models.Status, error) {
	var status models.Status
	err := r.db.WithContext(ctx).First(&status, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &status, nil
}
