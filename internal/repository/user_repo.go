package repository

import (
	"context"
	"errors"
	"strings"

	"absence-tracker/internal/models"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByChatID(ctx context.Context, chatID int64) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	GetAll(ctx context.Context) ([]models.User, error)
	GetAllWithAbsences(ctx context.Context, orderByStartDate bool) ([]models.User, error)
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	// Проверяем, существует ли уже пользователь
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("LOWER(email) = ?", strings.ToLower(user.Email)).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicate
	}

	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *GormUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	return r.first(r.db.WithContext(ctx).Where("id = ?", id), &user)
}

func (r *GormUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	return r.first(r.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(email)), &user)
}

func (r *GormUserRepository) GetByChatID(ctx context.Context, chatID int64) (*models.User, error) {
	var user models.User
	return r.first(r.db.WithContext(ctx).Where("chat_id = ?", chatID), &user)
}

func (r *GormUserRepository) first(query *gorm.DB, user *models.User) (*models.User, error) {
	err := query.First(user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *GormUserRepository) Update(ctx context.Context, user *models.User) error {
	// Email должен оставаться уникальным
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("LOWER(email) = ? AND id <> ?", strings.ToLower(user.Email), user.ID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicate
	}

	return translate(r.db.WithContext(ctx).Save(user).Error)
}

// Delete удаляет пользователя вместе с его заявками
func (r *GormUserRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.Absence{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.User{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *GormUserRepository) GetAll(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := r.db.WithContext(ctx).Order("id ASC").Find(&users).Error
	return users, err
}

func (r *GormUserRepository) GetAllWithAbsences(ctx context.Context, orderByStartDate bool) ([]models.User, error) {
	users := []models.User{}
	err := r.db.WithContext(ctx).
		Preload("Absences", func(db *gorm.DB) *gorm.DB {
			if orderByStartDate {
				db = db.Order("start_date ASC")
			}
			return db.Preload("Status").Order("id ASC")
		}).
		Order("id ASC").
		Find(&users).Error
	return users, err
}
