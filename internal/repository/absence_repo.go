package repository

import (
	"context"
	"errors"
	"time"

	"absence-tracker/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AbsenceQuery - параметры выборки заявок пользователя
type AbsenceQuery struct {
	StatusID         *uint
	OrderByStartDate bool
}

type AbsenceRepository interface {
	Create(ctx context.Context, absence *models.Absence) error
	GetByID(ctx context.Context, id uint) (*models.Absence, error)
	GetByUserID(ctx context.Context, userID uint, q AbsenceQuery) ([]models.Absence, error)
	CheckPeriodConflict(ctx context.Context, userID uint, startDate, endDate time.Time, ignoreStatuses ...uint) (bool, error)
	UpdateStatus(ctx context.Context, id, statusID uint) error
	// WithUserLock выполняет fn в транзакции, удерживая блокировку строки пользователя
	WithUserLock(ctx context.Context, userID uint, fn func(repo AbsenceRepository) error) error
}

type GormAbsenceRepository struct {
	db *gorm.DB
}

func NewGormAbsenceRepository(db *gorm.DB) *GormAbsenceRepository {
	return &GormAbsenceRepository{db: db}
}

func (r *GormAbsenceRepository) Create(ctx context.Context, absence *models.Absence) error {
	if err := r.db.WithContext(ctx).Create(absence).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).First(&absence.Status, absence.StatusID).Error
}

func (r *GormAbsenceRepository) GetByID(ctx context.Context, id uint) (*models.Absence, error) {
	var absence models.Absence
	err := r.db.WithContext(ctx).Preload("Status").First(&absence, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &absence, nil
}

func (r *GormAbsenceRepository) GetByUserID(ctx context.Context, userID uint, q AbsenceQuery) ([]models.Absence, error) {
	query := r.db.WithContext(ctx).
		Preload("Status").
		Where("user_id = ?", userID)

	if q.StatusID != nil {
		query = query.Where("status_id = ?", *q.StatusID)
	}
	if q.OrderByStartDate {
		query = query.Order("start_date ASC")
	}

	periods := []models.Absence{}
	err := query.Order("id ASC").Find(&periods).Error
	return periods, err
}

// CheckPeriodConflict ищет заявки пользователя, пересекающиеся с [startDate, endDate]
func (r *GormAbsenceRepository) CheckPeriodConflict(
	ctx context.Context,
	userID uint,
	startDate, endDate time.Time,
	ignoreStatuses ...uint,
) (bool, error) {
	start := datatypes.Date(startDate)
	end := datatypes.Date(endDate)

	query := r.db.WithContext(ctx).Model(&models.Absence{}).
		Where("user_id = ? AND "+
			"(start_date BETWEEN ? AND ? OR "+
			"end_date BETWEEN ? AND ? OR "+
			"(start_date <= ? AND end_date >= ?))",
			userID,
			start, end,
			start, end,
			start, end)

	if len(ignoreStatuses) > 0 {
		query = query.Where("status_id NOT IN ?", ignoreStatuses)
	}

	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

// UpdateStatus не проверяет RowsAffected: MySQL возвращает 0, если значение не изменилось
func (r *GormAbsenceRepository) UpdateStatus(ctx context.Context, id, statusID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Absence{ID: id}).
		Update("status_id", statusID).Error
}

func (r *GormAbsenceRepository) WithUserLock(ctx context.Context, userID uint, fn func(repo AbsenceRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner models.User
		// На SQLite блокировка строк не поддерживается, запись сериализуется самой БД
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&owner, userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return fn(&GormAbsenceRepository{db: tx})
	})
}
