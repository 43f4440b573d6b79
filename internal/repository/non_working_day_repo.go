package repository

import (
	"context"
	"time"

	"absence-tracker/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NonWorkingDayRepository interface {
	// ReplaceYear заменяет календарь года целиком
	ReplaceYear(ctx context.Context, year int, days []time.Time) error
	InRange(ctx context.Context, start, end time.Time) ([]time.Time, error)
	Years(ctx context.Context) ([]int, error)
}

type GormNonWorkingDayRepository struct {
	db *gorm.DB
}

func NewGormNonWorkingDayRepository(db *gorm.DB) *GormNonWorkingDayRepository {
	return &GormNonWorkingDayRepository{db: db}
}

func (r *GormNonWorkingDayRepository) ReplaceYear(ctx context.Context, year int, days []time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("year = ?", year).Delete(&models.NonWorkingDay{}).Error; err != nil {
			return err
		}
		if len(days) == 0 {
			return nil
		}

		rows := make([]models.NonWorkingDay, 0, len(days))
		for _, d := range days {
			rows = append(rows, models.NonWorkingDay{Date: datatypes.Date(d), Year: year})
		}
		return tx.CreateInBatches(&rows, 100).Error
	})
}

func (r *GormNonWorkingDayRepository) InRange(ctx context.Context, start, end time.Time) ([]time.Time, error) {
	var rows []models.NonWorkingDay
	err := r.db.WithContext(ctx).
		Where("date BETWEEN ? AND ?", datatypes.Date(start), datatypes.Date(end)).
		Order("date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	days := make([]time.Time, 0, len(rows))
	for _, row := range rows {
		days = append(days, time.Time(row.Date))
	}
	return days, nil
}

func (r *GormNonWorkingDayRepository) Years(ctx context.Context) ([]int, error) {
	var years []int
	err := r.db.WithContext(ctx).
		Model(&models.NonWorkingDay{}).
		Distinct("year").
		Order("year ASC").
		Pluck("year", &years).Error
	return years, err
}
