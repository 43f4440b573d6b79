package database

import (
	"fmt"
	"strings"
	"time"

	"absence-tracker/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// Open открывает соединение с БД выбранного драйвера
func Open(driver, dsn string, log *logrus.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch driver {
	case "sqlite":
		dialector = sqlite.Open(sqliteDSN(dsn))
	case "postgres":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(log, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if driver == "sqlite" {
		// SQLite допускает одного писателя; одно соединение сериализует транзакции
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// Включаем поддержку внешних ключей (требуется для SQLite) на каждом соединении
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on"
}

// Migrate создает таблицы и заполняет справочник статусов
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Status{}, &models.User{}, &models.Absence{}, &models.NonWorkingDay{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return SeedStatuses(db)
}

// SeedStatuses гарантирует наличие статусов с фиксированными ID и названиями
func SeedStatuses(db *gorm.DB) error {
	statuses := models.DefaultStatuses()
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"label"}),
	}).Create(&statuses).Error
	if err != nil {
		return fmt.Errorf("seed statuses: %w", err)
	}
	return nil
}
