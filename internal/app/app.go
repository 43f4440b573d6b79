// Package app собирает зависимости, общие для HTTP API и Telegram-бота.
package app

import (
	"context"
	"fmt"

	"absence-tracker/internal/config"
	"absence-tracker/internal/database"
	"absence-tracker/internal/redisstore"
	"absence-tracker/internal/repository"
	"absence-tracker/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type App struct {
	DB    *gorm.DB
	Redis *redis.Client

	Users    *service.UserService
	Auth     *service.AuthService
	Absences *service.AbsenceService
	Calendar *service.CalendarService
	Export   *service.ExportService
}

// New открывает БД, применяет миграции и создает сервисы
func New(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, error) {
	db, err := database.Open(cfg.DBDriver, cfg.DatabaseURL, log)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}

	// Redis не обязателен: без него лимиты и отзыв токенов живут в памяти процесса
	redisClient, err := redisstore.Connect(ctx, cfg.RedisURL, log)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, using in-memory state")
		redisClient = nil
	}

	userRepo := repository.NewGormUserRepository(db)
	absenceRepo := repository.NewGormAbsenceRepository(db)
	statusRepo := repository.NewGormStatusRepository(db)
	nonWorkingDayRepo := repository.NewGormNonWorkingDayRepository(db)

	var revoked service.RevocationStore
	if redisClient != nil {
		revoked = redisstore.NewRevocationStore(redisClient, "absence-tracker:revoked")
	}

	users := service.NewUserService(userRepo, log)
	absences := service.NewAbsenceService(absenceRepo, userRepo, statusRepo, service.AbsenceOptions{
		RejectedBlocksOverlap: cfg.RejectedBlocksOverlap,
		OrderByStartDate:      cfg.AbsenceListOrder == config.ListOrderStartDate,
	}, log)
	calendar := service.NewCalendarService(nonWorkingDayRepo, log)

	a := &App{
		DB:       db,
		Redis:    redisClient,
		Users:    users,
		Auth:     service.NewAuthService(users, cfg.JWTSecret, cfg.JWTTTL, revoked),
		Absences: absences,
		Calendar: calendar,
		Export:   service.NewExportService(absences, calendar),
	}

	// Инициализируем администратора из конфига
	if err := users.EnsureAdmin(ctx, cfg.BaseAdminEmail, cfg.BaseAdminPassword); err != nil {
		log.WithError(err).Warn("Failed to initialize admin")
	} else if cfg.BaseAdminEmail != "" {
		log.Infof("Admin initialized: %s", cfg.BaseAdminEmail)
	}

	if cfg.NonWorkingDaysFile != "" {
		if _, err := calendar.LoadFromJSON(ctx, cfg.NonWorkingDaysFile); err != nil {
			log.WithError(err).Warn("Failed to load non-working days")
		}
	}

	return a, nil
}

// Close закрывает соединения с БД и Redis
func (a *App) Close() error {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logrus.WithError(err).Warn("Error closing redis")
		}
	}

	sqlDB, err := a.DB.DB()
	if err != nil {
		return fmt.Errorf("get database instance: %w", err)
	}
	return sqlDB.Close()
}
