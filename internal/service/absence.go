package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"absence-tracker/internal/access"
	"absence-tracker/internal/models"
	"absence-tracker/internal/repository"
	"absence-tracker/pkg/period"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

type AbsenceOptions struct {
	// Отклоненные заявки тоже блокируют новые заявки на те же даты
	RejectedBlocksOverlap bool
	// Сортировать списки по дате начала вместо порядка создания
	OrderByStartDate bool
}

type SubmitAbsenceInput struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Reason    string `json:"reason" validate:"required,max=255"`
}

type AbsenceFilter struct {
	StatusID *uint
}

// UserAbsences - пользователь и все его заявки
type UserAbsences struct {
	User     models.User
	Absences []models.Absence
}

type AbsenceService struct {
	absenceRepo repository.AbsenceRepository
	userRepo    repository.UserRepository
	statusRepo  repository.StatusRepository
	overlap     *OverlapValidator
	opts        AbsenceOptions
	logger      *logrus.Logger
}

func NewAbsenceService(
	absenceRepo repository.AbsenceRepository,
	userRepo repository.UserRepository,
	statusRepo repository.StatusRepository,
	opts AbsenceOptions,
	logger *logrus.Logger,
) *AbsenceService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AbsenceService{
		absenceRepo: absenceRepo,
		userRepo:    userRepo,
		statusRepo:  statusRepo,
		overlap:     NewOverlapValidator(absenceRepo, opts.RejectedBlocksOverlap),
		opts:        opts,
		logger:      logger,
	}
}

// Overlap возвращает валидатор пересечений, настроенный политикой сервиса
func (s *AbsenceService) Overlap() *OverlapValidator {
	return s.overlap
}

// Submit создает заявку сотрудника в статусе "En attente"
func (s *AbsenceService) Submit(ctx context.Context, userID uint, in SubmitAbsenceInput) (*models.Absence, error) {
	in.Reason = strings.TrimSpace(in.Reason)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	// Формат уже проверен валидатором
	startDate, _ := period.ParseISO(in.StartDate)
	endDate, _ := period.ParseISO(in.EndDate)

	candidate := period.New(startDate, endDate)
	if !candidate.Valid() {
		return nil, NewValidationError("end_date", "The end date field must be a date after or equal to start date.")
	}

	absence := &models.Absence{
		UserID:    userID,
		StartDate: datatypes.Date(candidate.Start),
		EndDate:   datatypes.Date(candidate.End),
		Reason:    in.Reason,
		StatusID:  models.StatusPending,
	}

	// Проверка и вставка в одной транзакции под блокировкой владельца
	err := s.absenceRepo.WithUserLock(ctx, userID, func(tx repository.AbsenceRepository) error {
		conflict, err := s.overlap.with(tx).Overlaps(ctx, userID, candidate)
		if err != nil {
			return err
		}
		if conflict {
			return &ConflictError{Message: msgDuplicatePeriod}
		}

		if err := tx.Create(ctx, absence); err != nil {
			return fmt.Errorf("create absence: %w", err)
		}
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Resource: "User", ID: userID}
	}
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"absence_id": absence.ID,
		"user_id":    userID,
		"period":     candidate.String(),
	}).Info("Absence request submitted")

	return absence, nil
}

// ListOwn возвращает заявки пользователя
func (s *AbsenceService) ListOwn(ctx context.Context, userID uint, filter AbsenceFilter) ([]models.Absence, error) {
	if filter.StatusID != nil {
		if err := s.checkStatus(ctx, *filter.StatusID); err != nil {
			return nil, err
		}
	}

	absences, err := s.absenceRepo.GetByUserID(ctx, userID, repository.AbsenceQuery{
		StatusID:         filter.StatusID,
		OrderByStartDate: s.opts.OrderByStartDate,
	})
	if err != nil {
		return nil, fmt.Errorf("get user absences: %w", err)
	}
	return absences, nil
}

// ListAll возвращает всех пользователей с их заявками (только для админов)
func (s *AbsenceService) ListAll(ctx context.Context, grant access.AdminGrant) ([]UserAbsences, error) {
	if !grant.Valid() {
		return nil, ErrForbidden
	}

	users, err := s.userRepo.GetAllWithAbsences(ctx, s.opts.OrderByStartDate)
	if err != nil {
		return nil, fmt.Errorf("get users with absences: %w", err)
	}

	result := make([]UserAbsences, 0, len(users))
	for _, u := range users {
		absences := u.Absences
		if absences == nil {
			absences = []models.Absence{}
		}
		u.Absences = nil
		result = append(result, UserAbsences{User: u, Absences: absences})
	}
	return result, nil
}

// SetStatus меняет статус любой заявки. Переходы не ограничены: админ может
// вернуть одобренную заявку в ожидание.
func (s *AbsenceService) SetStatus(ctx context.Context, grant access.AdminGrant, absenceID, statusID uint) (*models.Absence, error) {
	if !grant.Valid() {
		return nil, ErrForbidden
	}

	if err := s.checkStatus(ctx, statusID); err != nil {
		return nil, err
	}

	absence, err := s.absenceRepo.GetByID(ctx, absenceID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Resource: "Absence", ID: absenceID}
	}
	if err != nil {
		return nil, fmt.Errorf("get absence: %w", err)
	}

	previous := absence.StatusID
	if err := s.absenceRepo.UpdateStatus(ctx, absenceID, statusID); err != nil {
		return nil, fmt.Errorf("update absence status: %w", err)
	}

	updated, err := s.absenceRepo.GetByID(ctx, absenceID)
	if err != nil {
		return nil, fmt.Errorf("reload absence: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"absence_id": absenceID,
		"from":       previous,
		"to":         statusID,
		"admin_id":   grant.AdminID(),
	}).Info("Absence status updated")

	return updated, nil
}

// Statuses возвращает справочник статусов
func (s *AbsenceService) Statuses(ctx context.Context) ([]models.Status, error) {
	return s.statusRepo.GetAll(ctx)
}

func (s *AbsenceService) checkStatus(ctx context.Context, statusID uint) error {
	_, err := s.statusRepo.GetByID(ctx, statusID)
	if errors.Is(err, repository.ErrNotFound) {
		return NewValidationError("status_id", "The selected status id is invalid.")
	}
	if err != nil {
		return fmt.Errorf("get status: %w", err)
	}
	return nil
}
