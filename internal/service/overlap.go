package service

import (
	"context"
	"fmt"
	"slices"

	"absence-tracker/internal/models"
	"absence-tracker/internal/repository"
	"absence-tracker/pkg/period"
)

// OverlapValidator решает, пересекается ли новый период с заявками пользователя.
// По умолчанию блокируют заявки в любом статусе, включая отклоненные.
type OverlapValidator struct {
	repo           repository.AbsenceRepository
	ignoreStatuses []uint
}

func NewOverlapValidator(repo repository.AbsenceRepository, rejectedBlocks bool) *OverlapValidator {
	v := &OverlapValidator{repo: repo}
	if !rejectedBlocks {
		v.ignoreStatuses = []uint{models.StatusRejected}
	}
	return v
}

// with возвращает копию валидатора поверх другого репозитория (например, транзакции)
func (v *OverlapValidator) with(repo repository.AbsenceRepository) *OverlapValidator {
	return &OverlapValidator{repo: repo, ignoreStatuses: v.ignoreStatuses}
}

// Overlaps проверяет кандидата запросом к хранилищу
func (v *OverlapValidator) Overlaps(ctx context.Context, userID uint, candidate period.Range) (bool, error) {
	conflict, err := v.repo.CheckPeriodConflict(ctx, userID, candidate.Start, candidate.End, v.ignoreStatuses...)
	if err != nil {
		return false, fmt.Errorf("check period conflict: %w", err)
	}
	return conflict, nil
}

// Conflicting возвращает заявки пользователя, с которыми пересекается кандидат
func (v *OverlapValidator) Conflicting(ctx context.Context, userID uint, candidate period.Range) ([]models.Absence, error) {
	existing, err := v.repo.GetByUserID(ctx, userID, repository.AbsenceQuery{})
	if err != nil {
		return nil, fmt.Errorf("get user absences: %w", err)
	}

	var conflicts []models.Absence
	for _, a := range existing {
		if slices.Contains(v.ignoreStatuses, a.StatusID) {
			continue
		}
		if candidate.Overlaps(a.Period()) {
			conflicts = append(conflicts, a)
		}
	}
	return conflicts, nil
}
