package service

import (
	"context"
	"fmt"
	"os"
	"slices"
	"time"

	"absence-tracker/internal/repository"
	"absence-tracker/pkg/period"
	"absence-tracker/pkg/weekends"

	"github.com/sirupsen/logrus"
)

// CalendarService считает рабочие дни заявок. Для годов с загруженным
// производственным календарем выходные берутся из него, иначе - суббота и воскресенье.
type CalendarService struct {
	repo   repository.NonWorkingDayRepository
	logger *logrus.Logger
}

func NewCalendarService(repo repository.NonWorkingDayRepository, logger *logrus.Logger) *CalendarService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CalendarService{repo: repo, logger: logger}
}

// LoadFromJSON загружает календарь года из файла, заменяя ранее загруженный
func (s *CalendarService) LoadFromJSON(ctx context.Context, filePath string) (int, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("open calendar: %w", err)
	}
	defer f.Close()

	cal, err := weekends.Parse(f)
	if err != nil {
		return 0, err
	}

	if err := s.repo.ReplaceYear(ctx, cal.Year, cal.Days); err != nil {
		return 0, fmt.Errorf("save calendar: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"year": cal.Year, "days": len(cal.Days)}).Info("Non-working days loaded")
	return len(cal.Days), nil
}

// WorkingDays возвращает количество рабочих дней в диапазоне
func (s *CalendarService) WorkingDays(ctx context.Context, r period.Range) (int, error) {
	if s == nil || !r.Valid() {
		return weekends.WorkingDays(r, nil), nil
	}

	years, err := s.repo.Years(ctx)
	if err != nil {
		return 0, fmt.Errorf("get calendar years: %w", err)
	}
	days, err := s.repo.InRange(ctx, r.Start, r.End)
	if err != nil {
		return 0, fmt.Errorf("get non-working days: %w", err)
	}

	off := make(map[time.Time]bool, len(days))
	for _, d := range days {
		off[period.Truncate(d)] = true
	}

	return weekends.WorkingDays(r, func(d time.Time) bool {
		if slices.Contains(years, d.Year()) {
			return off[d]
		}
		return weekends.IsWeekend(d)
	}), nil
}
