package period

import (
	"fmt"
	"strings"
	"time"
)

const (
	ISOLayout     = "2006-01-02"
	DisplayLayout = "02.01.2006"
)

// Range - включительный диапазон календарных дат
type Range struct {
	Start time.Time
	End   time.Time
}

// Truncate оставляет только дату (полночь UTC)
func Truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// New создает диапазон с нормализованными датами
func New(start, end time.Time) Range {
	return Range{Start: Truncate(start), End: Truncate(end)}
}

// Valid проверяет, что дата окончания не раньше даты начала
func (r Range) Valid() bool {
	return !r.End.Before(r.Start)
}

// Contains проверяет, попадает ли дата в диапазон (границы включены)
func (r Range) Contains(t time.Time) bool {
	t = Truncate(t)
	return !t.Before(r.Start) && !t.After(r.End)
}

// Overlaps проверяет пересечение кандидата r с существующим диапазоном existing:
// начало existing внутри r, конец existing внутри r, либо existing целиком покрывает r.
func (r Range) Overlaps(existing Range) bool {
	return r.Contains(existing.Start) ||
		r.Contains(existing.End) ||
		(!existing.Start.After(r.Start) && !existing.End.Before(r.End))
}

// Days возвращает количество дней в диапазоне
func (r Range) Days() int {
	if !r.Valid() {
		return 0
	}
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

func (r Range) String() string {
	return fmt.Sprintf("%s - %s", r.Start.Format(DisplayLayout), r.End.Format(DisplayLayout))
}

// ParseISO парсит дату в формате YYYY-MM-DD
func ParseISO(s string) (time.Time, error) {
	t, err := time.Parse(ISOLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// Parse парсит дату из пользовательского ввода. Если год не указан, берется год из now.
func Parse(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	formats := []string{
		DisplayLayout,
		"02-01-2006",
		ISOLayout,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return Truncate(t), nil
		}
	}

	// Без года: подставляем текущий и проверяем дату целиком, иначе 29.02 уедет на 01.03
	for _, sep := range []string{".", "-"} {
		if _, err := time.Parse("02"+sep+"01", s); err != nil {
			continue
		}
		t, err := time.Parse("02"+sep+"01"+sep+"2006", fmt.Sprintf("%s%s%d", s, sep, now.Year()))
		if err != nil {
			break
		}
		return Truncate(t), nil
	}

	return time.Time{}, fmt.Errorf("format de date invalide %q: utilisez JJ.MM.AAAA ou JJ.MM", s)
}
