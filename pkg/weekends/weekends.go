// Package weekends разбирает производственный календарь (формат xmlcalendar JSON)
// и считает рабочие дни в диапазоне дат.
package weekends

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"absence-tracker/pkg/period"
)

// CalendarJSON - структура исходного JSON
type CalendarJSON struct {
	Year   int             `json:"year"`
	Months []MonthWeekends `json:"months"`
}

type MonthWeekends struct {
	Month int    `json:"month"`
	Days  string `json:"days"`
}

// Calendar - нерабочие дни одного года
type Calendar struct {
	Year int
	Days []time.Time
}

// Parse читает календарь. Дни с пометкой "*" (сокращенные) остаются рабочими.
func Parse(r io.Reader) (*Calendar, error) {
	var raw CalendarJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal calendar: %w", err)
	}
	if raw.Year == 0 {
		return nil, fmt.Errorf("calendar year is missing")
	}

	cal := &Calendar{Year: raw.Year}
	for _, m := range raw.Months {
		if m.Month < 1 || m.Month > 12 {
			return nil, fmt.Errorf("invalid month %d", m.Month)
		}

		for _, dayStr := range strings.Split(m.Days, ",") {
			dayStr = strings.TrimSpace(dayStr)
			if dayStr == "" || strings.HasSuffix(dayStr, "*") {
				continue
			}
			dayStr = strings.TrimSuffix(dayStr, "+")

			day, err := strconv.Atoi(dayStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse day '%s' in month %d: %w", dayStr, m.Month, err)
			}

			date := time.Date(raw.Year, time.Month(m.Month), day, 0, 0, 0, 0, time.UTC)
			if date.Month() != time.Month(m.Month) {
				return nil, fmt.Errorf("day %d out of range for month %d", day, m.Month)
			}
			cal.Days = append(cal.Days, date)
		}
	}

	return cal, nil
}

// IsWeekend - суббота или воскресенье
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// WorkingDays считает рабочие дни в диапазоне. isOff решает, является ли день выходным;
// nil означает обычную пятидневку.
func WorkingDays(r period.Range, isOff func(time.Time) bool) int {
	if !r.Valid() {
		return 0
	}
	if isOff == nil {
		isOff = IsWeekend
	}

	count := 0
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		if !isOff(d) {
			count++
		}
	}
	return count
}
