package period

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse(ISOLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func rng(start, end string) Range {
	return New(day(start), day(end))
}

func TestRangeOverlaps(t *testing.T) {
	existing := rng("2024-06-10", "2024-06-12")

	tests := []struct {
		name      string
		candidate Range
		want      bool
	}{
		{"candidate starts on existing end", rng("2024-06-12", "2024-06-14"), true},
		{"candidate ends on existing start", rng("2024-06-08", "2024-06-10"), true},
		{"existing contains candidate", rng("2024-06-11", "2024-06-11"), true},
		{"candidate contains existing", rng("2024-06-01", "2024-06-30"), true},
		{"identical", rng("2024-06-10", "2024-06-12"), true},
		{"adjacent before", rng("2024-06-05", "2024-06-09"), false},
		{"adjacent after", rng("2024-06-13", "2024-06-20"), false},
		{"far away", rng("2025-01-01", "2025-01-02"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.candidate.Overlaps(existing); got != tt.want {
				t.Fatalf("Overlaps(%s, %s) = %v, want %v", tt.candidate, existing, got, tt.want)
			}
		})
	}
}

func TestRangeValidAndDays(t *testing.T) {
	single := rng("2024-06-10", "2024-06-10")
	if !single.Valid() || single.Days() != 1 {
		t.Fatalf("single day range: valid=%v days=%d", single.Valid(), single.Days())
	}

	inverted := rng("2024-07-01", "2024-06-30")
	if inverted.Valid() {
		t.Fatal("end before start must be invalid")
	}
	if inverted.Days() != 0 {
		t.Fatalf("invalid range days = %d, want 0", inverted.Days())
	}

	if got := rng("2024-02-27", "2024-03-01").Days(); got != 4 {
		t.Fatalf("leap year span days = %d, want 4", got)
	}
}

func TestNewNormalizesTime(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	r := New(time.Date(2024, 6, 10, 23, 30, 0, 0, loc), time.Date(2024, 6, 11, 1, 0, 0, 0, loc))
	if r.Start != day("2024-06-10") || r.End != day("2024-06-11") {
		t.Fatalf("unexpected normalized range %v", r)
	}
}

func TestParse(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"01.07.2026", "2026-07-01", false},
		{"01-07-2026", "2026-07-01", false},
		{"2026-07-01", "2026-07-01", false},
		{"15.08", "2026-08-15", false},
		{" 15-08 ", "2026-08-15", false},
		{"31.02.2026", "", true},
		{"29.02", "", true},
		{"29-02", "", true},
		{"31.04", "", true},
		{"tomorrow", "", true},
	}

	for _, tt := range tests {
		got, err := Parse(tt.in, now)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Parse(%q) expected error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got.Format(ISOLayout) != tt.want {
			t.Errorf("Parse(%q) = %s, want %s", tt.in, got.Format(ISOLayout), tt.want)
		}
	}
}

func TestParseISO(t *testing.T) {
	if _, err := ParseISO("2024-02-30"); err == nil {
		t.Fatal("expected error for impossible calendar date")
	}
	got, err := ParseISO("2024-02-29")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != day("2024-02-29") {
		t.Fatalf("ParseISO = %v", got)
	}
}

func TestParseLeapDayWithoutYear(t *testing.T) {
	got, err := Parse("29.02", time.Date(2028, 1, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Format(ISOLayout) != "2028-02-29" {
		t.Errorf("Parse(29.02) = %s, want 2028-02-29", got.Format(ISOLayout))
	}
}
