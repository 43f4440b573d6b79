package database

import (
	"testing"

	"absence-tracker/internal/models"

	"github.com/sirupsen/logrus"
)

func TestSqliteDSN(t *testing.T) {
	cases := map[string]string{
		"absences.db":                           "absences.db?_foreign_keys=on",
		"file:x?mode=memory":                    "file:x?mode=memory&_foreign_keys=on",
		"absences.db?_foreign_keys=off":         "absences.db?_foreign_keys=off",
		"file:y?mode=memory&cache=shared&_fk=1": "file:y?mode=memory&cache=shared&_fk=1",
	}
	for in, want := range cases {
		if got := sqliteDSN(in); got != want {
			t.Errorf("sqliteDSN(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open("oracle", "dsn", logrus.New()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestMigrateSeedsStatusesIdempotently(t *testing.T) {
	db, err := Open("sqlite", "file:migrate_test?mode=memory&cache=shared", logrus.New())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := Migrate(db); err != nil {
			t.Fatalf("Migrate #%d: %v", i+1, err)
		}
	}

	var statuses []models.Status
	if err := db.Order("id").Find(&statuses).Error; err != nil {
		t.Fatalf("find statuses: %v", err)
	}

	want := map[uint]string{1: "En attente", 2: "Validé", 3: "Refusé"}
	if len(statuses) != len(want) {
		t.Fatalf("got %d statuses, want %d", len(statuses), len(want))
	}
	for _, s := range statuses {
		if want[s.ID] != s.Label {
			t.Errorf("status %d = %q, want %q", s.ID, s.Label, want[s.ID])
		}
	}
}
