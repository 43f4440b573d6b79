package service

import (
	"context"
	"errors"
	"testing"

	"absence-tracker/internal/access"
	"absence-tracker/internal/database/dbtest"
	"absence-tracker/internal/models"
	"absence-tracker/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	absences *AbsenceService
	users    *UserService
	calendar *CalendarService
	absRepo  *repository.GormAbsenceRepository
	userRepo *repository.GormUserRepository
}

func newFixture(t *testing.T, opts AbsenceOptions) *fixture {
	t.Helper()

	db := dbtest.New(t)
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	absRepo := repository.NewGormAbsenceRepository(db)
	userRepo := repository.NewGormUserRepository(db)
	statusRepo := repository.NewGormStatusRepository(db)

	return &fixture{
		db:       db,
		absences: NewAbsenceService(absRepo, userRepo, statusRepo, opts, log),
		users:    NewUserService(userRepo, log),
		calendar: NewCalendarService(repository.NewGormNonWorkingDayRepository(db), log),
		absRepo:  absRepo,
		userRepo: userRepo,
	}
}

func defaultOptions() AbsenceOptions {
	return AbsenceOptions{RejectedBlocksOverlap: true}
}

func (f *fixture) employee(t *testing.T, email string) *models.User {
	t.Helper()
	user := &models.User{Name: "Martin", FirstName: "Léa", Email: email, Password: "x", Role: models.RoleEmployee}
	if err := f.userRepo.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (f *fixture) adminGrant(t *testing.T) access.AdminGrant {
	t.Helper()
	admin := &models.User{Name: "Admin", Email: "admin@example.com", Password: "x", Role: models.RoleAdmin}
	if err := f.userRepo.Create(context.Background(), admin); err != nil {
		t.Fatalf("create admin: %v", err)
	}
	grant, err := access.Principal{UserID: admin.ID, Role: admin.Role}.Admin()
	if err != nil {
		t.Fatalf("admin grant: %v", err)
	}
	return grant
}

func (f *fixture) seed(t *testing.T, userID uint, start, end string, statusID uint) *models.Absence {
	t.Helper()
	s, err := parseDay(start)
	if err != nil {
		t.Fatal(err)
	}
	e, err := parseDay(end)
	if err != nil {
		t.Fatal(err)
	}
	absence := &models.Absence{
		UserID:    userID,
		StartDate: datatypes.Date(s),
		EndDate:   datatypes.Date(e),
		Reason:    "congés",
		StatusID:  statusID,
	}
	if err := f.absRepo.Create(context.Background(), absence); err != nil {
		t.Fatalf("seed absence: %v", err)
	}
	return absence
}

func (f *fixture) count(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(&models.Absence{}).Count(&n).Error; err != nil {
		t.Fatalf("count absences: %v", err)
	}
	return n
}

func submit(start, end, reason string) SubmitAbsenceInput {
	return SubmitAbsenceInput{StartDate: start, EndDate: end, Reason: reason}
}

func assertValidation(t *testing.T, err error, field string) {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := verr.Fields[field]; !ok {
		t.Fatalf("expected error on %q, got %v", field, verr.Fields)
	}
}
