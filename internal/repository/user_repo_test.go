package repository

import (
	"context"
	"errors"
	"testing"

	"absence-tracker/internal/database/dbtest"
	"absence-tracker/internal/models"

	"gorm.io/gorm"
)

func TestUserRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	repo := NewGormUserRepository(db)

	user := &models.User{Name: "Durand", FirstName: "Marie", Email: "marie@example.com", Password: "hash"}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create: %v", err)
	}
	stored, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Role != models.RoleEmployee {
		t.Fatalf("default role = %q", stored.Role)
	}

	dup := &models.User{Name: "Other", Email: "MARIE@example.com", Password: "hash"}
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate email: err = %v", err)
	}

	got, err := repo.GetByEmail(ctx, "Marie@Example.com")
	if err != nil || got.ID != user.ID {
		t.Fatalf("GetByEmail: %v %+v", err, got)
	}

	chatID := int64(4242)
	got.ChatID = &chatID
	got.Role = models.RoleAdmin
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}

	byChat, err := repo.GetByChatID(ctx, chatID)
	if err != nil || byChat.ID != user.ID || !byChat.IsAdmin() {
		t.Fatalf("GetByChatID: %v %+v", err, byChat)
	}

	second := &models.User{Name: "Martin", Email: "paul@example.com", Password: "hash"}
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("Create second: %v", err)
	}
	second.Email = "marie@example.com"
	if err := repo.Update(ctx, second); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("update to taken email: err = %v", err)
	}

	if _, err := repo.GetByID(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetByID missing: %v", err)
	}
}

func TestUniqueEmailViolationIsDuplicate(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	repo := NewGormUserRepository(db)

	seedUser(t, db, "race@example.com")

	// Вставка в обход предварительной проверки, как при параллельной регистрации
	err := db.WithContext(ctx).Create(&models.User{Name: "Twin", Email: "race@example.com", Password: "hash"}).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("raw insert: err = %v, want gorm.ErrDuplicatedKey", err)
	}
	if !errors.Is(translate(err), ErrDuplicate) {
		t.Fatalf("translate(%v) is not ErrDuplicate", err)
	}

	other := seedUser(t, db, "other@example.com")
	other.Email = "race@example.com"
	err = db.WithContext(ctx).Save(other).Error
	if !errors.Is(translate(err), ErrDuplicate) {
		t.Fatalf("raw update: err = %v", err)
	}

	if err := repo.Create(ctx, &models.User{Name: "Twin", Email: "race@example.com", Password: "hash"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("Create: err = %v", err)
	}
}

func TestUserDeleteCascadesAbsences(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	users := NewGormUserRepository(db)
	absences := NewGormAbsenceRepository(db)

	user := seedUser(t, db, "gone@example.com")
	keep := seedUser(t, db, "keep@example.com")
	seedAbsence(t, absences, user.ID, "2024-01-01", "2024-01-03", models.StatusPending)
	seedAbsence(t, absences, keep.ID, "2024-01-01", "2024-01-03", models.StatusPending)

	if err := users.Delete(ctx, user.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := users.Delete(ctx, user.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete: err = %v", err)
	}

	var left []models.Absence
	if err := db.Find(&left).Error; err != nil {
		t.Fatalf("load absences: %v", err)
	}
	if len(left) != 1 || left[0].UserID != keep.ID {
		t.Fatalf("unexpected absences after delete: %+v", left)
	}
}

func TestGetAllWithAbsences(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	users := NewGormUserRepository(db)
	absences := NewGormAbsenceRepository(db)

	first := seedUser(t, db, "first@example.com")
	seedUser(t, db, "empty@example.com")
	seedAbsence(t, absences, first.ID, "2024-05-01", "2024-05-02", models.StatusApproved)
	seedAbsence(t, absences, first.ID, "2024-04-01", "2024-04-02", models.StatusPending)

	list, err := users.GetAllWithAbsences(ctx, false)
	if err != nil {
		t.Fatalf("GetAllWithAbsences: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d users", len(list))
	}
	if len(list[0].Absences) != 2 || list[0].Absences[0].Status.Label != "Validé" {
		t.Fatalf("absences not preloaded in insertion order: %+v", list[0].Absences)
	}
	if len(list[1].Absences) != 0 {
		t.Fatalf("user without absences got %d", len(list[1].Absences))
	}

	list, err = users.GetAllWithAbsences(ctx, true)
	if err != nil {
		t.Fatalf("GetAllWithAbsences: %v", err)
	}
	if list[0].Absences[0].Status.Label != "En attente" {
		t.Fatalf("start date order expected first April absence, got %+v", list[0].Absences[0])
	}
}

func TestStatusRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormStatusRepository(dbtest.New(t))

	all, err := repo.GetAll(ctx)
	if err != nil || len(all) != 3 {
		t.Fatalf("GetAll: %v %+v", err, all)
	}
	s, err := repo.GetByID(ctx, models.StatusApproved)
	if err != nil || s.Label != "Validé" {
		t.Fatalf("GetByID: %v %+v", err, s)
	}
	if _, err := repo.GetByID(ctx, 4); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetByID(4): err = %v", err)
	}
}
