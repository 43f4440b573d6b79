package service

import (
	"context"
	"errors"
	"testing"

	"absence-tracker/internal/access"
	"absence-tracker/internal/models"
)

func registerInput(email string) RegisterInput {
	return RegisterInput{
		Name:                 "Durand",
		FirstName:            "Paul",
		Email:                email,
		Password:             "secret123",
		PasswordConfirmation: "secret123",
	}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultOptions())

	user, err := f.users.Register(ctx, registerInput("  Paul@Example.com "))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "paul@example.com" {
		t.Errorf("email = %q, want normalized", user.Email)
	}
	if user.Role != models.RoleEmployee {
		t.Errorf("role = %q", user.Role)
	}
	if user.Password == "secret123" {
		t.Error("password must be hashed")
	}

	if _, err := f.users.Authenticate(ctx, "PAUL@example.com", "secret123"); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if _, err := f.users.Authenticate(ctx, "paul@example.com", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: %v", err)
	}
	if _, err := f.users.Authenticate(ctx, "nobody@example.com", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultOptions())
	if _, err := f.users.Register(ctx, registerInput("taken@example.com")); err != nil {
		t.Fatalf("Register: %v", err)
	}

	tests := []struct {
		name  string
		edit  func(*RegisterInput)
		field string
	}{
		{"duplicate email", func(in *RegisterInput) { in.Email = "TAKEN@example.com" }, "email"},
		{"invalid email", func(in *RegisterInput) { in.Email = "not-an-email" }, "email"},
		{"short password", func(in *RegisterInput) { in.Password, in.PasswordConfirmation = "short", "short" }, "password"},
		{"confirmation mismatch", func(in *RegisterInput) { in.PasswordConfirmation = "secret124" }, "password_confirmation"},
		{"missing name", func(in *RegisterInput) { in.Name = " " }, "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := registerInput("new@example.com")
			tt.edit(&in)
			_, err := f.users.Register(ctx, in)
			assertValidation(t, err, tt.field)
		})
	}
}

func TestUpdateSelfCannotPromote(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultOptions())
	user, err := f.users.Register(ctx, registerInput("self@example.com"))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	promote := true
	updated, err := f.users.UpdateSelf(ctx, user.ID, UpdateUserInput{Name: "Dupont", Admin: &promote})
	if err != nil {
		t.Fatalf("UpdateSelf: %v", err)
	}
	if updated.Name != "Dupont" || updated.FirstName != "Paul" {
		t.Errorf("name = %q %q", updated.Name, updated.FirstName)
	}
	if updated.IsAdmin() {
		t.Error("self update must not change role")
	}

	_, err = f.users.UpdateSelf(ctx, user.ID, UpdateUserInput{Password: "newsecret1"})
	assertValidation(t, err, "password_confirmation")

	if _, err := f.users.UpdateSelf(ctx, user.ID, UpdateUserInput{Password: "newsecret1", PasswordConfirmation: "newsecret1"}); err != nil {
		t.Fatalf("password change: %v", err)
	}
	if _, err := f.users.Authenticate(ctx, "self@example.com", "newsecret1"); err != nil {
		t.Errorf("new password must work: %v", err)
	}
}

func TestAdminUserManagement(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultOptions())
	grant := f.adminGrant(t)
	user, err := f.users.Register(ctx, registerInput("managed@example.com"))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	f.seed(t, user.ID, "2024-06-01", "2024-06-02", models.StatusPending)

	promote := true
	updated, err := f.users.UpdateUser(ctx, grant, user.ID, UpdateUserInput{Admin: &promote})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if !updated.IsAdmin() {
		t.Error("admin update must promote")
	}

	if _, err := f.users.UpdateUser(ctx, access.AdminGrant{}, user.ID, UpdateUserInput{}); !errors.Is(err, ErrForbidden) {
		t.Errorf("zero grant update: %v", err)
	}
	if _, err := f.users.ListUsers(ctx, access.AdminGrant{}); !errors.Is(err, ErrForbidden) {
		t.Errorf("zero grant list: %v", err)
	}

	users, err := f.users.ListUsers(ctx, grant)
	if err != nil || len(users) != 2 {
		t.Fatalf("ListUsers = %d, %v", len(users), err)
	}

	if err := f.users.DeleteUser(ctx, grant, user.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if n := f.count(t); n != 0 {
		t.Errorf("absences must be deleted with the user, got %d", n)
	}

	var nf *NotFoundError
	if err := f.users.DeleteUser(ctx, grant, user.ID); !errors.As(err, &nf) {
		t.Errorf("second delete: %v", err)
	}
}

func TestLinkChat(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultOptions())
	first, err := f.users.Register(ctx, registerInput("first@example.com"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := f.users.Register(ctx, registerInput("second@example.com"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.users.LinkChat(ctx, "first@example.com", "bad-password", 100); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("bad password: %v", err)
	}

	if _, err := f.users.LinkChat(ctx, "first@example.com", "secret123", 100); err != nil {
		t.Fatalf("LinkChat: %v", err)
	}
	got, err := f.users.GetByChatID(ctx, 100)
	if err != nil || got.ID != first.ID {
		t.Fatalf("GetByChatID = %+v, %v", got, err)
	}

	// Чат переходит к другому аккаунту
	if _, err := f.users.LinkChat(ctx, "second@example.com", "secret123", 100); err != nil {
		t.Fatalf("relink: %v", err)
	}
	got, err = f.users.GetByChatID(ctx, 100)
	if err != nil || got.ID != second.ID {
		t.Fatalf("after relink = %+v, %v", got, err)
	}

	reloaded, err := f.users.GetUser(ctx, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.ChatID != nil {
		t.Errorf("previous owner must be unlinked, chat = %d", *reloaded.ChatID)
	}
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultOptions())

	if err := f.users.EnsureAdmin(ctx, "", ""); err != nil {
		t.Fatalf("empty email must be a no-op: %v", err)
	}
	if err := f.users.EnsureAdmin(ctx, "boss@example.com", "short"); err == nil {
		t.Fatal("short password must fail")
	}
	if err := f.users.EnsureAdmin(ctx, "boss@example.com", "bosspassword"); err != nil {
		t.Fatalf("EnsureAdmin create: %v", err)
	}
	if err := f.users.EnsureAdmin(ctx, "boss@example.com", "bosspassword"); err != nil {
		t.Fatalf("EnsureAdmin repeat: %v", err)
	}

	boss, err := f.users.Authenticate(ctx, "boss@example.com", "bosspassword")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if !boss.IsAdmin() {
		t.Error("base admin must have admin role")
	}

	user, err := f.users.Register(ctx, registerInput("promoted@example.com"))
	if err != nil {
		t.Fatal(err)
	}
	if err := f.users.EnsureAdmin(ctx, "promoted@example.com", ""); err != nil {
		t.Fatalf("EnsureAdmin promote: %v", err)
	}
	reloaded, err := f.users.GetUser(ctx, user.ID)
	if err != nil || !reloaded.IsAdmin() {
		t.Errorf("existing user must be promoted: %+v, %v", reloaded, err)
	}
}
