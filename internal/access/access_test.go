package access

import (
	"errors"
	"testing"

	"absence-tracker/internal/models"
)

func TestAdminGrant(t *testing.T) {
	admin := Principal{UserID: 7, Role: models.RoleAdmin}
	grant, err := admin.Admin()
	if err != nil {
		t.Fatalf("admin principal: %v", err)
	}
	if !grant.Valid() || grant.AdminID() != 7 {
		t.Fatalf("unexpected grant %+v", grant)
	}

	employee := Principal{UserID: 8, Role: models.RoleEmployee}
	if _, err := employee.Admin(); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("employee principal: err = %v, want ErrNotAdmin", err)
	}

	anonymous := Principal{Role: models.RoleAdmin}
	if _, err := anonymous.Admin(); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("principal without id: err = %v, want ErrNotAdmin", err)
	}

	var zero AdminGrant
	if zero.Valid() {
		t.Fatal("zero grant must be invalid")
	}
}
