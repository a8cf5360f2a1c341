package user

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/crvarsha0102/HabiTrack/internal/db"
)

func setupRepo(t *testing.T) *Repository {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() {
		if err := database.Close(); err != nil {
			t.Errorf("closing test db: %v", err)
		}
	})
	return NewRepository(database)
}

func TestCreateDefaults(t *testing.T) {
	repo := setupRepo(t)

	u, err := repo.Create(&User{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "  Ada@Example.COM ",
		Password:  "hash",
	})
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}

	if u.ID == 0 {
		t.Error("ID not assigned")
	}
	if u.Email != "ada@example.com" {
		t.Errorf("email = %q, want lowercased trimmed", u.Email)
	}
	if u.Username != "Ada Lovelace" {
		t.Errorf("username = %q, want derived from name", u.Username)
	}
	if u.Avatar != DefaultAvatarURL {
		t.Errorf("avatar = %q, want default", u.Avatar)
	}
	if u.Role != RoleUser {
		t.Errorf("role = %q, want %q", u.Role, RoleUser)
	}
	if !u.IsActive {
		t.Error("new user not active")
	}
}

func TestCreateKeepsExplicitRole(t *testing.T) {
	repo := setupRepo(t)

	u, err := repo.Create(&User{
		FirstName: "Root",
		Email:     "root@example.com",
		Password:  "hash",
		Role:      RoleAdmin,
	})
	if err != nil {
		t.Fatalf("creating admin: %v", err)
	}
	if u.Role != RoleAdmin {
		t.Errorf("role = %q, want %q", u.Role, RoleAdmin)
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	repo := setupRepo(t)

	if _, err := repo.Create(&User{FirstName: "A", Email: "dup@example.com", Password: "h"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := repo.Create(&User{FirstName: "B", Email: "DUP@example.com", Password: "h"})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("err = %v, want ErrDuplicateEmail", err)
	}
}

func TestGetByEmailCaseInsensitive(t *testing.T) {
	repo := setupRepo(t)

	created, err := repo.Create(&User{FirstName: "C", Email: "case@example.com", Password: "h"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	u, err := repo.GetByEmail("CASE@Example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if u.ID != created.ID {
		t.Errorf("got user %d, want %d", u.ID, created.ID)
	}
}

func TestUpdatePartialFields(t *testing.T) {
	repo := setupRepo(t)

	created, err := repo.Create(&User{FirstName: "Old", LastName: "Name", Email: "up@example.com", Password: "h"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	first := "New"
	phone := "555-0101"
	u, err := repo.Update(created.ID, UpdateFields{FirstName: &first, Phone: &phone})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if u.FirstName != "New" {
		t.Errorf("first name = %q, want New", u.FirstName)
	}
	if u.Phone != "555-0101" {
		t.Errorf("phone = %q, want 555-0101", u.Phone)
	}
	if u.LastName != "Name" {
		t.Errorf("last name = %q, unset field should keep its value", u.LastName)
	}
}

func TestSetActiveAndRole(t *testing.T) {
	repo := setupRepo(t)

	created, err := repo.Create(&User{FirstName: "F", Email: "flags@example.com", Password: "h"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.SetActive(created.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if err := repo.SetRole(created.ID, RoleAgent); err != nil {
		t.Fatalf("set role: %v", err)
	}

	u, err := repo.GetByID(created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u.IsActive {
		t.Error("user still active after SetActive(false)")
	}
	if u.Role != RoleAgent {
		t.Errorf("role = %q, want %q", u.Role, RoleAgent)
	}

	if err := repo.SetActive(9999, true); err == nil || !errors.Is(err, ErrNotFound) {
		t.Errorf("SetActive on missing user: err = %v, want ErrNotFound", err)
	}
}

func TestDeleteUser(t *testing.T) {
	repo := setupRepo(t)

	created, err := repo.Create(&User{FirstName: "D", Email: "gone@example.com", Password: "h"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.Delete(created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetByID(created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after delete: err = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}

func TestList(t *testing.T) {
	repo := setupRepo(t)

	for _, email := range []string{"l1@example.com", "l2@example.com", "l3@example.com"} {
		if _, err := repo.Create(&User{FirstName: "L", Email: email, Password: "h"}); err != nil {
			t.Fatalf("create %s: %v", email, err)
		}
	}

	users, err := repo.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 3 {
		t.Errorf("list length = %d, want 3", len(users))
	}
}
