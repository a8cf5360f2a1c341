package user

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Errors returned by the repository, mapped to HTTP statuses in the web layer.
var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("user with this email already exists")
)

// Repository provides CRUD operations for users.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a user repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectColumns = `id, first_name, last_name, username, email, password, phone, avatar, role, is_active, created_at, updated_at`

// scanUser scans a user from a database row.
func scanUser(row interface{ Scan(...interface{}) error }) (*User, error) {
	var u User
	var role string
	var isActive int
	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.Email, &u.Password,
		&u.Phone, &u.Avatar, &role, &isActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Role = Role(role)
	u.IsActive = isActive != 0
	return &u, nil
}

// Create inserts a new user and returns it with its generated ID.
// The email is stored lowercased; the username is derived from the name parts.
func (r *Repository) Create(u *User) (*User, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Username == "" {
		u.Username = strings.TrimSpace(u.FirstName + " " + u.LastName)
	}
	if u.Avatar == "" {
		u.Avatar = DefaultAvatarURL
	}
	if u.Role == "" {
		u.Role = RoleUser
	}

	result, err := r.db.Exec(
		`INSERT INTO users (first_name, last_name, username, email, password, phone, avatar, role)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.FirstName, u.LastName, u.Username, u.Email, u.Password, u.Phone, u.Avatar, string(u.Role),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("inserting user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting insert id: %w", err)
	}

	return r.GetByID(id)
}

// GetByID returns a user by ID.
func (r *Repository) GetByID(id int64) (*User, error) {
	row := r.db.QueryRow(fmt.Sprintf("SELECT %s FROM users WHERE id = ?", selectColumns), id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user %d: %w", id, err)
	}
	return u, nil
}

// GetByEmail returns a user by email (case-insensitive).
func (r *Repository) GetByEmail(email string) (*User, error) {
	row := r.db.QueryRow(
		fmt.Sprintf("SELECT %s FROM users WHERE email = ?", selectColumns),
		strings.ToLower(strings.TrimSpace(email)),
	)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user %s: %w", email, err)
	}
	return u, nil
}

// UpdateFields is a partial update: only non-nil fields overwrite.
type UpdateFields struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Avatar    *string
	Password  *string // already hashed by the caller
}

// Update applies a partial update and returns the updated user.
func (r *Repository) Update(id int64, f UpdateFields) (*User, error) {
	u, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	if f.FirstName != nil {
		u.FirstName = *f.FirstName
	}
	if f.LastName != nil {
		u.LastName = *f.LastName
	}
	if f.Phone != nil {
		u.Phone = *f.Phone
	}
	if f.Avatar != nil {
		u.Avatar = *f.Avatar
	}
	if f.Password != nil {
		u.Password = *f.Password
	}
	u.Username = strings.TrimSpace(u.FirstName + " " + u.LastName)

	_, err = r.db.Exec(
		`UPDATE users SET first_name = ?, last_name = ?, username = ?, phone = ?, avatar = ?, password = ?,
		 updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		u.FirstName, u.LastName, u.Username, u.Phone, u.Avatar, u.Password, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating user %d: %w", id, err)
	}

	return r.GetByID(id)
}

// UpdatePassword replaces the stored hash for the given user.
func (r *Repository) UpdatePassword(id int64, hash string) error {
	result, err := r.db.Exec(
		"UPDATE users SET password = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		hash, id,
	)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// SetActive flips the account's active flag.
func (r *Repository) SetActive(id int64, active bool) error {
	v := 0
	if active {
		v = 1
	}
	result, err := r.db.Exec(
		"UPDATE users SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		v, id,
	)
	if err != nil {
		return fmt.Errorf("setting active flag: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// SetRole changes the account's role.
func (r *Repository) SetRole(id int64, role Role) error {
	result, err := r.db.Exec(
		"UPDATE users SET role = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		string(role), id,
	)
	if err != nil {
		return fmt.Errorf("setting role: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a user. Owned listings cascade-delete with the account.
func (r *Repository) Delete(id int64) error {
	result, err := r.db.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting user %d: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all users ordered by creation time, newest first.
func (r *Repository) List() (users []*User, err error) {
	rows, err := r.db.Query(fmt.Sprintf("SELECT %s FROM users ORDER BY created_at DESC, id DESC", selectColumns))
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}
