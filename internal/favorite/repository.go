// Package favorite tracks which listings a user has saved.
package favorite

import (
	"database/sql"
	"fmt"
)

// Repository stores (user, listing) favorite pairs.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a favorite repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Add records a favorite. Adding an existing pair is a no-op thanks
// to the unique constraint.
func (r *Repository) Add(userID, listingID int64) error {
	if _, err := r.db.Exec(
		"INSERT OR IGNORE INTO favorites (user_id, listing_id) VALUES (?, ?)",
		userID, listingID,
	); err != nil {
		return fmt.Errorf("adding favorite: %w", err)
	}
	return nil
}

// Remove deletes a favorite pair if present.
func (r *Repository) Remove(userID, listingID int64) error {
	if _, err := r.db.Exec(
		"DELETE FROM favorites WHERE user_id = ? AND listing_id = ?",
		userID, listingID,
	); err != nil {
		return fmt.Errorf("removing favorite: %w", err)
	}
	return nil
}

// Exists reports whether the user has favorited the listing.
func (r *Repository) Exists(userID, listingID int64) (bool, error) {
	var n int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM favorites WHERE user_id = ? AND listing_id = ?",
		userID, listingID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking favorite: %w", err)
	}
	return n > 0, nil
}

// ListingIDs returns the listings the user has favorited, most
// recently saved first.
func (r *Repository) ListingIDs(userID int64) (ids []int64, err error) {
	rows, err := r.db.Query(
		"SELECT listing_id FROM favorites WHERE user_id = ? ORDER BY created_at DESC, id DESC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying favorites: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning favorite: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Count returns how many users have favorited the listing.
func (r *Repository) Count(listingID int64) (int64, error) {
	var n int64
	err := r.db.QueryRow("SELECT COUNT(*) FROM favorites WHERE listing_id = ?", listingID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting favorites: %w", err)
	}
	return n, nil
}
