package listing

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when no listing matches the given ID.
var ErrNotFound = errors.New("listing not found")

// Repository provides CRUD and search operations for listings.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a listing repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const insertSQL = `INSERT INTO listings
	(name, description, address, city, state, zip_code, price, bedrooms, bathrooms, square_feet, furnished, parking, amenities, status, listing_type, property_type, user_id)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const selectColumns = `id, name, description, address, city, state, zip_code, price, bedrooms, bathrooms, square_feet, furnished, parking, amenities, status, listing_type, property_type, user_id, created_at, updated_at`

// scanListing reads one listing row. Image URLs are loaded separately.
func scanListing(row interface{ Scan(...interface{}) error }) (*Listing, error) {
	var l Listing
	var city, state, zip sql.NullString
	var bedrooms, bathrooms, sqft sql.NullInt64
	var furnished, parking sql.NullBool
	err := row.Scan(
		&l.ID, &l.Name, &l.Description, &l.Address, &city, &state, &zip,
		&l.Price, &bedrooms, &bathrooms, &sqft, &furnished, &parking,
		&l.Amenities, &l.Status, &l.ListingType, &l.PropertyType,
		&l.UserID, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.City = city.String
	l.State = state.String
	l.ZipCode = zip.String
	if bedrooms.Valid {
		l.Bedrooms = &bedrooms.Int64
	}
	if bathrooms.Valid {
		l.Bathrooms = &bathrooms.Int64
	}
	if sqft.Valid {
		l.SquareFeet = &sqft.Int64
	}
	if furnished.Valid {
		l.Furnished = &furnished.Bool
	}
	if parking.Valid {
		l.Parking = &parking.Bool
	}
	return &l, nil
}

// Insert adds a new listing and its images, returning it with its
// generated ID.
func (r *Repository) Insert(l *Listing) (*Listing, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.Exec(insertSQL,
		l.Name, l.Description, l.Address, l.City, l.State, l.ZipCode,
		l.Price, l.Bedrooms, l.Bathrooms, l.SquareFeet, l.Furnished, l.Parking,
		l.Amenities, string(l.Status), l.ListingType, string(l.PropertyType), l.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting listing: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting insert id: %w", err)
	}

	if err := insertImages(tx, id, l.ImageURLs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing listing: %w", err)
	}

	return r.GetByID(id)
}

func insertImages(tx *sql.Tx, listingID int64, urls []string) error {
	for i, url := range urls {
		if _, err := tx.Exec(
			"INSERT INTO listing_images (listing_id, position, url) VALUES (?, ?, ?)",
			listingID, i, url,
		); err != nil {
			return fmt.Errorf("inserting image %d: %w", i, err)
		}
	}
	return nil
}

// GetByID returns a listing by its ID, images included.
func (r *Repository) GetByID(id int64) (*Listing, error) {
	query := fmt.Sprintf("SELECT %s FROM listings WHERE id = ?", selectColumns)
	row := r.db.QueryRow(query, id)

	l, err := scanListing(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying listing %d: %w", id, err)
	}

	if err := r.loadImages(l); err != nil {
		return nil, err
	}

	return l, nil
}

func (r *Repository) loadImages(l *Listing) (err error) {
	rows, err := r.db.Query(
		"SELECT url FROM listing_images WHERE listing_id = ? ORDER BY position",
		l.ID,
	)
	if err != nil {
		return fmt.Errorf("querying images for listing %d: %w", l.ID, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return fmt.Errorf("scanning image: %w", err)
		}
		l.ImageURLs = append(l.ImageURLs, url)
	}

	return rows.Err()
}

// sortColumns whitelists the fields a search may order by.
var sortColumns = map[string]string{
	"created_at": "created_at",
	"price":      "price",
	"updated_at": "updated_at",
}

// SearchOptions controls filtering, ordering, and paging for Search.
type SearchOptions struct {
	SearchTerm   string
	Status       Status       // empty = no filter
	ListingType  string       // empty = no filter
	PropertyType PropertyType // empty = no filter
	MinPrice     *float64
	MaxPrice     *float64
	Furnished    *bool // nil = both
	Parking      *bool // nil = both
	Limit        int
	Offset       int
	Sort         string // created_at, price, updated_at
	Order        string // asc or desc
}

// Search returns listings matching the options, paged with a real
// LIMIT/OFFSET so Offset skips rows across the whole result set.
func (r *Repository) Search(opts SearchOptions) ([]*Listing, error) {
	query := fmt.Sprintf("SELECT %s FROM listings", selectColumns)
	var args []interface{}
	var conditions []string

	if opts.SearchTerm != "" {
		conditions = append(conditions, "name LIKE ? COLLATE NOCASE")
		args = append(args, "%"+opts.SearchTerm+"%")
	}
	if opts.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(opts.Status))
	}
	if opts.ListingType != "" {
		conditions = append(conditions, "listing_type = ?")
		args = append(args, opts.ListingType)
	}
	if opts.PropertyType != "" {
		conditions = append(conditions, "property_type = ?")
		args = append(args, string(opts.PropertyType))
	}
	if opts.MinPrice != nil {
		conditions = append(conditions, "price >= ?")
		args = append(args, *opts.MinPrice)
	}
	if opts.MaxPrice != nil {
		conditions = append(conditions, "price <= ?")
		args = append(args, *opts.MaxPrice)
	}
	if opts.Furnished != nil {
		conditions = append(conditions, "furnished = ?")
		args = append(args, *opts.Furnished)
	}
	if opts.Parking != nil {
		conditions = append(conditions, "parking = ?")
		args = append(args, *opts.Parking)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	sort, ok := sortColumns[opts.Sort]
	if !ok {
		sort = "created_at"
	}
	order := "DESC"
	if strings.EqualFold(opts.Order, "asc") {
		order = "ASC"
	}
	// The id tiebreaker keeps rows created in the same second in a
	// stable order, so OFFSET pagination never skips or repeats.
	query += fmt.Sprintf(" ORDER BY %s %s, id %s", sort, order, order)

	limit := opts.Limit
	if limit <= 0 {
		limit = 9
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	return r.queryListings(query, args...)
}

// Recent returns the newest listings with the given status.
func (r *Repository) Recent(status Status, limit int) ([]*Listing, error) {
	if limit <= 0 {
		limit = 6
	}
	query := fmt.Sprintf(
		"SELECT %s FROM listings WHERE status = ? ORDER BY created_at DESC, id DESC LIMIT ?",
		selectColumns,
	)
	return r.queryListings(query, string(status), limit)
}

// ByUser returns a user's listings with the given status, newest first.
func (r *Repository) ByUser(userID int64, status Status) ([]*Listing, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM listings WHERE user_id = ? AND status = ? ORDER BY created_at DESC, id DESC",
		selectColumns,
	)
	return r.queryListings(query, userID, string(status))
}

func (r *Repository) queryListings(query string, args ...interface{}) (listings []*Listing, err error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying listings: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning listing: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating listings: %w", err)
	}

	for _, l := range listings {
		if err := r.loadImages(l); err != nil {
			return nil, err
		}
	}

	return listings, nil
}

// UpdateFields holds optional changes for a partial listing update.
// Nil fields keep their current values.
type UpdateFields struct {
	Name         *string
	Description  *string
	Address      *string
	City         *string
	State        *string
	ZipCode      *string
	Price        *float64
	Bedrooms     *int64
	Bathrooms    *int64
	SquareFeet   *int64
	Furnished    *bool
	Parking      *bool
	Amenities    *string
	Status       *Status
	ListingType  *string
	PropertyType *PropertyType
	ImageURLs    []string // nil keeps existing images
}

// Update applies the non-nil fields to a listing and returns the
// updated row.
func (r *Repository) Update(id int64, f UpdateFields) (*Listing, error) {
	var sets []string
	var args []interface{}

	set := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if f.Name != nil {
		set("name", *f.Name)
	}
	if f.Description != nil {
		set("description", *f.Description)
	}
	if f.Address != nil {
		set("address", *f.Address)
	}
	if f.City != nil {
		set("city", *f.City)
	}
	if f.State != nil {
		set("state", *f.State)
	}
	if f.ZipCode != nil {
		set("zip_code", *f.ZipCode)
	}
	if f.Price != nil {
		set("price", *f.Price)
	}
	if f.Bedrooms != nil {
		set("bedrooms", *f.Bedrooms)
	}
	if f.Bathrooms != nil {
		set("bathrooms", *f.Bathrooms)
	}
	if f.SquareFeet != nil {
		set("square_feet", *f.SquareFeet)
	}
	if f.Furnished != nil {
		set("furnished", *f.Furnished)
	}
	if f.Parking != nil {
		set("parking", *f.Parking)
	}
	if f.Amenities != nil {
		set("amenities", *f.Amenities)
	}
	if f.Status != nil {
		set("status", string(*f.Status))
	}
	if f.ListingType != nil {
		set("listing_type", *f.ListingType)
	}
	if f.PropertyType != nil {
		set("property_type", string(*f.PropertyType))
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if len(sets) > 0 {
		sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
		query := "UPDATE listings SET " + strings.Join(sets, ", ") + " WHERE id = ?"
		args = append(args, id)

		result, err := tx.Exec(query, args...)
		if err != nil {
			return nil, fmt.Errorf("updating listing %d: %w", id, err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("checking rows affected: %w", err)
		}
		if rows == 0 {
			return nil, ErrNotFound
		}
	}

	if f.ImageURLs != nil {
		if _, err := tx.Exec("DELETE FROM listing_images WHERE listing_id = ?", id); err != nil {
			return nil, fmt.Errorf("clearing images for listing %d: %w", id, err)
		}
		if err := insertImages(tx, id, f.ImageURLs); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing update: %w", err)
	}

	return r.GetByID(id)
}

// UpdateStatus sets a listing's status.
func (r *Repository) UpdateStatus(id int64, status Status) error {
	result, err := r.db.Exec(
		"UPDATE listings SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a listing by ID. Images and favorites cascade.
func (r *Repository) Delete(id int64) error {
	result, err := r.db.Exec("DELETE FROM listings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting listing: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}
