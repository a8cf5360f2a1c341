package listing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/crvarsha0102/HabiTrack/internal/user"
)

// Sentinel errors mapped to HTTP statuses by the web layer.
var (
	ErrInvalid   = errors.New("invalid listing")
	ErrForbidden = errors.New("not allowed")
)

// Service applies listing business rules on top of the repository.
type Service struct {
	repo  *Repository
	users *user.Repository
}

// NewService creates a listing service.
func NewService(repo *Repository, users *user.Repository) *Service {
	return &Service{repo: repo, users: users}
}

// CreateInput carries the fields of a listing create request.
type CreateInput struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Address      string   `json:"address"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	ZipCode      string   `json:"zipCode"`
	Price        float64  `json:"price"`
	Bedrooms     *int64   `json:"bedrooms"`
	Bathrooms    *int64   `json:"bathrooms"`
	SquareFeet   *int64   `json:"squareFeet"`
	Furnished    *bool    `json:"furnished"`
	Parking      *bool    `json:"parking"`
	Amenities    string   `json:"amenities"`
	Status       string   `json:"status"`
	ListingType  string   `json:"listingType"`
	PropertyType string   `json:"propertyType"`
	ImageURLs    []string `json:"imageUrls"`
}

// Create validates and stores a new listing owned by ownerID.
func (s *Service) Create(ownerID int64, in CreateInput) (*Listing, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalid)
	}
	if strings.TrimSpace(in.Address) == "" {
		return nil, fmt.Errorf("%w: address is required", ErrInvalid)
	}
	if in.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrInvalid)
	}

	propertyType, err := ParsePropertyType(in.PropertyType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	listingType := strings.ToUpper(strings.TrimSpace(in.ListingType))
	if listingType == "" {
		listingType = DefaultListingType
	}

	l := &Listing{
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		Address:      in.Address,
		City:         in.City,
		State:        in.State,
		ZipCode:      in.ZipCode,
		Price:        in.Price,
		Bedrooms:     in.Bedrooms,
		Bathrooms:    in.Bathrooms,
		SquareFeet:   in.SquareFeet,
		Furnished:    in.Furnished,
		Parking:      in.Parking,
		Amenities:    in.Amenities,
		Status:       ParseStatus(in.Status),
		ListingType:  listingType,
		PropertyType: propertyType,
		ImageURLs:    sanitizeImageURLs(in.ImageURLs),
		UserID:       ownerID,
	}

	return s.repo.Insert(l)
}

// sanitizeImageURLs keeps only usable image URLs. When none survive,
// the listing gets exactly one placeholder.
func sanitizeImageURLs(urls []string) []string {
	var valid []string
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if validImageURL(u) {
			valid = append(valid, u)
		}
	}
	if len(valid) == 0 {
		return []string{DefaultImageURL}
	}
	return valid
}

func validImageURL(u string) bool {
	return strings.HasPrefix(u, "http://") ||
		strings.HasPrefix(u, "https://") ||
		strings.HasPrefix(u, "data:image")
}

// Get returns a listing with owner display fields populated.
func (s *Service) Get(id int64) (*Listing, error) {
	l, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	s.populateOwner(l)
	return l, nil
}

// populateOwner fills the read-time owner display fields. A missing
// owner leaves them empty rather than failing the read.
func (s *Service) populateOwner(l *Listing) {
	owner, err := s.users.GetByID(l.UserID)
	if err != nil {
		return
	}
	l.OwnerName = owner.FullName()
	l.ContactEmail = owner.Email
	l.ContactPhone = owner.Phone
}

// Recent returns the newest active listings.
func (s *Service) Recent(limit int) ([]*Listing, error) {
	return s.repo.Recent(StatusActive, limit)
}

// Search returns listings matching the options.
func (s *Service) Search(opts SearchOptions) ([]*Listing, error) {
	return s.repo.Search(opts)
}

// ByUser returns a user's active listings.
func (s *Service) ByUser(userID int64) ([]*Listing, error) {
	return s.repo.ByUser(userID, StatusActive)
}

// UpdateInput carries the fields of a partial listing update. Nil
// fields keep their current values.
type UpdateInput struct {
	Name         *string  `json:"name"`
	Description  *string  `json:"description"`
	Address      *string  `json:"address"`
	City         *string  `json:"city"`
	State        *string  `json:"state"`
	ZipCode      *string  `json:"zipCode"`
	Price        *float64 `json:"price"`
	Bedrooms     *int64   `json:"bedrooms"`
	Bathrooms    *int64   `json:"bathrooms"`
	SquareFeet   *int64   `json:"squareFeet"`
	Furnished    *bool    `json:"furnished"`
	Parking      *bool    `json:"parking"`
	Amenities    *string  `json:"amenities"`
	Status       *string  `json:"status"`
	ListingType  *string  `json:"listingType"`
	PropertyType *string  `json:"propertyType"`
	ImageURLs    []string `json:"imageUrls"`
}

// Update applies a partial update. Only the owner or an admin may
// update; an unknown status value keeps the existing one.
func (s *Service) Update(actor *user.User, id int64, in UpdateInput) (*Listing, error) {
	current, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !canModify(actor, current) {
		return nil, ErrForbidden
	}

	if in.Price != nil && *in.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrInvalid)
	}

	f := UpdateFields{
		Name:        in.Name,
		Description: in.Description,
		Address:     in.Address,
		City:        in.City,
		State:       in.State,
		ZipCode:     in.ZipCode,
		Price:       in.Price,
		Bedrooms:    in.Bedrooms,
		Bathrooms:   in.Bathrooms,
		SquareFeet:  in.SquareFeet,
		Furnished:   in.Furnished,
		Parking:     in.Parking,
		Amenities:   in.Amenities,
		ListingType: in.ListingType,
	}

	if in.Status != nil && ValidStatus(*in.Status) {
		st := ParseStatus(*in.Status)
		f.Status = &st
	}
	if in.PropertyType != nil {
		pt, err := ParsePropertyType(*in.PropertyType)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		f.PropertyType = &pt
	}
	if in.ImageURLs != nil {
		f.ImageURLs = sanitizeImageURLs(in.ImageURLs)
	}

	updated, err := s.repo.Update(id, f)
	if err != nil {
		return nil, err
	}
	s.populateOwner(updated)
	return updated, nil
}

// SetStatus changes a listing's status. Owner or admin only.
func (s *Service) SetStatus(actor *user.User, id int64, status string) (*Listing, error) {
	current, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !canModify(actor, current) {
		return nil, ErrForbidden
	}
	if !ValidStatus(status) {
		return nil, fmt.Errorf("%w: invalid status: %s", ErrInvalid, status)
	}

	if err := s.repo.UpdateStatus(id, ParseStatus(status)); err != nil {
		return nil, err
	}
	return s.repo.GetByID(id)
}

// Delete removes a listing. Owner or admin only.
func (s *Service) Delete(actor *user.User, id int64) error {
	current, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if !canModify(actor, current) {
		return ErrForbidden
	}
	return s.repo.Delete(id)
}

func canModify(actor *user.User, l *Listing) bool {
	return actor != nil && (actor.ID == l.UserID || actor.IsAdmin())
}
