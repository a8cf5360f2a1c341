// Package listing holds the property listing model, repository, and service.
package listing

import (
	"fmt"
	"strings"
	"time"
)

// DefaultImageURL is stored when a listing is created without any
// usable image URL.
const DefaultImageURL = "https://i.imgur.com/n6B1Fuw.jpg"

// DefaultListingType is used when a create request omits the listing type.
const DefaultListingType = "SALE"

// Status is a listing's lifecycle state.
type Status string

// Listing statuses.
const (
	StatusActive  Status = "ACTIVE"
	StatusPending Status = "PENDING"
	StatusSold    Status = "SOLD"
	StatusDeleted Status = "DELETED"
)

// ParseStatus maps a string to a Status, falling back to ACTIVE for
// unknown values.
func ParseStatus(s string) Status {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusActive, StatusPending, StatusSold, StatusDeleted:
		return Status(strings.ToUpper(strings.TrimSpace(s)))
	default:
		return StatusActive
	}
}

// ValidStatus reports whether s names a known status.
func ValidStatus(s string) bool {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusActive, StatusPending, StatusSold, StatusDeleted:
		return true
	}
	return false
}

// PropertyType classifies what kind of property a listing is for.
type PropertyType string

// Property types.
const (
	TypeHouse      PropertyType = "HOUSE"
	TypeApartment  PropertyType = "APARTMENT"
	TypeCondo      PropertyType = "CONDO"
	TypeTownhouse  PropertyType = "TOWNHOUSE"
	TypeLand       PropertyType = "LAND"
	TypeCommercial PropertyType = "COMMERCIAL"
	TypeOther      PropertyType = "OTHER"
)

// ParsePropertyType maps a string to a PropertyType. Empty input
// defaults to HOUSE; unknown values are an error.
func ParsePropertyType(s string) (PropertyType, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return TypeHouse, nil
	}
	switch pt := PropertyType(s); pt {
	case TypeHouse, TypeApartment, TypeCondo, TypeTownhouse, TypeLand, TypeCommercial, TypeOther:
		return pt, nil
	}
	return "", fmt.Errorf("invalid property type: %s", s)
}

// Listing is a property listed for sale or rent.
type Listing struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Address      string       `json:"address"`
	City         string       `json:"city,omitempty"`
	State        string       `json:"state,omitempty"`
	ZipCode      string       `json:"zipCode,omitempty"`
	Price        float64      `json:"price"`
	Bedrooms     *int64       `json:"bedrooms,omitempty"`
	Bathrooms    *int64       `json:"bathrooms,omitempty"`
	SquareFeet   *int64       `json:"squareFeet,omitempty"`
	Furnished    *bool        `json:"furnished,omitempty"`
	Parking      *bool        `json:"parking,omitempty"`
	Amenities    string       `json:"amenities"`
	Status       Status       `json:"status"`
	ListingType  string       `json:"listingType"`
	PropertyType PropertyType `json:"propertyType"`
	ImageURLs    []string     `json:"imageUrls"`
	UserID       int64        `json:"userId"`

	// Owner display fields, populated from the owning user at read
	// time. Never persisted on the listing row.
	OwnerName    string `json:"ownerName,omitempty"`
	ContactEmail string `json:"contactEmail,omitempty"`
	ContactPhone string `json:"contactPhone,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
