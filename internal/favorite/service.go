package favorite

import (
	"errors"

	"github.com/crvarsha0102/HabiTrack/internal/listing"
)

// Service applies favorite rules on top of the repository.
type Service struct {
	repo     *Repository
	listings *listing.Repository
}

// NewService creates a favorite service.
func NewService(repo *Repository, listings *listing.Repository) *Service {
	return &Service{repo: repo, listings: listings}
}

// Toggle flips a favorite and reports the new state: true when the
// listing is now favorited, false when it was removed.
func (s *Service) Toggle(userID, listingID int64) (bool, error) {
	if _, err := s.listings.GetByID(listingID); err != nil {
		return false, err
	}

	exists, err := s.repo.Exists(userID, listingID)
	if err != nil {
		return false, err
	}
	if exists {
		if err := s.repo.Remove(userID, listingID); err != nil {
			return false, err
		}
		return false, nil
	}
	if err := s.repo.Add(userID, listingID); err != nil {
		return false, err
	}
	return true, nil
}

// Check reports whether the user has favorited the listing.
func (s *Service) Check(userID, listingID int64) (bool, error) {
	return s.repo.Exists(userID, listingID)
}

// Count returns how many users have favorited the listing.
func (s *Service) Count(listingID int64) (int64, error) {
	return s.repo.Count(listingID)
}

// Listings returns the user's favorited listings, most recently
// saved first. Listings deleted since favoriting are skipped.
func (s *Service) Listings(userID int64) ([]*listing.Listing, error) {
	ids, err := s.repo.ListingIDs(userID)
	if err != nil {
		return nil, err
	}

	var listings []*listing.Listing
	for _, id := range ids {
		l, err := s.listings.GetByID(id)
		if errors.Is(err, listing.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, nil
}
