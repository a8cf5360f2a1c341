package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/crvarsha0102/HabiTrack/internal/listing"
)

// parseID parses a path segment as an entity ID.
func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	return id, err == nil && id > 0
}

// handleListings routes /api/listings/ requests.
func (s *Server) handleListings(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/listings/")

	switch {
	case path == "create" && r.Method == http.MethodPost:
		s.handleListingCreate(w, r)
	case path == "get" && r.Method == http.MethodGet:
		s.handleListingRecent(w, r)
	case path == "search" && r.Method == http.MethodGet:
		s.handleListingSearch(w, r)
	case path == "user" && r.Method == http.MethodGet:
		s.handleListingMine(w, r)
	case strings.HasPrefix(path, "get/") && r.Method == http.MethodGet:
		s.handleListingGet(w, r, strings.TrimPrefix(path, "get/"))
	case strings.HasPrefix(path, "update/") && r.Method == http.MethodPut:
		s.handleListingUpdate(w, r, strings.TrimPrefix(path, "update/"))
	case strings.HasPrefix(path, "delete/") && r.Method == http.MethodDelete:
		s.handleListingDelete(w, r, strings.TrimPrefix(path, "delete/"))
	case strings.HasPrefix(path, "status/") && r.Method == http.MethodPut:
		s.handleListingStatus(w, r, strings.TrimPrefix(path, "status/"))
	default:
		failStatus(w, http.StatusNotFound, "unknown listings endpoint")
	}
}

func (s *Server) handleListingCreate(w http.ResponseWriter, r *http.Request) {
	u := requireUser(w, r)
	if u == nil {
		return
	}

	var in listing.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		failStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}

	l, err := s.listings.Create(u.ID, in)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusCreated, "listing created", l)
}

func (s *Server) handleListingGet(w http.ResponseWriter, r *http.Request, idStr string) {
	id, ok := parseID(idStr)
	if !ok {
		failStatus(w, http.StatusBadRequest, "invalid listing ID")
		return
	}

	l, err := s.listings.Get(id)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, "listing", l)
}

func (s *Server) handleListingRecent(w http.ResponseWriter, r *http.Request) {
	limit := 6
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	listings, err := s.listings.Recent(limit)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, "listings", listings)
}

// handleListingSearch parses the search query and delegates.
// A missing or unknown status falls back to ACTIVE; unknown property
// types are ignored rather than rejected, so a stale filter still
// returns results.
func (s *Server) handleListingSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := listing.SearchOptions{
		SearchTerm:  q.Get("searchTerm"),
		Status:      listing.StatusActive,
		ListingType: strings.ToUpper(strings.TrimSpace(q.Get("listingType"))),
		Sort:        q.Get("sort"),
		Order:       q.Get("order"),
		Limit:       9,
	}

	if v := q.Get("status"); v != "" && listing.ValidStatus(v) {
		opts.Status = listing.ParseStatus(v)
	}
	if v := q.Get("propertyType"); v != "" {
		if pt, err := listing.ParsePropertyType(v); err == nil {
			opts.PropertyType = pt
		}
	}
	if v := q.Get("minPrice"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			opts.MinPrice = &f
		}
	}
	if v := q.Get("maxPrice"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			opts.MaxPrice = &f
		}
	}
	if v := q.Get("furnished"); v == "true" || v == "false" {
		b := v == "true"
		opts.Furnished = &b
	}
	if v := q.Get("parking"); v == "true" || v == "false" {
		b := v == "true"
		opts.Parking = &b
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.Limit = n
		}
	}
	if v := q.Get("startIndex"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.Offset = n
		}
	}

	listings, err := s.listings.Search(opts)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, "listings", listings)
}

func (s *Server) handleListingMine(w http.ResponseWriter, r *http.Request) {
	u := requireUser(w, r)
	if u == nil {
		return
	}

	listings, err := s.listings.ByUser(u.ID)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, "listings", listings)
}

func (s *Server) handleListingUpdate(w http.ResponseWriter, r *http.Request, idStr string) {
	u := requireUser(w, r)
	if u == nil {
		return
	}
	id, ok := parseID(idStr)
	if !ok {
		failStatus(w, http.StatusBadRequest, "invalid listing ID")
		return
	}

	var in listing.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		failStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}

	l, err := s.listings.Update(u, id, in)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, "listing updated", l)
}

func (s *Server) handleListingDelete(w http.ResponseWriter, r *http.Request, idStr string) {
	u := requireUser(w, r)
	if u == nil {
		return
	}
	id, ok := parseID(idStr)
	if !ok {
		failStatus(w, http.StatusBadRequest, "invalid listing ID")
		return
	}

	if err := s.listings.Delete(u, id); err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, "listing deleted", nil)
}

func (s *Server) handleListingStatus(w http.ResponseWriter, r *http.Request, idStr string) {
	u := requireUser(w, r)
	if u == nil {
		return
	}
	id, ok := parseID(idStr)
	if !ok {
		failStatus(w, http.StatusBadRequest, "invalid listing ID")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		failStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}

	l, err := s.listings.SetStatus(u, id, req.Status)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, "status updated", l)
}
