package web

import (
	"net/http"
	"strings"
)

// handleFavorites routes /api/favorites and /api/favorites/ requests.
func (s *Server) handleFavorites(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/favorites")
	path = strings.TrimPrefix(path, "/")

	// /api/favorites/listing/{listingId}/count is public.
	if strings.HasPrefix(path, "listing/") && strings.HasSuffix(path, "/count") {
		if r.Method != http.MethodGet {
			failStatus(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		idStr := strings.TrimSuffix(strings.TrimPrefix(path, "listing/"), "/count")
		id, ok := parseID(idStr)
		if !ok {
			failStatus(w, http.StatusBadRequest, "invalid listing ID")
			return
		}
		count, err := s.favorites.Count(id)
		if err != nil {
			fail(w, err)
			return
		}
		respond(w, http.StatusOK, "favorite count", map[string]int64{"count": count})
		return
	}

	u := requireUser(w, r)
	if u == nil {
		return
	}

	if path == "" {
		if r.Method != http.MethodGet {
			failStatus(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		listings, err := s.favorites.Listings(u.ID)
		if err != nil {
			fail(w, err)
			return
		}
		respond(w, http.StatusOK, "favorites", listings)
		return
	}

	switch {
	case strings.HasSuffix(path, "/toggle") && r.Method == http.MethodPost:
		id, ok := parseID(strings.TrimSuffix(path, "/toggle"))
		if !ok {
			failStatus(w, http.StatusBadRequest, "invalid listing ID")
			return
		}
		favorited, err := s.favorites.Toggle(u.ID, id)
		if err != nil {
			fail(w, err)
			return
		}
		respond(w, http.StatusOK, "favorite toggled", map[string]bool{"favorited": favorited})
	case strings.HasSuffix(path, "/check") && r.Method == http.MethodGet:
		id, ok := parseID(strings.TrimSuffix(path, "/check"))
		if !ok {
			failStatus(w, http.StatusBadRequest, "invalid listing ID")
			return
		}
		favorited, err := s.favorites.Check(u.ID, id)
		if err != nil {
			fail(w, err)
			return
		}
		respond(w, http.StatusOK, "favorite check", map[string]bool{"favorited": favorited})
	default:
		failStatus(w, http.StatusNotFound, "unknown favorites endpoint")
	}
}
