package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/crvarsha0102/HabiTrack/internal/auth"
	"github.com/crvarsha0102/HabiTrack/internal/user"
)

// handleUsers routes /api/users/ requests.
func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/users/")

	switch {
	case strings.HasPrefix(path, "public/") && r.Method == http.MethodGet:
		s.handleUserPublic(w, r, strings.TrimPrefix(path, "public/"))
	case strings.HasPrefix(path, "listings/") && r.Method == http.MethodGet:
		s.handleUserListings(w, r, strings.TrimPrefix(path, "listings/"))
	case strings.HasPrefix(path, "update/") && r.Method == http.MethodPut:
		s.handleUserUpdate(w, r, strings.TrimPrefix(path, "update/"))
	case strings.HasPrefix(path, "delete/") && r.Method == http.MethodDelete:
		s.handleUserDelete(w, r, strings.TrimPrefix(path, "delete/"))
	case r.Method == http.MethodGet:
		s.handleUserGet(w, r, path)
	default:
		failStatus(w, http.StatusNotFound, "unknown users endpoint")
	}
}

// handleUserGet returns the full record. Self or admin only.
func (s *Server) handleUserGet(w http.ResponseWriter, r *http.Request, idStr string) {
	actor := requireUser(w, r)
	if actor == nil {
		return
	}
	id, ok := parseID(idStr)
	if !ok {
		failStatus(w, http.StatusBadRequest, "invalid user ID")
		return
	}
	if actor.ID != id && !actor.IsAdmin() {
		failStatus(w, http.StatusForbidden, "not allowed")
		return
	}

	u, err := s.users.GetByID(id)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, "user", u)
}

// handleUserPublic returns the public profile. No auth required.
func (s *Server) handleUserPublic(w http.ResponseWriter, r *http.Request, idStr string) {
	id, ok := parseID(idStr)
	if !ok {
		failStatus(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	u, err := s.users.GetByID(id)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, "user", u.Public())
}

// handleUserListings returns a user's active listings. No auth required.
func (s *Server) handleUserListings(w http.ResponseWriter, r *http.Request, idStr string) {
	id, ok := parseID(idStr)
	if !ok {
		failStatus(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	listings, err := s.listings.ByUser(id)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, "listings", listings)
}

type userUpdateRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
	Avatar    *string `json:"avatar"`
	Password  *string `json:"password"`
}

// handleUserUpdate applies a partial profile update. Self or admin only.
func (s *Server) handleUserUpdate(w http.ResponseWriter, r *http.Request, idStr string) {
	actor := requireUser(w, r)
	if actor == nil {
		return
	}
	id, ok := parseID(idStr)
	if !ok {
		failStatus(w, http.StatusBadRequest, "invalid user ID")
		return
	}
	if actor.ID != id && !actor.IsAdmin() {
		failStatus(w, http.StatusForbidden, "not allowed")
		return
	}

	var req userUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		failStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var hashed *string
	if req.Password != nil {
		if len(*req.Password) < 6 {
			failStatus(w, http.StatusBadRequest, "password must be at least 6 characters")
			return
		}
		h, err := auth.HashPassword(*req.Password)
		if err != nil {
			fail(w, err)
			return
		}
		hashed = &h
	}

	u, err := s.users.Update(id, user.UpdateFields{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Avatar:    req.Avatar,
		Password:  hashed,
	})
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, "user updated", u)
}

// handleUserDelete removes an account and its listings. Self or admin only.
func (s *Server) handleUserDelete(w http.ResponseWriter, r *http.Request, idStr string) {
	actor := requireUser(w, r)
	if actor == nil {
		return
	}
	id, ok := parseID(idStr)
	if !ok {
		failStatus(w, http.StatusBadRequest, "invalid user ID")
		return
	}
	if actor.ID != id && !actor.IsAdmin() {
		failStatus(w, http.StatusForbidden, "not allowed")
		return
	}

	if err := s.users.Delete(id); err != nil {
		fail(w, err)
		return
	}
	if actor.ID == id {
		s.clearTokenCookie(w)
	}
	respond(w, http.StatusOK, "user deleted", nil)
}
