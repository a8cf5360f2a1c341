package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/crvarsha0102/HabiTrack/internal/auth"
)

// handleAdmin routes /api/admin/ requests. All of them require the
// ADMIN role.
func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	admin := requireAdmin(w, r)
	if admin == nil {
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/admin/")

	if path == "users" && r.Method == http.MethodGet {
		s.handleAdminListUsers(w, r)
		return
	}
	if path == "reset-password" && r.Method == http.MethodPost {
		s.handleAdminResetPassword(w, r)
		return
	}
	if strings.HasPrefix(path, "users/") {
		s.handleAdminUser(w, r, strings.TrimPrefix(path, "users/"))
		return
	}

	failStatus(w, http.StatusNotFound, "unknown admin endpoint")
}

func (s *Server) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List()
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, "users", users)
}

// handleAdminUser routes /api/admin/users/{id}[/activate|/deactivate].
func (s *Server) handleAdminUser(w http.ResponseWriter, r *http.Request, path string) {
	if idStr, action, found := strings.Cut(path, "/"); found {
		id, ok := parseID(idStr)
		if !ok {
			failStatus(w, http.StatusBadRequest, "invalid user ID")
			return
		}
		if r.Method != http.MethodPut {
			failStatus(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		switch action {
		case "activate":
			s.handleAdminSetActive(w, id, true)
		case "deactivate":
			s.handleAdminSetActive(w, id, false)
		default:
			failStatus(w, http.StatusNotFound, "unknown admin action")
		}
		return
	}

	id, ok := parseID(path)
	if !ok {
		failStatus(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	switch r.Method {
	case http.MethodGet:
		u, err := s.users.GetByID(id)
		if err != nil {
			fail(w, err)
			return
		}
		respond(w, http.StatusOK, "user", u)
	case http.MethodDelete:
		if err := s.users.Delete(id); err != nil {
			fail(w, err)
			return
		}
		respond(w, http.StatusOK, "user deleted", nil)
	default:
		failStatus(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleAdminSetActive(w http.ResponseWriter, id int64, active bool) {
	if err := s.users.SetActive(id, active); err != nil {
		fail(w, err)
		return
	}
	u, err := s.users.GetByID(id)
	if err != nil {
		fail(w, err)
		return
	}
	msg := "user deactivated"
	if active {
		msg = "user activated"
	}
	respond(w, http.StatusOK, msg, u)
}

// handleAdminResetPassword sets a user's password directly, without
// the emailed reset flow.
func (s *Server) handleAdminResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID      int64  `json:"userId"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		failStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.NewPassword) < 6 {
		failStatus(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		fail(w, err)
		return
	}
	if err := s.users.UpdatePassword(req.UserID, hash); err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, "password reset", nil)
}
