package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/crvarsha0102/HabiTrack/internal/auth"
	"github.com/crvarsha0102/HabiTrack/internal/user"
)

// handleAuth routes /api/auth/ requests.
func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/auth/")

	if strings.HasPrefix(path, "passkey/") {
		s.handlePasskey(w, r, strings.TrimPrefix(path, "passkey/"))
		return
	}

	switch path {
	case "register":
		s.requirePost(w, r, s.handleRegister)
	case "login":
		s.requirePost(w, r, s.handleLogin)
	case "logout":
		s.requirePost(w, r, s.handleLogout)
	case "refresh-token":
		s.requirePost(w, r, s.handleRefreshToken)
	case "forgot-password":
		s.requirePost(w, r, s.handleForgotPassword)
	case "reset-password":
		s.requirePost(w, r, s.handleResetPassword)
	case "current-user":
		s.handleCurrentUser(w, r)
	default:
		failStatus(w, http.StatusNotFound, "unknown auth endpoint")
	}
}

func (s *Server) requirePost(w http.ResponseWriter, r *http.Request, h http.HandlerFunc) {
	if r.Method != http.MethodPost {
		failStatus(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h(w, r)
}

// setTokenCookie stores the access token for browser clients. Max-Age
// tracks the token TTL so the cookie and token expire together.
func (s *Server) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   s.cfg.TokenTTLHours * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		failStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.FirstName) == "" {
		failStatus(w, http.StatusBadRequest, "first name is required")
		return
	}
	if !strings.Contains(req.Email, "@") {
		failStatus(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if len(req.Password) < 6 {
		failStatus(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		fail(w, err)
		return
	}

	u, err := s.users.Create(&user.User{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     req.Email,
		Password:  hash,
		Phone:     req.Phone,
	})
	if err != nil {
		fail(w, err)
		return
	}

	token, err := s.codec.Generate(u.ID, u.Email)
	if err != nil {
		fail(w, err)
		return
	}
	s.setTokenCookie(w, token)

	respond(w, http.StatusCreated, "registered", map[string]interface{}{
		"user":  u,
		"token": token,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		failStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := s.users.GetByEmail(req.Email)
	if err != nil {
		// Deliberately vague: never reveal which field was wrong.
		failStatus(w, http.StatusUnauthorized, "wrong credentials")
		return
	}
	if !u.IsActive || !auth.VerifyPassword(u.Password, req.Password) {
		failStatus(w, http.StatusUnauthorized, "wrong credentials")
		return
	}

	token, err := s.codec.Generate(u.ID, u.Email)
	if err != nil {
		fail(w, err)
		return
	}
	s.setTokenCookie(w, token)

	respond(w, http.StatusOK, "logged in", map[string]interface{}{
		"user":  u,
		"token": token,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearTokenCookie(w)
	respond(w, http.StatusOK, "logged out", nil)
}

func (s *Server) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	u := requireUser(w, r)
	if u == nil {
		return
	}

	token, err := s.codec.Generate(u.ID, u.Email)
	if err != nil {
		fail(w, err)
		return
	}
	s.setTokenCookie(w, token)

	respond(w, http.StatusOK, "token refreshed", map[string]interface{}{
		"token": token,
	})
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		failStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// The response is identical whether or not the account exists.
	const msg = "if the account exists, a reset link has been sent"

	u, err := s.users.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			respond(w, http.StatusOK, msg, nil)
			return
		}
		fail(w, err)
		return
	}

	token, err := s.codec.GenerateReset(u.ID, u.Email)
	if err != nil {
		fail(w, err)
		return
	}
	if _, err := s.mailer.SendPasswordReset(u.Email, token); err != nil {
		slog.Error("sending password reset email", "error", err)
		fail(w, err)
		return
	}

	respond(w, http.StatusOK, msg, nil)
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
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

	claims, err := s.codec.ParseReset(req.Token)
	if err != nil {
		fail(w, err)
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		fail(w, err)
		return
	}
	if err := s.users.UpdatePassword(claims.UserID, hash); err != nil {
		fail(w, err)
		return
	}

	respond(w, http.StatusOK, "password updated", nil)
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	u := requireUser(w, r)
	if u == nil {
		return
	}
	respond(w, http.StatusOK, "current user", u)
}
