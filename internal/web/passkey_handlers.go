package web

import (
	"encoding/binary"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"

	"github.com/crvarsha0102/HabiTrack/internal/auth"
	"github.com/crvarsha0102/HabiTrack/internal/config"
	"github.com/crvarsha0102/HabiTrack/internal/user"
)

// passkeyHandlers holds the WebAuthn HTTP handlers.
type passkeyHandlers struct {
	wan      *webauthn.WebAuthn
	passkeys *auth.PasskeyStore
	users    *user.Repository
	codec    *auth.Codec

	// In-memory session data for in-flight WebAuthn ceremonies.
	// regSessions is keyed by user ID for registration.
	// loginSessionData holds a single login ceremony; one concurrent
	// passkey login suffices for this deployment size.
	mu               sync.Mutex
	regSessions      map[int64]*webauthn.SessionData
	loginSessionData *webauthn.SessionData
}

func newPasskeyHandlers(cfg config.Config, passkeys *auth.PasskeyStore, users *user.Repository, codec *auth.Codec) (*passkeyHandlers, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	origins := append([]string{cfg.BaseURL}, cfg.AllowedOrigins...)
	wan, err := webauthn.New(&webauthn.Config{
		RPDisplayName: "HabiTrack",
		RPID:          parsed.Hostname(),
		RPOrigins:     origins,
	})
	if err != nil {
		return nil, err
	}

	return &passkeyHandlers{
		wan:         wan,
		passkeys:    passkeys,
		users:       users,
		codec:       codec,
		regSessions: make(map[int64]*webauthn.SessionData),
	}, nil
}

// handlePasskey routes /api/auth/passkey/{register,login}/{begin,finish}.
func (s *Server) handlePasskey(w http.ResponseWriter, r *http.Request, sub string) {
	if r.Method != http.MethodPost {
		failStatus(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	switch sub {
	case "register/begin":
		s.passkeys.handleBeginRegistration(w, r)
	case "register/finish":
		s.passkeys.handleFinishRegistration(w, r)
	case "login/begin":
		s.passkeys.handleBeginLogin(w, r)
	case "login/finish":
		s.passkeys.handleFinishLogin(w, r, s.setTokenCookie)
	default:
		failStatus(w, http.StatusNotFound, "unknown passkey endpoint")
	}
}

// handleBeginRegistration starts passkey registration for the
// authenticated user.
func (h *passkeyHandlers) handleBeginRegistration(w http.ResponseWriter, r *http.Request) {
	u := requireUser(w, r)
	if u == nil {
		return
	}

	creds, err := h.passkeys.WebAuthnCredentials(u.ID)
	if err != nil {
		fail(w, err)
		return
	}

	pu := auth.NewPasskeyUser(u, creds)

	// Exclude existing credentials so the same key isn't re-registered.
	excludeList := make([]protocol.CredentialDescriptor, len(creds))
	for i, c := range creds {
		excludeList[i] = c.Descriptor()
	}

	creation, session, err := h.wan.BeginRegistration(pu,
		webauthn.WithExclusions(excludeList),
	)
	if err != nil {
		slog.Error("beginning passkey registration", "error", err)
		fail(w, err)
		return
	}

	h.mu.Lock()
	h.regSessions[u.ID] = session
	h.mu.Unlock()

	respond(w, http.StatusOK, "registration options", creation)
}

// handleFinishRegistration completes passkey registration.
func (h *passkeyHandlers) handleFinishRegistration(w http.ResponseWriter, r *http.Request) {
	u := requireUser(w, r)
	if u == nil {
		return
	}

	h.mu.Lock()
	session, ok := h.regSessions[u.ID]
	if ok {
		delete(h.regSessions, u.ID)
	}
	h.mu.Unlock()

	if !ok {
		failStatus(w, http.StatusBadRequest, "no registration in progress")
		return
	}

	creds, err := h.passkeys.WebAuthnCredentials(u.ID)
	if err != nil {
		fail(w, err)
		return
	}

	credential, err := h.wan.FinishRegistration(auth.NewPasskeyUser(u, creds), *session, r)
	if err != nil {
		slog.Error("finishing passkey registration", "error", err)
		failStatus(w, http.StatusBadRequest, "registration failed")
		return
	}

	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		name = "Passkey"
	}

	if err := h.passkeys.Save(u.ID, name, credential); err != nil {
		fail(w, err)
		return
	}

	respond(w, http.StatusCreated, "passkey registered", nil)
}

// handleBeginLogin starts a discoverable passkey login.
func (h *passkeyHandlers) handleBeginLogin(w http.ResponseWriter, r *http.Request) {
	assertion, session, err := h.wan.BeginDiscoverableLogin()
	if err != nil {
		slog.Error("beginning passkey login", "error", err)
		fail(w, err)
		return
	}

	h.mu.Lock()
	h.loginSessionData = session
	h.mu.Unlock()

	respond(w, http.StatusOK, "login options", assertion)
}

// handleFinishLogin completes passkey login and issues an access token.
func (h *passkeyHandlers) handleFinishLogin(w http.ResponseWriter, r *http.Request, setCookie func(http.ResponseWriter, string)) {
	h.mu.Lock()
	session := h.loginSessionData
	h.loginSessionData = nil
	h.mu.Unlock()

	if session == nil {
		failStatus(w, http.StatusBadRequest, "no login in progress")
		return
	}

	var loggedIn *user.User

	handler := func(rawID, userHandle []byte) (webauthn.User, error) {
		// The user handle is the big-endian account ID.
		if len(userHandle) != 8 {
			return nil, protocol.ErrBadRequest.WithDetails("bad user handle")
		}
		id := int64(binary.BigEndian.Uint64(userHandle))

		u, err := h.users.GetByID(id)
		if err != nil {
			return nil, protocol.ErrBadRequest.WithDetails("unknown user")
		}
		if !u.IsActive {
			return nil, protocol.ErrBadRequest.WithDetails("account disabled")
		}

		creds, err := h.passkeys.WebAuthnCredentials(u.ID)
		if err != nil {
			return nil, err
		}
		loggedIn = u
		return auth.NewPasskeyUser(u, creds), nil
	}

	if _, _, err := h.wan.FinishPasskeyLogin(handler, *session, r); err != nil {
		slog.Error("finishing passkey login", "error", err)
		failStatus(w, http.StatusUnauthorized, "login failed")
		return
	}

	token, err := h.codec.Generate(loggedIn.ID, loggedIn.Email)
	if err != nil {
		fail(w, err)
		return
	}
	setCookie(w, token)

	slog.Info("login success", "user", loggedIn.ID, "method", "passkey")
	respond(w, http.StatusOK, "logged in", map[string]interface{}{
		"user":  loggedIn,
		"token": token,
	})
}
