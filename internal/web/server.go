// Package web provides the HabiTrack JSON API server.
package web

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/crvarsha0102/HabiTrack/internal/auth"
	"github.com/crvarsha0102/HabiTrack/internal/config"
	"github.com/crvarsha0102/HabiTrack/internal/favorite"
	"github.com/crvarsha0102/HabiTrack/internal/listing"
	"github.com/crvarsha0102/HabiTrack/internal/logging"
	"github.com/crvarsha0102/HabiTrack/internal/meeting"
	"github.com/crvarsha0102/HabiTrack/internal/message"
	"github.com/crvarsha0102/HabiTrack/internal/user"
)

// Server is the API HTTP server.
type Server struct {
	cfg config.Config

	users     *user.Repository
	listings  *listing.Service
	messages  *message.Service
	meetings  *meeting.Service
	favorites *favorite.Service

	codec         *auth.Codec
	authenticator *auth.Authenticator
	mailer        *auth.Mailer
	passkeys      *passkeyHandlers

	mux *http.ServeMux
}

// NewServer wires repositories, services, and routes on top of the
// given database.
func NewServer(db *sql.DB, cfg config.Config) (*Server, error) {
	users := user.NewRepository(db)
	listingRepo := listing.NewRepository(db)
	messageRepo := message.NewRepository(db)
	meetingRepo := meeting.NewRepository(db)
	favoriteRepo := favorite.NewRepository(db)

	messages := message.NewService(messageRepo, users, listingRepo)

	codec := auth.NewCodec(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)

	s := &Server{
		cfg:           cfg,
		users:         users,
		listings:      listing.NewService(listingRepo, users),
		messages:      messages,
		meetings:      meeting.NewService(meetingRepo, users, messages),
		favorites:     favorite.NewService(favoriteRepo, listingRepo),
		codec:         codec,
		authenticator: auth.NewAuthenticator(codec, users),
		mailer: auth.NewMailer(auth.MailerConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.SMTPFrom,
			BaseURL:  cfg.BaseURL,
			DevMode:  cfg.DevMode,
		}),
		mux: http.NewServeMux(),
	}

	passkeys, err := newPasskeyHandlers(cfg, auth.NewPasskeyStore(db), users, codec)
	if err != nil {
		return nil, fmt.Errorf("setting up passkeys: %w", err)
	}
	s.passkeys = passkeys

	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/auth/", s.handleAuth)
	s.mux.HandleFunc("/api/listings/", s.handleListings)
	s.mux.HandleFunc("/api/messages/", s.handleMessages)
	s.mux.HandleFunc("/api/meetings", s.handleMeetings)
	s.mux.HandleFunc("/api/meetings/", s.handleMeetings)
	s.mux.HandleFunc("/api/favorites", s.handleFavorites)
	s.mux.HandleFunc("/api/favorites/", s.handleFavorites)
	s.mux.HandleFunc("/api/users/", s.handleUsers)
	s.mux.HandleFunc("/api/admin/", s.handleAdmin)

	return s, nil
}

// ServeHTTP implements http.Handler with the full middleware chain:
// request logging, CORS, then token authentication.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler := logging.RequestLogger(CORS(s.cfg.AllowedOrigins, s.authenticator.Middleware(s.mux)))
	handler.ServeHTTP(w, r)
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	slog.Info("starting API server", "addr", addr)
	return http.ListenAndServe(addr, s)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, "ok", nil)
}

// requireUser returns the authenticated user or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) *user.User {
	u := auth.UserFromContext(r.Context())
	if u == nil {
		failStatus(w, http.StatusUnauthorized, "authentication required")
	}
	return u
}

// requireAdmin returns the authenticated admin or writes a 401/403.
func requireAdmin(w http.ResponseWriter, r *http.Request) *user.User {
	u := auth.UserFromContext(r.Context())
	if u == nil {
		failStatus(w, http.StatusUnauthorized, "authentication required")
		return nil
	}
	if !u.IsAdmin() {
		failStatus(w, http.StatusForbidden, "admin access required")
		return nil
	}
	return u
}
