package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/crvarsha0102/HabiTrack/internal/user"
)

// CookieName is the cookie carrying the access token for browser clients.
const CookieName = "access_token"

// Authenticator resolves requests to users via signed tokens.
type Authenticator struct {
	codec *Codec
	users *user.Repository
}

// NewAuthenticator creates an Authenticator backed by the given
// token codec and user repository.
func NewAuthenticator(codec *Codec, users *user.Repository) *Authenticator {
	return &Authenticator{codec: codec, users: users}
}

// ExtractToken pulls the access token from a request: the
// Authorization bearer header wins, falling back to the cookie.
func ExtractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// Authenticate resolves the request's token to an active user.
// Returns ErrInvalidToken for missing, expired, or unresolvable tokens.
func (a *Authenticator) Authenticate(r *http.Request) (*user.User, error) {
	tokenStr := ExtractToken(r)
	if tokenStr == "" {
		return nil, ErrInvalidToken
	}
	claims, err := a.codec.Parse(tokenStr)
	if err != nil {
		return nil, err
	}
	u, err := a.users.GetByID(claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrInvalidToken
	}
	return u, nil
}

// Middleware attaches the authenticated user to the request context
// when a valid token is present. Requests without one pass through
// anonymously; individual handlers decide whether auth is required.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, err := a.Authenticate(r); err == nil {
			r = r.WithContext(WithUser(r.Context(), u))
		}
		next.ServeHTTP(w, r)
	})
}
