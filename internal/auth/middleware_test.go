package auth

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/crvarsha0102/HabiTrack/internal/db"
	"github.com/crvarsha0102/HabiTrack/internal/user"
)

func setupAuthenticator(t *testing.T) (*Authenticator, *user.Repository, *Codec) {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() {
		if err := database.Close(); err != nil {
			t.Errorf("closing test db: %v", err)
		}
	})

	users := user.NewRepository(database)
	codec := NewCodec("test-secret", time.Hour)
	return NewAuthenticator(codec, users), users, codec
}

func createTestUser(t *testing.T, users *user.Repository, email string) *user.User {
	t.Helper()
	u, err := users.Create(&user.User{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Password:  "hashed",
	})
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}
	return u
}

func TestExtractTokenHeaderWinsOverCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/listings/get", nil)
	r.Header.Set("Authorization", "Bearer from-header")
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "from-cookie"})

	if got := ExtractToken(r); got != "from-header" {
		t.Errorf("ExtractToken = %q, want %q", got, "from-header")
	}
}

func TestExtractTokenCookieFallback(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/listings/get", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "from-cookie"})

	if got := ExtractToken(r); got != "from-cookie" {
		t.Errorf("ExtractToken = %q, want %q", got, "from-cookie")
	}
}

func TestAuthenticateValidToken(t *testing.T) {
	a, users, codec := setupAuthenticator(t)
	u := createTestUser(t, users, "valid@example.com")

	token, err := codec.Generate(u.ID, u.Email)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	r := httptest.NewRequest(http.MethodGet, "/api/auth/current-user", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	got, err := a.Authenticate(r)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("user ID = %d, want %d", got.ID, u.ID)
	}
}

func TestAuthenticateMissingToken(t *testing.T) {
	a, _, _ := setupAuthenticator(t)

	r := httptest.NewRequest(http.MethodGet, "/api/auth/current-user", nil)
	if _, err := a.Authenticate(r); err == nil {
		t.Error("expected error for missing token, got nil")
	}
}

func TestAuthenticateDeactivatedUser(t *testing.T) {
	a, users, codec := setupAuthenticator(t)
	u := createTestUser(t, users, "inactive@example.com")

	if err := users.SetActive(u.ID, false); err != nil {
		t.Fatalf("deactivating user: %v", err)
	}

	token, err := codec.Generate(u.ID, u.Email)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	r := httptest.NewRequest(http.MethodGet, "/api/auth/current-user", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	if _, err := a.Authenticate(r); err == nil {
		t.Error("expected error for deactivated user, got nil")
	}
}

func TestMiddlewareAttachesUser(t *testing.T) {
	a, users, codec := setupAuthenticator(t)
	u := createTestUser(t, users, "ctx@example.com")

	token, err := codec.Generate(u.ID, u.Email)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var got *user.User
	handler := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = UserFromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/auth/current-user", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	handler.ServeHTTP(httptest.NewRecorder(), r)

	if got == nil {
		t.Fatal("expected user in context, got nil")
	}
	if got.Email != u.Email {
		t.Errorf("email = %q, want %q", got.Email, u.Email)
	}
}

func TestMiddlewareAnonymousPassThrough(t *testing.T) {
	a, _, _ := setupAuthenticator(t)

	called := false
	handler := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if u := UserFromContext(r.Context()); u != nil {
			t.Errorf("expected nil user, got %v", u)
		}
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/listings/get", nil))
	if !called {
		t.Error("handler not called for anonymous request")
	}
}
