package web

import (
	"fmt"
	"net/http"
	"testing"
)

func TestListingCreateRequiresAuth(t *testing.T) {
	s := newTestServer(t)

	w, _ := doJSON(t, s, http.MethodPost, "/api/listings/create", "", map[string]interface{}{
		"name": "No Auth", "description": "d", "address": "a", "price": 100,
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous create: status %d, want 401", w.Code)
	}
}

func TestListingCreateAndGet(t *testing.T) {
	s := newTestServer(t)
	token, owner := register(t, s, "owner@example.com")

	id := seedListing(t, s, token, "Lake House", 250000)

	w, env := doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/listings/get/%d", id), "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get listing: status %d", w.Code)
	}
	data := env.Data.(map[string]interface{})
	if data["name"] != "Lake House" {
		t.Errorf("name = %v, want Lake House", data["name"])
	}
	if int64(data["userId"].(float64)) != owner {
		t.Errorf("userId = %v, want %d", data["userId"], owner)
	}
	urls := data["imageUrls"].([]interface{})
	if len(urls) != 1 {
		t.Fatalf("imageUrls length = %d, want 1 placeholder", len(urls))
	}
}

func TestListingCreateRejectsBadPropertyType(t *testing.T) {
	s := newTestServer(t)
	token, _ := register(t, s, "strict@example.com")

	w, _ := doJSON(t, s, http.MethodPost, "/api/listings/create", token, map[string]interface{}{
		"name": "Bad", "description": "d", "address": "a", "price": 100,
		"propertyType": "CASTLE",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad property type on create: status %d, want 400", w.Code)
	}
}

func TestListingSearchIgnoresBadPropertyType(t *testing.T) {
	s := newTestServer(t)
	token, _ := register(t, s, "search@example.com")
	seedListing(t, s, token, "Findable", 100)

	w, env := doJSON(t, s, http.MethodGet, "/api/listings/search?propertyType=CASTLE", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search: status %d", w.Code)
	}
	if got := len(env.Data.([]interface{})); got != 1 {
		t.Errorf("results = %d, want 1 (bad propertyType ignored)", got)
	}
}

func TestListingSearchTermAndPriceRange(t *testing.T) {
	s := newTestServer(t)
	token, _ := register(t, s, "range@example.com")
	seedListing(t, s, token, "Cheap Cabin", 50000)
	seedListing(t, s, token, "Pricey Cabin", 900000)
	seedListing(t, s, token, "Downtown Loft", 300000)

	w, env := doJSON(t, s, http.MethodGet,
		"/api/listings/search?searchTerm=cabin&maxPrice=100000", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search: status %d", w.Code)
	}
	results := env.Data.([]interface{})
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if name := results[0].(map[string]interface{})["name"]; name != "Cheap Cabin" {
		t.Errorf("result = %v, want Cheap Cabin", name)
	}
}

func TestListingSearchDefaultsToActiveStatus(t *testing.T) {
	s := newTestServer(t)
	token, _ := register(t, s, "status@example.com")
	seedListing(t, s, token, "Still For Sale", 100)
	soldID := seedListing(t, s, token, "Already Sold", 100)

	w, _ := doJSON(t, s, http.MethodPut, fmt.Sprintf("/api/listings/status/%d", soldID), token,
		map[string]string{"status": "SOLD"})
	if w.Code != http.StatusOK {
		t.Fatalf("set status: %d, body %s", w.Code, w.Body.String())
	}

	// No status parameter: only ACTIVE listings come back.
	_, env := doJSON(t, s, http.MethodGet, "/api/listings/search", "", nil)
	results := env.Data.([]interface{})
	if len(results) != 1 {
		t.Fatalf("default search = %d results, want 1", len(results))
	}
	if name := results[0].(map[string]interface{})["name"]; name != "Still For Sale" {
		t.Errorf("default search returned %v", name)
	}

	// An unknown status value falls back to ACTIVE as well.
	_, env2 := doJSON(t, s, http.MethodGet, "/api/listings/search?status=BOGUS", "", nil)
	if got := len(env2.Data.([]interface{})); got != 1 {
		t.Errorf("bogus status search = %d results, want 1", got)
	}

	// An explicit valid status is honored.
	_, env3 := doJSON(t, s, http.MethodGet, "/api/listings/search?status=SOLD", "", nil)
	sold := env3.Data.([]interface{})
	if len(sold) != 1 {
		t.Fatalf("SOLD search = %d results, want 1", len(sold))
	}
	if name := sold[0].(map[string]interface{})["name"]; name != "Already Sold" {
		t.Errorf("SOLD search returned %v", name)
	}
}

func TestListingUpdateForbiddenForStranger(t *testing.T) {
	s := newTestServer(t)
	owner, _ := register(t, s, "own2@example.com")
	stranger, _ := register(t, s, "stranger@example.com")
	id := seedListing(t, s, owner, "Mine", 100)

	w, _ := doJSON(t, s, http.MethodPut, fmt.Sprintf("/api/listings/update/%d", id), stranger,
		map[string]interface{}{"name": "Stolen"})
	if w.Code != http.StatusForbidden {
		t.Errorf("stranger update: status %d, want 403", w.Code)
	}
}

func TestListingDelete(t *testing.T) {
	s := newTestServer(t)
	token, _ := register(t, s, "del@example.com")
	id := seedListing(t, s, token, "Doomed", 100)

	w, _ := doJSON(t, s, http.MethodDelete, fmt.Sprintf("/api/listings/delete/%d", id), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: status %d", w.Code)
	}

	w2, _ := doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/listings/get/%d", id), "", nil)
	if w2.Code != http.StatusNotFound {
		t.Errorf("get after delete: status %d, want 404", w2.Code)
	}
}

func TestFavoriteToggleAndCount(t *testing.T) {
	s := newTestServer(t)
	owner, _ := register(t, s, "fav-owner@example.com")
	fan, _ := register(t, s, "fan@example.com")
	id := seedListing(t, s, owner, "Popular", 100)

	w, env := doJSON(t, s, http.MethodPost, fmt.Sprintf("/api/favorites/%d/toggle", id), fan, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("toggle: status %d, body %s", w.Code, w.Body.String())
	}
	if fav := env.Data.(map[string]interface{})["favorited"]; fav != true {
		t.Errorf("favorited = %v, want true", fav)
	}

	_, count := doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/favorites/listing/%d/count", id), "", nil)
	if got := count.Data.(map[string]interface{})["count"].(float64); got != 1 {
		t.Errorf("count = %v, want 1", got)
	}

	// Toggling again removes it.
	_, env2 := doJSON(t, s, http.MethodPost, fmt.Sprintf("/api/favorites/%d/toggle", id), fan, nil)
	if fav := env2.Data.(map[string]interface{})["favorited"]; fav != false {
		t.Errorf("second toggle favorited = %v, want false", fav)
	}
}

func TestFavoriteListRequiresAuth(t *testing.T) {
	s := newTestServer(t)
	w, _ := doJSON(t, s, http.MethodGet, "/api/favorites", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous favorites: status %d, want 401", w.Code)
	}
}
