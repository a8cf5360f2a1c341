package web

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

func seedMeeting(t *testing.T, s *Server, token string, participantID, propertyID int64) int64 {
	t.Helper()
	w, env := doJSON(t, s, http.MethodPost, "/api/meetings", token, map[string]interface{}{
		"participantId": participantID,
		"propertyId":    propertyID,
		"title":         "Showing",
		"meetingTime":   time.Now().Add(48 * time.Hour).Format(time.RFC3339),
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create meeting: status %d, body %s", w.Code, w.Body.String())
	}
	return int64(env.Data.(map[string]interface{})["id"].(float64))
}

func TestMeetingCreateAndAccept(t *testing.T) {
	s := newTestServer(t)
	buyer, _ := register(t, s, "buyer@example.com")
	seller, sellerID := register(t, s, "seller@example.com")
	prop := seedListing(t, s, seller, "Tour Me", 100)

	id := seedMeeting(t, s, buyer, sellerID, prop)

	// Only the participant may accept.
	w, _ := doJSON(t, s, http.MethodPut, fmt.Sprintf("/api/meetings/%d/accept", id), buyer, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("creator accept: status %d, want 403", w.Code)
	}

	w2, env := doJSON(t, s, http.MethodPut, fmt.Sprintf("/api/meetings/%d/accept", id), seller, nil)
	if w2.Code != http.StatusOK {
		t.Fatalf("participant accept: status %d, body %s", w2.Code, w2.Body.String())
	}
	if status := env.Data.(map[string]interface{})["status"]; status != "ACCEPTED" {
		t.Errorf("status = %v, want ACCEPTED", status)
	}
}

func TestMeetingCancelCreatorOnly(t *testing.T) {
	s := newTestServer(t)
	buyer, _ := register(t, s, "c-buyer@example.com")
	seller, sellerID := register(t, s, "c-seller@example.com")
	prop := seedListing(t, s, seller, "Cancelable", 100)
	id := seedMeeting(t, s, buyer, sellerID, prop)

	w, _ := doJSON(t, s, http.MethodPut, fmt.Sprintf("/api/meetings/%d/cancel", id), seller, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("participant cancel: status %d, want 403", w.Code)
	}

	w2, _ := doJSON(t, s, http.MethodPut, fmt.Sprintf("/api/meetings/%d/cancel", id), buyer, nil)
	if w2.Code != http.StatusOK {
		t.Errorf("creator cancel: status %d, want 200", w2.Code)
	}
}

func TestMeetingHiddenFromOutsiders(t *testing.T) {
	s := newTestServer(t)
	buyer, _ := register(t, s, "h-buyer@example.com")
	seller, sellerID := register(t, s, "h-seller@example.com")
	outsider, _ := register(t, s, "h-outsider@example.com")
	prop := seedListing(t, s, seller, "Private", 100)
	id := seedMeeting(t, s, buyer, sellerID, prop)

	w, _ := doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/meetings/%d", id), outsider, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("outsider get: status %d, want 403", w.Code)
	}
}

func TestMeetingCreateSendsInviteMessage(t *testing.T) {
	s := newTestServer(t)
	buyer, _ := register(t, s, "i-buyer@example.com")
	seller, sellerID := register(t, s, "i-seller@example.com")
	prop := seedListing(t, s, seller, "Invited", 100)
	seedMeeting(t, s, buyer, sellerID, prop)

	_, env := doJSON(t, s, http.MethodGet, "/api/messages/inbox", seller, nil)
	if got := len(env.Data.([]interface{})); got != 1 {
		t.Errorf("participant inbox after invite = %d messages, want 1", got)
	}
}

func TestMeetingUpcomingListing(t *testing.T) {
	s := newTestServer(t)
	buyer, _ := register(t, s, "u-buyer@example.com")
	seller, sellerID := register(t, s, "u-seller@example.com")
	prop := seedListing(t, s, seller, "Upcoming", 100)
	seedMeeting(t, s, buyer, sellerID, prop)

	for _, token := range []string{buyer, seller} {
		_, env := doJSON(t, s, http.MethodGet, "/api/meetings/upcoming", token, nil)
		if got := len(env.Data.([]interface{})); got != 1 {
			t.Errorf("upcoming = %d, want 1", got)
		}
	}
}
