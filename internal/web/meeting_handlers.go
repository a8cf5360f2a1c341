package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/crvarsha0102/HabiTrack/internal/meeting"
)

// handleMeetings routes /api/meetings and /api/meetings/ requests.
func (s *Server) handleMeetings(w http.ResponseWriter, r *http.Request) {
	u := requireUser(w, r)
	if u == nil {
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/meetings")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		if r.Method != http.MethodPost {
			failStatus(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var in meeting.CreateInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			failStatus(w, http.StatusBadRequest, "invalid request body")
			return
		}
		m, err := s.meetings.Create(u, in)
		if err != nil {
			fail(w, err)
			return
		}
		respond(w, http.StatusCreated, "meeting created", m)
		return
	}

	// Collection queries.
	if r.Method == http.MethodGet {
		var (
			meetings []*meeting.Meeting
			err      error
			handled  = true
		)
		switch {
		case path == "upcoming":
			meetings, err = s.meetings.Upcoming(u.ID)
		case path == "past":
			meetings, err = s.meetings.Past(u.ID)
		case path == "created":
			meetings, err = s.meetings.Created(u.ID)
		case path == "participating":
			meetings, err = s.meetings.Participating(u.ID)
		case strings.HasPrefix(path, "message/"):
			if id, ok := parseID(strings.TrimPrefix(path, "message/")); ok {
				meetings, err = s.meetings.ByMessage(u, id)
			} else {
				failStatus(w, http.StatusBadRequest, "invalid message ID")
				return
			}
		case strings.HasPrefix(path, "property/"):
			if id, ok := parseID(strings.TrimPrefix(path, "property/")); ok {
				meetings, err = s.meetings.ByProperty(u, id)
			} else {
				failStatus(w, http.StatusBadRequest, "invalid property ID")
				return
			}
		default:
			handled = false
		}
		if handled {
			if err != nil {
				fail(w, err)
				return
			}
			respond(w, http.StatusOK, "meetings", meetings)
			return
		}
	}

	// Transition actions: /api/meetings/{id}/{action}.
	if idStr, action, found := strings.Cut(path, "/"); found {
		if r.Method != http.MethodPut {
			failStatus(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		id, ok := parseID(idStr)
		if !ok {
			failStatus(w, http.StatusBadRequest, "invalid meeting ID")
			return
		}

		var (
			m   *meeting.Meeting
			err error
		)
		switch action {
		case "accept":
			m, err = s.meetings.Accept(u, id)
		case "decline":
			m, err = s.meetings.Decline(u, id)
		case "cancel":
			m, err = s.meetings.Cancel(u, id)
		case "complete":
			m, err = s.meetings.Complete(u, id)
		case "mark-notified":
			m, err = s.meetings.MarkNotified(u, id)
		default:
			failStatus(w, http.StatusNotFound, "unknown meeting action")
			return
		}
		if err != nil {
			fail(w, err)
			return
		}
		respond(w, http.StatusOK, "meeting "+action, m)
		return
	}

	// /api/meetings/{id}: get, update, delete.
	id, ok := parseID(path)
	if !ok {
		failStatus(w, http.StatusBadRequest, "invalid meeting ID")
		return
	}

	switch r.Method {
	case http.MethodGet:
		m, err := s.meetings.Get(u, id)
		if err != nil {
			fail(w, err)
			return
		}
		respond(w, http.StatusOK, "meeting", m)
	case http.MethodPut:
		var in meeting.UpdateInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			failStatus(w, http.StatusBadRequest, "invalid request body")
			return
		}
		m, err := s.meetings.Update(u, id, in)
		if err != nil {
			fail(w, err)
			return
		}
		respond(w, http.StatusOK, "meeting updated", m)
	case http.MethodDelete:
		if err := s.meetings.Delete(u, id); err != nil {
			fail(w, err)
			return
		}
		respond(w, http.StatusOK, "meeting deleted", nil)
	default:
		failStatus(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
