package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/crvarsha0102/HabiTrack/internal/auth"
	"github.com/crvarsha0102/HabiTrack/internal/message"
)

// handleMessages routes /api/messages/ requests.
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/messages/")

	switch {
	case path == "send" && r.Method == http.MethodPost:
		s.handleMessageSend(w, r)
	case path == "contact" && r.Method == http.MethodPost:
		s.handleMessageContact(w, r)
	case path == "inbox" && r.Method == http.MethodGet:
		s.handleMessageInbox(w, r)
	case path == "sent" && r.Method == http.MethodGet:
		s.handleMessageSent(w, r)
	case path == "unread" && r.Method == http.MethodGet:
		s.handleMessageUnread(w, r)
	case path == "unread/count" && r.Method == http.MethodGet:
		s.handleMessageUnreadCount(w, r)
	case strings.HasPrefix(path, "conversation/") && r.Method == http.MethodGet:
		s.handleMessageConversation(w, r, strings.TrimPrefix(path, "conversation/"))
	case strings.HasPrefix(path, "property/") && r.Method == http.MethodGet:
		s.handleMessageByProperty(w, r, strings.TrimPrefix(path, "property/"))
	case strings.HasSuffix(path, "/read") && r.Method == http.MethodPut:
		s.handleMessageMarkRead(w, r, strings.TrimSuffix(path, "/read"))
	case r.Method == http.MethodDelete:
		s.handleMessageDelete(w, r, path)
	default:
		failStatus(w, http.StatusNotFound, "unknown messages endpoint")
	}
}

func (s *Server) handleMessageSend(w http.ResponseWriter, r *http.Request) {
	u := requireUser(w, r)
	if u == nil {
		return
	}

	var in message.SendInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		failStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := s.messages.Send(u, in)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusCreated, "message sent", m)
}

// handleMessageContact accepts listing inquiries from guests as well
// as logged-in users, so it reads the context directly instead of
// requiring auth.
func (s *Server) handleMessageContact(w http.ResponseWriter, r *http.Request) {
	var in message.ContactInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		failStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := s.messages.Contact(auth.UserFromContext(r.Context()), in)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusCreated, "message sent", m)
}

func (s *Server) handleMessageInbox(w http.ResponseWriter, r *http.Request) {
	u := requireUser(w, r)
	if u == nil {
		return
	}
	msgs, err := s.messages.Inbox(u.ID)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, "inbox", msgs)
}

func (s *Server) handleMessageSent(w http.ResponseWriter, r *http.Request) {
	u := requireUser(w, r)
	if u == nil {
		return
	}
	msgs, err := s.messages.Sent(u.ID)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, "sent", msgs)
}

func (s *Server) handleMessageUnread(w http.ResponseWriter, r *http.Request) {
	u := requireUser(w, r)
	if u == nil {
		return
	}
	msgs, err := s.messages.Unread(u.ID)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, "unread", msgs)
}

func (s *Server) handleMessageUnreadCount(w http.ResponseWriter, r *http.Request) {
	u := requireUser(w, r)
	if u == nil {
		return
	}
	count, err := s.messages.UnreadCount(u.ID)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, "unread count", map[string]int64{"count": count})
}

func (s *Server) handleMessageConversation(w http.ResponseWriter, r *http.Request, idStr string) {
	u := requireUser(w, r)
	if u == nil {
		return
	}
	otherID, ok := parseID(idStr)
	if !ok {
		failStatus(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	msgs, err := s.messages.Conversation(u.ID, otherID)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, "conversation", msgs)
}

func (s *Server) handleMessageByProperty(w http.ResponseWriter, r *http.Request, idStr string) {
	u := requireUser(w, r)
	if u == nil {
		return
	}
	propertyID, ok := parseID(idStr)
	if !ok {
		failStatus(w, http.StatusBadRequest, "invalid property ID")
		return
	}

	msgs, err := s.messages.ByProperty(u.ID, propertyID)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, "messages", msgs)
}

func (s *Server) handleMessageMarkRead(w http.ResponseWriter, r *http.Request, idStr string) {
	u := requireUser(w, r)
	if u == nil {
		return
	}
	id, ok := parseID(idStr)
	if !ok {
		failStatus(w, http.StatusBadRequest, "invalid message ID")
		return
	}

	m, err := s.messages.MarkRead(u, id)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, "message read", m)
}

func (s *Server) handleMessageDelete(w http.ResponseWriter, r *http.Request, idStr string) {
	u := requireUser(w, r)
	if u == nil {
		return
	}
	id, ok := parseID(idStr)
	if !ok {
		failStatus(w, http.StatusBadRequest, "invalid message ID")
		return
	}

	if err := s.messages.Delete(u, id); err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, "message deleted", nil)
}
