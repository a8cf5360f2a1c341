package message

import (
	"errors"
	"fmt"
	"strings"

	"github.com/crvarsha0102/HabiTrack/internal/listing"
	"github.com/crvarsha0102/HabiTrack/internal/user"
)

// Sentinel errors mapped to HTTP statuses by the web layer.
var (
	ErrInvalid   = errors.New("invalid message")
	ErrForbidden = errors.New("not allowed")
)

// Service applies messaging rules on top of the repository.
type Service struct {
	repo     *Repository
	users    *user.Repository
	listings *listing.Repository
}

// NewService creates a message service.
func NewService(repo *Repository, users *user.Repository, listings *listing.Repository) *Service {
	return &Service{repo: repo, users: users, listings: listings}
}

// SendInput carries the fields of a send request.
type SendInput struct {
	ReceiverID int64  `json:"receiverId"`
	PropertyID *int64 `json:"propertyId"`
	Subject    string `json:"subject"`
	Content    string `json:"content"`
}

// Send stores a message from an authenticated sender.
func (s *Service) Send(sender *user.User, in SendInput) (*Message, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalid)
	}
	if in.ReceiverID == sender.ID {
		return nil, fmt.Errorf("%w: cannot message yourself", ErrInvalid)
	}
	if _, err := s.users.GetByID(in.ReceiverID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("looking up receiver: %w", err)
	}

	return s.repo.Insert(&Message{
		SenderID:   &sender.ID,
		ReceiverID: in.ReceiverID,
		PropertyID: in.PropertyID,
		Subject:    in.Subject,
		Content:    in.Content,
	})
}

// ContactInput carries the fields of a listing inquiry. Name and
// email identify a guest sender; they are ignored when the request
// is authenticated.
type ContactInput struct {
	ListingID int64  `json:"listingId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Content   string `json:"message"`
}

// Contact sends an inquiry about a listing to its owner. sender may
// be nil for guest inquiries, which embed the contact details in the
// message body instead.
func (s *Service) Contact(sender *user.User, in ContactInput) (*Message, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalid)
	}

	l, err := s.listings.GetByID(in.ListingID)
	if err != nil {
		return nil, err
	}

	m := &Message{
		ReceiverID: l.UserID,
		PropertyID: &l.ID,
		Subject:    "Inquiry about " + l.Name,
		Content:    in.Content,
	}

	if sender != nil {
		if sender.ID == l.UserID {
			return nil, fmt.Errorf("%w: cannot message yourself", ErrInvalid)
		}
		m.SenderID = &sender.ID
	} else {
		if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" {
			return nil, fmt.Errorf("%w: name and email are required", ErrInvalid)
		}
		contact := fmt.Sprintf("From: %s <%s>", in.Name, in.Email)
		if in.Phone != "" {
			contact += ", phone " + in.Phone
		}
		m.Content = contact + "\n\n" + in.Content
	}

	return s.repo.Insert(m)
}

// SendSystem stores a system message (nil sender) to the given user.
func (s *Service) SendSystem(receiverID int64, propertyID *int64, subject, content string) (*Message, error) {
	return s.repo.Insert(&Message{
		ReceiverID: receiverID,
		PropertyID: propertyID,
		Subject:    subject,
		Content:    content,
	})
}

// Inbox returns the user's received messages.
func (s *Service) Inbox(userID int64) ([]*Message, error) { return s.repo.Inbox(userID) }

// Sent returns the user's sent messages.
func (s *Service) Sent(userID int64) ([]*Message, error) { return s.repo.Sent(userID) }

// Unread returns the user's unread received messages.
func (s *Service) Unread(userID int64) ([]*Message, error) { return s.repo.Unread(userID) }

// UnreadCount returns how many unread messages the user has.
func (s *Service) UnreadCount(userID int64) (int64, error) { return s.repo.UnreadCount(userID) }

// Conversation returns all messages between the user and another user.
func (s *Service) Conversation(userID, otherID int64) ([]*Message, error) {
	return s.repo.Conversation(userID, otherID)
}

// ByProperty returns the user's messages about a property.
func (s *Service) ByProperty(userID, propertyID int64) ([]*Message, error) {
	return s.repo.ByProperty(userID, propertyID)
}

// MarkRead flags a message as read. Receiver only.
func (s *Service) MarkRead(actor *user.User, id int64) (*Message, error) {
	m, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if m.ReceiverID != actor.ID {
		return nil, ErrForbidden
	}
	if err := s.repo.MarkRead(id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(id)
}

// Delete removes a message. Sender or receiver only.
func (s *Service) Delete(actor *user.User, id int64) error {
	m, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	sender := m.SenderID != nil && *m.SenderID == actor.ID
	if !sender && m.ReceiverID != actor.ID {
		return ErrForbidden
	}
	return s.repo.Delete(id)
}
