package meeting

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/crvarsha0102/HabiTrack/internal/message"
	"github.com/crvarsha0102/HabiTrack/internal/user"
)

// Sentinel errors mapped to HTTP statuses by the web layer.
var (
	ErrInvalid   = errors.New("invalid meeting")
	ErrForbidden = errors.New("not allowed")
)

// Service applies meeting lifecycle rules on top of the repository.
type Service struct {
	repo     *Repository
	users    *user.Repository
	messages *message.Service
}

// NewService creates a meeting service.
func NewService(repo *Repository, users *user.Repository, messages *message.Service) *Service {
	return &Service{repo: repo, users: users, messages: messages}
}

// CreateInput carries the fields of a meeting create request.
type CreateInput struct {
	ParticipantID   int64     `json:"participantId"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	MeetingTime     time.Time `json:"meetingTime"`
	DurationMinutes int       `json:"durationMinutes"`
	Location        string    `json:"location"`
	MeetingLink     string    `json:"meetingLink"`
	PropertyID      *int64    `json:"propertyId"`
	MessageID       *int64    `json:"messageId"`
}

// Create validates and stores a new meeting, then invites the
// participant by message. The property ID is required up front; a
// linked message never supplies it.
func (s *Service) Create(creator *user.User, in CreateInput) (*Meeting, error) {
	if in.ParticipantID == 0 {
		return nil, fmt.Errorf("%w: participant is required", ErrInvalid)
	}
	if in.ParticipantID == creator.ID {
		return nil, fmt.Errorf("%w: cannot meet with yourself", ErrInvalid)
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if !in.MeetingTime.After(time.Now()) {
		return nil, fmt.Errorf("%w: meeting time must be in the future", ErrInvalid)
	}
	if in.PropertyID == nil {
		return nil, fmt.Errorf("%w: property is required", ErrInvalid)
	}
	if _, err := s.users.GetByID(in.ParticipantID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("looking up participant: %w", err)
	}

	duration := in.DurationMinutes
	if duration <= 0 {
		duration = 30
	}

	m, err := s.repo.Insert(&Meeting{
		CreatorID:       creator.ID,
		ParticipantID:   in.ParticipantID,
		Title:           strings.TrimSpace(in.Title),
		Description:     in.Description,
		MeetingTime:     in.MeetingTime,
		DurationMinutes: duration,
		Location:        in.Location,
		MeetingLink:     in.MeetingLink,
		PropertyID:      *in.PropertyID,
		MessageID:       in.MessageID,
		Status:          StatusPending,
	})
	if err != nil {
		return nil, err
	}

	s.notify(creator, m, "Meeting invitation: "+m.Title,
		fmt.Sprintf("%s invited you to %q on %s.", creator.FullName(), m.Title, m.MeetingTime.Format(time.RFC1123)))

	return m, nil
}

// notify sends a status message to the meeting party that is not the
// actor. A send failure is logged, never propagated: the meeting
// mutation has already committed.
func (s *Service) notify(actor *user.User, m *Meeting, subject, content string) {
	_, err := s.messages.Send(actor, message.SendInput{
		ReceiverID: m.OtherParty(actor.ID),
		PropertyID: &m.PropertyID,
		Subject:    subject,
		Content:    content,
	})
	if err != nil {
		slog.Error("sending meeting notification", "meeting", m.ID, "error", err)
	}
}

// Get returns a meeting. Parties and admins only.
func (s *Service) Get(actor *user.User, id int64) (*Meeting, error) {
	m, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !m.IsParty(actor.ID) && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return m, nil
}

// Upcoming returns the user's future meetings.
func (s *Service) Upcoming(userID int64) ([]*Meeting, error) {
	return s.repo.Upcoming(userID, time.Now())
}

// Past returns the user's past meetings.
func (s *Service) Past(userID int64) ([]*Meeting, error) {
	return s.repo.Past(userID, time.Now())
}

// Created returns the meetings the user created.
func (s *Service) Created(userID int64) ([]*Meeting, error) {
	return s.repo.Created(userID)
}

// Participating returns the meetings the user was invited to.
func (s *Service) Participating(userID int64) ([]*Meeting, error) {
	return s.repo.Participating(userID)
}

// ByMessage returns the meetings linked to a message. Parties only.
func (s *Service) ByMessage(actor *user.User, messageID int64) ([]*Meeting, error) {
	meetings, err := s.repo.ByMessage(messageID)
	return filterParty(actor, meetings, err)
}

// ByProperty returns the actor's meetings about a property.
func (s *Service) ByProperty(actor *user.User, propertyID int64) ([]*Meeting, error) {
	meetings, err := s.repo.ByProperty(propertyID)
	return filterParty(actor, meetings, err)
}

func filterParty(actor *user.User, meetings []*Meeting, err error) ([]*Meeting, error) {
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() {
		return meetings, nil
	}
	var mine []*Meeting
	for _, m := range meetings {
		if m.IsParty(actor.ID) {
			mine = append(mine, m)
		}
	}
	return mine, nil
}

// Accept moves a PENDING meeting to ACCEPTED. Participant only.
func (s *Service) Accept(actor *user.User, id int64) (*Meeting, error) {
	return s.transition(actor, id, StatusAccepted)
}

// Decline moves a PENDING meeting to DECLINED. Participant only.
func (s *Service) Decline(actor *user.User, id int64) (*Meeting, error) {
	return s.transition(actor, id, StatusDeclined)
}

// Cancel moves a PENDING or ACCEPTED meeting to CANCELLED. Creator only.
func (s *Service) Cancel(actor *user.User, id int64) (*Meeting, error) {
	return s.transition(actor, id, StatusCancelled)
}

// Complete moves a meeting to COMPLETED. Either party may complete.
func (s *Service) Complete(actor *user.User, id int64) (*Meeting, error) {
	return s.transition(actor, id, StatusCompleted)
}

// transition enforces who may move a meeting into the target status
// and from which states, then clears both reminder flags and notifies
// the other party.
func (s *Service) transition(actor *user.User, id int64, target Status) (*Meeting, error) {
	m, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !m.IsParty(actor.ID) {
		return nil, ErrForbidden
	}

	switch target {
	case StatusAccepted, StatusDeclined:
		if actor.ID != m.ParticipantID {
			return nil, fmt.Errorf("%w: only the participant may respond", ErrForbidden)
		}
		if m.Status != StatusPending {
			return nil, fmt.Errorf("%w: meeting is %s, not PENDING", ErrInvalid, m.Status)
		}
	case StatusCancelled:
		if actor.ID != m.CreatorID {
			return nil, fmt.Errorf("%w: only the creator may cancel", ErrForbidden)
		}
		if m.Status != StatusPending && m.Status != StatusAccepted {
			return nil, fmt.Errorf("%w: meeting is %s", ErrInvalid, m.Status)
		}
	case StatusCompleted:
		// Either party, from any state.
	default:
		return nil, fmt.Errorf("%w: invalid target status %s", ErrInvalid, target)
	}

	if err := s.repo.UpdateStatus(id, target); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	s.notify(actor, updated, fmt.Sprintf("Meeting %s: %s", strings.ToLower(string(target)), updated.Title),
		fmt.Sprintf("%s marked the meeting %q as %s.", actor.FullName(), updated.Title, target))

	return updated, nil
}

// UpdateInput carries the fields of a partial meeting update. Nil
// fields keep their current values.
type UpdateInput struct {
	Title           *string    `json:"title"`
	Description     *string    `json:"description"`
	MeetingTime     *time.Time `json:"meetingTime"`
	DurationMinutes *int       `json:"durationMinutes"`
	Location        *string    `json:"location"`
	MeetingLink     *string    `json:"meetingLink"`
	PropertyID      *int64     `json:"propertyId"`
}

// Update applies a partial update, clears both reminder flags, and
// notifies the participant. Creator only.
func (s *Service) Update(actor *user.User, id int64, in UpdateInput) (*Meeting, error) {
	m, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if actor.ID != m.CreatorID {
		return nil, fmt.Errorf("%w: only the creator may update", ErrForbidden)
	}
	if in.MeetingTime != nil && !in.MeetingTime.After(time.Now()) {
		return nil, fmt.Errorf("%w: meeting time must be in the future", ErrInvalid)
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalid)
	}

	updated, err := s.repo.Update(id, UpdateFields{
		Title:           in.Title,
		Description:     in.Description,
		MeetingTime:     in.MeetingTime,
		DurationMinutes: in.DurationMinutes,
		Location:        in.Location,
		MeetingLink:     in.MeetingLink,
		PropertyID:      in.PropertyID,
	})
	if err != nil {
		return nil, err
	}

	s.notify(actor, updated, "Meeting updated: "+updated.Title,
		fmt.Sprintf("%s updated the meeting %q, now on %s.", actor.FullName(), updated.Title, updated.MeetingTime.Format(time.RFC1123)))

	return updated, nil
}

// Delete notifies the participant and removes the meeting. Creator only.
func (s *Service) Delete(actor *user.User, id int64) error {
	m, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if actor.ID != m.CreatorID {
		return fmt.Errorf("%w: only the creator may delete", ErrForbidden)
	}

	s.notify(actor, m, "Meeting removed: "+m.Title,
		fmt.Sprintf("%s removed the meeting %q.", actor.FullName(), m.Title))

	return s.repo.Delete(id)
}

// MarkNotified sets the calling party's reminder flag.
func (s *Service) MarkNotified(actor *user.User, id int64) (*Meeting, error) {
	m, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !m.IsParty(actor.ID) {
		return nil, ErrForbidden
	}

	creator, participant := m.CreatorNotified, m.ParticipantNotified
	if actor.ID == m.CreatorID {
		creator = true
	} else {
		participant = true
	}
	if err := s.repo.SetNotifiedFlags(id, creator, participant); err != nil {
		return nil, err
	}

	return s.repo.GetByID(id)
}
