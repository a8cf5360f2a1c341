// Package meeting implements meeting scheduling between users and the
// periodic reminder job.
package meeting

import (
	"strings"
	"time"
)

// Status is a meeting's lifecycle state.
type Status string

// Meeting statuses.
const (
	StatusPending   Status = "PENDING"
	StatusAccepted  Status = "ACCEPTED"
	StatusDeclined  Status = "DECLINED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

// ValidStatus reports whether s names a known status.
func ValidStatus(s string) bool {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusPending, StatusAccepted, StatusDeclined, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Meeting is a scheduled appointment between two users about a property.
type Meeting struct {
	ID              int64     `json:"id"`
	CreatorID       int64     `json:"creatorId"`
	ParticipantID   int64     `json:"participantId"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	MeetingTime     time.Time `json:"meetingTime"`
	DurationMinutes int       `json:"durationMinutes"`
	Location        string    `json:"location,omitempty"`
	MeetingLink     string    `json:"meetingLink,omitempty"`
	PropertyID      int64     `json:"propertyId"`
	MessageID       *int64    `json:"messageId,omitempty"`
	Status          Status    `json:"status"`

	// Per-party reminder flags, cleared on every status change.
	CreatorNotified     bool `json:"creatorNotified"`
	ParticipantNotified bool `json:"participantNotified"`

	// Display fields, joined from the users table at read time.
	CreatorName     string `json:"creatorName,omitempty"`
	ParticipantName string `json:"participantName,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OtherParty returns the meeting party that is not userID.
func (m *Meeting) OtherParty(userID int64) int64 {
	if userID == m.CreatorID {
		return m.ParticipantID
	}
	return m.CreatorID
}

// IsParty reports whether userID is the creator or participant.
func (m *Meeting) IsParty(userID int64) bool {
	return userID == m.CreatorID || userID == m.ParticipantID
}
