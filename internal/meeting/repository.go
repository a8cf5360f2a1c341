package meeting

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when no meeting matches the given ID.
var ErrNotFound = errors.New("meeting not found")

// Repository stores and queries meetings.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a meeting repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectSQL = `SELECT m.id, m.creator_id, m.participant_id, m.title, m.description, m.meeting_time,
	m.duration_minutes, m.location, m.meeting_link, m.property_id, m.message_id, m.status,
	m.creator_notified, m.participant_notified, m.created_at, m.updated_at,
	c.first_name || ' ' || c.last_name, p.first_name || ' ' || p.last_name
	FROM meetings m
	JOIN users c ON c.id = m.creator_id
	JOIN users p ON p.id = m.participant_id`

func scanMeeting(row interface{ Scan(...interface{}) error }) (*Meeting, error) {
	var m Meeting
	var messageID sql.NullInt64
	err := row.Scan(
		&m.ID, &m.CreatorID, &m.ParticipantID, &m.Title, &m.Description, &m.MeetingTime,
		&m.DurationMinutes, &m.Location, &m.MeetingLink, &m.PropertyID, &messageID, &m.Status,
		&m.CreatorNotified, &m.ParticipantNotified, &m.CreatedAt, &m.UpdatedAt,
		&m.CreatorName, &m.ParticipantName,
	)
	if err != nil {
		return nil, err
	}
	if messageID.Valid {
		m.MessageID = &messageID.Int64
	}
	return &m, nil
}

// Insert stores a new meeting and returns it with its generated ID.
func (r *Repository) Insert(m *Meeting) (*Meeting, error) {
	result, err := r.db.Exec(
		`INSERT INTO meetings (creator_id, participant_id, title, description, meeting_time, duration_minutes, location, meeting_link, property_id, message_id, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.CreatorID, m.ParticipantID, m.Title, m.Description, m.MeetingTime,
		m.DurationMinutes, m.Location, m.MeetingLink, m.PropertyID, m.MessageID, string(m.Status),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting meeting: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting insert id: %w", err)
	}

	return r.GetByID(id)
}

// GetByID returns a meeting by its ID.
func (r *Repository) GetByID(id int64) (*Meeting, error) {
	row := r.db.QueryRow(selectSQL+" WHERE m.id = ?", id)
	m, err := scanMeeting(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying meeting %d: %w", id, err)
	}
	return m, nil
}

// Upcoming returns the user's future meetings, soonest first.
func (r *Repository) Upcoming(userID int64, now time.Time) ([]*Meeting, error) {
	return r.queryMeetings(
		selectSQL+" WHERE (m.creator_id = ? OR m.participant_id = ?) AND m.meeting_time >= ? ORDER BY m.meeting_time ASC, m.id ASC",
		userID, userID, now,
	)
}

// Past returns the user's past meetings, most recent first.
func (r *Repository) Past(userID int64, now time.Time) ([]*Meeting, error) {
	return r.queryMeetings(
		selectSQL+" WHERE (m.creator_id = ? OR m.participant_id = ?) AND m.meeting_time < ? ORDER BY m.meeting_time DESC, m.id DESC",
		userID, userID, now,
	)
}

// Created returns the meetings the user created, soonest first.
func (r *Repository) Created(userID int64) ([]*Meeting, error) {
	return r.queryMeetings(selectSQL+" WHERE m.creator_id = ? ORDER BY m.meeting_time ASC, m.id ASC", userID)
}

// Participating returns the meetings the user was invited to, soonest first.
func (r *Repository) Participating(userID int64) ([]*Meeting, error) {
	return r.queryMeetings(selectSQL+" WHERE m.participant_id = ? ORDER BY m.meeting_time ASC, m.id ASC", userID)
}

// ByMessage returns the meetings linked to an originating message.
func (r *Repository) ByMessage(messageID int64) ([]*Meeting, error) {
	return r.queryMeetings(selectSQL+" WHERE m.message_id = ? ORDER BY m.meeting_time ASC, m.id ASC", messageID)
}

// ByProperty returns the meetings about a property.
func (r *Repository) ByProperty(propertyID int64) ([]*Meeting, error) {
	return r.queryMeetings(selectSQL+" WHERE m.property_id = ? ORDER BY m.meeting_time ASC, m.id ASC", propertyID)
}

// DueForReminder returns ACCEPTED meetings starting within (now, until]
// where at least one party has not been reminded yet.
func (r *Repository) DueForReminder(now, until time.Time) ([]*Meeting, error) {
	return r.queryMeetings(
		selectSQL+` WHERE m.status = ? AND m.meeting_time > ? AND m.meeting_time <= ?
			AND (m.creator_notified = 0 OR m.participant_notified = 0)
			ORDER BY m.meeting_time ASC, m.id ASC`,
		string(StatusAccepted), now, until,
	)
}

func (r *Repository) queryMeetings(query string, args ...interface{}) (meetings []*Meeting, err error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying meetings: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning meeting: %w", err)
		}
		meetings = append(meetings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating meetings: %w", err)
	}

	return meetings, nil
}

// UpdateFields holds optional changes for a partial meeting update.
// Nil fields keep their current values.
type UpdateFields struct {
	Title           *string
	Description     *string
	MeetingTime     *time.Time
	DurationMinutes *int
	Location        *string
	MeetingLink     *string
	PropertyID      *int64
}

// Update applies the non-nil fields and clears both notified flags.
func (r *Repository) Update(id int64, f UpdateFields) (*Meeting, error) {
	var sets []string
	var args []interface{}

	set := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if f.Title != nil {
		set("title", *f.Title)
	}
	if f.Description != nil {
		set("description", *f.Description)
	}
	if f.MeetingTime != nil {
		set("meeting_time", *f.MeetingTime)
	}
	if f.DurationMinutes != nil {
		set("duration_minutes", *f.DurationMinutes)
	}
	if f.Location != nil {
		set("location", *f.Location)
	}
	if f.MeetingLink != nil {
		set("meeting_link", *f.MeetingLink)
	}
	if f.PropertyID != nil {
		set("property_id", *f.PropertyID)
	}

	sets = append(sets, "creator_notified = 0", "participant_notified = 0", "updated_at = CURRENT_TIMESTAMP")
	query := "UPDATE meetings SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	args = append(args, id)

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return nil, fmt.Errorf("updating meeting %d: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return nil, ErrNotFound
	}

	return r.GetByID(id)
}

// UpdateStatus sets a meeting's status and clears both notified flags.
func (r *Repository) UpdateStatus(id int64, status Status) error {
	result, err := r.db.Exec(
		"UPDATE meetings SET status = ?, creator_notified = 0, participant_notified = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("updating meeting status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// SetNotifiedFlags stores both reminder flags.
func (r *Repository) SetNotifiedFlags(id int64, creator, participant bool) error {
	result, err := r.db.Exec(
		"UPDATE meetings SET creator_notified = ?, participant_notified = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		creator, participant, id,
	)
	if err != nil {
		return fmt.Errorf("updating notified flags: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a meeting by ID.
func (r *Repository) Delete(id int64) error {
	result, err := r.db.Exec("DELETE FROM meetings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting meeting: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}
