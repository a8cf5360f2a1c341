package message

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when no message matches the given ID.
var ErrNotFound = errors.New("message not found")

// Repository stores and queries messages.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a message repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// selectSQL joins sender and receiver display fields. The sender join
// is LEFT so system messages (NULL sender) still come back.
const selectSQL = `SELECT m.id, m.sender_id, m.receiver_id, m.property_id, m.subject, m.content, m.is_read, m.created_at, m.updated_at,
	COALESCE(s.first_name || ' ' || s.last_name, ''), COALESCE(s.email, ''), COALESCE(s.phone, ''),
	r.first_name || ' ' || r.last_name
	FROM messages m
	LEFT JOIN users s ON s.id = m.sender_id
	JOIN users r ON r.id = m.receiver_id`

func scanMessage(row interface{ Scan(...interface{}) error }) (*Message, error) {
	var m Message
	var senderID, propertyID sql.NullInt64
	err := row.Scan(
		&m.ID, &senderID, &m.ReceiverID, &propertyID, &m.Subject, &m.Content,
		&m.IsRead, &m.CreatedAt, &m.UpdatedAt,
		&m.SenderName, &m.SenderEmail, &m.SenderPhone, &m.ReceiverName,
	)
	if err != nil {
		return nil, err
	}
	if senderID.Valid {
		m.SenderID = &senderID.Int64
	}
	if propertyID.Valid {
		m.PropertyID = &propertyID.Int64
	}
	return &m, nil
}

// Insert stores a new message and returns it with its generated ID.
func (r *Repository) Insert(m *Message) (*Message, error) {
	result, err := r.db.Exec(
		"INSERT INTO messages (sender_id, receiver_id, property_id, subject, content) VALUES (?, ?, ?, ?, ?)",
		m.SenderID, m.ReceiverID, m.PropertyID, m.Subject, m.Content,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting insert id: %w", err)
	}

	return r.GetByID(id)
}

// GetByID returns a message by its ID.
func (r *Repository) GetByID(id int64) (*Message, error) {
	row := r.db.QueryRow(selectSQL+" WHERE m.id = ?", id)
	m, err := scanMessage(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying message %d: %w", id, err)
	}
	return m, nil
}

// Inbox returns messages received by the user, newest first.
func (r *Repository) Inbox(userID int64) ([]*Message, error) {
	return r.queryMessages(selectSQL+" WHERE m.receiver_id = ? ORDER BY m.created_at DESC, m.id DESC", userID)
}

// Sent returns messages sent by the user, newest first.
func (r *Repository) Sent(userID int64) ([]*Message, error) {
	return r.queryMessages(selectSQL+" WHERE m.sender_id = ? ORDER BY m.created_at DESC, m.id DESC", userID)
}

// Unread returns the user's unread received messages, newest first.
func (r *Repository) Unread(userID int64) ([]*Message, error) {
	return r.queryMessages(selectSQL+" WHERE m.receiver_id = ? AND m.is_read = 0 ORDER BY m.created_at DESC, m.id DESC", userID)
}

// UnreadCount returns how many unread messages the user has.
func (r *Repository) UnreadCount(userID int64) (int64, error) {
	var count int64
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM messages WHERE receiver_id = ? AND is_read = 0",
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting unread messages: %w", err)
	}
	return count, nil
}

// Conversation returns all messages exchanged between two users,
// oldest first.
func (r *Repository) Conversation(userID, otherID int64) ([]*Message, error) {
	return r.queryMessages(
		selectSQL+` WHERE (m.sender_id = ? AND m.receiver_id = ?) OR (m.sender_id = ? AND m.receiver_id = ?)
			ORDER BY m.created_at ASC, m.id ASC`,
		userID, otherID, otherID, userID,
	)
}

// ByProperty returns the user's messages about a property, newest first.
func (r *Repository) ByProperty(userID, propertyID int64) ([]*Message, error) {
	return r.queryMessages(
		selectSQL+" WHERE m.property_id = ? AND (m.sender_id = ? OR m.receiver_id = ?) ORDER BY m.created_at DESC, m.id DESC",
		propertyID, userID, userID,
	)
}

func (r *Repository) queryMessages(query string, args ...interface{}) (messages []*Message, err error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}

	return messages, nil
}

// MarkRead flags a message as read.
func (r *Repository) MarkRead(id int64) error {
	result, err := r.db.Exec(
		"UPDATE messages SET is_read = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		id,
	)
	if err != nil {
		return fmt.Errorf("marking message read: %w", err)
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

// Delete removes a message by ID.
func (r *Repository) Delete(id int64) error {
	result, err := r.db.Exec("DELETE FROM messages WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting message: %w", err)
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
