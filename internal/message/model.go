// Package message implements in-app messaging between users.
package message

import "time"

// Message is an in-app message. SenderID is nil for system messages
// (meeting notifications and reminders).
type Message struct {
	ID         int64  `json:"id"`
	SenderID   *int64 `json:"senderId,omitempty"`
	ReceiverID int64  `json:"receiverId"`
	PropertyID *int64 `json:"propertyId,omitempty"`
	Subject    string `json:"subject"`
	Content    string `json:"content"`
	IsRead     bool   `json:"isRead"`

	// Display fields, joined from the users table at read time.
	SenderName   string `json:"senderName,omitempty"`
	SenderEmail  string `json:"senderEmail,omitempty"`
	SenderPhone  string `json:"senderPhone,omitempty"`
	ReceiverName string `json:"receiverName,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
