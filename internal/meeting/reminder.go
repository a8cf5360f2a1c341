package meeting

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/crvarsha0102/HabiTrack/internal/message"
)

// Reminder periodically finds accepted meetings starting soon and
// reminds each party once by system message. It is safe only as a
// single instance per database; runs within one process never overlap.
type Reminder struct {
	meetings *Repository
	messages SystemSender

	interval time.Duration
	window   time.Duration
	now      func() time.Time
	running  atomic.Bool
}

// SystemSender delivers system reminder messages.
type SystemSender interface {
	SendSystem(receiverID int64, propertyID *int64, subject, content string) (*message.Message, error)
}

// NewReminder creates a reminder job scanning every 15 minutes for
// meetings starting within the next hour.
func NewReminder(meetings *Repository, messages SystemSender) *Reminder {
	return &Reminder{
		meetings: meetings,
		messages: messages,
		interval: 15 * time.Minute,
		window:   time.Hour,
		now:      time.Now,
	}
}

// Start runs the reminder loop until ctx is cancelled.
func (r *Reminder) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := r.RunOnce(); err != nil {
					slog.Error("meeting reminder run failed", "error", err)
				}
			}
		}
	}()
}

// RunOnce performs a single reminder sweep. A sweep still in progress
// causes the next one to be skipped rather than overlap.
func (r *Reminder) RunOnce() error {
	if !r.running.CompareAndSwap(false, true) {
		slog.Warn("meeting reminder sweep still running, skipping")
		return nil
	}
	defer r.running.Store(false)

	now := r.now()
	due, err := r.meetings.DueForReminder(now, now.Add(r.window))
	if err != nil {
		return fmt.Errorf("finding due meetings: %w", err)
	}

	for _, m := range due {
		creator, participant := m.CreatorNotified, m.ParticipantNotified

		if !creator && r.remind(m, m.CreatorID) {
			creator = true
		}
		if !participant && r.remind(m, m.ParticipantID) {
			participant = true
		}

		if creator != m.CreatorNotified || participant != m.ParticipantNotified {
			if err := r.meetings.SetNotifiedFlags(m.ID, creator, participant); err != nil {
				slog.Error("persisting reminder flags", "meeting", m.ID, "error", err)
			}
		}
	}

	return nil
}

// remind sends one reminder and reports whether it was delivered.
// Failed sends stay un-flagged so the next sweep retries them.
func (r *Reminder) remind(m *Meeting, userID int64) bool {
	content := fmt.Sprintf("Reminder: the meeting %q starts at %s.", m.Title, m.MeetingTime.Format(time.RFC1123))
	if _, err := r.messages.SendSystem(userID, &m.PropertyID, "Meeting reminder: "+m.Title, content); err != nil {
		slog.Error("sending meeting reminder", "meeting", m.ID, "user", userID, "error", err)
		return false
	}
	return true
}
