package meeting

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/crvarsha0102/HabiTrack/internal/db"
	"github.com/crvarsha0102/HabiTrack/internal/listing"
	"github.com/crvarsha0102/HabiTrack/internal/message"
	"github.com/crvarsha0102/HabiTrack/internal/user"
)

type fixture struct {
	svc         *Service
	messages    *message.Service
	creator     *user.User
	participant *user.User
	outsider    *user.User
	propertyID  int64
}

func setup(t *testing.T) *fixture {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() {
		if err := database.Close(); err != nil {
			t.Errorf("closing test db: %v", err)
		}
	})

	users := user.NewRepository(database)
	listings := listing.NewRepository(database)
	messages := message.NewService(message.NewRepository(database), users, listings)

	newUser := func(first, email string) *user.User {
		u, err := users.Create(&user.User{FirstName: first, LastName: "T", Email: email, Password: "x"})
		if err != nil {
			t.Fatalf("creating %s: %v", email, err)
		}
		return u
	}
	creator := newUser("Carol", "carol@example.com")
	participant := newUser("Pat", "pat@example.com")
	outsider := newUser("Oz", "oz@example.com")

	l, err := listings.Insert(&listing.Listing{
		Name: "Meet House", Description: "d", Address: "a", Price: 1,
		Status: listing.StatusActive, ListingType: "SALE", PropertyType: listing.TypeHouse,
		UserID: creator.ID,
	})
	if err != nil {
		t.Fatalf("inserting listing: %v", err)
	}

	return &fixture{
		svc:         NewService(NewRepository(database), users, messages),
		messages:    messages,
		creator:     creator,
		participant: participant,
		outsider:    outsider,
		propertyID:  l.ID,
	}
}

func (f *fixture) validInput() CreateInput {
	return CreateInput{
		ParticipantID: f.participant.ID,
		Title:         "Viewing",
		MeetingTime:   time.Now().Add(24 * time.Hour),
		PropertyID:    &f.propertyID,
	}
}

func (f *fixture) create(t *testing.T) *Meeting {
	t.Helper()
	m, err := f.svc.Create(f.creator, f.validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return m
}

func TestCreateMeeting(t *testing.T) {
	f := setup(t)

	m := f.create(t)
	if m.Status != StatusPending {
		t.Errorf("status = %q, want PENDING", m.Status)
	}
	if m.DurationMinutes != 30 {
		t.Errorf("duration = %d, want default 30", m.DurationMinutes)
	}
	if m.CreatorName != "Carol T" || m.ParticipantName != "Pat T" {
		t.Errorf("display names = %q / %q", m.CreatorName, m.ParticipantName)
	}

	// Creation invites the participant by message.
	inbox, err := f.messages.Inbox(f.participant.ID)
	if err != nil {
		t.Fatalf("inbox: %v", err)
	}
	if len(inbox) != 1 {
		t.Fatalf("participant inbox has %d messages, want 1", len(inbox))
	}
	if inbox[0].Subject != "Meeting invitation: Viewing" {
		t.Errorf("subject = %q", inbox[0].Subject)
	}
}

func TestCreateRejectsPastTime(t *testing.T) {
	f := setup(t)

	in := f.validInput()
	in.MeetingTime = time.Now().Add(-time.Hour)
	if _, err := f.svc.Create(f.creator, in); !errors.Is(err, ErrInvalid) {
		t.Errorf("past time err = %v, want ErrInvalid", err)
	}
}

func TestCreateRequiresProperty(t *testing.T) {
	f := setup(t)

	in := f.validInput()
	in.PropertyID = nil
	if _, err := f.svc.Create(f.creator, in); !errors.Is(err, ErrInvalid) {
		t.Errorf("nil property err = %v, want ErrInvalid", err)
	}
}

func TestCreateLinkedMessageDoesNotSupplyProperty(t *testing.T) {
	f := setup(t)

	// Even a linked message that carries a property does not stand in
	// for an explicit property ID.
	linked, err := f.messages.Send(f.participant, message.SendInput{
		ReceiverID: f.creator.ID,
		PropertyID: &f.propertyID,
		Content:    "can we meet?",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	in := f.validInput()
	in.PropertyID = nil
	in.MessageID = &linked.ID
	if _, err := f.svc.Create(f.creator, in); !errors.Is(err, ErrInvalid) {
		t.Errorf("nil property with linked message err = %v, want ErrInvalid", err)
	}

	// With the property given explicitly, the message link is kept as is.
	in.PropertyID = &f.propertyID
	m, err := f.svc.Create(f.creator, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if m.MessageID == nil || *m.MessageID != linked.ID {
		t.Errorf("messageID = %v, want %d", m.MessageID, linked.ID)
	}
}

func TestAcceptParticipantOnly(t *testing.T) {
	f := setup(t)
	m := f.create(t)

	if _, err := f.svc.Accept(f.creator, m.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("creator accept err = %v, want ErrForbidden", err)
	}
	if _, err := f.svc.Accept(f.outsider, m.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("outsider accept err = %v, want ErrForbidden", err)
	}

	accepted, err := f.svc.Accept(f.participant, m.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != StatusAccepted {
		t.Errorf("status = %q, want ACCEPTED", accepted.Status)
	}

	// Only from PENDING.
	if _, err := f.svc.Decline(f.participant, m.ID); !errors.Is(err, ErrInvalid) {
		t.Errorf("decline after accept err = %v, want ErrInvalid", err)
	}
}

func TestCancelCreatorOnly(t *testing.T) {
	f := setup(t)
	m := f.create(t)

	if _, err := f.svc.Cancel(f.participant, m.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("participant cancel err = %v, want ErrForbidden", err)
	}

	cancelled, err := f.svc.Cancel(f.creator, m.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Errorf("status = %q, want CANCELLED", cancelled.Status)
	}

	// Cancelled meetings cannot be cancelled again.
	if _, err := f.svc.Cancel(f.creator, m.ID); !errors.Is(err, ErrInvalid) {
		t.Errorf("second cancel err = %v, want ErrInvalid", err)
	}
}

func TestCompleteEitherParty(t *testing.T) {
	f := setup(t)

	m := f.create(t)
	completed, err := f.svc.Complete(f.participant, m.ID)
	if err != nil {
		t.Fatalf("participant complete: %v", err)
	}
	if completed.Status != StatusCompleted {
		t.Errorf("status = %q, want COMPLETED", completed.Status)
	}

	m2 := f.create(t)
	if _, err := f.svc.Complete(f.creator, m2.ID); err != nil {
		t.Fatalf("creator complete: %v", err)
	}
	if _, err := f.svc.Complete(f.outsider, m2.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("outsider complete err = %v, want ErrForbidden", err)
	}
}

func TestTransitionClearsFlagsAndNotifies(t *testing.T) {
	f := setup(t)
	m := f.create(t)

	// Pretend both parties were already reminded.
	if err := f.svc.repo.SetNotifiedFlags(m.ID, true, true); err != nil {
		t.Fatalf("setting flags: %v", err)
	}

	accepted, err := f.svc.Accept(f.participant, m.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.CreatorNotified || accepted.ParticipantNotified {
		t.Error("transition did not clear notified flags")
	}

	inbox, err := f.messages.Inbox(f.creator.ID)
	if err != nil {
		t.Fatalf("inbox: %v", err)
	}
	if len(inbox) != 1 {
		t.Fatalf("creator inbox has %d messages, want 1", len(inbox))
	}
	if inbox[0].Subject != "Meeting accepted: Viewing" {
		t.Errorf("subject = %q", inbox[0].Subject)
	}
}

func TestUpdateCreatorOnly(t *testing.T) {
	f := setup(t)
	m := f.create(t)

	title := "Rescheduled viewing"
	if _, err := f.svc.Update(f.participant, m.ID, UpdateInput{Title: &title}); !errors.Is(err, ErrForbidden) {
		t.Errorf("participant update err = %v, want ErrForbidden", err)
	}

	past := time.Now().Add(-time.Hour)
	if _, err := f.svc.Update(f.creator, m.ID, UpdateInput{MeetingTime: &past}); !errors.Is(err, ErrInvalid) {
		t.Errorf("past reschedule err = %v, want ErrInvalid", err)
	}

	updated, err := f.svc.Update(f.creator, m.ID, UpdateInput{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != title {
		t.Errorf("title = %q, want %q", updated.Title, title)
	}
	if updated.MeetingTime.Unix() != m.MeetingTime.Unix() {
		t.Errorf("meeting time changed: %v", updated.MeetingTime)
	}
}

func TestDeleteCreatorOnly(t *testing.T) {
	f := setup(t)
	m := f.create(t)

	if err := f.svc.Delete(f.participant, m.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("participant delete err = %v, want ErrForbidden", err)
	}
	if err := f.svc.Delete(f.creator, m.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.svc.Get(f.creator, m.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after delete err = %v, want ErrNotFound", err)
	}
}

func TestGetPartyOrAdminOnly(t *testing.T) {
	f := setup(t)
	m := f.create(t)

	if _, err := f.svc.Get(f.outsider, m.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("outsider get err = %v, want ErrForbidden", err)
	}

	admin := &user.User{ID: 9999, Role: user.RoleAdmin}
	if _, err := f.svc.Get(admin, m.ID); err != nil {
		t.Errorf("admin get: %v", err)
	}
}

func TestMarkNotifiedSetsCallersFlag(t *testing.T) {
	f := setup(t)
	m := f.create(t)

	updated, err := f.svc.MarkNotified(f.participant, m.ID)
	if err != nil {
		t.Fatalf("mark notified: %v", err)
	}
	if !updated.ParticipantNotified || updated.CreatorNotified {
		t.Errorf("flags = creator %v, participant %v", updated.CreatorNotified, updated.ParticipantNotified)
	}

	if _, err := f.svc.MarkNotified(f.outsider, m.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("outsider mark notified err = %v, want ErrForbidden", err)
	}
}

func TestByPropertyAndByMessageFilterToParties(t *testing.T) {
	f := setup(t)

	linked, err := f.messages.Send(f.participant, message.SendInput{
		ReceiverID: f.creator.ID,
		PropertyID: &f.propertyID,
		Content:    "about the house",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	in := f.validInput()
	in.MessageID = &linked.ID
	if _, err := f.svc.Create(f.creator, in); err != nil {
		t.Fatalf("create: %v", err)
	}

	byProp, err := f.svc.ByProperty(f.creator, f.propertyID)
	if err != nil {
		t.Fatalf("by property: %v", err)
	}
	if len(byProp) != 1 {
		t.Errorf("creator sees %d meetings for property, want 1", len(byProp))
	}

	byMsg, err := f.svc.ByMessage(f.participant, linked.ID)
	if err != nil {
		t.Fatalf("by message: %v", err)
	}
	if len(byMsg) != 1 {
		t.Errorf("participant sees %d meetings for message, want 1", len(byMsg))
	}

	// Outsiders get an empty view, not an error.
	hidden, err := f.svc.ByProperty(f.outsider, f.propertyID)
	if err != nil {
		t.Fatalf("outsider by property: %v", err)
	}
	if len(hidden) != 0 {
		t.Errorf("outsider sees %d meetings, want 0", len(hidden))
	}
}

func TestUpcomingAndPast(t *testing.T) {
	f := setup(t)
	f.create(t)

	upcoming, err := f.svc.Upcoming(f.participant.ID)
	if err != nil {
		t.Fatalf("upcoming: %v", err)
	}
	if len(upcoming) != 1 {
		t.Errorf("upcoming = %d meetings, want 1", len(upcoming))
	}

	past, err := f.svc.Past(f.participant.ID)
	if err != nil {
		t.Fatalf("past: %v", err)
	}
	if len(past) != 0 {
		t.Errorf("past = %d meetings, want 0", len(past))
	}
}
