package calendar

import (
	"context"
	"errors"
	"time"

	"github.com/dondo0936/portfolio-assistant/internal/schedule"
)

// ErrUnavailable wraps any provider failure. Callers treat the mirror
// as best-effort and degrade rather than abort.
var ErrUnavailable = errors.New("calendar: provider unavailable")

// EventRequest describes a meeting event to mirror onto the owner's
// calendar.
type EventRequest struct {
	Summary      string
	Description  string
	Start        time.Time
	End          time.Time
	VisitorEmail string
	VisitorName  string
	OwnerEmail   string
}

// EventResult identifies a mirrored event.
type EventResult struct {
	EventID     string
	MeetingLink string
}

// Client is the calendar capability injected into the booking service.
type Client interface {
	// FreeBusy returns the owner's busy intervals in [from, to).
	FreeBusy(ctx context.Context, from, to time.Time) ([]schedule.BusyInterval, error)
	// InsertEvent creates an event with attendees and reminders.
	InsertEvent(ctx context.Context, req EventRequest) (*EventResult, error)
	// PatchEventTime moves an existing event.
	PatchEventTime(ctx context.Context, eventID string, start, end time.Time) error
	// DeleteEvent removes an event. Deleting a missing event is not an
	// error.
	DeleteEvent(ctx context.Context, eventID string) error
}

// Disabled is a no-op Client used when no calendar credentials are
// configured. FreeBusy reports no busy time so availability still works.
type Disabled struct{}

func (Disabled) FreeBusy(ctx context.Context, from, to time.Time) ([]schedule.BusyInterval, error) {
	return nil, nil
}

func (Disabled) InsertEvent(ctx context.Context, req EventRequest) (*EventResult, error) {
	return nil, ErrUnavailable
}

func (Disabled) PatchEventTime(ctx context.Context, eventID string, start, end time.Time) error {
	return ErrUnavailable
}

func (Disabled) DeleteEvent(ctx context.Context, eventID string) error {
	return nil
}
