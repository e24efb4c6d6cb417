package meetings

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store persists meetings. The Postgres implementation is the durable
// variant; UnavailableStore stands in when no database is configured.
type Store interface {
	// Insert writes a confirmed meeting. A confirmed meeting already
	// holding the slot causes ErrSlotUnavailable.
	Insert(ctx context.Context, m *Meeting) error
	// GetByID fetches a meeting by primary key.
	GetByID(ctx context.Context, id uuid.UUID) (*Meeting, error)
	// GetConfirmedBySlotID fetches the confirmed meeting on a slot, if
	// any. Returns ErrNotFound when the slot is free.
	GetConfirmedBySlotID(ctx context.Context, slotID string) (*Meeting, error)
	// ConfirmedSlotIDs lists slot IDs of confirmed meetings starting in
	// [from, to).
	ConfirmedSlotIDs(ctx context.Context, from, to time.Time) ([]string, error)
	// UpdateSchedule moves a meeting to a new slot and start time.
	UpdateSchedule(ctx context.Context, id uuid.UUID, slotID string, start time.Time, notes string) error
	// Cancel sets status to cancelled.
	Cancel(ctx context.Context, id uuid.UUID) error
	// ListUpcomingByEmail lists confirmed meetings for a visitor email
	// starting after now, soonest first.
	ListUpcomingByEmail(ctx context.Context, email string, now time.Time) ([]Meeting, error)
	// GetStats aggregates meeting counts.
	GetStats(ctx context.Context, now time.Time) (*Stats, error)
}
