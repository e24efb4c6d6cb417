package meetings

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UnavailableStore is the Store used when no database is configured.
// Every method fails with ErrStoreUnavailable: writes and lookups
// surface the outage, while the availability path treats the failed
// read as an empty booked-slot set and flags the result degraded.
type UnavailableStore struct{}

func (UnavailableStore) Insert(ctx context.Context, m *Meeting) error {
	return ErrStoreUnavailable
}

func (UnavailableStore) GetByID(ctx context.Context, id uuid.UUID) (*Meeting, error) {
	return nil, ErrStoreUnavailable
}

func (UnavailableStore) GetConfirmedBySlotID(ctx context.Context, slotID string) (*Meeting, error) {
	return nil, ErrStoreUnavailable
}

func (UnavailableStore) ConfirmedSlotIDs(ctx context.Context, from, to time.Time) ([]string, error) {
	return nil, ErrStoreUnavailable
}

func (UnavailableStore) UpdateSchedule(ctx context.Context, id uuid.UUID, slotID string, start time.Time, notes string) error {
	return ErrStoreUnavailable
}

func (UnavailableStore) Cancel(ctx context.Context, id uuid.UUID) error {
	return ErrStoreUnavailable
}

func (UnavailableStore) ListUpcomingByEmail(ctx context.Context, email string, now time.Time) ([]Meeting, error) {
	return nil, ErrStoreUnavailable
}

func (UnavailableStore) GetStats(ctx context.Context, now time.Time) (*Stats, error) {
	return nil, ErrStoreUnavailable
}
