package meetings

import "errors"

var (
	// ErrSlotUnavailable means the requested slot already holds a
	// confirmed meeting.
	ErrSlotUnavailable = errors.New("meetings: slot unavailable")

	// ErrNotFound means no meeting matches the given ID.
	ErrNotFound = errors.New("meetings: not found")

	// ErrNotConfirmed means the operation requires a confirmed meeting.
	ErrNotConfirmed = errors.New("meetings: meeting is not confirmed")

	// ErrValidation covers malformed booking input.
	ErrValidation = errors.New("meetings: invalid request")

	// ErrStoreUnavailable means the datastore cannot be reached.
	// Booking never proceeds on a best-effort basis without it.
	ErrStoreUnavailable = errors.New("meetings: datastore unavailable")
)
