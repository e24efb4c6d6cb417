package meetings

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Meeting status values. Cancelled meetings stay in the table so the
// slot frees up without losing the record.
const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Meeting type values and their durations.
const (
	TypeConsultation      = "consultation"
	TypeProjectDiscussion = "project-discussion"
	TypeCollaboration     = "collaboration"
	TypeJobOpportunity    = "job-opportunity"
	TypeOther             = "other"
)

// DurationFor returns the meeting length for a meeting type. Unknown
// types get the consultation length.
func DurationFor(meetingType string) time.Duration {
	switch meetingType {
	case TypeProjectDiscussion:
		return 45 * time.Minute
	case TypeCollaboration:
		return 60 * time.Minute
	default:
		return 30 * time.Minute
	}
}

// Meeting is a confirmed or cancelled booking.
type Meeting struct {
	ID              uuid.UUID     `json:"id"`
	SlotID          string        `json:"slot_id"`
	UserName        string        `json:"user_name"`
	UserEmail       string        `json:"user_email"`
	MeetingType     string        `json:"meeting_type"`
	StartTime       time.Time     `json:"start_time"`
	Duration        time.Duration `json:"-"`
	Notes           string        `json:"notes,omitempty"`
	Status          string        `json:"status"`
	CalendarEventID string        `json:"calendar_event_id,omitempty"`
	MeetingLink     string        `json:"meeting_link,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// MarshalJSON renders the duration in minutes, matching the stored
// column, instead of time.Duration's nanoseconds.
func (m Meeting) MarshalJSON() ([]byte, error) {
	type meetingAlias Meeting
	return json.Marshal(struct {
		meetingAlias
		DurationMinutes int `json:"duration_minutes"`
	}{meetingAlias(m), int(m.Duration.Minutes())})
}

// Stats aggregates meeting counts for the dashboard endpoint.
type Stats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
	ByType   map[string]int `json:"by_type"`
	Upcoming int            `json:"upcoming"`
}
