package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/dondo0936/portfolio-assistant/internal/schedule"
	"github.com/dondo0936/portfolio-assistant/pkg/logging"
)

// GoogleClient mirrors meetings onto a Google Calendar.
type GoogleClient struct {
	svc        *gcal.Service
	calendarID string
	timeout    time.Duration
	logger     *logging.Logger
}

// NewGoogleClient builds a client from service account credentials JSON.
func NewGoogleClient(ctx context.Context, credentialsJSON []byte, calendarID string, timeout time.Duration, logger *logging.Logger) (*GoogleClient, error) {
	if logger == nil {
		logger = logging.Default()
	}
	svc, err := gcal.NewService(ctx, option.WithCredentialsJSON(credentialsJSON))
	if err != nil {
		return nil, fmt.Errorf("calendar: create service: %w", err)
	}
	return &GoogleClient{
		svc:        svc,
		calendarID: calendarID,
		timeout:    timeout,
		logger:     logger,
	}, nil
}

// FreeBusy queries the owner calendar for busy windows in [from, to).
func (c *GoogleClient) FreeBusy(ctx context.Context, from, to time.Time) ([]schedule.BusyInterval, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.svc.Freebusy.Query(&gcal.FreeBusyRequest{
		TimeMin: from.Format(time.RFC3339),
		TimeMax: to.Format(time.RFC3339),
		Items:   []*gcal.FreeBusyRequestItem{{Id: c.calendarID}},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: freebusy query: %v", ErrUnavailable, err)
	}

	cal, ok := resp.Calendars[c.calendarID]
	if !ok {
		return nil, nil
	}
	busy := make([]schedule.BusyInterval, 0, len(cal.Busy))
	for _, period := range cal.Busy {
		start, err := time.Parse(time.RFC3339, period.Start)
		if err != nil {
			c.logger.Warn("skipping unparseable busy period", "start", period.Start)
			continue
		}
		end, err := time.Parse(time.RFC3339, period.End)
		if err != nil {
			c.logger.Warn("skipping unparseable busy period", "end", period.End)
			continue
		}
		busy = append(busy, schedule.BusyInterval{Start: start, End: end})
	}
	return busy, nil
}

// InsertEvent creates the event with visitor and owner as attendees,
// email reminders at 24h and 10m, a popup at 30m, and a Meet link.
func (c *GoogleClient) InsertEvent(ctx context.Context, req EventRequest) (*EventResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	event := &gcal.Event{
		Summary:     req.Summary,
		Description: req.Description,
		Start:       &gcal.EventDateTime{DateTime: req.Start.Format(time.RFC3339)},
		End:         &gcal.EventDateTime{DateTime: req.End.Format(time.RFC3339)},
		Attendees: []*gcal.EventAttendee{
			{Email: req.VisitorEmail, DisplayName: req.VisitorName},
			{Email: req.OwnerEmail, Organizer: true},
		},
		Reminders: &gcal.EventReminders{
			UseDefault: false,
			Overrides: []*gcal.EventReminder{
				{Method: "email", Minutes: 24 * 60},
				{Method: "popup", Minutes: 30},
				{Method: "email", Minutes: 10},
			},
			ForceSendFields: []string{"UseDefault"},
		},
		ConferenceData: &gcal.ConferenceData{
			CreateRequest: &gcal.CreateConferenceRequest{
				RequestId: uuid.NewString(),
				ConferenceSolutionKey: &gcal.ConferenceSolutionKey{
					Type: "hangoutsMeet",
				},
			},
		},
	}

	created, err := c.svc.Events.Insert(c.calendarID, event).
		ConferenceDataVersion(1).
		SendUpdates("all").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: insert event: %v", ErrUnavailable, err)
	}
	return &EventResult{
		EventID:     created.Id,
		MeetingLink: created.HangoutLink,
	}, nil
}

// PatchEventTime moves an event to a new window.
func (c *GoogleClient) PatchEventTime(ctx context.Context, eventID string, start, end time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.svc.Events.Patch(c.calendarID, eventID, &gcal.Event{
		Start: &gcal.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:   &gcal.EventDateTime{DateTime: end.Format(time.RFC3339)},
	}).SendUpdates("all").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: patch event %s: %v", ErrUnavailable, eventID, err)
	}
	return nil
}

// DeleteEvent removes an event, treating 404/410 as already gone.
func (c *GoogleClient) DeleteEvent(ctx context.Context, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.svc.Events.Delete(c.calendarID, eventID).SendUpdates("all").Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && (apiErr.Code == 404 || apiErr.Code == 410) {
			return nil
		}
		return fmt.Errorf("%w: delete event %s: %v", ErrUnavailable, eventID, err)
	}
	return nil
}
