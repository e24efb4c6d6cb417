package meetings

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dondo0936/portfolio-assistant/internal/calendar"
	"github.com/dondo0936/portfolio-assistant/internal/observability/metrics"
	"github.com/dondo0936/portfolio-assistant/internal/schedule"
	"github.com/dondo0936/portfolio-assistant/pkg/logging"
)

// Booking outcomes. DegradedOk means the meeting is persisted but the
// calendar mirror did not happen.
const (
	OutcomeOk         = "ok"
	OutcomeDegradedOk = "degraded_ok"
)

// BookRequest carries the validated-by-service booking input.
type BookRequest struct {
	SlotID      string
	Start       time.Time
	UserName    string
	UserEmail   string
	MeetingType string
	Notes       string
}

// BookingResult is the persisted meeting plus the mirror outcome.
type BookingResult struct {
	Meeting *Meeting
	Outcome string
}

// AvailabilityResult carries open slots and whether the calendar could
// be consulted.
type AvailabilityResult struct {
	Slots    []schedule.Slot
	Degraded bool
}

// Notifier receives booking lifecycle events. Delivery is best-effort
// and never affects the booking result.
type Notifier interface {
	MeetingBooked(ctx context.Context, m *Meeting)
	MeetingCancelled(ctx context.Context, m *Meeting)
}

// NopNotifier ignores all events.
type NopNotifier struct{}

func (NopNotifier) MeetingBooked(ctx context.Context, m *Meeting)    {}
func (NopNotifier) MeetingCancelled(ctx context.Context, m *Meeting) {}

// Service coordinates slot generation, the owner's calendar and the
// meetings store. The store's uniqueness constraint is the single point
// of booking correctness; the calendar is a best-effort mirror.
type Service struct {
	store    Store
	cal      calendar.Client
	notifier Notifier
	hours    schedule.BusinessHours
	maxSlots int
	owner    Owner
	metrics  *metrics.Metrics
	logger   *logging.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// Owner identifies the calendar owner added to every mirrored event.
type Owner struct {
	Name  string
	Email string
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithNotifier sets the booking event notifier.
func WithNotifier(n Notifier) ServiceOption {
	return func(s *Service) { s.notifier = n }
}

func NewService(store Store, cal calendar.Client, hours schedule.BusinessHours, maxSlots int, owner Owner, m *metrics.Metrics, logger *logging.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if m == nil {
		m = metrics.NewForTest()
	}
	s := &Service{
		store:    store,
		cal:      cal,
		notifier: NopNotifier{},
		hours:    hours,
		maxSlots: maxSlots,
		owner:    owner,
		metrics:  m,
		logger:   logger,
		tracer:   otel.Tracer("meetings"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Availability computes open slots in [from, to). A calendar or store
// read failure degrades the result instead of failing it; the insert's
// uniqueness constraint still decides any booking made on a degraded
// answer.
func (s *Service) Availability(ctx context.Context, from, to time.Time) (*AvailabilityResult, error) {
	ctx, span := s.tracer.Start(ctx, "meetings.Availability")
	defer span.End()

	now := s.now()
	candidates := schedule.GenerateSlots(from, to, now, s.hours)

	degraded := false
	bookedIDs, err := s.store.ConfirmedSlotIDs(ctx, from, to)
	if err != nil {
		degraded = true
		bookedIDs = nil
		span.RecordError(err)
		s.logger.Warn("booked-slot lookup failed, degrading availability", "error", err)
	}

	busy, err := s.cal.FreeBusy(ctx, from, to)
	if err != nil {
		degraded = true
		busy = nil
		s.metrics.CalendarMirrorFailures.Inc()
		s.logger.Warn("freebusy query failed, degrading availability", "error", err)
	}

	open := schedule.Reconcile(candidates, bookedIDs, busy, s.maxSlots)
	s.metrics.AvailabilityRequests.WithLabelValues(fmt.Sprintf("%t", degraded)).Inc()
	span.SetAttributes(
		attribute.Int("slots.open", len(open)),
		attribute.Bool("degraded", degraded),
	)
	return &AvailabilityResult{Slots: open, Degraded: degraded}, nil
}

// Book confirms a meeting on a slot. The store's unique index decides
// races; the pre-check only avoids a wasted calendar call. A calendar
// failure degrades the booking, it never aborts it.
func (s *Service) Book(ctx context.Context, req BookRequest) (*BookingResult, error) {
	ctx, span := s.tracer.Start(ctx, "meetings.Book")
	defer span.End()
	span.SetAttributes(attribute.String("slot.id", req.SlotID))

	if err := validateBookRequest(&req); err != nil {
		return nil, err
	}

	if _, err := s.store.GetConfirmedBySlotID(ctx, req.SlotID); err == nil {
		s.metrics.BookingConflictsTotal.Inc()
		return nil, ErrSlotUnavailable
	} else if !errors.Is(err, ErrNotFound) {
		span.RecordError(err)
		return nil, err
	}

	duration := DurationFor(req.MeetingType)
	meeting := &Meeting{
		ID:          uuid.New(),
		SlotID:      req.SlotID,
		UserName:    req.UserName,
		UserEmail:   req.UserEmail,
		MeetingType: req.MeetingType,
		StartTime:   req.Start,
		Duration:    duration,
		Notes:       req.Notes,
		Status:      StatusConfirmed,
	}

	outcome := OutcomeOk
	event, err := s.cal.InsertEvent(ctx, calendar.EventRequest{
		Summary:      fmt.Sprintf("%s with %s", titleFor(req.MeetingType), req.UserName),
		Description:  eventDescription(meeting),
		Start:        req.Start,
		End:          req.Start.Add(duration),
		VisitorEmail: req.UserEmail,
		VisitorName:  req.UserName,
		OwnerEmail:   s.owner.Email,
	})
	if err != nil {
		outcome = OutcomeDegradedOk
		s.metrics.CalendarMirrorFailures.Inc()
		s.logger.Warn("calendar mirror failed, booking proceeds", "slot_id", req.SlotID, "error", err)
	} else {
		meeting.CalendarEventID = event.EventID
		meeting.MeetingLink = event.MeetingLink
	}

	if err := s.store.Insert(ctx, meeting); err != nil {
		if errors.Is(err, ErrSlotUnavailable) {
			s.metrics.BookingConflictsTotal.Inc()
			// Lost the race after mirroring: remove the orphan event.
			if meeting.CalendarEventID != "" {
				if delErr := s.cal.DeleteEvent(ctx, meeting.CalendarEventID); delErr != nil {
					s.logger.Error("orphan calendar event left behind", "event_id", meeting.CalendarEventID, "error", delErr)
				}
			}
			return nil, ErrSlotUnavailable
		}
		span.RecordError(err)
		return nil, err
	}

	s.metrics.BookingsTotal.WithLabelValues(outcome).Inc()
	s.logger.Info("meeting booked",
		"meeting_id", meeting.ID, "slot_id", meeting.SlotID,
		"type", meeting.MeetingType, "outcome", outcome)
	s.notifier.MeetingBooked(ctx, meeting)
	return &BookingResult{Meeting: meeting, Outcome: outcome}, nil
}

// Update reschedules a confirmed meeting. The new instant is validated
// against other confirmed meetings before anything is written.
func (s *Service) Update(ctx context.Context, id uuid.UUID, newStart time.Time, notes string) (*Meeting, error) {
	ctx, span := s.tracer.Start(ctx, "meetings.Update")
	defer span.End()

	meeting, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if meeting.Status != StatusConfirmed {
		return nil, ErrNotConfirmed
	}
	if !newStart.After(s.now()) {
		return nil, fmt.Errorf("%w: new start must be in the future", ErrValidation)
	}

	newSlotID := schedule.SlotID(newStart)
	if other, err := s.store.GetConfirmedBySlotID(ctx, newSlotID); err == nil && other.ID != id {
		return nil, ErrSlotUnavailable
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		span.RecordError(err)
		return nil, err
	}

	if err := s.store.UpdateSchedule(ctx, id, newSlotID, newStart, notes); err != nil {
		return nil, err
	}

	if meeting.CalendarEventID != "" {
		end := newStart.Add(meeting.Duration)
		if err := s.cal.PatchEventTime(ctx, meeting.CalendarEventID, newStart, end); err != nil {
			s.metrics.CalendarMirrorFailures.Inc()
			s.logger.Warn("calendar patch failed after reschedule", "event_id", meeting.CalendarEventID, "error", err)
		}
	}

	meeting.SlotID = newSlotID
	meeting.StartTime = newStart
	if notes != "" {
		meeting.Notes = notes
	}
	s.logger.Info("meeting rescheduled", "meeting_id", id, "slot_id", newSlotID)
	return meeting, nil
}

// Cancel marks a confirmed meeting cancelled, freeing its slot, and
// best-effort deletes the mirrored event.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "meetings.Cancel")
	defer span.End()

	meeting, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if meeting.Status != StatusConfirmed {
		return ErrNotConfirmed
	}

	if err := s.store.Cancel(ctx, id); err != nil {
		span.RecordError(err)
		return err
	}

	if meeting.CalendarEventID != "" {
		if err := s.cal.DeleteEvent(ctx, meeting.CalendarEventID); err != nil {
			s.metrics.CalendarMirrorFailures.Inc()
			s.logger.Warn("calendar delete failed after cancel", "event_id", meeting.CalendarEventID, "error", err)
		}
	}

	meeting.Status = StatusCancelled
	s.logger.Info("meeting cancelled", "meeting_id", id, "slot_id", meeting.SlotID)
	s.notifier.MeetingCancelled(ctx, meeting)
	return nil
}

// ListUpcomingByEmail returns the visitor's confirmed future meetings.
func (s *Service) ListUpcomingByEmail(ctx context.Context, email string) ([]Meeting, error) {
	if !validEmail(email) {
		return nil, fmt.Errorf("%w: invalid email", ErrValidation)
	}
	return s.store.ListUpcomingByEmail(ctx, strings.ToLower(email), s.now())
}

// Stats aggregates booking counts.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.store.GetStats(ctx, s.now())
}

func validateBookRequest(req *BookRequest) error {
	req.UserName = strings.TrimSpace(req.UserName)
	req.UserEmail = strings.ToLower(strings.TrimSpace(req.UserEmail))
	if req.SlotID == "" {
		return fmt.Errorf("%w: slot id is required", ErrValidation)
	}
	if req.Start.IsZero() {
		return fmt.Errorf("%w: start time is required", ErrValidation)
	}
	if schedule.SlotID(req.Start) != req.SlotID {
		return fmt.Errorf("%w: slot id does not match start time", ErrValidation)
	}
	if req.UserName == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !validEmail(req.UserEmail) {
		return fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if req.MeetingType == "" {
		req.MeetingType = TypeConsultation
	}
	return nil
}

func validEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

func titleFor(meetingType string) string {
	switch meetingType {
	case TypeProjectDiscussion:
		return "Project Discussion"
	case TypeCollaboration:
		return "Collaboration Meeting"
	case TypeJobOpportunity:
		return "Job Opportunity Call"
	default:
		return "Consultation"
	}
}

func eventDescription(m *Meeting) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Meeting type: %s\n", m.MeetingType)
	fmt.Fprintf(&b, "Booked by: %s <%s>\n", m.UserName, m.UserEmail)
	if m.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", m.Notes)
	}
	return b.String()
}
