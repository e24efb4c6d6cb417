package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dondo0936/portfolio-assistant/internal/meetings"
	"github.com/dondo0936/portfolio-assistant/internal/observability/metrics"
	"github.com/dondo0936/portfolio-assistant/pkg/logging"
)

// ErrMessageTooLong rejects oversized chat messages before any work.
var ErrMessageTooLong = errors.New("chat: message too long")

// Booker is the slice of the meetings service the orchestrator drives.
type Booker interface {
	Availability(ctx context.Context, from, to time.Time) (*meetings.AvailabilityResult, error)
	Book(ctx context.Context, req meetings.BookRequest) (*meetings.BookingResult, error)
	ListUpcomingByEmail(ctx context.Context, email string) ([]meetings.Meeting, error)
}

// Options parameterize an Orchestrator. One orchestrator type serves
// every chat surface; the prompt and limits are configuration.
type Options struct {
	SystemPrompt       string
	MaxSlotsShown      int
	MaxMessageLength   int
	AvailabilityWindow time.Duration
	HistoryWindow      int
	Location           *time.Location
}

// Orchestrator turns visitor messages into replies: deterministic
// templates for the booking flow, the model for everything else.
type Orchestrator struct {
	booker   Booker
	llm      LLMClient
	sessions SessionStore
	history  HistoryStore
	opts     Options
	metrics  *metrics.Metrics
	logger   *logging.Logger
	now      func() time.Time
}

func NewOrchestrator(booker Booker, llm LLMClient, sessions SessionStore, history HistoryStore, opts Options, m *metrics.Metrics, logger *logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.Default()
	}
	if m == nil {
		m = metrics.NewForTest()
	}
	if opts.MaxSlotsShown <= 0 {
		opts.MaxSlotsShown = 5
	}
	if opts.MaxMessageLength <= 0 {
		opts.MaxMessageLength = 500
	}
	if opts.AvailabilityWindow <= 0 {
		opts.AvailabilityWindow = 7 * 24 * time.Hour
	}
	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = 10
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Orchestrator{
		booker:   booker,
		llm:      llm,
		sessions: sessions,
		history:  history,
		opts:     opts,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// WithNow overrides the clock, for tests.
func (o *Orchestrator) WithNow(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// HandleMessage processes one visitor message and returns the reply.
// Both turns are persisted to history regardless of which path answered.
func (o *Orchestrator) HandleMessage(ctx context.Context, sessionID, message string) (string, error) {
	if len(message) > o.opts.MaxMessageLength {
		return "", ErrMessageTooLong
	}

	turns, err := o.history.Recent(ctx, sessionID, o.opts.HistoryWindow)
	if err != nil {
		o.logger.Warn("history load failed, continuing without context", "session_id", sessionID, "error", err)
		turns = nil
	}

	intent := Extract(message, turns)
	o.metrics.ChatTurnsTotal.WithLabelValues(string(intent.Kind)).Inc()

	var reply string
	switch intent.Kind {
	case IntentAvailabilityQuery, IntentNewBooking:
		reply, err = o.handleAvailability(ctx, sessionID)
	case IntentBookingDetails:
		reply, err = o.handleDetails(ctx, sessionID, intent)
	case IntentManagement:
		reply, err = o.handleManagement(ctx, sessionID, intent, turns)
	default:
		reply = o.handleGeneral(ctx, turns, message)
	}
	if err != nil {
		return "", err
	}

	o.persistTurns(ctx, sessionID, message, reply)
	return reply, nil
}

func (o *Orchestrator) handleAvailability(ctx context.Context, sessionID string) (string, error) {
	now := o.now()
	result, err := o.booker.Availability(ctx, now, now.Add(o.opts.AvailabilityWindow))
	if err != nil {
		return "", err
	}

	shown := result.Slots
	if len(shown) > o.opts.MaxSlotsShown {
		shown = shown[:o.opts.MaxSlotsShown]
	}

	state, err := o.sessions.Get(ctx, sessionID)
	if err != nil {
		o.logger.Warn("session load failed", "session_id", sessionID, "error", err)
		state = &SessionState{}
	}
	state.PresentedSlots = shown
	if err := o.sessions.Put(ctx, sessionID, state); err != nil {
		o.logger.Warn("session save failed", "session_id", sessionID, "error", err)
	}

	return renderSlots(shown, o.opts.Location, result.Degraded), nil
}

func (o *Orchestrator) handleDetails(ctx context.Context, sessionID string, intent Intent) (string, error) {
	state, err := o.sessions.Get(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("chat: load session: %w", err)
	}

	if intent.Name != "" {
		state.Name = intent.Name
	}
	if intent.Email != "" {
		state.Email = intent.Email
	}
	if intent.MeetingType != "" {
		state.MeetingType = intent.MeetingType
	}

	if intent.SlotNumber > 0 {
		if len(state.PresentedSlots) == 0 {
			if err := o.sessions.Put(ctx, sessionID, state); err != nil {
				o.logger.Warn("session save failed", "session_id", sessionID, "error", err)
			}
			return renderMissingDetails(state), nil
		}
		if intent.SlotNumber > len(state.PresentedSlots) {
			return renderSlotOutOfRange(intent.SlotNumber, len(state.PresentedSlots)), nil
		}
		state.ChosenSlot = intent.SlotNumber
	}

	// With anything still missing, save what we have and ask for the
	// rest.
	if state.ChosenSlot == 0 || state.Name == "" || state.Email == "" {
		if err := o.sessions.Put(ctx, sessionID, state); err != nil {
			o.logger.Warn("session save failed", "session_id", sessionID, "error", err)
		}
		if state.ChosenSlot == 0 && state.Name != "" && state.Email != "" && len(state.PresentedSlots) > 0 {
			return "Which slot would you like? Reply with the slot number.", nil
		}
		return renderMissingDetails(state), nil
	}

	slot := state.PresentedSlots[state.ChosenSlot-1]
	meetingType := state.MeetingType
	if meetingType == "" {
		meetingType = meetings.TypeConsultation
	}

	result, err := o.booker.Book(ctx, meetings.BookRequest{
		SlotID:      slot.ID,
		Start:       slot.Start,
		UserName:    state.Name,
		UserEmail:   state.Email,
		MeetingType: meetingType,
	})
	if err != nil {
		if errors.Is(err, meetings.ErrSlotUnavailable) {
			return renderSlotTaken(), nil
		}
		return "", err
	}

	if err := o.sessions.Delete(ctx, sessionID); err != nil {
		o.logger.Warn("session delete failed", "session_id", sessionID, "error", err)
	}
	return renderBookingConfirmed(result.Meeting, o.opts.Location, result.Outcome), nil
}

func (o *Orchestrator) handleManagement(ctx context.Context, sessionID string, intent Intent, turns []Turn) (string, error) {
	state, err := o.sessions.Get(ctx, sessionID)
	if err != nil {
		state = &SessionState{}
	}

	email := intent.Email
	if email == "" {
		email = state.Email
	}
	if email == "" {
		return renderManagementNeedsEmail(), nil
	}

	upcoming, err := o.booker.ListUpcomingByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, meetings.ErrValidation) {
			return renderManagementNeedsEmail(), nil
		}
		return "", err
	}
	return renderManagement(intent.Action, upcoming, o.opts.Location), nil
}

func (o *Orchestrator) handleGeneral(ctx context.Context, turns []Turn, message string) string {
	start := time.Now()
	reply, err := o.llm.Generate(ctx, o.opts.SystemPrompt, turns, message)
	o.metrics.LLMLatencySeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		o.logger.Error("model call failed", "error", err)
		if errors.Is(err, ErrModelRateLimited) {
			return renderModelRateLimited()
		}
		return renderModelFailure()
	}
	return reply
}

func (o *Orchestrator) persistTurns(ctx context.Context, sessionID, message, reply string) {
	if err := o.history.Append(ctx, sessionID, "user", message); err != nil {
		o.logger.Warn("history append failed", "session_id", sessionID, "error", err)
	}
	if err := o.history.Append(ctx, sessionID, "assistant", reply); err != nil {
		o.logger.Warn("history append failed", "session_id", sessionID, "error", err)
	}
}
