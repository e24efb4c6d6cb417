package chat

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dondo0936/portfolio-assistant/internal/meetings"
	"github.com/dondo0936/portfolio-assistant/internal/schedule"
	"github.com/dondo0936/portfolio-assistant/pkg/logging"
)

type fakeBooker struct {
	slots       []schedule.Slot
	degraded    bool
	bookErr     error
	booked      []meetings.BookRequest
	upcoming    []meetings.Meeting
	meetingLink string
}

func (f *fakeBooker) Availability(ctx context.Context, from, to time.Time) (*meetings.AvailabilityResult, error) {
	return &meetings.AvailabilityResult{Slots: f.slots, Degraded: f.degraded}, nil
}

func (f *fakeBooker) Book(ctx context.Context, req meetings.BookRequest) (*meetings.BookingResult, error) {
	if f.bookErr != nil {
		return nil, f.bookErr
	}
	f.booked = append(f.booked, req)
	return &meetings.BookingResult{
		Meeting: &meetings.Meeting{
			SlotID:      req.SlotID,
			UserName:    req.UserName,
			UserEmail:   req.UserEmail,
			MeetingType: req.MeetingType,
			StartTime:   req.Start,
			Status:      meetings.StatusConfirmed,
			MeetingLink: f.meetingLink,
		},
		Outcome: meetings.OutcomeOk,
	}, nil
}

func (f *fakeBooker) ListUpcomingByEmail(ctx context.Context, email string) ([]meetings.Meeting, error) {
	return f.upcoming, nil
}

// memoryHistory keeps turns in memory for tests.
type memoryHistory struct {
	turns map[string][]Turn
}

func newMemoryHistory() *memoryHistory {
	return &memoryHistory{turns: make(map[string][]Turn)}
}

func (h *memoryHistory) Append(ctx context.Context, sessionID, role, content string) error {
	h.turns[sessionID] = append(h.turns[sessionID], Turn{Role: role, Content: content})
	return nil
}

func (h *memoryHistory) Recent(ctx context.Context, sessionID string, n int) ([]Turn, error) {
	turns := h.turns[sessionID]
	if len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	return turns, nil
}

func (h *memoryHistory) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func testSlots(t *testing.T, n int) []schedule.Slot {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	require.NoError(t, err)
	var slots []schedule.Slot
	for i := 0; i < n; i++ {
		start := time.Date(2026, 9, 8, 9+i, 0, 0, 0, loc)
		slots = append(slots, schedule.Slot{ID: schedule.SlotID(start), Start: start, Duration: time.Hour})
	}
	return slots
}

func newTestOrchestrator(t *testing.T, booker Booker, llm LLMClient) (*Orchestrator, *memoryHistory) {
	t.Helper()
	history := newMemoryHistory()
	o := NewOrchestrator(booker, llm, NewMemorySessionStore(), history, Options{
		SystemPrompt:  "You are a portfolio assistant.",
		MaxSlotsShown: 5,
	}, nil, logging.Default())
	return o, history
}

func TestHandleMessageAvailability(t *testing.T) {
	booker := &fakeBooker{slots: testSlots(t, 8)}
	o, history := newTestOrchestrator(t, booker, StubLLM{})

	reply, err := o.HandleMessage(context.Background(), "sess-1", "what times are available?")
	require.NoError(t, err)
	assert.Contains(t, reply, "available time slots")
	assert.Contains(t, reply, "To book a meeting")
	// Capped at 5 shown slots.
	assert.Contains(t, reply, "5. ")
	assert.NotContains(t, reply, "6. ")

	turns := history.turns["sess-1"]
	require.Len(t, turns, 2)
	assert.Equal(t, "user", turns[0].Role)
	assert.Equal(t, "assistant", turns[1].Role)
}

func TestHandleMessageAvailabilityDegraded(t *testing.T) {
	booker := &fakeBooker{slots: testSlots(t, 2), degraded: true}
	o, _ := newTestOrchestrator(t, booker, StubLLM{})

	reply, err := o.HandleMessage(context.Background(), "sess-1", "when can we meet?")
	require.NoError(t, err)
	assert.Contains(t, reply, "could not verify the external calendar")
}

func TestHandleMessageFullBookingFlow(t *testing.T) {
	booker := &fakeBooker{slots: testSlots(t, 3), meetingLink: "https://meet.google.com/abc"}
	o, _ := newTestOrchestrator(t, booker, StubLLM{})
	ctx := context.Background()

	_, err := o.HandleMessage(ctx, "sess-1", "I'd like to schedule a meeting")
	require.NoError(t, err)

	reply, err := o.HandleMessage(ctx, "sess-1", "I'm Jane Smith, jane@example.com, slot 2 for a collaboration")
	require.NoError(t, err)
	assert.Contains(t, reply, "booked")
	assert.Contains(t, reply, "https://meet.google.com/abc")

	require.Len(t, booker.booked, 1)
	req := booker.booked[0]
	assert.Equal(t, "Jane Smith", req.UserName)
	assert.Equal(t, "jane@example.com", req.UserEmail)
	assert.Equal(t, "collaboration", req.MeetingType)
	assert.Equal(t, testSlots(t, 3)[1].ID, req.SlotID)
}

func TestHandleMessageDetailsAcrossTurns(t *testing.T) {
	booker := &fakeBooker{slots: testSlots(t, 3)}
	o, _ := newTestOrchestrator(t, booker, StubLLM{})
	ctx := context.Background()

	_, err := o.HandleMessage(ctx, "sess-1", "book a meeting please")
	require.NoError(t, err)

	reply, err := o.HandleMessage(ctx, "sess-1", "my name is Jane Smith")
	require.NoError(t, err)
	assert.Contains(t, reply, "I need a few more details")
	assert.Contains(t, reply, "your email")
	assert.NotContains(t, reply, "your name")

	reply, err = o.HandleMessage(ctx, "sess-1", "jane@example.com")
	require.NoError(t, err)
	assert.Contains(t, reply, "Which slot")

	reply, err = o.HandleMessage(ctx, "sess-1", "slot 1 please")
	require.NoError(t, err)
	assert.Contains(t, reply, "booked")
	require.Len(t, booker.booked, 1)
	assert.Equal(t, meetings.TypeConsultation, booker.booked[0].MeetingType)
}

func TestHandleMessageSlotChosenBeforeIdentity(t *testing.T) {
	booker := &fakeBooker{slots: testSlots(t, 3)}
	o, _ := newTestOrchestrator(t, booker, StubLLM{})
	ctx := context.Background()

	_, err := o.HandleMessage(ctx, "sess-1", "schedule a meeting")
	require.NoError(t, err)

	reply, err := o.HandleMessage(ctx, "sess-1", "slot 3 works for me")
	require.NoError(t, err)
	assert.Contains(t, reply, "I need a few more details")

	reply, err = o.HandleMessage(ctx, "sess-1", "I'm Jane Smith, jane@example.com")
	require.NoError(t, err)
	assert.Contains(t, reply, "booked")
	require.Len(t, booker.booked, 1)
	assert.Equal(t, testSlots(t, 3)[2].ID, booker.booked[0].SlotID)
}

func TestHandleMessageIdentityOnlyDoesNotBook(t *testing.T) {
	booker := &fakeBooker{slots: testSlots(t, 3)}
	o, _ := newTestOrchestrator(t, booker, StubLLM{})
	ctx := context.Background()

	_, err := o.HandleMessage(ctx, "sess-1", "schedule a meeting")
	require.NoError(t, err)

	// A digit in the email domain must not read as a slot choice.
	reply, err := o.HandleMessage(ctx, "sess-1", "I'm Jane Smith, jane@web3.com")
	require.NoError(t, err)
	assert.Contains(t, reply, "Which slot")
	assert.Empty(t, booker.booked)
}

func TestHandleMessageSlotOutOfRange(t *testing.T) {
	booker := &fakeBooker{slots: testSlots(t, 3)}
	o, _ := newTestOrchestrator(t, booker, StubLLM{})
	ctx := context.Background()

	_, err := o.HandleMessage(ctx, "sess-1", "show me available times")
	require.NoError(t, err)

	reply, err := o.HandleMessage(ctx, "sess-1", "I'm Jane Smith, jane@example.com, slot 9")
	require.NoError(t, err)
	assert.Contains(t, reply, "between 1 and 3")
	assert.Empty(t, booker.booked)
}

func TestHandleMessageSlotTakenRace(t *testing.T) {
	booker := &fakeBooker{slots: testSlots(t, 3), bookErr: meetings.ErrSlotUnavailable}
	o, _ := newTestOrchestrator(t, booker, StubLLM{})
	ctx := context.Background()

	_, err := o.HandleMessage(ctx, "sess-1", "schedule a meeting")
	require.NoError(t, err)

	reply, err := o.HandleMessage(ctx, "sess-1", "I'm Jane Smith, jane@example.com, slot 1")
	require.NoError(t, err)
	assert.Contains(t, reply, "just taken")
}

func TestHandleMessageGeneralGoesToModel(t *testing.T) {
	o, _ := newTestOrchestrator(t, &fakeBooker{}, StubLLM{Reply: "I build Go services."})

	reply, err := o.HandleMessage(context.Background(), "sess-1", "what do you work on?")
	require.NoError(t, err)
	assert.Equal(t, "I build Go services.", reply)
}

func TestHandleMessageModelFailure(t *testing.T) {
	o, _ := newTestOrchestrator(t, &fakeBooker{}, StubLLM{Err: ErrModelUnavailable})

	reply, err := o.HandleMessage(context.Background(), "sess-1", "hello there")
	require.NoError(t, err)
	assert.Contains(t, reply, "trouble answering")
}

func TestHandleMessageModelRateLimited(t *testing.T) {
	o, _ := newTestOrchestrator(t, &fakeBooker{}, StubLLM{Err: ErrModelRateLimited})

	reply, err := o.HandleMessage(context.Background(), "sess-1", "hello there")
	require.NoError(t, err)
	assert.Contains(t, reply, "try again shortly")
}

func TestHandleMessageTooLong(t *testing.T) {
	o, _ := newTestOrchestrator(t, &fakeBooker{}, StubLLM{})

	_, err := o.HandleMessage(context.Background(), "sess-1", strings.Repeat("a", 501))
	assert.ErrorIs(t, err, ErrMessageTooLong)
}

func TestHandleMessageManagement(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	require.NoError(t, err)
	booker := &fakeBooker{upcoming: []meetings.Meeting{{
		StartTime:   time.Date(2026, 9, 8, 10, 0, 0, 0, loc),
		MeetingType: meetings.TypeConsultation,
		Status:      meetings.StatusConfirmed,
	}}}
	o, _ := newTestOrchestrator(t, booker, StubLLM{})
	ctx := context.Background()

	// Without a known email the orchestrator asks for it.
	reply, err := o.HandleMessage(ctx, "sess-1", "I need to cancel my meeting")
	require.NoError(t, err)
	assert.Contains(t, reply, "What email address")

	// After supplying it in a booking-context message, management works.
	_, err = o.HandleMessage(ctx, "sess-1", "show me available times")
	require.NoError(t, err)
	_, err = o.HandleMessage(ctx, "sess-1", "jane@example.com")
	require.NoError(t, err)

	reply, err = o.HandleMessage(ctx, "sess-1", "cancel my meeting")
	require.NoError(t, err)
	assert.Contains(t, reply, "upcoming meetings")
	assert.Contains(t, reply, "To cancel")
}
