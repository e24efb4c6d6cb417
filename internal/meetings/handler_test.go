package meetings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dondo0936/portfolio-assistant/internal/schedule"
	"github.com/dondo0936/portfolio-assistant/pkg/logging"
)

func testRouter(t *testing.T, h *Handler) http.Handler {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/api/availability", h.GetAvailability)
	r.Post("/api/meetings", h.BookMeeting)
	r.Get("/api/meetings", h.ListMeetings)
	r.Patch("/api/meetings/{id}", h.UpdateMeeting)
	r.Delete("/api/meetings/{id}", h.CancelMeeting)
	r.Get("/api/stats", h.GetStats)
	return r
}

func newTestHandler(t *testing.T, store Store, cal *fakeCalendar) (*Handler, *Service) {
	t.Helper()
	now := slotStart(t, 7, 8)
	svc := testService(t, store, cal, now)
	return NewHandler(svc, 7*24*time.Hour, logging.Default()), svc
}

func TestBookMeetingEndpoint(t *testing.T) {
	h, _ := newTestHandler(t, newFakeStore(), &fakeCalendar{})
	router := testRouter(t, h)
	start := slotStart(t, 8, 10)

	body, _ := json.Marshal(BookMeetingRequest{
		SlotID:      schedule.SlotID(start),
		Start:       start,
		Name:        "Jane Smith",
		Email:       "jane@example.com",
		MeetingType: TypeCollaboration,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/meetings", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp BookMeetingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, OutcomeOk, resp.Outcome)
	assert.Equal(t, StatusConfirmed, resp.Meeting.Status)
	// Durations go over the wire in minutes, not nanoseconds.
	assert.Contains(t, rec.Body.String(), `"duration_minutes":60`)
	assert.NotContains(t, rec.Body.String(), `"duration":`)
}

func TestBookMeetingConflictReturns409(t *testing.T) {
	h, svc := newTestHandler(t, newFakeStore(), &fakeCalendar{})
	router := testRouter(t, h)
	start := slotStart(t, 8, 10)

	_, err := svc.Book(context.Background(), bookReq(t, start))
	require.NoError(t, err)

	body, _ := json.Marshal(BookMeetingRequest{
		SlotID: schedule.SlotID(start),
		Start:  start,
		Name:   "Other Person",
		Email:  "other@example.com",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/meetings", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "no longer available")
}

func TestBookMeetingValidationReturns400(t *testing.T) {
	h, _ := newTestHandler(t, newFakeStore(), &fakeCalendar{})
	router := testRouter(t, h)

	body, _ := json.Marshal(BookMeetingRequest{Name: "No Slot"})
	req := httptest.NewRequest(http.MethodPost, "/api/meetings", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAvailabilityEndpoint(t *testing.T) {
	h, _ := newTestHandler(t, newFakeStore(), &fakeCalendar{})
	router := testRouter(t, h)

	req := httptest.NewRequest(http.MethodGet, "/api/availability", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp AvailabilityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Degraded)
	assert.NotEmpty(t, resp.Slots)
}

func TestCancelEndpointNotFound(t *testing.T) {
	h, _ := newTestHandler(t, newFakeStore(), &fakeCalendar{})
	router := testRouter(t, h)

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/meetings/%s", uuid.New()), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelEndpointBadID(t *testing.T) {
	h, _ := newTestHandler(t, newFakeStore(), &fakeCalendar{})
	router := testRouter(t, h)

	req := httptest.NewRequest(http.MethodDelete, "/api/meetings/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListMeetingsRequiresEmail(t *testing.T) {
	h, _ := newTestHandler(t, newFakeStore(), &fakeCalendar{})
	router := testRouter(t, h)

	req := httptest.NewRequest(http.MethodGet, "/api/meetings", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListMeetingsByEmail(t *testing.T) {
	h, svc := newTestHandler(t, newFakeStore(), &fakeCalendar{})
	router := testRouter(t, h)

	_, err := svc.Book(context.Background(), bookReq(t, slotStart(t, 8, 10)))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/meetings?email=jane@example.com", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
}

func TestStatsEndpoint(t *testing.T) {
	h, svc := newTestHandler(t, newFakeStore(), &fakeCalendar{})
	router := testRouter(t, h)

	_, err := svc.Book(context.Background(), bookReq(t, slotStart(t, 8, 10)))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var stats Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.ByStatus[StatusConfirmed])
}

func TestUnavailableStoreReturns503OnBooking(t *testing.T) {
	h, _ := newTestHandler(t, UnavailableStore{}, &fakeCalendar{})
	router := testRouter(t, h)
	start := slotStart(t, 8, 10)

	body, _ := json.Marshal(BookMeetingRequest{
		SlotID: schedule.SlotID(start),
		Start:  start,
		Name:   "Jane Smith",
		Email:  "jane@example.com",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/meetings", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUnavailableStoreDegradesAvailabilityEndpoint(t *testing.T) {
	h, _ := newTestHandler(t, UnavailableStore{}, &fakeCalendar{})
	router := testRouter(t, h)

	req := httptest.NewRequest(http.MethodGet, "/api/availability", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp AvailabilityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Degraded)
}
