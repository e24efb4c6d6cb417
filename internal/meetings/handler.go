package meetings

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dondo0936/portfolio-assistant/pkg/logging"
)

// Handler handles HTTP requests for meetings
type Handler struct {
	service *Service
	window  time.Duration
	logger  *logging.Logger
}

func NewHandler(service *Service, window time.Duration, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if window <= 0 {
		window = 7 * 24 * time.Hour
	}
	return &Handler{service: service, window: window, logger: logger}
}

// AvailabilityResponse is the response for GET /api/availability.
type AvailabilityResponse struct {
	Slots    []SlotView `json:"slots"`
	Degraded bool       `json:"degraded"`
}

// SlotView is one open slot in API form.
type SlotView struct {
	ID    string    `json:"id"`
	Start time.Time `json:"start"`
}

// GetAvailability handles GET /api/availability requests.
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	from, to := now, now.Add(h.window)
	if days := r.URL.Query().Get("days"); days != "" {
		if d, err := strconv.Atoi(days); err == nil && d > 0 && d <= 31 {
			to = now.AddDate(0, 0, d)
		}
	}

	result, err := h.service.Availability(r.Context(), from, to)
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := AvailabilityResponse{Degraded: result.Degraded, Slots: make([]SlotView, 0, len(result.Slots))}
	for _, s := range result.Slots {
		resp.Slots = append(resp.Slots, SlotView{ID: s.ID, Start: s.Start})
	}
	writeJSON(w, http.StatusOK, resp)
}

// BookMeetingRequest is the body for POST /api/meetings.
type BookMeetingRequest struct {
	SlotID      string    `json:"slot_id"`
	Start       time.Time `json:"start"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	MeetingType string    `json:"meeting_type"`
	Notes       string    `json:"notes"`
}

// BookMeetingResponse is the booking result in API form.
type BookMeetingResponse struct {
	Meeting *Meeting `json:"meeting"`
	Outcome string   `json:"outcome"`
}

// BookMeeting handles POST /api/meetings requests.
func (h *Handler) BookMeeting(w http.ResponseWriter, r *http.Request) {
	var req BookMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.Book(r.Context(), BookRequest{
		SlotID:      req.SlotID,
		Start:       req.Start,
		UserName:    req.Name,
		UserEmail:   req.Email,
		MeetingType: req.MeetingType,
		Notes:       req.Notes,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, BookMeetingResponse{
		Meeting: result.Meeting,
		Outcome: result.Outcome,
	})
}

// UpdateMeetingRequest is the body for PATCH /api/meetings/{id}.
type UpdateMeetingRequest struct {
	Start time.Time `json:"start"`
	Notes string    `json:"notes"`
}

// UpdateMeeting handles PATCH /api/meetings/{id} requests.
func (h *Handler) UpdateMeeting(w http.ResponseWriter, r *http.Request) {
	id, ok := meetingID(w, r)
	if !ok {
		return
	}

	var req UpdateMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Start.IsZero() {
		writeJSONError(w, http.StatusBadRequest, "start is required")
		return
	}

	meeting, err := h.service.Update(r.Context(), id, req.Start, req.Notes)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, meeting)
}

// CancelMeeting handles DELETE /api/meetings/{id} requests.
func (h *Handler) CancelMeeting(w http.ResponseWriter, r *http.Request) {
	id, ok := meetingID(w, r)
	if !ok {
		return
	}
	if err := h.service.Cancel(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": StatusCancelled})
}

// ListMeetings handles GET /api/meetings?email= requests.
func (h *Handler) ListMeetings(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeJSONError(w, http.StatusBadRequest, "email query parameter is required")
		return
	}

	list, err := h.service.ListUpcomingByEmail(r.Context(), email)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if list == nil {
		list = []Meeting{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"meetings": list, "count": len(list)})
}

// GetStats handles GET /api/stats requests.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func meetingID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid meeting id")
		return uuid.Nil, false
	}
	return id, true
}

// writeError maps service errors onto HTTP statuses with fixed
// messages; internal detail stays in the logs.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrSlotUnavailable):
		writeJSONError(w, http.StatusConflict, "slot is no longer available")
	case errors.Is(err, ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "meeting not found")
	case errors.Is(err, ErrNotConfirmed):
		writeJSONError(w, http.StatusConflict, "meeting is not confirmed")
	case errors.Is(err, ErrStoreUnavailable):
		writeJSONError(w, http.StatusServiceUnavailable, "service temporarily unavailable")
	default:
		h.logger.Error("request failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
