package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dondo0936/portfolio-assistant/pkg/logging"
)

// Handler exposes the orchestrator over plain HTTP for clients without
// websocket support.
type Handler struct {
	orchestrator *Orchestrator
	history      HistoryStore
	logger       *logging.Logger
}

func NewHandler(orchestrator *Orchestrator, history HistoryStore, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{orchestrator: orchestrator, history: history, logger: logger}
}

// MessageRequest is the body for POST /api/chat.
type MessageRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// MessageResponse is the assistant reply.
type MessageResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

// PostMessage handles POST /api/chat requests.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeJSONError(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	reply, err := h.orchestrator.HandleMessage(r.Context(), req.SessionID, req.Message)
	if err != nil {
		if errors.Is(err, ErrMessageTooLong) {
			writeJSONError(w, http.StatusBadRequest, "message is too long")
			return
		}
		h.logger.Error("chat message failed", "session_id", req.SessionID, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{SessionID: req.SessionID, Reply: reply})
}

// GetHistory handles GET /api/chat/history?session_id= requests.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeJSONError(w, http.StatusBadRequest, "session_id query parameter is required")
		return
	}

	turns, err := h.history.Recent(r.Context(), sessionID, 50)
	if err != nil {
		h.logger.Error("history load failed", "session_id", sessionID, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if turns == nil {
		turns = []Turn{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"session_id": sessionID, "turns": turns})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
