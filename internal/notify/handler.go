package notify

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"strings"

	"github.com/dondo0936/portfolio-assistant/pkg/logging"
)

// Handler serves the contact form endpoint.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// ContactRequest is the body for POST /api/contact.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// PostContact handles POST /api/contact requests. Validation errors
// name each offending field.
func (h *Handler) PostContact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, map[string]string{"body": "invalid request body"})
		return
	}

	fields := map[string]string{}
	req.Name = strings.TrimSpace(req.Name)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)
	if req.Name == "" {
		fields["name"] = "name is required"
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		fields["email"] = "a valid email is required"
	}
	if req.Subject == "" {
		fields["subject"] = "subject is required"
	}
	if req.Message == "" {
		fields["message"] = "message is required"
	}
	if len(fields) > 0 {
		writeError(w, http.StatusBadRequest, fields)
		return
	}

	if err := h.service.ContactMessage(r.Context(), req.Name, req.Email, req.Subject, req.Message); err != nil {
		h.logger.Error("contact message failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, map[string]string{"send": "could not deliver message, please try later"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "sent"})
}

func writeError(w http.ResponseWriter, status int, fields map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"errors": fields})
}
