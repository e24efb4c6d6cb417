package notify

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dondo0936/portfolio-assistant/pkg/logging"
)

func postContact(t *testing.T, h *Handler, body ContactRequest) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/contact", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	h.PostContact(rec, req)
	return rec
}

func TestPostContactAccepted(t *testing.T) {
	svc, stub := testNotify(t)
	h := NewHandler(svc, logging.Default())

	rec := postContact(t, h, ContactRequest{
		Name:    "Bob",
		Email:   "bob@x.io",
		Subject: "Hiring",
		Message: "Interested in working together.",
	})

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, stub.Sent, 1)
}

func TestPostContactFieldErrors(t *testing.T) {
	svc, stub := testNotify(t)
	h := NewHandler(svc, logging.Default())

	rec := postContact(t, h, ContactRequest{Email: "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, stub.Sent)

	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	for _, field := range []string{"name", "email", "subject", "message"} {
		assert.Contains(t, resp.Errors, field)
	}
}
