package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dondo0936/portfolio-assistant/internal/chat"
	httpmiddleware "github.com/dondo0936/portfolio-assistant/internal/http/middleware"
	"github.com/dondo0936/portfolio-assistant/internal/meetings"
	"github.com/dondo0936/portfolio-assistant/internal/notify"
	"github.com/dondo0936/portfolio-assistant/internal/observability/metrics"
	"github.com/dondo0936/portfolio-assistant/internal/webchat"
	"github.com/dondo0936/portfolio-assistant/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger          *logging.Logger
	Metrics         *metrics.Metrics
	MeetingsHandler *meetings.Handler
	ChatHandler     *chat.Handler
	ContactHandler  *notify.Handler
	WebchatHandler  *webchat.Handler
	MetricsHandler  http.Handler

	CORSAllowedOrigins []string
	ChatRatePerSecond  float64
	ChatRateBurst      int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger, cfg.Metrics))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	chatLimit := func(next http.Handler) http.Handler { return next }
	if cfg.ChatRatePerSecond > 0 {
		chatLimit = httpmiddleware.RateLimit(cfg.ChatRatePerSecond, cfg.ChatRateBurst)
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.MeetingsHandler != nil {
			api.Get("/availability", cfg.MeetingsHandler.GetAvailability)
			api.Post("/meetings", cfg.MeetingsHandler.BookMeeting)
			api.Get("/meetings", cfg.MeetingsHandler.ListMeetings)
			api.Patch("/meetings/{id}", cfg.MeetingsHandler.UpdateMeeting)
			api.Delete("/meetings/{id}", cfg.MeetingsHandler.CancelMeeting)
			api.Get("/stats", cfg.MeetingsHandler.GetStats)
		}
		if cfg.ChatHandler != nil {
			api.With(chatLimit).Post("/chat", cfg.ChatHandler.PostMessage)
			api.Get("/chat/history", cfg.ChatHandler.GetHistory)
		}
		if cfg.ContactHandler != nil {
			api.With(chatLimit).Post("/contact", cfg.ContactHandler.PostContact)
		}
	})

	if cfg.WebchatHandler != nil {
		r.Route("/webchat", func(wc chi.Router) {
			wc.Get("/ws", cfg.WebchatHandler.HandleWebSocket)
			wc.With(chatLimit).Post("/message", cfg.WebchatHandler.HandleMessage)
			wc.Get("/history", cfg.WebchatHandler.HandleHistory)
		})
	}

	return r
}
