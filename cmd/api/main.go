package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/dondo0936/portfolio-assistant/internal/api/router"
	"github.com/dondo0936/portfolio-assistant/internal/calendar"
	"github.com/dondo0936/portfolio-assistant/internal/chat"
	appconfig "github.com/dondo0936/portfolio-assistant/internal/config"
	"github.com/dondo0936/portfolio-assistant/internal/meetings"
	"github.com/dondo0936/portfolio-assistant/internal/notify"
	"github.com/dondo0936/portfolio-assistant/internal/observability/metrics"
	"github.com/dondo0936/portfolio-assistant/internal/schedule"
	"github.com/dondo0936/portfolio-assistant/internal/webchat"
	"github.com/dondo0936/portfolio-assistant/pkg/logging"
)

const systemPrompt = `You are the assistant on Tien Dat Do's portfolio website.
Answer questions about his work, projects and experience concisely and in a
friendly tone. If a visitor wants to talk to him directly, offer to schedule a
meeting. Do not invent facts about his background.`

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting portfolio-assistant API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()
	loc := cfg.Location()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	// Datastore. Without DATABASE_URL the service stays up but refuses
	// bookings with an explicit unavailability error.
	var store meetings.Store = meetings.UnavailableStore{}
	var historyStore chat.HistoryStore = chat.NopHistoryStore{}
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create db pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		store = meetings.NewPostgresStore(pool, logger)
		historyStore = chat.NewPostgresHistoryStore(pool, logger)
	} else {
		logger.Warn("DATABASE_URL not set, bookings disabled")
	}

	// Calendar mirror.
	var cal calendar.Client = calendar.Disabled{}
	if cfg.GoogleCalendarID != "" {
		creds, err := loadCalendarCredentials(cfg)
		if err != nil {
			logger.Error("failed to load calendar credentials", "error", err)
			os.Exit(1)
		}
		gc, err := calendar.NewGoogleClient(ctx, creds, cfg.GoogleCalendarID, cfg.CalendarTimeout, logger)
		if err != nil {
			logger.Error("failed to create calendar client", "error", err)
			os.Exit(1)
		}
		cal = gc
	} else {
		logger.Warn("GOOGLE_CALENDAR_ID not set, calendar mirroring disabled")
	}

	// Outbound email.
	var sender notify.EmailSender = notify.NewStubEmailSender(logger)
	if cfg.SendGridAPIKey != "" {
		sender = notify.NewSendGridSender(cfg.SendGridAPIKey, cfg.SendGridFromName, cfg.SendGridFromEmail, logger)
	}
	notifier := notify.NewService(sender, cfg.OwnerName, cfg.OwnerEmail, loc, cfg.EmailTimeout, m, logger)

	hours := schedule.BusinessHours{
		StartHour:         cfg.BusinessStartHour,
		EndHour:           cfg.BusinessEndHour,
		SameDayCutoffHour: cfg.SameDayCutoffHour,
		Location:          loc,
	}
	owner := meetings.Owner{Name: cfg.OwnerName, Email: cfg.OwnerEmail}
	meetingsService := meetings.NewService(store, cal, hours, cfg.MaxSlotsReturned, owner, m, logger,
		meetings.WithNotifier(notifier))

	// Chat model.
	var llm chat.LLMClient = chat.StubLLM{}
	if cfg.GeminiAPIKey != "" {
		gemini, err := chat.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID, cfg.LLMTimeout, logger)
		if err != nil {
			logger.Error("failed to create gemini client", "error", err)
			os.Exit(1)
		}
		defer func() { _ = gemini.Close() }()
		llm = gemini
	} else {
		logger.Warn("GEMINI_API_KEY not set, chat uses canned replies")
	}

	// Session state, shared across instances when Redis is configured.
	var sessions chat.SessionStore = chat.NewMemorySessionStore()
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		rdb := redis.NewClient(opts)
		defer func() { _ = rdb.Close() }()
		sessions = chat.NewRedisSessionStore(rdb, cfg.SessionTTL)
	}

	orchestrator := chat.NewOrchestrator(meetingsService, llm, sessions, historyStore, chat.Options{
		SystemPrompt:       systemPrompt,
		MaxSlotsShown:      cfg.MaxSlotsShown,
		MaxMessageLength:   cfg.MaxChatMessage,
		AvailabilityWindow: cfg.AvailabilityWindow,
		Location:           loc,
	}, m, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		Metrics:            m,
		MeetingsHandler:    meetings.NewHandler(meetingsService, cfg.AvailabilityWindow, logger),
		ChatHandler:        chat.NewHandler(orchestrator, historyStore, logger),
		ContactHandler:     notify.NewHandler(notifier, logger),
		WebchatHandler:     webchat.NewHandler(orchestrator, historyStore, logger),
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		ChatRatePerSecond:  cfg.ChatRatePerSecond,
		ChatRateBurst:      cfg.ChatRateBurst,
	})

	// Drop conversation turns past the retention window once a day.
	cleanupCtx, cancelCleanup := context.WithCancel(ctx)
	defer cancelCleanup()
	go cleanHistory(cleanupCtx, historyStore, cfg.HistoryRetention, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func loadCalendarCredentials(cfg *appconfig.Config) ([]byte, error) {
	if cfg.GoogleCredentialsJSON != "" {
		return []byte(cfg.GoogleCredentialsJSON), nil
	}
	return os.ReadFile(cfg.GoogleCredentialsFile)
}

func cleanHistory(ctx context.Context, store chat.HistoryStore, retention time.Duration, logger *logging.Logger) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.DeleteOlderThan(ctx, time.Now().Add(-retention))
			if err != nil {
				logger.Warn("history cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("history cleanup removed turns", "count", n)
			}
		}
	}
}
