package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"schoolhub/internal/adapters/email"
	web "schoolhub/internal/adapters/http"
	"schoolhub/internal/adapters/http/middleware"
	"schoolhub/internal/adapters/http/perf"
	"schoolhub/internal/adapters/realtime"
	"schoolhub/internal/adapters/storage"
	accountStore "schoolhub/internal/adapters/storage/account"
	activityStore "schoolhub/internal/adapters/storage/activity"
	clubStore "schoolhub/internal/adapters/storage/club"
	notificationStore "schoolhub/internal/adapters/storage/notification"
	"schoolhub/internal/application/orchestrators"
	"schoolhub/internal/auth"
	"schoolhub/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("config_invalid", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	if err := run(cfg); err != nil {
		slog.Error("server_failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.Open(cfg.Database.Path, cfg.Database.MaxOpenConns)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := storage.MigrateDB(db); err != nil {
		return err
	}

	// Queries are timed into the same collector the dashboard reads.
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, cfg.Database.SlowQuery)

	stores := &web.Stores{
		AccountStore:      accountStore.NewSQLiteStore(timedDB),
		ActivityStore:     activityStore.NewSQLiteStore(timedDB),
		ClubStore:         clubStore.NewSQLiteStore(timedDB),
		NotificationStore: notificationStore.NewSQLiteStore(timedDB),
	}
	if err := seed(ctx, cfg, stores); err != nil {
		return err
	}

	hub := realtime.NewHub(realtime.DefaultQueueSize, originChecker(cfg.HTTP.CORSOrigins))
	defer hub.Close()

	limiter, closeLimiter := newLimiter(ctx, cfg)
	defer closeLimiter()

	deps := web.Deps{
		Stores:      stores,
		Tokens:      auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, nil),
		Hub:         hub,
		Mailer:      newMailer(cfg),
		Perf:        collector,
		Limiter:     limiter,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		Ping:        timedDB.PingContext,
	}
	if cfg.HTTP.CSRFKey != "" {
		deps.CSRFKey = []byte(cfg.HTTP.CSRFKey)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           web.NewMux(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_event", "event", "starting", "version", version, "addr", cfg.Addr, "env", cfg.Env, "schema", storage.LatestSchemaVersion)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("server_event", "event", "shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func seed(ctx context.Context, cfg *config.Config, stores *web.Stores) error {
	if cfg.SeedActivities {
		if err := orchestrators.ExecuteSeedActivities(ctx, orchestrators.SeedActivitiesDeps{
			ActivityStore: stores.ActivityStore,
			Now:           time.Now,
		}); err != nil {
			return err
		}
	}
	return orchestrators.ExecuteSeedAdmin(ctx, orchestrators.SeedAdminInput{
		Email:    cfg.Auth.AdminEmail,
		Password: cfg.Auth.AdminPassword,
	}, orchestrators.SeedAdminDeps{
		AccountStore: stores.AccountStore,
		GenerateID:   web.GenerateID,
		Now:          time.Now,
	})
}

func newMailer(cfg *config.Config) email.Sender {
	if cfg.Email.ResendKey != "" {
		slog.Info("email_event", "event", "sender_configured", "sender", "resend")
		return email.NewResendSender(cfg.Email.ResendKey, cfg.Email.From)
	}
	if cfg.IsProduction() {
		slog.Warn("email_event", "event", "sender_disabled", "reason", "SCHOOLHUB_RESEND_KEY is not set")
	}
	return email.NewNoopSender()
}

// newLimiter returns the Redis limiter when configured, falling back to the
// in-memory one. The returned func releases its resources.
func newLimiter(ctx context.Context, cfg *config.Config) (middleware.Limiter, func()) {
	if cfg.HTTP.RedisURL != "" {
		rl, err := middleware.NewRedisRateLimiter(ctx, cfg.HTTP.RedisURL, cfg.HTTP.RateLimit, cfg.HTTP.RateInterval)
		if err == nil {
			return rl, func() { rl.Close() }
		}
		slog.Warn("ratelimit_event", "event", "redis_unavailable", "error", err)
	}

	rl := middleware.NewRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateInterval)
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.Sweep(10 * time.Minute)
			case <-done:
				return
			}
		}
	}()
	return rl, func() { close(done) }
}

// originChecker allows websocket handshakes from the configured CORS origins.
func originChecker(origins []string) func(*http.Request) bool {
	if slices.Contains(origins, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
			return true
		}
		return slices.Contains(origins, origin)
	}
}
