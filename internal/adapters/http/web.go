package web

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"schoolhub/internal/adapters/email"
	"schoolhub/internal/adapters/http/middleware"
	"schoolhub/internal/adapters/http/perf"
	"schoolhub/internal/adapters/realtime"
	accountStore "schoolhub/internal/adapters/storage/account"
	activityStore "schoolhub/internal/adapters/storage/activity"
	clubStore "schoolhub/internal/adapters/storage/club"
	notificationStore "schoolhub/internal/adapters/storage/notification"
	"schoolhub/internal/application/orchestrators"
	"schoolhub/internal/application/projections"
	"schoolhub/internal/auth"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore      accountStore.Store
	ActivityStore     activityStore.Store
	ClubStore         clubStore.Store
	NotificationStore notificationStore.Store
}

// Deps holds everything the handlers need.
type Deps struct {
	Stores  *Stores
	Tokens  *auth.Issuer
	Hub     *realtime.Hub  // optional: nil disables live push and /notifications/ws
	Mailer  email.Sender   // optional: nil skips broadcast emails
	Perf    *perf.Collector
	Limiter middleware.Limiter // optional: nil disables rate limiting

	CSRFKey     []byte // optional: nil disables CSRF checks on cookie forms
	CORSOrigins []string
	SlowRequest time.Duration

	Ping       func(ctx context.Context) error // optional: backs /healthz
	Now        func() time.Time
	GenerateID func() string
}

// server carries Deps into the handler methods.
type server struct {
	Deps
}

// hubPublisher delivers pushed notifications as websocket frames.
type hubPublisher struct {
	hub *realtime.Hub
}

func (p hubPublisher) PublishNotification(email string, n orchestrators.PushedNotification) int {
	return p.hub.Publish(email, realtime.Envelope{Type: "notification", Data: n})
}

// publisher returns the hub as a NotificationPublisher, or nil when live push is off.
func (s *server) publisher() orchestrators.NotificationPublisher {
	if s.Hub == nil {
		return nil
	}
	return hubPublisher{hub: s.Hub}
}

// mailer returns the broadcast mailer, or nil when email is off.
func (s *server) mailer() orchestrators.BroadcastMailer {
	if s.Mailer == nil {
		return nil
	}
	return email.NewBroadcaster(s.Mailer)
}

// perfSource reads dashboard timings from the collector.
type perfSource struct {
	collector *perf.Collector
}

func (p perfSource) TimingSummary(since time.Time, topN int) projections.TimingSummary {
	snap := p.collector.Snapshot(since, topN)
	return projections.TimingSummary{
		Recorded:       snap.Recorded,
		Requests:       snap.Requests,
		P50Ms:          snap.P50Ms,
		P95Ms:          snap.P95Ms,
		P99Ms:          snap.P99Ms,
		SlowestPaths:   pathTimings(snap.SlowestPaths),
		SlowestQueries: pathTimings(snap.SlowestQueries),
	}
}

func pathTimings(stats []perf.PathStat) []projections.PathTiming {
	out := make([]projections.PathTiming, 0, len(stats))
	for _, ps := range stats {
		out = append(out, projections.PathTiming{Path: ps.Path, Count: ps.Count, AvgMs: ps.AvgMs, MaxMs: ps.MaxMs})
	}
	return out
}

// GenerateID creates a new UUID string.
func GenerateID() string {
	return uuid.New().String()
}

// NewMux wires HTTP handlers for the API.
// PRE: d.Stores, d.Tokens and d.Perf are set
func NewMux(d Deps) http.Handler {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.GenerateID == nil {
		d.GenerateID = GenerateID
	}
	if d.SlowRequest <= 0 {
		d.SlowRequest = middleware.DefaultSlowRequest
	}
	s := &server{Deps: d}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	// Timing wraps the mux directly so it can read the matched pattern.
	chain := []func(http.Handler) http.Handler{middleware.Timing(d.Perf, d.SlowRequest)}
	if d.Limiter != nil {
		chain = append(chain, middleware.RateLimit(d.Limiter))
	}
	chain = append(chain, middleware.Auth(d.Tokens))
	if len(d.CSRFKey) > 0 {
		chain = append(chain, middleware.CSRF(d.CSRFKey, d.CORSOrigins))
	}
	chain = append(chain, middleware.SecurityHeaders, middleware.CORS(d.CORSOrigins))

	// Apply middleware: CORS -> SecurityHeaders -> CSRF -> Auth -> RateLimit -> Timing -> Mux
	return middleware.Chain(mux, chain...)
}
