package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/yangwenmai/solvesync/internal/store"
	"github.com/yangwenmai/solvesync/internal/trigger"
)

// defaultMaxBody is the default request body cap (5 MB); snapshots carry a
// whole serialized page.
const defaultMaxBody int64 = 5 << 20

// Server holds the HTTP handlers and dependencies.
type Server struct {
	store store.SubmissionRepository
	mux   *http.ServeMux

	detector *trigger.Detector
	watcher  *trigger.NavigationWatcher
	cache    *trigger.SnapshotCache
	hub      http.Handler

	corsOrigin  string
	maxBody     int64
	dedupe      time.Duration
	navSettle   time.Duration
	renderDelay time.Duration
	snapshotTTL time.Duration

	// captureMu serializes the duplicate check with the insert.
	captureMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
}

// Option configures a Server.
type Option func(*Server)

// WithCORSOrigin sets the allowed CORS origin.
func WithCORSOrigin(origin string) Option {
	return func(s *Server) {
		if origin != "" {
			s.corsOrigin = origin
		}
	}
}

// WithMaxBody sets the request body cap in bytes.
func WithMaxBody(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// WithDedupeWindow suppresses captures of a URL that already has a
// submission younger than d.
func WithDedupeWindow(d time.Duration) Option {
	return func(s *Server) { s.dedupe = d }
}

// WithSettleDelays sets the delays waited after navigating to a submission
// page before it is captured.
func WithSettleDelays(nav, render time.Duration) Option {
	return func(s *Server) { s.navSettle, s.renderDelay = nav, render }
}

// WithSnapshotTTL sets how long posted snapshots stay usable.
func WithSnapshotTTL(d time.Duration) Option {
	return func(s *Server) { s.snapshotTTL = d }
}

// WithNotificationHub mounts h at GET /ws/notifications.
func WithNotificationHub(h http.Handler) Option {
	return func(s *Server) { s.hub = h }
}

// New creates a new API server.
func New(st store.SubmissionRepository, opts ...Option) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &Server{
		store:       st,
		mux:         http.NewServeMux(),
		detector:    trigger.NewDetector(),
		corsOrigin:  "*",
		maxBody:     defaultMaxBody,
		dedupe:      10 * time.Second,
		navSettle:   time.Second,
		renderDelay: 1500 * time.Millisecond,
		snapshotTTL: 2 * time.Minute,
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, o := range opts {
		o(srv)
	}
	srv.cache = trigger.NewSnapshotCache(srv.snapshotTTL)
	srv.watcher = trigger.NewNavigationWatcher(srv.navSettle, srv.renderDelay, srv.captureNavigation)
	srv.routes()
	return srv
}

// Handler returns the root http.Handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.corsMiddleware(s.limitBody(jsonContent(s.mux)))
}

// Close abandons pending navigation captures and waits for them to return.
func (s *Server) Close() {
	s.cancel()
	s.watcher.Wait()
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/snapshots", s.handleSnapshot)
	s.mux.HandleFunc("POST /api/capture", s.handleCapture)
	s.mux.HandleFunc("GET /api/submissions", s.handleListSubmissions)
	s.mux.HandleFunc("GET /api/submissions/{id}", s.handleGetSubmission)
	s.mux.HandleFunc("POST /api/submissions/{id}/retry", s.handleRetry)
	s.mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	s.mux.HandleFunc("PUT /api/settings", s.handlePutSettings)
	if s.hub != nil {
		s.mux.Handle("GET /ws/notifications", s.hub)
	}
}

// ---------------------------------------------------------------------------
// Middleware
// ---------------------------------------------------------------------------

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// limitBody restricts the request body to maxBody bytes.
func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
		next.ServeHTTP(w, r)
	})
}

func jsonContent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// ---------------------------------------------------------------------------
// Response helpers
// ---------------------------------------------------------------------------

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func splitComma(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
