// Package http serves the web view of the ledger: the transaction table,
// the statement upload endpoint, the conversational /chat endpoint and the
// report JSON feeds.
package http

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"mledger/internal/assistant"
	"mledger/internal/cache"
	"mledger/internal/core"
	"mledger/internal/ledger"
	"mledger/internal/services"
	"mledger/web"
)

// Options tunes the server without threading the whole config through.
type Options struct {
	RateLimitPerMinute int
	ReportCacheSize    int
	ReportCacheTTL     time.Duration
}

func (o Options) withDefaults() Options {
	if o.RateLimitPerMinute <= 0 {
		o.RateLimitPerMinute = 60
	}
	if o.ReportCacheSize <= 0 {
		o.ReportCacheSize = 64
	}
	if o.ReportCacheTTL <= 0 {
		o.ReportCacheTTL = 5 * time.Minute
	}
	return o
}

type Server struct {
	http.Server

	templates *template.Template
	store     ledger.TransactionLister
	service   *services.StatementService
	responder *assistant.Responder

	limiter     *rateLimiter
	reportCache *cache.LRUCache[[]byte]

	// snapshot is swapped atomically on reload; a question in flight keeps
	// answering against the snapshot it started with.
	snapshot   atomic.Pointer[core.Snapshot]
	generation atomic.Int64
}

// NewServer builds the server. service may be nil for a read-only deployment
// with no upload endpoint.
func NewServer(addr string, store ledger.TransactionLister, service *services.StatementService,
	responder *assistant.Responder, opts Options) (*Server, error) {

	templates, err := template.ParseFS(web.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	opts = opts.withDefaults()
	s := &Server{
		templates:   templates,
		store:       store,
		service:     service,
		responder:   responder,
		limiter:     newRateLimiter(opts.RateLimitPerMinute),
		reportCache: cache.NewLRU[[]byte](opts.ReportCacheSize, opts.ReportCacheTTL),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /statements", s.handleUploadStatement)
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /reports/monthly", s.handleMonthlyReport)
	mux.HandleFunc("GET /reports/category", s.handleCategoryReport)
	mux.HandleFunc("GET /reports/yearly", s.handleYearlyReport)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
	mux.Handle("GET /static/", http.FileServerFS(web.StaticFS))

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.withSecurityHeaders(s.withRateLimit(s.withRequestLog(mux))),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

// RefreshSnapshot rebuilds the in-memory snapshot from the store and drops
// cached reports computed from the old one.
func (s *Server) RefreshSnapshot(ctx context.Context) error {
	txns, err := s.store.ActiveTransactions(ctx)
	if err != nil {
		return fmt.Errorf("failed to load active transactions: %w", err)
	}
	s.snapshot.Store(core.NewSnapshot(txns))
	s.generation.Add(1)
	s.reportCache.Clear()
	slog.InfoContext(ctx, "Snapshot refreshed", "transactions", len(txns))
	return nil
}

// currentSnapshot returns the live snapshot, loading it lazily on first use.
func (s *Server) currentSnapshot(ctx context.Context) *core.Snapshot {
	if snap := s.snapshot.Load(); snap != nil {
		return snap
	}
	if err := s.RefreshSnapshot(ctx); err != nil {
		slog.ErrorContext(ctx, "Failed to load snapshot", "error", err)
		return core.NewSnapshot(nil)
	}
	return s.snapshot.Load()
}

func (s *Server) withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy",
			"default-src 'self'; style-src 'self'; script-src 'self'; img-src 'self' data:")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if !s.limiter.allow(ip) {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).Round(time.Millisecond))
	})
}

// rateLimiter is a per-IP fixed-window counter. Windows are a minute wide;
// stale visitors are swept on the hour boundary of use.
type rateLimiter struct {
	mu          sync.Mutex
	perMinute   int
	visitors    map[string]*visitor
	lastCleanup time.Time
}

type visitor struct {
	count       int
	windowStart time.Time
}

func newRateLimiter(perMinute int) *rateLimiter {
	return &rateLimiter{
		perMinute:   perMinute,
		visitors:    make(map[string]*visitor),
		lastCleanup: time.Now(),
	}
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastCleanup) > time.Hour {
		for k, v := range rl.visitors {
			if now.Sub(v.windowStart) > time.Minute {
				delete(rl.visitors, k)
			}
		}
		rl.lastCleanup = now
	}

	v, ok := rl.visitors[ip]
	if !ok || now.Sub(v.windowStart) > time.Minute {
		rl.visitors[ip] = &visitor{count: 1, windowStart: now}
		return true
	}

	v.count++
	return v.count <= rl.perMinute
}
