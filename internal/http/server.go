package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"costbook/internal/backend"
	"costbook/internal/middleware/ratelimit"
	"costbook/internal/middleware/security"
	"costbook/internal/middleware/trace"
)

// Options tunes the server; zero values take defaults.
type Options struct {
	RateLimitPerMinute int
	// Now supplies the default period for queries; nil means time.Now.
	Now func() time.Time
}

// Server is the JSON API over one backend.
type Server struct {
	http.Server
	backend  *backend.Backend
	limiter  *ratelimit.Limiter
	detector *security.Detector
	now      func() time.Time
	started  time.Time

	shutdownOnce sync.Once
}

// NewServer registers the routes and middleware, returning a ready-to-run server.
func NewServer(addr string, b *backend.Backend, opts Options) *Server {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	s := &Server{
		backend:  b,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector: security.NewDetector(),
		now:      now,
		started:  time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /costs", s.handleCreateCost)
	mux.HandleFunc("GET /costs", s.handleListCosts)
	mux.HandleFunc("GET /costs/all", s.handleAllCosts)
	mux.HandleFunc("DELETE /costs", s.handleClearCosts)

	mux.HandleFunc("GET /reports", s.handleReport)
	mux.HandleFunc("GET /reports/categories", s.handleCategories)
	mux.HandleFunc("GET /reports/year", s.handleYear)

	mux.HandleFunc("GET /rates", s.handleGetRates)
	mux.HandleFunc("PUT /rates", s.handlePutRates)
	mux.HandleFunc("GET /rates/source", s.handleGetSource)
	mux.HandleFunc("PUT /rates/source", s.handlePutSource)
	mux.HandleFunc("POST /rates/refresh", s.handleRefreshRates)

	limited := s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded, try again later"})
	})(mux)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(s.detector.ExtractClientIP)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           tracer.Middleware(headers.Middleware(s.detector.Middleware(limited))),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and drains the HTTP server. It runs once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
