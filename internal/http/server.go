// Package http exposes the finance tracker as a JSON API with chart
// downloads.
package http

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
)

const readyTimeout = 2 * time.Second

// ServerConfig holds the listener settings.
type ServerConfig struct {
	Addr               string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	RateLimitPerMinute int
}

type Server struct {
	http.Server

	deps         Deps
	logger       *log.Logger
	limiter      *ratelimit.Limiter
	detector     *security.Detector
	shutdownOnce sync.Once
}

func NewServer(cfg ServerConfig, deps Deps, logger *log.Logger) *Server {
	httpLogger := logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		deps:     deps,
		logger:   httpLogger,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		detector: security.NewDetector(logger),
	}

	mux := http.NewServeMux()
	s.routes(mux)

	tracer := trace.NewMiddleware(s.detector.ClientIP, logger)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.limiter.Middleware(s.detector.ClientIP, s.rateLimited)

	var h http.Handler = mux
	h = limit(h)
	h = headers.Middleware(h)
	h = s.detector.Middleware(h)
	h = tracer.Middleware(h)
	h = log.Middleware(httpLogger)(h)

	s.Server = http.Server{
		Addr:         cfg.Addr,
		Handler:      h,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/signup", s.handleSignup)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.authed(s.handleLogout))
	mux.HandleFunc("GET /api/categories", s.handleCategories)

	mux.HandleFunc("GET /api/home", s.authed(s.handleHome))
	mux.HandleFunc("GET /api/profile", s.authed(s.handleGetProfile))
	mux.HandleFunc("PUT /api/profile", s.authed(s.handleUpdateProfile))
	mux.HandleFunc("POST /api/settings", s.authed(s.handleSettings))

	mux.HandleFunc("GET /api/transactions", s.authed(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.authed(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions/{id}", s.authed(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.authed(s.handleEditTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.authed(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/budget", s.authed(s.handleGetBudget))
	mux.HandleFunc("POST /api/budget", s.authed(s.handleSetBudget))

	mux.HandleFunc("GET /api/planned-payments", s.authed(s.handleListPayments))
	mux.HandleFunc("POST /api/planned-payments", s.authed(s.handleSchedulePayment))
	mux.HandleFunc("DELETE /api/planned-payments/{id}", s.authed(s.handleDeletePayment))

	mux.HandleFunc("GET /api/charts/expenses", s.authed(s.handleExpenseChart))
	mux.HandleFunc("GET /api/charts/balance", s.authed(s.handleBalanceChart))
	mux.HandleFunc("GET /api/charts/home", s.authed(s.handleHomeChart))
	mux.HandleFunc("GET /api/export", s.authed(s.handleExport))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusNotFound, "Not found").Write(w)
	})
}

// authed requires a valid bearer token and stores its principal in the
// request context.
func (s *Server) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			s.unauthorized(w)
			return
		}

		p, err := s.deps.Tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			log.FromContext(r.Context()).DebugContext(r.Context(), "Rejected bearer token", log.FieldError, err.Error())
			s.unauthorized(w)
			return
		}

		ctx := auth.WithPrincipal(r.Context(), p)
		ctx = log.NewContext(ctx, log.FromContext(ctx).With(log.FieldAccountID, p.AccountID))
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) unauthorized(w http.ResponseWriter) {
	ErrorResponse(http.StatusUnauthorized, "Login required").
		Header("WWW-Authenticate", `Bearer realm="fintrack"`).
		Write(w)
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	ErrorResponse(http.StatusTooManyRequests, "Too many requests, please slow down").Write(w)
}

// principal returns the caller set by authed. Handlers reached without it
// get a zero principal, which the services reject.
func principal(r *http.Request) auth.Principal {
	p, _ := auth.FromContext(r.Context())
	return p
}

// Shutdown stops the rate limiter and gracefully drains the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().Message("ok").Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.deps.Store.Ping(ctx); err != nil {
		s.logger.WarnContext(r.Context(), "Readiness check failed", log.FieldError, err.Error())
		ErrorResponse(http.StatusServiceUnavailable, "not ready").Write(w)
		return
	}
	NewResponse().Message("ready").Write(w)
}
