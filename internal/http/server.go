package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"spendtrack/internal/config"
	"spendtrack/internal/exchange"
	"spendtrack/internal/middleware/ratelimit"
	"spendtrack/internal/services"
)

// Server is the JSON API server. It embeds http.Server so callers can tune
// timeouts directly before ListenAndServe.
type Server struct {
	http.Server

	expenses    *services.ExpenseService
	dashboard   *services.DashboardService
	exchange    *exchange.Client
	corsOrigins []string
	rateLimiter *ratelimit.Limiter

	shutdownOnce sync.Once
}

// NewServer configures all routes and middleware, returning a ready-to-run
// server bound to addr.
func NewServer(addr string, cfg *config.Config, exp *services.ExpenseService, dash *services.DashboardService, ex *exchange.Client) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		expenses:    exp,
		dashboard:   dash,
		exchange:    ex,
		corsOrigins: cfg.CORSOrigins,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RequestsPerMinute}),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)
	mux.HandleFunc("OPTIONS /", s.handlePreflight)

	mux.HandleFunc("POST /expenses", s.wrap(s.handleCreateExpense))
	mux.HandleFunc("GET /expenses", s.wrap(s.handleListExpenses))
	mux.HandleFunc("GET /expenses/{id}", s.wrap(s.handleGetExpense))
	mux.HandleFunc("PUT /expenses/{id}", s.wrap(s.handleUpdateExpense))
	mux.HandleFunc("PATCH /expenses/{id}", s.wrap(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /expenses/{id}", s.wrap(s.handleDeleteExpense))

	mux.HandleFunc("GET /dashboard/stats", s.wrap(s.handleDashboardStats))

	mux.HandleFunc("GET /exchange/rates/{base}", s.wrap(s.handleExchangeRates))
	mux.HandleFunc("GET /exchange/convert", s.wrap(s.handleExchangeConvert))

	return s
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// wrap adds request logging, CORS headers, and rate limiting for mutating
// methods around a handler.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		s.applyCORS(w, r)

		if isMutating(r.Method) && !s.rateLimiter.Allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP,
				"method", r.Method,
				"path", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

type contextKey string

const requestIDKey contextKey = "request_id"

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// applyCORS sets response headers for origins in the configured allowlist.
func (s *Server) applyCORS(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return
	}
	for _, allowed := range s.corsOrigins {
		if allowed == "*" || allowed == origin {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			return
		}
	}
}

// handlePreflight answers CORS preflight requests for every route.
func (s *Server) handlePreflight(w http.ResponseWriter, r *http.Request) {
	s.applyCORS(w, r)
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.WriteHeader(http.StatusNoContent)
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func extractClientIP(r *http.Request) string {
	// X-Forwarded-For accumulates one entry per proxy hop; only the first
	// element identifies the client.
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return strings.TrimSpace(strings.Split(ip, ",")[0])
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
