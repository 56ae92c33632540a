// Package httpx wires HTTP endpoints for the penpal services. Each service
// binary builds its own router; the shared base carries the audit logging,
// rate limiting and metrics plumbing.
package httpx

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"
)

const (
	rateWindowDefault = time.Minute
	rateLimitSignup   = 5
	rateLimitLogin    = 12
	rateLimitUser     = 60

	healthCheckTimeout = 2 * time.Second
)

// base carries the plumbing shared by all service routers.
type base struct {
	mux     *http.ServeMux
	logger  *slog.Logger
	limiter RateLimiter
	tokens  TokenValidator

	metricsState
}

func newBase(logger *slog.Logger, limiter RateLimiter, tokens TokenValidator, service string) base {
	b := base{
		mux:     http.NewServeMux(),
		logger:  logger,
		limiter: limiter,
		tokens:  tokens,
	}
	if b.limiter == nil {
		b.limiter = NewMemoryRateLimiter()
	}
	b.initMetrics(service)
	return b
}

// ServeHTTP delegates to the underlying mux.
func (b *base) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	b.mux.ServeHTTP(w, req)
}

// Close releases background resources.
func (b *base) Close() {
	if b.limiter != nil {
		b.limiter.Close()
	}
}

func (b *base) handleHealthz(dbHealth func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			b.methodNotAllowed(w)
			return
		}
		components := make(map[string]any)
		status := "ok"
		if dbHealth != nil {
			ctx, cancel := context.WithTimeout(req.Context(), healthCheckTimeout)
			defer cancel()
			if err := dbHealth(ctx); err != nil {
				status = "degraded"
				components["database"] = map[string]any{"status": "down", "error": err.Error()}
			} else {
				components["database"] = map[string]any{"status": "up"}
			}
		}
		payload := map[string]any{
			"status":     status,
			"components": components,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		}
		code := http.StatusOK
		if status != "ok" {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, payload)
	}
}

func handleHello(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Hello, World!"))
}

// audit wraps a handler with request logging.
func (b *base) audit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next(recorder, req)

		status := recorder.status
		if status == 0 {
			status = http.StatusOK
		}
		ctx := recorder.ctx
		if ctx == nil {
			ctx = req.Context()
		}
		duration := time.Since(start)
		actor := "anonymous"
		fields := []any{
			"method", req.Method,
			"path", req.URL.Path,
			"status", status,
			"bytes", recorder.bytes,
			"duration_ms", duration.Milliseconds(),
		}
		if ip := clientIP(req); ip != "" {
			fields = append(fields, "ip", ip)
		}
		if reqID := strings.TrimSpace(req.Header.Get("X-Request-ID")); reqID != "" {
			fields = append(fields, "request_id", reqID)
		}
		if identity, ok := identityFromContext(ctx); ok {
			actor = "user"
			fields = append(fields, "usr.id", identity.AccountID, "usr.name", identity.DisplayName)
		}
		fields = append(fields, "actor", actor)

		b.recordRequestMetrics(req.Method, req.URL.Path, status, duration)

		switch {
		case status >= http.StatusInternalServerError:
			b.logger.Error("http_request", fields...)
		case status >= http.StatusBadRequest:
			b.logger.Warn("http_request", fields...)
		default:
			b.logger.Info("http_request", fields...)
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	ctx    context.Context
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

func (sr *statusRecorder) SetContext(ctx context.Context) {
	sr.ctx = ctx
}

func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func clientIP(req *http.Request) string {
	if forwarded := strings.TrimSpace(req.Header.Get("X-Forwarded-For")); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(req.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(req.RemoteAddr)
	}
	return host
}

func (b *base) applyRateHeaders(w http.ResponseWriter, limit int, decision rateDecision) {
	if limit <= 0 {
		return
	}
	remaining := limit - decision.count
	if remaining < 0 {
		remaining = 0
	}
	headers := w.Header()
	headers.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	headers.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	if !decision.windowEnd.IsZero() {
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(decision.windowEnd.Unix(), 10))
	}
}

func (b *base) methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func (b *base) notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "not found")
}
