package httpx

import (
	"context"
	"errors"
	"net/http"

	"log/slog"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TaraScho/gameday-demo-app-services/internal/repository"
	"github.com/TaraScho/gameday-demo-app-services/internal/service/auth"
)

// AuthService is the slice of the auth service the users router needs.
type AuthService interface {
	Signup(ctx context.Context, email, name, password string) error
	Login(ctx context.Context, email, password string) (string, error)
}

// UsersRouter serves the user management endpoints: signup, login, logout.
type UsersRouter struct {
	base
	auth     AuthService
	dbHealth func(context.Context) error
}

// NewUsersRouter wires the user management routes.
func NewUsersRouter(authSvc AuthService, limiter RateLimiter, dbHealth func(context.Context) error, logger *slog.Logger) *UsersRouter {
	r := &UsersRouter{
		base:     newBase(logger, limiter, nil, "users"),
		auth:     authSvc,
		dbHealth: dbHealth,
	}
	r.routes()
	return r
}

func (r *UsersRouter) routes() {
	r.mux.HandleFunc("/users/signup", r.audit(r.withRateLimit("users.signup", rateLimitSignup, rateWindowDefault, rateLimitKeyIP, r.handleSignup)))
	r.mux.HandleFunc("/users/login", r.audit(r.withRateLimit("users.login", rateLimitLogin, rateWindowDefault, rateLimitKeyIP, r.handleLogin)))
	r.mux.HandleFunc("/users/logout", r.audit(r.handleLogout))
	r.mux.HandleFunc("/users/hello", r.audit(handleHello))
	r.mux.HandleFunc("/healthz", r.handleHealthz(r.dbHealth))
	r.mux.Handle("/metrics", promhttp.Handler())
}

func (r *UsersRouter) handleSignup(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	if err := req.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "malformed form data")
		return
	}
	email := req.PostFormValue("email")
	name := req.PostFormValue("name")
	password := req.PostFormValue("password")

	err := r.auth.Signup(req.Context(), email, name, password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, map[string]string{"message": "User created successfully"})
	case errors.Is(err, auth.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "email, name and password are required")
	case errors.Is(err, repository.ErrConflict):
		writeError(w, http.StatusBadRequest, "Email already exists")
	default:
		r.logger.Error("signup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (r *UsersRouter) handleLogin(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	if err := req.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "malformed form data")
		return
	}
	email := req.PostFormValue("email")
	password := req.PostFormValue("password")

	token, err := r.auth.Login(req.Context(), email, password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"access_token": token})
	case errors.Is(err, auth.ErrUnauthorized):
		// Unknown account and wrong password produce the same response.
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	default:
		r.logger.Error("login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// handleLogout always succeeds. Tokens are stateless, so logout is a
// client-side discard.
func (r *UsersRouter) handleLogout(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}
