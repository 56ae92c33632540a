package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"log/slog"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TaraScho/gameday-demo-app-services/internal/domain"
	"github.com/TaraScho/gameday-demo-app-services/internal/service/match"
	"github.com/TaraScho/gameday-demo-app-services/internal/service/probe"
	"github.com/TaraScho/gameday-demo-app-services/pkg/usermgmt"
)

const maxMatchBody = 1 << 20

// Matcher assigns penpals and serves the stored profile and match history
// for an authenticated account.
type Matcher interface {
	AssignPenpal(ctx context.Context, accountID string, update domain.ProfileUpdate) (*domain.Penpal, error)
	Profile(ctx context.Context, accountID string) (*domain.Profile, error)
	History(ctx context.Context, accountID string) ([]domain.Match, error)
}

// URLProber checks and summarizes user-submitted URLs.
type URLProber interface {
	CheckReachable(ctx context.Context, url string) (int, error)
	AnalyzeContent(ctx context.Context, url string) (string, error)
}

// MatchingRouter is the authenticated front end: it forwards credentials to
// the users service and serves the match form endpoints.
type MatchingRouter struct {
	base
	users   *usermgmt.Client
	matcher Matcher
	prober  URLProber
}

// NewMatchingRouter wires the matching routes.
func NewMatchingRouter(users *usermgmt.Client, matcher Matcher, prober URLProber, tokens TokenValidator, limiter RateLimiter, logger *slog.Logger) *MatchingRouter {
	r := &MatchingRouter{
		base:    newBase(logger, limiter, tokens, "matching"),
		users:   users,
		matcher: matcher,
		prober:  prober,
	}
	r.routes()
	return r
}

func (r *MatchingRouter) routes() {
	r.mux.HandleFunc("/match/login", r.audit(r.withRateLimit("match.login", rateLimitLogin, rateWindowDefault, rateLimitKeyIP, r.handleLogin)))
	r.mux.HandleFunc("/match/signup", r.audit(r.withRateLimit("match.signup", rateLimitSignup, rateWindowDefault, rateLimitKeyIP, r.handleSignup)))
	r.mux.HandleFunc("/match/logout", r.audit(r.handleLogout))
	r.mux.HandleFunc("/match/match_penpal", r.audit(r.handlerAuthRate("match.match_penpal", rateLimitUser, r.handleMatchPenpal)))
	r.mux.HandleFunc("/match/test_user_url", r.audit(r.handlerAuthRate("match.test_user_url", rateLimitUser, r.handleTestUserURL)))
	r.mux.HandleFunc("/match/test_photo_url", r.audit(r.handlerAuthRate("match.test_photo_url", rateLimitUser, r.handleTestPhotoURL)))
	r.mux.HandleFunc("/match/history", r.audit(r.handlerAuthRate("match.history", rateLimitUser, r.handleHistory)))
	r.mux.HandleFunc("/match/hello", r.audit(handleHello))
	r.mux.HandleFunc("/healthz", r.handleHealthz(nil))
	r.mux.Handle("/metrics", promhttp.Handler())
}

// handleLogin forwards credentials to the users service and, on success,
// mirrors the token into an HttpOnly cookie for browser clients.
func (r *MatchingRouter) handleLogin(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	if err := req.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "malformed form data")
		return
	}
	token, err := r.users.Login(req.Context(), req.PostFormValue("email"), req.PostFormValue("password"))
	if err != nil {
		r.forwardError(w, err, "login")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"access_token": token})
}

func (r *MatchingRouter) handleSignup(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	if err := req.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "malformed form data")
		return
	}
	err := r.users.Signup(req.Context(), req.PostFormValue("email"), req.PostFormValue("name"), req.PostFormValue("password"))
	if err != nil {
		r.forwardError(w, err, "signup")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User created successfully"})
}

// handleLogout clears the cookie and notifies the users service. The
// notification is best effort; logout always succeeds.
func (r *MatchingRouter) handleLogout(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	if token := extractToken(req); token != "" {
		if err := r.users.Logout(req.Context(), token); err != nil {
			r.logger.Warn("logout notification failed", "error", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

// matchRequest is the match form payload. Pointer fields distinguish an
// absent attribute from an empty one, so absent attributes never clobber
// previously stored values.
type matchRequest struct {
	Hobbies            *string `json:"hobbies"`
	FavoriteColor      *string `json:"favoriteColor"`
	FavoriteQuote      *string `json:"favoriteQuote"`
	ExternalProfileURL *string `json:"profileUrl"`
	ExternalPhotoURL   *string `json:"photoUrl"`
}

func (r *MatchingRouter) handleMatchPenpal(w http.ResponseWriter, req *http.Request) {
	identity, ok := identityFromContext(req.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing token")
		return
	}

	switch req.Method {
	case http.MethodGet:
		// Identity echo plus stored attributes, for prefilling the form.
		profile, err := r.matcher.Profile(req.Context(), identity.AccountID)
		if err != nil {
			r.logger.Error("profile load failed", "usr.id", identity.AccountID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"account_id":     identity.AccountID,
			"name":           identity.DisplayName,
			"hobbies":        profile.Hobbies,
			"favorite_color": profile.FavoriteColor,
			"favorite_quote": profile.FavoriteQuote,
			"profile_url":    profile.ExternalProfileURL,
			"photo_url":      profile.ExternalPhotoURL,
		})
		return
	case http.MethodPost:
	default:
		r.methodNotAllowed(w)
		return
	}

	var payload matchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxMatchBody)).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}
	update := domain.ProfileUpdate{
		Hobbies:            payload.Hobbies,
		FavoriteColor:      payload.FavoriteColor,
		FavoriteQuote:      payload.FavoriteQuote,
		ExternalProfileURL: payload.ExternalProfileURL,
		ExternalPhotoURL:   payload.ExternalPhotoURL,
	}

	penpal, err := r.matcher.AssignPenpal(req.Context(), identity.AccountID, update)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{
			"penpal_id": penpal.ID,
			"name":      penpal.Name,
		})
	case errors.Is(err, match.ErrNoPenpalAvailable):
		writeJSON(w, http.StatusOK, nil)
	default:
		r.logger.Error("match assignment failed", "usr.id", identity.AccountID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (r *MatchingRouter) handleHistory(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	identity, ok := identityFromContext(req.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing token")
		return
	}
	history, err := r.matcher.History(req.Context(), identity.AccountID)
	if err != nil {
		r.logger.Error("history load failed", "usr.id", identity.AccountID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	entries := make([]map[string]string, 0, len(history))
	for _, m := range history {
		entries = append(entries, map[string]string{
			"match_id":   m.ID,
			"penpal_id":  m.PenpalID,
			"matched_at": m.MatchedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": entries})
}

type urlRequest struct {
	URL string `json:"url"`
}

func (r *MatchingRouter) handleTestUserURL(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload urlRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxMatchBody)).Decode(&payload); err != nil || payload.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	analysis, err := r.prober.AnalyzeContent(req.Context(), payload.URL)
	if err != nil {
		writeError(w, http.StatusBadRequest, "We can't reach this URL, please try again")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"analysis": analysis})
}

func (r *MatchingRouter) handleTestPhotoURL(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload urlRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxMatchBody)).Decode(&payload); err != nil || payload.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	status, err := r.prober.CheckReachable(req.Context(), payload.URL)
	if err != nil {
		if status != 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Unable to access the URL. HTTP Status Code: %d", status))
			return
		}
		writeError(w, http.StatusBadRequest, "We can't reach this URL, please try again")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"success": "We are able to reach your photo"})
}

// forwardError maps users-service client errors onto this service's
// responses without leaking transport details.
func (r *MatchingRouter) forwardError(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, usermgmt.ErrUnauthorized) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	var apiErr usermgmt.APIError
	if errors.As(err, &apiErr) {
		writeError(w, apiErr.Status, apiErr.Message)
		return
	}
	r.logger.Error("users service unreachable", "op", op, "error", err)
	writeError(w, http.StatusBadGateway, "user management service unavailable")
}

var _ URLProber = (*probe.Prober)(nil)
