package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/TaraScho/gameday-demo-app-services/internal/domain"
)

// TokenValidator checks an access token and returns the identity it carries.
type TokenValidator interface {
	ValidateToken(token string) (domain.Identity, error)
}

type authContextKey struct{}

type contextSetter interface {
	SetContext(ctx context.Context)
}

// extractToken looks for an access token in the places browser and CLI
// clients put it. Precedence is fixed: Authorization bearer header, then
// the token query parameter, then the access_token cookie. A header that
// is not a bearer token is ignored and the fallbacks still apply.
func extractToken(req *http.Request) string {
	header := strings.TrimSpace(req.Header.Get("Authorization"))
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if token := strings.TrimSpace(req.URL.Query().Get("token")); token != "" {
		return token
	}
	if cookie, err := req.Cookie("access_token"); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}

// requireAuth rejects requests without a valid token. The token is checked
// before any other work happens, so an absent token never touches storage.
func (b *base) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		token := extractToken(req)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Missing token")
			return
		}
		identity, err := b.tokens.ValidateToken(token)
		if err != nil {
			if errors.Is(err, jwtlib.ErrTokenExpired) {
				writeError(w, http.StatusUnauthorized, "Token expired")
				return
			}
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		ctx := context.WithValue(req.Context(), authContextKey{}, identity)
		if setter, ok := w.(contextSetter); ok {
			setter.SetContext(ctx)
		}
		next(w, req.WithContext(ctx))
	}
}

func identityFromContext(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(authContextKey{}).(domain.Identity)
	return identity, ok
}
