package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/folio-api/folio/internal/platform/httpx"
	"github.com/folio-api/folio/internal/shared"
	"github.com/folio-api/folio/internal/token"
)

// Gate is the authorization step in front of every protected route. It
// extracts the bearer token, verifies it statelessly and attaches the
// resolved principal to the request context. Public routes simply never
// mount it.
type Gate struct {
	tokens *token.Manager
	logger *slog.Logger
}

// NewGate constructs the authorization middleware.
func NewGate(tokens *token.Manager, logger *slog.Logger) *Gate {
	return &Gate{tokens: tokens, logger: logger}
}

// RequireAdmin admits requests carrying a valid administrator token.
func (g *Gate) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			httpx.Fail(w, http.StatusUnauthorized, "authentication required")
			return
		}
		principal, err := g.tokens.Verify(raw)
		if err != nil {
			if g.logger != nil {
				g.logger.Warn("token rejected", slog.String("path", r.URL.Path))
			}
			httpx.Fail(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		if !principal.IsAdmin() {
			httpx.Fail(w, http.StatusForbidden, "administrator access required")
			return
		}
		ctx := shared.ContextWithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return "", false
	}
	return raw, true
}
