package auth

import (
	"net/http"
	"strings"

	"github.com/crewbase/crewbase/internal/authz"
	"github.com/crewbase/crewbase/internal/platform/httpx"
)

// ResolvePrincipal reads the Authorization header and attaches the resolved
// principal to the request context. Requests without a token pass through
// unauthenticated; the authorization pipeline rejects them where a principal
// is required. A token that is present but unknown is rejected here.
func ResolvePrincipal(tokens *TokenStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			principal, err := tokens.Resolve(r.Context(), raw)
			if err != nil {
				httpx.RespondError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(authz.ContextWithPrincipal(r.Context(), principal)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	scheme, value, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(value)
}
