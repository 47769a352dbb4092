package middleware

import (
	"context"
	"net/http"
	"strings"

	"seaview/pkg/client"
	httputil "seaview/pkg/httputil"
	"seaview/pkg/logger"
)

const PrincipalKey contextKey = "principal"

// Authentication resolves the bearer token through the identity service and
// injects the principal into the request context. Requests without a token
// pass through unauthenticated; handlers that mutate state reject those.
func Authentication(verifier client.IdentityVerifier, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := verifier.VerifyPrincipal(r.Context(), token)
			if err != nil {
				log.Warn("Principal verification failed",
					"request_id", requestIDFrom(r.Context()),
					"path", r.URL.Path,
					"error", err,
				)
				httputil.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), PrincipalKey, *principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func PrincipalFrom(ctx context.Context) (client.Principal, bool) {
	principal, ok := ctx.Value(PrincipalKey).(client.Principal)
	return principal, ok
}
