package auth

import (
	"net/http"
	"strings"

	"github.com/docket-th/docket/internal/platform/httpx"
	"github.com/docket-th/docket/internal/shared"
)

// Middleware returns a handler wrapper enforcing bearer-token auth. The SPA
// treats any 401 as a signal to drop its stored credential.
func (s *Service) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				httpx.RespondError(w, shared.ErrUnauthenticated)
				return
			}

			identity, err := s.VerifyToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				httpx.RespondError(w, shared.ErrUnauthenticated)
				return
			}

			ctx := shared.ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
