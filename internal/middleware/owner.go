package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/zhouzirui/feedbackhub/backend/internal/auth"
	"github.com/zhouzirui/feedbackhub/backend/pkg/utils"
)

// TokenVerifier resolves a bearer token to an account handle.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// RequireOwner authenticates the caller from the Authorization header and
// stores the handle in the request context. Whether that handle owns the
// addressed account is checked by the services.
func RequireOwner(verifier TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				utils.RespondError(w, http.StatusServiceUnavailable, "owner authentication is not configured")
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				utils.RespondError(w, http.StatusUnauthorized, "Not authenticated")
				return
			}

			handle, err := verifier.Verify(strings.TrimSpace(token))
			if err != nil {
				logger.Debug("owner token rejected", zap.Error(err))
				utils.RespondError(w, http.StatusUnauthorized, "Not authenticated")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithOwner(r.Context(), handle)))
		})
	}
}
