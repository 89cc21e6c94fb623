package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zhouzirui/feedbackhub/backend/internal/auth"
)

func ownerEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handle, _ := auth.OwnerFromContext(r.Context())
		_, _ = w.Write([]byte(handle))
	})
}

func TestRequireOwner(t *testing.T) {
	verifier := auth.NewVerifier("secret", "feedbackhub")
	token, err := verifier.Issue("alice", time.Hour)
	require.NoError(t, err)

	handler := RequireOwner(verifier, zap.NewNop())(ownerEcho())

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{name: "valid token", header: "Bearer " + token, status: http.StatusOK, body: "alice"},
		{name: "missing header", header: "", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + token, status: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not-a-jwt", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			require.Equal(t, tt.status, rr.Code)
			if tt.body != "" {
				require.Equal(t, tt.body, rr.Body.String())
			}
		})
	}
}

func TestRequireOwnerWithoutVerifier(t *testing.T) {
	handler := RequireOwner(nil, zap.NewNop())(ownerEcho())
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestCORSPreflight(t *testing.T) {
	called := false
	handler := CORS(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/api/u/alice/messages", nil))
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.False(t, called)
	require.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
