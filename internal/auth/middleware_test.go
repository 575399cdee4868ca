package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func apiKeyHandler(key string) http.Handler {
	m := NewMiddleware(nil, nil, key, zap.NewNop())
	return m.RequireAPIKey(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRequireAPIKey(t *testing.T) {
	h := apiKeyHandler("secret-key")

	tests := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{"x api key header", "X-API-Key", "secret-key", http.StatusOK},
		{"bearer token form", "Authorization", "Bearer secret-key", http.StatusOK},
		{"bearer scheme is case insensitive", "Authorization", "bearer secret-key", http.StatusOK},
		{"wrong x api key", "X-API-Key", "wrong", http.StatusUnauthorized},
		{"wrong bearer token", "Authorization", "Bearer wrong", http.StatusUnauthorized},
		{"basic scheme is rejected", "Authorization", "Basic secret-key", http.StatusUnauthorized},
		{"missing key", "", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/integration", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRequireAPIKeyPrefersExplicitHeader(t *testing.T) {
	// A present but wrong X-API-Key is not rescued by a valid bearer token
	h := apiKeyHandler("secret-key")

	req := httptest.NewRequest(http.MethodPost, "/api/integration", nil)
	req.Header.Set("X-API-Key", "wrong")
	req.Header.Set("Authorization", "Bearer secret-key")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAPIKeyUnconfigured(t *testing.T) {
	// An empty configured key locks the endpoint instead of opening it
	h := apiKeyHandler("")

	req := httptest.NewRequest(http.MethodPost, "/api/integration", nil)
	req.Header.Set("X-API-Key", "")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
