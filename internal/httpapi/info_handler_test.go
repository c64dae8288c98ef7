package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvchat/internal/gateway"
	"csvchat/internal/ratelimit"
	"csvchat/internal/usage"
	"csvchat/internal/utils"
)

func infoDeps(creds gateway.Credentials) *Dependencies {
	return &Dependencies{
		Gateway: gateway.New(gateway.Options{
			Catalog:     gateway.NewCatalog(gateway.CatalogOptions{}),
			Credentials: creds,
		}),
		RateLimit:      ratelimit.NewNoopLimiter(),
		Usage:          usage.NewNoopRecorder(),
		maxUploadBytes: 16 << 20,
		creds:          creds,
		logger:         utils.NewLogger("httpapi-test"),
	}
}

func TestHandleHealth(t *testing.T) {
	deps := infoDeps(gateway.Credentials{})

	w := httptest.NewRecorder()
	deps.handleHealth(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestHandleUploadInfo(t *testing.T) {
	deps := infoDeps(gateway.Credentials{gateway.KindOpenAI: "o-key"})

	w := httptest.NewRecorder()
	deps.handleUploadInfo(w, httptest.NewRequest(http.MethodGet, "/upload-info", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(16), body["max_file_size_mb"])
	assert.Equal(t, "openai", body["llm_provider"])
	assert.Len(t, body["available_providers"], 4)
}

func TestHandleDebugEnv(t *testing.T) {
	secret := "sk-ant-verysecretvalue"
	deps := infoDeps(gateway.Credentials{gateway.KindAnthropic: secret})

	w := httptest.NewRecorder()
	deps.handleDebugEnv(w, httptest.NewRequest(http.MethodGet, "/debug-env", nil))

	require.Equal(t, http.StatusOK, w.Code)
	// Presence and length only; the value itself never appears.
	assert.NotContains(t, w.Body.String(), secret)

	var body struct {
		DetectedProvider string `json:"detected_provider"`
		Providers        map[string]struct {
			CredentialEnv string `json:"credential_env"`
			APIKeyExists  bool   `json:"api_key_exists"`
			APIKeyLength  int    `json:"api_key_length"`
		} `json:"providers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "anthropic", body.DetectedProvider)

	anthropic := body.Providers["anthropic"]
	assert.Equal(t, "ANTHROPIC_API_KEY", anthropic.CredentialEnv)
	assert.True(t, anthropic.APIKeyExists)
	assert.Equal(t, len(secret), anthropic.APIKeyLength)

	google := body.Providers["google"]
	assert.False(t, google.APIKeyExists)
	assert.Zero(t, google.APIKeyLength)
}

func TestInfoHandlersRejectPost(t *testing.T) {
	deps := infoDeps(gateway.Credentials{})
	handlers := map[string]http.HandlerFunc{
		"/health":      deps.handleHealth,
		"/upload-info": deps.handleUploadInfo,
		"/debug-env":   deps.handleDebugEnv,
	}
	for path, h := range handlers {
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodPost, path, nil))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, path)
	}
}

func TestCORSMiddleware(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := corsMiddleware(inner)

	t.Run("headers applied to every response", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		called := false
		h := corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/chat", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.False(t, called)
	})
}
