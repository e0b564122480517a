package http

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCORSMiddleware(t *testing.T) {
	logger := slog.Default()

	tests := []struct {
		name    string
		enabled bool
		origins string
		wantNil bool
	}{
		{name: "disabled", enabled: false, origins: "http://localhost:3000", wantNil: true},
		{name: "no origins", enabled: true, origins: "", wantNil: true},
		{name: "only remote origins", enabled: true, origins: "https://evil.example.com,*", wantNil: true},
		{name: "loopback origins", enabled: true, origins: "http://localhost:3000, http://127.0.0.1:8080"},
		{name: "mixed keeps loopback", enabled: true, origins: "https://evil.example.com,http://[::1]:5173"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			middleware := createCORSMiddleware(tt.enabled, tt.origins, logger)
			if tt.wantNil {
				assert.Nil(t, middleware)
			} else {
				assert.NotNil(t, middleware)
			}
		})
	}
}

func TestParseOrigins(t *testing.T) {
	origins, rejected := parseOrigins(
		" http://localhost:3000/ ,https://127.0.0.1,http://[::1]:9000,*,https://dash.example.com,ftp://localhost,http://localhost/app,",
	)

	assert.Equal(t, []string{"http://localhost:3000", "https://127.0.0.1", "http://[::1]:9000"}, origins)
	assert.Equal(t, []string{"*", "https://dash.example.com", "ftp://localhost", "http://localhost/app"}, rejected)
}

func TestParseOrigins_Empty(t *testing.T) {
	origins, rejected := parseOrigins("")
	assert.Empty(t, origins)
	assert.Empty(t, rejected)
}

func TestCORSMiddleware_Integration(t *testing.T) {
	gin.SetMode(gin.TestMode)

	middleware := createCORSMiddleware(true, "http://localhost:3000", slog.Default())
	require.NotNil(t, middleware)

	router := gin.New()
	router.Use(middleware)
	router.GET("/v1/audit-logs", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": []string{}})
	})

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/audit-logs", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/v1/audit-logs", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", "GET")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "GET")
	})

	t.Run("disallowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/audit-logs", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}
