package httputil_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/casevault/internal/errors"
	"github.com/allisson/casevault/internal/httputil"
)

func TestParsePagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		url            string
		expectedOffset int
		expectedLimit  int
		expectError    bool
		errorContains  string
	}{
		{name: "default values", url: "/", expectedOffset: 0, expectedLimit: httputil.DefaultPageLimit},
		{name: "valid custom values", url: "/?offset=10&limit=20", expectedOffset: 10, expectedLimit: 20},
		{name: "max limit", url: "/?limit=100", expectedLimit: httputil.MaxPageLimit},
		{name: "offset negative", url: "/?offset=-1", expectError: true, errorContains: "offset"},
		{name: "offset not an integer", url: "/?offset=abc", expectError: true, errorContains: "must be integers"},
		{name: "limit zero", url: "/?limit=0", expectError: true, errorContains: "limit"},
		{name: "limit exceeds max", url: "/?limit=101", expectError: true, errorContains: "limit"},
		{name: "limit not an integer", url: "/?limit=xyz", expectError: true, errorContains: "must be integers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, tt.url, nil)

			offset, limit, err := httputil.ParsePagination(c)

			if tt.expectError {
				assert.ErrorIs(t, err, httputil.ErrInvalidPagination)
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
				assert.Contains(t, err.Error(), tt.errorContains)
				assert.Equal(t, 0, offset)
				assert.Equal(t, 0, limit)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedOffset, offset)
			assert.Equal(t, tt.expectedLimit, limit)
		})
	}
}
