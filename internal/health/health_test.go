package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]Check
		status int
		body   map[string]string
	}{
		{"no checks", nil, http.StatusOK, map[string]string{"status": "ok"}},
		{
			"passing check",
			map[string]Check{"db": func(context.Context) error { return nil }},
			http.StatusOK,
			map[string]string{"status": "ok"},
		},
		{
			"failing check",
			map[string]Check{"db": func(context.Context) error { return errors.New("connection refused") }},
			http.StatusServiceUnavailable,
			map[string]string{"status": "degraded", "db": "connection refused"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			New(0, tt.checks).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.status, rec.Code)
			var body map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.body, body)
		})
	}
}

func TestMetrics(t *testing.T) {
	rec := httptest.NewRecorder()
	New(0, nil).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
