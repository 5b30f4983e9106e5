package main

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

func TestHandleHealth(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name   string
		checks map[string]healthCheck
		status int
		want   map[string]string
	}{
		{"no backends", map[string]healthCheck{}, http.StatusOK, map[string]string{"status": "healthy"}},
		{"all up", map[string]healthCheck{"database": ok, "redis": ok}, http.StatusOK,
			map[string]string{"status": "healthy", "database": "healthy", "redis": "healthy"}},
		{"redis down", map[string]healthCheck{"database": ok, "redis": down}, http.StatusServiceUnavailable,
			map[string]string{"status": "unhealthy", "database": "healthy", "redis": "unhealthy"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleHealth(tt.checks)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.status, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			for k, v := range tt.want {
				assert.Equal(t, v, body[k], k)
			}
		})
	}
}
