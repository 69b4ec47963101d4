package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type MockPinger struct {
	Err error
}

func (m *MockPinger) Ping(context.Context) error {
	return m.Err
}

func TestServeHTTP(t *testing.T) {
	testCases := []struct {
		name               string
		pingErr            error
		expectedStatusCode int
		expectedStatus     string
		expectedDatabase   string
	}{
		{
			name:               "Database up",
			expectedStatusCode: http.StatusOK,
			expectedStatus:     "healthy",
			expectedDatabase:   "up",
		},
		{
			name:               "Database down",
			pingErr:            errors.New("connection refused"),
			expectedStatusCode: http.StatusServiceUnavailable,
			expectedStatus:     "unhealthy",
			expectedDatabase:   "down",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewHealthHandler(&MockPinger{Err: tc.pingErr})
			req := httptest.NewRequest("GET", "/health", nil)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)

			var resp HealthResponse
			err := json.NewDecoder(rec.Body).Decode(&resp)
			assert.NoError(t, err)
			assert.Equal(t, tc.expectedStatus, resp.Status)
			assert.Equal(t, tc.expectedDatabase, resp.Database)
			assert.False(t, resp.Timestamp.IsZero())
		})
	}
}
