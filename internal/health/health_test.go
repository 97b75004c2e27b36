package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func okChecker(name string) Checker {
	return NewFuncChecker(name, func(context.Context) error { return nil })
}

func failingChecker(name, msg string) Checker {
	return NewFuncChecker(name, func(context.Context) error { return errors.New(msg) })
}

func TestHealthHandler(t *testing.T) {
	handler := NewHandler("v1.0.0")
	handler.RegisterChecker("storage", okChecker("storage"))
	handler.RegisterChecker("kafka", okChecker("kafka"))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	require.Equal(t, StatusHealthy, response.Status)
	require.Equal(t, "v1.0.0", response.Version)
	require.Len(t, response.Checks, 2)
	require.Equal(t, "kafka", response.Checks[0].Name)
	require.Equal(t, "storage", response.Checks[1].Name)
}

func TestHealthHandler_Unhealthy(t *testing.T) {
	handler := NewHandler("v1.0.0")
	handler.RegisterChecker("storage", failingChecker("storage", "disk gone"))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var response Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	require.Equal(t, StatusUnhealthy, response.Status)
	require.Equal(t, "disk gone", response.Checks[0].Message)
}

func TestHealthHandler_Timestamp(t *testing.T) {
	handler := NewHandler("dev")
	handler.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var response Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	require.Equal(t, "2024-05-01T12:00:00Z", response.Timestamp)
}

func TestLivenessHandler(t *testing.T) {
	w := httptest.NewRecorder()
	LivenessHandler(w, httptest.NewRequest(http.MethodGet, "/livez", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", w.Body.String())
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name     string
		checker  Checker
		wantCode int
		wantBody string
	}{
		{name: "ready", checker: okChecker("storage"), wantCode: http.StatusOK, wantBody: "ready"},
		{name: "not ready", checker: failingChecker("storage", "boom"), wantCode: http.StatusServiceUnavailable, wantBody: "not ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler("v1.0.0")
			handler.RegisterChecker("storage", tt.checker)

			w := httptest.NewRecorder()
			handler.ReadinessHandler(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			require.Equal(t, tt.wantCode, w.Code)
			require.Equal(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestFuncChecker(t *testing.T) {
	checker := NewFuncChecker("slow", func(context.Context) error {
		time.Sleep(10 * time.Millisecond)
		return nil
	})

	check := checker.Check(context.Background())
	require.Equal(t, StatusHealthy, check.Status)
	require.GreaterOrEqual(t, check.DurationMs, int64(10))
}

func TestFuncChecker_PassesContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	checker := NewFuncChecker("ctx", func(ctx context.Context) error { return ctx.Err() })

	check := checker.Check(ctx)
	require.Equal(t, StatusUnhealthy, check.Status)
	require.Equal(t, context.Canceled.Error(), check.Message)
}
