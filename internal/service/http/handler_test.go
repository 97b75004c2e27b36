package httpsvc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/DarshanM12/student-ecommerce/internal/domain"
	"github.com/DarshanM12/student-ecommerce/internal/metrics"
	"github.com/DarshanM12/student-ecommerce/internal/service/history"
	"github.com/DarshanM12/student-ecommerce/internal/storage/memory"
)

var fixedNow = time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)

type apiResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	OrderID string                 `json:"orderId"`
	History []domain.HistoryRecord `json:"history"`
}

func newTestRouter(t *testing.T, repo domain.HistoryRepository) http.Handler {
	t.Helper()

	logger := log.New().WithField("component", "http-test")
	m := metrics.NewHistoryMetricsWithRegisterer(prometheus.NewRegistry())
	svc := history.NewService(repo, logger,
		history.WithClock(func() time.Time { return fixedNow }),
		history.WithMetrics(m),
	)
	handler := NewHandler(svc, logger)
	handler.now = func() time.Time { return fixedNow }
	return NewRouter(handler, logger, m)
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSaveHistory(t *testing.T) {
	router := newTestRouter(t, memory.NewHistoryRepository())

	w := do(t, router, http.MethodPost, "/api/shopping-history",
		`{"id":"ORD1","orderId":"ORD1","userEmail":"a@dsce.in","items":[{"id":"p1","quantity":2}]}`)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	require.True(t, resp.Success)
	require.Equal(t, "Shopping history saved successfully", resp.Message)
	require.Equal(t, "ORD1", resp.OrderID)
}

func TestSaveHistory_BadRequests(t *testing.T) {
	repo := memory.NewHistoryRepository()
	router := newTestRouter(t, repo)

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"orderId":`},
		{name: "missing ids", body: `{"userEmail":"a@dsce.in","items":[]}`},
		{name: "missing email", body: `{"orderId":"ORD1","items":[]}`},
		{name: "missing items", body: `{"orderId":"ORD1","userEmail":"a@dsce.in"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/api/shopping-history", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			require.False(t, decode(t, w).Success)
		})
	}

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestListByOwner_EncodedEmailAndOrdering(t *testing.T) {
	router := newTestRouter(t, memory.NewHistoryRepository())

	for _, body := range []string{
		`{"orderId":"ORD1","userEmail":"a@dsce.in","items":[],"placedAt":100}`,
		`{"orderId":"ORD2","userEmail":"b@dsce.in","items":[],"placedAt":200}`,
		`{"orderId":"ORD3","userEmail":"a@dsce.in","items":[],"placedAt":300}`,
	} {
		require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/api/shopping-history", body).Code)
	}

	w := do(t, router, http.MethodGet, "/api/shopping-history/a%40dsce.in", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	require.True(t, resp.Success)
	require.Len(t, resp.History, 2)
	require.Equal(t, "ORD3", resp.History[0].OrderID)
	require.Equal(t, "ORD1", resp.History[1].OrderID)

	w = do(t, router, http.MethodGet, "/api/shopping-history", "")
	resp = decode(t, w)
	require.Len(t, resp.History, 3)
	require.Equal(t, "ORD3", resp.History[0].OrderID)
}

func TestListByOwner_EmptyHistoryIsArray(t *testing.T) {
	router := newTestRouter(t, memory.NewHistoryRepository())

	w := do(t, router, http.MethodGet, "/api/shopping-history/nobody@dsce.in", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"success":true,"history":[]}`, w.Body.String())
}

func TestDeleteHistory(t *testing.T) {
	router := newTestRouter(t, memory.NewHistoryRepository())
	do(t, router, http.MethodPost, "/api/shopping-history", `{"id":"ORD1","userEmail":"a@dsce.in","items":[]}`)

	w := do(t, router, http.MethodDelete, "/api/shopping-history/ORD1", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Shopping history deleted successfully", decode(t, w).Message)

	w = do(t, router, http.MethodDelete, "/api/shopping-history/ORD1", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	resp := decode(t, w)
	require.False(t, resp.Success)
	require.Equal(t, "Order not found", resp.Message)
}

func TestPathKey_DecodesOnce(t *testing.T) {
	router := newTestRouter(t, memory.NewHistoryRepository())
	for _, body := range []string{
		`{"id":"50%off","orderId":"50%off","userEmail":"a%b@dsce.in","items":[{"id":"p1","quantity":1}]}`,
		`{"id":"ORD2","userEmail":"a/b@dsce.in","items":[]}`,
	} {
		require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/api/shopping-history", body).Code)
	}

	w := do(t, router, http.MethodGet, "/api/shopping-history/"+url.PathEscape("a%b@dsce.in"), "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	require.Len(t, resp.History, 1)
	require.Equal(t, "50%off", resp.History[0].ID)

	w = do(t, router, http.MethodGet, "/api/shopping-history/"+url.PathEscape("a/b@dsce.in"), "")
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode(t, w)
	require.Len(t, resp.History, 1)
	require.Equal(t, "ORD2", resp.History[0].ID)

	w = do(t, router, http.MethodDelete, "/api/shopping-history/"+url.PathEscape("50%off"), "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestSaveHistory_KeepsUnknownFields(t *testing.T) {
	router := newTestRouter(t, memory.NewHistoryRepository())
	w := do(t, router, http.MethodPost, "/api/shopping-history",
		`{"id":"ORD1","userEmail":"a@dsce.in","items":[{"id":"p1","quantity":2,"price":45}],"totalAmount":90,"placedAt":5}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodGet, "/api/shopping-history/a@dsce.in", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"totalAmount":90`)
	require.Contains(t, w.Body.String(), `"price":45`)
}

func TestExportHistory(t *testing.T) {
	router := newTestRouter(t, memory.NewHistoryRepository())
	do(t, router, http.MethodPost, "/api/shopping-history", `{"orderId":"ORD1","userEmail":"a@dsce.in","items":[{"id":"p4","quantity":1}],"placedAt":1}`)

	w := do(t, router, http.MethodGet, "/api/shopping-history/a@dsce.in/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	require.Equal(t,
		`attachment; filename="shopping-history-a-at-dsce.in-1706781600000.txt"`,
		w.Header().Get("Content-Disposition"),
	)
	require.Contains(t, w.Body.String(), "Order ID: ORD1\n")
	require.Contains(t, w.Body.String(), "  1. Item ID: p4, Quantity: 1\n")

	w = do(t, router, http.MethodGet, "/api/shopping-history/nobody@dsce.in/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "No orders found.\n")
}

func TestStorageFailureIs500(t *testing.T) {
	router := newTestRouter(t, brokenRepository{})

	w := do(t, router, http.MethodPost, "/api/shopping-history", `{"orderId":"ORD1","userEmail":"a@dsce.in","items":[]}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	w = do(t, router, http.MethodGet, "/api/shopping-history", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)

	w = do(t, router, http.MethodDelete, "/api/shopping-history/ORD1", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHealthAndCORS(t *testing.T) {
	router := newTestRouter(t, memory.NewHistoryRepository())

	w := do(t, router, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t,
		`{"success":true,"message":"Server is running","timestamp":"2024-02-01T10:00:00.000Z"}`,
		w.Body.String(),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:5500")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/shopping-history/ORD1", nil)
	req.Header.Set("Origin", "http://localhost:5500")
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodDelete)
}

type brokenRepository struct{}

func (brokenRepository) Append(context.Context, domain.HistoryRecord) error { return domain.ErrStorage }

func (brokenRepository) List(context.Context) ([]domain.HistoryRecord, error) {
	return nil, domain.ErrStorage
}

func (brokenRepository) Delete(context.Context, string) (int, error) { return 0, domain.ErrStorage }
