// Package httpsvc публикует сервис истории покупок как HTTP/JSON API.
package httpsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/DarshanM12/student-ecommerce/internal/domain"
	"github.com/DarshanM12/student-ecommerce/internal/report"
)

// HistoryService — операции, которые нужны HTTP-слою.
type HistoryService interface {
	Append(ctx context.Context, record domain.HistoryRecord) (domain.HistoryRecord, error)
	ListByOwner(ctx context.Context, email string) ([]domain.HistoryRecord, error)
	ListAll(ctx context.Context) ([]domain.HistoryRecord, error)
	Delete(ctx context.Context, id string) (int, error)
	ExportAsText(ctx context.Context, email string) (report.Export, error)
}

// Handler обслуживает /api/shopping-history и /api/health.
type Handler struct {
	service HistoryService
	logger  *log.Entry
	now     func() time.Time
}

// NewHandler создаёт HTTP-обработчик.
func NewHandler(service HistoryService, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.New().WithField("component", "http")
	}
	return &Handler{service: service, logger: logger, now: time.Now}
}

// RegisterRoutes вешает маршруты API на роутер.
// Все маршруты под /api/shopping-history используют один параметр {key}: для GET это email, для DELETE — id заказа.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/health", h.health)
	r.Route("/api/shopping-history", func(r chi.Router) {
		r.Post("/", h.saveHistory)
		r.Get("/", h.listAll)
		r.Get("/{key}", h.listByOwner)
		r.Delete("/{key}", h.deleteHistory)
		r.Get("/{key}/export", h.exportHistory)
	})
}

type envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message,omitempty"`
	OrderID string                 `json:"orderId,omitempty"`
	History []domain.HistoryRecord `json:"history,omitempty"`
}

type healthResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func (h *Handler) saveHistory(w http.ResponseWriter, r *http.Request) {
	var record domain.HistoryRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	saved, err := h.service.Append(r.Context(), record)
	switch {
	case domain.IsValidation(err):
		respondError(w, http.StatusBadRequest, "Missing required fields: "+err.Error())
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "Failed to save shopping history")
		return
	}

	orderID := saved.OrderID
	if orderID == "" {
		orderID = saved.ID
	}
	respond(w, http.StatusOK, envelope{
		Success: true,
		Message: "Shopping history saved successfully",
		OrderID: orderID,
	})
}

func (h *Handler) listByOwner(w http.ResponseWriter, r *http.Request) {
	email, ok := pathKey(w, r)
	if !ok {
		return
	}

	records, err := h.service.ListByOwner(r.Context(), email)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}
	respondHistory(w, records)
}

func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.ListAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}
	respondHistory(w, records)
}

func (h *Handler) deleteHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathKey(w, r)
	if !ok {
		return
	}

	_, err := h.service.Delete(r.Context(), id)
	switch {
	case errors.Is(err, domain.ErrHistoryNotFound):
		respondError(w, http.StatusNotFound, "Order not found")
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "Failed to delete shopping history")
		return
	}
	respond(w, http.StatusOK, envelope{Success: true, Message: "Shopping history deleted successfully"})
}

func (h *Handler) exportHistory(w http.ResponseWriter, r *http.Request) {
	email, ok := pathKey(w, r)
	if !ok {
		return
	}

	export, err := h.service.ExportAsText(r.Context(), email)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(export.Body))
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	respond(w, http.StatusOK, healthResponse{
		Success:   true,
		Message:   "Server is running",
		Timestamp: h.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
}

// pathKey достаёт {key} из пути; клиенты кодируют email через encodeURIComponent.
// chi матчит по RawPath, когда он задан, и тогда параметр ещё закодирован.
// Иначе параметр уже декодирован и повторно его не разбираем.
func pathKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := chi.URLParam(r, "key")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(key)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid path parameter")
			return "", false
		}
		key = unescaped
	}
	if key == "" {
		respondError(w, http.StatusBadRequest, "Invalid path parameter")
		return "", false
	}
	return key, true
}

func respondHistory(w http.ResponseWriter, records []domain.HistoryRecord) {
	if records == nil {
		records = []domain.HistoryRecord{}
	}
	// history сериализуем всегда, даже пустой.
	respond(w, http.StatusOK, struct {
		Success bool                   `json:"success"`
		History []domain.HistoryRecord `json:"history"`
	}{Success: true, History: records})
}

func respondError(w http.ResponseWriter, status int, message string) {
	respond(w, status, envelope{Success: false, Message: message})
}

func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
