// Package historyclient — клиентская сторона журнала истории покупок:
// HTTP-клиент сервиса и сверка локальной истории с удалённой.
package historyclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/DarshanM12/student-ecommerce/internal/domain"
)

// DefaultTimeout — таймаут одного запроса к сервису истории.
const DefaultTimeout = 5 * time.Second

const historyPath = "/api/shopping-history"

// Client — HTTP-клиент сервиса истории. Реализует domain.HistoryRemote.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient создаёт клиент. baseURL — адрес сервиса без /api, например http://localhost:3000.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	OrderID string                 `json:"orderId"`
	History []domain.HistoryRecord `json:"history"`
}

// Save отправляет запись в журнал.
func (c *Client) Save(ctx context.Context, record domain.HistoryRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode history record: %w", err)
	}
	_, err = c.do(ctx, http.MethodPost, historyPath, body)
	return err
}

// ListByOwner запрашивает записи пользователя.
func (c *Client) ListByOwner(ctx context.Context, email string) ([]domain.HistoryRecord, error) {
	env, err := c.do(ctx, http.MethodGet, historyPath+"/"+url.PathEscape(email), nil)
	if err != nil {
		return nil, err
	}
	return env.History, nil
}

// ListAll запрашивает весь журнал.
func (c *Client) ListAll(ctx context.Context) ([]domain.HistoryRecord, error) {
	env, err := c.do(ctx, http.MethodGet, historyPath, nil)
	if err != nil {
		return nil, err
	}
	return env.History, nil
}

// Delete удаляет записи по id или orderId. 404 превращается в ErrHistoryNotFound.
func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, historyPath+"/"+url.PathEscape(id), nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (envelope, error) {
	var env envelope

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return env, fmt.Errorf("%w: build request: %v", domain.ErrRemoteUnavailable, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return env, fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound && method == http.MethodDelete {
		return env, domain.ErrHistoryNotFound
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return env, fmt.Errorf("%w: decode %s %s (status %d): %v", domain.ErrRemoteUnavailable, method, path, resp.StatusCode, err)
	}
	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		return env, fmt.Errorf("%w: %s %s: status %d: %s", domain.ErrRemoteUnavailable, method, path, resp.StatusCode, env.Message)
	}
	return env, nil
}
