// Package kv содержит ключи локального хранилища витрины и типизированные
// помощники чтения/записи JSON-значений поверх domain.KeyValueStore.
package kv

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/DarshanM12/student-ecommerce/internal/domain"
)

// Ключи локального хранилища. Каждый ключ хранит независимое JSON-значение.
const (
	KeyProducts         = "products"
	KeyCart             = "cart"
	KeyOrders           = "orders"
	KeyShoppingHistory  = "shoppingHistory"
	KeyCancellationLogs = "cancellationLogs"
	KeyCurrentUser      = "currentUser"
)

// Load читает и декодирует значение ключа. Отсутствующий ключ даёт нулевое значение и found=false.
func Load[T any](ctx context.Context, store domain.KeyValueStore, key string) (T, bool, error) {
	var value T

	raw, found, err := store.Get(ctx, key)
	if err != nil {
		return value, false, fmt.Errorf("read %s: %w", key, err)
	}
	if !found || len(raw) == 0 {
		return value, false, nil
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return value, true, fmt.Errorf("decode %s: %w", key, err)
	}
	return value, true, nil
}

// Save кодирует значение в JSON и записывает его под ключом.
func Save[T any](ctx context.Context, store domain.KeyValueStore, key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
