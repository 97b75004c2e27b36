// Package cart хранит корзину покупателя: пары (товар, количество).
package cart

import (
	"context"
	"fmt"

	"github.com/DarshanM12/student-ecommerce/internal/domain"
	"github.com/DarshanM12/student-ecommerce/internal/storage/kv"
)

// Store — корзина поверх ключа "cart". Id товаров в корзине уникальны, количество > 0.
type Store struct {
	kv domain.KeyValueStore
}

// NewStore создаёт корзину над хранилищем.
func NewStore(store domain.KeyValueStore) *Store {
	return &Store{kv: store}
}

// Lines возвращает строки корзины; пустая корзина — пустой срез.
func (s *Store) Lines(ctx context.Context) ([]domain.CartLine, error) {
	lines, _, err := kv.Load[[]domain.CartLine](ctx, s.kv, kv.KeyCart)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return lines, nil
}

// Add кладёт товар в корзину: новая строка с количеством 1 или +1 к существующей.
func (s *Store) Add(ctx context.Context, productID string) error {
	lines, err := s.Lines(ctx)
	if err != nil {
		return err
	}
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity++
			return s.save(ctx, lines)
		}
	}
	return s.save(ctx, append(lines, domain.CartLine{ProductID: productID, Quantity: 1}))
}

// Remove убирает строку товара.
func (s *Store) Remove(ctx context.Context, productID string) error {
	lines, err := s.Lines(ctx)
	if err != nil {
		return err
	}
	kept := lines[:0]
	for _, l := range lines {
		if l.ProductID != productID {
			kept = append(kept, l)
		}
	}
	return s.save(ctx, kept)
}

// UpdateQuantity меняет количество на delta; при <= 0 строка удаляется.
// Неизвестный товар игнорируется.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, delta int) error {
	lines, err := s.Lines(ctx)
	if err != nil {
		return err
	}
	for i := range lines {
		if lines[i].ProductID != productID {
			continue
		}
		lines[i].Quantity += delta
		if lines[i].Quantity <= 0 {
			return s.save(ctx, append(lines[:i], lines[i+1:]...))
		}
		return s.save(ctx, lines)
	}
	return nil
}

// Clear удаляет корзину целиком.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Remove(ctx, kv.KeyCart); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return nil
}

// Count — сумма количеств по всем строкам.
func (s *Store) Count(ctx context.Context) (int, error) {
	lines, err := s.Lines(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, l := range lines {
		total += l.Quantity
	}
	return total, nil
}

func (s *Store) save(ctx context.Context, lines []domain.CartLine) error {
	if err := kv.Save(ctx, s.kv, kv.KeyCart, lines); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return nil
}
