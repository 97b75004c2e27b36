// Package catalog хранит товары витрины в локальном key-value хранилище.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/DarshanM12/student-ecommerce/internal/domain"
	"github.com/DarshanM12/student-ecommerce/internal/storage/kv"
)

// Store — каталог поверх ключа "products". Весь список читается и пишется целиком.
type Store struct {
	kv  domain.KeyValueStore
	now func() time.Time
}

// Option настраивает Store.
type Option func(*Store)

// WithClock подменяет часы, от которых зависит id новых товаров.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore создаёт каталог над хранилищем.
func NewStore(store domain.KeyValueStore, opts ...Option) *Store {
	s := &Store{kv: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init записывает seed, только если каталог ещё не создан.
func (s *Store) Init(ctx context.Context, seed []domain.Product) error {
	_, found, err := s.kv.Get(ctx, kv.KeyProducts)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	if found {
		return nil
	}
	if seed == nil {
		seed = []domain.Product{}
	}
	return s.save(ctx, seed)
}

// All возвращает все товары в порядке хранения.
func (s *Store) All(ctx context.Context) ([]domain.Product, error) {
	products, _, err := kv.Load[[]domain.Product](ctx, s.kv, kv.KeyProducts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

// Index возвращает снимок каталога для подсчёта сумм.
func (s *Store) Index(ctx context.Context) (domain.ProductIndex, error) {
	products, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return domain.NewProductIndex(products), nil
}

// Get ищет товар по id.
func (s *Store) Get(ctx context.Context, id string) (domain.Product, bool, error) {
	products, err := s.All(ctx)
	if err != nil {
		return domain.Product{}, false, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, true, nil
		}
	}
	return domain.Product{}, false, nil
}

// ByCategory возвращает товары категории.
func (s *Store) ByCategory(ctx context.Context, categoryID string) ([]domain.Product, error) {
	return s.filter(ctx, func(p domain.Product) bool { return p.Category == categoryID })
}

// Search ищет подстроку без учёта регистра в названии или категории.
func (s *Store) Search(ctx context.Context, query string) ([]domain.Product, error) {
	q := strings.ToLower(query)
	return s.filter(ctx, func(p domain.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Category), q)
	})
}

// Categories возвращает фиксированный список категорий с текущим числом товаров.
func (s *Store) Categories(ctx context.Context) ([]domain.Category, error) {
	products, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(categoryDefs))
	for _, p := range products {
		counts[p.Category]++
	}

	out := make([]domain.Category, len(categoryDefs))
	for i, c := range categoryDefs {
		c.Count = counts[c.ID]
		out[i] = c
	}
	return out, nil
}

// Category возвращает категорию по id.
func (s *Store) Category(ctx context.Context, id string) (domain.Category, bool, error) {
	categories, err := s.Categories(ctx)
	if err != nil {
		return domain.Category{}, false, err
	}
	for _, c := range categories {
		if c.ID == id {
			return c, true, nil
		}
	}
	return domain.Category{}, false, nil
}

// Add добавляет товар с id "p"+unix ms и возвращает этот id. Переданный id игнорируется.
func (s *Store) Add(ctx context.Context, product domain.Product) (string, error) {
	products, err := s.All(ctx)
	if err != nil {
		return "", err
	}

	taken := make(map[string]bool, len(products))
	for _, p := range products {
		taken[p.ID] = true
	}
	// Два добавления в одну миллисекунду не должны делить id.
	ms := s.now().UnixMilli()
	for taken[fmt.Sprintf("p%d", ms)] {
		ms++
	}

	product.ID = fmt.Sprintf("p%d", ms)
	products = append(products, product)
	if err := s.save(ctx, products); err != nil {
		return "", err
	}
	return product.ID, nil
}

// Update применяет патч к товару. false, если товара нет.
func (s *Store) Update(ctx context.Context, id string, patch domain.ProductPatch) (bool, error) {
	products, err := s.All(ctx)
	if err != nil {
		return false, err
	}
	for i := range products {
		if products[i].ID != id {
			continue
		}
		products[i] = patch.Apply(products[i])
		if err := s.save(ctx, products); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// Delete удаляет товар; отсутствие товара не ошибка.
func (s *Store) Delete(ctx context.Context, id string) error {
	products, err := s.All(ctx)
	if err != nil {
		return err
	}
	kept := products[:0]
	for _, p := range products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	return s.save(ctx, kept)
}

func (s *Store) filter(ctx context.Context, keep func(domain.Product) bool) ([]domain.Product, error) {
	products, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) save(ctx context.Context, products []domain.Product) error {
	if err := kv.Save(ctx, s.kv, kv.KeyProducts, products); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return nil
}
