package memory

import (
	"context"
	"sync"

	"github.com/DarshanM12/student-ecommerce/internal/domain"
)

// historyRepositoryInMemory — простая in-memory реализация HistoryRepository.
type historyRepositoryInMemory struct {
	mu      sync.RWMutex
	records []domain.HistoryRecord
}

// NewHistoryRepository возвращает in-memory репозиторий истории для локальной разработки и тестов.
func NewHistoryRepository() domain.HistoryRepository {
	return &historyRepositoryInMemory{}
}

// Append добавляет копию записи в конец журнала.
func (r *historyRepositoryInMemory) Append(_ context.Context, record domain.HistoryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Сохраняем копию, чтобы избежать непредсказуемых мутаций извне.
	r.records = append(r.records, record.Clone())
	return nil
}

// List возвращает копии всех записей в порядке добавления.
func (r *historyRepositoryInMemory) List(_ context.Context) ([]domain.HistoryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.HistoryRecord, 0, len(r.records))
	for _, record := range r.records {
		result = append(result, record.Clone())
	}
	return result, nil
}

// Delete удаляет записи с совпадающим id или orderId.
func (r *historyRepositoryInMemory) Delete(_ context.Context, id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.records[:0:0]
	for _, record := range r.records {
		if record.Matches(id) {
			continue
		}
		kept = append(kept, record)
	}

	removed := len(r.records) - len(kept)
	if removed == 0 {
		return 0, domain.ErrHistoryNotFound
	}
	r.records = kept
	return removed, nil
}

var _ domain.HistoryRepository = (*historyRepositoryInMemory)(nil)
