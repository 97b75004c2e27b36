package domain

import "context"

// KeyValueStore — локальное клиентское хранилище: строковые ключи, JSON-значения.
type KeyValueStore interface {
	// Get возвращает значение и признак наличия ключа.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set перезаписывает значение ключа.
	Set(ctx context.Context, key string, value []byte) error
	// Remove удаляет ключ; отсутствие ключа не ошибка.
	Remove(ctx context.Context, key string) error
}

// HistoryRepository описывает требования к хранилищу сервиса истории.
type HistoryRepository interface {
	// Append добавляет запись в конец журнала.
	Append(ctx context.Context, record HistoryRecord) error
	// List возвращает все записи в порядке хранения.
	List(ctx context.Context) ([]HistoryRecord, error)
	// Delete удаляет записи, у которых id или orderId совпадает; ErrHistoryNotFound, если таких нет.
	Delete(ctx context.Context, id string) (int, error)
}

// HistoryPublisher уведомляет внешних подписчиков об изменениях журнала истории.
type HistoryPublisher interface {
	PublishSaved(ctx context.Context, record HistoryRecord) error
	PublishDeleted(ctx context.Context, id string, removed int) error
}

// HistoryRemote — клиентская сторона HTTP API сервиса истории.
type HistoryRemote interface {
	Save(ctx context.Context, record HistoryRecord) error
	ListByOwner(ctx context.Context, email string) ([]HistoryRecord, error)
	ListAll(ctx context.Context) ([]HistoryRecord, error)
	Delete(ctx context.Context, id string) error
}

// Replicator отправляет копию нового заказа в удалённую историю.
// Реализация не возвращает ошибок: сбои только логируются.
type Replicator interface {
	Replicate(ctx context.Context, order Order)
}
