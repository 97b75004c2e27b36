package historyclient

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/DarshanM12/student-ecommerce/internal/domain"
	"github.com/DarshanM12/student-ecommerce/internal/report"
	"github.com/DarshanM12/student-ecommerce/internal/storage/kv"
)

// Service сводит локальную историю с удалённой. Удалённая сторона best effort:
// её сбои логируются и не мешают работе с локальной копией.
type Service struct {
	remote   domain.HistoryRemote
	local    domain.KeyValueStore
	renderer report.Renderer
	logger   *log.Entry
}

// Option настраивает Service.
type Option func(*Service)

// WithRenderer задаёт зону и часы текстовой выгрузки.
func WithRenderer(r report.Renderer) Option {
	return func(s *Service) {
		s.renderer = r
	}
}

// NewService создаёт сервис сверки. remote может быть nil: тогда используется только локальная история.
func NewService(remote domain.HistoryRemote, local domain.KeyValueStore, logger *log.Entry, opts ...Option) *Service {
	if logger == nil {
		logger = log.WithField("component", "history-client")
	}
	s := &Service{remote: remote, local: local, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Merge объединяет историю по ключу id (или orderId). Удалённая запись вытесняет локальную,
// записи без обоих идентификаторов отбрасываются. Результат отсортирован по placedAt по убыванию.
func Merge(local, remote []domain.HistoryRecord) []domain.HistoryRecord {
	merged := make([]domain.HistoryRecord, 0, len(local)+len(remote))
	position := make(map[string]int, len(local)+len(remote))

	put := func(records []domain.HistoryRecord) {
		for _, r := range records {
			key := r.Key()
			if key == "" {
				continue
			}
			if i, ok := position[key]; ok {
				merged[i] = r.Clone()
				continue
			}
			position[key] = len(merged)
			merged = append(merged, r.Clone())
		}
	}
	put(local)
	put(remote)

	domain.SortNewestFirst(merged)
	return merged
}

// FetchUserHistory возвращает историю пользователя: локальную, дополненную удалённой, если сервис ответил.
// Ошибка возвращается только при сбое локального хранилища.
func (s *Service) FetchUserHistory(ctx context.Context, email string) ([]domain.HistoryRecord, error) {
	local, err := s.localUserHistory(ctx, email)
	if err != nil {
		return nil, err
	}
	if s.remote == nil {
		return local, nil
	}

	remote, err := s.remote.ListByOwner(ctx, email)
	if err != nil {
		s.logger.WithError(err).WithField("user_email", email).Warn("remote history unavailable, using local copy")
		return local, nil
	}
	return Merge(local, remote), nil
}

// Replicate отправляет копию заказа в сервис. Реализует domain.Replicator: ошибки только логируются.
func (s *Service) Replicate(ctx context.Context, order domain.Order) {
	if s.remote == nil {
		return
	}
	if err := s.remote.Save(ctx, order); err != nil {
		s.logger.WithError(err).WithField("order_id", order.Key()).Warn("failed to save shopping history to backend")
	}
}

// FetchAll возвращает весь удалённый журнал, новые сверху; при сбое — пустой список.
func (s *Service) FetchAll(ctx context.Context) []domain.HistoryRecord {
	if s.remote == nil {
		return []domain.HistoryRecord{}
	}
	records, err := s.remote.ListAll(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("failed to fetch shopping history")
		return []domain.HistoryRecord{}
	}
	domain.SortNewestFirst(records)
	return records
}

// DeleteRemote удаляет запись в сервисе. ErrHistoryNotFound возвращается как есть.
func (s *Service) DeleteRemote(ctx context.Context, id string) error {
	if s.remote == nil {
		return domain.ErrRemoteUnavailable
	}
	err := s.remote.Delete(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrHistoryNotFound) {
		s.logger.WithError(err).WithField("order_id", id).Warn("failed to delete shopping history")
	}
	return err
}

// ExportAsText строит отчёт по сведённой истории с ценами из каталога.
func (s *Service) ExportAsText(ctx context.Context, email string, catalog domain.PriceLookup) (report.Export, error) {
	history, err := s.FetchUserHistory(ctx, email)
	if err != nil {
		return report.Export{}, err
	}
	if len(history) == 0 {
		return report.Export{}, domain.ErrNoHistory
	}
	return s.renderer.Export(email, history, catalog), nil
}

func (s *Service) localUserHistory(ctx context.Context, email string) ([]domain.HistoryRecord, error) {
	history, _, err := kv.Load[[]domain.HistoryRecord](ctx, s.local, kv.KeyShoppingHistory)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	owned := domain.OwnedBy(history, email)
	domain.SortNewestFirst(owned)
	return owned, nil
}
