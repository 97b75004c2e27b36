// Package history реализует сервис хранения истории покупок поверх HistoryRepository.
package history

import (
	"context"
	"errors"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"github.com/DarshanM12/student-ecommerce/internal/domain"
	"github.com/DarshanM12/student-ecommerce/internal/metrics"
	"github.com/DarshanM12/student-ecommerce/internal/report"
	"github.com/DarshanM12/student-ecommerce/internal/validation"
)

const (
	opAppend = "append"
	opList   = "list"
	opDelete = "delete"
	opExport = "export"
)

// Service валидирует, сохраняет и отдаёт записи журнала истории.
type Service struct {
	repo      domain.HistoryRepository
	publisher domain.HistoryPublisher
	validate  *validatorv10.Validate
	renderer  report.Renderer
	metrics   *metrics.HistoryMetrics
	logger    *log.Entry
	now       func() time.Time
}

// Option настраивает Service.
type Option func(*Service)

// WithPublisher включает публикацию событий журнала.
func WithPublisher(publisher domain.HistoryPublisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

// WithMetrics включает метрики.
func WithMetrics(m *metrics.HistoryMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock подменяет источник времени (placedAt, дата отчёта, имя файла).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithReportLocation задаёт часовой пояс дат в отчёте.
func WithReportLocation(loc *time.Location) Option {
	return func(s *Service) { s.renderer.Location = loc }
}

// NewService создаёт сервис истории.
func NewService(repo domain.HistoryRepository, logger *log.Entry, opts ...Option) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "history-service")
	}
	s := &Service{
		repo:     repo,
		validate: validation.New(),
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.renderer.Now = s.now
	return s
}

// Append проверяет запись, проставляет placedAt при отсутствии и дописывает её в журнал.
// Дубликаты не отсеиваются: это забота клиента.
func (s *Service) Append(ctx context.Context, record domain.HistoryRecord) (domain.HistoryRecord, error) {
	if err := validation.HistoryRecord(s.validate, record); err != nil {
		s.metrics.RecordOperation(opAppend, metrics.OutcomeInvalid)
		return domain.HistoryRecord{}, err
	}

	record = record.Clone()
	if record.PlacedAt == 0 {
		record.PlacedAt = domain.MillisOf(s.now())
	}

	start := time.Now()
	err := s.repo.Append(ctx, record)
	s.metrics.ObserveStorage(opAppend, time.Since(start))
	if err != nil {
		s.metrics.RecordOperation(opAppend, metrics.OutcomeError)
		s.logger.WithError(err).WithField("order_id", record.Key()).Error("failed to save shopping history")
		return domain.HistoryRecord{}, err
	}

	s.metrics.RecordOperation(opAppend, metrics.OutcomeOK)
	s.logger.WithFields(log.Fields{
		"order_id":   record.Key(),
		"user_email": record.UserEmail,
		"items":      len(record.Items),
	}).Info("shopping history saved")

	if s.publisher != nil {
		if err := s.publisher.PublishSaved(ctx, record); err != nil {
			s.metrics.RecordPublishFailure()
			s.logger.WithError(err).WithField("order_id", record.Key()).Warn("failed to publish history.saved event")
		}
	}

	return record, nil
}

// ListByOwner возвращает записи пользователя, новые первыми.
func (s *Service) ListByOwner(ctx context.Context, email string) ([]domain.HistoryRecord, error) {
	all, err := s.list(ctx)
	if err != nil {
		return nil, err
	}

	owned := make([]domain.HistoryRecord, 0)
	for _, record := range all {
		if record.UserEmail == email {
			owned = append(owned, record)
		}
	}
	domain.SortNewestFirst(owned)
	return owned, nil
}

// ListAll возвращает весь журнал, новые первыми.
func (s *Service) ListAll(ctx context.Context) ([]domain.HistoryRecord, error) {
	all, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	domain.SortNewestFirst(all)
	return all, nil
}

func (s *Service) list(ctx context.Context) ([]domain.HistoryRecord, error) {
	start := time.Now()
	records, err := s.repo.List(ctx)
	s.metrics.ObserveStorage(opList, time.Since(start))
	if err != nil {
		s.metrics.RecordOperation(opList, metrics.OutcomeError)
		s.logger.WithError(err).Error("failed to read shopping history")
		return nil, err
	}
	s.metrics.RecordOperation(opList, metrics.OutcomeOK)
	s.metrics.SetHistorySize(len(records))
	return records, nil
}

// Delete удаляет все записи, у которых id или orderId равен id.
func (s *Service) Delete(ctx context.Context, id string) (int, error) {
	start := time.Now()
	removed, err := s.repo.Delete(ctx, id)
	s.metrics.ObserveStorage(opDelete, time.Since(start))
	switch {
	case errors.Is(err, domain.ErrHistoryNotFound):
		s.metrics.RecordOperation(opDelete, metrics.OutcomeNotFound)
		return 0, err
	case err != nil:
		s.metrics.RecordOperation(opDelete, metrics.OutcomeError)
		s.logger.WithError(err).WithField("order_id", id).Error("failed to delete shopping history")
		return 0, err
	}

	s.metrics.RecordOperation(opDelete, metrics.OutcomeOK)
	s.logger.WithFields(log.Fields{"order_id": id, "removed": removed}).Info("shopping history deleted")

	if s.publisher != nil {
		if err := s.publisher.PublishDeleted(ctx, id, removed); err != nil {
			s.metrics.RecordPublishFailure()
			s.logger.WithError(err).WithField("order_id", id).Warn("failed to publish history.deleted event")
		}
	}
	return removed, nil
}

// ExportAsText строит отчёт по записям пользователя без каталога.
// Пустая история не ошибка: отчёт содержит "No orders found.".
func (s *Service) ExportAsText(ctx context.Context, email string) (report.Export, error) {
	records, err := s.ListByOwner(ctx, email)
	if err != nil {
		s.metrics.RecordOperation(opExport, metrics.OutcomeError)
		return report.Export{}, err
	}
	s.metrics.RecordOperation(opExport, metrics.OutcomeOK)

	return report.Export{
		FileName: report.FileName(email, s.now()),
		Body:     s.renderer.Render(email, records, nil),
	}, nil
}
