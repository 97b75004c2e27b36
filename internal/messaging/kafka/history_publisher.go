package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/DarshanM12/student-ecommerce/internal/domain"
)

// HistoryPublisher отправляет события журнала истории в один топик.
// Ключ сообщения — идентификатор заказа, чтобы события одной записи шли в одну партицию.
type HistoryPublisher struct {
	producer *Producer
	topic    string
	now      func() time.Time
}

// NewHistoryPublisher создаёт паблишер; пустой topic заменяется TopicHistoryEvents.
func NewHistoryPublisher(producer *Producer, topic string) *HistoryPublisher {
	if topic == "" {
		topic = TopicHistoryEvents
	}
	return &HistoryPublisher{
		producer: producer,
		topic:    topic,
		now:      time.Now,
	}
}

func (p *HistoryPublisher) PublishSaved(ctx context.Context, record domain.HistoryRecord) error {
	if p == nil || p.producer == nil {
		return errors.New("kafka history publisher is not initialized")
	}
	return p.producer.PublishEvent(ctx, p.topic, record.Key(), NewHistorySavedEvent(record, p.now()))
}

func (p *HistoryPublisher) PublishDeleted(ctx context.Context, id string, removed int) error {
	if p == nil || p.producer == nil {
		return errors.New("kafka history publisher is not initialized")
	}
	return p.producer.PublishEvent(ctx, p.topic, id, NewHistoryDeletedEvent(id, removed, p.now()))
}

var _ domain.HistoryPublisher = (*HistoryPublisher)(nil)
