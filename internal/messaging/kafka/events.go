package kafka

import (
	"time"

	"github.com/google/uuid"

	"github.com/DarshanM12/student-ecommerce/internal/domain"
)

// EventType — тип события журнала истории.
type EventType string

const (
	EventTypeHistorySaved   EventType = "history.saved"
	EventTypeHistoryDeleted EventType = "history.deleted"
)

// TopicHistoryEvents — топик по умолчанию.
const TopicHistoryEvents = "store.shopping-history.events"

// HistoryEvent — сообщение об изменении журнала истории покупок.
type HistoryEvent struct {
	ID        string                `json:"id"`
	EventType EventType             `json:"event_type"`
	OrderID   string                `json:"order_id"`
	UserEmail string                `json:"user_email,omitempty"`
	Removed   int                   `json:"removed,omitempty"`
	Record    *domain.HistoryRecord `json:"record,omitempty"`
	Timestamp time.Time             `json:"timestamp"`
}

// NewHistorySavedEvent создаёт событие о сохранённой записи.
func NewHistorySavedEvent(record domain.HistoryRecord, at time.Time) *HistoryEvent {
	copied := record.Clone()
	return &HistoryEvent{
		ID:        uuid.NewString(),
		EventType: EventTypeHistorySaved,
		OrderID:   record.Key(),
		UserEmail: record.UserEmail,
		Record:    &copied,
		Timestamp: at.UTC(),
	}
}

// NewHistoryDeletedEvent создаёт событие об удалении записей.
func NewHistoryDeletedEvent(orderID string, removed int, at time.Time) *HistoryEvent {
	return &HistoryEvent{
		ID:        uuid.NewString(),
		EventType: EventTypeHistoryDeleted,
		OrderID:   orderID,
		Removed:   removed,
		Timestamp: at.UTC(),
	}
}
