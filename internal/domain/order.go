package domain

import (
	"encoding/json"
	"sort"
	"time"
)

// OrderStatus описывает жизненный цикл заказа в магазине.
type OrderStatus string

const (
	// OrderStatusPending — заказ оформлен и ждёт доставки.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusDelivered — заказ доставлен покупателю.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled — заказ отменён покупателем в окне отмены.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Terminal сообщает, что из статуса больше нет переходов.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo проверяет допустимость перехода pending→delivered|cancelled.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s != "" && s != OrderStatusPending {
		return false
	}
	return next.Terminal()
}

// UnixMillis — момент времени в миллисекундах Unix, как в JSON-формате истории.
type UnixMillis int64

// MillisOf переводит time.Time в миллисекунды.
func MillisOf(t time.Time) UnixMillis {
	return UnixMillis(t.UnixMilli())
}

// Time возвращает момент как time.Time в UTC.
func (m UnixMillis) Time() time.Time {
	return time.UnixMilli(int64(m)).UTC()
}

// MillisPtr возвращает указатель на момент t (для опциональных полей).
func MillisPtr(t time.Time) *UnixMillis {
	m := MillisOf(t)
	return &m
}

// OrderItem — позиция заказа: товар и количество.
// Неизвестные поля (например, цена позиции от старых клиентов) сохраняются в Extra.
type OrderItem struct {
	ProductID string `json:"id"`
	Quantity  int    `json:"quantity"`

	Extra map[string]json.RawMessage `json:"-"`
}

type orderItemFields OrderItem

var orderItemKeys = jsonKeys(orderItemFields{})

func (i OrderItem) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(orderItemFields(i))
	if err != nil {
		return nil, err
	}
	return withExtraFields(data, i.Extra)
}

func (i *OrderItem) UnmarshalJSON(data []byte) error {
	var fields orderItemFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	extra, err := extraFields(data, orderItemKeys)
	if err != nil {
		return err
	}
	*i = OrderItem(fields)
	i.Extra = extra
	return nil
}

// DeliveryInfo — данные доставки, которые покупатель вводит при оформлении.
type DeliveryInfo struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes,omitempty"`
}

// Order агрегирует состояние заказа.
// Поля id и orderId всегда совпадают; оба сериализуются для совместимости с сервисом истории.
type Order struct {
	ID          string      `json:"id,omitempty" validate:"required_without=OrderID"`
	OrderID     string      `json:"orderId,omitempty" validate:"required_without=ID"`
	UserEmail   string      `json:"userEmail" validate:"required"`
	Items       []OrderItem `json:"items" validate:"required"`
	Name        string      `json:"name"`
	Phone       string      `json:"phone"`
	Address     string      `json:"address"`
	Notes       string      `json:"notes"`
	Status      OrderStatus `json:"status,omitempty"`
	PlacedAt    UnixMillis  `json:"placedAt,omitempty"`
	DeliveredAt *UnixMillis `json:"deliveredAt"`
	CancelledAt *UnixMillis `json:"cancelledAt,omitempty"`

	// Extra хранит поля записи, которых нет в структуре (например, totalAmount).
	// Они переживают чтение и повторную запись без изменений.
	Extra map[string]json.RawMessage `json:"-"`
}

type orderFields Order

var orderKeys = jsonKeys(orderFields{})

func (o Order) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(orderFields(o))
	if err != nil {
		return nil, err
	}
	return withExtraFields(data, o.Extra)
}

func (o *Order) UnmarshalJSON(data []byte) error {
	var fields orderFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	extra, err := extraFields(data, orderKeys)
	if err != nil {
		return err
	}
	*o = Order(fields)
	o.Extra = extra
	return nil
}

// HistoryRecord — денормализованная копия заказа в журнале истории покупок.
type HistoryRecord = Order

// Key возвращает ключ дедупликации: id, а при его отсутствии orderId.
func (o Order) Key() string {
	if o.ID != "" {
		return o.ID
	}
	return o.OrderID
}

// Matches сообщает, совпадает ли id или orderId записи с идентификатором.
func (o Order) Matches(id string) bool {
	if id == "" {
		return false
	}
	return o.ID == id || o.OrderID == id
}

// Clone возвращает глубокую копию заказа.
func (o Order) Clone() Order {
	dst := o
	dst.Extra = cloneExtra(o.Extra)
	if o.Items != nil {
		dst.Items = make([]OrderItem, len(o.Items))
		for i, item := range o.Items {
			item.Extra = cloneExtra(item.Extra)
			dst.Items[i] = item
		}
	}
	if o.DeliveredAt != nil {
		v := *o.DeliveredAt
		dst.DeliveredAt = &v
	}
	if o.CancelledAt != nil {
		v := *o.CancelledAt
		dst.CancelledAt = &v
	}
	return dst
}

// SortNewestFirst упорядочивает записи по placedAt по убыванию; записи без времени идут в конец.
// Сортировка стабильная.
func SortNewestFirst(orders []Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].PlacedAt > orders[j].PlacedAt
	})
}

// OwnedBy возвращает копии записей пользователя в исходном порядке.
func OwnedBy(orders []Order, email string) []Order {
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if o.UserEmail == email {
			out = append(out, o.Clone())
		}
	}
	return out
}

// CancellationLogEntry фиксирует отмену заказа для админского журнала.
type CancellationLogEntry struct {
	OrderID     string     `json:"orderId"`
	UserEmail   string     `json:"userEmail"`
	CancelledAt UnixMillis `json:"cancelledAt"`
	TotalAmount int64      `json:"totalAmount"`
}
