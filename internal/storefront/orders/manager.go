// Package orders управляет жизненным циклом заказов витрины: оформление, отмена в коротком окне,
// доставка, удаление, суммы и журнал отмен. Каждая операция читает и пишет ключи хранилища целиком.
package orders

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/DarshanM12/student-ecommerce/internal/domain"
	"github.com/DarshanM12/student-ecommerce/internal/storage/kv"
	"github.com/DarshanM12/student-ecommerce/internal/storefront/cart"
	"github.com/DarshanM12/student-ecommerce/internal/storefront/catalog"
)

// CancelWindow — сколько времени после оформления заказ ещё можно отменить.
const CancelWindow = 12 * time.Second

const idSuffixLen = 5

// Dashboard — сводка для администратора.
type Dashboard struct {
	TotalSales    int64 `json:"totalSales"`
	TotalOrders   int   `json:"totalOrders"`
	PendingOrders int   `json:"pendingOrders"`
	TotalProducts int   `json:"totalProducts"`
}

// Manager — операции над активными заказами и локальной историей.
type Manager struct {
	kv      domain.KeyValueStore
	cart    *cart.Store
	catalog *catalog.Store

	replicator domain.Replicator
	logger     *log.Entry
	now        func() time.Time
	idSuffix   func() string

	replMu     sync.Mutex
	replWG     sync.WaitGroup
	replClosed bool
}

// Option настраивает Manager.
type Option func(*Manager)

// WithReplicator включает копирование новых заказов в удалённую историю.
func WithReplicator(r domain.Replicator) Option {
	return func(m *Manager) {
		m.replicator = r
	}
}

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithIDSuffix подменяет генератор случайного хвоста id заказа.
func WithIDSuffix(gen func() string) Option {
	return func(m *Manager) {
		if gen != nil {
			m.idSuffix = gen
		}
	}
}

// NewManager создаёт менеджер заказов. Корзина и каталог живут в том же хранилище.
func NewManager(store domain.KeyValueStore, logger *log.Entry, opts ...Option) *Manager {
	if logger == nil {
		logger = log.WithField("component", "orders")
	}
	m := &Manager{
		kv:       store,
		logger:   logger,
		now:      time.Now,
		idSuffix: randomSuffix,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.cart = cart.NewStore(store)
	m.catalog = catalog.NewStore(store, catalog.WithClock(m.now))
	return m
}

func randomSuffix() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:idSuffixLen]
}

// Place оформляет заказ из текущей корзины.
// Пустая корзина возвращает ("", false, nil) и ничего не меняет.
func (m *Manager) Place(ctx context.Context, info domain.DeliveryInfo, ownerEmail string) (string, bool, error) {
	lines, err := m.cart.Lines(ctx)
	if err != nil {
		return "", false, err
	}
	if len(lines) == 0 {
		return "", false, nil
	}

	now := m.now()
	id := fmt.Sprintf("ORD%d%s", now.UnixMilli(), m.idSuffix())

	items := make([]domain.OrderItem, len(lines))
	for i, l := range lines {
		items[i] = domain.OrderItem{ProductID: l.ProductID, Quantity: l.Quantity}
	}

	order := domain.Order{
		ID:        id,
		OrderID:   id,
		UserEmail: ownerEmail,
		Items:     items,
		Name:      info.Name,
		Phone:     info.Phone,
		Address:   info.Address,
		Notes:     info.Notes,
		Status:    domain.OrderStatusPending,
		PlacedAt:  domain.MillisOf(now),
	}

	if err := m.cart.Clear(ctx); err != nil {
		return "", false, err
	}

	active, err := m.activeOrders(ctx)
	if err != nil {
		return "", false, err
	}
	if err := m.saveActive(ctx, append(active, order)); err != nil {
		return "", false, err
	}
	if err := m.addToHistory(ctx, order); err != nil {
		return "", false, err
	}

	logger := m.logger.WithFields(log.Fields{"order_id": id, "user_email": ownerEmail})
	logger.Info("order placed")

	if m.replicator != nil {
		replicated := order.Clone()
		m.runReplicationAsync(id, func() {
			m.replicator.Replicate(context.WithoutCancel(ctx), replicated)
		})
	}

	return id, true, nil
}

// Cancel отменяет ожидающий заказ, если с оформления прошло не больше CancelWindow.
func (m *Manager) Cancel(ctx context.Context, orderID string) (bool, error) {
	active, err := m.activeOrders(ctx)
	if err != nil {
		return false, err
	}
	idx := indexOf(active, orderID)
	if idx < 0 {
		return false, nil
	}
	order := active[idx]
	if !order.Status.CanTransitionTo(domain.OrderStatusCancelled) {
		return false, nil
	}

	now := m.now()
	if now.After(order.PlacedAt.Time().Add(CancelWindow)) {
		return false, nil
	}

	if err := m.saveActive(ctx, append(active[:idx:idx], active[idx+1:]...)); err != nil {
		return false, err
	}

	cancelledAt := domain.MillisOf(now)
	err = m.updateHistory(ctx, orderID, order, func(h *domain.Order) {
		h.Status = domain.OrderStatusCancelled
		h.CancelledAt = &cancelledAt
	})
	if err != nil {
		return false, err
	}

	total, err := m.ComputeTotal(ctx, order)
	if err != nil {
		return false, err
	}
	logs, err := m.cancellationLogs(ctx)
	if err != nil {
		return false, err
	}
	logs = append(logs, domain.CancellationLogEntry{
		OrderID:     orderID,
		UserEmail:   order.UserEmail,
		CancelledAt: cancelledAt,
		TotalAmount: total,
	})
	if err := m.save(ctx, kv.KeyCancellationLogs, logs); err != nil {
		return false, err
	}

	m.logger.WithField("order_id", orderID).Info("order cancelled")
	return true, nil
}

// MarkDelivered отмечает активный заказ доставленным. false, если активного заказа нет.
// Уже доставленный заказ остаётся как есть.
func (m *Manager) MarkDelivered(ctx context.Context, orderID string) (bool, error) {
	active, err := m.activeOrders(ctx)
	if err != nil {
		return false, err
	}
	idx := indexOf(active, orderID)
	if idx < 0 {
		return false, nil
	}
	if !active[idx].Status.CanTransitionTo(domain.OrderStatusDelivered) {
		return true, nil
	}

	deliveredAt := domain.MillisOf(m.now())
	active[idx].Status = domain.OrderStatusDelivered
	active[idx].DeliveredAt = &deliveredAt
	if err := m.saveActive(ctx, active); err != nil {
		return false, err
	}

	err = m.updateHistory(ctx, orderID, active[idx], func(h *domain.Order) {
		h.Status = domain.OrderStatusDelivered
		h.DeliveredAt = &deliveredAt
	})
	if err != nil {
		return false, err
	}

	m.logger.WithField("order_id", orderID).Info("order delivered")
	return true, nil
}

// Delete удаляет заказ из активных и из локальной истории.
func (m *Manager) Delete(ctx context.Context, orderID string) (bool, error) {
	active, err := m.activeOrders(ctx)
	if err != nil {
		return false, err
	}
	if err := m.saveActive(ctx, without(active, orderID)); err != nil {
		return false, err
	}

	history, err := m.History(ctx)
	if err != nil {
		return false, err
	}
	if err := m.save(ctx, kv.KeyShoppingHistory, without(history, orderID)); err != nil {
		return false, err
	}
	return true, nil
}

// ComputeTotal — сумма позиций по текущим ценам; позиции удалённых товаров не считаются.
func (m *Manager) ComputeTotal(ctx context.Context, order domain.Order) (int64, error) {
	idx, err := m.catalog.Index(ctx)
	if err != nil {
		return 0, err
	}
	return domain.OrderTotal(order, idx), nil
}

// TotalSales — сумма по доставленным активным заказам.
func (m *Manager) TotalSales(ctx context.Context) (int64, error) {
	active, err := m.activeOrders(ctx)
	if err != nil {
		return 0, err
	}
	idx, err := m.catalog.Index(ctx)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, o := range active {
		if o.Status == domain.OrderStatusDelivered {
			total += domain.OrderTotal(o, idx)
		}
	}
	return total, nil
}

// Get возвращает активный заказ по id.
func (m *Manager) Get(ctx context.Context, orderID string) (domain.Order, bool, error) {
	active, err := m.activeOrders(ctx)
	if err != nil {
		return domain.Order{}, false, err
	}
	if idx := indexOf(active, orderID); idx >= 0 {
		return active[idx], true, nil
	}
	return domain.Order{}, false, nil
}

// All возвращает активные заказы в порядке оформления.
func (m *Manager) All(ctx context.Context) ([]domain.Order, error) {
	return m.activeOrders(ctx)
}

// ByOwner возвращает активные заказы пользователя.
func (m *Manager) ByOwner(ctx context.Context, email string) ([]domain.Order, error) {
	active, err := m.activeOrders(ctx)
	if err != nil {
		return nil, err
	}
	return domain.OwnedBy(active, email), nil
}

// CancellationLogs возвращает журнал отмен, новые сверху.
func (m *Manager) CancellationLogs(ctx context.Context) ([]domain.CancellationLogEntry, error) {
	logs, err := m.cancellationLogs(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].CancelledAt > logs[j].CancelledAt
	})
	return logs, nil
}

// History возвращает локальную историю в порядке добавления.
func (m *Manager) History(ctx context.Context) ([]domain.HistoryRecord, error) {
	return m.loadOrders(ctx, kv.KeyShoppingHistory)
}

// UserHistory возвращает локальную историю пользователя, новые сверху.
func (m *Manager) UserHistory(ctx context.Context, email string) ([]domain.HistoryRecord, error) {
	history, err := m.History(ctx)
	if err != nil {
		return nil, err
	}
	owned := domain.OwnedBy(history, email)
	domain.SortNewestFirst(owned)
	return owned, nil
}

// Dashboard собирает сводку для администратора.
func (m *Manager) Dashboard(ctx context.Context) (Dashboard, error) {
	active, err := m.activeOrders(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	products, err := m.catalog.All(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	sales, err := m.TotalSales(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	d := Dashboard{
		TotalSales:    sales,
		TotalOrders:   len(active),
		TotalProducts: len(products),
	}
	for _, o := range active {
		if o.Status == domain.OrderStatusPending {
			d.PendingOrders++
		}
	}
	return d, nil
}

// Shutdown ждёт завершения фоновых репликаций. Новые после вызова не запускаются.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.replMu.Lock()
	m.replClosed = true
	m.replMu.Unlock()

	waitDone := make(chan struct{})
	go func() {
		m.replWG.Wait()
		close(waitDone)
	}()

	select {
	case <-waitDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) runReplicationAsync(orderID string, fn func()) {
	m.replMu.Lock()
	if m.replClosed {
		m.replMu.Unlock()
		m.logger.WithField("order_id", orderID).Warn("replication skipped during shutdown")
		return
	}
	m.replWG.Add(1)
	m.replMu.Unlock()

	go func() {
		defer m.replWG.Done()
		fn()
	}()
}

// addToHistory добавляет запись, если в истории ещё нет записи с тем же id/orderId.
func (m *Manager) addToHistory(ctx context.Context, order domain.Order) error {
	history, err := m.History(ctx)
	if err != nil {
		return err
	}
	for _, h := range history {
		if h.Matches(order.ID) || h.Matches(order.OrderID) {
			return nil
		}
	}
	return m.save(ctx, kv.KeyShoppingHistory, append(history, order))
}

// updateHistory меняет копию заказа в истории; если копии нет, вставляет fallback с той же правкой.
func (m *Manager) updateHistory(ctx context.Context, orderID string, fallback domain.Order, mutate func(*domain.Order)) error {
	history, err := m.History(ctx)
	if err != nil {
		return err
	}
	for i := range history {
		if history[i].Matches(orderID) {
			mutate(&history[i])
			return m.save(ctx, kv.KeyShoppingHistory, history)
		}
	}
	inserted := fallback.Clone()
	mutate(&inserted)
	return m.save(ctx, kv.KeyShoppingHistory, append(history, inserted))
}

func (m *Manager) activeOrders(ctx context.Context) ([]domain.Order, error) {
	return m.loadOrders(ctx, kv.KeyOrders)
}

func (m *Manager) saveActive(ctx context.Context, orders []domain.Order) error {
	return m.save(ctx, kv.KeyOrders, orders)
}

func (m *Manager) cancellationLogs(ctx context.Context) ([]domain.CancellationLogEntry, error) {
	logs, _, err := kv.Load[[]domain.CancellationLogEntry](ctx, m.kv, kv.KeyCancellationLogs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	if logs == nil {
		logs = []domain.CancellationLogEntry{}
	}
	return logs, nil
}

func (m *Manager) loadOrders(ctx context.Context, key string) ([]domain.Order, error) {
	orders, _, err := kv.Load[[]domain.Order](ctx, m.kv, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

func (m *Manager) save(ctx context.Context, key string, value any) error {
	if err := kv.Save(ctx, m.kv, key, value); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return nil
}

func indexOf(orders []domain.Order, id string) int {
	for i, o := range orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}

func without(orders []domain.Order, id string) []domain.Order {
	kept := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if !o.Matches(id) {
			kept = append(kept, o)
		}
	}
	return kept
}
