// Package report строит текстовую выгрузку истории покупок.
// Один и тот же формат используют CLI-клиент (с каталогом) и HTTP-сервис (без каталога).
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/DarshanM12/student-ecommerce/internal/domain"
)

const (
	// DateLayout — формат всех дат в отчёте.
	DateLayout = "2006-01-02 15:04:05"

	title        = "DSCE STUDENT STORE - SHOPPING HISTORY"
	heavyRule    = "========================================"
	lightRule    = "----------------------------------------"
	currency     = "₹"
	notAvailable = "N/A"
)

// Renderer форматирует отчёт. Нулевое значение рендерит даты в UTC с текущим временем.
type Renderer struct {
	Location *time.Location
	Now      func() time.Time
}

func (r Renderer) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r Renderer) format(m domain.UnixMillis) string {
	if m == 0 {
		return notAvailable
	}
	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}
	return m.Time().In(loc).Format(DateLayout)
}

// Render собирает отчёт по записям в переданном порядке.
// catalog == nil означает, что цены неизвестны: позиции выводятся по id, итог заказа не печатается.
func (r Renderer) Render(email string, records []domain.HistoryRecord, catalog domain.PriceLookup) string {
	var b strings.Builder

	b.WriteString(heavyRule + "\n")
	b.WriteString(title + "\n")
	b.WriteString(heavyRule + "\n\n")
	fmt.Fprintf(&b, "User: %s\n", email)
	fmt.Fprintf(&b, "Generated: %s\n", r.format(domain.MillisOf(r.now())))
	fmt.Fprintf(&b, "Total Orders: %d\n\n", len(records))
	b.WriteString(heavyRule + "\n\n")

	if len(records) == 0 {
		b.WriteString("No orders found.\n")
		return b.String()
	}

	for i, record := range records {
		r.writeOrder(&b, i+1, record, catalog)
	}
	return b.String()
}

func (r Renderer) writeOrder(b *strings.Builder, ordinal int, record domain.HistoryRecord, catalog domain.PriceLookup) {
	id := record.OrderID
	if id == "" {
		id = record.ID
	}
	status := string(record.Status)
	if status == "" {
		status = string(domain.OrderStatusPending)
	}

	fmt.Fprintf(b, "ORDER #%d\n", ordinal)
	b.WriteString(lightRule + "\n")
	fmt.Fprintf(b, "Order ID: %s\n", id)
	fmt.Fprintf(b, "Date: %s\n", r.format(record.PlacedAt))
	fmt.Fprintf(b, "Status: %s\n\n", strings.ToUpper(status))

	b.WriteString("Items:\n")
	for i, item := range record.Items {
		product, ok := lookup(catalog, item.ProductID)
		if !ok {
			fmt.Fprintf(b, "  %d. Item ID: %s, Quantity: %d\n", i+1, item.ProductID, item.Quantity)
			continue
		}
		line := product.Price * int64(item.Quantity)
		fmt.Fprintf(b, "  %d. %s\n", i+1, product.Name)
		fmt.Fprintf(b, "     Quantity: %d × %s%d = %s%d\n", item.Quantity, currency, product.Price, currency, line)
	}
	b.WriteString("\n")

	if catalog != nil {
		fmt.Fprintf(b, "Order Total: %s%d\n\n", currency, domain.OrderTotal(record, catalog))
	}

	b.WriteString("Delivery Details:\n")
	fmt.Fprintf(b, "  Name: %s\n", orNA(record.Name))
	fmt.Fprintf(b, "  Phone: %s\n", orNA(record.Phone))
	fmt.Fprintf(b, "  Address: %s\n", orNA(record.Address))
	if record.Notes != "" {
		fmt.Fprintf(b, "  Notes: %s\n", record.Notes)
	}
	b.WriteString("\n")

	if record.CancelledAt != nil {
		fmt.Fprintf(b, "Cancelled: %s\n", r.format(*record.CancelledAt))
	}
	if record.DeliveredAt != nil {
		fmt.Fprintf(b, "Delivered: %s\n", r.format(*record.DeliveredAt))
	}

	b.WriteString("\n" + heavyRule + "\n\n")
}

func lookup(catalog domain.PriceLookup, id string) (domain.Product, bool) {
	if catalog == nil {
		return domain.Product{}, false
	}
	return catalog.Product(id)
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

// FileName возвращает имя файла выгрузки: shopping-history-<email с @→-at->-<unix ms>.txt.
func FileName(email string, at time.Time) string {
	return fmt.Sprintf("shopping-history-%s-%d.txt", strings.Replace(email, "@", "-at-", 1), at.UnixMilli())
}

// Export — готовая текстовая выгрузка с именем файла-вложения.
type Export struct {
	FileName string
	Body     string
}

// Export рендерит отчёт и подбирает имя файла по текущему времени рендерера.
func (r Renderer) Export(email string, records []domain.HistoryRecord, catalog domain.PriceLookup) Export {
	return Export{
		FileName: FileName(email, r.now()),
		Body:     r.Render(email, records, catalog),
	}
}
