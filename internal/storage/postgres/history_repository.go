package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/DarshanM12/student-ecommerce/internal/domain"
)

const opTimeout = 5 * time.Second

// HistoryRepository хранит записи истории строками таблицы shopping_history.
// Запись целиком лежит в payload (JSONB), ключевые поля продублированы в колонках для поиска.
type HistoryRepository struct {
	store *Store
}

// NewHistoryRepository создаёт PostgreSQL-реализацию HistoryRepository.
func NewHistoryRepository(store *Store) *HistoryRepository {
	return &HistoryRepository{store: store}
}

func (r *HistoryRepository) Append(ctx context.Context, record domain.HistoryRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%w: encode history record: %v", domain.ErrStorage, err)
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err = r.store.DB().ExecContext(ctx, `
		INSERT INTO shopping_history (record_id, order_id, user_email, placed_at, payload)
		VALUES ($1, $2, $3, $4, $5)
	`, record.ID, record.OrderID, record.UserEmail, int64(record.PlacedAt), payload)
	if err != nil {
		return fmt.Errorf("%w: insert history record: %v", domain.ErrStorage, err)
	}
	return nil
}

func (r *HistoryRepository) List(ctx context.Context) ([]domain.HistoryRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.store.DB().QueryContext(ctx, `SELECT payload FROM shopping_history ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: list history: %v", domain.ErrStorage, err)
	}
	defer rows.Close()

	records := make([]domain.HistoryRecord, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("%w: scan history row: %v", domain.ErrStorage, err)
		}
		var record domain.HistoryRecord
		if err := json.Unmarshal(payload, &record); err != nil {
			return nil, fmt.Errorf("%w: decode history row: %v", domain.ErrStorage, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate history rows: %v", domain.ErrStorage, err)
	}
	return records, nil
}

func (r *HistoryRepository) Delete(ctx context.Context, id string) (int, error) {
	if id == "" {
		return 0, domain.ErrHistoryNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.store.DB().ExecContext(ctx,
		`DELETE FROM shopping_history WHERE record_id = $1 OR order_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%w: delete history: %v", domain.ErrStorage, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: history rows affected: %v", domain.ErrStorage, err)
	}
	if affected == 0 {
		return 0, domain.ErrHistoryNotFound
	}
	return int(affected), nil
}

var _ domain.HistoryRepository = (*HistoryRepository)(nil)
