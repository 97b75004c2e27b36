// Package jsonfile хранит журнал истории покупок в одном JSON-файле с массивом записей.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/DarshanM12/student-ecommerce/internal/domain"
)

// HistoryRepository читает и переписывает файл целиком на каждую мутацию.
// Мьютекс сериализует read-modify-write внутри процесса; запись идёт через
// временный файл и rename. Конкурентные писатели из других процессов не защищены.
// Записи хранятся как сырой JSON: мутация не трогает байты чужих записей.
type HistoryRepository struct {
	mu   sync.Mutex
	path string
}

// recordKey — поля, нужные для поиска записи без полного декодирования.
type recordKey struct {
	ID      string `json:"id"`
	OrderID string `json:"orderId"`
}

// Open создаёт каталог и пустой массив в файле, если его ещё нет.
func Open(path string) (*HistoryRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := writeRaw(path, []json.RawMessage{}); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat history file: %w", err)
	}

	return &HistoryRepository{path: path}, nil
}

// Path возвращает путь к файлу журнала.
func (r *HistoryRepository) Path() string {
	return r.path
}

func (r *HistoryRepository) Append(_ context.Context, record domain.HistoryRecord) error {
	encoded, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%w: encode history record: %v", domain.ErrStorage, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := readRaw(r.path)
	if err != nil {
		return err
	}
	return writeRaw(r.path, append(raw, encoded))
}

func (r *HistoryRepository) List(_ context.Context) ([]domain.HistoryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := readRaw(r.path)
	if err != nil {
		return nil, err
	}

	records := make([]domain.HistoryRecord, 0, len(raw))
	for i, item := range raw {
		var record domain.HistoryRecord
		if err := json.Unmarshal(item, &record); err != nil {
			return nil, fmt.Errorf("%w: decode history record %d: %v", domain.ErrStorage, i, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *HistoryRepository) Delete(_ context.Context, id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := readRaw(r.path)
	if err != nil {
		return 0, err
	}

	kept := make([]json.RawMessage, 0, len(raw))
	for i, item := range raw {
		var key recordKey
		if err := json.Unmarshal(item, &key); err != nil {
			return 0, fmt.Errorf("%w: decode history record %d: %v", domain.ErrStorage, i, err)
		}
		if id != "" && (key.ID == id || key.OrderID == id) {
			continue
		}
		kept = append(kept, item)
	}

	removed := len(raw) - len(kept)
	if removed == 0 {
		return 0, domain.ErrHistoryNotFound
	}
	if err := writeRaw(r.path, kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// Check проверяет, что файл журнала читается; используется health-чекером.
func (r *HistoryRepository) Check() error {
	_, err := r.List(context.Background())
	return err
}

func readRaw(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read history file: %v", domain.ErrStorage, err)
	}
	if len(data) == 0 {
		return []json.RawMessage{}, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode history file: %v", domain.ErrStorage, err)
	}
	if raw == nil {
		raw = []json.RawMessage{}
	}
	return raw, nil
}

func writeRaw(path string, raw []json.RawMessage) error {
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode history: %v", domain.ErrStorage, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", domain.ErrStorage, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: write history: %v", domain.ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: close temp file: %v", domain.ErrStorage, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: replace history file: %v", domain.ErrStorage, err)
	}
	return nil
}

var _ domain.HistoryRepository = (*HistoryRepository)(nil)
