package app

import "time"

const (
	// StorageDriverFile — журнал в одном JSON-файле.
	StorageDriverFile = "file"
	// StorageDriverPostgres — журнал в таблице PostgreSQL.
	StorageDriverPostgres = "postgres"
	// StorageDriverMemory — журнал в памяти процесса (разработка и тесты).
	StorageDriverMemory = "memory"
)

// Config описывает настройки запуска сервиса истории покупок.
type Config struct {
	HTTPAddr string
	// MetricsAddr — отдельный адрес для /metrics и проб; пусто — только на основном адресе.
	MetricsAddr string

	StorageDriver       string
	DataFile            string
	PostgresDSN         string
	PostgresAutoMigrate bool

	// KafkaBrokers — список брокеров через запятую; пусто — события не публикуются.
	KafkaBrokers string
	KafkaTopic   string

	// ReportTimezone — IANA-имя зоны для дат в текстовой выгрузке.
	ReportTimezone  string
	ShutdownTimeout time.Duration
}

// DefaultConfig возвращает настройки по умолчанию.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:            ":3000",
		StorageDriver:       StorageDriverFile,
		DataFile:            "data/shopping-history.json",
		PostgresAutoMigrate: true,
		KafkaTopic:          "store.shopping-history.events",
		ReportTimezone:      "UTC",
		ShutdownTimeout:     5 * time.Second,
	}
}
