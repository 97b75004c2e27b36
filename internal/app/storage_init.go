package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/DarshanM12/student-ecommerce/internal/domain"
	healthcheck "github.com/DarshanM12/student-ecommerce/internal/health"
	"github.com/DarshanM12/student-ecommerce/internal/storage/jsonfile"
	"github.com/DarshanM12/student-ecommerce/internal/storage/memory"
	"github.com/DarshanM12/student-ecommerce/internal/storage/postgres"
)

type runtimeDependencies struct {
	repo    domain.HistoryRepository
	checker healthcheck.Checker
	closeFn func() error
}

func (d *runtimeDependencies) close(logger *log.Entry) {
	if d == nil || d.closeFn == nil {
		return
	}
	if err := d.closeFn(); err != nil {
		logger.WithError(err).Warn("failed to close storage")
	}
}

// initRuntimeDependencies поднимает хранилище журнала по выбранному драйверу.
func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.StorageDriver))

	switch driver {
	case StorageDriverFile:
		repo, err := jsonfile.Open(cfg.DataFile)
		if err != nil {
			return nil, fmt.Errorf("open history file: %w", err)
		}
		logger.WithField("path", repo.Path()).Info("using json file history storage")
		return &runtimeDependencies{
			repo: repo,
			checker: healthcheck.NewFuncChecker("storage", func(context.Context) error {
				return repo.Check()
			}),
		}, nil

	case StorageDriverMemory:
		logger.Warn("using in-memory history storage, records are lost on restart")
		return &runtimeDependencies{
			repo:    memory.NewHistoryRepository(),
			checker: healthcheck.NewFuncChecker("storage", func(context.Context) error { return nil }),
		}, nil

	case StorageDriverPostgres:
		dsn := strings.TrimSpace(cfg.PostgresDSN)
		if dsn == "" {
			return nil, errors.New("postgres storage driver requires STORE_POSTGRES_DSN")
		}
		store, err := postgres.Open(ctx, dsn)
		if err != nil {
			return nil, err
		}
		if cfg.PostgresAutoMigrate {
			if err := store.MigrateUp(ctx, 0); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("apply migrations: %w", err)
			}
			logger.Info("postgres migrations applied")
		}
		return &runtimeDependencies{
			repo:    postgres.NewHistoryRepository(store),
			checker: healthcheck.NewFuncChecker("storage", store.Ping),
			closeFn: store.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver: %q", cfg.StorageDriver)
	}
}
