package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/DarshanM12/student-ecommerce/internal/report"
	"github.com/DarshanM12/student-ecommerce/internal/storage/sqlite"
	"github.com/DarshanM12/student-ecommerce/internal/storefront/auth"
	"github.com/DarshanM12/student-ecommerce/internal/storefront/cart"
	"github.com/DarshanM12/student-ecommerce/internal/storefront/catalog"
	"github.com/DarshanM12/student-ecommerce/internal/storefront/historyclient"
	"github.com/DarshanM12/student-ecommerce/internal/storefront/orders"
)

// storefront связывает клиентские компоненты поверх одного файла SQLite.
type storefront struct {
	db       *sqlite.KeyValueStore
	catalog  *catalog.Store
	cart     *cart.Store
	session  *auth.Session
	orders   *orders.Manager
	history  *historyclient.Service
	renderer report.Renderer
}

func openStorefront(ctx context.Context, cfg clientConfig, logger *log.Entry) (*storefront, error) {
	location, err := time.LoadLocation(cfg.ReportTZ)
	if err != nil {
		return nil, fmt.Errorf("load report timezone %q: %w", cfg.ReportTZ, err)
	}

	db, err := sqlite.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}

	products := catalog.NewStore(db)
	if err := products.Init(ctx, catalog.DefaultProducts()); err != nil {
		_ = db.Close()
		return nil, err
	}

	renderer := report.Renderer{Location: location}
	remote := historyclient.NewClient(cfg.APIURL, cfg.APITimeout)
	history := historyclient.NewService(remote, db, logger.WithField("layer", "history"), historyclient.WithRenderer(renderer))

	return &storefront{
		db:       db,
		catalog:  products,
		cart:     cart.NewStore(db),
		session:  auth.NewSession(db),
		orders:   orders.NewManager(db, logger.WithField("layer", "orders"), orders.WithReplicator(history)),
		history:  history,
		renderer: renderer,
	}, nil
}

// Close дожидается фоновой репликации заказов и закрывает базу.
func (s *storefront) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}
	shutdownErr := s.orders.Shutdown(ctx)
	return errors.Join(shutdownErr, s.db.Close())
}
