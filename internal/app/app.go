// Package app собирает сервис истории покупок: хранилище, Kafka, HTTP, метрики и пробы.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/DarshanM12/student-ecommerce/internal/health"
	"github.com/DarshanM12/student-ecommerce/internal/messaging/kafka"
	"github.com/DarshanM12/student-ecommerce/internal/metrics"
	"github.com/DarshanM12/student-ecommerce/internal/service/history"
	httpsvc "github.com/DarshanM12/student-ecommerce/internal/service/http"
	"github.com/DarshanM12/student-ecommerce/internal/version"
)

// Run запускает HTTP API и блокируется до отмены ctx или ошибки сервера.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	location, err := time.LoadLocation(cfg.ReportTimezone)
	if err != nil {
		return fmt.Errorf("load report timezone %q: %w", cfg.ReportTimezone, err)
	}

	deps, err := initRuntimeDependencies(ctx, cfg, logger.WithField("layer", "storage"))
	if err != nil {
		return err
	}
	defer deps.close(logger)

	historyMetrics := metrics.NewHistoryMetrics()
	opts := []history.Option{
		history.WithMetrics(historyMetrics),
		history.WithReportLocation(location),
	}

	// Kafka опциональна: без брокеров или при ошибке подключения работаем без событий.
	producer, _ := initKafkaProducer(cfg.KafkaBrokers, logger.WithField("layer", "kafka"))
	defer closeKafka(producer, logger)
	if producer != nil {
		opts = append(opts, history.WithPublisher(kafka.NewHistoryPublisher(producer, cfg.KafkaTopic)))
	}

	service := history.NewService(deps.repo, logger.WithField("layer", "service"), opts...)

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	healthHandler.RegisterChecker("storage", deps.checker)

	httpLogger := logger.WithField("layer", "http")
	router := httpsvc.NewRouter(httpsvc.NewHandler(service, httpLogger), httpLogger, historyMetrics)
	registerOpsRoutes(router, healthHandler)

	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		metricsSrv = startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)
	}

	lis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		shutdownHTTP(metricsSrv, logger)
		return err
	}

	srv := &http.Server{Handler: router, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP API слушает %s", lis.Addr())
		errCh <- srv.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP API")
		shutdownHTTPWithin(srv, cfg.ShutdownTimeout, logger)
		shutdownHTTP(metricsSrv, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// opsMux — общее у http.ServeMux и chi.Mux.
type opsMux interface {
	Handle(pattern string, handler http.Handler)
}

func registerOpsRoutes(mux opsMux, healthHandler *healthcheck.Handler) {
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.Handle("/livez", http.HandlerFunc(healthcheck.LivenessHandler))
	mux.Handle("/readyz", http.HandlerFunc(healthHandler.ReadinessHandler))
}

// startMetricsServer поднимает отдельный HTTP-сервер для /metrics и проб.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	registerOpsRoutes(mux, healthHandler)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP останавливает сервер с таймаутом по умолчанию.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	shutdownHTTPWithin(srv, 5*time.Second, logger)
}

func shutdownHTTPWithin(srv *http.Server, timeout time.Duration, logger *log.Entry) {
	if srv == nil {
		return
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
