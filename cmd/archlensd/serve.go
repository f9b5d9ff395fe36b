package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/archlens/archlens/internal/clickhousedb"
	"github.com/archlens/archlens/internal/config"
	"github.com/archlens/archlens/internal/database"
	"github.com/archlens/archlens/pkg/archcache"
	"github.com/archlens/archlens/pkg/archmetrics"
	"github.com/archlens/archlens/pkg/discovery"
	"github.com/archlens/archlens/pkg/ingestfront"
	"github.com/archlens/archlens/pkg/reasoning"
	"github.com/archlens/archlens/pkg/readsurface"
	"github.com/archlens/archlens/pkg/spanstore"
	"github.com/archlens/archlens/pkg/tenancy"
)

// shutdownGrace bounds how long an HTTP server waits for in-flight
// requests to finish once a shutdown signal arrives.
const shutdownGrace = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "run the ingestion front and read surface HTTP servers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		return runServe(cfg)
	},
}

func runServe(cfg *config.Config) error {
	log := newLogger(cfg.Logging)

	chCfg := clickhousedb.DefaultConfig()
	chCfg.LoadFromEnv()
	chConn, err := clickhousedb.Open(chCfg)
	if err != nil {
		return err
	}

	pgCfg := database.DefaultConfig()
	pgCfg.LoadFromEnv()
	pgConn, err := database.Open(pgCfg)
	if err != nil {
		return err
	}
	defer pgConn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tenancyEvaluator, err := tenancy.NewEvaluator(ctx)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	metrics := archmetrics.New(registry)

	repo := discovery.NewRepository(pgConn, log)
	store := spanstore.NewClickHouseStore(chConn, metrics, log)

	var cache *archcache.Cache[readsurface.Snapshot]
	if cfg.Cache.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		cache = archcache.NewCache[readsurface.Snapshot](redisClient, "snapshot", cfg.Cache.TTL, log)
	}

	schemaValidator, err := ingestfront.NewSchemaValidator()
	if err != nil {
		return err
	}
	queue := ingestfront.NewQueue(cfg.Queue.PerTenantCapacity, store, metrics, log)
	defer queue.Close()

	ingestServer := ingestfront.NewServer(schemaValidator, queue, tenancyEvaluator, log)
	pipeline := reasoning.New(log)
	readServer := readsurface.NewServer(store, repo, repo, cfg.Thresholds, pipeline, cache, tenancyEvaluator, metrics, log)

	ingestHTTP := &http.Server{Addr: ":" + cfg.Server.IngestPort, Handler: ingestServer.Router()}
	readMux := http.NewServeMux()
	readMux.Handle("/", readServer.Router())
	readMux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	readHTTP := &http.Server{Addr: ":" + cfg.Server.ReadPort, Handler: readMux}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return serveUntilDone(gctx, ingestHTTP, log, "ingest") })
	g.Go(func() error { return serveUntilDone(gctx, readHTTP, log, "read") })

	return g.Wait()
}

// serveUntilDone runs srv until ctx is cancelled, then shuts it down
// gracefully. It returns nil on an ordinary shutdown, and only propagates
// genuine listener failures to the errgroup.
func serveUntilDone(ctx context.Context, srv *http.Server, log *logrus.Logger, name string) error {
	errCh := make(chan error, 1)
	go func() {
		log.WithField("server", name).WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		log.WithField("server", name).Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func newLogger(c config.LoggingConfig) *logrus.Logger {
	log := logrus.New()
	if level, err := logrus.ParseLevel(c.Level); err == nil {
		log.SetLevel(level)
	}
	if c.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{})
	}
	return log
}
