package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/craftbay/marketplace-api/internal/cache"
	"github.com/craftbay/marketplace-api/internal/config"
	"github.com/craftbay/marketplace-api/internal/events"
	"github.com/craftbay/marketplace-api/internal/handlers"
	"github.com/craftbay/marketplace-api/internal/logging"
	"github.com/craftbay/marketplace-api/internal/server"
	"github.com/craftbay/marketplace-api/internal/service"
	"github.com/craftbay/marketplace-api/internal/store"
)

func main() {
	cfg := config.Load()

	logger := logging.Init("marketplace-api", "./logs/app.log")
	logger.Info("starting marketplace-api", "port", cfg.Server.Port, "store_backend", cfg.Store.Backend)

	tables := store.TablesFromConfig(cfg.Store)

	recordStore, cleanup, err := initStore(cfg, tables)
	if err != nil {
		logger.Error("failed to initialize record store", "error", err.Error())
		os.Exit(1)
	}
	defer cleanup()

	// Fail fast when the store is unreachable rather than serving errors.
	pingCtx, cancelPing := context.WithTimeout(context.Background(), cfg.Store.Timeout)
	if err := store.Ping(pingCtx, recordStore, tables.Products, tables.Orders, tables.Users); err != nil {
		cancelPing()
		logger.Error("record store unreachable", "error", err.Error())
		os.Exit(1)
	}
	cancelPing()
	logger.Info("record store connected")

	var productCache service.ProductCache
	if cfg.Features.EnableRecordCache {
		redisCache := cache.NewRedisProductCache(cfg.Redis)
		defer redisCache.Close()
		productCache = redisCache
	}

	var publisher service.OrderEventPublisher
	if cfg.Features.EnableOrderEvents {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	identity := service.NewIdentityService(recordStore, tables, cfg.Auth)
	catalog := service.NewCatalogService(recordStore, tables, productCache, cfg.Features.EnableRecordCache)
	orders := service.NewOrderService(
		recordStore,
		tables,
		catalog,
		publisher,
		cfg.Features.EnableOrderEvents,
		cfg.Features.EnforceStatusFlow,
	)

	h := handlers.NewHandlers(identity, catalog, orders, cfg)
	srv := server.New(h, identity, cfg)

	go func() {
		logger.Info("server starting",
			"port", cfg.Server.Port,
			"enable_record_cache", cfg.Features.EnableRecordCache,
			"enable_order_events", cfg.Features.EnableOrderEvents,
			"enforce_status_flow", cfg.Features.EnforceStatusFlow,
		)
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err.Error())
	}

	logger.Info("server exited")
}

// initStore selects the gateway backend. The remote table store is the
// default; postgres backs local development and integration tests.
func initStore(cfg *config.Config, tables store.Tables) (store.RecordStore, func(), error) {
	if cfg.Store.Backend == "postgres" {
		db, err := sql.Open("postgres", cfg.Database.ConnectionString())
		if err != nil {
			return nil, nil, err
		}

		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Database.MaxLifetime)

		if err := db.Ping(); err != nil {
			db.Close()
			return nil, nil, err
		}

		pg := store.NewPostgresStore(db)
		if err := pg.EnsureSchema(context.Background(),
			tables.Users, tables.Products, tables.Orders, tables.MyProducts); err != nil {
			db.Close()
			return nil, nil, err
		}

		return pg, func() { db.Close() }, nil
	}

	return store.NewAirtableStore(cfg.Store), func() {}, nil
}
