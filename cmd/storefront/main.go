package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	shop "gofalre.io/storefront"
	"gofalre.io/storefront/api"
	"gofalre.io/storefront/cart"
	"gofalre.io/storefront/catalog"
	"gofalre.io/storefront/config"
	"gofalre.io/storefront/driver"
	"gofalre.io/storefront/event"
	"gofalre.io/storefront/models/enum"
	"gofalre.io/storefront/notify"
)

const shutdownTimeout = 10 * time.Second

func main() {
	os.Exit(start())
}

// start returns the process exit code so deferred cleanup, including logger.Sync, runs before os.Exit.
func start() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logger, err := newLogger(cfg.Development)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	if err = run(cfg, logger); err != nil {
		logger.Error("storefront stopped", zap.Error(err))
		return 1
	}
	return 0
}

func newLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if cfg.StoreDriver == enum.StoreDriverRedis {
		client, err := driver.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer client.Close()
		redisClient = client
	}

	store, closeStore, err := newStore(ctx, cfg, redisClient, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	var natsConn *nats.Conn
	notifiers := notify.Fanout{notify.NewLogNotifier(logger)}
	if cfg.NATSURL != "" {
		natsConn, err = driver.ConnectNATS(cfg.NATSURL, "storefront", logger)
		if err != nil {
			return err
		}
		defer natsConn.Close()
		notifiers = append(notifiers, notify.NewNATSNotifier(natsConn, cfg.NotificationSubject))
	}

	commands := event.NewMemoryRepository(cfg.CommandDedupeTTL)
	if redisClient != nil {
		commands = event.NewRepository(redisClient, cfg.CommandDedupeTTL, logger)
	}

	svc := shop.NewService(ctx,
		catalog.NewRepository(catalog.Options{BaseURL: cfg.CatalogBaseURL, Timeout: cfg.CatalogTimeout}, logger),
		cart.NewRepository(store, cfg.CartKey, logger),
		commands,
		notifiers,
		natsConn,
		cfg.Currency,
		logger)
	defer svc.Close()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewCartHandler(svc, logger).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Storefront starting", zap.String("addr", cfg.HTTPAddr), zap.String("store", string(cfg.StoreDriver)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err = <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down storefront")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func newStore(ctx context.Context, cfg *config.Config, redisClient *redis.Client, logger *zap.Logger) (driver.KeyValueStore, func(), error) {
	switch cfg.StoreDriver {
	case enum.StoreDriverRedis:
		return driver.NewRedisStore(redisClient), func() {}, nil
	case enum.StoreDriverPostgres:
		db, err := driver.ConnectSQL(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		store := driver.NewPostgresStore(db.Pool, driver.NewTransactionManager(db.Pool, logger), logger)
		if err = store.EnsureSchema(ctx); err != nil {
			db.Pool.Close()
			return nil, nil, err
		}
		return store, db.Pool.Close, nil
	default:
		return driver.NewMemoryStore(), func() {}, nil
	}
}
