package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/swordshop/internal/cart"
	"github.com/fjod/swordshop/internal/catalog"
	"github.com/fjod/swordshop/internal/checkout"
	"github.com/fjod/swordshop/internal/config"
	apihttp "github.com/fjod/swordshop/internal/http"
	"github.com/fjod/swordshop/internal/logger"
	"github.com/fjod/swordshop/internal/publisher"
	"github.com/fjod/swordshop/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	redisKeyPrefix  = "swordshop"
	mongoCollection = "carts"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger.Init(cfg.AppEnv)

			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger.L())
		},
	}
}

// openStorage returns the cart backend and a func releasing it.
func openStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (storage.Storage, func(), error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return storage.NewMemoryStorage(), func() {}, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		st := storage.NewRedisStorage(client, redisKeyPrefix, cfg.RedisTTL)
		release := func() { _ = client.Close() }
		return storage.NewBreakerStorage("redis", st, storage.DefaultBreakerSettings, log), release, nil

	case config.BackendMongo:
		db, err := storage.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, nil, err
		}
		st := storage.NewMongoStorage(db, mongoCollection)
		release := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = db.Client().Disconnect(disconnectCtx)
		}
		return storage.NewBreakerStorage("mongo", st, storage.DefaultBreakerSettings, log), release, nil

	default:
		st, err := storage.NewSQLiteStorage(cfg.StorageDBPath)
		if err != nil {
			return nil, nil, err
		}
		if err := st.RunMigrations(); err != nil {
			st.Close()
			return nil, nil, fmt.Errorf("failed to run storage migrations: %w", err)
		}
		return st, func() { _ = st.Close() }, nil
	}
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	repo, err := catalog.NewRepository(cfg.CatalogDBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run catalog migrations: %w", err)
	}
	log.Info("catalog migrations completed")

	st, release, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer release()

	store := cart.Open(ctx, st, cfg.CartKey, log)
	unsubscribe := store.Subscribe(func(snap cart.Snapshot) {
		log.Debug("cart changed", zap.Int("item_count", snap.ItemCount), zap.Int64("subtotal", snap.Subtotal))
	})
	defer unsubscribe()

	listeners := []checkout.CompletionListener{publisher.NewLogListener(log)}
	if len(cfg.KafkaBrokers) > 0 {
		pub := publisher.NewKafkaPublisher(publisher.NewKafkaWriter(cfg.KafkaTopic, cfg.KafkaBrokers...), log)
		defer pub.Close()
		listeners = append(listeners, pub)
		log.Info("publishing completed orders", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	sessions := checkout.NewManager(store, checkout.NewDelayProcessor(cfg.ProcessingDelay), log,
		checkout.WithSessionTTL(cfg.SessionTTL),
		checkout.WithListeners(listeners...),
	)
	defer sessions.Close()

	limiter := apihttp.NewRateLimiter(cfg.RateLimit, cfg.RateBurst)
	defer limiter.Close()

	router := apihttp.NewRouter(apihttp.RouterConfig{
		RequestTimeout: cfg.RequestTimeout,
		RateLimiter:    limiter,
	}, repo, store, sessions, log)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("swordshop listening", zap.String("addr", srv.Addr), zap.String("storage", cfg.StorageBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server exited")
	return nil
}
