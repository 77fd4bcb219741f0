package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/rocketcart/internal/cart"
	"github.com/nikolayk812/rocketcart/internal/config"
	"github.com/nikolayk812/rocketcart/internal/domain"
	"github.com/nikolayk812/rocketcart/internal/httpapi"
	"github.com/nikolayk812/rocketcart/internal/logger"
	"github.com/nikolayk812/rocketcart/internal/notify"
	"github.com/nikolayk812/rocketcart/internal/port"
	"github.com/nikolayk812/rocketcart/internal/repository"
	"github.com/nikolayk812/rocketcart/internal/stockapi"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()

	log := logger.New(logger.Options{
		Service: "cartd",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	if err := run(cfg, log); err != nil {
		log.Error("cartd stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("cfg.Validate: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		return fmt.Errorf("openRepository: %w", err)
	}
	defer closeRepo()
	log.Info("cart storage ready", "backend", cfg.StorageBackend, "key", cfg.StorageKey)

	stockClient, err := stockapi.New(stockapi.Options{
		BaseURL: cfg.StockAPIURL,
		Timeout: cfg.StockAPITimeout,
		Logger:  log,
	})
	if err != nil {
		return fmt.Errorf("stockapi.New: %w", err)
	}

	unit, err := cfg.CurrencyUnit()
	if err != nil {
		return err
	}

	policy, err := domain.ParseStockPolicy(cfg.StockPolicy)
	if err != nil {
		return err
	}

	feed := notify.NewFeed(100)

	manager, err := cart.New(ctx, repo, stockClient, notify.Multi(notify.NewLogNotifier(log), feed),
		cart.WithPolicy(policy),
		cart.WithCurrency(unit),
		cart.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("cart.New: %w", err)
	}
	log.Info("cart loaded", "items", len(manager.Cart().Items), "policy", cfg.StockPolicy)

	handler := httpapi.NewCartHandler(manager, feed, cfg.StockAPITimeout+5*time.Second, log)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("srv.ListenAndServe: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("srv.Shutdown: %w", err)
	}

	log.Info("server exited")
	return nil
}

func openRepository(ctx context.Context, cfg config.Config) (port.CartRepository, func(), error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("pgxpool.New: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("pool.Ping: %w", err)
		}

		repo, err := repository.NewPostgres(pool, cfg.StorageKey)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repo, pool.Close, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("client.Ping: %w", err)
		}

		repo, err := repository.NewRedis(client, cfg.StorageKey)
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		return repo, func() { _ = client.Close() }, nil

	default:
		repo, err := repository.NewFile(cfg.StorageDir, cfg.StorageKey)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {}, nil
	}
}
