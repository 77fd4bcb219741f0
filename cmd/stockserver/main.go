package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nikolayk812/rocketcart/internal/logger"
	"github.com/nikolayk812/rocketcart/internal/stockserver"
)

func main() {
	addr := flag.String("addr", ":3333", "listen address")
	seedPath := flag.String("seed", "testdata/db.json", "products and stock fixture")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	log := logger.New(logger.Options{Service: "stockserver", Env: "dev", Level: *level})

	if err := run(*addr, *seedPath, log); err != nil {
		log.Error("stockserver stopped", "error", err)
		os.Exit(1)
	}
}

func run(addr, seedPath string, log *slog.Logger) error {
	f, err := os.Open(seedPath)
	if err != nil {
		return fmt.Errorf("os.Open: %w", err)
	}
	seed, err := stockserver.LoadSeed(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("stockserver.LoadSeed: %w", err)
	}

	catalog, err := stockserver.NewCatalog(seed)
	if err != nil {
		return fmt.Errorf("stockserver.NewCatalog: %w", err)
	}
	log.Info("catalog seeded", "products", len(seed.Products))

	srv := &http.Server{
		Addr:              addr,
		Handler:           stockserver.NewHandler(catalog, log).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown failed", "error", err)
		}
	}()

	log.Info("stock API listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("srv.ListenAndServe: %w", err)
	}

	return nil
}
