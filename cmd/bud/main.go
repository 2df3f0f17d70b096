package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/cardosoccc/bud/internal/config"
	apphttp "github.com/cardosoccc/bud/internal/http"
	"github.com/cardosoccc/bud/internal/log"
	"github.com/cardosoccc/bud/internal/services"
	"github.com/cardosoccc/bud/internal/storage"
)

func main() {
	// Optional .env for local development.
	_ = godotenv.Load()

	cfg := config.Load()

	logger := log.New(log.Config{Level: cfg.LogLevel})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", log.FieldError, err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("Server exited with error", log.FieldError, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *log.Logger) error {
	repo, err := storage.Open(cfg.DBPath, logger)
	if err != nil {
		return err
	}
	defer repo.Close()

	balances := services.NewBalances(repo)
	budgets := services.NewBudgets(repo, logger)
	svc := apphttp.Services{
		Ledger:     services.NewLedger(repo, logger),
		Balances:   balances,
		Accounts:   services.NewAccounts(repo, logger),
		Categories: services.NewCategories(repo, logger),
		Projects:   services.NewProjects(repo, logger),
		Budgets:    budgets,
		Reports:    services.NewReports(repo, balances, budgets, services.SystemClock{}, logger),
	}

	srv := apphttp.NewServer(":"+cfg.Port, svc, logger, cfg.ReadTimeout, cfg.WriteTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server listening", "addr", srv.Addr, "db", cfg.DBPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down", "timeout", cfg.ShutdownTimeout.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
