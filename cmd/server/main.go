package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecosort/internal/config"
	"ecosort/internal/infra"
	"ecosort/internal/repository"
	"ecosort/internal/router"
	"ecosort/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("ecosort exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	setupLogger(cfg)

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}

	// Composition root: the voucher delivery pipeline is wired here so the
	// pool sees every infrastructure dependency.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	mailer := infra.NewMailer(cfg)
	smtpCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	dispatcher := worker.NewDispatcher(rdb)
	userRepo := repository.NewUserRepository(db)

	handlers := &worker.WorkerHandlers{
		Voucher: worker.NewVoucherWorker(userRepo, dispatcher, rdb, cfg.PDFStoragePath, cfg.Domain),
		Email:   worker.NewEmailWorker(mailer, smtpCB, rdb),
	}
	worker.StartWorkerPool(workerCtx, rdb, handlers, cfg.WorkerPoolSize)
	worker.StartRetryCron(workerCtx, worker.RetryCronConfig{RDB: rdb, CB: smtpCB})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router.New(cfg, db, rdb),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Port).Str("env", cfg.Env).Msg("ecosort backend listening")
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	// Drain HTTP first, then stop the queue consumers.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	stopWorkers()
	log.Info().Msg("server exited")
	return nil
}

// setupLogger keeps JSON output in production and switches to the pretty
// console writer everywhere else.
func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
