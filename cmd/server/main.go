package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Team-Techentia/veedra-sub001/internal/config"
	"github.com/Team-Techentia/veedra-sub001/internal/infra"
	"github.com/Team-Techentia/veedra-sub001/internal/repository"
	"github.com/Team-Techentia/veedra-sub001/internal/router"
	"github.com/Team-Techentia/veedra-sub001/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev pretty, prod JSON
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	if err := os.MkdirAll(cfg.PDFStoragePath, 0o755); err != nil {
		log.Fatal().Err(err).Str("path", cfg.PDFStoragePath).Msg("failed to create receipt storage")
	}

	// Worker handlers are wired here (composition root) so that the pool
	// has full access to all infrastructure dependencies.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)
	billRepo := repository.NewBillRepository(db)

	handlers := map[string]worker.Handler{
		worker.QueueReceipt: worker.NewReceiptWorker(billRepo, dispatcher, cfg.StoreName, cfg.PDFStoragePath).Process,
	}
	if mailer.Configured() {
		handlers[worker.QueueEmail] = worker.NewEmailWorker(mailer).Process
	} else {
		log.Warn().Msg("SMTP_HOST not set, receipt e-mails stay queued")
	}
	worker.NewPool(rdb, handlers).Start(ctx, cfg.WorkerPoolSize)
	worker.StartReceiptSweep(ctx, worker.ReceiptSweepConfig{Bills: billRepo, Dispatcher: dispatcher})

	alloc := router.NewAllocator(cfg, db, rdb)
	r := router.New(cfg, db, rdb, alloc, dispatcher)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Str("sequence_backend", cfg.SequenceBackend).Msgf("veedra billing listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	cancel()
	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("redis close")
	}
	log.Info().Msg("server exited")
}
