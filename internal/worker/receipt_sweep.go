package worker

// receipt_sweep.go
// Background goroutine that re-enqueues receipt jobs for bills that still
// have no receipt some time after closing (lost enqueue, job in DLQ, worker
// down during a deploy). Each bill is swept at most
// repository.MaxReceiptSweeps times, after which its job stays in the DLQ.

import (
	"context"
	"time"

	"github.com/Team-Techentia/veedra-sub001/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	sweepTickInterval = time.Minute
	sweepGrace        = 5 * time.Minute
	sweepBatchSize    = 20
)

type ReceiptSweepConfig struct {
	Bills      repository.BillRepository
	Dispatcher *Dispatcher
	// Zero values fall back to the package defaults.
	Interval time.Duration
	Grace    time.Duration
}

// StartReceiptSweep ticks every Interval until ctx is cancelled.
func StartReceiptSweep(ctx context.Context, cfg ReceiptSweepConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = sweepTickInterval
	}
	if cfg.Grace <= 0 {
		cfg.Grace = sweepGrace
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Msg("receipt_sweep: started")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("receipt_sweep: shutting down")
				return
			case <-ticker.C:
				sweepOnce(ctx, cfg, time.Now())
			}
		}
	}()
}

// sweepOnce enqueues one batch and returns how many jobs it pushed.
func sweepOnce(ctx context.Context, cfg ReceiptSweepConfig, now time.Time) int {
	bills, err := cfg.Bills.ListMissingReceipts(ctx, now.Add(-cfg.Grace), sweepBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("receipt_sweep: failed to query bills without receipt")
		return 0
	}
	pushed := 0
	for _, b := range bills {
		// No e-mail on re-runs: the customer may already have received it.
		if err := cfg.Dispatcher.EnqueueReceipt(ctx, ReceiptJobPayload{BillID: b.ID.String()}); err != nil {
			log.Warn().Err(err).Str("bill_number", b.BillNumber).Msg("receipt_sweep: enqueue failed")
			continue
		}
		pushed++
		if err := cfg.Bills.MarkReceiptSwept(ctx, b.ID); err != nil {
			log.Warn().Err(err).Str("bill_number", b.BillNumber).Msg("receipt_sweep: failed to count sweep")
			continue
		}
		if b.ReceiptSweeps+1 >= repository.MaxReceiptSweeps {
			log.Warn().Str("bill_number", b.BillNumber).Int("sweeps", b.ReceiptSweeps+1).
				Msg("receipt_sweep: last re-enqueue, further failures stay in the DLQ")
		}
	}
	if pushed > 0 {
		log.Info().Int("count", pushed).Msg("receipt_sweep: receipt jobs re-enqueued")
	}
	return pushed
}
