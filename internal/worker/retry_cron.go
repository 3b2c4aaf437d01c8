package worker

// retry_cron.go
// Background goroutine that periodically redrives dead-lettered jobs
// back onto their source queue. Uses the circuit breaker to avoid
// redriving delivery jobs while the SMTP relay is down.

import (
	"context"
	"encoding/json"
	"time"

	"ecosort/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10

	// maxDeliveryAttempts bounds cumulative deliveries across redrive
	// cycles: entries at or past it are parked instead of redriven.
	maxDeliveryAttempts = 9
)

// RetryCronConfig holds all dependencies for the redrive goroutine.
type RetryCronConfig struct {
	RDB *redis.Client
	CB  *infra.CircuitBreaker
}

// StartRetryCron launches a background goroutine that ticks every 30s
// and redrives a bounded batch from each DLQ.
// It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Dur("interval", retryTickInterval).Msg("retry_cron: started")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: stopped")
				return
			case <-ticker.C:
				processRedrives(ctx, cfg)
			}
		}
	}()
}

func processRedrives(ctx context.Context, cfg RetryCronConfig) {
	// If CB is open the relay is still down — redriving would only
	// bounce every entry straight back to the DLQ.
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return
	}

	for _, queue := range []string{QueueVoucher, QueueEmail} {
		redriven := 0
		for i := 0; i < retryBatchSize; i++ {
			entry, err := PopDLQ(ctx, cfg.RDB, queue)
			if err != nil {
				log.Error().Err(err).Str("queue", queue).Msg("retry_cron: failed to pop DLQ")
				break
			}
			if entry == nil {
				break // DLQ drained
			}

			if entry.Attempts >= maxDeliveryAttempts {
				if err := ParkDLQEntry(ctx, cfg.RDB, entry); err != nil {
					log.Error().Err(err).Str("queue", queue).Msg("retry_cron: failed to park entry")
					continue
				}
				log.Error().
					Str("queue", queue).
					Str("job_type", entry.JobType).
					Int("attempts", entry.Attempts).
					Str("reason", entry.Reason).
					Msg("retry_cron: max delivery attempts exceeded, parked")
				continue
			}

			if err := redrive(ctx, cfg.RDB, entry); err != nil {
				log.Error().Err(err).Str("queue", queue).Msg("retry_cron: redrive failed")
				continue
			}
			redriven++
		}

		if redriven > 0 {
			log.Info().Str("queue", queue).Int("count", redriven).Msg("retry_cron: entries redriven")
		}
	}
}

// redrive re-enqueues a DLQ entry onto its source queue, stamping the
// cumulative attempt count into the payload so the next failure keeps
// counting from where this cycle left off.
func redrive(ctx context.Context, rdb *redis.Client, entry *DLQEntry) error {
	var payload map[string]interface{}
	if err := json.Unmarshal(entry.Payload, &payload); err != nil {
		// Unparseable payload can never succeed — park it.
		return ParkDLQEntry(ctx, rdb, entry)
	}
	payload["attempts"] = entry.Attempts

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: entry.JobType, Payload: data})
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, entry.OriginalQueue, encoded).Err()
}
