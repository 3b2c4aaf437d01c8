package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Each job type gets its own list so a stuck voucher render cannot starve
// plain email sends.
const (
	QueueVoucher = "jobs:voucher"
	QueueEmail   = "jobs:email"
)

const popTimeout = 5 * time.Second

// Job is the envelope every queued task travels in.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatcher enqueues jobs onto the Redis lists the pool consumes.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueVoucher queues a voucher delivery (PDF render plus email chain).
func (d *Dispatcher) EnqueueVoucher(ctx context.Context, payload interface{}) error {
	return d.push(ctx, QueueVoucher, "voucher", payload)
}

// EnqueueEmail queues an outbound email send.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload interface{}) error {
	return d.push(ctx, QueueEmail, "email", payload)
}

func (d *Dispatcher) push(ctx context.Context, queue, jobType string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", jobType, err)
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: body})
	if err != nil {
		return fmt.Errorf("marshal %s job: %w", jobType, err)
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// WorkerHandlers groups the per-type processors, wired at the composition
// root so each worker reaches the full infrastructure.
type WorkerHandlers struct {
	Voucher *VoucherWorker
	Email   *EmailWorker
}

func (h *WorkerHandlers) process(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("undecodable job dropped")
		return
	}
	switch job.Type {
	case "voucher":
		h.Voucher.Process(ctx, job.Payload)
	case "email":
		h.Email.Process(ctx, job.Payload)
	default:
		log.Error().Str("type", job.Type).Str("queue", queue).Msg("unknown job type dropped")
	}
}

// StartWorkerPool launches n consumers over both queues. Consumers block on
// BRPOP and wake every popTimeout to notice context cancellation.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, n int) {
	for i := 0; i < n; i++ {
		go consume(ctx, rdb, handlers, i)
	}
	log.Info().Int("workers", n).Msg("worker pool started")
}

func consume(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, id int) {
	queues := []string{QueueVoucher, QueueEmail}
	for ctx.Err() == nil {
		result, err := rdb.BRPop(ctx, popTimeout, queues...).Result()
		if err != nil {
			// redis.Nil just means the wait timed out. Anything else gets a
			// beat before retrying so a dead Redis does not spin the CPU.
			if err != redis.Nil && ctx.Err() == nil {
				log.Warn().Err(err).Int("worker", id).Msg("queue pop failed")
				time.Sleep(time.Second)
			}
			continue
		}
		if len(result) == 2 {
			handlers.process(ctx, result[0], result[1])
		}
	}
	log.Info().Int("worker", id).Msg("worker stopped")
}
