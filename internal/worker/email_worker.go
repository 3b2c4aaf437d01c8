package worker

// email_worker.go
// Processes email jobs from QueueEmail.
// Sends voucher emails (with optional PDF attachment) through SMTP,
// behind the shared circuit breaker so a downed relay fails fast.

import (
	"context"
	"encoding/json"

	"ecosort/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	PDFPath string `json:"pdf_path"`
	// Attempts carries the cumulative send count across redrive cycles.
	Attempts int `json:"attempts,omitempty"`
}

// EmailWorker processes email jobs from QueueEmail.
type EmailWorker struct {
	mailer *infra.Mailer
	cb     *infra.CircuitBreaker
	rdb    *redis.Client
}

// NewEmailWorker wires the SMTP mailer, the shared circuit breaker and
// the Redis client used for dead-lettering.
func NewEmailWorker(mailer *infra.Mailer, cb *infra.CircuitBreaker, rdb *redis.Client) *EmailWorker {
	return &EmailWorker{mailer: mailer, cb: cb, rdb: rdb}
}

// Process sends one email. Transient SMTP failures are retried with
// backoff; exhausted jobs go to the DLQ where the retry cron picks
// them up once the relay recovers.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email — skipping")
		return
	}

	sendErr := withRetry(ctx, 3, func(attempt int) error {
		err := w.cb.Execute(func() error {
			return w.mailer.SendVoucher(payload.ToEmail, payload.Subject, payload.Body, payload.PDFPath)
		})
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).Str("to", payload.ToEmail).
				Msg("email_worker: send failed, retrying")
		}
		return err
	})
	if sendErr != nil {
		SendToDLQ(ctx, w.rdb, QueueEmail, "email", raw,
			"smtp send failed: "+sendErr.Error(), payload.Attempts+3)
		return
	}

	log.Info().Str("to", payload.ToEmail).Msg("email_worker: voucher email sent")
}
