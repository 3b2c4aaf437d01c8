package worker

// voucher_worker.go
// Processes voucher delivery jobs from QueueVoucher.
// A redemption is already committed when the job is picked up; this
// worker only handles delivery: render the voucher PDF and chain an
// email job with the attachment.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ecosort/internal/infra"
	"ecosort/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// VoucherJobPayload is the job envelope sent to QueueVoucher.
type VoucherJobPayload struct {
	ResidentID  string `json:"resident_id"`
	VoucherCode string `json:"voucher_code"`
	ItemName    string `json:"item_name"`
	PointsSpent int    `json:"points_spent"`
	// Attempts counts deliveries across redrive cycles; set by the
	// retry cron, zero on first dispatch.
	Attempts int `json:"attempts,omitempty"`
}

// VoucherWorker processes voucher delivery jobs from QueueVoucher.
type VoucherWorker struct {
	users          repository.UserRepository
	dispatcher     *Dispatcher
	rdb            *redis.Client
	pdfStoragePath string
	domain         string
}

func NewVoucherWorker(
	users repository.UserRepository,
	dispatcher *Dispatcher,
	rdb *redis.Client,
	pdfStoragePath string,
	domain string,
) *VoucherWorker {
	return &VoucherWorker{
		users:          users,
		dispatcher:     dispatcher,
		rdb:            rdb,
		pdfStoragePath: pdfStoragePath,
		domain:         domain,
	}
}

// Process handles a single voucher job:
//  1. Parse VoucherJobPayload from the job envelope
//  2. Fetch the resident — a missing account drops the job, a DB failure dead-letters it
//  3. Skip delivery entirely when no email is on file (the code stays in the redemption history)
//  4. Render the voucher PDF (best effort — the code in the body is what matters)
//  5. Chain an email job with the attachment
func (w *VoucherWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload VoucherJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("voucher_worker: invalid payload")
		return
	}

	residentID, err := uuid.Parse(payload.ResidentID)
	if err != nil {
		log.Error().Str("resident_id", payload.ResidentID).Msg("voucher_worker: invalid resident_id")
		return
	}

	user, err := w.users.FindByID(ctx, residentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn().Str("resident_id", payload.ResidentID).Str("voucher", payload.VoucherCode).
			Msg("voucher_worker: resident no longer exists, dropping job")
		return
	}
	if err != nil {
		SendToDLQ(ctx, w.rdb, QueueVoucher, "voucher", raw,
			"resident lookup failed: "+err.Error(), payload.Attempts+1)
		return
	}

	if user.Email == nil || *user.Email == "" {
		log.Info().Str("resident", user.Username).Str("voucher", payload.VoucherCode).
			Msg("voucher_worker: no email on file, skipping delivery")
		return
	}

	pdfPath, pdfErr := infra.GenerateVoucherPDF(user.Username, payload.VoucherCode, payload.ItemName, payload.PointsSpent, w.pdfStoragePath)
	if pdfErr != nil {
		log.Warn().Err(pdfErr).Str("voucher", payload.VoucherCode).
			Msg("voucher_worker: PDF generation failed, sending without attachment")
		pdfPath = ""
	}

	emailJob := EmailJobPayload{
		ToEmail: *user.Email,
		Subject: fmt.Sprintf("Your EcoSort voucher %s", payload.VoucherCode),
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour redemption of %s is confirmed.\nVoucher code: %s (%d points)\n\nSee your full history at %s/v1/redemptions\n\nThanks for recycling!",
			user.Username, payload.ItemName, payload.VoucherCode, payload.PointsSpent, w.domain,
		),
		PDFPath:  pdfPath,
		Attempts: payload.Attempts,
	}

	enqErr := withRetry(ctx, 3, func(attempt int) error {
		if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).Str("voucher", payload.VoucherCode).
				Msg("voucher_worker: enqueue email failed, retrying")
			return err
		}
		return nil
	})
	if enqErr != nil {
		SendToDLQ(ctx, w.rdb, QueueVoucher, "voucher", raw,
			"email enqueue failed: "+enqErr.Error(), payload.Attempts+3)
		return
	}

	log.Info().Str("to", *user.Email).Str("voucher", payload.VoucherCode).
		Msg("voucher_worker: email job enqueued")
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			// 1s, 2s … (exponential backoff)
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
