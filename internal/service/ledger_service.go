package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"ecosort/internal/dto"
	"ecosort/internal/model"
	"ecosort/internal/repository"
	"ecosort/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PointsPerKg converts collected weight into points: 1 kg = 10 points.
const PointsPerKg = 10

// PointsForWeight returns floor(weightKg * 10). Weights are always
// positive here, so truncation and floor agree.
func PointsForWeight(weightKg decimal.Decimal) int {
	return int(weightKg.Mul(decimal.NewFromInt(PointsPerKg)).IntPart())
}

// LedgerService owns resident point balances. Every balance change goes
// through here — a credit from a completed pickup or a debit from a
// redemption — and each change is durable before the call returns.
type LedgerService interface {
	Credit(ctx context.Context, residentID uuid.UUID, amount int) error
	// CreditTx is the same credit running inside a caller-owned transaction,
	// so a job completion and its point award commit or roll back together.
	CreditTx(tx *gorm.DB, residentID uuid.UUID, amount int) error
	DebitForRedemption(ctx context.Context, residentID, itemID uuid.UUID) (*dto.RedemptionResponse, error)
	// GetBalance returns 0 for an unknown or not-yet-profiled resident
	// rather than failing.
	GetBalance(ctx context.Context, residentID uuid.UUID) (int, error)
	History(ctx context.Context, residentID uuid.UUID) ([]dto.RedemptionLogEntry, error)
}

type ledgerService struct {
	profiles    repository.ProfileRepository
	rewards     repository.RewardRepository
	redemptions repository.RedemptionRepository
	dispatcher  *worker.Dispatcher
}

func NewLedgerService(
	profiles repository.ProfileRepository,
	rewards repository.RewardRepository,
	redemptions repository.RedemptionRepository,
	dispatcher *worker.Dispatcher,
) LedgerService {
	return &ledgerService{
		profiles:    profiles,
		rewards:     rewards,
		redemptions: redemptions,
		dispatcher:  dispatcher,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// newVoucherCode generates the short code printed on a redeemed voucher.
func newVoucherCode() string {
	return fmt.Sprintf("ECO-%04d", 1000+rand.Intn(9000))
}

// ── Credit ────────────────────────────────────────────────────────────────────

func (s *ledgerService) Credit(ctx context.Context, residentID uuid.UUID, amount int) error {
	return runTx(ctx, s.profiles.DB(), func(tx *gorm.DB) error {
		return s.CreditTx(tx, residentID, amount)
	})
}

func (s *ledgerService) CreditTx(tx *gorm.DB, residentID uuid.UUID, amount int) error {
	if amount < 0 {
		return fmt.Errorf("%w: credit amount must be non-negative", ErrValidation)
	}
	rows, err := s.profiles.AddPointsTx(tx, residentID, amount)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: resident %s", ErrNotFound, residentID)
	}
	return nil
}

// ── DebitForRedemption ────────────────────────────────────────────────────────
// One atomic unit: check resident, check item, take stock, take points,
// append the audit row. Preconditions are checked in that order so the
// caller sees the first failing one; the guarded UPDATEs re-check under
// the row lock so a lost race still rolls back cleanly.

func (s *ledgerService) DebitForRedemption(ctx context.Context, residentID, itemID uuid.UUID) (*dto.RedemptionResponse, error) {
	var (
		item    *model.RewardItem
		balance int
		logRow  model.RedemptionLog
	)

	txErr := runTx(ctx, s.profiles.DB(), func(tx *gorm.DB) error {
		profile, err := s.profiles.FindByUserIDTx(tx, residentID)
		if err != nil {
			return fmt.Errorf("%w: resident %s", ErrNotFound, residentID)
		}
		item, err = s.rewards.FindByIDTx(tx, itemID)
		if err != nil {
			return fmt.Errorf("%w: reward %s", ErrNotFound, itemID)
		}
		if item.StockLevel < 1 {
			return fmt.Errorf("%w: %s", ErrOutOfStock, item.Name)
		}
		if profile.Points < item.CostPoints {
			return fmt.Errorf("%w: need %d, have %d", ErrInsufficientPoints, item.CostPoints, profile.Points)
		}

		rows, err := s.rewards.DecrementStockTx(tx, itemID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return fmt.Errorf("%w: %s", ErrOutOfStock, item.Name)
		}

		rows, err = s.profiles.DebitPointsTx(tx, residentID, item.CostPoints)
		if err != nil {
			return err
		}
		if rows == 0 {
			return fmt.Errorf("%w: need %d", ErrInsufficientPoints, item.CostPoints)
		}
		balance = profile.Points - item.CostPoints

		logRow = model.RedemptionLog{
			ResidentID:  residentID,
			ItemID:      itemID,
			PointsSpent: item.CostPoints,
			VoucherCode: newVoucherCode(),
		}
		return s.redemptions.CreateTx(tx, &logRow)
	})
	if txErr != nil {
		return nil, txErr
	}

	// Voucher delivery is best-effort and only dispatched after COMMIT,
	// so the worker can never observe a rolled-back redemption.
	if s.dispatcher != nil {
		_ = s.dispatcher.EnqueueVoucher(ctx, map[string]interface{}{
			"resident_id":  residentID.String(),
			"voucher_code": logRow.VoucherCode,
			"item_name":    item.Name,
			"points_spent": item.CostPoints,
		})
	}

	return &dto.RedemptionResponse{
		VoucherCode: logRow.VoucherCode,
		ItemName:    item.Name,
		PointsSpent: item.CostPoints,
		Balance:     balance,
	}, nil
}

// ── GetBalance ────────────────────────────────────────────────────────────────

func (s *ledgerService) GetBalance(ctx context.Context, residentID uuid.UUID) (int, error) {
	profile, err := s.profiles.FindByUserID(ctx, residentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return profile.Points, nil
}

// ── History ───────────────────────────────────────────────────────────────────

func (s *ledgerService) History(ctx context.Context, residentID uuid.UUID) ([]dto.RedemptionLogEntry, error) {
	logs, err := s.redemptions.ListByResident(ctx, residentID)
	if err != nil {
		return nil, err
	}
	entries := make([]dto.RedemptionLogEntry, len(logs))
	for i, l := range logs {
		name := ""
		if l.Item != nil {
			name = l.Item.Name
		}
		entries[i] = dto.RedemptionLogEntry{
			ID:          l.ID.String(),
			ItemName:    name,
			PointsSpent: l.PointsSpent,
			VoucherCode: l.VoucherCode,
			RedeemedAt:  l.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}
	return entries, nil
}
