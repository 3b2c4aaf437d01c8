package repository

import (
	"context"

	"ecosort/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RedemptionRepository appends to and reads the redemption audit trail.
// There is deliberately no update or delete — the log is append-only.
type RedemptionRepository interface {
	CreateTx(tx *gorm.DB, log *model.RedemptionLog) error
	ListByResident(ctx context.Context, residentID uuid.UUID) ([]model.RedemptionLog, error)
	ListAll(ctx context.Context) ([]model.RedemptionLog, error)
}

type redemptionRepo struct{ db *gorm.DB }

func NewRedemptionRepository(db *gorm.DB) RedemptionRepository { return &redemptionRepo{db: db} }

func (r *redemptionRepo) CreateTx(tx *gorm.DB, log *model.RedemptionLog) error {
	return tx.Create(log).Error
}

func (r *redemptionRepo) ListByResident(ctx context.Context, residentID uuid.UUID) ([]model.RedemptionLog, error) {
	var logs []model.RedemptionLog
	err := r.db.WithContext(ctx).Preload("Item").
		Where("resident_id = ?", residentID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}

func (r *redemptionRepo) ListAll(ctx context.Context) ([]model.RedemptionLog, error) {
	var logs []model.RedemptionLog
	err := r.db.WithContext(ctx).Preload("Item").Preload("Resident").
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}
