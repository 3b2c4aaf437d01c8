package repository

import (
	"context"
	"time"

	"ecosort/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PickupRepository is the data access contract for pickup requests.
// CompleteTx and FailTx are compare-and-set transitions: the WHERE clause
// only matches Pending rows, so of two concurrent resolutions exactly one
// sees RowsAffected == 1 and the loser can report the conflict.
type PickupRepository interface {
	Create(ctx context.Context, p *model.PickupRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PickupRequest, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.PickupRequest, error)

	ListByResident(ctx context.Context, residentID uuid.UUID) ([]model.PickupRequest, error)
	// ListPending filters by the resident's profile zone when zone != "".
	// Zone values are opaque, case-sensitive identifiers — no folding.
	ListPending(ctx context.Context, zone string) ([]model.PickupRequest, error)
	ListAll(ctx context.Context) ([]model.PickupRequest, error)

	CompleteTx(tx *gorm.DB, id uuid.UUID, weightKg decimal.Decimal, collectorID uuid.UUID, resolvedAt time.Time) (int64, error)
	FailTx(tx *gorm.DB, id uuid.UUID, reason string, collectorID uuid.UUID, resolvedAt time.Time) (int64, error)

	// Aggregates for the dashboards
	CountPending(ctx context.Context) (int64, error)
	TotalCompletedWeight(ctx context.Context) (decimal.Decimal, error)
	CompletedWeightByResident(ctx context.Context, residentID uuid.UUID) (decimal.Decimal, error)
	CountByWasteType(ctx context.Context) (map[model.WasteType]int64, error)

	// DeleteAll wipes every pickup row. Admin escape hatch, irreversible.
	DeleteAll(ctx context.Context) (int64, error)

	DB() *gorm.DB
}

type pickupRepo struct{ db *gorm.DB }

func NewPickupRepository(db *gorm.DB) PickupRepository { return &pickupRepo{db: db} }

func (r *pickupRepo) Create(ctx context.Context, p *model.PickupRequest) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *pickupRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PickupRequest, error) {
	var p model.PickupRequest
	err := r.db.WithContext(ctx).Preload("Resident.Profile").First(&p, id).Error
	return &p, err
}

func (r *pickupRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.PickupRequest, error) {
	var p model.PickupRequest
	err := tx.First(&p, id).Error
	return &p, err
}

func (r *pickupRepo) ListByResident(ctx context.Context, residentID uuid.UUID) ([]model.PickupRequest, error) {
	var pickups []model.PickupRequest
	err := r.db.WithContext(ctx).
		Where("resident_id = ?", residentID).
		Order("created_at DESC").
		Find(&pickups).Error
	return pickups, err
}

func (r *pickupRepo) ListPending(ctx context.Context, zone string) ([]model.PickupRequest, error) {
	var pickups []model.PickupRequest
	q := r.db.WithContext(ctx).Preload("Resident.Profile").
		Where("pickup_requests.status = ?", model.StatusPending)
	if zone != "" {
		q = q.Joins("JOIN resident_profiles ON resident_profiles.user_id = pickup_requests.resident_id").
			Where("resident_profiles.zone = ?", zone)
	}
	err := q.Order("pickup_requests.scheduled_date ASC").Find(&pickups).Error
	return pickups, err
}

func (r *pickupRepo) ListAll(ctx context.Context) ([]model.PickupRequest, error) {
	var pickups []model.PickupRequest
	err := r.db.WithContext(ctx).Preload("Resident.Profile").
		Order("created_at DESC").
		Find(&pickups).Error
	return pickups, err
}

func (r *pickupRepo) CompleteTx(tx *gorm.DB, id uuid.UUID, weightKg decimal.Decimal, collectorID uuid.UUID, resolvedAt time.Time) (int64, error) {
	res := tx.Model(&model.PickupRequest{}).
		Where("id = ? AND status = ?", id, model.StatusPending).
		Updates(map[string]interface{}{
			"status":       model.StatusCompleted,
			"weight_kg":    weightKg,
			"collector_id": collectorID,
			"resolved_at":  resolvedAt,
		})
	return res.RowsAffected, res.Error
}

func (r *pickupRepo) FailTx(tx *gorm.DB, id uuid.UUID, reason string, collectorID uuid.UUID, resolvedAt time.Time) (int64, error) {
	res := tx.Model(&model.PickupRequest{}).
		Where("id = ? AND status = ?", id, model.StatusPending).
		Updates(map[string]interface{}{
			"status":       model.StatusFailed,
			"notes":        reason,
			"collector_id": collectorID,
			"resolved_at":  resolvedAt,
		})
	return res.RowsAffected, res.Error
}

func (r *pickupRepo) CountPending(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.PickupRequest{}).
		Where("status = ?", model.StatusPending).
		Count(&n).Error
	return n, err
}

func (r *pickupRepo) TotalCompletedWeight(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(&model.PickupRequest{}).
		Where("status = ?", model.StatusCompleted).
		Select("COALESCE(SUM(weight_kg), 0)").
		Scan(&total).Error
	return total, err
}

func (r *pickupRepo) CompletedWeightByResident(ctx context.Context, residentID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(&model.PickupRequest{}).
		Where("resident_id = ? AND status = ?", residentID, model.StatusCompleted).
		Select("COALESCE(SUM(weight_kg), 0)").
		Scan(&total).Error
	return total, err
}

func (r *pickupRepo) CountByWasteType(ctx context.Context) (map[model.WasteType]int64, error) {
	var rows []struct {
		WasteType model.WasteType
		Total     int64
	}
	err := r.db.WithContext(ctx).Model(&model.PickupRequest{}).
		Select("waste_type, COUNT(*) AS total").
		Group("waste_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[model.WasteType]int64, len(rows))
	for _, row := range rows {
		counts[row.WasteType] = row.Total
	}
	return counts, nil
}

func (r *pickupRepo) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("1 = 1").Delete(&model.PickupRequest{})
	return res.RowsAffected, res.Error
}

func (r *pickupRepo) DB() *gorm.DB { return r.db }
