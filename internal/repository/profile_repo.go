package repository

import (
	"context"

	"ecosort/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfileRepository is the data access contract for resident profiles.
// The point-mutation methods are transaction-scoped and guarded: they
// return RowsAffected so the ledger can detect a lost race without a
// second round trip.
type ProfileRepository interface {
	CreateTx(tx *gorm.DB, p *model.ResidentProfile) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*model.ResidentProfile, error)
	FindByUserIDTx(tx *gorm.DB, userID uuid.UUID) (*model.ResidentProfile, error)

	// AddPointsTx increments the balance unconditionally. 0 rows = no such profile.
	AddPointsTx(tx *gorm.DB, userID uuid.UUID, amount int) (int64, error)

	// DebitPointsTx decrements the balance only when it covers the amount,
	// so two concurrent debits can never drive points negative.
	DebitPointsTx(tx *gorm.DB, userID uuid.UUID, amount int) (int64, error)

	TopByPoints(ctx context.Context, limit int) ([]model.ResidentProfile, error)

	DB() *gorm.DB
}

type profileRepo struct{ db *gorm.DB }

func NewProfileRepository(db *gorm.DB) ProfileRepository { return &profileRepo{db: db} }

func (r *profileRepo) CreateTx(tx *gorm.DB, p *model.ResidentProfile) error {
	return tx.Create(p).Error
}

func (r *profileRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.ResidentProfile, error) {
	var p model.ResidentProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	return &p, err
}

func (r *profileRepo) FindByUserIDTx(tx *gorm.DB, userID uuid.UUID) (*model.ResidentProfile, error) {
	var p model.ResidentProfile
	err := tx.Where("user_id = ?", userID).First(&p).Error
	return &p, err
}

func (r *profileRepo) AddPointsTx(tx *gorm.DB, userID uuid.UUID, amount int) (int64, error) {
	res := tx.Model(&model.ResidentProfile{}).
		Where("user_id = ?", userID).
		Update("points", gorm.Expr("points + ?", amount))
	return res.RowsAffected, res.Error
}

func (r *profileRepo) DebitPointsTx(tx *gorm.DB, userID uuid.UUID, amount int) (int64, error) {
	res := tx.Model(&model.ResidentProfile{}).
		Where("user_id = ? AND points >= ?", userID, amount).
		Update("points", gorm.Expr("points - ?", amount))
	return res.RowsAffected, res.Error
}

func (r *profileRepo) TopByPoints(ctx context.Context, limit int) ([]model.ResidentProfile, error) {
	var profiles []model.ResidentProfile
	err := r.db.WithContext(ctx).Preload("User").
		Order("points DESC").Limit(limit).
		Find(&profiles).Error
	return profiles, err
}

func (r *profileRepo) DB() *gorm.DB { return r.db }
