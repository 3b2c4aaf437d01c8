package repository

import (
	"context"

	"ecosort/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RewardRepository is the data access contract for the reward catalog.
type RewardRepository interface {
	Create(ctx context.Context, item *model.RewardItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.RewardItem, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.RewardItem, error)
	List(ctx context.Context, includeInactive bool) ([]model.RewardItem, error)
	Update(ctx context.Context, item *model.RewardItem) error
	Retire(ctx context.Context, id uuid.UUID) error

	// DecrementStockTx takes one unit off the shelf only while stock lasts.
	// 0 rows = sold out (or raced out) — the caller rolls back.
	DecrementStockTx(tx *gorm.DB, id uuid.UUID) (int64, error)

	DB() *gorm.DB
}

type rewardRepo struct{ db *gorm.DB }

func NewRewardRepository(db *gorm.DB) RewardRepository { return &rewardRepo{db: db} }

func (r *rewardRepo) Create(ctx context.Context, item *model.RewardItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *rewardRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.RewardItem, error) {
	var item model.RewardItem
	err := r.db.WithContext(ctx).First(&item, id).Error
	return &item, err
}

func (r *rewardRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.RewardItem, error) {
	var item model.RewardItem
	err := tx.First(&item, id).Error
	return &item, err
}

func (r *rewardRepo) List(ctx context.Context, includeInactive bool) ([]model.RewardItem, error) {
	var items []model.RewardItem
	q := r.db.WithContext(ctx)
	if !includeInactive {
		q = q.Where("active = true")
	}
	err := q.Order("cost_points ASC").Find(&items).Error
	return items, err
}

func (r *rewardRepo) Update(ctx context.Context, item *model.RewardItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *rewardRepo) Retire(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.RewardItem{}).
		Where("id = ?", id).Update("active", false).Error
}

func (r *rewardRepo) DecrementStockTx(tx *gorm.DB, id uuid.UUID) (int64, error) {
	res := tx.Model(&model.RewardItem{}).
		Where("id = ? AND stock_level >= 1", id).
		Update("stock_level", gorm.Expr("stock_level - 1"))
	return res.RowsAffected, res.Error
}

func (r *rewardRepo) DB() *gorm.DB { return r.db }
