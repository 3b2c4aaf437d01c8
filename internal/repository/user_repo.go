package repository

import (
	"context"

	"ecosort/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository defines the data access contract for user accounts.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via mocks.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	CreateTx(tx *gorm.DB, u *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	List(ctx context.Context, role model.Role, search string) ([]model.User, error)

	// UpdateAssignedZone is guarded by role: only collectors carry a zone.
	// Returns the number of rows touched so callers can tell a missing user
	// from a non-collector.
	UpdateAssignedZone(ctx context.Context, id uuid.UUID, zone string) (int64, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type userRepo struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepo{db: db} }

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepo) CreateTx(tx *gorm.DB, u *model.User) error {
	return tx.Create(u).Error
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).
		Where("username = ? AND active = true", username).
		First(&u).Error
	return &u, err
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).First(&u, id).Error
	return &u, err
}

func (r *userRepo) List(ctx context.Context, role model.Role, search string) ([]model.User, error) {
	var users []model.User
	q := r.db.WithContext(ctx).Preload("Profile")
	if role != "" {
		q = q.Where("role = ?", role)
	}
	if search != "" {
		q = q.Where("username ILIKE ?", "%"+search+"%")
	}
	err := q.Order("username ASC").Find(&users).Error
	return users, err
}

func (r *userRepo) UpdateAssignedZone(ctx context.Context, id uuid.UUID, zone string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND role = ?", id, model.RoleCollector).
		Update("assigned_zone", zone)
	return res.RowsAffected, res.Error
}

func (r *userRepo) DB() *gorm.DB { return r.db }
