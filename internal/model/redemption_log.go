package model

import (
	"time"

	"github.com/google/uuid"
)

// RedemptionLog is the append-only audit trail of reward redemptions.
// Rows are never updated or deleted — every point debit is traceable
// to exactly one row here.
type RedemptionLog struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ResidentID  uuid.UUID `gorm:"type:uuid;not null;index"`
	ItemID      uuid.UUID `gorm:"type:uuid;not null;index"`
	PointsSpent int       `gorm:"not null"`
	VoucherCode string    `gorm:"not null"`
	CreatedAt   time.Time

	Resident *User       `gorm:"foreignKey:ResidentID"`
	Item     *RewardItem `gorm:"foreignKey:ItemID"`
}
