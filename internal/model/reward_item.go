package model

import (
	"time"

	"github.com/google/uuid"
)

// RewardItem is a catalog entry residents spend points on.
// Redemption decrements StockLevel; admins restock or retire items.
// Retired items stay in the table so redemption logs keep a valid target.
type RewardItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name       string    `gorm:"uniqueIndex;not null"`
	CostPoints int       `gorm:"not null"`
	StockLevel int       `gorm:"not null;default:0"`
	Active     bool      `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
