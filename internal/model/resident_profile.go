package model

import (
	"time"

	"github.com/google/uuid"
)

// ResidentProfile extends a Resident user with routing info and the
// point balance. Points is the single source of truth for spendable
// value — only the ledger mutates it, and a CHECK constraint keeps it
// from ever going negative.
type ResidentProfile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Address   string    `gorm:"not null"`
	Zone      string    `gorm:"type:varchar(40);not null;index"`
	Points    int       `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time

	User *User `gorm:"foreignKey:UserID"`
}
