package model

import (
	"time"

	"github.com/google/uuid"
)

// Role classifies what a user is allowed to do. Stored as text so the
// column stays readable in psql, but code only ever sees these constants.
type Role string

const (
	RoleResident  Role = "Resident"
	RoleCollector Role = "Collector"
	RoleAdmin     Role = "Admin"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	return r == RoleResident || r == RoleCollector || r == RoleAdmin
}

// User stores login identities for all three roles.
// Role is immutable after registration.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	Role         Role   `gorm:"type:varchar(20);not null"`
	// AssignedZone routes pending jobs to a collector; nil = sees every zone.
	// Only meaningful when Role == Collector, mutable by admins only.
	AssignedZone *string `gorm:"type:varchar(40)"`
	Active       bool    `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Profile *ResidentProfile `gorm:"foreignKey:UserID"`
}
