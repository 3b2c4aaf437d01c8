package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JobStatus is the lifecycle state of a pickup request.
// Pending is the only non-terminal state; Completed and Failed never change.
type JobStatus string

const (
	StatusPending   JobStatus = "Pending"
	StatusCompleted JobStatus = "Completed"
	StatusFailed    JobStatus = "Failed"
)

// WasteType enumerates what a resident can book a pickup for.
type WasteType string

const (
	WasteRecyclable WasteType = "Recyclable"
	WasteEWaste     WasteType = "E-Waste"
	WasteBulkItem   WasteType = "Bulk Item"
	WasteGarden     WasteType = "Garden Waste"
)

// Valid reports whether w is one of the four bookable types.
func (w WasteType) Valid() bool {
	switch w {
	case WasteRecyclable, WasteEWaste, WasteBulkItem, WasteGarden:
		return true
	}
	return false
}

// PickupRequest is one waste-collection job booked by a resident.
// WeightKg stays 0 until a collector completes the job; a CHECK
// constraint enforces weight > 0 exactly when status is Completed.
type PickupRequest struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ResidentID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	WasteType     WasteType       `gorm:"type:varchar(20);not null"`
	Status        JobStatus       `gorm:"type:varchar(20);not null;default:'Pending';index"`
	ScheduledDate time.Time       `gorm:"type:date;not null"`
	WeightKg      decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	Notes         string
	// CollectorID records who resolved the job; nil while Pending
	CollectorID *uuid.UUID `gorm:"type:uuid"`
	ResolvedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Resident  *User `gorm:"foreignKey:ResidentID"`
	Collector *User `gorm:"foreignKey:CollectorID"`
}
