package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreatePickupRequest struct {
	WasteType     string `json:"waste_type"     validate:"required"`
	ScheduledDate string `json:"scheduled_date" validate:"required"` // YYYY-MM-DD
	Notes         string `json:"notes"          validate:"max=500"`
}

type CompletePickupRequest struct {
	WeightKg decimal.Decimal `json:"weight_kg" validate:"required,gt=0"`
}

type ReportIssueRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PickupResponse struct {
	ID               string          `json:"id"`
	ResidentID       string          `json:"resident_id"`
	ResidentUsername string          `json:"resident_username,omitempty"`
	Zone             string          `json:"zone,omitempty"`
	WasteType        string          `json:"waste_type"`
	Status           string          `json:"status"`
	ScheduledDate    string          `json:"scheduled_date"`
	WeightKg         decimal.Decimal `json:"weight_kg"`
	Notes            string          `json:"notes"`
	PointsAwarded    int             `json:"points_awarded,omitempty"`
	ResolvedAt       *string         `json:"resolved_at,omitempty"`
	CreatedAt        string          `json:"created_at"`
}

// ManifestStop is one row of the driver's run sheet, with a stable
// map pin for the resident's address.
type ManifestStop struct {
	Pickup  PickupResponse `json:"pickup"`
	Address string         `json:"address"`
	Lat     float64        `json:"lat"`
	Lon     float64        `json:"lon"`
}

type ManifestResponse struct {
	Zone        string         `json:"zone"` // empty = all zones
	StopCount   int            `json:"stop_count"`
	EstWeightKg int            `json:"est_weight_kg"`
	Stops       []ManifestStop `json:"stops"`
}
