package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AssignZoneRequest struct {
	Zone string `json:"zone" validate:"required,min=1,max=40"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// ActivityRow is one line of the live feed on the admin overview.
type ActivityRow struct {
	WasteType string `json:"waste_type"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

type AdminOverview struct {
	TotalUsers       int              `json:"total_users"`
	TotalRecycledKg  decimal.Decimal  `json:"total_recycled_kg"`
	PendingJobs      int64            `json:"pending_jobs"`
	WasteComposition map[string]int64 `json:"waste_composition"`
	RecentActivity   []ActivityRow    `json:"recent_activity"`
}

type ResetResponse struct {
	PickupsDeleted int64 `json:"pickups_deleted"`
}
