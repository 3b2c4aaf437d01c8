package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type RedeemRequest struct {
	ItemID string `json:"item_id" validate:"required,uuid"`
}

type CreateRewardRequest struct {
	Name       string `json:"name"        validate:"required,min=2,max=120"`
	CostPoints int    `json:"cost_points" validate:"required,gt=0"`
	StockLevel int    `json:"stock_level" validate:"min=0"`
}

type UpdateRewardRequest struct {
	Name       string `json:"name"        validate:"omitempty,min=2,max=120"`
	CostPoints *int   `json:"cost_points" validate:"omitempty,gt=0"`
	StockLevel *int   `json:"stock_level" validate:"omitempty,min=0"`
	Active     *bool  `json:"active"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type RewardItemResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CostPoints int    `json:"cost_points"`
	StockLevel int    `json:"stock_level"`
	Active     bool   `json:"active"`
}

type RedemptionResponse struct {
	VoucherCode string `json:"voucher_code"`
	ItemName    string `json:"item_name"`
	PointsSpent int    `json:"points_spent"`
	Balance     int    `json:"balance"` // points remaining after the debit
}

type RedemptionLogEntry struct {
	ID          string `json:"id"`
	ItemName    string `json:"item_name"`
	PointsSpent int    `json:"points_spent"`
	VoucherCode string `json:"voucher_code"`
	RedeemedAt  string `json:"redeemed_at"`
}

type BalanceResponse struct {
	Points int `json:"points"`
}
