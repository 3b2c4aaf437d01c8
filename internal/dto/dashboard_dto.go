package dto

import "github.com/shopspring/decimal"

// ResidentDashboard is the gamified view backing the resident home page.
// Level maths: every 500 points is one level; the badge follows the level.
type ResidentDashboard struct {
	Username        string          `json:"username"`
	Points          int             `json:"points"`
	Level           int             `json:"level"`
	Badge           string          `json:"badge"`
	PointsIntoLevel int             `json:"points_into_level"`
	PointsPerLevel  int             `json:"points_per_level"`
	Progress        float64         `json:"progress"` // 0..1 toward next level
	TotalRecycledKg decimal.Decimal `json:"total_recycled_kg"`
	TreesSaved      int             `json:"trees_saved"`
	CO2PreventedKg  int             `json:"co2_prevented_kg"`
}

type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Zone     string `json:"zone"`
	Points   int    `json:"points"`
	Level    int    `json:"level"`
}
