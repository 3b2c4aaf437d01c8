package service

import (
	"context"
	"errors"
	"fmt"

	"ecosort/internal/dto"
	"ecosort/internal/model"
	"ecosort/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Gamification constants. 500 points per level; the impact figures turn
// collected kilograms into display numbers (10 kg ≈ one tree, 1 kg ≈
// 2.5 kg of CO2 prevented).
const (
	pointsPerLevel = 500
	kgPerTree      = 10
	co2PerKg       = 2.5
)

// levelFor returns the level, points into the current level, and the
// fractional progress toward the next one.
func levelFor(points int) (level, intoLevel int, progress float64) {
	level = points/pointsPerLevel + 1
	intoLevel = points % pointsPerLevel
	return level, intoLevel, float64(intoLevel) / pointsPerLevel
}

// badgeFor maps a level to its display badge.
func badgeFor(level int) string {
	switch {
	case level <= 1:
		return "Rookie"
	case level < 5:
		return "Gatherer"
	default:
		return "Master of Earth"
	}
}

// StatsService serves the read-only aggregate views: the gamified
// resident dashboard, the community leaderboard, and the admin overview.
// It never mutates points, stock, or job status.
type StatsService interface {
	ResidentDashboard(ctx context.Context, residentID uuid.UUID) (*dto.ResidentDashboard, error)
	Leaderboard(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error)
	AdminOverview(ctx context.Context) (*dto.AdminOverview, error)
	ActivityReportXLSX(ctx context.Context) ([]byte, error)
}

type statsService struct {
	users    repository.UserRepository
	profiles repository.ProfileRepository
	pickups  repository.PickupRepository
}

func NewStatsService(
	users repository.UserRepository,
	profiles repository.ProfileRepository,
	pickups repository.PickupRepository,
) StatsService {
	return &statsService{users: users, profiles: profiles, pickups: pickups}
}

// ── ResidentDashboard ─────────────────────────────────────────────────────────

func (s *statsService) ResidentDashboard(ctx context.Context, residentID uuid.UUID) (*dto.ResidentDashboard, error) {
	user, err := s.users.FindByID(ctx, residentID)
	if err != nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, residentID)
	}

	points := 0
	if profile, err := s.profiles.FindByUserID(ctx, residentID); err == nil {
		points = profile.Points
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	totalKg, err := s.pickups.CompletedWeightByResident(ctx, residentID)
	if err != nil {
		return nil, err
	}

	level, intoLevel, progress := levelFor(points)
	return &dto.ResidentDashboard{
		Username:        user.Username,
		Points:          points,
		Level:           level,
		Badge:           badgeFor(level),
		PointsIntoLevel: intoLevel,
		PointsPerLevel:  pointsPerLevel,
		Progress:        progress,
		TotalRecycledKg: totalKg,
		TreesSaved:      int(totalKg.Div(decimal.NewFromInt(kgPerTree)).IntPart()),
		CO2PreventedKg:  int(totalKg.Mul(decimal.NewFromFloat(co2PerKg)).IntPart()),
	}, nil
}

// ── Leaderboard ───────────────────────────────────────────────────────────────

func (s *statsService) Leaderboard(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}
	profiles, err := s.profiles.TopByPoints(ctx, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]dto.LeaderboardEntry, len(profiles))
	for i, p := range profiles {
		username := ""
		if p.User != nil {
			username = p.User.Username
		}
		level, _, _ := levelFor(p.Points)
		entries[i] = dto.LeaderboardEntry{
			Rank:     i + 1,
			Username: username,
			Zone:     p.Zone,
			Points:   p.Points,
			Level:    level,
		}
	}
	return entries, nil
}

// ── AdminOverview ─────────────────────────────────────────────────────────────

const recentActivityLimit = 8

func (s *statsService) AdminOverview(ctx context.Context) (*dto.AdminOverview, error) {
	users, err := s.users.List(ctx, "", "")
	if err != nil {
		return nil, err
	}
	totalKg, err := s.pickups.TotalCompletedWeight(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.pickups.CountPending(ctx)
	if err != nil {
		return nil, err
	}
	byType, err := s.pickups.CountByWasteType(ctx)
	if err != nil {
		return nil, err
	}
	composition := make(map[string]int64, len(byType))
	for wt, n := range byType {
		composition[string(wt)] = n
	}

	all, err := s.pickups.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	n := len(all)
	if n > recentActivityLimit {
		n = recentActivityLimit
	}
	recent := make([]dto.ActivityRow, n)
	for i := 0; i < n; i++ {
		recent[i] = dto.ActivityRow{
			WasteType: string(all[i].WasteType),
			Status:    string(all[i].Status),
			CreatedAt: all[i].CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	return &dto.AdminOverview{
		TotalUsers:       len(users),
		TotalRecycledKg:  totalKg,
		PendingJobs:      pending,
		WasteComposition: composition,
		RecentActivity:   recent,
	}, nil
}

// ── ActivityReportXLSX ────────────────────────────────────────────────────────
// Builds the downloadable mission report: one sheet with every pickup,
// one with the waste composition summary.

func (s *statsService) ActivityReportXLSX(ctx context.Context) ([]byte, error) {
	all, err := s.pickups.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	byType, err := s.pickups.CountByWasteType(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const pickupSheet = "Pickups"
	f.SetSheetName("Sheet1", pickupSheet)

	headers := []string{"ID", "Resident", "Zone", "Waste Type", "Status", "Scheduled", "Weight (kg)", "Notes", "Created At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(pickupSheet, cell, h)
	}
	for rowIdx, p := range all {
		username, zone := "", ""
		if p.Resident != nil {
			username = p.Resident.Username
			if p.Resident.Profile != nil {
				zone = p.Resident.Profile.Zone
			}
		}
		values := []interface{}{
			p.ID.String(),
			username,
			zone,
			string(p.WasteType),
			string(p.Status),
			p.ScheduledDate.Format("2006-01-02"),
			p.WeightKg.InexactFloat64(),
			p.Notes,
			p.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(pickupSheet, cell, v)
		}
	}

	const summarySheet = "Waste Summary"
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}
	f.SetCellValue(summarySheet, "A1", "Waste Type")
	f.SetCellValue(summarySheet, "B1", "Pickups")
	row := 2
	for _, wt := range []model.WasteType{model.WasteRecyclable, model.WasteEWaste, model.WasteBulkItem, model.WasteGarden} {
		if n, ok := byType[wt]; ok {
			f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), string(wt))
			f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), n)
			row++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
