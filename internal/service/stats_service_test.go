package service_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"ecosort/internal/model"
	"ecosort/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildStatsSvc() (service.StatsService, *stubUserRepo, *stubProfileRepo, *stubPickupRepo) {
	userRepo := newStubUserRepo()
	profileRepo := newStubProfileRepo()
	pickupRepo := newStubPickupRepo()
	svc := service.NewStatsService(userRepo, profileRepo, pickupRepo)
	return svc, userRepo, profileRepo, pickupRepo
}

// ── Tests: ResidentDashboard ─────────────────────────────────────────────────

func TestResidentDashboard_Gamification(t *testing.T) {
	svc, userRepo, profileRepo, pickupRepo := buildStatsSvc()
	user := seedUser(userRepo, "aina", "secret123", model.RoleResident)
	profileRepo.profiles[user.ID] = &model.ResidentProfile{
		UserID: user.ID, Zone: "Zone A", Points: 1250,
	}
	done := seedPickup(pickupRepo, user.ID, model.StatusCompleted)
	done.WeightKg = decimal.NewFromInt(15)
	more := seedPickup(pickupRepo, user.ID, model.StatusCompleted)
	more.WeightKg = decimal.NewFromInt(10)

	dash, err := svc.ResidentDashboard(context.Background(), user.ID)
	require.NoError(t, err)

	assert.Equal(t, "aina", dash.Username)
	assert.Equal(t, 1250, dash.Points)
	assert.Equal(t, 3, dash.Level, "500 points per level")
	assert.Equal(t, 250, dash.PointsIntoLevel)
	assert.Equal(t, 500, dash.PointsPerLevel)
	assert.InDelta(t, 0.5, dash.Progress, 0.001)
	assert.Equal(t, "Gatherer", dash.Badge)
	assert.True(t, dash.TotalRecycledKg.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, 2, dash.TreesSaved, "10 kg per tree")
	assert.Equal(t, 62, dash.CO2PreventedKg, "25 kg * 2.5, truncated")
}

func TestResidentDashboard_FreshAccount(t *testing.T) {
	svc, userRepo, profileRepo, _ := buildStatsSvc()
	user := seedUser(userRepo, "newbie", "secret123", model.RoleResident)
	profileRepo.profiles[user.ID] = &model.ResidentProfile{UserID: user.ID, Zone: "Zone A"}

	dash, err := svc.ResidentDashboard(context.Background(), user.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, dash.Level)
	assert.Equal(t, "Rookie", dash.Badge)
	assert.Zero(t, dash.Progress)
	assert.Zero(t, dash.TreesSaved)
	assert.Zero(t, dash.CO2PreventedKg)
}

func TestResidentDashboard_MissingProfileIsZero(t *testing.T) {
	svc, userRepo, _, _ := buildStatsSvc()
	user := seedUser(userRepo, "rashid", "secret123", model.RoleCollector)

	dash, err := svc.ResidentDashboard(context.Background(), user.ID)
	require.NoError(t, err, "a profile-less account still gets a dashboard")
	assert.Equal(t, 0, dash.Points)
}

func TestResidentDashboard_UnknownUser(t *testing.T) {
	svc, _, _, _ := buildStatsSvc()

	_, err := svc.ResidentDashboard(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestResidentDashboard_BadgeTiers(t *testing.T) {
	cases := []struct {
		points int
		badge  string
	}{
		{0, "Rookie"},
		{600, "Gatherer"},
		{1999, "Gatherer"},
		{2000, "Master of Earth"},
		{2600, "Master of Earth"},
	}
	for _, tc := range cases {
		svc, userRepo, profileRepo, _ := buildStatsSvc()
		user := seedUser(userRepo, "aina", "secret123", model.RoleResident)
		profileRepo.profiles[user.ID] = &model.ResidentProfile{UserID: user.ID, Points: tc.points}

		dash, err := svc.ResidentDashboard(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, tc.badge, dash.Badge, "%d points", tc.points)
	}
}

// ── Tests: Leaderboard ───────────────────────────────────────────────────────

func TestLeaderboard_RanksByPoints(t *testing.T) {
	svc, _, profileRepo, _ := buildStatsSvc()
	top := seedProfile(profileRepo, 900)
	top.User = &model.User{Username: "aina"}
	mid := seedProfile(profileRepo, 400)
	mid.User = &model.User{Username: "farid"}
	low := seedProfile(profileRepo, 50)
	low.User = &model.User{Username: "mei"}

	entries, err := svc.Leaderboard(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "aina", entries[0].Username)
	assert.Equal(t, 900, entries[0].Points)
	assert.Equal(t, 2, entries[0].Level)
	assert.Equal(t, "Zone A", entries[0].Zone)
	assert.Equal(t, 3, entries[2].Rank)
	assert.Equal(t, "mei", entries[2].Username)
}

func TestLeaderboard_LimitBounds(t *testing.T) {
	svc, _, profileRepo, _ := buildStatsSvc()
	for i := 0; i < 12; i++ {
		p := seedProfile(profileRepo, (i+1)*10)
		p.User = &model.User{Username: fmt.Sprintf("resident%02d", i)}
	}

	entries, err := svc.Leaderboard(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, entries, 10, "out-of-range limit falls back to 10")

	entries, err = svc.Leaderboard(context.Background(), 101)
	require.NoError(t, err)
	assert.Len(t, entries, 10)

	entries, err = svc.Leaderboard(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

// ── Tests: AdminOverview ─────────────────────────────────────────────────────

func TestAdminOverview_Aggregates(t *testing.T) {
	svc, userRepo, _, pickupRepo := buildStatsSvc()
	seedUser(userRepo, "aina", "secret123", model.RoleResident)
	seedUser(userRepo, "rashid", "secret123", model.RoleCollector)
	seedUser(userRepo, "admin", "secret123", model.RoleAdmin)

	seedPickup(pickupRepo, uuid.New(), model.StatusPending)
	seedPickup(pickupRepo, uuid.New(), model.StatusPending)
	done := seedPickup(pickupRepo, uuid.New(), model.StatusCompleted)
	done.WeightKg = decimal.NewFromFloat(4.5)
	done.WasteType = model.WasteGarden

	overview, err := svc.AdminOverview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, overview.TotalUsers)
	assert.EqualValues(t, 2, overview.PendingJobs)
	assert.True(t, overview.TotalRecycledKg.Equal(decimal.NewFromFloat(4.5)))
	assert.EqualValues(t, 2, overview.WasteComposition["Recyclable"])
	assert.EqualValues(t, 1, overview.WasteComposition["Garden Waste"])
	assert.Len(t, overview.RecentActivity, 3)
}

func TestAdminOverview_RecentActivityCapped(t *testing.T) {
	svc, _, _, pickupRepo := buildStatsSvc()
	for i := 0; i < 10; i++ {
		seedPickup(pickupRepo, uuid.New(), model.StatusPending)
	}

	overview, err := svc.AdminOverview(context.Background())
	require.NoError(t, err)
	assert.Len(t, overview.RecentActivity, 8)
}

// ── Tests: ActivityReportXLSX ────────────────────────────────────────────────

func TestActivityReportXLSX_Layout(t *testing.T) {
	svc, _, _, pickupRepo := buildStatsSvc()
	job := seedPickup(pickupRepo, uuid.New(), model.StatusCompleted)
	job.WeightKg = decimal.NewFromFloat(2.5)
	job.Notes = "side gate"
	attachResident(job, "aina", "Zone A")

	raw, err := svc.ActivityReportXLSX(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	assert.Contains(t, f.GetSheetList(), "Pickups")
	assert.Contains(t, f.GetSheetList(), "Waste Summary")

	header, err := f.GetCellValue("Pickups", "A1")
	require.NoError(t, err)
	assert.Equal(t, "ID", header)

	resident, err := f.GetCellValue("Pickups", "B2")
	require.NoError(t, err)
	assert.Equal(t, "aina", resident)
	zone, err := f.GetCellValue("Pickups", "C2")
	require.NoError(t, err)
	assert.Equal(t, "Zone A", zone)
	status, err := f.GetCellValue("Pickups", "E2")
	require.NoError(t, err)
	assert.Equal(t, "Completed", status)
	weight, err := f.GetCellValue("Pickups", "G2")
	require.NoError(t, err)
	assert.Equal(t, "2.5", weight)

	wasteType, err := f.GetCellValue("Waste Summary", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Recyclable", wasteType)
	count, err := f.GetCellValue("Waste Summary", "B2")
	require.NoError(t, err)
	assert.Equal(t, "1", count)
}
