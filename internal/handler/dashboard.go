package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"ecosort/internal/dto"
	"ecosort/internal/middleware"
	"ecosort/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	leaderboardCacheTTL = 60 * time.Second
	leaderboardMaxLimit = 100
)

// DashboardHandler serves gamification views: the resident's own panel
// and the community leaderboard. The leaderboard is read on every page
// load, so it is served cache-aside from Redis.
type DashboardHandler struct {
	stats service.StatsService
	rdb   *redis.Client
}

func NewDashboardHandler(stats service.StatsService, rdb *redis.Client) *DashboardHandler {
	return &DashboardHandler{stats: stats, rdb: rdb}
}

// Me godoc
// @Summary Personal dashboard
// @Description Points, level, badge, progress to next level and environmental impact figures.
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ResidentDashboard
// @Router /v1/dashboard/me [get]
func (h *DashboardHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	residentID, _ := uuid.Parse(claims.UserID)

	resp, err := h.stats.ResidentDashboard(c.Request.Context(), residentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Leaderboard godoc
// @Summary Community leaderboard
// @Description Top residents ranked by points. Cached for 60s.
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Rows to return (default 10, max 100)"
// @Success 200 {array} dto.LeaderboardEntry
// @Router /v1/dashboard/leaderboard [get]
func (h *DashboardHandler) Leaderboard(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > leaderboardMaxLimit {
		limit = leaderboardMaxLimit
	}

	ctx := c.Request.Context()
	cacheKey := "leaderboard:" + strconv.Itoa(limit)

	// 1. Try Redis cache
	if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		var entries []dto.LeaderboardEntry
		if jsonErr := json.Unmarshal(cached, &entries); jsonErr == nil {
			c.JSON(http.StatusOK, entries)
			return
		}
	}

	// 2. Cache miss — query DB
	entries, err := h.stats.Leaderboard(ctx, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	// 3. Populate cache — best effort, ignore errors
	if b, jsonErr := json.Marshal(entries); jsonErr == nil {
		_ = h.rdb.Set(context.Background(), cacheKey, b, leaderboardCacheTTL).Err()
	}

	c.JSON(http.StatusOK, entries)
}
