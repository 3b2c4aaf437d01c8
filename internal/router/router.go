package router

import (
	"time"

	"ecosort/internal/config"
	"ecosort/internal/handler"
	"ecosort/internal/middleware"
	"ecosort/internal/repository"
	"ecosort/internal/service"
	"ecosort/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	pickupRepo := repository.NewPickupRepository(db)
	rewardRepo := repository.NewRewardRepository(db)
	redemptionRepo := repository.NewRedemptionRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, profileRepo, cfg)
	ledgerSvc := service.NewLedgerService(profileRepo, rewardRepo, redemptionRepo, dispatcher)
	pickupSvc := service.NewPickupService(pickupRepo, profileRepo, ledgerSvc)
	rewardSvc := service.NewRewardService(rewardRepo)
	statsSvc := service.NewStatsService(userRepo, profileRepo, pickupRepo)
	adminSvc := service.NewAdminService(userRepo, pickupRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	pickupsH := handler.NewPickupsHandler(pickupSvc)
	rewardsH := handler.NewRewardsHandler(rewardSvc)
	redemptionsH := handler.NewRedemptionsHandler(ledgerSvc)
	dashboardH := handler.NewDashboardHandler(statsSvc, rdb)
	adminH := handler.NewAdminHandler(adminSvc, statsSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/register", authH.Register)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: Resident, Collector, Admin — declared per-endpoint
		v1.POST("/pickups", middleware.RequireRole("Resident"), pickupsH.Create)
		v1.GET("/pickups/mine", middleware.RequireRole("Resident"), pickupsH.ListMine)
		v1.GET("/pickups/pending", middleware.RequireRole("Collector", "Admin"), pickupsH.ListPending)
		v1.GET("/pickups/manifest", middleware.RequireRole("Collector", "Admin"), pickupsH.Manifest)
		v1.PUT("/pickups/:id/complete", middleware.RequireRole("Collector"), pickupsH.Complete)
		v1.PUT("/pickups/:id/report-issue", middleware.RequireRole("Collector"), pickupsH.ReportIssue)

		// Catalog — residents browse, admins manage
		v1.GET("/rewards", rewardsH.List)
		rewards := v1.Group("/rewards", middleware.RequireRole("Admin"))
		{
			rewards.POST("", rewardsH.Create)
			rewards.PUT("/:id", rewardsH.Update)
			rewards.DELETE("/:id", rewardsH.Retire)
		}

		v1.POST("/redemptions", middleware.RequireRole("Resident"), redemptionsH.Redeem)
		v1.GET("/redemptions", middleware.RequireRole("Resident"), redemptionsH.History)
		v1.GET("/points/balance", middleware.RequireRole("Resident"), redemptionsH.Balance)

		v1.GET("/dashboard/me", middleware.RequireRole("Resident"), dashboardH.Me)
		v1.GET("/dashboard/leaderboard", dashboardH.Leaderboard)

		admin := v1.Group("/admin", middleware.RequireRole("Admin"))
		{
			admin.GET("/users", adminH.ListUsers)
			admin.PUT("/users/:id/zone", adminH.AssignZone)
			admin.GET("/pickups", adminH.ListAllPickups)
			admin.GET("/overview", adminH.Overview)
			admin.GET("/reports/activity", adminH.ActivityReport)
			admin.POST("/reset", adminH.ResetPickups)
		}
	}

	// Swagger UI — only enabled outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
