package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/DipuTony/trulyhelp-portal/config"
	"github.com/DipuTony/trulyhelp-portal/internal/donation"
	"github.com/DipuTony/trulyhelp-portal/internal/export"
	"github.com/DipuTony/trulyhelp-portal/internal/gateway"
	"github.com/DipuTony/trulyhelp-portal/internal/reports"
	"github.com/DipuTony/trulyhelp-portal/internal/session"
	"github.com/DipuTony/trulyhelp-portal/middleware"
)

// Setup wires every route group onto the router. The session store comes in
// from main because its durable storage is constructed there.
func Setup(r *gin.Engine, cfg *config.Config, sessions *session.Store) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Content-Length", "X-Requested-With", "Cache-Control", "Pragma"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition", "Cache-Control", "Pragma", "Expires"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimiter())

	// ========== Session ==========
	sessionHandler := session.NewHandler(sessions)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", sessionHandler.Login)
		authGroup.POST("/logout", sessionHandler.Logout)
		authGroup.POST("/resend-verification", sessionHandler.ResendVerification)
		authGroup.GET("/session", sessionHandler.Session)
	}

	// ========== Donations ==========
	gw := gateway.New(cfg.APIBaseURL, sessions)
	donationStore := donation.NewStore(gw)
	donationHandler := donation.NewHandler(donationStore)

	donationGroup := api.Group("/donations")
	{
		donationGroup.GET("", middleware.RequireRole(sessions, session.RoleAdmin), donationHandler.List)
		donationGroup.GET("/mine", middleware.RequireRole(sessions, session.RoleDonor), donationHandler.Mine)
		donationGroup.POST("/:id/verify", middleware.RequireRole(sessions, session.RoleAdmin), donationHandler.Verify)
	}

	// ========== Reports ==========
	reportService := reports.NewService(gw)
	reportHandler := reports.NewHandler(reportService, export.NewEngine(), export.SnapshotPDF)

	reportGroup := api.Group("/reports")
	{
		adminOnly := middleware.RequireRole(sessions, session.RoleAdmin)
		reportGroup.GET("", adminOnly, reportHandler.Generate)
		reportGroup.GET("/10bd", adminOnly, reportHandler.Raw10BD)
		reportGroup.POST("/snapshot",
			middleware.RequireAnyRole(sessions, session.RoleAdmin, session.RoleVolunteer),
			reportHandler.Snapshot)
	}
}
