package app

import (
	"studybuddy_backend/docs"
	"studybuddy_backend/internal/middleware"
	"studybuddy_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, s *services, repos *repositories) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	api.Use(middleware.IdentityMiddleware(s.identity, repos.user))
	{
		api.GET("/health", c.health.HealthCheck)

		// 活动流水
		api.POST("/activities", c.activity.LogActivity)
		api.GET("/activities", c.activity.ListActivities)

		// 徽章的外部授予和单徽章评估
		api.POST("/badges/evaluate/:id", c.badge.CheckBadge)
		api.POST("/badges/leaderboard", c.badge.LeaderboardAward)

		// 按用户的读写
		users := api.Group("/users/:userId")
		{
			users.GET("/activities/stats", c.activity.ActivityStats)
			users.GET("/streak", c.streak.GetStreak)
			users.POST("/streak/recompute", c.streak.RecomputeStreak)
			users.GET("/badges", c.badge.ListBadges)
			users.POST("/badges/check", c.badge.CheckBadges)
			users.GET("/badges/pending", c.badge.PendingNotifications)
			users.POST("/badges/acknowledge", c.badge.AcknowledgeNotifications)
		}
	}

	// 运营接口
	admin := router.Group("/api/admin")
	{
		admin.POST("/badges/award", c.badge.ForceAward)
	}
}
