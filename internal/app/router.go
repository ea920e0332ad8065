package app

import (
	"kindergarten_backend/docs"
	"kindergarten_backend/internal/middleware"
	"kindergarten_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, s *services) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	{
		api.GET("/health", c.health.HealthCheck)
	}

	a.registerProgressRoutes(api, c, s)
}

func (a *App) registerProgressRoutes(api *gin.RouterGroup, c *controllers, s *services) {
	progress := api.Group("/progress")
	progress.Use(middleware.SelectionScope(s.progress.Selections))
	{
		progress.GET("/groups", c.progress.ListGroups)
		progress.POST("/records", c.progress.SaveRecord)

		// 个人视图
		progress.GET("/children/:childId", c.progress.GetChildProgress)
		progress.GET("/children/:childId/index", c.progress.GetChildIndex)
		progress.GET("/children/:childId/chart.png", c.progress.GetChildChart)
		progress.POST("/children/:childId/chart/export", c.progress.ExportChildChart)
		progress.POST("/children/:childId/reload", c.progress.ReloadChild)

		// 班级视图
		progress.GET("/groups/:groupId", c.progress.GetGroupProgress)
		progress.GET("/groups/:groupId/averages", c.progress.GetGroupAverages)

		// 全园视图
		progress.GET("/org", c.progress.GetOrgProgress)
		progress.GET("/org/averages", c.progress.GetOrgAverages)
	}
}
