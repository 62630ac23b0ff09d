package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lbestle/go-shareable/internal/config"
	"github.com/lbestle/go-shareable/internal/handlers"
	"github.com/lbestle/go-shareable/internal/middlewares"
	"github.com/lbestle/go-shareable/internal/models"
	"github.com/lbestle/go-shareable/internal/pkg/xerr"
)

// InitRouter 注册所有路由
// 根路径下的 /:id 是对外的下载入口，其余管理接口都在 /api/v1 下
func InitRouter(authHandler *handlers.AuthHandler, itemHandler *handlers.ItemHandler, inboxHandler *handlers.InboxHandler, users models.Users, cfg *config.Config) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	// Health Check 路由
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// 对外的下载入口，不需要认证
	router.GET("/:id", itemHandler.Download)

	v1 := router.Group("/api/v1")
	{
		// 认证相关路由 (无需认证)
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
		}

		// 管理接口先解析身份，再按路由要求权限
		authenticated := v1.Group("/")
		authenticated.Use(middlewares.Authenticate(cfg, users))

		inboxGroup := authenticated.Group("/inbox")
		{
			inboxGroup.GET("", middlewares.RequirePermission(models.PermUpload, models.PermPublish), inboxHandler.List)
			inboxGroup.POST("", middlewares.RequirePermission(models.PermUpload), inboxHandler.Upload)
			inboxGroup.POST("/:name/publish", middlewares.RequirePermission(models.PermPublish), inboxHandler.Publish)
			inboxGroup.DELETE("/:name", middlewares.RequirePermission(models.PermPublish), inboxHandler.Delete)
		}

		itemGroup := authenticated.Group("/items")
		{
			itemGroup.GET("", middlewares.RequirePermission(models.PermMeta), itemHandler.List)
			itemGroup.GET("/:id", middlewares.RequirePermission(models.PermMeta), itemHandler.Get)
			itemGroup.DELETE("/:id", middlewares.RequirePermission(models.PermDelete), itemHandler.Delete)
		}

		maintenanceGroup := authenticated.Group("/maintenance")
		{
			maintenanceGroup.POST("/cleanup", middlewares.RequirePermission(models.PermDelete), itemHandler.CleanUp)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		xerr.Error(c, http.StatusNotFound, xerr.CodeRouteNotFound, "Route not found")
	})

	return router
}
