package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"estron-track/backend/config"
	"estron-track/backend/internal/api/handler"
	"estron-track/backend/internal/api/middleware"
	"estron-track/backend/pkg/jwt"
	"estron-track/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetMe)
			authorized.PUT("/auth/me", h.Auth.UpdateMe)

			// 生产记录模块
			entries := authorized.Group("/entries")
			{
				entries.POST("", h.Entry.Create)
				entries.GET("", h.Entry.List)
				entries.PUT("/:id", h.Entry.Update)
				entries.DELETE("/:id", h.Entry.Delete)
			}

			// 每日补充信息模块
			supplementary := authorized.Group("/supplementary")
			{
				supplementary.PUT("", h.Supplementary.Upsert)
				supplementary.GET("", h.Supplementary.Get)
			}

			// 定额模块
			quotas := authorized.Group("/quotas")
			{
				quotas.GET("", h.Quota.ListSettings)
				quotas.GET("/selected", h.Quota.ListSelected)
				quotas.POST("/selected", h.Quota.Select)
				quotas.PUT("/selected/order", h.Quota.Reorder)
				quotas.DELETE("/selected/:code", h.Quota.Unselect)
				quotas.GET("/:code", h.Quota.GetSetting)
			}

			// 统计模块
			statistics := authorized.Group("/statistics")
			{
				statistics.GET("/daily", h.Statistics.Daily)
				statistics.GET("/week", h.Statistics.Week)
				statistics.GET("/month", h.Statistics.Month)
				statistics.GET("/stream", h.Stream.Stream)
			}

			// 财月日历模块
			calendar := authorized.Group("/calendar")
			{
				calendar.GET("/month", h.Calendar.MonthPeriod)
				calendar.GET("/weeks", h.Calendar.WeekInfo)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/excel", h.Export.ExportExcel)
				export.GET("/calendar", h.Export.ExportCalendar)
			}
		}
	}

	return r
}
