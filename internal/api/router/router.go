package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"routine-hub/backend/config"
	"routine-hub/backend/internal/api/handler"
	"routine-hub/backend/internal/api/middleware"
	"routine-hub/backend/pkg/redis"
	"routine-hub/backend/pkg/validate"
)

// Deps 路由装配所需的外部依赖
type Deps struct {
	Redis    *redis.Client        // 可为 nil：导入限流降级放行
	Registry *prometheus.Registry // 可为 nil：不暴露 /metrics
	Online   func() bool          // 可为 nil：健康检查不报告远程连通性
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, deps Deps, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	validate.RegisterGin()

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	if deps.Registry != nil {
		r.Use(middleware.HTTPMetrics(deps.Registry))
	}

	// ── 健康检查与指标 ──
	r.GET("/health", func(c *gin.Context) {
		body := gin.H{"status": "ok"}
		if deps.Online != nil {
			body["remote_online"] = deps.Online()
		}
		c.JSON(http.StatusOK, body)
	})
	if deps.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 课表查询
		routine := v1.Group("/routine")
		{
			routine.GET("/state", h.Routine.GetState)
			routine.POST("/sync", h.Routine.Sync)
			routine.POST("/welcome/dismiss", h.Routine.DismissWelcome)
			routine.GET("/daily", h.Routine.GetDaily)
			routine.GET("/weekly", h.Routine.GetWeekly)
			routine.GET("/courses", h.Routine.GetCourses)
			routine.GET("/teachers", h.Routine.GetTeachers)
		}

		// 管理端写入
		admin := v1.Group("/admin")
		admin.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
		{
			admin.POST("/classes", h.Admin.CreateClass)
			admin.POST("/metadata", h.Admin.PublishMetadata)

			importLimit := middleware.RateLimit(deps.Redis, "import", cfg.Import.RateLimit, cfg.Import.RateWindow, logger)
			admin.POST("/import", importLimit, h.Import.ImportText)
			admin.POST("/import/ics", importLimit, h.Import.ImportICS)
		}

		// 导出
		export := v1.Group("/export")
		{
			export.GET("/weekly.xlsx", h.Export.ExportWeeklyExcel)
			export.GET("/routine.ics", h.Export.ExportCalendar)
		}
	}

	return r
}
