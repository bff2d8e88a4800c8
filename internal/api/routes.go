package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	_ "github.com/mautops/request-gin/docs" // 导入生成的 docs 包
	"github.com/mautops/request-gin/internal/auth"
	"github.com/mautops/request-gin/internal/config"
	"github.com/mautops/request-gin/internal/service"
	"github.com/mautops/request-gin/internal/websocket"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

const apiPrefix = "/api/v1"

// RouterDeps 路由依赖
type RouterDeps struct {
	Config            *config.Config
	Logger            *logrus.Logger
	DB                *gorm.DB
	Resolver          auth.PrincipalResolver
	OpenFGA           HealthChecker // 未启用时为 nil
	Hub               *websocket.Hub
	Tracing           *Tracing
	RequestService    service.RequestService
	StatisticsService service.StatisticsService
}

// SetupRoutes 配置路由
func SetupRoutes(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	router := gin.New()

	// 中间件
	router.Use(ErrorHandlerMiddleware(deps.Logger))
	router.Use(RequestIDMiddleware())
	if deps.Tracing.Enabled() {
		router.Use(deps.Tracing.Middleware())
	}
	router.Use(RequestLogMiddleware(deps.Logger))
	router.Use(SecurityHeadersMiddleware())
	router.Use(CORSMiddleware(cfg.CORS))

	// 健康检查
	healthController := NewHealthController(deps.DB, deps.OpenFGA)
	router.GET("/health", healthController.Check)

	// Prometheus 指标端点
	router.GET("/metrics", MetricsHandler)

	// WebSocket 路由
	if deps.Hub != nil {
		router.GET("/ws/requests", websocket.Handler(deps.Hub, deps.Resolver, cfg.Auth.CookieName, cfg.CORS.AllowedOrigins, deps.Logger))
	}

	// Swagger UI 路由
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	requestController := NewRequestController(deps.RequestService, deps.Logger)
	statisticsController := NewStatisticsController(deps.StatisticsService, deps.Logger)

	// API v1 路由组
	v1 := router.Group(apiPrefix)
	v1.Use(auth.AuthMiddleware(deps.Resolver, cfg.Auth.CookieName))
	if cfg.RateLimit.Enabled {
		v1.Use(RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}
	{
		requests := v1.Group("/requests")
		{
			requests.GET("", requestController.List)
			requests.POST("", requestController.Create)
			requests.PATCH("", requestController.Update)
			requests.GET("/:id", requestController.Get)
			requests.PATCH("/:id", requestController.UpdateByID)
			requests.GET("/:id/history", requestController.History)
			requests.GET("/:id/transitions", requestController.Transitions)
		}

		v1.GET("/statistics/requests", statisticsController.Summary)
	}

	// 未匹配的路由返回 JSON 格式的 404
	router.NoRoute(func(c *gin.Context) {
		Error(c, http.StatusNotFound, "route not found", "the requested route does not exist")
	})

	return router
}
