package container

import (
	"context"
	"fmt"
	"time"

	"github.com/mautops/request-gin/internal/auth"
	"github.com/mautops/request-gin/internal/config"
	"github.com/mautops/request-gin/internal/database"
	"github.com/mautops/request-gin/internal/integration"
	"github.com/mautops/request-gin/internal/metrics"
	"github.com/mautops/request-gin/internal/repository"
	"github.com/mautops/request-gin/internal/service"
	"github.com/mautops/request-gin/internal/websocket"
	"github.com/mautops/request-gin/internal/workflow"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	permissionCacheTTL = 30 * time.Second
	collectorInterval  = 30 * time.Second
)

// Container 依赖注入容器
// 管理所有应用依赖,包括数据库、服务、客户端等
type Container struct {
	cfg    *config.Config
	logger *logrus.Logger

	db           *gorm.DB
	resolver     auth.PrincipalResolver
	fgaClient    *auth.OpenFGAClient
	hub          *websocket.Hub
	eventHandler *integration.EventHandler
	collector    *metrics.Collector

	requestRepo       repository.RequestRepository
	directoryRepo     repository.DirectoryRepository
	requestService    service.RequestService
	statisticsService service.StatisticsService
}

// NewContainer 创建依赖注入容器
// 根据配置初始化所有依赖组件
func NewContainer(cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	// 默认重试 3 次，初始间隔 1 秒，指数退避
	db, err := database.ConnectWithRetry(cfg.Database, 3, time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	var fgaClient *auth.OpenFGAClient
	if cfg.OpenFGA.Enabled {
		fgaClient, err = auth.NewOpenFGAClientWithRetry(cfg.OpenFGA.APIURL, cfg.OpenFGA.StoreID, cfg.OpenFGA.ModelID, 3, time.Second)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenFGA client: %w", err)
		}
	}

	return NewContainerWithDB(cfg, db, fgaClient, logger)
}

// NewContainerWithDB 基于已有连接组装其余依赖
// fgaClient 为 nil 时不写关系镜像
func NewContainerWithDB(cfg *config.Config, db *gorm.DB, fgaClient *auth.OpenFGAClient, logger *logrus.Logger) (*Container, error) {
	resolver, err := newResolver(cfg.Auth)
	if err != nil {
		return nil, err
	}

	requestRepo := repository.NewRequestRepository(db)
	directoryRepo := repository.NewDirectoryRepository(db)

	hub := websocket.NewHub()
	eventHandler := integration.NewEventHandler(repository.NewEventRepository(db), hub, cfg.Webhooks, logger)

	var relations auth.RelationStore
	opts := []workflow.Option{
		workflow.WithMaxAttempts(cfg.Workflow.MaxAttempts),
		workflow.WithLogger(logger),
		workflow.WithOutbox(eventHandler),
	}
	if fgaClient != nil {
		cached := auth.NewCachedRelationStore(fgaClient, auth.NewPermissionCache(permissionCacheTTL))
		relations = cached
		opts = append(opts, workflow.WithViewGrant(service.ViewGrantFromRelations(cached)))
	}
	engine := workflow.NewEngine(requestRepo, directoryRepo, opts...)

	auditLogSvc := service.NewAuditLogService(repository.NewAuditLogRepository(db))
	requestService := service.NewRequestService(
		engine,
		repository.NewStateHistoryRepository(db),
		auditLogSvc,
		relations,
		logger,
	)

	return &Container{
		cfg:               cfg,
		logger:            logger,
		db:                db,
		resolver:          resolver,
		fgaClient:         fgaClient,
		hub:               hub,
		eventHandler:      eventHandler,
		collector:         metrics.NewCollector(db, requestRepo, collectorInterval, logger),
		requestRepo:       requestRepo,
		directoryRepo:     directoryRepo,
		requestService:    requestService,
		statisticsService: service.NewStatisticsService(requestRepo),
	}, nil
}

// newResolver 按认证模式创建身份解析器
func newResolver(cfg config.AuthConfig) (auth.PrincipalResolver, error) {
	switch cfg.Mode {
	case "hmac":
		return auth.NewHMACTokenValidator(cfg.JWTSecret), nil
	case "keycloak":
		return auth.NewKeycloakTokenValidator(cfg.KeycloakIssuer), nil
	}
	return nil, fmt.Errorf("unsupported auth mode %q", cfg.Mode)
}

// Start 启动后台组件
func (c *Container) Start(ctx context.Context) {
	go c.hub.Run()
	c.eventHandler.Start(ctx)
	c.collector.Start()
}

// DB 获取数据库连接
func (c *Container) DB() *gorm.DB {
	return c.db
}

// Resolver 获取身份解析器
func (c *Container) Resolver() auth.PrincipalResolver {
	return c.resolver
}

// OpenFGAClient 获取 OpenFGA 客户端,未启用时为 nil
func (c *Container) OpenFGAClient() *auth.OpenFGAClient {
	return c.fgaClient
}

// Hub 获取 WebSocket Hub
func (c *Container) Hub() *websocket.Hub {
	return c.hub
}

// EventHandler 获取事件处理器
func (c *Container) EventHandler() *integration.EventHandler {
	return c.eventHandler
}

// DirectoryRepository 获取目录仓储
func (c *Container) DirectoryRepository() repository.DirectoryRepository {
	return c.directoryRepo
}

// RequestService 获取服务请求服务
func (c *Container) RequestService() service.RequestService {
	return c.requestService
}

// StatisticsService 获取统计服务
func (c *Container) StatisticsService() service.StatisticsService {
	return c.statisticsService
}

// Close 关闭容器,清理资源
func (c *Container) Close() error {
	c.collector.Stop()
	c.eventHandler.Stop()
	c.hub.Stop()

	if c.db != nil {
		sqlDB, err := c.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
