package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/photon-webhook/internal/config"
	"github.com/wfunc/photon-webhook/internal/middleware"
	"github.com/wfunc/photon-webhook/internal/repository"
	"github.com/wfunc/photon-webhook/internal/utils"
	"github.com/wfunc/photon-webhook/internal/webhook"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Router API路由器
type Router struct {
	engine         *gin.Engine
	db             *gorm.DB
	webhookHandler *WebhookHandler
	adminHandler   *AdminHandler
	authMiddleware *middleware.AuthMiddleware
	log            *zap.Logger
}

// NewRouter 创建路由器
func NewRouter(db *gorm.DB, cfg *config.Config, log *zap.Logger) *Router {
	// 创建Gin引擎
	engine := gin.New()

	// 全局中间件
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())
	engine.Use(middleware.RequestID())

	// 仓储层
	groups := repository.NewSharedGroupRepository(db)
	events := repository.NewTitleEventRepository(db)

	// 核心组件
	validator := webhook.NewValidator(events)
	rooms := webhook.NewRoomManager(groups, events, &cfg.Title)

	// 处理器
	webhookHandler := NewWebhookHandler(validator, rooms, events)
	adminHandler := NewAdminHandler(rooms, events)

	// 认证中间件
	jwtManager := utils.NewJWTManager(cfg.Security.JWT.Secret,
		time.Duration(cfg.Security.JWT.ExpireHours)*time.Hour)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, cfg.Security.WebhookSecret)

	router := &Router{
		engine:         engine,
		db:             db,
		webhookHandler: webhookHandler,
		adminHandler:   adminHandler,
		authMiddleware: authMiddleware,
		log:            log,
	}

	// 设置路由
	router.setupRoutes()

	return router
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	// 健康检查
	r.engine.GET("/health", r.healthCheck)

	// API v1路由组
	v1 := r.engine.Group("/api/v1")
	{
		// 房间服务器Webhook回调（需要共享密钥+玩家令牌）
		photon := v1.Group("/photon")
		photon.Use(r.authMiddleware.RequireWebhookAuth())
		{
			photon.POST("/room-created", r.webhookHandler.RoomCreated)
			photon.POST("/room-joined", r.webhookHandler.RoomJoined)
			photon.POST("/room-left", r.webhookHandler.RoomLeft)
			photon.POST("/room-closed", r.webhookHandler.RoomClosed)
			photon.POST("/room-property-updated", r.webhookHandler.RoomPropertyUpdated)
			photon.POST("/room-event-raised", r.webhookHandler.RoomEventRaised)
		}

		// 管理员路由（需要管理员权限）
		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.RequireRole("admin"))
		{
			admin.GET("/rooms/:gameId", r.adminHandler.GetRoom)
			admin.DELETE("/rooms/:gameId", r.adminHandler.DeleteRoom)
			admin.GET("/players/:playerId/rooms", r.adminHandler.GetPlayerRooms)
			admin.GET("/events", r.adminHandler.GetEvents)
		}
	}

	// Swagger文档路由（仅 -tags swagger 构建启用）
	registerSwaggerRoutes(r.engine)

	// 404处理
	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"code":    "NOT_FOUND",
			"message": "接口不存在",
		})
	})
}

// healthCheck 健康检查
func (r *Router) healthCheck(c *gin.Context) {
	// 检查数据库连接
	sqlDB, err := r.db.DB()
	if err != nil {
		c.JSON(500, gin.H{
			"status":  "unhealthy",
			"message": "数据库连接失败",
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(500, gin.H{
			"status":  "unhealthy",
			"message": "数据库ping失败",
		})
		return
	}

	c.JSON(200, gin.H{
		"status":  "healthy",
		"message": "服务运行正常",
	})
}

// Run 运行服务器
func (r *Router) Run(addr string) error {
	r.log.Info("Starting API server", zap.String("address", addr))
	return r.engine.Run(addr)
}

// GetEngine 获取Gin引擎（用于测试）
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
