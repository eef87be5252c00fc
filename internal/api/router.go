package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	chatHandler "recipe-chat/internal/api/handlers/chat"
	"recipe-chat/internal/api/handlers/health"
	"recipe-chat/internal/api/middleware"
	"recipe-chat/internal/core/dialogue"
	"recipe-chat/internal/core/history"
	"recipe-chat/internal/core/recommend"
	"recipe-chat/internal/core/session"
	"recipe-chat/internal/infrastructure/config"
	"recipe-chat/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 單輪對話是純計算，逾時抓寬裕即可
	timeoutDuration = 15 * time.Second
	// 請求體大小限制 (1MB)，聊天訊息用不到更多
	maxBodySize = 1 << 20
)

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, rec *recommend.Recommender, sessions *session.Manager, hist *history.DB) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New()) // 自動生成請求 ID

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(maxBodySize))

	// 限流與去重
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	router.Use(middleware.Deduplication(cfg.DedupWindow))

	if rec == nil || sessions == nil {
		common.LogError("Core services missing",
			zap.Bool("recommender_initialized", rec != nil),
			zap.Bool("session_manager_initialized", sessions != nil),
		)
		return nil, fmt.Errorf("failed to setup router: core services missing")
	}

	// 對話引擎本身無狀態，整個服務共用一個
	engine := dialogue.New(cfg.Chat.FuzzyCutoff)
	handler := chatHandler.NewHandler(sessions, rec, engine, hist, cfg.Corpus.TopK)

	// 全局中間件：設置超時與上下文
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Set("config", cfg)
		c.Set("corpus_size", rec.Size())

		c.Next()

		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
				zap.Duration("timeout", timeoutDuration),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  common.ErrCodeRequestTimeout,
			})
			c.Abort()
			return
		}
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	{
		api.POST("/chat", handler.HandleChat)

		sessionGroup := api.Group("/sessions")
		{
			sessionGroup.POST("", handler.HandleCreateSession)
			sessionGroup.GET("", handler.HandleListSessions)
			sessionGroup.GET("/:sid/messages", handler.HandleGetMessages)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.Int("corpus_recipes", rec.Size()),
		zap.Bool("history_enabled", hist != nil),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
