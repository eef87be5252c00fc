package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipe-chat/internal/api"
	"recipe-chat/internal/core/history"
	"recipe-chat/internal/core/recommend"
	"recipe-chat/internal/core/session"
	"recipe-chat/internal/infrastructure/config"
	"recipe-chat/internal/pkg/common"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 載入 .env
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}

	// 載入設定
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("corpus_path", cfg.Corpus.Path),
		zap.String("session_backend", cfg.Session.Backend),
		zap.Bool("history_enabled", cfg.History.Enabled),
	)

	// 載入語料並建排序引擎；索引建好之後唯讀
	records, err := recommend.LoadCorpus(cfg.Corpus.Path, cfg.Corpus.FetchTimeout)
	if err != nil {
		common.LogError("Failed to load corpus", zap.Error(err))
		os.Exit(1)
	}
	rec := recommend.NewRecommender(records)

	// 初始化對話狀態存放
	var store session.Store
	switch cfg.Session.Backend {
	case "redis":
		store, err = session.NewRedisStore(cfg.Session.RedisAddr, cfg.Session.RedisPassword, cfg.Session.RedisDB, cfg.Session.TTL)
		if err != nil {
			common.LogError("Failed to initialize redis session store", zap.Error(err))
			os.Exit(1)
		}
	default:
		store = session.NewMemoryStore(cfg.Session.TTL, 10*time.Minute)
	}
	sessions := session.NewManager(store)
	defer sessions.Close()

	// 初始化聊天記錄
	var hist *history.DB
	if cfg.History.Enabled {
		hist, err = history.Open(cfg.History.Path)
		if err != nil {
			common.LogError("Failed to open history database", zap.Error(err))
			os.Exit(1)
		}
		defer hist.Close()
	}

	// 設置路由
	router, err := api.SetupRouter(cfg, rec, sessions, hist)
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("corpus_recipes", rec.Size()),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogError("Failed to start server",
				zap.Error(err),
			)
			os.Exit(1)
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown",
			zap.Error(err),
		)
		os.Exit(1)
	}

	common.LogInfo("Server exited")
}
