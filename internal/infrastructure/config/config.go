package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig       `mapstructure:"app"`
	Server      ServerConfig    `mapstructure:"server"`
	Corpus      CorpusConfig    `mapstructure:"corpus"`
	Session     SessionConfig   `mapstructure:"session"`
	History     HistoryConfig   `mapstructure:"history"`
	Chat        ChatConfig      `mapstructure:"chat"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	DedupWindow time.Duration   `mapstructure:"dedup_window"`
	LogLevel    string          `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env      string `mapstructure:"env"`
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	Version  string `mapstructure:"version"`
	Name     string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// CorpusConfig 食譜語料設定；Path 可以是本機檔案或 http(s) URL
type CorpusConfig struct {
	Path         string        `mapstructure:"path"`
	TopK         int           `mapstructure:"top_k"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

// SessionConfig 對話狀態存放設定
type SessionConfig struct {
	Backend       string        `mapstructure:"backend"` // memory | redis
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl"`
}

// HistoryConfig 聊天記錄設定
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// ChatConfig 對話引擎設定
type ChatConfig struct {
	FuzzyCutoff float64 `mapstructure:"fuzzy_cutoff"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// 加載 .env 文件（允許不存在）
	_ = godotenv.Load()

	// 設定預設值
	setDefaults()

	// 設定環境變數前綴
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 綁定環境變量
	viper.BindEnv("corpus.path", "CORPUS_PATH")
	viper.BindEnv("corpus.top_k", "CORPUS_TOP_K")
	viper.BindEnv("session.backend", "SESSION_BACKEND")
	viper.BindEnv("session.redis_addr", "REDIS_ADDR")
	viper.BindEnv("session.redis_password", "REDIS_PASSWORD")
	viper.BindEnv("session.redis_db", "REDIS_DB")
	viper.BindEnv("session.ttl", "SESSION_TTL")
	viper.BindEnv("history.enabled", "HISTORY_ENABLED")
	viper.BindEnv("history.path", "HISTORY_PATH")
	viper.BindEnv("chat.fuzzy_cutoff", "CHAT_FUZZY_CUTOFF")
	viper.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	viper.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	viper.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	viper.BindEnv("dedup_window", "DEDUP_WINDOW")
	viper.BindEnv("log_level", "LOG_LEVEL")

	// 設定設定檔名稱和路徑
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	// 讀取設定檔
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 解析設定
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// setDefaults 設定預設值
func setDefaults() {
	// 應用程式設定
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "recipe-chat")

	// 伺服器設定
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// 語料設定
	viper.SetDefault("corpus.path", "data/recipes.csv")
	viper.SetDefault("corpus.top_k", 5)
	viper.SetDefault("corpus.fetch_timeout", "30s")

	// 對話狀態設定
	viper.SetDefault("session.backend", "memory")
	viper.SetDefault("session.redis_addr", "localhost:6379")
	viper.SetDefault("session.redis_password", "")
	viper.SetDefault("session.redis_db", 0)
	viper.SetDefault("session.ttl", "24h")

	// 聊天記錄設定
	viper.SetDefault("history.enabled", true)
	viper.SetDefault("history.path", "data/chat.db")

	// 對話引擎設定
	viper.SetDefault("chat.fuzzy_cutoff", 0.6)

	// 限流設定
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 100)
	viper.SetDefault("rate_limit.window", "1m")

	// 去重設定
	viper.SetDefault("dedup_window", "1s")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	// 驗證語料設定
	if config.Corpus.Path == "" {
		return fmt.Errorf("corpus path is required")
	}
	if config.Corpus.TopK <= 0 {
		return fmt.Errorf("invalid corpus top_k")
	}

	// 驗證對話狀態設定
	switch config.Session.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("invalid session backend: %s", config.Session.Backend)
	}
	if config.Session.Backend == "redis" && config.Session.RedisAddr == "" {
		return fmt.Errorf("redis addr is required for redis session backend")
	}
	if config.Session.TTL <= 0 {
		return fmt.Errorf("invalid session ttl")
	}

	// 驗證聊天記錄設定
	if config.History.Enabled && config.History.Path == "" {
		return fmt.Errorf("history path is required when history is enabled")
	}

	// 驗證對話引擎設定
	if config.Chat.FuzzyCutoff <= 0 || config.Chat.FuzzyCutoff > 1 {
		return fmt.Errorf("invalid chat fuzzy cutoff")
	}

	return nil
}
