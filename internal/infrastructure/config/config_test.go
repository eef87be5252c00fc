package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Corpus.Path != "data/recipes.csv" {
		t.Errorf("default corpus path = %q", cfg.Corpus.Path)
	}
	if cfg.Corpus.TopK != 5 {
		t.Errorf("default top_k = %d, want 5", cfg.Corpus.TopK)
	}
	if cfg.Session.Backend != "memory" {
		t.Errorf("default session backend = %q, want memory", cfg.Session.Backend)
	}
	if cfg.Session.TTL != 24*time.Hour {
		t.Errorf("default session ttl = %v, want 24h", cfg.Session.TTL)
	}
	if cfg.Chat.FuzzyCutoff != 0.6 {
		t.Errorf("default fuzzy cutoff = %v, want 0.6", cfg.Chat.FuzzyCutoff)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("CORPUS_TOP_K", "3")
	t.Setenv("SESSION_BACKEND", "memory")
	t.Setenv("CHAT_FUZZY_CUTOFF", "0.8")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Corpus.TopK != 3 {
		t.Errorf("top_k override = %d, want 3", cfg.Corpus.TopK)
	}
	if cfg.Chat.FuzzyCutoff != 0.8 {
		t.Errorf("fuzzy cutoff override = %v, want 0.8", cfg.Chat.FuzzyCutoff)
	}
}

func TestValidateConfigRejectsBadValues(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:  ServerConfig{Port: 8080},
			Corpus:  CorpusConfig{Path: "data/recipes.csv", TopK: 5},
			Session: SessionConfig{Backend: "memory", TTL: time.Hour},
			History: HistoryConfig{Enabled: true, Path: "data/chat.db"},
			Chat:    ChatConfig{FuzzyCutoff: 0.6},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"empty corpus path", func(c *Config) { c.Corpus.Path = "" }},
		{"zero top_k", func(c *Config) { c.Corpus.TopK = 0 }},
		{"unknown backend", func(c *Config) { c.Session.Backend = "etcd" }},
		{"redis without addr", func(c *Config) { c.Session.Backend = "redis"; c.Session.RedisAddr = "" }},
		{"zero ttl", func(c *Config) { c.Session.TTL = 0 }},
		{"history without path", func(c *Config) { c.History.Path = "" }},
		{"cutoff above one", func(c *Config) { c.Chat.FuzzyCutoff = 1.5 }},
		{"cutoff zero", func(c *Config) { c.Chat.FuzzyCutoff = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			if err := validateConfig(cfg); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	if err := validateConfig(base()); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}
