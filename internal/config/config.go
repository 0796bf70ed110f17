package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token   string `yaml:"token"`
	Mode    string `yaml:"mode"` // polling | webhook (future)
	Workers int    `yaml:"workers"`
	AdminID int64  `yaml:"admin_id"` // the single privileged Telegram ID
}

// ClinicConfig carries the template parameters baked into canned
// replies. Immutable for the process lifetime.
type ClinicConfig struct {
	Name      string `yaml:"name"`
	City      string `yaml:"city"`
	OwnerName string `yaml:"owner_name"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Port       int           `yaml:"port"`
	APIKey     string        `yaml:"api_key"`
	JWTSecret  string        `yaml:"jwt_secret"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AIConfig struct {
	OpenAIKey    string `yaml:"openai_key"`
	GeminiKey    string `yaml:"gemini_key"`
	GeminiURL    string `yaml:"gemini_url"`
	DefaultModel string `yaml:"default_model"`

	// AssistReplies lets the AI draft replies to non-urgent health
	// concerns instead of the canned acknowledgement.
	AssistReplies bool `yaml:"assist_replies"`
}

type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Clinic   ClinicConfig   `yaml:"clinic"`
	Log      LogConfig      `yaml:"log"`
	Admin    AdminConfig    `yaml:"admin"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	AI       AIConfig       `yaml:"ai"`

	Runtime RuntimeConfig `yaml:"-"`
}

// HasAI reports whether any AI provider credential is configured.
func (c *Config) HasAI() bool {
	return c.AI.OpenAIKey != "" || c.AI.GeminiKey != ""
}

// LoadConfig reads and validates the YAML config. In production mode a
// missing required credential refuses startup; in dev mode the caller
// substitutes noop collaborators instead.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Bot.Mode == "" {
		cfg.Bot.Mode = "polling"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Admin.Port <= 0 {
		cfg.Admin.Port = 8090
	}
	if cfg.Admin.SessionTTL <= 0 {
		cfg.Admin.SessionTTL = 30 * time.Minute
	}
	if cfg.AI.DefaultModel == "" {
		cfg.AI.DefaultModel = "gpt-4o-mini"
	}
	if cfg.Clinic.Name == "" {
		cfg.Clinic.Name = "the clinic"
	}

	cfg.Runtime.Dev = dev

	// Minimal validation: production refuses to start without
	// credentials; dev degrades to mock collaborators.
	if !dev {
		if cfg.Bot.Token == "" {
			return nil, errors.New("bot.token is required")
		}
		if cfg.Database.URL == "" {
			return nil, errors.New("database.url is required")
		}
		if !cfg.HasAI() {
			return nil, errors.New("ai.openai_key or ai.gemini_key is required")
		}
		if cfg.Bot.AdminID == 0 {
			return nil, errors.New("bot.admin_id is required")
		}
	}
	return &cfg, nil
}
