// Package config loads studybuddy settings from config.yaml, .env files and
// STUDYBUDDY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/studybuddy/studybuddy/internal/llm"
	"github.com/studybuddy/studybuddy/internal/quiz"
	"github.com/studybuddy/studybuddy/internal/store"
)

// EnvPrefix prefixes every environment override, e.g.
// STUDYBUDDY_LLM_PROVIDER for llm.provider.
const EnvPrefix = "STUDYBUDDY"

type Config struct {
	LLM       llm.Config      `mapstructure:"llm"`
	Store     StoreConfig     `mapstructure:"store"`
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Quiz      QuizConfig      `mapstructure:"quiz"`
}

type StoreConfig struct {
	// Backend is "sqlite", "redis" or "memory".
	Backend string      `mapstructure:"backend"`
	Path    string      `mapstructure:"path"`
	Redis   RedisConfig `mapstructure:"redis"`

	// Backups is how many history backups to keep before clear and
	// import. Zero disables backups.
	Backups int `mapstructure:"backups"`
}

type RedisConfig struct {
	URL      string `mapstructure:"url"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// Options converts to the store's connection options.
func (r RedisConfig) Options() store.RedisOptions {
	return store.RedisOptions{URL: r.URL, Addr: r.Addr, Password: r.Password, DB: r.DB, Prefix: r.Prefix}
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type TelemetryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRatio float64 `mapstructure:"sample_ratio"`

	// File receives spans as JSON when no endpoint is set.
	File string `mapstructure:"file"`
}

type AuthConfig struct {
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

type QuizConfig struct {
	Count        int           `mapstructure:"count"`
	Types        []string      `mapstructure:"types"`
	TestDuration time.Duration `mapstructure:"test_duration"`
}

// QuestionTypes parses Types. An unknown name is an error.
func (q QuizConfig) QuestionTypes() ([]quiz.QuestionType, error) {
	out := make([]quiz.QuestionType, 0, len(q.Types))
	for _, s := range q.Types {
		t, err := quiz.ParseQuestionType(s)
		if err != nil {
			return nil, fmt.Errorf("quiz.types: %w", err)
		}
		out = append(out, t)
	}
	return out, nil
}

// Dir returns the configuration directory: STUDYBUDDY_CONFIG_HOME, then
// $XDG_CONFIG_HOME/studybuddy, then ~/.config/studybuddy.
func Dir() (string, error) {
	if d := os.Getenv("STUDYBUDDY_CONFIG_HOME"); d != "" {
		return d, nil
	}
	if d := os.Getenv("XDG_CONFIG_HOME"); d != "" {
		return filepath.Join(d, "studybuddy"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "studybuddy"), nil
}

func setDefaults(v *viper.Viper) {
	d := llm.DefaultConfig()
	v.SetDefault("llm.provider", d.Provider)
	v.SetDefault("llm.timeout", d.Timeout)
	v.SetDefault("llm.anthropic.api_key", "")
	v.SetDefault("llm.anthropic.model", d.Anthropic.Model)
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", d.OpenAI.Model)
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", d.Gemini.Model)
	v.SetDefault("llm.openrouter.api_key", "")
	v.SetDefault("llm.openrouter.model", d.OpenRouter.Model)
	v.SetDefault("llm.openrouter.base_url", "")
	v.SetDefault("llm.retry.max_attempts", d.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", d.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", d.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", d.Retry.Multiplier)

	v.SetDefault("store.backend", store.BackendSQLite)
	v.SetDefault("store.path", "")
	v.SetDefault("store.redis.url", "")
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.prefix", "studybuddy")
	v.SetDefault("store.backups", 5)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.insecure", false)
	v.SetDefault("telemetry.sample_ratio", 1.0)
	v.SetDefault("telemetry.file", "")

	v.SetDefault("auth.token_ttl", 30*24*time.Hour)

	v.SetDefault("quiz.count", 10)
	v.SetDefault("quiz.types", []string{string(quiz.MultipleChoice), string(quiz.TrueFalse), string(quiz.FillInTheBlank)})
	v.SetDefault("quiz.test_duration", 5*time.Minute)
}

// Load reads configuration. path names an explicit config file; when empty
// config.yaml is looked up in Dir and may be absent. .env files in the
// working directory and config directory are loaded first and never
// override variables already set.
func Load(path string) (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	loadDotEnv(".env", filepath.Join(dir, ".env"))

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	providerSet := v.InConfig("llm.provider") || os.Getenv(EnvPrefix+"_LLM_PROVIDER") != ""
	if !cfg.LLM.HasKey() && !providerSet {
		if discovered, ok := llm.DiscoverConfig(); ok {
			discovered.Timeout = cfg.LLM.Timeout
			discovered.Retry = cfg.LLM.Retry
			cfg.LLM = discovered
		}
	}
	return &cfg, nil
}

func loadDotEnv(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case store.BackendSQLite, store.BackendRedis, store.BackendMemory:
	default:
		return fmt.Errorf("store.backend: unknown backend %q", c.Store.Backend)
	}
	if c.Quiz.Count <= 0 {
		return fmt.Errorf("quiz.count must be positive")
	}
	if _, err := c.Quiz.QuestionTypes(); err != nil {
		return err
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry.sample_ratio must be within [0, 1]")
	}
	return nil
}
