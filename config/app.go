package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/rushteam/shoprec/store"
)

// PathEnvVar 可以覆盖配置文件路径。
const PathEnvVar = "SHOPREC_CONFIG"

// DefaultPath 是未指定路径时尝试读取的配置文件（不存在则跳过）。
const DefaultPath = "shoprec.yaml"

// AppConfig 是 shoprec 的应用配置。
type AppConfig struct {
	Log       LogConfig       `koanf:"log"`
	Store     StoreConfig     `koanf:"store"`
	LLM       LLMConfig       `koanf:"llm"`
	Recommend RecommendConfig `koanf:"recommend"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json / console
}

type StoreConfig struct {
	Backend    string `koanf:"backend"` // sqlite / redis / memory（memory 不跨进程保留数据）
	SQLitePath string `koanf:"sqlite_path"`
	RedisAddr  string `koanf:"redis_addr"`
	RedisDB    int    `koanf:"redis_db"`
	KeyPrefix  string `koanf:"key_prefix"`
}

// LLMConfig 是解释生成使用的 chat completions 服务配置。
type LLMConfig struct {
	BaseURL         string        `koanf:"base_url"`
	APIKey          string        `koanf:"api_key"`
	Model           string        `koanf:"model"`
	Timeout         time.Duration `koanf:"timeout"`
	RateLimit       float64       `koanf:"rate_limit"` // 每秒请求数，0 表示不限
	Burst           int           `koanf:"burst"`
	BreakerFailures uint32        `koanf:"breaker_failures"`
	BreakerCooldown time.Duration `koanf:"breaker_cooldown"`
}

type RecommendConfig struct {
	CandidateWindow    int    `koanf:"candidate_window"`
	Limit              int    `koanf:"limit"`
	ExplainConcurrency int    `koanf:"explain_concurrency"`
	PipelinePath       string `koanf:"pipeline_path"`

	// HotKey 指向 KV 中的热门商品 ID 列表（JSON 数组），冷启动优先使用；为空时按目录顺序
	HotKey string `koanf:"hot_key"`
}

// Default 返回默认配置：./shoprec.db 的 SQLite 存储，候选窗口 13，返回 3 条。
func Default() *AppConfig {
	return &AppConfig{
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Store: StoreConfig{
			Backend:    "sqlite",
			SQLitePath: "shoprec.db",
			RedisAddr:  "localhost:6379",
			KeyPrefix:  "shoprec",
		},
		LLM: LLMConfig{
			BaseURL:         "https://api.openai.com",
			Model:           "gpt-4o-mini",
			Timeout:         30 * time.Second,
			RateLimit:       0,
			Burst:           1,
			BreakerFailures: 5,
			BreakerCooldown: 30 * time.Second,
		},
		Recommend: RecommendConfig{
			CandidateWindow:    13,
			Limit:              3,
			ExplainConcurrency: 3,
		},
	}
}

// Load 依次叠加：默认值 -> YAML 文件 -> 环境变量，然后校验。
//
// path 为空时依次尝试 $SHOPREC_CONFIG 与 ./shoprec.yaml；显式指定的文件不存在则报错。
func Load(path string) (*AppConfig, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configPath, err := findConfigFile(path)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &AppConfig{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file %s: %w", path, err)
		}
		return path, nil
	}
	if p := os.Getenv(PathEnvVar); p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("config file %s (from %s): %w", p, PathEnvVar, err)
		}
		return p, nil
	}
	if _, err := os.Stat(DefaultPath); err == nil {
		return DefaultPath, nil
	}
	return "", nil
}

// envTransformFunc 把环境变量映射到配置路径，未列出的变量一律忽略。
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		"openai_api_key":  "llm.api_key",
		"openai_base_url": "llm.base_url",
		"redis_addr":      "store.redis_addr",

		"shoprec_log_level":  "log.level",
		"shoprec_log_format": "log.format",

		"shoprec_store_backend": "store.backend",
		"shoprec_sqlite_path":   "store.sqlite_path",
		"shoprec_redis_addr":    "store.redis_addr",
		"shoprec_redis_db":      "store.redis_db",
		"shoprec_key_prefix":    "store.key_prefix",

		"shoprec_llm_model":            "llm.model",
		"shoprec_llm_timeout":          "llm.timeout",
		"shoprec_llm_rate_limit":       "llm.rate_limit",
		"shoprec_llm_burst":            "llm.burst",
		"shoprec_llm_breaker_failures": "llm.breaker_failures",
		"shoprec_llm_breaker_cooldown": "llm.breaker_cooldown",

		"shoprec_candidate_window":    "recommend.candidate_window",
		"shoprec_limit":               "recommend.limit",
		"shoprec_explain_concurrency": "recommend.explain_concurrency",
		"shoprec_pipeline_path":       "recommend.pipeline_path",
		"shoprec_hot_key":             "recommend.hot_key",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}

// Validate 校验配置取值。
func (c *AppConfig) Validate() error {
	var errs []error
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or console, got %q", c.Log.Format))
	}
	switch c.Store.Backend {
	case "memory":
	case "redis":
		if c.Store.RedisAddr == "" {
			errs = append(errs, errors.New("store.redis_addr is required for redis backend"))
		}
	case "sqlite":
		if c.Store.SQLitePath == "" {
			errs = append(errs, errors.New("store.sqlite_path is required for sqlite backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.backend must be memory, redis or sqlite, got %q", c.Store.Backend))
	}
	if c.Recommend.CandidateWindow < 1 {
		errs = append(errs, fmt.Errorf("recommend.candidate_window must be positive, got %d", c.Recommend.CandidateWindow))
	}
	if c.Recommend.Limit < 1 {
		errs = append(errs, fmt.Errorf("recommend.limit must be positive, got %d", c.Recommend.Limit))
	}
	if c.Recommend.Limit > c.Recommend.CandidateWindow {
		errs = append(errs, fmt.Errorf("recommend.limit %d exceeds candidate_window %d",
			c.Recommend.Limit, c.Recommend.CandidateWindow))
	}
	if c.Recommend.ExplainConcurrency < 1 {
		errs = append(errs, fmt.Errorf("recommend.explain_concurrency must be positive, got %d", c.Recommend.ExplainConcurrency))
	}
	if c.LLM.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("llm.rate_limit must not be negative, got %v", c.LLM.RateLimit))
	}
	if c.LLM.Timeout < 0 {
		errs = append(errs, fmt.Errorf("llm.timeout must not be negative, got %v", c.LLM.Timeout))
	}
	return errors.Join(errs...)
}

// StoreOptions 转换为 store.Open 的参数。
func (c *AppConfig) StoreOptions() store.Options {
	return store.Options{
		Backend:    c.Store.Backend,
		SQLitePath: c.Store.SQLitePath,
		RedisAddr:  c.Store.RedisAddr,
		RedisDB:    c.Store.RedisDB,
		KeyPrefix:  c.Store.KeyPrefix,
	}
}
