package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate 清空会影响加载结果的环境变量，并切到空目录避免读到 ./shoprec.yaml。
func isolate(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		PathEnvVar, "OPENAI_API_KEY", "OPENAI_BASE_URL", "REDIS_ADDR",
		"SHOPREC_LOG_LEVEL", "SHOPREC_LOG_FORMAT", "SHOPREC_STORE_BACKEND", "SHOPREC_SQLITE_PATH",
		"SHOPREC_REDIS_ADDR", "SHOPREC_REDIS_DB", "SHOPREC_KEY_PREFIX", "SHOPREC_LLM_MODEL",
		"SHOPREC_LLM_TIMEOUT", "SHOPREC_LLM_RATE_LIMIT", "SHOPREC_LLM_BURST",
		"SHOPREC_LLM_BREAKER_FAILURES", "SHOPREC_LLM_BREAKER_COOLDOWN",
		"SHOPREC_CANDIDATE_WINDOW", "SHOPREC_LIMIT", "SHOPREC_EXPLAIN_CONCURRENCY", "SHOPREC_PIPELINE_PATH", "SHOPREC_HOT_KEY",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store.Backend != "sqlite" || cfg.Store.SQLitePath != "shoprec.db" {
		t.Errorf("Store = %+v, want sqlite at shoprec.db", cfg.Store)
	}
	if cfg.Recommend.CandidateWindow != 13 || cfg.Recommend.Limit != 3 || cfg.Recommend.ExplainConcurrency != 3 {
		t.Errorf("Recommend = %+v", cfg.Recommend)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("LLM.Model = %q", cfg.LLM.Model)
	}
	if cfg.LLM.Timeout != 30*time.Second || cfg.LLM.BreakerCooldown != 30*time.Second {
		t.Errorf("LLM durations = %v / %v", cfg.LLM.Timeout, cfg.LLM.BreakerCooldown)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	content := `
store:
  backend: sqlite
  sqlite_path: /tmp/shop.db
llm:
  model: file-model
  timeout: 5s
recommend:
  limit: 2
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SHOPREC_LLM_MODEL", "env-model")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("UNRELATED_VARIABLE", "ignored")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store.Backend != "sqlite" || cfg.Store.SQLitePath != "/tmp/shop.db" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.LLM.Model != "env-model" {
		t.Errorf("LLM.Model = %q, env should override file", cfg.LLM.Model)
	}
	if cfg.LLM.APIKey != "sk-test" {
		t.Errorf("LLM.APIKey = %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.Timeout != 5*time.Second {
		t.Errorf("LLM.Timeout = %v, want 5s", cfg.LLM.Timeout)
	}
	if cfg.Recommend.Limit != 2 || cfg.Recommend.CandidateWindow != 13 {
		t.Errorf("Recommend = %+v", cfg.Recommend)
	}

	opts := cfg.StoreOptions()
	if opts.Backend != "sqlite" || opts.SQLitePath != "/tmp/shop.db" || opts.KeyPrefix != "shoprec" {
		t.Errorf("StoreOptions() = %+v", opts)
	}
}

func TestLoad_PathFromEnv(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "env.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(PathEnvVar, path)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoad_Errors(t *testing.T) {
	isolate(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing explicit config file should fail")
	}

	t.Setenv("SHOPREC_STORE_BACKEND", "postgres")
	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), "store.backend") {
		t.Errorf("Load() error = %v, want store.backend validation error", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *AppConfig)
		wantErr string
	}{
		{"defaults", func(c *AppConfig) {}, ""},
		{"bad format", func(c *AppConfig) { c.Log.Format = "xml" }, "log.format"},
		{"redis without addr", func(c *AppConfig) { c.Store.Backend = "redis"; c.Store.RedisAddr = "" }, "redis_addr"},
		{"sqlite without path", func(c *AppConfig) { c.Store.Backend = "sqlite"; c.Store.SQLitePath = "" }, "sqlite_path"},
		{"zero limit", func(c *AppConfig) { c.Recommend.Limit = 0 }, "recommend.limit"},
		{"limit above window", func(c *AppConfig) { c.Recommend.Limit = 20 }, "exceeds candidate_window"},
		{"zero concurrency", func(c *AppConfig) { c.Recommend.ExplainConcurrency = 0 }, "explain_concurrency"},
		{"negative rate", func(c *AppConfig) { c.LLM.RateLimit = -1 }, "rate_limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := map[string]string{
		"OPENAI_API_KEY":         "llm.api_key",
		"REDIS_ADDR":             "store.redis_addr",
		"SHOPREC_LIMIT":          "recommend.limit",
		"SHOPREC_STORE_BACKEND":  "store.backend",
		"PATH":                   "",
		"SHOPREC_UNKNOWN_OPTION": "",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}
