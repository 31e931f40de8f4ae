package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/rushteam/shoprec/config"
	_ "github.com/rushteam/shoprec/config/builders"
	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/explain"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/pkg/logging"
	"github.com/rushteam/shoprec/recall"
	"github.com/rushteam/shoprec/recommend"
	"github.com/rushteam/shoprec/service"
	"github.com/rushteam/shoprec/store"
)

// app 是一次命令执行所需的依赖。
type app struct {
	cfg     *config.AppConfig
	backend store.Backend
	svc     *recommend.Service
}

func openApp(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})

	backend, err := store.Open(cmd.Context(), cfg.StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	var kv core.Store
	if c, ok := backend.(interface{ KV() core.Store }); ok {
		kv = c.KV()
	}

	opts := []recommend.Option{
		recommend.WithUserDirectory(backend),
		recommend.WithCandidateWindow(cfg.Recommend.CandidateWindow),
		recommend.WithLimit(cfg.Recommend.Limit),
		recommend.WithExplainConcurrency(cfg.Recommend.ExplainConcurrency),
		recommend.WithExplainer(newExplainer(cfg.LLM)),
	}
	if kv != nil && cfg.Recommend.HotKey != "" {
		opts = append(opts, recommend.WithColdStartSource(&recall.Hot{Store: kv, Key: cfg.Recommend.HotKey}))
	}
	if cfg.Recommend.PipelinePath != "" {
		p, err := loadRankingPipeline(cfg.Recommend.PipelinePath, pipeline.Deps{Store: kv})
		if err != nil {
			backend.Close()
			return nil, err
		}
		opts = append(opts, recommend.WithRankingPipeline(p))
	}

	logging.Debug().
		Str("backend", backend.Name()).
		Str("model", cfg.LLM.Model).
		Str("pipeline", cfg.Recommend.PipelinePath).
		Msg("app ready")

	return &app{
		cfg:     cfg,
		backend: backend,
		svc:     recommend.New(backend, backend, opts...),
	}, nil
}

func (a *app) Close() error {
	return a.backend.Close()
}

// newExplainer 在未配置 API key 时返回 nil，所有推荐使用兜底理由。
func newExplainer(c config.LLMConfig) *explain.Generator {
	if c.APIKey == "" {
		logging.Warn().Msg("llm api key not configured, explanations will use the fallback text")
		return nil
	}
	client := service.NewOpenAIClient(c.BaseURL,
		service.WithOpenAIAPIKey(c.APIKey),
		service.WithOpenAITimeout(c.Timeout),
		service.WithOpenAIRateLimit(c.RateLimit, c.Burst),
		service.WithOpenAIBreaker(c.BreakerFailures, c.BreakerCooldown),
	)
	return explain.NewGenerator(client, c.Model)
}

// loadRankingPipeline 从文件构建排序 Pipeline，deps 注入给需要存储的节点。
func loadRankingPipeline(path string, deps pipeline.Deps) (*pipeline.Pipeline, error) {
	pc, err := pipeline.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load pipeline %s: %w", path, err)
	}
	if err := config.ValidatePipelineConfig(pc); err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", path, err)
	}
	p, err := pc.BuildPipeline(config.DefaultFactory().WithDeps(deps))
	if err != nil {
		return nil, fmt.Errorf("build pipeline %s: %w", path, err)
	}
	return p, nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func names(ps []core.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}
