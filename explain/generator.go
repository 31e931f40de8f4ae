package explain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rushteam/shoprec/core"
)

// ErrEmptyExplanation 表示服务返回了空白内容。
var ErrEmptyExplanation = core.NewDomainError(core.ModuleService, core.ErrorCodeInternalError, "explain: empty response")

// ErrNoGenerator 表示未配置文本生成服务。
var ErrNoGenerator = core.NewDomainError(core.ModuleService, core.ErrorCodeUnavailable, "explain: no text generator configured")

// DefaultGenerationConfig 返回推荐理由生成的固定配置：低温度、短输出。
func DefaultGenerationConfig() core.GenerationConfig {
	return core.GenerationConfig{
		Model:           "gpt-4o-mini",
		System:          SystemPrompt,
		MaxOutputTokens: 100,
		Temperature:     0.4,
	}
}

// Result 是一次生成的显式结果：成功时 Text 非空且 Err 为 nil。
type Result struct {
	Text string
	Err  error
}

// OK 返回是否生成成功。
func (r Result) OK() bool { return r.Err == nil }

// TextOr 成功时返回生成文本，否则返回 fallback。
func (r Result) TextOr(fallback string) string {
	if r.Err != nil {
		return fallback
	}
	return r.Text
}

// Generator 调用文本生成服务产出推荐理由。
type Generator struct {
	TextGen core.TextGenerator
	Config  core.GenerationConfig
}

// NewGenerator 使用 DefaultGenerationConfig 创建 Generator；model 为空时使用默认模型。
func NewGenerator(tg core.TextGenerator, model string) *Generator {
	cfg := DefaultGenerationConfig()
	if model != "" {
		cfg.Model = model
	}
	return &Generator{TextGen: tg, Config: cfg}
}

// Generate 为单个商品生成理由；任何失败都体现在 Result.Err 中。
func (g *Generator) Generate(ctx context.Context, summary string, p core.Product) (res Result) {
	if g == nil || g.TextGen == nil {
		return Result{Err: ErrNoGenerator}
	}
	defer func() {
		if r := recover(); r != nil {
			res = Result{Err: fmt.Errorf("explain: text generator panic: %v", r)}
		}
	}()
	text, err := g.TextGen.GenerateText(ctx, BuildPrompt(summary, p), g.Config)
	if err != nil {
		return Result{Err: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{Err: ErrEmptyExplanation}
	}
	return Result{Text: text}
}

// IsEmptyExplanation 检查错误是否为空响应。
func IsEmptyExplanation(err error) bool {
	return errors.Is(err, ErrEmptyExplanation)
}
