package core

import "context"

// TextGenerator 是生成式文本服务的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（service）实现
//   - 调用可能因网络、配额、响应格式等原因失败，调用方负责降级
//
// 实现：
//   - service.OpenAIClient 实现此接口（OpenAI 兼容的 chat completions）
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, cfg GenerationConfig) (string, error)
}

// GenerationConfig 是一次生成调用的固定配置。
type GenerationConfig struct {
	// Model 模型名称
	Model string

	// System 系统提示词（可选）
	System string

	// MaxOutputTokens 输出 token 上限
	MaxOutputTokens int

	// Temperature 采样温度，低温度使输出更稳定
	Temperature float64
}
