// Package service 提供外部模型服务的客户端。
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/rushteam/shoprec/core"
)

// DefaultOpenAIEndpoint 是 OpenAI 兼容 API 的默认地址。
const DefaultOpenAIEndpoint = "https://api.openai.com"

// OpenAIClient 是 OpenAI 兼容 Chat Completions API 的客户端，实现 core.TextGenerator。
//
// 调用链：限流 -> 熔断 -> HTTP。熔断打开期间直接失败，不发请求。
// 不做重试：失败由调用方降级处理。
type OpenAIClient struct {
	// Endpoint 服务地址，例如 "https://api.openai.com" 或本地兼容服务
	Endpoint string

	// Timeout 单次请求超时
	Timeout time.Duration

	// Auth 认证信息
	Auth *AuthConfig

	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[string]
}

// OpenAIOption 客户端配置选项
type OpenAIOption func(*OpenAIClient)

// WithOpenAITimeout 设置超时时间
func WithOpenAITimeout(timeout time.Duration) OpenAIOption {
	return func(c *OpenAIClient) {
		c.Timeout = timeout
	}
}

// WithOpenAIAPIKey 使用 bearer token 认证
func WithOpenAIAPIKey(key string) OpenAIOption {
	return func(c *OpenAIClient) {
		c.Auth = BearerAuth(key)
	}
}

// WithOpenAIRateLimit 设置每秒请求数上限；rps <= 0 表示不限流
func WithOpenAIRateLimit(rps float64, burst int) OpenAIOption {
	return func(c *OpenAIClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithOpenAIBreaker 设置熔断：连续失败 failures 次后打开，cooldown 后半开探测
func WithOpenAIBreaker(failures uint32, cooldown time.Duration) OpenAIOption {
	return func(c *OpenAIClient) {
		c.breaker = newBreaker(failures, cooldown)
	}
}

// WithOpenAIHTTPClient 替换底层 HTTP 客户端
func WithOpenAIHTTPClient(hc *http.Client) OpenAIOption {
	return func(c *OpenAIClient) {
		c.httpClient = hc
	}
}

// NewOpenAIClient 创建客户端。endpoint 为空时使用 DefaultOpenAIEndpoint。
func NewOpenAIClient(endpoint string, opts ...OpenAIOption) *OpenAIClient {
	if endpoint == "" {
		endpoint = DefaultOpenAIEndpoint
	}
	c := &OpenAIClient{
		Endpoint: strings.TrimRight(endpoint, "/"),
		Timeout:  30 * time.Second,
		breaker:  newBreaker(5, 30*time.Second),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.Timeout}
	}
	return c
}

func newBreaker(failures uint32, cooldown time.Duration) *gobreaker.CircuitBreaker[string] {
	if failures == 0 {
		failures = 5
	}
	return gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "openai",
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// 调用方取消不算服务故障
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
}

// ChatMessage 是一条对话消息。
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest 是 /v1/chat/completions 请求体。
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
}

// ChatResponse 是 /v1/chat/completions 响应体中用到的部分。
type ChatResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// GenerateText 实现 core.TextGenerator。
func (c *OpenAIClient) GenerateText(ctx context.Context, prompt string, cfg core.GenerationConfig) (string, error) {
	req := ChatRequest{Model: cfg.Model}
	if cfg.System != "" {
		req.Messages = append(req.Messages, ChatMessage{Role: "system", Content: cfg.System})
	}
	req.Messages = append(req.Messages, ChatMessage{Role: "user", Content: prompt})
	if cfg.MaxOutputTokens > 0 {
		n := cfg.MaxOutputTokens
		req.MaxTokens = &n
	}
	temp := cfg.Temperature
	req.Temperature = &temp

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", core.WrapDomainError(core.ModuleService, core.ErrorCodeUnavailable, "openai: rate limit wait", err)
		}
	}

	text, err := c.breaker.Execute(func() (string, error) {
		return c.chat(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", core.WrapDomainError(core.ModuleService, core.ErrorCodeUnavailable, "openai: circuit open", err)
		}
		return "", err
	}
	return text, nil
}

func (c *OpenAIClient) chat(ctx context.Context, req ChatRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.Auth.apply(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", core.WrapDomainError(core.ModuleService, core.ErrorCodeUnavailable, "openai: http request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", core.WrapDomainError(core.ModuleService, core.ErrorCodeUnavailable, "openai: read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", core.NewDomainError(core.ModuleService, core.ErrorCodeUnavailable,
			fmt.Sprintf("openai: status=%d, body=%s", resp.StatusCode, truncate(string(data), 256)))
	}

	var out ChatResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", core.WrapDomainError(core.ModuleService, core.ErrorCodeInternalError, "openai: decode response", err)
	}
	if out.Error != nil {
		return "", core.NewDomainError(core.ModuleService, core.ErrorCodeUnavailable, "openai: "+out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", core.NewDomainError(core.ModuleService, core.ErrorCodeInternalError, "openai: no choices in response")
	}
	return out.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var _ core.TextGenerator = (*OpenAIClient)(nil)
