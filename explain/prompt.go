// Package explain 为推荐结果生成一句话推荐理由。
//
// 生成失败（网络、配额、空响应）不会向上传递错误：
// Generator 返回显式的 Result，由 Result.TextOr 映射为固定兜底文案。
package explain

import (
	"fmt"
	"strings"

	"github.com/rushteam/shoprec/core"
)

// FallbackExplanation 是生成失败时使用的固定文案。
const FallbackExplanation = "This product is recommended for you based on your recent activity."

// MaxSummaryItems 是行为摘要中最多包含的交互条数。
const MaxSummaryItems = 5

// SystemPrompt 是生成推荐理由时的系统提示词。
const SystemPrompt = "You are a helpful e-commerce recommendation assistant. Provide concise, friendly explanations."

// ProductLookup 按商品 ID 解析商品。
type ProductLookup func(productID string) (core.Product, bool)

// Summarize 从最近一条交互开始倒序遍历，解析商品名称与类别，
// 跳过解析不到的记录，最多保留 max 条，渲染为
// "<interaction_type> <name> (<category>)" 并以 ", " 连接。
func Summarize(history []core.InteractionRecord, lookup ProductLookup, max int) string {
	if max <= 0 {
		max = MaxSummaryItems
	}
	parts := make([]string, 0, max)
	for i := len(history) - 1; i >= 0 && len(parts) < max; i-- {
		rec := history[i]
		p, ok := lookup(rec.ProductID)
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s (%s)", rec.Type, p.Name, p.Category))
	}
	return strings.Join(parts, ", ")
}

// BuildPrompt 组装用户提示词。
func BuildPrompt(summary string, p core.Product) string {
	var b strings.Builder
	b.WriteString("You are an e-commerce recommendation assistant. ")
	fmt.Fprintf(&b, "A user has recently interacted with these products: %s. ", summary)
	fmt.Fprintf(&b, "We are now recommending '%s' from the %s category. ", p.Name, p.Category)
	fmt.Fprintf(&b, "Product description: %s. ", p.Description)
	b.WriteString("In one friendly sentence, explain why this is a good recommendation for them.")
	return b.String()
}
