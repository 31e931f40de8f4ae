package filter

import (
	"context"

	"github.com/rushteam/shoprec/core"
)

// Filter 判断一个候选是否应被移除：返回 true 表示移除。
type Filter interface {
	Name() string

	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error)
}

// Strict 标记出错时必须中断请求的过滤器（例如排除已交互商品）。
// 非 Strict 过滤器出错只记日志，候选保留。
type Strict interface {
	Strict() bool
}

var (
	_ Filter = (*InteractedFilter)(nil)
	_ Strict = (*InteractedFilter)(nil)
	_ Filter = (*BlacklistFilter)(nil)
	_ Filter = (*ExprFilter)(nil)
)
