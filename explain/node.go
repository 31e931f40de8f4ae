package explain

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/metrics"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/pkg/logging"
	"github.com/rushteam/shoprec/pkg/utils"
)

// DefaultConcurrency 是单次请求内并发生成理由的上限。
const DefaultConcurrency = 3

// Node 是后处理节点：为每个 item 生成推荐理由并写入 item.Explanation。
// 输出顺序与输入一致，与各调用完成顺序无关。每个调用只做一次，失败时使用 Fallback。
type Node struct {
	Generator *Generator

	// Concurrency <= 0 时使用 DefaultConcurrency
	Concurrency int

	// Fallback 为空时使用 FallbackExplanation
	Fallback string
}

func (n *Node) Name() string        { return "postprocess.explain" }
func (n *Node) Kind() pipeline.Kind { return pipeline.KindPostProcess }

func (n *Node) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	var summary string
	if rctx != nil {
		summary = Summarize(rctx.Interactions, rctx.LookupProduct, MaxSummaryItems)
	}

	limit := n.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	fallback := n.Fallback
	if fallback == "" {
		fallback = FallbackExplanation
	}

	results := make([]Result, len(items))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, it := range items {
		g.Go(func() error {
			results[i] = n.Generator.Generate(ctx, summary, it.Product)
			return nil
		})
	}
	_ = g.Wait()

	log := logging.Ctx(ctx)
	for i, it := range items {
		r := results[i]
		if !r.OK() {
			log.Warn().Err(r.Err).Str("product_id", it.ID).Msg("explanation failed, using fallback")
			it.PutLabel("explanation", utils.Label{Value: "fallback", Source: "postprocess"})
		} else {
			it.PutLabel("explanation", utils.Label{Value: "generated", Source: "postprocess"})
		}
		metrics.RecordExplanation(!r.OK())
		it.SetExplanation(r.TextOr(fallback))
	}
	return items, nil
}
