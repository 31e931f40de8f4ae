package filter

import (
	"context"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/pkg/logging"
)

// FilterNode 是过滤 Node，可以组合多个过滤器进行过滤。
// 如果任何一个过滤器返回 true，该物品就会被过滤掉；保留的物品维持输入顺序。
//
// 过滤器出错时记录日志并视为不过滤，不中断流程。
// 这里不适合放必须生效的约束，这类约束用 Strict 过滤器。
type FilterNode struct {
	Filters []Filter
}

func (n *FilterNode) Name() string {
	return "filter.node"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	out := make([]*core.Item, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}

		drop := false
		for _, f := range n.Filters {
			ok, err := f.ShouldFilter(ctx, rctx, item)
			if err != nil {
				if s, isStrict := f.(Strict); isStrict && s.Strict() {
					return nil, err
				}
				logging.Ctx(ctx).Warn().Err(err).
					Str("filter", f.Name()).
					Str("product_id", item.ID).
					Msg("filter error ignored")
				continue
			}
			if ok {
				drop = true
				logging.Ctx(ctx).Debug().
					Str("filter", f.Name()).
					Str("product_id", item.ID).
					Msg("filtered")
				break
			}
		}
		if !drop {
			out = append(out, item)
		}
	}

	return out, nil
}
