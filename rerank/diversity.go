package rerank

import (
	"context"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
)

// Diversity 按类别打散：同一类别最多保留 MaxPerCategory 个，保持输入顺序。
// 类别来源优先级：
//   - label[LabelKey].Value
//   - meta[LabelKey] (string)
//   - LabelKey 为 "category" 时取商品自身的 Category
type Diversity struct {
	LabelKey       string // 默认 "category"
	MaxPerCategory int    // 默认 1
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	key := n.LabelKey
	if key == "" {
		key = "category"
	}
	limit := n.MaxPerCategory
	if limit <= 0 {
		limit = 1
	}

	seen := make(map[string]int, 16)
	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		cate := categoryOf(it, key)
		if cate == "" {
			out = append(out, it)
			continue
		}
		if seen[cate] >= limit {
			continue
		}
		seen[cate]++
		out = append(out, it)
	}

	return out, nil
}

func categoryOf(it *core.Item, key string) string {
	if lbl, ok := it.Labels[key]; ok && lbl.Value != "" {
		return lbl.Value
	}
	if s, ok := it.Meta[key].(string); ok && s != "" {
		return s
	}
	if key == "category" {
		return it.Product.Category
	}
	return ""
}
