package recall

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/pkg/utils"
)

// Hot 是冷启动召回源，不依赖用户信号。
//   - 配置了 Store + Key 时，从 Store 读取 JSON 数组形式的热门商品 ID 列表
//   - 否则使用内存中的 IDs
//   - 两者都为空时按目录顺序返回整个目录
//
// ID 列表中的商品按列表顺序在目录快照中解析，解析不到的跳过。
// Hot 同时实现了 Source 和 Node 接口，可以直接在 Pipeline 中使用。
type Hot struct {
	Store core.Store
	Key   string   // 存储 key，例如 "hot:products"
	IDs   []string // fallback 内存列表
}

func (r *Hot) Name() string        { return "recall.hot" }
func (r *Hot) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *Hot) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口
func (r *Hot) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if rctx == nil {
		return nil, nil
	}

	var ids []string
	if r.Store != nil && r.Key != "" {
		data, err := r.Store.Get(ctx, r.Key)
		switch {
		case err == nil:
			var parsed []string
			if json.Unmarshal(data, &parsed) == nil {
				ids = parsed
			}
		case !core.IsStoreNotFound(err):
			return nil, err
		}
	}
	if len(ids) == 0 {
		ids = r.IDs
	}

	if len(ids) == 0 {
		out := make([]*core.Item, 0, len(rctx.Catalog))
		for i, p := range rctx.Catalog {
			out = append(out, hotItem(p, i, "catalog"))
		}
		return out, nil
	}

	byID := make(map[string]int, len(rctx.Catalog))
	for i, p := range rctx.Catalog {
		if _, ok := byID[p.ID]; !ok {
			byID[p.ID] = i
		}
	}
	out := make([]*core.Item, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		i, ok := byID[id]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, hotItem(rctx.Catalog[i], i, "hot"))
	}
	return out, nil
}

func hotItem(p core.Product, index int, source string) *core.Item {
	it := core.NewItem(p)
	it.Meta["catalog_index"] = index
	it.PutLabel("recall_source", utils.Label{Value: source, Source: "recall"})
	return it
}
