// Package builders 在 init 中把内置 Node 注册到 config 注册表，供 YAML/JSON pipeline 使用。
//
//	import _ "github.com/rushteam/shoprec/config/builders"
//
// recall.hot 的 key 和 blacklist 的 key 从 pipeline.Deps.Store 读取，
// 由 NodeFactory.WithDeps 注入；未注入时这些 key 被忽略，只使用配置中的内存列表。
package builders

import (
	"fmt"

	"github.com/rushteam/shoprec/config"
	"github.com/rushteam/shoprec/filter"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/pkg/conv"
	"github.com/rushteam/shoprec/recall"
	"github.com/rushteam/shoprec/rerank"
)

func init() {
	config.Register("recall.content", BuildContentNode)
	config.Register("recall.hot", BuildHotNode)
	config.Register("filter", BuildFilterNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("rerank.diversity", BuildDiversityNode)
}

func BuildContentNode(cfg map[string]interface{}, _ pipeline.Deps) (pipeline.Node, error) {
	topK := conv.ConfigGetInt64(cfg, "top_k", recall.DefaultCandidateWindow)
	if topK <= 0 {
		return nil, fmt.Errorf("top_k must be positive, got %d", topK)
	}
	return &recall.Content{TopK: int(topK)}, nil
}

func BuildHotNode(cfg map[string]interface{}, deps pipeline.Deps) (pipeline.Node, error) {
	ids := conv.SliceAnyToString(cfg["ids"])
	if ids == nil {
		ids = []string{}
	}
	hot := &recall.Hot{IDs: ids}
	if key := conv.ConfigGet(cfg, "key", ""); key != "" {
		hot.Key = key
		hot.Store = deps.Store
	}
	return hot, nil
}

func BuildTopNNode(cfg map[string]interface{}, _ pipeline.Deps) (pipeline.Node, error) {
	n := conv.ConfigGetInt64(cfg, "n", rerank.DefaultLimit)
	if n <= 0 {
		return nil, fmt.Errorf("n must be positive, got %d", n)
	}
	return &rerank.TopNNode{N: int(n)}, nil
}

func BuildDiversityNode(cfg map[string]interface{}, _ pipeline.Deps) (pipeline.Node, error) {
	labelKey := conv.ConfigGet(cfg, "label_key", "category")
	if labelKey == "" {
		labelKey = "category"
	}
	return &rerank.Diversity{
		LabelKey:       labelKey,
		MaxPerCategory: int(conv.ConfigGetInt64(cfg, "max_per_category", 1)),
	}, nil
}

func BuildFilterNode(cfg map[string]interface{}, deps pipeline.Deps) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}
	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]interface{})
		if !ok {
			continue
		}
		filterType := conv.ConfigGet(filterMap, "type", "")
		switch filterType {
		case "interacted":
			filters = append(filters, filter.NewInteractedFilter())
		case "blacklist":
			ids := conv.SliceAnyToString(filterMap["item_ids"])
			if ids == nil {
				ids = []string{}
			}
			key := conv.ConfigGet(filterMap, "key", "")
			var adapter *filter.StoreAdapter
			if deps.Store != nil && key != "" {
				adapter = filter.NewStoreAdapter(deps.Store)
			}
			filters = append(filters, filter.NewBlacklistFilter(ids, adapter, key))
		case "expr":
			expr := conv.ConfigGet(filterMap, "expr", "")
			if expr == "" {
				return nil, fmt.Errorf("expr filter requires expr")
			}
			f, err := filter.NewExprFilter(expr)
			if err != nil {
				return nil, err
			}
			filters = append(filters, f)
		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}
	return &filter.FilterNode{Filters: filters}, nil
}
