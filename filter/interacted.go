package filter

import (
	"context"

	"github.com/rushteam/shoprec/core"
)

// InteractedFilter 过滤掉用户画像中已有的商品（看过/加购/购买过的不再推荐）。
type InteractedFilter struct{}

func NewInteractedFilter() *InteractedFilter { return &InteractedFilter{} }

func (f *InteractedFilter) Name() string { return "filter.interacted" }

// Strict 排除已交互商品是推荐结果的硬约束。
func (f *InteractedFilter) Strict() bool { return true }

func (f *InteractedFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if rctx == nil {
		return false, nil
	}
	return rctx.Profile.Has(item.ID), nil
}
