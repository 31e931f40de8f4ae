package core

import "github.com/rushteam/shoprec/pkg/utils"

// RecommendContext 承载单次请求的用户/目录/向量空间，贯穿整个 Pipeline 透传。
// 向量空间只在本次请求内有效，不可跨请求复用或比较。
type RecommendContext struct {
	UserID string

	// Catalog 是本次请求读取的目录快照（目录顺序）
	Catalog []Product

	// Interactions 是用户原始交互记录（写入顺序，视为时间顺序）
	Interactions []InteractionRecord

	// Profile 是由 Interactions 构建的用户画像
	Profile *UserProfile

	// Interacted 是画像中能在目录解析到的商品，key 为商品 ID
	Interacted map[string]Product

	// ItemVectors 与 Catalog 按下标一一对应
	ItemVectors [][]float64

	// UserVector 与 ItemVectors 处于同一向量空间
	UserVector []float64

	// Labels 是用户级标签，可驱动整个 Pipeline 行为
	Labels map[string]utils.Label

	// Params 请求级上下文参数
	Params map[string]any
}

// LookupProduct 先查已解析的交互商品，再查目录快照。
func (rctx *RecommendContext) LookupProduct(id string) (Product, bool) {
	if p, ok := rctx.Interacted[id]; ok {
		return p, true
	}
	for _, p := range rctx.Catalog {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// PutLabel 写入用户级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取用户级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
