package core

import "github.com/rushteam/shoprec/pkg/utils"

// Item 是推荐链路中的统一承载结构：商品、分数、解释、元信息、标签。
// Labels 用于解释与策略驱动；Score 用于排序决策。
type Item struct {
	ID      string
	Score   float64
	Product Product

	// Explanation 由 postprocess 阶段填充；冷启动路径保持为空
	Explanation *string

	Meta   map[string]any
	Labels map[string]utils.Label
}

func NewItem(p Product) *Item {
	return &Item{
		ID:      p.ID,
		Product: p,
		Meta:    make(map[string]any),
		Labels:  make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// SetExplanation 设置推荐理由。
func (it *Item) SetExplanation(text string) {
	it.Explanation = &text
}

// Recommendation 是对外输出的推荐结果。
// Explanation 仅在冷启动路径中缺席。
type Recommendation struct {
	Product     Product `json:"product"`
	Explanation *string `json:"explanation,omitempty"`
}

// ToRecommendation 把 Item 转为对外结果。
func (it *Item) ToRecommendation() Recommendation {
	return Recommendation{Product: it.Product, Explanation: it.Explanation}
}

// Activity 是用户近期行为按交互类型分组后的商品视图。
type Activity struct {
	Viewed      []Product `json:"viewed"`
	AddedToCart []Product `json:"added_to_cart"`
	Purchased   []Product `json:"purchased"`
}
