package core

import "fmt"

// InteractionType 是封闭的交互类型枚举。
type InteractionType string

const (
	InteractionViewed      InteractionType = "viewed"
	InteractionAddedToCart InteractionType = "added_to_cart"
	InteractionPurchased   InteractionType = "purchased"
)

// interactionWeights 是交互类型到兴趣权重的显式映射。
var interactionWeights = map[InteractionType]float64{
	InteractionViewed:      1,
	InteractionAddedToCart: 2,
	InteractionPurchased:   3,
}

// InteractionTypes 按权重升序返回全部交互类型。
func InteractionTypes() []InteractionType {
	return []InteractionType{InteractionViewed, InteractionAddedToCart, InteractionPurchased}
}

// ParseInteractionType 解析交互类型标签，未知标签返回 INVARIANT_VIOLATION。
func ParseInteractionType(s string) (InteractionType, error) {
	t := InteractionType(s)
	if _, ok := interactionWeights[t]; !ok {
		return "", NewInvariantError(ModuleProfile, fmt.Sprintf("unrecognized interaction type %q", s))
	}
	return t, nil
}

// Weight 返回交互类型的权重。
func (t InteractionType) Weight() (float64, error) {
	w, ok := interactionWeights[t]
	if !ok {
		return 0, NewInvariantError(ModuleProfile, fmt.Sprintf("unrecognized interaction type %q", string(t)))
	}
	return w, nil
}

// InteractionRecord 是一次用户与商品的交互事件，由外部行为存储持有。
type InteractionRecord struct {
	UserID    string          `json:"user_id"`
	ProductID string          `json:"product_id"`
	Type      InteractionType `json:"interaction_type"`
}
