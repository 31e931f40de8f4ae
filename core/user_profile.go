package core

// UserProfile 是用户画像：商品 ID → 累积兴趣权重。
//
// 每次请求从交互记录重新构建，不持久化。空画像即冷启动信号。
// ProductIDs 按首次出现顺序遍历，保证向量合成可复现。
type UserProfile struct {
	UserID  string
	Weights map[string]float64

	order []string
}

// NewUserProfile 创建一个空的用户画像。
func NewUserProfile(userID string) *UserProfile {
	return &UserProfile{
		UserID:  userID,
		Weights: make(map[string]float64),
	}
}

// BuildUserProfile 把交互记录折叠为用户画像。
// 每条记录把其类型权重累加到对应商品上；未知交互类型返回 INVARIANT_VIOLATION。
func BuildUserProfile(userID string, records []InteractionRecord) (*UserProfile, error) {
	p := NewUserProfile(userID)
	for _, rec := range records {
		w, err := rec.Type.Weight()
		if err != nil {
			return nil, err
		}
		p.Add(rec.ProductID, w)
	}
	return p, nil
}

// Add 为商品累加权重（不存在时从 0 开始）。
func (p *UserProfile) Add(productID string, weight float64) {
	if p.Weights == nil {
		p.Weights = make(map[string]float64)
	}
	if _, ok := p.Weights[productID]; !ok {
		p.order = append(p.order, productID)
	}
	p.Weights[productID] += weight
}

// Weight 获取商品的累积权重。
func (p *UserProfile) Weight(productID string) float64 {
	if p == nil || p.Weights == nil {
		return 0
	}
	return p.Weights[productID]
}

// Has 检查画像中是否包含商品。
func (p *UserProfile) Has(productID string) bool {
	if p == nil || p.Weights == nil {
		return false
	}
	_, ok := p.Weights[productID]
	return ok
}

// ProductIDs 按首次出现顺序返回画像中的商品 ID。
func (p *UserProfile) ProductIDs() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Len 返回画像中的商品数。
func (p *UserProfile) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Weights)
}

// IsEmpty 为 true 时走冷启动。
func (p *UserProfile) IsEmpty() bool {
	return p.Len() == 0
}
