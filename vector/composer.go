package vector

import "github.com/rushteam/shoprec/core"

// ComposeUserVector 把用户画像投影到 ix 的向量空间：
// 对每个能在目录中定位到的商品，按画像权重累加其向量。
//
// 找不到的商品直接跳过。没有任何商品能定位时返回 ok=false（无信号），
// 调用方应走冷启动，而不是使用全零向量。
func ComposeUserVector(profile *core.UserProfile, ix *Index) (vec []float64, ok bool) {
	if profile.IsEmpty() || ix == nil {
		return nil, false
	}
	vec = make([]float64, ix.Dimension())
	resolved := 0
	for _, id := range profile.ProductIDs() {
		item, found := ix.Vector(id)
		if !found {
			continue
		}
		w := profile.Weight(id)
		for i, x := range item {
			vec[i] += w * x
		}
		resolved++
	}
	if resolved == 0 {
		return nil, false
	}
	return vec, true
}
