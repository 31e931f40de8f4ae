package vector

import (
	"fmt"
	"math"

	"github.com/rushteam/shoprec/core"
)

// Cosine 计算余弦相似度 dot(a,b)/(|a|·|b|)。
// 任一向量模为 0 时返回 0；维度不一致返回 INVARIANT_VIOLATION。
func Cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, core.NewInvariantError(core.ModuleVector,
			fmt.Sprintf("vector dimension mismatch: %d != %d", len(a), len(b)))
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Norm 返回 L2 范数。
func Norm(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}
