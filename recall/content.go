package recall

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/pkg/utils"
	"github.com/rushteam/shoprec/vector"
)

// DefaultCandidateWindow 是相似度排序后保留的候选数量，宽于最终条数以容纳过滤。
const DefaultCandidateWindow = 13

// Content 是基于内容的召回源（Content-Based Recommendation）。
//
// 核心思想："用户喜欢具有某些文本特征的商品，推荐文本特征相近的其他商品"。
// 用户向量与目录向量由调用方写入 RecommendContext，二者必须处于同一向量空间。
//
// 输出按相似度降序，同分按目录下标升序；只保留前 TopK 个候选。
type Content struct {
	// TopK 候选窗口大小，<=0 时使用 DefaultCandidateWindow
	TopK int
}

func (r *Content) Name() string        { return "recall.content" }
func (r *Content) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *Content) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *Content) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if rctx == nil || len(rctx.Catalog) == 0 {
		return nil, nil
	}
	if len(rctx.ItemVectors) != len(rctx.Catalog) {
		return nil, core.NewInvariantError(core.ModuleVector,
			fmt.Sprintf("catalog has %d products but %d vectors", len(rctx.Catalog), len(rctx.ItemVectors)))
	}

	type scoredItem struct {
		index int
		score float64
	}
	scores := make([]scoredItem, 0, len(rctx.Catalog))
	for i, vec := range rctx.ItemVectors {
		s, err := vector.Cosine(rctx.UserVector, vec)
		if err != nil {
			return nil, err
		}
		scores = append(scores, scoredItem{index: i, score: s})
	}

	// scores 已按目录下标升序，稳定排序保证同分时下标小者在前
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	topK := r.TopK
	if topK <= 0 {
		topK = DefaultCandidateWindow
	}
	if len(scores) > topK {
		scores = scores[:topK]
	}

	out := make([]*core.Item, 0, len(scores))
	for rank, s := range scores {
		it := core.NewItem(rctx.Catalog[s.index])
		it.Score = s.score
		it.Meta["catalog_index"] = s.index
		it.PutLabel("recall_source", utils.Label{Value: "content", Source: "recall"})
		it.PutLabel("recall_rank", utils.Label{Value: strconv.Itoa(rank + 1), Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
