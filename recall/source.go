package recall

import (
	"context"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
)

// Source 是一个召回源：从 RecommendContext 中的目录快照生成候选。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

var (
	_ Source = (*Content)(nil)
	_ Source = (*Hot)(nil)
)

// SourceNode 把任意 Source 适配为 recall 阶段的 pipeline.Node，忽略上游输入。
type SourceNode struct {
	Source Source
}

func (n *SourceNode) Name() string        { return n.Source.Name() }
func (n *SourceNode) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *SourceNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return n.Source.Recall(ctx, rctx)
}
