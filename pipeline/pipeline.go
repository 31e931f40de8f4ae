package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/metrics"
	"github.com/rushteam/shoprec/pkg/logging"
)

// Pipeline 把推荐逻辑拆成可组合的 Node 链，按顺序执行。
type Pipeline struct {
	Name  string
	Nodes []Node
}

// Run 依次执行各 Node；任一 Node 出错即中止，错误带上 Node 名称。
// DomainError 原样向上传递，调用方可用 errors.As 识别。
func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	log := logging.Ctx(ctx)
	cur := items
	for _, node := range p.Nodes {
		start := time.Now()
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", node.Name(), err)
		}
		took := time.Since(start)
		metrics.RecordNode(node.Name(), string(node.Kind()), took)
		log.Debug().
			Str("pipeline", p.Name).
			Str("node", node.Name()).
			Str("kind", string(node.Kind())).
			Int("in", len(cur)).
			Int("out", len(next)).
			Dur("took", took).
			Msg("node done")
		cur = next
	}
	return cur, nil
}
