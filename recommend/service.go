// Package recommend 编排一次推荐请求：
//
//	交互记录 -> 用户画像 -> TF-IDF 向量空间 -> 用户向量 -> 排序 Pipeline -> 推荐理由
//
// 没有可用信号（无交互、交互商品都不在目录、用户向量为空）时走冷启动：
// 默认按目录顺序返回前 Limit 个商品，不带推荐理由。
package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/explain"
	"github.com/rushteam/shoprec/filter"
	"github.com/rushteam/shoprec/metrics"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/pkg/logging"
	"github.com/rushteam/shoprec/recall"
	"github.com/rushteam/shoprec/rerank"
	"github.com/rushteam/shoprec/vector"
)

// ActivityLimit 是行为视图中每种交互类型保留的最近商品数。
const ActivityLimit = 3

// Service 是推荐服务。每次请求独立：不缓存画像和向量空间。
//
// 请求数、耗时和理由生成结果记录在 metrics 包的指标中，注册在 prometheus 默认 Registry；
// 嵌入方通过 prometheus.DefaultGatherer（例如 promhttp.Handler()）暴露或推送，本包不启动任何服务。
type Service struct {
	catalog  core.CatalogStore
	behavior core.BehaviorStore
	users    core.UserDirectory

	explainer          *explain.Generator
	candidateWindow    int
	limit              int
	explainConcurrency int

	// ranking 为 nil 时使用 DefaultRankingPipeline
	ranking *pipeline.Pipeline

	coldStart recall.Source
}

// Option 配置 Service。
type Option func(*Service)

// WithUserDirectory 设置用户目录，Users 依赖它。
func WithUserDirectory(u core.UserDirectory) Option {
	return func(s *Service) { s.users = u }
}

// WithExplainer 设置推荐理由生成器；未设置时所有推荐使用兜底理由。
func WithExplainer(g *explain.Generator) Option {
	return func(s *Service) { s.explainer = g }
}

// WithCandidateWindow 设置相似度排序后保留的候选数量。
func WithCandidateWindow(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.candidateWindow = n
		}
	}
}

// WithLimit 设置最终返回条数（冷启动同样适用）。
func WithLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithExplainConcurrency 设置单次请求内并发生成理由的上限。
func WithExplainConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.explainConcurrency = n
		}
	}
}

// WithRankingPipeline 替换默认排序 Pipeline（例如从 YAML 构建）。
// 理由生成节点总是追加在其后，不需要在 Pipeline 中声明。
func WithRankingPipeline(p *pipeline.Pipeline) Option {
	return func(s *Service) { s.ranking = p }
}

// WithColdStartSource 替换冷启动召回源。默认是不带热门列表的 recall.Hot，即按目录顺序。
func WithColdStartSource(src recall.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.coldStart = src
		}
	}
}

// New 创建推荐服务。
func New(catalog core.CatalogStore, behavior core.BehaviorStore, opts ...Option) *Service {
	s := &Service{
		catalog:            catalog,
		behavior:           behavior,
		candidateWindow:    recall.DefaultCandidateWindow,
		limit:              rerank.DefaultLimit,
		explainConcurrency: explain.DefaultConcurrency,
		coldStart:          &recall.Hot{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultRankingPipeline 是默认排序链路：内容召回 -> 过滤已交互商品 -> 截取前 limit 个。
func DefaultRankingPipeline(window, limit int) *pipeline.Pipeline {
	return &pipeline.Pipeline{
		Name: "ranked",
		Nodes: []pipeline.Node{
			&recall.Content{TopK: window},
			&filter.FilterNode{Filters: []filter.Filter{filter.NewInteractedFilter()}},
			&rerank.TopNNode{N: limit},
		},
	}
}

func (s *Service) coldStartPipeline() *pipeline.Pipeline {
	return &pipeline.Pipeline{
		Name: "cold_start",
		Nodes: []pipeline.Node{
			&recall.SourceNode{Source: s.coldStart},
			&rerank.TopNNode{N: s.limit},
		},
	}
}

// Recommend 为用户生成最多 Limit 条推荐。
//
// 存储读取失败原样包装返回；未知交互类型、向量维度不一致等契约错误
// 以 INVARIANT_VIOLATION 中止请求。理由生成失败不会中止请求。
func (s *Service) Recommend(ctx context.Context, userID string) (recs []core.Recommendation, err error) {
	ctx = logging.ContextWithNewRequestID(ctx)
	log := logging.Ctx(ctx).With().Str("component", "recommend").Str("user_id", userID).Logger()

	start := time.Now()
	path := metrics.PathError
	defer func() {
		metrics.RecordRecommend(path, time.Since(start))
		if err != nil {
			log.Error().Err(err).Msg("recommend failed")
			return
		}
		log.Info().Str("path", path).Int("count", len(recs)).Dur("took", time.Since(start)).Msg("recommend done")
	}()

	if userID == "" {
		return nil, core.NewDomainError(core.ModuleRecommend, core.ErrorCodeInvalidInput, "user_id is required")
	}

	interactions, err := s.behavior.FetchInteractions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch interactions: %w", err)
	}
	catalog, err := s.catalog.FetchProducts(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}

	rctx := &core.RecommendContext{
		UserID:       userID,
		Catalog:      catalog,
		Interactions: interactions,
		Params:       map[string]any{"limit": s.limit, "candidate_window": s.candidateWindow},
	}

	if len(interactions) == 0 {
		log.Debug().Str("reason", "no_interactions").Msg("cold start")
		path = metrics.PathColdStart
		return s.runColdStart(ctx, rctx)
	}

	profile, err := core.BuildUserProfile(userID, interactions)
	if err != nil {
		return nil, err
	}
	rctx.Profile = profile

	interacted, err := s.catalog.FetchProducts(ctx, profile.ProductIDs())
	if err != nil {
		return nil, fmt.Errorf("fetch interacted products: %w", err)
	}
	if len(interacted) == 0 {
		log.Debug().Str("reason", "unresolved_products").Int("profile_size", profile.Len()).Msg("cold start")
		path = metrics.PathColdStart
		return s.runColdStart(ctx, rctx)
	}
	rctx.Interacted = make(map[string]core.Product, len(interacted))
	for _, p := range interacted {
		rctx.Interacted[p.ID] = p
	}

	ix := vector.BuildIndex(catalog)
	userVec, ok := vector.ComposeUserVector(profile, ix)
	if !ok {
		log.Debug().Str("reason", "no_signal").Int("dimension", ix.Dimension()).Msg("cold start")
		path = metrics.PathColdStart
		return s.runColdStart(ctx, rctx)
	}
	rctx.ItemVectors = ix.Vectors
	rctx.UserVector = userVec

	ranking := s.ranking
	if ranking == nil {
		ranking = DefaultRankingPipeline(s.candidateWindow, s.limit)
	}
	items, err := ranking.Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}

	explainNode := &explain.Node{Generator: s.explainer, Concurrency: s.explainConcurrency}
	items, err = explainNode.Process(ctx, rctx, items)
	if err != nil {
		return nil, err
	}

	path = metrics.PathRanked
	return toRecommendations(items), nil
}

func (s *Service) runColdStart(ctx context.Context, rctx *core.RecommendContext) ([]core.Recommendation, error) {
	items, err := s.coldStartPipeline().Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}
	return toRecommendations(items), nil
}

func toRecommendations(items []*core.Item) []core.Recommendation {
	out := make([]core.Recommendation, 0, len(items))
	for _, it := range items {
		out = append(out, it.ToRecommendation())
	}
	return out
}

// Activity 返回用户近期行为：按交互类型分组，每组保留最近 ActivityLimit 个商品（按写入顺序）。
// 目录中找不到的商品和无法识别的交互类型被跳过。
func (s *Service) Activity(ctx context.Context, userID string) (*core.Activity, error) {
	if userID == "" {
		return nil, core.NewDomainError(core.ModuleRecommend, core.ErrorCodeInvalidInput, "user_id is required")
	}
	act := &core.Activity{
		Viewed:      []core.Product{},
		AddedToCart: []core.Product{},
		Purchased:   []core.Product{},
	}

	interactions, err := s.behavior.FetchInteractions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch interactions: %w", err)
	}
	if len(interactions) == 0 {
		return act, nil
	}

	ids := make([]string, 0, len(interactions))
	seen := make(map[string]struct{}, len(interactions))
	for _, rec := range interactions {
		if _, ok := seen[rec.ProductID]; ok {
			continue
		}
		seen[rec.ProductID] = struct{}{}
		ids = append(ids, rec.ProductID)
	}
	products, err := s.catalog.FetchProducts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch interacted products: %w", err)
	}
	byID := make(map[string]core.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, rec := range interactions {
		p, ok := byID[rec.ProductID]
		if !ok {
			continue
		}
		switch rec.Type {
		case core.InteractionViewed:
			act.Viewed = append(act.Viewed, p)
		case core.InteractionAddedToCart:
			act.AddedToCart = append(act.AddedToCart, p)
		case core.InteractionPurchased:
			act.Purchased = append(act.Purchased, p)
		default:
			logging.Ctx(ctx).Warn().Str("user_id", userID).Str("interaction_type", string(rec.Type)).
				Msg("skip unknown interaction type")
		}
	}
	act.Viewed = lastN(act.Viewed, ActivityLimit)
	act.AddedToCart = lastN(act.AddedToCart, ActivityLimit)
	act.Purchased = lastN(act.Purchased, ActivityLimit)
	return act, nil
}

func lastN(ps []core.Product, n int) []core.Product {
	if len(ps) <= n {
		return ps
	}
	return ps[len(ps)-n:]
}

// Users 列出所有用户。
func (s *Service) Users(ctx context.Context) ([]core.User, error) {
	if s.users == nil {
		return nil, core.NewDomainError(core.ModuleRecommend, core.ErrorCodeNotSupported, "user directory not configured")
	}
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
