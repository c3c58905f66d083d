// Package engine 把采集、预筛、富化、特征、打分、重排装配成完整的
// 推荐流程，并负责画像折算、探索偏好推断与兜底策略。
package engine

import (
	"context"
	"sort"

	"github.com/fluffy1211/moviedna/core"
	"github.com/fluffy1211/moviedna/enrich"
	"github.com/fluffy1211/moviedna/feature"
	"github.com/fluffy1211/moviedna/filter"
	"github.com/fluffy1211/moviedna/pipeline"
	"github.com/fluffy1211/moviedna/profile"
	"github.com/fluffy1211/moviedna/rank"
	"github.com/fluffy1211/moviedna/recall"
	"github.com/fluffy1211/moviedna/rerank"
	"github.com/fluffy1211/moviedna/source"
)

// Stats 是单次推荐的聚合观测数据。
type Stats struct {
	Collect               *recall.CollectStats
	CandidatesAfterFilter int
	Scored                int
	Returned              int
	UsedRelaxedFallback   bool // 打分后无合格候选，按裸评分兜底
}

// Engine 是推荐引擎。各阶段均可单独替换，零值字段由 New 填默认实现。
type Engine struct {
	Collector *recall.Collector
	PreFilter *filter.Diversity
	Enricher  *enrich.Aggregator
	Features  *feature.Extractor
	Scorer    *rank.HybridScorer
	Ranker    *rerank.Diversify
	Profiles  *profile.Store

	EnrichOptions enrich.Options

	// RelaxedFallbackK 是兜底时按裸评分返回的条数，<=0 用 5
	RelaxedFallbackK int
}

// Deps 是引擎依赖的外部源集合。
type Deps struct {
	Catalog   source.Catalog
	Community source.CommunityRatings
	Streaming source.StreamingAvailability
	Cache     core.Store // 可选的富化缓存
}

// New 用默认各阶段装配引擎。查询计划在每次请求时按用户偏好生成。
func New(deps Deps) *Engine {
	collector := recall.NewCollector(deps.Catalog, nil)
	collector.Cache = deps.Cache
	return &Engine{
		Collector: collector,
		PreFilter: &filter.Diversity{Cap: 120},
		Enricher:  enrich.NewAggregator(deps.Catalog, deps.Community, deps.Streaming, deps.Cache),
		Features:  feature.NewExtractor(),
		Scorer:    rank.NewHybridScorer(),
		Ranker:    rerank.NewDiversify(),
		Profiles:  profile.NewStore(),
		EnrichOptions: enrich.Options{
			IncludeCommunity: true,
			IncludeStreaming: true,
		},
	}
}

// Recommend 执行一次完整推荐。
//
// 错误语义：唯一向调用方传播的错误是偏好校验失败（INVALID_INPUT）
// 和连静态兜底都拿不到候选（EMPTY_POOL）；外部源的超时/不可用
// 已在各阶段就地消化。
func (e *Engine) Recommend(ctx context.Context, rctx *core.RecommendContext) ([]*core.Recommendation, *Stats, error) {
	stats := &Stats{}

	// 偏好折入画像：这是调用方输入契约，校验失败要报出去
	user, err := e.Profiles.ApplyPreferences(rctx.UserID, rctx.Preferences)
	if err != nil {
		return nil, nil, err
	}
	if len(rctx.ViewingHistory) > 0 {
		user = e.Profiles.AddViewingHistory(rctx.UserID, rctx.ViewingHistory...)
	}
	rctx.User = user

	if rctx.DiscoveryPreference == "" {
		rctx.DiscoveryPreference = inferDiscovery(rctx.Preferences)
	}
	if rctx.Country == "" {
		rctx.Country = "US"
	}

	// 本次请求的查询计划：全量铺开 + 用户偏好类型加深
	collector := *e.Collector
	if len(collector.Queries) == 0 {
		collector.Queries = recall.DefaultPlan(rctx.Preferences)
	}

	pool, cstats, err := collector.Collect(ctx)
	stats.Collect = cstats
	if err != nil {
		return nil, stats, err
	}
	candidates := recall.Materialize(pool)

	filtered, err := e.PreFilter.Process(ctx, rctx, candidates)
	if err != nil {
		return nil, stats, err
	}
	stats.CandidatesAfterFilter = len(filtered)

	p := &pipeline.Pipeline{Nodes: []pipeline.Node{
		&enrich.Node{Aggregator: e.Enricher, Options: e.EnrichOptions},
		e.Features,
		e.Scorer,
	}}
	scored, err := p.Run(ctx, rctx, filtered)
	if err != nil {
		return nil, stats, err
	}
	stats.Scored = len(scored)

	ranked, err := e.Ranker.Process(ctx, rctx, scored)
	if err != nil {
		return nil, stats, err
	}

	// 推荐面永不返回空：有候选但没有合格结果时按裸评分兜底。
	// 打分后全部被上下文后置过滤剔除时，回退到打分前的候选集取兜底。
	if len(ranked) == 0 {
		base := scored
		if len(base) == 0 {
			base = filtered
		}
		if len(base) > 0 {
			ranked = e.relaxedFallback(base)
			stats.UsedRelaxedFallback = true
		}
	}

	stats.Returned = len(ranked)
	return ranked, stats, nil
}

// relaxedFallback 按主源裸评分取前 K，挂通用理由。
func (e *Engine) relaxedFallback(scored []*core.Recommendation) []*core.Recommendation {
	k := e.RelaxedFallbackK
	if k <= 0 {
		k = 5
	}
	out := make([]*core.Recommendation, len(scored))
	copy(out, scored)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Movie.VoteAverage > out[j].Movie.VoteAverage
	})
	if len(out) > k {
		out = out[:k]
	}
	for _, rec := range out {
		rec.Reasons = []core.Reason{{
			Type:    core.ReasonFallback,
			Message: "A widely praised pick while we learn your taste",
			Weight:  0.1,
		}}
		rec.WatchPriority = core.PriorityLow
	}
	return out
}

// inferDiscovery 在用户未显式选择探索偏好时从声明偏好推断：
// 评分门槛高的用户求稳，口味铺得宽或心情亢奋的用户爱探索。
func inferDiscovery(prefs core.Preferences) core.Discovery {
	if prefs.RatingThreshold >= 7.5 {
		return core.DiscoverySafe
	}
	if len(prefs.FavoriteGenres) >= 5 {
		return core.DiscoveryAdventurous
	}
	for _, m := range prefs.MoodPreferences {
		if m == "excited" {
			return core.DiscoveryAdventurous
		}
	}
	return core.DiscoveryMixed
}
