// Package config 提供配置驱动的 Pipeline 装配：YAML/JSON 配置里声明
// 节点序列，工厂按类型名构建节点。外部源实现无法从配置里长出来，
// 必须在创建工厂时注入。
package config

import (
	"fmt"
	"time"

	"github.com/fluffy1211/moviedna/core"
	"github.com/fluffy1211/moviedna/enrich"
	"github.com/fluffy1211/moviedna/feature"
	"github.com/fluffy1211/moviedna/filter"
	"github.com/fluffy1211/moviedna/pipeline"
	"github.com/fluffy1211/moviedna/pkg/conv"
	"github.com/fluffy1211/moviedna/rank"
	"github.com/fluffy1211/moviedna/recall"
	"github.com/fluffy1211/moviedna/rerank"
	"github.com/fluffy1211/moviedna/source"
)

// Deps 是工厂构建节点时注入的外部依赖。
type Deps struct {
	Catalog   source.Catalog
	Community source.CommunityRatings
	Streaming source.StreamingAvailability
	Cache     core.Store
}

// DefaultFactory 返回包含所有内置 Node 的工厂。
func DefaultFactory(deps Deps) *pipeline.NodeFactory {
	factory := pipeline.NewNodeFactory()

	factory.Register("recall.collector", func(cfg map[string]any) (pipeline.Node, error) {
		return buildCollector(deps, cfg)
	})
	factory.Register("filter.diversity", buildDiversity)
	factory.Register("filter.rule", buildRuleFilter)
	factory.Register("enrich.aggregator", func(cfg map[string]any) (pipeline.Node, error) {
		return buildEnrich(deps, cfg)
	})
	factory.Register("feature.extractor", func(_ map[string]any) (pipeline.Node, error) {
		return feature.NewExtractor(), nil
	})
	factory.Register("rank.hybrid", buildScorer)
	factory.Register("rerank.diversify", buildDiversify)
	factory.Register("rerank.topn", func(cfg map[string]any) (pipeline.Node, error) {
		return &rerank.TopN{N: conv.ConfigGetInt(cfg, "n", 12)}, nil
	})

	return factory
}

func buildCollector(deps Deps, cfg map[string]any) (pipeline.Node, error) {
	if deps.Catalog == nil {
		return nil, fmt.Errorf("collector requires a catalog source")
	}

	prefs := core.Preferences{FavoriteGenres: conv.SliceAnyToInt(cfg["favorite_genres"])}
	c := recall.NewCollector(deps.Catalog, recall.DefaultPlan(prefs))
	c.Cache = deps.Cache
	if sec := conv.ConfigGetInt(cfg, "cache_ttl", 0); sec > 0 {
		c.CacheTTL = time.Duration(sec) * time.Second
	}
	if sec := conv.ConfigGetInt(cfg, "timeout", 0); sec > 0 {
		c.Timeout = time.Duration(sec) * time.Second
	}
	if n := conv.ConfigGetInt(cfg, "max_concurrent", 0); n > 0 {
		c.MaxConcurrent = n
	}
	c.MinVoteAverage = conv.ConfigGetFloat(cfg, "min_vote_average", c.MinVoteAverage)
	c.MinVoteCount = conv.ConfigGetInt(cfg, "min_vote_count", c.MinVoteCount)
	return c, nil
}

func buildDiversity(cfg map[string]any) (pipeline.Node, error) {
	return &filter.Diversity{Cap: conv.ConfigGetInt(cfg, "cap", 120)}, nil
}

func buildRuleFilter(cfg map[string]any) (pipeline.Node, error) {
	expr := conv.ConfigGet[string](cfg, "expr", "")
	rule, err := filter.NewRuleFilter(expr)
	if err != nil {
		return nil, err
	}
	return &filter.FilterNode{Filters: []filter.Filter{rule}}, nil
}

func buildEnrich(deps Deps, cfg map[string]any) (pipeline.Node, error) {
	if deps.Catalog == nil {
		return nil, fmt.Errorf("enrich requires a catalog source")
	}

	agg := enrich.NewAggregator(deps.Catalog, deps.Community, deps.Streaming, deps.Cache)
	if sec := conv.ConfigGetInt(cfg, "cache_ttl", 0); sec > 0 {
		agg.CacheTTL = time.Duration(sec) * time.Second
	}
	if n := conv.ConfigGetInt(cfg, "batch_size", 0); n > 0 {
		agg.BatchSize = n
	}
	if ms := conv.ConfigGetInt(cfg, "batch_delay_ms", 0); ms > 0 {
		agg.BatchDelay = time.Duration(ms) * time.Millisecond
	}

	opts := enrich.Options{
		IncludeCommunity: conv.ConfigGet[bool](cfg, "include_community", true),
		IncludeStreaming: conv.ConfigGet[bool](cfg, "include_streaming", true),
		Country:          conv.ConfigGet[string](cfg, "country", ""),
	}
	if ms := conv.ConfigGetInt(cfg, "timeout_ms", 0); ms > 0 {
		opts.Timeout = time.Duration(ms) * time.Millisecond
	}
	return &enrich.Node{Aggregator: agg, Options: opts}, nil
}

func buildScorer(cfg map[string]any) (pipeline.Node, error) {
	s := rank.NewHybridScorer()
	s.Policy.ContentWeight = conv.ConfigGetFloat(cfg, "content_weight", s.Policy.ContentWeight)
	s.Policy.CollaborativeWeight = conv.ConfigGetFloat(cfg, "collaborative_weight", s.Policy.CollaborativeWeight)
	s.Policy.ContextualWeight = conv.ConfigGetFloat(cfg, "contextual_weight", s.Policy.ContextualWeight)
	s.Policy.PopularityWeight = conv.ConfigGetFloat(cfg, "popularity_weight", s.Policy.PopularityWeight)
	return s, nil
}

func buildDiversify(cfg map[string]any) (pipeline.Node, error) {
	d := rerank.NewDiversify()
	d.MaxResults = conv.ConfigGetInt(cfg, "max_results", d.MaxResults)
	d.MinCount = conv.ConfigGetInt(cfg, "min_count", d.MinCount)
	d.HighScoreCutoff = conv.ConfigGetFloat(cfg, "high_score_cutoff", d.HighScoreCutoff)
	return d, nil
}
