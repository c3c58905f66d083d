// Package enrich 把候选记录富化成打分可用的完整记录：主源详情 + 社区
// 评分 + 流媒体可看性，全部带独立超时与失败隔离，外加 TTL 缓存。
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fluffy1211/moviedna/core"
	"github.com/fluffy1211/moviedna/pipeline"
	"github.com/fluffy1211/moviedna/pkg/utils"
	"github.com/fluffy1211/moviedna/source"
)

// Options 控制一次富化要打哪些源。
type Options struct {
	IncludeCommunity bool
	IncludeStreaming bool
	Country          string        // 流媒体可看性的国家口径
	Timeout          time.Duration // 主源硬超时，<=0 用 10s；次级源各拿一半
}

// key 生成缓存键的选项部分，同参必同键。
func (o Options) key() string {
	return fmt.Sprintf("c=%t,s=%t,%s,%d", o.IncludeCommunity, o.IncludeStreaming, o.Country, int64(o.Timeout/time.Millisecond))
}

// Aggregator 是富化聚合器。
//
// 失败语义是这里的全部要点：
//   - 主源（目录详情）失败 → 整条退化成裸候选，空 DataQuality，不报错
//   - 次级源失败/超时 → 只降低 Completeness，绝不影响整条富化
//   - 超时的次级调用被放弃：结果晚到也直接丢弃（网络源普遍不支持
//     协作取消，这里只做 ignore-late-result）
//
// 合并策略：次级字段只新增/扩展，绝不覆盖删除主源字段。
type Aggregator struct {
	Catalog   source.Catalog
	Community source.CommunityRatings
	Streaming source.StreamingAvailability

	Cache    core.Store    // 可选；命中时跳过全部外部调用
	CacheTTL time.Duration // <=0 用 30min

	BatchSize  int           // <=0 用 5
	BatchDelay time.Duration // 批间延迟，防次级源限流，<0 用 200ms
}

func NewAggregator(catalog source.Catalog, community source.CommunityRatings, streaming source.StreamingAvailability, cache core.Store) *Aggregator {
	return &Aggregator{
		Catalog:    catalog,
		Community:  community,
		Streaming:  streaming,
		Cache:      cache,
		CacheTTL:   30 * time.Minute,
		BatchSize:  5,
		BatchDelay: 200 * time.Millisecond,
	}
}

// Enrich 富化单条候选。永不返回错误：最坏情况是裸候选形态。
func (a *Aggregator) Enrich(ctx context.Context, m *core.Movie, opts Options) *core.EnrichedMovie {
	cacheKey := "enrich:" + strconv.FormatInt(m.ID, 10) + ":" + opts.key()
	if a.Cache != nil {
		if data, err := a.Cache.Get(ctx, cacheKey); err == nil {
			var cached core.EnrichedMovie
			if json.Unmarshal(data, &cached) == nil {
				return &cached
			}
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	// 主源详情：硬超时，失败整条退化
	primaryCtx, cancel := context.WithTimeout(ctx, timeout)
	enriched, err := a.Catalog.Details(primaryCtx, m.ID)
	cancel()
	if err != nil || enriched == nil {
		return core.NewEnrichedMovie(m)
	}
	enriched.DataQuality.CatalogAvailable = true
	enriched.DataQuality.CreditsAvailable = enriched.Director != "" || len(enriched.MainCast) > 0
	enriched.DataQuality.KeywordsAvailable = len(enriched.Keywords) > 0

	// 次级源并发，各自独立超时（主超时的一半）与失败隔离
	a.fetchSecondary(ctx, enriched, opts, timeout/2)

	a.deriveCompleteness(enriched, opts)
	deriveConsensus(enriched)
	deriveTiers(enriched)

	if a.Cache != nil {
		if data, err := json.Marshal(enriched); err == nil {
			ttl := a.CacheTTL
			if ttl <= 0 {
				ttl = 30 * time.Minute
			}
			_ = a.Cache.Set(ctx, cacheKey, data, int(ttl/time.Second))
		}
	}
	return enriched
}

type communityResult struct {
	rec *core.CommunityRecord
	err error
}

type streamingResult struct {
	offers []core.Offer
	err    error
}

func (a *Aggregator) fetchSecondary(ctx context.Context, e *core.EnrichedMovie, opts Options, timeout time.Duration) {
	secCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var commCh chan communityResult
	if opts.IncludeCommunity && a.Community != nil {
		commCh = make(chan communityResult, 1) // buffered：晚到的结果不泄漏 goroutine
		go func() {
			rec, err := a.Community.Lookup(secCtx, e.Title, e.Year())
			commCh <- communityResult{rec: rec, err: err}
		}()
	}

	var streamCh chan streamingResult
	if opts.IncludeStreaming && a.Streaming != nil {
		streamCh = make(chan streamingResult, 1)
		go func() {
			offers, err := a.Streaming.Availability(secCtx, e.ID, opts.Country)
			streamCh <- streamingResult{offers: offers, err: err}
		}()
	}

	if commCh != nil {
		select {
		case r := <-commCh:
			if r.err == nil && r.rec != nil {
				mergeCommunity(e, r.rec)
			}
		case <-secCtx.Done():
			// 超时放弃，结果晚到也不要了
		}
	}
	if streamCh != nil {
		select {
		case r := <-streamCh:
			if r.err == nil {
				e.Offers = append(e.Offers, r.offers...)
				e.DataQuality.StreamingAvailable = len(r.offers) > 0
			}
		case <-secCtx.Done():
		}
	}
}

// mergeCommunity 把社区记录合入：只新增，不覆盖主源字段。
func mergeCommunity(e *core.EnrichedMovie, rec *core.CommunityRecord) {
	rating := rec.Rating
	watches := rec.Watches
	e.CommunityRating = &rating
	e.Watches = &watches
	if rec.CultClassic {
		e.CultClassic = true
	}
	e.Themes = append(e.Themes, rec.Themes...)
	e.DataQuality.CommunityAvailable = true
}

func (a *Aggregator) deriveCompleteness(e *core.EnrichedMovie, opts Options) {
	attempted := 3 // 目录详情 / 演职员 / 关键词都来自主源
	available := 0
	if e.DataQuality.CatalogAvailable {
		available++
	}
	if e.DataQuality.CreditsAvailable {
		available++
	}
	if e.DataQuality.KeywordsAvailable {
		available++
	}
	if opts.IncludeCommunity {
		attempted++
		if e.DataQuality.CommunityAvailable {
			available++
		}
	}
	if opts.IncludeStreaming {
		attempted++
		if e.DataQuality.StreamingAvailable {
			available++
		}
	}
	e.DataQuality.Completeness = float64(available) / float64(attempted)
}

// deriveConsensus 推导口碑档位：样本不足 30 票不下结论；
// 有社区评分时社区口径按 2:1 加权（人均单票，比聚合分更敏感）。
func deriveConsensus(e *core.EnrichedMovie) {
	if e.VoteCount < 30 {
		e.Consensus = core.ConsensusUnknown
		return
	}
	avg := e.VoteAverage
	if e.CommunityRating != nil {
		avg = (e.VoteAverage + *e.CommunityRating*2*2) / 3
	}
	switch {
	case avg >= 8:
		e.Consensus = core.ConsensusAcclaimed
	case avg >= 6.5:
		e.Consensus = core.ConsensusMixed
	default:
		e.Consensus = core.ConsensusPoor
	}
}

// deriveTiers 推导票房量级与独立/文艺标记。
func deriveTiers(e *core.EnrichedMovie) {
	switch {
	case e.Budget == 0 && e.Revenue == 0:
		e.BoxOffice = core.BoxOfficeUnknown
	case e.Revenue >= 100_000_000:
		e.BoxOffice = core.BoxOfficeBlockbuster
	case e.Budget > 0 && e.Budget < 5_000_000:
		e.BoxOffice = core.BoxOfficeIndie
	default:
		e.BoxOffice = core.BoxOfficeModerate
	}

	for _, kw := range e.Keywords {
		switch kw {
		case "independent film", "indie":
			e.Indie = true
		case "arthouse", "art house":
			e.Arthouse = true
		case "cult film", "cult classic":
			e.CultClassic = true
		}
	}
	if e.BoxOffice == core.BoxOfficeIndie {
		e.Indie = true
	}
}

// EnrichBatch 分批富化：每批 BatchSize 条并发，批间固定延迟防限流。
// 单条退化不影响同批其余条目。输出顺序与输入一致。
func (a *Aggregator) EnrichBatch(ctx context.Context, movies []*core.Movie, opts Options) []*core.EnrichedMovie {
	size := a.BatchSize
	if size <= 0 {
		size = 5
	}
	delay := a.BatchDelay
	if delay < 0 {
		delay = 200 * time.Millisecond
	}

	out := make([]*core.EnrichedMovie, len(movies))
	for start := 0; start < len(movies); start += size {
		end := start + size
		if end > len(movies) {
			end = len(movies)
		}

		eg, batchCtx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			eg.Go(func() error {
				out[i] = a.Enrich(batchCtx, movies[i], opts)
				return nil
			})
		}
		_ = eg.Wait() // Enrich 永不报错

		if end < len(movies) && delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				// 请求整体被取消：剩余候选以裸形态补齐
				for i := end; i < len(movies); i++ {
					out[i] = core.NewEnrichedMovie(movies[i])
				}
				return out
			}
		}
	}
	return out
}

// Node 把聚合器包装成 pipeline 节点。
type Node struct {
	Aggregator *Aggregator
	Options    Options
}

func (n *Node) Name() string        { return "enrich.aggregator" }
func (n *Node) Kind() pipeline.Kind { return pipeline.KindEnrich }

// Process 用富化后的记录替换每条候选的 Movie（派生新记录，不改旧的）。
func (n *Node) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	recs []*core.Recommendation,
) ([]*core.Recommendation, error) {
	if len(recs) == 0 {
		return recs, nil
	}

	opts := n.Options
	if opts.Country == "" && rctx != nil {
		opts.Country = rctx.Country
	}

	movies := make([]*core.Movie, len(recs))
	for i, rec := range recs {
		movies[i] = &rec.Movie.Movie
	}

	enriched := n.Aggregator.EnrichBatch(ctx, movies, opts)
	for i, rec := range recs {
		rec.Movie = enriched[i]
		rec.PutLabel("enrich_completeness", utils.Label{
			Value:  strconv.FormatFloat(enriched[i].DataQuality.Completeness, 'f', 2, 64),
			Source: "enrich",
		})
	}
	return recs, nil
}
