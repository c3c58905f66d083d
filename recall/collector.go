package recall

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fluffy1211/moviedna/core"
	"github.com/fluffy1211/moviedna/pipeline"
	"github.com/fluffy1211/moviedna/pkg/utils"
	"github.com/fluffy1211/moviedna/source"
)

// CollectStats 是一次候选采集的观测数据。
type CollectStats struct {
	Attempted    int // 发起的查询数
	Succeeded    int // 成功返回的查询数
	Failed       int // 失败/超时的查询数
	TotalRecords int // 去重前的原始记录数
	Admitted     int // 通过质量闸门的唯一候选数
	UsedFallback bool
	FromCache    bool // 候选池整体命中缓存，本次未打目录源
}

// Collector 是候选采集器：并发执行多路目录查询并合并结果。
// 支持超时、限流、质量闸门。单条查询失败就地吞掉，绝不中断整体采集；
// 全部失败或池为空时落到静态兜底片单。
//
// Collector 同时实现了 Node 接口，可以直接在 Pipeline 中使用。
type Collector struct {
	Catalog       source.Catalog
	Queries       []source.Query
	Timeout       time.Duration // 每路查询的超时时间
	MaxConcurrent int           // 最大并发数（0 表示无限制）

	// 质量闸门：低分烂片和样本过少的片在入池前剔除
	MinVoteAverage float64
	MinVoteCount   int

	Fallback []*core.Movie // 全部失败时的静态兜底

	// 候选池缓存：按查询计划摘要整体缓存，命中时跳过全部目录查询。
	// 兜底得到的池不落缓存（下次还要再试真实源）。
	Cache    core.Store
	CacheTTL time.Duration // <=0 用 10min
}

// NewCollector 返回带默认闸门参数的采集器。
func NewCollector(catalog source.Catalog, queries []source.Query) *Collector {
	return &Collector{
		Catalog:        catalog,
		Queries:        queries,
		Timeout:        8 * time.Second,
		MaxConcurrent:  8,
		MinVoteAverage: 5.5,
		MinVoteCount:   20,
		Fallback:       FallbackMovies(),
	}
}

func (n *Collector) Name() string        { return "recall.collector" }
func (n *Collector) Kind() pipeline.Kind { return pipeline.KindCollect }

// Process 实现 Node 接口：忽略输入，输出采集到的候选池。
func (n *Collector) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Recommendation,
) ([]*core.Recommendation, error) {
	pool, stats, err := n.Collect(ctx)
	if err != nil {
		return nil, err
	}
	if rctx != nil {
		rctx.PutLabel("collect_attempted", utils.Label{Value: strconv.Itoa(stats.Attempted), Source: "collect"})
		rctx.PutLabel("collect_succeeded", utils.Label{Value: strconv.Itoa(stats.Succeeded), Source: "collect"})
		rctx.PutLabel("collect_admitted", utils.Label{Value: strconv.Itoa(stats.Admitted), Source: "collect"})
		if stats.UsedFallback {
			rctx.PutLabel("collect_fallback", utils.Label{Value: "static", Source: "collect"})
		}
	}

	return Materialize(pool), nil
}

// Materialize 把候选池转成推荐承载结构并打上来源标签。
func Materialize(pool map[int64]*Candidate) []*core.Recommendation {
	out := make([]*core.Recommendation, 0, len(pool))
	for _, c := range pool {
		rec := core.NewRecommendation(core.NewEnrichedMovie(c.Movie))
		rec.PutLabel("collect_source", utils.Label{Value: c.Sources, Source: "collect"})
		if c.Fallback {
			rec.PutLabel("collect_fallback", utils.Label{Value: "static", Source: "collect"})
		}
		out = append(out, rec)
	}
	return out
}

// Candidate 是池中的一条候选：记录及其贡献来源（逗号拼接的查询名）。
type Candidate struct {
	Movie    *core.Movie
	Sources  string
	Fallback bool
}

// Collect 并发执行所有查询并合并为按 ID 去重的候选池。
//
// 合并规则：同一 ID 出现多条记录时保留 VoteCount 更高的那条（样本更大
// 的记录口径更新），来源名累积。该规则与到达顺序无关。
func (n *Collector) Collect(ctx context.Context) (map[int64]*Candidate, *CollectStats, error) {
	stats := &CollectStats{Attempted: len(n.Queries)}

	cacheKey := n.cacheKey()
	if n.Cache != nil {
		if pool, ok := n.cachedPool(ctx, cacheKey); ok {
			stats.FromCache = true
			stats.Admitted = len(pool)
			return pool, stats, nil
		}
	}

	pool := make(map[int64]*Candidate)

	var (
		mu    sync.Mutex
		eg, _ = errgroup.WithContext(ctx)
	)
	if n.MaxConcurrent > 0 {
		eg.SetLimit(n.MaxConcurrent)
	}

	for _, q := range n.Queries {
		q := q
		eg.Go(func() error {
			movies, err := n.runQuery(ctx, q)
			if err != nil {
				// 超时或错误只计数，不中断其他查询
				mu.Lock()
				stats.Failed++
				mu.Unlock()
				return nil
			}

			mu.Lock()
			stats.Succeeded++
			stats.TotalRecords += len(movies)
			for _, m := range movies {
				n.admit(pool, m, q.Name)
			}
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, stats, err
	}
	stats.Admitted = len(pool)

	// 空池兜底：静态片单照常过闸门，但标记来源
	if len(pool) == 0 {
		for _, m := range n.Fallback {
			c := &Candidate{Movie: m, Sources: "fallback", Fallback: true}
			pool[m.ID] = c
		}
		stats.UsedFallback = true
		stats.Admitted = len(pool)
		if len(pool) == 0 {
			return nil, stats, core.ErrEmptyCandidatePool
		}
		return pool, stats, nil
	}

	if n.Cache != nil {
		n.cachePool(ctx, cacheKey, pool)
	}
	return pool, stats, nil
}

// cacheKey 对查询计划与闸门参数取摘要，同计划必同键。
func (n *Collector) cacheKey() string {
	h := fnv.New64a()
	if data, err := json.Marshal(n.Queries); err == nil {
		_, _ = h.Write(data)
	}
	fmt.Fprintf(h, "|%g|%d", n.MinVoteAverage, n.MinVoteCount)
	return "candidates:" + strconv.FormatUint(h.Sum64(), 16)
}

func (n *Collector) cachedPool(ctx context.Context, key string) (map[int64]*Candidate, bool) {
	data, err := n.Cache.Get(ctx, key)
	if err != nil {
		return nil, false
	}
	var list []*Candidate
	if json.Unmarshal(data, &list) != nil || len(list) == 0 {
		return nil, false
	}
	pool := make(map[int64]*Candidate, len(list))
	for _, c := range list {
		if c != nil && c.Movie != nil {
			pool[c.Movie.ID] = c
		}
	}
	return pool, len(pool) > 0
}

func (n *Collector) cachePool(ctx context.Context, key string, pool map[int64]*Candidate) {
	list := make([]*Candidate, 0, len(pool))
	for _, c := range pool {
		list = append(list, c)
	}
	data, err := json.Marshal(list)
	if err != nil {
		return
	}
	ttl := n.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	_ = n.Cache.Set(ctx, key, data, int(ttl/time.Second))
}

// runQuery 执行单路查询（含分页与单查询截断），带独立超时。
func (n *Collector) runQuery(ctx context.Context, q source.Query) ([]*core.Movie, error) {
	if n.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.Timeout)
		defer cancel()
	}

	pages := q.Pages
	if pages <= 0 {
		pages = 1
	}

	var out []*core.Movie
	f := q.Filter
	for p := 1; p <= pages; p++ {
		f.Page = p
		res, err := n.Catalog.Query(ctx, f)
		if err != nil {
			// 首页失败视为整路失败；后续页失败保留已得结果
			if p == 1 {
				return nil, err
			}
			break
		}
		out = append(out, res.Results...)
		if q.Limit > 0 && len(out) >= q.Limit {
			out = out[:q.Limit]
			break
		}
		if res.TotalPages > 0 && p >= res.TotalPages {
			break
		}
	}
	return out, nil
}

// admit 对单条记录执行质量闸门并合入池（调用方持锁）。
func (n *Collector) admit(pool map[int64]*Candidate, m *core.Movie, src string) {
	if m == nil || m.ID == 0 {
		return
	}
	if m.VoteAverage < n.MinVoteAverage || m.VoteCount < n.MinVoteCount {
		return
	}
	old, ok := pool[m.ID]
	if !ok {
		pool[m.ID] = &Candidate{Movie: m, Sources: src}
		return
	}
	if m.VoteCount > old.Movie.VoteCount {
		old.Movie = m
	}
	old.Sources = old.Sources + "," + src
}

