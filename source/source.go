// Package source 定义引擎消费的外部数据源契约。
// 引擎只依赖这些接口；具体的 wire client（TMDB、影迷社区、流媒体聚合站等）
// 由调用方注入，任何满足契约的实现都可替换。
package source

import (
	"context"

	"github.com/fluffy1211/moviedna/core"
)

// Sort 是目录查询的排序方式。
type Sort string

const (
	SortPopularityDesc  Sort = "popularity.desc"
	SortVoteAverageDesc Sort = "vote_average.desc"
	SortReleaseDateDesc Sort = "release_date.desc"
)

// Filter 是目录查询的筛选条件，零值字段表示不限制。
type Filter struct {
	Genres        []int
	Keywords      []string // 关键词标签（cult film / award winner 等）
	OriginCountry string   // ISO 3166-1
	MinYear       int
	MaxYear       int
	MinRating     float64
	MaxRating     float64
	MinVoteCount  int
	MaxPopularity float64 // 冷门挖掘用上限
	SortBy        Sort
	Page          int
	List          string // 预置榜单：popular / top_rated / trending / now_playing
}

// Result 是一页目录查询结果。
type Result struct {
	Results    []*core.Movie
	TotalPages int
}

// Catalog 是目录源：候选电影的主来源，同时承担 primary detail fetch。
//
// 错误约定：超时用 core.ErrorCodeTimeout、连接失败/非 2xx 用
// core.ErrorCodeUnavailable 表示；聚合层据此就地降级，永不上抛。
type Catalog interface {
	// Query 按条件查询一页候选
	Query(ctx context.Context, f Filter) (*Result, error)

	// Details 拉取单片完整目录记录（详情/演职员/关键词/片上可看渠道）
	Details(ctx context.Context, id int64) (*core.EnrichedMovie, error)
}

// CommunityRatings 是社区评分源（评分 0-5、观看数、邪典标记、主题标签）。
// 查无此片返回 (nil, nil)；源不可用返回错误，聚合层降级为无数据。
type CommunityRatings interface {
	Lookup(ctx context.Context, title string, year int) (*core.CommunityRecord, error)
}

// StreamingAvailability 是流媒体可看性源。
// flatrate/rent/buy/ads 全部渠道都应返回，不只取最便宜的。
type StreamingAvailability interface {
	Availability(ctx context.Context, catalogID int64, country string) ([]core.Offer, error)
}

// Query 是一条可并发 fan-out 的目录查询描述符：Collector 消费统一的
// 描述符列表，而不是手写并行调用，便于局部失败处理与 mock 测试。
type Query struct {
	Name   string // 观测用名称（"popular" / "genre:28:top" / "intl:KR" ...）
	Filter Filter
	Pages  int // 拉取页数，默认 1
	Limit  int // 单查询候选截断，0 = 不截断
}
