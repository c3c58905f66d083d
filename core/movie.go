package core

import (
	"fmt"
	"strconv"
)

// Movie 是候选电影的核心记录：由目录源（Catalog）的各种查询产出。
// ID 跨所有来源全局唯一；同 ID 的两条记录视为同一部电影，由 Collector 合并。
// 进入下游后视为不可变，Enrichment 产出派生记录而非原地修改。
type Movie struct {
	ID               int64
	Title            string
	OriginalTitle    string
	OriginalLanguage string
	Overview         string
	ReleaseDate      string // "2006-01-15" 形式，前 4 位为年份；可为空
	GenreIDs         []int
	VoteAverage      float64 // 0-10
	VoteCount        int
	Popularity       float64
	Adult            bool
}

// Year 返回上映年份，解析失败返回 0。
func (m *Movie) Year() int {
	if len(m.ReleaseDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(m.ReleaseDate[:4])
	if err != nil {
		return 0
	}
	return year
}

// Decade 返回所属年代（如 "1990s"），未知返回空字符串。
func (m *Movie) Decade() string {
	year := m.Year()
	if year == 0 {
		return ""
	}
	return fmt.Sprintf("%ds", year/10*10)
}

// HasGenre 检查电影是否含有指定类型。
func (m *Movie) HasGenre(genreID int) bool {
	for _, id := range m.GenreIDs {
		if id == genreID {
			return true
		}
	}
	return false
}

// OfferType 是流媒体可看方式。
type OfferType string

const (
	OfferFlatrate OfferType = "flatrate" // 订阅内免费
	OfferRent     OfferType = "rent"
	OfferBuy      OfferType = "buy"
	OfferAds      OfferType = "ads" // 含广告免费
)

// Offer 是一条流媒体可看性记录，全部类型都会保留（不只取最便宜的）。
type Offer struct {
	ProviderName string    `json:"provider_name"`
	Type         OfferType `json:"type"`
}

// CommunityRecord 是社区评分源（影迷社区）返回的单片记录。
// 评分为 0-5 制；查无此片时 Lookup 返回 (nil, nil)。
type CommunityRecord struct {
	Rating      float64  `json:"rating"` // 0-5
	Watches     int64    `json:"watches"`
	CultClassic bool     `json:"cult_classic"`
	Themes      []string `json:"themes"`
}

// Consensus 是综合口碑档位，由主评分、社区评分与票数推导。
type Consensus string

const (
	ConsensusUnknown   Consensus = "unknown"
	ConsensusPoor      Consensus = "poor"
	ConsensusMixed     Consensus = "mixed"
	ConsensusAcclaimed Consensus = "acclaimed"
)

// BoxOfficeCategory 是票房/成本量级档位。
type BoxOfficeCategory string

const (
	BoxOfficeUnknown     BoxOfficeCategory = "unknown"
	BoxOfficeIndie       BoxOfficeCategory = "indie"
	BoxOfficeModerate    BoxOfficeCategory = "moderate"
	BoxOfficeBlockbuster BoxOfficeCategory = "blockbuster"
)

// DataQuality 记录每个外部源是否返回了可用数据，以及综合完整度。
// Completeness = 返回数据的源数 / 尝试的源数，取值 [0,1]。
type DataQuality struct {
	CatalogAvailable   bool    `json:"catalog_available"`
	CommunityAvailable bool    `json:"community_available"`
	StreamingAvailable bool    `json:"streaming_available"`
	CreditsAvailable   bool    `json:"credits_available"`
	KeywordsAvailable  bool    `json:"keywords_available"`
	Completeness       float64 `json:"completeness"`
}

// EnrichedMovie 是候选电影经 Enrichment 之后的派生记录。
//
// 可选字段语义：
//   - 指针字段（CommunityRating / Watches）区分"无数据"与"数据为零"——
//     打分时缺失一律按中性/零贡献处理，禁止因缺失报错
//   - 切片字段缺失即为空切片
type EnrichedMovie struct {
	Movie

	// 目录详情（primary detail fetch）
	Runtime             int      `json:"runtime,omitempty"` // 分钟，0 = 未知
	Budget              int64    `json:"budget,omitempty"`
	Revenue             int64    `json:"revenue,omitempty"`
	GenreNames          []string `json:"genre_names,omitempty"`
	Director            string   `json:"director,omitempty"`
	MainCast            []string `json:"main_cast,omitempty"`
	Keywords            []string `json:"keywords,omitempty"`
	ProductionCountries []string `json:"production_countries,omitempty"` // ISO 3166-1

	// 社区源（secondary）
	CommunityRating *float64 `json:"community_rating,omitempty"` // 0-5，nil = 无数据
	Watches         *int64   `json:"watches,omitempty"`          // nil = 无数据
	CultClassic     bool     `json:"cult_classic,omitempty"`
	Indie           bool     `json:"indie,omitempty"`
	Arthouse        bool     `json:"arthouse,omitempty"`
	Themes          []string `json:"themes,omitempty"`

	// 流媒体源（secondary）
	Offers []Offer `json:"offers,omitempty"`

	// 派生档位
	Consensus Consensus         `json:"consensus,omitempty"`
	BoxOffice BoxOfficeCategory `json:"box_office,omitempty"`

	DataQuality DataQuality `json:"data_quality"`
}

// NewEnrichedMovie 从候选记录构建"裸"的派生记录（Enrichment 失败时的兜底形态）。
func NewEnrichedMovie(m *Movie) *EnrichedMovie {
	return &EnrichedMovie{Movie: *m}
}

// HasOffers 检查是否有任一流媒体可看方式。
func (e *EnrichedMovie) HasOffers() bool {
	return len(e.Offers) > 0
}
