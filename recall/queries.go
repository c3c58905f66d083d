package recall

import (
	"strconv"

	"github.com/fluffy1211/moviedna/core"
	"github.com/fluffy1211/moviedna/feature"
	"github.com/fluffy1211/moviedna/source"
)

// 国际片挖掘覆盖的出品国。
var internationalCountries = []string{"KR", "JP", "FR", "IT", "ES", "DE", "IN", "BR", "MX", "IR"}

// 年代挖掘的起始年份（每档十年）。
var eraStarts = []int{2020, 2010, 2000, 1990, 1980, 1970}

var sorts = []source.Sort{
	source.SortPopularityDesc,
	source.SortVoteAverageDesc,
	source.SortReleaseDateDesc,
}

// DefaultPlan 构造全量查询计划：预置榜单、按类型×排序的矩阵扫描、
// 冷门/邪典/获奖/纪录片/国际片挖掘、年代扫描，外加用户偏好类型的加权查询。
// 刻意铺宽：宁可多查后过滤，也不让候选池偏科。
func DefaultPlan(prefs core.Preferences) []source.Query {
	var plan []source.Query

	for _, list := range []string{"popular", "top_rated", "trending", "now_playing"} {
		plan = append(plan, source.Query{
			Name:   list,
			Filter: source.Filter{List: list},
			Pages:  2,
		})
	}

	// 类型 × 排序矩阵
	for _, g := range feature.DefaultGenres() {
		for _, s := range sorts {
			plan = append(plan, source.Query{
				Name:   "genre:" + strconv.Itoa(g) + ":" + string(s),
				Filter: source.Filter{Genres: []int{g}, SortBy: s, MinVoteCount: 50},
			})
		}
	}

	// 冷门佳片：高分但低热度
	plan = append(plan, source.Query{
		Name:   "hidden_gems",
		Filter: source.Filter{MinRating: 7.0, MaxPopularity: 50, SortBy: source.SortVoteAverageDesc},
		Pages:  2,
	})

	// 邪典片
	plan = append(plan, source.Query{
		Name:   "cult",
		Filter: source.Filter{Keywords: []string{"cult film"}, MinYear: 1970, SortBy: source.SortVoteAverageDesc},
	})

	// 获奖片
	plan = append(plan, source.Query{
		Name:   "award",
		Filter: source.Filter{Keywords: []string{"award winner"}, MinRating: 7.5, MinYear: 1990, SortBy: source.SortVoteAverageDesc},
	})

	// 纪录片
	plan = append(plan, source.Query{
		Name:   "documentary",
		Filter: source.Filter{Genres: []int{99}, MinRating: 7.0, MinYear: 2000, SortBy: source.SortVoteAverageDesc},
	})

	// 国际片
	for _, c := range internationalCountries {
		plan = append(plan, source.Query{
			Name:   "intl:" + c,
			Filter: source.Filter{OriginCountry: c, MinRating: 6.5, SortBy: source.SortPopularityDesc},
		})
	}

	// 年代扫描
	for _, y := range eraStarts {
		plan = append(plan, source.Query{
			Name:   "era:" + strconv.Itoa(y) + "s",
			Filter: source.Filter{MinYear: y, MaxYear: y + 9, MinVoteCount: 100, SortBy: source.SortVoteAverageDesc},
		})
	}

	// 用户偏好类型加深一层
	for _, g := range prefs.FavoriteGenres {
		plan = append(plan, source.Query{
			Name:   "pref:" + strconv.Itoa(g),
			Filter: source.Filter{Genres: []int{g}, SortBy: source.SortPopularityDesc},
			Pages:  2,
		})
	}

	return plan
}
