package rerank

import (
	"context"
	"sort"

	"github.com/fluffy1211/moviedna/core"
	"github.com/fluffy1211/moviedna/pipeline"
	"github.com/fluffy1211/moviedna/pkg/utils"
)

// Diversify 是多样性重排 Node：按分数降序做贪心准入，保证最终榜单
// 的类型/年代/导演覆盖面，不让高分同质片霸榜。
//
// 准入规则（满足其一即收）：带来新类型、新年代、新导演；分数过高线
// （HighScoreCutoff）；或已收数量还不到保底条数（MinCount）。
// adventurous 用户给因多样性入选的条目小幅加分，让探索型结果排得靠前。
// 贪心收不满时按分数回填，最后统一重排、截断到 MaxResults。
type Diversify struct {
	MaxResults      int     // <=0 用 12
	MinCount        int     // <=0 用 6
	HighScoreCutoff float64 // <=0 用 0.7

	// adventurous 的多样性加分
	NewGenreBonus    float64
	NewDecadeBonus   float64
	NewDirectorBonus float64
}

func NewDiversify() *Diversify {
	return &Diversify{
		MaxResults:       12,
		MinCount:         6,
		HighScoreCutoff:  0.7,
		NewGenreBonus:    0.1,
		NewDecadeBonus:   0.05,
		NewDirectorBonus: 0.05,
	}
}

func (n *Diversify) Name() string        { return "rerank.diversify" }
func (n *Diversify) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *Diversify) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	recs []*core.Recommendation,
) ([]*core.Recommendation, error) {
	if len(recs) == 0 {
		return recs, nil
	}

	max := n.MaxResults
	if max <= 0 {
		max = 12
	}
	min := n.MinCount
	if min <= 0 {
		min = 6
	}
	cutoff := n.HighScoreCutoff
	if cutoff <= 0 {
		cutoff = 0.7
	}

	adventurous := rctx != nil && rctx.DiscoveryPreference == core.DiscoveryAdventurous

	sorted := make([]*core.Recommendation, 0, len(recs))
	for _, rec := range recs {
		if rec != nil && rec.Movie != nil {
			sorted = append(sorted, rec)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })

	seenGenres := make(map[int]bool)
	seenDecades := make(map[string]bool)
	seenDirectors := make(map[string]bool)
	admitted := make([]*core.Recommendation, 0, max)
	inList := make(map[int64]bool)

	// 贪心准入
	for _, rec := range sorted {
		if len(admitted) >= max+3 {
			break
		}
		m := rec.Movie

		newGenre := false
		for _, g := range m.GenreIDs {
			if !seenGenres[g] {
				newGenre = true
				break
			}
		}
		newDecade := !seenDecades[m.Decade()]
		newDirector := m.Director != "" && !seenDirectors[m.Director]

		admit := newGenre || newDecade || newDirector ||
			rec.Score >= cutoff || len(admitted) < min
		if !admit {
			continue
		}

		if adventurous {
			bonus := 0.0
			if newGenre {
				bonus += n.NewGenreBonus
			}
			if newDecade {
				bonus += n.NewDecadeBonus
			}
			if newDirector {
				bonus += n.NewDirectorBonus
			}
			if bonus > 0 {
				rec.Score += bonus
				rec.PutLabel("diversity_bonus", utils.Label{Value: "adventurous", Source: "rerank"})
			}
		}

		for _, g := range m.GenreIDs {
			seenGenres[g] = true
		}
		seenDecades[m.Decade()] = true
		if m.Director != "" {
			seenDirectors[m.Director] = true
		}
		admitted = append(admitted, rec)
		inList[m.ID] = true
	}

	// 回填：不够数时按分数补齐剩余高分片
	if len(admitted) < max+3 {
		for _, rec := range sorted {
			if len(admitted) >= max+3 {
				break
			}
			if inList[rec.Movie.ID] {
				continue
			}
			admitted = append(admitted, rec)
			inList[rec.Movie.ID] = true
		}
	}

	// 加分后统一重排再截断
	sort.SliceStable(admitted, func(i, j int) bool { return admitted[i].Score > admitted[j].Score })
	if len(admitted) > max {
		admitted = admitted[:max]
	}
	return admitted, nil
}
