package filter

import (
	"context"
	"math"
	"sort"

	"github.com/fluffy1211/moviedna/core"
	"github.com/fluffy1211/moviedna/pipeline"
)

// Diversity 是多样性预筛 Node：在富化之前把候选池压到 Cap 条，
// 同时保住类型/年代/语言的覆盖面。
//
// 纯质量排序会塌缩成清一色大片，纯多样性排序又会放进噪声，
// 所以按 0.7*质量 + 0.3*稀缺度混合排序后截断。稀缺度按全池频次
// 统计：某属性越少见，带该属性的候选得分越高。
//
// Cap 建议 ≥ 最终榜单长度的 10 倍，给富化损耗和后续多样性
// 保障留出余量。
type Diversity struct {
	Cap int // 截断上限，<=0 时用 120
}

func (n *Diversity) Name() string        { return "filter.diversity" }
func (n *Diversity) Kind() pipeline.Kind { return pipeline.KindFilter }

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	recs []*core.Recommendation,
) ([]*core.Recommendation, error) {
	cap := n.Cap
	if cap <= 0 {
		cap = 120
	}
	if len(recs) <= cap {
		return recs, nil
	}

	// 全池频次统计
	genreCount := make(map[int]int)
	decadeCount := make(map[string]int)
	langCount := make(map[string]int)
	for _, rec := range recs {
		m := rec.Movie
		for _, g := range m.GenreIDs {
			genreCount[g]++
		}
		decadeCount[m.Decade()]++
		langCount[m.OriginalLanguage]++
	}

	type scored struct {
		rec   *core.Recommendation
		total float64
	}
	out := make([]scored, 0, len(recs))
	for _, rec := range recs {
		m := rec.Movie

		var diversity float64
		for _, g := range m.GenreIDs {
			diversity += 1 / float64(1+genreCount[g])
		}
		diversity += 1 / float64(1+decadeCount[m.Decade()])
		diversity += 1 / float64(1+langCount[m.OriginalLanguage])

		quality := m.VoteAverage * math.Log10(float64(m.VoteCount)+1)
		out = append(out, scored{rec: rec, total: 0.7*quality + 0.3*diversity})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].total > out[j].total })

	kept := make([]*core.Recommendation, 0, cap)
	for i := 0; i < cap; i++ {
		kept = append(kept, out[i].rec)
	}
	return kept, nil
}
