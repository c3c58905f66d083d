package feature

import (
	"context"
	"math"
	"sync"

	"github.com/fluffy1211/moviedna/core"
	"github.com/fluffy1211/moviedna/pipeline"
)

// Extractor 把富化后的电影记录转成定长数值特征。纯函数 + 按 ID 记忆化：
// 同一部片在进程生命周期内只算一次（词表固定，同 ID 必得同向量），
// 缓存整条记录原子写入，并发读安全。
//
// Extractor 同时实现了 Node 接口，可以直接在 Pipeline 中使用。
type Extractor struct {
	Genres []int    // 有序类型词表，空则用默认词表
	Themes []string // 有序主题词表，空则用默认词表

	mu    sync.RWMutex
	cache map[int64]*core.FeatureVector
}

func NewExtractor() *Extractor {
	return &Extractor{
		Genres: DefaultGenres(),
		Themes: DefaultThemes(),
		cache:  make(map[int64]*core.FeatureVector),
	}
}

func (e *Extractor) Name() string        { return "feature.extractor" }
func (e *Extractor) Kind() pipeline.Kind { return pipeline.KindFeature }

// Process 实现 Node 接口：为每条候选填充 Features。
func (e *Extractor) Process(
	_ context.Context,
	_ *core.RecommendContext,
	recs []*core.Recommendation,
) ([]*core.Recommendation, error) {
	for _, rec := range recs {
		if rec == nil || rec.Movie == nil {
			continue
		}
		rec.Features = e.Extract(rec.Movie)
	}
	return recs, nil
}

// Extract 计算（或从缓存取出）单部电影的特征向量。
func (e *Extractor) Extract(m *core.EnrichedMovie) *core.FeatureVector {
	e.mu.RLock()
	if fv, ok := e.cache[m.ID]; ok {
		e.mu.RUnlock()
		return fv
	}
	e.mu.RUnlock()

	fv := e.compute(m)

	e.mu.Lock()
	if old, ok := e.cache[m.ID]; ok {
		// 并发未命中各算各的，先写者生效
		e.mu.Unlock()
		return old
	}
	e.cache[m.ID] = fv
	e.mu.Unlock()
	return fv
}

func (e *Extractor) compute(m *core.EnrichedMovie) *core.FeatureVector {
	genres := e.Genres
	if len(genres) == 0 {
		genres = defaultGenres
	}
	themes := e.Themes
	if len(themes) == 0 {
		themes = defaultThemes
	}

	fv := &core.FeatureVector{
		GenreVector: make([]float64, len(genres)),
		ThemeVector: make([]float64, len(themes)),
	}

	for i, g := range genres {
		if m.HasGenre(g) {
			fv.GenreVector[i] = 1
		}
	}
	for i, t := range themes {
		for _, mt := range m.Themes {
			if mt == t {
				fv.ThemeVector[i] = 1
				break
			}
		}
	}

	// 年代分：年份越近越高，只作相对新旧信号，不是质量分
	if y := m.Year(); y > 0 {
		fv.DecadeScore = float64((y/10)*10) / 2020
	}

	fv.PopularityScore = math.Min(1, m.Popularity/100)
	fv.QualityScore = qualityScore(m)

	if m.Indie {
		fv.IndieScore = 1
	}
	if m.CultClassic {
		fv.CultScore = 1
	}
	fv.InternationalScore = internationalScore(m)
	if m.Director != "" {
		fv.DirectorScore = 0.5
	}
	return fv
}

// qualityScore 混合主源评分与社区评分（都归一到 [0,1] 后取平均），
// 口碑共识为 acclaimed 或带邪典标记时再加成，封顶 1。
func qualityScore(m *core.EnrichedMovie) float64 {
	s := m.VoteAverage / 10
	if m.CommunityRating != nil {
		s = (s + *m.CommunityRating/5) / 2
	}
	if m.Consensus == core.ConsensusAcclaimed {
		s += 0.1
	}
	if m.CultClassic {
		s += 0.1
	}
	return math.Min(1, s)
}

func internationalScore(m *core.EnrichedMovie) float64 {
	if m.OriginalLanguage != "" && m.OriginalLanguage != "en" {
		return 1.0
	}
	for _, c := range m.ProductionCountries {
		if c != "US" {
			return 0.5
		}
	}
	return 0
}
