package core

import "github.com/fluffy1211/moviedna/pkg/utils"

// ReasonType 是推荐理由的信号来源类别。
type ReasonType string

const (
	ReasonGenre     ReasonType = "genre"
	ReasonRating    ReasonType = "rating"
	ReasonMood      ReasonType = "mood"
	ReasonEra       ReasonType = "era"
	ReasonDirector  ReasonType = "director"
	ReasonTheme     ReasonType = "theme"
	ReasonStreaming ReasonType = "streaming"
	ReasonHiddenGem ReasonType = "hidden_gem"
	ReasonFallback  ReasonType = "fallback"
)

// Reason 是一条人类可读的推荐理由，Weight 为其贡献权重（用于排序截断）。
type Reason struct {
	Type    ReasonType `json:"type"`
	Message string     `json:"message"`
	Weight  float64    `json:"weight"`
}

// Priority 是观看优先级档位，由 score*confidence 决定。
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Recommendation 是推荐链路中的统一承载结构，贯穿 Recall → Filter →
// Enrich → Rank → ReRank 各阶段：前段只填 Movie，Enrich 替换为派生记录，
// Rank 写入分数/置信度/理由，ReRank 只重排不再修改。
// Labels 记录全链路来源与策略标记，用于 explain / 观测。
type Recommendation struct {
	Movie    *EnrichedMovie
	Features *FeatureVector

	Score              float64
	Confidence         float64 // [0,1]
	Reasons            []Reason
	Tags               []string
	WatchPriority      Priority
	EstimatedEnjoyment float64 // [0,10]

	Labels map[string]utils.Label
}

// NewRecommendation 以派生记录为载体创建一条空白推荐。
func NewRecommendation(movie *EnrichedMovie) *Recommendation {
	return &Recommendation{
		Movie:  movie,
		Labels: make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (r *Recommendation) PutLabel(key string, lbl utils.Label) {
	if r.Labels == nil {
		r.Labels = make(map[string]utils.Label)
	}
	if old, ok := r.Labels[key]; ok {
		r.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	r.Labels[key] = lbl
}

// HasTag 检查是否含有指定标签。
func (r *Recommendation) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
