// Package rank 实现混合打分：内容 / 协同代理 / 上下文 / 热度四路信号
// 加权合成，并给出置信度、享受度预估与人类可读的推荐理由。
package rank

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/fluffy1211/moviedna/core"
	"github.com/fluffy1211/moviedna/feature"
	"github.com/fluffy1211/moviedna/pipeline"
	"github.com/fluffy1211/moviedna/pkg/utils"
)

// HybridScorer 是打分 Node：为每条候选计算混合分并填入
// Score / Confidence / Reasons / Tags / WatchPriority / EstimatedEnjoyment。
//
// 所有子分数各自有界 [0,1]，缺失数据按中性/零贡献处理，打分永不报错。
// 打分后紧跟上下文后置过滤：片长硬超限直接剔除，指定了流媒体平台却
// 无任何渠道的只做乘性降权、不剔除。
type HybridScorer struct {
	Policy Policy
}

func NewHybridScorer() *HybridScorer {
	return &HybridScorer{Policy: DefaultPolicy()}
}

func (n *HybridScorer) Name() string        { return "rank.hybrid" }
func (n *HybridScorer) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *HybridScorer) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	recs []*core.Recommendation,
) ([]*core.Recommendation, error) {
	if len(recs) == 0 {
		return recs, nil
	}

	var user *core.UserProfile
	if rctx != nil && rctx.User != nil {
		user = rctx.User
	} else {
		user = core.NewUserProfile("")
	}

	out := make([]*core.Recommendation, 0, len(recs))
	for _, rec := range recs {
		if rec == nil || rec.Movie == nil {
			continue
		}
		if rec.Features == nil {
			// 上游漏抽特征时兜底为空向量，所有项零贡献
			rec.Features = &core.FeatureVector{}
		}
		n.Score(user, rec, rctx)

		// 上下文后置过滤：片长超出可用时间 + 余量的直接剔除
		if rctx != nil && rctx.AvailableTime > 0 && rec.Movie.Runtime > 0 &&
			rec.Movie.Runtime > rctx.AvailableTime+n.Policy.RuntimeSlack {
			rec.PutLabel("filtered", utils.Label{Value: "runtime_over_budget", Source: "rank"})
			continue
		}
		// 指定平台却无渠道：降权不剔除
		if rctx != nil && len(rctx.StreamingServices) > 0 && !rec.Movie.HasOffers() {
			rec.Score *= n.Policy.NoStreamingPenalty
		}
		out = append(out, rec)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

// Score 对单条候选完成打分与解释生成（不含最终排序）。
func (n *HybridScorer) Score(user *core.UserProfile, rec *core.Recommendation, rctx *core.RecommendContext) {
	p := n.Policy
	m := rec.Movie
	fv := rec.Features

	content := n.contentScore(user, m, fv)
	collab := n.collaborativeScore(user, m)
	contextual := n.contextualScore(m, rctx)
	popularity := n.popularityScore(fv, rctx)

	rec.Score = p.ContentWeight*content +
		p.CollaborativeWeight*collab +
		p.ContextualWeight*contextual +
		p.PopularityWeight*popularity

	completeness := m.DataQuality.Completeness
	richness := float64(user.Richness())
	rec.Confidence = math.Min(1, p.ConfidenceBase+
		p.CompletenessWeight*completeness+
		math.Min(p.RichnessCap, richness/p.RichnessNorm))

	rec.EstimatedEnjoyment = n.estimateEnjoyment(rec.Score, rec.Confidence, m)
	rec.Reasons = n.reasons(user, m, content, rctx)
	rec.Tags = n.tags(m, fv)
	rec.WatchPriority = n.priority(rec.Score, rec.Confidence)

	rec.PutLabel("rank_model", utils.Label{Value: "hybrid", Source: "rank"})
}

// contentScore 基于画像亲和度的内容相似信号。
func (n *HybridScorer) contentScore(user *core.UserProfile, m *core.EnrichedMovie, fv *core.FeatureVector) float64 {
	p := n.Policy

	genreSim := 0.0
	if len(user.GenreAffinity) > 0 {
		for g, aff := range user.GenreAffinity {
			if m.HasGenre(g) {
				genreSim += aff
			}
		}
		genreSim /= math.Max(1, float64(len(user.GenreAffinity)))
	}

	decadeAff := user.DecadeAffinity[m.Decade()]

	ratingMatch := 0.0
	threshold := user.Preferences.RatingThreshold
	if threshold > 0 && m.VoteAverage >= threshold {
		ratingMatch = 1
	}

	directorAff := 0.0
	if m.Director != "" {
		directorAff = user.DirectorAffinity[m.Director]
	}

	themeSim := 0.0
	if len(user.ThemeAffinity) > 0 {
		for _, t := range m.Themes {
			themeSim += user.ThemeAffinity[t]
		}
		themeSim /= math.Max(1, float64(len(user.ThemeAffinity)))
	}

	score := p.GenreSimWeight*clamp01(genreSim) +
		p.DecadeAffWeight*clamp01(decadeAff) +
		p.RatingMatchWeight*ratingMatch +
		p.DirectorAffWeight*clamp01(directorAff) +
		p.ThemeSimWeight*clamp01(themeSim)
	return clamp01(score)
}

// collaborativeScore 用社区观看数/评分做协同过滤的代理信号：
// 没接行为日志，但"很多人看过且打分高"本身就是弱协同证据。
func (n *HybridScorer) collaborativeScore(user *core.UserProfile, m *core.EnrichedMovie) float64 {
	p := n.Policy

	score := 0.0
	if m.Watches != nil && m.CommunityRating != nil {
		watchNorm := math.Min(1, float64(*m.Watches)/p.WatchCountNorm)
		ratingNorm := *m.CommunityRating / 5
		score = (p.WatchCountWeight*watchNorm + p.CommunityRatingWeight*ratingNorm) * p.CommunityScale
	}

	// 类型重合加成只在有观影历史时生效：没有历史时重合度不构成协同证据
	if len(user.ViewingHistory) > 0 && len(m.GenreIDs) > 0 && len(user.Preferences.FavoriteGenres) > 0 {
		overlap := 0
		for _, g := range m.GenreIDs {
			for _, fg := range user.Preferences.FavoriteGenres {
				if g == fg {
					overlap++
					break
				}
			}
		}
		score += float64(overlap) / float64(len(m.GenreIDs)) * p.GenreOverlapWeight
	}
	return clamp01(score)
}

// contextualScore 基于观看场景（平台/同伴/时长/心情）的适配信号。
func (n *HybridScorer) contextualScore(m *core.EnrichedMovie, rctx *core.RecommendContext) float64 {
	p := n.Policy
	score := 0.5
	if rctx == nil {
		return score
	}

	if len(rctx.StreamingServices) > 0 && offerMatch(m, rctx.StreamingServices) {
		score += p.StreamingMatchBonus
	}

	switch rctx.WatchWith {
	case core.WatchFamily:
		if m.Adult {
			score -= p.CompanionMisfit
		} else if m.HasGenre(16) || m.HasGenre(10751) {
			score += p.CompanionDateBonus
		}
	case core.WatchDate:
		if m.HasGenre(10749) || m.HasGenre(35) {
			score += p.CompanionDateBonus
		}
	case core.WatchFriends:
		if m.HasGenre(28) || m.HasGenre(35) || m.HasGenre(27) {
			score += p.CompanionFitBonus
		}
	}

	if rctx.AvailableTime > 0 && m.Runtime > 0 {
		if m.Runtime <= rctx.AvailableTime {
			score += p.RuntimeFitBonus
		} else {
			score -= p.RuntimeMisfitPenalty
		}
	}

	if rctx.CurrentMood != "" {
		for _, g := range feature.MoodGenres[rctx.CurrentMood] {
			if m.HasGenre(g) {
				score += p.MoodMatchBonus
				break
			}
		}
	}
	return clamp01(score)
}

// popularityScore 按探索偏好决定热度信号方向：
// safe 爱随大流，adventurous 专挑冷门，mixed 不表态。
func (n *HybridScorer) popularityScore(fv *core.FeatureVector, rctx *core.RecommendContext) float64 {
	pref := core.DiscoveryMixed
	if rctx != nil && rctx.DiscoveryPreference != "" {
		pref = rctx.DiscoveryPreference
	}
	switch pref {
	case core.DiscoverySafe:
		return fv.PopularityScore
	case core.DiscoveryAdventurous:
		return 1 - fv.PopularityScore
	default:
		return 0.5
	}
}

// estimateEnjoyment 把分数折算成 0-10 的享受度预估：置信度低时
// 向中位回归（不确定的高分没那么高，不确定的低分没那么低）。
func (n *HybridScorer) estimateEnjoyment(score, confidence float64, m *core.EnrichedMovie) float64 {
	e := score * 10
	est := e*confidence + (10-e)*(1-confidence)*0.5
	if m.VoteAverage > n.Policy.HighRatingEnjoyCutoff {
		est += n.Policy.HighRatingEnjoyBonus
	}
	return math.Max(0, math.Min(10, est))
}

// reasons 为每个过了实质性门槛的信号生成一条理由，按权重取前三。
func (n *HybridScorer) reasons(user *core.UserProfile, m *core.EnrichedMovie, contentScore float64, rctx *core.RecommendContext) []core.Reason {
	var out []core.Reason

	var matched []string
	for _, g := range user.Preferences.FavoriteGenres {
		if m.HasGenre(g) {
			if name, ok := feature.GenreNames[g]; ok {
				matched = append(matched, name)
			}
		}
	}
	if len(matched) > 0 {
		out = append(out, core.Reason{
			Type:    core.ReasonGenre,
			Message: "Matches your favorite genres: " + strings.Join(matched, ", "),
			Weight:  contentScore * n.Policy.GenreSimWeight,
		})
	}

	threshold := user.Preferences.RatingThreshold
	if threshold > 0 && m.VoteAverage >= threshold+1 {
		out = append(out, core.Reason{
			Type:    core.ReasonRating,
			Message: fmt.Sprintf("Rated %.1f, well above your %.1f threshold", m.VoteAverage, threshold),
			Weight:  0.2,
		})
	}

	if rctx != nil && len(rctx.StreamingServices) > 0 && offerMatch(m, rctx.StreamingServices) {
		out = append(out, core.Reason{
			Type:    core.ReasonStreaming,
			Message: "Available on your streaming services",
			Weight:  0.15,
		})
	}

	if m.CultClassic {
		out = append(out, core.Reason{
			Type:    core.ReasonHiddenGem,
			Message: "A cult classic beloved by film communities",
			Weight:  0.1,
		})
	}
	if m.Indie {
		out = append(out, core.Reason{
			Type:    core.ReasonHiddenGem,
			Message: "An independent film off the beaten path",
			Weight:  0.1,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

func (n *HybridScorer) tags(m *core.EnrichedMovie, fv *core.FeatureVector) []string {
	var tags []string
	if fv.QualityScore > 0.8 {
		tags = append(tags, "high-quality")
	}
	if m.Indie {
		tags = append(tags, "indie")
	}
	if fv.InternationalScore >= 1 {
		tags = append(tags, "international")
	}
	if m.CultClassic {
		tags = append(tags, "cult-classic")
	}
	if m.Consensus == core.ConsensusAcclaimed {
		tags = append(tags, "critically-acclaimed")
	}
	if m.BoxOffice == core.BoxOfficeBlockbuster {
		tags = append(tags, "blockbuster")
	}
	if m.Year() >= 2020 {
		tags = append(tags, "recent")
	}
	return tags
}

func (n *HybridScorer) priority(score, confidence float64) core.Priority {
	weighted := score * confidence
	switch {
	case weighted > n.Policy.HighPriorityCutoff:
		return core.PriorityHigh
	case weighted > n.Policy.MediumPriorityCutoff:
		return core.PriorityMedium
	default:
		return core.PriorityLow
	}
}

func offerMatch(m *core.EnrichedMovie, services []string) bool {
	for _, o := range m.Offers {
		for _, s := range services {
			if strings.EqualFold(o.ProviderName, s) {
				return true
			}
		}
	}
	return false
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
