package rank

// Policy 集中放混合打分的全部权重与阈值。默认值经线上口径调平，
// 单独调某一项前先确认四路子分数权重之和仍为 1。
type Policy struct {
	// 四路子分数在混合总分里的权重
	ContentWeight       float64
	CollaborativeWeight float64
	ContextualWeight    float64
	PopularityWeight    float64

	// content_score 内部各项权重
	GenreSimWeight    float64
	DecadeAffWeight   float64
	RatingMatchWeight float64
	DirectorAffWeight float64
	ThemeSimWeight    float64

	// collaborative_score 内部
	WatchCountWeight      float64
	CommunityRatingWeight float64
	CommunityScale        float64 // 社区信号整体缩放
	GenreOverlapWeight    float64
	WatchCountNorm        float64 // 观看数归一化分母

	// contextual_score 加减项
	StreamingMatchBonus  float64
	CompanionFitBonus    float64
	CompanionDateBonus   float64
	CompanionMisfit      float64 // 家庭观影碰到成人内容的扣分
	RuntimeFitBonus      float64
	RuntimeMisfitPenalty float64
	MoodMatchBonus       float64

	// confidence 组成
	ConfidenceBase         float64
	CompletenessWeight     float64
	RichnessCap            float64
	RichnessNorm           float64
	HighRatingEnjoyBonus   float64 // 主评分 > 8 的享受度加成
	HighRatingEnjoyCutoff  float64

	// 上下文后置过滤
	RuntimeSlack       int     // 分钟：超出可用时间多少以内仍保留
	NoStreamingPenalty float64 // 指定了流媒体平台却无任何渠道时的乘性惩罚

	// 观看优先级阈值（作用在 score*confidence 上）
	HighPriorityCutoff   float64
	MediumPriorityCutoff float64
}

// DefaultPolicy 返回默认权重。
func DefaultPolicy() Policy {
	return Policy{
		ContentWeight:       0.4,
		CollaborativeWeight: 0.2,
		ContextualWeight:    0.3,
		PopularityWeight:    0.1,

		GenreSimWeight:    0.3,
		DecadeAffWeight:   0.2,
		RatingMatchWeight: 0.2,
		DirectorAffWeight: 0.15,
		ThemeSimWeight:    0.15,

		WatchCountWeight:      0.3,
		CommunityRatingWeight: 0.7,
		CommunityScale:        0.8,
		GenreOverlapWeight:    0.2,
		WatchCountNorm:        1_000_000,

		StreamingMatchBonus:  0.3,
		CompanionFitBonus:    0.15,
		CompanionDateBonus:   0.2,
		CompanionMisfit:      0.2,
		RuntimeFitBonus:      0.2,
		RuntimeMisfitPenalty: 0.1,
		MoodMatchBonus:       0.2,

		ConfidenceBase:        0.5,
		CompletenessWeight:    0.3,
		RichnessCap:           0.2,
		RichnessNorm:          15,
		HighRatingEnjoyBonus:  0.5,
		HighRatingEnjoyCutoff: 8,

		RuntimeSlack:       30,
		NoStreamingPenalty: 0.7,

		HighPriorityCutoff:   0.7,
		MediumPriorityCutoff: 0.4,
	}
}
