package core

// FeatureVector 是单部电影的定长数值特征表示。
// 由 EnrichedMovie 确定性派生；词表（类型/主题）在进程启动时固定，
// 因此同一 ID 的特征在会话内不变，可按 ID 终生缓存。
//
// 除 DecadeScore（年份派生的单调比值，仅作相对新旧信号）外，
// 所有标量均归一化到 [0,1]。
type FeatureVector struct {
	GenreVector []float64 // 按封闭有序类型词表的 0/1 指示向量
	ThemeVector []float64 // 按封闭有序主题词表的 0/1 指示向量

	DecadeScore        float64
	PopularityScore    float64
	QualityScore       float64
	IndieScore         float64 // {0,1}
	InternationalScore float64 // {0, 0.5, 1}
	CultScore          float64 // {0,1}
	DirectorScore      float64 // 占位信号：已知导演 0.5，由画像亲和度二次修正
}
