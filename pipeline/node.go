package pipeline

import (
	"context"

	"github.com/fluffy1211/moviedna/core"
)

// Kind 用于标记 Node 类型，方便观测/治理/编排（例如按阶段打点）。
type Kind string

const (
	KindCollect     Kind = "collect"     // 候选收集阶段：并发查询目录源生成候选集
	KindFilter      Kind = "filter"      // 过滤阶段：多样性预筛/规则准入
	KindEnrich      Kind = "enrich"      // 扩充阶段：聚合二级源数据
	KindFeature     Kind = "feature"     // 特征阶段：派生定长特征向量
	KindRank        Kind = "rank"        // 排序阶段：混合打分
	KindReRank      Kind = "rerank"      // 重排阶段：多样性约束下的最终排序
	KindPostProcess Kind = "postprocess" // 后处理阶段：结果修饰
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用"输入 recs -> 输出 recs"的形态：Collect 生成、Filter 截断、
// Enrich 替换载体、Rank 打分、ReRank 重排，全部走同一条链。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		recs []*core.Recommendation,
	) ([]*core.Recommendation, error)
}
