// Package moviedna 是一个电影推荐引擎（Movie DNA）。
//
// 设计要点：
// - Pipeline-first: 推荐逻辑通过 Node 串联（Collect → Filter → Enrich → Feature → Rank → ReRank）
// - 失败隔离: 外部源的超时/不可用全部就地降级，推荐面永不返回空
// - Labels-first: labels 全链路透传与标准化 merge，支持 explain / 观测 / 策略驱动
// - Node 可扩展: 自定义 Node 即可插拔扩展各阶段
package moviedna

import "github.com/fluffy1211/moviedna/pipeline"

// 轻量 facade：便于用户直接 import 根包使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindCollect     = pipeline.KindCollect
	KindFilter      = pipeline.KindFilter
	KindEnrich      = pipeline.KindEnrich
	KindFeature     = pipeline.KindFeature
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
