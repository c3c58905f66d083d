package rerank

import (
	"context"

	"github.com/fluffy1211/moviedna/core"
	"github.com/fluffy1211/moviedna/pipeline"
)

// TopN 是最简单的重排 Node：截断到前 N 条。
// 不需要多样性保障的调用方（如内部评估脚本）可以用它替换 Diversify。
type TopN struct {
	N int
}

func (n *TopN) Name() string        { return "rerank.topn" }
func (n *TopN) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *TopN) Process(
	_ context.Context,
	_ *core.RecommendContext,
	recs []*core.Recommendation,
) ([]*core.Recommendation, error) {
	if n.N <= 0 || len(recs) <= n.N {
		return recs, nil
	}
	return recs[:n.N], nil
}
