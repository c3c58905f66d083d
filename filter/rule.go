package filter

import (
	"context"

	"github.com/fluffy1211/moviedna/core"
	"github.com/fluffy1211/moviedna/pkg/dsl"
)

// RuleFilter 是 CEL 表达式过滤器：表达式返回 true 的候选被保留。
// 用于运营侧临时圈选/排除，改配置即生效，不用发版。
//
// 示例表达式：
//   movie.vote_average >= 6.0 && movie.runtime < 180
//   movie.original_language == "ko" || movie.cult_classic
type RuleFilter struct {
	Expr    string
	program *dsl.Program
}

// NewRuleFilter 编译表达式，编译失败返回错误（配置错误要尽早暴露）。
func NewRuleFilter(expr string) (*RuleFilter, error) {
	p, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &RuleFilter{Expr: expr, program: p}, nil
}

func (f *RuleFilter) Name() string { return "filter.rule" }

func (f *RuleFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	rec *core.Recommendation,
) (bool, error) {
	// 表达式保留为 true，过滤语义取反
	keep, err := f.program.Eval(rec.Movie, rctx)
	if err != nil {
		return false, err
	}
	return !keep, nil
}
