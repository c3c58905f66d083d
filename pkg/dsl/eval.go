package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/fluffy1211/moviedna/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
)

func initCELEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("movie", cel.DynType),
		cel.Variable("rctx", cel.DynType),
	)
	return env, err
}

func getCELEnv() (*cel.Env, error) {
	var err error
	celEnvOnce.Do(func() {
		celEnv, err = initCELEnv()
	})
	return celEnv, err
}

// Program 是编译后的候选准入表达式，使用 CEL (Common Expression Language)。
// 编译一次后可并发复用，用于配置驱动的过滤规则。
//
// 表达式语法（CEL 标准语法）：
//   - 数值：movie.vote_average >= 5.5 && movie.vote_count >= 20
//   - 逻辑：movie.original_language != "en" || movie.popularity < 30.0
//   - 包含：movie.decade in ["1980s", "1990s"]
//   - 上下文：rctx.country == "US"
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译准入表达式。空表达式返回 nil Program（恒为 true）。
func Compile(expr string) (*Program, error) {
	if expr == "" {
		return nil, nil
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %v", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %v", err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// Expr 返回原始表达式文本。
func (p *Program) Expr() string {
	if p == nil {
		return ""
	}
	return p.expr
}

// Eval 对单部电影执行表达式，返回布尔结果。
// 表达式必须返回 bool；访问不存在的 key 会报错，规则应只引用下述已导出字段。
func (p *Program) Eval(movie *core.EnrichedMovie, rctx *core.RecommendContext) (bool, error) {
	if p == nil {
		return true, nil
	}

	out, _, err := p.prg.Eval(buildInput(movie, rctx))
	if err != nil {
		return false, fmt.Errorf("eval error: %v", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据。
// 社区字段缺失时导出为中性零值，保证规则不会因数据缺失而报错。
func buildInput(movie *core.EnrichedMovie, rctx *core.RecommendContext) map[string]any {
	genreIDs := make([]any, 0, len(movie.GenreIDs))
	for _, id := range movie.GenreIDs {
		genreIDs = append(genreIDs, int64(id))
	}

	communityRating := 0.0
	if movie.CommunityRating != nil {
		communityRating = *movie.CommunityRating
	}

	m := map[string]any{
		"id":                movie.ID,
		"title":             movie.Title,
		"original_language": movie.OriginalLanguage,
		"vote_average":      movie.VoteAverage,
		"vote_count":        int64(movie.VoteCount),
		"popularity":        movie.Popularity,
		"genre_ids":         genreIDs,
		"decade":            movie.Decade(),
		"year":              int64(movie.Year()),
		"runtime":           int64(movie.Runtime),
		"director":          movie.Director,
		"community_rating":  communityRating,
		"cult_classic":      movie.CultClassic,
		"indie":             movie.Indie,
		"arthouse":          movie.Arthouse,
		"offer_count":       int64(len(movie.Offers)),
		"completeness":      movie.DataQuality.Completeness,
	}

	r := map[string]any{}
	if rctx != nil {
		r["user_id"] = rctx.UserID
		r["country"] = rctx.Country
		r["current_mood"] = rctx.CurrentMood
		r["available_time"] = int64(rctx.AvailableTime)
		r["discovery_preference"] = string(rctx.DiscoveryPreference)
		if rctx.Params != nil {
			r["params"] = rctx.Params
		}
	}

	return map[string]any{
		"movie": m,
		"rctx":  r,
	}
}
