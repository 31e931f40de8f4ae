// Package dsl 是基于 CEL (Common Expression Language) 的商品表达式解释器，
// 供 filter.ExprFilter 等配置驱动组件使用。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/shoprec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("rctx", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Expr 是编译后的表达式，可并发复用。
//
// 表达式语法（CEL 标准语法）：
//   - 商品：item.category == "Electronics" / item.name.contains("Pro")
//   - 数值：item.score > 0.2
//   - 标签：label.recall_source == "content"
//   - 用户：item.id in rctx.profile / rctx.user_id == "u1"
//   - 逻辑：item.category != "Books" && item.score >= 0.1
//
// 访问不存在的 label 会在求值时报错，先用 "key" in label 判断。
type Expr struct {
	src string
	prg cel.Program
}

// Compile 编译表达式；结果类型不是 bool 时报错。
func Compile(expr string) (*Expr, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	if t := ast.OutputType(); t != cel.BoolType && t != cel.DynType {
		return nil, fmt.Errorf("expression must return bool, got %s", t)
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Expr{src: expr, prg: prg}, nil
}

// String 返回表达式原文。
func (e *Expr) String() string { return e.src }

// Match 在 item / rctx 上求值。
func (e *Expr) Match(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	out, _, err := e.prg.Eval(buildInput(item, rctx))
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// Eval 是一次性求值的便捷封装；重复使用同一表达式时用 Compile。
type Eval struct {
	item *core.Item
	rctx *core.RecommendContext
}

func NewEval(item *core.Item, rctx *core.RecommendContext) *Eval {
	return &Eval{item: item, rctx: rctx}
}

// Evaluate 编译并执行表达式；空表达式恒为 true。
func (e *Eval) Evaluate(expr string) (bool, error) {
	if expr == "" {
		return true, nil
	}
	compiled, err := Compile(expr)
	if err != nil {
		return false, err
	}
	return compiled.Match(e.item, e.rctx)
}

func buildInput(it *core.Item, rctx *core.RecommendContext) map[string]any {
	labels := make(map[string]any)
	label := make(map[string]any)
	item := map[string]any{}
	if it != nil {
		for k, v := range it.Labels {
			labels[k] = map[string]any{"value": v.Value, "source": v.Source}
			label[k] = v.Value
		}
		meta := it.Meta
		if meta == nil {
			meta = map[string]any{}
		}
		item = map[string]any{
			"id":          it.ID,
			"score":       it.Score,
			"name":        it.Product.Name,
			"category":    it.Product.Category,
			"description": it.Product.Description,
			"meta":        meta,
			"labels":      labels,
		}
	}

	r := map[string]any{
		"user_id": "",
		"profile": map[string]float64{},
		"params":  map[string]any{},
	}
	if rctx != nil {
		r["user_id"] = rctx.UserID
		if rctx.Profile != nil && rctx.Profile.Weights != nil {
			r["profile"] = rctx.Profile.Weights
		}
		if rctx.Params != nil {
			r["params"] = rctx.Params
		}
	}

	return map[string]any{
		"item":  item,
		"label": label,
		"rctx":  r,
	}
}
