package eval

import (
	"context"
	"fmt"

	"github.com/nucleus/agentlang/internal/agerrors"
	"github.com/nucleus/agentlang/internal/ast"
	"github.com/nucleus/agentlang/internal/model"
	"github.com/nucleus/agentlang/internal/txn"
)

// EvalExpr evaluates the constrained pattern-language expression tree
// (spec.md §4.4 rule 1, rule 7): literals, references, function calls,
// and the relational/logical/arithmetic operators. Free-form script text
// (`@expr` attributes, `@rbac where`) goes through internal/expr instead;
// see exprattr.go and internal/rbac.
func (e *Evaluator) EvalExpr(ctx context.Context, env *txn.Environment, expr ast.Expr) (any, error) {
	switch x := expr.(type) {
	case *ast.Literal:
		return x.Value, nil
	case *ast.Ref:
		return e.evalRef(env, x)
	case *ast.FuncCall:
		return e.evalFuncCall(ctx, env, x)
	case *ast.BinaryOp:
		return e.evalBinaryOp(ctx, env, x)
	case *ast.UnaryOp:
		return e.evalUnaryOp(ctx, env, x)
	case *ast.ArrayLit:
		out := make([]any, len(x.Elems))
		for i, el := range x.Elems {
			v, err := e.EvalExpr(ctx, env, el)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case *ast.MapLit:
		out := make(map[string]any, len(x.Keys))
		for i, k := range x.Keys {
			v, err := e.EvalExpr(ctx, env, x.Values[i])
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	default:
		return nil, agerrors.New(agerrors.ValidationError, "unknown expression kind")
	}
}

// evalRef walks a reference `a.b.c`: instance -> attribute -> nested
// instance -> attribute (spec.md §4.4 rule 1). The root identifier
// resolves first against the Environment's own @as bindings (including
// workflow parameters and the active event's simple name, both installed
// as bindings by the caller), falling back to the "last result" register
// when the root is unbound. A missing intermediate step yields an
// empty result rather than an error, per rule 1.
func (e *Evaluator) evalRef(env *txn.Environment, ref *ast.Ref) (any, error) {
	if len(ref.Path) == 0 {
		return nil, nil
	}
	root := ref.Path[0]
	cur, ok := env.Lookup(root)
	if !ok {
		if root == "this" || root == "it" {
			cur, ok = env.LastResult, true
		}
	}
	if !ok {
		return nil, nil
	}
	for _, step := range ref.Path[1:] {
		next, found := lookupStep(cur, step)
		if !found {
			return nil, nil
		}
		cur = next
	}
	return cur, nil
}

// lookupStep resolves one path segment against an arbitrary evaluator
// value: an *model.Instance's attribute/related-relationship, a
// map[string]any key, or an []any index.
func lookupStep(cur any, step string) (any, bool) {
	switch v := cur.(type) {
	case *model.Instance:
		if attr, ok := v.Attributes.Get(step); ok {
			return attr, true
		}
		if related := v.Related(step); related != nil {
			out := make([]any, len(related))
			for i, r := range related {
				out[i] = r
			}
			return out, true
		}
		return nil, false
	case map[string]any:
		val, ok := v[step]
		return val, ok
	case *model.Attrs:
		return v.Get(step)
	default:
		return nil, false
	}
}

func (e *Evaluator) evalFuncCall(ctx context.Context, env *txn.Environment, call *ast.FuncCall) (any, error) {
	fn, ok := e.Functions[call.Name]
	if !ok {
		return nil, agerrors.New(agerrors.ValidationError, "unknown function: "+call.Name)
	}
	args := make([]any, len(call.Args))
	for i, a := range call.Args {
		v, err := e.EvalExpr(ctx, env, a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return fn(ctx, env, args)
}

func (e *Evaluator) evalUnaryOp(ctx context.Context, env *txn.Environment, u *ast.UnaryOp) (any, error) {
	v, err := e.EvalExpr(ctx, env, u.Operand)
	if err != nil {
		return nil, err
	}
	switch u.Op {
	case "not":
		b, _ := v.(bool)
		return !b, nil
	case "-":
		f, ok := toFloat(v)
		if !ok {
			return nil, agerrors.NewTypeMismatch("unary -", "number", v)
		}
		return f * -1, nil
	default:
		return nil, agerrors.New(agerrors.ValidationError, "unknown unary operator: "+u.Op)
	}
}

// evalBinaryOp implements the relational (==, !=, <, <=, >, >=), logical
// (and, or — short-circuit, no &&/||) and arithmetic (+, -, *, /, %)
// operators spec.md §4.4 rule 7 and §9 describe.
func (e *Evaluator) evalBinaryOp(ctx context.Context, env *txn.Environment, b *ast.BinaryOp) (any, error) {
	if b.Op == "and" || b.Op == "or" {
		left, err := e.EvalExpr(ctx, env, b.Left)
		if err != nil {
			return nil, err
		}
		lb, _ := left.(bool)
		if b.Op == "and" && !lb {
			return false, nil
		}
		if b.Op == "or" && lb {
			return true, nil
		}
		right, err := e.EvalExpr(ctx, env, b.Right)
		if err != nil {
			return nil, err
		}
		rb, _ := right.(bool)
		return rb, nil
	}

	left, err := e.EvalExpr(ctx, env, b.Left)
	if err != nil {
		return nil, err
	}
	right, err := e.EvalExpr(ctx, env, b.Right)
	if err != nil {
		return nil, err
	}

	switch b.Op {
	case "==":
		return left == right, nil
	case "!=":
		return left != right, nil
	case "<", "<=", ">", ">=":
		lf, lok := toFloat(left)
		rf, rok := toFloat(right)
		if !lok || !rok {
			return nil, agerrors.NewTypeMismatch(b.Op, "number", []any{left, right})
		}
		switch b.Op {
		case "<":
			return lf < rf, nil
		case "<=":
			return lf <= rf, nil
		case ">":
			return lf > rf, nil
		default:
			return lf >= rf, nil
		}
	case "+":
		ls, lok := left.(string)
		rs, rok := right.(string)
		if lok && rok {
			return ls + rs, nil
		}
		return arith(b.Op, left, right)
	case "-", "*", "/", "%":
		return arith(b.Op, left, right)
	default:
		return nil, agerrors.New(agerrors.ValidationError, "unknown binary operator: "+b.Op)
	}
}

func arith(op string, left, right any) (any, error) {
	lf, lok := toFloat(left)
	rf, rok := toFloat(right)
	if !lok || !rok {
		return nil, agerrors.NewTypeMismatch(op, "number", []any{left, right})
	}
	switch op {
	case "+":
		return lf + rf, nil
	case "-":
		return lf - rf, nil
	case "*":
		return lf * rf, nil
	case "/":
		if rf == 0 {
			return nil, agerrors.New(agerrors.ValidationError, "division by zero")
		}
		return lf / rf, nil
	case "%":
		if rf == 0 {
			return nil, agerrors.New(agerrors.ValidationError, "modulo by zero")
		}
		return float64(int64(lf) % int64(rf)), nil
	}
	return nil, fmt.Errorf("unreachable arith op %q", op)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
