// Package expr compiles and evaluates the expression text carried by
// @expr attributes and @rbac where clauses (spec.md §4.5, §4.8), backed by
// github.com/expr-lang/expr.
package expr

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/nucleus/agentlang/internal/agerrors"
)

// Program is a compiled expression, ready to run against any environment
// map. Compilation allows undefined variables since the evaluator binds
// `this`/`auth`/alias names dynamically and not every expression
// references all of them.
type Program struct {
	node *vm.Program
	src  string
}

// Compile parses and type-checks source text, grounded on the compile
// options the pack's rule engine uses for user-authored scripts
// (expr.AllowUndefinedVariables so `this`/`auth`/alias bindings absent at
// compile time don't fail compilation).
func Compile(source string) (*Program, error) {
	prog, err := expr.Compile(source, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, agerrors.Wrap(agerrors.ParseError, "failed to compile expression: "+source, err)
	}
	return &Program{node: prog, src: source}, nil
}

// Eval runs the compiled program against env — typically a map holding
// `this` (the candidate instance's attribute map), `auth` (the active
// user), and any in-scope aliases/workflow parameters.
func (p *Program) Eval(env map[string]any) (any, error) {
	out, err := expr.Run(p.node, env)
	if err != nil {
		return nil, agerrors.Wrap(agerrors.TypeMismatch, "failed to evaluate expression: "+p.src, err)
	}
	return out, nil
}

// EvalBool runs the program and asserts a boolean result, for @rbac where
// clauses (spec.md §4.8).
func (p *Program) EvalBool(env map[string]any) (bool, error) {
	out, err := p.Eval(env)
	if err != nil {
		return false, err
	}
	b, ok := out.(bool)
	if !ok {
		return false, agerrors.New(agerrors.TypeMismatch, "expression did not evaluate to a boolean: "+p.src)
	}
	return b, nil
}

// CompileAndEval is a convenience for one-shot, uncached evaluation — used
// for @expr attribute expressions, which are typically evaluated once per
// create/update and not worth separately caching per statement.
func CompileAndEval(source string, env map[string]any) (any, error) {
	prog, err := Compile(source)
	if err != nil {
		return nil, err
	}
	return prog.Eval(env)
}
