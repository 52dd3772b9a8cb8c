package mapping

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/mozilla-ai/convtree/internal/source"
)

// Expression variables.
const (
	envSource = "source"
	envValue  = "value"
)

// program is a compiled expression evaluated against a source and a value.
type program struct {
	code string
	prg  *vm.Program
}

// exprOptions leaves "source" and "value" untyped: their shapes are only known when a document is converted.
func exprOptions() []expr.Option {
	return []expr.Option{
		expr.AllowUndefinedVariables(),
		expr.Function("lookup", func(params ...any) (any, error) {
			path, ok := params[1].(string)
			if !ok {
				return nil, fmt.Errorf("lookup: path must be a string, got %T", params[1])
			}
			v, _, err := source.Lookup(params[0], path)
			return v, err
		},
			new(func(any, string) any)),
	}
}

// compileExpr compiles code as a value-producing expression.
func compileExpr(code string) (*program, error) {
	prg, err := expr.Compile(code, exprOptions()...)
	if err != nil {
		return nil, fmt.Errorf("expression '%s': %w", code, err)
	}
	return &program{code: code, prg: prg}, nil
}

// compilePredicate compiles code as an expression that must evaluate to a boolean.
func compilePredicate(code string) (*program, error) {
	prg, err := expr.Compile(code, append(exprOptions(), expr.AsBool())...)
	if err != nil {
		return nil, fmt.Errorf("predicate '%s': %w", code, err)
	}
	return &program{code: code, prg: prg}, nil
}

func (p *program) eval(src any, value any) (any, error) {
	out, err := expr.Run(p.prg, map[string]any{envSource: src, envValue: value})
	if err != nil {
		return nil, fmt.Errorf("expression '%s': %w", p.code, err)
	}
	return out, nil
}

func (p *program) test(src any, value any) (bool, error) {
	out, err := p.eval(src, value)
	if err != nil {
		return false, err
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("predicate '%s': result is %T, not bool", p.code, out)
	}
	return b, nil
}
