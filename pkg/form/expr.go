package form

import (
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"

	serrors "github.com/vango-dev/storable/internal/errors"
)

type exprRule struct {
	program    *exprvm.Program
	expression string
	message    string
}

// Expr compiles an expr-lang expression into a Validator. The expression
// sees the field value as "value" and must produce a bool.
func Expr(expression, msg string) (Validator, error) {
	if expression == "" {
		return nil, serrors.New("S021").WithDetail("expression must not be empty")
	}
	program, err := exprlang.Compile(expression,
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, serrors.New("S021").WithDetail(expression).Wrap(err)
	}
	if msg == "" {
		msg = "Invalid value"
	}
	return &exprRule{program: program, expression: expression, message: msg}, nil
}

// MustExpr is like Expr but panics on a compile error.
func MustExpr(expression, msg string) Validator {
	v, err := Expr(expression, msg)
	if err != nil {
		panic(err)
	}
	return v
}

func (r *exprRule) Validate(value any) error {
	out, err := exprlang.Run(r.program, map[string]any{"value": value})
	if err != nil {
		return ValidationError{Message: fmt.Sprintf("%s (%v)", r.message, err)}
	}
	ok, isBool := out.(bool)
	if !isBool {
		return ValidationError{Message: fmt.Sprintf("%s (rule %q returned %T)", r.message, r.expression, out)}
	}
	if !ok {
		return ValidationError{Message: r.message}
	}
	return nil
}
