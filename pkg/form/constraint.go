package form

import (
	"fmt"

	celgo "github.com/google/cel-go/cel"

	serrors "github.com/vango-dev/storable/internal/errors"
)

// Constraint is a CEL expression over all field values of a form.
type Constraint struct {
	expression string
	message    string
	program    celgo.Program
}

// NewConstraint compiles expression with one dynamic variable per field.
func NewConstraint(expression, message string, fields []string) (*Constraint, error) {
	if expression == "" {
		return nil, serrors.New("S021").WithDetail("constraint must not be empty")
	}
	opts := []celgo.EnvOption{celgo.CrossTypeNumericComparisons(true)}
	for _, name := range fields {
		opts = append(opts, celgo.Variable(name, celgo.DynType))
	}
	env, err := celgo.NewEnv(opts...)
	if err != nil {
		return nil, serrors.New("S021").Wrap(err)
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, serrors.New("S021").WithDetail(expression).Wrap(issues.Err())
	}
	if !ast.OutputType().IsExactType(celgo.BoolType) && !ast.OutputType().IsExactType(celgo.DynType) {
		return nil, serrors.New("S021").WithDetailf("%s: result type %s, want bool", expression, ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, serrors.New("S021").WithDetail(expression).Wrap(err)
	}
	if message == "" {
		message = "Form is invalid"
	}
	return &Constraint{expression: expression, message: message, program: prg}, nil
}

// Expression returns the CEL source.
func (c *Constraint) Expression() string { return c.expression }

// Check evaluates the constraint against values.
func (c *Constraint) Check(values map[string]any) error {
	out, _, err := c.program.Eval(values)
	if err != nil {
		return ValidationError{Message: fmt.Sprintf("%s (%v)", c.message, err)}
	}
	if ok, isBool := out.Value().(bool); !isBool || !ok {
		return ValidationError{Message: c.message}
	}
	return nil
}
