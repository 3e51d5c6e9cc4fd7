// Package form provides BasicForm, the form-like object storable controllers
// validate and copy into records.
//
// A form holds named fields with values and defaults. Each field carries a
// list of Validators; validators come from constructors such as Required or
// MinLength, from rule strings parsed by ParseRules:
//
//	form.WithRules("email", "required,email")
//	form.WithRules("name", "required,min=2,max=40")
//
// from expr-lang expressions evaluated against the field value:
//
//	v, err := form.Expr(`len(value) <= 10`, "Too long")
//
// and from CEL constraints evaluated against all field values at once:
//
//	err := f.AddConstraint(`price > 0.0 || status == "draft"`, "Price required")
//
// IsValid runs every validator and constraint and records the messages,
// which Errors returns keyed by field name ("" for form-level constraints).
package form
