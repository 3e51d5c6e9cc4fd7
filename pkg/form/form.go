package form

import (
	"sort"
	"sync"

	"github.com/vango-dev/storable/pkg/record"
	"github.com/vango-dev/storable/pkg/ui"
)

type field struct {
	name       string
	def        any
	initial    any
	value      any
	validators []Validator
}

// Option configures a BasicForm.
type Option func(*BasicForm) error

// WithField adds a field with its default value and validators.
func WithField(name string, initial any, validators ...Validator) Option {
	return func(f *BasicForm) error {
		fd := f.fieldLocked(name)
		fd.def = initial
		fd.initial = initial
		fd.value = initial
		fd.validators = append(fd.validators, validators...)
		return nil
	}
}

// WithRules adds validators parsed from a rule string to a field.
func WithRules(name, rules string) Option {
	return func(f *BasicForm) error {
		fd := f.fieldLocked(name)
		vs, err := ParseRules(rules, fd.def)
		if err != nil {
			return ValidationError{Field: name, Message: err.Error()}
		}
		fd.validators = append(fd.validators, vs...)
		return nil
	}
}

// WithConstraint adds a CEL constraint over the fields declared so far.
func WithConstraint(expression, message string) Option {
	return func(f *BasicForm) error {
		return f.addConstraintLocked(expression, message)
	}
}

// BasicForm is a set of named fields bound to records.
type BasicForm struct {
	mu          sync.RWMutex
	order       []string
	fields      map[string]*field
	constraints []*Constraint
	errors      map[string][]string
}

var _ ui.Form = (*BasicForm)(nil)

// New creates a form.
func New(opts ...Option) (*BasicForm, error) {
	f := &BasicForm{
		fields: make(map[string]*field),
		errors: make(map[string][]string),
	}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *BasicForm {
	f, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return f
}

// ForType creates a form with one field per record field, using the field
// defaults as initial values.
func ForType(t *record.Type, opts ...Option) (*BasicForm, error) {
	base := make([]Option, 0, len(t.Fields)+len(opts))
	for _, fd := range t.Fields {
		base = append(base, WithField(fd.Name, fd.Default))
	}
	return New(append(base, opts...)...)
}

func (f *BasicForm) fieldLocked(name string) *field {
	fd, ok := f.fields[name]
	if !ok {
		fd = &field{name: name}
		f.fields[name] = fd
		f.order = append(f.order, name)
	}
	return fd
}

// AddValidators appends validators to a field.
func (f *BasicForm) AddValidators(name string, validators ...Validator) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fd := f.fieldLocked(name)
	fd.validators = append(fd.validators, validators...)
}

// AddConstraint compiles and adds a CEL constraint over the form fields.
func (f *BasicForm) AddConstraint(expression, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addConstraintLocked(expression, message)
}

func (f *BasicForm) addConstraintLocked(expression, message string) error {
	c, err := NewConstraint(expression, message, f.order)
	if err != nil {
		return err
	}
	f.constraints = append(f.constraints, c)
	return nil
}

// Fields returns the field names in declaration order.
func (f *BasicForm) Fields() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.order...)
}

// SetValue sets a field value.
func (f *BasicForm) SetValue(name string, value any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fieldLocked(name).value = value
}

// Value returns a field value.
func (f *BasicForm) Value(name string) any {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if fd, ok := f.fields[name]; ok {
		return fd.value
	}
	return nil
}

// Values returns a copy of all field values.
func (f *BasicForm) Values() map[string]any {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.valuesLocked()
}

func (f *BasicForm) valuesLocked() map[string]any {
	out := make(map[string]any, len(f.fields))
	for name, fd := range f.fields {
		out[name] = fd.value
	}
	return out
}

// Dirty reports whether any field differs from the value it was last
// loaded or reset with.
func (f *BasicForm) Dirty() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, fd := range f.fields {
		if !record.Equal(fd.value, fd.initial) {
			return true
		}
	}
	return false
}

// IsValid runs all validators and constraints and records their messages.
func (f *BasicForm) IsValid() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	errs := make(map[string][]string)
	for _, name := range f.order {
		fd := f.fields[name]
		for _, v := range fd.validators {
			if err := v.Validate(fd.value); err != nil {
				errs[name] = append(errs[name], err.Error())
			}
		}
	}
	if len(f.constraints) > 0 {
		values := f.valuesLocked()
		for _, c := range f.constraints {
			if err := c.Check(values); err != nil {
				errs[""] = append(errs[""], err.Error())
			}
		}
	}
	f.errors = errs
	return len(errs) == 0
}

// Errors returns the messages recorded by the last IsValid, keyed by field.
// Form-level constraint messages use the empty key.
func (f *BasicForm) Errors() map[string][]string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(map[string][]string, len(f.errors))
	for k, v := range f.errors {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// ErrorFields returns the names of fields with errors, sorted.
func (f *BasicForm) ErrorFields() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := make([]string, 0, len(f.errors))
	for k := range f.errors {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// UpdateRecord copies every field value into r. The writes are grouped in
// one edit unless r is already being edited.
func (f *BasicForm) UpdateRecord(r *record.Record) {
	if r == nil {
		return
	}
	values := f.Values()
	f.mu.RLock()
	order := append([]string(nil), f.order...)
	f.mu.RUnlock()

	editing := r.Editing()
	if !editing {
		r.BeginEdit()
	}
	for _, name := range order {
		r.Set(name, values[name])
	}
	if !editing {
		r.EndEdit()
	}
}

// LoadRecord copies the record values of known fields into the form and
// clears errors.
func (f *BasicForm) LoadRecord(r *record.Record) {
	if r == nil {
		return
	}
	data := r.Data()
	f.mu.Lock()
	defer f.mu.Unlock()
	for name, fd := range f.fields {
		if v, ok := data[name]; ok {
			fd.value = v
			fd.initial = v
		}
	}
	f.errors = make(map[string][]string)
}

// Reset restores the field defaults and clears errors.
func (f *BasicForm) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, fd := range f.fields {
		fd.value = fd.def
		fd.initial = fd.def
	}
	f.errors = make(map[string][]string)
}
