package ui

import "github.com/vango-dev/storable/pkg/record"

// Component is a node in the container tree.
type Component interface {
	ItemID() string
	Parent() Component
	Children() []Component
	Hidden() bool

	// Lifecycle returns the record lifecycle capability, or nil.
	Lifecycle() Lifecycle

	// Form returns the bound form, or nil.
	Form() Form
}

// Lifecycle is implemented by containers that accept records.
type Lifecycle interface {
	LoadRecord(r *record.Record)
	Reset(params any)
}

// Form is a form-like object bound to a record.
type Form interface {
	IsValid() bool
	UpdateRecord(r *record.Record)
	LoadRecord(r *record.Record)
	Reset()
}

// Kind classifies a component by its capabilities.
type Kind int

const (
	KindPlain Kind = iota
	KindLifecycle
	KindForm
	KindBoth
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindLifecycle:
		return "lifecycle"
	case KindForm:
		return "form"
	case KindBoth:
		return "lifecycle+form"
	default:
		return "plain"
	}
}

// HasLifecycle reports whether the kind includes the lifecycle capability.
func (k Kind) HasLifecycle() bool { return k == KindLifecycle || k == KindBoth }

// HasForm reports whether the kind includes a form.
func (k Kind) HasForm() bool { return k == KindForm || k == KindBoth }

// KindOf returns the capability set of c.
func KindOf(c Component) Kind {
	lc, f := c.Lifecycle() != nil, c.Form() != nil
	switch {
	case lc && f:
		return KindBoth
	case lc:
		return KindLifecycle
	case f:
		return KindForm
	default:
		return KindPlain
	}
}

// Walk calls fn for every descendant of root, depth-first and in child
// order. The root itself is not visited.
func Walk(root Component, fn func(c Component)) {
	for _, child := range root.Children() {
		if child == nil {
			continue
		}
		fn(child)
		Walk(child, fn)
	}
}

// FindForm returns the form of the first descendant that has one.
func FindForm(root Component) Form {
	var found Form
	Walk(root, func(c Component) {
		if found == nil {
			found = c.Form()
		}
	})
	return found
}
