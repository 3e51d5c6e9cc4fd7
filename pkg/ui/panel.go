package ui

import (
	"github.com/vango-dev/storable/pkg/collection"
	"github.com/vango-dev/storable/pkg/record"
)

// Hooks are the composable lifecycle slots of a Panel. A nil slot means the
// panel does not implement that operation. Each slot returns false to veto.
type Hooks struct {
	Reset      func(params any) bool
	Bind       func(c collection.Collection) bool
	LoadRecord func(r *record.Record) bool

	// Owner is set by whatever installed behavior into the slots.
	Owner any
}

// PanelOption configures a Panel.
type PanelOption func(*Panel)

// WithItems adds child components.
func WithItems(items ...Component) PanelOption {
	return func(p *Panel) {
		for _, item := range items {
			p.Add(item)
		}
	}
}

// WithButtons sets the panel's button collection.
func WithButtons(buttons ...*Button) PanelOption {
	return func(p *Panel) {
		p.buttons = append(p.buttons, buttons...)
	}
}

// WithTopToolbar sets the top toolbar.
func WithTopToolbar(t *Toolbar) PanelOption {
	return func(p *Panel) {
		p.tbar = t
	}
}

// WithBottomToolbar sets the bottom toolbar.
func WithBottomToolbar(t *Toolbar) PanelOption {
	return func(p *Panel) {
		p.bbar = t
	}
}

// WithForm binds a form to the panel.
func WithForm(f Form) PanelOption {
	return func(p *Panel) {
		p.form = f
	}
}

// WithHooks sets the panel's own lifecycle implementations.
func WithHooks(h Hooks) PanelOption {
	return func(p *Panel) {
		p.hooks = h
	}
}

// Hidden creates the panel hidden.
func Hidden() PanelOption {
	return func(p *Panel) {
		p.hidden = true
	}
}

// Panel is a container with child items, buttons, toolbars, an optional
// form and a mask.
type Panel struct {
	events

	itemID  string
	parent  Component
	items   []Component
	buttons []*Button
	tbar    *Toolbar
	bbar    *Toolbar
	form    Form
	hidden  bool
	hooks   Hooks

	masked  bool
	maskMsg string
}

var (
	_ Component  = (*Panel)(nil)
	_ Observable = (*Panel)(nil)
	_ Lifecycle  = (*Panel)(nil)
)

// NewPanel creates a panel.
func NewPanel(itemID string, opts ...PanelOption) *Panel {
	p := &Panel{itemID: itemID}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type parentSetter interface {
	setParent(c Component)
}

func (p *Panel) setParent(c Component) { p.parent = c }

// Add appends a child and adopts it when it is a Panel.
func (p *Panel) Add(c Component) {
	if ps, ok := c.(parentSetter); ok {
		ps.setParent(p)
	}
	p.items = append(p.items, c)
}

func (p *Panel) ItemID() string          { return p.itemID }
func (p *Panel) Parent() Component       { return p.parent }
func (p *Panel) Children() []Component   { return p.items }
func (p *Panel) Hidden() bool            { return p.hidden }
func (p *Panel) Buttons() []*Button      { return p.buttons }
func (p *Panel) TopToolbar() *Toolbar    { return p.tbar }
func (p *Panel) BottomToolbar() *Toolbar { return p.bbar }

// Form returns the bound form, or nil.
func (p *Panel) Form() Form { return p.form }

// SetHidden shows or hides the panel.
func (p *Panel) SetHidden(hidden bool) { p.hidden = hidden }

// LifecycleHooks exposes the hook slots for composition.
func (p *Panel) LifecycleHooks() *Hooks { return &p.hooks }

// Lifecycle returns the panel when it implements LoadRecord or Reset.
func (p *Panel) Lifecycle() Lifecycle {
	if p.hooks.LoadRecord == nil && p.hooks.Reset == nil {
		return nil
	}
	return p
}

// LoadRecord invokes the LoadRecord hook.
func (p *Panel) LoadRecord(r *record.Record) {
	if p.hooks.LoadRecord != nil {
		p.hooks.LoadRecord(r)
	}
}

// Reset invokes the Reset hook.
func (p *Panel) Reset(params any) {
	if p.hooks.Reset != nil {
		p.hooks.Reset(params)
	}
}

// Bind invokes the Bind hook.
func (p *Panel) Bind(c collection.Collection) {
	if p.hooks.Bind != nil {
		p.hooks.Bind(c)
	}
}

// Mask shows the blocking indicator with msg.
func (p *Panel) Mask(msg string) {
	p.masked = true
	p.maskMsg = msg
}

// Unmask hides the blocking indicator.
func (p *Panel) Unmask() {
	p.masked = false
	p.maskMsg = ""
}

// Masked reports whether the mask is shown.
func (p *Panel) Masked() bool { return p.masked }

// MaskMessage returns the current mask text.
func (p *Panel) MaskMessage() string { return p.maskMsg }

// Fire runs local handlers for name. When the event bubbles it is re-fired
// on each ancestor in turn until a handler vetoes it.
func (p *Panel) Fire(name string, args ...any) bool {
	if !p.fireLocal(name, args) {
		return false
	}
	if !p.Bubbles(name) {
		return true
	}
	for a := p.parent; a != nil; a = a.Parent() {
		if lf, ok := a.(localFirer); ok {
			if !lf.fireLocal(name, args) {
				return false
			}
		}
	}
	return true
}
