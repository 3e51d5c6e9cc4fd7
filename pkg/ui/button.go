package ui

// Button is an actionable button.
type Button struct {
	itemID   string
	text     string
	disabled bool
	handler  func(b *Button)
}

// NewButton creates a button.
func NewButton(itemID, text string) *Button {
	return &Button{itemID: itemID, text: text}
}

// ItemID returns the button identifier.
func (b *Button) ItemID() string { return b.itemID }

// Text returns the button label.
func (b *Button) Text() string { return b.text }

// SetHandler replaces the click handler.
func (b *Button) SetHandler(fn func(b *Button)) { b.handler = fn }

// Disable prevents clicks from reaching the handler.
func (b *Button) Disable() { b.disabled = true }

// Enable re-enables the button.
func (b *Button) Enable() { b.disabled = false }

// Disabled reports whether the button is disabled.
func (b *Button) Disabled() bool { return b.disabled }

// Click invokes the handler unless the button is disabled.
func (b *Button) Click() {
	if b.disabled || b.handler == nil {
		return
	}
	b.handler(b)
}

// Toolbar is an ordered set of buttons.
type Toolbar struct {
	items []*Button
}

// NewToolbar creates a toolbar holding buttons.
func NewToolbar(buttons ...*Button) *Toolbar {
	return &Toolbar{items: buttons}
}

// Add appends a button.
func (t *Toolbar) Add(b *Button) { t.items = append(t.items, b) }

// Items returns the toolbar buttons.
func (t *Toolbar) Items() []*Button { return t.items }

// Component returns the button with the given item ID, or nil.
func (t *Toolbar) Component(itemID string) *Button {
	for _, b := range t.items {
		if b.itemID == itemID {
			return b
		}
	}
	return nil
}
