package record

import (
	"encoding/json"
	"maps"
	"reflect"
	"sync"

	"github.com/google/uuid"
)

// Field describes one field of a record type.
type Field struct {
	Name    string
	Default any
}

// Type is the constructor for records of one shape.
type Type struct {
	Name   string
	Fields []Field
}

// NewType creates a record type.
func NewType(name string, fields ...Field) *Type {
	return &Type{Name: name, Fields: fields}
}

// FieldNames returns the declared field names in order.
func (t *Type) FieldNames() []string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Name
	}
	return names
}

// New creates a phantom record with defaults applied and data layered on top.
// The record gets a client-side ID until a backend assigns a real one.
func (t *Type) New(data map[string]any) *Record {
	values := make(map[string]any, len(t.Fields)+len(data))
	for _, f := range t.Fields {
		values[f.Name] = f.Default
	}
	maps.Copy(values, data)
	return &Record{
		id:      uuid.NewString(),
		typ:     t,
		data:    values,
		phantom: true,
	}
}

// Load creates a persisted (non-phantom, clean) record from backend data.
func (t *Type) Load(id string, data map[string]any) *Record {
	r := t.New(data)
	r.id = id
	r.phantom = false
	return r
}

// Observer is notified when a record finishes an edit.
// Collections join their records as observers.
type Observer interface {
	AfterEdit(r *Record)
}

// Record is a single editable entity.
type Record struct {
	mu sync.RWMutex

	id      string
	typ     *Type
	data    map[string]any
	phantom bool

	// modified holds the last persisted value of every changed field.
	modified map[string]any

	editing      bool
	editData     map[string]any
	editModified map[string]any
	editChanged  bool

	observer Observer
}

// ID returns the record identifier.
func (r *Record) ID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.id
}

// SetID replaces the identifier, typically with the one a backend assigned.
func (r *Record) SetID(id string) {
	r.mu.Lock()
	r.id = id
	r.mu.Unlock()
}

// Type returns the record type.
func (r *Record) Type() *Type {
	return r.typ
}

// Get returns a field value.
func (r *Record) Get(field string) any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data[field]
}

// Data returns a copy of all field values.
func (r *Record) Data() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.data)
}

// Set changes a field value. Setting the current value is a no-op.
// Outside an edit transaction the observer is notified immediately.
func (r *Record) Set(field string, value any) {
	r.mu.Lock()
	current, exists := r.data[field]
	if exists && Equal(current, value) {
		r.mu.Unlock()
		return
	}
	if r.modified == nil {
		r.modified = make(map[string]any)
	}
	if original, ok := r.modified[field]; ok {
		if Equal(original, value) {
			delete(r.modified, field)
		}
	} else {
		r.modified[field] = current
	}
	r.data[field] = value

	notify := !r.editing
	if r.editing {
		r.editChanged = true
	}
	observer := r.observer
	r.mu.Unlock()

	if notify && observer != nil {
		observer.AfterEdit(r)
	}
}

// Phantom reports whether the record has never been persisted.
func (r *Record) Phantom() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.phantom
}

// Dirty reports whether any field differs from its last persisted value.
func (r *Record) Dirty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.modified) > 0
}

// Modified returns the last persisted values of the changed fields.
func (r *Record) Modified() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.modified)
}

// Editing reports whether an edit transaction is open.
func (r *Record) Editing() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.editing
}

// BeginEdit opens an edit transaction. Nested calls are ignored.
func (r *Record) BeginEdit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.editing {
		return
	}
	r.editing = true
	r.editChanged = false
	r.editData = maps.Clone(r.data)
	r.editModified = maps.Clone(r.modified)
}

// EndEdit closes the edit transaction and notifies the observer once if
// anything changed while it was open.
func (r *Record) EndEdit() {
	r.mu.Lock()
	if !r.editing {
		r.mu.Unlock()
		return
	}
	changed := r.editChanged
	r.clearEditLocked()
	observer := r.observer
	r.mu.Unlock()

	if changed && observer != nil {
		observer.AfterEdit(r)
	}
}

// CancelEdit closes the edit transaction and restores the values captured
// when it was opened.
func (r *Record) CancelEdit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.editing {
		return
	}
	r.data = r.editData
	r.modified = r.editModified
	r.clearEditLocked()
}

func (r *Record) clearEditLocked() {
	r.editing = false
	r.editChanged = false
	r.editData = nil
	r.editModified = nil
}

// Commit marks the current values as persisted.
func (r *Record) Commit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modified = nil
	r.phantom = false
	r.clearEditLocked()
}

// Reject restores every changed field to its last persisted value.
func (r *Record) Reject() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for field, original := range r.modified {
		r.data[field] = original
	}
	r.modified = nil
	r.clearEditLocked()
}

// Merge overwrites fields with values returned by a backend without marking
// them modified.
func (r *Record) Merge(data map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for field, value := range data {
		r.data[field] = value
		delete(r.modified, field)
	}
}

// Join sets the observer notified after edits.
func (r *Record) Join(o Observer) {
	r.mu.Lock()
	r.observer = o
	r.mu.Unlock()
}

// Unjoin removes the observer if it is o.
func (r *Record) Unjoin(o Observer) {
	r.mu.Lock()
	if r.observer == o {
		r.observer = nil
	}
	r.mu.Unlock()
}

// Payload is the transport form of a record.
type Payload struct {
	ID       string         `json:"id,omitempty"`
	ClientID string         `json:"clientId,omitempty"`
	Data     map[string]any `json:"data"`
}

// Payload returns the transport form of the record. Phantom records send
// their client ID so the backend response can be matched back.
func (r *Record) Payload() Payload {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p := Payload{Data: maps.Clone(r.data)}
	if r.phantom {
		p.ClientID = r.id
	} else {
		p.ID = r.id
	}
	return p
}

// MarshalJSON encodes the record as its payload.
func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Payload())
}

// Equal compares two field values. Numbers compare by value regardless of
// their Go type, so 3 and 3.0 are equal.
func Equal(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
