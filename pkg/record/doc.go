// Package record provides the editable entity handled by storable controllers.
//
// A Record holds an opaque field-value mapping and tracks two pieces of
// persistence state:
//
//   - Phantom: the record has never been acknowledged by a backend.
//   - Dirty: at least one field differs from the last persisted value.
//
// Records are created from a Type, which supplies field defaults:
//
//	products := record.NewType("product",
//	    record.Field{Name: "name", Default: ""},
//	    record.Field{Name: "price", Default: 0.0},
//	)
//	r := products.New(map[string]any{"name": "Widget"})
//	r.Phantom() // true
//
// Edits can be grouped in a transaction with BeginEdit/EndEdit. While editing,
// the owning collection is not notified; EndEdit delivers a single notification
// if anything changed. CancelEdit restores the values captured at BeginEdit.
package record
