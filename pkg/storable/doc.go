// Package storable attaches an editable-record lifecycle to a container.
//
// Install composes three lifecycle operations onto a host panel, wires its
// save and cancel buttons, and optionally binds a collection:
//
//	ctrl, err := storable.Install(editor,
//	    storable.WithSaveButton("bbar.btn-save"),
//	    storable.WithCancelButton("bbar.btn-cancel"),
//	    storable.WithStoreID("products"),
//	    storable.WithResolver(registry.Resolver()),
//	)
//
// After installation the host behaves as follows:
//
//   - LoadRecord(r) makes r the active record and pushes it into the host
//     form and into every descendant with a lifecycle or a form.
//   - Reset(params) clears the same descendants and starts a new record of
//     the bound collection's type inside an open edit.
//   - Bind(c) switches the host to collection c and subscribes to its
//     before-write, write and exception signals.
//
// Clicking save validates the form, copies it into the active record, adds
// new records to the collection and saves it. The host is masked while the
// write is outstanding. Clicking cancel fires storable-cancel.
//
// Hosts fire the events listed in Events. EventSave and EventCancel bubble
// to every ancestor panel.
package storable
