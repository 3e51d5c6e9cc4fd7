// Package ui defines the container tree storable controllers attach to.
//
// The tree is made of Components. A component may expose two optional
// capabilities, each through an accessor that returns nil when absent:
//
//   - Lifecycle(): it accepts LoadRecord and Reset calls
//   - Form(): it holds a form bound to the record
//
// KindOf classifies a component by the capabilities it exposes, and Walk
// visits every descendant depth-first, so propagation code dispatches on
// the capability set instead of probing each node.
//
// Panel is the concrete container. It owns child items, a button collection,
// top and bottom toolbars, an optional form, a mask, named events with
// optional bubbling to ancestors, and a set of composable lifecycle Hooks.
//
// Loop runs posted functions on a single goroutine; applications use it as
// the UI thread and hand loop.Post to collections as their dispatcher.
package ui
