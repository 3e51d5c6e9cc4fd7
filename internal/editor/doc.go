// Package editor assembles editor panels from project configuration.
//
// For each configured collection it derives a record type, a form with the
// declared rules and a store; for each configured editor it builds a panel
// tree with save and cancel buttons and installs a storable controller on it.
package editor
