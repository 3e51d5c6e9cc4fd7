package storable

import (
	"github.com/vango-dev/storable/pkg/record"
	"github.com/vango-dev/storable/pkg/ui"
)

// loadRecord makes r the active record and pushes it through the tree.
func (c *Controller) loadRecord(r *record.Record) bool {
	if r == nil {
		c.logger.Warn("loadRecord called without a record")
		return false
	}

	c.mu.Lock()
	c.trigger = nil
	c.record = r
	c.mu.Unlock()

	if f := c.host.Form(); f != nil {
		f.LoadRecord(r)
	}
	c.propagate(func(lc ui.Lifecycle) { lc.LoadRecord(r) }, func(f ui.Form) { f.LoadRecord(r) })
	return true
}

// reset clears the tree and starts a fresh record of the collection's type.
func (c *Controller) reset(params any) bool {
	c.mu.Lock()
	c.trigger = nil
	c.mu.Unlock()

	if f := c.host.Form(); f != nil {
		f.Reset()
	}
	c.propagate(func(lc ui.Lifecycle) { lc.Reset(params) }, func(f ui.Form) { f.Reset() })

	coll := c.Collection()
	var r *record.Record
	if coll != nil {
		r = coll.RecordType().New(nil)
		r.BeginEdit()
	} else {
		c.logger.Warn("reset without a bound collection")
	}

	c.mu.Lock()
	c.record = r
	c.mu.Unlock()
	return true
}

// propagate visits every descendant of the host and applies the lifecycle
// and form actions according to its capabilities.
func (c *Controller) propagate(lifecycle func(ui.Lifecycle), form func(ui.Form)) {
	ui.Walk(c.host, func(node ui.Component) {
		kind := ui.KindOf(node)
		if kind.HasLifecycle() {
			lifecycle(node.Lifecycle())
		}
		if kind.HasForm() {
			form(node.Form())
		}
	})
}
