package storable

import (
	serrors "github.com/vango-dev/storable/internal/errors"
	"github.com/vango-dev/storable/pkg/toast"
	"github.com/vango-dev/storable/pkg/ui"
)

// form returns the host's own form, else the first descendant form.
func (c *Controller) form() ui.Form {
	if f := c.host.Form(); f != nil {
		return f
	}
	return ui.FindForm(c.host)
}

// OnSave validates the form, copies it into the active record and persists
// it. btn is the button that triggered the save. Only a save with a button
// is tracked: a nil btn still persists the record, but the collection's
// signals then neither mask the host nor fire save events. It reports
// whether the record was handed to the collection or treated as an implicit
// cancel.
//
// Write results arrive later through the collection's signals. A save that
// stops before reaching the collection leaves the marker of an earlier save
// in place.
func (c *Controller) OnSave(btn *ui.Button) bool {
	coll := c.Collection()

	form := c.form()
	if form == nil {
		c.logger.Error("save aborted", "error", serrors.New("S005").Wrap(ErrNoForm))
		return false
	}
	if coll == nil {
		c.logger.Error("save aborted", "error", serrors.New("S006").Wrap(ErrNoCollection))
		return false
	}

	if !form.IsValid() {
		c.logger.Warn("save aborted", "error", serrors.New("S020"))
		c.host.Fire(EventInvalid, c.host, form)
		c.notify.Notify(toast.TypeError, MessageFormInvalid)
		return false
	}

	c.mu.Lock()
	r := c.record
	if r == nil {
		r = coll.RecordType().New(nil)
		r.BeginEdit()
		c.record = r
	}
	c.mu.Unlock()

	c.host.Fire(EventBeforeUpdateRecord, c.host, r)
	form.UpdateRecord(r)

	phantom := r.Phantom()
	if !phantom && !r.Dirty() {
		c.logger.Debug("record unchanged, treating save as cancel")
		c.host.Fire(EventCancel, c.host)
		return true
	}

	c.mu.Lock()
	c.trigger = btn
	c.mu.Unlock()

	if phantom {
		coll.Add(r)
	}
	if !coll.AutoSave() {
		if err := coll.Save(c.config.Context); err != nil {
			c.abortSave()
			c.clearMask()
			c.logger.Error("save failed", "error", err)
			return false
		}
	}
	return true
}

// abortSave drops the save-in-flight marker when no write will follow.
func (c *Controller) abortSave() {
	c.mu.Lock()
	c.trigger = nil
	c.mu.Unlock()
}

// OnCancel fires EventCancel.
func (c *Controller) OnCancel() {
	c.host.Fire(EventCancel, c.host)
}

// Save runs OnSave as if the located save button had been clicked.
func (c *Controller) Save() bool {
	return c.OnSave(c.saveButton)
}
