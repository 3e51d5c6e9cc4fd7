package storable

import (
	"fmt"

	"github.com/vango-dev/storable/pkg/collection"
	"github.com/vango-dev/storable/pkg/record"
	"github.com/vango-dev/storable/pkg/toast"
)

// bind switches the controller to coll, dropping the active record and the
// subscriptions to the previous collection.
func (c *Controller) bind(coll collection.Collection) bool {
	if coll == nil {
		c.logger.Warn("bind called without a collection")
		return false
	}

	c.mu.Lock()
	previous := c.unsubs
	c.unsubs = nil
	c.record = nil
	c.coll = coll
	c.mu.Unlock()

	for _, off := range previous {
		off()
	}

	unsubs := []func(){
		coll.OnBeforeWrite(c.onBeforeWrite),
		coll.OnWrite(c.onWrite),
		coll.OnException(c.onException),
	}
	c.mu.Lock()
	c.unsubs = unsubs
	c.mu.Unlock()

	c.logger.Debug("collection bound", "rebind", len(previous) > 0)
	return true
}

// tracking reports whether signals from the collection concern this host:
// a save started from a button is in flight and the host is visible.
func (c *Controller) tracking() bool {
	c.mu.Lock()
	marked := c.trigger != nil
	c.mu.Unlock()
	return marked && !c.host.Hidden()
}

func (c *Controller) onBeforeWrite(_ collection.Proxy, action collection.Action, _ []*record.Record) bool {
	if !c.tracking() {
		return true
	}
	if c.host.Fire(EventBeforeSave, c.host, action) && action != collection.ActionDestroy {
		c.assertMask()
	}
	return true
}

// onWrite and onException lift a mask this controller put up even when the
// marker has been dropped since, so the host never stays masked.
func (c *Controller) onWrite(ev collection.WriteEvent) {
	if ev.Action == collection.ActionDestroy {
		return
	}
	c.clearMask()
	if !c.tracking() {
		return
	}
	c.logger.Debug("record saved", "action", ev.Action, "records", len(ev.Records))
	c.host.Fire(EventSave, c.host, ev)
}

func (c *Controller) onException(ev collection.ExceptionEvent) {
	c.clearMask()
	if !c.tracking() {
		return
	}
	msg := ev.Message()
	c.logger.Error("save failed", "action", ev.Action, "type", ev.Type, "error", msg)
	c.host.Fire(EventException, c.host, ev)
	c.notify.Notify(toast.TypeError, fmt.Sprintf("%s failure: %s", ev.Action, msg))
}

func (c *Controller) assertMask() {
	if !c.config.Mask {
		return
	}
	c.mu.Lock()
	if c.masked {
		c.mu.Unlock()
		return
	}
	c.masked = true
	c.mu.Unlock()
	c.host.Mask(c.config.MaskMessage)
}

func (c *Controller) clearMask() {
	c.mu.Lock()
	if !c.masked {
		c.mu.Unlock()
		return
	}
	c.masked = false
	c.mu.Unlock()
	c.host.Unmask()
}
