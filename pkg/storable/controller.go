package storable

import (
	"errors"
	"log/slog"
	"sync"

	serrors "github.com/vango-dev/storable/internal/errors"
	"github.com/vango-dev/storable/pkg/collection"
	"github.com/vango-dev/storable/pkg/record"
	"github.com/vango-dev/storable/pkg/toast"
	"github.com/vango-dev/storable/pkg/ui"
)

var (
	// ErrAlreadyInstalled is returned when a host already carries a
	// controller.
	ErrAlreadyInstalled = errors.New("storable: controller already installed on host")

	// ErrNoForm is wrapped when neither the host nor a descendant has a form.
	ErrNoForm = errors.New("storable: host has no form")

	// ErrNoCollection is wrapped when a save runs before Bind.
	ErrNoCollection = errors.New("storable: no collection bound")
)

// Host is a container a controller can be installed on. *ui.Panel
// implements it.
type Host interface {
	ui.Component
	ui.Observable
	ButtonHost

	LifecycleHooks() *ui.Hooks
	Mask(msg string)
	Unmask()
}

var _ Host = (*ui.Panel)(nil)

// Controller holds the editing state attached to one host.
type Controller struct {
	config Config
	host   Host
	logger *slog.Logger
	notify toast.Notifier

	saveButton   *ui.Button
	cancelButton *ui.Button

	mu     sync.Mutex
	coll   collection.Collection
	unsubs []func()
	record *record.Record

	// trigger is the save-in-flight marker: the button that started the
	// save. Collection signals are ignored while it is nil.
	trigger *ui.Button
	masked  bool
}

// Install attaches a controller to host. Button paths and the store ID are
// resolved before the host is modified, so a configuration error leaves the
// host untouched.
func Install(host Host, opts ...Option) (*Controller, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Notifier == nil {
		cfg.Notifier = toast.LogNotifier{Logger: cfg.Logger}
	}
	if cfg.MaskMessage == "" {
		cfg.MaskMessage = DefaultMaskMessage
	}
	if cfg.Name == "" {
		cfg.Name = host.ItemID()
	}
	if cfg.composeReset == nil {
		cfg.composeReset = Intercept[any]
		cfg.composeBind = Intercept[collection.Collection]
		cfg.composeLoadRecord = Intercept[*record.Record]
	}

	hooks := host.LifecycleHooks()
	if hooks.Owner != nil {
		return nil, ErrAlreadyInstalled
	}

	c := &Controller{
		config: cfg,
		host:   host,
		logger: cfg.Logger.With("controller", cfg.Name),
		notify: cfg.Notifier,
	}

	var err error
	if cfg.SaveButton != "" {
		if c.saveButton, err = LocateButton(host, cfg.SaveButton); err != nil {
			return nil, err
		}
	}
	if cfg.CancelButton != "" {
		if c.cancelButton, err = LocateButton(host, cfg.CancelButton); err != nil {
			return nil, err
		}
	}

	coll := cfg.Store
	if coll == nil && cfg.StoreID != "" {
		var ok bool
		if cfg.Resolver != nil {
			coll, ok = cfg.Resolver(cfg.StoreID)
		}
		if !ok || coll == nil {
			return nil, serrors.New("S004").WithDetailf("%q", cfg.StoreID)
		}
	}

	hooks.Reset = cfg.composeReset(hooks.Reset, c.reset)
	hooks.Bind = cfg.composeBind(hooks.Bind, c.bind)
	hooks.LoadRecord = cfg.composeLoadRecord(hooks.LoadRecord, c.loadRecord)
	hooks.Owner = c

	if c.saveButton != nil {
		c.saveButton.SetHandler(func(b *ui.Button) { c.OnSave(b) })
	}
	if c.cancelButton != nil {
		c.cancelButton.SetHandler(func(*ui.Button) { c.OnCancel() })
	}

	host.AddEvents(Events...)
	host.EnableBubble(BubblingEvents...)

	if coll != nil {
		c.Bind(coll)
	}
	c.logger.Debug("controller installed",
		"save_button", cfg.SaveButton,
		"cancel_button", cfg.CancelButton,
		"bound", coll != nil)
	return c, nil
}

// MustInstall is like Install but panics on error.
func MustInstall(host Host, opts ...Option) *Controller {
	c, err := Install(host, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// ControllerOf returns the controller installed on host, if any.
func ControllerOf(host Host) (*Controller, bool) {
	c, ok := host.LifecycleHooks().Owner.(*Controller)
	return c, ok
}

// Name returns the controller name.
func (c *Controller) Name() string { return c.config.Name }

// Host returns the container the controller is installed on.
func (c *Controller) Host() Host { return c.host }

// SaveButton returns the located save button, or nil.
func (c *Controller) SaveButton() *ui.Button { return c.saveButton }

// CancelButton returns the located cancel button, or nil.
func (c *Controller) CancelButton() *ui.Button { return c.cancelButton }

// Record returns the active record.
func (c *Controller) Record() *record.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.record
}

// Collection returns the bound collection.
func (c *Controller) Collection() collection.Collection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.coll
}

// Saving reports whether a save started by this controller is in flight.
func (c *Controller) Saving() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.trigger != nil
}

// SaveTrigger returns the button that started the save in flight, or nil.
func (c *Controller) SaveTrigger() *ui.Button {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.trigger
}

// Masked reports whether the controller currently holds the host mask.
func (c *Controller) Masked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.masked
}

// Bind runs the host's composed Bind operation.
func (c *Controller) Bind(coll collection.Collection) bool {
	return c.host.LifecycleHooks().Bind(coll)
}

// LoadRecord runs the host's composed LoadRecord operation.
func (c *Controller) LoadRecord(r *record.Record) bool {
	return c.host.LifecycleHooks().LoadRecord(r)
}

// Reset runs the host's composed Reset operation.
func (c *Controller) Reset(params any) bool {
	return c.host.LifecycleHooks().Reset(params)
}

// Close unsubscribes from the bound collection.
func (c *Controller) Close() {
	c.mu.Lock()
	unsubs := c.unsubs
	c.unsubs = nil
	c.mu.Unlock()
	for _, off := range unsubs {
		off()
	}
}
