package storable

import (
	"context"
	"log/slog"

	"github.com/vango-dev/storable/pkg/collection"
	"github.com/vango-dev/storable/pkg/record"
	"github.com/vango-dev/storable/pkg/toast"
)

// DefaultMaskMessage is shown on the host while a save is outstanding.
const DefaultMaskMessage = "Saving, please wait..."

// Config holds controller settings.
type Config struct {
	// SaveButton and CancelButton are button paths such as "bbar.btn-save".
	// Empty paths leave the buttons unwired.
	SaveButton   string
	CancelButton string

	// StoreID is resolved through Resolver at install time.
	StoreID  string
	Resolver collection.Resolver

	// Store binds a collection directly. It takes precedence over StoreID.
	Store collection.Collection

	// Mask enables the pending-save mask.
	Mask        bool
	MaskMessage string

	// Name identifies the controller in logs and metrics.
	Name string

	// Context is passed to Collection.Save.
	Context context.Context

	Logger   *slog.Logger
	Notifier toast.Notifier

	// Composers for the host operations. Nil means Intercept.
	composeReset      Composer[any]
	composeBind       Composer[collection.Collection]
	composeLoadRecord Composer[*record.Record]
}

// Option configures a controller.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Mask:        true,
		MaskMessage: DefaultMaskMessage,
		Context:     context.Background(),
	}
}

// WithSaveButton sets the save button path.
func WithSaveButton(path string) Option {
	return func(c *Config) {
		c.SaveButton = path
	}
}

// WithCancelButton sets the cancel button path.
func WithCancelButton(path string) Option {
	return func(c *Config) {
		c.CancelButton = path
	}
}

// WithStoreID binds the collection registered under id. A resolver must be
// supplied with WithResolver.
func WithStoreID(id string) Option {
	return func(c *Config) {
		c.StoreID = id
	}
}

// WithResolver sets the lookup used for WithStoreID.
func WithResolver(r collection.Resolver) Option {
	return func(c *Config) {
		c.Resolver = r
	}
}

// WithStore binds coll at install time.
func WithStore(coll collection.Collection) Option {
	return func(c *Config) {
		c.Store = coll
	}
}

// WithMask enables or disables the pending-save mask.
func WithMask(enabled bool) Option {
	return func(c *Config) {
		c.Mask = enabled
	}
}

// WithMaskMessage sets the mask text.
func WithMaskMessage(msg string) Option {
	return func(c *Config) {
		c.MaskMessage = msg
	}
}

// WithName sets the controller name.
func WithName(name string) Option {
	return func(c *Config) {
		c.Name = name
	}
}

// WithContext sets the context used for saves.
func WithContext(ctx context.Context) Option {
	return func(c *Config) {
		c.Context = ctx
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithNotifier sets where failures are reported.
func WithNotifier(n toast.Notifier) Option {
	return func(c *Config) {
		c.Notifier = n
	}
}

// WithSequencedHooks runs the host's own operations before the
// controller's instead of letting the controller intercept them.
func WithSequencedHooks() Option {
	return func(c *Config) {
		c.composeReset = Sequence[any]
		c.composeBind = Sequence[collection.Collection]
		c.composeLoadRecord = Sequence[*record.Record]
	}
}
