package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vango-dev/storable/internal/errors"
	"github.com/vango-dev/storable/pkg/storable"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "storable.json"

	// HCLFileName is the name of the HCL configuration file.
	HCLFileName = "storable.hcl"

	// DefaultAddr is the default record API listen address.
	DefaultAddr = ":8080"

	// DefaultBackend is the default persistence backend.
	DefaultBackend = "memory"

	// DefaultRequestTimeout bounds a single record API request.
	DefaultRequestTimeout = "10s"
)

// Backend names accepted by ServerConfig.Backend.
const (
	BackendMemory = "memory"
	BackendS3     = "s3"
)

// Config is a storable project: the record API server plus the collections
// and editors built on top of it.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Server configures the record API.
	Server ServerConfig `json:"server,omitempty"`

	// Collections declares the record collections.
	Collections []CollectionConfig `json:"collections,omitempty"`

	// Editors declares the editor panels bound to collections.
	Editors []EditorConfig `json:"editors,omitempty"`

	// path is the file this config was loaded from.
	path string
}

// ServerConfig configures the record API server.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `json:"addr,omitempty"`

	// Backend is "memory" or "s3".
	Backend string `json:"backend,omitempty"`

	// RequestTimeout is a Go duration string.
	RequestTimeout string `json:"requestTimeout,omitempty"`

	// AllowedOrigins restricts WebSocket upgrades. Empty allows same-origin only.
	AllowedOrigins []string `json:"allowedOrigins,omitempty"`

	// S3 configures the S3 backend.
	S3 S3Config `json:"s3,omitempty"`
}

// S3Config configures the S3 backend.
type S3Config struct {
	Bucket   string `json:"bucket,omitempty"`
	Prefix   string `json:"prefix,omitempty"`
	Region   string `json:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`
}

// CollectionConfig declares one collection and its record type.
type CollectionConfig struct {
	// ID is the registry identifier.
	ID string `json:"id"`

	// AutoSave makes every add or edit write immediately.
	AutoSave bool `json:"autoSave,omitempty"`

	// Fields declares the record fields in order.
	Fields []FieldConfig `json:"fields,omitempty"`

	// Constraints are cross-field CEL expressions.
	Constraints []ConstraintConfig `json:"constraints,omitempty"`
}

// FieldConfig declares one record field and its form validation.
type FieldConfig struct {
	Name string `json:"name"`

	// Default is the value a new record starts with.
	Default any `json:"default,omitempty"`

	// Rules is a comma-separated rule list, e.g. "required,min=2".
	Rules string `json:"rules,omitempty"`

	// Expr is an expr-lang boolean over `value`.
	Expr string `json:"expr,omitempty"`

	// Message is reported when Expr fails.
	Message string `json:"message,omitempty"`
}

// ConstraintConfig is a cross-field CEL rule.
type ConstraintConfig struct {
	Expr    string `json:"expr"`
	Message string `json:"message,omitempty"`
}

// EditorConfig declares an editor panel.
type EditorConfig struct {
	// ID is the panel itemId.
	ID string `json:"id"`

	// Collection is the ID of the bound collection.
	Collection string `json:"collection"`

	// SaveButton and CancelButton are "<location>.<itemId>" paths.
	SaveButton   string `json:"saveButton,omitempty"`
	CancelButton string `json:"cancelButton,omitempty"`

	// Mask toggles the saving mask. Nil means enabled.
	Mask *bool `json:"mask,omitempty"`

	// MaskMessage overrides the mask text.
	MaskMessage string `json:"maskMessage,omitempty"`
}

// MaskEnabled reports whether the editor masks while saving.
func (e EditorConfig) MaskEnabled() bool {
	return e.Mask == nil || *e.Mask
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           DefaultAddr,
			Backend:        DefaultBackend,
			RequestTimeout: DefaultRequestTimeout,
		},
	}
}

// Load reads configuration from the specified directory.
// storable.json wins over storable.hcl when both exist.
func Load(dir string) (*Config, error) {
	jsonPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(jsonPath); err == nil {
		return LoadFile(jsonPath)
	}
	hclPath := filepath.Join(dir, HCLFileName)
	if _, err := os.Stat(hclPath); err == nil {
		return LoadFile(hclPath)
	}
	return nil, errors.New("S007").
		WithDetailf("no %s or %s found in %s", ConfigFileName, HCLFileName, dir).
		WithSuggestion("Create a storable.json or storable.hcl at the project root")
}

// LoadFile reads configuration from the specified file path. Files ending in
// .hcl are parsed as HCL, everything else as JSON.
func LoadFile(path string) (*Config, error) {
	if strings.EqualFold(filepath.Ext(path), ".hcl") {
		return LoadHCL(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("S007").WithDetail("file not found: " + path)
		}
		return nil, errors.New("S007").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("S007").
			WithDetail("failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that the file is valid JSON")
	}

	cfg.path = path
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the configuration back to the file it was loaded from.
func (c *Config) Save() error {
	if c.path == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.path)
}

// SaveTo writes the configuration as JSON to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("S007").Wrap(err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("S007").Wrap(err)
	}
	c.path = path
	return nil
}

// Path returns the path to the config file.
func (c *Config) Path() string {
	return c.path
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.path == "" {
		return "."
	}
	return filepath.Dir(c.path)
}

// Collection returns the collection with the given ID.
func (c *Config) Collection(id string) (CollectionConfig, bool) {
	for _, coll := range c.Collections {
		if coll.ID == id {
			return coll, true
		}
	}
	return CollectionConfig{}, false
}

// Editor returns the editor with the given ID.
func (c *Config) Editor(id string) (EditorConfig, bool) {
	for _, ed := range c.Editors {
		if ed.ID == id {
			return ed, true
		}
	}
	return EditorConfig{}, false
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.Backend == "" {
		c.Server.Backend = DefaultBackend
	}
	if c.Server.RequestTimeout == "" {
		c.Server.RequestTimeout = DefaultRequestTimeout
	}
	for i := range c.Editors {
		if c.Editors[i].SaveButton == "" {
			c.Editors[i].SaveButton = "bbar.btn-save"
		}
		if c.Editors[i].CancelButton == "" {
			c.Editors[i].CancelButton = "bbar.btn-cancel"
		}
	}
}

// Validate checks the configuration for structural errors. Rule expressions
// are compiled later, when the editor is built.
func (c *Config) Validate() error {
	switch c.Server.Backend {
	case BackendMemory:
	case BackendS3:
		if c.Server.S3.Bucket == "" {
			return errors.New("S007").
				WithDetail("server.s3.bucket is required for the s3 backend")
		}
	default:
		return errors.New("S051").WithDetailf("%q", c.Server.Backend)
	}

	if c.Server.RequestTimeout != "" {
		if _, err := time.ParseDuration(c.Server.RequestTimeout); err != nil {
			return errors.New("S007").
				WithDetailf("server.requestTimeout %q: %v", c.Server.RequestTimeout, err)
		}
	}

	collections := make(map[string]bool, len(c.Collections))
	for _, coll := range c.Collections {
		if coll.ID == "" {
			return errors.New("S007").WithDetail("collection without id")
		}
		if collections[coll.ID] {
			return errors.New("S007").WithDetailf("duplicate collection %q", coll.ID)
		}
		collections[coll.ID] = true

		fields := make(map[string]bool, len(coll.Fields))
		for _, f := range coll.Fields {
			if f.Name == "" {
				return errors.New("S007").WithDetailf("collection %q has a field without name", coll.ID)
			}
			if fields[f.Name] {
				return errors.New("S007").WithDetailf("collection %q declares field %q twice", coll.ID, f.Name)
			}
			fields[f.Name] = true
		}
		for _, con := range coll.Constraints {
			if strings.TrimSpace(con.Expr) == "" {
				return errors.New("S007").WithDetailf("collection %q has an empty constraint", coll.ID)
			}
		}
	}

	editors := make(map[string]bool, len(c.Editors))
	for _, ed := range c.Editors {
		if ed.ID == "" {
			return errors.New("S007").WithDetail("editor without id")
		}
		if editors[ed.ID] {
			return errors.New("S007").WithDetailf("duplicate editor %q", ed.ID)
		}
		editors[ed.ID] = true

		if !collections[ed.Collection] {
			return errors.New("S004").WithDetailf("editor %q references %q", ed.ID, ed.Collection)
		}
		for _, path := range []string{ed.SaveButton, ed.CancelButton} {
			if _, err := storable.ParseButtonPath(path); err != nil {
				return err
			}
		}
	}

	return nil
}

// Timeout returns the parsed request timeout, or zero when unset or invalid.
func (s ServerConfig) Timeout() time.Duration {
	d, err := time.ParseDuration(s.RequestTimeout)
	if err != nil {
		return 0
	}
	return d
}
