package editor

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/vango-dev/storable/internal/config"
	serrors "github.com/vango-dev/storable/internal/errors"
	"github.com/vango-dev/storable/pkg/collection"
	"github.com/vango-dev/storable/pkg/proxy"
	"github.com/vango-dev/storable/pkg/storable"
	"github.com/vango-dev/storable/pkg/toast"
	"github.com/vango-dev/storable/pkg/ui"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func productsConfig() *config.Config {
	cfg := config.New()
	cfg.Collections = []config.CollectionConfig{{
		ID: "products",
		Fields: []config.FieldConfig{
			{Name: "name", Default: "", Rules: "required,min=2"},
			{Name: "price", Default: 0.0, Expr: "value >= 0", Message: "negative"},
		},
		Constraints: []config.ConstraintConfig{{Expr: "price < 100.0", Message: "too expensive"}},
	}}
	cfg.Editors = []config.EditorConfig{{
		ID:           "product-editor",
		Collection:   "products",
		SaveButton:   "tbar.save",
		CancelButton: "buttons.cancel",
	}}
	return cfg
}

func TestRecordType(t *testing.T) {
	typ := RecordType(productsConfig().Collections[0])
	if typ.Name != "products" {
		t.Errorf("Name = %q, want products", typ.Name)
	}
	if diff := cmp.Diff([]string{"name", "price"}, typ.FieldNames()); diff != "" {
		t.Errorf("FieldNames mismatch (-want +got):\n%s", diff)
	}
	r := typ.New(nil)
	if r.Get("price") != 0.0 || !r.Phantom() {
		t.Errorf("New(nil) price = %v phantom = %v", r.Get("price"), r.Phantom())
	}
}

func TestNewForm(t *testing.T) {
	f, err := NewForm(productsConfig().Collections[0])
	if err != nil {
		t.Fatalf("NewForm() error = %v", err)
	}

	tests := []struct {
		name   string
		values map[string]any
		fields []string
	}{
		{"valid", map[string]any{"name": "Widget", "price": 4.0}, nil},
		{"rule", map[string]any{"name": "W", "price": 4.0}, []string{"name"}},
		{"expr", map[string]any{"name": "Widget", "price": -1.0}, []string{"price"}},
		{"constraint", map[string]any{"name": "Widget", "price": 500.0}, []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.values {
				f.SetValue(k, v)
			}
			valid := f.IsValid()
			if valid != (tt.fields == nil) {
				t.Errorf("IsValid() = %v, errors %v", valid, f.Errors())
			}
			if diff := cmp.Diff(tt.fields, f.ErrorFields(), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("ErrorFields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNewFormErrors(t *testing.T) {
	tests := []struct {
		name string
		coll config.CollectionConfig
	}{
		{"bad rule", config.CollectionConfig{ID: "c", Fields: []config.FieldConfig{{Name: "a", Rules: "sparkly"}}}},
		{"bad expr", config.CollectionConfig{ID: "c", Fields: []config.FieldConfig{{Name: "a", Expr: "value >"}}}},
		{"bad constraint", config.CollectionConfig{
			ID:          "c",
			Fields:      []config.FieldConfig{{Name: "a"}},
			Constraints: []config.ConstraintConfig{{Expr: "a +"}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewForm(tt.coll)
			if !serrors.HasCode(err, "S021") {
				t.Errorf("NewForm() error = %v, want S021", err)
			}
		})
	}
}

func TestNewRegistry(t *testing.T) {
	cfg := productsConfig()
	cfg.Collections = append(cfg.Collections, config.CollectionConfig{ID: "notes", AutoSave: true})

	reg := NewRegistry(cfg, proxy.NewMemory(), collection.WithLogger(quietLogger))

	if diff := cmp.Diff([]string{"notes", "products"}, reg.IDs()); diff != "" {
		t.Errorf("IDs mismatch (-want +got):\n%s", diff)
	}
	notes, _ := reg.Lookup("notes")
	if !notes.AutoSave() {
		t.Error("notes AutoSave() = false, want true")
	}
	products, _ := reg.Lookup("products")
	if products.AutoSave() {
		t.Error("products AutoSave() = true, want false")
	}
}

func TestBuildPlacesButtons(t *testing.T) {
	cfg := productsConfig()
	reg := NewRegistry(cfg, proxy.NewMemory(), collection.WithLogger(quietLogger))

	ed, err := Build(cfg, "product-editor", reg, storable.WithLogger(quietLogger))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if ed.Panel.TopToolbar() == nil || ed.Panel.TopToolbar().Component("save") != ed.Controller.SaveButton() {
		t.Error("save button not placed in tbar")
	}
	if ed.Panel.BottomToolbar() != nil {
		t.Error("bbar created without a button for it")
	}
	if len(ed.Panel.Buttons()) != 1 || ed.Panel.Buttons()[0] != ed.Controller.CancelButton() {
		t.Error("cancel button not placed in buttons")
	}
	if ed.Fields.Parent() != ui.Component(ed.Panel) {
		t.Error("fields panel not nested in the editor")
	}
	if ed.Controller.Name() != "product-editor" {
		t.Errorf("Name() = %q", ed.Controller.Name())
	}
	if ed.Controller.Collection() == nil {
		t.Error("controller not bound")
	}
}

func TestBuildErrors(t *testing.T) {
	cfg := productsConfig()
	reg := collection.NewRegistry()

	if _, err := Build(cfg, "missing", reg); !serrors.HasCode(err, "S007") {
		t.Errorf("Build(missing) error = %v, want S007", err)
	}
	if _, err := Build(cfg, "product-editor", reg); !serrors.HasCode(err, "S004") {
		t.Errorf("Build(unregistered collection) error = %v, want S004", err)
	}

	cfg.Editors[0].SaveButton = "nowhere"
	if _, err := Build(cfg, "product-editor", NewRegistry(cfg, proxy.NewMemory())); !serrors.HasCode(err, "S002") {
		t.Errorf("Build(bad path) error = %v, want S002", err)
	}
}

func TestBuildSavesThroughProxy(t *testing.T) {
	cfg := productsConfig()
	p := proxy.NewMemory()
	reg := NewRegistry(cfg, p,
		collection.WithExecutor(collection.Synchronous),
		collection.WithLogger(quietLogger),
	)
	notes := &toast.Recorder{}

	ed, err := Build(cfg, "product-editor", reg,
		storable.WithLogger(quietLogger),
		storable.WithNotifier(notes),
	)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	var saved int
	ed.Panel.On(storable.EventSave, func(args ...any) bool {
		saved++
		return true
	})

	ed.Controller.Reset(nil)
	ed.Form.SetValue("name", "W")
	ed.Controller.SaveButton().Click()
	if saved != 0 || len(notes.Messages()) != 1 {
		t.Fatalf("invalid save: saved %d notes %v", saved, notes.Messages())
	}

	ed.Form.SetValue("name", "Widget")
	ed.Form.SetValue("price", 12.5)
	ed.Controller.SaveButton().Click()
	if saved != 1 {
		t.Fatalf("saved = %d, want 1", saved)
	}

	stored, err := p.Backend().Read(context.Background(), "products")
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 || stored[0].Data["name"] != "Widget" || stored[0].Data["price"] != 12.5 {
		t.Errorf("backend = %+v", stored)
	}
	if ed.Panel.Masked() {
		t.Error("mask left on after save")
	}
}
