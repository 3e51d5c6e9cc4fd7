package editor

import (
	"github.com/vango-dev/storable/internal/config"
	serrors "github.com/vango-dev/storable/internal/errors"
	"github.com/vango-dev/storable/pkg/collection"
	"github.com/vango-dev/storable/pkg/form"
	"github.com/vango-dev/storable/pkg/record"
	"github.com/vango-dev/storable/pkg/storable"
	"github.com/vango-dev/storable/pkg/ui"
)

// Editor is a built editor panel with its form and controller.
type Editor struct {
	Panel      *ui.Panel
	Fields     *ui.Panel
	Form       *form.BasicForm
	Controller *storable.Controller
}

// RecordType derives the record type of a collection.
func RecordType(coll config.CollectionConfig) *record.Type {
	fields := make([]record.Field, len(coll.Fields))
	for i, f := range coll.Fields {
		fields[i] = record.Field{Name: f.Name, Default: f.Default}
	}
	return record.NewType(coll.ID, fields...)
}

// NewForm builds a form for a collection: one field per record field, rule
// strings, expr rules and CEL constraints.
func NewForm(coll config.CollectionConfig) (*form.BasicForm, error) {
	var opts []form.Option
	for _, f := range coll.Fields {
		if f.Rules != "" {
			opts = append(opts, form.WithRules(f.Name, f.Rules))
		}
	}
	for _, c := range coll.Constraints {
		opts = append(opts, form.WithConstraint(c.Expr, c.Message))
	}

	f, err := form.ForType(RecordType(coll), opts...)
	if err != nil {
		return nil, serrors.New("S021").WithDetailf("collection %q", coll.ID).Wrap(err)
	}

	for _, fc := range coll.Fields {
		if fc.Expr == "" {
			continue
		}
		v, err := form.Expr(fc.Expr, fc.Message)
		if err != nil {
			return nil, err
		}
		f.AddValidators(fc.Name, v)
	}
	return f, nil
}

// NewRegistry creates one store per configured collection, all persisting
// through proxy.
func NewRegistry(cfg *config.Config, proxy collection.Proxy, opts ...collection.StoreOption) *collection.Registry {
	reg := collection.NewRegistry()
	for _, coll := range cfg.Collections {
		storeOpts := append([]collection.StoreOption{collection.WithAutoSave(coll.AutoSave)}, opts...)
		reg.Register(coll.ID, collection.NewStore(coll.ID, RecordType(coll), proxy, storeOpts...))
	}
	return reg
}

// Build assembles the editor named id and installs a controller bound to its
// collection in reg. Extra controller options are applied last.
func Build(cfg *config.Config, id string, reg *collection.Registry, opts ...storable.Option) (*Editor, error) {
	ed, ok := cfg.Editor(id)
	if !ok {
		return nil, serrors.New("S007").WithDetailf("no editor %q", id)
	}
	coll, ok := cfg.Collection(ed.Collection)
	if !ok {
		return nil, serrors.New("S004").WithDetailf("%q", ed.Collection)
	}

	f, err := NewForm(coll)
	if err != nil {
		return nil, err
	}

	panel, fields, err := newPanel(ed, f)
	if err != nil {
		return nil, err
	}

	all := []storable.Option{
		storable.WithSaveButton(ed.SaveButton),
		storable.WithCancelButton(ed.CancelButton),
		storable.WithStoreID(ed.Collection),
		storable.WithResolver(reg.Resolver()),
		storable.WithMask(ed.MaskEnabled()),
		storable.WithName(ed.ID),
	}
	if ed.MaskMessage != "" {
		all = append(all, storable.WithMaskMessage(ed.MaskMessage))
	}
	all = append(all, opts...)

	ctrl, err := storable.Install(panel, all...)
	if err != nil {
		return nil, err
	}
	return &Editor{Panel: panel, Fields: fields, Form: f, Controller: ctrl}, nil
}

// newPanel lays out the editor: the form lives in a nested fields panel and
// each button is placed where its path points.
func newPanel(ed config.EditorConfig, f *form.BasicForm) (*ui.Panel, *ui.Panel, error) {
	save, err := storable.ParseButtonPath(ed.SaveButton)
	if err != nil {
		return nil, nil, err
	}
	cancel, err := storable.ParseButtonPath(ed.CancelButton)
	if err != nil {
		return nil, nil, err
	}

	var (
		tbar, bbar *ui.Toolbar
		buttons    []*ui.Button
	)
	place := func(p storable.ButtonPath, text string) {
		b := ui.NewButton(p.ItemID, text)
		switch p.Location {
		case storable.LocationTopToolbar:
			if tbar == nil {
				tbar = ui.NewToolbar()
			}
			tbar.Add(b)
		case storable.LocationBottomToolbar:
			if bbar == nil {
				bbar = ui.NewToolbar()
			}
			bbar.Add(b)
		case storable.LocationButtons:
			buttons = append(buttons, b)
		}
	}
	place(save, "Save")
	place(cancel, "Cancel")

	fields := ui.NewPanel(ed.ID+"-fields", ui.WithForm(f))
	opts := []ui.PanelOption{ui.WithItems(fields), ui.WithButtons(buttons...)}
	if tbar != nil {
		opts = append(opts, ui.WithTopToolbar(tbar))
	}
	if bbar != nil {
		opts = append(opts, ui.WithBottomToolbar(bbar))
	}
	return ui.NewPanel(ed.ID, opts...), fields, nil
}
