package storable_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	serrors "github.com/vango-dev/storable/internal/errors"
	"github.com/vango-dev/storable/pkg/collection"
	"github.com/vango-dev/storable/pkg/form"
	"github.com/vango-dev/storable/pkg/proxy"
	"github.com/vango-dev/storable/pkg/record"
	"github.com/vango-dev/storable/pkg/storable"
	"github.com/vango-dev/storable/pkg/toast"
	"github.com/vango-dev/storable/pkg/ui"
)

var productType = record.NewType("product",
	record.Field{Name: "name", Default: ""},
	record.Field{Name: "price", Default: 0.0},
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// countingHost records mask transitions.
type countingHost struct {
	*ui.Panel
	masks, unmasks int
}

func (h *countingHost) Mask(msg string) {
	h.masks++
	h.Panel.Mask(msg)
}

func (h *countingHost) Unmask() {
	h.unmasks++
	h.Panel.Unmask()
}

// fakeCollection counts calls and lets tests emit signals by hand.
type fakeCollection struct {
	typ         *record.Type
	autoSave    bool
	adds, saves int
	added       []*record.Record
	beforeWrite map[int]collection.BeforeWriteFunc
	write       map[int]collection.WriteFunc
	exception   map[int]collection.ExceptionFunc
	seq         int
}

func newFakeCollection() *fakeCollection {
	return &fakeCollection{
		typ:         productType,
		beforeWrite: make(map[int]collection.BeforeWriteFunc),
		write:       make(map[int]collection.WriteFunc),
		exception:   make(map[int]collection.ExceptionFunc),
	}
}

func (f *fakeCollection) Add(records ...*record.Record) {
	f.adds++
	f.added = append(f.added, records...)
}
func (f *fakeCollection) Save(context.Context) error { f.saves++; return nil }
func (f *fakeCollection) AutoSave() bool             { return f.autoSave }
func (f *fakeCollection) RecordType() *record.Type   { return f.typ }

func (f *fakeCollection) OnBeforeWrite(fn collection.BeforeWriteFunc) func() {
	f.seq++
	id := f.seq
	f.beforeWrite[id] = fn
	return func() { delete(f.beforeWrite, id) }
}

func (f *fakeCollection) OnWrite(fn collection.WriteFunc) func() {
	f.seq++
	id := f.seq
	f.write[id] = fn
	return func() { delete(f.write, id) }
}

func (f *fakeCollection) OnException(fn collection.ExceptionFunc) func() {
	f.seq++
	id := f.seq
	f.exception[id] = fn
	return func() { delete(f.exception, id) }
}

func (f *fakeCollection) listeners() int {
	return len(f.beforeWrite) + len(f.write) + len(f.exception)
}

func (f *fakeCollection) emitBeforeWrite(action collection.Action) {
	for _, fn := range f.beforeWrite {
		fn(nil, action, nil)
	}
}

func (f *fakeCollection) emitWrite(action collection.Action) {
	for _, fn := range f.write {
		fn(collection.WriteEvent{Action: action})
	}
}

func (f *fakeCollection) emitException(action collection.Action, msg string) {
	for _, fn := range f.exception {
		fn(collection.ExceptionEvent{
			Type:     collection.ExceptionRemote,
			Action:   action,
			Response: &collection.Response{Message: msg},
		})
	}
}

type editor struct {
	host   *countingHost
	form   *form.BasicForm
	save   *ui.Button
	cancel *ui.Button
	notes  *toast.Recorder
}

func newEditor(t *testing.T) *editor {
	t.Helper()
	f, err := form.ForType(productType, form.WithRules("name", "required"))
	if err != nil {
		t.Fatalf("ForType() error = %v", err)
	}
	save := ui.NewButton("btn-save", "Save")
	cancel := ui.NewButton("btn-cancel", "Cancel")
	panel := ui.NewPanel("products-editor",
		ui.WithForm(f),
		ui.WithBottomToolbar(ui.NewToolbar(save, cancel)),
	)
	return &editor{host: &countingHost{Panel: panel}, form: f, save: save, cancel: cancel, notes: &toast.Recorder{}}
}

func (e *editor) install(t *testing.T, opts ...storable.Option) *storable.Controller {
	t.Helper()
	base := []storable.Option{
		storable.WithSaveButton("bbar.btn-save"),
		storable.WithCancelButton("bbar.btn-cancel"),
		storable.WithLogger(quietLogger),
		storable.WithNotifier(e.notes),
	}
	c, err := storable.Install(e.host, append(base, opts...)...)
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	return c
}

func countEvents(p *ui.Panel, names ...string) map[string]int {
	counts := make(map[string]int)
	for _, name := range names {
		name := name
		p.On(name, func(args ...any) bool { counts[name]++; return true })
	}
	return counts
}

func TestInstallWithoutHostOperations(t *testing.T) {
	e := newEditor(t)
	coll := newFakeCollection()
	c := e.install(t, storable.WithStore(coll))

	hooks := e.host.LifecycleHooks()
	if hooks.Reset == nil || hooks.Bind == nil || hooks.LoadRecord == nil {
		t.Fatal("Install should provide all three operations")
	}
	if got, ok := storable.ControllerOf(e.host); !ok || got != c {
		t.Error("ControllerOf should return the installed controller")
	}
	if c.Collection() != coll {
		t.Error("WithStore should bind the collection")
	}
	if coll.listeners() != 3 {
		t.Errorf("listeners = %d, want 3", coll.listeners())
	}
	for _, name := range storable.Events {
		if !e.host.Declared(name) {
			t.Errorf("event %q not declared", name)
		}
	}
	for _, name := range storable.BubblingEvents {
		if !e.host.Bubbles(name) {
			t.Errorf("event %q should bubble", name)
		}
	}
	if e.host.Bubbles(storable.EventBeforeSave) {
		t.Error("storable-beforesave should not bubble")
	}
}

func TestInstallPreservesHostOperations(t *testing.T) {
	e := newEditor(t)
	var order []string
	*e.host.LifecycleHooks() = ui.Hooks{
		LoadRecord: func(r *record.Record) bool { order = append(order, "host"); return true },
		Reset:      func(any) bool { order = append(order, "host-reset"); return true },
	}
	c := e.install(t, storable.WithStore(newFakeCollection()))

	r := productType.Load("1", map[string]any{"name": "A"})
	c.LoadRecord(r)
	if len(order) != 1 || order[0] != "host" {
		t.Errorf("host LoadRecord calls = %v, want one", order)
	}
	if c.Record() != r {
		t.Error("controller LoadRecord should run too")
	}

	// A nil record is vetoed by the controller and never reaches the host.
	order = nil
	if c.LoadRecord(nil) {
		t.Error("LoadRecord(nil) should report the veto")
	}
	if len(order) != 0 {
		t.Errorf("host called after veto: %v", order)
	}
}

func TestInstallSequencedHooks(t *testing.T) {
	e := newEditor(t)
	var sawRecord *record.Record
	c := (*storable.Controller)(nil)
	e.host.LifecycleHooks().LoadRecord = func(r *record.Record) bool {
		sawRecord = c.Record()
		return true
	}
	c = e.install(t, storable.WithStore(newFakeCollection()), storable.WithSequencedHooks())

	r := productType.Load("1", nil)
	c.LoadRecord(r)
	if sawRecord != nil {
		t.Error("host operation should run before the controller's when sequenced")
	}
	if c.Record() != r {
		t.Error("controller operation should still run")
	}
}

func TestInstallErrors(t *testing.T) {
	tests := []struct {
		name string
		opts []storable.Option
		code string
	}{
		{"missing button", []storable.Option{storable.WithSaveButton("bbar.nope")}, "S001"},
		{"malformed path", []storable.Option{storable.WithCancelButton("bbar")}, "S002"},
		{"unknown location", []storable.Option{storable.WithSaveButton("side.btn-save")}, "S003"},
		{"no resolver", []storable.Option{storable.WithStoreID("products")}, "S004"},
		{"unresolved id", []storable.Option{
			storable.WithStoreID("products"),
			storable.WithResolver(collection.NewRegistry().Resolver()),
		}, "S004"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEditor(t)
			_, err := storable.Install(e.host, append(tt.opts, storable.WithLogger(quietLogger))...)
			if !serrors.HasCode(err, tt.code) {
				t.Fatalf("Install() error = %v, want %s", err, tt.code)
			}
			if e.host.LifecycleHooks().Owner != nil || e.host.LifecycleHooks().Bind != nil {
				t.Error("failed Install should leave the host untouched")
			}
		})
	}
}

func TestInstallTwice(t *testing.T) {
	e := newEditor(t)
	e.install(t)
	if _, err := storable.Install(e.host); !errors.Is(err, storable.ErrAlreadyInstalled) {
		t.Errorf("second Install() error = %v, want ErrAlreadyInstalled", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("MustInstall should panic")
		}
	}()
	storable.MustInstall(e.host)
}

func TestInstallResolvesStoreID(t *testing.T) {
	reg := collection.NewRegistry()
	coll := newFakeCollection()
	reg.Register("products", coll)

	e := newEditor(t)
	c := e.install(t, storable.WithStoreID("products"), storable.WithResolver(reg.Resolver()))
	if c.Collection() != coll {
		t.Error("StoreID should resolve through the registry")
	}
}

func TestRebindUnsubscribes(t *testing.T) {
	e := newEditor(t)
	first, second := newFakeCollection(), newFakeCollection()
	c := e.install(t, storable.WithStore(first))
	c.LoadRecord(productType.Load("1", nil))

	c.Bind(second)
	if first.listeners() != 0 {
		t.Errorf("old collection listeners = %d, want 0", first.listeners())
	}
	if second.listeners() != 3 {
		t.Errorf("new collection listeners = %d, want 3", second.listeners())
	}
	if c.Record() != nil {
		t.Error("Bind should clear the active record")
	}

	c.Bind(second)
	if second.listeners() != 3 {
		t.Errorf("rebinding the same collection listeners = %d, want 3", second.listeners())
	}

	c.Close()
	if second.listeners() != 0 {
		t.Errorf("listeners after Close = %d, want 0", second.listeners())
	}
}

func TestSaveInvalidForm(t *testing.T) {
	e := newEditor(t)
	coll := newFakeCollection()
	c := e.install(t, storable.WithStore(coll))
	r := productType.Load("1", map[string]any{"name": "Old", "price": 1.0})
	c.LoadRecord(r)
	counts := countEvents(e.host.Panel, storable.EventInvalid, storable.EventBeforeUpdateRecord)

	e.form.SetValue("name", "")
	e.form.SetValue("price", 5.0)
	e.save.Click()

	if counts[storable.EventInvalid] != 1 || counts[storable.EventBeforeUpdateRecord] != 0 {
		t.Errorf("events = %v, want one invalid and no beforeupdaterecord", counts)
	}
	if r.Dirty() || r.Get("price") != 1.0 {
		t.Errorf("record mutated on invalid save: %v", r.Data())
	}
	if coll.adds != 0 || coll.saves != 0 {
		t.Errorf("collection calls = add %d save %d, want none", coll.adds, coll.saves)
	}
	if e.host.masks != 0 {
		t.Error("mask asserted for an invalid form")
	}
	msgs := e.notes.Messages()
	if len(msgs) != 1 || msgs[0].Message != storable.MessageFormInvalid {
		t.Errorf("notifications = %v, want form-invalid", msgs)
	}
}

func TestSaveNewRecord(t *testing.T) {
	e := newEditor(t)
	coll := newFakeCollection()
	c := e.install(t, storable.WithStore(coll))
	c.Reset(nil)
	counts := countEvents(e.host.Panel, storable.EventCancel, storable.EventBeforeUpdateRecord)

	e.form.SetValue("name", "Widget")
	e.save.Click()

	if coll.adds != 1 || len(coll.added) != 1 || coll.added[0] != c.Record() {
		t.Errorf("adds = %d, want the active record added once", coll.adds)
	}
	if coll.saves != 1 {
		t.Errorf("saves = %d, want 1", coll.saves)
	}
	if counts[storable.EventCancel] != 0 {
		t.Error("new record save should not cancel")
	}
	if counts[storable.EventBeforeUpdateRecord] != 1 {
		t.Errorf("beforeupdaterecord fired %d times, want 1", counts[storable.EventBeforeUpdateRecord])
	}
	if got := c.Record().Get("name"); got != "Widget" {
		t.Errorf("record name = %v, want Widget", got)
	}
	if !c.Saving() || c.SaveTrigger() != e.save {
		t.Error("save button should be recorded as the in-flight marker")
	}
}

func TestSaveAutoSaveCollection(t *testing.T) {
	e := newEditor(t)
	coll := newFakeCollection()
	coll.autoSave = true
	c := e.install(t, storable.WithStore(coll))
	c.Reset(nil)
	e.form.SetValue("name", "Widget")
	e.save.Click()

	if coll.adds != 1 || coll.saves != 0 {
		t.Errorf("add %d save %d, want add without explicit save", coll.adds, coll.saves)
	}
}

func TestSaveUnchangedRecordCancels(t *testing.T) {
	e := newEditor(t)
	coll := newFakeCollection()
	c := e.install(t, storable.WithStore(coll))
	c.LoadRecord(productType.Load("1", map[string]any{"name": "Same", "price": 2.0}))
	counts := countEvents(e.host.Panel, storable.EventCancel)

	e.save.Click()

	if counts[storable.EventCancel] != 1 {
		t.Errorf("cancel fired %d times, want 1", counts[storable.EventCancel])
	}
	if coll.adds != 0 || coll.saves != 0 {
		t.Errorf("add %d save %d, want no collection calls", coll.adds, coll.saves)
	}
}

func TestSaveChangedRecord(t *testing.T) {
	e := newEditor(t)
	coll := newFakeCollection()
	c := e.install(t, storable.WithStore(coll))
	r := productType.Load("1", map[string]any{"name": "Old", "price": 2.0})
	c.LoadRecord(r)

	e.form.SetValue("name", "New")
	e.save.Click()

	if coll.adds != 0 || coll.saves != 1 {
		t.Errorf("add %d save %d, want save only", coll.adds, coll.saves)
	}
	if !r.Dirty() {
		t.Error("record should carry the edit until the write commits")
	}
}

func TestSaveWithoutRecordCreatesOne(t *testing.T) {
	e := newEditor(t)
	coll := newFakeCollection()
	c := e.install(t, storable.WithStore(coll))
	e.form.SetValue("name", "Direct")
	if !c.Save() {
		t.Fatal("Save() = false")
	}
	if c.Record() == nil || !c.Record().Phantom() || coll.adds != 1 {
		t.Error("save without an active record should add a new record")
	}
}

func TestSaveWithoutCollectionOrForm(t *testing.T) {
	e := newEditor(t)
	c := e.install(t)
	e.form.SetValue("name", "x")
	if c.OnSave(nil) {
		t.Error("OnSave without a collection should fail")
	}
	if c.Saving() {
		t.Error("aborted save should not stay in flight")
	}

	bare := ui.NewPanel("bare")
	c2, err := storable.Install(bare, storable.WithStore(newFakeCollection()), storable.WithLogger(quietLogger))
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if c2.OnSave(nil) {
		t.Error("OnSave without a form should fail")
	}
}

func TestCancel(t *testing.T) {
	e := newEditor(t)
	c := e.install(t)
	parent := ui.NewPanel("window", ui.WithItems(e.host.Panel))
	got := 0
	parent.On(storable.EventCancel, func(args ...any) bool { got++; return true })

	r := productType.Load("1", map[string]any{"name": "x"})
	c.LoadRecord(r)
	e.form.SetValue("name", "changed")
	e.cancel.Click()

	if got != 1 {
		t.Errorf("ancestor received %d cancels, want 1", got)
	}
	if r.Dirty() {
		t.Error("cancel should not mutate the record")
	}
}

func TestMaskOnWrite(t *testing.T) {
	e := newEditor(t)
	coll := newFakeCollection()
	c := e.install(t, storable.WithStore(coll))
	parent := ui.NewPanel("window", ui.WithItems(e.host.Panel))
	saves := 0
	parent.On(storable.EventSave, func(args ...any) bool {
		saves++
		if _, ok := args[1].(collection.WriteEvent); !ok {
			t.Errorf("save args[1] = %T, want collection.WriteEvent", args[1])
		}
		return true
	})
	c.Reset(nil)
	e.form.SetValue("name", "Widget")
	e.save.Click()

	coll.emitBeforeWrite(collection.ActionCreate)
	if e.host.masks != 1 || !e.host.Masked() || e.host.MaskMessage() != storable.DefaultMaskMessage {
		t.Fatalf("masks = %d, masked %v; want one mask", e.host.masks, e.host.Masked())
	}
	coll.emitBeforeWrite(collection.ActionUpdate)
	if e.host.masks != 1 {
		t.Errorf("masks = %d, want the mask asserted once", e.host.masks)
	}

	coll.emitWrite(collection.ActionCreate)
	if e.host.unmasks != 1 || e.host.Masked() {
		t.Errorf("unmasks = %d, want 1", e.host.unmasks)
	}
	if saves != 1 {
		t.Errorf("ancestor received %d saves, want 1", saves)
	}
}

func TestMaskOnException(t *testing.T) {
	e := newEditor(t)
	coll := newFakeCollection()
	c := e.install(t, storable.WithStore(coll))
	exceptions := countEvents(e.host.Panel, storable.EventException)
	c.Reset(nil)
	e.form.SetValue("name", "Widget")
	e.save.Click()

	coll.emitBeforeWrite(collection.ActionCreate)
	coll.emitException(collection.ActionCreate, "backend down")

	if e.host.masks != 1 || e.host.unmasks != 1 || e.host.Masked() {
		t.Errorf("masks %d unmasks %d masked %v, want a cleared mask", e.host.masks, e.host.unmasks, e.host.Masked())
	}
	if exceptions[storable.EventException] != 1 {
		t.Error("exception event should fire")
	}
	msgs := e.notes.Messages()
	if len(msgs) != 1 || msgs[0].Level != toast.TypeError || msgs[0].Message != "create failure: backend down" {
		t.Errorf("notifications = %v", msgs)
	}
	if c.Record().Get("name") != "Widget" {
		t.Error("record should not be rolled back after an exception")
	}
}

func TestSignalsIgnoredWithoutSaveInFlight(t *testing.T) {
	e := newEditor(t)
	coll := newFakeCollection()
	c := e.install(t, storable.WithStore(coll))
	c.LoadRecord(productType.Load("1", nil))
	counts := countEvents(e.host.Panel, storable.EventBeforeSave, storable.EventSave)

	coll.emitBeforeWrite(collection.ActionUpdate)
	coll.emitWrite(collection.ActionUpdate)
	coll.emitException(collection.ActionUpdate, "x")

	if e.host.masks != 0 || counts[storable.EventBeforeSave] != 0 || counts[storable.EventSave] != 0 {
		t.Errorf("signals handled without a save in flight: masks %d events %v", e.host.masks, counts)
	}
	if len(e.notes.Messages()) != 0 {
		t.Error("no notification expected")
	}
}

func TestSignalsIgnoredWhenHidden(t *testing.T) {
	e := newEditor(t)
	coll := newFakeCollection()
	c := e.install(t, storable.WithStore(coll))
	c.Reset(nil)
	e.form.SetValue("name", "Widget")
	e.save.Click()
	e.host.SetHidden(true)

	coll.emitBeforeWrite(collection.ActionCreate)
	if e.host.masks != 0 {
		t.Error("hidden host should not be masked")
	}
}

func TestDestroyWritesDoNotMask(t *testing.T) {
	e := newEditor(t)
	coll := newFakeCollection()
	c := e.install(t, storable.WithStore(coll))
	counts := countEvents(e.host.Panel, storable.EventBeforeSave, storable.EventSave)
	c.Reset(nil)
	e.form.SetValue("name", "Widget")
	e.save.Click()

	coll.emitBeforeWrite(collection.ActionDestroy)
	coll.emitWrite(collection.ActionDestroy)

	if e.host.masks != 0 || e.host.unmasks != 0 {
		t.Errorf("destroy masks %d unmasks %d, want none", e.host.masks, e.host.unmasks)
	}
	if counts[storable.EventBeforeSave] != 1 || counts[storable.EventSave] != 0 {
		t.Errorf("events = %v, want beforesave only", counts)
	}
}

func TestBeforeSaveVetoSuppressesMask(t *testing.T) {
	e := newEditor(t)
	coll := newFakeCollection()
	c := e.install(t, storable.WithStore(coll))
	e.host.On(storable.EventBeforeSave, func(args ...any) bool { return false })
	c.Reset(nil)
	e.form.SetValue("name", "Widget")
	e.save.Click()

	coll.emitBeforeWrite(collection.ActionCreate)
	if e.host.masks != 0 {
		t.Error("vetoed beforesave should not mask")
	}
}

func TestMaskDisabled(t *testing.T) {
	e := newEditor(t)
	coll := newFakeCollection()
	c := e.install(t, storable.WithStore(coll), storable.WithMask(false))
	counts := countEvents(e.host.Panel, storable.EventSave)
	c.Reset(nil)
	e.form.SetValue("name", "Widget")
	e.save.Click()

	coll.emitBeforeWrite(collection.ActionCreate)
	coll.emitWrite(collection.ActionCreate)
	if e.host.masks != 0 || e.host.unmasks != 0 {
		t.Error("WithMask(false) should disable masking")
	}
	if counts[storable.EventSave] != 1 {
		t.Error("events should still fire with masking disabled")
	}
}

// lifecyclePanel builds a panel with its own LoadRecord and Reset that record
// what they receive.
func lifecyclePanel(id string, loaded *[]string, items ...ui.Component) *ui.Panel {
	return ui.NewPanel(id, ui.WithItems(items...), ui.WithHooks(ui.Hooks{
		LoadRecord: func(r *record.Record) bool { *loaded = append(*loaded, id); return true },
		Reset:      func(any) bool { *loaded = append(*loaded, "reset:"+id); return true },
	}))
}

func TestLoadRecordReachesDeepTree(t *testing.T) {
	var calls []string
	deepForm := form.MustNew(form.WithField("name", ""))
	midForm := form.MustNew(form.WithField("price", 0.0))

	level3 := ui.NewPanel("level3", ui.WithForm(deepForm))
	plain := ui.NewPanel("plain", ui.WithItems(level3))
	level2 := lifecyclePanel("level2", &calls, plain)
	both := ui.NewPanel("both", ui.WithForm(midForm), ui.WithHooks(ui.Hooks{
		LoadRecord: func(r *record.Record) bool { calls = append(calls, "both"); return true },
	}))
	level1 := ui.NewPanel("level1", ui.WithItems(level2, both))
	root := ui.NewPanel("root", ui.WithItems(level1))

	c, err := storable.Install(root, storable.WithStore(newFakeCollection()), storable.WithLogger(quietLogger))
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	r := productType.Load("7", map[string]any{"name": "Deep", "price": 3.5})
	c.LoadRecord(r)

	if len(calls) != 2 || calls[0] != "level2" || calls[1] != "both" {
		t.Errorf("lifecycle calls = %v, want [level2 both]", calls)
	}
	if got := deepForm.Value("name"); got != "Deep" {
		t.Errorf("deep form name = %v, want Deep", got)
	}
	if got := midForm.Value("price"); got != 3.5 {
		t.Errorf("mid form price = %v, want 3.5", got)
	}
	if c.Record() != r {
		t.Error("active record should be r")
	}

	calls = nil
	deepForm.SetValue("name", "typed")
	c.Reset("params")
	if len(calls) != 1 || calls[0] != "reset:level2" {
		t.Errorf("reset calls = %v, want [reset:level2]", calls)
	}
	if got := deepForm.Value("name"); got != "" {
		t.Errorf("deep form after reset = %v, want empty", got)
	}
}

func TestResetThenLoadRecord(t *testing.T) {
	e := newEditor(t)
	c := e.install(t, storable.WithStore(newFakeCollection()))

	c.Reset(nil)
	fresh := c.Record()
	if fresh == nil || !fresh.Phantom() || !fresh.Editing() {
		t.Fatal("Reset should open a new record in an edit")
	}

	r := productType.Load("1", map[string]any{"name": "Loaded"})
	c.LoadRecord(r)
	if c.Record() != r {
		t.Error("LoadRecord after Reset should leave r active")
	}
	if got := e.form.Value("name"); got != "Loaded" {
		t.Errorf("host form name = %v, want Loaded", got)
	}
}

func TestLoadRecordClearsSaveMarker(t *testing.T) {
	e := newEditor(t)
	coll := newFakeCollection()
	c := e.install(t, storable.WithStore(coll))
	c.Reset(nil)
	e.form.SetValue("name", "Widget")
	e.save.Click()
	if !c.Saving() {
		t.Fatal("save should be in flight")
	}

	c.LoadRecord(productType.Load("2", nil))
	if c.Saving() {
		t.Error("LoadRecord should clear the save marker")
	}
	coll.emitBeforeWrite(collection.ActionCreate)
	if e.host.masks != 0 {
		t.Error("writes after LoadRecord should not mask")
	}
}

func TestProgrammaticSaveIsNotTracked(t *testing.T) {
	e := newEditor(t)
	coll := newFakeCollection()
	c := e.install(t, storable.WithStore(coll))
	counts := countEvents(e.host.Panel, storable.EventBeforeSave, storable.EventSave, storable.EventException)
	c.Reset(nil)
	e.form.SetValue("name", "Widget")

	if !c.OnSave(nil) {
		t.Fatal("OnSave(nil) = false, want the record handed to the collection")
	}
	if coll.adds != 1 || coll.saves != 1 {
		t.Errorf("add %d save %d, want the record persisted", coll.adds, coll.saves)
	}
	if c.Saving() {
		t.Error("a save without a button should not set the marker")
	}

	coll.emitBeforeWrite(collection.ActionCreate)
	coll.emitWrite(collection.ActionCreate)
	coll.emitException(collection.ActionCreate, "down")

	if e.host.masks != 0 || e.host.Masked() {
		t.Errorf("masks = %d masked %v, want no mask", e.host.masks, e.host.Masked())
	}
	for _, name := range []string{storable.EventBeforeSave, storable.EventSave, storable.EventException} {
		if counts[name] != 0 {
			t.Errorf("%s fired %d times, want 0", name, counts[name])
		}
	}
	if len(e.notes.Messages()) != 0 {
		t.Errorf("notifications = %v, want none", e.notes.Messages())
	}
}

func TestBeforeSaveCarriesAction(t *testing.T) {
	e := newEditor(t)
	coll := newFakeCollection()
	c := e.install(t, storable.WithStore(coll))
	var got []collection.Action
	e.host.On(storable.EventBeforeSave, func(args ...any) bool {
		if a, ok := ui.Arg[collection.Action](args, 1); ok {
			got = append(got, a)
		}
		return true
	})
	c.Reset(nil)
	e.form.SetValue("name", "Widget")
	e.save.Click()

	coll.emitBeforeWrite(collection.ActionCreate)
	coll.emitBeforeWrite(collection.ActionDestroy)
	if len(got) != 2 || got[0] != collection.ActionCreate || got[1] != collection.ActionDestroy {
		t.Errorf("beforesave actions = %v, want [create destroy]", got)
	}
}

func TestMaskLiftedWhenMarkerDropped(t *testing.T) {
	tests := []struct {
		name     string
		drop     func(c *storable.Controller)
		terminal func(coll *fakeCollection)
	}{
		{
			name:     "load record then write",
			drop:     func(c *storable.Controller) { c.LoadRecord(productType.Load("2", nil)) },
			terminal: func(coll *fakeCollection) { coll.emitWrite(collection.ActionCreate) },
		},
		{
			name:     "load record then exception",
			drop:     func(c *storable.Controller) { c.LoadRecord(productType.Load("2", nil)) },
			terminal: func(coll *fakeCollection) { coll.emitException(collection.ActionCreate, "down") },
		},
		{
			name:     "reset then write",
			drop:     func(c *storable.Controller) { c.Reset(nil) },
			terminal: func(coll *fakeCollection) { coll.emitWrite(collection.ActionCreate) },
		},
		{
			name:     "reset then exception",
			drop:     func(c *storable.Controller) { c.Reset(nil) },
			terminal: func(coll *fakeCollection) { coll.emitException(collection.ActionCreate, "down") },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEditor(t)
			coll := newFakeCollection()
			c := e.install(t, storable.WithStore(coll))
			counts := countEvents(e.host.Panel, storable.EventSave, storable.EventException)
			c.Reset(nil)
			e.form.SetValue("name", "Widget")
			e.save.Click()
			coll.emitBeforeWrite(collection.ActionCreate)
			if !c.Masked() {
				t.Fatal("save should mask the host")
			}

			tt.drop(c)
			tt.terminal(coll)

			if c.Masked() || e.host.Masked() || e.host.unmasks != 1 {
				t.Errorf("masked %v host %v unmasks %d, want the mask lifted once",
					c.Masked(), e.host.Masked(), e.host.unmasks)
			}
			if counts[storable.EventSave] != 0 || counts[storable.EventException] != 0 {
				t.Errorf("events = %v, want none once the marker is dropped", counts)
			}
		})
	}
}

func TestInvalidSecondSaveKeepsMarker(t *testing.T) {
	e := newEditor(t)
	coll := newFakeCollection()
	c := e.install(t, storable.WithStore(coll))
	counts := countEvents(e.host.Panel, storable.EventInvalid, storable.EventException)
	c.Reset(nil)
	e.form.SetValue("name", "Widget")
	e.save.Click()
	coll.emitBeforeWrite(collection.ActionCreate)

	e.form.SetValue("name", "")
	e.save.Click()
	if counts[storable.EventInvalid] != 1 {
		t.Fatalf("invalid fired %d times, want 1", counts[storable.EventInvalid])
	}
	if !c.Saving() || c.SaveTrigger() != e.save {
		t.Error("a rejected save should leave the in-flight marker alone")
	}

	coll.emitException(collection.ActionCreate, "down")
	if c.Masked() || e.host.Masked() {
		t.Error("exception should lift the mask")
	}
	if counts[storable.EventException] != 1 {
		t.Errorf("exception fired %d times, want 1", counts[storable.EventException])
	}
}

func TestRoundTripThroughStore(t *testing.T) {
	e := newEditor(t)
	p := proxy.NewMemory()
	store := collection.NewStore("products", productType, p,
		collection.WithExecutor(collection.Synchronous),
		collection.WithLogger(quietLogger),
	)
	c := e.install(t, storable.WithStore(store))
	parent := ui.NewPanel("window", ui.WithItems(e.host.Panel))
	var saved []collection.WriteEvent
	parent.On(storable.EventSave, func(args ...any) bool {
		saved = append(saved, args[1].(collection.WriteEvent))
		return true
	})

	c.Reset(nil)
	e.form.SetValue("name", "Widget")
	e.form.SetValue("price", 4.0)
	e.save.Click()

	if len(saved) != 1 || saved[0].Action != collection.ActionCreate {
		t.Fatalf("saves = %v, want one create", saved)
	}
	r := c.Record()
	if r.Phantom() || r.Dirty() || r.ID() == "" {
		t.Errorf("record after create: phantom %v dirty %v id %q", r.Phantom(), r.Dirty(), r.ID())
	}
	if e.host.masks != 1 || e.host.unmasks != 1 {
		t.Errorf("masks %d unmasks %d, want 1/1", e.host.masks, e.host.unmasks)
	}

	c.LoadRecord(r)
	e.form.SetValue("price", 5.0)
	p.FailNext(errors.New("network down"))
	e.save.Click()
	if e.host.Masked() {
		t.Error("mask left on after exception")
	}
	msgs := e.notes.Messages()
	if len(msgs) != 1 || msgs[0].Message != "update failure: network down" {
		t.Errorf("notifications = %v", msgs)
	}

	e.save.Click()
	if len(saved) != 2 || saved[1].Action != collection.ActionUpdate {
		t.Errorf("retry saves = %d, want an update", len(saved))
	}
	if r.Dirty() || r.Get("price") != 5.0 {
		t.Errorf("record after retry: dirty %v price %v", r.Dirty(), r.Get("price"))
	}
}
