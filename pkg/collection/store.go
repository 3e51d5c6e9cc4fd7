package collection

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/vango-dev/storable/pkg/record"
)

// StoreConfig configures a Store.
type StoreConfig struct {
	// AutoSave persists every add, remove and finished edit immediately.
	AutoSave bool

	// Execute runs proxy calls. Default: a new goroutine per batch.
	Execute func(func())

	// Dispatch delivers completion signals. Default: run inline on the
	// executor's goroutine.
	Dispatch func(func())

	// Context is used for saves triggered by auto-save.
	Context context.Context

	// Logger receives store diagnostics. Default: slog.Default().
	Logger *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*StoreConfig)

// WithAutoSave enables or disables auto-save.
func WithAutoSave(enabled bool) StoreOption {
	return func(c *StoreConfig) {
		c.AutoSave = enabled
	}
}

// WithExecutor sets how proxy calls are run.
func WithExecutor(execute func(func())) StoreOption {
	return func(c *StoreConfig) {
		c.Execute = execute
	}
}

// WithDispatcher sets how completion signals are delivered.
func WithDispatcher(dispatch func(func())) StoreOption {
	return func(c *StoreConfig) {
		c.Dispatch = dispatch
	}
}

// WithContext sets the context used by auto-save.
func WithContext(ctx context.Context) StoreOption {
	return func(c *StoreConfig) {
		c.Context = ctx
	}
}

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(c *StoreConfig) {
		c.Logger = logger
	}
}

// Synchronous runs fn inline. Passing it as both executor and dispatcher
// makes Save complete before it returns, which is what tests want.
func Synchronous(fn func()) { fn() }

func defaultStoreConfig() StoreConfig {
	return StoreConfig{
		Execute:  func(fn func()) { go fn() },
		Dispatch: Synchronous,
		Context:  context.Background(),
		Logger:   slog.Default(),
	}
}

// Store is a remote-backed, ordered set of records.
type Store struct {
	id     string
	typ    *record.Type
	proxy  Proxy
	config StoreConfig
	logger *slog.Logger

	mu       sync.Mutex
	records  []*record.Record
	removed  []*record.Record
	inFlight map[*record.Record]bool

	beforeWrite signal[BeforeWriteFunc]
	write       signal[WriteFunc]
	exception   signal[ExceptionFunc]
}

var _ Collection = (*Store)(nil)

// NewStore creates a store for records of typ persisted through proxy.
func NewStore(id string, typ *record.Type, proxy Proxy, opts ...StoreOption) *Store {
	config := defaultStoreConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Context == nil {
		config.Context = context.Background()
	}
	return &Store{
		id:       id,
		typ:      typ,
		proxy:    proxy,
		config:   config,
		logger:   config.Logger.With("collection", id),
		inFlight: make(map[*record.Record]bool),
	}
}

// ID returns the collection identifier.
func (s *Store) ID() string { return s.id }

// RecordType returns the constructor for new records.
func (s *Store) RecordType() *record.Type { return s.typ }

// AutoSave reports whether the store persists changes immediately.
func (s *Store) AutoSave() bool { return s.config.AutoSave }

// Proxy returns the proxy the store persists through.
func (s *Store) Proxy() Proxy { return s.proxy }

// OnBeforeWrite subscribes to the before-write signal.
func (s *Store) OnBeforeWrite(fn BeforeWriteFunc) func() { return s.beforeWrite.add(fn) }

// OnWrite subscribes to the write signal.
func (s *Store) OnWrite(fn WriteFunc) func() { return s.write.add(fn) }

// OnException subscribes to the exception signal.
func (s *Store) OnException(fn ExceptionFunc) func() { return s.exception.add(fn) }

// ListenerCount returns the number of subscribed listeners across all signals.
func (s *Store) ListenerCount() int {
	return s.beforeWrite.len() + s.write.len() + s.exception.len()
}

// Records returns the records in order.
func (s *Store) Records() []*record.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.records)
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Contains reports whether r belongs to the store.
func (s *Store) Contains(r *record.Record) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.records, r)
}

// Find returns the record with the given ID.
func (s *Store) Find(id string) (*record.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.ID() == id {
			return r, true
		}
	}
	return nil, false
}

// ModifiedRecords returns phantom and dirty records.
func (s *Store) ModifiedRecords() []*record.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*record.Record
	for _, r := range s.records {
		if r.Phantom() || r.Dirty() {
			out = append(out, r)
		}
	}
	return out
}

// Add appends records. Records already in the store are ignored.
func (s *Store) Add(records ...*record.Record) {
	s.mu.Lock()
	added := 0
	for _, r := range records {
		if r == nil || slices.Contains(s.records, r) {
			continue
		}
		r.Join(s)
		s.records = append(s.records, r)
		added++
	}
	s.mu.Unlock()

	if added > 0 && s.config.AutoSave {
		s.autoSave()
	}
}

// Remove takes a record out of the store. Persisted records are destroyed
// on the next save.
func (s *Store) Remove(r *record.Record) {
	s.mu.Lock()
	i := slices.Index(s.records, r)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.records = slices.Delete(s.records, i, i+1)
	r.Unjoin(s)
	if !r.Phantom() {
		s.removed = append(s.removed, r)
	}
	s.mu.Unlock()

	if s.config.AutoSave {
		s.autoSave()
	}
}

// AfterEdit implements record.Observer.
func (s *Store) AfterEdit(r *record.Record) {
	if s.config.AutoSave {
		s.autoSave()
	}
}

func (s *Store) autoSave() {
	if err := s.Save(s.config.Context); err != nil {
		s.logger.Warn("auto-save failed", "error", err)
	}
}

// Load replaces the store's records with the backend's. It blocks until the
// proxy answers.
func (s *Store) Load(ctx context.Context) error {
	if s.proxy == nil {
		return ErrNoProxy
	}
	resp, err := s.proxy.Do(ctx, Request{Action: ActionRead, Collection: s.id})
	if err != nil {
		return fmt.Errorf("load %s: %w", s.id, err)
	}
	if !resp.Success {
		return fmt.Errorf("load %s: %s", s.id, resp.Message)
	}

	loaded := make([]*record.Record, 0, len(resp.Records))
	for _, p := range resp.Records {
		r := s.typ.Load(p.ID, p.Data)
		r.Join(s)
		loaded = append(loaded, r)
	}

	s.mu.Lock()
	for _, r := range s.records {
		r.Unjoin(s)
	}
	s.records = loaded
	s.removed = nil
	s.mu.Unlock()

	s.logger.Debug("collection loaded", "records", len(loaded))
	return nil
}

type batch struct {
	action  Action
	records []*record.Record
}

// pendingLocked groups unsaved work. Records with a write in flight are
// left for a later save.
func (s *Store) pendingLocked() []batch {
	var create, update []*record.Record
	for _, r := range s.records {
		if s.inFlight[r] {
			continue
		}
		switch {
		case r.Phantom():
			create = append(create, r)
		case r.Dirty():
			update = append(update, r)
		}
	}
	var destroy []*record.Record
	for _, r := range s.removed {
		if !s.inFlight[r] {
			destroy = append(destroy, r)
		}
	}

	var out []batch
	if len(create) > 0 {
		out = append(out, batch{action: ActionCreate, records: create})
	}
	if len(update) > 0 {
		out = append(out, batch{action: ActionUpdate, records: update})
	}
	if len(destroy) > 0 {
		out = append(out, batch{action: ActionDestroy, records: destroy})
	}
	return out
}

// Save sends every pending batch. It returns once the batches are handed to
// the executor; results arrive as write or exception signals.
func (s *Store) Save(ctx context.Context) error {
	if s.proxy == nil {
		return ErrNoProxy
	}
	s.mu.Lock()
	batches := s.pendingLocked()
	s.mu.Unlock()

	for _, b := range batches {
		s.send(ctx, b)
	}
	return nil
}

func (s *Store) send(ctx context.Context, b batch) {
	for _, fn := range s.beforeWrite.list() {
		if !fn(s.proxy, b.action, b.records) {
			s.logger.Debug("write vetoed", "action", b.action, "records", len(b.records))
			return
		}
	}

	req := Request{Action: b.action, Collection: s.id}
	for _, r := range b.records {
		req.Records = append(req.Records, r.Payload())
	}

	s.mu.Lock()
	for _, r := range b.records {
		s.inFlight[r] = true
	}
	s.mu.Unlock()

	s.logger.Debug("write dispatched", "action", b.action, "records", len(b.records), "proxy", s.proxy.Name())
	s.config.Execute(func() {
		resp, err := s.proxy.Do(ctx, req)
		s.config.Dispatch(func() {
			s.complete(req, b.records, resp, err)
		})
	})
}

func (s *Store) complete(req Request, records []*record.Record, resp *Response, err error) {
	s.mu.Lock()
	for _, r := range records {
		delete(s.inFlight, r)
	}
	s.mu.Unlock()

	if err != nil || resp == nil || !resp.Success {
		ev := ExceptionEvent{
			Proxy:    s.proxy,
			Type:     ExceptionRemote,
			Action:   req.Action,
			Request:  req,
			Response: resp,
			Err:      err,
		}
		if err != nil || resp == nil {
			ev.Type = ExceptionResponse
		}
		s.logger.Error("write failed", "action", req.Action, "type", ev.Type, "error", ev.Message())
		for _, fn := range s.exception.list() {
			fn(ev)
		}
		return
	}

	s.applyResponse(req.Action, records, resp)
	ev := WriteEvent{
		Proxy:    s.proxy,
		Action:   req.Action,
		Data:     req.Records,
		Response: resp,
		Records:  records,
		Options:  req,
	}
	for _, fn := range s.write.list() {
		fn(ev)
	}
}

func (s *Store) applyResponse(action Action, records []*record.Record, resp *Response) {
	if action == ActionDestroy {
		s.mu.Lock()
		s.removed = slices.DeleteFunc(s.removed, func(r *record.Record) bool {
			return slices.Contains(records, r)
		})
		s.mu.Unlock()
		return
	}

	byClientID := make(map[string]record.Payload, len(resp.Records))
	byID := make(map[string]record.Payload, len(resp.Records))
	for _, p := range resp.Records {
		if p.ClientID != "" {
			byClientID[p.ClientID] = p
		}
		if p.ID != "" {
			byID[p.ID] = p
		}
	}
	for _, r := range records {
		p, ok := byClientID[r.ID()]
		if !ok {
			p, ok = byID[r.ID()]
		}
		if ok {
			if p.ID != "" {
				r.SetID(p.ID)
			}
			r.Merge(p.Data)
		}
		r.Commit()
	}
}
