package collection

import (
	"context"
	"errors"

	"github.com/vango-dev/storable/pkg/record"
)

// Action identifies the kind of write a proxy performs.
type Action string

const (
	ActionCreate  Action = "create"
	ActionRead    Action = "read"
	ActionUpdate  Action = "update"
	ActionDestroy Action = "destroy"
)

// ErrNoProxy is returned when a store has no proxy to persist through.
var ErrNoProxy = errors.New("storable: collection has no proxy")

// Request is one batch sent to a proxy.
type Request struct {
	Action     Action           `json:"action"`
	Collection string           `json:"collection"`
	Records    []record.Payload `json:"records,omitempty"`
}

// Response is a backend's answer to a Request.
type Response struct {
	Success bool             `json:"success"`
	Message string           `json:"message,omitempty"`
	Records []record.Payload `json:"records,omitempty"`
}

// Proxy performs requests against a backend.
type Proxy interface {
	Name() string
	Do(ctx context.Context, req Request) (*Response, error)
}

// ExceptionType distinguishes transport failures from backend rejections.
type ExceptionType string

const (
	// ExceptionResponse means the proxy call itself failed.
	ExceptionResponse ExceptionType = "response"
	// ExceptionRemote means the backend answered with success=false.
	ExceptionRemote ExceptionType = "remote"
)

// WriteEvent is delivered after a successful write.
type WriteEvent struct {
	Proxy    Proxy
	Action   Action
	Data     []record.Payload
	Response *Response
	Records  []*record.Record
	Options  Request
}

// ExceptionEvent is delivered after a failed write.
type ExceptionEvent struct {
	Proxy    Proxy
	Type     ExceptionType
	Action   Action
	Request  Request
	Response *Response
	Err      error
}

// Message returns the most specific failure description available.
func (e ExceptionEvent) Message() string {
	if e.Response != nil && e.Response.Message != "" {
		return e.Response.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// BeforeWriteFunc observes a batch before it is sent. Returning false vetoes
// the batch.
type BeforeWriteFunc func(p Proxy, action Action, records []*record.Record) bool

// WriteFunc observes a successful write.
type WriteFunc func(ev WriteEvent)

// ExceptionFunc observes a failed write.
type ExceptionFunc func(ev ExceptionEvent)

// Collection is the surface a controller needs from a record collection.
// Each On* method returns a function that removes the listener.
type Collection interface {
	Add(records ...*record.Record)
	Save(ctx context.Context) error
	AutoSave() bool
	RecordType() *record.Type

	OnBeforeWrite(fn BeforeWriteFunc) func()
	OnWrite(fn WriteFunc) func()
	OnException(fn ExceptionFunc) func()
}
