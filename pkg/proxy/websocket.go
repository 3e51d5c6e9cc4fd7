package proxy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/storable/pkg/collection"
)

// Frame is the websocket wire format. Clients send frames carrying a Request;
// the server answers with the same ID and either a Response or an Error.
type Frame struct {
	ID       string               `json:"id"`
	Request  *collection.Request  `json:"request,omitempty"`
	Response *collection.Response `json:"response,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// ErrClosed is returned by a WebSocket proxy after Close.
var ErrClosed = errors.New("storable: websocket proxy closed")

// WebSocket is a proxy that sends one frame per request over a persistent
// connection. Requests are serialized; the connection is dialed lazily and
// redialed after a failure.
type WebSocket struct {
	url    string
	header http.Header
	dialer *websocket.Dialer

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

// NewWebSocket creates a proxy for the record API websocket endpoint
// (e.g. "ws://localhost:8080/ws").
func NewWebSocket(url string, header http.Header) *WebSocket {
	return &WebSocket{
		url:    url,
		header: header,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}
}

// Name implements collection.Proxy.
func (w *WebSocket) Name() string { return "websocket" }

// Do implements collection.Proxy.
func (w *WebSocket) Do(ctx context.Context, req collection.Request) (*collection.Response, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, ErrClosed
	}
	if w.conn == nil {
		conn, _, err := w.dialer.DialContext(ctx, w.url, w.header)
		if err != nil {
			return nil, fmt.Errorf("websocket proxy: dial %s: %w", w.url, err)
		}
		w.conn = conn
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = w.conn.SetWriteDeadline(deadline)
		_ = w.conn.SetReadDeadline(deadline)
	} else {
		_ = w.conn.SetWriteDeadline(time.Time{})
		_ = w.conn.SetReadDeadline(time.Time{})
	}

	out := Frame{ID: uuid.NewString(), Request: &req}
	if err := w.conn.WriteJSON(out); err != nil {
		w.dropLocked()
		return nil, fmt.Errorf("websocket proxy: write: %w", err)
	}

	for {
		var in Frame
		if err := w.conn.ReadJSON(&in); err != nil {
			w.dropLocked()
			return nil, fmt.Errorf("websocket proxy: read: %w", err)
		}
		if in.ID != out.ID {
			// Reply to a request abandoned after a timeout.
			continue
		}
		if in.Error != "" {
			return nil, fmt.Errorf("websocket proxy: %s", in.Error)
		}
		if in.Response == nil {
			return nil, errors.New("websocket proxy: empty response")
		}
		return in.Response, nil
	}
}

func (w *WebSocket) dropLocked() {
	if w.conn != nil {
		_ = w.conn.Close()
		w.conn = nil
	}
}

// Close closes the connection. Subsequent requests fail with ErrClosed.
func (w *WebSocket) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	if w.conn == nil {
		return nil
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = w.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	err := w.conn.Close()
	w.conn = nil
	return err
}
