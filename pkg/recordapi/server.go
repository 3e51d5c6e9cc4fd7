package recordapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/storable/pkg/backend"
	"github.com/vango-dev/storable/pkg/collection"
	"github.com/vango-dev/storable/pkg/proxy"
	"github.com/vango-dev/storable/pkg/record"
)

// Config configures a Server.
type Config struct {
	// Logger receives request and websocket diagnostics.
	Logger *slog.Logger

	// MetricsHandler is mounted at /metrics when non-nil.
	MetricsHandler http.Handler

	// CheckOrigin validates websocket origins. Default: allow all.
	CheckOrigin func(r *http.Request) bool

	// RequestTimeout bounds each backend call. Default: 30s.
	RequestTimeout time.Duration
}

// Option configures a Server.
type Option func(*Config)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(c *Config) {
		c.MetricsHandler = h
	}
}

// WithCheckOrigin sets the websocket origin check.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(c *Config) {
		c.CheckOrigin = fn
	}
}

// WithRequestTimeout bounds each backend call.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.RequestTimeout = d
	}
}

func defaultConfig() Config {
	return Config{
		Logger:         slog.Default(),
		CheckOrigin:    func(*http.Request) bool { return true },
		RequestTimeout: 30 * time.Second,
	}
}

// Server exposes a backend over REST and websocket routes.
type Server struct {
	backend  backend.Backend
	config   Config
	logger   *slog.Logger
	router   chi.Router
	upgrader websocket.Upgrader
}

// New creates a Server for b.
func New(b backend.Backend, opts ...Option) *Server {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	s := &Server{
		backend: b,
		config:  config,
		logger:  config.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     config.CheckOrigin,
		},
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, collection.Response{Success: true})
	})
	r.Get("/ws", s.handleWebSocket)
	if s.config.MetricsHandler != nil {
		r.Handle("/metrics", s.config.MetricsHandler)
	}

	r.Route("/collections/{collection}/records", func(r chi.Router) {
		r.Get("/", s.handleAction(collection.ActionRead))
		r.Post("/", s.handleAction(collection.ActionCreate))
		r.Put("/", s.handleAction(collection.ActionUpdate))
		r.Delete("/", s.handleAction(collection.ActionDestroy))
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// recordsBody is the request body for create and update.
type recordsBody struct {
	Records []record.Payload `json:"records"`
}

func (s *Server) handleAction(action collection.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := collection.Request{
			Action:     action,
			Collection: chi.URLParam(r, "collection"),
		}

		switch action {
		case collection.ActionCreate, collection.ActionUpdate:
			var body recordsBody
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				writeJSON(w, http.StatusBadRequest, collection.Response{Message: "invalid body: " + err.Error()})
				return
			}
			req.Records = body.Records
		case collection.ActionDestroy:
			for _, id := range r.URL.Query()["id"] {
				req.Records = append(req.Records, record.Payload{ID: id})
			}
		}

		resp := s.apply(r.Context(), req)
		status := http.StatusOK
		if !resp.Success {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, resp)
	}
}

func (s *Server) apply(ctx context.Context, req collection.Request) *collection.Response {
	ctx, cancel := context.WithTimeout(ctx, s.config.RequestTimeout)
	defer cancel()

	resp := backend.Apply(ctx, s.backend, req)
	if resp.Success {
		s.logger.Debug("records applied", "collection", req.Collection, "action", req.Action, "records", len(req.Records))
	} else {
		s.logger.Warn("records rejected", "collection", req.Collection, "action", req.Action, "message", resp.Message)
	}
	return resp
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	for {
		var in proxy.Frame
		if err := conn.ReadJSON(&in); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && !errors.Is(err, net.ErrClosed) {
				s.logger.Debug("websocket read ended", "error", err)
			}
			return
		}

		out := proxy.Frame{ID: in.ID}
		if in.Request == nil {
			out.Error = "missing request"
		} else {
			out.Response = s.apply(r.Context(), *in.Request)
		}
		if err := conn.WriteJSON(out); err != nil {
			s.logger.Debug("websocket write failed", "error", err)
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
