package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/vango-dev/storable/internal/editor"
	serrors "github.com/vango-dev/storable/internal/errors"
	"github.com/vango-dev/storable/pkg/collection"
	"github.com/vango-dev/storable/pkg/instrument"
	"github.com/vango-dev/storable/pkg/proxy"
	"github.com/vango-dev/storable/pkg/storable"
	"github.com/vango-dev/storable/pkg/toast"
	"github.com/vango-dev/storable/pkg/ui"
)

type editOptions struct {
	server    string
	transport string
	recordID  string
	sets      []string
	timeout   time.Duration
}

func editCmd(flags *globalFlags) *cobra.Command {
	opts := editOptions{}

	cmd := &cobra.Command{
		Use:   "edit <editor>",
		Short: "Edit one record through a configured editor",
		Long: `Build the named editor, load or create a record, apply field values
and press save. The command waits for the write to finish.

Examples:
  storable edit product-editor --set name=Widget --set price=4.5
  storable edit product-editor --id 3 --set price=5
  storable edit product-editor --transport ws --server ws://localhost:8080/ws`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, flags, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.server, "server", "s", "http://localhost:8080", "Record API URL")
	cmd.Flags().StringVarP(&opts.transport, "transport", "t", "http", "Proxy transport (http, ws)")
	cmd.Flags().StringVar(&opts.recordID, "id", "", "Edit an existing record instead of creating one")
	cmd.Flags().StringArrayVar(&opts.sets, "set", nil, "Field value as name=value (JSON values are decoded)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "How long to wait for the save")

	return cmd
}

// parseSets turns name=value pairs into field values. Values that parse as
// JSON are decoded, anything else is kept as a string.
func parseSets(sets []string) (map[string]any, error) {
	values := make(map[string]any, len(sets))
	for _, s := range sets {
		name, raw, ok := strings.Cut(s, "=")
		if !ok || name == "" {
			return nil, serrors.New("S070").WithDetailf("--set %q", s)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		values[name] = v
	}
	return values, nil
}

func newProxy(transport, server string, timeout time.Duration) (collection.Proxy, func(), error) {
	switch transport {
	case "http":
		return proxy.NewHTTP(server, &http.Client{Timeout: timeout}), func() {}, nil
	case "ws", "websocket":
		ws := proxy.NewWebSocket(server, nil)
		return ws, func() { ws.Close() }, nil
	default:
		return nil, nil, serrors.New("S070").WithDetailf("--transport %q", transport)
	}
}

func runEdit(cmd *cobra.Command, flags *globalFlags, editorID string, opts editOptions) error {
	logger, err := flags.logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	cfg, err := flags.loadConfig()
	if err != nil {
		return err
	}
	values, err := parseSets(opts.sets)
	if err != nil {
		return err
	}
	p, closeProxy, err := newProxy(opts.transport, opts.server, opts.timeout)
	if err != nil {
		return err
	}
	defer closeProxy()

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	loop := ui.NewLoop(64, logger)
	go loop.Run(ctx)
	defer loop.Close()

	reg := editor.NewRegistry(cfg, p,
		collection.WithExecutor(func(fn func()) { go fn() }),
		collection.WithDispatcher(loop.Post),
		collection.WithContext(ctx),
		collection.WithLogger(logger),
	)

	out := cmd.OutOrStdout()
	notifier := toast.Multi(
		toast.LogNotifier{Logger: logger},
		toast.NotifierFunc(func(level toast.Type, message string) {
			if level == toast.TypeError {
				warn(out, "%s", message)
			}
		}),
	)

	ed, err := editor.Build(cfg, editorID, reg,
		storable.WithContext(ctx),
		storable.WithLogger(logger),
		storable.WithNotifier(notifier),
	)
	if err != nil {
		return err
	}
	defer ed.Controller.Close()

	metrics := instrument.NewMetrics(instrument.WithRegistry(prometheus.NewRegistry()))
	defer metrics.Attach(ed.Panel, editorID)()
	tracing := instrument.NewTracing(
		instrument.WithTracerProvider(otel.GetTracerProvider()),
		instrument.WithParentContext(ctx),
	)
	defer tracing.Attach(ed.Panel, editorID)()

	done := make(chan error, 1)
	finish := func(err error) bool {
		select {
		case done <- err:
		default:
		}
		return true
	}
	ed.Panel.On(storable.EventSave, func(args ...any) bool {
		if ev, ok := ui.Arg[collection.WriteEvent](args, 1); ok {
			for _, r := range ev.Records {
				success(out, "%s record %s", ev.Action, r.ID())
			}
		}
		return finish(nil)
	})
	ed.Panel.On(storable.EventCancel, func(args ...any) bool {
		info(out, "nothing to save")
		return finish(nil)
	})
	ed.Panel.On(storable.EventInvalid, func(args ...any) bool {
		return finish(serrors.New("S020").WithDetail(formErrors(ed)))
	})
	ed.Panel.On(storable.EventException, func(args ...any) bool {
		ev, _ := ui.Arg[collection.ExceptionEvent](args, 1)
		code := "S050"
		if ev.Type == collection.ExceptionRemote {
			code = "S040"
		}
		return finish(serrors.New(code).WithDetail(ev.Message()))
	})

	if opts.recordID != "" {
		e, _ := cfg.Editor(editorID)
		store, _ := reg.Lookup(e.Collection)
		s := store.(*collection.Store)
		if err := s.Load(ctx); err != nil {
			return serrors.New("S050").Wrap(err)
		}
		r, ok := s.Find(opts.recordID)
		if !ok {
			return serrors.New("S041").WithDetailf("%s/%s", s.ID(), opts.recordID)
		}
		loop.Post(func() { ed.Controller.LoadRecord(r) })
	} else {
		loop.Post(func() { ed.Controller.Reset(nil) })
	}

	loop.Post(func() {
		for name, v := range values {
			ed.Form.SetValue(name, v)
		}
		ed.Controller.SaveButton().Click()
	})

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return serrors.New("S050").WithDetail("timed out waiting for save").Wrap(ctx.Err())
	}
}

func formErrors(ed *editor.Editor) string {
	var parts []string
	for _, name := range ed.Form.ErrorFields() {
		label := name
		if label == "" {
			label = "form"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", label, strings.Join(ed.Form.Errors()[name], "; ")))
	}
	return strings.Join(parts, ", ")
}
