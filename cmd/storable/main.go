package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/storable/internal/config"
	serrors "github.com/vango-dev/storable/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalFlags are shared by every command.
type globalFlags struct {
	config    string
	logLevel  string
	logFormat string
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		serrors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "storable",
		Short: "Form-to-collection persistence for editor panels",
		Long: `Storable wires editor panels to record collections.

It serves a record API over a memory or S3 backend and drives
configured editors against it:

  • Save and cancel buttons bound to a persistence controller
  • Form validation with rules, expr and CEL constraints
  • REST and WebSocket proxies
  • Prometheus metrics and OpenTelemetry spans`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().StringVarP(&flags.config, "config", "c", ".", "Project directory or config file")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "text", "Log format (text, json)")

	rootCmd.AddCommand(
		initCmd(flags),
		serveCmd(flags),
		editCmd(flags),
		validateCmd(flags),
		versionCmd(),
	)
	return rootCmd
}

// logger builds the process logger from the global flags.
func (f *globalFlags) logger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(f.logLevel)); err != nil {
		return nil, serrors.New("S070").WithDetailf("--log-level %q", f.logLevel)
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(f.logFormat) {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, serrors.New("S070").WithDetailf("--log-format %q", f.logFormat)
	}
}

// loadConfig loads and validates the project named by --config, which may be
// a directory or a file.
func (f *globalFlags) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if info, statErr := os.Stat(f.config); statErr == nil && !info.IsDir() {
		cfg, err = config.LoadFile(f.config)
	} else {
		cfg, err = config.Load(f.config)
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
