package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vango-dev/storable/internal/editor"
	"github.com/vango-dev/storable/pkg/collection"
	"github.com/vango-dev/storable/pkg/proxy"
	"github.com/vango-dev/storable/pkg/storable"
)

func validateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the project configuration",
		Long: `Load the project configuration, check its structure and build every
editor against an in-memory backend so rule expressions are compiled.

Examples:
  storable validate
  storable validate -c ./storable.hcl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}

			quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
			reg := editor.NewRegistry(cfg, proxy.NewMemory(), collection.WithLogger(quiet))

			out := cmd.OutOrStdout()
			for _, ed := range cfg.Editors {
				built, err := editor.Build(cfg, ed.ID, reg, storable.WithLogger(quiet))
				if err != nil {
					return err
				}
				built.Controller.Close()
				info(out, "editor %s → %s", ed.ID, ed.Collection)
			}
			if len(cfg.Editors) == 0 {
				warn(out, "no editors configured")
			}
			success(out, "%s is valid", cfg.Path())
			return nil
		},
	}
}
