package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/storable/internal/config"
	serrors "github.com/vango-dev/storable/internal/errors"
)

func initCmd(flags *globalFlags) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter storable.json",
		Long: `Write a starter storable.json with one collection and one editor
into the directory named by --config.

Examples:
  storable init
  storable init -c ./inventory`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(flags.config, config.ConfigFileName)
			if _, err := os.Stat(path); err == nil && !force {
				return serrors.New("S007").
					WithDetail(path + " already exists").
					WithSuggestion("Pass --force to overwrite it")
			}
			if err := os.MkdirAll(flags.config, 0755); err != nil {
				return err
			}
			if err := starterConfig().SaveTo(path); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")

	return cmd
}

func starterConfig() *config.Config {
	cfg := config.New()
	cfg.Name = "inventory"
	cfg.Collections = []config.CollectionConfig{{
		ID: "products",
		Fields: []config.FieldConfig{
			{Name: "name", Default: "", Rules: "required,minlen=2"},
			{Name: "price", Default: 0.0, Expr: "value >= 0", Message: "Price cannot be negative"},
		},
		Constraints: []config.ConstraintConfig{
			{Expr: "price < 10000.0", Message: "Price is out of range"},
		},
	}}
	cfg.Editors = []config.EditorConfig{{
		ID:           "product-editor",
		Collection:   "products",
		SaveButton:   "bbar.btn-save",
		CancelButton: "bbar.btn-cancel",
	}}
	return cfg
}
