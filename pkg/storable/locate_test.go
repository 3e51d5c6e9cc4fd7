package storable

import (
	"errors"
	"testing"

	serrors "github.com/vango-dev/storable/internal/errors"
	"github.com/vango-dev/storable/pkg/ui"
)

func TestParseButtonPath(t *testing.T) {
	tests := []struct {
		path     string
		want     ButtonPath
		wantCode string
	}{
		{"tbar.btn-save", ButtonPath{LocationTopToolbar, "btn-save"}, ""},
		{"bbar.btn-cancel", ButtonPath{LocationBottomToolbar, "btn-cancel"}, ""},
		{"buttons.btn.save", ButtonPath{LocationButtons, "btn.save"}, ""},
		{"buttons", ButtonPath{}, "S002"},
		{".btn", ButtonPath{}, "S002"},
		{"tbar.", ButtonPath{}, "S002"},
		{"sidebar.btn", ButtonPath{}, "S003"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := ParseButtonPath(tt.path)
			if tt.wantCode != "" {
				if !serrors.HasCode(err, tt.wantCode) {
					t.Errorf("ParseButtonPath(%q) error = %v, want %s", tt.path, err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseButtonPath(%q) error = %v", tt.path, err)
			}
			if got != tt.want {
				t.Errorf("ParseButtonPath(%q) = %+v, want %+v", tt.path, got, tt.want)
			}
			if got.String() != tt.path {
				t.Errorf("String() = %q, want %q", got.String(), tt.path)
			}
		})
	}
}

func TestLocateButton(t *testing.T) {
	save := ui.NewButton("btn-save", "Save")
	top := ui.NewButton("btn-top", "Top")
	bottom := ui.NewButton("btn-bottom", "Bottom")
	panel := ui.NewPanel("editor",
		ui.WithButtons(ui.NewButton("btn-other", "Other"), save),
		ui.WithTopToolbar(ui.NewToolbar(top)),
		ui.WithBottomToolbar(ui.NewToolbar(bottom)),
	)

	for path, want := range map[string]*ui.Button{
		"buttons.btn-save": save,
		"tbar.btn-top":     top,
		"bbar.btn-bottom":  bottom,
	} {
		got, err := LocateButton(panel, path)
		if err != nil {
			t.Fatalf("LocateButton(%q) error = %v", path, err)
		}
		if got != want {
			t.Errorf("LocateButton(%q) = %v, want %v", path, got.ItemID(), want.ItemID())
		}
	}

	for _, path := range []string{"buttons.missing", "tbar.btn-bottom", "bbar.btn-save"} {
		_, err := LocateButton(panel, path)
		if !errors.Is(err, ErrButtonNotFound) || !serrors.HasCode(err, "S001") {
			t.Errorf("LocateButton(%q) error = %v, want S001 wrapping ErrButtonNotFound", path, err)
		}
	}

	if _, err := LocateButton(ui.NewPanel("bare"), "tbar.btn-save"); !errors.Is(err, ErrButtonNotFound) {
		t.Errorf("missing toolbar error = %v, want ErrButtonNotFound", err)
	}
}
