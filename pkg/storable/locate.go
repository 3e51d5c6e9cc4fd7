package storable

import (
	"errors"
	"strings"

	serrors "github.com/vango-dev/storable/internal/errors"
	"github.com/vango-dev/storable/pkg/ui"
)

// ErrButtonNotFound is wrapped by every button lookup failure.
var ErrButtonNotFound = errors.New("storable: button not found")

// Location is the part of a container holding a button.
type Location string

const (
	LocationTopToolbar    Location = "tbar"
	LocationBottomToolbar Location = "bbar"
	LocationButtons       Location = "buttons"
)

// ButtonPath is a parsed "<location>.<itemId>" string.
type ButtonPath struct {
	Location Location
	ItemID   string
}

func (p ButtonPath) String() string {
	return string(p.Location) + "." + p.ItemID
}

// ParseButtonPath parses a path such as "bbar.btn-save". Everything after
// the first dot is the item ID.
func ParseButtonPath(s string) (ButtonPath, error) {
	loc, id, ok := strings.Cut(s, ".")
	if !ok || loc == "" || id == "" {
		return ButtonPath{}, serrors.New("S002").WithDetailf("%q", s)
	}
	switch Location(loc) {
	case LocationTopToolbar, LocationBottomToolbar, LocationButtons:
		return ButtonPath{Location: Location(loc), ItemID: id}, nil
	default:
		return ButtonPath{}, serrors.New("S003").WithDetailf("%q in %q", loc, s)
	}
}

// ButtonHost is a container exposing the three button locations.
type ButtonHost interface {
	Buttons() []*ui.Button
	TopToolbar() *ui.Toolbar
	BottomToolbar() *ui.Toolbar
}

// LocateButton resolves path against host.
func LocateButton(host ButtonHost, path string) (*ui.Button, error) {
	p, err := ParseButtonPath(path)
	if err != nil {
		return nil, err
	}

	var btn *ui.Button
	switch p.Location {
	case LocationButtons:
		for _, b := range host.Buttons() {
			if b != nil && b.ItemID() == p.ItemID {
				btn = b
				break
			}
		}
	case LocationTopToolbar:
		if tb := host.TopToolbar(); tb != nil {
			btn = tb.Component(p.ItemID)
		}
	case LocationBottomToolbar:
		if tb := host.BottomToolbar(); tb != nil {
			btn = tb.Component(p.ItemID)
		}
	}
	if btn == nil {
		return nil, serrors.New("S001").
			WithDetailf("failed to find button %s on %s", p.ItemID, p.Location).
			Wrap(ErrButtonNotFound)
	}
	return btn, nil
}
