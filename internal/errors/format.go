package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
)

// paint wraps text in an SGR escape sequence while colors are on.
type paint string

const (
	red  paint = "31"
	cyan paint = "36"
	fg   paint = "37"
	dim  paint = "90"
	bold paint = "1"
)

var colorEnabled = true

// DisableColors makes Format emit plain text, for pipes and tests.
func DisableColors() { colorEnabled = false }

func EnableColors() { colorEnabled = true }

func (p paint) s(text string) string {
	if !colorEnabled {
		return text
	}
	return "\033[" + string(p) + "m" + text + "\033[0m"
}

// Format renders the error as a multi-line report with the source
// excerpt, detail, cause and hint.
func (e *StorableError) Format() string {
	var b strings.Builder

	b.WriteString("\n")
	if e.Code != "" {
		b.WriteString(red.s(bold.s("ERROR ")))
		b.WriteString(fg.s(bold.s(e.Code + ": ")))
	} else {
		b.WriteString(red.s(bold.s("ERROR: ")))
	}
	b.WriteString(fg.s(e.Message))
	b.WriteString("\n\n")

	if e.Location != nil {
		b.WriteString("  ")
		b.WriteString(cyan.s(e.Location.String()))
		b.WriteString("\n\n")

		startLine := e.Location.Line - len(e.Context)/2
		for i, line := range e.Context {
			lineNum := startLine + i
			marker := "    "
			if lineNum == e.Location.Line {
				marker = "  " + red.s("→ ")
			}
			b.WriteString(marker)
			b.WriteString(fmt.Sprintf("%4d", lineNum))
			b.WriteString(dim.s(" │ "))
			b.WriteString(line)
			b.WriteString("\n")
		}
		if len(e.Context) > 0 {
			b.WriteString("\n")
		}
	}

	if e.Detail != "" {
		for _, line := range wrapText(e.Detail, 70) {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if e.Wrapped != nil {
		b.WriteString("  ")
		b.WriteString(dim.s("Cause: "))
		b.WriteString(e.Wrapped.Error())
		b.WriteString("\n\n")
	}

	if e.Suggestion != "" {
		b.WriteString("  ")
		b.WriteString(cyan.s("Hint: "))
		b.WriteString(e.Suggestion)
		b.WriteString("\n")
	}

	return b.String()
}

// FormatCompact is the one-line form used in logs.
func (e *StorableError) FormatCompact() string {
	var b strings.Builder
	if e.Location != nil {
		b.WriteString(e.Location.String())
		b.WriteString(": ")
	}
	b.WriteString(e.Error())
	return b.String()
}

type jsonError struct {
	Code       string    `json:"code,omitempty"`
	Category   Category  `json:"category"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	Location   *Location `json:"location,omitempty"`
	Suggestion string    `json:"suggestion,omitempty"`
	Cause      string    `json:"cause,omitempty"`
}

// FormatJSON renders the error as a single JSON object.
func (e *StorableError) FormatJSON() string {
	out := jsonError{
		Code:       e.Code,
		Category:   e.Category,
		Message:    e.Message,
		Detail:     e.Detail,
		Location:   e.Location,
		Suggestion: e.Suggestion,
	}
	if e.Wrapped != nil {
		out.Cause = e.Wrapped.Error()
	}
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Sprintf(`{"message":%q}`, e.Message)
	}
	return string(data)
}

// wrapText breaks text on spaces into lines no wider than width, except
// for single words that are longer.
func wrapText(text string, width int) []string {
	var lines []string
	line := ""
	for _, w := range strings.Fields(text) {
		switch {
		case line == "":
			line = w
		case len(line)+1+len(w) > width:
			lines = append(lines, line)
			line = w
		default:
			line += " " + w
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// PrintError writes err to w, using Format when err is a StorableError.
func PrintError(w io.Writer, err error) {
	var se *StorableError
	if stderrors.As(err, &se) {
		fmt.Fprint(w, se.Format())
		return
	}
	fmt.Fprintf(w, "\n%s %s\n\n", red.s(bold.s("ERROR:")), err.Error())
}
