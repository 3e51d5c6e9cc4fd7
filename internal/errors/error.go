package errors

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"os"
)

// Category groups codes by the layer that raised them.
type Category string

const (
	CategoryConfig      Category = "config"
	CategoryValidation  Category = "validation"
	CategoryPersistence Category = "persistence"
	CategoryTransport   Category = "transport"
	CategoryCLI         Category = "cli"
)

// Location is a position in a config file.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column,omitempty"`
}

// String renders file:line[:col].
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// StorableError carries a registered code plus whatever the caller knows
// about this occurrence. Format renders it for a terminal.
type StorableError struct {
	Code     string // "S001" and up, see registry.go
	Category Category
	Message  string
	Detail   string

	// Location and Context point into the config file that failed to load.
	Location *Location
	Context  []string

	Suggestion string
	Wrapped    error
}

func (e *StorableError) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	return msg
}

func (e *StorableError) Unwrap() error {
	return e.Wrapped
}

// WithLocation records where in file the problem is and captures the
// surrounding lines for Format.
func (e *StorableError) WithLocation(file string, line, column int) *StorableError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = sourceWindow(file, line, 5)
	return e
}

// WithSuggestion overrides the registered hint.
func (e *StorableError) WithSuggestion(s string) *StorableError {
	e.Suggestion = s
	return e
}

func (e *StorableError) WithDetail(d string) *StorableError {
	e.Detail = d
	return e
}

func (e *StorableError) WithDetailf(format string, args ...any) *StorableError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// Wrap sets the cause reported by Unwrap and by Format.
func (e *StorableError) Wrap(err error) *StorableError {
	e.Wrapped = err
	return e
}

// sourceWindow returns up to size lines of path centred on line.
func sourceWindow(path string, line, size int) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	first, last := line-size/2, line+size/2
	var out []string
	sc := bufio.NewScanner(f)
	for n := 1; sc.Scan() && n <= last; n++ {
		if n >= first {
			out = append(out, sc.Text())
		}
	}
	return out
}

// New starts an error from the registered template for code. Unregistered
// codes still produce an error, with a placeholder message.
func New(code string) *StorableError {
	t, ok := registry[code]
	if !ok {
		t.Message = "Unknown error"
	}
	return &StorableError{Code: code, Category: t.Category, Message: t.Message, Suggestion: t.Suggestion}
}

// Newf builds an uncoded error.
func Newf(category Category, format string, args ...any) *StorableError {
	return &StorableError{Category: category, Message: fmt.Sprintf(format, args...)}
}

// FromError tags err with code unless something in its chain is already a
// StorableError, which is returned as is.
func FromError(err error, code string) *StorableError {
	if err == nil {
		return nil
	}
	var se *StorableError
	if stderrors.As(err, &se) {
		return se
	}
	return New(code).Wrap(err)
}

// HasCode reports whether err, or any error it wraps, carries code.
func HasCode(err error, code string) bool {
	var se *StorableError
	for err != nil {
		if !stderrors.As(err, &se) {
			return false
		}
		if se.Code == code {
			return true
		}
		err = se.Wrapped
	}
	return false
}
