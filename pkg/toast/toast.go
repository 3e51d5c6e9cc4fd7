package toast

import (
	"context"
	"log/slog"
	"sync"
)

// EventName is the event fired for toasts.
const EventName = "storable:toast"

// Type represents the toast notification type.
type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeWarning Type = "warning"
	TypeInfo    Type = "info"
)

// Emitter fires named events. ui.Panel satisfies it.
type Emitter interface {
	Fire(name string, args ...any) bool
}

// Show fires a toast event on target. Handlers receive one argument:
//
//	map[string]any{"level": "success|error|warning|info", "message": "..."}
func Show(target Emitter, level Type, message string) {
	target.Fire(EventName, map[string]any{
		"level":   string(level),
		"message": message,
	})
}

// Success shows a success toast.
func Success(target Emitter, message string) {
	Show(target, TypeSuccess, message)
}

// Error shows an error toast.
func Error(target Emitter, message string) {
	Show(target, TypeError, message)
}

// Warning shows a warning toast.
func Warning(target Emitter, message string) {
	Show(target, TypeWarning, message)
}

// Info shows an info toast.
func Info(target Emitter, message string) {
	Show(target, TypeInfo, message)
}

// WithTitle shows a toast with a title and message.
func WithTitle(target Emitter, level Type, title, message string) {
	target.Fire(EventName, map[string]any{
		"level":   string(level),
		"title":   title,
		"message": message,
	})
}

// Notifier receives feedback meant for the user.
type Notifier interface {
	Notify(level Type, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(level Type, message string)

func (f NotifierFunc) Notify(level Type, message string) { f(level, message) }

// EventNotifier fires toast events on Target.
type EventNotifier struct {
	Target Emitter
}

func (n EventNotifier) Notify(level Type, message string) {
	if n.Target != nil {
		Show(n.Target, level, message)
	}
}

// LogNotifier logs notifications. Errors log at error level, warnings at
// warn level and the rest at info.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(level Type, message string) {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	lvl := slog.LevelInfo
	switch level {
	case TypeError:
		lvl = slog.LevelError
	case TypeWarning:
		lvl = slog.LevelWarn
	}
	logger.Log(context.Background(), lvl, message, "toast", string(level))
}

// Message is a recorded notification.
type Message struct {
	Level   Type
	Message string
}

// Recorder keeps every notification it receives.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) Notify(level Type, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Level: level, Message: message})
}

// Messages returns the recorded notifications.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Multi fans a notification out to several notifiers.
func Multi(notifiers ...Notifier) Notifier {
	return NotifierFunc(func(level Type, message string) {
		for _, n := range notifiers {
			n.Notify(level, message)
		}
	})
}
