package notification

import (
	"context"
	"log/slog"
	"time"
)

// Kind is the severity a notification is shown with
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Warning Kind = "warning"
	Info    Kind = "info"
)

// DefaultDuration is how long a notification stays visible
const DefaultDuration = 3000 * time.Millisecond

// Notifier shows a short user-facing message. Implementations must not
// block the caller.
type Notifier interface {
	Notify(kind Kind, text string, duration time.Duration)
}

// NotifierFunc adapts a function to the Notifier interface
type NotifierFunc func(kind Kind, text string, duration time.Duration)

func (f NotifierFunc) Notify(kind Kind, text string, duration time.Duration) {
	f(kind, text, duration)
}

// LogNotifier writes notifications to a structured logger
type LogNotifier struct {
	Logger *slog.Logger
}

// NewLogNotifier creates a notifier over logger, or slog.Default() if nil
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{Logger: logger}
}

func (n *LogNotifier) Notify(kind Kind, text string, duration time.Duration) {
	level := slog.LevelInfo
	switch kind {
	case Error:
		level = slog.LevelError
	case Warning:
		level = slog.LevelWarn
	}
	n.Logger.Log(context.Background(), level, text, "kind", string(kind), "duration", duration)
}

// Discard drops every notification
var Discard Notifier = NotifierFunc(func(Kind, string, time.Duration) {})
