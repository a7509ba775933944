// Package notification shows short user-facing messages for the ccxc client.
//
// The request pipeline reports warnings and errors through the Notifier
// interface and never waits on it:
//
//	type Notifier interface {
//	    Notify(kind Kind, text string, duration time.Duration)
//	}
//
// Kinds are Success, Error, Warning and Info; DefaultDuration is three
// seconds.
//
// # Implementations
//
//   - LogNotifier writes to a *slog.Logger at a level matching the kind
//   - ConsoleNotifier prints one colored line per message
//   - Manager fans out to several named sinks
//   - MockNotifier records messages for tests
//   - Discard drops everything
//
// # Basic Usage
//
//	nm := notification.NewManager()
//	nm.Register("console", &notification.ConsoleNotifier{W: os.Stderr})
//	nm.Register("log", notification.NewLogNotifier(logger))
//
//	client := request.NewClient(baseURL, store, request.WithNotifier(nm))
package notification
