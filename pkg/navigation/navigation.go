// Package navigation moves the client to another route when the backend
// asks for it (forced redirects and forced logout).
package navigation

import (
	"log/slog"
	"net/url"
	"sync"
)

// MessageRoute is the notice page a forced logout lands on
const MessageRoute = "/message"

// Location is a client route with an optional query
type Location struct {
	Path  string            `json:"path"`
	Query map[string]string `json:"query,omitempty"`
}

// String renders the location as a relative URL, query keys sorted.
func (l Location) String() string {
	if len(l.Query) == 0 {
		return l.Path
	}
	q := url.Values{}
	for k, v := range l.Query {
		q.Set(k, v)
	}
	return l.Path + "?" + q.Encode()
}

// Navigator changes the current client route
type Navigator interface {
	Navigate(loc Location)
}

// NavigatorFunc adapts a function to the Navigator interface
type NavigatorFunc func(loc Location)

func (f NavigatorFunc) Navigate(loc Location) {
	f(loc)
}

// History records every navigation and optionally logs it. The CLI uses
// it to tell the user where the backend wanted to send them; tests use it
// to assert redirects.
type History struct {
	Logger *slog.Logger

	mutex   sync.Mutex
	entries []Location
}

func (h *History) Navigate(loc Location) {
	h.mutex.Lock()
	h.entries = append(h.entries, loc)
	h.mutex.Unlock()

	if h.Logger != nil {
		h.Logger.Info("Navigate", "location", loc.String())
	}
}

// Entries returns a copy of all recorded locations
func (h *History) Entries() []Location {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	out := make([]Location, len(h.entries))
	copy(out, h.entries)
	return out
}

// Last returns the most recent location
func (h *History) Last() (Location, bool) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if len(h.entries) == 0 {
		return Location{}, false
	}
	return h.entries[len(h.entries)-1], true
}

// Discard ignores every navigation
var Discard Navigator = NavigatorFunc(func(Location) {})
