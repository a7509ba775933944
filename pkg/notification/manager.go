package notification

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

// Sink names a registered notifier (e.g. "console", "log").
type Sink string

// Manager fans a notification out to every registered sink.
type Manager struct {
	sinks map[Sink]Notifier
	mutex sync.RWMutex
}

// NewManager creates and returns a new Manager.
func NewManager() *Manager {
	return &Manager{
		sinks: make(map[Sink]Notifier),
	}
}

// Register adds or replaces the notifier for a sink.
func (m *Manager) Register(sink Sink, notifier Notifier) error {
	if sink == "" || notifier == nil {
		return fmt.Errorf("invalid input: sink and notifier cannot be empty")
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sinks[sink] = notifier
	return nil
}

// Unregister removes a sink
func (m *Manager) Unregister(sink Sink) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sinks, sink)
}

// Sinks returns the registered sink names in sorted order
func (m *Manager) Sinks() []Sink {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	names := make([]Sink, 0, len(m.sinks))
	for name := range m.sinks {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Notify sends the notification to every sink. A zero duration means
// DefaultDuration.
func (m *Manager) Notify(kind Kind, text string, duration time.Duration) {
	if duration <= 0 {
		duration = DefaultDuration
	}
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	for _, n := range m.sinks {
		n.Notify(kind, text, duration)
	}
}

// ConsoleNotifier prints notifications as single lines, e.g. to stderr.
type ConsoleNotifier struct {
	W     io.Writer
	mutex sync.Mutex
}

var consoleColors = map[Kind]string{
	Success: "\033[32m",
	Error:   "\033[31m",
	Warning: "\033[33m",
	Info:    "\033[36m",
}

func (c *ConsoleNotifier) Notify(kind Kind, text string, _ time.Duration) {
	color, ok := consoleColors[kind]
	if !ok {
		color = consoleColors[Info]
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	fmt.Fprintf(c.W, "%s[%s]\033[0m %s\n", color, kind, text)
}
