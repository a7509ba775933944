package notification

import (
	"sync"
	"time"
)

// Sent is one recorded notification
type Sent struct {
	Kind     Kind
	Text     string
	Duration time.Duration
}

// MockNotifier records notifications for tests
type MockNotifier struct {
	mutex             sync.Mutex
	SentNotifications []Sent
}

func (m *MockNotifier) Notify(kind Kind, text string, duration time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.SentNotifications = append(m.SentNotifications, Sent{Kind: kind, Text: text, Duration: duration})
}

// All returns a copy of the recorded notifications
func (m *MockNotifier) All() []Sent {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	out := make([]Sent, len(m.SentNotifications))
	copy(out, m.SentNotifications)
	return out
}
