package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Collector gathers a Payload from a Probe and derives the stable user
// identifier from it.
type Collector struct {
	probe  Probe
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Collector
type Option func(*Collector)

// WithClock sets the time source used by the fallback identifier
func WithClock(now func() time.Time) Option {
	return func(c *Collector) {
		c.now = now
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collector) {
		c.logger = logger
	}
}

func NewCollector(probe Probe, opts ...Option) *Collector {
	c := &Collector{
		probe:  probe,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect reads every signal. Canvas and WebGL failures are folded into
// their markers; any other failure is returned.
func (c *Collector) Collect() (p Payload, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fingerprint probe panicked: %v", r)
		}
	}()

	if c.probe == nil {
		return Payload{}, fmt.Errorf("fingerprint: no probe")
	}

	nav := c.probe.Navigator()
	languages := nav.Languages
	if languages == nil {
		languages = []string{}
	}
	tz, offset := c.probe.Timezone()

	p = Payload{
		UserAgent:           nav.UserAgent,
		Language:            nav.Language,
		Languages:           languages,
		Platform:            nav.Platform,
		HardwareConcurrency: nav.HardwareConcurrency,
		DeviceMemory:        nav.DeviceMemory,
		Screen:              c.probe.Screen(),
		Timezone:            tz,
		TimezoneOffset:      offset,
		Viewport:            c.probe.Viewport(),
		Features:            c.probe.Features(),
		CanvasFingerprint:   canvasSignal(c.probe),
		WebGLFingerprint:    webglSignal(c.probe),
		Fonts:               fontSignal(c.probe),
		Plugins:             pluginSignal(c.probe),
	}
	return p, nil
}

// DeriveUserID returns the SHA-256 hex digest of the canonical payload. If
// collection fails for any reason it returns a random fallback digest; it
// never panics and always returns 64 hex characters.
func (c *Collector) DeriveUserID() (id string) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Failed to derive user id", "error", r)
			id = c.fallback()
		}
	}()

	p, err := c.Collect()
	if err != nil {
		c.logger.Error("Failed to derive user id", "error", err)
		return c.fallback()
	}
	data, err := Canonical(p)
	if err != nil {
		c.logger.Error("Failed to serialise fingerprint", "error", err)
		return c.fallback()
	}
	return Hash(data)
}

func (c *Collector) fallback() string {
	return Hash([]byte(fmt.Sprintf("fallback_%d_%s", c.timestamp(), uuid.NewString())))
}

// timestamp falls back to the wall clock if the configured clock panics
func (c *Collector) timestamp() (ts int64) {
	ts = time.Now().UnixMilli()
	defer func() {
		_ = recover()
	}()
	if c.now != nil {
		ts = c.now().UnixMilli()
	}
	return ts
}

// DeriveUserID derives the identifier for probe with default settings
func DeriveUserID(probe Probe) string {
	return NewCollector(probe).DeriveUserID()
}

// Hash returns the lowercase SHA-256 hex digest of data
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
