package fingerprint

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// HostProbe reads signals from the machine the client runs on. Signals a
// browser would report but a process cannot observe are either configured
// or left at their zero value.
type HostProbe struct {
	userAgent string
	screen    Screen
	viewport  Viewport
	fontDirs  []string
	fonts     *fontProbe
	getenv    func(string) string
	location  *time.Location
	now       func() time.Time
}

// HostOption configures a HostProbe
type HostOption func(*HostProbe)

// WithUserAgent sets the reported user agent
func WithUserAgent(ua string) HostOption {
	return func(h *HostProbe) {
		h.userAgent = ua
	}
}

// WithScreen sets the reported screen and viewport size
func WithScreen(width, height int) HostOption {
	return func(h *HostProbe) {
		if width <= 0 || height <= 0 {
			return
		}
		h.screen = Screen{
			Width:       width,
			Height:      height,
			AvailWidth:  width,
			AvailHeight: height,
			ColorDepth:  24,
			PixelDepth:  24,
		}
		h.viewport = Viewport{
			Width:       width,
			Height:      height,
			OuterWidth:  width,
			OuterHeight: height,
		}
	}
}

// WithFontDirs replaces the system font directories
func WithFontDirs(dirs ...string) HostOption {
	return func(h *HostProbe) {
		h.fontDirs = dirs
	}
}

// WithEnv sets the environment lookup, os.Getenv by default
func WithEnv(getenv func(string) string) HostOption {
	return func(h *HostProbe) {
		h.getenv = getenv
	}
}

// WithLocation sets the local time zone, time.Local by default
func WithLocation(loc *time.Location) HostOption {
	return func(h *HostProbe) {
		h.location = loc
	}
}

func NewHostProbe(opts ...HostOption) *HostProbe {
	h := &HostProbe{
		getenv:   os.Getenv,
		location: time.Local,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.fontDirs == nil {
		h.fontDirs = systemFontDirs(h.getenv)
	}
	h.fonts = newFontProbe(h.fontDirs)
	if h.userAgent == "" {
		h.userAgent = DefaultUserAgent()
	}
	return h
}

// DefaultUserAgent identifies the Go client when no user agent is configured
func DefaultUserAgent() string {
	return "ccxc-client (" + hostPlatform() + ") " + runtime.Version()
}

func (h *HostProbe) Navigator() NavigatorInfo {
	lang := h.language()
	languages := []string{lang}
	if base, _, ok := strings.Cut(lang, "-"); ok {
		languages = append(languages, base)
	}
	return NavigatorInfo{
		UserAgent:           h.userAgent,
		Language:            lang,
		Languages:           languages,
		Platform:            hostPlatform(),
		HardwareConcurrency: runtime.NumCPU(),
	}
}

// language maps the POSIX locale to a BCP 47 tag, zh_CN.UTF-8 to zh-CN
func (h *HostProbe) language() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		v := h.getenv(key)
		if v == "" {
			continue
		}
		if i := strings.IndexAny(v, ".@"); i >= 0 {
			v = v[:i]
		}
		if v == "" || v == "C" || v == "POSIX" {
			break
		}
		return strings.ReplaceAll(v, "_", "-")
	}
	return "en-US"
}

func (h *HostProbe) Screen() Screen {
	return h.screen
}

func (h *HostProbe) Viewport() Viewport {
	return h.viewport
}

func (h *HostProbe) Timezone() (string, int) {
	loc := h.location
	if loc == nil {
		loc = time.UTC
	}
	_, offset := h.now().In(loc).Zone()
	return h.zoneName(loc), -offset / 60
}

// zoneName resolves "Local" to an IANA name from TZ or /etc/localtime
func (h *HostProbe) zoneName(loc *time.Location) string {
	name := loc.String()
	if name != "Local" {
		return name
	}
	if tz := strings.TrimPrefix(h.getenv("TZ"), ":"); tz != "" && !filepath.IsAbs(tz) {
		return tz
	}
	if target, err := os.Readlink("/etc/localtime"); err == nil {
		if _, zone, ok := strings.Cut(target, "zoneinfo/"); ok {
			return zone
		}
	}
	return "UTC"
}

func (h *HostProbe) Features() Features {
	return Features{
		CookieEnabled:  true,
		OnLine:         true,
		LocalStorage:   true,
		SessionStorage: true,
		Canvas:         true,
	}
}

func (h *HostProbe) NewCanvas(width, height int) (Canvas, error) {
	cv, err := newRasterCanvas(width, height)
	if err != nil {
		return nil, err
	}
	return cv, nil
}

// NewGLContext always fails; there is no GL context outside a browser.
func (h *HostProbe) NewGLContext() (GLContext, error) {
	return nil, ErrUnsupported
}

func (h *HostProbe) NewTextProbe() (TextProbe, error) {
	return h.fonts, nil
}

// Plugins always fails; there is no plugin registry outside a browser.
func (h *HostProbe) Plugins() ([]Plugin, error) {
	return nil, ErrUnsupported
}

var osNames = map[string]string{
	"linux":   "Linux",
	"darwin":  "MacIntel",
	"windows": "Win32",
	"freebsd": "FreeBSD",
}

var archNames = map[string]string{
	"amd64": "x86_64",
	"arm64": "aarch64",
	"386":   "i686",
}

// hostPlatform mimics navigator.platform, "Linux x86_64" and the like
func hostPlatform() string {
	osName, ok := osNames[runtime.GOOS]
	if !ok {
		osName = runtime.GOOS
	}
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		return osName
	}
	arch, ok := archNames[runtime.GOARCH]
	if !ok {
		arch = runtime.GOARCH
	}
	return osName + " " + arch
}

func systemFontDirs(getenv func(string) string) []string {
	home := getenv("HOME")
	switch runtime.GOOS {
	case "windows":
		root := getenv("WINDIR")
		if root == "" {
			root = `C:\Windows`
		}
		return []string{filepath.Join(root, "Fonts")}
	case "darwin":
		return []string{
			"/System/Library/Fonts",
			"/Library/Fonts",
			filepath.Join(home, "Library", "Fonts"),
		}
	default:
		return []string{
			"/usr/share/fonts",
			"/usr/local/share/fonts",
			filepath.Join(home, ".local", "share", "fonts"),
			filepath.Join(home, ".fonts"),
		}
	}
}
