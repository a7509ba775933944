package fingerprint

import "errors"

// ErrUnsupported is returned by a Probe when the host has no such API.
var ErrUnsupported = errors.New("fingerprint: not supported by host")

// Probe is the environment the fingerprint is read from. Each method covers
// one family of signals so hosts and tests can supply them independently.
type Probe interface {
	Navigator() NavigatorInfo
	Screen() Screen
	Viewport() Viewport
	// Timezone returns the IANA zone name and the offset in minutes as a
	// browser reports it (UTC minus local, so UTC+8 is -480).
	Timezone() (name string, offsetMinutes int)
	Features() Features
	NewCanvas(width, height int) (Canvas, error)
	NewGLContext() (GLContext, error)
	NewTextProbe() (TextProbe, error)
	Plugins() ([]Plugin, error)
}

// NavigatorInfo holds the basic identity signals of the client
type NavigatorInfo struct {
	UserAgent           string
	Language            string
	Languages           []string
	Platform            string
	HardwareConcurrency int
	DeviceMemory        float64
}

type Screen struct {
	Width       int `json:"width"`
	Height      int `json:"height"`
	AvailWidth  int `json:"availWidth"`
	AvailHeight int `json:"availHeight"`
	ColorDepth  int `json:"colorDepth"`
	PixelDepth  int `json:"pixelDepth"`
}

type Viewport struct {
	Width       int `json:"width"`
	Height      int `json:"height"`
	OuterWidth  int `json:"outerWidth"`
	OuterHeight int `json:"outerHeight"`
}

// Features are capability flags. DoNotTrack is nil when the host does not
// report a preference.
type Features struct {
	CookieEnabled  bool    `json:"cookieEnabled"`
	DoNotTrack     *string `json:"doNotTrack"`
	OnLine         bool    `json:"onLine"`
	JavaEnabled    bool    `json:"javaEnabled"`
	Webdriver      bool    `json:"webdriver"`
	LocalStorage   bool    `json:"localStorage"`
	SessionStorage bool    `json:"sessionStorage"`
	IndexedDB      bool    `json:"indexedDB"`
	WebGL          bool    `json:"webGL"`
	Canvas         bool    `json:"canvas"`
}

type Plugin struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Filename    string `json:"filename"`
	Version     string `json:"version"`
}

// Canvas is a 2D drawing surface with the subset of operations the canvas
// signal needs. Style and font strings use CSS syntax.
type Canvas interface {
	SetTextBaseline(baseline string)
	SetFont(font string)
	SetFillStyle(style string)
	FillRect(x, y, width, height float64)
	FillText(text string, x, y float64)
	ToDataURL() (string, error)
}

// GLContext exposes the WebGL parameters read by the webgl signal.
type GLContext interface {
	Vendor() string
	Renderer() string
	Version() string
	ShadingLanguageVersion() string
	// DebugRendererInfo returns the unmasked vendor and renderer; ok is
	// false when the debug extension is unavailable.
	DebugRendererInfo() (vendor, renderer string, ok bool)
}

// TextProbe measures rendered text. family is a CSS font-family list such
// as "Arial, monospace".
type TextProbe interface {
	Measure(text, family string, sizePx float64) (width, height float64, err error)
}
