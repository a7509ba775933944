package fingerprint

import (
	"bytes"
	"encoding/json"
)

// Payload is the full set of signals. Field order is the serialisation
// order and is part of the identifier.
type Payload struct {
	UserAgent           string    `json:"userAgent"`
	Language            string    `json:"language"`
	Languages           []string  `json:"languages"`
	Platform            string    `json:"platform"`
	HardwareConcurrency int       `json:"hardwareConcurrency"`
	DeviceMemory        float64   `json:"deviceMemory"`
	Screen              Screen    `json:"screen"`
	Timezone            string    `json:"timezone"`
	TimezoneOffset      int       `json:"timezoneOffset"`
	Viewport            Viewport  `json:"viewport"`
	Features            Features  `json:"features"`
	CanvasFingerprint   string    `json:"canvasFingerprint"`
	WebGLFingerprint    WebGLInfo `json:"webglFingerprint"`
	Fonts               []string  `json:"fonts"`
	Plugins             []Plugin  `json:"plugins"`
}

const (
	WebGLNotSupported = "webgl_not_supported"
	WebGLError        = "webgl_error"
	CanvasError       = "canvas_error"
)

// WebGLInfo is either an error marker or the renderer parameters.
type WebGLInfo struct {
	Error                  string
	Vendor                 string
	Renderer               string
	Version                string
	ShadingLanguageVersion string
	UnmaskedVendor         *string
	UnmaskedRenderer       *string
}

type webglParams struct {
	Vendor                 string  `json:"vendor"`
	Renderer               string  `json:"renderer"`
	Version                string  `json:"version"`
	ShadingLanguageVersion string  `json:"shadingLanguageVersion"`
	UnmaskedVendor         *string `json:"unmaskedVendor"`
	UnmaskedRenderer       *string `json:"unmaskedRenderer"`
}

type webglFailure struct {
	Error string `json:"error"`
}

func (w WebGLInfo) MarshalJSON() ([]byte, error) {
	if w.Error != "" {
		return encode(webglFailure{Error: w.Error}, "")
	}
	return encode(webglParams{
		Vendor:                 w.Vendor,
		Renderer:               w.Renderer,
		Version:                w.Version,
		ShadingLanguageVersion: w.ShadingLanguageVersion,
		UnmaskedVendor:         w.UnmaskedVendor,
		UnmaskedRenderer:       w.UnmaskedRenderer,
	}, "")
}

// Canonical returns the serialised payload the identifier is hashed from:
// two-space indentation, no HTML escaping, no trailing newline.
func Canonical(p Payload) ([]byte, error) {
	if p.Languages == nil {
		p.Languages = []string{}
	}
	if p.Fonts == nil {
		p.Fonts = []string{}
	}
	if p.Plugins == nil {
		p.Plugins = []Plugin{}
	}
	return encode(p, "  ")
}

func encode(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
