package fingerprint

import (
	"errors"
	"sort"
	"strings"
)

const (
	canvasWidth  = 200
	canvasHeight = 50

	fontTestString = "mmmmmmmmmmlli"
	fontTestSize   = 72
	fontBaseline   = "monospace"
)

// candidateFonts are the families probed for presence
var candidateFonts = []string{
	"Arial", "Arial Black", "Comic Sans MS", "Courier New", "Georgia", "Helvetica",
	"Impact", "Lucida Console", "Lucida Sans Unicode", "Palatino Linotype",
	"Tahoma", "Times New Roman", "Trebuchet MS", "Verdana", "Times",
	"Monaco", "Menlo", "Consolas", "Inconsolata", "Source Code Pro",
	"Microsoft YaHei", "SimSun", "SimHei", "KaiTi", "FangSong",
}

// CandidateFonts returns a copy of the probed font families
func CandidateFonts() []string {
	out := make([]string, len(candidateFonts))
	copy(out, candidateFonts)
	return out
}

// canvasSignal draws the fixed scene and returns its data URI. Any failure,
// panics included, yields CanvasError.
func canvasSignal(p Probe) (uri string) {
	defer func() {
		if r := recover(); r != nil {
			uri = CanvasError
		}
	}()

	cv, err := p.NewCanvas(canvasWidth, canvasHeight)
	if err != nil || cv == nil {
		return CanvasError
	}

	cv.SetTextBaseline("top")
	cv.SetFont("14px Arial")
	cv.SetFillStyle("#f60")
	cv.FillRect(125, 1, 62, 20)

	cv.SetFillStyle("#069")
	cv.FillText("Hello, World! 🌍", 2, 15)

	cv.SetFillStyle("rgba(102, 204, 0, 0.7)")
	cv.FillText("CCXC Fingerprint", 4, 30)

	uri, err = cv.ToDataURL()
	if err != nil {
		return CanvasError
	}
	return uri
}

// webglSignal reads the renderer parameters. A missing context is
// WebGLNotSupported, anything else that goes wrong is WebGLError.
func webglSignal(p Probe) (info WebGLInfo) {
	defer func() {
		if r := recover(); r != nil {
			info = WebGLInfo{Error: WebGLError}
		}
	}()

	gl, err := p.NewGLContext()
	if errors.Is(err, ErrUnsupported) || (err == nil && gl == nil) {
		return WebGLInfo{Error: WebGLNotSupported}
	}
	if err != nil {
		return WebGLInfo{Error: WebGLError}
	}

	info = WebGLInfo{
		Vendor:                 gl.Vendor(),
		Renderer:               gl.Renderer(),
		Version:                gl.Version(),
		ShadingLanguageVersion: gl.ShadingLanguageVersion(),
	}
	if vendor, renderer, ok := gl.DebugRendererInfo(); ok {
		info.UnmaskedVendor = &vendor
		info.UnmaskedRenderer = &renderer
	}
	return info
}

// fontSignal returns the candidate families whose rendering differs from the
// monospace baseline, sorted.
func fontSignal(p Probe) []string {
	detected := []string{}

	tp, err := p.NewTextProbe()
	if err != nil || tp == nil {
		return detected
	}

	baseWidth, baseHeight, err := tp.Measure(fontTestString, fontBaseline, fontTestSize)
	if err != nil {
		return detected
	}

	for _, family := range candidateFonts {
		w, h, err := tp.Measure(fontTestString, family+", "+fontBaseline, fontTestSize)
		if err != nil {
			continue
		}
		if w != baseWidth || h != baseHeight {
			detected = append(detected, family)
		}
	}
	sort.Strings(detected)
	return detected
}

// pluginSignal returns the plugin list sorted by name
func pluginSignal(p Probe) []Plugin {
	plugins, err := p.Plugins()
	if err != nil || len(plugins) == 0 {
		return []Plugin{}
	}

	out := make([]Plugin, len(plugins))
	copy(out, plugins)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.Compare(out[i].Name, out[j].Name) < 0
	})
	return out
}
