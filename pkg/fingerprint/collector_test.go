package fingerprint

import (
	"encoding/hex"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCanvas struct {
	ops     []string
	uri     string
	err     error
	panicOn string
}

func (c *fakeCanvas) do(op string) {
	if c.panicOn == op {
		panic("canvas " + op)
	}
	c.ops = append(c.ops, op)
}

func (c *fakeCanvas) SetTextBaseline(string)            { c.do("baseline") }
func (c *fakeCanvas) SetFont(string)                    { c.do("font") }
func (c *fakeCanvas) SetFillStyle(string)               { c.do("style") }
func (c *fakeCanvas) FillRect(_, _, _, _ float64)       { c.do("rect") }
func (c *fakeCanvas) FillText(string, float64, float64) { c.do("text") }
func (c *fakeCanvas) ToDataURL() (string, error) {
	c.do("url")
	return c.uri, c.err
}

type fakeGL struct {
	debug bool
	panic bool
}

func (g *fakeGL) Vendor() string {
	if g.panic {
		panic("lost context")
	}
	return "WebKit"
}
func (g *fakeGL) Renderer() string               { return "WebKit WebGL" }
func (g *fakeGL) Version() string                { return "WebGL 1.0" }
func (g *fakeGL) ShadingLanguageVersion() string { return "WebGL GLSL ES 1.0" }
func (g *fakeGL) DebugRendererInfo() (string, string, bool) {
	return "Intel Inc.", "Intel <Iris> & Co", g.debug
}

// fakeText reports the baseline size for every family except those listed
type fakeText struct {
	wider map[string]bool
}

func (f *fakeText) Measure(text, family string, size float64) (float64, float64, error) {
	first := strings.TrimSpace(strings.Split(family, ",")[0])
	if f.wider[first] {
		return 500, 80, nil
	}
	return 400, 80, nil
}

type fakeProbe struct {
	nav        NavigatorInfo
	screen     Screen
	viewport   Viewport
	tz         string
	offset     int
	features   Features
	canvas     Canvas
	canvasErr  error
	gl         GLContext
	glErr      error
	text       TextProbe
	textErr    error
	plugins    []Plugin
	pluginsErr error
	panicNav   bool
}

func (p *fakeProbe) Navigator() NavigatorInfo {
	if p.panicNav {
		panic("navigator unavailable")
	}
	return p.nav
}
func (p *fakeProbe) Screen() Screen                     { return p.screen }
func (p *fakeProbe) Viewport() Viewport                 { return p.viewport }
func (p *fakeProbe) Timezone() (string, int)            { return p.tz, p.offset }
func (p *fakeProbe) Features() Features                 { return p.features }
func (p *fakeProbe) NewCanvas(int, int) (Canvas, error) { return p.canvas, p.canvasErr }
func (p *fakeProbe) NewGLContext() (GLContext, error)   { return p.gl, p.glErr }
func (p *fakeProbe) NewTextProbe() (TextProbe, error)   { return p.text, p.textErr }
func (p *fakeProbe) Plugins() ([]Plugin, error)         { return p.plugins, p.pluginsErr }

func browserProbe() *fakeProbe {
	return &fakeProbe{
		nav: NavigatorInfo{
			UserAgent:           "Mozilla/5.0",
			Language:            "zh-CN",
			Languages:           []string{"zh-CN", "zh"},
			Platform:            "Linux x86_64",
			HardwareConcurrency: 8,
			DeviceMemory:        8,
		},
		screen:   Screen{Width: 1920, Height: 1080, AvailWidth: 1920, AvailHeight: 1040, ColorDepth: 24, PixelDepth: 24},
		viewport: Viewport{Width: 1280, Height: 720, OuterWidth: 1920, OuterHeight: 1040},
		tz:       "Asia/Shanghai",
		offset:   -480,
		features: Features{CookieEnabled: true, OnLine: true, LocalStorage: true, SessionStorage: true, IndexedDB: true, WebGL: true, Canvas: true},
		canvas:   &fakeCanvas{uri: "data:image/png;base64,AAAA"},
		gl:       &fakeGL{debug: true},
		text:     &fakeText{wider: map[string]bool{"Verdana": true, "Arial": true}},
		plugins: []Plugin{
			{Name: "PDF Viewer", Filename: "internal-pdf-viewer"},
			{Name: "Chrome PDF Viewer", Filename: "internal-pdf-viewer"},
		},
	}
}

func isHex64(s string) bool {
	if len(s) != 64 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil && strings.ToLower(s) == s
}

func TestDeriveUserID_Deterministic(t *testing.T) {
	first := DeriveUserID(browserProbe())
	second := DeriveUserID(browserProbe())

	assert.True(t, isHex64(first))
	assert.Equal(t, first, second)

	other := browserProbe()
	other.nav.UserAgent = "Mozilla/5.0 (other)"
	assert.NotEqual(t, first, DeriveUserID(other))
}

func TestDeriveUserID_MatchesCanonicalHash(t *testing.T) {
	c := NewCollector(browserProbe())
	p, err := c.Collect()
	require.NoError(t, err)
	data, err := Canonical(p)
	require.NoError(t, err)

	assert.Equal(t, Hash(data), c.DeriveUserID())
}

func TestDeriveUserID_Fallback(t *testing.T) {
	t.Run("PanickingProbe", func(t *testing.T) {
		probe := &fakeProbe{panicNav: true}
		a := DeriveUserID(probe)
		b := DeriveUserID(probe)
		assert.True(t, isHex64(a))
		assert.True(t, isHex64(b))
		assert.NotEqual(t, a, b, "fallback ids are random")
	})

	t.Run("NilProbe", func(t *testing.T) {
		assert.True(t, isHex64(DeriveUserID(nil)))
	})

	t.Run("PanickingClock", func(t *testing.T) {
		c := NewCollector(&fakeProbe{panicNav: true}, WithClock(func() time.Time { panic("no clock") }))
		assert.True(t, isHex64(c.DeriveUserID()))
	})
}

func TestCollect_AllAPIsAbsent(t *testing.T) {
	probe := &fakeProbe{
		canvasErr:  ErrUnsupported,
		glErr:      ErrUnsupported,
		textErr:    ErrUnsupported,
		pluginsErr: ErrUnsupported,
	}

	p, err := NewCollector(probe).Collect()
	require.NoError(t, err)
	assert.Equal(t, CanvasError, p.CanvasFingerprint)
	assert.Equal(t, WebGLInfo{Error: WebGLNotSupported}, p.WebGLFingerprint)
	assert.Equal(t, []string{}, p.Fonts)
	assert.Equal(t, []Plugin{}, p.Plugins)
	assert.Equal(t, []string{}, p.Languages)

	data, err := Canonical(p)
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, `"webglFingerprint": {
    "error": "webgl_not_supported"
  }`)
	assert.Contains(t, s, `"fonts": []`)
	assert.Contains(t, s, `"plugins": []`)
	assert.Contains(t, s, `"doNotTrack": null`)
}

func TestCanvasSignal(t *testing.T) {
	t.Run("DrawsFixedScene", func(t *testing.T) {
		cv := &fakeCanvas{uri: "data:image/png;base64,xyz"}
		assert.Equal(t, "data:image/png;base64,xyz", canvasSignal(&fakeProbe{canvas: cv}))
		assert.Equal(t, []string{"baseline", "font", "style", "rect", "style", "text", "style", "text", "url"}, cv.ops)
	})

	t.Run("Failures", func(t *testing.T) {
		assert.Equal(t, CanvasError, canvasSignal(&fakeProbe{canvasErr: errors.New("no 2d context")}))
		assert.Equal(t, CanvasError, canvasSignal(&fakeProbe{}))
		assert.Equal(t, CanvasError, canvasSignal(&fakeProbe{canvas: &fakeCanvas{err: errors.New("tainted")}}))
		assert.Equal(t, CanvasError, canvasSignal(&fakeProbe{canvas: &fakeCanvas{panicOn: "text"}}))
	})
}

func TestWebGLSignal(t *testing.T) {
	t.Run("WithDebugInfo", func(t *testing.T) {
		info := webglSignal(&fakeProbe{gl: &fakeGL{debug: true}})
		require.NotNil(t, info.UnmaskedVendor)
		require.NotNil(t, info.UnmaskedRenderer)
		assert.Equal(t, "Intel Inc.", *info.UnmaskedVendor)
		assert.Equal(t, "WebKit", info.Vendor)

		data, err := encode(info, "")
		require.NoError(t, err)
		assert.Equal(t, `{"vendor":"WebKit","renderer":"WebKit WebGL","version":"WebGL 1.0","shadingLanguageVersion":"WebGL GLSL ES 1.0","unmaskedVendor":"Intel Inc.","unmaskedRenderer":"Intel <Iris> & Co"}`, string(data))
	})

	t.Run("WithoutDebugInfo", func(t *testing.T) {
		info := webglSignal(&fakeProbe{gl: &fakeGL{}})
		assert.Nil(t, info.UnmaskedVendor)
		data, err := encode(info, "")
		require.NoError(t, err)
		assert.Contains(t, string(data), `"unmaskedVendor":null,"unmaskedRenderer":null`)
	})

	t.Run("Failures", func(t *testing.T) {
		assert.Equal(t, WebGLNotSupported, webglSignal(&fakeProbe{glErr: ErrUnsupported}).Error)
		assert.Equal(t, WebGLNotSupported, webglSignal(&fakeProbe{}).Error)
		assert.Equal(t, WebGLError, webglSignal(&fakeProbe{glErr: errors.New("context lost")}).Error)
		assert.Equal(t, WebGLError, webglSignal(&fakeProbe{gl: &fakeGL{panic: true}}).Error)
	})
}

func TestFontSignal(t *testing.T) {
	t.Run("DetectsAndSorts", func(t *testing.T) {
		got := fontSignal(&fakeProbe{text: &fakeText{wider: map[string]bool{"Verdana": true, "Arial": true, "SimSun": true}}})
		assert.Equal(t, []string{"Arial", "SimSun", "Verdana"}, got)
	})

	t.Run("IdenticalMetrics", func(t *testing.T) {
		assert.Equal(t, []string{}, fontSignal(&fakeProbe{text: &fakeText{}}))
	})

	t.Run("Unavailable", func(t *testing.T) {
		assert.Equal(t, []string{}, fontSignal(&fakeProbe{textErr: ErrUnsupported}))
	})

	assert.Len(t, CandidateFonts(), 25)
}

func TestPluginSignal(t *testing.T) {
	plugins := []Plugin{
		{Name: "b", Filename: "1"},
		{Name: "a", Filename: "2"},
		{Name: "b", Filename: "3"},
	}
	got := pluginSignal(&fakeProbe{plugins: plugins})
	assert.Equal(t, []Plugin{{Name: "a", Filename: "2"}, {Name: "b", Filename: "1"}, {Name: "b", Filename: "3"}}, got)
	assert.Equal(t, "b", plugins[0].Name, "input must not be reordered")

	assert.Equal(t, []Plugin{}, pluginSignal(&fakeProbe{pluginsErr: ErrUnsupported}))
}

func TestCanonical_KeyOrder(t *testing.T) {
	p, err := NewCollector(browserProbe()).Collect()
	require.NoError(t, err)
	data, err := Canonical(p)
	require.NoError(t, err)
	s := string(data)

	keys := []string{
		"userAgent", "language", "languages", "platform", "hardwareConcurrency",
		"deviceMemory", "screen", "timezone", "timezoneOffset", "viewport",
		"features", "canvasFingerprint", "webglFingerprint", "fonts", "plugins",
	}
	last := -1
	for _, k := range keys {
		idx := strings.Index(s, "\n  \""+k+"\": ")
		require.GreaterOrEqual(t, idx, 0, "missing key %s", k)
		assert.Greater(t, idx, last, "key %s out of order", k)
		last = idx
	}

	assert.True(t, strings.HasPrefix(s, "{\n  \"userAgent\": \"Mozilla/5.0\","))
	assert.False(t, strings.HasSuffix(s, "\n"))
	assert.Contains(t, s, `"unmaskedRenderer": "Intel <Iris> & Co"`)
	assert.Contains(t, s, `"deviceMemory": 8,`)
}

func TestHash(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Hash(nil))
}
