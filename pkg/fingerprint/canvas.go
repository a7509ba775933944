package fingerprint

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// rasterCanvas is a software Canvas drawing with the built-in 7x13 face.
// Font requests are recorded but every text run uses the basic face.
type rasterCanvas struct {
	img      *image.RGBA
	fill     color.Color
	font     string
	baseline string
	face     font.Face
}

func newRasterCanvas(width, height int) (*rasterCanvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", width, height)
	}
	return &rasterCanvas{
		img:      image.NewRGBA(image.Rect(0, 0, width, height)),
		fill:     color.Black,
		font:     "10px sans-serif",
		baseline: "alphabetic",
		face:     basicfont.Face7x13,
	}, nil
}

func (c *rasterCanvas) SetTextBaseline(baseline string) {
	c.baseline = baseline
}

func (c *rasterCanvas) SetFont(f string) {
	c.font = f
}

// SetFillStyle accepts #rgb, #rrggbb, rgb() and rgba(); anything else is
// ignored and the previous style kept.
func (c *rasterCanvas) SetFillStyle(style string) {
	if col, ok := parseColor(style); ok {
		c.fill = col
	}
}

func (c *rasterCanvas) FillRect(x, y, width, height float64) {
	r := image.Rect(
		int(math.Round(x)), int(math.Round(y)),
		int(math.Round(x+width)), int(math.Round(y+height)),
	).Intersect(c.img.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(c.img, r, image.NewUniform(c.fill), image.Point{}, draw.Over)
}

func (c *rasterCanvas) FillText(text string, x, y float64) {
	m := c.face.Metrics()
	dot := fixed.Point26_6{X: toFixed(x), Y: toFixed(y)}
	switch c.baseline {
	case "top", "hanging":
		dot.Y += m.Ascent
	case "middle":
		dot.Y += (m.Ascent - m.Descent) / 2
	case "bottom", "ideographic":
		dot.Y -= m.Descent
	}

	d := font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(c.fill),
		Face: c.face,
		Dot:  dot,
	}
	d.DrawString(text)
}

func (c *rasterCanvas) ToDataURL() (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, c.img); err != nil {
		return "", fmt.Errorf("failed to encode canvas: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}

func parseColor(style string) (color.Color, bool) {
	s := strings.ToLower(strings.TrimSpace(style))

	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) != 6 {
			return nil, false
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return nil, false
		}
		return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
	}

	var r, g, b int
	a := 1.0
	switch {
	case strings.HasPrefix(s, "rgba("):
		if _, err := fmt.Sscanf(s, "rgba(%d, %d, %d, %g)", &r, &g, &b, &a); err != nil {
			return nil, false
		}
	case strings.HasPrefix(s, "rgb("):
		if _, err := fmt.Sscanf(s, "rgb(%d, %d, %d)", &r, &g, &b); err != nil {
			return nil, false
		}
	default:
		return nil, false
	}
	return color.NRGBA{
		R: clampByte(float64(r)),
		G: clampByte(float64(g)),
		B: clampByte(float64(b)),
		A: clampByte(a * 255),
	}, true
}

func clampByte(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(v))))
}
