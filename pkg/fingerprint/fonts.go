package fingerprint

import (
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

var genericFamilies = map[string]bool{
	"monospace":  true,
	"serif":      true,
	"sans-serif": true,
	"cursive":    true,
	"fantasy":    true,
	"system-ui":  true,
}

var fontExtensions = map[string]bool{
	".ttf": true,
	".otf": true,
	".ttc": true,
}

// fontProbe measures text with the font files found under dirs. Families
// are matched by their name table entry or by file name, case-insensitively.
// Generic and unknown families render with the basic face.
type fontProbe struct {
	dirs []string

	once  sync.Once
	index map[string]string

	mu    sync.Mutex
	fonts map[string]*opentype.Font
}

func newFontProbe(dirs []string) *fontProbe {
	return &fontProbe{dirs: dirs}
}

func (p *fontProbe) Measure(text, family string, sizePx float64) (float64, float64, error) {
	if sizePx <= 0 {
		return 0, 0, fmt.Errorf("invalid font size %v", sizePx)
	}
	p.once.Do(p.scan)

	for _, name := range splitFamilies(family) {
		if genericFamilies[name] {
			break
		}
		path, ok := p.index[name]
		if !ok {
			continue
		}
		f, err := p.font(path)
		if err != nil {
			continue
		}
		face, err := opentype.NewFace(f, &opentype.FaceOptions{
			Size:    sizePx,
			DPI:     72,
			Hinting: font.HintingNone,
		})
		if err != nil {
			continue
		}
		w, h := measureFace(face, text)
		face.Close()
		return w, h, nil
	}

	return measureBasic(text, sizePx)
}

func (p *fontProbe) scan() {
	p.index = make(map[string]string)
	for _, dir := range p.dirs {
		if dir == "" {
			continue
		}
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			ext := strings.ToLower(filepath.Ext(path))
			if d.IsDir() || !fontExtensions[ext] {
				return nil
			}
			p.add(strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))), path)
			if f, err := loadFont(path); err == nil {
				if family, err := f.Name(nil, sfnt.NameIDFamily); err == nil && family != "" {
					p.add(strings.ToLower(family), path)
				}
			}
			return nil
		})
	}
}

// font returns the parsed font at path, parsing it on first use
func (p *fontProbe) font(path string) (*opentype.Font, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if f, ok := p.fonts[path]; ok {
		return f, nil
	}
	f, err := loadFont(path)
	if err != nil {
		return nil, err
	}
	if p.fonts == nil {
		p.fonts = make(map[string]*opentype.Font)
	}
	p.fonts[path] = f
	return f, nil
}

func (p *fontProbe) add(name, path string) {
	if _, ok := p.index[name]; !ok {
		p.index[name] = path
	}
}

// loadFont parses a font file; collections yield their first font
func loadFont(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".ttc") {
		coll, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, err
		}
		return coll.Font(0)
	}
	return opentype.Parse(data)
}

func measureFace(face font.Face, text string) (float64, float64) {
	m := face.Metrics()
	return float64(font.MeasureString(face, text).Ceil()), float64((m.Ascent + m.Descent).Ceil())
}

// measureBasic scales the 7x13 face to sizePx
func measureBasic(text string, sizePx float64) (float64, float64, error) {
	w, h := measureFace(basicfont.Face7x13, text)
	scale := sizePx / float64(basicfont.Face7x13.Height)
	return math.Round(w * scale), math.Round(h * scale), nil
}

func splitFamilies(family string) []string {
	var out []string
	for _, part := range strings.Split(family, ",") {
		name := strings.ToLower(strings.Trim(strings.TrimSpace(part), `"'`))
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}
