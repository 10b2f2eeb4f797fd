package source

import (
	"fmt"
	"image"
	"math"
	"strings"
	"sync"

	"github.com/gogpu/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	// TextScale oversamples text so it stays sharp under camera zoom
	TextScale = 2.0
	// LineSpacing is the line height relative to the font size
	LineSpacing = 1.25

	DefaultInk = "#1a1a1a"
)

var (
	fontsOnce sync.Once
	fonts     map[string]*opentype.Font
	fontsErr  error
)

func loadFonts() {
	fonts = make(map[string]*opentype.Font)
	for name, ttf := range map[string][]byte{"regular": goregular.TTF, "bold": gobold.TTF, "mono": gomono.TTF} {
		f, err := opentype.Parse(ttf)
		if err != nil {
			fontsErr = fmt.Errorf("parse font %s: %w", name, err)
			return
		}
		fonts[name] = f
	}
}

// fontFor maps a CSS-like family name onto the bundled Go fonts
func fontFor(family string) (*opentype.Font, error) {
	fontsOnce.Do(loadFonts)
	if fontsErr != nil {
		return nil, fontsErr
	}
	f := strings.ToLower(family)
	switch {
	case strings.Contains(f, "mono"), strings.Contains(f, "courier"), strings.Contains(f, "code"):
		return fonts["mono"], nil
	case strings.Contains(f, "bold"), strings.Contains(f, "impact"), strings.Contains(f, "black"):
		return fonts["bold"], nil
	default:
		return fonts["regular"], nil
	}
}

// RenderText lays out text centered in a w×h box, shrinking the font until
// every line fits. Newlines start new lines; the background is transparent.
func RenderText(text, family, hex string, w, h float64) (image.Image, error) {
	pw, ph := int(math.Ceil(w*TextScale)), int(math.Ceil(h*TextScale))
	if pw <= 0 || ph <= 0 {
		return nil, fmt.Errorf("text box %.0fx%.0f is empty", w, h)
	}
	if hex == "" {
		hex = DefaultInk
	}

	ft, err := fontFor(family)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(text, "\n")
	size := float64(ph) / (float64(len(lines)) * LineSpacing)

	face, err := fitFace(ft, lines, size, float64(pw))
	if err != nil {
		return nil, err
	}
	defer face.Close()

	img := image.NewRGBA(image.Rect(0, 0, pw, ph))
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(gg.Hex(hex).Color()),
		Face: face,
	}

	m := face.Metrics()
	lineH := float64(m.Height.Ceil())
	if lineH <= 0 {
		lineH = size * LineSpacing
	}
	top := (float64(ph) - lineH*float64(len(lines))) / 2
	for i, line := range lines {
		adv := d.MeasureString(line)
		x := (float64(pw) - float64(adv.Ceil())) / 2
		y := top + float64(i)*lineH + float64(m.Ascent.Ceil())
		d.Dot = fixed.P(int(math.Round(x)), int(math.Round(y)))
		d.DrawString(line)
	}
	return img, nil
}

func fitFace(ft *opentype.Font, lines []string, size, maxW float64) (font.Face, error) {
	face, err := opentype.NewFace(ft, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}

	widest := 0
	for _, line := range lines {
		if adv := font.MeasureString(face, line).Ceil(); adv > widest {
			widest = adv
		}
	}
	if widest <= int(maxW) || widest == 0 {
		return face, nil
	}

	face.Close()
	return opentype.NewFace(ft, &opentype.FaceOptions{Size: size * maxW / float64(widest), DPI: 72, Hinting: font.HintingFull})
}
