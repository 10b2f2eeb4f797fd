package renderer

import (
	"image"

	"github.com/gogpu/gg"

	"github.com/ivlev/sketchplay/internal/stroke"
)

func lineCap(c stroke.Cap) gg.LineCap {
	switch c {
	case stroke.CapRound:
		return gg.LineCapRound
	case stroke.CapSquare:
		return gg.LineCapSquare
	default:
		return gg.LineCapButt
	}
}

func lineJoin(j stroke.Join) gg.LineJoin {
	if j == stroke.JoinRound {
		return gg.LineJoinRound
	}
	return gg.LineJoinMiter
}

// RevealMask rasterizes the drawn part of path into a w×h alpha mask.
// Path coordinates are in element units and scale by k to mask pixels.
// The brush is white at the style opacity, so partially revealed content
// shows through at that strength.
func RevealMask(path *stroke.Path, style stroke.Style, reveal float64, w, h int, k float64) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	if w <= 0 || h <= 0 || reveal <= 0 {
		return mask
	}

	polylines := path.Prefix(reveal * path.Length())
	if len(polylines) == 0 {
		return mask
	}

	dc := gg.NewContext(w, h)
	defer dc.Close()

	dc.SetRGBA(1, 1, 1, style.Opacity)
	dc.SetLineWidth(style.Width * k)
	dc.SetLineCap(lineCap(style.Cap))
	dc.SetLineJoin(lineJoin(style.Join))
	for _, line := range polylines {
		dc.MoveTo(line[0].X*k, line[0].Y*k)
		for _, q := range line[1:] {
			dc.LineTo(q.X*k, q.Y*k)
		}
	}
	if err := dc.Stroke(); err != nil {
		return mask
	}
	if err := dc.FlushGPU(); err != nil {
		return mask
	}

	copy(mask.Pix, gg.NewMaskFromAlpha(dc.Image()).Data())
	return mask
}
