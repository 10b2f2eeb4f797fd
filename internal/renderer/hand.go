package renderer

import (
	"image"
	"math"

	"github.com/gogpu/gg"

	"github.com/ivlev/sketchplay/internal/stroke"
)

// DefaultHandSize is the pencil length in viewport pixels
const DefaultHandSize = 96.0

// handBounds is the box the pencil and its shadow can reach from p
func handBounds(p stroke.Point, size float64) image.Rectangle {
	if size <= 0 {
		size = DefaultHandSize
	}
	r := size * 1.2
	return image.Rect(
		int(math.Floor(p.X-r)), int(math.Floor(p.Y-r)),
		int(math.Ceil(p.X+r)), int(math.Ceil(p.Y+r)),
	)
}

// drawHand paints a pencil whose tip sits on p, tilted like a right hand
func drawHand(dc *gg.Context, p stroke.Point, size float64) {
	if size <= 0 {
		size = DefaultHandSize
	}
	tip := size * 0.18
	width := size * 0.14

	dc.Push()
	defer dc.Pop()
	dc.Translate(p.X, p.Y)
	dc.Rotate(-math.Pi / 4)

	// shadow
	dc.SetRGBA(0, 0, 0, 0.15)
	dc.DrawEllipse(size*0.55, width*0.9, size*0.45, width*0.6)
	_ = dc.Fill()

	// sharpened wood and graphite point
	dc.SetHexColor("#e8c89a")
	dc.MoveTo(0, 0)
	dc.LineTo(tip, -width/2)
	dc.LineTo(tip, width/2)
	dc.ClosePath()
	_ = dc.Fill()

	dc.SetHexColor("#333333")
	dc.MoveTo(0, 0)
	dc.LineTo(tip*0.35, -width*0.18)
	dc.LineTo(tip*0.35, width*0.18)
	dc.ClosePath()
	_ = dc.Fill()

	// body and eraser
	dc.SetHexColor("#f2b705")
	dc.DrawRectangle(tip, -width/2, size-tip-width, width)
	_ = dc.Fill()

	dc.SetHexColor("#e07a7a")
	dc.DrawRectangle(size-width, -width/2, width, width)
	_ = dc.Fill()
}
