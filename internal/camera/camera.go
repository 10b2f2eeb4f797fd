package camera

import (
	"math"

	"github.com/ivlev/sketchplay/internal/stroke"
	"github.com/ivlev/sketchplay/internal/timeline"
)

// Margin is how much larger than the element the framed area is on each axis
const Margin = 1.5

// Transform is a uniform scale followed by a translation, in viewport pixels
type Transform struct {
	Scale      float64
	TranslateX float64
	TranslateY float64
}

// Identity is the neutral camera used when no element is active
func Identity() Transform {
	return Transform{Scale: 1}
}

// Apply maps a canvas point into viewport space
func (t Transform) Apply(p stroke.Point) stroke.Point {
	return stroke.Point{
		X: p.X*t.Scale + t.TranslateX,
		Y: p.Y*t.Scale + t.TranslateY,
	}
}

// Plan frames rect centered in the viewport with a 50% margin on each axis.
// A degenerate rectangle or viewport yields the identity transform.
func Plan(rect timeline.Rect, viewportW, viewportH float64) Transform {
	if rect.Empty() || !(viewportW > 0) || !(viewportH > 0) {
		return Identity()
	}

	scale := math.Min(viewportW/(rect.W*Margin), viewportH/(rect.H*Margin))
	cx, cy := rect.Center()

	return Transform{
		Scale:      scale,
		TranslateX: viewportW/2 - cx*scale,
		TranslateY: viewportH/2 - cy*scale,
	}
}

// Lerp interpolates every component between a and b
func Lerp(a, b Transform, t float64) Transform {
	return Transform{
		Scale:      lerp(a.Scale, b.Scale, t),
		TranslateX: lerp(a.TranslateX, b.TranslateX, t),
		TranslateY: lerp(a.TranslateY, b.TranslateY, t),
	}
}

// Move is an eased camera move between two framings
type Move struct {
	From, To Transform
	Ease     func(float64) float64
}

// At returns the camera at progress t in [0,1]
func (m Move) At(t float64) Transform {
	t = clamp01(t)
	ease := m.Ease
	if ease == nil {
		ease = EaseInOutCubic
	}
	return Lerp(m.From, m.To, ease(t))
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp01(t float64) float64 {
	if math.IsNaN(t) || t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
