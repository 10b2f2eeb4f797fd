package effects

import (
	"math"

	"github.com/ivlev/sketchplay/internal/timeline"
)

// MoveInDistance is how far left of its place a move-in element starts
const MoveInDistance = 100.0

// Appearance is how an element looks at some point of its entrance
type Appearance struct {
	Opacity float64
	Scale   float64 // about the element center
	OffsetX float64 // canvas units
	OffsetY float64
}

// Visible is the resting appearance after the entrance finished
func Visible() Appearance {
	return Appearance{Opacity: 1, Scale: 1}
}

// Hidden is the appearance of an element that has not started
func Hidden() Appearance {
	return Appearance{Opacity: 0, Scale: 1}
}

// Entrance animates an element in during its drawing phase
type Entrance interface {
	Style() timeline.Style
	// At returns the appearance at linear progress in [0,1]
	At(progress float64) Appearance
	// Masked reports whether the content is revealed through the stroke mask
	Masked() bool
}

// DrawEffect reveals content through the hand-drawn stroke mask
type DrawEffect struct{}

func (e *DrawEffect) Style() timeline.Style { return timeline.StyleDraw }
func (e *DrawEffect) At(float64) Appearance { return Visible() }
func (e *DrawEffect) Masked() bool          { return true }

// MoveInEffect slides content in from the left while fading it in
type MoveInEffect struct {
	Distance float64
}

func (e *MoveInEffect) Style() timeline.Style { return timeline.StyleMoveIn }
func (e *MoveInEffect) Masked() bool          { return false }

func (e *MoveInEffect) At(progress float64) Appearance {
	t := clamp01(progress)
	d := e.Distance
	if d == 0 {
		d = MoveInDistance
	}
	return Appearance{Opacity: t, Scale: 1, OffsetX: -d * (1 - t)}
}

// FadeInEffect raises opacity from 0 to 1
type FadeInEffect struct{}

func (e *FadeInEffect) Style() timeline.Style { return timeline.StyleFadeIn }
func (e *FadeInEffect) Masked() bool          { return false }

func (e *FadeInEffect) At(progress float64) Appearance {
	return Appearance{Opacity: clamp01(progress), Scale: 1}
}

// PopUpEffect grows content from nothing while fading it in
type PopUpEffect struct{}

func (e *PopUpEffect) Style() timeline.Style { return timeline.StylePopUp }
func (e *PopUpEffect) Masked() bool          { return false }

func (e *PopUpEffect) At(progress float64) Appearance {
	t := clamp01(progress)
	return Appearance{Opacity: t, Scale: t}
}

// New returns the entrance for a style, falling back to draw
func New(style timeline.Style) Entrance {
	switch timeline.ParseStyle(string(style)) {
	case timeline.StyleMoveIn:
		return &MoveInEffect{Distance: MoveInDistance}
	case timeline.StyleFadeIn:
		return &FadeInEffect{}
	case timeline.StylePopUp:
		return &PopUpEffect{}
	default:
		return &DrawEffect{}
	}
}

// ForElement selects the entrance once per element.
// Text has no stroke path and always fades in.
func ForElement(el timeline.Element) Entrance {
	if el.Kind == timeline.KindText {
		return &FadeInEffect{}
	}
	return New(el.Style)
}

// ForTimeline builds the entrance table of a timeline, index aligned
func ForTimeline(tl timeline.Timeline) []Entrance {
	out := make([]Entrance, len(tl))
	for i, el := range tl {
		out[i] = ForElement(el)
	}
	return out
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
