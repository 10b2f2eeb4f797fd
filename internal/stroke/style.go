package stroke

import "github.com/ivlev/sketchplay/internal/timeline"

// Cap is the shape of stroke endpoints
type Cap int

const (
	CapButt Cap = iota
	CapRound
	CapSquare
)

// Join is the shape of stroke corners
type Join int

const (
	JoinMiter Join = iota
	JoinRound
)

const (
	PencilWidth = 3.0
	MarkerWidth = 20.0
)

// Style describes how the reveal path is stroked into the mask
type Style struct {
	Width    float64
	Cap      Cap
	Join     Join
	Opacity  float64
	Jitter   float64
	Multiply bool // composite revealed content with a multiply blend
}

// StyleFor derives the stroke style from the element's brush settings.
// Pencil is thin and sharp, marker is thick and round.
func StyleFor(el timeline.Element) Style {
	s := Style{
		Width:    PencilWidth,
		Cap:      CapSquare,
		Join:     JoinMiter,
		Opacity:  el.BrushOpacity(),
		Jitter:   el.Sketch.Jitter,
		Multiply: true,
	}
	if timeline.ParseBrush(string(el.Sketch.Brush)) == timeline.BrushMarker {
		s.Width = MarkerWidth
		s.Cap = CapRound
		s.Join = JoinRound
	}
	return s
}
