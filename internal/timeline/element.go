package timeline

import (
	"fmt"
	"math"
	"strings"
)

// Kind is the content type of an element
type Kind string

const (
	KindImage Kind = "image"
	KindText  Kind = "text"
	KindShape Kind = "shape"
)

// Style selects the entrance animation of an element
type Style string

const (
	StyleDraw   Style = "draw"
	StyleMoveIn Style = "move-in"
	StyleFadeIn Style = "fade-in"
	StylePopUp  Style = "pop-up"
)

// Brush affects stroke width and line joins of the reveal, never the path geometry
type Brush string

const (
	BrushPencil Brush = "pencil"
	BrushMarker Brush = "marker"
)

// Strategy selects the path generation algorithm for the draw style
type Strategy string

const (
	StrategyOutlineFill  Strategy = "outline-fill"
	StrategyScanVertical Strategy = "scan-vertical"
	StrategyDiagonal     Strategy = "diagonal"
)

const (
	DefaultDensity = 1.0
	MaxJitter      = 10.0
)

// Sketch holds the parameters of the procedural stroke reveal.
// Zero values mean "use the default".
type Sketch struct {
	Brush    Brush
	Density  float64  // 0.5 loose .. 3.0 dense
	Strategy Strategy
	Opacity  *float64 // nil means fully opaque
	Jitter   float64  // 0..10
}

// Element is one unit of storyboard content
type Element struct {
	ID      string
	Kind    Kind
	Content string // image reference or literal text

	X, Y          float64
	Width, Height float64
	Rotation      float64 // degrees

	AnimateDuration    float64 // seconds
	PauseDuration      float64 // seconds
	TransitionDuration float64 // seconds

	Style      Style
	FontFamily string
	Color      string
	SketchMode bool
	Sketch     Sketch
}

// Rect is an axis-aligned rectangle in canvas coordinates
type Rect struct {
	X, Y, W, H float64
}

// Center returns the midpoint of the rectangle
func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Empty reports whether the rectangle has no area
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Bounds returns the element geometry without rotation
func (e Element) Bounds() Rect {
	return Rect{X: e.X, Y: e.Y, W: e.Width, H: e.Height}
}

// Place maps a point in element-local coordinates (origin at the top-left
// corner) to canvas coordinates, rotating about the element center.
func (e Element) Place(x, y float64) (float64, float64) {
	if e.Rotation == 0 {
		return e.X + x, e.Y + y
	}
	sin, cos := math.Sincos(e.Rotation * math.Pi / 180)
	dx, dy := x-e.Width/2, y-e.Height/2
	return e.X + e.Width/2 + dx*cos - dy*sin, e.Y + e.Height/2 + dx*sin + dy*cos
}

// Draws reports whether the element is revealed with a stroke path
func (e Element) Draws() bool {
	return e.Style == StyleDraw && e.Kind != KindText
}

// BrushOpacity returns the reveal stroke strength in [0,1]
func (e Element) BrushOpacity() float64 {
	if e.Sketch.Opacity == nil {
		return 1
	}
	return clamp(*e.Sketch.Opacity, 0, 1)
}

func (e Element) String() string {
	return fmt.Sprintf("%s(%s %.0fx%.0f@%.0f,%.0f)", e.Kind, shortID(e.ID), e.Width, e.Height, e.X, e.Y)
}

// ParseKind falls back to image for unknown values
func ParseKind(s string) Kind {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindText:
		return KindText
	case KindShape:
		return KindShape
	default:
		return KindImage
	}
}

// ParseStyle falls back to draw for unknown values
func ParseStyle(s string) Style {
	switch Style(strings.ToLower(strings.TrimSpace(s))) {
	case StyleMoveIn:
		return StyleMoveIn
	case StyleFadeIn:
		return StyleFadeIn
	case StylePopUp:
		return StylePopUp
	default:
		return StyleDraw
	}
}

// ParseBrush falls back to pencil for unknown values
func ParseBrush(s string) Brush {
	if Brush(strings.ToLower(strings.TrimSpace(s))) == BrushMarker {
		return BrushMarker
	}
	return BrushPencil
}

// ParseStrategy falls back to outline-fill for unknown values
func ParseStrategy(s string) Strategy {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyScanVertical:
		return StrategyScanVertical
	case StrategyDiagonal:
		return StrategyDiagonal
	default:
		return StrategyOutlineFill
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
