package director

import (
	"github.com/ivlev/sketchplay/internal/timeline"
)

const Version = "1.0"

// Storyboard is the YAML document a player session is opened from
type Storyboard struct {
	Version  string    `yaml:"version"`
	Canvas   Canvas    `yaml:"canvas"`
	Elements []Element `yaml:"elements"`
}

// Canvas describes the drawing surface
type Canvas struct {
	Width   float64 `yaml:"width"`
	Height  float64 `yaml:"height"`
	Texture string  `yaml:"texture,omitempty"` // paper | whiteboard | blueprint
}

// Element is one storyboard entry, see timeline.Element
type Element struct {
	ID      string `yaml:"id,omitempty"`
	Type    string `yaml:"type"`
	Content string `yaml:"content"`

	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	Rotation float64 `yaml:"rotation,omitempty"`

	Animate    float64 `yaml:"animate"`    // seconds
	Pause      float64 `yaml:"pause"`      // seconds
	Transition float64 `yaml:"transition"` // seconds

	Style      string  `yaml:"style,omitempty"`
	FontFamily string  `yaml:"font,omitempty"`
	Color      string  `yaml:"color,omitempty"`
	SketchMode bool    `yaml:"sketch_mode,omitempty"`
	Sketch     *Sketch `yaml:"sketch,omitempty"`
}

// Sketch holds the brush settings of a draw reveal
type Sketch struct {
	Brush    string   `yaml:"brush,omitempty"`
	Density  float64  `yaml:"density,omitempty"`
	Strategy string   `yaml:"strategy,omitempty"`
	Opacity  *float64 `yaml:"opacity,omitempty"`
	Jitter   float64  `yaml:"jitter,omitempty"`
}

// Timeline converts the storyboard into playback order. Values are
// passed through as written; the session normalizes them on open.
func (s *Storyboard) Timeline() timeline.Timeline {
	tl := make(timeline.Timeline, 0, len(s.Elements))
	for _, e := range s.Elements {
		el := timeline.Element{
			ID:                 e.ID,
			Kind:               timeline.Kind(e.Type),
			Content:            e.Content,
			X:                  e.X,
			Y:                  e.Y,
			Width:              e.Width,
			Height:             e.Height,
			Rotation:           e.Rotation,
			AnimateDuration:    e.Animate,
			PauseDuration:      e.Pause,
			TransitionDuration: e.Transition,
			Style:              timeline.Style(e.Style),
			FontFamily:         e.FontFamily,
			Color:              e.Color,
			SketchMode:         e.SketchMode,
		}
		if e.Sketch != nil {
			el.Sketch = timeline.Sketch{
				Brush:    timeline.Brush(e.Sketch.Brush),
				Density:  e.Sketch.Density,
				Strategy: timeline.Strategy(e.Sketch.Strategy),
				Opacity:  e.Sketch.Opacity,
				Jitter:   e.Sketch.Jitter,
			}
		}
		tl = append(tl, el)
	}
	return tl
}

// FromTimeline builds a storyboard document for tl on the given canvas
func FromTimeline(tl timeline.Timeline, canvas Canvas) *Storyboard {
	s := &Storyboard{Version: Version, Canvas: canvas, Elements: make([]Element, 0, len(tl))}
	for _, el := range tl {
		e := Element{
			ID:         el.ID,
			Type:       string(el.Kind),
			Content:    el.Content,
			X:          el.X,
			Y:          el.Y,
			Width:      el.Width,
			Height:     el.Height,
			Rotation:   el.Rotation,
			Animate:    el.AnimateDuration,
			Pause:      el.PauseDuration,
			Transition: el.TransitionDuration,
			Style:      string(el.Style),
			FontFamily: el.FontFamily,
			Color:      el.Color,
			SketchMode: el.SketchMode,
		}
		if sk := el.Sketch; sk != (timeline.Sketch{}) {
			e.Sketch = &Sketch{
				Brush:    string(sk.Brush),
				Density:  sk.Density,
				Strategy: string(sk.Strategy),
				Opacity:  sk.Opacity,
				Jitter:   sk.Jitter,
			}
		}
		s.Elements = append(s.Elements, e)
	}
	return s
}

// Bounds returns the canvas size, or the extent of the elements when unset
func (s *Storyboard) Bounds() timeline.Rect {
	if s.Canvas.Width > 0 && s.Canvas.Height > 0 {
		return timeline.Rect{W: s.Canvas.Width, H: s.Canvas.Height}
	}
	var r timeline.Rect
	for _, e := range s.Elements {
		r.W = max(r.W, e.X+e.Width)
		r.H = max(r.H, e.Y+e.Height)
	}
	return r
}
