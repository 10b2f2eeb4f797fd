package timeline

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Timeline is the ordered element list; order is playback order
type Timeline []Element

// Normalize returns a copy with every invariant that can be repaired repaired:
// non-positive or NaN durations become zero, unknown enums fall back to defaults,
// density, opacity and jitter are clamped, and missing ids are generated.
func (t Timeline) Normalize() Timeline {
	out := make(Timeline, len(t))
	for i, el := range t {
		out[i] = NormalizeElement(el)
	}
	return out
}

// NormalizeElement repairs a single element, see Timeline.Normalize
func NormalizeElement(el Element) Element {
	if el.ID == "" {
		el.ID = uuid.NewString()
	}
	el.Kind = ParseKind(string(el.Kind))
	el.Style = ParseStyle(string(el.Style))
	el.Sketch.Brush = ParseBrush(string(el.Sketch.Brush))
	el.Sketch.Strategy = ParseStrategy(string(el.Sketch.Strategy))

	el.AnimateDuration = nonNegative(el.AnimateDuration)
	el.PauseDuration = nonNegative(el.PauseDuration)
	el.TransitionDuration = nonNegative(el.TransitionDuration)

	if !(el.Sketch.Density > 0) || math.IsInf(el.Sketch.Density, 0) {
		el.Sketch.Density = DefaultDensity
	}
	if el.Sketch.Opacity != nil {
		o := clamp(*el.Sketch.Opacity, 0, 1)
		el.Sketch.Opacity = &o
	}
	el.Sketch.Jitter = clamp(nonNegative(el.Sketch.Jitter), 0, MaxJitter)
	return el
}

// Validate reports elements that cannot be framed or revealed.
// The engine tolerates them; hosts may choose to reject them.
func (t Timeline) Validate() error {
	var errs []error
	seen := make(map[string]int, len(t))
	for i, el := range t {
		if !(el.Width > 0) || !(el.Height > 0) {
			errs = append(errs, fmt.Errorf("element %d (%s): size %.1fx%.1f must be positive", i, el.ID, el.Width, el.Height))
		}
		if el.ID != "" {
			if j, dup := seen[el.ID]; dup {
				errs = append(errs, fmt.Errorf("element %d: duplicate id %q (first at %d)", i, el.ID, j))
			}
			seen[el.ID] = i
		}
	}
	return errors.Join(errs...)
}

// TotalDuration is the playback length in seconds when nothing is paused
func (t Timeline) TotalDuration() float64 {
	total := 0.0
	for _, el := range t {
		total += nonNegative(el.AnimateDuration) + nonNegative(el.PauseDuration) + nonNegative(el.TransitionDuration)
	}
	return total
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}
