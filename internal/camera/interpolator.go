package camera

import (
	"math"

	"github.com/ivlev/sketchplay/internal/timeline"
)

// Keyframe is a framed rectangle at a point in time
type Keyframe struct {
	Time float64 // seconds
	Rect timeline.Rect
}

// Track computes the camera for a viewport by interpolating keyframes.
// Used to preview a whole timeline as a continuous camera path.
type Track struct {
	Keyframes []Keyframe
	ViewportW float64
	ViewportH float64
}

// TrackFor builds one keyframe at the start and end of every element's
// transition, so the camera holds while drawing and eases while transitioning.
func TrackFor(tl timeline.Timeline, viewportW, viewportH float64) Track {
	track := Track{ViewportW: viewportW, ViewportH: viewportH}
	now := 0.0
	for _, el := range tl {
		hold := nonNegative(el.AnimateDuration) + nonNegative(el.PauseDuration)
		track.Keyframes = append(track.Keyframes, Keyframe{Time: now, Rect: el.Bounds()})
		now += hold
		track.Keyframes = append(track.Keyframes, Keyframe{Time: now, Rect: el.Bounds()})
		now += nonNegative(el.TransitionDuration)
	}
	return track
}

// At returns the camera at time t (seconds)
func (tr Track) At(t float64) Transform {
	kfs := tr.Keyframes
	if len(kfs) == 0 {
		return Identity()
	}

	if t <= kfs[0].Time {
		return Plan(kfs[0].Rect, tr.ViewportW, tr.ViewportH)
	}
	last := kfs[len(kfs)-1]
	if t >= last.Time {
		return Plan(last.Rect, tr.ViewportW, tr.ViewportH)
	}

	// Find surrounding keyframes
	var prev, next Keyframe
	for i := 0; i < len(kfs)-1; i++ {
		if t >= kfs[i].Time && t < kfs[i+1].Time {
			prev, next = kfs[i], kfs[i+1]
			break
		}
	}

	delta := next.Time - prev.Time
	if delta == 0 {
		delta = 0.001 // Avoid division by zero
	}

	m := Move{
		From: Plan(prev.Rect, tr.ViewportW, tr.ViewportH),
		To:   Plan(next.Rect, tr.ViewportW, tr.ViewportH),
	}
	return m.At((t - prev.Time) / delta)
}

// EaseInOutCubic starts slow, speeds up, then slows down
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}
