package camera

import (
	"math"
	"testing"

	"github.com/ivlev/sketchplay/internal/stroke"
	"github.com/ivlev/sketchplay/internal/timeline"
)

func TestPlan(t *testing.T) {
	cam := Plan(timeline.Rect{X: 100, Y: 100, W: 200, H: 200}, 1000, 800)

	wantScale := math.Min(1000.0/300, 800.0/300)
	if math.Abs(cam.Scale-wantScale) > 1e-9 {
		t.Errorf("Expected scale %.4f, got %.4f", wantScale, cam.Scale)
	}
	if math.Abs(cam.Scale-2.667) > 0.001 {
		t.Errorf("Expected scale ~2.667, got %.4f", cam.Scale)
	}

	// the element midpoint lands on the viewport center
	mid := cam.Apply(stroke.Point{X: 200, Y: 200})
	if math.Abs(mid.X-500) > 1e-9 || math.Abs(mid.Y-400) > 1e-9 {
		t.Errorf("Expected midpoint at (500,400), got (%.3f,%.3f)", mid.X, mid.Y)
	}
}

func TestPlanDegenerate(t *testing.T) {
	tests := []struct {
		name string
		rect timeline.Rect
		w, h float64
	}{
		{"zero width", timeline.Rect{W: 0, H: 10}, 100, 100},
		{"zero height", timeline.Rect{W: 10, H: 0}, 100, 100},
		{"no viewport", timeline.Rect{W: 10, H: 10}, 0, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Plan(tt.rect, tt.w, tt.h); got != Identity() {
				t.Errorf("Expected identity, got %+v", got)
			}
		})
	}
}

func TestMove(t *testing.T) {
	a := Transform{Scale: 1, TranslateX: 0, TranslateY: 0}
	b := Transform{Scale: 3, TranslateX: 100, TranslateY: -50}
	m := Move{From: a, To: b}

	if got := m.At(0); got != a {
		t.Errorf("At(0) = %+v, want %+v", got, a)
	}
	if got := m.At(1); got != b {
		t.Errorf("At(1) = %+v, want %+v", got, b)
	}
	if got := m.At(0.5); math.Abs(got.Scale-2) > 1e-9 {
		t.Errorf("Eased midpoint should be halfway, got %+v", got)
	}
	// ease-in-out is slower than linear near the start
	if got := m.At(0.25); got.Scale >= Lerp(a, b, 0.25).Scale {
		t.Errorf("Expected eased scale below linear at t=0.25, got %.4f", got.Scale)
	}
	if got := m.At(7); got != b {
		t.Error("Progress should clamp to 1")
	}

	linear := Move{From: a, To: b, Ease: func(t float64) float64 { return t }}
	if got := linear.At(0.25); math.Abs(got.Scale-1.5) > 1e-9 {
		t.Errorf("Linear move at 0.25 = %.4f, want 1.5", got.Scale)
	}
}

func TestTrack(t *testing.T) {
	tl := timeline.Timeline{
		{X: 0, Y: 0, Width: 100, Height: 100, AnimateDuration: 1, PauseDuration: 1, TransitionDuration: 2},
		{X: 500, Y: 0, Width: 100, Height: 100, AnimateDuration: 1, PauseDuration: 0, TransitionDuration: 0},
	}
	tr := TrackFor(tl, 600, 600)

	first := Plan(tl[0].Bounds(), 600, 600)
	second := Plan(tl[1].Bounds(), 600, 600)

	tests := []struct {
		time float64
		want Transform
	}{
		{0, first},
		{1.5, first}, // holding while drawing/pausing
		{2, first},   // transition begins
		{4, second},  // transition ends
		{10, second},
	}
	for _, tt := range tests {
		got := tr.At(tt.time)
		if math.Abs(got.TranslateX-tt.want.TranslateX) > 1e-9 {
			t.Errorf("At(%.1f): translateX %.2f, want %.2f", tt.time, got.TranslateX, tt.want.TranslateX)
		}
	}

	mid := tr.At(3)
	if mid.TranslateX >= first.TranslateX || mid.TranslateX <= second.TranslateX {
		t.Errorf("At(3) should be between framings, got %.2f", mid.TranslateX)
	}
	t.Logf("Track keyframes: %d", len(tr.Keyframes))
}

func TestTrackEmpty(t *testing.T) {
	if got := (Track{}).At(1); got != Identity() {
		t.Errorf("Empty track should give identity, got %+v", got)
	}
}
