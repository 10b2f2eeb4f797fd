package engine

import (
	"math"
	"testing"
	"time"

	"github.com/ivlev/sketchplay/internal/camera"
	"github.com/ivlev/sketchplay/internal/playback"
	"github.com/ivlev/sketchplay/internal/stroke"
	"github.com/ivlev/sketchplay/internal/timeline"
)

const vw, vh = 1000.0, 800.0

func threeElements() timeline.Timeline {
	tl := make(timeline.Timeline, 3)
	for i := range tl {
		tl[i] = timeline.Element{
			ID:                 string(rune('a' + i)),
			Kind:               timeline.KindImage,
			Style:              timeline.StyleDraw,
			X:                  float64(i) * 300,
			Y:                  100,
			Width:              200,
			Height:             200,
			AnimateDuration:    1,
			PauseDuration:      0.5,
			TransitionDuration: 0.5,
		}
	}
	return tl
}

func near(a, b camera.Transform) bool {
	return math.Abs(a.Scale-b.Scale) < 1e-9 &&
		math.Abs(a.TranslateX-b.TranslateX) < 1e-9 &&
		math.Abs(a.TranslateY-b.TranslateY) < 1e-9
}

func TestSessionPlaysThrough(t *testing.T) {
	var trace []playback.Transition
	s := NewSession(Options{OnTransition: func(tr playback.Transition) { trace = append(trace, tr) }})
	s.Open(threeElements())

	elapsed := time.Duration(0)
	for !s.State().Finished() {
		if elapsed > time.Minute {
			t.Fatal("Playback never finished")
		}
		s.Advance(100 * time.Millisecond)
		elapsed += 100 * time.Millisecond
	}

	if elapsed != 6*time.Second {
		t.Errorf("Expected playback to take 6s, took %v", elapsed)
	}
	if len(trace) != 9 || !trace[8].Done {
		t.Errorf("Expected 9 transitions ending in completion, got %d", len(trace))
	}

	fs := s.Frame(vw, vh)
	if fs.Camera != camera.Identity() {
		t.Errorf("Finished playback should reset the camera, got %+v", fs.Camera)
	}
	for _, ef := range fs.Elements {
		if ef.State != Done || ef.Reveal != 1 {
			t.Errorf("Element %d: expected done and revealed, got %v %.2f", ef.Index, ef.State, ef.Reveal)
		}
	}
	if fs.HasCursor {
		t.Error("No cursor after completion")
	}
	if fs.Playback.Running || fs.Playback.Index != 3 {
		t.Errorf("Unexpected final state: %+v", fs.Playback)
	}
}

func TestSessionRenderStates(t *testing.T) {
	s := NewSession(Options{})
	s.Open(threeElements())
	s.Advance(2500 * time.Millisecond) // element 1, halfway drawing

	fs := s.Frame(vw, vh)
	want := []RenderState{Done, Drawing, Waiting}
	for i, ef := range fs.Elements {
		if ef.State != want[i] {
			t.Errorf("Element %d: state %v, want %v", i, ef.State, want[i])
		}
	}

	active := fs.Elements[1]
	if math.Abs(active.Reveal-0.5) > 1e-9 {
		t.Errorf("Expected reveal 0.5, got %f", active.Reveal)
	}
	if active.Path == nil || !active.Masked {
		t.Error("Drawing element should carry its stroke path")
	}
	if fs.Elements[2].Reveal != 0 || fs.Elements[2].Visible() {
		t.Error("Waiting element must be hidden")
	}
	if fs.Elements[0].Path != nil {
		t.Error("Done element needs no path")
	}

	if !fs.HasCursor {
		t.Fatal("Expected a cursor while drawing")
	}
	if fs.Camera != camera.Plan(threeElements()[1].Bounds(), vw, vh) {
		t.Errorf("Camera should frame the active element, got %+v", fs.Camera)
	}
	t.Logf("cursor at (%.1f, %.1f)", fs.Cursor.X, fs.Cursor.Y)
}

func TestSessionCameraTransition(t *testing.T) {
	tl := threeElements()
	s := NewSession(Options{})
	s.Open(tl)

	first := camera.Plan(tl[0].Bounds(), vw, vh)
	second := camera.Plan(tl[1].Bounds(), vw, vh)

	// the next element is not framed before the transition starts
	s.Advance(1400 * time.Millisecond)
	if got := s.Frame(vw, vh).Camera; !near(got, first) {
		t.Errorf("Camera moved before transitioning: %+v", got)
	}

	s.Advance(350 * time.Millisecond) // halfway through the transition
	got := s.Frame(vw, vh).Camera
	mid := camera.Lerp(first, second, 0.5)
	if !near(got, mid) {
		t.Errorf("Expected eased midpoint %+v, got %+v", mid, got)
	}

	// the last element eases back to the full canvas
	s.Advance(4 * time.Second) // 5.75s: element 2 transitioning, halfway
	last := camera.Plan(tl[2].Bounds(), vw, vh)
	got = s.Frame(vw, vh).Camera
	if !near(got, camera.Lerp(last, camera.Identity(), 0.5)) {
		t.Errorf("Expected camera halfway back to identity, got %+v", got)
	}
}

func TestSessionViewportReflow(t *testing.T) {
	tl := threeElements()
	s := NewSession(Options{})
	s.Open(tl)

	a := s.Frame(1000, 800).Camera
	b := s.Frame(500, 400).Camera
	if math.Abs(b.Scale-a.Scale/2) > 1e-9 {
		t.Errorf("Camera must follow the viewport: %.4f vs %.4f", a.Scale, b.Scale)
	}
}

func TestSessionEntrances(t *testing.T) {
	tl := timeline.Timeline{
		{ID: "fade", Kind: timeline.KindImage, Style: timeline.StyleFadeIn, Width: 100, Height: 100, AnimateDuration: 2},
		{ID: "text", Kind: timeline.KindText, Style: timeline.StyleDraw, Width: 100, Height: 100, AnimateDuration: 2},
		{ID: "odd", Kind: timeline.KindImage, Style: "wiggle", Width: 100, Height: 100, AnimateDuration: 2},
	}
	s := NewSession(Options{})
	s.Open(tl)
	s.Advance(500 * time.Millisecond)

	fs := s.Frame(vw, vh)
	fade := fs.Elements[0]
	if fade.Masked || fade.Path != nil || fs.HasCursor {
		t.Error("Fade-in has no stroke path and no cursor")
	}
	if math.Abs(fade.Appearance.Opacity-0.25) > 1e-9 {
		t.Errorf("Expected opacity 0.25, got %f", fade.Appearance.Opacity)
	}

	s.Advance(2 * time.Second) // text drawing, 0.5s in
	fs = s.Frame(vw, vh)
	if fs.Elements[1].Masked || fs.HasCursor {
		t.Error("Text always fades in")
	}

	s.Advance(2 * time.Second) // unknown style drawing
	fs = s.Frame(vw, vh)
	if !fs.Elements[2].Masked || !fs.HasCursor {
		t.Error("Unknown style should fall back to draw")
	}
}

func TestSessionDegenerateElement(t *testing.T) {
	tl := timeline.Timeline{{ID: "flat", Style: timeline.StyleDraw, Width: 0, Height: 50, AnimateDuration: 1}}
	s := NewSession(Options{})
	s.Open(tl)
	s.Advance(200 * time.Millisecond)

	fs := s.Frame(vw, vh)
	ef := fs.Elements[0]
	if ef.State != Drawing || ef.Reveal != 1 || ef.Path != nil {
		t.Errorf("Degenerate element should show fully revealed, got %+v", ef)
	}
	if fs.HasCursor {
		t.Error("Degenerate element must not show a cursor")
	}
	if fs.Camera != camera.Identity() {
		t.Errorf("Degenerate element should not be framed, got %+v", fs.Camera)
	}
}

func TestSessionEmptyTimeline(t *testing.T) {
	s := NewSession(Options{})
	s.Open(nil)

	st := s.State()
	if !st.Finished() || st.Running {
		t.Errorf("Empty timeline should finish at once, got %+v", st)
	}
	if fs := s.Frame(vw, vh); len(fs.Elements) != 0 || fs.Camera != camera.Identity() {
		t.Errorf("Unexpected frame: %+v", fs)
	}
}

func TestSessionCloseCancelsTimers(t *testing.T) {
	fired := 0
	s := NewSession(Options{OnTransition: func(playback.Transition) { fired++ }})
	s.Open(threeElements())
	s.Advance(900 * time.Millisecond)
	s.Close()
	s.Advance(10 * time.Second)

	if fired != 0 {
		t.Errorf("Expected no transitions after close, got %d", fired)
	}
	if st := s.State(); st.Open || st.Running {
		t.Errorf("Expected a closed session, got %+v", st)
	}
	if len(s.Timeline()) != 0 {
		t.Error("Close should drop the timeline")
	}
}

func TestSessionReopen(t *testing.T) {
	s := NewSession(Options{})
	s.Open(threeElements())
	s.Advance(4 * time.Second)

	s.Open(threeElements()[:1])
	st := s.State()
	if st.Index != 0 || st.Phase != playback.Drawing || st.Count != 1 || st.Elapsed != 0 {
		t.Errorf("Reopen should start fresh, got %+v", st)
	}
}

func TestSessionRestart(t *testing.T) {
	fired := 0
	s := NewSession(Options{OnTransition: func(playback.Transition) { fired++ }})
	s.Open(threeElements())
	s.Advance(3200 * time.Millisecond)

	s.Restart()
	fired = 0
	st := s.State()
	if st.Index != 0 || st.Phase != playback.Drawing || !st.Running {
		t.Fatalf("Restart should reset to element 0 drawing, got %+v", st)
	}

	// exactly one transition per boundary from here on
	s.Advance(999 * time.Millisecond)
	if fired != 0 {
		t.Errorf("Stale timer fired %d times after restart", fired)
	}
	s.Advance(time.Millisecond)
	if fired != 1 {
		t.Errorf("Expected one transition at 1s, got %d", fired)
	}
}

func TestSessionPausedFrame(t *testing.T) {
	s := NewSession(Options{})
	s.Open(threeElements())
	s.Advance(500 * time.Millisecond)
	s.Pause()
	s.Advance(time.Second)

	fs := s.Frame(vw, vh)
	if fs.Elements[0].State != Drawing || math.Abs(fs.Elements[0].Reveal-0.5) > 1e-9 {
		t.Errorf("Paused element should hold its progress, got %v %.2f", fs.Elements[0].State, fs.Elements[0].Reveal)
	}
	if !fs.HasCursor {
		t.Error("Cursor stays on screen while paused")
	}

	s.Toggle()
	if st := s.State(); !st.Running || st.Elapsed != 0 {
		t.Errorf("Resume restarts the phase by default, got %+v", st)
	}
}

func TestSessionSetTimeline(t *testing.T) {
	s := NewSession(Options{})
	s.Open(threeElements())
	s.Advance(4200 * time.Millisecond) // element 2 drawing

	s.SetTimeline(threeElements()[:2])
	st := s.State()
	if st.Index != 1 || st.Count != 2 {
		t.Errorf("Expected the index clamped to 1, got %+v", st)
	}
	if fs := s.Frame(vw, vh); len(fs.Elements) != 2 {
		t.Errorf("Frame should follow the new timeline, got %d elements", len(fs.Elements))
	}

	s.SetTimeline(nil)
	if st := s.State(); !st.Finished() {
		t.Errorf("Empty timeline should finish playback, got %+v", st)
	}

	closed := NewSession(Options{})
	closed.SetTimeline(threeElements())
	if len(closed.Timeline()) != 0 {
		t.Error("SetTimeline on a closed session is a no-op")
	}
}

func TestSessionNormalizesInput(t *testing.T) {
	tl := timeline.Timeline{{Style: timeline.StyleDraw, Width: 10, Height: 10, AnimateDuration: -3, PauseDuration: -1, TransitionDuration: -1}}
	s := NewSession(Options{})
	s.Open(tl)
	s.Advance(0)

	if !s.State().Finished() {
		t.Error("Negative durations should complete in the same tick")
	}
	if got := s.Timeline(); got[0].ID == "" {
		t.Error("Missing ids should be generated")
	}
}

func TestRenderStateString(t *testing.T) {
	if Waiting.String() != "waiting" || Done.String() != "done" || RenderState(42).String() != "unknown" {
		t.Error("unexpected render state names")
	}
}

func TestSessionCursorFollowsPlainPath(t *testing.T) {
	tl := threeElements()
	tl[0].Sketch.Jitter = 6

	s := NewSession(Options{})
	s.Open(tl)
	s.Advance(400 * time.Millisecond)
	fs := s.Frame(vw, vh)
	if !fs.HasCursor {
		t.Fatal("Expected a cursor while drawing")
	}

	el := s.Timeline()[0]
	plain := stroke.Generate(el.Width, el.Height, el.Sketch.Density, timeline.ParseStrategy(string(el.Sketch.Strategy)))
	p := plain.PointAt(0.4 * plain.Length())
	x, y := el.Place(p.X, p.Y)
	want := fs.Camera.Apply(stroke.Point{X: x, Y: y})
	if math.Abs(fs.Cursor.X-want.X) > 1e-6 || math.Abs(fs.Cursor.Y-want.Y) > 1e-6 {
		t.Errorf("Cursor at (%.2f, %.2f), want (%.2f, %.2f) on the plain path", fs.Cursor.X, fs.Cursor.Y, want.X, want.Y)
	}

	mask := fs.Elements[0].Path
	if mask == nil || mask.Length() == plain.Length() {
		t.Error("The mask should still stroke the jittered path")
	}
}
