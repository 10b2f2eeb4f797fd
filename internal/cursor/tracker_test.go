package cursor

import (
	"math"
	"testing"
	"time"

	"github.com/ivlev/sketchplay/internal/camera"
	"github.com/ivlev/sketchplay/internal/playback"
	"github.com/ivlev/sketchplay/internal/stroke"
	"github.com/ivlev/sketchplay/internal/timeline"
)

func drawElement() timeline.Element {
	return timeline.Element{
		ID:              "a",
		Kind:            timeline.KindImage,
		Style:           timeline.StyleDraw,
		X:               10,
		Y:               20,
		Width:           100,
		Height:          40,
		AnimateDuration: 2,
		Sketch:          timeline.Sketch{Strategy: timeline.StrategyScanVertical},
	}
}

func drive(t *testing.T, el timeline.Element) (*playback.Sequencer, *Tracker, *stroke.Path) {
	t.Helper()
	seq := playback.NewSequencer(playback.RestartPhase)
	seq.Open([]playback.Durations{playback.Seconds(el.AnimateDuration, 1, 0)})
	path := stroke.NewCache(0).ForElement(el)
	tr := New()
	tr.Update(0, el, path, seq.State(), 0)
	return seq, tr, path
}

func step(seq *playback.Sequencer, tr *Tracker, el timeline.Element, path *stroke.Path, dt time.Duration) {
	seq.Advance(dt)
	tr.Update(0, el, path, seq.State(), dt)
}

func TestTrackerFollowsPath(t *testing.T) {
	el := drawElement()
	seq, tr, path := drive(t, el)

	if tr.Length() != 340 {
		t.Fatalf("Expected measured length 340, got %f", tr.Length())
	}

	p, ok := tr.Point(camera.Identity())
	if !ok || p != (stroke.Point{X: 10, Y: 20}) {
		t.Errorf("Expected cursor at the element origin, got %+v %v", p, ok)
	}

	for i := 0; i < 10; i++ {
		step(seq, tr, el, path, 100*time.Millisecond)
	}
	if math.Abs(tr.Progress()-0.5) > 1e-9 {
		t.Errorf("Expected progress 0.5 after 1s of 2s, got %f", tr.Progress())
	}

	// halfway along 340 is 170: middle of the second row, y = 20
	cam := camera.Transform{Scale: 2, TranslateX: 5, TranslateY: -5}
	p, ok = tr.Point(cam)
	want := stroke.Point{X: (10+50)*2 + 5, Y: (20+20)*2 - 5}
	if !ok || math.Abs(p.X-want.X) > 1e-9 || math.Abs(p.Y-want.Y) > 1e-9 {
		t.Errorf("Point = %+v, want %+v", p, want)
	}
}

func TestTrackerStopsOutsideDrawing(t *testing.T) {
	el := drawElement()
	seq, tr, path := drive(t, el)

	step(seq, tr, el, path, 2*time.Second)
	if seq.State().Phase != playback.Pausing {
		t.Fatalf("Expected pausing, got %v", seq.State().Phase)
	}
	if _, ok := tr.Point(camera.Identity()); ok {
		t.Error("Cursor must not render while pausing")
	}
	if tr.Progress() != 0 {
		t.Error("Progress must be discarded on phase change")
	}
}

func TestTrackerResetsOnRestart(t *testing.T) {
	el := drawElement()
	seq, tr, path := drive(t, el)

	step(seq, tr, el, path, 1500*time.Millisecond)
	seq.Restart()
	tr.Update(0, el, path, seq.State(), 0)

	if tr.Progress() != 0 {
		t.Errorf("Expected progress 0 after restart, got %f", tr.Progress())
	}
}

func TestTrackerPaused(t *testing.T) {
	el := drawElement()
	seq, tr, path := drive(t, el)

	step(seq, tr, el, path, 500*time.Millisecond)
	seq.Pause()
	step(seq, tr, el, path, time.Second)

	if math.Abs(tr.Progress()-0.25) > 1e-9 {
		t.Errorf("Progress must hold while paused, got %f", tr.Progress())
	}
}

func TestTrackerIgnoresNonDrawStyles(t *testing.T) {
	tests := []struct {
		name string
		edit func(*timeline.Element)
	}{
		{"fade-in", func(e *timeline.Element) { e.Style = timeline.StyleFadeIn }},
		{"pop-up", func(e *timeline.Element) { e.Style = timeline.StylePopUp }},
		{"text", func(e *timeline.Element) { e.Kind = timeline.KindText }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el := drawElement()
			tt.edit(&el)
			_, tr, _ := drive(t, el)
			if _, ok := tr.Point(camera.Identity()); ok {
				t.Error("Cursor should only follow draw elements")
			}
		})
	}
}

func TestTrackerDegeneratePath(t *testing.T) {
	el := drawElement()
	el.Width = 0
	_, tr, _ := drive(t, el)

	if _, ok := tr.Point(camera.Identity()); ok {
		t.Error("Zero-length path must render nothing")
	}

	var nilPath *stroke.Path
	tr.Update(0, drawElement(), nilPath, playback.State{Open: true, Count: 1}, 0)
	if _, ok := tr.Point(camera.Identity()); ok {
		t.Error("Unmeasured path must render nothing")
	}
}

func TestTrackerRemeasuresOnElementChange(t *testing.T) {
	el := drawElement()
	seq, tr, path := drive(t, el)

	bigger := el
	bigger.Width = 200
	bigPath := stroke.Generate(200, 40, 1, timeline.StrategyScanVertical)
	tr.Update(0, bigger, bigPath, seq.State(), 0)

	if tr.Length() == path.Length() {
		t.Error("Expected a new measurement for the resized element")
	}
	if tr.Length() != bigPath.Length() {
		t.Errorf("Length = %f, want %f", tr.Length(), bigPath.Length())
	}
}
