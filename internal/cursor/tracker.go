package cursor

import (
	"time"

	"github.com/ivlev/sketchplay/internal/camera"
	"github.com/ivlev/sketchplay/internal/playback"
	"github.com/ivlev/sketchplay/internal/stroke"
	"github.com/ivlev/sketchplay/internal/timeline"
)

type pathKey struct {
	id    string
	index int
	path  stroke.Key
}

// Tracker follows the reveal path of the element being drawn.
// One tracker belongs to one playback session.
type Tracker struct {
	key    pathKey
	path   *stroke.Path
	length float64

	element  timeline.Element
	epoch    uint64
	progress float64
	active   bool
}

// New creates an idle tracker
func New() *Tracker {
	return &Tracker{}
}

// Update moves the tracker to the sequencer state after dt of session time.
// Progress is discarded whenever the element or the phase changes.
func (t *Tracker) Update(index int, el timeline.Element, path *stroke.Path, st playback.State, dt time.Duration) {
	if !st.Active() || st.Phase != playback.Drawing || !el.Draws() {
		t.Reset()
		return
	}

	key := pathKey{id: el.ID, index: index, path: stroke.KeyFor(el)}
	if !t.active || key != t.key || path != t.path {
		t.key = key
		t.path = path
		t.length = path.Length()
		t.epoch = st.Epoch - 1 // force a resync below
	}
	t.element = el
	t.active = true

	animate := playback.Seconds(el.AnimateDuration, 0, 0).Animate
	if animate <= 0 {
		t.progress = 1
		t.epoch = st.Epoch
		return
	}

	if st.Epoch != t.epoch {
		t.epoch = st.Epoch
		t.progress = float64(st.Elapsed) / float64(animate)
	} else if st.Running {
		t.progress += float64(dt) / float64(animate)
	}
	if t.progress > 1 {
		t.progress = 1
	}
}

// Reset cancels the progress animation
func (t *Tracker) Reset() {
	t.active = false
	t.progress = 0
}

// Progress returns the fraction of the path drawn so far
func (t *Tracker) Progress() float64 {
	if !t.active {
		return 0
	}
	return t.progress
}

// Length returns the measured path length, zero until a path is tracked
func (t *Tracker) Length() float64 {
	return t.length
}

// Point returns the cursor position in viewport space. Nothing is reported
// while idle or when the tracked path has no length.
func (t *Tracker) Point(cam camera.Transform) (stroke.Point, bool) {
	if !t.active || t.path == nil || t.length <= 0 {
		return stroke.Point{}, false
	}
	local := t.path.PointAt(t.progress * t.length)
	x, y := t.element.Place(local.X, local.Y)
	return cam.Apply(stroke.Point{X: x, Y: y}), true
}
