package engine

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
)

const DefaultFPS = 30

// Runner ведет сессию по реальным часам, один кадр на тик
type Runner struct {
	Session   *Session
	Clock     clock.Clock
	FPS       int
	ViewportW float64
	ViewportH float64

	// OnFrame получает каждый кадр; необязательно
	OnFrame func(FrameState)

	last    time.Time
	started bool
	frames  int
}

// NewRunner создает Runner на системных часах
func NewRunner(s *Session, fps int, viewportW, viewportH float64) *Runner {
	return &Runner{
		Session:   s,
		Clock:     clock.New(),
		FPS:       fps,
		ViewportW: viewportW,
		ViewportH: viewportH,
	}
}

// Interval - время между кадрами
func (r *Runner) Interval() time.Duration {
	fps := r.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}
	return time.Second / time.Duration(fps)
}

// Step сдвигает сессию на время с прошлого шага и выдает кадр.
// Первый шаг только выдает кадр.
func (r *Runner) Step() time.Duration {
	now := r.Clock.Now()
	var dt time.Duration
	if r.started {
		dt = now.Sub(r.last)
	}
	r.last, r.started = now, true

	if dt > 0 {
		r.Session.Advance(dt)
	}
	r.frames++
	if r.OnFrame != nil {
		r.OnFrame(r.Session.Frame(r.ViewportW, r.ViewportH))
	}
	return dt
}

// Frames - число выданных кадров
func (r *Runner) Frames() int {
	return r.frames
}

// Run делает шаг на каждый тик, пока воспроизведение не закончится или ctx не отменен
func (r *Runner) Run(ctx context.Context) error {
	ticker := r.Clock.Ticker(r.Interval())
	defer ticker.Stop()

	r.Step()
	for {
		if r.Session.State().Finished() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.Step()
		}
	}
}
