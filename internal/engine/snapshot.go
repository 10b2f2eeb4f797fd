package engine

import (
	"context"
	"fmt"
	"image"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/sketchplay/internal/logging"
	"github.com/ivlev/sketchplay/internal/timeline"
)

// FrameRenderer превращает кадр в пиксели
type FrameRenderer interface {
	Render(fs FrameState) (*image.RGBA, error)
}

// Still - один отрисованный снимок
type Still struct {
	At    time.Duration
	Frame FrameState
	Image *image.RGBA
}

// SnapshotJob описывает пачку снимков одного таймлайна
type SnapshotJob struct {
	Timeline  timeline.Timeline
	Options   Options
	Times     []time.Duration
	ViewportW float64
	ViewportH float64
	Workers   int
}

// Snapshot параллельно рисует снимки в заданные моменты. Каждый воркер
// проигрывает свою сессию до своего момента, поэтому результат не зависит
// от планировщика. Порядок совпадает с Times.
func Snapshot(ctx context.Context, job SnapshotJob, r FrameRenderer) ([]Still, error) {
	workers := job.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	stills := make([]Still, len(job.Times))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, at := range job.Times {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fs := FrameAt(job.Timeline, job.Options, at, job.ViewportW, job.ViewportH)
			img, err := r.Render(fs)
			if err != nil {
				return fmt.Errorf("render at %v: %w", at, err)
			}
			stills[i] = Still{At: at, Frame: fs, Image: img}
			logging.Logger().Debug("snapshot rendered", "at", at, "index", fs.Playback.Index)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stills, nil
}

// FrameAt проигрывает новую сессию до at и возвращает кадр
func FrameAt(tl timeline.Timeline, opts Options, at time.Duration, viewportW, viewportH float64) FrameState {
	opts.OnTransition = nil
	s := NewSession(opts)
	s.Open(tl)
	if at > 0 {
		s.Advance(at)
	}
	return s.Frame(viewportW, viewportH)
}

// Every возвращает моменты от 0 до total включительно с шагом step
func Every(total, step time.Duration) []time.Duration {
	if step <= 0 {
		return []time.Duration{0}
	}
	var out []time.Duration
	for t := time.Duration(0); t < total; t += step {
		out = append(out, t)
	}
	return append(out, total)
}
