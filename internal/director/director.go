package director

import (
	"context"
	"fmt"
	"image"
	"math"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/sketchplay/internal/analyzer"
	"github.com/ivlev/sketchplay/internal/logging"
	"github.com/ivlev/sketchplay/internal/source"
	"github.com/ivlev/sketchplay/internal/timeline"
)

// Share of each element's dwell spent in every phase
const (
	AnimateShare    = 0.6
	PauseShare      = 0.25
	TransitionShare = 0.15

	// Variation is the maximum change of dwell from one page to the next
	Variation = 0.15
	// BlockWeight is the extra dwell a detected block adds, relative to an empty page
	BlockWeight = 0.1
	MaxWeight   = 3.0
)

// Director composes storyboards from multi-page sources. Pages are laid out
// left to right at a common height; each becomes one draw element whose
// dwell time and brush follow what the analyzer found on it.
type Director struct {
	PageHeight float64 // canvas units
	Gap        float64 // canvas units between pages
	MinDwell   float64 // seconds per page
	MaxDwell   float64
	DPI        int // analysis resolution for PDF pages
	Texture    string
	Detector   analyzer.Detector // nil skips analysis
	Seed       uint64
}

// NewDirector creates a new Director with default settings
func NewDirector() *Director {
	return &Director{
		PageHeight: 720,
		Gap:        80,
		MinDwell:   2.0,
		MaxDwell:   8.0,
		DPI:        72,
		Texture:    "paper",
		Detector:   analyzer.NewContrastDetector(),
		Seed:       1,
	}
}

// Page is what composition needs to know about one source page
type Page struct {
	Ref           string
	Width, Height float64
	Blocks        []analyzer.Block
}

// Analyze measures every page of src and, with a detector, finds its content
// blocks in reading order. Pages are rendered in parallel.
func (d *Director) Analyze(ctx context.Context, src source.Source, workers int) ([]Page, error) {
	n := src.PageCount()
	if n == 0 {
		return nil, fmt.Errorf("source has no pages")
	}
	if workers <= 0 {
		workers = 4
	}

	pages := make([]Page, n)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range pages {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			w, h, err := src.GetPageDimensions(i)
			if err != nil {
				return fmt.Errorf("page %d: %w", i+1, err)
			}
			pages[i] = Page{Ref: src.Path(i), Width: w, Height: h}
			if d.Detector == nil {
				return nil
			}

			img, err := src.RenderPage(i, d.DPI)
			if err != nil {
				return fmt.Errorf("page %d: %w", i+1, err)
			}
			blocks, err := d.Detector.Detect(img)
			if err != nil {
				logging.Logger().Warn("analysis failed, composing without blocks", "page", i+1, "err", err)
				return nil
			}

			// blocks are found in rendered pixels, pages are measured in points
			b := img.Bounds()
			pages[i].Blocks = rescale(analyzer.ReadingOrder(blocks), w/float64(b.Dx()), h/float64(b.Dy()))
			logging.Logger().Debug("page analyzed", "page", i+1, "blocks", len(blocks))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pages, nil
}

func rescale(blocks []analyzer.Block, kx, ky float64) []analyzer.Block {
	if kx == 1 && ky == 1 {
		return blocks
	}
	for i := range blocks {
		r := blocks[i].Rect
		r.Min.X = int(math.Floor(float64(r.Min.X) * kx))
		r.Min.Y = int(math.Floor(float64(r.Min.Y) * ky))
		r.Max.X = int(math.Ceil(float64(r.Max.X) * kx))
		r.Max.Y = int(math.Ceil(float64(r.Max.Y) * ky))
		blocks[i].Rect = r
	}
	return blocks
}

// Compose builds the storyboard for pages. A positive total spreads that
// many seconds over the pages before the per-page clamp; otherwise each
// page gets the middle of the dwell range.
func (d *Director) Compose(pages []Page, total float64) (*Storyboard, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages to compose")
	}

	weights := make([]float64, len(pages))
	for i, p := range pages {
		weights[i] = math.Min(MaxWeight, 1+BlockWeight*float64(len(p.Blocks)))
	}
	dwell := d.Dwell(weights, total)

	sb := &Storyboard{
		Version: Version,
		Canvas:  Canvas{Height: d.PageHeight, Texture: d.Texture},
	}
	x := 0.0
	for i, p := range pages {
		if !(p.Width > 0) || !(p.Height > 0) {
			logging.Logger().Warn("page has no size, skipped", "page", i+1, "ref", p.Ref)
			continue
		}
		w := p.Width * d.PageHeight / p.Height
		sb.Elements = append(sb.Elements, Element{
			ID:         fmt.Sprintf("page-%d", i+1),
			Type:       string(timeline.KindImage),
			Content:    p.Ref,
			X:          x,
			Y:          0,
			Width:      w,
			Height:     d.PageHeight,
			Animate:    round2(dwell[i] * AnimateShare),
			Pause:      round2(dwell[i] * PauseShare),
			Transition: round2(dwell[i] * TransitionShare),
			Style:      string(timeline.StyleDraw),
			Sketch: &Sketch{
				Brush:    string(timeline.BrushPencil),
				Density:  DensityFor(p),
				Strategy: string(StrategyFor(p)),
			},
		})
		x += w + d.Gap
	}
	if len(sb.Elements) == 0 {
		return nil, fmt.Errorf("no page has a usable size")
	}
	sb.Canvas.Width = x - d.Gap
	return sb, nil
}

// Dwell spreads total seconds over pages in proportion to their weights.
// Neighbouring pages differ by at most Variation before
// scaling; the result is then clamped to [MinDwell, MaxDwell].
// The same seed always gives the same durations.
func (d *Director) Dwell(weights []float64, total float64) []float64 {
	n := len(weights)
	if n == 0 {
		return nil
	}
	if total <= 0 {
		total = float64(n) * (d.MinDwell + d.MaxDwell) / 2
	}

	r := rand.New(rand.NewPCG(d.Seed, uint64(n)))
	out := make([]float64, n)
	v, sum := 1.0, 0.0
	for i, w := range weights {
		if i > 0 {
			v *= 1 + (r.Float64()*2-1)*Variation
		}
		out[i] = v * w
		sum += out[i]
	}

	k := total / sum
	for i := range out {
		out[i] *= k
		if d.MinDwell > 0 && out[i] < d.MinDwell {
			out[i] = d.MinDwell
		}
		if d.MaxDwell > 0 && out[i] > d.MaxDwell {
			out[i] = d.MaxDwell
		}
	}
	return out
}

// StrategyFor picks the reveal pattern: line by line for text-heavy pages,
// hatching for column layouts, outline-then-fill for pictures. Without
// blocks the page shape decides.
func StrategyFor(p Page) timeline.Strategy {
	var text, cols int
	for _, b := range p.Blocks {
		switch b.Type {
		case analyzer.TypeText:
			text++
		case analyzer.TypeColumn:
			cols++
		}
	}
	n := len(p.Blocks)
	switch {
	case n > 0 && 2*text >= n:
		return timeline.StrategyScanVertical
	case n > 0 && 2*cols >= n:
		return timeline.StrategyDiagonal
	case n > 0:
		return timeline.StrategyOutlineFill
	case p.Height > 0 && p.Width >= 1.6*p.Height:
		return timeline.StrategyScanVertical
	case p.Width > 0 && p.Height >= 1.6*p.Width:
		return timeline.StrategyDiagonal
	default:
		return timeline.StrategyOutlineFill
	}
}

// DensityFor draws busier pages with a denser scribble
func DensityFor(p Page) float64 {
	if len(p.Blocks) == 0 {
		return timeline.DefaultDensity
	}
	area := analyzer.Coverage(p.Blocks, rectOf(p))
	return round2(math.Max(0.5, math.Min(3, 0.75+1.5*area)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func rectOf(p Page) image.Rectangle {
	return image.Rect(0, 0, int(math.Ceil(p.Width)), int(math.Ceil(p.Height)))
}
