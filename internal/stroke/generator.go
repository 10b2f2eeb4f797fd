package stroke

import (
	"math"

	"github.com/ivlev/sketchplay/internal/timeline"
)

const (
	// BaseStep is the row spacing at density 1
	BaseStep = 20.0
	// MinStep bounds the spacing for very high densities
	MinStep = 5.0
	// DiagonalFactor widens the spacing of hatch lines
	DiagonalFactor = 1.2
)

// Step returns the coverage spacing for a density; higher density gives a smaller step
func Step(density float64) float64 {
	if !(density > 0) || math.IsInf(density, 0) {
		density = timeline.DefaultDensity
	}
	return math.Max(MinStep, BaseStep/density)
}

// Generate builds the reveal path covering a width x height rectangle.
// Same inputs always give the same path. A degenerate rectangle gives
// an empty path of zero length.
func Generate(width, height, density float64, strategy timeline.Strategy) *Path {
	b := newBuilder(Point{})
	if !(width > 0) || !(height > 0) {
		return b.build()
	}

	step := Step(density)
	switch timeline.ParseStrategy(string(strategy)) {
	case timeline.StrategyScanVertical:
		scanVertical(b, width, height, step)
	case timeline.StrategyDiagonal:
		diagonal(b, width, height, step*DiagonalFactor)
	default:
		outlineFill(b, width, height, step)
	}
	return b.build()
}

// outlineFill traces the border, then sweeps horizontal rows top to bottom,
// overscanning half a step past both edges so wide brushes reach the corners.
func outlineFill(b *builder, w, h, step float64) {
	b.lineTo(w, 0, KindOutline)
	b.lineTo(w, h, KindOutline)
	b.lineTo(0, h, KindOutline)
	b.lineTo(0, 0, KindOutline)

	left, right := -step/2, w+step/2
	rows := rowCount(h, step)
	for k := 0; k < rows; k++ {
		y := math.Min(step/2+float64(k)*step, h)
		if k%2 == 0 {
			b.lineTo(left, y, KindLink)
			b.lineTo(right, y, KindFill)
		} else {
			b.lineTo(right, y, KindLink)
			b.lineTo(left, y, KindFill)
		}
	}
}

// scanVertical sweeps full-width rows from the top edge, finishing on the bottom edge
func scanVertical(b *builder, w, h, step float64) {
	k := 0
	row := func(y float64) {
		if k%2 == 0 {
			b.lineTo(0, y, KindLink)
			b.lineTo(w, y, KindFill)
		} else {
			b.lineTo(w, y, KindLink)
			b.lineTo(0, y, KindFill)
		}
		k++
	}

	y := 0.0
	for ; y <= h; y += step {
		row(y)
	}
	if last := y - step; last < h {
		row(h)
	}
}

// diagonal hatches 45 degree lines x+y=c across the rectangle; lines are
// joined by pen-up moves and alternate direction.
func diagonal(b *builder, w, h, ds float64) {
	k := 0
	for c := ds / 2; c < w+h; c += ds {
		// on the top or right edge
		ay := math.Max(0, c-w)
		ax := c - ay
		// on the left or bottom edge
		bx := math.Max(0, c-h)
		by := c - bx

		if k%2 == 0 {
			b.moveTo(ax, ay)
			b.lineTo(bx, by, KindHatch)
		} else {
			b.moveTo(bx, by)
			b.lineTo(ax, ay, KindHatch)
		}
		k++
	}
}

func rowCount(h, step float64) int {
	n := int(math.Floor(h / step))
	if n < 1 {
		n = 1
	}
	return n
}
