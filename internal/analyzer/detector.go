package analyzer

import (
	"errors"
	"image"
	"sort"
)

var ErrEmptyImage = errors.New("image has no pixels")

// Block types, guessed from the aspect ratio
const (
	TypeText   = "text"
	TypeColumn = "column"
	TypeImage  = "image"
)

// Block represents a detected region of interest in an image
type Block struct {
	Rect       image.Rectangle
	Type       string
	Confidence float64 // 0.0-1.0
}

// Detector is the interface for image analysis strategies
type Detector interface {
	Detect(img image.Image) ([]Block, error)
}

// Classify calls wide regions text lines and tall ones columns
func Classify(r image.Rectangle) string {
	w, h := r.Dx(), r.Dy()
	switch {
	case h > 0 && w >= 3*h:
		return TypeText
	case w > 0 && h >= 3*w:
		return TypeColumn
	default:
		return TypeImage
	}
}

// RowTolerance is how far apart two tops may be and still share a row
const RowTolerance = 20

// ReadingOrder sorts blocks top to bottom, then left to right within a row
func ReadingOrder(blocks []Block) []Block {
	sorted := make([]Block, len(blocks))
	copy(sorted, blocks)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Rect.Min, sorted[j].Rect.Min
		if d := a.Y - b.Y; d > RowTolerance || d < -RowTolerance {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	return sorted
}

// Coverage is the fraction of area covered by the union of block bounds,
// approximated by summing areas and capping at 1
func Coverage(blocks []Block, area image.Rectangle) float64 {
	total := area.Dx() * area.Dy()
	if total <= 0 {
		return 0
	}
	sum := 0
	for _, b := range blocks {
		r := b.Rect.Intersect(area)
		sum += r.Dx() * r.Dy()
	}
	return min(1, float64(sum)/float64(total))
}
