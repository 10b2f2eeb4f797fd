package analyzer

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// ContrastDetector finds content regions with a Sobel edge pass, dilation
// to merge nearby strokes, and a flood fill over the result.
// Pages are analyzed downscaled to MaxSide and blocks mapped back.
type ContrastDetector struct {
	MinBlockArea  int     // in analysis pixels
	EdgeThreshold float64 // gradient magnitude
	MaxSide       int     // 0 analyzes at full resolution
	Dilation      int     // kernel size
	Iterations    int
}

func NewContrastDetector() *ContrastDetector {
	return &ContrastDetector{
		MinBlockArea:  150,
		EdgeThreshold: 30.0,
		MaxSide:       480,
		Dilation:      5,
		Iterations:    2,
	}
}

func (d *ContrastDetector) Detect(img image.Image) ([]Block, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, ErrEmptyImage
	}

	gray, k := downscale(img, d.MaxSide)
	edges := sobel(gray, d.EdgeThreshold)
	merged := dilate(edges, d.Dilation, d.Iterations)

	var blocks []Block
	for _, rect := range components(merged) {
		if rect.Dx()*rect.Dy() < d.MinBlockArea {
			continue
		}
		full := image.Rect(
			b.Min.X+int(math.Floor(float64(rect.Min.X)/k)),
			b.Min.Y+int(math.Floor(float64(rect.Min.Y)/k)),
			b.Min.X+int(math.Ceil(float64(rect.Max.X)/k)),
			b.Min.Y+int(math.Ceil(float64(rect.Max.Y)/k)),
		).Intersect(b)
		blocks = append(blocks, Block{
			Rect:       full,
			Type:       Classify(full),
			Confidence: 0.7,
		})
	}
	return blocks, nil
}

// downscale converts to grayscale no larger than maxSide on either axis and
// returns the scale factor applied
func downscale(img image.Image, maxSide int) (*image.Gray, float64) {
	b := img.Bounds()
	k := 1.0
	if side := max(b.Dx(), b.Dy()); maxSide > 0 && side > maxSide {
		k = float64(maxSide) / float64(side)
	}
	w := max(1, int(math.Round(float64(b.Dx())*k)))
	h := max(1, int(math.Round(float64(b.Dy())*k)))

	gray := image.NewGray(image.Rect(0, 0, w, h))
	if k == 1 {
		xdraw.Draw(gray, gray.Bounds(), img, b.Min, xdraw.Src)
	} else {
		xdraw.ApproxBiLinear.Scale(gray, gray.Bounds(), img, b, xdraw.Src, nil)
	}
	return gray, k
}

var (
	sobelX = [3][3]int{{-1, 0, 1}, {-2, 0, 2}, {-1, 0, 1}}
	sobelY = [3][3]int{{-1, -2, -1}, {0, 0, 0}, {1, 2, 1}}
)

func sobel(gray *image.Gray, threshold float64) *image.Gray {
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	edges := image.NewGray(gray.Rect)

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			var sx, sy int
			for ky := -1; ky <= 1; ky++ {
				row := (y+ky)*gray.Stride + x
				for kx := -1; kx <= 1; kx++ {
					p := int(gray.Pix[row+kx])
					sx += p * sobelX[ky+1][kx+1]
					sy += p * sobelY[ky+1][kx+1]
				}
			}
			if math.Hypot(float64(sx), float64(sy)) > threshold {
				edges.Pix[y*edges.Stride+x] = 255
			}
		}
	}
	return edges
}

// dilate grows white regions by a square kernel, iterations times
func dilate(img *image.Gray, kernel, iterations int) *image.Gray {
	half := kernel / 2
	w, h := img.Rect.Dx(), img.Rect.Dy()
	cur := img

	for it := 0; it < iterations; it++ {
		next := image.NewGray(img.Rect)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if cur.Pix[y*cur.Stride+x] == 0 {
					continue
				}
				for ky := max(0, y-half); ky <= min(h-1, y+half); ky++ {
					row := next.Pix[ky*next.Stride:]
					for kx := max(0, x-half); kx <= min(w-1, x+half); kx++ {
						row[kx] = 255
					}
				}
			}
		}
		cur = next
	}
	return cur
}

// components returns the bounding boxes of 4-connected white regions
func components(img *image.Gray) []image.Rectangle {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	visited := make([]bool, w*h)
	var rects []image.Rectangle

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if visited[i] || img.Pix[y*img.Stride+x] <= 128 {
				continue
			}
			rects = append(rects, fill(img, visited, x, y))
		}
	}
	return rects
}

func fill(img *image.Gray, visited []bool, x0, y0 int) image.Rectangle {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	r := image.Rect(x0, y0, x0+1, y0+1)
	stack := []image.Point{{X: x0, Y: y0}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.X < 0 || p.X >= w || p.Y < 0 || p.Y >= h {
			continue
		}
		i := p.Y*w + p.X
		if visited[i] || img.Pix[p.Y*img.Stride+p.X] <= 128 {
			continue
		}
		visited[i] = true
		r = r.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))

		stack = append(stack,
			image.Point{X: p.X + 1, Y: p.Y},
			image.Point{X: p.X - 1, Y: p.Y},
			image.Point{X: p.X, Y: p.Y + 1},
			image.Point{X: p.X, Y: p.Y - 1},
		)
	}
	return r
}
