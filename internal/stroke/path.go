package stroke

import (
	"math"
	"sort"
)

// Point is a position in element-local coordinates
type Point struct {
	X, Y float64
}

// Lerp interpolates between p and q
func (p Point) Lerp(q Point, t float64) Point {
	return Point{X: p.X + (q.X-p.X)*t, Y: p.Y + (q.Y-p.Y)*t}
}

// Distance returns the euclidean distance between p and q
func (p Point) Distance(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// SegmentKind tags what part of a coverage pattern a segment belongs to
type SegmentKind int

const (
	KindMove    SegmentKind = iota // pen up
	KindOutline                    // border trace
	KindFill                       // horizontal coverage row
	KindLink                       // pen travel between rows
	KindHatch                      // diagonal coverage line
)

func (k SegmentKind) String() string {
	switch k {
	case KindMove:
		return "move"
	case KindOutline:
		return "outline"
	case KindFill:
		return "fill"
	case KindLink:
		return "link"
	case KindHatch:
		return "hatch"
	default:
		return "unknown"
	}
}

// Segment is a straight piece of the path
type Segment struct {
	From, To Point
	Kind     SegmentKind
}

// Drawn reports whether the pen is down along the segment
func (s Segment) Drawn() bool {
	return s.Kind != KindMove
}

// Path is an immutable polyline with pen-up moves, measured by arc length.
// Only pen-down segments contribute to the length.
type Path struct {
	start    Point
	segments []Segment

	pens   []int     // indexes of pen-down segments
	penEnd []float64 // cumulative length at the end of each pen-down segment
	length float64
}

// Length returns the drawn arc length
func (p *Path) Length() float64 {
	if p == nil {
		return 0
	}
	return p.length
}

// Start returns the point the pen starts from
func (p *Path) Start() Point {
	if p == nil {
		return Point{}
	}
	return p.start
}

// Segments returns the path segments in drawing order
func (p *Path) Segments() []Segment {
	if p == nil {
		return nil
	}
	return p.segments
}

// Count returns how many segments have the given kind
func (p *Path) Count(kind SegmentKind) int {
	n := 0
	for _, s := range p.Segments() {
		if s.Kind == kind {
			n++
		}
	}
	return n
}

// PointAt samples the path at arc length s, clamped to [0, Length]
func (p *Path) PointAt(s float64) Point {
	if p == nil || p.length == 0 {
		return p.Start()
	}
	if s <= 0 {
		return p.segments[p.pens[0]].From
	}
	if s >= p.length {
		return p.segments[p.pens[len(p.pens)-1]].To
	}

	i := sort.SearchFloat64s(p.penEnd, s)
	seg := p.segments[p.pens[i]]
	segLen := seg.From.Distance(seg.To)
	begin := p.penEnd[i] - segLen
	return seg.From.Lerp(seg.To, (s-begin)/segLen)
}

// Subpaths splits the path into connected pen-down polylines
func (p *Path) Subpaths() [][]Point {
	var out [][]Point
	var cur []Point
	for _, s := range p.Segments() {
		if !s.Drawn() {
			if len(cur) > 1 {
				out = append(out, cur)
			}
			cur = nil
			continue
		}
		if len(cur) == 0 {
			cur = append(cur, s.From)
		}
		cur = append(cur, s.To)
	}
	if len(cur) > 1 {
		out = append(out, cur)
	}
	return out
}

// Prefix returns the pen-down polylines covering the first s units of arc
// length, cutting the last segment where the pen stops.
func (p *Path) Prefix(s float64) [][]Point {
	if s >= p.Length() {
		return p.Subpaths()
	}
	var out [][]Point
	var cur []Point
	left := s
	for _, seg := range p.Segments() {
		if left <= 0 {
			break
		}
		if !seg.Drawn() {
			if len(cur) > 1 {
				out = append(out, cur)
			}
			cur = nil
			continue
		}
		if len(cur) == 0 {
			cur = append(cur, seg.From)
		}
		d := seg.From.Distance(seg.To)
		if d > left {
			cur = append(cur, seg.From.Lerp(seg.To, left/d))
			left = 0
			break
		}
		cur = append(cur, seg.To)
		left -= d
	}
	if len(cur) > 1 {
		out = append(out, cur)
	}
	return out
}

// builder accumulates segments and keeps the length index current
type builder struct {
	path *Path
	cur  Point
}

func newBuilder(start Point) *builder {
	return &builder{
		path: &Path{start: start, segments: make([]Segment, 0, 64)},
		cur:  start,
	}
}

func (b *builder) moveTo(x, y float64) {
	to := Point{X: x, Y: y}
	if to == b.cur {
		return
	}
	b.path.segments = append(b.path.segments, Segment{From: b.cur, To: to, Kind: KindMove})
	b.cur = to
}

func (b *builder) lineTo(x, y float64, kind SegmentKind) {
	to := Point{X: x, Y: y}
	d := b.cur.Distance(to)
	if d == 0 {
		return
	}
	p := b.path
	p.segments = append(p.segments, Segment{From: b.cur, To: to, Kind: kind})
	p.length += d
	p.pens = append(p.pens, len(p.segments)-1)
	p.penEnd = append(p.penEnd, p.length)
	b.cur = to
}

func (b *builder) build() *Path {
	return b.path
}
