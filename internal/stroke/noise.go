package stroke

import "math"

const (
	noiseFrequency = 0.1
	noiseOctaves   = 2
	jitterSpacing  = 4.0 // max piece length when subdividing for jitter
)

// valueNoise is 2-D fractal value noise in [0,1]
type valueNoise struct {
	seed uint32
}

func (n valueNoise) at(x, y float64) float64 {
	sum, amp, norm := 0.0, 1.0, 0.0
	freq := noiseFrequency
	for o := 0; o < noiseOctaves; o++ {
		sum += amp * n.lattice(x*freq, y*freq, uint32(o))
		norm += amp
		amp *= 0.5
		freq *= 2
	}
	return sum / norm
}

func (n valueNoise) lattice(x, y float64, octave uint32) float64 {
	x0, y0 := math.Floor(x), math.Floor(y)
	fx, fy := smooth(x-x0), smooth(y-y0)
	ix, iy := int32(x0), int32(y0)

	v00 := n.hash(ix, iy, octave)
	v10 := n.hash(ix+1, iy, octave)
	v01 := n.hash(ix, iy+1, octave)
	v11 := n.hash(ix+1, iy+1, octave)

	top := v00 + (v10-v00)*fx
	bottom := v01 + (v11-v01)*fx
	return top + (bottom-top)*fy
}

func (n valueNoise) hash(x, y int32, octave uint32) float64 {
	h := n.seed ^ octave*0x27d4eb2d
	h ^= uint32(x) * 0x85ebca6b
	h = (h << 13) | (h >> 19)
	h ^= uint32(y) * 0xc2b2ae35
	h ^= h >> 16
	h *= 0x7feb352d
	h ^= h >> 15
	h *= 0x846ca68b
	h ^= h >> 16
	return float64(h) / float64(math.MaxUint32)
}

func smooth(t float64) float64 {
	return t * t * (3 - 2*t)
}

// Jittered returns a copy of the path with every point displaced by up to
// amount units of noise, emulating hand wobble. Long segments are subdivided
// so the wobble shows along straight rows. amount <= 0 returns p itself.
func (p *Path) Jittered(amount float64, seed uint32) *Path {
	if p == nil || amount <= 0 || len(p.segments) == 0 {
		return p
	}

	nx := valueNoise{seed: seed}
	ny := valueNoise{seed: seed ^ 0x9e3779b9}
	scale := amount * 2
	displace := func(q Point) Point {
		return Point{
			X: q.X + scale*(nx.at(q.X, q.Y)-0.5),
			Y: q.Y + scale*(ny.at(q.X, q.Y)-0.5),
		}
	}

	start := displace(p.start)
	b := newBuilder(start)
	for _, s := range p.segments {
		if !s.Drawn() {
			to := displace(s.To)
			b.moveTo(to.X, to.Y)
			continue
		}
		pieces := int(math.Ceil(s.From.Distance(s.To) / jitterSpacing))
		if pieces < 1 {
			pieces = 1
		}
		for i := 1; i <= pieces; i++ {
			q := displace(s.From.Lerp(s.To, float64(i)/float64(pieces)))
			b.lineTo(q.X, q.Y, s.Kind)
		}
	}
	return b.build()
}
