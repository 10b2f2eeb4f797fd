package effects

import (
	"image"
	"image/color"
	"image/draw"
)

// Sketch mode look: full grayscale, then contrast and brightness boost
const (
	SketchContrast   = 1.5
	SketchBrightness = 1.1
)

// Sketch returns a grayscale, high-contrast copy of img that reads like a
// pencil drawing. Alpha is preserved.
func Sketch(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)

	// lookup table: 256 luma values to the filtered result
	var lut [256]uint8
	for i := range lut {
		v := float64(i) / 255
		v = (v-0.5)*SketchContrast + 0.5
		v *= SketchBrightness
		lut[i] = uint8(clampUnit(v)*255 + 0.5)
	}

	for i := 0; i+3 < len(out.Pix); i += 4 {
		a := out.Pix[i+3]
		if a == 0 {
			continue
		}
		px := color.RGBA{R: out.Pix[i], G: out.Pix[i+1], B: out.Pix[i+2], A: a}
		// filters work on straight color, the buffer is premultiplied
		nr := color.NRGBAModel.Convert(px).(color.NRGBA)
		gray := uint8((19595*uint32(nr.R) + 38470*uint32(nr.G) + 7471*uint32(nr.B) + 1<<15) >> 16)
		v := lut[gray]
		pm := color.RGBAModel.Convert(color.NRGBA{R: v, G: v, B: v, A: a}).(color.RGBA)
		out.Pix[i], out.Pix[i+1], out.Pix[i+2] = pm.R, pm.G, pm.B
	}
	return out
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
