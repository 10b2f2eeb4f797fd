package renderer

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/gogpu/gg"
	lru "github.com/hashicorp/golang-lru/v2"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/ivlev/sketchplay/internal/camera"
	"github.com/ivlev/sketchplay/internal/effects"
	"github.com/ivlev/sketchplay/internal/engine"
	"github.com/ivlev/sketchplay/internal/logging"
	"github.com/ivlev/sketchplay/internal/system"
	"github.com/ivlev/sketchplay/internal/timeline"
)

const (
	// MaxSprite caps the rasterized size of one element on either axis
	MaxSprite = 4096

	DefaultSpriteCache = 64
)

// Assets resolves the content of an element into pixels
type Assets interface {
	Image(el timeline.Element) (image.Image, error)
}

type spriteKey struct {
	id      string
	content string
	w, h    int
	sketch  bool
}

// Renderer composites frame states onto a textured canvas.
// It implements engine.FrameRenderer.
type Renderer struct {
	Assets   Assets
	Texture  Texture
	HandSize float64

	sprites *lru.Cache[spriteKey, *image.RGBA]
}

func New(assets Assets, texture Texture) *Renderer {
	sprites, _ := lru.New[spriteKey, *image.RGBA](DefaultSpriteCache)
	return &Renderer{
		Assets:   assets,
		Texture:  ParseTexture(string(texture)),
		HandSize: DefaultHandSize,
		sprites:  sprites,
	}
}

var _ engine.FrameRenderer = (*Renderer)(nil)

// Render draws one frame. Elements whose assets fail to load are skipped
// with a warning; only an unusable viewport is an error.
func (r *Renderer) Render(fs engine.FrameState) (*image.RGBA, error) {
	w, h := int(math.Round(fs.ViewportW)), int(math.Round(fs.ViewportH))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid viewport %.0fx%.0f", fs.ViewportW, fs.ViewportH)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(canvas, canvas.Bounds(), image.NewUniform(r.Texture.Color().Color()), image.Point{}, xdraw.Src)

	for _, ef := range fs.Elements {
		if !ef.Visible() || ef.Element.Bounds().Empty() {
			continue
		}
		if err := r.drawElement(canvas, fs.Camera, ef); err != nil {
			logging.Logger().Warn("element skipped", "element", ef.Element.String(), "err", err)
		}
	}

	if fs.HasCursor {
		err := paint(canvas, handBounds(fs.Cursor, r.HandSize), func(dc *gg.Context) {
			drawHand(dc, fs.Cursor, r.HandSize)
		})
		if err != nil {
			return nil, fmt.Errorf("draw cursor: %w", err)
		}
	}
	return canvas, nil
}

// drawElement warps the element sprite into a layer covering only its
// on-screen box and composites that box onto the canvas
func (r *Renderer) drawElement(canvas *image.RGBA, cam camera.Transform, ef engine.ElementFrame) error {
	app := ef.Appearance
	if app.Opacity <= 0 || app.Scale <= 0 || cam.Scale <= 0 {
		return nil
	}

	el := ef.Element
	sw := spriteSide(el.Width * cam.Scale)
	sh := spriteSide(el.Height * cam.Scale)

	sprite, err := r.sprite(el, sw, sh)
	if err != nil {
		return err
	}
	if ef.Masked && ef.Path != nil && ef.Reveal < 1 {
		sprite = reveal(sprite, ef, float64(sw)/el.Width)
	}

	aff := spriteToView(el, app, cam, float64(sw)/el.Width, float64(sh)/el.Height)
	box := viewBounds(aff, sprite.Bounds()).Intersect(canvas.Bounds())
	if box.Empty() {
		return nil
	}

	layer := system.GetImage(box)
	defer system.PutImage(layer)
	clear(layer.Pix)

	aff[2] -= float64(box.Min.X)
	aff[5] -= float64(box.Min.Y)
	xdraw.BiLinear.Transform(layer, aff, sprite, sprite.Bounds(), xdraw.Over, nil)

	if ef.Masked && ef.Style.Multiply {
		return paint(canvas, box, func(dc *gg.Context) {
			dc.DrawImageEx(gg.ImageBufFromImage(layer), gg.DrawImageOptions{
				X:         float64(box.Min.X),
				Y:         float64(box.Min.Y),
				Opacity:   app.Opacity,
				BlendMode: gg.BlendMultiply,
			})
		})
	}

	var mask image.Image
	if app.Opacity < 1 {
		mask = image.NewUniform(color.Alpha{A: uint8(math.Round(app.Opacity * 255))})
	}
	xdraw.DrawMask(canvas, box, layer, image.Point{}, mask, image.Point{}, xdraw.Over)
	return nil
}

// paint runs fn on a gg context over box of the canvas and copies the
// result back. fn draws in canvas coordinates.
func paint(canvas *image.RGBA, box image.Rectangle, fn func(dc *gg.Context)) error {
	box = box.Intersect(canvas.Bounds())
	if box.Empty() {
		return nil
	}
	dc := gg.NewContextForImage(canvas.SubImage(box))
	defer dc.Close()
	dc.Translate(-float64(box.Min.X), -float64(box.Min.Y))

	fn(dc)
	if err := dc.FlushGPU(); err != nil {
		return err
	}
	xdraw.Draw(canvas, box, dc.Image(), image.Point{}, xdraw.Src)
	return nil
}

// viewBounds is the pixel box covered by src under aff, one pixel wider on
// each side for the bilinear filter
func viewBounds(aff f64.Aff3, src image.Rectangle) image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range [4][2]float64{
		{float64(src.Min.X), float64(src.Min.Y)},
		{float64(src.Max.X), float64(src.Min.Y)},
		{float64(src.Min.X), float64(src.Max.Y)},
		{float64(src.Max.X), float64(src.Max.Y)},
	} {
		x := aff[0]*p[0] + aff[1]*p[1] + aff[2]
		y := aff[3]*p[0] + aff[4]*p[1] + aff[5]
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	if math.IsNaN(minX+minY+maxX+maxY) || math.IsInf(minX+minY+maxX+maxY, 0) {
		return image.Rectangle{}
	}
	return image.Rect(
		int(math.Floor(minX))-1, int(math.Floor(minY))-1,
		int(math.Ceil(maxX))+1, int(math.Ceil(maxY))+1,
	)
}

// sprite returns the element content fitted into sw×sh, cached by size
func (r *Renderer) sprite(el timeline.Element, sw, sh int) (*image.RGBA, error) {
	key := spriteKey{id: el.ID, content: el.Content, w: sw, h: sh, sketch: el.SketchMode}
	if r.sprites != nil {
		if s, ok := r.sprites.Get(key); ok {
			return s, nil
		}
	}
	if r.Assets == nil {
		return nil, fmt.Errorf("no assets for %s", el.ID)
	}

	img, err := r.Assets.Image(el)
	if err != nil {
		return nil, err
	}
	if el.SketchMode {
		img = effects.Sketch(img)
	}

	s := image.NewRGBA(image.Rect(0, 0, sw, sh))
	xdraw.CatmullRom.Scale(s, Contain(img.Bounds(), sw, sh), img, img.Bounds(), xdraw.Over, nil)
	if r.sprites != nil {
		r.sprites.Add(key, s)
	}
	return s, nil
}

// reveal keeps only the part of the sprite covered by the drawn stroke
func reveal(sprite *image.RGBA, ef engine.ElementFrame, k float64) *image.RGBA {
	b := sprite.Bounds()
	mask := RevealMask(ef.Path, ef.Style, ef.Reveal, b.Dx(), b.Dy(), k)
	out := image.NewRGBA(b)
	xdraw.DrawMask(out, b, sprite, b.Min, mask, image.Point{}, xdraw.Over)
	return out
}

// Contain fits src into a w×h box keeping the aspect ratio, centered
func Contain(src image.Rectangle, w, h int) image.Rectangle {
	sw, sh := float64(src.Dx()), float64(src.Dy())
	if sw <= 0 || sh <= 0 || w <= 0 || h <= 0 {
		return image.Rectangle{}
	}
	k := math.Min(float64(w)/sw, float64(h)/sh)
	dw, dh := int(math.Round(sw*k)), int(math.Round(sh*k))
	x0, y0 := (w-dw)/2, (h-dh)/2
	return image.Rect(x0, y0, x0+dw, y0+dh)
}

// spriteToView maps sprite pixels to viewport pixels: sprite to element
// units, entrance scale and rotation about the center, placement on the
// canvas plus the entrance offset, then the camera.
func spriteToView(el timeline.Element, app effects.Appearance, cam camera.Transform, kx, ky float64) f64.Aff3 {
	sin, cos := math.Sincos(el.Rotation * math.Pi / 180)
	m := cam.Scale * app.Scale

	cx, cy := el.Width/2, el.Height/2
	dx, dy := -app.Scale*cx, -app.Scale*cy
	ox := el.X + cx + dx*cos - dy*sin + app.OffsetX
	oy := el.Y + cy + dx*sin + dy*cos + app.OffsetY

	return f64.Aff3{
		m * cos / kx, -m * sin / ky, cam.Scale*ox + cam.TranslateX,
		m * sin / kx, m * cos / ky, cam.Scale*oy + cam.TranslateY,
	}
}

func spriteSide(v float64) int {
	n := int(math.Ceil(v))
	if n < 1 {
		return 1
	}
	if n > MaxSprite {
		return MaxSprite
	}
	return n
}
