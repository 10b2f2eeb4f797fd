package source

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gen2brain/go-fitz"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/skip2/go-qrcode"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/sketchplay/internal/logging"
	"github.com/ivlev/sketchplay/internal/timeline"
)

const (
	DefaultCacheSize = 128
	// QRSize - сторона QR-кода в пикселях
	QRSize = 512
	// QRPrefix помечает контент, который кодируется в QR
	QRPrefix = "qr:"
)

var ErrNoContent = errors.New("element has no content")

// Loader превращает контент элемента в изображение. Контент бывает:
//
//	обычный текст         для текстовых элементов
//	qr:<payload>          сгенерированный QR-код
//	data:image/...;base64 встроенное изображение
//	file.pdf#N            страница N (с 1) из PDF, без #N - первая
//	path/to/image.png     любой зарегистрированный формат
//
// Относительные пути считаются от Dir. Декодированные изображения лежат в LRU-кэше.
type Loader struct {
	Dir string
	DPI int
	Ink string // цвет текста, если у элемента его нет

	cache *lru.Cache[string, image.Image]
}

func NewLoader(dir string, size int) *Loader {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, _ := lru.New[string, image.Image](size)
	return &Loader{Dir: dir, DPI: DefaultDPI, Ink: DefaultInk, cache: cache}
}

func cacheKey(el timeline.Element) string {
	if el.Kind == timeline.KindText {
		return fmt.Sprintf("text|%s|%s|%s|%.0fx%.0f", el.Content, el.FontFamily, el.Color, el.Width, el.Height)
	}
	return el.Content
}

// Image отдает изображение элемента для рендера
func (l *Loader) Image(el timeline.Element) (image.Image, error) {
	key := cacheKey(el)
	if img, ok := l.cache.Get(key); ok {
		return img, nil
	}
	img, err := l.load(el)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", el, err)
	}
	l.cache.Add(key, img)
	return img, nil
}

func (l *Loader) load(el timeline.Element) (image.Image, error) {
	if el.Kind == timeline.KindText {
		ink := el.Color
		if ink == "" {
			ink = l.Ink
		}
		return RenderText(el.Content, el.FontFamily, ink, el.Width, el.Height)
	}

	content := strings.TrimSpace(el.Content)
	switch {
	case content == "":
		return nil, ErrNoContent
	case strings.HasPrefix(content, QRPrefix):
		return QRCode(strings.TrimPrefix(content, QRPrefix), QRSize)
	case strings.HasPrefix(content, "data:"):
		return decodeDataURL(content)
	}

	path, page := SplitPageRef(content)
	if !filepath.IsAbs(path) && l.Dir != "" {
		path = filepath.Join(l.Dir, path)
	}
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return l.renderPDF(path, page)
	}
	return decodeFile(path)
}

func (l *Loader) renderPDF(path string, page int) (image.Image, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer doc.Close()

	if page < 1 || page > doc.NumPage() {
		return nil, fmt.Errorf("%s has no page %d", path, page)
	}
	dpi := l.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return doc.ImageDPI(page-1, float64(dpi))
}

// Preload заранее загружает ресурсы всех элементов, не больше workers одновременно.
// Ошибки загрузки только логируются, один битый файл не останавливает показ;
// ошибкой считается только отмена контекста.
func (l *Loader) Preload(ctx context.Context, tl timeline.Timeline, workers int) error {
	if workers <= 0 {
		workers = 4
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, el := range tl {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := l.Image(el); err != nil {
				logging.Logger().Warn("asset not loaded", "element", el.String(), "err", err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Len - число изображений в кэше
func (l *Loader) Len() int {
	return l.cache.Len()
}

// SplitPageRef делит "file.pdf#3" на путь и номер страницы.
// Без корректного суффикса страница равна 1.
func SplitPageRef(ref string) (string, int) {
	i := strings.LastIndexByte(ref, '#')
	if i < 0 {
		return ref, 1
	}
	n, err := strconv.Atoi(ref[i+1:])
	if err != nil || n < 1 {
		return ref, 1
	}
	return ref[:i], n
}

// QRCode рисует payload квадратным QR-кодом со стороной size
func QRCode(payload string, size int) (image.Image, error) {
	q, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("qr code: %w", err)
	}
	return q.Image(size), nil
}

func decodeDataURL(url string) (image.Image, error) {
	comma := strings.IndexByte(url, ',')
	if comma < 0 || !strings.Contains(url[:comma], ";base64") {
		return nil, errors.New("unsupported data url")
	}
	raw, err := base64.StdEncoding.DecodeString(url[comma+1:])
	if err != nil {
		return nil, fmt.Errorf("data url: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("data url: %w", err)
	}
	return img, nil
}
