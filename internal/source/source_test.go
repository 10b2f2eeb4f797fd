package source

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ivlev/sketchplay/internal/timeline"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestSplitPageRef(t *testing.T) {
	tests := []struct {
		ref  string
		path string
		page int
	}{
		{"deck.pdf#3", "deck.pdf", 3},
		{"deck.pdf", "deck.pdf", 1},
		{"deck.pdf#0", "deck.pdf#0", 1},
		{"notes#draft.png", "notes#draft.png", 1},
		{"dir/a.pdf#12", "dir/a.pdf", 12},
	}
	for _, tt := range tests {
		path, page := SplitPageRef(tt.ref)
		if path != tt.path || page != tt.page {
			t.Errorf("SplitPageRef(%q) = %q, %d; want %q, %d", tt.ref, path, page, tt.path, tt.page)
		}
	}
	if PageRef("a.pdf", 2) != "a.pdf#2" {
		t.Error("PageRef should round-trip through SplitPageRef")
	}
}

func TestImageSource(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"), 30, 20)
	writePNG(t, filepath.Join(dir, "a.png"), 10, 40)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644)

	src, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer src.Close()

	if src.PageCount() != 2 {
		t.Fatalf("Expected 2 images, got %d", src.PageCount())
	}
	if filepath.Base(src.Path(0)) != "a.png" {
		t.Errorf("Images should be sorted by name, got %s first", src.Path(0))
	}
	w, h, err := src.GetPageDimensions(1)
	if err != nil || w != 30 || h != 20 {
		t.Errorf("Dimensions = %.0fx%.0f (%v), want 30x20", w, h, err)
	}
	if _, err := src.RenderPage(5, 0); err == nil {
		t.Error("Expected an out of range error")
	}

	if _, err := NewImageSource(t.TempDir()); err == nil {
		t.Error("Empty folder should be an error")
	}
}

func TestIsImage(t *testing.T) {
	for name, want := range map[string]bool{"a.PNG": true, "b.webp": true, "c.tiff": true, "d.pdf": false, "e": false} {
		if got := IsImage(name); got != want {
			t.Errorf("IsImage(%q) = %v", name, got)
		}
	}
}

func TestLoaderImageFile(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "pic.png"), 16, 8)

	l := NewLoader(dir, 4)
	el := timeline.Element{ID: "p", Kind: timeline.KindImage, Content: "pic.png", Width: 16, Height: 8}

	img, err := l.Image(el)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if img.Bounds().Dx() != 16 {
		t.Errorf("Unexpected bounds %v", img.Bounds())
	}

	os.Remove(filepath.Join(dir, "pic.png"))
	if _, err := l.Image(el); err != nil {
		t.Errorf("Second load should hit the cache: %v", err)
	}

	if _, err := l.Image(timeline.Element{Content: "missing.png"}); err == nil {
		t.Error("Expected an error for a missing file")
	}
	if _, err := l.Image(timeline.Element{}); err == nil {
		t.Error("Expected an error for empty content")
	}
}

func TestLoaderDataURL(t *testing.T) {
	var buf bytes.Buffer
	png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 5, 7)))
	url := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	img, err := NewLoader("", 0).Image(timeline.Element{Content: url})
	if err != nil {
		t.Fatalf("Data url failed: %v", err)
	}
	if img.Bounds().Dx() != 5 || img.Bounds().Dy() != 7 {
		t.Errorf("Unexpected bounds %v", img.Bounds())
	}

	if _, err := decodeDataURL("data:text/plain,hello"); err == nil {
		t.Error("Non-base64 data urls are unsupported")
	}
}

func TestLoaderQRCode(t *testing.T) {
	img, err := NewLoader("", 0).Image(timeline.Element{Content: "qr:https://example.com"})
	if err != nil {
		t.Fatalf("QR failed: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != QRSize || b.Dy() != QRSize {
		t.Errorf("QR size = %v, want %d", b, QRSize)
	}
}

func TestRenderText(t *testing.T) {
	img, err := RenderText("Hello\nworld", "Inter", "#ff0000", 200, 80)
	if err != nil {
		t.Fatalf("RenderText failed: %v", err)
	}
	if img.Bounds().Dx() != int(200*TextScale) {
		t.Errorf("Unexpected bounds %v", img.Bounds())
	}

	inked := 0
	rgba := img.(*image.RGBA)
	for i := 3; i < len(rgba.Pix); i += 4 {
		if rgba.Pix[i] > 0 {
			inked++
			if rgba.Pix[i-1] > rgba.Pix[i-3] {
				t.Fatal("Expected red ink")
			}
		}
	}
	if inked == 0 {
		t.Error("No glyphs were drawn")
	}
	t.Logf("inked pixels: %d", inked)

	if _, err := RenderText("x", "", "", 0, 10); err == nil {
		t.Error("Empty box should be an error")
	}
}

func TestLoaderTextKeyedBySize(t *testing.T) {
	l := NewLoader("", 0)
	el := timeline.Element{Kind: timeline.KindText, Content: "Hi", Width: 50, Height: 20}
	a, _ := l.Image(el)
	el.Width = 100
	b, _ := l.Image(el)
	if a.Bounds() == b.Bounds() {
		t.Error("Resized text should render again")
	}
	if l.Len() != 2 {
		t.Errorf("Expected 2 cached images, got %d", l.Len())
	}
}

func TestPreload(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 4, 4)
	tl := timeline.Timeline{
		{ID: "a", Content: "a.png"},
		{ID: "b", Content: "missing.png"},
		{ID: "c", Content: "qr:hello"},
	}

	l := NewLoader(dir, 0)
	if err := l.Preload(context.Background(), tl, 2); err != nil {
		t.Fatalf("Preload should tolerate broken assets: %v", err)
	}
	if l.Len() != 2 {
		t.Errorf("Expected 2 cached images, got %d", l.Len())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewLoader(dir, 0).Preload(ctx, tl, 1); err == nil {
		t.Error("Cancelled preload should fail")
	}
}
