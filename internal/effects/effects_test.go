package effects

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/ivlev/sketchplay/internal/timeline"
)

func TestNewFallsBackToDraw(t *testing.T) {
	tests := []struct {
		style timeline.Style
		want  timeline.Style
	}{
		{timeline.StyleDraw, timeline.StyleDraw},
		{timeline.StyleMoveIn, timeline.StyleMoveIn},
		{timeline.StyleFadeIn, timeline.StyleFadeIn},
		{timeline.StylePopUp, timeline.StylePopUp},
		{"wiggle", timeline.StyleDraw},
		{"", timeline.StyleDraw},
	}
	for _, tt := range tests {
		if got := New(tt.style).Style(); got != tt.want {
			t.Errorf("New(%q) = %q, want %q", tt.style, got, tt.want)
		}
	}
}

func TestForElement(t *testing.T) {
	text := timeline.Element{Kind: timeline.KindText, Style: timeline.StyleDraw}
	if ForElement(text).Style() != timeline.StyleFadeIn {
		t.Error("Text should always fade in")
	}

	img := timeline.Element{Kind: timeline.KindImage, Style: timeline.StylePopUp}
	if ForElement(img).Style() != timeline.StylePopUp {
		t.Error("Image should keep its style")
	}

	table := ForTimeline(timeline.Timeline{text, img, {Style: timeline.StyleDraw}})
	if len(table) != 3 || !table[2].Masked() || table[0].Masked() {
		t.Errorf("Unexpected entrance table: %+v", table)
	}
}

func TestEntranceAppearance(t *testing.T) {
	tests := []struct {
		name     string
		e        Entrance
		progress float64
		want     Appearance
	}{
		{"draw start", &DrawEffect{}, 0, Visible()},
		{"fade half", &FadeInEffect{}, 0.5, Appearance{Opacity: 0.5, Scale: 1}},
		{"fade clamp", &FadeInEffect{}, 3, Visible()},
		{"move start", &MoveInEffect{}, 0, Appearance{Opacity: 0, Scale: 1, OffsetX: -100}},
		{"move quarter", &MoveInEffect{Distance: 40}, 0.25, Appearance{Opacity: 0.25, Scale: 1, OffsetX: -30}},
		{"move end", &MoveInEffect{}, 1, Visible()},
		{"pop start", &PopUpEffect{}, 0, Appearance{}},
		{"pop half", &PopUpEffect{}, 0.5, Appearance{Opacity: 0.5, Scale: 0.5}},
		{"pop negative", &PopUpEffect{}, -1, Appearance{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.e.At(tt.progress)
			if math.Abs(got.Opacity-tt.want.Opacity) > 1e-9 ||
				math.Abs(got.Scale-tt.want.Scale) > 1e-9 ||
				math.Abs(got.OffsetX-tt.want.OffsetX) > 1e-9 ||
				got.OffsetY != tt.want.OffsetY {
				t.Errorf("At(%v) = %+v, want %+v", tt.progress, got, tt.want)
			}
		})
	}
}

func TestSketch(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 10, 13, 11))
	src.SetNRGBA(10, 10, color.NRGBA{R: 255, A: 255})
	src.SetNRGBA(11, 10, color.NRGBA{R: 128, G: 128, B: 128, A: 255})
	src.SetNRGBA(12, 10, color.NRGBA{})

	out := Sketch(src)
	if out.Bounds() != image.Rect(0, 0, 3, 1) {
		t.Fatalf("Expected bounds at origin, got %v", out.Bounds())
	}

	red := out.RGBAAt(0, 0)
	if red.R != red.G || red.G != red.B {
		t.Errorf("Expected gray output, got %+v", red)
	}
	// red luma ~76 drops under contrast
	if red.R >= 76 {
		t.Errorf("Expected contrast to darken dark tones, got %d", red.R)
	}

	mid := out.RGBAAt(1, 0)
	if mid.R <= 128 {
		t.Errorf("Expected brightness to lift mid gray, got %d", mid.R)
	}

	if out.RGBAAt(2, 0).A != 0 {
		t.Error("Transparent pixels must stay transparent")
	}
	t.Logf("red -> %d, gray -> %d", red.R, mid.R)
}
