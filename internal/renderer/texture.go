package renderer

import (
	"strings"

	"github.com/gogpu/gg"
)

// Texture is the canvas background
type Texture string

const (
	TexturePaper      Texture = "paper"
	TextureWhiteboard Texture = "whiteboard"
	TextureBlueprint  Texture = "blueprint"
)

// ParseTexture falls back to paper
func ParseTexture(s string) Texture {
	switch Texture(strings.ToLower(strings.TrimSpace(s))) {
	case TextureWhiteboard:
		return TextureWhiteboard
	case TextureBlueprint:
		return TextureBlueprint
	default:
		return TexturePaper
	}
}

// Color returns the background fill
func (t Texture) Color() gg.RGBA {
	switch ParseTexture(string(t)) {
	case TextureWhiteboard:
		return gg.Hex("#ffffff")
	case TextureBlueprint:
		return gg.Hex("#1f4e79")
	default:
		return gg.Hex("#fbf8ef")
	}
}

// Ink returns the default text color that reads on the texture
func (t Texture) Ink() string {
	if ParseTexture(string(t)) == TextureBlueprint {
		return "#f2f6fa"
	}
	return "#1a1a1a"
}
