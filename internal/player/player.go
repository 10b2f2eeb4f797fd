package player

import (
	"errors"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/ivlev/sketchplay/internal/engine"
	"github.com/ivlev/sketchplay/internal/logging"
	"github.com/ivlev/sketchplay/internal/timeline"
)

// Action - команда управления просмотром
type Action int

const (
	ActionNone Action = iota
	ActionToggle
	ActionRestart
	ActionClose
)

var keymap = []struct {
	key    ebiten.Key
	action Action
}{
	{ebiten.KeySpace, ActionToggle},
	{ebiten.KeyR, ActionRestart},
	{ebiten.KeyEscape, ActionClose},
	{ebiten.KeyQ, ActionClose},
}

// Player показывает сессию в окне с изменяемым размером. Реализует ebiten.Game:
// каждый тик продвигает сессию на длительность тика, каждый Draw рисует
// текущий кадр в размер окна.
type Player struct {
	Session  *engine.Session
	Renderer engine.FrameRenderer
	Reload   <-chan timeline.Timeline // необязательно: новые версии раскадровки

	width, height int
	ticks         int
}

func New(s *engine.Session, r engine.FrameRenderer, width, height int) *Player {
	return &Player{Session: s, Renderer: r, width: width, height: height}
}

// Handle выполняет команду; закрытие завершает игровой цикл
func (p *Player) Handle(a Action) error {
	switch a {
	case ActionToggle:
		p.Session.Toggle()
	case ActionRestart:
		p.Session.Restart()
	case ActionClose:
		p.Session.Close()
		return ebiten.Termination
	}
	return nil
}

// Tick делает один шаг обновления с явным приращением времени
func (p *Player) Tick(dt time.Duration) error {
drain:
	for {
		select {
		case tl, ok := <-p.Reload:
			if !ok {
				p.Reload = nil
				break drain
			}
			p.Session.SetTimeline(tl)
		default:
			break drain
		}
	}
	p.Session.Advance(dt)
	p.ticks++
	return nil
}

func (p *Player) Update() error {
	for _, k := range keymap {
		if inpututil.IsKeyJustPressed(k.key) {
			if err := p.Handle(k.action); err != nil {
				return err
			}
		}
	}
	return p.Tick(time.Second / time.Duration(ebiten.TPS()))
}

func (p *Player) Draw(screen *ebiten.Image) {
	fs := p.Session.Frame(float64(p.width), float64(p.height))
	img, err := p.Renderer.Render(fs)
	if err != nil {
		logging.Logger().Warn("frame not rendered", "err", err)
		return
	}
	if img.Bounds().Size() != screen.Bounds().Size() {
		// окно изменило размер между Layout и Draw
		return
	}
	screen.WritePixels(img.Pix)
}

// Layout рисует в родном размере окна, камера перестраивается при ресайзе
func (p *Player) Layout(outsideWidth, outsideHeight int) (int, int) {
	p.width, p.height = max(1, outsideWidth), max(1, outsideHeight)
	return p.width, p.height
}

// Ticks - число обновлений с начала
func (p *Player) Ticks() int {
	return p.ticks
}

// Run открывает окно и блокируется до его закрытия
func Run(p *Player, title string) error {
	ebiten.SetWindowSize(p.width, p.height)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(p); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
