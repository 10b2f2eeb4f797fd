package engine

import (
	"sync"
	"time"

	"github.com/ivlev/sketchplay/internal/camera"
	"github.com/ivlev/sketchplay/internal/cursor"
	"github.com/ivlev/sketchplay/internal/effects"
	"github.com/ivlev/sketchplay/internal/logging"
	"github.com/ivlev/sketchplay/internal/playback"
	"github.com/ivlev/sketchplay/internal/stroke"
	"github.com/ivlev/sketchplay/internal/timeline"
)

// RenderState говорит рендеру, что делать с элементом в этом кадре
type RenderState int

const (
	Waiting RenderState = iota
	Drawing
	Pausing
	Transitioning
	Done
)

func (r RenderState) String() string {
	switch r {
	case Waiting:
		return "waiting"
	case Drawing:
		return "drawing"
	case Pausing:
		return "pausing"
	case Transitioning:
		return "transitioning"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

func stateOf(p playback.Phase) RenderState {
	switch p {
	case playback.Pausing:
		return Pausing
	case playback.Transitioning:
		return Transitioning
	default:
		return Drawing
	}
}

// ElementFrame - данные одного элемента в кадре
type ElementFrame struct {
	Index      int
	Element    timeline.Element
	State      RenderState
	Reveal     float64 // нарисованная доля пути, 1 после завершения
	Appearance effects.Appearance
	Masked     bool         // проявление по Path, а не только через Appearance
	Path       *stroke.Path // nil, если нет маски или элемент не рисуется
	Style      stroke.Style
}

// Visible сообщает, виден ли элемент хотя бы частично
func (e ElementFrame) Visible() bool {
	return e.State != Waiting && e.Appearance.Opacity > 0
}

// FrameState - все, что нужно рендеру для одного кадра
type FrameState struct {
	Time      time.Duration
	ViewportW float64
	ViewportH float64
	Camera    camera.Transform
	Elements  []ElementFrame
	Cursor    stroke.Point
	HasCursor bool
	Playback  playback.State
}

// Options - настройки сессии
type Options struct {
	Resume    playback.ResumePolicy
	CacheSize int
	// OnTransition вызывается на каждую смену фазы под блокировкой сессии;
	// обращаться из него к сессии нельзя.
	OnTransition func(playback.Transition)
}

// Session - одно воспроизведение таймлайна. Методы управления можно вызывать
// из любой горутины; цикл кадров вызывает Advance и Frame.
type Session struct {
	mu sync.Mutex

	opts      Options
	tl        timeline.Timeline
	seq       *playback.Sequencer
	tracker   *cursor.Tracker
	paths     *stroke.Cache
	entrances []effects.Entrance
}

// NewSession создает закрытую сессию
func NewSession(opts Options) *Session {
	s := &Session{
		opts:    opts,
		seq:     playback.NewSequencer(opts.Resume),
		tracker: cursor.New(),
		paths:   stroke.NewCache(opts.CacheSize),
	}
	s.seq.OnTransition = s.transition
	return s
}

func (s *Session) transition(tr playback.Transition) {
	log := logging.Logger()
	if tr.Done {
		log.Info("playback finished", "elements", len(s.tl), "at", tr.At)
	} else {
		log.Debug("phase", "index", tr.Index, "from", tr.From, "to", tr.To, "at", tr.At)
	}
	if s.opts.OnTransition != nil {
		s.opts.OnTransition(tr)
	}
}

// Open запускает копию tl с первого элемента.
// Открытая сессия сначала закрывается.
func (s *Session) Open(tl timeline.Timeline) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seq.State().Open {
		s.closeLocked()
	}
	s.load(tl)
	logging.Logger().Info("session opened", "elements", len(s.tl), "duration", s.tl.TotalDuration())
	s.seq.Open(durationsOf(s.tl))
	s.sync(0)
}

// Close останавливает воспроизведение и сбрасывает состояние
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *Session) closeLocked() {
	s.seq.Close()
	s.tracker.Reset()
	s.paths.Purge()
	s.tl = nil
	s.entrances = nil
}

func (s *Session) Play() {
	s.control(s.seq.Play)
}

func (s *Session) Pause() {
	s.control(s.seq.Pause)
}

func (s *Session) Toggle() {
	s.control(s.seq.Toggle)
}

// Restart возвращается к первому элементу и запускает воспроизведение
func (s *Session) Restart() {
	s.control(s.seq.Restart)
}

func (s *Session) control(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
	s.sync(0)
}

// SetTimeline подменяет таймлайн открытой сессии, например после правки файла.
// Активный индекс ограничивается; пустой таймлайн завершает воспроизведение.
func (s *Session) SetTimeline(tl timeline.Timeline) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seq.State().Open {
		return
	}
	s.load(tl)
	s.seq.Retime(durationsOf(s.tl))
	s.sync(0)
	logging.Logger().Debug("timeline replaced", "elements", len(s.tl), "index", s.seq.State().Index)
}

// Advance сдвигает время сессии на dt
func (s *Session) Advance(dt time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq.Advance(dt)
	s.sync(dt)
}

// State возвращает состояние секвенсора
func (s *Session) State() playback.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq.State()
}

// Timeline возвращает нормализованный таймлайн
func (s *Session) Timeline() timeline.Timeline {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(timeline.Timeline(nil), s.tl...)
}

// Frame считает кадр для вьюпорта заданного размера
func (s *Session) Frame(viewportW, viewportH float64) FrameState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.seq.State()
	fs := FrameState{
		Time:      s.seq.Now(),
		ViewportW: viewportW,
		ViewportH: viewportH,
		Camera:    s.cameraFor(st, viewportW, viewportH),
		Playback:  st,
		Elements:  make([]ElementFrame, len(s.tl)),
	}

	for i, el := range s.tl {
		fs.Elements[i] = s.elementFrame(i, el, st)
	}

	if st.Active() && st.Phase == playback.Drawing && s.entrances[st.Index].Masked() {
		fs.Cursor, fs.HasCursor = s.tracker.Point(fs.Camera)
	}
	return fs
}

// cameraFor наводит камеру на активный элемент. Во время перехода камера
// плавно едет к следующему элементу, а после последнего - на весь холст.
func (s *Session) cameraFor(st playback.State, vw, vh float64) camera.Transform {
	if !st.Active() {
		return camera.Identity()
	}
	from := camera.Plan(s.tl[st.Index].Bounds(), vw, vh)
	if st.Phase != playback.Transitioning {
		return from
	}

	to := camera.Identity()
	if next := st.Index + 1; next < len(s.tl) {
		to = camera.Plan(s.tl[next].Bounds(), vw, vh)
	}
	return camera.Move{From: from, To: to}.At(st.Progress())
}

func (s *Session) elementFrame(i int, el timeline.Element, st playback.State) ElementFrame {
	ent := s.entrances[i]
	ef := ElementFrame{
		Index:      i,
		Element:    el,
		Masked:     ent.Masked(),
		Style:      stroke.StyleFor(el),
		Reveal:     1,
		Appearance: effects.Visible(),
	}

	switch {
	case i < st.Index:
		ef.State = Done
	case i > st.Index || !st.Active():
		ef.State = Waiting
		ef.Reveal = 0
		ef.Appearance = effects.Hidden()
	default:
		ef.State = stateOf(st.Phase)
		if ef.State != Drawing {
			break
		}
		progress := st.Progress()
		ef.Appearance = ent.At(progress)
		if !ef.Masked {
			break
		}
		// вырожденный путь считаем уже нарисованным
		if path := s.paths.ForElement(el); path.Length() > 0 {
			ef.Path = path
			ef.Reveal = progress
		}
	}
	return ef
}

// sync синхронизирует курсор с секвенсором
func (s *Session) sync(dt time.Duration) {
	st := s.seq.State()
	if !st.Active() {
		s.tracker.Reset()
		return
	}
	el := s.tl[st.Index]
	var path *stroke.Path
	if s.entrances[st.Index].Masked() {
		path = s.paths.PlainForElement(el)
	}
	s.tracker.Update(st.Index, el, path, st, dt)
}

func (s *Session) load(tl timeline.Timeline) {
	s.tl = tl.Normalize()
	s.entrances = effects.ForTimeline(s.tl)
	if err := s.tl.Validate(); err != nil {
		logging.Logger().Warn("timeline has problems, playing anyway", "err", err)
	}
}

func durationsOf(tl timeline.Timeline) []playback.Durations {
	out := make([]playback.Durations, len(tl))
	for i, el := range tl {
		out[i] = playback.Seconds(el.AnimateDuration, el.PauseDuration, el.TransitionDuration)
	}
	return out
}
