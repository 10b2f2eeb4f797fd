package playback

import (
	"math"
	"time"
)

// Phase - одна из фаз активного элемента, у каждой своя длительность
type Phase int

const (
	Drawing Phase = iota
	Pausing
	Transitioning
)

func (p Phase) String() string {
	switch p {
	case Drawing:
		return "drawing"
	case Pausing:
		return "pausing"
	case Transitioning:
		return "transitioning"
	default:
		return "unknown"
	}
}

// ResumePolicy определяет, что станет с прошедшим временем фазы после паузы
type ResumePolicy int

const (
	// RestartPhase запускает прерванную фазу заново
	RestartPhase ResumePolicy = iota
	// ResumeElapsed продолжает фазу с места остановки
	ResumeElapsed
)

// ParseResumePolicy понимает "restart" и "elapsed"; все остальное - restart
func ParseResumePolicy(s string) ResumePolicy {
	if s == "elapsed" || s == "resume" {
		return ResumeElapsed
	}
	return RestartPhase
}

// Durations - длительности фаз одного элемента
type Durations struct {
	Animate    time.Duration
	Pause      time.Duration
	Transition time.Duration
}

// Seconds переводит длительности из секунд; неположительные становятся нулем
func Seconds(animate, pause, transition float64) Durations {
	return Durations{
		Animate:    seconds(animate),
		Pause:      seconds(pause),
		Transition: seconds(transition),
	}
}

func (d Durations) of(p Phase) time.Duration {
	var v time.Duration
	switch p {
	case Drawing:
		v = d.Animate
	case Pausing:
		v = d.Pause
	case Transitioning:
		v = d.Transition
	}
	if v < 0 {
		return 0
	}
	return v
}

// State - снимок состояния секвенсора
type State struct {
	Open    bool
	Index   int // == Count после завершения
	Count   int
	Phase   Phase
	Running bool
	Elapsed time.Duration // время в текущей фазе
	Length  time.Duration // длительность текущей фазы
	Epoch   uint64        // меняется при каждом (пере)входе в фазу
}

// Finished - индекс за последним элементом
func (s State) Finished() bool {
	return s.Open && s.Index >= s.Count
}

// Active - Index указывает на элемент
func (s State) Active() bool {
	return s.Open && s.Index >= 0 && s.Index < s.Count
}

// Progress возвращает Elapsed/Length в [0,1]; фаза нулевой длины завершена
func (s State) Progress() float64 {
	if s.Length <= 0 {
		return 1
	}
	return math.Min(1, float64(s.Elapsed)/float64(s.Length))
}

// Transition сообщается при каждой смене фазы
type Transition struct {
	Index    int
	From, To Phase
	Done     bool // воспроизведение закончено
	At       time.Duration
}

// phaseTimer - единственный таймер секвенсора.
// Новый взвод заменяет старый; несовпадение эпохи значит отмену.
type phaseTimer struct {
	epoch     uint64
	remaining time.Duration
	armed     bool
}

// Sequencer проводит элементы по одному через рисование, паузу и переход.
// Его двигает Advance из цикла кадров; для конкурентного доступа он не предназначен.
type Sequencer struct {
	policy ResumePolicy

	durations []Durations
	open      bool
	index     int
	phase     Phase
	running   bool
	elapsed   time.Duration
	clock     time.Duration // время сессии, для Transition.At

	timer phaseTimer
	epoch uint64

	OnTransition func(Transition)
}

// NewSequencer создает закрытый секвенсор
func NewSequencer(policy ResumePolicy) *Sequencer {
	return &Sequencer{policy: policy}
}

// Open начинает сессию по копии длительностей.
// Открытая сессия сначала закрывается. Пустой таймлайн сразу завершается.
func (s *Sequencer) Open(durations []Durations) {
	if s.open {
		s.Close()
	}
	s.durations = append([]Durations(nil), durations...)
	s.open = true
	s.clock = 0
	s.start(0)
}

// Close отменяет таймер и сбрасывает состояние сессии
func (s *Sequencer) Close() {
	s.cancel()
	s.open = false
	s.running = false
	s.durations = nil
	s.index, s.phase, s.elapsed = 0, Drawing, 0
}

// Restart ставит первый элемент в рисование и запускает
func (s *Sequencer) Restart() {
	if !s.open {
		return
	}
	s.start(0)
}

// Play снимает с паузы; после завершения ничего не делает
func (s *Sequencer) Play() {
	if !s.open || s.running || s.index >= len(s.durations) {
		return
	}
	s.running = true
	if s.policy == RestartPhase || !s.timer.armed {
		s.enter(s.phase)
	}
}

// Pause замораживает текущую фазу и ее прошедшее время
func (s *Sequencer) Pause() {
	if !s.open || !s.running {
		return
	}
	s.running = false
}

// Toggle переключает пуск и паузу; после завершения ничего не делает
func (s *Sequencer) Toggle() {
	if s.running {
		s.Pause()
	} else {
		s.Play()
	}
}

// Retime подменяет длительности на ходу, для правок таймлайна во время сессии.
// Индекс ограничивается диапазоном, пустой список завершает воспроизведение.
func (s *Sequencer) Retime(durations []Durations) {
	if !s.open {
		return
	}
	finished := s.index >= len(s.durations)
	s.durations = append([]Durations(nil), durations...)
	n := len(s.durations)

	switch {
	case n == 0 || finished:
		s.finish()
	case s.index >= n:
		s.index = n - 1
		s.rearm()
	default:
		s.rearm()
	}
}

// Advance сдвигает время сессии на dt и срабатывает на каждую смену фазы
// внутри интервала. Фазы нулевой длины завершаются в том же вызове.
func (s *Sequencer) Advance(dt time.Duration) {
	if !s.open || !s.running || dt < 0 {
		return
	}
	for s.running && s.timer.armed {
		if s.timer.remaining > dt {
			s.timer.remaining -= dt
			s.elapsed += dt
			s.clock += dt
			return
		}
		dt -= s.timer.remaining
		s.elapsed += s.timer.remaining
		s.clock += s.timer.remaining
		s.timer.remaining = 0
		s.fire(s.timer.epoch)
	}
	s.clock += dt
}

// State возвращает снимок
func (s *Sequencer) State() State {
	st := State{
		Open:    s.open,
		Index:   s.index,
		Count:   len(s.durations),
		Phase:   s.phase,
		Running: s.running,
		Elapsed: s.elapsed,
		Epoch:   s.epoch,
	}
	if s.index < len(s.durations) {
		st.Length = s.durations[s.index].of(s.phase)
	}
	return st
}

// Now - время сессии, накопленное Advance
func (s *Sequencer) Now() time.Duration {
	return s.clock
}

func (s *Sequencer) start(index int) {
	s.cancel()
	s.index = index
	s.phase = Drawing
	if index >= len(s.durations) {
		s.finish()
		return
	}
	s.running = true
	s.enter(Drawing)
}

// enter (пере)запускает фазу и взводит для нее таймер
func (s *Sequencer) enter(p Phase) {
	s.phase = p
	s.elapsed = 0
	s.epoch++
	s.timer = phaseTimer{
		epoch:     s.epoch,
		remaining: s.durations[s.index].of(p),
		armed:     true,
	}
}

// rearm сохраняет прошедшее время, но перечитывает длительность фазы
func (s *Sequencer) rearm() {
	length := s.durations[s.index].of(s.phase)
	remaining := length - s.elapsed
	if remaining < 0 {
		remaining = 0
	}
	s.epoch++
	s.timer = phaseTimer{epoch: s.epoch, remaining: remaining, armed: true}
}

func (s *Sequencer) cancel() {
	s.epoch++
	s.timer = phaseTimer{}
}

func (s *Sequencer) fire(epoch uint64) {
	if !s.timer.armed || epoch != s.timer.epoch {
		return
	}
	s.timer.armed = false

	from := s.phase
	switch from {
	case Drawing:
		s.enter(Pausing)
		s.report(Transition{Index: s.index, From: from, To: Pausing})
	case Pausing:
		s.enter(Transitioning)
		s.report(Transition{Index: s.index, From: from, To: Transitioning})
	case Transitioning:
		if s.index < len(s.durations)-1 {
			s.index++
			s.enter(Drawing)
			s.report(Transition{Index: s.index, From: from, To: Drawing})
			return
		}
		last := s.index
		s.finish()
		s.report(Transition{Index: last, From: from, To: from, Done: true})
	}
}

func (s *Sequencer) finish() {
	s.cancel()
	s.index = len(s.durations)
	s.phase = Drawing
	s.elapsed = 0
	s.running = false
}

func (s *Sequencer) report(tr Transition) {
	if s.OnTransition != nil {
		tr.At = s.clock
		s.OnTransition(tr)
	}
}

// seconds упирается в максимальную длительность; +Inf - бесконечная фаза
func seconds(v float64) time.Duration {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= float64(math.MaxInt64)/float64(time.Second) {
		return math.MaxInt64
	}
	return time.Duration(v * float64(time.Second))
}
