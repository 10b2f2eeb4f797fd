package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/ivlev/sketchplay/internal/analyzer"
	"github.com/ivlev/sketchplay/internal/camera"
	"github.com/ivlev/sketchplay/internal/config"
	"github.com/ivlev/sketchplay/internal/director"
	"github.com/ivlev/sketchplay/internal/engine"
	"github.com/ivlev/sketchplay/internal/logging"
	"github.com/ivlev/sketchplay/internal/player"
	"github.com/ivlev/sketchplay/internal/playback"
	"github.com/ivlev/sketchplay/internal/renderer"
	"github.com/ivlev/sketchplay/internal/source"
	"github.com/ivlev/sketchplay/internal/system"
	"github.com/ivlev/sketchplay/internal/timeline"
)

var version = "dev"

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	if err := system.EnsureDirs(director.DefaultDir, "output"); err != nil {
		log.Printf("[!] Не удалось создать папку: %v", err)
	}

	modePtr := flag.String("mode", config.ModePlay, "Режим: play (без окна), window (окно), snapshot (кадры в PNG), compose (раскадровка из PDF)")
	storyboardPtr := flag.String("storyboard", "", "Путь к раскадровке YAML (по умолчанию: самая свежая в input/storyboards/)")
	inputPtr := flag.String("input", "", "PDF или папка с изображениями для режима compose")
	outputPtr := flag.String("output", "", "Куда сохранить результат (если пусто, генерируется автоматически)")
	widthPtr := flag.Int("width", 1280, "Ширина")
	heightPtr := flag.Int("height", 720, "Высота")
	presetPtr := flag.String("preset", "", "Пресет формата: 16:9, 9:16 (Shorts/TikTok), 4:5 (Instagram), 1:1")
	fpsPtr := flag.Int("fps", 30, "FPS")
	workersPtr := flag.Int("workers", runtime.NumCPU(), "Потоки")
	resumePtr := flag.String("resume", "restart", "Продолжение после паузы: restart (фаза заново) или elapsed (с того же места)")
	atPtr := flag.String("at", "0", "Моменты снимков через запятую, например 0,1.5,2500ms")
	everyPtr := flag.Float64("every", 0, "Интервал снимков в секундах (заменяет -at)")
	durationPtr := flag.Float64("duration", 0, "Общая длительность раскадровки в режиме compose (0 - по числу страниц)")
	detectorPtr := flag.String("detector", "contrast", "Анализ страниц: contrast или none")
	texturePtr := flag.String("texture", "", "Фон: paper, whiteboard, blueprint (по умолчанию из раскадровки)")
	watchPtr := flag.Bool("watch", false, "Перезагружать раскадровку при сохранении файла")
	statsPtr := flag.Bool("stats", false, "Показать нагрузку на систему по завершении")
	verbosePtr := flag.Bool("verbose", false, "Подробный лог")

	flag.Parse()

	times, err := config.ParseTimes(*atPtr)
	if err != nil {
		log.Fatalf("[-] Ошибка: %v", err)
	}

	cfg := &config.Config{
		Mode:           *modePtr,
		StoryboardPath: *storyboardPtr,
		InputPath:      *inputPtr,
		OutputPath:     *outputPtr,
		Width:          *widthPtr,
		Height:         *heightPtr,
		Preset:         *presetPtr,
		FPS:            *fpsPtr,
		Workers:        *workersPtr,
		Resume:         *resumePtr,
		At:             times,
		Every:          time.Duration(*everyPtr * float64(time.Second)),
		TotalDuration:  *durationPtr,
		Detector:       *detectorPtr,
		Texture:        *texturePtr,
		Watch:          *watchPtr,
		ShowStats:      *statsPtr,
		Verbose:        *verbosePtr,
		BuildVersion:   version,
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Ошибка конфигурации: %v", err)
	}

	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logging.SetLogger(logging.NewText(os.Stderr, level))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	var summary []string
	switch cfg.Mode {
	case config.ModeCompose:
		summary, err = compose(ctx, cfg)
	default:
		summary, err = play(ctx, cfg)
	}
	if err != nil {
		log.Fatalf("[-] Ошибка: %v", err)
	}

	if cfg.ShowStats {
		stats, err := system.Collect(ctx, 200*time.Millisecond)
		if err != nil {
			log.Printf("[!] Не удалось собрать статистику: %v", err)
		} else {
			rows := append([]string{fmt.Sprintf("Время работы: %v", time.Since(start).Round(time.Millisecond))}, summary...)
			fmt.Print(stats.Report("SKETCHPLAY "+cfg.BuildVersion, rows...))
		}
	}
}

// compose собирает раскадровку из PDF или папки с изображениями
func compose(ctx context.Context, cfg *config.Config) ([]string, error) {
	input, err := filepath.Abs(cfg.InputPath)
	if err != nil {
		return nil, err
	}
	src, err := source.Open(input)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации источника: %w", err)
	}
	defer src.Close()

	pageCount := src.PageCount()
	if pageCount == 0 {
		return nil, fmt.Errorf("в источнике нет страниц или изображений")
	}
	fmt.Printf("[*] Источник: %s (%d стр.)\n", input, pageCount)

	d := director.NewDirector()
	if d.Detector, err = analyzer.NewDetector(cfg.Detector); err != nil {
		return nil, err
	}
	if cfg.Texture != "" {
		d.Texture = cfg.Texture
	}

	pages, err := d.Analyze(ctx, src, cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("анализ страниц: %w", err)
	}
	sb, err := d.Compose(pages, cfg.TotalDuration)
	if err != nil {
		return nil, err
	}

	out := cfg.OutputPath
	if out == "" {
		out = director.GenerateStoryboardPath(director.DefaultDir, time.Now())
	}
	if err := director.WriteStoryboard(sb, out); err != nil {
		return nil, fmt.Errorf("сохранение раскадровки: %w", err)
	}

	tl := sb.Timeline().Normalize()
	track := camera.TrackFor(tl, float64(cfg.Width), float64(cfg.Height))
	for i := 0; i+1 < len(track.Keyframes); i += 2 {
		kf := track.Keyframes[i]
		fmt.Printf("[*] %s: с %.1fs до %.1fs, масштаб камеры %.2f\n",
			tl[i/2].ID, kf.Time, track.Keyframes[i+1].Time, track.At(kf.Time).Scale)
	}

	total := tl.TotalDuration()
	fmt.Printf("[+++] Успех! Раскадровка: %s (%d элементов, %.1fs)\n", out, len(sb.Elements), total)
	return []string{fmt.Sprintf("Страниц: %d", pageCount)}, nil
}

// play загружает раскадровку и запускает ее в выбранном режиме
func play(ctx context.Context, cfg *config.Config) ([]string, error) {
	path := cfg.StoryboardPath
	if path == "" {
		latest, err := director.FindLatestStoryboard(director.DefaultDir)
		if err != nil {
			return nil, fmt.Errorf("%v. Положите раскадровку в %s/ или запустите -mode compose", err, director.DefaultDir)
		}
		path = latest
		fmt.Printf("[*] Выбрана раскадровка: %s\n", path)
	}

	sb, err := director.ReadStoryboard(path)
	if err != nil {
		return nil, err
	}
	tl := sb.Timeline()
	if err := tl.Normalize().Validate(); err != nil {
		log.Printf("[!] Раскадровка с ошибками, проблемные элементы будут пропущены:\n%v", err)
	}

	params := cfg.SessionParams()
	texture := renderer.ParseTexture(sb.Canvas.Texture)
	if params.Texture != "" {
		texture = renderer.ParseTexture(params.Texture)
	}

	loader := source.NewLoader(filepath.Dir(path), 0)
	loader.Ink = texture.Ink()
	if err := loader.Preload(ctx, tl, cfg.Workers); err != nil {
		return nil, err
	}
	fmt.Printf("[*] Загружено ресурсов: %d из %d элементов\n", loader.Len(), len(tl))
	r := renderer.New(loader, texture)

	opts := engine.Options{Resume: params.Resume}
	w, h := float64(params.Width), float64(params.Height)

	switch cfg.Mode {
	case config.ModeSnapshot:
		return snapshot(ctx, cfg, tl, opts, r)

	case config.ModeWindow:
		s := engine.NewSession(opts)
		s.Open(tl)
		p := player.New(s, r, params.Width, params.Height)
		if cfg.Watch {
			reload := make(chan timeline.Timeline, 1)
			p.Reload = reload
			watch(ctx, path, queueReload(ctx, loader, reload, cfg.Workers))
		}
		fmt.Println("[*] Пробел - пауза, R - заново, Esc - выход")
		if err := player.Run(p, "sketchplay: "+filepath.Base(path)); err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("Тиков: %d", p.Ticks())}, nil

	default:
		opts.OnTransition = func(tr playback.Transition) {
			if !tr.Done && tr.To == playback.Drawing {
				fmt.Printf("[>] Элемент %d из %d\n", tr.Index+1, len(tl))
			}
		}
		s := engine.NewSession(opts)
		s.Open(tl)
		run := engine.NewRunner(s, params.FPS, w, h)
		if cfg.Watch {
			watch(ctx, path, s.SetTimeline)
		}
		fmt.Printf("[*] Воспроизведение: %d элементов, %.1fs\n", len(tl), tl.Normalize().TotalDuration())
		if err := run.Run(ctx); err != nil {
			fmt.Println("[!] Остановлено")
		} else {
			fmt.Println("[+++] Воспроизведение завершено")
		}
		return []string{fmt.Sprintf("Кадров: %d", run.Frames())}, nil
	}
}

// snapshot сохраняет кадры в заданные моменты в PNG
func snapshot(ctx context.Context, cfg *config.Config, tl timeline.Timeline, opts engine.Options, r engine.FrameRenderer) ([]string, error) {
	times := cfg.At
	if cfg.Every > 0 {
		total := time.Duration(tl.Normalize().TotalDuration() * float64(time.Second))
		times = engine.Every(total, cfg.Every)
	}

	stills, err := engine.Snapshot(ctx, engine.SnapshotJob{
		Timeline:  tl,
		Options:   opts,
		Times:     times,
		ViewportW: float64(cfg.Width),
		ViewportH: float64(cfg.Height),
		Workers:   cfg.Workers,
	}, r)
	if err != nil {
		return nil, err
	}

	dir := cfg.OutputPath
	if dir == "" {
		dir = filepath.Join("output", "snapshots_"+time.Now().Format("2006-01-02_15-04-05"))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	for i, st := range stills {
		name := filepath.Join(dir, fmt.Sprintf("frame_%04d_%.2fs.png", i+1, st.At.Seconds()))
		f, err := os.Create(name)
		if err != nil {
			return nil, err
		}
		err = png.Encode(f, st.Image)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	fmt.Printf("[+++] Успех! Снимков: %d в %s\n", len(stills), dir)
	return []string{fmt.Sprintf("Снимков: %d", len(stills))}, nil
}

type preloader interface {
	Preload(ctx context.Context, tl timeline.Timeline, workers int) error
}

// queueReload подгружает ресурсы новой версии раскадровки и передает ее плееру.
// Версия, которую плеер еще не забрал, заменяется новой.
func queueReload(ctx context.Context, assets preloader, reload chan timeline.Timeline, workers int) func(timeline.Timeline) {
	return func(next timeline.Timeline) {
		if err := assets.Preload(ctx, next, workers); err != nil {
			log.Printf("[!] Ресурсы новой версии раскадровки не загружены: %v", err)
		}
		for {
			select {
			case reload <- next:
				return
			default:
			}
			select {
			case <-reload:
			default:
			}
		}
	}
}

// watch передает в apply каждую сохраненную версию раскадровки, пока ctx не завершен
func watch(ctx context.Context, path string, apply func(timeline.Timeline)) {
	w, err := director.NewWatcher(path)
	if err != nil {
		log.Printf("[!] Слежение за файлом недоступно: %v", err)
		return
	}
	fmt.Printf("[*] Слежу за изменениями: %s\n", path)
	go w.Run(ctx, func(sb *director.Storyboard) {
		fmt.Printf("[*] Раскадровка обновлена: %d элементов\n", len(sb.Elements))
		apply(sb.Timeline())
	})
}
