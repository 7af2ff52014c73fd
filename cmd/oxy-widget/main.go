package main

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/Carmen-Shannon/oxy-widget/engine"
	"github.com/Carmen-Shannon/oxy-widget/engine/animator"
	"github.com/Carmen-Shannon/oxy-widget/engine/config"
	"github.com/Carmen-Shannon/oxy-widget/engine/hook"
	"github.com/Carmen-Shannon/oxy-widget/engine/loader"
	"github.com/Carmen-Shannon/oxy-widget/engine/renderer"
	"github.com/Carmen-Shannon/oxy-widget/engine/window"
	"github.com/xlab/closer"
)

// version is set with -ldflags "-X main.version=...".
var version string

// globalKeyBuffer is the capacity of the channel between the keyboard hook and the render loop.
const globalKeyBuffer = 64

func buildVersion() string {
	if version != "" {
		return version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return info.Main.Version
}

func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("no config at %s, using defaults", path)
		return config.Default()
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// packPath resolves a relative pack path against the config file's directory.
func packPath(cfgPath, pack string) string {
	if filepath.IsAbs(pack) {
		return pack
	}
	return filepath.Join(filepath.Dir(cfgPath), pack)
}

func main() {
	defer closer.Close()

	log.Printf("oxy-widget %s", buildVersion())

	cfgPath := config.DefaultPath
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}
	cfg := loadConfig(cfgPath)

	winOpts := []window.WindowBuilderOption{
		window.WithWidth(int(cfg.WindowSize[0])),
		window.WithHeight(int(cfg.WindowSize[1])),
	}
	if cfg.WindowPosition != [2]float64{} {
		winOpts = append(winOpts, window.WithPosition(int(cfg.WindowPosition[0]), int(cfg.WindowPosition[1])))
	}
	win := window.NewWindow(winOpts...)

	presentMode := renderer.PresentModeVSync
	if !cfg.VSync {
		presentMode = renderer.PresentModeUncapped
	}
	r, err := renderer.NewRenderer(
		renderer.BackendTypeWGPU,
		win,
		renderer.WithPresentMode(presentMode),
		renderer.WithScale(cfg.Scale),
		renderer.WithBottomOffset(cfg.BottomOffset),
	)
	if err != nil {
		log.Fatalf("failed to create renderer: %v", err)
	}

	rig, atlas, err := loader.NewLoader().LoadRig(packPath(cfgPath, cfg.Pack))
	if err != nil {
		r.Release()
		log.Fatalf("failed to load character: %v", err)
	}
	atlas.Release()

	idle := cfg.IdleAnimation
	if idle == "" && rig.HasAnimation(loader.IdleAnimation) {
		idle = loader.IdleAnimation
	}
	seq := animator.NewSequencer(rig,
		animator.WithActions(cfg.Actions),
		animator.WithIdleAnimation(idle),
		animator.WithScaler(r.Scaling()),
	)
	if idle != "" && idle != loader.IdleAnimation {
		rig.SetTrack(0, idle, true)
	}

	events := make(chan hook.Event, globalKeyBuffer)
	h, err := hook.Install(events)
	if err != nil {
		log.Printf("global keys disabled: %v", err)
	}

	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithRenderer(r),
		engine.WithPose(rig),
		engine.WithSequencer(seq),
		engine.WithGlobalKeys(events),
		engine.WithOpacity(cfg.Opacity),
		engine.WithProfiling(cfg.Profiling),
	)

	closer.Bind(func() {
		if h != nil {
			if err := h.Close(); err != nil {
				log.Printf("failed to remove keyboard hook: %v", err)
			}
		}

		w, hgt := win.LogicalSize()
		x, y := win.Position()
		cfg.WindowSize = [2]float64{w, hgt}
		cfg.WindowPosition = [2]float64{float64(x), float64(y)}
		cfg.Scale = r.Scaling().Scale()
		cfg.Opacity = eng.Opacity()
		if err := cfg.Save(cfgPath); err != nil {
			log.Printf("failed to save config: %v", err)
		}

		rig.Release()
		r.Release()
		if err := win.Close(); err != nil {
			log.Printf("failed to close window: %v", err)
		}
	})

	eng.Run()

	if err := eng.Err(); err != nil {
		log.Printf("stopped: %v", err)
		closer.Exit(1)
	}
}
