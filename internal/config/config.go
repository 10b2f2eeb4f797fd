package config

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/ivlev/sketchplay/internal/playback"
)

const (
	ModePlay     = "play"
	ModeWindow   = "window"
	ModeSnapshot = "snapshot"
	ModeCompose  = "compose"
)

// Config is everything the command line controls
type Config struct {
	Mode           string
	StoryboardPath string
	InputPath      string // compose source
	OutputPath     string
	Width          int
	Height         int
	Preset         string
	FPS            int
	Workers        int
	Resume         string
	At             []time.Duration // snapshot timestamps
	Every          time.Duration   // snapshot interval, overrides At
	TotalDuration  float64         // compose target, seconds
	Detector       string
	Texture        string
	Watch          bool
	ShowStats      bool
	Verbose        bool
	BuildVersion   string
}

// SessionParams is the per-session subset of Config
type SessionParams struct {
	Width, Height int
	FPS           int
	Resume        playback.ResumePolicy
	Texture       string
}

// Presets maps aspect presets to viewport sizes
var Presets = map[string][2]int{
	"16:9": {1280, 720},
	"9:16": {720, 1280},
	"4:5":  {1080, 1350},
	"1:1":  {1080, 1080},
}

// Validate applies the preset, fills defaults and rejects unusable values
func (c *Config) Validate() error {
	if c.Mode == "" {
		c.Mode = ModePlay
	}
	switch c.Mode {
	case ModePlay, ModeWindow, ModeSnapshot, ModeCompose:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}

	if c.Preset != "" {
		size, ok := Presets[c.Preset]
		if !ok {
			return fmt.Errorf("unknown preset %q", c.Preset)
		}
		c.Width, c.Height = size[0], size[1]
	}
	if c.Width <= 0 || c.Height <= 0 {
		c.Width, c.Height = 1280, 720
	}
	if c.FPS <= 0 {
		c.FPS = 30
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Resume == "" {
		c.Resume = "restart"
	}
	if c.Mode == ModeCompose && c.InputPath == "" {
		return fmt.Errorf("compose needs an input PDF or image folder")
	}
	return nil
}

func (c *Config) SessionParams() SessionParams {
	return SessionParams{
		Width:   c.Width,
		Height:  c.Height,
		FPS:     c.FPS,
		Resume:  playback.ParseResumePolicy(c.Resume),
		Texture: c.Texture,
	}
}

// ParseTimes reads a comma separated list of timestamps. Bare numbers are
// seconds, anything else goes through time.ParseDuration.
func ParseTimes(s string) ([]time.Duration, error) {
	var out []time.Duration
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := ParseSeconds(part)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// ParseSeconds accepts "2.5" or "2500ms"; negative values are rejected
func ParseSeconds(s string) (time.Duration, error) {
	var d time.Duration
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		d = time.Duration(v * float64(time.Second))
	} else if d, err = time.ParseDuration(s); err != nil {
		return 0, fmt.Errorf("bad time %q", s)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative time %q", s)
	}
	return d, nil
}
