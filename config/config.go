// Package config holds the application settings shared by the desktop app
// and the headless daemon.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Audio struct {
	Path   string  `yaml:"path"`
	Volume float64 `yaml:"volume"`
}

type Journey struct {
	ID            string  `yaml:"id"`
	Name          string  `yaml:"name"`
	Preset        string  `yaml:"preset"`
	TotalDuration float64 `yaml:"total_duration"`
}

type Store struct {
	DSN string `yaml:"dsn"` // yaml://dir or a sqlite path
}

type Server struct {
	Listen string `yaml:"listen"`
	FPS    int    `yaml:"fps"`
}

type Window struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type Log struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

type Presets struct {
	Dir   string `yaml:"dir"`
	Watch bool   `yaml:"watch"`
}

type Config struct {
	Audio   Audio   `yaml:"audio"`
	Journey Journey `yaml:"journey"`
	Store   Store   `yaml:"store"`
	Server  Server  `yaml:"server"`
	Window  Window  `yaml:"window"`
	Log     Log     `yaml:"log"`
	Presets Presets `yaml:"presets"`
}

// Default returns the settings used when no file is present.
func Default() *Config {
	return &Config{
		Audio:   Audio{Volume: 1},
		Journey: Journey{ID: "journey", Name: "Untitled journey", TotalDuration: 120},
		Store:   Store{DSN: "journeys.db"},
		Server:  Server{Listen: ":8080", FPS: 60},
		Window:  Window{Width: 1280, Height: 720},
		Log:     Log{Level: "info", Pretty: true},
		Presets: Presets{Dir: "presets", Watch: true},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	c := Default()
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}
	c.fill()
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, b, 0644)
}

// fill restores defaults for values a file zeroed out.
func (c *Config) fill() {
	d := Default()
	if c.Audio.Volume <= 0 || c.Audio.Volume > 1 {
		c.Audio.Volume = d.Audio.Volume
	}
	if c.Journey.ID == "" {
		c.Journey.ID = d.Journey.ID
	}
	if c.Journey.TotalDuration <= 0 {
		c.Journey.TotalDuration = d.Journey.TotalDuration
	}
	if c.Store.DSN == "" {
		c.Store.DSN = d.Store.DSN
	}
	if c.Server.Listen == "" {
		c.Server.Listen = d.Server.Listen
	}
	if c.Server.FPS <= 0 {
		c.Server.FPS = d.Server.FPS
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		c.Window = d.Window
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

// SetupLogging configures the global zerolog logger.
func (l Log) SetupLogging() {
	level, err := zerolog.ParseLevel(strings.ToLower(l.Level))
	if err != nil || l.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if l.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	if err != nil {
		log.Warn().Str("level", l.Level).Msg("unknown log level; using info")
	}
}
