package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/san-kum/stepviz/internal/render"
	"github.com/san-kum/stepviz/internal/scene"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSpeedMin   = 50
	DefaultSpeedMax   = 1000
	DefaultSpeedValue = 500
	DefaultServerURL  = "http://127.0.0.1:5000"
	DefaultTimeout    = 30 * time.Second
	DefaultListen     = "127.0.0.1:8080"
	DefaultDataDir    = "scenarios"
	DefaultTheme      = "cyberpunk"
	DefaultLogLevel   = "info"
)

var ErrInvalid = errors.New("config: invalid configuration")

type Config struct {
	Speed    SpeedConfig  `yaml:"speed"`
	Layout   scene.Layout `yaml:"layout"`
	Theme    string       `yaml:"theme"`
	Server   ServerConfig `yaml:"server"`
	Listen   string       `yaml:"listen"`
	DataDir  string       `yaml:"data_dir"`
	LogLevel string       `yaml:"log_level"`
}

// SpeedConfig bounds the pacing control. The per-step delay is
// (Max + Min - Value) milliseconds.
type SpeedConfig struct {
	Min   int `yaml:"min"`
	Max   int `yaml:"max"`
	Value int `yaml:"value"`
}

type ServerConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

func DefaultConfig() *Config {
	return &Config{
		Speed: SpeedConfig{
			Min:   DefaultSpeedMin,
			Max:   DefaultSpeedMax,
			Value: DefaultSpeedValue,
		},
		Layout: scene.DefaultLayout(),
		Theme:  DefaultTheme,
		Server: ServerConfig{
			URL:     DefaultServerURL,
			Timeout: DefaultTimeout,
		},
		Listen:   DefaultListen,
		DataDir:  DefaultDataDir,
		LogLevel: DefaultLogLevel,
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	var errs []error
	if c.Speed.Min < 0 || c.Speed.Max < c.Speed.Min {
		errs = append(errs, fmt.Errorf("%w: speed bounds [%d, %d]", ErrInvalid, c.Speed.Min, c.Speed.Max))
	}
	if c.Layout.GrowthFactor <= 1 {
		errs = append(errs, fmt.Errorf("%w: layout.growth_factor must be > 1, got %v", ErrInvalid, c.Layout.GrowthFactor))
	}
	if c.Layout.Width <= 0 || c.Layout.Height <= 0 {
		errs = append(errs, fmt.Errorf("%w: layout size %vx%v", ErrInvalid, c.Layout.Width, c.Layout.Height))
	}
	if !render.HasTheme(c.Theme) {
		errs = append(errs, fmt.Errorf("%w: unknown theme %q", ErrInvalid, c.Theme))
	}
	if c.Server.Timeout < 0 {
		errs = append(errs, fmt.Errorf("%w: negative server timeout", ErrInvalid))
	}
	return errors.Join(errs...)
}

// ApplyPreset overwrites the speed value with a named preset.
func (c *Config) ApplyPreset(name string) error {
	p := GetPreset(name)
	if p == nil {
		return fmt.Errorf("%w: unknown preset %q", ErrInvalid, name)
	}
	c.Speed.Value = p.Value(c.Speed)
	return nil
}
