// Package config describes the arena, its physics and the host process.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/dropchooser/internal/core/models"
	"github.com/zeusync/dropchooser/internal/core/observability/log"
)

// Config is the full runtime configuration. Lengths are in arena units
// (pixels for the window frontend), angles in radians, y grows downward.
type Config struct {
	Title           string       `json:"title" yaml:"title"`
	Width           float64      `json:"width" yaml:"width"`
	Height          float64      `json:"height" yaml:"height"`
	VSync           bool         `json:"vsync" yaml:"vsync"`
	BackgroundColor models.Color `json:"background_color" yaml:"background_color"`
	ChoicesPath     string       `json:"choices_path" yaml:"choices_path"`

	Gravity      float64 `json:"gravity" yaml:"gravity"`
	ChoiceRadius float64 `json:"choice_radius" yaml:"choice_radius"`
	Bounciness   float64 `json:"bounciness" yaml:"bounciness"`

	ChoiceStartXMin float64 `json:"choice_start_x_min" yaml:"choice_start_x_min"`
	ChoiceStartXMax float64 `json:"choice_start_x_max" yaml:"choice_start_x_max"`
	ChoiceStartYMin float64 `json:"choice_start_y_min" yaml:"choice_start_y_min"`
	ChoiceStartYMax float64 `json:"choice_start_y_max" yaml:"choice_start_y_max"`

	WallWidth   float64 `json:"wall_width" yaml:"wall_width"`
	FloorY      float64 `json:"floor_y" yaml:"floor_y"`
	FloorHeight float64 `json:"floor_height" yaml:"floor_height"`

	NailRows    int     `json:"nail_rows" yaml:"nail_rows"`
	NailColumns int     `json:"nail_columns" yaml:"nail_columns"`
	NailRadius  float64 `json:"nail_radius" yaml:"nail_radius"`
	NailTop     float64 `json:"nail_top" yaml:"nail_top"`
	NailSpacing float64 `json:"nail_spacing" yaml:"nail_spacing"`

	CollectorWidth        float64 `json:"collector_width" yaml:"collector_width"`
	CollectorHeight       float64 `json:"collector_height" yaml:"collector_height"`
	CollectorRotation     float64 `json:"collector_rotation" yaml:"collector_rotation"`
	CollectorHeightOffset float64 `json:"collector_height_offset" yaml:"collector_height_offset"`
	CollectorGap          float64 `json:"collector_gap" yaml:"collector_gap"`

	SensorHeight float64 `json:"sensor_height" yaml:"sensor_height"`

	TickRate  int    `json:"tick_rate" yaml:"tick_rate"`
	LogLevel  string `json:"log_level" yaml:"log_level"`
	LogOutput string `json:"log_output" yaml:"log_output"`
	FeedAddr  string `json:"feed_addr" yaml:"feed_addr"`
}

// Default returns a playable 1024x768 arena.
func Default() *Config {
	return &Config{
		Title:           "Drop Chooser",
		Width:           1024,
		Height:          768,
		VSync:           true,
		BackgroundColor: models.MustParseColor("#1e1e2e"),
		ChoicesPath:     "choices.json",

		Gravity:      400,
		ChoiceRadius: 10,
		Bounciness:   0.6,

		ChoiceStartXMin: 300,
		ChoiceStartXMax: 724,
		ChoiceStartYMin: 40,
		ChoiceStartYMax: 130,

		WallWidth:   20,
		FloorY:      170,
		FloorHeight: 10,

		NailRows:    6,
		NailColumns: 14,
		NailRadius:  4,
		NailTop:     260,
		NailSpacing: 60,

		CollectorWidth:        500,
		CollectorHeight:       10,
		CollectorRotation:     0.35,
		CollectorHeightOffset: 90,
		CollectorGap:          60,

		SensorHeight: 40,

		TickRate:  60,
		LogLevel:  "info",
		LogOutput: "stderr",
	}
}

// Load reads path, picking the decoder from its extension.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var cfg *Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		cfg, err = LoadJSON(f)
	case ".yaml", ".yml":
		cfg, err = LoadYAML(f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadJSON decodes a JSON document over Default.
func LoadJSON(r io.Reader) (*Config, error) {
	c := Default()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadYAML decodes a YAML document over Default.
func LoadYAML(r io.Reader) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return c, nil
}

// Validate reports every problem found, joined.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
		}
	}

	check(c.Width > 0 && c.Height > 0, "arena size %vx%v must be positive", c.Width, c.Height)
	check(c.ChoiceRadius > 0, "choice_radius %v must be positive", c.ChoiceRadius)
	check(c.Bounciness >= 0 && c.Bounciness <= 1, "bounciness %v must be within [0, 1]", c.Bounciness)
	check(c.ChoiceStartXMin < c.ChoiceStartXMax, "choice_start_x range [%v, %v) is empty", c.ChoiceStartXMin, c.ChoiceStartXMax)
	check(c.ChoiceStartYMin < c.ChoiceStartYMax, "choice_start_y range [%v, %v) is empty", c.ChoiceStartYMin, c.ChoiceStartYMax)
	check(c.ChoiceStartXMin-c.ChoiceRadius >= c.WallWidth && c.ChoiceStartXMax+c.ChoiceRadius <= c.Width-c.WallWidth,
		"choice_start_x range [%v, %v) leaves the arena", c.ChoiceStartXMin, c.ChoiceStartXMax)
	check(c.ChoiceStartYMax+c.ChoiceRadius <= c.FloorY-c.FloorHeight/2,
		"choices must start above the floor at %v", c.FloorY)
	check(c.WallWidth > 0, "wall_width %v must be positive", c.WallWidth)
	check(c.FloorHeight > 0, "floor_height %v must be positive", c.FloorHeight)
	check(c.FloorY > 0 && c.FloorY < c.Height, "floor_y %v must be inside the arena", c.FloorY)
	check(c.NailRows >= 0 && c.NailColumns >= 0, "nail grid %dx%d must not be negative", c.NailRows, c.NailColumns)
	if c.NailRows > 0 && c.NailColumns > 0 {
		check(c.NailRadius > 0, "nail_radius %v must be positive", c.NailRadius)
		check(c.NailSpacing > 2*(c.NailRadius+c.ChoiceRadius), "nail_spacing %v leaves no room for choices", c.NailSpacing)
	}
	check(c.CollectorWidth > 0 && c.CollectorHeight > 0, "collector size %vx%v must be positive", c.CollectorWidth, c.CollectorHeight)
	check(c.CollectorGap > 0, "collector_gap %v must be positive", c.CollectorGap)
	if c.ChoiceRadius > 0 && c.CollectorGap > 0 {
		check(c.CollectorGap > 2*c.ChoiceRadius, "collector_gap %v must let a choice of radius %v through", c.CollectorGap, c.ChoiceRadius)
	}
	check(c.SensorHeight > 0, "sensor_height %v must be positive", c.SensorHeight)
	check(c.TickRate > 0, "tick_rate %d must be positive", c.TickRate)
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		check(false, "log_level: %v", err)
	}

	return errors.Join(errs...)
}
