// Package choices loads the labeled options that are dropped into the arena.
package choices

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/zeusync/dropchooser/internal/core/models"
)

var (
	ErrNoChoices         = errors.New("no choices")
	ErrEmptyName         = errors.New("choice name is empty")
	ErrUnsupportedFormat = errors.New("unsupported choices format")
)

// Format selects a decoder.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// Choice is one labeled ball.
type Choice struct {
	Name  string       `json:"name"`
	Color models.Color `json:"color"`
}

type rawChoice struct {
	Name  string        `json:"name"`
	Color *models.Color `json:"color,omitempty"`
}

const (
	defaultSaturation = 0.65
	defaultValue      = 0.9
)

// DefaultColor derives a stable color from name: the hue comes from the
// name hash while saturation and value are fixed.
func DefaultColor(name string) models.Color {
	hue := float64(xxhash.Sum64String(name)%360000) / 1000
	return models.FromColorful(colorful.Hsv(hue, defaultSaturation, defaultValue))
}

// Load reads path by extension. "-" reads JSON from stdin.
func Load(path string) ([]Choice, error) {
	if path == "-" {
		return LoadFrom(os.Stdin, FormatJSON)
	}

	var format Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		format = FormatJSON
	case ".csv":
		format = FormatCSV
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open choices: %w", err)
	}
	defer f.Close()

	out, err := LoadFrom(f, format)
	if err != nil {
		return nil, fmt.Errorf("load choices %s: %w", path, err)
	}
	return out, nil
}

func LoadFrom(r io.Reader, format Format) ([]Choice, error) {
	switch format {
	case FormatJSON:
		return LoadJSON(r)
	case FormatCSV:
		return LoadCSV(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// LoadJSON decodes an array of {"name": ..., "color": ...} objects.
// color is optional.
func LoadJSON(r io.Reader) ([]Choice, error) {
	var raw []rawChoice
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoChoices
		}
		return nil, err
	}

	out := make([]Choice, 0, len(raw))
	for i, rc := range raw {
		c, err := build(rc.Name, rc.Color)
		if err != nil {
			return nil, fmt.Errorf("choice %d: %w", i, err)
		}
		out = append(out, c)
	}
	return finish(out)
}

// LoadCSV decodes name[,color] rows. A first row of exactly "name,color"
// or "name" is treated as a header.
func LoadCSV(r io.Reader) ([]Choice, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var out []Choice
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if line == 1 && isHeader(rec) {
			continue
		}
		if len(rec) == 0 || len(rec) > 2 {
			return nil, fmt.Errorf("line %d: expected name[,color], got %d fields", line, len(rec))
		}

		var color *models.Color
		if len(rec) == 2 && strings.TrimSpace(rec[1]) != "" {
			c, err := models.ParseColor(rec[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			color = &c
		}
		c, err := build(rec[0], color)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, c)
	}
	return finish(out)
}

func isHeader(rec []string) bool {
	if len(rec) == 0 || !strings.EqualFold(strings.TrimSpace(rec[0]), "name") {
		return false
	}
	return len(rec) == 1 || strings.EqualFold(strings.TrimSpace(rec[1]), "color")
}

func build(name string, color *models.Color) (Choice, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Choice{}, ErrEmptyName
	}
	c := Choice{Name: name}
	if color != nil {
		c.Color = *color
	} else {
		c.Color = DefaultColor(name)
	}
	return c, nil
}

func finish(out []Choice) ([]Choice, error) {
	if len(out) == 0 {
		return nil, ErrNoChoices
	}
	return out, nil
}
