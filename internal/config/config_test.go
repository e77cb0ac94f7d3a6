package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadOverlaysDefaults(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		cfg, err := LoadJSON(strings.NewReader(`{"title":"Lunch","gravity":250,"background_color":"#102030"}`))
		require.NoError(t, err)
		assert.Equal(t, "Lunch", cfg.Title)
		assert.Equal(t, 250.0, cfg.Gravity)
		assert.Equal(t, "#102030", cfg.BackgroundColor.Hex())
		assert.Equal(t, Default().Width, cfg.Width)
		assert.Equal(t, Default().NailRows, cfg.NailRows)
		require.NoError(t, cfg.Validate())
	})

	t.Run("YAML", func(t *testing.T) {
		cfg, err := LoadYAML(strings.NewReader("choice_radius: 12\nnail_rows: 0\nlog_level: debug\n"))
		require.NoError(t, err)
		assert.Equal(t, 12.0, cfg.ChoiceRadius)
		assert.Equal(t, 0, cfg.NailRows)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, Default().Title, cfg.Title)
	})

	t.Run("Empty YAML", func(t *testing.T) {
		cfg, err := LoadYAML(strings.NewReader(""))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("Unknown keys", func(t *testing.T) {
		_, err := LoadJSON(strings.NewReader(`{"gravitee": 3}`))
		assert.Error(t, err)
		_, err = LoadYAML(strings.NewReader("gravitee: 3\n"))
		assert.Error(t, err)
	})

	t.Run("Bad color", func(t *testing.T) {
		_, err := LoadJSON(strings.NewReader(`{"background_color":"blue"}`))
		assert.Error(t, err)
	})
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
		return p
	}

	cfg, err := Load(write("a.json", `{"width": 640}`))
	require.NoError(t, err)
	assert.Equal(t, 640.0, cfg.Width)

	cfg, err = Load(write("b.yml", "height: 480\n"))
	require.NoError(t, err)
	assert.Equal(t, 480.0, cfg.Height)

	_, err = Load(write("c.toml", "width = 1"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.ChoiceRadius = -1
	cfg.Bounciness = 2
	cfg.CollectorGap = 0
	cfg.TickRate = 0
	cfg.LogLevel = "chatty"

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	msg := err.Error()
	for _, want := range []string{"choice_radius", "bounciness", "collector_gap", "tick_rate", "log_level"} {
		assert.Contains(t, msg, want)
	}
}

func TestValidateCollectorGap(t *testing.T) {
	t.Run("Checked even when the radius is invalid", func(t *testing.T) {
		cfg := Default()
		cfg.ChoiceRadius = -1
		cfg.CollectorGap = 0

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "collector_gap 0 must be positive")
	})

	t.Run("Must fit a choice", func(t *testing.T) {
		cfg := Default()
		cfg.CollectorGap = 2 * cfg.ChoiceRadius

		err := cfg.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.Contains(t, err.Error(), "must let a choice")
	})

	t.Run("Wide enough", func(t *testing.T) {
		cfg := Default()
		cfg.CollectorGap = 2*cfg.ChoiceRadius + 1
		assert.NoError(t, cfg.Validate())
	})
}
