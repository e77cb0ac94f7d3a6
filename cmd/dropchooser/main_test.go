package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/dropchooser/internal/config"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	fileLog := filepath.Join(dir, "round.log")
	withFileLog := filepath.Join(dir, "file-log.yaml")
	require.NoError(t, os.WriteFile(withFileLog, []byte("log_output: "+fileLog+"\nchoices_path: menu.csv\n"), 0o600))
	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("tick_rate: 0\n"), 0o600))

	def := config.Default()

	tests := []struct {
		name        string
		flags       flags
		wantChoices string
		wantFeed    string
		wantLog     string
		wantErr     error
	}{
		{
			name:        "Defaults",
			flags:       flags{frontend: "window"},
			wantChoices: def.ChoicesPath,
			wantLog:     def.LogOutput,
		},
		{
			name:        "Choices and feed override the config",
			flags:       flags{config: withFileLog, choices: "picks.json", feed: "127.0.0.1:9000", frontend: "headless"},
			wantChoices: "picks.json",
			wantFeed:    "127.0.0.1:9000",
			wantLog:     fileLog,
		},
		{
			name:        "Config file values stay without overrides",
			flags:       flags{config: withFileLog, frontend: "window"},
			wantChoices: "menu.csv",
			wantLog:     fileLog,
		},
		{
			name:        "Terminal moves stderr logging to a file",
			flags:       flags{frontend: "term"},
			wantChoices: def.ChoicesPath,
			wantLog:     termLogFile,
		},
		{
			name:        "Terminal keeps a configured log file",
			flags:       flags{config: withFileLog, frontend: "term"},
			wantChoices: "menu.csv",
			wantLog:     fileLog,
		},
		{
			name:    "Invalid config",
			flags:   flags{config: broken},
			wantErr: config.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadConfig(tt.flags)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantChoices, cfg.ChoicesPath)
			assert.Equal(t, tt.wantFeed, cfg.FeedAddr)
			assert.Equal(t, tt.wantLog, cfg.LogOutput)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := loadConfig(flags{config: filepath.Join(t.TempDir(), "absent.yaml")})
	assert.Error(t, err)
}
