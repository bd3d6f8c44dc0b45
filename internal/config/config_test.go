package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/frudas24/knobicon/internal/knob"
	"github.com/frudas24/knobicon/internal/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv isolates a test from KNOBICON_* variables and points the data dir at dir.
func clearEnv(t *testing.T, dir string) {
	t.Helper()
	for _, key := range []string{
		"LISTEN_ADDR", "UI_PASSWORD", "PASSWORD_MODE", "WIDGET_FILE", "LOG_LEVEL",
		"LOG_FORMAT", "MJPEG_INTERVAL_MS", "MJPEG_QUALITY", "WATCH_ASSETS",
	} {
		t.Setenv(EnvPrefix+"_"+key, "")
		require.NoError(t, os.Unsetenv(EnvPrefix+"_"+key))
	}
	t.Setenv(EnvPrefix+"_DATA_DIR", dir)
}

// TestLoad_Defaults verifies defaults when only the password is set.
func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	clearEnv(t, dir)
	t.Setenv("KNOBICON_UI_PASSWORD", " secret ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8787", cfg.ListenAddr)
	assert.Equal(t, "secret", cfg.UIPassword)
	assert.True(t, cfg.PasswordMode)
	assert.Equal(t, filepath.Join(dir, "widget.yaml"), cfg.WidgetFile)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 40, cfg.MJPEGIntervalMs)
	assert.Equal(t, 80, cfg.MJPEGQuality)
	assert.True(t, cfg.WatchAssets)
}

// TestLoad_EnvFile verifies .env values apply without overriding the real environment.
func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	clearEnv(t, dir)
	env := "KNOBICON_UI_PASSWORD=fromfile\nKNOBICON_LISTEN_ADDR=127.0.0.1:9000\nKNOBICON_LOG_LEVEL=debug\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))
	t.Setenv("KNOBICON_LISTEN_ADDR", "127.0.0.1:7000")
	t.Cleanup(func() {
		_ = os.Unsetenv("KNOBICON_UI_PASSWORD")
		_ = os.Unsetenv("KNOBICON_LOG_LEVEL")
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "fromfile", cfg.UIPassword)
	assert.Equal(t, "127.0.0.1:7000", cfg.ListenAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
}

// TestLoad_PasswordRequired verifies password mode needs a password.
func TestLoad_PasswordRequired(t *testing.T) {
	clearEnv(t, t.TempDir())
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("KNOBICON_PASSWORD_MODE", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.PasswordMode)
}

// TestLoad_BadInteger verifies malformed numbers are reported.
func TestLoad_BadInteger(t *testing.T) {
	clearEnv(t, t.TempDir())
	t.Setenv("KNOBICON_UI_PASSWORD", "pw")
	t.Setenv("KNOBICON_MJPEG_QUALITY", "high")
	_, err := Load()
	assert.Error(t, err)
}

// TestValidate_Ranges verifies range checks.
func TestValidate_Ranges(t *testing.T) {
	base := Config{ListenAddr: ":1", UIPassword: "pw", PasswordMode: true, LogLevel: "info", LogFormat: "text", MJPEGQuality: 80}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"quality zero", func(c *Config) { c.MJPEGQuality = 0 }},
		{"quality high", func(c *Config) { c.MJPEGQuality = 101 }},
		{"negative interval", func(c *Config) { c.MJPEGIntervalMs = -1 }},
		{"bad level", func(c *Config) { c.LogLevel = "trace" }},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }},
		{"no listen", func(c *Config) { c.ListenAddr = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

// writeWidget writes a widget file and returns its path.
func writeWidget(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "widget.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// TestLoadWidgetFile_Full verifies every key is decoded and paths resolve.
func TestLoadWidgetFile_Full(t *testing.T) {
	path := writeWidget(t, `
knob_image: knob.png
pointer_image: /abs/pointer.png
width: 120
height: 100
percent: 25
knob_radius: 40
pointer_radius: 30
coord_mode: scaled
`)
	w, err := LoadWidgetFile(path)
	require.NoError(t, err)

	knobPath, pointerPath := w.ImagePaths()
	assert.Equal(t, filepath.Join(filepath.Dir(path), "knob.png"), knobPath)
	assert.Equal(t, "/abs/pointer.png", pointerPath)

	opts := w.Options()
	assert.Equal(t, 120, opts.Width)
	assert.Equal(t, 100, opts.Height)
	require.NotNil(t, opts.Percent)
	assert.Equal(t, 25.0, *opts.Percent)
	assert.Equal(t, 40.0, opts.KnobRadius)
	assert.Equal(t, 30.0, opts.PointerRadius)
	assert.Equal(t, knob.CoordScaled, opts.CoordMode)
}

// TestLoadWidgetFile_Minimal verifies defaults for optional keys.
func TestLoadWidgetFile_Minimal(t *testing.T) {
	w, err := LoadWidgetFile(writeWidget(t, "knob_image: k.png\npointer_image: p.png\n"))
	require.NoError(t, err)
	opts := w.Options()
	assert.Nil(t, opts.Percent)
	assert.Equal(t, knob.CoordLegacy, opts.CoordMode)
}

// TestLoadWidgetFile_PercentOutOfRange verifies an out-of-range value loads and clamps on use.
func TestLoadWidgetFile_PercentOutOfRange(t *testing.T) {
	w, err := LoadWidgetFile(writeWidget(t, "knob_image: k.png\npointer_image: p.png\npercent: 150\n"))
	require.NoError(t, err)
	opts := w.Options()
	require.NotNil(t, opts.Percent)
	assert.Equal(t, 150.0, *opts.Percent)

	wd, err := widget.New(w.KnobImage, w.PointerImage, opts)
	require.NoError(t, err)
	assert.Equal(t, 100.0, wd.Percent())
}

// TestLoadWidgetFile_Rejects verifies malformed widget files fail.
func TestLoadWidgetFile_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"unknown key", "knob_image: k.png\npointer_image: p.png\ncolour: red\n"},
		{"trailing document", "knob_image: k.png\npointer_image: p.png\n---\nknob_image: x.png\n"},
		{"missing knob", "pointer_image: p.png\n"},
		{"missing pointer", "knob_image: k.png\n"},
		{"percent nan", "knob_image: k.png\npointer_image: p.png\npercent: .nan\n"},
		{"percent inf", "knob_image: k.png\npointer_image: p.png\npercent: .inf\n"},
		{"negative radius", "knob_image: k.png\npointer_image: p.png\nknob_radius: -1\n"},
		{"coord mode", "knob_image: k.png\npointer_image: p.png\ncoord_mode: polar\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadWidgetFile(writeWidget(t, tt.body)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

// TestLoadWidgetFile_Missing verifies a missing file is reported.
func TestLoadWidgetFile_Missing(t *testing.T) {
	_, err := LoadWidgetFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
