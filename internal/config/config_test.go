package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required formats and default filling.
func TestValidate(t *testing.T) {
	t.Parallel()

	require.Error(t, Validate(nil))

	cfg := new(Config)
	require.NoError(t, Validate(cfg))
	require.Equal(t, Default(), cfg)

	cfg = Default()
	cfg.Repository = "OTA"
	require.ErrorIs(t, Validate(cfg), errBadRepository)

	cfg = Default()
	cfg.ReleaseURLTemplate = "https://example.com/{device}/"
	require.ErrorIs(t, Validate(cfg), errBadTemplate)

	cfg = Default()
	cfg.Concurrency = -1
	require.ErrorIs(t, Validate(cfg), errBadConcurrency)

	cfg = Default()
	cfg.ImageQuality = 101
	require.ErrorIs(t, Validate(cfg), errBadQuality)

	cfg = Default()
	cfg.APIURL = "not a url"
	require.Error(t, Validate(cfg))

	cfg = Default()
	cfg.APIURL = "http://127.0.0.1:8080/"
	cfg.ImageFormat = ".WEBP"
	require.NoError(t, Validate(cfg))
	require.Equal(t, "http://127.0.0.1:8080", cfg.APIURL)
	require.Equal(t, "webp", cfg.ImageFormat)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")

	cfg := Default()
	cfg.Repository = "Example/OTA"
	cfg.Concurrency = 8
	cfg.Timeout = 5 * time.Second

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}

// TestLoad_MissingFile verifies that only the implicit default file may be absent.
func TestLoad_MissingFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestLoad_PartialFile layers a partial file over the defaults.
func TestLoad_PartialFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("repository: Fork/OTA\nconcurrency: 2\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Fork/OTA", cfg.Repository)
	require.Equal(t, 2, cfg.Concurrency)
	require.Equal(t, Default().DevicesFile, cfg.DevicesFile)
}

// TestURLTemplates checks placeholder substitution.
func TestURLTemplates(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.Equal(t,
		"https://sourceforge.net/projects/evolution-x/files/husky/10.2/",
		cfg.ReleaseURL("husky", "10.2"))
	require.Equal(t,
		"https://raw.githubusercontent.com/LineageOS/lineage_wiki/refs/heads/main/images/devices/husky.png",
		cfg.ImageURL("husky"))

	cfg.OutputDir = "/srv/site"
	require.Equal(t, filepath.Join("/srv/site", "instructions", "vic", "husky.md"),
		cfg.Path(cfg.InstructionsDir, "vic", "husky.md"))
}
