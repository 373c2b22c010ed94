package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the remote endpoints and output layout shared by the tools.
type Config struct {
	// APIURL is the base URL of the GitHub REST API.
	APIURL string `yaml:"api_url"`
	// RawURL is the base URL serving raw repository content.
	RawURL string `yaml:"raw_url"`
	// Repository is the "owner/name" of the OTA repository holding build manifests.
	Repository string `yaml:"repository"`
	// BuildsDir is the directory inside each branch that holds <device>.json manifests.
	BuildsDir string `yaml:"builds_dir"`
	// ImageURLTemplate locates a device image on the external image host; {device} is substituted.
	ImageURLTemplate string `yaml:"image_url_template"`
	// ReleaseURLTemplate is the human download page; {device} and {version} are substituted.
	ReleaseURLTemplate string `yaml:"release_url_template"`
	// FlashVendor is the OEM whose devices are flashed with the vendor tool instead of fastboot.
	FlashVendor string `yaml:"flash_vendor"`
	// OutputDir is the root every output path below is resolved against.
	OutputDir string `yaml:"output_dir"`
	// DevicesFile is the device summary JSON file.
	DevicesFile string `yaml:"devices_file"`
	// ImagesDir holds one image per device.
	ImagesDir string `yaml:"images_dir"`
	// ImageFormat is the extension images are expected to be published in.
	ImageFormat string `yaml:"image_format"`
	// ImageQuality is the quality humans are asked to convert images at.
	ImageQuality int `yaml:"image_quality"`
	// InstructionsDir holds <branch>/<device>.md flashing guides.
	InstructionsDir string `yaml:"instructions_dir"`
	// MaintainersFile is the active maintainer roster.
	MaintainersFile string `yaml:"maintainers_file"`
	// InactiveMaintainersFile is the roster of maintainers with no active device.
	InactiveMaintainersFile string `yaml:"inactive_maintainers_file"`
	// Concurrency bounds the number of remote requests in flight.
	Concurrency int `yaml:"concurrency"`
	// Timeout bounds every single remote request.
	Timeout time.Duration `yaml:"timeout"`
}

const (
	// DefaultConfigFilename is the config file looked up when no path is given.
	DefaultConfigFilename = "site-metadata.yaml"

	// DefaultTimeout bounds a single remote request.
	DefaultTimeout = 30 * time.Second

	// DefaultConcurrency is the number of remote requests in flight.
	DefaultConcurrency = 4

	// DefaultFilePermissions is used for every file the tools write.
	DefaultFilePermissions = 0o644

	// DefaultDirPermissions is used for every directory the tools create.
	DefaultDirPermissions = 0o755

	// DeviceKey and VersionKey are the template placeholders.
	DeviceKey  = "{device}"
	VersionKey = "{version}"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errBadRepository is returned when the repository is not in owner/name form.
	errBadRepository = errors.New("repository must be in owner/name form")
	// errBadTemplate is returned when a URL template misses a placeholder.
	errBadTemplate = errors.New("template is missing a placeholder")
	// errBadConcurrency is returned for a non-positive concurrency.
	errBadConcurrency = errors.New("concurrency must be at least 1")
	// errBadQuality is returned for an image quality outside 1..100.
	errBadQuality = errors.New("image quality must be between 1 and 100")
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		APIURL:                  "https://api.github.com",
		RawURL:                  "https://raw.githubusercontent.com",
		Repository:              "Evolution-X/OTA",
		BuildsDir:               "builds",
		ImageURLTemplate:        "https://raw.githubusercontent.com/LineageOS/lineage_wiki/refs/heads/main/images/devices/{device}.png",
		ReleaseURLTemplate:      "https://sourceforge.net/projects/evolution-x/files/{device}/{version}/",
		FlashVendor:             "Samsung",
		OutputDir:               ".",
		DevicesFile:             "devices.json",
		ImagesDir:               "images",
		ImageFormat:             "webp",
		ImageQuality:            90,
		InstructionsDir:         "instructions",
		MaintainersFile:         "maintainers.json",
		InactiveMaintainersFile: "inactive_maintainers.json",
		Concurrency:             DefaultConcurrency,
		Timeout:                 DefaultTimeout,
	}
}

// Load reads the configuration at path on top of Default and validates it.
// An empty path means DefaultConfigFilename, which may be absent.
func Load(path string) (*Config, error) {
	optional := path == ""
	if optional {
		path = DefaultConfigFilename
	}

	cfg := Default()

	contents, err := os.ReadFile(filepath.Clean(path))

	switch {
	case err == nil:
		if err = yaml.Unmarshal(contents, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	case optional && errors.Is(err, os.ErrNotExist):
		// Built-in defaults.
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err = Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err = os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks cfg and fills zero values with defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	fillDefaults(cfg)

	for name, raw := range map[string]string{
		"api_url": cfg.APIURL,
		"raw_url": cfg.RawURL,
	} {
		if _, err := url.ParseRequestURI(raw); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}

	owner, name, found := strings.Cut(cfg.Repository, "/")
	if !found || owner == "" || name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("%q: %w", cfg.Repository, errBadRepository)
	}

	if !strings.Contains(cfg.ImageURLTemplate, DeviceKey) {
		return fmt.Errorf("image_url_template %s: %w", DeviceKey, errBadTemplate)
	}

	for _, key := range []string{DeviceKey, VersionKey} {
		if !strings.Contains(cfg.ReleaseURLTemplate, key) {
			return fmt.Errorf("release_url_template %s: %w", key, errBadTemplate)
		}
	}

	if cfg.Concurrency < 1 {
		return errBadConcurrency
	}

	if cfg.ImageQuality < 1 || cfg.ImageQuality > 100 {
		return errBadQuality
	}

	return nil
}

// Path resolves a configured output path against OutputDir.
func (c *Config) Path(elem ...string) string {
	return filepath.Join(append([]string{c.OutputDir}, elem...)...)
}

// ImageURL returns the image host URL for device.
func (c *Config) ImageURL(device string) string {
	return strings.ReplaceAll(c.ImageURLTemplate, DeviceKey, device)
}

// ReleaseURL returns the human download page for device at version.
func (c *Config) ReleaseURL(device, version string) string {
	return strings.NewReplacer(DeviceKey, device, VersionKey, version).Replace(c.ReleaseURLTemplate)
}

// fillDefaults replaces zero values with the defaults, leaving Concurrency and
// ImageQuality untouched when negative so Validate can reject them.
func fillDefaults(cfg *Config) {
	def := Default()

	setString := func(dst *string, fallback string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = fallback
		}
	}

	setString(&cfg.APIURL, def.APIURL)
	setString(&cfg.RawURL, def.RawURL)
	setString(&cfg.Repository, def.Repository)
	setString(&cfg.BuildsDir, def.BuildsDir)
	setString(&cfg.ImageURLTemplate, def.ImageURLTemplate)
	setString(&cfg.ReleaseURLTemplate, def.ReleaseURLTemplate)
	setString(&cfg.FlashVendor, def.FlashVendor)
	setString(&cfg.OutputDir, def.OutputDir)
	setString(&cfg.DevicesFile, def.DevicesFile)
	setString(&cfg.ImagesDir, def.ImagesDir)
	setString(&cfg.ImageFormat, def.ImageFormat)
	setString(&cfg.InstructionsDir, def.InstructionsDir)
	setString(&cfg.MaintainersFile, def.MaintainersFile)
	setString(&cfg.InactiveMaintainersFile, def.InactiveMaintainersFile)

	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	cfg.RawURL = strings.TrimRight(cfg.RawURL, "/")
	cfg.ImageFormat = strings.TrimPrefix(strings.ToLower(cfg.ImageFormat), ".")

	if cfg.Concurrency == 0 {
		cfg.Concurrency = def.Concurrency
	}

	if cfg.ImageQuality == 0 {
		cfg.ImageQuality = def.ImageQuality
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
}
