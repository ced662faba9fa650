// Package config loads promptasm settings: built-in defaults, then a TOML
// file, then PROMPTASM_* environment variables. Command-line flags are applied
// by the caller on top of the result.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	appDir         = "promptasm"
	configFileName = "config.toml"
	libraryFile    = "library.json"
)

// Config is the complete promptasm configuration.
type Config struct {
	Scrape  ScrapeConfig  `toml:"scrape"`
	Upload  UploadConfig  `toml:"upload"`
	Session SessionConfig `toml:"session"`
	Fetch   FetchConfig   `toml:"fetch"`
	Export  ExportConfig  `toml:"export"`
	Library LibraryConfig `toml:"library"`
}

// ScrapeConfig points at the content service.
type ScrapeConfig struct {
	Endpoint      string   `toml:"endpoint"`
	Timeout       Duration `toml:"timeout"`
	CacheDir      string   `toml:"cache_dir"`
	CacheTTL      Duration `toml:"cache_ttl"`
	DisableCache  bool     `toml:"disable_cache"`
	RatePerMinute int      `toml:"rate_per_minute"`
}

type UploadConfig struct {
	MarkdownToHTML bool  `toml:"markdown_to_html"`
	MaxBytes       int64 `toml:"max_bytes"`
}

type SessionConfig struct {
	// Duplicates is "reject" or "allow".
	Duplicates     string `toml:"duplicates"`
	BlockSeparator string `toml:"block_separator"`
}

type FetchConfig struct {
	PlaceholderOnError bool `toml:"placeholder_on_error"`
	AutoMention        bool `toml:"auto_mention"`
}

type ExportConfig struct {
	Dir      string `toml:"dir"`
	FileName string `toml:"file_name"`
}

// LibraryConfig locates the persisted file library. An empty path keeps the
// library in memory only.
type LibraryConfig struct {
	Path     string `toml:"path"`
	Autosave bool   `toml:"autosave"`
}

// Duration reads TOML strings such as "30s" or "24h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Scrape: ScrapeConfig{
			Endpoint: "http://localhost:5173/api/scrape",
			Timeout:  Duration{30 * time.Second},
			CacheTTL: Duration{24 * time.Hour},
		},
		Upload: UploadConfig{
			MaxBytes: 5 << 20,
		},
		Session: SessionConfig{
			Duplicates:     "reject",
			BlockSeparator: "\n",
		},
		Export: ExportConfig{
			Dir:      ".",
			FileName: "prompt.md",
		},
		Library: LibraryConfig{
			Path:     defaultLibraryPath(),
			Autosave: true,
		},
	}
}

// Dir returns the per-user configuration directory.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appDir), nil
}

// DefaultPath is where Load looks when no explicit path is given.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

func defaultLibraryPath() string {
	dir, err := Dir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, libraryFile)
}

// Load builds the effective configuration. An explicit path must exist; the
// default path is optional.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		if p, err := DefaultPath(); err == nil {
			path = p
		}
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := LoadTOML(cfg, path); err != nil {
				return nil, err
			}
		} else if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes path over cfg. Unknown keys are rejected so typos surface.
func LoadTOML(cfg *Config, path string) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// Save writes cfg as TOML, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return file.Close()
}

// ApplyEnvOverrides applies PROMPTASM_* variables.
func (c *Config) ApplyEnvOverrides() error {
	if v := os.Getenv("PROMPTASM_SCRAPE_ENDPOINT"); v != "" {
		c.Scrape.Endpoint = v
	}
	if v := os.Getenv("PROMPTASM_CACHE_DIR"); v != "" {
		c.Scrape.CacheDir = v
	}
	if v := os.Getenv("PROMPTASM_LIBRARY"); v != "" {
		c.Library.Path = v
	}
	if v := os.Getenv("PROMPTASM_EXPORT_DIR"); v != "" {
		c.Export.Dir = v
	}
	if v := os.Getenv("PROMPTASM_DUPLICATES"); v != "" {
		c.Session.Duplicates = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("PROMPTASM_AUTO_MENTION"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("PROMPTASM_AUTO_MENTION: %w", err)
		}
		c.Fetch.AutoMention = b
	}
	return nil
}

// FieldError is a single invalid setting.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// FieldErrors collects every invalid setting found by Validate.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs FieldErrors

	endpoint, err := url.Parse(c.Scrape.Endpoint)
	if err != nil || (endpoint.Scheme != "http" && endpoint.Scheme != "https") || endpoint.Host == "" {
		errs = append(errs, FieldError{Field: "scrape.endpoint", Message: "must be an absolute http(s) URL"})
	}
	if c.Scrape.Timeout.Duration < 0 {
		errs = append(errs, FieldError{Field: "scrape.timeout", Message: "must be non-negative"})
	}
	if c.Scrape.CacheTTL.Duration < 0 {
		errs = append(errs, FieldError{Field: "scrape.cache_ttl", Message: "must be non-negative"})
	}
	if c.Scrape.RatePerMinute < 0 {
		errs = append(errs, FieldError{Field: "scrape.rate_per_minute", Message: "must be non-negative"})
	}
	if c.Upload.MaxBytes <= 0 {
		errs = append(errs, FieldError{Field: "upload.max_bytes", Message: "must be positive"})
	}
	switch c.Session.Duplicates {
	case "reject", "allow":
	default:
		errs = append(errs, FieldError{Field: "session.duplicates", Message: fmt.Sprintf("%q is not one of reject, allow", c.Session.Duplicates)})
	}
	if name := c.Export.FileName; name == "" || strings.ContainsAny(name, `/\`) {
		errs = append(errs, FieldError{Field: "export.file_name", Message: "must be a plain file name"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
