package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	herrors "github.com/matzehuels/historydag/pkg/errors"
)

const appName = "hdag"

var (
	validLevels   = []string{"debug", "info", "warn", "error"}
	validBackends = []string{"none", "file", "redis"}
)

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, herrors.Wrap(herrors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return nil, err
	}
	cfg, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// LoadDefault reads the configuration at path, or at [DefaultPath] when path
// is empty. A missing default file yields the defaults; a missing explicit
// file is an error.
func LoadDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	def, err := DefaultPath()
	if err != nil {
		return Default(), nil
	}
	cfg, err := Load(def)
	if herrors.Is(err, herrors.ErrCodeFileNotFound) {
		return Default(), nil
	}
	return cfg, err
}

// Parse decodes TOML source, applies defaults and validates the result.
// Unknown keys are rejected.
func Parse(src string) (*Config, error) {
	var cfg Config
	md, err := toml.Decode(src, &cfg)
	if err != nil {
		return nil, herrors.Wrap(herrors.ErrCodeInvalidFormat, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, herrors.New(herrors.ErrCodeInvalidInput, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// DefaultPath returns $XDG_CONFIG_HOME/hdag/config.toml, falling back to
// ~/.config/hdag/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// DefaultCacheDir returns $XDG_CACHE_HOME/hdag, falling back to ~/.cache/hdag.
func DefaultCacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Log.Level) == "" {
		cfg.Log.Level = "info"
	}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)

	if strings.TrimSpace(cfg.Cache.Backend) == "" {
		cfg.Cache.Backend = "file"
	}
	cfg.Cache.Backend = strings.ToLower(cfg.Cache.Backend)
	if strings.TrimSpace(cfg.Cache.Dir) == "" {
		if dir, err := DefaultCacheDir(); err == nil {
			cfg.Cache.Dir = dir
		}
	}
	cfg.Cache.Dir = expandHome(cfg.Cache.Dir)
	if strings.TrimSpace(cfg.Cache.RedisAddr) == "" {
		cfg.Cache.RedisAddr = "localhost:6379"
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 7 * 24 * time.Hour
	}

	if strings.TrimSpace(cfg.Serve.Addr) == "" {
		cfg.Serve.Addr = ":8080"
	}
	if cfg.Serve.ReadTimeout == 0 {
		cfg.Serve.ReadTimeout = 30 * time.Second
	}
	if cfg.Serve.WriteTimeout == 0 {
		cfg.Serve.WriteTimeout = 5 * time.Minute
	}
	if cfg.Serve.MaxBodyBytes == 0 {
		cfg.Serve.MaxBodyBytes = 64 << 20
	}
}

func validate(cfg *Config) error {
	if !contains(validLevels, cfg.Log.Level) {
		return herrors.New(herrors.ErrCodeInvalidInput, "log.level %q: want one of %s",
			cfg.Log.Level, strings.Join(validLevels, ", "))
	}
	if !contains(validBackends, cfg.Cache.Backend) {
		return herrors.New(herrors.ErrCodeInvalidInput, "cache.backend %q: want one of %s",
			cfg.Cache.Backend, strings.Join(validBackends, ", "))
	}
	if cfg.Cache.Backend == "file" && cfg.Cache.Dir == "" {
		return herrors.New(herrors.ErrCodeInvalidInput, "cache.dir is required for the file backend")
	}
	if cfg.Cache.TTL < 0 {
		return herrors.New(herrors.ErrCodeInvalidInput, "cache.ttl must not be negative")
	}
	if cfg.Build.Workers < 0 {
		return herrors.New(herrors.ErrCodeInvalidInput, "build.workers must not be negative")
	}
	if cfg.Serve.MaxBodyBytes < 0 {
		return herrors.New(herrors.ErrCodeInvalidInput, "serve.max_body_bytes must not be negative")
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
