// Package config loads regassoc settings from defaults, a TOML file, the
// environment and command-line overrides, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"unicode"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix prefixes environment overrides: REGASSOC_STORE_BACKEND -> store.backend.
	EnvPrefix = "REGASSOC_"

	appDir         = "regassoc"
	configFileName = "config.toml"
)

// Store backends.
const (
	BackendNative  = "native"
	BackendRegFile = "regfile"
	BackendMemory  = "memory"
)

// Config is the resolved configuration.
type Config struct {
	Program    string      `koanf:"program"`
	Executable string      `koanf:"executable"`
	Extensions []string    `koanf:"extensions"`
	Store      StoreConfig `koanf:"store"`
	Log        LogConfig   `koanf:"log"`
}

// StoreConfig selects and configures the registry backend.
type StoreConfig struct {
	Backend  string `koanf:"backend"`
	RegFile  string `koanf:"reg_file"`
	Root     string `koanf:"root"`
	Encoding string `koanf:"encoding"`
}

// LogConfig controls the optional log file.
type LogConfig struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
}

// LoadOptions controls Load.
type LoadOptions struct {
	// Path is an explicit config file; it must exist. Empty means DefaultPath,
	// which is optional.
	Path string

	// Overrides are applied last, keyed by koanf path ("store.backend").
	Overrides map[string]any

	// Environ replaces os.Environ for the environment layer, mainly in tests.
	Environ []string
}

// DefaultPath returns $XDG_CONFIG_HOME/regassoc/config.toml.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, appDir, configFileName)
}

// Defaults returns the base layer.
func Defaults() map[string]any {
	backend := BackendRegFile
	if runtime.GOOS == "windows" {
		backend = BackendNative
	}
	return map[string]any{
		"program":        "",
		"executable":     "",
		"extensions":     []string{},
		"store.backend":  backend,
		"store.reg_file": filepath.Join(xdg.DataHome, appDir, "user.reg"),
		"store.root":     `HKEY_CURRENT_USER\Software`,
		"store.encoding": "",
		"log.enabled":    false,
		"log.dir":        filepath.Join(xdg.StateHome, appDir, "logs"),
	}
}

// Load resolves the configuration and validates it.
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	path := opts.Path
	if path == "" {
		path = DefaultPath()
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	// 3. Environment
	envLayer := koanf.New(".")
	if opts.Environ != nil {
		if err := envLayer.Load(confmap.Provider(environMap(opts.Environ), "."), nil); err != nil {
			return nil, fmt.Errorf("failed to load environment: %w", err)
		}
	} else if err := envLayer.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}
	if err := k.Merge(envLayer); err != nil {
		return nil, fmt.Errorf("failed to merge environment: %w", err)
	}

	// 4. Overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("failed to apply overrides: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps REGASSOC_STORE_REG_FILE to store.reg_file: the first
// underscore after the prefix separates the section.
func envKey(s string) string {
	return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
}

func environMap(environ []string) map[string]any {
	out := make(map[string]any)
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		out[envKey(name)] = value
	}
	return out
}

// normalize splits comma-separated extension lists (as given through the
// environment) and drops leading dots.
func (c *Config) normalize() {
	var exts []string
	for _, e := range c.Extensions {
		for _, part := range strings.Split(e, ",") {
			part = strings.TrimPrefix(strings.TrimSpace(part), ".")
			if part != "" {
				exts = append(exts, part)
			}
		}
	}
	c.Extensions = exts
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	c.Store.Encoding = strings.ToUpper(strings.TrimSpace(c.Store.Encoding))
}

// Validate checks field constraints. Program may be empty here; commands that
// need it call RequireProgram.
func (c *Config) Validate() error {
	if c.Program != "" && (strings.ContainsAny(c.Program, `\/.`) || strings.IndexFunc(c.Program, unicode.IsSpace) >= 0) {
		return fmt.Errorf("config: program %q must not contain separators, dots or spaces", c.Program)
	}
	switch c.Store.Backend {
	case BackendNative, BackendMemory:
	case BackendRegFile:
		if c.Store.RegFile == "" {
			return errors.New("config: store.reg_file is required for the regfile backend")
		}
	default:
		return fmt.Errorf("config: unknown store.backend %q", c.Store.Backend)
	}
	switch c.Store.Encoding {
	case "", "UTF-16LE", "UTF-8", "ANSI":
	default:
		return fmt.Errorf("config: unknown store.encoding %q", c.Store.Encoding)
	}
	for _, e := range c.Extensions {
		if strings.Contains(e, ".") {
			return fmt.Errorf("config: extension %q must not contain '.'", e)
		}
	}
	return nil
}

// RequireProgram fails when no program name is configured.
func (c *Config) RequireProgram() error {
	if c.Program == "" {
		return errors.New("config: program is not set (use --program or set program in " + DefaultPath() + ")")
	}
	return nil
}
