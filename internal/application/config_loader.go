package application

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-lifewheel/internal/ports"
)

// EnvPrefix prefixes every environment variable that overrides Config.
const EnvPrefix = "LIFEWHEEL_"

// ConfigLoader reads interview configuration from YAML, applies
// environment overrides, and validates the result. Parsed files are cached
// by content hash so repeated loads of the same file skip decoding.
type ConfigLoader struct {
	// validator performs struct field validation and the custom rules
	// registered by registerCustomValidators.
	validator *validator.Validate
	// environ replaces the process environment when non-nil.
	environ map[string]string
	// cache stores decoded file configs, before environment overrides,
	// indexed by SHA256 of the source bytes.
	cache   map[string]Config
	cacheMu sync.RWMutex
	// sf prevents decoding the same content twice concurrently.
	sf singleflight.Group
}

// LoaderOption configures a ConfigLoader.
type LoaderOption func(*ConfigLoader)

// WithEnvironment makes the loader read overrides from environ instead of
// the process environment.
func WithEnvironment(environ map[string]string) LoaderOption {
	return func(cl *ConfigLoader) { cl.environ = environ }
}

// NewConfigLoader creates a loader with custom validators registered.
// NewConfigLoader returns an error if validator registration fails.
func NewConfigLoader(opts ...LoaderOption) (*ConfigLoader, error) {
	v, err := newValidator()
	if err != nil {
		return nil, err
	}
	cl := &ConfigLoader{
		validator: v,
		cache:     make(map[string]Config),
	}
	for _, opt := range opts {
		opt(cl)
	}
	return cl, nil
}

// Load implements ports.ConfigLoader. It fills config, which must be a
// *Config, from DefaultConfig and the environment.
func (cl *ConfigLoader) Load(ctx context.Context, config any) error {
	target, ok := config.(*Config)
	if !ok {
		return ports.NewConfigError("config", fmt.Errorf("unsupported target type %T", config))
	}
	cfg, err := cl.finish(ctx, DefaultConfig())
	if err != nil {
		return err
	}
	*target = cfg
	return nil
}

// LoadFromFile loads configuration from a YAML file. Fields the file
// omits keep their DefaultConfig values.
// LoadFromFile returns an error if reading, parsing, or validation fails.
func (cl *ConfigLoader) LoadFromFile(ctx context.Context, path string) (Config, error) {
	// Clean the path to prevent directory traversal attacks.
	cleanPath := filepath.Clean(path)

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, ports.NewConfigError(cleanPath, ports.ErrConfigNotFound)
		}
		return Config{}, fmt.Errorf("failed to read file: %w", err)
	}

	return cl.load(ctx, data)
}

// LoadFromReader loads configuration from an io.Reader with the same
// semantics as LoadFromFile.
func (cl *ConfigLoader) LoadFromReader(ctx context.Context, r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read data: %w", err)
	}

	return cl.load(ctx, data)
}

// load decodes data through the cache and then applies overrides and
// validation, which depend on the environment and are never cached.
func (cl *ConfigLoader) load(ctx context.Context, data []byte) (Config, error) {
	if err := ctx.Err(); err != nil {
		return Config{}, err
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	v, err, _ := cl.sf.Do(hash, func() (any, error) {
		if cfg, ok := cl.getCached(hash); ok {
			return cfg, nil
		}
		cfg, err := cl.parseYAML(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		cl.putCached(hash, cfg)
		return cfg, nil
	})
	if err != nil {
		return Config{}, err
	}

	return cl.finish(ctx, v.(Config))
}

// finish applies environment overrides to a copy of cfg and validates it.
func (cl *ConfigLoader) finish(ctx context.Context, cfg Config) (Config, error) {
	if err := ctx.Err(); err != nil {
		return Config{}, err
	}

	cfg.Categories = slices.Clone(cfg.Categories)
	if err := env.ParseWithOptions(&cfg, env.Options{
		Prefix:      EnvPrefix,
		Environment: cl.environ,
	}); err != nil {
		return Config{}, ports.NewConfigError("env", err)
	}

	if err := validateConfig(cl.validator, &cfg); err != nil {
		return Config{}, fmt.Errorf("validation failed: %w", err)
	}
	return cfg, nil
}

// parseYAML decodes data over DefaultConfig. Decoding is strict so that
// misspelled keys fail instead of being ignored. Empty input yields the
// defaults.
func (cl *ConfigLoader) parseYAML(data []byte) (Config, error) {
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Strict mode - fail on unknown fields.

	if err := decoder.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("YAML decode failed: %w", err)
	}
	return cfg, nil
}

func (cl *ConfigLoader) getCached(hash string) (Config, bool) {
	cl.cacheMu.RLock()
	defer cl.cacheMu.RUnlock()

	cfg, ok := cl.cache[hash]
	return cfg, ok
}

func (cl *ConfigLoader) putCached(hash string, cfg Config) {
	cl.cacheMu.Lock()
	defer cl.cacheMu.Unlock()

	cl.cache[hash] = cfg
}

// ClearCache drops every cached config.
func (cl *ConfigLoader) ClearCache() {
	cl.cacheMu.Lock()
	defer cl.cacheMu.Unlock()

	cl.cache = make(map[string]Config)
}

// CacheSize returns the number of cached configs.
func (cl *ConfigLoader) CacheSize() int {
	cl.cacheMu.RLock()
	defer cl.cacheMu.RUnlock()

	return len(cl.cache)
}

// Compile-time verification that ConfigLoader implements ports.ConfigLoader.
var _ ports.ConfigLoader = (*ConfigLoader)(nil)
