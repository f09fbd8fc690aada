// Package config loads the familygraph configuration file.
//
// The file lives at $XDG_CONFIG_HOME/familygraph/config.toml. Missing files
// and missing keys fall back to [Default]. A handful of secrets can be given
// through the environment instead of the file; see [Config.ApplyEnv].
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/familygraph/pkg/errors"
	"github.com/matzehuels/familygraph/pkg/force"
	"github.com/matzehuels/familygraph/pkg/settings"
)

const appName = "familygraph"

// Source backends.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendSupabase = "supabase"
	BackendMongo    = "mongo"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Environment overrides.
const (
	EnvSupabaseURL = "FAMILYGRAPH_SUPABASE_URL"
	EnvSupabaseKey = "FAMILYGRAPH_SUPABASE_KEY"
	EnvMongoURI    = "FAMILYGRAPH_MONGO_URI"
	EnvRedisAddr   = "FAMILYGRAPH_REDIS_ADDR"
)

// Config holds the familygraph configuration.
type Config struct {
	Source   SourceConfig      `toml:"source"`
	Cache    CacheConfig       `toml:"cache"`
	Viewport ViewportConfig    `toml:"viewport"`
	View     settings.Settings `toml:"view"`
	Server   ServerConfig      `toml:"server"`
}

// SourceConfig selects and configures the data source.
type SourceConfig struct {
	Backend  string         `toml:"backend"` // "file", "memory", "supabase", "mongo"
	Path     string         `toml:"path"`    // file backend; empty means the data dir
	Supabase SupabaseConfig `toml:"supabase"`
	Mongo    MongoConfig    `toml:"mongo"`
}

type SupabaseConfig struct {
	URL string `toml:"url"`
	Key string `toml:"key"`
}

type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// CacheConfig selects the render cache.
type CacheConfig struct {
	Backend string `toml:"backend"` // "file", "redis", "none"
	Dir     string `toml:"dir"`
	Redis   struct {
		Addr     string `toml:"addr"`
		Password string `toml:"password"`
		DB       int    `toml:"db"`
	} `toml:"redis"`
}

// ViewportConfig is read once at startup. The layout does not follow
// later window resizes.
type ViewportConfig struct {
	Width  float64      `toml:"width"`
	Height float64      `toml:"height"`
	Seed   uint64       `toml:"seed"`
	Params force.Params `toml:"params"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Backend: BackendFile,
			Mongo:   MongoConfig{Database: "familygraph"},
		},
		Cache:    CacheConfig{Backend: CacheFile},
		Viewport: ViewportConfig{Width: force.DefaultWidth, Height: force.DefaultHeight, Seed: force.DefaultSeed},
		View:     settings.Default(),
		Server:   ServerConfig{Addr: ":8080"},
	}
}

// Dir returns the config directory.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, appName)
}

// Path returns the config file path.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// DataDir returns the directory holding the file source document.
func DataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, appName)
}

// CacheDir returns the cache directory.
func CacheDir() string {
	dir := os.Getenv("XDG_CACHE_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".cache")
	}
	return filepath.Join(dir, appName)
}

// Load reads the config file at path, or at [Path] when path is empty.
// A missing file is not an error. Environment overrides are applied last.
// Load does not validate; callers apply their own overrides first and then
// call [Config.Validate].
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
		}
	}

	cfg.ApplyEnv()
	cfg.fill()
	return cfg, nil
}

// ApplyEnv overrides secrets and addresses from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvSupabaseURL); v != "" {
		c.Source.Supabase.URL = v
	}
	if v := os.Getenv(EnvSupabaseKey); v != "" {
		c.Source.Supabase.Key = v
	}
	if v := os.Getenv(EnvMongoURI); v != "" {
		c.Source.Mongo.URI = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Cache.Redis.Addr = v
	}
}

func (c *Config) fill() {
	d := Default()
	c.Source.Backend = strings.ToLower(strings.TrimSpace(c.Source.Backend))
	if c.Source.Backend == "" {
		c.Source.Backend = d.Source.Backend
	}
	if c.Source.Path == "" {
		c.Source.Path = filepath.Join(DataDir(), "family.json")
	}
	if c.Source.Mongo.Database == "" {
		c.Source.Mongo.Database = d.Source.Mongo.Database
	}
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	if c.Cache.Backend == "" {
		c.Cache.Backend = d.Cache.Backend
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = CacheDir()
	}
	if c.Viewport.Width <= 0 {
		c.Viewport.Width = d.Viewport.Width
	}
	if c.Viewport.Height <= 0 {
		c.Viewport.Height = d.Viewport.Height
	}
	if c.Viewport.Seed == 0 {
		c.Viewport.Seed = d.Viewport.Seed
	}
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	c.View = c.View.Normalized()
}

// Validate checks backend names and the credentials each backend needs.
func (c *Config) Validate() error {
	switch c.Source.Backend {
	case BackendFile, BackendMemory:
	case BackendSupabase:
		if err := errors.ValidateURL(c.Source.Supabase.URL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "source.supabase.url (or %s)", EnvSupabaseURL)
		}
		if c.Source.Supabase.Key == "" {
			return errors.New(errors.ErrCodeInvalidInput, "source.supabase.key is required (or %s)", EnvSupabaseKey)
		}
	case BackendMongo:
		if c.Source.Mongo.URI == "" {
			return errors.New(errors.ErrCodeInvalidInput, "source.mongo.uri is required (or %s)", EnvMongoURI)
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown source backend %q (allowed: file, memory, supabase, mongo)", c.Source.Backend)
	}

	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.Redis.Addr == "" {
			return errors.New(errors.ErrCodeInvalidInput, "cache.redis.addr is required (or %s)", EnvRedisAddr)
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q (allowed: file, redis, none)", c.Cache.Backend)
	}
	return nil
}

// Save writes cfg to path, or to [Path] when path is empty. Secrets that came
// from the environment are written too; callers that care should clear them.
func Save(path string, cfg *Config) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o600)
}

// SaveView replaces only the [view] section of the file at path.
func SaveView(path string, view settings.Settings) error {
	if path == "" {
		path = Path()
	}
	cfg := Default()
	if data, err := os.ReadFile(path); err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
		}
	}
	cfg.View = view.Normalized()
	return Save(path, cfg)
}
