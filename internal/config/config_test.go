package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/familygraph/pkg/errors"
	"github.com/matzehuels/familygraph/pkg/settings"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Source.Backend != BackendFile {
		t.Errorf("source backend = %q, want file", cfg.Source.Backend)
	}
	if cfg.Cache.Backend != CacheFile {
		t.Errorf("cache backend = %q, want file", cfg.Cache.Backend)
	}
	if cfg.Viewport.Width != 1200 || cfg.Viewport.Height != 800 {
		t.Errorf("viewport = %vx%v, want 1200x800", cfg.Viewport.Width, cfg.Viewport.Height)
	}
	if cfg.View != settings.Default() {
		t.Errorf("view = %v, want defaults", cfg.View)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("server addr = %q", cfg.Server.Addr)
	}
}

func TestDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/test-xdg")
	if got := Dir(); got != "/tmp/test-xdg/familygraph" {
		t.Errorf("Dir() = %q", got)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home, _ := os.UserHomeDir()
	if got, want := Dir(), filepath.Join(home, ".config", "familygraph"); got != want {
		t.Errorf("Dir() = %q, want %q", got, want)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/data")
	t.Setenv("XDG_CACHE_HOME", "/tmp/cache")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Source.Path != "/tmp/data/familygraph/family.json" {
		t.Errorf("source path = %q", cfg.Source.Path)
	}
	if cfg.Cache.Dir != "/tmp/cache/familygraph" {
		t.Errorf("cache dir = %q", cfg.Cache.Dir)
	}
}

func TestLoad_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[viewport]
width = 640

[view]
theme = "ivory"
layout = "sideways"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Viewport.Width != 640 {
		t.Errorf("width = %v, want 640", cfg.Viewport.Width)
	}
	if cfg.Viewport.Height != 800 {
		t.Errorf("height = %v, want default 800", cfg.Viewport.Height)
	}
	if cfg.View.Theme != settings.ThemeIvory {
		t.Errorf("theme = %q, want ivory", cfg.View.Theme)
	}
	if cfg.View.Layout != settings.LayoutTree {
		t.Errorf("unknown layout should fall back to tree, got %q", cfg.View.Layout)
	}
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[source\nbackend ="), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Load() error = %v, want INVALID_FORMAT", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[source]
backend = "Supabase"

[cache]
backend = "redis"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvSupabaseURL, "https://example.supabase.co")
	t.Setenv(EnvSupabaseKey, "anon")
	t.Setenv(EnvRedisAddr, "localhost:6379")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Source.Backend != BackendSupabase {
		t.Errorf("backend = %q", cfg.Source.Backend)
	}
	if cfg.Source.Supabase.Key != "anon" {
		t.Errorf("key = %q", cfg.Source.Supabase.Key)
	}
	if cfg.Cache.Redis.Addr != "localhost:6379" {
		t.Errorf("redis addr = %q", cfg.Cache.Redis.Addr)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"memory", func(c *Config) { c.Source.Backend = BackendMemory }, false},
		{"unknown source", func(c *Config) { c.Source.Backend = "sqlite" }, true},
		{"supabase without url", func(c *Config) { c.Source.Backend = BackendSupabase }, true},
		{"supabase bad scheme", func(c *Config) {
			c.Source.Backend = BackendSupabase
			c.Source.Supabase = SupabaseConfig{URL: "ftp://x", Key: "k"}
		}, true},
		{"supabase ok", func(c *Config) {
			c.Source.Backend = BackendSupabase
			c.Source.Supabase = SupabaseConfig{URL: "https://x.supabase.co", Key: "k"}
		}, false},
		{"mongo without uri", func(c *Config) { c.Source.Backend = BackendMongo }, true},
		{"redis without addr", func(c *Config) { c.Cache.Backend = CacheRedis }, true},
		{"unknown cache", func(c *Config) { c.Cache.Backend = "memcached" }, true},
		{"no cache", func(c *Config) { c.Cache.Backend = CacheNone }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Viewport.Seed = 7
	cfg.Server.Addr = "127.0.0.1:9000"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Viewport.Seed != 7 {
		t.Errorf("seed = %d, want 7", got.Viewport.Seed)
	}
	if got.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("addr = %q", got.Server.Addr)
	}
}

func TestSaveView(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server]\naddr = \":9999\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	view := settings.Default()
	view.Theme = settings.ThemeParchment
	view.Particles = true
	if err := SaveView(path, view); err != nil {
		t.Fatalf("SaveView() error = %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.View != view {
		t.Errorf("view = %v, want %v", got.View, view)
	}
	if got.Server.Addr != ":9999" {
		t.Errorf("SaveView dropped other sections: addr = %q", got.Server.Addr)
	}
}
