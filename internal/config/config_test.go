package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	rgerrors "github.com/leafstorm/railgen/pkg/errors"
)

// isolate points every lookup location at an empty temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	for _, k := range []string{EnvConfig, EnvAddr, EnvRedisURL, EnvMongoURI, EnvCacheTTL, EnvStylesheet} {
		t.Setenv(k, "")
	}
	return dir
}

func write(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Server.Addr != "localhost:8080" || cfg.Cache.TTL.Std() != 24*time.Hour {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Render.Stylesheet != "rail-style.css" || cfg.Path != "" {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	dir := isolate(t)
	path := write(t, filepath.Join(dir, "custom.toml"), `
[server]
addr = ":9000"
cors_origins = ["https://maps.example.org"]

[cache]
ttl = "90m"
redis_url = "redis://localhost:6379/2"

[mongo]
uri = "mongodb://db:27017"
database = "transit"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.CORSOrigins[0] != "https://maps.example.org" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Cache.TTL.Std() != 90*time.Minute || cfg.Cache.RedisURL != "redis://localhost:6379/2" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Mongo.Database != "transit" || cfg.Mongo.Collection != "snapshots" {
		t.Errorf("mongo = %+v", cfg.Mongo)
	}
	if cfg.Path != path {
		t.Errorf("Path = %q", cfg.Path)
	}
}

func TestLoadXDGFile(t *testing.T) {
	dir := isolate(t)
	write(t, filepath.Join(dir, "railgen", FileName), "[render]\nstylesheet = \"/s.css\"\n")
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Render.Stylesheet != "/s.css" {
		t.Errorf("Stylesheet = %q", cfg.Render.Stylesheet)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := isolate(t)
	path := write(t, filepath.Join(dir, "c.toml"), "[server]\naddr = \":9000\"\n")
	t.Setenv(EnvAddr, ":7000")
	t.Setenv(EnvCacheTTL, "30")
	t.Setenv(EnvMongoURI, "mongodb://env:27017")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":7000" {
		t.Errorf("Addr = %q, want env override", cfg.Server.Addr)
	}
	if cfg.Cache.TTL.Std() != 30*time.Second {
		t.Errorf("TTL = %v, want 30s", cfg.Cache.TTL.Std())
	}
	if cfg.Mongo.URI != "mongodb://env:27017" {
		t.Errorf("Mongo.URI = %q", cfg.Mongo.URI)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	write(t, filepath.Join(dir, ".env"), EnvStylesheet+"=/from-dotenv.css\n")
	t.Cleanup(func() { os.Unsetenv(EnvStylesheet) })
	os.Unsetenv(EnvStylesheet)

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Render.Stylesheet != "/from-dotenv.css" {
		t.Errorf("Stylesheet = %q, want value from .env", cfg.Render.Stylesheet)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
		code    rgerrors.Code
	}{
		{"bad toml", "[server\n", nil, rgerrors.ErrCodeInvalidConfig},
		{"unknown key", "[server]\nport = 80\n", nil, rgerrors.ErrCodeInvalidConfig},
		{"bad duration", "[cache]\nttl = \"soon\"\n", nil, rgerrors.ErrCodeInvalidConfig},
		{"bad addr", "[server]\naddr = \"no port\"\n", nil, rgerrors.ErrCodeInvalidConfig},
		{"bad redis url", "[cache]\nredis_url = \"not a url\"\n", nil, rgerrors.ErrCodeInvalidConfig},
		{"bad env ttl", "", map[string]string{EnvCacheTTL: "later"}, rgerrors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := write(t, filepath.Join(dir, "c.toml"), tt.content)
			_, err := Load(path)
			if !rgerrors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestLoadMissingExplicit(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "absent.toml"))
	if !rgerrors.Is(err, rgerrors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}

	t.Setenv(EnvConfig, filepath.Join(dir, "also-absent.toml"))
	if _, err := Load(""); !rgerrors.Is(err, rgerrors.ErrCodeFileNotFound) {
		t.Errorf("$%s error = %v, want FILE_NOT_FOUND", EnvConfig, err)
	}
}
