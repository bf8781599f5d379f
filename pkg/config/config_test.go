package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/railcdl/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if cfg.Analysis.Threshold != 500 || cfg.Analysis.Branch != "first" {
		t.Errorf("Analysis = %+v", cfg.Analysis)
	}
	if cfg.Cache.Backend != "file" || cfg.Store.Backend != "memory" {
		t.Errorf("backends = %s/%s, want file/memory", cfg.Cache.Backend, cfg.Store.Backend)
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse(`
[analysis]
threshold = 700.0
branch_policy = "strict"

[cache]
backend = "redis"
redis_addr = "localhost:6379"
ttl = "36h"

[server]
addr = ":9000"
`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := Default()
	want.Analysis = AnalysisConfig{Threshold: 700, Branch: "strict"}
	want.Cache.Backend = "redis"
	want.Cache.RedisAddr = "localhost:6379"
	want.Cache.TTL = Duration{36 * time.Hour}
	want.Server.Addr = ":9000"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code errors.Code
		msg  string
	}{
		{"syntax", "[analysis", errors.ErrCodeInvalidFormat, ""},
		{"unknown key", "[analysis]\nspeed = 3", errors.ErrCodeInvalidFormat, "analysis.speed"},
		{"bad duration", "[cache]\nttl = \"soon\"", errors.ErrCodeInvalidFormat, ""},
		{"zero threshold", "[analysis]\nthreshold = 0.0", errors.ErrCodeInvalidInput, "greater than 0"},
		{"bad branch", "[analysis]\nbranch_policy = \"random\"", errors.ErrCodeInvalidInput, "one of"},
		{"bad backend", "[cache]\nbackend = \"memcached\"", errors.ErrCodeInvalidInput, "Backend"},
		{"redis without addr", "[cache]\nbackend = \"redis\"", errors.ErrCodeInvalidInput, "RedisAddr"},
		{"mongo without uri", "[store]\nbackend = \"mongo\"", errors.ErrCodeInvalidInput, "MongoURI"},
		{"negative upload", "[server]\nmax_upload_bytes = -1", errors.ErrCodeInvalidInput, "MaxUploadBytes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.doc)
			if !errors.Is(err, tt.code) {
				t.Fatalf("Parse() error = %v, want code %s", err, tt.code)
			}
			if tt.msg != "" && !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q does not mention %q", err, tt.msg)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvThreshold: "650",
		EnvRedisAddr: "redis:6379",
		EnvMongoURI:  "mongodb://db:27017",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	if err := cfg.applyEnv(lookup); err != nil {
		t.Fatalf("applyEnv() error = %v", err)
	}
	if cfg.Analysis.Threshold != 650 {
		t.Errorf("Threshold = %v, want 650", cfg.Analysis.Threshold)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "redis:6379" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Store.Backend != "mongo" || cfg.Store.MongoURI != "mongodb://db:27017" {
		t.Errorf("Store = %+v", cfg.Store)
	}

	env[EnvThreshold] = "far"
	if err := Default().applyEnv(lookup); !errors.Is(err, errors.ErrCodeInvalidThreshold) {
		t.Errorf("applyEnv(bad threshold) error = %v, want INVALID_THRESHOLD", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv(EnvThreshold, "")
	t.Setenv(EnvRedisAddr, "")
	t.Setenv(EnvMongoURI, "")

	// No file at the default location.
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() without file error = %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Load() without file mismatch (-want +got):\n%s", diff)
	}

	path := filepath.Join(dir, appName, "config.toml")
	if path != Path() {
		t.Fatalf("Path() = %s, want %s", Path(), path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[analysis]\nthreshold = 800.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Analysis.Threshold != 800 {
		t.Errorf("Threshold = %v, want 800", cfg.Analysis.Threshold)
	}

	t.Setenv(EnvThreshold, "900")
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load(path) error = %v", err)
	}
	if cfg.Analysis.Threshold != 900 {
		t.Errorf("Threshold = %v, want env override 900", cfg.Analysis.Threshold)
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Cache.TTL = Duration{2 * time.Hour}

	var buf bytes.Buffer
	if err := cfg.Encode(&buf); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := Parse(buf.String())
	if err != nil {
		t.Fatalf("Parse(encoded) error = %v\n%s", err, buf.String())
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
