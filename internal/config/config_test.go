package config

import (
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_DefaultsWithSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.API.Port)
	}
	if cfg.Session.Store != "redis" {
		t.Fatalf("expected redis session store, got %q", cfg.Session.Store)
	}
	if cfg.Session.TTL != 24*time.Hour {
		t.Fatalf("unexpected session ttl %v", cfg.Session.TTL)
	}
	if cfg.Archive.Enabled {
		t.Fatal("archive should be disabled by default")
	}
	if !cfg.UsesRedis() {
		t.Fatal("redis session store requires redis")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("SESSION_STORE", "memory")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("API_PORT", "9090")
	t.Setenv("PDF_RENDER_TIMEOUT", "45s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.API.Port)
	}
	if cfg.Session.TTL != 2*time.Hour {
		t.Fatalf("expected 2h ttl, got %v", cfg.Session.TTL)
	}
	if cfg.PDF.RenderTimeout != 45*time.Second {
		t.Fatalf("expected 45s render timeout, got %v", cfg.PDF.RenderTimeout)
	}
	if cfg.UsesRedis() {
		t.Fatal("memory session store without archive should not need redis")
	}
}

func TestLoad_RejectsShortSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "short")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "session secret") {
		t.Fatalf("expected session secret error, got %v", err)
	}
}

func TestLoad_ArchiveRequiresMinIOCredentials(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("ARCHIVE_ENABLED", "true")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "minio access key id") {
		t.Fatalf("expected minio credential error, got %v", err)
	}
}

func TestDatabaseConfigDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, Name: "resumes", User: "app", Password: "pw", SSLMode: "disable"}
	want := "host=db port=5432 user=app password=pw dbname=resumes sslmode=disable"
	if got := d.DSN(); got != want {
		t.Fatalf("dsn mismatch: %q", got)
	}
}

func TestConfigUsesRedis(t *testing.T) {
	cases := []struct {
		store   string
		archive bool
		want    bool
	}{
		{store: "redis", want: true},
		{store: "Redis", want: true},
		{store: "memory", want: false},
		{store: "memory", archive: true, want: true},
	}
	for _, tc := range cases {
		var cfg Config
		cfg.Session.Store = tc.store
		cfg.Archive.Enabled = tc.archive
		if got := cfg.UsesRedis(); got != tc.want {
			t.Fatalf("store=%q archive=%v: expected %v got %v", tc.store, tc.archive, tc.want, got)
		}
	}
}
