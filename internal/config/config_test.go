package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.Database.Path != "schoolhub.db" || cfg.Database.SlowQuery != 50*time.Millisecond {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour || cfg.Auth.JWTSecret != DefaultJWTSecret {
		t.Errorf("auth = %+v", cfg.Auth)
	}
	if !reflect.DeepEqual(cfg.HTTP.CORSOrigins, []string{"*"}) || !cfg.SeedActivities {
		t.Errorf("http = %+v, seed = %v", cfg.HTTP, cfg.SeedActivities)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SCHOOLHUB_ADDR", ":9090")
	t.Setenv("SCHOOLHUB_TOKEN_TTL", "2h")
	t.Setenv("SCHOOLHUB_CORS_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("SCHOOLHUB_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":9090" || cfg.Auth.TokenTTL != 2*time.Hour {
		t.Errorf("cfg = %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.HTTP.CORSOrigins, []string{"http://a.test", "http://b.test"}) {
		t.Errorf("CORSOrigins = %v", cfg.HTTP.CORSOrigins)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel() = %v", cfg.SlogLevel())
	}
}

func TestLoad_DotenvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("SCHOOLHUB_DB_PATH=/tmp/from-dotenv.db\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SCHOOLHUB_DB_PATH", "")
	os.Unsetenv("SCHOOLHUB_DB_PATH")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	os.Unsetenv("SCHOOLHUB_DB_PATH")
	if cfg.Database.Path != "/tmp/from-dotenv.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing dotenv should be ignored: %v", err)
	}
}

func TestValidate_ProductionRejectsDefaults(t *testing.T) {
	t.Setenv("SCHOOLHUB_ENV", "production")
	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("err = %v, want JWT secret rejection", err)
	}

	t.Setenv("SCHOOLHUB_JWT_SECRET", strings.Repeat("s", 40))
	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "ADMIN_PASSWORD") {
		t.Fatalf("err = %v, want admin password rejection", err)
	}

	t.Setenv("SCHOOLHUB_ADMIN_PASSWORD", "a-real-password")
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.IsProduction() {
		t.Error("IsProduction() = false")
	}
}

func TestValidate_CSRFKeyLength(t *testing.T) {
	t.Setenv("SCHOOLHUB_CSRF_KEY", "short")
	if _, err := Load(""); err == nil {
		t.Error("expected short CSRF key to be rejected")
	}
}
