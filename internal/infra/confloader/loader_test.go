package confloader

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testConfig struct {
	Server struct {
		HTTP struct {
			Addr    string `koanf:"addr"`
			Enabled bool   `koanf:"enabled"`
		} `koanf:"http"`
		ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	} `koanf:"server"`
	PTA struct {
		KeyPrimary string `koanf:"key_primary"`
		Locations  []struct {
			PathPrefix  string   `koanf:"path_prefix"`
			AuthMethods []string `koanf:"auth_methods"`
		} `koanf:"locations"`
	} `koanf:"pta"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestNewLoader(t *testing.T) {
	l := NewLoader()
	if l == nil {
		t.Fatal("NewLoader() returned nil")
	}
	if l.envPrefix != DefaultEnvPrefix {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, DefaultEnvPrefix)
	}
}

func TestNewLoader_WithOptions(t *testing.T) {
	l := NewLoader(
		WithEnvPrefix("TEST_"),
		WithConfigFile("/path/to/config.yaml"),
		WithOverrides(map[string]any{"a": 1}),
	)

	if l.envPrefix != "TEST_" {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, "TEST_")
	}
	if l.filePath != "/path/to/config.yaml" {
		t.Errorf("filePath = %q, want %q", l.filePath, "/path/to/config.yaml")
	}
	if len(l.overrides) != 1 {
		t.Errorf("overrides = %v", l.overrides)
	}
}

func TestLoader_LoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  http:
    addr: "0.0.0.0:8080"
    enabled: true
`)

	l := NewLoader()
	if err := l.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if addr := l.String("server.http.addr"); addr != "0.0.0.0:8080" {
		t.Errorf("server.http.addr = %q, want %q", addr, "0.0.0.0:8080")
	}
}

func TestLoader_LoadFile_NotFound(t *testing.T) {
	l := NewLoader()
	if err := l.LoadFile("/nonexistent/config.yaml"); err == nil {
		t.Error("LoadFile() should return error for nonexistent file")
	}
}

func TestLoader_LoadFile_Empty(t *testing.T) {
	l := NewLoader()
	if err := l.LoadFile(""); err != nil {
		t.Errorf("LoadFile(\"\") should not error, got: %v", err)
	}
}

func TestLoader_LoadEnv(t *testing.T) {
	t.Setenv("PTAGATE_SERVER__HTTP__ADDR", "127.0.0.1:8080")
	t.Setenv("PTAGATE_PTA__KEY_PRIMARY", "00112233445566778899aabbccddeeff")

	l := NewLoader()
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	if addr := l.String("server.http.addr"); addr != "127.0.0.1:8080" {
		t.Errorf("server.http.addr = %q, want %q", addr, "127.0.0.1:8080")
	}
	if key := l.String("pta.key_primary"); key != "00112233445566778899aabbccddeeff" {
		t.Errorf("pta.key_primary = %q", key)
	}
}

func TestLoader_LoadEnv_CustomPrefix(t *testing.T) {
	t.Setenv("MYAPP_SERVER__PORT", "9090")

	l := NewLoader(WithEnvPrefix("MYAPP_"))
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	if port := l.String("server.port"); port != "9090" {
		t.Errorf("server.port = %q, want %q", port, "9090")
	}
}

func TestLoader_LoadMap(t *testing.T) {
	l := NewLoader()

	if err := l.LoadMap(map[string]any{"server.http.addr": "localhost:3000"}); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}

	if addr := l.String("server.http.addr"); addr != "localhost:3000" {
		t.Errorf("server.http.addr = %q, want %q", addr, "localhost:3000")
	}
	if len(l.Keys()) != 1 {
		t.Errorf("Keys() = %v, want one key", l.Keys())
	}
}

func TestLoader_Load_Priority(t *testing.T) {
	path := writeConfig(t, `
server:
  http:
    addr: "from-file:8080"
  shutdown_timeout: 10s
`)

	t.Setenv("PTAGATE_SERVER__HTTP__ADDR", "from-env:8080")
	t.Setenv("PTAGATE_SERVER__SHUTDOWN_TIMEOUT", "20s")

	l := NewLoader(
		WithConfigFile(path),
		WithOverrides(map[string]any{"server.shutdown_timeout": "30s"}),
	)

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTP.Addr != "from-env:8080" {
		t.Errorf("Addr = %q, want %q (env should override file)", cfg.Server.HTTP.Addr, "from-env:8080")
	}
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 30s (override should win)", cfg.Server.ShutdownTimeout)
	}
}

func TestLoader_Unmarshal_KeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
pta:
  key_primary: "000102030405060708090a0b0c0d0e0f"
  locations:
    - path_prefix: /videos/
      auth_methods: [qs, cookie]
`)

	var cfg testConfig
	cfg.Server.HTTP.Addr = "default:8080"

	if err := NewLoader(WithConfigFile(path)).Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTP.Addr != "default:8080" {
		t.Errorf("Addr = %q, want default kept", cfg.Server.HTTP.Addr)
	}
	if cfg.PTA.KeyPrimary != "000102030405060708090a0b0c0d0e0f" {
		t.Errorf("KeyPrimary = %q", cfg.PTA.KeyPrimary)
	}
	if len(cfg.PTA.Locations) != 1 || cfg.PTA.Locations[0].PathPrefix != "/videos/" ||
		len(cfg.PTA.Locations[0].AuthMethods) != 2 {
		t.Errorf("Locations = %+v", cfg.PTA.Locations)
	}
}

func TestMapProvider_ReadBytes(t *testing.T) {
	if _, err := mapProvider(nil).ReadBytes(); err != ErrReadBytesNotSupported {
		t.Errorf("ReadBytes() error = %v", err)
	}
}
