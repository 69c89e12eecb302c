package buildinfo

import (
	"runtime"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()

	tests := []struct {
		name  string
		value string
	}{
		{"Version", info.Version},
		{"Commit", info.Commit},
		{"BuildTime", info.BuildTime},
		{"GoVersion", info.GoVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value == "" {
				t.Errorf("%s field should not be empty", tt.name)
			}
		})
	}
}

func TestGet_GoVersionFallback(t *testing.T) {
	saved := GoVersion
	t.Cleanup(func() { GoVersion = saved })

	GoVersion = "unknown"
	if got := Get().GoVersion; got != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", got, runtime.Version())
	}

	GoVersion = "go1.24.1"
	if got := Get().GoVersion; got != "go1.24.1" {
		t.Errorf("GoVersion = %q, want injected value", got)
	}
}

func TestString(t *testing.T) {
	info := Get()
	expected := info.Version + " (" + info.Commit + ") built at " + info.BuildTime
	if s := String(); s != expected {
		t.Errorf("String() = %q, want %q", s, expected)
	}
}

func TestUserAgent(t *testing.T) {
	saved := Version
	t.Cleanup(func() { Version = saved })

	Version = "v1.2.0"
	if ua := UserAgent(); ua != "ptagate/v1.2.0" {
		t.Errorf("UserAgent() = %q", ua)
	}
	if !strings.HasPrefix(UserAgent(), "ptagate/") {
		t.Error("UserAgent() should start with the product name")
	}
}
