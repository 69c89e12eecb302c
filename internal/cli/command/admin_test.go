package command

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/yndnr/ptagate/internal/server/localserver"
)

func startAdmin(t *testing.T, actions localserver.Actions) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "admin.sock")
	s := localserver.New(path, localserver.NewHandler(actions), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := s.Listen(); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	go s.Serve()
	t.Cleanup(func() { s.Shutdown(context.Background()) })
	return path
}

func TestAdmin(t *testing.T) {
	var reloads atomic.Int32
	path := startAdmin(t, localserver.Actions{
		Status: func() any { return map[string]any{"version": "1.2.3", "locations": 2} },
		Reload: func() error { reloads.Add(1); return nil },
	})

	out, err := run(t, "-o", "json", "admin", "--socket", path, "status")
	if err != nil {
		t.Fatalf("admin status error = %v", err)
	}
	var status map[string]any
	if err := json.Unmarshal([]byte(out), &status); err != nil || status["version"] != "1.2.3" {
		t.Errorf("status = %q (%v)", out, err)
	}

	if out, err := run(t, "admin", "--socket", path, "reload"); err != nil || out != "ok\n" {
		t.Errorf("admin reload = %q, %v", out, err)
	}
	if reloads.Load() != 1 {
		t.Errorf("reloads = %d, want 1", reloads.Load())
	}

	if out, err := run(t, "admin", "--socket", path, "ping"); err != nil || out != "pong\n" {
		t.Errorf("admin ping = %q, %v", out, err)
	}

	_, err = run(t, "admin", "--socket", path, "shutdown")
	if err == nil || !strings.Contains(err.Error(), "not supported") {
		t.Errorf("admin shutdown error = %v", err)
	}
}

func TestAdmin_SocketFromConfig(t *testing.T) {
	path := startAdmin(t, localserver.Actions{})
	cfgPath := writeConfig(t, testConfig+"server:\n  admin_socket: "+path+"\n")

	if out, err := run(t, "-c", cfgPath, "admin", "ping"); err != nil || out != "pong\n" {
		t.Errorf("admin ping = %q, %v", out, err)
	}
}

func TestAdmin_NoSocket(t *testing.T) {
	if _, err := run(t, "admin", "ping"); err == nil {
		t.Error("expected error without a socket")
	}
}
