package confloader

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewWatcher(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	if w.watcher == nil {
		t.Error("NewWatcher() watcher is nil")
	}
	if w.done == nil {
		t.Error("NewWatcher() done channel is nil")
	}
	if w.debounce != DefaultDebounce {
		t.Errorf("debounce = %v, want %v", w.debounce, DefaultDebounce)
	}
}

func TestNewWatcher_WithOptions(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	w, err := NewWatcher(WithWatcherLogger(logger), WithDebounce(0))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	if w.logger != logger {
		t.Error("WithWatcherLogger() option not applied")
	}
	if w.debounce != 0 {
		t.Error("WithDebounce() option not applied")
	}
}

func TestWatcher_Watch_NonexistentDir(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	if err := w.Watch("/nonexistent/path/config.yaml"); err == nil {
		t.Error("Watch() expected error for nonexistent directory")
	}
}

func TestWatcher_StopTwice(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	w.StartAsync()

	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}

func TestWatcher_OnChange_MultipleCallbacks(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	var count int
	var mu sync.Mutex
	for i := 0; i < 3; i++ {
		w.OnChange(func(path string) {
			mu.Lock()
			count++
			mu.Unlock()
		})
	}

	w.notifyCallbacks("/test/path")

	mu.Lock()
	defer mu.Unlock()
	if count != 3 {
		t.Errorf("callback count = %d, want 3", count)
	}
}

func TestWatcher_FileChange(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configFile, []byte("key: value1"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	w, err := NewWatcher(WithDebounce(20 * time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	if err := w.Watch(configFile); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	changed := make(chan string, 10)
	w.OnChange(func(path string) {
		changed <- path
	})

	w.StartAsync()
	defer w.Stop()
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(configFile, []byte("key: value2"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	select {
	case path := <-changed:
		if path != configFile {
			t.Errorf("callback path = %q, want %q", path, configFile)
		}
	case <-time.After(2 * time.Second):
		t.Error("OnChange() callback was not triggered within timeout")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configFile, []byte("key: value"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	w, err := NewWatcher(WithDebounce(0))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	if err := w.Watch(configFile); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	var calls atomic.Int32
	w.OnChange(func(string) { calls.Add(1) })

	w.StartAsync()
	defer w.Stop()
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	time.Sleep(200 * time.Millisecond)

	if n := calls.Load(); n != 0 {
		t.Errorf("callbacks = %d for an unwatched file, want 0", n)
	}
}

func TestWatcher_Debounce(t *testing.T) {
	w, err := NewWatcher(WithDebounce(50 * time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	var calls atomic.Int32
	w.OnChange(func(string) { calls.Add(1) })

	for i := 0; i < 5; i++ {
		w.schedule("/etc/ptagate/config.yaml")
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(300 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("callbacks = %d after a burst, want 1", n)
	}
}

func TestWatcher_StopCancelsPending(t *testing.T) {
	w, err := NewWatcher(WithDebounce(100 * time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	var calls atomic.Int32
	w.OnChange(func(string) { calls.Add(1) })

	w.schedule("/etc/ptagate/config.yaml")
	if err := w.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	time.Sleep(250 * time.Millisecond)
	if n := calls.Load(); n != 0 {
		t.Errorf("callbacks = %d after Stop, want 0", n)
	}
}

func TestWatcher_CallbackRegistersCallback(t *testing.T) {
	w, err := NewWatcher(WithDebounce(0))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	var late atomic.Int32
	w.OnChange(func(string) {
		w.OnChange(func(string) { late.Add(1) })
	})

	done := make(chan struct{})
	go func() {
		w.notifyCallbacks("/etc/ptagate/config.yaml")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("notifyCallbacks() deadlocked when a callback called OnChange")
	}
	if n := late.Load(); n != 0 {
		t.Errorf("callback added during notification ran %d times, want 0", n)
	}

	w.notifyCallbacks("/etc/ptagate/config.yaml")
	if n := late.Load(); n != 1 {
		t.Errorf("late callback ran %d times on the next notification, want 1", n)
	}
}
