// Package shutdown coordinates graceful process termination.
//
// Hooks run in reverse registration order under a shared deadline once a
// termination signal arrives or Trigger is called:
//
//	h := shutdown.NewHandler(30 * time.Second)
//	h.OnShutdown("http server", srv.Shutdown)
//	h.OnShutdown("config watcher", stopWatcher)
//	err := h.Wait()
package shutdown

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// Hook is a named cleanup function.
type Hook struct {
	Name string
	Fn   func(context.Context) error
}

// Handler handles graceful shutdown.
type Handler struct {
	timeout time.Duration
	hooks   []Hook
	mu      sync.Mutex
	trigger chan string
	done    chan struct{}
	once    sync.Once
	signals []os.Signal
	logger  *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger used to report hook progress.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = l
	}
}

// WithSignals overrides the signals that start shutdown.
func WithSignals(sig ...os.Signal) Option {
	return func(h *Handler) {
		h.signals = sig
	}
}

// NewHandler creates a new shutdown handler.
func NewHandler(timeout time.Duration, opts ...Option) *Handler {
	h := &Handler{
		timeout: timeout,
		hooks:   make([]Hook, 0),
		trigger: make(chan string, 1),
		done:    make(chan struct{}),
		signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// OnShutdown registers a shutdown hook.
// Hooks are called in reverse order of registration.
func (h *Handler) OnShutdown(name string, fn func(context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, Hook{Name: name, Fn: fn})
}

// Trigger starts shutdown without a signal, e.g. when a listener fails.
// Only the first reason is kept.
func (h *Handler) Trigger(reason string) {
	select {
	case h.trigger <- reason:
	default:
	}
}

// Wait blocks until a signal arrives or Trigger is called, then runs the
// hooks. It returns the joined hook errors.
func (h *Handler) Wait() error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, h.signals...)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		h.logger.Info("shutdown signal received", "signal", sig.String())
	case reason := <-h.trigger:
		h.logger.Info("shutdown triggered", "reason", reason)
	}

	return h.Shutdown()
}

// Shutdown runs the hooks once. Later calls return nil immediately.
func (h *Handler) Shutdown() error {
	var err error
	h.once.Do(func() {
		defer close(h.done)

		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()

		h.mu.Lock()
		hooks := make([]Hook, len(h.hooks))
		copy(hooks, h.hooks)
		h.mu.Unlock()

		var errs []error
		for i := len(hooks) - 1; i >= 0; i-- {
			hook := hooks[i]
			start := time.Now()
			if hookErr := hook.Fn(ctx); hookErr != nil {
				h.logger.Error("shutdown hook failed",
					"hook", hook.Name,
					"error", hookErr,
				)
				errs = append(errs, fmt.Errorf("%s: %w", hook.Name, hookErr))
				continue
			}
			h.logger.Debug("shutdown hook finished",
				"hook", hook.Name,
				"duration", time.Since(start),
			)
		}
		err = errors.Join(errs...)
	})
	return err
}

// Done returns a channel that closes when shutdown is complete.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}
