package main

import (
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"

	"github.com/yndnr/ptagate/internal/core/pta"
	"github.com/yndnr/ptagate/internal/server/config"
	"github.com/yndnr/ptagate/internal/server/httpserver"
	"github.com/yndnr/ptagate/internal/telemetry/logger"
	"github.com/yndnr/ptagate/internal/telemetry/metric"
)

// reloader applies a changed configuration file to the running gate.
//
// Keys, locations and the log level take effect immediately. The listener,
// upstream, rate limit and metrics settings need a restart; a change to them
// is logged and otherwise ignored.
type reloader struct {
	path    string
	store   *pta.Store
	guard   *httpserver.Guard
	metrics *metric.Registry
	logger  *slog.Logger

	mu         sync.Mutex
	current    *config.ServerConfig
	reloadedAt time.Time
}

// Current returns the configuration in effect.
func (r *reloader) Current() *config.ServerConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// LastReload returns when a reload last succeeded, or the zero time.
func (r *reloader) LastReload() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reloadedAt
}

var errNoConfigFile = errors.New("gate was started without a configuration file")

// Reload loads and applies the file. On error the running configuration is
// kept.
func (r *reloader) Reload() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.path == "" {
		return errNoConfigFile
	}

	next, err := config.Load(r.path, nil)
	if err == nil {
		err = r.apply(next)
	}
	r.metrics.RecordConfigReload(err == nil)
	if err != nil {
		r.logger.Error("configuration reload rejected, keeping current configuration",
			"config", r.path,
			"error", err)
		return err
	}

	r.warnRestartRequired(next)
	r.current = next
	r.logger.Info("configuration reloaded",
		"config", r.path,
		"key_pairs", r.store.Load().Keyring().Len(),
		"locations", len(next.PTA.Locations))
	r.reloadedAt = time.Now()
	return nil
}

// apply builds everything first so a failure leaves the gate untouched.
func (r *reloader) apply(next *config.ServerConfig) error {
	v, err := next.PTA.NewValidator(pta.WithObserver(r.metrics))
	if err != nil {
		return err
	}
	locs, err := httpserver.NewLocations(next.PTA.Locations)
	if err != nil {
		return err
	}

	r.store.Swap(v)
	r.guard.SetLocations(locs)
	logger.SetLevel(next.Log.Level)
	return nil
}

func (r *reloader) warnRestartRequired(next *config.ServerConfig) {
	cur := r.current
	changed := func(section string) {
		r.logger.Warn("setting changed but requires a restart", "section", section)
	}

	if cur.Server.HTTP != next.Server.HTTP {
		changed("server.http")
	}
	if cur.Upstream != next.Upstream {
		changed("upstream")
	}
	if cur.RateLimit.RequestsPerSecond != next.RateLimit.RequestsPerSecond ||
		cur.RateLimit.Burst != next.RateLimit.Burst ||
		!slices.Equal(cur.RateLimit.TrustedProxies, next.RateLimit.TrustedProxies) {
		changed("ratelimit")
	}
	if cur.Metrics != next.Metrics {
		changed("metrics")
	}
	if cur.Server.AdminSocket != next.Server.AdminSocket || cur.Server.ShutdownTimeout != next.Server.ShutdownTimeout {
		changed("server")
	}
	if cur.Log.Format != next.Log.Format {
		changed("log.format")
	}
}

// OnHangup reloads on every SIGHUP until the returned function is called.
func (r *reloader) OnHangup() (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGHUP)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ch:
				r.logger.Info("received SIGHUP, reloading configuration")
				r.Reload()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(ch)
			close(done)
		})
	}
}
