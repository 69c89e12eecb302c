package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/yndnr/ptagate/internal/core/pta"
	"github.com/yndnr/ptagate/internal/infra/buildinfo"
	"github.com/yndnr/ptagate/internal/infra/confloader"
	"github.com/yndnr/ptagate/internal/infra/shutdown"
	"github.com/yndnr/ptagate/internal/infra/tlsroots"
	"github.com/yndnr/ptagate/internal/server/config"
	"github.com/yndnr/ptagate/internal/server/httpserver"
	"github.com/yndnr/ptagate/internal/server/localserver"
	"github.com/yndnr/ptagate/internal/server/upstream"
	"github.com/yndnr/ptagate/internal/telemetry/logger"
	"github.com/yndnr/ptagate/internal/telemetry/metric"
)

// limiterSweepInterval is how often idle rate limiter buckets are dropped.
const limiterSweepInterval = time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", os.Getenv("PTAGATE_CONFIG"), "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("ptagate " + buildinfo.String())
		return nil
	}

	cfg, err := config.Load(*configFile, nil)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, slogLogger, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	info := buildinfo.Get()
	log.Info("starting ptagate",
		"version", info.Version,
		"commit", info.Commit,
		"config", *configFile)

	metrics := metric.NewRegistry()

	validator, err := cfg.PTA.NewValidator(pta.WithObserver(metrics))
	if err != nil {
		return fmt.Errorf("init validator: %w", err)
	}
	store := pta.NewStore(validator)
	metrics.MustRegister(metric.NewCollector(store))

	locations, err := httpserver.NewLocations(cfg.PTA.Locations)
	if err != nil {
		return fmt.Errorf("init locations: %w", err)
	}
	guard := httpserver.NewGuard(store, locations, metrics, slogLogger)

	proxy, err := upstream.New(cfg.Upstream, metrics, slogLogger)
	if err != nil {
		return fmt.Errorf("init upstream: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	proxies, err := httpserver.ParseTrustedProxies(cfg.RateLimit.TrustedProxies)
	if err != nil {
		return fmt.Errorf("init trusted proxies: %w", err)
	}

	var limiter *httpserver.ClientLimiter
	if rps := cfg.RateLimit.RequestsPerSecond; rps > 0 {
		limiter = httpserver.NewClientLimiter(rps, cfg.RateLimit.Burst)
		go limiter.RunSweeper(ctx, limiterSweepInterval, httpserver.DefaultLimiterIdle)
	}

	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Store:          store,
		Guard:          guard,
		Upstream:       proxy,
		Metrics:        metrics,
		MetricsEnabled: cfg.Metrics.Enabled,
		Limiter:        limiter,
		TrustedProxies: proxies,
		Logger:         slogLogger,
	})

	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(slogLogger))
	if err != nil {
		return fmt.Errorf("init file watcher: %w", err)
	}
	defer watcher.Stop()

	httpCfg := cfg.Server.HTTP
	var tlsConfig *tls.Config
	if httpCfg.TLSCertFile != "" {
		cert, err := tlsroots.LoadCertificate(httpCfg.TLSCertFile, httpCfg.TLSKeyFile, tlsroots.WithLogger(slogLogger))
		if err != nil {
			return fmt.Errorf("load TLS certificate: %w", err)
		}
		if err := cert.Watch(watcher); err != nil {
			return fmt.Errorf("watch TLS certificate: %w", err)
		}
		tlsConfig = cert.ServerConfig()
	}

	rl := &reloader{
		path:    *configFile,
		current: cfg,
		store:   store,
		guard:   guard,
		metrics: metrics,
		logger:  slogLogger,
	}
	if *configFile != "" {
		if err := watcher.Watch(*configFile); err != nil {
			return fmt.Errorf("watch config: %w", err)
		}
		watched := filepath.Clean(*configFile)
		watcher.OnChange(func(path string) {
			if path == watched {
				rl.Reload()
			}
		})
	}
	watcher.StartAsync()
	stopHUP := rl.OnHangup()

	ln, err := net.Listen("tcp", httpCfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", httpCfg.Addr, err)
	}
	server := httpserver.New(httpCfg.Addr, router, slogLogger)

	shutdownHandler := shutdown.NewHandler(cfg.Server.ShutdownTimeout, shutdown.WithLogger(slogLogger))

	// Hooks run in reverse order of registration.
	shutdownHandler.OnShutdown("background tasks", func(context.Context) error {
		stopHUP()
		cancel()
		return watcher.Stop()
	})

	if path := cfg.Server.AdminSocket; path != "" {
		started := time.Now()
		admin := localserver.New(path, localserver.NewHandler(localserver.Actions{
			Status: func() any {
				return newGateStatus(started, rl, store, limiter)
			},
			Reload:   rl.Reload,
			Shutdown: shutdownHandler.Trigger,
		}), slogLogger)
		if err := admin.Listen(); err != nil {
			return fmt.Errorf("admin socket: %w", err)
		}

		shutdownHandler.OnShutdown("admin socket", admin.Shutdown)
		go func() {
			log.Info("admin socket listening", "path", path)
			if err := admin.Serve(); err != nil {
				log.Error("admin socket error", "error", err)
			}
		}()
	}

	shutdownHandler.OnShutdown("http server", func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return server.Shutdown(ctx)
	})

	go func() {
		log.Info("HTTP server listening",
			"addr", ln.Addr().String(),
			"tls", tlsConfig != nil,
			"upstream", proxy.Target().Redacted())

		if err := server.Serve(ln, tlsConfig); err != nil {
			log.Error("HTTP server error", "error", err)
			shutdownHandler.Trigger("http server failed")
		}
	}()

	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("ptagate stopped gracefully")
	return nil
}

// initLogger initializes the structured logger and makes it the default.
func initLogger(cfg *config.ServerConfig) (logger.Logger, *slog.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, nil, err
	}
	logger.SetDefault(log)
	return log, logger.Slog(log), nil
}
