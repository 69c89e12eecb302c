package tlsroots

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/yndnr/ptagate/internal/infra/confloader"
)

// Certificate is the listener's key pair. Reload replaces it in place, so
// new handshakes pick up a renewed certificate without a restart.
type Certificate struct {
	certFile string
	keyFile  string
	current  atomic.Pointer[tls.Certificate]
	logger   *slog.Logger
}

// Option configures a Certificate.
type Option func(*Certificate)

// WithLogger sets the logger used for reload results.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Certificate) {
		c.logger = logger
	}
}

// LoadCertificate loads the key pair from certFile and keyFile.
func LoadCertificate(certFile, keyFile string, opts ...Option) (*Certificate, error) {
	c := &Certificate{
		certFile: filepath.Clean(certFile),
		keyFile:  filepath.Clean(keyFile),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload reads both files again. On failure the previous pair stays in use.
func (c *Certificate) Reload() error {
	cert, err := tls.LoadX509KeyPair(c.certFile, c.keyFile)
	if err != nil {
		return fmt.Errorf("tlsroots: load key pair: %w", err)
	}
	c.current.Store(&cert)
	return nil
}

// GetCertificate implements tls.Config.GetCertificate.
func (c *Certificate) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return c.current.Load(), nil
}

// ServerConfig returns a listener config serving the current pair.
func (c *Certificate) ServerConfig() *tls.Config {
	return &tls.Config{
		GetCertificate: c.GetCertificate,
		MinVersion:     tls.VersionTLS12,
	}
}

// Watch reloads the pair whenever w reports a change to either file.
// Writes that leave the pair inconsistent, such as a new certificate
// before its key, are logged and retried on the next change.
func (c *Certificate) Watch(w *confloader.Watcher) error {
	for _, f := range []string{c.certFile, c.keyFile} {
		if err := w.Watch(f); err != nil {
			return err
		}
	}

	w.OnChange(func(path string) {
		if path != c.certFile && path != c.keyFile {
			return
		}
		if err := c.Reload(); err != nil {
			c.logger.Error("certificate reload failed, keeping current certificate",
				"cert_file", c.certFile,
				"error", err,
			)
			return
		}
		c.logger.Info("certificate reloaded", "cert_file", c.certFile)
	})
	return nil
}
