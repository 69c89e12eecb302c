// Package tlsroots builds the gate's TLS configurations: the trust pool used
// towards an https upstream and the listener certificate, which is reloaded
// when its files change.
package tlsroots

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

// ErrNoCertsFound is returned when PEM data holds no certificate.
var ErrNoCertsFound = errors.New("tlsroots: no certificates found in PEM data")

// Pool manages a pool of trusted root certificates.
type Pool struct {
	certPool *x509.CertPool
}

// NewPool creates a pool seeded with the system roots, or an empty pool
// where the system roots are unavailable.
func NewPool() *Pool {
	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}
	return &Pool{certPool: pool}
}

// NewEmptyPool creates a pool without system roots.
func NewEmptyPool() *Pool {
	return &Pool{certPool: x509.NewCertPool()}
}

// AddCertFile adds every certificate in a PEM file.
func (p *Pool) AddCertFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("tlsroots: read cert file %s: %w", path, err)
	}
	if err := p.AddCertPEM(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// AddCertPEM adds certificates from PEM data. Blocks of other types are
// skipped.
func (p *Pool) AddCertPEM(pemData []byte) error {
	var added int
	for len(pemData) > 0 {
		var block *pem.Block
		block, pemData = pem.Decode(pemData)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}

		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return fmt.Errorf("tlsroots: parse certificate: %w", err)
		}
		p.certPool.AddCert(cert)
		added++
	}

	if added == 0 {
		return ErrNoCertsFound
	}
	return nil
}

// Pool returns the underlying x509.CertPool.
func (p *Pool) Pool() *x509.CertPool {
	return p.certPool
}

// ClientConfig returns a client config trusting the pool.
func (p *Pool) ClientConfig() *tls.Config {
	return &tls.Config{
		RootCAs:    p.certPool,
		MinVersion: tls.VersionTLS12,
	}
}

// UpstreamConfig returns the client config for an https upstream: the
// system roots plus the certificates in caFile. It returns nil for an empty
// caFile so the transport keeps its defaults.
func UpstreamConfig(caFile string) (*tls.Config, error) {
	if caFile == "" {
		return nil, nil
	}
	pool := NewPool()
	if err := pool.AddCertFile(caFile); err != nil {
		return nil, err
	}
	return pool.ClientConfig(), nil
}
