// Package config defines the gate configuration structure.
package config

import (
	"fmt"

	"github.com/yndnr/ptagate/internal/core/pta"
)

// Primary returns the primary key pair.
func (s *PTASection) Primary() pta.KeyPair {
	return pta.KeyPair{Key: s.KeyPrimary, IV: s.IVPrimary}
}

// Secondary returns the secondary key pair, which may be zero.
func (s *PTASection) Secondary() pta.KeyPair {
	return pta.KeyPair{Key: s.KeySecondary, IV: s.IVSecondary}
}

// NewValidator builds a validator from the section.
func (s *PTASection) NewValidator(opts ...pta.Option) (*pta.Validator, error) {
	keys, err := pta.NewKeyring(s.Primary(), s.Secondary())
	if err != nil {
		return nil, fmt.Errorf("build keyring: %w", err)
	}

	opts = append([]pta.Option{pta.WithStrictHex(s.StrictHex)}, opts...)
	return pta.NewValidator(keys, opts...)
}
