package pta

import (
	"fmt"

	"github.com/yndnr/ptagate/internal/core/domain"
	"github.com/yndnr/ptagate/pkg/crypto/blockcbc"
	"github.com/yndnr/ptagate/pkg/hexcodec"
)

// KeySlot identifies which configured key/IV pair opened a token.
type KeySlot int

const (
	// NoSlot means no key pair produced a valid payload.
	NoSlot KeySlot = iota - 1
	SlotPrimary
	SlotSecondary
)

// String returns the slot name used in logs and metric labels.
func (s KeySlot) String() string {
	switch s {
	case SlotPrimary:
		return "primary"
	case SlotSecondary:
		return "secondary"
	default:
		return "none"
	}
}

// KeyPair is a key and IV as they appear in configuration: 32 hex
// characters each.
type KeyPair struct {
	Key string
	IV  string
}

// IsZero reports whether neither half of the pair is set.
func (p KeyPair) IsZero() bool {
	return p.Key == "" && p.IV == ""
}

type keyEntry struct {
	slot   KeySlot
	cipher *blockcbc.Cipher
}

// Keyring is the immutable, ordered set of key pairs a Validator tries.
// The primary pair is always first.
type Keyring struct {
	entries []keyEntry
}

// NewKeyring builds a Keyring from hex configuration. The primary pair is
// required; the secondary pair is optional but must be complete if present.
func NewKeyring(primary, secondary KeyPair) (*Keyring, error) {
	kr := &Keyring{}

	if err := kr.add(SlotPrimary, primary); err != nil {
		return nil, err
	}
	if !secondary.IsZero() {
		if err := kr.add(SlotSecondary, secondary); err != nil {
			return nil, err
		}
	}
	return kr, nil
}

func (kr *Keyring) add(slot KeySlot, p KeyPair) error {
	key, err := hexcodec.DecodeKey(p.Key)
	if err != nil {
		return domain.ErrConfigInvalid.WithDetails(fmt.Sprintf("key_%s", slot)).WithCause(err)
	}
	iv, err := hexcodec.DecodeKey(p.IV)
	if err != nil {
		return domain.ErrConfigInvalid.WithDetails(fmt.Sprintf("iv_%s", slot)).WithCause(err)
	}

	c, err := blockcbc.New(key[:], iv[:])
	if err != nil {
		return domain.ErrConfigInvalid.WithDetails(slot.String()).WithCause(err)
	}

	kr.entries = append(kr.entries, keyEntry{slot: slot, cipher: c})
	return nil
}

// Len returns the number of configured key pairs.
func (kr *Keyring) Len() int {
	return len(kr.entries)
}

// Slots returns the configured slots in trial order.
func (kr *Keyring) Slots() []KeySlot {
	slots := make([]KeySlot, len(kr.entries))
	for i, e := range kr.entries {
		slots[i] = e.slot
	}
	return slots
}
