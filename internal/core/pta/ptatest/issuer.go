// Package ptatest issues PTA tokens for tests.
//
// Production code never issues tokens; this package exists so tests in the
// core, the gate and the CLI can build real ciphertexts.
package ptatest

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/yndnr/ptagate/pkg/crypto/blockcbc"
	"github.com/yndnr/ptagate/pkg/hexcodec"
)

// Fixture key pairs, hex encoded.
const (
	PrimaryKey   = "000102030405060708090a0b0c0d0e0f"
	PrimaryIV    = "f0e0d0c0b0a090807060504030201000"
	SecondaryKey = "2b7e151628aed2a6abf7158809cf4f3c"
	SecondaryIV  = "000102030405060708090a0b0c0d0e0f"
)

// Issuer seals payloads under one key pair.
type Issuer struct {
	cipher *blockcbc.Cipher
}

// NewIssuer creates an Issuer from 32-character hex key and IV.
func NewIssuer(keyHex, ivHex string) (*Issuer, error) {
	key, err := hexcodec.DecodeKey(keyHex)
	if err != nil {
		return nil, err
	}
	iv, err := hexcodec.DecodeKey(ivHex)
	if err != nil {
		return nil, err
	}
	c, err := blockcbc.New(key[:], iv[:])
	if err != nil {
		return nil, err
	}
	return &Issuer{cipher: c}, nil
}

// MustIssuer is NewIssuer that panics on error.
func MustIssuer(keyHex, ivHex string) *Issuer {
	iss, err := NewIssuer(keyHex, ivHex)
	if err != nil {
		panic(err)
	}
	return iss
}

// Primary returns an Issuer for the primary fixture pair.
func Primary() *Issuer {
	return MustIssuer(PrimaryKey, PrimaryIV)
}

// Secondary returns an Issuer for the secondary fixture pair.
func Secondary() *Issuer {
	return MustIssuer(SecondaryKey, SecondaryIV)
}

// Seal returns the hex token for deadline and url.
func (iss *Issuer) Seal(deadline int64, url string) string {
	return iss.SealPlaintext(Plaintext(deadline, url))
}

// SealPlaintext encrypts an arbitrary block-aligned plaintext.
func (iss *Issuer) SealPlaintext(plaintext []byte) string {
	ct, err := iss.cipher.Encrypt(plaintext)
	if err != nil {
		panic(err)
	}
	return hexcodec.Encode(ct)
}

// Plaintext builds a well-formed payload: checksum, big-endian deadline,
// url and block padding.
func Plaintext(deadline int64, url string) []byte {
	body := len(url) + 12
	pad := blockcbc.BlockSize - body%blockcbc.BlockSize

	buf := make([]byte, body+pad)
	binary.BigEndian.PutUint64(buf[4:12], uint64(deadline))
	copy(buf[12:], url)
	for i := body; i < len(buf); i++ {
		buf[i] = byte(pad)
	}
	Resum(buf)
	return buf
}

// Resum recomputes the checksum of a plaintext in place after a test has
// edited it. It trusts the padding byte.
func Resum(plaintext []byte) {
	pad := int(plaintext[len(plaintext)-1])
	end := len(plaintext) - pad
	if end < 12 {
		end = 12
	}
	binary.BigEndian.PutUint32(plaintext[:4], crc32.ChecksumIEEE(plaintext[4:end]))
}
