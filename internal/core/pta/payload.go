package pta

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
)

// Plaintext layout:
//
//	checksum(4, big-endian CRC-32) || deadline(8) || url(var) || pad(n bytes of value n)
const (
	checksumSize = 4
	deadlineSize = 8
	headerSize   = checksumSize + deadlineSize

	// MinPlaintextSize is the header plus at least one url/padding byte.
	MinPlaintextSize = headerSize + 1

	// MaxPadding is the cipher block size; padding values live in [1, MaxPadding].
	MaxPadding = 16

	// MaxURLLength bounds the embedded URL and the checksum working buffer.
	MaxURLLength = 8192
)

// Integrity errors. All of them mean "this key did not produce this token".
var (
	ErrTooShort         = errors.New("pta: plaintext too short")
	ErrBadPadding       = errors.New("pta: padding value out of range")
	ErrBadLength        = errors.New("pta: url length out of range")
	ErrChecksumMismatch = errors.New("pta: checksum mismatch")
)

// Payload is a decrypted token that passed the integrity check.
// It aliases the plaintext buffer it was parsed from.
type Payload struct {
	deadline [deadlineSize]byte
	url      []byte
	padding  byte
}

// ParsePayload interprets plaintext and verifies its checksum.
func ParsePayload(plaintext []byte) (*Payload, error) {
	n := len(plaintext)
	if n < MinPlaintextSize {
		return nil, ErrTooShort
	}

	pad := plaintext[n-1]
	if !validPadding(pad) {
		return nil, ErrBadPadding
	}

	urlLen := n - headerSize - int(pad)
	if urlLen < 0 || urlLen > MaxURLLength {
		return nil, ErrBadLength
	}

	signed := plaintext[checksumSize : headerSize+urlLen]
	if crc32.ChecksumIEEE(signed) != binary.BigEndian.Uint32(plaintext[:checksumSize]) {
		return nil, ErrChecksumMismatch
	}

	p := &Payload{
		url:     plaintext[headerSize : headerSize+urlLen],
		padding: pad,
	}
	copy(p.deadline[:], plaintext[checksumSize:headerSize])
	return p, nil
}

// URL returns the embedded URL bytes as covered by the checksum.
func (p *Payload) URL() []byte {
	return p.url
}

// Pattern returns the URL pattern as the matcher sees it: the URL bytes up
// to the first byte equal to the padding value, which acts as a sentinel.
func (p *Payload) Pattern() []byte {
	for i, c := range p.url {
		if c == p.padding {
			return p.url[:i]
		}
	}
	return p.url
}

// Padding returns the padding value, which doubles as the URL sentinel.
func (p *Payload) Padding() byte {
	return p.padding
}

func validPadding(v byte) bool {
	return v >= 1 && v <= MaxPadding
}
