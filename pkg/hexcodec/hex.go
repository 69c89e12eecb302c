// Package hexcodec converts ASCII hex strings to and from raw bytes.
//
// Decode is deliberately lenient: characters outside [0-9a-fA-F] decode as
// nibble 0, which is how previously issued PTA tokens have always been read.
// DecodeStrict rejects them instead. Key and IV configuration values go
// through ValidateKey, which is always strict.
package hexcodec

import (
	"errors"
	"fmt"
)

// KeyHexLen is the length of a hex-encoded 16-byte key or IV.
const KeyHexLen = 32

var (
	// ErrEmpty is returned when there is nothing to decode.
	ErrEmpty = errors.New("hexcodec: empty input")

	// ErrOddLength is returned when the input has an odd number of characters.
	ErrOddLength = errors.New("hexcodec: odd length")

	// ErrInvalidChar is returned by DecodeStrict for a non-hex character.
	ErrInvalidChar = errors.New("hexcodec: invalid character")
)

const hextable = "0123456789abcdef"

// nibble returns the value of a hex digit and whether c was one.
func nibble(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// Decode decodes src, mapping unknown characters to 0.
func Decode(src []byte) ([]byte, error) {
	return decode(src, false)
}

// DecodeString is Decode for string input.
func DecodeString(s string) ([]byte, error) {
	return decode([]byte(s), false)
}

// DecodeStrict decodes src and fails on the first non-hex character.
func DecodeStrict(src []byte) ([]byte, error) {
	return decode(src, true)
}

func decode(src []byte, strict bool) ([]byte, error) {
	if len(src) == 0 {
		return nil, ErrEmpty
	}
	if len(src)%2 != 0 {
		return nil, ErrOddLength
	}

	dst := make([]byte, len(src)/2)
	for i := range dst {
		hi, ok1 := nibble(src[2*i])
		lo, ok2 := nibble(src[2*i+1])
		if strict && !(ok1 && ok2) {
			return nil, fmt.Errorf("%w at offset %d", ErrInvalidChar, 2*i)
		}
		dst[i] = hi<<4 | lo
	}
	return dst, nil
}

// Encode returns the lowercase hex encoding of src.
func Encode(src []byte) string {
	dst := make([]byte, len(src)*2)
	for i, b := range src {
		dst[2*i] = hextable[b>>4]
		dst[2*i+1] = hextable[b&0x0f]
	}
	return string(dst)
}

// ValidateKey checks that s is a 32 character hex string.
func ValidateKey(s string) error {
	if len(s) != KeyHexLen {
		return fmt.Errorf("hexcodec: invalid length %d, want %d", len(s), KeyHexLen)
	}
	for i := 0; i < len(s); i++ {
		if _, ok := nibble(s[i]); !ok {
			return fmt.Errorf("%w at offset %d", ErrInvalidChar, i)
		}
	}
	return nil
}

// DecodeKey validates s with ValidateKey and returns the 16 raw bytes.
func DecodeKey(s string) ([16]byte, error) {
	var out [16]byte
	if err := ValidateKey(s); err != nil {
		return out, err
	}
	b, err := DecodeStrict([]byte(s))
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	return out, nil
}
