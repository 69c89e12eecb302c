// Package blockcbc provides AES-128-CBC with padding disabled.
//
// Padding is the caller's business: Decrypt returns every plaintext byte,
// including whatever the issuer appended to reach a block boundary.
package blockcbc

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
)

const (
	// KeySize is the AES-128 key size in bytes.
	KeySize = 16

	// BlockSize is the cipher block size (and IV size) in bytes.
	BlockSize = aes.BlockSize
)

var (
	// ErrInvalidLength indicates the input is empty or not block aligned.
	ErrInvalidLength = errors.New("blockcbc: input length is not a positive multiple of the block size")

	// ErrInitFailed indicates the cipher could not be set up (bad key or IV size).
	ErrInitFailed = errors.New("blockcbc: cipher initialization failed")
)

// Cipher holds an expanded AES key and the IV it is used with.
// A Cipher is safe for concurrent use; every call builds its own CBC state.
type Cipher struct {
	block cipher.Block
	iv    [BlockSize]byte
}

// New creates a Cipher. Key and IV must both be 16 bytes.
func New(key, iv []byte) (*Cipher, error) {
	if len(key) != KeySize || len(iv) != BlockSize {
		return nil, ErrInitFailed
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		// never include the key in the error
		return nil, ErrInitFailed
	}

	c := &Cipher{block: block}
	copy(c.iv[:], iv)
	return c, nil
}

// Decrypt decrypts ciphertext into a freshly allocated buffer.
func (c *Cipher) Decrypt(ciphertext []byte) ([]byte, error) {
	if !aligned(ciphertext) {
		return nil, ErrInvalidLength
	}

	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(c.block, c.iv[:]).CryptBlocks(out, ciphertext)
	return out, nil
}

// Encrypt encrypts block-aligned plaintext. The caller pads.
func (c *Cipher) Encrypt(plaintext []byte) ([]byte, error) {
	if !aligned(plaintext) {
		return nil, ErrInvalidLength
	}

	out := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(c.block, c.iv[:]).CryptBlocks(out, plaintext)
	return out, nil
}

// Decrypt is a one-shot helper around New and Cipher.Decrypt.
func Decrypt(ciphertext, key, iv []byte) ([]byte, error) {
	if !aligned(ciphertext) {
		return nil, ErrInvalidLength
	}
	c, err := New(key, iv)
	if err != nil {
		return nil, err
	}
	return c.Decrypt(ciphertext)
}

func aligned(b []byte) bool {
	return len(b) > 0 && len(b)%BlockSize == 0
}
