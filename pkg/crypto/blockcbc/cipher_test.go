package blockcbc

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"testing"
)

// NIST SP 800-38A F.2.1 (CBC-AES128.Encrypt), first two blocks.
const (
	nistKey        = "2b7e151628aed2a6abf7158809cf4f3c"
	nistIV         = "000102030405060708090a0b0c0d0e0f"
	nistPlaintext  = "6bc1bee22e409f96e93d7e117393172aae2d8a571e03ac9c9eb76fac45af8e51"
	nistCiphertext = "7649abac8119b246cee98e9b12e9197d5086cb9b507219ee95db113a917678b2"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestDecrypt_KnownVector(t *testing.T) {
	key := mustHex(t, nistKey)
	iv := mustHex(t, nistIV)

	got, err := Decrypt(mustHex(t, nistCiphertext), key, iv)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if !bytes.Equal(got, mustHex(t, nistPlaintext)) {
		t.Errorf("Decrypt() = %x, want %s", got, nistPlaintext)
	}
}

func TestEncrypt_KnownVector(t *testing.T) {
	c, err := New(mustHex(t, nistKey), mustHex(t, nistIV))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got, err := c.Encrypt(mustHex(t, nistPlaintext))
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if !bytes.Equal(got, mustHex(t, nistCiphertext)) {
		t.Errorf("Encrypt() = %x, want %s", got, nistCiphertext)
	}
}

func TestDecrypt_InvalidLength(t *testing.T) {
	key := mustHex(t, nistKey)
	iv := mustHex(t, nistIV)

	for _, n := range []int{0, 1, 15, 17, 31} {
		_, err := Decrypt(make([]byte, n), key, iv)
		if !errors.Is(err, ErrInvalidLength) {
			t.Errorf("Decrypt(len=%d) error = %v, want ErrInvalidLength", n, err)
		}
	}
}

func TestNew_InitFailed(t *testing.T) {
	key := []byte("0123456789abcdef")
	tests := []struct {
		name string
		key  []byte
		iv   []byte
	}{
		{"short key", key[:8], key},
		{"aes-256 key rejected", append(append([]byte{}, key...), key...), key},
		{"short iv", key, key[:4]},
		{"nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.key, tt.iv)
			if !errors.Is(err, ErrInitFailed) {
				t.Fatalf("New() error = %v, want ErrInitFailed", err)
			}
			if strings.Contains(err.Error(), string(key)) {
				t.Error("error message leaks key material")
			}
		})
	}
}

func TestCipher_NoPaddingRemoved(t *testing.T) {
	c, err := New(make([]byte, 16), make([]byte, 16))
	if err != nil {
		t.Fatal(err)
	}

	plain := bytes.Repeat([]byte{0x10}, 32)
	ct, err := c.Encrypt(plain)
	if err != nil {
		t.Fatal(err)
	}

	out, err := c.Decrypt(ct)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(plain) {
		t.Errorf("Decrypt() returned %d bytes, want %d (padding must not be stripped)", len(out), len(plain))
	}
}

func TestCipher_Concurrent(t *testing.T) {
	c, err := New(mustHex(t, nistKey), mustHex(t, nistIV))
	if err != nil {
		t.Fatal(err)
	}
	ct := mustHex(t, nistCiphertext)
	want := mustHex(t, nistPlaintext)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				got, err := c.Decrypt(ct)
				if err != nil || !bytes.Equal(got, want) {
					t.Error("concurrent Decrypt() mismatch")
					return
				}
			}
		}()
	}
	wg.Wait()
}
