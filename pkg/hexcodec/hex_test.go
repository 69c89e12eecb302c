package hexcodec

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []byte
		wantErr error
	}{
		{"lowercase", "00ff10ab", []byte{0x00, 0xff, 0x10, 0xab}, nil},
		{"uppercase", "ABCDEF", []byte{0xab, 0xcd, 0xef}, nil},
		{"mixed case", "aBcD", []byte{0xab, 0xcd}, nil},
		{"odd length", "abc", nil, ErrOddLength},
		{"empty", "", nil, ErrEmpty},
		{"invalid chars decode as zero", "zz1g", []byte{0x00, 0x10}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeString(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("DecodeString(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeString(%q) unexpected error: %v", tt.input, err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("DecodeString(%q) = %x, want %x", tt.input, got, tt.want)
			}
		})
	}
}

func TestDecodeStrict(t *testing.T) {
	if _, err := DecodeStrict([]byte("zz")); !errors.Is(err, ErrInvalidChar) {
		t.Errorf("DecodeStrict(zz) error = %v, want ErrInvalidChar", err)
	}
	if _, err := DecodeStrict([]byte("a")); !errors.Is(err, ErrOddLength) {
		t.Errorf("DecodeStrict(a) error = %v, want ErrOddLength", err)
	}

	got, err := DecodeStrict([]byte("DEADbeef"))
	if err != nil {
		t.Fatalf("DecodeStrict() error = %v", err)
	}
	if !bytes.Equal(got, []byte{0xde, 0xad, 0xbe, 0xef}) {
		t.Errorf("DecodeStrict() = %x", got)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, n := range []int{1, 2, 15, 16, 17, 255, 1024} {
		src := make([]byte, n)
		if _, err := rand.Read(src); err != nil {
			t.Fatal(err)
		}

		enc := Encode(src)
		if len(enc) != 2*n {
			t.Fatalf("Encode() length = %d, want %d", len(enc), 2*n)
		}

		dec, err := DecodeString(enc)
		if err != nil {
			t.Fatalf("DecodeString() error = %v", err)
		}
		if !bytes.Equal(dec, src) {
			t.Errorf("round trip mismatch for %d bytes", n)
		}
	}
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid lowercase", "00112233445566778899aabbccddeeff", false},
		{"valid uppercase", "00112233445566778899AABBCCDDEEFF", false},
		{"too short", "0011223344556677", true},
		{"too long", "00112233445566778899aabbccddeeff00", true},
		{"invalid char", "00112233445566778899aabbccddeefg", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateKey(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestDecodeKey(t *testing.T) {
	key, err := DecodeKey("000102030405060708090a0b0c0d0e0f")
	if err != nil {
		t.Fatalf("DecodeKey() error = %v", err)
	}
	for i, b := range key {
		if int(b) != i {
			t.Fatalf("key[%d] = %d, want %d", i, b, i)
		}
	}

	if _, err := DecodeKey("not-a-key"); err == nil {
		t.Error("DecodeKey() expected error for invalid key")
	}
}
