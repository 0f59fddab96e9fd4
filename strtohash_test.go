package monosplit

import (
	"errors"
	"testing"
)

func TestDecodeHashHex(t *testing.T) {
	const hex = "0123456789abcdef0123456789abcdef01234567"

	h, err := DecodeHashHex(hex)
	if err != nil {
		t.Fatal(err)
	}
	if h.String() != hex {
		t.Fatalf("want %s, got %s", hex, h)
	}

	if _, err := DecodeHashHex("0123"); !errors.Is(err, ErrHexStringTooShort) {
		t.Fatalf("want ErrHexStringTooShort, got %v", err)
	}
	if _, err := DecodeHashHex("zz23456789abcdef0123456789abcdef01234567"); err == nil {
		t.Fatal("want error for invalid hex")
	}

	hashes, err := DecodeHashHexes(hex, hex)
	if err != nil {
		t.Fatal(err)
	}
	if len(hashes) != 2 || hashes[0] != h || hashes[1] != h {
		t.Fatalf("unexpected hashes: %v", hashes)
	}
}
