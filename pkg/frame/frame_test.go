package frame

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

func TestCRC16CheckValue(t *testing.T) {
	t.Parallel()

	// CRC-16/CCITT-FALSE check value
	if got := CRC16([]byte("123456789")); got != 0x29B1 {
		t.Errorf("Expected 0x29b1, but got %#04x", got)
	}
}

func TestHeaderBinary(t *testing.T) {
	t.Parallel()

	h := Header{Version: 1, RateCode: 2, Flags: FlagFEC, Length: 0x0102}
	data, err := h.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, []byte{1, 2, 1, 1, 2}) {
		t.Errorf("Expected 0102010102, but got %x", data)
	}

	var back Header
	if err := back.UnmarshalBinary(data); err != nil {
		t.Fatal(err)
	}
	if back != h || !back.HasFEC() {
		t.Errorf("Expected %v, but got %v", h, back)
	}

	if _, err := ParseHeader(data[:4]); !errors.Is(err, ErrInvalidHeader) {
		t.Errorf("Expected ErrInvalidHeader, but got %v", err)
	}
}

func TestBuildParse(t *testing.T) {
	t.Parallel()

	payloads := [][]byte{
		{},
		[]byte("Hi"),
		[]byte("héllo, wörld"),
		bytes.Repeat([]byte{0xA5}, 512),
	}
	for _, payload := range payloads {
		h := NewHeader(1, len(payload))
		built, err := Build(h, payload)
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		if len(built) != Size(h) {
			t.Errorf("Expected %d bytes, but got %d", Size(h), len(built))
		}

		header, got, err := Parse(built)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if header != h {
			t.Errorf("Expected header %v, but got %v", h, header)
		}
		if !reflect.DeepEqual(got, payload) {
			t.Errorf("Expected payload %q, but got %q", payload, got)
		}
	}
}

func TestBuildLengthMismatch(t *testing.T) {
	t.Parallel()

	if _, err := Build(NewHeader(0, 3), []byte("Hi")); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("Expected ErrLengthMismatch, but got %v", err)
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	built, err := Build(NewHeader(2, 2), []byte("Hi"))
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := Parse(built[:6]); !errors.Is(err, ErrTooShort) {
		t.Errorf("Expected ErrTooShort, but got %v", err)
	}
	if _, _, err := Parse(append(bytes.Clone(built), 0)); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("Expected ErrLengthMismatch for trailing byte, but got %v", err)
	}
	if _, _, err := Parse(built[:len(built)-1]); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("Expected ErrLengthMismatch for missing byte, but got %v", err)
	}

	corrupted := bytes.Clone(built)
	corrupted[HeaderLength] ^= 0xFF
	if _, _, err := Parse(corrupted); !errors.Is(err, ErrCRCMismatch) {
		t.Errorf("Expected ErrCRCMismatch, but got %v", err)
	}
}

func TestParseDetectsEverySingleBitFlip(t *testing.T) {
	t.Parallel()

	payload := []byte("flip me")
	built, err := Build(NewHeader(0, len(payload)), payload)
	if err != nil {
		t.Fatal(err)
	}
	for i := HeaderLength; i < HeaderLength+len(payload); i++ {
		for bit := 0; bit < 8; bit++ {
			corrupted := bytes.Clone(built)
			corrupted[i] ^= 1 << bit
			if _, _, err := Parse(corrupted); !errors.Is(err, ErrCRCMismatch) {
				t.Errorf("byte %d bit %d: expected ErrCRCMismatch, but got %v", i, bit, err)
			}
		}
	}
}
