package modem

import (
	"fmt"
	"strings"
)

// BytesToBits expands data MSB first.
func BytesToBits(data []byte) []bool {
	bits := make([]bool, 0, len(data)*8)
	for _, b := range data {
		set := BitSet8(b)
		for pos := 7; pos >= 0; pos-- {
			bits = append(bits, set.IsSet(pos))
		}
	}
	return bits
}

// BitsToBytes packs bits MSB first. len(bits) must be a multiple of 8.
func BitsToBytes(bits []bool) ([]byte, error) {
	if len(bits)%8 != 0 {
		return nil, fmt.Errorf("%w: %d bits is not a whole number of bytes", ErrConfiguration, len(bits))
	}
	out := make([]byte, len(bits)/8)
	for i := range out {
		var b BitSet8
		for j := 0; j < 8; j++ {
			if bits[i*8+j] {
				b.Set(7 - j)
			}
		}
		out[i] = b.ToByte()
	}
	return out, nil
}

// IndexOf returns the first index at or after from where pattern occurs in bits, or -1.
func IndexOf(bits, pattern []bool, from int) int {
	if len(pattern) == 0 {
		return -1
	}
outer:
	for i := max(0, from); i+len(pattern) <= len(bits); i++ {
		for j, p := range pattern {
			if bits[i+j] != p {
				continue outer
			}
		}
		return i
	}
	return -1
}

// BitString renders bits as '0' and '1' characters.
func BitString(bits []bool) string {
	var sb strings.Builder
	for _, bit := range bits {
		if bit {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

type BitSet8 byte

func (b *BitSet8) Set(pos int) {
	*b |= 1 << pos
}

func (b *BitSet8) IsSet(pos int) bool {
	return *b&(1<<pos) != 0
}

func (b BitSet8) ToByte() byte {
	return byte(b)
}
