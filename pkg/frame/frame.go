package frame

import (
	"encoding/binary"
	"fmt"

	"github.com/sigurn/crc16"
)

// CRC-16/CCITT-FALSE: poly 0x1021, init 0xFFFF, no reflection, no final xor.
var crcTable = crc16.MakeTable(crc16.CRC16_CCITT_FALSE)

func CRC16(data []byte) uint16 {
	return crc16.Checksum(data, crcTable)
}

// Build serializes header || payload || crc16(header || payload).
func Build(header Header, payload []byte) ([]byte, error) {
	if int(header.Length) != len(payload) {
		return nil, fmt.Errorf("%w: header says %d, payload has %d", ErrLengthMismatch, header.Length, len(payload))
	}
	out := make([]byte, 0, MinFrameLength+len(payload))
	out, _ = header.AppendBinary(out)
	out = append(out, payload...)
	return binary.BigEndian.AppendUint16(out, CRC16(out)), nil
}

// Parse validates a whole frame and returns its header and a copy of the payload.
func Parse(frame []byte) (Header, []byte, error) {
	if len(frame) < MinFrameLength {
		return Header{}, nil, fmt.Errorf("%w: %d bytes", ErrTooShort, len(frame))
	}
	header, err := ParseHeader(frame)
	if err != nil {
		return Header{}, nil, err
	}
	end := HeaderLength + int(header.Length)
	if len(frame) != end+CRCLength {
		return Header{}, nil, fmt.Errorf("%w: header says %d, frame carries %d", ErrLengthMismatch, header.Length, len(frame)-MinFrameLength)
	}
	expected := binary.BigEndian.Uint16(frame[end:])
	if actual := CRC16(frame[:end]); actual != expected {
		return Header{}, nil, fmt.Errorf("%w: expected %#04x, got %#04x", ErrCRCMismatch, expected, actual)
	}
	payload := make([]byte, header.Length)
	copy(payload, frame[HeaderLength:end])
	return header, payload, nil
}

// Size returns the total frame length for a header.
func Size(header Header) int {
	return MinFrameLength + int(header.Length)
}
