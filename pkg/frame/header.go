package frame

import (
	"encoding/binary"
	"fmt"
)

// HeaderLength is the size of a serialized Header in bytes.
const HeaderLength = 5

// CRCLength is the size of the trailing checksum in bytes.
const CRCLength = 2

// MinFrameLength is the size of a frame with an empty payload.
const MinFrameLength = HeaderLength + CRCLength

const (
	Version uint8 = 1

	FlagFEC uint8 = 0x01
)

// Header precedes every payload on the wire. Length is big-endian.
type Header struct {
	Version  uint8
	RateCode uint8
	Flags    uint8
	Length   uint16
}

func NewHeader(rateCode uint8, payloadLength int) Header {
	return Header{
		Version:  Version,
		RateCode: rateCode,
		Length:   uint16(payloadLength),
	}
}

func (h Header) HasFEC() bool {
	return h.Flags&FlagFEC != 0
}

func (h Header) MarshalBinary() ([]byte, error) {
	return h.AppendBinary(make([]byte, 0, HeaderLength))
}

func (h Header) AppendBinary(b []byte) ([]byte, error) {
	b = append(b, h.Version, h.RateCode, h.Flags)
	return binary.BigEndian.AppendUint16(b, h.Length), nil
}

func (h *Header) UnmarshalBinary(data []byte) error {
	parsed, err := ParseHeader(data)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// ParseHeader reads the first HeaderLength bytes of data.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderLength {
		return Header{}, fmt.Errorf("%w: need %d bytes, got %d", ErrInvalidHeader, HeaderLength, len(data))
	}
	return Header{
		Version:  data[0],
		RateCode: data[1],
		Flags:    data[2],
		Length:   binary.BigEndian.Uint16(data[3:5]),
	}, nil
}

func (h Header) String() string {
	return fmt.Sprintf("Header{version=%d rate=%d flags=%#02x length=%d}", h.Version, h.RateCode, h.Flags, h.Length)
}
