package frame

import "errors"

var (
	ErrTooShort       = errors.New("frame too short")
	ErrLengthMismatch = errors.New("length field does not match payload")
	ErrCRCMismatch    = errors.New("crc mismatch")
	ErrInvalidHeader  = errors.New("invalid header")
)
