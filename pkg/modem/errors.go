package modem

import "errors"

var (
	ErrConfiguration  = errors.New("invalid configuration")
	ErrNotImplemented = errors.New("not implemented")
	ErrNoFrame        = errors.New("no frame decoded")
)
