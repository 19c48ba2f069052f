package css

import "errors"

var ErrInsufficientSymbols = errors.New("insufficient symbols")
