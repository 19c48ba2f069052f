package wavfile

import "errors"

var (
	ErrNotWavFile        = errors.New("not a valid wav file")
	ErrUnsupportedFormat = errors.New("unsupported wav format")
	ErrSampleRate        = errors.New("wav sample rate does not match")
)
