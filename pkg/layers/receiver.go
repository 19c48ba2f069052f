package layers

import (
	"log"

	"Audiomodem/pkg/css"
	"Audiomodem/pkg/frame"
	"Audiomodem/pkg/modem"
)

// Receiver turns a sample stream into frames. Flush marks the end of the
// stream.
type Receiver interface {
	Ingest(samples []float64) []frame.Decoded
	Flush() []frame.Decoded
}

var _ Receiver = (*modem.Demodulator)(nil)

// CSSReceiver collects one aligned CSS transmission and decodes it when the
// stream ends. CSS frames are not searched for inside a stream.
type CSSReceiver struct {
	Decoder    *css.Decoder
	Params     css.ChirpParams
	Options    css.DecodeOptions
	MaxSamples int // older samples are discarded beyond this, 0 keeps everything

	buffer []float64
}

func NewCSSReceiver(p css.ChirpParams, opts css.DecodeOptions) *CSSReceiver {
	return &CSSReceiver{Decoder: css.NewDecoder(), Params: p, Options: opts}
}

func (r *CSSReceiver) Ingest(samples []float64) []frame.Decoded {
	r.buffer = append(r.buffer, samples...)
	if r.MaxSamples > 0 && len(r.buffer) > r.MaxSamples {
		r.buffer = r.buffer[len(r.buffer)-r.MaxSamples:]
	}
	return nil
}

func (r *CSSReceiver) Flush() []frame.Decoded {
	samples := r.buffer
	r.buffer = nil
	if len(samples) == 0 {
		return nil
	}
	decoded, err := r.Decoder.Decode(samples, r.Params, r.Options)
	if err != nil {
		log.Printf("[CSS] no frame in %d samples: %v", len(samples), err)
		return nil
	}
	return []frame.Decoded{decoded}
}
