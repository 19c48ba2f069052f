package modem

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"Audiomodem/pkg/frame"
)

type State int

const (
	SearchingStart State = iota
	SearchingEnd
	AttemptDecode
)

func (s State) String() string {
	switch s {
	case SearchingStart:
		return "SearchingStart"
	case SearchingEnd:
		return "SearchingEnd"
	case AttemptDecode:
		return "AttemptDecode"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Demodulator is the streaming AFSK receiver. It buffers samples across calls
// to Ingest and extracts every frame bracketed by a start and an end tone.
// A Demodulator must not be used from several goroutines at once.
type Demodulator struct {
	AFSK    *AFSK
	Metrics *Metrics

	// TimingSteps is the number of sub-symbol offsets tried per baud.
	TimingSteps int

	startDetector ToneDetector
	endDetector   ToneDetector
	syncBits      []bool

	toneSamples int
	tailKeep    int

	buffer      []float64
	searchIndex int
	state       State
	lastErr     error

	// End tone scan progress for the start tone at pendingStart.
	pendingStart int
	endCursor    int
}

func NewDemodulator(sampleRate int) *Demodulator {
	toneSamples := ToneSamples(sampleRate)

	slowest := slices.Min(BaudRates)
	frameBits := (frame.HeaderLength + MaxPayloadLength + frame.CRCLength) * 8
	maxFrameSeconds := 2*ToneDurationMs/1000.0 + float64(frameBits)/float64(slowest)
	tailKeep := max(int(math.Round(maxFrameSeconds*float64(sampleRate))), 2*toneSamples)

	return &Demodulator{
		AFSK:          NewAFSK(sampleRate),
		TimingSteps:   8,
		startDetector: StartToneDetector(sampleRate),
		endDetector:   EndToneDetector(sampleRate),
		syncBits:      BytesToBits(SyncWord),
		toneSamples:   toneSamples,
		tailKeep:      tailKeep,
		pendingStart:  -1,
	}
}

func (d *Demodulator) State() State {
	return d.state
}

// Buffered returns the number of samples currently held.
func (d *Demodulator) Buffered() int {
	return len(d.buffer)
}

// Ingest appends samples and returns every frame that can now be decoded.
// An end tone that runs into the end of the buffer may still be growing; its
// frame is held back until more samples arrive, the last window is filled by
// the tone, or Flush is called.
func (d *Demodulator) Ingest(samples []float64) []frame.Decoded {
	if len(samples) == 0 {
		return nil
	}
	d.buffer = append(d.buffer, samples...)
	return d.extract(false)
}

// Flush treats the buffered samples as the end of the stream, returns any
// frame still pending, and resets the receiver.
func (d *Demodulator) Flush() []frame.Decoded {
	frames := d.extract(true)
	d.Reset()
	return frames
}

func (d *Demodulator) Reset() {
	d.buffer = nil
	d.searchIndex = 0
	d.pendingStart = -1
	d.endCursor = 0
	d.state = SearchingStart
	d.Metrics.buffered(0)
}

func (d *Demodulator) extract(final bool) []frame.Decoded {
	var frames []frame.Decoded
	n := d.toneSamples
	guard := max(1, n/8)

	defer func() {
		d.state = SearchingStart
		d.Metrics.buffered(len(d.buffer))
	}()

	for {
		if len(d.buffer) <= 2*n {
			d.keepRecentTail()
			break
		}

		d.state = SearchingStart
		start, _, _ := d.findTone(d.startDetector, d.searchIndex, false)
		if start < 0 {
			d.searchIndex = max(0, len(d.buffer)-n)
			d.keepRecentTail()
			break
		}
		startEnd := start + n
		if startEnd >= len(d.buffer) {
			d.holdPartial(start, startEnd)
			break
		}

		d.state = SearchingEnd
		from := startEnd
		if start == d.pendingStart {
			from = max(from, d.endCursor)
		}
		end, atLimit, resume := d.findTone(d.endDetector, from, true)
		if end < 0 && len(d.buffer)-start > d.tailKeep {
			debugLog("[Demodulation] no end tone within %d samples of start at %d\n", d.tailKeep, start)
			d.consume(startEnd)
			continue
		}
		if end < 0 || (atLimit && !final && !d.endToneComplete(end)) {
			d.holdPartial(start, resume)
			break
		}
		endEnd := end + n

		dataEnd := min(end+guard, len(d.buffer))
		if atLimit {
			dataEnd = len(d.buffer)
		}

		d.state = AttemptDecode
		debugLog("[Demodulation] start tone at %d, end tone at %d, data %d samples\n", start, end, dataEnd-startEnd)
		decoded, ok := d.parseSegment(d.buffer[startEnd:dataEnd], d.buffer[start:startEnd])
		d.Metrics.candidate(ok)
		if ok {
			d.Metrics.frameDecoded(decoded.Metadata.Baud)
			frames = append(frames, decoded)
		}
		d.consume(endEnd)
	}
	return frames
}

// findTone scans windows of toneSamples from index from with a stride of a
// tenth of a window. With refine set, the hit is pushed forward to the last
// contiguous detection and atLimit reports that it ran into the end of the
// buffer. resume is where a later scan over the same buffer should restart.
func (d *Demodulator) findTone(det ToneDetector, from int, refine bool) (index int, atLimit bool, resume int) {
	n := d.toneSamples
	step := max(1, n/10)
	limit := len(d.buffer) - n
	from = max(0, from)
	if limit < from {
		return -1, false, from
	}
	idx := from
	for ; idx <= limit; idx += step {
		if !det.Detect(d.buffer[idx : idx+n]) {
			continue
		}
		if !refine {
			return idx, idx == limit, idx
		}
		last := d.refineForward(det, idx, limit, step)
		return last, last == limit, idx
	}
	return -1, false, idx
}

// endToneComplete reports whether the window at index holds the end tone alone.
func (d *Demodulator) endToneComplete(index int) bool {
	return d.endDetector.Purity(d.buffer[index:index+d.toneSamples]) >= EndTonePurity
}

func (d *Demodulator) refineForward(det ToneDetector, idx, limit, baseStep int) int {
	n := d.toneSamples
	step := max(1, baseStep/4)
	last := idx
	for next := last + step; next <= limit; next += step {
		if !det.Detect(d.buffer[next : next+n]) {
			break
		}
		last = next
	}
	fineLimit := min(last+step, limit)
	for next := last + 1; next <= fineLimit; next++ {
		if !det.Detect(d.buffer[next : next+n]) {
			break
		}
		last = next
	}
	return last
}

// parseSegment tries every baud, every sub-symbol timing offset and every
// sync occurrence until one yields a CRC-valid frame.
func (d *Demodulator) parseSegment(data, startTone []float64) (frame.Decoded, bool) {
	syncLen := len(d.syncBits)
	for _, baud := range BaudRates {
		sps, err := d.AFSK.SamplesPerSymbol(baud)
		if err != nil {
			continue
		}
		for _, offset := range d.timingOffsets(sps) {
			if offset >= len(data) {
				break
			}
			bits, err := d.AFSK.Demodulate(data[offset:], baud)
			if err != nil || len(bits) < syncLen+frame.HeaderLength*8 {
				continue
			}
			for idx := IndexOf(bits, d.syncBits, 0); idx >= 0; idx = IndexOf(bits, d.syncBits, idx+1) {
				header, payload, err := d.parseBits(bits[idx+syncLen:])
				if err != nil {
					d.lastErr = err
					continue
				}
				rssi := estimateRSSI(startTone)
				debugLog("[Demodulation] frame at baud %d offset %d: %v\n", baud, offset, header)
				return frame.Decoded{
					Metadata: frame.Metadata{
						Timestamp: time.Now(),
						Baud:      baud,
						RSSI:      &rssi,
					},
					Header:  header,
					Payload: payload,
				}, true
			}
		}
	}
	return frame.Decoded{}, false
}

func (d *Demodulator) parseBits(bits []bool) (frame.Header, []byte, error) {
	usable := len(bits) - len(bits)%8
	if usable < frame.HeaderLength*8 {
		return frame.Header{}, nil, frame.ErrTooShort
	}
	data, err := BitsToBytes(bits[:usable])
	if err != nil {
		return frame.Header{}, nil, err
	}
	if len(data) < frame.MinFrameLength {
		return frame.Header{}, nil, frame.ErrTooShort
	}
	header, err := frame.ParseHeader(data)
	if err != nil {
		return frame.Header{}, nil, err
	}
	total := frame.Size(header)
	if len(data) < total {
		return frame.Header{}, nil, fmt.Errorf("%w: header wants %d bytes, segment holds %d", frame.ErrTooShort, total, len(data))
	}
	return frame.Parse(data[:total])
}

func (d *Demodulator) timingOffsets(sps int) []int {
	steps := max(1, d.TimingSteps)
	offsets := make([]int, 0, steps)
	for i := 0; i < steps; i++ {
		offset := i * sps / steps
		if i > 0 && offset == offsets[len(offsets)-1] {
			continue
		}
		offsets = append(offsets, offset)
	}
	return offsets
}

func (d *Demodulator) consume(count int) {
	if count <= 0 || len(d.buffer) == 0 {
		return
	}
	if count >= len(d.buffer) {
		d.buffer = nil
		d.searchIndex = 0
		d.pendingStart = -1
		d.endCursor = 0
		return
	}
	d.buffer = d.buffer[count:]
	d.searchIndex = max(0, d.searchIndex-count)
	d.endCursor = max(0, d.endCursor-count)
	if d.pendingStart -= count; d.pendingStart < 0 {
		d.pendingStart = -1
	}
}

// holdPartial waits for more samples: it keeps one tone window before start,
// resumes the next start search at start and the end search at endCursor.
func (d *Demodulator) holdPartial(start, endCursor int) {
	d.pendingStart = start
	d.endCursor = endCursor
	if drop := start - max(d.toneSamples, 1); drop > 0 {
		d.consume(drop)
		start -= drop
	}
	d.searchIndex = min(start, max(0, len(d.buffer)-d.toneSamples))
}

func (d *Demodulator) keepRecentTail() {
	if len(d.buffer) > d.tailKeep {
		d.consume(len(d.buffer) - d.tailKeep)
	}
}

// estimateRSSI is the RMS level of the start tone in dBFS.
func estimateRSSI(segment []float64) float64 {
	rms := 0.0
	if len(segment) > 0 {
		rms = math.Sqrt(energy(segment) / float64(len(segment)))
	}
	return 20 * math.Log10(max(rms, 1e-12))
}

// DecodeStream decodes every frame in a complete recording.
func DecodeStream(samples []float64) []frame.Decoded {
	d := NewDemodulator(SampleRate)
	return append(d.Ingest(samples), d.Flush()...)
}

// DecodeChunks feeds chunks through one receiver in order.
func DecodeChunks(chunks [][]float64) []frame.Decoded {
	d := NewDemodulator(SampleRate)
	var frames []frame.Decoded
	for _, chunk := range chunks {
		frames = append(frames, d.Ingest(chunk)...)
	}
	return append(frames, d.Flush()...)
}

// DecodeWaveform expects exactly one frame in samples. When none is found the
// last integrity failure seen is reported alongside ErrNoFrame.
func DecodeWaveform(samples []float64) (frame.Decoded, error) {
	d := NewDemodulator(SampleRate)
	frames := append(d.Ingest(samples), d.Flush()...)
	if len(frames) > 0 {
		return frames[0], nil
	}
	if d.lastErr != nil && !errors.Is(d.lastErr, frame.ErrTooShort) {
		return frame.Decoded{}, fmt.Errorf("%w: %w", ErrNoFrame, d.lastErr)
	}
	return frame.Decoded{}, ErrNoFrame
}
