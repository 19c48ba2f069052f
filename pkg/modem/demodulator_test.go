package modem

import (
	"errors"
	"reflect"
	"testing"

	"Audiomodem/internel/signaltest"
	"Audiomodem/pkg/frame"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func transmission(t *testing.T, message string, baud, repeats int) (frame.Header, []float64) {
	t.Helper()
	h := header(t, message, baud)
	m := NewModulator(SampleRate)
	m.Repeats = repeats
	waveform, err := m.Modulate(h, []byte(message))
	if err != nil {
		t.Fatal(err)
	}
	return h, waveform
}

func checkFrames(t *testing.T, frames []frame.Decoded, count int, h frame.Header, message string, baud int) {
	t.Helper()
	if len(frames) != count {
		t.Fatalf("Expected %d frames, but got %d", count, len(frames))
	}
	for i, f := range frames {
		if !reflect.DeepEqual(f.Header, h) {
			t.Errorf("frame %d: expected header %v, but got %v", i, h, f.Header)
		}
		if string(f.Payload) != message {
			t.Errorf("frame %d: expected payload %q, but got %q", i, message, f.Payload)
		}
		if f.Metadata.Baud != baud {
			t.Errorf("frame %d: expected baud %d, but got %d", i, baud, f.Metadata.Baud)
		}
		if f.Metadata.RSSI == nil {
			t.Errorf("frame %d: missing RSSI", i)
		}
	}
}

func TestDecodeStreamSingleFrame(t *testing.T) {
	const message = "Loopback!"
	h, waveform := transmission(t, message, 200, 1)
	checkFrames(t, DecodeStream(waveform), 1, h, message, 200)
}

func TestDecodeStreamRequiresStartTone(t *testing.T) {
	_, waveform := transmission(t, "no start tone", 200, 1)
	if frames := DecodeStream(waveform[ToneSamples(SampleRate):]); len(frames) != 0 {
		t.Errorf("Expected no frames, but got %d", len(frames))
	}
}

func TestDecodeStreamRepeatedFrames(t *testing.T) {
	const message = "Stream test payload"
	h, waveform := transmission(t, message, 200, 3)

	d := NewDemodulator(SampleRate)
	checkFrames(t, d.Ingest(waveform), 3, h, message, 200)
	if d.State() != SearchingStart {
		t.Errorf("Expected state %v, but got %v", SearchingStart, d.State())
	}
}

func TestDecodeStreamLeadingNoise(t *testing.T) {
	const message = "Noise guard"
	h, waveform := transmission(t, message, 100, 1)

	noise := signaltest.Gaussian(7, int(0.15*SampleRate), 0.02)
	checkFrames(t, DecodeStream(signaltest.Concat(noise, waveform)), 1, h, message, 100)

	silence := make([]float64, int(0.3*SampleRate))
	checkFrames(t, DecodeStream(signaltest.Concat(silence, waveform)), 1, h, message, 100)
}

func TestDecodeStreamNoisyChannel(t *testing.T) {
	const message = "AWGN"
	h, waveform := transmission(t, message, 50, 1)
	checkFrames(t, DecodeStream(signaltest.AddNoise(99, waveform, 0.05)), 1, h, message, 50)
}

func TestIngestSplitFrame(t *testing.T) {
	const message = "Incremental payload"
	h, waveform := transmission(t, message, 200, 1)

	d := NewDemodulator(SampleRate)
	half := len(waveform) / 2
	if frames := d.Ingest(waveform[:half]); len(frames) != 0 {
		t.Fatalf("Expected no frames from the first half, but got %d", len(frames))
	}
	checkFrames(t, d.Ingest(waveform[half:]), 1, h, message, 200)
}

func TestIngestSplitInsideEndTone(t *testing.T) {
	const message = "Tail"
	h, waveform := transmission(t, message, 200, 1)

	d := NewDemodulator(SampleRate)
	split := len(waveform) - ToneSamples(SampleRate)/2
	if frames := d.Ingest(waveform[:split]); len(frames) != 0 {
		t.Fatalf("Expected the frame to wait for its end tone, but got %d", len(frames))
	}
	checkFrames(t, d.Ingest(waveform[split:]), 1, h, message, 200)
}

func TestFlushTruncatedEndTone(t *testing.T) {
	const message = "Cut short"
	h, waveform := transmission(t, message, 100, 1)

	d := NewDemodulator(SampleRate)
	cut := waveform[:len(waveform)-ToneSamples(SampleRate)/3]
	if frames := d.Ingest(cut); len(frames) != 0 {
		t.Fatalf("Expected no frames before flush, but got %d", len(frames))
	}
	checkFrames(t, d.Flush(), 1, h, message, 100)
	if d.Buffered() != 0 {
		t.Errorf("Expected empty buffer after flush, but got %d", d.Buffered())
	}
}

func TestDecodeChunks(t *testing.T) {
	const message = "Chunked stream"
	h, waveform := transmission(t, message, 100, 2)
	checkFrames(t, DecodeChunks(signaltest.Split(waveform, 8)), 2, h, message, 100)
}

func TestDecodeChunksLowBaud(t *testing.T) {
	const message = "Slow channel payload with a reasonable length"
	h, waveform := transmission(t, message, 50, 1)
	checkFrames(t, DecodeChunks(signaltest.Split(waveform, 40)), 1, h, message, 50)
}

func TestDecodeWaveform(t *testing.T) {
	const message = "one shot"
	h, waveform := transmission(t, message, 200, 1)

	decoded, err := DecodeWaveform(waveform)
	if err != nil {
		t.Fatal(err)
	}
	checkFrames(t, []frame.Decoded{decoded}, 1, h, message, 200)

	if _, err := DecodeWaveform(signaltest.Gaussian(5, SampleRate, 0.1)); !errors.Is(err, ErrNoFrame) {
		t.Errorf("Expected ErrNoFrame, but got %v", err)
	}
}

func TestDemodulatorBoundsHistory(t *testing.T) {
	d := NewDemodulator(SampleRate)
	noise := signaltest.Gaussian(11, SampleRate, 0.01)
	for range 100 {
		if frames := d.Ingest(noise); len(frames) != 0 {
			t.Fatalf("Expected no frames from noise, but got %d", len(frames))
		}
	}
	if limit := d.tailKeep + ToneSamples(SampleRate); d.Buffered() > limit {
		t.Errorf("Expected at most %d buffered samples, but got %d", limit, d.Buffered())
	}
}

func TestDemodulatorMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, waveform := transmission(t, "metrics", 200, 2)

	d := NewDemodulator(SampleRate)
	d.Metrics = NewMetrics(reg)
	d.Ingest(waveform)

	if got := testutil.ToFloat64(d.Metrics.framesDecoded.WithLabelValues("200")); got != 2 {
		t.Errorf("Expected 2 decoded frames, but got %v", got)
	}
	if got := testutil.ToFloat64(d.Metrics.failedCandidates); got != 0 {
		t.Errorf("Expected no failed candidates, but got %v", got)
	}
}
