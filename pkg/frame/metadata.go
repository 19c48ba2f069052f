package frame

import (
	"fmt"
	"time"
)

// Metadata describes how and when a frame was received.
// Baud is set for AFSK frames; SF and Bandwidth for CSS frames.
type Metadata struct {
	Timestamp time.Time
	Baud      int
	SF        int
	Bandwidth float64
	RSSI      *float64
}

// Decoded is a frame that passed the integrity check.
type Decoded struct {
	Metadata Metadata
	Header   Header
	Payload  []byte
}

func (d Decoded) String() string {
	rssi := "n/a"
	if d.Metadata.RSSI != nil {
		rssi = fmt.Sprintf("%.1f dB", *d.Metadata.RSSI)
	}
	return fmt.Sprintf("%d bytes (baud=%d sf=%d rssi=%s): %q", len(d.Payload), d.Metadata.Baud, d.Metadata.SF, rssi, d.Payload)
}
