//go:build !windows

package device

import "fmt"

func NewASIO(deviceName string, sampleRate float64, inChannel, outChannel int) (Device, error) {
	return nil, fmt.Errorf("%w: asio (%s)", ErrUnsupported, deviceName)
}
