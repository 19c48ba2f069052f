//go:build windows

package device

import "github.com/xsjk/go-asio"

// ASIOMono drives one input and one output channel of an ASIO driver.
type ASIOMono struct {
	DeviceName string
	SampleRate float64
	InChannel  int
	OutChannel int
	device     asio.Device
}

func NewASIO(deviceName string, sampleRate float64, inChannel, outChannel int) (Device, error) {
	return &ASIOMono{
		DeviceName: deviceName,
		SampleRate: sampleRate,
		InChannel:  inChannel,
		OutChannel: outChannel,
	}, nil
}

func (a *ASIOMono) Start(callback func([]int32, []int32)) {
	a.device.Load(a.DeviceName)
	a.device.SetSampleRate(a.SampleRate)
	a.device.Open()
	a.device.Start(func(in, out [][]int32) {
		callback(in[a.InChannel], out[a.OutChannel])
	})
}

func (a *ASIOMono) Stop() {
	a.device.Stop()
	a.device.Close()
	a.device.Unload()
}
