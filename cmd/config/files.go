package config

import (
	"os"
	"path/filepath"
	"strings"

	"Audiomodem/internel/utils"
	"Audiomodem/pkg/device"
	"Audiomodem/pkg/modem"
	"Audiomodem/pkg/wavfile"
)

// isRaw reports whether path names a headerless float32 sample file.
func isRaw(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".f32", ".raw", ".pcm":
		return true
	}
	return false
}

// CreateFileSource streams samples from a WAV or raw float32 file.
// "-" reads raw float32 from stdin.
func CreateFileSource(config *Config, path string) (device.AudioSource, error) {
	rate, chunk := config.Device.SampleRate, config.Device.ChunkSize
	switch {
	case path == "-":
		return utils.NewRawSource(os.Stdin, rate, chunk), nil
	case isRaw(path):
		return utils.OpenRawSource(path, rate, chunk)
	}
	return wavfile.Open(path, rate, chunk)
}

// ReadFile loads a whole WAV or raw float32 file.
func ReadFile(config *Config, path string) ([]float64, error) {
	if isRaw(path) {
		samples, err := utils.ReadBinary[float32](path)
		if err != nil {
			return nil, err
		}
		return modem.Float32ToFloat64(samples), nil
	}
	var codec device.WaveFileCodec = wavfile.New(config.Device.SampleRate)
	return codec.Read(path)
}

// WriteFile stores samples as WAV, or as raw float32 for .f32/.raw/.pcm paths.
func WriteFile(config *Config, path string, samples []float64) error {
	if isRaw(path) {
		return utils.WriteBinary(path, modem.Float64ToFloat32(samples))
	}
	var codec device.WaveFileCodec = wavfile.New(config.Device.SampleRate)
	return codec.Write(path, samples)
}
