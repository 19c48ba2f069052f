package config

import (
	"fmt"
	"os"
	"strings"

	"Audiomodem/pkg/css"
	"Audiomodem/pkg/device"
	"Audiomodem/pkg/device/speaker"
	"Audiomodem/pkg/modem"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Modem struct {
		Baud    int     `yaml:"baud"`
		Repeats int     `yaml:"repeats"`
		Volume  float64 `yaml:"volume"`
	} `yaml:"modem"`

	CSS struct {
		SF              int     `yaml:"sf"`
		Bandwidth       float64 `yaml:"bandwidth"`
		Center          float64 `yaml:"center"`
		PreambleUp      int     `yaml:"preamble_up"`
		PreambleDown    int     `yaml:"preamble_down"`
		WindowFraction  float64 `yaml:"window_fraction"`
		Tones           bool    `yaml:"tones"`
		FEC             bool    `yaml:"fec"`
		InterleaveDepth int     `yaml:"interleave_depth"`
		Repeats         int     `yaml:"repeats"`
	} `yaml:"css"`

	Device struct {
		Backend    string  `yaml:"backend"` // speaker, asio or loopback
		DeviceName string  `yaml:"device_name"`
		SampleRate int     `yaml:"sample_rate"`
		ChunkSize  int     `yaml:"chunk_size"`
		InChannel  int     `yaml:"in_channel"`
		OutChannel int     `yaml:"out_channel"`
		Gain       float64 `yaml:"gain"`  // loopback only
		Noise      float64 `yaml:"noise"` // loopback only
	} `yaml:"device"`

	Metrics struct {
		Listen string `yaml:"listen"`
	} `yaml:"metrics"`
}

const (
	BackendSpeaker  = "speaker"
	BackendASIO     = "asio"
	BackendLoopback = "loopback"
)

func Default() *Config {
	var c Config
	c.Modem.Baud = 100
	c.Modem.Repeats = 1
	c.Modem.Volume = modem.DefaultVolume

	c.CSS.SF = css.DefaultSF
	c.CSS.Bandwidth = css.DefaultBandwidth
	c.CSS.Center = css.DefaultCenter
	c.CSS.PreambleUp = css.DefaultPreambleUp
	c.CSS.PreambleDown = css.DefaultPreambleDown
	c.CSS.WindowFraction = css.DefaultWindowFraction
	c.CSS.InterleaveDepth = 1
	c.CSS.Repeats = 1

	c.Device.Backend = BackendSpeaker
	c.Device.SampleRate = modem.SampleRate
	c.Device.ChunkSize = modem.SampleRate / 10
	return &c
}

// LoadConfig reads filename over the defaults. An empty filename returns the defaults.
func LoadConfig(filename string) (*Config, error) {
	config := Default()
	if filename == "" {
		return config, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	if config.Device.SampleRate != modem.SampleRate {
		return nil, fmt.Errorf("%w: %s: sample rate %d, the modem runs at %d", modem.ErrConfiguration, filename, config.Device.SampleRate, modem.SampleRate)
	}
	return config, nil
}

func CreateModulator(config *Config) (*modem.Modulator, error) {
	return modem.NewModulatorFromProfile(modem.TransmissionProfile{
		Baud:    config.Modem.Baud,
		Repeats: config.Modem.Repeats,
		Volume:  config.Modem.Volume,
	})
}

// RateCode is the header rate code for the configured baud.
func RateCode(config *Config) (uint8, error) {
	return modem.RateCodeFromBaud(config.Modem.Baud)
}

func CreateChirpParams(config *Config) (css.ChirpParams, error) {
	c := config.CSS
	return css.NewChirpParams(c.SF, c.Bandwidth, c.Center,
		css.WithSampleRate(config.Device.SampleRate),
		css.WithPreamble(c.PreambleUp, c.PreambleDown),
		css.WithWindowFraction(c.WindowFraction),
	)
}

func CreateCSSModulator(config *Config) (*css.Modulator, error) {
	p, err := CreateChirpParams(config)
	if err != nil {
		return nil, err
	}
	m := css.NewModulator(p)
	m.Repeats = config.CSS.Repeats
	m.FEC = config.CSS.FEC
	m.InterleaveDepth = config.CSS.InterleaveDepth
	m.IncludeTones = config.CSS.Tones
	return m, nil
}

func CSSDecodeOptions(config *Config) css.DecodeOptions {
	opts := css.DefaultDecodeOptions
	opts.Tones = config.CSS.Tones
	return opts
}

// CreateDemodulator builds the streaming receiver; reg may be nil.
func CreateDemodulator(config *Config, reg prometheus.Registerer) *modem.Demodulator {
	d := modem.NewDemodulator(config.Device.SampleRate)
	if reg != nil {
		d.Metrics = modem.NewMetrics(reg)
	}
	return d
}

func createDevice(config *Config) (device.Device, error) {
	switch strings.ToLower(config.Device.Backend) {
	case BackendASIO:
		return device.NewASIO(config.Device.DeviceName, float64(config.Device.SampleRate), config.Device.InChannel, config.Device.OutChannel)
	case BackendLoopback:
		return &device.Loopback{
			SampleRate: float64(config.Device.SampleRate),
			Channel:    &device.Channel{Gain: config.Device.Gain, Noise: config.Device.Noise},
		}, nil
	}
	return nil, fmt.Errorf("%w: backend %q", device.ErrUnsupported, config.Device.Backend)
}

// CreateDuplex opens the configured callback device for both directions.
func CreateDuplex(config *Config) (*device.Duplex, error) {
	dev, err := createDevice(config)
	if err != nil {
		return nil, err
	}
	return device.NewDuplex(dev, config.Device.SampleRate), nil
}

func CreateSink(config *Config) (device.AudioSink, error) {
	if strings.ToLower(config.Device.Backend) == BackendSpeaker {
		return speaker.New(config.Device.SampleRate), nil
	}
	return CreateDuplex(config)
}

// CreateSource opens live capture. The speaker backend cannot record.
func CreateSource(config *Config) (device.AudioSource, error) {
	return CreateDuplex(config)
}
