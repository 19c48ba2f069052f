package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"Audiomodem/pkg/device"
	"Audiomodem/pkg/modem"

	"github.com/prometheus/client_golang/prometheus"
)

func write(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := write(t, `
modem:
  baud: 200
  repeats: 3
css:
  sf: 6
  tones: true
device:
  backend: loopback
  noise: 0.01
metrics:
  listen: ":9100"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Modem.Baud != 200 || cfg.Modem.Repeats != 3 {
		t.Errorf("modem = %+v", cfg.Modem)
	}
	if cfg.Modem.Volume != modem.DefaultVolume {
		t.Errorf("volume = %v, want default %v", cfg.Modem.Volume, modem.DefaultVolume)
	}
	if cfg.CSS.SF != 6 || !cfg.CSS.Tones || cfg.CSS.Bandwidth != 1000 {
		t.Errorf("css = %+v", cfg.CSS)
	}
	if cfg.Device.Backend != BackendLoopback || cfg.Metrics.Listen != ":9100" {
		t.Errorf("device = %+v, metrics = %+v", cfg.Device, cfg.Metrics)
	}

	code, err := RateCode(cfg)
	if err != nil || code != 2 {
		t.Errorf("RateCode() = %d, %v", code, err)
	}
	m, err := CreateModulator(cfg)
	if err != nil || m.Repeats != 3 {
		t.Errorf("CreateModulator() = %+v, %v", m, err)
	}
	cm, err := CreateCSSModulator(cfg)
	if err != nil {
		t.Fatalf("CreateCSSModulator() error = %v", err)
	}
	if cm.Params.SF() != 6 || !cm.IncludeTones || !CSSDecodeOptions(cfg).Tones {
		t.Errorf("css modulator = %+v", cm)
	}

	d := CreateDemodulator(cfg, prometheus.NewRegistry())
	if d.Metrics == nil {
		t.Error("CreateDemodulator() did not attach metrics")
	}

	duplex, err := CreateDuplex(cfg)
	if err != nil {
		t.Fatalf("CreateDuplex() error = %v", err)
	}
	duplex.Close()
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v", err)
	}
	if _, err := LoadConfig(write(t, "modem: [")); err == nil {
		t.Error("malformed yaml accepted")
	}
	if _, err := LoadConfig(write(t, "device:\n  sample_rate: 44100\n")); !errors.Is(err, modem.ErrConfiguration) {
		t.Errorf("sample rate error = %v", err)
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := CreateChirpParams(cfg); err != nil {
		t.Errorf("default chirp params invalid: %v", err)
	}
	if CreateDemodulator(cfg, nil).Metrics != nil {
		t.Error("metrics attached without a registerer")
	}

	cfg.Device.Backend = "tape"
	if _, err := CreateSource(cfg); !errors.Is(err, device.ErrUnsupported) {
		t.Errorf("CreateSource(tape) error = %v", err)
	}

	cfg.CSS.SF = 12
	if _, err := CreateCSSModulator(cfg); !errors.Is(err, modem.ErrConfiguration) {
		t.Errorf("CreateCSSModulator(sf 12) error = %v", err)
	}
}
