package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"
	"unicode/utf8"

	"Audiomodem/cmd/config"
	"Audiomodem/internel/utils"
	"Audiomodem/pkg/async"
	"Audiomodem/pkg/css"
	"Audiomodem/pkg/device"
	"Audiomodem/pkg/frame"
	"Audiomodem/pkg/layers"
	"Audiomodem/pkg/modem"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
)

func payloadText(payload []byte) string {
	if utf8.Valid(payload) {
		return string(payload)
	}
	return fmt.Sprintf("%x", payload)
}

func report(f frame.Decoded) {
	h := f.Header
	if f.Metadata.SF > 0 {
		fmt.Printf("Frame detected: sf=%d bw=%.0fHz version=%d flags=0x%02X length=%d\n",
			f.Metadata.SF, f.Metadata.Bandwidth, h.Version, h.Flags, h.Length)
	} else {
		fmt.Printf("Frame detected: baud=%d version=%d flags=0x%02X length=%d\n",
			f.Metadata.Baud, h.Version, h.Flags, h.Length)
	}
	if f.Metadata.RSSI != nil {
		fmt.Printf("RSSI: %.1f dB\n", *f.Metadata.RSSI)
	}
	fmt.Printf("Payload: %s\n", payloadText(f.Payload))
}

func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Printf("[Metrics] serving on %s/metrics", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[Metrics] %v", err)
		}
	}()
}

func main() {
	var configFile = pflag.StringP("config", "c", "", "YAML configuration file.")
	var phy = pflag.String("phy", "afsk", "Physical layer: afsk or css.")
	var inputFile = pflag.StringP("input", "i", "", "Decode a .wav file, a raw float32 file (.f32/.raw) or - for raw stdin. Omit to listen live.")
	var sf = pflag.Int("sf", 0, "CSS spreading factor, 1 to 8.")
	var bandwidth = pflag.Float64("bandwidth", 0, "CSS sweep bandwidth in Hz.")
	var center = pflag.Float64("center", 0, "CSS centre frequency in Hz.")
	var tones = pflag.Bool("tones", false, "CSS frames are wrapped in start and end tones.")
	var backend = pflag.String("backend", "", "Live capture backend: asio or loopback.")
	var deviceName = pflag.StringP("device", "d", "", "Capture device name.")
	var metricsAddr = pflag.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9100.")
	var transcript = pflag.StringP("transcript", "t", "", "Append every decoded frame to this file.")
	var whole = pflag.BoolP("whole", "w", false, "Load the whole input file and decode a single frame from it.")
	var verbose = pflag.BoolP("verbose", "v", false, "Log modem internals.")

	pflag.Parse()
	modem.Debug = *verbose

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("[Recv] loading config: %v", err)
	}
	flags := pflag.CommandLine
	if flags.Changed("sf") {
		cfg.CSS.SF = *sf
	}
	if flags.Changed("bandwidth") {
		cfg.CSS.Bandwidth = *bandwidth
	}
	if flags.Changed("center") {
		cfg.CSS.Center = *center
	}
	if flags.Changed("tones") {
		cfg.CSS.Tones = *tones
	}
	if flags.Changed("backend") {
		cfg.Device.Backend = *backend
	}
	if flags.Changed("device") {
		cfg.Device.DeviceName = *deviceName
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Listen = *metricsAddr
	}

	reg := prometheus.NewRegistry()
	if cfg.Metrics.Listen != "" {
		serveMetrics(cfg.Metrics.Listen, reg)
	}

	var receiver layers.Receiver
	var decodeWhole func([]float64) (frame.Decoded, error)
	switch strings.ToLower(*phy) {
	case "afsk":
		receiver = config.CreateDemodulator(cfg, reg)
		decodeWhole = modem.DecodeWaveform
	case "css":
		p, err := config.CreateChirpParams(cfg)
		if err != nil {
			log.Fatalf("[Recv] %v", err)
		}
		opts := config.CSSDecodeOptions(cfg)
		receiver = layers.NewCSSReceiver(p, opts)
		decodeWhole = func(samples []float64) (frame.Decoded, error) {
			return css.Decode(samples, p, opts)
		}
	default:
		log.Fatalf("[Recv] unknown physical layer %q", *phy)
	}

	if *whole {
		if *inputFile == "" || *inputFile == "-" {
			log.Fatalf("[Recv] --whole needs an input file")
		}
		samples, err := config.ReadFile(cfg, *inputFile)
		if err != nil {
			log.Fatalf("[Recv] %v", err)
		}
		f, err := decodeWhole(samples)
		if err != nil {
			log.Printf("[Recv] %v", err)
			fmt.Println("No frames decoded.")
			return
		}
		report(f)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var source device.AudioSource
	if *inputFile != "" {
		source, err = config.CreateFileSource(cfg, *inputFile)
	} else {
		source, err = config.CreateSource(cfg)
		if err == nil {
			fmt.Println("Listening... press Enter to stop.")
			enter := async.EnterKey()
			var cancel context.CancelFunc
			ctx, cancel = context.WithCancel(ctx)
			defer cancel()
			go func() {
				select {
				case <-enter:
					cancel()
				case <-ctx.Done():
				}
			}()
		}
	}
	if err != nil {
		log.Fatalf("[Recv] %v", err)
	}

	layer := layers.PhysicalLayer{
		Source:     source,
		Receiver:   receiver,
		OutputChan: make(chan frame.Decoded, 16),
	}
	defer layer.Close()

	listening := async.Go(func() error { return layer.Listen(ctx) })

	count := 0
	handle := func(f frame.Decoded) {
		count++
		report(f)
		if *transcript != "" {
			line := func(f frame.Decoded) string {
				return fmt.Sprintf("%s\t%s", f.Metadata.Timestamp.Format(time.RFC3339), f)
			}
			if err := utils.AppendLines(*transcript, []frame.Decoded{f}, line); err != nil {
				log.Printf("[Recv] transcript: %v", err)
			}
		}
	}

	for {
		select {
		case f := <-layer.OutputChan:
			handle(f)
			continue
		case err = <-listening:
		}
		break
	}
	for len(layer.OutputChan) > 0 {
		handle(<-layer.OutputChan)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("[Recv] %v", err)
	}
	if count == 0 {
		fmt.Println("No frames decoded.")
	}
}
