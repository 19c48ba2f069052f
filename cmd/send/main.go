package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"Audiomodem/cmd/config"
	"Audiomodem/internel/utils"
	"Audiomodem/pkg/async"
	"Audiomodem/pkg/device"
	"Audiomodem/pkg/frame"
	"Audiomodem/pkg/layers"
	"Audiomodem/pkg/modem"

	"github.com/spf13/pflag"
)

// recording is a sink that keeps everything it is asked to play.
type recording struct {
	samples []float64
}

func (r *recording) Play(ctx context.Context, samples []float64, deviceName string) error {
	r.samples = append(r.samples, samples...)
	return nil
}

func main() {
	var configFile = pflag.StringP("config", "c", "", "YAML configuration file.")
	var phy = pflag.String("phy", "afsk", "Physical layer: afsk or css.")
	var baud = pflag.IntP("baud", "b", 0, "AFSK baud rate: 50, 100 or 200.")
	var repeats = pflag.IntP("repeats", "r", 0, "Transmit every frame this many times.")
	var volume = pflag.Float64("volume", 0, "AFSK output level in (0, 1].")
	var sf = pflag.Int("sf", 0, "CSS spreading factor, 1 to 8.")
	var bandwidth = pflag.Float64("bandwidth", 0, "CSS sweep bandwidth in Hz.")
	var center = pflag.Float64("center", 0, "CSS centre frequency in Hz.")
	var tones = pflag.Bool("tones", false, "Wrap CSS frames in start and end tones.")
	var fec = pflag.Bool("fec", false, "Request convolutional FEC for CSS frames.")
	var interleave = pflag.Int("interleave", 0, "CSS interleave depth.")
	var inputFile = pflag.StringP("file", "f", "", "Send every non-empty line of this file as its own frame.")
	var outputFile = pflag.StringP("output", "o", "", "Write the waveform to a .wav file, or raw float32 for .f32/.raw.")
	var play = pflag.BoolP("play", "p", false, "Play the waveform on the configured device.")
	var backend = pflag.String("backend", "", "Audio backend: speaker, asio or loopback.")
	var deviceName = pflag.StringP("device", "d", "", "Output device name.")
	var verbose = pflag.BoolP("verbose", "v", false, "Log modem internals.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] [message ...]\n\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()
	modem.Debug = *verbose

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("[Send] loading config: %v", err)
	}
	flags := pflag.CommandLine
	if flags.Changed("baud") {
		cfg.Modem.Baud = *baud
	}
	if flags.Changed("repeats") {
		cfg.Modem.Repeats = *repeats
		cfg.CSS.Repeats = *repeats
	}
	if flags.Changed("volume") {
		cfg.Modem.Volume = *volume
	}
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
	if flags.Changed("fec") {
		cfg.CSS.FEC = *fec
	}
	if flags.Changed("interleave") {
		cfg.CSS.InterleaveDepth = *interleave
	}
	if flags.Changed("backend") {
		cfg.Device.Backend = *backend
	}
	if flags.Changed("device") {
		cfg.Device.DeviceName = *deviceName
	}

	var messages []string
	if *inputFile != "" {
		messages, err = utils.ReadLines(*inputFile)
		if err != nil {
			log.Fatalf("[Send] %v", err)
		}
	}
	if text := strings.Join(pflag.Args(), " "); text != "" {
		messages = append(messages, text)
	}
	if len(messages) == 0 {
		pflag.Usage()
		os.Exit(2)
	}
	if *outputFile == "" && !*play {
		log.Fatal("[Send] nothing to do: pass --output and/or --play")
	}

	tape := &recording{}
	layer := layers.PhysicalLayer{Sink: tape, DeviceName: cfg.Device.DeviceName}
	switch strings.ToLower(*phy) {
	case "afsk":
		layer.Encoder, err = config.CreateModulator(cfg)
		if err == nil {
			layer.RateCode, err = config.RateCode(cfg)
		}
	case "css":
		layer.Encoder, err = config.CreateCSSModulator(cfg)
		if cfg.CSS.FEC {
			layer.Flags |= frame.FlagFEC
		}
	default:
		err = fmt.Errorf("%w: unknown physical layer %q", modem.ErrConfiguration, *phy)
	}
	if err != nil {
		log.Fatalf("[Send] %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	for _, msg := range messages {
		if err := layer.Send(ctx, []byte(msg)); err != nil {
			log.Fatalf("[Send] modulating %q: %v", msg, err)
		}
	}
	seconds := float64(len(tape.samples)) / float64(cfg.Device.SampleRate)
	fmt.Printf("Modulated %d frame(s) with %s: %d samples (%.2f s)\n", len(messages), *phy, len(tape.samples), seconds)

	var jobs []<-chan error
	if *outputFile != "" {
		jobs = append(jobs, async.Go(func() error {
			return config.WriteFile(cfg, *outputFile, tape.samples)
		}))
	}
	if *play {
		sink, err := config.CreateSink(cfg)
		if err != nil {
			log.Fatalf("[Send] %v", err)
		}
		if c, ok := sink.(*device.Duplex); ok {
			defer c.Close()
		}
		jobs = append(jobs, async.Go(func() error {
			return sink.Play(ctx, tape.samples, cfg.Device.DeviceName)
		}))
	}
	if err := async.Gather(jobs...); err != nil {
		log.Fatalf("[Send] %v", err)
	}
	if *outputFile != "" {
		fmt.Printf("Wrote %s\n", *outputFile)
	}
}
