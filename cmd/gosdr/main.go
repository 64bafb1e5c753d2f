package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	sdr "github.com/mfkiwl/pocketsdr-go/src"
)

// main is the CLI front end (SPEC_FULL.md §4.10): it assembles a
// sdr.Config/sdr.Intervals pair from flags and hands off to the receiver
// core, in the same pflag-driven, single-binary shape as the teacher's
// cmd/direwolf/main.go, minus the C configuration layer this repository
// replaces with Go-native flags.
func main() {
	var channels = pflag.StringArrayP("channel", "c", nil, "sig:prn:fi triple, repeatable (e.g. -c L1CA:1:0)")
	var inputKind = pflag.StringP("input", "i", "file", "Input source: file|-|usb|soundcard|serial")
	var inputArg = pflag.StringP("input-arg", "I", "", "Argument for the input source (file path, device node, etc.)")
	var fs = pflag.Float64P("fs", "f", 12e6, "IF sampling frequency, Hz")
	var dopCenter = pflag.Float64P("dop-center", "d", 0, "Doppler search center, Hz")
	var dopSpan = pflag.Float64P("dop-span", "s", 5000, "Doppler search half-span, Hz")
	var rawFormat = pflag.BoolP("raw", "r", false, "IF data is packed-raw format (§4.1 format 1) rather than int8")
	var iqBoth = pflag.BoolP("iq", "q", false, "Samples are interleaved I/Q pairs rather than I-only")
	var statusSec = pflag.Float64P("status-interval", "t", 1.0, "Status view redraw interval, seconds (0 disables)")
	var verbose = pflag.BoolP("verbose", "v", false, "Add tracking-error/message-type/TOW columns to the status view")
	var logDir = pflag.StringP("log-dir", "l", "", "Directory for daily $TIME/$CH receiver logs (disabled if empty)")
	var ledChip = pflag.String("led-chip", "", "GPIO chip for the status LED (e.g. gpiochip0); disabled if empty")
	var ledLine = pflag.Int("led-line", 0, "GPIO line offset for the status LED")
	var headless = pflag.Bool("headless", false, "Log status as diagnostic-log lines instead of redrawing a terminal block")
	var help = pflag.BoolP("help", "h", false, "Display help text")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "gosdr - a software-defined GNSS receiver orchestration layer.\n\n")
		fmt.Fprintf(os.Stderr, "Usage: gosdr [options]\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	signals, err := parseChannels(*channels)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if len(signals) == 0 {
		fmt.Fprintln(os.Stderr, "gosdr: at least one -c sig:prn:fi is required")
		pflag.Usage()
		os.Exit(1)
	}

	diag := sdr.NewDiagLogger(os.Stderr)

	cfg := sdr.Config{
		Signals:   signals,
		Fs:        *fs,
		DopCenter: *dopCenter,
		DopSpan:   *dopSpan,
		Diag:      diag,
		Verbose:   *verbose,
		Headless:  *headless,
	}
	if *rawFormat {
		cfg.Format = sdr.FormatRAW
	}
	if *iqBoth {
		cfg.IQ[0] = sdr.IQBoth
		cfg.IQ[1] = sdr.IQBoth
	}

	if *logDir != "" {
		w, closer, err := sdr.OpenDailyLog(*logDir, "%Y%m%d.log")
		if err != nil {
			diag.Error("receiver log disabled", "err", err)
		} else {
			defer closer.Close()
			defer w.Flush()
			cfg.RecvLog = w
		}
	}

	if *ledChip != "" {
		led, err := sdr.NewGPIOStatusLED(*ledChip, *ledLine)
		if err != nil {
			diag.Warn("status LED disabled", "err", err)
		} else {
			cfg.LED = led
			defer led.Close()
		}
	}

	source, err := openSource(*inputKind, *inputArg, *fs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer source.Close()

	rcv, err := sdr.NewReceiver(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer rcv.Free()

	tint := sdr.Intervals{StatusSec: *statusSec}
	if err := rcv.Start(source, os.Stdout, tint); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	rcv.Stop()
}

// parseChannels turns the repeatable -c sig:prn:fi[:fc] flags into
// SignalDef values.
func parseChannels(raw []string) ([]sdr.SignalDef, error) {
	out := make([]sdr.SignalDef, 0, len(raw))
	for _, c := range raw {
		parts := strings.Split(c, ":")
		if len(parts) < 3 {
			return nil, fmt.Errorf("gosdr: invalid -c %q, want sig:prn:fi[:fc]", c)
		}
		prn, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("gosdr: invalid PRN in -c %q: %w", c, err)
		}
		fi, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return nil, fmt.Errorf("gosdr: invalid fi in -c %q: %w", c, err)
		}
		def := sdr.SignalDef{Sig: parts[0], PRN: prn, Fi: fi}
		if len(parts) >= 4 {
			fc, err := strconv.ParseFloat(parts[3], 64)
			if err != nil {
				return nil, fmt.Errorf("gosdr: invalid fc in -c %q: %w", c, err)
			}
			def.Fc = fc
		}
		out = append(out, def)
	}
	return out, nil
}

// openSource resolves the --input/--input-arg pair into a concrete
// SampleSource (SPEC_FULL.md §3's five backends).
func openSource(kind, arg string, fs float64) (sdr.SampleSource, error) {
	switch kind {
	case "file":
		return sdr.OpenFileSource(arg)
	case "-":
		return sdr.NewStdinSource(), nil
	case "usb":
		devs, err := sdr.FindUSBDevices(-1, nil)
		if err != nil {
			return nil, err
		}
		if len(devs) == 0 {
			return nil, fmt.Errorf("gosdr: no USB front-end found")
		}
		return nil, fmt.Errorf("gosdr: found USB device %04x:%04x but no transfer backend is wired for this build; see DESIGN.md", devs[0].VendorID, devs[0].ProductID)
	case "soundcard":
		return sdr.OpenSoundCardSource(fs, 4096)
	case "serial":
		return sdr.OpenSerialSource(arg, 921600)
	default:
		return nil, fmt.Errorf("gosdr: unknown input kind %q", kind)
	}
}
