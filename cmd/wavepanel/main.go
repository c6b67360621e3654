// SPDX-License-Identifier: EPL-2.0

// Command wavepanel renders, converts, plays and records audio with the
// wavepanel engine.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	imgcolor "image/color"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/ik5/wavepanel"
	"github.com/ik5/wavepanel/internal/config"
	"github.com/ik5/wavepanel/internal/device/microphone"
	"github.com/ik5/wavepanel/internal/device/portaudio"
	"github.com/ik5/wavepanel/transport"
	"github.com/ik5/wavepanel/waveform"
)

var (
	info = color.New(color.FgCyan)
	good = color.New(color.FgGreen)
	bad  = color.New(color.FgRed, color.Bold)
)

const usage = `Usage: wavepanel <command> [flags] <args>

Commands:
  render  <in> <out.png>   draw the waveform of an audio file
  convert <in> <out.wav>   decode any supported file to 44.1kHz 16-bit WAV
  play    <in>             play an audio file on the default output
  record  <out.wav>        record from the default input until Ctrl+C

Run 'wavepanel <command> -h' for the command's flags.
`

// openFunc opens the device named by input and returns a matching cleanup.
type openFunc func(input string) (transport.Device, func() error, error)

type app struct {
	stdout io.Writer
	stderr io.Writer
	cfg    config.Config
	open   openFunc
}

func main() {
	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	a := &app{stdout: os.Stdout, stderr: os.Stderr, cfg: cfg, open: openDevice}
	code := a.run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

func (a *app) run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(a.stderr, usage)
		return 2
	}

	var err error
	switch cmd, rest := args[0], args[1:]; cmd {
	case "render":
		err = a.render(rest)
	case "convert":
		err = a.convert(rest)
	case "play":
		err = a.play(ctx, rest)
	case "record":
		err = a.record(ctx, rest)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(a.stdout, usage)
		return 0
	default:
		bad.Fprintf(a.stderr, "unknown command %q\n\n", cmd)
		fmt.Fprint(a.stderr, usage)
		return 2
	}

	switch {
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errUsage):
		return 2
	case err != nil:
		bad.Fprintln(a.stderr, "Error:", err)
		return 1
	}
	return 0
}

var errUsage = errors.New("usage")

func (a *app) flagSet(name, args string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() {
		fmt.Fprintf(a.stderr, "Usage: wavepanel %s [flags] %s\n\nFlags:\n", name, args)
		fs.PrintDefaults()
	}
	return fs
}

// parse runs fs over args and checks the positional count.
func parse(fs *flag.FlagSet, args []string, want int) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	if fs.NArg() != want {
		fs.Usage()
		return errUsage
	}
	return nil
}

// colorValue is a flag.Value over a render color.
type colorValue struct{ c *imgcolor.RGBA }

func (v colorValue) String() string {
	if v.c == nil {
		return ""
	}
	return config.FormatColor(*v.c)
}

func (v colorValue) Set(s string) error {
	c, err := config.ParseColor(s)
	if err != nil {
		return err
	}
	*v.c = c
	return nil
}

func (a *app) render(args []string) error {
	fs := a.flagSet("render", "<in> <out.png>")
	cfg := a.cfg.Render
	mono := fs.Bool("mono", false, "mix all channels to one before drawing")
	fs.IntVar(&cfg.XScale, "xscale", cfg.XScale, "samples averaged into one column")
	fs.IntVar(&cfg.YScale, "yscale", cfg.YScale, "divisor applied to sample magnitude")
	fs.IntVar(&cfg.MaxWidth, "max-width", cfg.MaxWidth, "widest image to produce, 0 for no limit")
	fs.IntVar(&cfg.TopChannel, "top", cfg.TopChannel, "channel drawn above the baseline")
	fs.IntVar(&cfg.BottomChannel, "bottom", cfg.BottomChannel, "channel drawn below the baseline")
	fs.BoolVar(&cfg.DrawFill, "fill", cfg.DrawFill, "draw filled bars")
	fs.BoolVar(&cfg.DrawOutline, "outline", cfg.DrawOutline, "draw the outline")
	fs.BoolVar(&cfg.DrawBaseline, "baseline", cfg.DrawBaseline, "draw the baseline")
	fs.IntVar(&cfg.BaselineThickness, "baseline-thickness", cfg.BaselineThickness, "baseline height in pixels")
	fs.Var(colorValue{&cfg.Fill}, "fill-color", "bar color, #rrggbb[aa]")
	fs.Var(colorValue{&cfg.Outline}, "outline-color", "outline color, #rrggbb[aa]")
	fs.Var(colorValue{&cfg.Baseline}, "baseline-color", "baseline color, #rrggbb[aa]")
	fs.Var(colorValue{&cfg.Background}, "background-color", "background color, #rrggbb[aa]")
	if err := parse(fs, args, 2); err != nil {
		return err
	}
	in, out := fs.Arg(0), fs.Arg(1)

	buf, err := wavepanel.LoadFile(in, wavepanel.LoadOptions{Mono: *mono})
	if err != nil {
		return err
	}

	g := waveform.Measure(buf, cfg)
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := waveform.RenderPNG(f, buf, cfg); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	good.Fprintf(a.stdout, "%s: %dx%d, %d samples per column\n", out, g.Width, g.Height, g.XScale)
	return nil
}

func (a *app) convert(args []string) error {
	fs := a.flagSet("convert", "<in> <out.wav>")
	mono := fs.Bool("mono", false, "mix all channels to one")
	if err := parse(fs, args, 2); err != nil {
		return err
	}
	in, out := fs.Arg(0), fs.Arg(1)

	buf, err := wavepanel.LoadFile(in, wavepanel.LoadOptions{Mono: *mono})
	if err != nil {
		return err
	}
	if err := wavepanel.SaveFile(out, buf); err != nil {
		return err
	}

	good.Fprintf(a.stdout, "%s: %v, %d channel(s)\n", out, buf.Duration().Round(time.Millisecond), buf.Channels())
	return nil
}

func (a *app) play(ctx context.Context, args []string) error {
	fs := a.flagSet("play", "<in>")
	start := fs.Duration("start", 0, "offset to start from")
	length := fs.Duration("length", 0, "how much to play, 0 for everything")
	if err := parse(fs, args, 1); err != nil {
		return err
	}

	buf, err := wavepanel.LoadFile(fs.Arg(0), wavepanel.LoadOptions{})
	if err != nil {
		return err
	}

	dev, closeDev, err := a.open(config.InputPortAudio)
	if err != nil {
		return err
	}
	defer closeDev()

	from := frameAt(*start, buf.SampleRate)
	to := buf.Frames()
	if *length > 0 {
		to = min(to, from+frameAt(*length, buf.SampleRate))
	}

	p := transport.NewPlayer(dev, a.cfg.TransportOptions())
	events, err := p.Play(ctx, buf, from, to)
	if err != nil {
		return err
	}

	rate := time.Duration(buf.SampleRate)
	a.follow(events, func(ev transport.Event) string {
		return fmt.Sprintf("playing %v / %v",
			(time.Duration(ev.Frame)*time.Second/rate).Round(100*time.Millisecond),
			(time.Duration(ev.Total)*time.Second/rate).Round(100*time.Millisecond))
	})
	return p.Wait()
}

func (a *app) record(ctx context.Context, args []string) error {
	fs := a.flagSet("record", "<out.wav>")
	input := fs.String("input", a.cfg.Input, "capture backend: portaudio or microphone")
	channels := fs.Int("channels", a.cfg.RecordChannels, "channels to record")
	limit := fs.Duration("duration", 0, "stop after this long, 0 to wait for Ctrl+C")
	if err := parse(fs, args, 1); err != nil {
		return err
	}

	dev, closeDev, err := a.open(*input)
	if err != nil {
		return err
	}
	defer closeDev()

	if *limit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *limit)
		defer cancel()
	}

	opts := a.cfg.TransportOptions()
	opts.Channels = *channels
	r := transport.NewRecorder(dev, opts)
	events, err := r.Record(ctx)
	if err != nil {
		return err
	}

	a.follow(events, func(ev transport.Event) string {
		return fmt.Sprintf("recording %v", ev.Elapsed.Round(100*time.Millisecond))
	})

	buf, err := r.Wait()
	if buf != nil && buf.Frames() > 0 {
		if serr := wavepanel.SaveFile(fs.Arg(0), buf); serr != nil {
			return errors.Join(err, serr)
		}
		good.Fprintf(a.stdout, "%s: %v, %d channel(s)\n", fs.Arg(0), buf.Duration().Round(time.Millisecond), buf.Channels())
	}
	return err
}

// follow prints a status line per progress event until the channel closes.
func (a *app) follow(events <-chan transport.Event, status func(transport.Event) string) {
	for ev := range events {
		switch ev.Kind {
		case transport.Progress:
			info.Fprintf(a.stdout, "\r%s ", status(ev))
		case transport.Stopped, transport.Completed:
			fmt.Fprintln(a.stdout)
			good.Fprintln(a.stdout, ev.Kind)
		case transport.Failed:
			fmt.Fprintln(a.stdout)
		}
	}
}

func frameAt(d time.Duration, rate int) int {
	return int(d * time.Duration(rate) / time.Second)
}

func openDevice(input string) (transport.Device, func() error, error) {
	switch input {
	case config.InputPortAudio:
		if err := portaudio.Init(); err != nil {
			return nil, nil, err
		}
		return portaudio.Device{}, portaudio.Terminate, nil
	case config.InputMicrophone:
		if err := microphone.Init(); err != nil {
			return nil, nil, err
		}
		return microphone.Device{}, microphone.Terminate, nil
	default:
		return nil, nil, fmt.Errorf("unknown input %q: %w", input, transport.ErrDeviceUnavailable)
	}
}
