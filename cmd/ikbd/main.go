package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nevisdale/ikbd/internal/ikbd"
	"github.com/nevisdale/ikbd/internal/input"
	"github.com/nevisdale/ikbd/internal/link"
	"github.com/nevisdale/ikbd/internal/logger"
	"github.com/nevisdale/ikbd/internal/sched"
	"github.com/nevisdale/ikbd/internal/ui"
	"github.com/pkg/profile"
	"golang.org/x/sync/errgroup"
)

type options struct {
	rom       string
	serial    string
	stdio     bool
	freq      int
	quota     int
	maxLag    int
	queue     int
	mouseStep int
	mouse     bool
	keymap    string
	headless  bool
	debug     bool
	logPath   string
	profile   string
	statEvery time.Duration
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.rom, "rom", "", "path to the 4 KiB HD6301 firmware dump")
	flag.StringVar(&o.serial, "serial", "", "tty connected to the host computer")
	flag.BoolVar(&o.stdio, "stdio", false, "use stdin/stdout as the serial link")
	flag.IntVar(&o.freq, "freq", sched.DefaultFrequency, "cpu clock in Hz")
	flag.IntVar(&o.quota, "quota", sched.DefaultQuota, "cycles run between two sleeps")
	flag.IntVar(&o.maxLag, "maxlag", sched.DefaultMaxLag, "quotas of lag tolerated before the timeline is rebased")
	flag.IntVar(&o.queue, "queue", ikbd.DefaultQueueSize, "serial queue capacity per direction")
	flag.IntVar(&o.mouseStep, "mouse-step", ikbd.DefaultMouseStepCycles, "cycles between two quadrature steps")
	flag.BoolVar(&o.mouse, "mouse", false, "start with a mouse in port 0")
	flag.StringVar(&o.keymap, "keymap", "", "csv file mapping host keys to matrix codes")
	flag.BoolVar(&o.headless, "headless", false, "run without a window")
	flag.BoolVar(&o.debug, "debug", false, "print debug messages")
	flag.StringVar(&o.logPath, "log", "", "also write the log to this file")
	flag.StringVar(&o.profile, "profile", "", "write a cpu or mem profile")
	flag.DurationVar(&o.statEvery, "stats", 0, "log statistics at this interval, 0 disables")
	flag.Parse()
	return o
}

func setupLogger(o options) (io.Closer, error) {
	level := slog.LevelInfo
	if o.debug {
		level = slog.LevelDebug
	}

	var file *os.File
	if o.logPath != "" {
		var err error
		file, err = os.OpenFile(o.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("couldn't open the log file: %w", err)
		}
	}

	var w io.Writer
	if file != nil {
		w = file
	}
	slog.SetDefault(slog.New(logger.NewHandler(os.Stderr, w, level, o.debug)))
	if file == nil {
		return io.NopCloser(nil), nil
	}
	return file, nil
}

func openLink(o options) (io.ReadWriteCloser, error) {
	switch {
	case o.serial != "" && o.stdio:
		return nil, errors.New("-serial and -stdio are exclusive")
	case o.serial != "":
		return link.OpenSerial(o.serial)
	case o.stdio:
		return link.Stdio()
	}
	return nil, nil
}

func logStats(ctx context.Context, s *sched.Scheduler, pump *link.Pump, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		st := s.Stats()
		attrs := []any{
			"cycles", st.Machine.Cycles,
			"quotas", st.Quotas,
			"late", st.LateWakes,
			"rebases", st.Rebases,
			"rx_overruns", st.Machine.RxOverruns,
			"rx_dropped", st.Machine.RxDropped,
			"tx_dropped", st.Machine.TxDropped,
		}
		if pump != nil {
			ls := pump.Stats()
			attrs = append(attrs, "link_rx", ls.RxBytes, "link_tx", ls.TxBytes)
		}
		slog.Info("stats", attrs...)
	}
}

func run(o options) error {
	rom, err := ikbd.LoadROM(o.rom)
	if err != nil {
		return err
	}

	var keymap ui.Keymap
	if o.keymap != "" {
		if keymap, err = ui.LoadKeymap(o.keymap); err != nil {
			return err
		}
	}

	conn, err := openLink(o)
	if err != nil {
		return err
	}

	in := input.NewState(input.DefaultKeyQueue)
	in.SetMouseMode(o.mouse)
	m := ikbd.NewMachine(rom, in, ikbd.Config{
		MouseStepCycles: o.mouseStep,
		QueueSize:       o.queue,
	})
	s := sched.New(m, sched.Config{
		Frequency: o.freq,
		Quota:     o.quota,
		MaxLag:    o.maxLag,
	})
	slog.Info("ikbd started", "rom", o.rom, "pc", fmt.Sprintf("$%04X", rom.ResetVector()), "period", s.Period())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Run(ctx)
	})

	var pump *link.Pump
	if conn != nil {
		pump = link.NewPump(conn, m.HostRx(), m.HostTx(), link.DefaultPoll)
		g.Go(func() error {
			return pump.Run(ctx)
		})
	}

	if o.statEvery > 0 {
		g.Go(func() error {
			return logStats(ctx, s, pump, o.statEvery)
		})
	}

	if o.headless {
		err = g.Wait()
	} else {
		// ebiten wants the main goroutine
		uiErr := ui.RunUI(ui.New(ctx, in, keymap, s, rom, pump))
		cancel()
		err = joinUIError(uiErr, g.Wait())
	}
	slog.Info("ikbd stopped")
	return err
}

// joinUIError keeps the background workers' failure next to the UI's.
func joinUIError(uiErr, runErr error) error {
	if uiErr == nil {
		return runErr
	}
	return errors.Join(fmt.Errorf("ui: %w", uiErr), runErr)
}

func main() {
	o := parseFlags()

	closer, err := setupLogger(o)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closer.Close()

	switch o.profile {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "":
	default:
		slog.Error("unknown profile mode", "mode", o.profile)
		os.Exit(2)
	}

	if o.rom == "" {
		slog.Error("-rom is required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(o); err != nil {
		slog.Error(err.Error())
		closer.Close()
		os.Exit(1)
	}
}
