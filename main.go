// bottombar keeps a one-line status bar on the last row of the terminal
// while a command runs, or while its standard input is copied through.
//
// Usage:
//
//	bottombar [flags] [--] [command [args...]]
//
// Flags:
//
//	-config string    Path to configuration file (default: $XDG_CONFIG_HOME/bottombar/config.toml)
//	-preset string    Built-in item set (clock|minimal|system)
//	-text string      Static text item
//	-label string     Label for the -text item
//	-right            Right-align the -text item
//	-clock            Right-aligned clock
//	-elapsed          Time since start
//	-sysmetrics       CPU and memory items
//	-spinner string   Spinner item (dot|line|minidot|...)
//	-watch string     Show the last line of a file as it changes
//	-verbose          Enable debug logging to stderr
//	-version          Print version and exit
//
// With a command the exit status is the command's. Without one, standard
// input is copied to standard output until EOF or a signal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"gitlab.com/tinyland/lab/bottombar/pkg/bar"
	"gitlab.com/tinyland/lab/bottombar/pkg/config"
	"gitlab.com/tinyland/lab/bottombar/pkg/terminal"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

// commandWaitDelay bounds how long a child may take to exit after it was
// interrupted.
const commandWaitDelay = 5 * time.Second

type cliFlags struct {
	configPath  string
	preset      string
	text        string
	label       string
	right       bool
	clock       bool
	elapsed     bool
	sysmetrics  bool
	spinner     string
	watch       string
	verbose     bool
	showVersion bool
}

func parseFlags(fs *flag.FlagSet, args []string) (*cliFlags, error) {
	f := &cliFlags{}
	fs.StringVar(&f.configPath, "config", "", "Path to configuration file")
	fs.StringVar(&f.preset, "preset", "", "Built-in item set ("+strings.Join(config.PresetNames(), "|")+")")
	fs.StringVar(&f.text, "text", "", "Static text item")
	fs.StringVar(&f.label, "label", "", "Label for the -text item")
	fs.BoolVar(&f.right, "right", false, "Right-align the -text item")
	fs.BoolVar(&f.clock, "clock", false, "Right-aligned clock")
	fs.BoolVar(&f.elapsed, "elapsed", false, "Time since start")
	fs.BoolVar(&f.sysmetrics, "sysmetrics", false, "CPU and memory items")
	fs.StringVar(&f.spinner, "spinner", "", "Spinner item")
	fs.StringVar(&f.watch, "watch", "", "Show the last line of a file as it changes")
	fs.BoolVar(&f.verbose, "verbose", false, "Enable debug logging to stderr")
	fs.BoolVar(&f.showVersion, "version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if f.preset != "" && !config.IsPreset(f.preset) {
		return nil, fmt.Errorf("unknown preset %q (supported: %s)", f.preset, strings.Join(config.PresetNames(), ", "))
	}
	return f, nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("bottombar", flag.ContinueOnError)
	flags, err := parseFlags(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "bottombar: %v\n", err)
		return 2
	}

	if flags.showVersion {
		fmt.Printf("bottombar %s (%s) built %s\n", version, commit, date)
		return 0
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}

	logger, closeLog, err := setupLogger(cfg, flags.verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		return 1
	}
	defer closeLog()

	out := os.Stdout
	if cfg.Bar.Output == "stderr" {
		out = os.Stderr
	}

	b, err := newBar(cfg, out, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		return 1
	}
	defer b.Close()

	// Setup context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received shutdown signal", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	g, gctx := errgroup.WithContext(ctx)

	items := append(cfg.EffectiveItems(), flagItems(flags)...)
	logger.Debug("starting", "items", describeItems(items), "terminal", terminal.Detect())
	deps := newItemDeps(out, logger)
	for _, ic := range items {
		_, runItem, err := addItem(gctx, b, ic, deps)
		if err != nil {
			fmt.Fprintf(os.Stderr, "item %q: %v\n", ic.Kind, err)
			return 1
		}
		if runItem != nil {
			g.Go(func() error { return runItem(gctx) })
		}
	}

	code := 0
	g.Go(func() error {
		defer cancel()
		if rest := fs.Args(); len(rest) > 0 {
			code = runCommand(gctx, rest, logger)
			return nil
		}
		return passThrough(gctx, os.Stdin, out)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("bottombar failed", "error", err)
		if code == 0 {
			code = 1
		}
	}
	return code
}

// loadConfig reads the config file and applies the -preset flag.
func loadConfig(flags *cliFlags) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if flags.configPath != "" {
		cfg, err = config.LoadFromFile(flags.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if flags.preset != "" {
		cfg.Bar.Preset = flags.preset
		cfg.Items = nil
	}
	return cfg, nil
}

// setupLogger never writes to the bar's stream on its own: without a log
// file, logs are discarded unless verbose is set.
func setupLogger(cfg *config.Config, verbose bool) (*slog.Logger, func(), error) {
	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}

	var w io.Writer = io.Discard
	closeFn := func() {}
	if cfg.Log.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o755); err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, err
		}
		w = f
		closeFn = func() { f.Close() }
		if verbose {
			w = io.MultiWriter(os.Stderr, f)
		}
	} else if verbose {
		w = os.Stderr
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return logger, closeFn, nil
}

func newBar(cfg *config.Config, out io.Writer, logger *slog.Logger) (*bar.Bar, error) {
	mode, err := bar.ParseResizeMode(cfg.Bar.Resize)
	if err != nil {
		return nil, err
	}
	opts := []bar.Option{
		bar.WithOutput(out),
		bar.WithLogger(logger),
		bar.WithSeparator(cfg.Bar.Separator),
		bar.WithMarker(cfg.Bar.Marker),
		bar.WithErrorText(cfg.Bar.ErrorText),
		bar.WithResizeMode(mode),
	}
	if d := cfg.Bar.PollInterval.Duration; d > 0 {
		opts = append(opts, bar.WithPollInterval(d))
	}
	if on := cfg.SyncOutput(); on != nil {
		opts = append(opts, bar.WithSyncOutput(*on))
	}
	return bar.New(opts...), nil
}

// runCommand runs argv with the terminal's standard streams and returns its
// exit status. Cancelling ctx interrupts the child.
func runCommand(ctx context.Context, argv []string, logger *slog.Logger) int {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	cmd.WaitDelay = commandWaitDelay

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "bottombar: %v\n", err)
		return 127
	}
	logger.Debug("command started", "argv", argv, "pid", cmd.Process.Pid)

	err := cmd.Wait()
	return exitCode(err)
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if c := exitErr.ExitCode(); c >= 0 {
			return c
		}
	}
	return 1
}

// passThrough copies in to out until EOF or ctx is done. A terminal on
// stdin has nothing to copy, so it just waits.
func passThrough(ctx context.Context, in *os.File, out io.Writer) error {
	if terminal.IsTerminal(in.Fd()) {
		<-ctx.Done()
		return nil
	}
	done := make(chan error, 1)
	go func() {
		_, err := io.Copy(out, in)
		done <- err
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return nil
	}
}
