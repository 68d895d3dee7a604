package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"gitlab.com/tinyland/lab/bottombar/pkg/bar"
	"gitlab.com/tinyland/lab/bottombar/pkg/config"
	"gitlab.com/tinyland/lab/bottombar/pkg/terminal"
)

// stubSurface is an always-usable 60x20 terminal that keeps the last line.
type stubSurface struct {
	mu     sync.Mutex
	active bool
	last   string
}

func (s *stubSurface) Enter() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = true
	return true
}

func (s *stubSurface) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *stubSurface) Query() (terminal.Size, error) {
	return terminal.Size{Cols: 60, Rows: 20}, nil
}

func (s *stubSurface) Size() terminal.Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return terminal.Size{}
	}
	return terminal.Size{Cols: 60, Rows: 20}
}

func (s *stubSurface) Resize(terminal.Size) {}

func (s *stubSurface) Paint(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = line
}

func (s *stubSurface) Exit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
}

func (s *stubSurface) line() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestBar(t *testing.T) (*bar.Bar, *stubSurface) {
	t.Helper()
	s := &stubSurface{}
	b := bar.New(
		bar.WithSurface(s),
		bar.WithResizeMode(bar.ResizePoll),
		bar.WithPollInterval(time.Hour),
	)
	t.Cleanup(func() { b.Close() })
	return b, s
}

func flush(t *testing.T, b *bar.Bar) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := b.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
}

// --- Items ---

func TestAddItemText(t *testing.T) {
	b, s := newTestBar(t)
	deps := newItemDeps(io.Discard, testLogger())

	h, run, err := addItem(context.Background(), b, config.ItemConfig{Kind: config.KindText, Text: "hello", Label: "msg"}, deps)
	if err != nil {
		t.Fatalf("addItem() error = %v", err)
	}
	if h == nil || run != nil {
		t.Fatalf("addItem() = %v, %v; want handle and no runner", h, run)
	}
	flush(t, b)
	if got := s.line(); !strings.HasPrefix(got, "msg: hello") {
		t.Errorf("painted %q, want prefix %q", got, "msg: hello")
	}
	if b.RefreshInterval() != 0 {
		t.Errorf("RefreshInterval() = %v for static text, want 0", b.RefreshInterval())
	}
}

func TestAddItemDefaultRefresh(t *testing.T) {
	tests := []struct {
		item config.ItemConfig
		want time.Duration
	}{
		{config.ItemConfig{Kind: config.KindClock, Align: "right"}, time.Second},
		{config.ItemConfig{Kind: config.KindElapsed}, time.Second},
		{config.ItemConfig{Kind: config.KindUptime}, time.Minute},
		{config.ItemConfig{Kind: config.KindText, Text: "x", Refresh: config.Duration{Duration: 3 * time.Second}}, 3 * time.Second},
		{config.ItemConfig{Kind: config.KindCPU, Refresh: config.Duration{Duration: 500 * time.Millisecond}, Drift: true}, 500 * time.Millisecond},
	}
	for _, tt := range tests {
		b, _ := newTestBar(t)
		if _, _, err := addItem(context.Background(), b, tt.item, newItemDeps(io.Discard, testLogger())); err != nil {
			t.Errorf("addItem(%s) error = %v", tt.item.Kind, err)
			continue
		}
		if got := b.RefreshInterval(); got != tt.want {
			t.Errorf("addItem(%s) refresh = %v, want %v", tt.item.Kind, got, tt.want)
		}
	}
}

func TestAddItemSpinnerUsesFrameInterval(t *testing.T) {
	b, _ := newTestBar(t)
	if _, _, err := addItem(context.Background(), b, config.ItemConfig{Kind: config.KindSpinner, Format: "line"}, newItemDeps(io.Discard, testLogger())); err != nil {
		t.Fatalf("addItem(spinner) error = %v", err)
	}
	if got := b.RefreshInterval(); got <= 0 || got > time.Second {
		t.Errorf("spinner refresh = %v, want its frame interval", got)
	}
}

func TestAddItemFileReturnsRunner(t *testing.T) {
	b, _ := newTestBar(t)
	path := filepath.Join(t.TempDir(), "progress.log")
	_, run, err := addItem(context.Background(), b, config.ItemConfig{Kind: config.KindFile, Path: path}, newItemDeps(io.Discard, testLogger()))
	if err != nil {
		t.Fatalf("addItem(file) error = %v", err)
	}
	if run == nil {
		t.Fatal("addItem(file) returned no runner")
	}
}

func TestAddItemRejectsBadInput(t *testing.T) {
	b, _ := newTestBar(t)
	deps := newItemDeps(io.Discard, testLogger())
	for _, ic := range []config.ItemConfig{
		{Kind: "weather"},
		{Kind: config.KindText, Align: "middle"},
		{Kind: config.KindSpinner, Format: "nope"},
	} {
		if _, _, err := addItem(context.Background(), b, ic, deps); err == nil {
			t.Errorf("addItem(%+v) accepted bad input", ic)
		}
	}
	if b.Len() != 0 {
		t.Errorf("Len() = %d after rejected items, want 0", b.Len())
	}
}

func TestFlagItemsOrder(t *testing.T) {
	f := &cliFlags{text: "build", label: "job", right: true, clock: true, elapsed: true, sysmetrics: true, spinner: "dot", watch: "/tmp/x"}
	items := flagItems(f)
	if got := describeItems(items); got != "text,elapsed,cpu,mem,spinner,file,clock" {
		t.Fatalf("flagItems kinds = %s", got)
	}
	if items[0].Align != "right" || items[0].Label != "job" {
		t.Errorf("text item = %+v", items[0])
	}
	if len(flagItems(&cliFlags{})) != 0 {
		t.Error("flagItems with no flags is not empty")
	}
}

// --- Flags and config ---

func TestParseFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f, err := parseFlags(fs, []string{"-clock", "-preset", "minimal", "--", "make", "-j4"})
	if err != nil {
		t.Fatalf("parseFlags() error = %v", err)
	}
	if !f.clock || f.preset != "minimal" {
		t.Errorf("flags = %+v", f)
	}
	if got := strings.Join(fs.Args(), " "); got != "make -j4" {
		t.Errorf("command = %q, want %q", got, "make -j4")
	}

	fs = flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if _, err := parseFlags(fs, []string{"-preset", "fancy"}); err == nil {
		t.Error("parseFlags accepted an unknown preset")
	}
}

func TestLoadConfigPresetReplacesItems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[[items]]\nkind = \"text\"\ntext = \"x\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(&cliFlags{configPath: path, preset: "clock"})
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if got := len(cfg.EffectiveItems()); got != len(config.Preset("clock")) {
		t.Errorf("EffectiveItems() has %d items, want the preset's", got)
	}
}

func TestSetupLoggerWritesFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Log.File = filepath.Join(t.TempDir(), "logs", "bottombar.log")
	cfg.Log.Level = "warn"

	logger, closeLog, err := setupLogger(cfg, false)
	if err != nil {
		t.Fatalf("setupLogger() error = %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	closeLog()

	data, err := os.ReadFile(cfg.Log.File)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "hidden") || !strings.Contains(string(data), "shown") {
		t.Errorf("log file = %q, want only the warning", data)
	}
}

func TestNewBarRejectsBadResizeMode(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Bar.Resize = "sometimes"
	if _, err := newBar(cfg, io.Discard, testLogger()); err == nil {
		t.Error("newBar accepted an unknown resize mode")
	}
}

// --- Commands ---

func TestRunCommandExitCode(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	if got := runCommand(context.Background(), []string{"sh", "-c", "exit 3"}, testLogger()); got != 3 {
		t.Errorf("runCommand(exit 3) = %d, want 3", got)
	}
	if got := runCommand(context.Background(), []string{"sh", "-c", "true"}, testLogger()); got != 0 {
		t.Errorf("runCommand(true) = %d, want 0", got)
	}
}

func TestRunCommandNotFound(t *testing.T) {
	if got := runCommand(context.Background(), []string{"bottombar-no-such-command"}, testLogger()); got != 127 {
		t.Errorf("runCommand(missing) = %d, want 127", got)
	}
}

func TestPassThroughCopies(t *testing.T) {
	in, err := os.Open(writeTemp(t, "line one\nline two\n"))
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()

	var out strings.Builder
	if err := passThrough(context.Background(), in, &out); err != nil {
		t.Fatalf("passThrough() error = %v", err)
	}
	if out.String() != "line one\nline two\n" {
		t.Errorf("copied %q", out.String())
	}
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
