package sysmetrics

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"
)

// fakeSampler returns canned values and counts calls.
type fakeSampler struct {
	calls int
	cpu   float64
	err   error
}

func (f *fakeSampler) CPUPercent(context.Context) (float64, error) {
	f.calls++
	return f.cpu, f.err
}

func (f *fakeSampler) Memory(context.Context) (uint64, uint64, float64, error) {
	f.calls++
	return 3 << 30, 16 << 30, 18.75, f.err
}

func (f *fakeSampler) Load(context.Context) (float64, float64, float64, error) {
	f.calls++
	return 0.5, 0.25, 0.1, f.err
}

func (f *fakeSampler) Disk(_ context.Context, path string) (DiskUsage, error) {
	f.calls++
	if path == "" {
		path = "/home"
	}
	return DiskUsage{Path: path, UsedPercent: 91.4}, f.err
}

func (f *fakeSampler) Uptime(context.Context) (time.Duration, error) {
	f.calls++
	return 50 * time.Hour, f.err
}

// --- Readings ---

func TestReadFormatsEachKind(t *testing.T) {
	c := NewWithSampler(Config{}, &fakeSampler{cpu: 12.6})
	tests := []struct {
		kind Kind
		path string
		want string
		pct  bool
	}{
		{CPU, "", "13%", true},
		{Memory, "", "3G/16G", true},
		{Load, "", "0.50 0.25 0.10", false},
		{Disk, "/", "91%", true},
		{Disk, "", "/home 91%", true},
		{Uptime, "", "2d2h", false},
	}
	for _, tt := range tests {
		r, err := c.Read(context.Background(), tt.kind, tt.path)
		if err != nil {
			t.Errorf("Read(%v) error = %v", tt.kind, err)
			continue
		}
		if r.Text != tt.want || r.HasPercent != tt.pct {
			t.Errorf("Read(%v, %q) = %+v, want text %q percent %v", tt.kind, tt.path, r, tt.want, tt.pct)
		}
	}
}

func TestReadCachesForMaxAge(t *testing.T) {
	fs := &fakeSampler{cpu: 50}
	c := NewWithSampler(Config{MaxAge: time.Second}, fs)
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	c.Read(context.Background(), CPU, "")
	c.Read(context.Background(), CPU, "")
	if fs.calls != 1 {
		t.Errorf("sampler calls = %d within MaxAge, want 1", fs.calls)
	}

	now = now.Add(time.Second)
	c.Read(context.Background(), CPU, "")
	if fs.calls != 2 {
		t.Errorf("sampler calls = %d after MaxAge, want 2", fs.calls)
	}

	c.Read(context.Background(), Memory, "")
	if fs.calls != 3 {
		t.Errorf("sampler calls = %d for another kind, want 3", fs.calls)
	}
}

func TestReadWrapsErrors(t *testing.T) {
	want := errors.New("no access")
	c := NewWithSampler(Config{}, &fakeSampler{err: want})
	_, err := c.Read(context.Background(), Load, "")
	if !errors.Is(err, want) {
		t.Fatalf("Read() error = %v, want %v", err, want)
	}
	if !strings.Contains(err.Error(), "load") {
		t.Errorf("Read() error %q does not name the metric", err)
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{CPU, Memory, Load, Disk, Uptime} {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseKind("gpu"); err == nil {
		t.Error("ParseKind(gpu) returned no error")
	}
}

// --- Formatting ---

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{512, "512B"},
		{1024, "1K"},
		{1536, "1.5K"},
		{16 << 30, "16G"},
		{3435973837, "3.2G"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{30 * time.Second, "0m"},
		{7 * time.Minute, "7m"},
		{5*time.Hour + 12*time.Minute, "5h12m"},
		{3 * time.Hour, "3h"},
		{76 * time.Hour, "3d4h"},
		{48*time.Hour + 30*time.Minute, "2d"},
	}
	for _, tt := range tests {
		if got := FormatUptime(tt.in); got != tt.want {
			t.Errorf("FormatUptime(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsVirtualFS(t *testing.T) {
	if !isVirtualFS("tmpfs") || isVirtualFS("ext4") {
		t.Error("isVirtualFS misclassifies tmpfs or ext4")
	}
}

// --- Integration tests (run on actual host) ---

func TestReadHostMetrics(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		t.Skip("host metrics only checked on linux and darwin")
	}
	c := New(DefaultConfig())
	for _, k := range []Kind{CPU, Memory, Uptime} {
		r, err := c.Read(context.Background(), k, "")
		if err != nil {
			t.Errorf("Read(%v) error = %v", k, err)
			continue
		}
		if r.Text == "" {
			t.Errorf("Read(%v) returned empty text", k)
		}
		if r.HasPercent && (r.Percent < 0 || r.Percent > 100) {
			t.Errorf("Read(%v).Percent = %f, want 0-100", k, r.Percent)
		}
	}
}
