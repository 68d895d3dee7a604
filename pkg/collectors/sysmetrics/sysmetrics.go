// Package sysmetrics reads host metrics for status bar items. It uses
// gopsutil, so it works on Darwin and Linux without /proc parsing.
//
// Readings are cached per metric for a short time, so several items
// refreshing together cost one system call each.
package sysmetrics

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
)

// Kind selects a metric.
type Kind int

const (
	CPU Kind = iota
	Memory
	Load
	Disk
	Uptime
)

var kindNames = [...]string{
	CPU:    "cpu",
	Memory: "mem",
	Load:   "load",
	Disk:   "disk",
	Uptime: "uptime",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind converts a config kind name to a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("sysmetrics: unknown metric %q", s)
}

// Config controls the collector.
type Config struct {
	// MaxAge is how long a reading is reused (default 1s).
	MaxAge time.Duration

	// Timeout bounds a single system query (default 2s).
	Timeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxAge:  time.Second,
		Timeout: 2 * time.Second,
	}
}

// Reading is one rendered metric.
type Reading struct {
	Text string
	// Percent is the utilisation in 0-100 for metrics that have one.
	Percent    float64
	HasPercent bool
}

// Sampler performs the raw system queries.
type Sampler interface {
	CPUPercent(ctx context.Context) (float64, error)
	Memory(ctx context.Context) (used, total uint64, percent float64, err error)
	Load(ctx context.Context) (load1, load5, load15 float64, err error)
	Disk(ctx context.Context, path string) (DiskUsage, error)
	Uptime(ctx context.Context) (time.Duration, error)
}

// DiskUsage is the usage of one mount point.
type DiskUsage struct {
	Path        string
	Used        uint64
	Total       uint64
	UsedPercent float64
}

type cacheKey struct {
	kind Kind
	path string
}

type cached struct {
	reading Reading
	err     error
	at      time.Time
}

// Collector reads metrics with caching. It is safe for concurrent use.
type Collector struct {
	cfg     Config
	sampler Sampler
	now     func() time.Time

	mu    sync.Mutex
	cache map[cacheKey]cached
}

// New creates a Collector backed by gopsutil. Zero-value fields in cfg are
// replaced with defaults.
func New(cfg Config) *Collector {
	return NewWithSampler(cfg, gopsutilSampler{})
}

// NewWithSampler creates a Collector backed by s.
func NewWithSampler(cfg Config, s Sampler) *Collector {
	def := DefaultConfig()
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = def.MaxAge
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &Collector{
		cfg:     cfg,
		sampler: s,
		now:     time.Now,
		cache:   make(map[cacheKey]cached),
	}
}

// Read returns the current reading for kind. path selects the mount point
// for Disk; an empty path reports the fullest real filesystem.
func (c *Collector) Read(ctx context.Context, kind Kind, path string) (Reading, error) {
	key := cacheKey{kind: kind, path: path}
	now := c.now()

	c.mu.Lock()
	if e, ok := c.cache[key]; ok && now.Sub(e.at) < c.cfg.MaxAge {
		c.mu.Unlock()
		return e.reading, e.err
	}
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()
	r, err := c.sample(ctx, kind, path)
	if err != nil {
		err = fmt.Errorf("sysmetrics: %s: %w", kind, err)
	}

	c.mu.Lock()
	c.cache[key] = cached{reading: r, err: err, at: now}
	c.mu.Unlock()
	return r, err
}

func (c *Collector) sample(ctx context.Context, kind Kind, path string) (Reading, error) {
	switch kind {
	case CPU:
		pct, err := c.sampler.CPUPercent(ctx)
		if err != nil {
			return Reading{}, err
		}
		return Reading{Text: fmt.Sprintf("%.0f%%", pct), Percent: pct, HasPercent: true}, nil

	case Memory:
		used, total, pct, err := c.sampler.Memory(ctx)
		if err != nil {
			return Reading{}, err
		}
		return Reading{
			Text:       FormatBytes(used) + "/" + FormatBytes(total),
			Percent:    pct,
			HasPercent: true,
		}, nil

	case Load:
		l1, l5, l15, err := c.sampler.Load(ctx)
		if err != nil {
			return Reading{}, err
		}
		return Reading{Text: fmt.Sprintf("%.2f %.2f %.2f", l1, l5, l15)}, nil

	case Disk:
		u, err := c.sampler.Disk(ctx, path)
		if err != nil {
			return Reading{}, err
		}
		text := fmt.Sprintf("%.0f%%", u.UsedPercent)
		if path == "" {
			text = u.Path + " " + text
		}
		return Reading{Text: text, Percent: u.UsedPercent, HasPercent: true}, nil

	case Uptime:
		d, err := c.sampler.Uptime(ctx)
		if err != nil {
			return Reading{}, err
		}
		return Reading{Text: FormatUptime(d)}, nil
	}
	return Reading{}, fmt.Errorf("unknown metric %d", int(kind))
}

// FormatBytes renders n with a binary unit and one decimal below ten:
// 512B, 1.5K, 16G.
func FormatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	v := float64(n)
	suffixes := "KMGTPE"
	i := -1
	for v >= unit && i < len(suffixes)-1 {
		v /= unit
		i++
	}
	if v < 10 && v != math.Trunc(v) {
		return fmt.Sprintf("%.1f%c", v, suffixes[i])
	}
	return fmt.Sprintf("%.0f%c", v, suffixes[i])
}

// FormatUptime renders d as its two most significant units: 3d4h, 5h12m,
// 7m.
func FormatUptime(d time.Duration) string {
	d = d.Truncate(time.Minute)
	days := int(d / (24 * time.Hour))
	hours := int(d % (24 * time.Hour) / time.Hour)
	mins := int(d % time.Hour / time.Minute)

	var b strings.Builder
	switch {
	case days > 0:
		fmt.Fprintf(&b, "%dd", days)
		if hours > 0 {
			fmt.Fprintf(&b, "%dh", hours)
		}
	case hours > 0:
		fmt.Fprintf(&b, "%dh", hours)
		if mins > 0 {
			fmt.Fprintf(&b, "%dm", mins)
		}
	default:
		fmt.Fprintf(&b, "%dm", mins)
	}
	return b.String()
}

// --- gopsutil ---

type gopsutilSampler struct{}

func (gopsutilSampler) CPUPercent(ctx context.Context) (float64, error) {
	// interval 0 compares against the previous call, which is what a
	// periodically refreshed item wants.
	total, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return 0, err
	}
	if len(total) == 0 {
		return 0, fmt.Errorf("no cpu data")
	}
	return total[0], nil
}

func (gopsutilSampler) Memory(ctx context.Context) (uint64, uint64, float64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, 0, 0, err
	}
	return vm.Used, vm.Total, vm.UsedPercent, nil
}

func (gopsutilSampler) Load(ctx context.Context) (float64, float64, float64, error) {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return 0, 0, 0, err
	}
	return avg.Load1, avg.Load5, avg.Load15, nil
}

func (gopsutilSampler) Disk(ctx context.Context, path string) (DiskUsage, error) {
	if path != "" {
		u, err := disk.UsageWithContext(ctx, path)
		if err != nil {
			return DiskUsage{}, err
		}
		return DiskUsage{Path: u.Path, Used: u.Used, Total: u.Total, UsedPercent: u.UsedPercent}, nil
	}

	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return DiskUsage{}, err
	}
	var fullest DiskUsage
	found := false
	for _, p := range parts {
		if isVirtualFS(p.Fstype) {
			continue
		}
		u, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil {
			continue // skip partitions that fail
		}
		if !found || u.UsedPercent > fullest.UsedPercent {
			fullest = DiskUsage{Path: u.Path, Used: u.Used, Total: u.Total, UsedPercent: u.UsedPercent}
			found = true
		}
	}
	if !found {
		return DiskUsage{}, fmt.Errorf("no real filesystems")
	}
	return fullest, nil
}

func (gopsutilSampler) Uptime(ctx context.Context) (time.Duration, error) {
	secs, err := host.UptimeWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return time.Duration(secs) * time.Second, nil
}

// isVirtualFS returns true for filesystem types that do not represent real
// storage and should be skipped during enumeration.
func isVirtualFS(fstype string) bool {
	switch fstype {
	case "devfs", "devtmpfs", "tmpfs", "sysfs", "proc", "cgroup", "cgroup2",
		"autofs", "mqueue", "hugetlbfs", "debugfs", "tracefs", "securityfs",
		"pstore", "bpf", "fusectl", "configfs", "ramfs", "rpc_pipefs",
		"nfsd", "map", "devpts", "squashfs", "nsfs":
		return true
	}
	return false
}
