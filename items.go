package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"gitlab.com/tinyland/lab/bottombar/pkg/bar"
	"gitlab.com/tinyland/lab/bottombar/pkg/collectors/sysmetrics"
	"gitlab.com/tinyland/lab/bottombar/pkg/config"
	"gitlab.com/tinyland/lab/bottombar/pkg/layout"
	"gitlab.com/tinyland/lab/bottombar/pkg/widgets"
)

// runner is a background task an item needs, such as a file watcher.
type runner func(ctx context.Context) error

// itemDeps holds what items share: the start time for elapsed timers, one
// metrics collector and one styler.
type itemDeps struct {
	start   time.Time
	out     io.Writer
	logger  *slog.Logger
	metrics *sysmetrics.Collector
	styler  *widgets.Styler
}

func newItemDeps(out io.Writer, logger *slog.Logger) *itemDeps {
	return &itemDeps{start: time.Now(), out: out, logger: logger}
}

func (d *itemDeps) collector() *sysmetrics.Collector {
	if d.metrics == nil {
		d.metrics = sysmetrics.New(sysmetrics.DefaultConfig())
	}
	return d.metrics
}

func (d *itemDeps) threshold() *widgets.Styler {
	if d.styler == nil {
		d.styler = widgets.NewStyler(d.out)
	}
	return d.styler
}

// defaultRefresh is used when an item of the kind sets no refresh.
var defaultRefresh = map[string]bar.Refresh{
	config.KindClock:   {Interval: time.Second},
	config.KindElapsed: {Interval: time.Second},
	config.KindCPU:     {Interval: 2 * time.Second, Phase: bar.PhaseDrift},
	config.KindMem:     {Interval: 2 * time.Second, Phase: bar.PhaseDrift},
	config.KindLoad:    {Interval: 5 * time.Second, Phase: bar.PhaseDrift},
	config.KindDisk:    {Interval: 30 * time.Second, Phase: bar.PhaseDrift},
	config.KindUptime:  {Interval: time.Minute, Phase: bar.PhaseDrift},
}

// addItem registers the item described by ic. The returned runner, when
// not nil, must run for the item to stay current.
func addItem(ctx context.Context, b *bar.Bar, ic config.ItemConfig, deps *itemDeps) (*bar.Handle, runner, error) {
	align, err := layout.ParseAlign(ic.Align)
	if err != nil {
		return nil, nil, err
	}
	refresh := defaultRefresh[ic.Kind]

	var value bar.Value
	var run func(h *bar.Handle) runner

	switch ic.Kind {
	case config.KindText:
		value = bar.Static(ic.Text)

	case config.KindClock:
		value = bar.Func(widgets.Clock(ic.Format))

	case config.KindElapsed:
		value = bar.Func(widgets.Elapsed(deps.start))

	case config.KindCPU, config.KindMem, config.KindLoad, config.KindDisk, config.KindUptime:
		kind, err := sysmetrics.ParseKind(ic.Kind)
		if err != nil {
			return nil, nil, err
		}
		var styler *widgets.Styler
		if ic.Style == "threshold" {
			styler = deps.threshold()
		}
		value = bar.FuncErr(widgets.Metric(ctx, deps.collector(), kind, ic.Path, styler))

	case config.KindSpinner:
		sp, err := widgets.NewSpinner(ic.Format)
		if err != nil {
			return nil, nil, err
		}
		value = bar.Func(sp.Frame)
		refresh = bar.Refresh{Interval: sp.Interval(), Phase: bar.PhaseDrift}

	case config.KindFile:
		value = bar.Static("")
		run = func(h *bar.Handle) runner {
			return widgets.NewFileTail(ic.Path, h, deps.logger).Run
		}

	default:
		return nil, nil, fmt.Errorf("unknown item kind %q", ic.Kind)
	}

	if ic.Refresh.Duration > 0 {
		refresh = bar.Refresh{Interval: ic.Refresh.Duration}
		if ic.Drift {
			refresh.Phase = bar.PhaseDrift
		}
	}

	opts := []bar.ItemOption{bar.WithLabel(ic.Label), bar.WithAlign(align)}
	switch {
	case !refresh.Enabled():
	case refresh.Phase == bar.PhaseDrift:
		opts = append(opts, bar.WithDriftingRefresh(refresh.Interval))
	default:
		opts = append(opts, bar.WithRefresh(refresh.Interval))
	}

	h, err := b.Add(value, opts...)
	if err != nil {
		return nil, nil, err
	}
	deps.logger.Debug("item added", "kind", ic.Kind, "label", ic.Label, "align", align, "refresh", refresh.Interval)
	if run != nil {
		return h, run(h), nil
	}
	return h, nil, nil
}

// flagItems turns the item flags into item configs, in a fixed order:
// text, elapsed, cpu and memory, spinner, watched file, then the
// right-aligned clock.
func flagItems(f *cliFlags) []config.ItemConfig {
	var items []config.ItemConfig
	if f.text != "" {
		ic := config.ItemConfig{Kind: config.KindText, Text: f.text, Label: f.label}
		if f.right {
			ic.Align = "right"
		}
		items = append(items, ic)
	}
	if f.elapsed {
		items = append(items, config.ItemConfig{Kind: config.KindElapsed})
	}
	if f.sysmetrics {
		items = append(items,
			config.ItemConfig{Kind: config.KindCPU, Label: "cpu", Style: "threshold"},
			config.ItemConfig{Kind: config.KindMem, Label: "mem", Style: "threshold"},
		)
	}
	if f.spinner != "" {
		items = append(items, config.ItemConfig{Kind: config.KindSpinner, Format: f.spinner})
	}
	if f.watch != "" {
		items = append(items, config.ItemConfig{Kind: config.KindFile, Path: f.watch})
	}
	if f.clock {
		items = append(items, config.ItemConfig{Kind: config.KindClock, Align: "right"})
	}
	return items
}

// describeItems is used for the debug log line at startup.
func describeItems(items []config.ItemConfig) string {
	kinds := make([]string, len(items))
	for i, ic := range items {
		kinds[i] = ic.Kind
	}
	return strings.Join(kinds, ",")
}
