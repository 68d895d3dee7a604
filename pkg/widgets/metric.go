package widgets

import (
	"context"

	"gitlab.com/tinyland/lab/bottombar/pkg/collectors/sysmetrics"
)

// MetricReader is implemented by *sysmetrics.Collector.
type MetricReader interface {
	Read(ctx context.Context, kind sysmetrics.Kind, path string) (sysmetrics.Reading, error)
}

// Metric returns a provider rendering one host metric. When styler is not
// nil, metrics with a utilisation are coloured by it.
func Metric(ctx context.Context, src MetricReader, kind sysmetrics.Kind, path string, styler *Styler) func() (string, error) {
	return func() (string, error) {
		r, err := src.Read(ctx, kind, path)
		if err != nil {
			return "", err
		}
		if styler != nil && r.HasPercent {
			return styler.Threshold(r.Percent, r.Text), nil
		}
		return r.Text, nil
	}
}
