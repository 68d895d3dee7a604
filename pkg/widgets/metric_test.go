package widgets

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"gitlab.com/tinyland/lab/bottombar/pkg/collectors/sysmetrics"
)

type fakeReader struct {
	reading sysmetrics.Reading
	err     error
	kind    sysmetrics.Kind
	path    string
}

func (f *fakeReader) Read(_ context.Context, kind sysmetrics.Kind, path string) (sysmetrics.Reading, error) {
	f.kind, f.path = kind, path
	return f.reading, f.err
}

func plainStyler(t *testing.T) *Styler {
	t.Helper()
	t.Setenv("CLICOLOR_FORCE", "")
	os.Unsetenv("CLICOLOR_FORCE")
	return NewStyler(&bytes.Buffer{})
}

func TestMetricPassesKindAndPath(t *testing.T) {
	r := &fakeReader{reading: sysmetrics.Reading{Text: "42%", Percent: 42, HasPercent: true}}
	got, err := Metric(context.Background(), r, sysmetrics.Disk, "/var", nil)()
	if err != nil || got != "42%" {
		t.Fatalf("Metric() = %q, %v", got, err)
	}
	if r.kind != sysmetrics.Disk || r.path != "/var" {
		t.Errorf("Read called with %v %q", r.kind, r.path)
	}
}

func TestMetricError(t *testing.T) {
	want := errors.New("denied")
	_, err := Metric(context.Background(), &fakeReader{err: want}, sysmetrics.CPU, "", nil)()
	if !errors.Is(err, want) {
		t.Errorf("Metric() error = %v, want %v", err, want)
	}
}

func TestStylerWithoutTerminalIsPlain(t *testing.T) {
	s := plainStyler(t)
	for _, pct := range []float64{10, 75, 95} {
		if got := s.Threshold(pct, "x"); got != "x" {
			t.Errorf("Threshold(%v) = %q, want plain text", pct, got)
		}
	}
	r := &fakeReader{reading: sysmetrics.Reading{Text: "95%", Percent: 95, HasPercent: true}}
	if got, _ := Metric(context.Background(), r, sysmetrics.CPU, "", s)(); got != "95%" {
		t.Errorf("styled Metric() = %q, want plain text", got)
	}
}
