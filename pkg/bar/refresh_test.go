package bar

import (
	"errors"
	"testing"
	"time"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(d time.Duration) time.Time { return epoch.Add(d) }

// --- nextWake ---

func TestNextWakeExactKeepsGrid(t *testing.T) {
	r := Refresh{Interval: 10 * time.Second, Phase: PhaseExact}
	tests := []struct {
		prev, now, want time.Duration
	}{
		{10 * time.Second, 10*time.Second + 300*time.Millisecond, 20 * time.Second},
		{10 * time.Second, 19 * time.Second, 20 * time.Second},
		{10 * time.Second, 25 * time.Second, 30 * time.Second},
		{10 * time.Second, 30 * time.Second, 40 * time.Second},
	}
	for _, tt := range tests {
		if got := nextWake(r, at(tt.prev), at(tt.now)); !got.Equal(at(tt.want)) {
			t.Errorf("nextWake(prev=%v, now=%v) = %v, want %v", tt.prev, tt.now, got.Sub(epoch), tt.want)
		}
	}
}

func TestNextWakeDriftStartsFromNow(t *testing.T) {
	r := Refresh{Interval: 10 * time.Second, Phase: PhaseDrift}
	got := nextWake(r, at(10*time.Second), at(13*time.Second))
	if want := at(23 * time.Second); !got.Equal(want) {
		t.Errorf("nextWake() = %v, want %v", got.Sub(epoch), want.Sub(epoch))
	}
}

// --- fastest ---

func TestFastest(t *testing.T) {
	tests := []struct {
		name string
		set  []Refresh
		want Refresh
		ok   bool
	}{
		{"empty", nil, Refresh{}, false},
		{"disabled only", []Refresh{{}}, Refresh{}, false},
		{"smallest wins", []Refresh{{Interval: time.Second}, {Interval: time.Minute, Phase: PhaseDrift}}, Refresh{Interval: time.Second}, true},
		{"exact wins tie", []Refresh{{Interval: time.Second, Phase: PhaseDrift}, {Interval: time.Second}}, Refresh{Interval: time.Second}, true},
		{"drift alone", []Refresh{{Interval: time.Second, Phase: PhaseDrift}}, Refresh{Interval: time.Second, Phase: PhaseDrift}, true},
	}
	for _, tt := range tests {
		got, ok := fastest(tt.set)
		if ok != tt.ok || got != tt.want {
			t.Errorf("%s: fastest() = %v, %v; want %v, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

// --- Registry ---

func TestRegistryOrderAndIDs(t *testing.T) {
	r := NewRegistry()
	a := r.Add(Item{Label: "a"})
	b := r.Add(Item{Label: "b"})
	c := r.Add(Item{Label: "c"})
	if a.ID == b.ID || b.ID == c.ID {
		t.Fatalf("duplicate IDs %d %d %d", a.ID, b.ID, c.ID)
	}

	if n, err := r.Remove(b.ID); err != nil || n != 2 {
		t.Fatalf("Remove() = %d, %v; want 2, nil", n, err)
	}
	d := r.Add(Item{Label: "d"})
	if d.ID == b.ID {
		t.Error("removed ID was reused")
	}

	var labels string
	for _, it := range r.Snapshot() {
		labels += it.Label
	}
	if labels != "acd" {
		t.Errorf("Snapshot() order = %q, want %q", labels, "acd")
	}
}

func TestRegistryUpdateKeepsIdentity(t *testing.T) {
	r := NewRegistry()
	it := r.Add(Item{Label: "x"})
	err := r.Update(it.ID, func(p *Item) {
		p.Label = "y"
		p.ID = 999
		p.Order = 999
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, ok := r.Get(it.ID)
	if !ok || got.Label != "y" || got.Order != it.Order {
		t.Errorf("Get() = %+v, %v after update", got, ok)
	}
}

func TestRegistryMissingItem(t *testing.T) {
	r := NewRegistry()
	if err := r.Update(1, func(*Item) {}); !errors.Is(err, ErrReleased) {
		t.Errorf("Update() error = %v, want ErrReleased", err)
	}
	if _, err := r.Remove(1); !errors.Is(err, ErrReleased) {
		t.Errorf("Remove() error = %v, want ErrReleased", err)
	}
}

func TestRegistryRefreshes(t *testing.T) {
	r := NewRegistry()
	r.Add(Item{})
	r.Add(Item{Refresh: Refresh{Interval: time.Second}})
	if got := r.Refreshes(); len(got) != 1 || got[0].Interval != time.Second {
		t.Errorf("Refreshes() = %v", got)
	}
}

// --- evaluate ---

func TestEvaluate(t *testing.T) {
	if got, err := evaluate(nil); got != "" || err != nil {
		t.Errorf("evaluate(nil) = %q, %v", got, err)
	}
	if got, _ := evaluate(Func(nil)); got != "" {
		t.Errorf("evaluate(Func(nil)) = %q", got)
	}
	if _, err := evaluate(Func(func() string { panic("x") })); err == nil {
		t.Error("evaluate(panicking) returned no error")
	}
	want := errors.New("nope")
	if _, err := evaluate(FuncErr(func() (string, error) { return "", want })); !errors.Is(err, want) {
		t.Errorf("evaluate(failing) error = %v, want %v", err, want)
	}
}

func TestParseResizeMode(t *testing.T) {
	for in, want := range map[string]ResizeMode{"": ResizeAuto, "auto": ResizeAuto, "POLL": ResizePoll} {
		got, err := ParseResizeMode(in)
		if err != nil || got != want {
			t.Errorf("ParseResizeMode(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseResizeMode("signal"); err == nil {
		t.Error("ParseResizeMode(signal) returned no error")
	}
}
