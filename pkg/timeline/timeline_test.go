package timeline

import (
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/matzehuels/graphilizer/pkg/graph"
)

func ord(n int) *int { return &n }

func edges(orders ...int) []graph.Edge {
	out := make([]graph.Edge, len(orders))
	for i, o := range orders {
		out[i] = graph.Edge{
			ID:     string(rune('a' + i)),
			Source: string(rune('A' + i)),
			Target: string(rune('B' + i)),
			Order:  ord(o),
		}
	}
	return out
}

func TestClassify_Partition(t *testing.T) {
	es := edges(1, 1, 2, 3)
	s := New(es, Options{}).Seek(2)

	want := []graph.TimelineState{graph.TimelinePast, graph.TimelinePast, graph.TimelineActive, graph.TimelineFuture}
	for i, e := range s.Annotate(es) {
		if e.TimelineState != want[i] {
			t.Errorf("edge %d: TimelineState = %s, want %s", i, e.TimelineState, want[i])
		}
	}
}

func TestClassify_UnorderedAndNotEngaged(t *testing.T) {
	es := append(edges(1, 2), graph.Edge{ID: "x", Source: "X", Target: "Y"})
	s := New(es, Options{})

	for _, e := range s.Annotate(es) {
		if e.TimelineState != graph.TimelineNone {
			t.Errorf("before engaging: %s = %s, want none", e.ID, e.TimelineState)
		}
	}
	if got := s.Reset().Classify(es[2]); got != graph.TimelineNone {
		t.Errorf("unordered edge = %s, want none", got)
	}
}

func TestNew(t *testing.T) {
	s := New(edges(4, 2, 7), Options{})
	if !s.Enabled || s.Min != 2 || s.Max != 7 || s.Step != 7 {
		t.Errorf("New() = %+v, want enabled [2,7] at 7", s)
	}
	if s.StepDuration != DefaultStepDuration {
		t.Errorf("StepDuration = %v, want %v", s.StepDuration, DefaultStepDuration)
	}
}

func TestPlay_RestartsFromMin(t *testing.T) {
	s := New(edges(1, 2, 3), Options{})
	s = s.Play()
	if !s.Playing || s.Step != 1 || s.Progress != 0 {
		t.Errorf("Play() at max = %+v, want playing at 1", s)
	}
	if s = s.Play(); s.Playing {
		t.Error("second Play() should pause")
	}
}

func TestTick_AdvancesOneStep(t *testing.T) {
	s := New(edges(1, 2, 3), Options{StepDuration: 3 * time.Second}).Reset().Play()

	s = s.Tick(time.Second)
	if s.Step != 1 || s.Progress <= 0 || s.Progress >= 1 {
		t.Fatalf("after 1s: %+v", s)
	}
	s = s.Tick(time.Second).Tick(time.Second)
	if s.Step != 2 || s.Progress != 0 {
		t.Errorf("after 3s: step=%d progress=%v, want 2 and 0", s.Step, s.Progress)
	}
	if !s.Playing {
		t.Error("playback stopped early")
	}
}

func TestTick_ClampsAndStops(t *testing.T) {
	s := New(edges(1, 2), Options{StepDuration: time.Second}).Seek(1).Play()

	s = s.Tick(time.Second)
	if s.Step != 2 || !s.Playing {
		t.Fatalf("after first step: %+v", s)
	}
	s = s.Tick(time.Second)
	if s.Step != 2 || s.Playing || s.Progress != 0 {
		t.Errorf("past max: %+v, want step 2, stopped", s)
	}
}

func TestTick_IgnoredWhilePaused(t *testing.T) {
	s := New(edges(1, 2), Options{}).Reset()
	if got := s.Tick(time.Hour); got != s {
		t.Errorf("Tick() while paused changed state: %+v", got)
	}
}

func TestSeek(t *testing.T) {
	s := New(edges(0, 10), Options{}).Play()
	tests := []struct {
		v    float64
		want int
	}{
		{4.4, 4},
		{4.5, 5},
		{-3, 0},
		{99, 10},
	}
	for _, tt := range tests {
		got := s.Seek(tt.v)
		if got.Step != tt.want || got.Playing {
			t.Errorf("Seek(%v) = step %d playing %v, want %d stopped", tt.v, got.Step, got.Playing, tt.want)
		}
	}
}

func TestReset(t *testing.T) {
	s := New(edges(3, 5), Options{StepDuration: time.Second}).Seek(3).Play().Tick(500 * time.Millisecond).Reset()
	if s.Step != 3 || s.Playing || s.Progress != 0 || !s.Engaged {
		t.Errorf("Reset() = %+v", s)
	}
}

func TestInert(t *testing.T) {
	s := New([]graph.Edge{{ID: "e", Source: "a", Target: "b"}}, Options{})
	if s.Enabled {
		t.Fatal("timeline without ordered edges should be inert")
	}
	if got := s.Play().Seek(3).Reset().Tick(time.Hour); got != s {
		t.Errorf("inert timeline changed: %+v", got)
	}
}

func TestRescope(t *testing.T) {
	s := New(edges(1, 5), Options{}).Seek(4).Play()

	s = s.Rescope(edges(1, 2))
	if s.Step != 2 || s.Max != 2 || !s.Playing || s.Progress != 0 {
		t.Errorf("Rescope() = %+v, want clamped to 2 and still playing", s)
	}

	s = s.Rescope(nil)
	if s.Enabled || s.Playing {
		t.Errorf("Rescope(nil) = %+v, want inert", s)
	}

	s = s.Rescope(edges(6, 8))
	if !s.Enabled || s.Step != 8 {
		t.Errorf("Rescope() from inert = %+v, want step 8", s)
	}
}

func TestHighlightedAndSubtitle(t *testing.T) {
	es := edges(1, 2, 2)
	es[1].Subtitle = "request"
	es[2].Subtitle = "reply"
	s := New(es, Options{}).Seek(2)

	hl := s.Highlighted(es)
	for _, id := range []string{"B", "C", "D"} {
		if !hl[id] {
			t.Errorf("%s not highlighted", id)
		}
	}
	if hl["A"] {
		t.Error("endpoint of past edge highlighted")
	}
	if got := s.ActiveSubtitle(es); got != "request\nreply" {
		t.Errorf("ActiveSubtitle() = %q", got)
	}
}

func TestInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 6).Draw(t, "n")
		orders := make([]int, n)
		for i := range orders {
			orders[i] = rapid.IntRange(0, 9).Draw(t, "order")
		}
		s := New(edges(orders...), Options{StepDuration: time.Second})

		for range rapid.IntRange(0, 40).Draw(t, "ops") {
			switch rapid.IntRange(0, 5).Draw(t, "op") {
			case 0:
				s = s.Play()
			case 1:
				s = s.Pause()
			case 2:
				s = s.Tick(time.Duration(rapid.IntRange(0, 1500).Draw(t, "ms")) * time.Millisecond)
			case 3:
				s = s.Seek(rapid.Float64Range(-5, 15).Draw(t, "v"))
			case 4:
				s = s.Reset()
			case 5:
				m := rapid.IntRange(0, 4).Draw(t, "m")
				next := make([]int, m)
				for i := range next {
					next[i] = rapid.IntRange(0, 9).Draw(t, "order")
				}
				s = s.Rescope(edges(next...))
			}
			if !s.Enabled {
				if s.Playing {
					t.Fatalf("inert timeline is playing: %+v", s)
				}
				continue
			}
			if s.Step < s.Min || s.Step > s.Max {
				t.Fatalf("step %d outside [%d,%d]", s.Step, s.Min, s.Max)
			}
			if s.Progress < 0 || s.Progress >= 1 {
				t.Fatalf("progress %v outside [0,1)", s.Progress)
			}
		}
	})
}
