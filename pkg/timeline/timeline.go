// Package timeline implements the step cursor that animates ordered edges.
//
// Edges carrying an order value are classified against the cursor: orders
// below the step are past, equal is active, above is future. [State] is a
// value type and every operation returns the next state, so callers swap
// states atomically and never observe a half-applied transition.
//
// Playback is driven from outside: the owner calls [State.Tick] with the time
// elapsed since the previous frame. The package never reads the wall clock.
package timeline

import (
	"math"
	"strings"
	"time"

	"github.com/matzehuels/graphilizer/pkg/graph"
)

// DefaultStepDuration is how long playback dwells on each step.
const DefaultStepDuration = 3 * time.Second

// Options configures a new timeline.
type Options struct {
	// StepDuration is the playback time per step. Zero means
	// DefaultStepDuration.
	StepDuration time.Duration
}

// State is the timeline cursor for one scope of edges.
//
// A state whose scope holds no ordered edge is inert: Enabled is false and
// every operation returns it unchanged.
type State struct {
	Step     int     `json:"step"`
	Playing  bool    `json:"playing"`
	Progress float64 `json:"progress"`
	Min      int     `json:"min"`
	Max      int     `json:"max"`
	Enabled  bool    `json:"enabled"`

	// Engaged is set by the first Play, Seek or Reset. Until then edges are
	// not classified and the plain graph is shown.
	Engaged bool `json:"engaged"`

	StepDuration time.Duration `json:"stepDuration"`

	elapsed time.Duration
}

// Bounds returns the smallest and largest order among edges, and false when
// no edge is ordered.
func Bounds(edges []graph.Edge) (lo, hi int, ok bool) {
	for _, e := range edges {
		if e.Order == nil {
			continue
		}
		o := *e.Order
		if !ok {
			lo, hi, ok = o, o, true
			continue
		}
		lo = min(lo, o)
		hi = max(hi, o)
	}
	return lo, hi, ok
}

// New creates the timeline for the given scope. The cursor starts at the
// largest order, so an engaged timeline initially shows every edge.
func New(edges []graph.Edge, opts Options) State {
	d := opts.StepDuration
	if d <= 0 {
		d = DefaultStepDuration
	}
	s := State{StepDuration: d}
	lo, hi, ok := Bounds(edges)
	if !ok {
		return s
	}
	s.Min, s.Max, s.Step, s.Enabled = lo, hi, hi, true
	return s
}

// Classify places an order relative to step.
func Classify(order, step int) graph.TimelineState {
	switch {
	case order > step:
		return graph.TimelineFuture
	case order == step:
		return graph.TimelineActive
	default:
		return graph.TimelinePast
	}
}

// Classify returns the state of e under the current cursor. Unordered edges,
// and all edges of an inert or not yet engaged timeline, are TimelineNone.
func (s State) Classify(e graph.Edge) graph.TimelineState {
	if !s.Enabled || !s.Engaged || e.Order == nil {
		return graph.TimelineNone
	}
	return Classify(*e.Order, s.Step)
}

// Play toggles playback. Starting at or past the last step restarts from
// the first one.
func (s State) Play() State {
	if !s.Enabled {
		return s
	}
	if s.Playing {
		return s.Pause()
	}
	if s.Step >= s.Max {
		s.Step = s.Min
		s.elapsed, s.Progress = 0, 0
	}
	s.Playing, s.Engaged = true, true
	return s
}

// Pause stops playback and keeps the cursor where it is.
func (s State) Pause() State {
	if !s.Enabled {
		return s
	}
	s.Playing = false
	return s
}

// Tick advances playback by dt. Once a full step duration has accumulated
// the cursor moves one step and progress restarts; moving past the last step
// clamps the cursor and stops playback.
func (s State) Tick(dt time.Duration) State {
	if !s.Enabled || !s.Playing || dt <= 0 {
		return s
	}
	s.elapsed += dt
	if s.elapsed < s.StepDuration {
		s.Progress = float64(s.elapsed) / float64(s.StepDuration)
		return s
	}
	s.elapsed, s.Progress = 0, 0
	s.Step++
	if s.Step > s.Max {
		s.Step = s.Max
		s.Playing = false
	}
	return s
}

// Seek stops playback and moves the cursor to v rounded half up, clamped to
// the scope's bounds.
func (s State) Seek(v float64) State {
	if !s.Enabled {
		return s
	}
	step := s.Max
	if !math.IsNaN(v) {
		step = int(max(float64(s.Min), min(float64(s.Max), math.Floor(v+0.5))))
	}
	s.Step = step
	s.Playing = false
	s.elapsed, s.Progress = 0, 0
	s.Engaged = true
	return s
}

// Reset stops playback and rewinds to the first step.
func (s State) Reset() State {
	if !s.Enabled {
		return s
	}
	s.Step = s.Min
	s.Playing = false
	s.elapsed, s.Progress = 0, 0
	s.Engaged = true
	return s
}

// Rescope recomputes the bounds for a new set of edges in scope. The cursor
// is clamped into the new bounds and progress restarts; playback continues
// unless the new scope has no ordered edges.
func (s State) Rescope(edges []graph.Edge) State {
	s.elapsed, s.Progress = 0, 0
	lo, hi, ok := Bounds(edges)
	if !ok {
		s.Min, s.Max, s.Step = 0, 0, 0
		s.Enabled, s.Playing = false, false
		return s
	}
	if !s.Enabled {
		s.Step = hi
	}
	s.Min, s.Max, s.Enabled = lo, hi, true
	s.Step = max(lo, min(hi, s.Step))
	return s
}

// Annotate returns a copy of edges with TimelineState set.
func (s State) Annotate(edges []graph.Edge) []graph.Edge {
	out := make([]graph.Edge, len(edges))
	for i, e := range edges {
		e.TimelineState = s.Classify(e)
		out[i] = e
	}
	return out
}

// Highlighted returns the endpoints of every active edge.
func (s State) Highlighted(edges []graph.Edge) map[string]bool {
	hl := map[string]bool{}
	for _, e := range edges {
		if s.Classify(e) == graph.TimelineActive {
			hl[e.Source] = true
			hl[e.Target] = true
		}
	}
	return hl
}

// ActiveSubtitle joins the non-empty subtitles of the active edges with
// newlines, in edge order.
func (s State) ActiveSubtitle(edges []graph.Edge) string {
	var lines []string
	for _, e := range edges {
		if e.Subtitle != "" && s.Classify(e) == graph.TimelineActive {
			lines = append(lines, e.Subtitle)
		}
	}
	return strings.Join(lines, "\n")
}
