package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphilizer/pkg/graph"
	"github.com/matzehuels/graphilizer/pkg/pipeline"
	"github.com/matzehuels/graphilizer/pkg/view"
)

// frameInterval is how often the player advances playback.
const frameInterval = 100 * time.Millisecond

// playCommand creates the play command for stepping through the timeline.
func (c *CLI) playCommand() *cobra.Command {
	var (
		flags        viewFlags
		stepDuration time.Duration
	)

	cmd := &cobra.Command{
		Use:   "play [graph file]",
		Short: "Step through the edge timeline interactively",
		Long: `Play the edge timeline of a graph in the terminal.

Edges with an "order" form the timeline: at each step the edges of that
order are active, earlier ones are past and later ones future.

Keys: space play/pause, ←/→ step, r reset, q quit.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: graphFileCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.options(args[0], flags, false)
			if stepDuration > 0 {
				opts.StepDuration = stepDuration
			}
			return c.runPlay(cmd.Context(), opts, flags.noCache)
		},
	}

	cmd.Flags().DurationVar(&stepDuration, "step-duration", 0, "playback time per step (default from config)")
	flags.register(cmd, true)

	return cmd
}

func (c *CLI) runPlay(ctx context.Context, opts pipeline.Options, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	g, rep, err := pipeline.Load(ctx, opts)
	if err != nil {
		return err
	}
	lay, _, _, err := runner.LayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		return err
	}
	opts.SetViewDefaults()
	coord := pipeline.BuildView(g, rep, lay, opts)
	if !coord.Timeline().Enabled {
		printWarning("No ordered edges in %s, nothing to play", opts.Path)
		return nil
	}

	p := tea.NewProgram(newPlayer(coord), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}

// =============================================================================
// Player model
// =============================================================================

type frameMsg time.Time

func nextFrame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// playerModel drives a coordinator's timeline from frame ticks and keys.
type playerModel struct {
	view *view.Coordinator
	snap *view.Snapshot
	last time.Time
}

func newPlayer(c *view.Coordinator) playerModel {
	return playerModel{view: c, snap: c.Snapshot(), last: time.Now()}
}

func (m playerModel) Init() tea.Cmd { return nextFrame() }

func (m playerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		tl := m.snap.Timeline
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ", "p":
			m.snap = m.view.Play()
			m.last = time.Now()
		case "left", "h":
			m.snap = m.view.Seek(float64(tl.Step - 1))
		case "right", "l":
			m.snap = m.view.Seek(float64(tl.Step + 1))
		case "home":
			m.snap = m.view.Seek(float64(tl.Min))
		case "end":
			m.snap = m.view.Seek(float64(tl.Max))
		case "r":
			m.snap = m.view.Reset()
		}
	case frameMsg:
		now := time.Time(msg)
		if m.snap.Timeline.Playing {
			m.snap = m.view.Tick(now.Sub(m.last))
		}
		m.last = now
		return m, nextFrame()
	}
	return m, nil
}

var (
	styleActiveEdge = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	stylePastEdge   = lipgloss.NewStyle().Foreground(colorGray)
	styleFutureEdge = lipgloss.NewStyle().Foreground(colorDim)
)

func (m playerModel) View() string {
	tl := m.snap.Timeline
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Timeline"))
	b.WriteString("\n\n")
	b.WriteString(progressBar(tl.Step, tl.Min, tl.Max, 40))
	b.WriteString(" ")
	b.WriteString(StyleNumber.Render(fmt.Sprintf("step %d/%d", tl.Step, tl.Max)))
	if tl.Playing {
		b.WriteString(StyleSuccess.Render("  ▶ playing"))
	} else {
		b.WriteString(StyleDim.Render("  ❚❚ paused"))
	}
	b.WriteString("\n")
	if m.snap.Subtitle != "" {
		b.WriteString("\n" + StyleValue.Render(m.snap.Subtitle) + "\n")
	}
	b.WriteString("\n")

	for _, e := range m.snap.Edges {
		if e.Order == nil {
			continue
		}
		line := fmt.Sprintf("%3d  %s %s %s", *e.Order, e.Source, iconArrow, e.Target)
		if e.Label != "" {
			line += "  " + e.Label
		}
		switch e.TimelineState {
		case graph.TimelineActive:
			b.WriteString(styleActiveEdge.Render(line))
		case graph.TimelinePast:
			b.WriteString(stylePastEdge.Render(line))
		default:
			b.WriteString(styleFutureEdge.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(StyleDim.Render("space play/pause  ←/→ step  r reset  q quit"))
	b.WriteString("\n")
	return b.String()
}

// progressBar draws step's position within [lo, hi].
func progressBar(step, lo, hi, width int) string {
	filled := width
	if hi > lo {
		filled = (step - lo) * width / (hi - lo)
	}
	filled = min(max(filled, 0), width)
	return StyleHighlight.Render(strings.Repeat("█", filled)) + StyleDim.Render(strings.Repeat("░", width-filled))
}
