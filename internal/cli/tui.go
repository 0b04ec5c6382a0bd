package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/antour/pkg/colony"
	"github.com/matzehuels/antour/pkg/pipeline"
	"github.com/matzehuels/antour/pkg/tsplib"
)

// View styles
var (
	barFullStyle  = lipgloss.NewStyle().Foreground(colorCyan)
	barEmptyStyle = lipgloss.NewStyle().Foreground(colorDim)
	viewDimStyle  = lipgloss.NewStyle().Foreground(colorDim)
)

// recentImprovements bounds the improvement table.
const recentImprovements = 8

// =============================================================================
// Messages
// =============================================================================

type generationMsg colony.Generation

type improvementMsg colony.Improvement

type solveDoneMsg struct {
	result *pipeline.Result
	err    error
}

// programObserver forwards colony events into a running program.
type programObserver struct {
	send func(tea.Msg)
}

func (o programObserver) OnImprovement(i colony.Improvement) { o.send(improvementMsg(i)) }

func (o programObserver) OnGeneration(g colony.Generation) { o.send(generationMsg(g)) }

// =============================================================================
// SolveModel - Live search progress
// =============================================================================

// SolveModel is the bubbletea model behind solve --tui.
type SolveModel struct {
	Name         string
	Total        int
	Generation   int
	Best         float64
	Mean         float64
	Improvements []colony.Improvement
	Width        int

	Result *pipeline.Result
	Err    error

	cancel   context.CancelFunc
	start    time.Time
	done     bool
	stopping bool
}

// NewSolveModel creates a model for a search of total generations.
func NewSolveModel(name string, total int, cancel context.CancelFunc) SolveModel {
	return SolveModel{
		Name:   name,
		Total:  total,
		Width:  40,
		cancel: cancel,
		start:  time.Now(),
	}
}

func (m SolveModel) Init() tea.Cmd {
	return nil
}

func (m SolveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			// The search stops at the next generation and reports back
			// through solveDoneMsg.
			if m.cancel != nil {
				m.cancel()
			}
			m.stopping = true
		}
	case tea.WindowSizeMsg:
		m.Width = max(10, min(60, msg.Width-30))
	case generationMsg:
		m.Generation = msg.Iteration + 1
		m.Best = msg.Best
		m.Mean = msg.Mean
	case improvementMsg:
		m.Best = msg.Length
		m.Improvements = append(m.Improvements, colony.Improvement(msg))
		if len(m.Improvements) > recentImprovements {
			m.Improvements = m.Improvements[len(m.Improvements)-recentImprovements:]
		}
	case solveDoneMsg:
		m.Result = msg.result
		m.Err = msg.err
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m SolveModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("antour") + " " + StyleValue.Render(m.Name) + "\n\n")

	frac := 0.0
	if m.Total > 0 {
		frac = float64(m.Generation) / float64(m.Total)
	}
	b.WriteString(progressBar(frac, m.Width))
	b.WriteString(fmt.Sprintf(" %d/%d\n\n", m.Generation, m.Total))

	best := "-"
	if m.Generation > 0 || len(m.Improvements) > 0 {
		best = tsplib.FormatLength(m.Best)
	}
	b.WriteString(StyleDim.Render("best ") + StyleNumber.Render(best))
	if m.Generation > 0 {
		b.WriteString(StyleDim.Render(fmt.Sprintf(" · mean %.1f", m.Mean)))
	}
	b.WriteString(StyleDim.Render(" · " + time.Since(m.start).Round(100*time.Millisecond).String()))
	b.WriteString("\n\n")

	if len(m.Improvements) > 0 {
		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(viewDimStyle).
			Headers("ITERATION", "ANT", "LENGTH")
		for i := len(m.Improvements) - 1; i >= 0; i-- {
			imp := m.Improvements[i]
			t.Row(fmt.Sprintf("%d", imp.Iteration), fmt.Sprintf("%d", imp.Ant), tsplib.FormatLength(imp.Length))
		}
		b.WriteString(t.Render() + "\n")
	}

	footer := "q quit"
	if m.stopping {
		footer = "stopping..."
	}
	b.WriteString(viewDimStyle.Render(footer) + "\n")
	return b.String()
}

// progressBar renders frac of width cells as filled.
func progressBar(frac float64, width int) string {
	frac = max(0, min(1, frac))
	full := int(frac * float64(width))
	return barFullStyle.Render(strings.Repeat("█", full)) +
		barEmptyStyle.Render(strings.Repeat("░", width-full))
}

// runSolveView runs the search while the program renders its progress.
func runSolveView(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) (*pipeline.Result, error) {
	searchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewSolveModel(opts.Input, opts.Colony.Iterations, cancel), tea.WithContext(ctx))
	opts.Observer = programObserver{send: p.Send}

	finished := make(chan solveDoneMsg, 1)
	go func() {
		result, err := runner.Execute(searchCtx, opts)
		msg := solveDoneMsg{result: result, err: err}
		finished <- msg
		p.Send(msg)
	}()

	final, runErr := p.Run()
	if m, ok := final.(SolveModel); ok && m.done {
		return m.Result, m.Err
	}

	// The program ended before the search did.
	cancel()
	msg := <-finished
	if runErr != nil && msg.err == nil {
		return msg.result, runErr
	}
	return msg.result, msg.err
}
