// Package tui plays scenarios in the terminal, either as an interactive
// bubbletea program or as a plain stream of frames.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/stepviz/internal/engine"
	"github.com/san-kum/stepviz/internal/render"
	"github.com/san-kum/stepviz/internal/scenario"
	"github.com/san-kum/stepviz/internal/scene"
	"github.com/san-kum/stepviz/internal/step"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

type state int

const (
	stateMenu state = iota
	statePlay
)

// Loader fetches a stored scenario by id for the menu.
type Loader func(id string) (*scenario.Scenario, error)

type Options struct {
	Theme  render.Theme
	Layout scene.Layout
	Plot   bool
	Logger *slog.Logger

	// Instant plays every pass without delays; the speed keys still move
	// the clock but nothing waits on it.
	Instant bool
}

type frameMsg struct {
	pass  int
	index int
	view  string
}

type doneMsg struct {
	pass   int
	result step.Result
	err    error
}

// Model is the interactive player. Passes run inside a tea.Cmd; frames are
// rendered on the pass goroutine and delivered through a channel that lives
// as long as the pass.
type Model struct {
	state   state
	entries []scenario.Metadata
	cursor  int
	load    Loader

	eng     *engine.Engine
	canvas  *render.Canvas
	term    render.Terminal
	clock   *step.Clock
	instant bool
	frames  chan frameMsg
	passEnd <-chan struct{}

	pass    int
	current *scenario.Scenario
	cancel  context.CancelFunc
	frame   string
	index   int
	done    bool
	result  step.Result
	err     error
	notice  string
}

func newModel(clock *step.Clock, opts Options) *Model {
	canvas := render.NewCanvas()
	term := render.NewTerminal(opts.Theme)
	term.Plot = opts.Plot
	m := &Model{
		canvas:  canvas,
		term:    term,
		clock:   clock,
		instant: opts.Instant,
		cancel:  func() {},
	}
	var pacer step.Pacer = clock
	if opts.Instant {
		pacer = step.Instant{}
	}
	m.eng = engine.New(canvas, nil, pacer, opts.Layout, opts.Logger)
	m.eng.SetCompletionMessage(step.CompleteMessage)
	return m
}

// NewPlayer returns a model that starts playing sc as soon as it is run.
func NewPlayer(sc *scenario.Scenario, clock *step.Clock, opts Options) *Model {
	m := newModel(clock, opts)
	m.state = statePlay
	m.current = sc
	return m
}

// NewBrowser returns a model that lists stored scenarios and plays the one
// picked with enter.
func NewBrowser(entries []scenario.Metadata, load Loader, clock *step.Clock, opts Options) *Model {
	m := newModel(clock, opts)
	m.state = stateMenu
	m.entries = entries
	m.load = load
	return m
}

func (m *Model) Init() tea.Cmd {
	if m.state == statePlay && m.current != nil {
		return m.start(m.current)
	}
	return nil
}

// start lays out sc and launches a pass over its steps. Any earlier pass must
// already be cancelled.
func (m *Model) start(sc *scenario.Scenario) tea.Cmd {
	m.pass++
	pass := m.pass
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.frames = make(chan frameMsg)
	m.passEnd = ctx.Done()
	m.current = sc
	m.done, m.err, m.result, m.index, m.notice = false, nil, step.Result{}, 0, ""

	m.eng.Clear()
	m.eng.RenderInitial(sc.Kind, sc.Data())
	m.eng.SetMessage("Ready: " + sc.Name)
	m.frame = m.term.Render(m.canvas)

	eng, term, canvas, frames := m.eng, m.term, m.canvas, m.frames
	steps := sc.Steps
	observe := func(ev step.Event) {
		if ctx.Err() != nil {
			return
		}
		idx := ev.Index + 1
		if ev.Index < 0 {
			idx = len(steps)
		}
		msg := frameMsg{pass: pass, index: idx, view: term.Render(canvas)}
		select {
		case frames <- msg:
		case <-ctx.Done():
		}
	}

	run := func() tea.Msg {
		res, err := eng.RunSteps(ctx, steps, observe)
		return doneMsg{pass: pass, result: res, err: err}
	}
	return tea.Batch(run, m.waitFrame())
}

// waitFrame receives the next frame of the current pass. It gives up with a
// nil message once that pass is stopped.
func (m *Model) waitFrame() tea.Cmd {
	frames, end := m.frames, m.passEnd
	return func() tea.Msg {
		select {
		case f := <-frames:
			return f
		case <-end:
			return nil
		}
	}
}

func (m *Model) stop() {
	m.cancel()
	m.cancel = func() {}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state == stateMenu {
			return m.menuKey(msg)
		}
		return m.playKey(msg)
	case frameMsg:
		if msg.pass != m.pass {
			return m, nil
		}
		m.frame = msg.view
		m.index = msg.index
		if m.done {
			return m, nil
		}
		return m, m.waitFrame()
	case doneMsg:
		if msg.pass != m.pass {
			return m, nil
		}
		m.done = true
		m.result = msg.result
		m.err = msg.err
		// releases the waiter left behind by the final frame
		m.stop()
		return m, nil
	}
	return m, nil
}

func (m *Model) menuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.entries) == 0 || m.load == nil {
			return m, nil
		}
		sc, err := m.load(m.entries[m.cursor].ID)
		if err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.state = statePlay
		return m, m.start(sc)
	}
	return m, nil
}

func (m *Model) playKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	speed := m.clock.Speed()
	delta := max((speed.Max()-speed.Min())/10, 1)
	switch msg.String() {
	case "q", "ctrl+c":
		m.stop()
		return m, tea.Quit
	case " ", "p":
		m.clock.TogglePause()
	case "+", "=", "right", "l":
		speed.Adjust(delta)
	case "-", "_", "left", "h":
		speed.Adjust(-delta)
	case "r":
		if m.current == nil {
			return m, nil
		}
		m.stop()
		return m, m.start(m.current)
	case "b", "esc":
		if m.entries == nil {
			return m, nil
		}
		m.stop()
		m.eng.Clear()
		m.state = stateMenu
	}
	return m, nil
}

func (m *Model) View() string {
	if m.state == stateMenu {
		return m.menuView()
	}
	return m.playView()
}

func (m *Model) menuView() string {
	var b strings.Builder
	b.WriteString("\n  " + cyan.Bold(true).Render("stepviz") + dim.Render("  stored scenarios") + "\n\n")
	if len(m.entries) == 0 {
		b.WriteString("  " + dim.Render("nothing stored yet; try `stepviz fetch bubble_sort`") + "\n")
	}
	for i, e := range m.entries {
		cursor, name := "  ", dim.Render(e.Name)
		if i == m.cursor {
			cursor, name = cyan.Render("> "), white.Render(e.Name)
		}
		fmt.Fprintf(&b, "  %s%-28s %s\n", cursor, name,
			dimmer.Render(fmt.Sprintf("%-8s %4d steps  %s", e.Kind, e.Steps, e.Timestamp.Format("2006-01-02 15:04"))))
	}
	if m.notice != "" {
		b.WriteString("\n  " + magenta.Render(m.notice) + "\n")
	}
	b.WriteString("\n  " + dimmer.Render("↑/↓ select · enter play · q quit") + "\n")
	return b.String()
}

func (m *Model) playView() string {
	var b strings.Builder
	name := ""
	total := 0
	if m.current != nil {
		name = m.current.Name
		total = len(m.current.Steps)
	}
	b.WriteString("\n  " + cyan.Bold(true).Render(name) + dim.Render(fmt.Sprintf("  step %d/%d", m.index, total)) + "\n\n")
	for _, line := range strings.Split(m.frame, "\n") {
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("\n  " + m.statusLine() + "\n")

	help := "space pause · +/- speed · r restart · q quit"
	if m.entries != nil {
		help = "space pause · +/- speed · r restart · b back · q quit"
	}
	b.WriteString("  " + dimmer.Render(help) + "\n")
	return b.String()
}

func (m *Model) statusLine() string {
	speed := m.clock.Speed()
	line := dim.Render("speed ") + white.Render(fmt.Sprint(speed.Value())) +
		dimmer.Render(fmt.Sprintf(" [%d-%d]", speed.Min(), speed.Max()))
	if m.instant {
		line = dim.Render("speed ") + white.Render("instant")
	}
	switch {
	case m.err != nil:
		line += "  " + yellow.Render("stopped: "+m.err.Error())
	case m.done:
		line += "  " + green.Render(string(m.result.Outcome))
	case m.clock.Paused():
		line += "  " + yellow.Render("paused")
	}
	return line
}

// Run drives m on the terminal until the user quits.
func Run(m *Model) error {
	defer m.stop()
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
