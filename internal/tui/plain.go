package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/stepviz/internal/engine"
	"github.com/san-kum/stepviz/internal/render"
	"github.com/san-kum/stepviz/internal/scenario"
	"github.com/san-kum/stepviz/internal/step"
)

const (
	clearScreen = "\033[H\033[2J"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
	rule        = 72
)

// Plain writes one frame per suspension point to w without taking over the
// terminal. With Redraw set every frame replaces the previous one.
type Plain struct {
	W      io.Writer
	Redraw bool
	Opts   Options
}

func (p Plain) frame(title string, index, total int, body string) string {
	var b strings.Builder
	if p.Redraw {
		b.WriteString(clearScreen)
	}
	fmt.Fprintf(&b, "  %s  step %d/%d\n", title, index, total)
	b.WriteString("  " + strings.Repeat("-", rule) + "\n")
	for _, line := range strings.Split(body, "\n") {
		b.WriteString("  " + line + "\n")
	}
	return b.String()
}

// Play runs one pass over sc paced by pacer, or without delays when
// Opts.Instant is set, and returns its result.
func (p Plain) Play(ctx context.Context, sc *scenario.Scenario, pacer step.Pacer) (step.Result, error) {
	if p.Opts.Instant {
		pacer = step.Instant{}
	}
	canvas := render.NewCanvas()
	term := render.NewTerminal(p.Opts.Theme)
	term.Plot = p.Opts.Plot
	eng := engine.New(canvas, nil, pacer, p.Opts.Layout, p.Opts.Logger)
	eng.SetCompletionMessage(step.CompleteMessage)

	total := len(sc.Steps)
	var werr error
	write := func(s string) {
		if werr == nil {
			_, werr = io.WriteString(p.W, s)
		}
	}

	if p.Redraw {
		write(hideCursor)
		defer io.WriteString(p.W, showCursor)
	}
	eng.RenderInitial(sc.Kind, sc.Data())
	eng.SetMessage("Ready: " + sc.Name)
	write(p.frame(sc.Name, 0, total, term.Render(canvas)))

	res, err := eng.RunSteps(ctx, sc.Steps, func(ev step.Event) {
		idx := ev.Index + 1
		if ev.Index < 0 {
			idx = total
		}
		write(p.frame(sc.Name, idx, total, term.Render(canvas)))
	})
	if err != nil {
		return res, err
	}
	return res, werr
}
