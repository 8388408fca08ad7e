// Package engine exposes the four entry points a front end drives: establish
// a scene, run a step list over it, clear it and write the status line.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/san-kum/stepviz/internal/scene"
	"github.com/san-kum/stepviz/internal/step"
)

// Engine owns one live scene. Passes are serialized: RenderInitial, Clear and
// RunSteps wait for a running pass to return before touching the scene.
type Engine struct {
	mu        sync.Mutex
	scene     *scene.Scene
	status    step.Status
	pacer     step.Pacer
	log       *slog.Logger
	observers []step.Observer
	complete  string
}

func New(target scene.Target, status step.Status, pacer step.Pacer, layout scene.Layout, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if status == nil {
		if s, ok := target.(step.Status); ok {
			status = s
		} else {
			status = step.StatusFunc(func(string) {})
		}
	}
	if pacer == nil {
		pacer = step.Instant{}
	}
	return &Engine{
		scene:  scene.New(target, layout),
		status: status,
		pacer:  pacer,
		log:    logger,
	}
}

func (e *Engine) AddObserver(o step.Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, o)
}

// SetCompletionMessage sets the status text published when a pass runs off
// the end of its list. Empty keeps the last step's message.
func (e *Engine) SetCompletionMessage(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.complete = text
}

// Scene returns the live scene. Callers must not use it while a pass runs.
func (e *Engine) Scene() *scene.Scene { return e.scene }

func (e *Engine) RenderInitial(kind scene.Kind, data scene.Data) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scene.RenderInitial(kind, data)
	e.log.Debug("scene rendered", "kind", string(kind), "elements", e.scene.ElementCount())
}

// RunSteps runs one pass to completion, early termination or cancellation.
// The extra observers see this pass only, after the registered ones.
func (e *Engine) RunSteps(ctx context.Context, steps []step.Step, extra ...step.Observer) (step.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	observers := append(append([]step.Observer(nil), e.observers...), extra...)
	in := step.NewInterpreter(e.scene, e.status, e.pacer,
		step.WithLogger(e.log),
		step.WithCompletionMessage(e.complete),
		step.WithObserver(func(ev step.Event) {
			for _, o := range observers {
				o(ev)
			}
		}),
	)

	start := time.Now()
	res, err := in.Run(ctx, steps)
	e.log.Info("pass finished",
		"steps", len(steps),
		"visited", res.Visited,
		"outcome", string(res.Outcome),
		"elapsed", time.Since(start).Round(time.Millisecond),
		"err", err,
	)
	return res, err
}

func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scene.Clear()
}

// SetMessage writes the status line directly, outside any pass.
func (e *Engine) SetMessage(text string) {
	e.status.SetMessage(text)
}
