// Package export writes passes and sweeps to files: a numbered SVG per
// suspension point, a JSON trace of the pass and SVG curves.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/san-kum/stepviz/internal/render"
	"github.com/san-kum/stepviz/internal/scene"
	"github.com/san-kum/stepviz/internal/step"
)

// Frame is one trace entry, taken after a step was applied.
type Frame struct {
	Index    int            `json:"index"`
	Point    string         `json:"point"`
	Action   string         `json:"action,omitempty"`
	Message  string         `json:"message"`
	Elements int            `json:"elements"`
	Markers  map[string]int `json:"markers,omitempty"`
	File     string         `json:"file,omitempty"`
}

type Trace struct {
	Scenario string  `json:"scenario"`
	Kind     string  `json:"kind"`
	Steps    int     `json:"steps"`
	Outcome  string  `json:"outcome"`
	Visited  int     `json:"visited"`
	Frames   []Frame `json:"frames"`
}

// Recorder observes a pass over a Canvas. With Dir set it also writes one
// SVG per frame into Dir.
type Recorder struct {
	canvas *render.Canvas
	theme  render.Theme
	dir    string
	trace  Trace
	err    error
}

func NewRecorder(canvas *render.Canvas, theme render.Theme, dir string) *Recorder {
	return &Recorder{canvas: canvas, theme: theme, dir: dir}
}

// Begin starts a new trace and records the initial scene as frame 0.
func (r *Recorder) Begin(name string, kind scene.Kind, steps int) error {
	r.trace = Trace{Scenario: name, Kind: string(kind), Steps: steps}
	r.err = nil
	if r.dir != "" {
		if err := os.MkdirAll(r.dir, 0755); err != nil {
			return err
		}
	}
	r.capture(0, "initial", nil)
	return r.err
}

// Observe is a step.Observer.
func (r *Recorder) Observe(ev step.Event) {
	idx := ev.Index + 1
	if ev.Index < 0 {
		idx = r.trace.Steps
	}
	r.capture(idx, ev.Point.String(), ev.Step)
}

func (r *Recorder) capture(index int, point string, st *step.Step) {
	f := Frame{
		Index:    index,
		Point:    point,
		Message:  r.canvas.Status(),
		Elements: r.canvas.Len(),
		Markers:  make(map[string]int),
	}
	if st != nil {
		f.Action = string(st.Action)
	}
	for _, p := range r.canvas.Primitives() {
		for m, on := range p.Markers {
			if on {
				f.Markers[string(m)]++
			}
		}
	}

	if r.dir != "" && r.err == nil {
		f.File = fmt.Sprintf("frame_%04d.svg", len(r.trace.Frames))
		path := filepath.Join(r.dir, f.File)
		if err := os.WriteFile(path, []byte(render.SVG(r.canvas, r.theme)), 0644); err != nil {
			r.err = err
		}
	}
	r.trace.Frames = append(r.trace.Frames, f)
}

// Finish stamps the pass result on the trace and returns it along with the
// first write error, if any.
func (r *Recorder) Finish(res step.Result) (*Trace, error) {
	r.trace.Outcome = string(res.Outcome)
	r.trace.Visited = res.Visited
	t := r.trace
	return &t, r.err
}

// MarkerTotals sums marker counts over every frame, sorted by name.
func (t *Trace) MarkerTotals() []string {
	totals := make(map[string]int)
	for _, f := range t.Frames {
		for m, n := range f.Markers {
			totals[m] += n
		}
	}
	out := make([]string, 0, len(totals))
	for m, n := range totals {
		out = append(out, fmt.Sprintf("%s=%d", m, n))
	}
	sort.Strings(out)
	return out
}

func WriteTrace(path string, t *Trace) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(t)
}
