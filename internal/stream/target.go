package stream

import (
	"log/slog"
	"sync"

	"github.com/san-kum/stepviz/internal/scene"
)

// Op names of the messages a Target sends.
const (
	OpCreateNode  = "create-node"
	OpCreateEdge  = "create-edge"
	OpLabel       = "label"
	OpAddClass    = "add-class"
	OpRemoveClass = "remove-class"
	OpRemove      = "remove"
	OpClear       = "clear"
	OpViewport    = "viewport"
	OpMessage     = "message"
	OpEnd         = "end"
)

// Op is one drawing instruction for the browser surface.
type Op struct {
	Op       string          `json:"op"`
	ID       scene.Element   `json:"id,omitempty"`
	Node     *scene.NodeSpec `json:"node,omitempty"`
	Edge     *scene.EdgeSpec `json:"edge,omitempty"`
	Text     string          `json:"text,omitempty"`
	Class    scene.Marker    `json:"class,omitempty"`
	Viewport *scene.Rect     `json:"viewport,omitempty"`
	Outcome  string          `json:"outcome,omitempty"`
	Visited  int             `json:"visited,omitempty"`
}

type writer interface {
	WriteJSON(v any) error
}

// Target is a scene.Target that streams every drawing call as a JSON Op.
// After the first failed write the target goes quiet; Err reports why.
type Target struct {
	mu   sync.Mutex
	w    writer
	log  *slog.Logger
	next scene.Element
	err  error
}

func NewTarget(w writer, logger *slog.Logger) *Target {
	if logger == nil {
		logger = slog.Default()
	}
	return &Target{w: w, log: logger}
}

func (t *Target) send(op Op) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return
	}
	if err := t.w.WriteJSON(op); err != nil {
		t.err = err
		t.log.Warn("stream write failed", "op", op.Op, "err", err)
	}
}

func (t *Target) issue() scene.Element {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	return t.next
}

func (t *Target) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *Target) CreateNode(spec scene.NodeSpec) scene.Element {
	el := t.issue()
	t.send(Op{Op: OpCreateNode, ID: el, Node: &spec})
	return el
}

func (t *Target) CreateEdge(spec scene.EdgeSpec) scene.Element {
	el := t.issue()
	t.send(Op{Op: OpCreateEdge, ID: el, Edge: &spec})
	return el
}

func (t *Target) SetLabel(el scene.Element, text string) {
	t.send(Op{Op: OpLabel, ID: el, Text: text})
}

func (t *Target) AddClass(el scene.Element, m scene.Marker) {
	t.send(Op{Op: OpAddClass, ID: el, Class: m})
}

func (t *Target) RemoveClass(el scene.Element, m scene.Marker) {
	t.send(Op{Op: OpRemoveClass, ID: el, Class: m})
}

func (t *Target) Remove(el scene.Element) {
	t.send(Op{Op: OpRemove, ID: el})
}

func (t *Target) RemoveAll() {
	t.send(Op{Op: OpClear})
}

func (t *Target) SetViewport(r scene.Rect) {
	t.send(Op{Op: OpViewport, Viewport: &r})
}

func (t *Target) SetMessage(text string) {
	t.send(Op{Op: OpMessage, Text: text})
}

func (t *Target) End(outcome string, visited int) {
	t.send(Op{Op: OpEnd, Outcome: outcome, Visited: visited})
}
