package step

import (
	"context"
	"log/slog"

	"github.com/san-kum/stepviz/internal/scene"
)

// CompleteMessage is the completion text the interactive front ends publish
// when a pass runs off the end of its list.
const CompleteMessage = "Animation complete."

// Status is the one-line message surface a pass writes to.
type Status interface {
	SetMessage(text string)
}

// StatusFunc adapts a function to Status.
type StatusFunc func(string)

func (f StatusFunc) SetMessage(text string) { f(text) }

type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeFound     Outcome = "found"
	OutcomeFailed    Outcome = "failed"
)

// Result summarizes a finished pass.
type Result struct {
	// Visited counts the steps that were dispatched.
	Visited int
	Outcome Outcome
	// LastMessage is the message of the last dispatched step.
	LastMessage string
}

// Event is reported to the observer after a step has been applied and before
// the pass suspends. Index is -1 for the final PointEnd event.
type Event struct {
	Index int
	Step  *Step
	Point SuspendPoint
}

type Observer func(Event)

type Option func(*Interpreter)

func WithObserver(fn Observer) Option {
	return func(in *Interpreter) { in.observe = fn }
}

// WithCompletionMessage publishes text once the list is exhausted. Without it
// the status line keeps the last step's message.
func WithCompletionMessage(text string) Option {
	return func(in *Interpreter) { in.completion = text }
}

func WithLogger(l *slog.Logger) Option {
	return func(in *Interpreter) {
		if l != nil {
			in.log = l
		}
	}
}

// Interpreter drives one pass over a step list against a scene. It is not
// safe for concurrent use; one pass runs at a time per scene.
type Interpreter struct {
	scene   *scene.Scene
	status  Status
	pacer   Pacer
	observe Observer
	log     *slog.Logger

	completion string

	// flash holds elements marked found by a tree insert; they are
	// unmarked when the next step starts.
	flash []scene.Element
}

func NewInterpreter(sc *scene.Scene, status Status, pacer Pacer, opts ...Option) *Interpreter {
	if status == nil {
		status = StatusFunc(func(string) {})
	}
	if pacer == nil {
		pacer = Instant{}
	}
	in := &Interpreter{
		scene:  sc,
		status: status,
		pacer:  pacer,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Run dispatches steps in order. It stops early on an error or found step and
// otherwise runs to the end of the list. The only error returned is the
// context's, when it is cancelled at a suspension point.
func (in *Interpreter) Run(ctx context.Context, steps []Step) (Result, error) {
	var res Result
	in.flash = nil

	for i := range steps {
		st := &steps[i]

		in.scene.ClearTransient()
		for _, el := range in.flash {
			in.scene.Unmark(el, scene.MarkFound)
		}
		in.flash = nil

		in.status.SetMessage(st.Message)
		res.Visited++
		res.LastMessage = st.Message

		switch st.Action {
		case ActionError:
			res.Outcome = OutcomeFailed
			in.notify(i, st, PointEnd)
			return res, nil

		case ActionSwap:
			if done, err := in.swap(ctx, i, st); done {
				return res, err
			}

		case ActionFound:
			in.markIndices(st.Indices, scene.MarkFound)
			in.notify(i, st, PointFound)
			if err := in.pacer.Wait(ctx, PointFound); err != nil {
				return res, err
			}
			res.Outcome = OutcomeFound
			return res, nil

		default:
			in.apply(st)
		}

		in.notify(i, st, PointStep)
		if err := in.pacer.Wait(ctx, PointStep); err != nil {
			return res, err
		}
	}

	if in.completion != "" {
		in.status.SetMessage(in.completion)
	}
	res.Outcome = OutcomeCompleted
	in.notify(-1, nil, PointEnd)
	return res, nil
}

func (in *Interpreter) notify(i int, st *Step, p SuspendPoint) {
	if in.observe != nil {
		in.observe(Event{Index: i, Step: st, Point: p})
	}
}

// swap marks both cells, suspends, then exchanges their labels. done is true
// when the pass must stop.
func (in *Interpreter) swap(ctx context.Context, i int, st *Step) (done bool, err error) {
	if len(st.Indices) < 2 {
		return false, nil
	}
	a, okA := in.scene.Node(scene.IndexID(st.Indices[0]))
	b, okB := in.scene.Node(scene.IndexID(st.Indices[1]))
	if !okA || !okB {
		return false, nil
	}
	in.scene.Mark(a, scene.MarkComparing)
	in.scene.Mark(b, scene.MarkComparing)
	in.notify(i, st, PointSwap)
	if err := in.pacer.Wait(ctx, PointSwap); err != nil {
		return true, err
	}
	in.scene.SwapLabels(a, b)
	return false, nil
}

func (in *Interpreter) apply(st *Step) {
	sc := in.scene
	switch st.Action {
	case ActionComplete:

	case ActionCompare:
		if len(st.Indices) == 0 && !st.Value.IsZero() {
			// Tree builds compare against a node value rather than an index.
			in.markNode(st.Value, scene.MarkComparing)
			return
		}
		in.markIndices(st.Indices, scene.MarkComparing)
	case ActionSortedElement:
		in.markIndices(st.Indices, scene.MarkSorted)
	case ActionHighlightMin:
		in.markIndices(st.Indices, scene.MarkMin)
	case ActionEliminate:
		if len(st.Range) < 2 {
			return
		}
		hi := min(st.Range[1], sc.ElementCount()-1)
		for i := max(st.Range[0], 0); i <= hi; i++ {
			el, ok := sc.Node(scene.IndexID(i))
			if !ok {
				continue
			}
			sc.Mark(el, scene.MarkFaded)
		}

	case ActionEnqueue, ActionDequeue:
		sc.DrawSideBuffer(scene.BufferQueue, st.sideBuffer())
		in.markNode(st.Node, scene.MarkVisiting)
	case ActionPush, ActionPop:
		sc.DrawSideBuffer(scene.BufferStack, st.sideBuffer())
		in.markNode(st.Node, scene.MarkVisiting)
	case ActionVisitNode:
		if el, ok := sc.Node(st.Node); ok {
			sc.Unmark(el, scene.MarkVisiting)
			sc.Mark(el, scene.MarkVisited)
		}
	case ActionExploreEdge:
		if el, ok := sc.Link(st.From, st.To); ok {
			sc.Mark(el, scene.MarkExploring)
		}
	case ActionNeighborVisited, ActionSkipVisited:
		in.markNode(st.Node, scene.MarkFaded)

	case ActionInsert:
		sc.InsertNode(st.Value, st.Parent, st.Direction)
		if el, ok := sc.Node(st.Value); ok && !sc.HasMarker(el, scene.MarkFound) {
			sc.Mark(el, scene.MarkFound)
			in.flash = append(in.flash, el)
		}
	case ActionTraverse:
		in.markNode(st.From, scene.MarkComparing)

	case ActionInitDistances:
		for _, id := range sc.NodeIDs() {
			el, ok := sc.Distance(id)
			if !ok {
				continue
			}
			d, set := st.Distances[id]
			if !set {
				d = Inf()
			}
			sc.SetLabel(el, d.String())
		}
	case ActionUpdateDistance:
		if el, ok := sc.Distance(st.Node); ok {
			sc.SetLabel(el, st.NewDist.String())
			sc.Mark(el, scene.MarkUpdated)
		}
		in.markNode(st.Node, scene.MarkVisiting)
	case ActionHighlightPath:
		for i, id := range st.Path {
			in.markNode(id, scene.MarkPathNode)
			if i+1 < len(st.Path) {
				if el, ok := sc.Link(id, st.Path[i+1]); ok {
					sc.Mark(el, scene.MarkPathLink)
				}
			}
		}

	case ActionInitTable:
		sc.BuildTable(st.Rows, st.Cols, st.Weights, st.Values)
	case ActionHighlightCell:
		in.markCell(st.Cell, scene.MarkHighlight)
	case ActionCopyAbove:
		in.markCell(st.FromCell, scene.MarkReferenced)
		in.setCell(st.ToCell, st.Value)
	case ActionCompareOptions:
		if st.OptionWithout != nil {
			in.markCell(st.OptionWithout.Cell, scene.MarkReferenced)
		}
		if st.OptionWith != nil {
			in.markCell(st.OptionWith.Cell, scene.MarkReferenced)
		}
		in.setCell(st.Cell, st.Result)

	default:
		in.log.Debug("unhandled action", "action", string(st.Action))
	}
}

func (in *Interpreter) markIndices(indices []int, m scene.Marker) {
	for _, i := range indices {
		in.markNode(scene.IndexID(i), m)
	}
}

func (in *Interpreter) markNode(id scene.ID, m scene.Marker) {
	if el, ok := in.scene.Node(id); ok {
		in.scene.Mark(el, m)
	}
}

func (in *Interpreter) markCell(ref CellRef, m scene.Marker) {
	row, col, ok := ref.Coords()
	if !ok {
		return
	}
	if el, ok := in.scene.Cell(row, col); ok {
		in.scene.Mark(el, m)
	}
}

func (in *Interpreter) setCell(ref CellRef, v scene.ID) {
	row, col, ok := ref.Coords()
	if !ok {
		return
	}
	if el, ok := in.scene.Cell(row, col); ok {
		in.scene.SetLabel(el, string(v))
	}
}
