package step_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/stepviz/internal/render"
	"github.com/san-kum/stepviz/internal/scene"
	"github.com/san-kum/stepviz/internal/step"
)

// recorder is a Pacer that never blocks and remembers where it was asked to wait.
type recorder struct {
	points []step.SuspendPoint
	cancel context.CancelFunc
	after  int
}

func (r *recorder) Wait(ctx context.Context, p step.SuspendPoint) error {
	r.points = append(r.points, p)
	if r.cancel != nil && len(r.points) == r.after {
		r.cancel()
	}
	return ctx.Err()
}

func ids(vs ...string) []scene.ID {
	out := make([]scene.ID, len(vs))
	for i, v := range vs {
		out[i] = scene.ID(v)
	}
	return out
}

var _ = Describe("Interpreter", func() {
	var (
		canvas *render.Canvas
		sc     *scene.Scene
		pacer  *recorder
		seen   []int
		interp *step.Interpreter
	)

	labelAt := func(i int) string {
		el, ok := sc.Node(scene.IndexID(i))
		Expect(ok).To(BeTrue())
		return sc.Label(el)
	}
	markedAt := func(i int, m scene.Marker) bool {
		el, ok := sc.Node(scene.IndexID(i))
		Expect(ok).To(BeTrue())
		return sc.HasMarker(el, m)
	}
	nodeMarked := func(id string, m scene.Marker) bool {
		el, ok := sc.Node(scene.ID(id))
		Expect(ok).To(BeTrue())
		return sc.HasMarker(el, m)
	}

	BeforeEach(func() {
		canvas = render.NewCanvas()
		sc = scene.New(canvas, scene.DefaultLayout())
		pacer = &recorder{}
		seen = nil
		interp = step.NewInterpreter(sc, canvas, pacer, step.WithObserver(func(ev step.Event) {
			if ev.Index >= 0 && ev.Point != step.PointSwap {
				seen = append(seen, ev.Index)
			}
		}))
	})

	Describe("array steps", func() {
		BeforeEach(func() {
			sc.RenderInitial(scene.KindArray, scene.Data{Array: ids("5", "3", "8")})
		})

		It("visits every step once and in order", func() {
			steps := []step.Step{
				{Action: step.ActionCompare, Message: "compare 0 1", Indices: []int{0, 1}},
				{Action: step.ActionHighlightMin, Message: "min", Indices: []int{1}},
				{Action: step.ActionSortedElement, Message: "sorted", Indices: []int{2}},
				{Action: step.ActionComplete, Message: "done"},
			}
			res, err := interp.Run(context.Background(), steps)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Visited).To(Equal(4))
			Expect(res.Outcome).To(Equal(step.OutcomeCompleted))
			Expect(res.LastMessage).To(Equal("done"))
			Expect(seen).To(Equal([]int{0, 1, 2, 3}))
			Expect(pacer.points).To(HaveLen(4))
			Expect(canvas.Status()).To(Equal("done"))
		})

		It("publishes a completion message when asked to", func() {
			interp = step.NewInterpreter(sc, canvas, step.Instant{}, step.WithCompletionMessage(step.CompleteMessage))
			_, err := interp.Run(context.Background(), []step.Step{{Action: step.ActionCompare, Message: "c", Indices: []int{0, 1}}})
			Expect(err).NotTo(HaveOccurred())
			Expect(canvas.Status()).To(Equal(step.CompleteMessage))
		})

		It("reads a speed change at the next suspension point", func() {
			speed, err := step.NewSpeed(0, 10000, 0)
			Expect(err).NotTo(HaveOccurred())
			clock := step.NewClock(speed)
			var delays []time.Duration
			interp = step.NewInterpreter(sc, canvas, clock, step.WithObserver(func(ev step.Event) {
				if ev.Index == 0 {
					delays = append(delays, speed.Delay())
					speed.Set(speed.Max())
					delays = append(delays, speed.Delay())
				}
			}))

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			steps := []step.Step{
				{Action: step.ActionCompare, Indices: []int{0, 1}},
				{Action: step.ActionCompare, Indices: []int{1, 2}},
				{Action: step.ActionCompare, Indices: []int{0, 2}},
			}
			begin := time.Now()
			res, err := interp.Run(ctx, steps)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Visited).To(Equal(3))
			Expect(delays).To(Equal([]time.Duration{10 * time.Second, 0}))
			// the pass started at a ten second delay per step
			Expect(time.Since(begin)).To(BeNumerically("<", 2*time.Second))
		})

		It("swaps displayed labels and leaves the identity maps alone", func() {
			first, _ := sc.Node(scene.IndexID(0))
			steps := []step.Step{{Action: step.ActionSwap, Message: "swap", Indices: []int{0, 1}}}

			_, err := interp.Run(context.Background(), steps)
			Expect(err).NotTo(HaveOccurred())
			Expect([]string{labelAt(0), labelAt(1), labelAt(2)}).To(Equal([]string{"3", "5", "8"}))
			again, _ := sc.Node(scene.IndexID(0))
			Expect(again).To(Equal(first))
			Expect(pacer.points).To(Equal([]step.SuspendPoint{step.PointSwap, step.PointStep}))
		})

		It("clears transient markers before the next step", func() {
			steps := []step.Step{
				{Action: step.ActionCompare, Indices: []int{0}},
				{Action: step.ActionSortedElement, Indices: []int{1}},
			}
			_, err := interp.Run(context.Background(), steps)
			Expect(err).NotTo(HaveOccurred())
			Expect(markedAt(0, scene.MarkComparing)).To(BeFalse())
			Expect(markedAt(1, scene.MarkSorted)).To(BeTrue())
		})

		It("stops at found and never runs the trailing steps", func() {
			steps := []step.Step{
				{Action: step.ActionCompare, Message: "look", Indices: []int{1}},
				{Action: step.ActionFound, Message: "found it", Indices: []int{2}},
				{Action: step.ActionCompare, Message: "unreachable", Indices: []int{9}},
			}
			res, err := interp.Run(context.Background(), steps)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Outcome).To(Equal(step.OutcomeFound))
			Expect(res.Visited).To(Equal(2))
			Expect(markedAt(2, scene.MarkFound)).To(BeTrue())
			Expect(canvas.Status()).To(Equal("found it"))
			Expect(pacer.points).To(Equal([]step.SuspendPoint{step.PointStep, step.PointFound}))
		})

		It("publishes the error message verbatim and terminates", func() {
			steps := []step.Step{
				{Action: step.ActionError, Message: "Error: Binary Search requires a sorted array!"},
				{Action: step.ActionCompare, Indices: []int{0}},
			}
			res, err := interp.Run(context.Background(), steps)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Outcome).To(Equal(step.OutcomeFailed))
			Expect(res.Visited).To(Equal(1))
			Expect(canvas.Status()).To(Equal("Error: Binary Search requires a sorted array!"))
			Expect(res.LastMessage).To(Equal("Error: Binary Search requires a sorted array!"))
			Expect(pacer.points).To(BeEmpty())
			Expect(markedAt(0, scene.MarkComparing)).To(BeFalse())
		})

		It("fades an inclusive range and clamps it to the array", func() {
			steps := []step.Step{{Action: step.ActionEliminate, Range: []int{1, 40}}}
			_, err := interp.Run(context.Background(), steps)
			Expect(err).NotTo(HaveOccurred())
			Expect(markedAt(0, scene.MarkFaded)).To(BeFalse())
			Expect(markedAt(1, scene.MarkFaded)).To(BeTrue())
			Expect(markedAt(2, scene.MarkFaded)).To(BeTrue())
		})

		It("ignores indices that are not on screen", func() {
			before := canvas.Primitives()
			steps := []step.Step{
				{Action: step.ActionCompare, Indices: []int{7}},
				{Action: step.ActionSwap, Indices: []int{0, 7}},
			}
			_, err := interp.Run(context.Background(), steps)
			Expect(err).NotTo(HaveOccurred())
			Expect(canvas.Primitives()).To(Equal(before))
		})

		It("paces over unknown actions", func() {
			steps := []step.Step{{Action: "move_disk", Message: "disk 1 to C"}}
			res, err := interp.Run(context.Background(), steps)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.LastMessage).To(Equal("disk 1 to C"))
			Expect(pacer.points).To(Equal([]step.SuspendPoint{step.PointStep}))
		})

		It("returns the context error when cancelled mid-pass", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			pacer.cancel, pacer.after = cancel, 1
			steps := []step.Step{
				{Action: step.ActionCompare, Indices: []int{0}},
				{Action: step.ActionCompare, Indices: []int{1}},
			}
			res, err := interp.Run(ctx, steps)
			Expect(err).To(MatchError(context.Canceled))
			Expect(res.Visited).To(Equal(1))
		})
	})

	Describe("graph steps", func() {
		BeforeEach(func() {
			sc.RenderInitial(scene.KindGraph, scene.Data{Graph: &scene.Graph{
				Nodes: map[scene.ID]scene.Point{"A": {X: 0, Y: 0}, "B": {X: 100, Y: 0}, "C": {X: 50, Y: 80}},
				Adjacency: map[scene.ID][]scene.Neighbor{
					"A": {{Node: "B", Weight: 4}, {Node: "C", Weight: 1}},
					"B": {{Node: "A", Weight: 4}},
					"C": {{Node: "A", Weight: 1}},
				},
			}})
		})

		It("redraws the queue and moves nodes from visiting to visited", func() {
			steps := []step.Step{
				{Action: step.ActionEnqueue, Node: "A", QueueState: ids("A")},
				{Action: step.ActionDequeue, Node: "A", QueueState: ids()},
				{Action: step.ActionEnqueue, Node: "B", QueueState: ids("B", "C")},
				{Action: step.ActionVisitNode, Node: "A"},
			}
			_, err := interp.Run(context.Background(), steps)
			Expect(err).NotTo(HaveOccurred())
			Expect(nodeMarked("A", scene.MarkVisited)).To(BeTrue())
			Expect(nodeMarked("A", scene.MarkVisiting)).To(BeFalse())

			buf := sc.Buffer()
			Expect(buf).To(HaveLen(2))
			Expect(sc.Label(buf[0])).To(Equal("B"))
			Expect(sc.Label(buf[1])).To(Equal("C"))
		})

		It("redraws the stack on push and pop and marks the node being visited", func() {
			steps := []step.Step{
				{Action: step.ActionPush, Node: "A", StackState: ids("A")},
				{Action: step.ActionPush, Node: "B", StackState: ids("A", "B")},
				{Action: step.ActionPop, Node: "B", StackState: ids("A")},
			}
			var visiting bool
			var during int
			in := step.NewInterpreter(sc, canvas, pacer, step.WithObserver(func(ev step.Event) {
				if ev.Index == 1 {
					visiting = nodeMarked("B", scene.MarkVisiting)
					during = len(sc.Buffer())
				}
			}))
			_, err := in.Run(context.Background(), steps)
			Expect(err).NotTo(HaveOccurred())
			Expect(visiting).To(BeTrue())
			Expect(during).To(Equal(2))

			buf := sc.Buffer()
			Expect(buf).To(HaveLen(1))
			Expect(sc.Label(buf[0])).To(Equal("A"))

			var captions []string
			for _, p := range canvas.Primitives() {
				if p.Node.Role == "caption" {
					captions = append(captions, p.Label)
				}
			}
			Expect(captions).To(ContainElement(string(scene.BufferStack)))
			Expect(captions).NotTo(ContainElement(string(scene.BufferQueue)))
		})

		It("fades an already visited neighbor for one step", func() {
			steps := []step.Step{
				{Action: step.ActionNeighborVisited, Node: "B"},
				{Action: step.ActionSkipVisited, Node: "C"},
				{Action: step.ActionVisitNode, Node: "A"},
			}
			faded := map[int]bool{}
			in := step.NewInterpreter(sc, canvas, pacer, step.WithObserver(func(ev step.Event) {
				switch ev.Index {
				case 0:
					faded[0] = nodeMarked("B", scene.MarkFaded)
				case 1:
					faded[1] = nodeMarked("C", scene.MarkFaded) && !nodeMarked("B", scene.MarkFaded)
				}
			}))
			_, err := in.Run(context.Background(), steps)
			Expect(err).NotTo(HaveOccurred())
			Expect(faded).To(Equal(map[int]bool{0: true, 1: true}))
			Expect(nodeMarked("C", scene.MarkFaded)).To(BeFalse())
		})

		It("marks an explored edge through either alias", func() {
			steps := []step.Step{{Action: step.ActionExploreEdge, From: "B", To: "A"}}
			var exploring bool
			in := step.NewInterpreter(sc, canvas, pacer, step.WithObserver(func(ev step.Event) {
				if ev.Index == 0 {
					el, _ := sc.Link("A", "B")
					exploring = sc.HasMarker(el, scene.MarkExploring)
				}
			}))
			_, err := in.Run(context.Background(), steps)
			Expect(err).NotTo(HaveOccurred())
			Expect(exploring).To(BeTrue())
		})

		It("tolerates steps that name unknown nodes", func() {
			before := canvas.Primitives()
			steps := []step.Step{
				{Action: step.ActionVisitNode, Node: "Z"},
				{Action: step.ActionExploreEdge, From: "A", To: "Z"},
				{Action: step.ActionUpdateDistance, Node: "Z", NewDist: 3},
				{Action: step.ActionSkipVisited, Node: "Q"},
			}
			_, err := interp.Run(context.Background(), steps)
			Expect(err).NotTo(HaveOccurred())
			Expect(canvas.Primitives()).To(Equal(before))
		})

		It("renders infinite distances as the infinity glyph", func() {
			steps := []step.Step{{
				Action:    step.ActionInitDistances,
				Distances: map[scene.ID]step.Distance{"A": step.Inf(), "B": 4},
			}}
			_, err := interp.Run(context.Background(), steps)
			Expect(err).NotTo(HaveOccurred())

			a, _ := sc.Distance("A")
			b, _ := sc.Distance("B")
			c, _ := sc.Distance("C")
			Expect(sc.Label(a)).To(Equal(scene.Infinity))
			Expect(sc.Label(b)).To(Equal("4"))
			Expect(sc.Label(c)).To(Equal(scene.Infinity))
		})

		It("keeps the path highlighted after later steps", func() {
			steps := []step.Step{
				{Action: step.ActionUpdateDistance, Node: "C", NewDist: 1},
				{Action: step.ActionHighlightPath, Path: ids("B", "A", "C")},
				{Action: step.ActionComplete},
			}
			_, err := interp.Run(context.Background(), steps)
			Expect(err).NotTo(HaveOccurred())
			for _, id := range []string{"A", "B", "C"} {
				Expect(nodeMarked(id, scene.MarkPathNode)).To(BeTrue())
			}
			ab, _ := sc.Link("A", "B")
			ac, _ := sc.Link("C", "A")
			Expect(sc.HasMarker(ab, scene.MarkPathLink)).To(BeTrue())
			Expect(sc.HasMarker(ac, scene.MarkPathLink)).To(BeTrue())

			dist, _ := sc.Distance("C")
			Expect(sc.Label(dist)).To(Equal("1"))
			Expect(sc.HasMarker(dist, scene.MarkUpdated)).To(BeFalse())
		})
	})

	Describe("tree steps", func() {
		BeforeEach(func() {
			sc.RenderInitial(scene.KindTree, scene.Data{})
		})

		It("inserts nodes and flashes them as found", func() {
			var flashed []bool
			in := step.NewInterpreter(sc, canvas, pacer, step.WithObserver(func(ev step.Event) {
				if ev.Index == 1 {
					flashed = append(flashed, nodeMarked("30", scene.MarkFound))
				}
			}))
			steps := []step.Step{
				{Action: step.ActionInsert, Value: "50", Direction: scene.DirRoot},
				{Action: step.ActionInsert, Value: "30", Parent: "50", Direction: scene.DirLeft},
				{Action: step.ActionTraverse, From: "50", Direction: scene.DirLeft},
			}
			_, err := in.Run(context.Background(), steps)
			Expect(err).NotTo(HaveOccurred())
			Expect(flashed).To(Equal([]bool{true}))
			Expect(nodeMarked("30", scene.MarkFound)).To(BeFalse())
			Expect(nodeMarked("50", scene.MarkComparing)).To(BeTrue())

			n, ok := sc.TreeNode("30")
			Expect(ok).To(BeTrue())
			Expect(n.Depth).To(Equal(1))
		})

		It("skips an insert under a parent that was never drawn", func() {
			steps := []step.Step{{Action: step.ActionInsert, Value: "7", Parent: "99", Direction: scene.DirLeft}}
			_, err := interp.Run(context.Background(), steps)
			Expect(err).NotTo(HaveOccurred())
			Expect(canvas.Len()).To(BeZero())
		})
	})

	Describe("table steps", func() {
		It("builds the table and fills cells", func() {
			steps := []step.Step{
				{Action: step.ActionInitTable, Rows: 3, Cols: 4, Weights: ids("1", "3"), Values: ids("10", "40")},
				{Action: step.ActionHighlightCell, Cell: step.CellRef{1, 1}},
				{Action: step.ActionCopyAbove, FromCell: step.CellRef{0, 1}, ToCell: step.CellRef{1, 0}, Value: "0"},
				{
					Action:        step.ActionCompareOptions,
					Cell:          step.CellRef{1, 1},
					OptionWithout: &step.CellOption{Cell: step.CellRef{0, 1}, Value: "0"},
					OptionWith:    &step.CellOption{Cell: step.CellRef{0, 0}, Value: "10"},
					Result:        "10",
				},
			}
			var referenced int
			in := step.NewInterpreter(sc, canvas, pacer, step.WithObserver(func(ev step.Event) {
				if ev.Index != 3 {
					return
				}
				for _, c := range [][2]int{{0, 1}, {0, 0}} {
					el, _ := sc.Cell(c[0], c[1])
					if sc.HasMarker(el, scene.MarkReferenced) {
						referenced++
					}
				}
			}))
			_, err := in.Run(context.Background(), steps)
			Expect(err).NotTo(HaveOccurred())
			Expect(referenced).To(Equal(2))

			cell, ok := sc.Cell(1, 1)
			Expect(ok).To(BeTrue())
			Expect(sc.Label(cell)).To(Equal("10"))

			short, _ := sc.Cell(1, 0)
			Expect(sc.Label(short)).To(Equal("0"))
		})

		It("ignores malformed cell references", func() {
			steps := []step.Step{
				{Action: step.ActionInitTable, Rows: 2, Cols: 2},
				{Action: step.ActionHighlightCell, Cell: step.CellRef{1}},
				{Action: step.ActionCopyAbove, FromCell: step.CellRef{5, 5}, ToCell: step.CellRef{8, 8}, Value: "3"},
			}
			_, err := interp.Run(context.Background(), steps)
			Expect(err).NotTo(HaveOccurred())
			for i := 0; i < 2; i++ {
				for w := 0; w < 2; w++ {
					el, ok := sc.Cell(i, w)
					Expect(ok).To(BeTrue())
					Expect(sc.Label(el)).To(Equal("0"))
				}
			}
		})
	})
})
