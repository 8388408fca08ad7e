package scene

import "sort"

type elemState struct {
	label   string
	markers map[Marker]bool
}

// Scene is one live rendering of a data structure: the identity maps, the
// per-element label and marker state, and the target they are drawn on.
type Scene struct {
	target   Target
	layout   Layout
	kind     Kind
	viewport Rect

	nodes     map[ID]Element
	links     map[string]Element
	distances map[ID]Element
	tree      map[ID]TreeNode
	cells     map[Cell]Element
	table     []Element
	buffer    []Element

	elems map[Element]*elemState
	order []Element
}

func New(target Target, layout Layout) *Scene {
	s := &Scene{target: target, layout: layout}
	s.reset()
	return s
}

func (s *Scene) reset() {
	s.kind = ""
	s.viewport = Rect{}
	s.nodes = make(map[ID]Element)
	s.links = make(map[string]Element)
	s.distances = make(map[ID]Element)
	s.tree = make(map[ID]TreeNode)
	s.cells = make(map[Cell]Element)
	s.table = nil
	s.buffer = nil
	s.elems = make(map[Element]*elemState)
	s.order = nil
}

// Clear tears down every primitive and empties all identity maps.
func (s *Scene) Clear() {
	s.target.RemoveAll()
	s.reset()
}

func (s *Scene) Kind() Kind { return s.kind }

func (s *Scene) Layout() Layout { return s.layout }

func (s *Scene) Target() Target { return s.target }

func (s *Scene) Viewport() Rect { return s.viewport }

func (s *Scene) ElementCount() int { return len(s.order) }

// LinkKey is the identity-map key of the edge from a to b.
func LinkKey(a, b ID) string {
	return string(a) + "-" + string(b)
}

func (s *Scene) Node(id ID) (Element, bool) {
	el, ok := s.nodes[id]
	return el, ok
}

func (s *Scene) Link(a, b ID) (Element, bool) {
	el, ok := s.links[LinkKey(a, b)]
	return el, ok
}

func (s *Scene) Distance(id ID) (Element, bool) {
	el, ok := s.distances[id]
	return el, ok
}

func (s *Scene) TreeNode(v ID) (TreeNode, bool) {
	n, ok := s.tree[v]
	return n, ok
}

func (s *Scene) Cell(row, col int) (Element, bool) {
	el, ok := s.cells[Cell{Row: row, Col: col}]
	return el, ok
}

// Buffer returns the side-buffer item elements in order, without the caption.
func (s *Scene) Buffer() []Element {
	if len(s.buffer) < 2 {
		return nil
	}
	out := make([]Element, len(s.buffer)-1)
	copy(out, s.buffer[1:])
	return out
}

// NodeIDs returns the registered node ids in sorted order.
func (s *Scene) NodeIDs() []ID {
	ids := make([]ID, 0, len(s.nodes))
	for id := range s.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Counts reports the sizes of the identity maps, mostly for tests and logs.
func (s *Scene) Counts() (nodes, links, distances, tree int) {
	return len(s.nodes), len(s.links), len(s.distances), len(s.tree)
}

func (s *Scene) Label(el Element) string {
	if st, ok := s.elems[el]; ok {
		return st.label
	}
	return ""
}

func (s *Scene) HasMarker(el Element, m Marker) bool {
	st, ok := s.elems[el]
	return ok && st.markers[m]
}

// Markers returns the markers set on el in sorted order.
func (s *Scene) Markers(el Element) []Marker {
	st, ok := s.elems[el]
	if !ok {
		return nil
	}
	out := make([]Marker, 0, len(st.markers))
	for m := range st.markers {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *Scene) SetLabel(el Element, text string) {
	st, ok := s.elems[el]
	if !ok {
		return
	}
	st.label = text
	s.target.SetLabel(el, text)
}

// SwapLabels exchanges the displayed text of a and b.
func (s *Scene) SwapLabels(a, b Element) {
	sa, okA := s.elems[a]
	sb, okB := s.elems[b]
	if !okA || !okB {
		return
	}
	la, lb := sa.label, sb.label
	s.SetLabel(a, lb)
	s.SetLabel(b, la)
}

func (s *Scene) Mark(el Element, m Marker) {
	st, ok := s.elems[el]
	if !ok || st.markers[m] {
		return
	}
	st.markers[m] = true
	s.target.AddClass(el, m)
}

func (s *Scene) Unmark(el Element, m Marker) {
	st, ok := s.elems[el]
	if !ok || !st.markers[m] {
		return
	}
	delete(st.markers, m)
	s.target.RemoveClass(el, m)
}

// ClearTransient removes every transient marker from every element.
func (s *Scene) ClearTransient() {
	for _, el := range s.order {
		for _, m := range TransientMarkers {
			s.Unmark(el, m)
		}
	}
}

func (s *Scene) createNode(spec NodeSpec) Element {
	el := s.target.CreateNode(spec)
	if el == 0 {
		return 0
	}
	s.track(el, spec.Label)
	return el
}

func (s *Scene) createEdge(spec EdgeSpec) Element {
	el := s.target.CreateEdge(spec)
	if el == 0 {
		return 0
	}
	s.track(el, "")
	return el
}

func (s *Scene) track(el Element, label string) {
	s.elems[el] = &elemState{label: label, markers: make(map[Marker]bool)}
	s.order = append(s.order, el)
}

func (s *Scene) remove(el Element) {
	if _, ok := s.elems[el]; !ok {
		return
	}
	delete(s.elems, el)
	for i, o := range s.order {
		if o == el {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.target.Remove(el)
}
