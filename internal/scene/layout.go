package scene

import (
	"math"
	"sort"
	"strconv"
)

// Infinity is the display value of a distance that is not yet established.
const Infinity = "∞"

// RenderInitial destroys the current scene and draws data as kind. Tree and
// table scenes start empty; unknown kinds draw nothing.
func (s *Scene) RenderInitial(kind Kind, data Data) {
	s.Clear()
	s.kind = kind

	switch kind {
	case KindArray:
		s.drawArray(data.Array)
	case KindGraph:
		s.drawGraph(data.Graph)
	case KindTree:
		s.setViewport(Rect{W: s.layout.Width, H: s.layout.Height})
	}
}

func (s *Scene) setViewport(r Rect) {
	s.viewport = r
	s.target.SetViewport(r)
}

func (s *Scene) drawArray(values []ID) {
	if len(values) == 0 {
		return
	}
	l := s.layout
	step := l.CellSize + l.CellGap
	for i, v := range values {
		el := s.createNode(NodeSpec{
			Shape: ShapeCell,
			Layer: LayerNodes,
			X:     l.Padding + float64(i)*step + l.CellSize/2,
			Y:     l.Padding + l.CellSize/2,
			W:     l.CellSize,
			H:     l.CellSize,
			Label: string(v),
			Col:   i,
		})
		if el != 0 {
			s.nodes[IndexID(i)] = el
		}
	}
	s.setViewport(Rect{
		W: 2*l.Padding + float64(len(values))*step - l.CellGap,
		H: 2*l.Padding + l.CellSize,
	})
}

func sortedIDs[V any](m map[ID]V) []ID {
	ids := make([]ID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *Scene) drawGraph(g *Graph) {
	if g == nil || len(g.Nodes) == 0 {
		return
	}
	l := s.layout

	first := true
	var minX, maxX, minY, maxY float64
	for _, p := range g.Nodes {
		if first {
			minX, maxX, minY, maxY = p.X, p.X, p.Y, p.Y
			first = false
			continue
		}
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	s.setViewport(Rect{
		X: minX - l.Padding,
		Y: minY - l.Padding,
		W: maxX - minX + 2*l.Padding,
		H: maxY - minY + 2*l.Padding,
	})

	drawn := make(map[string]bool)
	for _, src := range sortedIDs(g.Adjacency) {
		for _, nb := range g.Adjacency[src] {
			dst := nb.Node
			if dst == src {
				continue
			}
			key := LinkKey(src, dst)
			if !g.Directed && dst < src {
				key = LinkKey(dst, src)
			}
			if drawn[key] {
				continue
			}
			from, okFrom := g.Nodes[src]
			to, okTo := g.Nodes[dst]
			if !okFrom || !okTo {
				continue
			}
			drawn[key] = true
			s.drawWeightedEdge(src, dst, from, to, nb.Weight, g.Directed)
		}
	}

	for _, id := range sortedIDs(g.Nodes) {
		p := g.Nodes[id]
		el := s.createNode(NodeSpec{
			Shape: ShapeCircle,
			Layer: LayerNodes,
			X:     p.X,
			Y:     p.Y,
			R:     l.NodeRadius,
			Label: string(id),
		})
		if el == 0 {
			continue
		}
		s.nodes[id] = el
		dist := s.createNode(NodeSpec{
			Shape: ShapeText,
			Layer: LayerLabels,
			X:     p.X,
			Y:     p.Y + l.DistanceOffset,
			Label: Infinity,
			Role:  "distance",
		})
		if dist != 0 {
			s.distances[id] = dist
		}
	}
}

func (s *Scene) drawWeightedEdge(a, b ID, from, to Point, weight float64, directed bool) {
	edge := s.createEdge(EdgeSpec{X1: from.X, Y1: from.Y, X2: to.X, Y2: to.Y, Directed: directed})
	if edge == 0 {
		return
	}
	s.links[LinkKey(a, b)] = edge
	if !directed {
		s.links[LinkKey(b, a)] = edge
	}

	// Offset the weight along the edge normal, on the upper side of the line.
	mx, my := (from.X+to.X)/2, (from.Y+to.Y)/2
	dx, dy := to.X-from.X, to.Y-from.Y
	if length := math.Hypot(dx, dy); length > 0 {
		nx, ny := -dy/length, dx/length
		if ny > 0 {
			nx, ny = -nx, -ny
		}
		mx += nx * s.layout.WeightOffset
		my += ny * s.layout.WeightOffset
	}
	s.createNode(NodeSpec{
		Shape: ShapeText,
		Layer: LayerLabels,
		X:     mx,
		Y:     my,
		Label: FormatNumber(weight),
		Role:  "weight",
	})
}

// FormatNumber renders a number without a trailing ".0" for integral values.
func FormatNumber(v float64) string {
	if math.IsInf(v, 1) {
		return Infinity
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// InsertNode places a tree value below its parent. A root is inserted when
// parent is empty or dir is DirRoot. Unknown parents, unknown directions and
// values that are already present are ignored.
func (s *Scene) InsertNode(value, parent ID, dir Direction) {
	if value.IsZero() {
		return
	}
	if _, dup := s.tree[value]; dup {
		return
	}
	l := s.layout

	var n TreeNode
	if parent.IsZero() || dir == DirRoot {
		n = TreeNode{Value: value, X: l.Width / 2, Y: l.TopOffset}
	} else {
		p, ok := s.tree[parent]
		if !ok {
			return
		}
		depth := p.Depth + 1
		offset := (l.Width / 4) / math.Pow(l.GrowthFactor, float64(depth))
		var x float64
		switch dir {
		case DirLeft:
			x = p.X - offset
		case DirRight:
			x = p.X + offset
		default:
			return
		}
		n = TreeNode{Value: value, Parent: parent, X: x, Y: p.Y + l.RowSpacing, Depth: depth}
	}

	// The edge below reads the parent's recorded position.
	s.tree[value] = n

	if !n.Parent.IsZero() {
		p := s.tree[n.Parent]
		edge := s.createEdge(EdgeSpec{X1: p.X, Y1: p.Y, X2: n.X, Y2: n.Y, Behind: true})
		if edge != 0 {
			s.links[LinkKey(n.Parent, value)] = edge
			s.links[LinkKey(value, n.Parent)] = edge
		}
	}

	el := s.createNode(NodeSpec{
		Shape: ShapeCircle,
		Layer: LayerNodes,
		X:     n.X,
		Y:     n.Y,
		R:     l.NodeRadius,
		Label: string(value),
	})
	if el != 0 {
		s.nodes[value] = el
	}

	if bottom := n.Y + l.NodeRadius + l.Padding; bottom > s.viewport.Y+s.viewport.H {
		vp := s.viewport
		if vp.W == 0 {
			vp.W = l.Width
		}
		vp.H = bottom - vp.Y
		s.setViewport(vp)
	}
}

// BuildTable replaces the DP table with a rows x cols grid of cells
// addressed by (i, w). A header row carries the column indices and two leading
// columns carry each row's item and weight/value pair; row 0 is the base case.
func (s *Scene) BuildTable(rows, cols int, weights, values []ID) {
	for _, el := range s.table {
		s.remove(el)
	}
	s.table = nil
	s.cells = make(map[Cell]Element)
	if rows <= 0 || cols <= 0 {
		return
	}

	s.tableHead(0, 0, "Item")
	s.tableHead(0, 1, "W/V")
	for w := 0; w < cols; w++ {
		s.tableHead(0, w+2, strconv.Itoa(w))
	}

	for i := 0; i < rows; i++ {
		s.tableHead(i+1, 0, "i="+strconv.Itoa(i))
		pair := "-"
		if i > 0 {
			pair = itemAt(weights, i-1) + "/" + itemAt(values, i-1)
		}
		s.tableHead(i+1, 1, pair)

		for w := 0; w < cols; w++ {
			x, y := s.gridPos(i+1, w+2)
			el := s.createNode(NodeSpec{
				Shape: ShapeTableCell,
				Layer: LayerAux,
				X:     x,
				Y:     y,
				W:     s.layout.CellSize,
				H:     s.layout.CellSize,
				Label: "0",
				Row:   i + 1,
				Col:   w + 2,
			})
			if el != 0 {
				s.table = append(s.table, el)
				s.cells[Cell{Row: i, Col: w}] = el
			}
		}
	}

	if s.kind == KindTable || s.viewport.Empty() {
		s.setViewport(Rect{
			W: 2*s.layout.Padding + float64(cols+2)*s.layout.CellSize,
			H: 2*s.layout.Padding + float64(rows+1)*s.layout.CellSize,
		})
	}
}

func itemAt(items []ID, i int) string {
	if i < 0 || i >= len(items) {
		return "?"
	}
	return string(items[i])
}

func (s *Scene) gridPos(row, col int) (float64, float64) {
	l := s.layout
	return l.Padding + float64(col)*l.CellSize + l.CellSize/2,
		l.Padding + float64(row)*l.CellSize + l.CellSize/2
}

func (s *Scene) tableHead(row, col int, label string) {
	x, y := s.gridPos(row, col)
	el := s.createNode(NodeSpec{
		Shape: ShapeTableHead,
		Layer: LayerAux,
		X:     x,
		Y:     y,
		W:     s.layout.CellSize,
		H:     s.layout.CellSize,
		Label: label,
		Row:   row,
		Col:   col,
	})
	if el != 0 {
		s.table = append(s.table, el)
	}
}

// DrawSideBuffer replaces the queue/stack visual with items in order. An
// empty list leaves no side buffer at all.
func (s *Scene) DrawSideBuffer(kind BufferKind, items []ID) {
	for _, el := range s.buffer {
		s.remove(el)
	}
	s.buffer = nil
	if len(items) == 0 {
		return
	}

	l := s.layout
	vp := s.viewport
	y := vp.Y + vp.H + l.CellSize/2
	x := vp.X + l.Padding

	caption := s.createNode(NodeSpec{
		Shape: ShapeText,
		Layer: LayerAux,
		X:     x,
		Y:     y,
		Label: string(kind),
		Role:  "caption",
	})
	s.buffer = append(s.buffer, caption)

	step := l.CellSize + l.CellGap
	for i, item := range items {
		el := s.createNode(NodeSpec{
			Shape: ShapeBufferCell,
			Layer: LayerAux,
			X:     x + float64(i+1)*step + l.CellSize/2,
			Y:     y,
			W:     l.CellSize,
			H:     l.CellSize,
			Label: string(item),
			Col:   i + 1,
		})
		if el != 0 {
			s.buffer = append(s.buffer, el)
		}
	}
}
