package render

import (
	"sort"

	"github.com/san-kum/stepviz/internal/scene"
)

// Primitive is one retained drawing on a Canvas.
type Primitive struct {
	Element scene.Element
	IsEdge  bool
	Node    scene.NodeSpec
	Edge    scene.EdgeSpec
	Label   string
	Markers map[scene.Marker]bool
}

func (p Primitive) Layer() scene.Layer {
	if p.IsEdge {
		return scene.LayerEdges
	}
	return p.Node.Layer
}

func (p Primitive) Has(m scene.Marker) bool { return p.Markers[m] }

// Canvas is a retained-mode scene.Target. It keeps every primitive with its
// label and markers so other renderers can draw it later.
type Canvas struct {
	prims    map[scene.Element]*Primitive
	order    []scene.Element
	next     scene.Element
	viewport scene.Rect
	status   string
}

func NewCanvas() *Canvas {
	return &Canvas{prims: make(map[scene.Element]*Primitive)}
}

func (c *Canvas) add(p *Primitive, behind bool) scene.Element {
	c.next++
	p.Element = c.next
	p.Markers = make(map[scene.Marker]bool)
	c.prims[p.Element] = p
	if behind {
		c.order = append([]scene.Element{p.Element}, c.order...)
	} else {
		c.order = append(c.order, p.Element)
	}
	return p.Element
}

func (c *Canvas) CreateNode(spec scene.NodeSpec) scene.Element {
	return c.add(&Primitive{Node: spec, Label: spec.Label}, false)
}

func (c *Canvas) CreateEdge(spec scene.EdgeSpec) scene.Element {
	return c.add(&Primitive{IsEdge: true, Edge: spec}, spec.Behind)
}

func (c *Canvas) SetLabel(el scene.Element, text string) {
	if p, ok := c.prims[el]; ok {
		p.Label = text
	}
}

func (c *Canvas) AddClass(el scene.Element, m scene.Marker) {
	if p, ok := c.prims[el]; ok {
		p.Markers[m] = true
	}
}

func (c *Canvas) RemoveClass(el scene.Element, m scene.Marker) {
	if p, ok := c.prims[el]; ok {
		delete(p.Markers, m)
	}
}

func (c *Canvas) Remove(el scene.Element) {
	if _, ok := c.prims[el]; !ok {
		return
	}
	delete(c.prims, el)
	for i, o := range c.order {
		if o == el {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *Canvas) RemoveAll() {
	c.prims = make(map[scene.Element]*Primitive)
	c.order = nil
	c.viewport = scene.Rect{}
}

func (c *Canvas) SetViewport(r scene.Rect) { c.viewport = r }

// SetMessage makes the canvas usable as the status surface as well.
func (c *Canvas) SetMessage(text string) { c.status = text }

func (c *Canvas) Status() string { return c.status }

func (c *Canvas) Viewport() scene.Rect { return c.viewport }

func (c *Canvas) Len() int { return len(c.order) }

func (c *Canvas) Get(el scene.Element) (Primitive, bool) {
	p, ok := c.prims[el]
	if !ok {
		return Primitive{}, false
	}
	return p.clone(), true
}

// Primitives returns copies of every primitive in draw order: by layer, then
// by insertion (edges drawn "behind" come first).
func (c *Canvas) Primitives() []Primitive {
	out := make([]Primitive, 0, len(c.order))
	for _, el := range c.order {
		out = append(out, c.prims[el].clone())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Layer() < out[j].Layer() })
	return out
}

// Bounds is the union of the viewport and the extent of every primitive.
func (c *Canvas) Bounds() scene.Rect {
	b := c.viewport
	have := !b.Empty()
	extend := func(x0, y0, x1, y1 float64) {
		if !have {
			b = scene.Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
			have = true
			return
		}
		minX, minY := min(b.X, x0), min(b.Y, y0)
		maxX, maxY := max(b.X+b.W, x1), max(b.Y+b.H, y1)
		b = scene.Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
	}
	for _, el := range c.order {
		p := c.prims[el]
		if p.IsEdge {
			e := p.Edge
			extend(min(e.X1, e.X2), min(e.Y1, e.Y2), max(e.X1, e.X2), max(e.Y1, e.Y2))
			continue
		}
		n := p.Node
		hw, hh := n.W/2, n.H/2
		if n.Shape == scene.ShapeCircle {
			hw, hh = n.R, n.R
		}
		extend(n.X-hw, n.Y-hh, n.X+hw, n.Y+hh)
	}
	return b
}

func (p *Primitive) clone() Primitive {
	cp := *p
	cp.Markers = make(map[scene.Marker]bool, len(p.Markers))
	for m := range p.Markers {
		cp.Markers[m] = true
	}
	return cp
}
