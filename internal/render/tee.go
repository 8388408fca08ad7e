package render

import "github.com/san-kum/stepviz/internal/scene"

// Tee mirrors every drawing call onto several targets. It issues its own
// handles and keeps the per-target handle for each of them.
type Tee struct {
	targets []scene.Target
	handles map[scene.Element][]scene.Element
	next    scene.Element
}

func NewTee(targets ...scene.Target) *Tee {
	return &Tee{targets: targets, handles: make(map[scene.Element][]scene.Element)}
}

func (t *Tee) issue(create func(scene.Target) scene.Element) scene.Element {
	hs := make([]scene.Element, len(t.targets))
	for i, target := range t.targets {
		hs[i] = create(target)
	}
	t.next++
	t.handles[t.next] = hs
	return t.next
}

func (t *Tee) each(el scene.Element, fn func(scene.Target, scene.Element)) {
	hs, ok := t.handles[el]
	if !ok {
		return
	}
	for i, target := range t.targets {
		if hs[i] != 0 {
			fn(target, hs[i])
		}
	}
}

func (t *Tee) CreateNode(spec scene.NodeSpec) scene.Element {
	return t.issue(func(target scene.Target) scene.Element { return target.CreateNode(spec) })
}

func (t *Tee) CreateEdge(spec scene.EdgeSpec) scene.Element {
	return t.issue(func(target scene.Target) scene.Element { return target.CreateEdge(spec) })
}

func (t *Tee) SetLabel(el scene.Element, text string) {
	t.each(el, func(target scene.Target, h scene.Element) { target.SetLabel(h, text) })
}

func (t *Tee) AddClass(el scene.Element, m scene.Marker) {
	t.each(el, func(target scene.Target, h scene.Element) { target.AddClass(h, m) })
}

func (t *Tee) RemoveClass(el scene.Element, m scene.Marker) {
	t.each(el, func(target scene.Target, h scene.Element) { target.RemoveClass(h, m) })
}

func (t *Tee) Remove(el scene.Element) {
	t.each(el, func(target scene.Target, h scene.Element) { target.Remove(h) })
	delete(t.handles, el)
}

func (t *Tee) RemoveAll() {
	for _, target := range t.targets {
		target.RemoveAll()
	}
	t.handles = make(map[scene.Element][]scene.Element)
}

func (t *Tee) SetViewport(r scene.Rect) {
	for _, target := range t.targets {
		target.SetViewport(r)
	}
}

// SetMessage forwards the status line to every target that displays one.
func (t *Tee) SetMessage(text string) {
	for _, target := range t.targets {
		if s, ok := target.(interface{ SetMessage(string) }); ok {
			s.SetMessage(text)
		}
	}
}
