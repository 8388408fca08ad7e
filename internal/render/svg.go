package render

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/san-kum/stepviz/internal/scene"
)

// SVG converts a canvas to a standalone SVG document. Marker names are kept
// as CSS classes next to the themed colors.
func SVG(c *Canvas, theme Theme) string {
	b := c.Bounds()
	if b.Empty() {
		b = scene.Rect{W: 1, H: 1}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="%.1f %.1f %.1f %.1f" font-family="monospace" font-size="14">
<defs><marker id="arrow" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="6" markerHeight="6" orient="auto-start-reverse"><path d="M0,0 L10,5 L0,10 z" fill="%s"/></marker></defs>
<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>
`, b.W, b.H, b.X, b.Y, b.W, b.H, theme.Muted, b.X, b.Y, b.W, b.H, theme.Background))

	for _, p := range c.Primitives() {
		writePrimitive(&sb, p, theme)
	}

	if status := c.Status(); status != "" {
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" fill="%s" class="status">%s</text>
`, b.X+8, b.Y+b.H-8, theme.Text, html.EscapeString(status)))
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

func classAttr(base string, markers map[scene.Marker]bool) string {
	names := []string{base}
	for m := range markers {
		names = append(names, string(m))
	}
	sort.Strings(names[1:])
	return strings.Join(names, " ")
}

func writePrimitive(sb *strings.Builder, p Primitive, theme Theme) {
	dom := Dominant(p.Markers)
	color := theme.MarkerColor(dom)
	label := html.EscapeString(p.Label)

	if p.IsEdge {
		e := p.Edge
		stroke := theme.MarkerColor(dom)
		if dom == "" {
			stroke = string(theme.Muted)
		}
		arrow := ""
		if e.Directed {
			arrow = ` marker-end="url(#arrow)"`
		}
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="2" class="%s"%s/>
`, e.X1, e.Y1, e.X2, e.Y2, stroke, classAttr("link", p.Markers), arrow))
		return
	}

	n := p.Node
	switch n.Shape {
	case scene.ShapeCircle:
		sb.WriteString(fmt.Sprintf(`<g class="%s"><circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" stroke="%s" stroke-width="2"/><text x="%.1f" y="%.1f" fill="%s" text-anchor="middle" dominant-baseline="central">%s</text></g>
`, classAttr("node", p.Markers), n.X, n.Y, n.R, theme.Background, color, n.X, n.Y, color, label))
	case scene.ShapeText:
		fill := color
		if dom == "" {
			fill = string(theme.Muted)
		}
		role := n.Role
		if role == "" {
			role = "label"
		}
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" fill="%s" text-anchor="middle" dominant-baseline="central" class="%s">%s</text>
`, n.X, n.Y, fill, classAttr(role, p.Markers), label))
	default:
		base := string(n.Shape)
		stroke := color
		if n.Shape == scene.ShapeTableHead && dom == "" {
			stroke = string(theme.Muted)
		}
		sb.WriteString(fmt.Sprintf(`<g class="%s"><rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" stroke="%s" stroke-width="2"/><text x="%.1f" y="%.1f" fill="%s" text-anchor="middle" dominant-baseline="central">%s</text></g>
`, classAttr(base, p.Markers), n.X-n.W/2, n.Y-n.H/2, n.W, n.H, theme.Background, stroke, n.X, n.Y, color, label))
	}
}
