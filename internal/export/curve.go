package export

import (
	"fmt"
	"html"
	"strings"
)

type Point struct{ X, Y float64 }

// CurveSVG draws points as a dotted polyline scaled into width x height with
// a 10% margin on each axis, captioned in the top left corner. It returns ""
// for fewer than two points.
func CurveSVG(points []Point, caption string, width, height int, stroke, background string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	project := func(p Point) (float64, float64) {
		return (p.X - minX) / rangeX * float64(width), float64(height) - (p.Y-minY)/rangeY*float64(height)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="monospace" font-size="12">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)

	path := make([]string, len(points))
	for i, p := range points {
		x, y := project(p)
		path[i] = fmt.Sprintf("%.1f,%.1f", x, y)
	}
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M%s"/>
`, stroke, strings.Join(path, " L"))

	for _, p := range points {
		x, y := project(p)
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="3" fill="%s"><title>%g: %g</title></circle>
`, x, y, stroke, p.X, p.Y)
	}
	if caption != "" {
		fmt.Fprintf(&sb, `<text x="8" y="16" fill="%s">%s</text>
`, stroke, html.EscapeString(caption))
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}
