package render

import (
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/stepviz/internal/scene"
)

const (
	DefaultTermCols = 72
	DefaultTermRows = 18
)

// Terminal draws a canvas as styled text. Graph and tree scenes are projected
// onto a braille grid of Cols x Rows characters.
type Terminal struct {
	Theme Theme
	Cols  int
	Rows  int
	// Plot adds a line plot of numeric array values under the cells.
	Plot bool
}

func NewTerminal(theme Theme) Terminal {
	return Terminal{Theme: theme, Cols: DefaultTermCols, Rows: DefaultTermRows}
}

func (t Terminal) style(m scene.Marker) lipgloss.Style {
	s := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Theme.MarkerColor(m)))
	if m != "" && !m.Transient() || m == scene.MarkComparing || m == scene.MarkUpdated {
		s = s.Bold(true)
	}
	return s
}

func (t Terminal) Render(c *Canvas) string {
	var array, spatial, grid, buffer []Primitive
	for _, p := range c.Primitives() {
		switch {
		case p.IsEdge:
			spatial = append(spatial, p)
		case p.Node.Shape == scene.ShapeCell:
			array = append(array, p)
		case p.Node.Shape == scene.ShapeTableCell, p.Node.Shape == scene.ShapeTableHead:
			grid = append(grid, p)
		case p.Node.Shape == scene.ShapeBufferCell, p.Node.Role == "caption":
			buffer = append(buffer, p)
		default:
			spatial = append(spatial, p)
		}
	}

	var sections []string
	status := lipgloss.NewStyle().Bold(true).Foreground(t.Theme.Secondary)
	sections = append(sections, status.Render(c.Status()))

	if len(array) > 0 {
		sections = append(sections, t.renderRow(array))
		if t.Plot {
			if plot := t.plotValues(array); plot != "" {
				sections = append(sections, plot)
			}
		}
	}
	if len(spatial) > 0 {
		sections = append(sections, t.renderSpatial(spatial))
	}
	if len(grid) > 0 {
		sections = append(sections, t.renderTable(grid))
	}
	if len(buffer) > 0 {
		sections = append(sections, t.renderRow(buffer))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderRow draws boxed labels left to right by column; captions stay plain.
func (t Terminal) renderRow(prims []Primitive) string {
	sort.SliceStable(prims, func(i, j int) bool { return prims[i].Node.Col < prims[j].Node.Col })
	boxes := make([]string, 0, len(prims))
	for _, p := range prims {
		dom := Dominant(p.Markers)
		if p.Node.Shape == scene.ShapeText {
			boxes = append(boxes, lipgloss.NewStyle().Foreground(t.Theme.Muted).Padding(1, 1, 0, 0).Render(p.Label+":"))
			continue
		}
		box := t.style(dom).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Theme.MarkerColor(dom))).
			Padding(0, 1)
		boxes = append(boxes, box.Render(p.Label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

func (t Terminal) plotValues(array []Primitive) string {
	if len(array) < 2 {
		return ""
	}
	values := make([]float64, len(array))
	for i, p := range array {
		v, err := strconv.ParseFloat(p.Label, 64)
		if err != nil {
			return ""
		}
		values[i] = v
	}
	width := len(values) * 4
	if t.Cols > 0 && width > t.Cols {
		width = t.Cols
	}
	return asciigraph.Plot(values,
		asciigraph.Height(8),
		asciigraph.Width(width),
		asciigraph.Caption("displayed values"),
	)
}

func spatialBounds(prims []Primitive) scene.Rect {
	c := &Canvas{prims: make(map[scene.Element]*Primitive)}
	for i := range prims {
		p := prims[i]
		c.prims[p.Element] = &p
		c.order = append(c.order, p.Element)
	}
	return c.Bounds()
}

func (t Terminal) renderSpatial(prims []Primitive) string {
	cols, rows := t.Cols, t.Rows
	if cols <= 0 {
		cols = DefaultTermCols
	}
	if rows <= 0 {
		rows = DefaultTermRows
	}
	b := spatialBounds(prims)
	if b.W <= 0 {
		b.W = 1
	}
	if b.H <= 0 {
		b.H = 1
	}
	project := func(x, y float64) (int, int) {
		return int((x - b.X) / b.W * float64(cols*2-1)), int((y - b.Y) / b.H * float64(rows*4-1))
	}

	br := NewBraille(cols, rows)
	colors := make([][]string, rows)
	for i := range colors {
		colors[i] = make([]string, cols)
	}
	paint := func(col, row int, color string) {
		if row >= 0 && row < rows && col >= 0 && col < cols {
			colors[row][col] = color
		}
	}

	for _, p := range prims {
		if !p.IsEdge {
			continue
		}
		color := string(t.Theme.Muted)
		if dom := Dominant(p.Markers); dom != "" {
			color = t.Theme.MarkerColor(dom)
		}
		x0, y0 := project(p.Edge.X1, p.Edge.Y1)
		x1, y1 := project(p.Edge.X2, p.Edge.Y2)
		plotLine(x0, y0, x1, y1, func(x, y int) {
			br.Set(x, y)
			paint(x/2, y/4, color)
		})
	}

	for _, p := range prims {
		if p.IsEdge {
			continue
		}
		dom := Dominant(p.Markers)
		color := t.Theme.MarkerColor(dom)
		text := p.Label
		if p.Node.Shape == scene.ShapeCircle {
			text = "(" + text + ")"
		} else if dom == "" {
			color = string(t.Theme.Muted)
		}
		sx, sy := project(p.Node.X, p.Node.Y)
		col, row := sx/2-len([]rune(text))/2, sy/4
		br.Text(col, row, text)
		for i := range []rune(text) {
			paint(col+i, row, color)
		}
	}

	var sb strings.Builder
	for r, line := range br.Grid {
		var run []rune
		runColor := ""
		flush := func() {
			if len(run) == 0 {
				return
			}
			if runColor == "" {
				sb.WriteString(string(run))
			} else {
				sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(runColor)).Render(string(run)))
			}
			run = run[:0]
		}
		for c, ch := range line {
			if ch == brailleBlank {
				ch = ' '
			}
			if colors[r][c] != runColor {
				flush()
				runColor = colors[r][c]
			}
			run = append(run, ch)
		}
		flush()
		if r < len(br.Grid)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (t Terminal) renderTable(prims []Primitive) string {
	byPos := make(map[scene.Cell]Primitive, len(prims))
	maxRow, maxCol := 0, 0
	for _, p := range prims {
		byPos[scene.Cell{Row: p.Node.Row, Col: p.Node.Col}] = p
		maxRow = max(maxRow, p.Node.Row)
		maxCol = max(maxCol, p.Node.Col)
	}
	rowLabels := func(r int) []string {
		out := make([]string, maxCol+1)
		for c := range out {
			out[c] = byPos[scene.Cell{Row: r, Col: c}].Label
		}
		return out
	}

	rows := make([][]string, 0, maxRow)
	for r := 1; r <= maxRow; r++ {
		rows = append(rows, rowLabels(r))
	}

	muted := lipgloss.NewStyle().Foreground(t.Theme.Muted).Padding(0, 1)
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(t.Theme.Muted)).
		Headers(rowLabels(0)...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			p, ok := byPos[scene.Cell{Row: row - table.HeaderRow, Col: col}]
			if !ok || p.Node.Shape == scene.ShapeTableHead {
				return muted
			}
			return t.style(Dominant(p.Markers)).Padding(0, 1)
		})
	return tbl.String()
}
