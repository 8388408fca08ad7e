package scene

type Shape string

const (
	ShapeCell       Shape = "cell"        // array element box
	ShapeCircle     Shape = "circle"      // graph or tree node with its label
	ShapeText       Shape = "text"        // free label: edge weight, distance, caption
	ShapeTableCell  Shape = "table-cell"  // DP cell addressed by (row, col)
	ShapeTableHead  Shape = "table-head"  // DP header or leading column
	ShapeBufferCell Shape = "buffer-cell" // queue/stack entry
)

// Layer orders primitives back to front.
type Layer int

const (
	LayerEdges Layer = iota
	LayerNodes
	LayerLabels
	LayerAux
)

type NodeSpec struct {
	Shape Shape   `json:"shape"`
	Layer Layer   `json:"layer"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`

	// Radius for circles; width and height for boxes.
	R     float64 `json:"r,omitempty"`
	W     float64 `json:"w,omitempty"`
	H     float64 `json:"h,omitempty"`
	Label string  `json:"label"`

	// Grid coordinates for table and buffer shapes, index for array cells.
	Row int `json:"row,omitempty"`
	Col int `json:"col,omitempty"`

	// Role distinguishes labels that share a shape ("weight", "distance", "caption").
	Role string `json:"role,omitempty"`
}

type EdgeSpec struct {
	X1       float64 `json:"x1"`
	Y1       float64 `json:"y1"`
	X2       float64 `json:"x2"`
	Y2       float64 `json:"y2"`
	Directed bool    `json:"directed,omitempty"`

	// Behind inserts the edge underneath every existing primitive.
	Behind bool `json:"behind,omitempty"`
}

// Target is the rendering capability a Scene draws through. Implementations
// must treat the zero Element as absent.
type Target interface {
	CreateNode(spec NodeSpec) Element
	CreateEdge(spec EdgeSpec) Element
	SetLabel(el Element, text string)
	AddClass(el Element, m Marker)
	RemoveClass(el Element, m Marker)
	Remove(el Element)
	RemoveAll()
	SetViewport(r Rect)
}
