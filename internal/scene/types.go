package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Kind string

const (
	KindArray Kind = "array"
	KindGraph Kind = "graph"
	KindTree  Kind = "tree"
	KindTable Kind = "table"
)

// ID is a logical identifier: an array index, a graph node id or a tree value.
// The empty ID stands for "none" (a null parent, a missing node).
type ID string

// IndexID returns the id under which array element i is registered.
func IndexID(i int) ID {
	return ID(strconv.Itoa(i))
}

func (id ID) IsZero() bool { return id == "" }

func (id ID) String() string { return string(id) }

// UnmarshalJSON accepts strings, numbers and null.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*id = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("scene: id %s: %w", b, err)
		}
		*id = ID(n.String())
	}
	return nil
}

func (id *ID) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("scene: id at line %d is not a scalar", value.Line)
	}
	if value.Tag == "!!null" {
		*id = ""
		return nil
	}
	*id = ID(value.Value)
	return nil
}

func (id ID) MarshalYAML() (interface{}, error) {
	if id == "" {
		return nil, nil
	}
	return string(id), nil
}

// Element is an opaque handle issued by a Target. The zero Element refers to
// nothing, and every operation on it is a no-op.
type Element uint64

type Marker string

// Transient markers are cleared before every step.
const (
	MarkComparing  Marker = "comparing"
	MarkMin        Marker = "min"
	MarkExploring  Marker = "exploring"
	MarkVisiting   Marker = "visiting"
	MarkHighlight  Marker = "highlight"
	MarkReferenced Marker = "referenced"
	MarkUpdated    Marker = "updated"
	MarkFaded      Marker = "faded"
)

// Persistent markers survive until the scene is cleared.
const (
	MarkFound    Marker = "found"
	MarkSorted   Marker = "sorted"
	MarkVisited  Marker = "visited"
	MarkPathNode Marker = "path-node"
	MarkPathLink Marker = "path-link"
)

var TransientMarkers = []Marker{
	MarkComparing, MarkMin, MarkExploring, MarkVisiting,
	MarkHighlight, MarkReferenced, MarkUpdated, MarkFaded,
}

func (m Marker) Transient() bool {
	for _, t := range TransientMarkers {
		if m == t {
			return true
		}
	}
	return false
}

type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// TreeNode is the logical layout record of an inserted tree value.
type TreeNode struct {
	Value  ID
	Parent ID
	X, Y   float64
	Depth  int
}

type Cell struct {
	Row, Col int
}

type BufferKind string

const (
	BufferQueue BufferKind = "queue"
	BufferStack BufferKind = "stack"
)

type Direction string

const (
	DirRoot  Direction = "root"
	DirLeft  Direction = "left"
	DirRight Direction = "right"
)

// Layout holds the tunable geometry constants of every scene kind.
type Layout struct {
	Width          float64 `yaml:"width"`
	Height         float64 `yaml:"height"`
	Padding        float64 `yaml:"padding"`
	NodeRadius     float64 `yaml:"node_radius"`
	RowSpacing     float64 `yaml:"row_spacing"`
	TopOffset      float64 `yaml:"top_offset"`
	GrowthFactor   float64 `yaml:"growth_factor"`
	CellSize       float64 `yaml:"cell_size"`
	CellGap        float64 `yaml:"cell_gap"`
	DistanceOffset float64 `yaml:"distance_offset"`
	WeightOffset   float64 `yaml:"weight_offset"`
}

const (
	DefaultWidth          = 800.0
	DefaultHeight         = 450.0
	DefaultPadding        = 50.0
	DefaultNodeRadius     = 20.0
	DefaultRowSpacing     = 60.0
	DefaultTopOffset      = 50.0
	DefaultGrowthFactor   = 1.8
	DefaultCellSize       = 48.0
	DefaultCellGap        = 6.0
	DefaultDistanceOffset = 32.0
	DefaultWeightOffset   = 10.0
)

func DefaultLayout() Layout {
	return Layout{
		Width:          DefaultWidth,
		Height:         DefaultHeight,
		Padding:        DefaultPadding,
		NodeRadius:     DefaultNodeRadius,
		RowSpacing:     DefaultRowSpacing,
		TopOffset:      DefaultTopOffset,
		GrowthFactor:   DefaultGrowthFactor,
		CellSize:       DefaultCellSize,
		CellGap:        DefaultCellGap,
		DistanceOffset: DefaultDistanceOffset,
		WeightOffset:   DefaultWeightOffset,
	}
}

// Data is the initial snapshot handed to RenderInitial. Only the field that
// matches the kind is read.
type Data struct {
	Array []ID
	Graph *Graph
}

type Neighbor struct {
	Node   ID      `json:"node" yaml:"node"`
	Weight float64 `json:"weight" yaml:"weight"`
}

type Graph struct {
	Nodes     map[ID]Point      `json:"nodes" yaml:"nodes"`
	Adjacency map[ID][]Neighbor `json:"adjacency" yaml:"adjacency"`
	Directed  bool              `json:"directed,omitempty" yaml:"directed,omitempty"`
}

// UnmarshalJSON also accepts "adjacency_list" for the adjacency field.
func (g *Graph) UnmarshalJSON(b []byte) error {
	type plain Graph
	var raw struct {
		plain
		AdjacencyList map[ID][]Neighbor `json:"adjacency_list"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*g = Graph(raw.plain)
	if g.Adjacency == nil {
		g.Adjacency = raw.AdjacencyList
	}
	return nil
}

func (g *Graph) UnmarshalYAML(value *yaml.Node) error {
	type plain Graph
	var raw struct {
		plain         `yaml:",inline"`
		AdjacencyList map[ID][]Neighbor `yaml:"adjacency_list"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*g = Graph(raw.plain)
	if g.Adjacency == nil {
		g.Adjacency = raw.AdjacencyList
	}
	return nil
}

// DecodeData parses the compute service's initial payload for kind.
// Tree and table scenes carry no initial payload; other kinds decode to an
// empty Data.
func DecodeData(kind Kind, raw []byte) (Data, error) {
	switch kind {
	case KindArray:
		var values []ID
		if err := json.Unmarshal(raw, &values); err != nil {
			return Data{}, fmt.Errorf("%w: array: %v", ErrBadData, err)
		}
		return Data{Array: values}, nil
	case KindGraph:
		g := &Graph{}
		if err := json.Unmarshal(raw, g); err != nil {
			return Data{}, fmt.Errorf("%w: graph: %v", ErrBadData, err)
		}
		if len(g.Nodes) == 0 {
			return Data{}, fmt.Errorf("%w: graph has no nodes", ErrBadData)
		}
		return Data{Graph: g}, nil
	default:
		return Data{}, nil
	}
}
