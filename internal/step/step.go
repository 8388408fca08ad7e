package step

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/stepviz/internal/scene"
	"gopkg.in/yaml.v3"
)

type Action string

const (
	ActionError    Action = "error"
	ActionComplete Action = "complete"

	ActionCompare       Action = "compare"
	ActionSwap          Action = "swap"
	ActionFound         Action = "found"
	ActionSortedElement Action = "sorted_element"
	ActionHighlightMin  Action = "highlight_min"
	ActionEliminate     Action = "eliminate"

	ActionEnqueue         Action = "enqueue"
	ActionPush            Action = "push"
	ActionDequeue         Action = "dequeue"
	ActionPop             Action = "pop"
	ActionVisitNode       Action = "visit_node"
	ActionExploreEdge     Action = "explore_edge"
	ActionNeighborVisited Action = "neighbor_visited"
	ActionSkipVisited     Action = "skip_visited"

	ActionInsert   Action = "insert"
	ActionTraverse Action = "traverse"

	ActionInitDistances  Action = "init_distances"
	ActionUpdateDistance Action = "update_distance"
	ActionHighlightPath  Action = "highlight_path"

	ActionInitTable      Action = "init_table"
	ActionHighlightCell  Action = "highlight_cell"
	ActionCopyAbove      Action = "copy_above"
	ActionCompareOptions Action = "compare_options"
)

type Family string

const (
	FamilyControl  Family = "control"
	FamilyArray    Family = "array"
	FamilyGraph    Family = "graph"
	FamilyTree     Family = "tree"
	FamilyDistance Family = "shortest-path"
	FamilyTable    Family = "table"
)

var families = map[Action]Family{
	ActionError:           FamilyControl,
	ActionComplete:        FamilyControl,
	ActionCompare:         FamilyArray,
	ActionSwap:            FamilyArray,
	ActionFound:           FamilyArray,
	ActionSortedElement:   FamilyArray,
	ActionHighlightMin:    FamilyArray,
	ActionEliminate:       FamilyArray,
	ActionEnqueue:         FamilyGraph,
	ActionPush:            FamilyGraph,
	ActionDequeue:         FamilyGraph,
	ActionPop:             FamilyGraph,
	ActionVisitNode:       FamilyGraph,
	ActionExploreEdge:     FamilyGraph,
	ActionNeighborVisited: FamilyGraph,
	ActionSkipVisited:     FamilyGraph,
	ActionInsert:          FamilyTree,
	ActionTraverse:        FamilyTree,
	ActionInitDistances:   FamilyDistance,
	ActionUpdateDistance:  FamilyDistance,
	ActionHighlightPath:   FamilyDistance,
	ActionInitTable:       FamilyTable,
	ActionHighlightCell:   FamilyTable,
	ActionCopyAbove:       FamilyTable,
	ActionCompareOptions:  FamilyTable,
}

// Family reports the action family and whether the action is known.
func (a Action) Family() (Family, bool) {
	f, ok := families[a]
	return f, ok
}

// CellRef is a DP cell coordinate encoded as a two-element list [i, w].
type CellRef []int

func (c CellRef) Coords() (row, col int, ok bool) {
	if len(c) != 2 {
		return 0, 0, false
	}
	return c[0], c[1], true
}

// CellOption is one side of a knapsack comparison: the cell read and its value.
type CellOption struct {
	Cell  CellRef  `json:"cell" yaml:"cell"`
	Value scene.ID `json:"value,omitempty" yaml:"value,omitempty"`
}

// Distance is a shortest-path estimate; +Inf means "not yet established".
type Distance float64

func Inf() Distance { return Distance(math.Inf(1)) }

func (d Distance) IsInf() bool { return math.IsInf(float64(d), 0) }

func (d Distance) String() string {
	if d.IsInf() {
		return scene.Infinity
	}
	return scene.FormatNumber(float64(d))
}

func parseInfWord(s string) (Distance, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "infinity", "+infinity", "inf", "+inf", ".inf", scene.Infinity:
		return Inf(), true
	case "-infinity", "-inf", "-.inf":
		return Distance(math.Inf(-1)), true
	}
	return 0, false
}

// UnmarshalJSON accepts numbers, null and the strings "Infinity", "inf", "∞"
// with an optional sign. NaN is rejected.
func (d *Distance) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*d = Inf()
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if v, ok := parseInfWord(s); ok {
			*d = v
			return nil
		}
		var f float64
		if _, err := fmt.Sscanf(s, "%g", &f); err != nil || math.IsNaN(f) {
			return fmt.Errorf("%w: distance %q", ErrBadStep, s)
		}
		*d = Distance(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("%w: distance %s", ErrBadStep, b)
	}
	*d = Distance(f)
	return nil
}

func (d Distance) MarshalJSON() ([]byte, error) {
	if d.IsInf() {
		if d < 0 {
			return []byte(`"-Infinity"`), nil
		}
		return []byte(`"Infinity"`), nil
	}
	return json.Marshal(float64(d))
}

func (d *Distance) UnmarshalYAML(value *yaml.Node) error {
	if value.Tag == "!!null" {
		*d = Inf()
		return nil
	}
	if v, ok := parseInfWord(value.Value); ok {
		*d = v
		return nil
	}
	var f float64
	if err := value.Decode(&f); err != nil || math.IsNaN(f) {
		return fmt.Errorf("%w: distance %q at line %d", ErrBadStep, value.Value, value.Line)
	}
	*d = Distance(f)
	return nil
}

func (d Distance) MarshalYAML() (interface{}, error) {
	if d.IsInf() {
		if d < 0 {
			return "-.inf", nil
		}
		return ".inf", nil
	}
	return float64(d), nil
}

// Step is one animation instruction. Only the payload fields that belong to
// Action are meaningful.
type Step struct {
	Action  Action `json:"action" yaml:"action"`
	Message string `json:"message" yaml:"message"`

	Indices []int `json:"indices,omitempty" yaml:"indices,omitempty"`
	Range   []int `json:"range,omitempty" yaml:"range,omitempty"`

	Node       scene.ID   `json:"node,omitempty" yaml:"node,omitempty"`
	QueueState []scene.ID `json:"queue_state,omitempty" yaml:"queue_state,omitempty"`
	StackState []scene.ID `json:"stack_state,omitempty" yaml:"stack_state,omitempty"`
	From       scene.ID   `json:"from,omitempty" yaml:"from,omitempty"`
	To         scene.ID   `json:"to,omitempty" yaml:"to,omitempty"`

	Value     scene.ID        `json:"value,omitempty" yaml:"value,omitempty"`
	Parent    scene.ID        `json:"parent,omitempty" yaml:"parent,omitempty"`
	Direction scene.Direction `json:"direction,omitempty" yaml:"direction,omitempty"`

	Distances map[scene.ID]Distance `json:"distances,omitempty" yaml:"distances,omitempty"`
	NewDist   Distance              `json:"new_dist,omitempty" yaml:"new_dist,omitempty"`
	Path      []scene.ID            `json:"path,omitempty" yaml:"path,omitempty"`

	Rows          int         `json:"rows,omitempty" yaml:"rows,omitempty"`
	Cols          int         `json:"cols,omitempty" yaml:"cols,omitempty"`
	Weights       []scene.ID  `json:"weights,omitempty" yaml:"weights,omitempty"`
	Values        []scene.ID  `json:"values,omitempty" yaml:"values,omitempty"`
	Cell          CellRef     `json:"cell,omitempty" yaml:"cell,omitempty"`
	FromCell      CellRef     `json:"from_cell,omitempty" yaml:"from_cell,omitempty"`
	ToCell        CellRef     `json:"to_cell,omitempty" yaml:"to_cell,omitempty"`
	OptionWithout *CellOption `json:"option_without,omitempty" yaml:"option_without,omitempty"`
	OptionWith    *CellOption `json:"option_with,omitempty" yaml:"option_with,omitempty"`
	Result        scene.ID    `json:"result,omitempty" yaml:"result,omitempty"`
}

// sideBuffer returns the queue or stack snapshot carried by a traversal step.
func (s *Step) sideBuffer() []scene.ID {
	if s.QueueState != nil {
		return s.QueueState
	}
	return s.StackState
}
