package compute

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/stepviz/internal/scenario"
	"github.com/san-kum/stepviz/internal/scene"
)

// Algorithm describes how to request one of the service's algorithms: the
// data type to generate (empty for none) and the scene kind to play it on.
type Algorithm struct {
	Key    string
	DType  string
	Kind   scene.Kind
	Sorted bool

	// Knapsack algorithms take a capacity and an item list instead of data.
	Knapsack bool
}

var Algorithms = map[string]Algorithm{
	"linear_search":       {Key: "linear_search", DType: "array", Kind: scene.KindArray},
	"binary_search":       {Key: "binary_search", DType: "array", Kind: scene.KindArray, Sorted: true},
	"bubble_sort":         {Key: "bubble_sort", DType: "array", Kind: scene.KindArray},
	"selection_sort":      {Key: "selection_sort", DType: "array", Kind: scene.KindArray},
	"bst_build":           {Key: "bst_build", DType: "tree", Kind: scene.KindTree},
	"bfs":                 {Key: "bfs", DType: "graph", Kind: scene.KindGraph},
	"dfs":                 {Key: "dfs", DType: "graph", Kind: scene.KindGraph},
	"knapsack_01":         {Key: "knapsack_01", Kind: scene.KindTable, Knapsack: true},
	"fib_dp":              {Key: "fib_dp", Kind: "recursion"},
	"fractional_knapsack": {Key: "fractional_knapsack", Kind: "greedy", Knapsack: true},
	"hanoi":               {Key: "hanoi", Kind: "hanoi"},
	"bitwise_swap":        {Key: "bitwise_swap", Kind: "bitwise"},
	"count_set_bits":      {Key: "count_set_bits", Kind: "bitwise"},
}

// DefaultItems and DefaultCapacity fill knapsack requests that bring neither.
var DefaultItems = []Item{
	{Weight: 1, Value: 1},
	{Weight: 3, Value: 4},
	{Weight: 4, Value: 5},
	{Weight: 5, Value: 7},
}

const DefaultCapacity = 7

// ParseItems reads a knapsack item list written as "weight:value" pairs
// separated by commas, e.g. "2:3,3:4,4:5". Items are numbered from 1.
func ParseItems(s string) ([]Item, error) {
	var items []Item
	for i, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		w, v, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("item %d: %q is not weight:value", i+1, pair)
		}
		weight, err := strconv.Atoi(strings.TrimSpace(w))
		if err != nil || weight <= 0 {
			return nil, fmt.Errorf("item %d: weight %q must be a positive integer", i+1, w)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("item %d: value %q: %w", i+1, v, err)
		}
		items = append(items, Item{ID: len(items) + 1, Weight: weight, Value: value})
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no items in %q", s)
	}
	return items, nil
}

// numbered returns items with ids assigned where they are missing.
func numbered(items []Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		if it.ID == 0 {
			it.ID = i + 1
		}
		out[i] = it
	}
	return out
}

func AlgorithmNames() []string {
	names := make([]string, 0, len(Algorithms))
	for name := range Algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FetchOptions are the knobs of a fetch. Zero values fall back to the
// service defaults.
type FetchOptions struct {
	Size      int
	Sorted    bool
	Target    *int
	StartNode string
	N         *int
	Capacity  *int
	Items     []Item
	NDisks    *int
	A, B      *int
}

// Fetch generates input data when the algorithm needs it, runs the algorithm
// and returns the result as a playable scenario.
func (c *Client) Fetch(ctx context.Context, algorithm string, opts FetchOptions) (*scenario.Scenario, error) {
	alg, ok := Algorithms[algorithm]
	if !ok {
		return nil, fmt.Errorf("compute: unknown algorithm %q", algorithm)
	}

	sc := &scenario.Scenario{Name: algorithm, Algorithm: algorithm, Kind: alg.Kind}
	req := RunRequest{
		Algorithm: algorithm,
		Target:    opts.Target,
		N:         opts.N,
		Capacity:  opts.Capacity,
		Items:     opts.Items,
		NDisks:    opts.NDisks,
		A:         opts.A,
		B:         opts.B,
	}

	if alg.Knapsack {
		if len(req.Items) == 0 {
			req.Items = DefaultItems
		}
		req.Items = numbered(req.Items)
		if req.Capacity == nil {
			capacity := DefaultCapacity
			req.Capacity = &capacity
		}
	}

	if alg.DType != "" {
		size := opts.Size
		if size <= 0 {
			size = 10
		}
		raw, err := c.GenerateData(ctx, DataRequest{Size: size, DType: alg.DType, Sorted: opts.Sorted || alg.Sorted})
		if err != nil {
			return nil, err
		}
		req.InputData = raw

		switch alg.Kind {
		case scene.KindArray, scene.KindGraph:
			data, err := scene.DecodeData(alg.Kind, raw)
			if err != nil {
				return nil, err
			}
			sc.Array, sc.Graph = data.Array, data.Graph
		}

		if alg.Kind == scene.KindGraph {
			req.StartNode = opts.StartNode
			if req.StartNode == "" {
				req.StartNode = firstNode(sc.Graph)
			}
		}
		if alg.Kind == scene.KindArray && req.Target == nil && (algorithm == "linear_search" || algorithm == "binary_search") {
			t, err := pickTarget(raw)
			if err != nil {
				return nil, err
			}
			req.Target = &t
		}
	}

	steps, err := c.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	sc.Steps = steps
	c.log.Info("fetched scenario", "algorithm", algorithm, "kind", string(alg.Kind), "steps", len(steps))
	return sc, nil
}

func firstNode(g *scene.Graph) string {
	if g == nil {
		return ""
	}
	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

// pickTarget searches for the middle element so the animation ends in a hit.
func pickTarget(raw json.RawMessage) (int, error) {
	var values []int
	if err := json.Unmarshal(raw, &values); err != nil || len(values) == 0 {
		return 0, fmt.Errorf("%w: search input is not a list of integers", scene.ErrBadData)
	}
	return values[len(values)/2], nil
}
