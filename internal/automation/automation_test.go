package automation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/san-kum/stepviz/internal/compute"
	"github.com/san-kum/stepviz/internal/scenario"
	"github.com/san-kum/stepviz/internal/scene"
	"github.com/san-kum/stepviz/internal/step"
)

type fakeFetcher struct {
	mu    sync.Mutex
	calls []compute.FetchOptions
	fail  string
}

func (f *fakeFetcher) Fetch(_ context.Context, alg string, opts compute.FetchOptions) (*scenario.Scenario, error) {
	f.mu.Lock()
	f.calls = append(f.calls, opts)
	f.mu.Unlock()
	if alg == f.fail {
		return nil, errors.New("service down")
	}
	size := max(opts.Size, 1)
	steps := make([]step.Step, 0, size*2)
	for i := 0; i < size*size; i++ {
		steps = append(steps, step.Step{Action: step.ActionCompare, Message: "c"})
	}
	steps = append(steps, step.Step{Action: step.ActionComplete, Message: "done"})
	return &scenario.Scenario{Name: alg, Kind: scene.KindArray, Steps: steps}, nil
}

type fakeSaver struct{ names []string }

func (s *fakeSaver) Save(sc *scenario.Scenario, source string) (string, error) {
	s.names = append(s.names, sc.Name)
	return fmt.Sprintf("%s_%d", sc.Name, len(s.names)), nil
}

func writePlaylist(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "list.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunPlaylist(t *testing.T) {
	path := writePlaylist(t, `
name: lecture
entries:
  - algorithm: bubble_sort
    size: 4
  - algorithm: binary_search
    size: 8
    sorted: true
    target: 3
    save_as: search-demo
`)
	pl, err := LoadPlaylist(path)
	if err != nil {
		t.Fatal(err)
	}
	if pl.Name != "lecture" || len(pl.Entries) != 2 {
		t.Fatalf("unexpected playlist %+v", pl)
	}

	f, s := &fakeFetcher{}, &fakeSaver{}
	var out bytes.Buffer
	ids, err := RunPlaylist(context.Background(), pl, f, s, "test", &out)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || ids[1] != "search-demo_2" {
		t.Errorf("unexpected ids %v", ids)
	}
	if got := f.calls[1]; !got.Sorted || got.Target == nil || *got.Target != 3 {
		t.Errorf("options not forwarded: %+v", got)
	}
	if !strings.Contains(out.String(), "fetching 2/2: binary_search") {
		t.Errorf("unexpected progress output %q", out.String())
	}
}

func TestRunPlaylistStopsOnFailure(t *testing.T) {
	pl := &Playlist{Entries: []Entry{{Algorithm: "bfs"}, {Algorithm: "dfs"}, {Algorithm: "hanoi"}}}
	f, s := &fakeFetcher{fail: "dfs"}, &fakeSaver{}
	ids, err := RunPlaylist(context.Background(), pl, f, s, "", &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "entry 2") {
		t.Fatalf("expected entry 2 failure, got %v", err)
	}
	if len(ids) != 1 || len(f.calls) != 2 {
		t.Errorf("expected to stop after the failure, ids=%v calls=%d", ids, len(f.calls))
	}
}

func TestLoadPlaylistRejectsMissingAlgorithm(t *testing.T) {
	path := writePlaylist(t, "entries:\n  - size: 3\n")
	if _, err := LoadPlaylist(path); err == nil {
		t.Error("expected an error for an entry without algorithm")
	}
}

func TestRunSweep(t *testing.T) {
	f := &fakeFetcher{}
	res, err := RunSweep(context.Background(), &SizeSweep{Algorithm: "bubble_sort", SizeMin: 2, SizeMax: 8, NumPoints: 4}, f, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	wantSizes := []int{2, 4, 6, 8}
	if len(res) != len(wantSizes) {
		t.Fatalf("expected %d results, got %d", len(wantSizes), len(res))
	}
	for i, r := range res {
		if r.Size != wantSizes[i] {
			t.Errorf("point %d: size %d, want %d", i, r.Size, wantSizes[i])
		}
		if r.Steps != r.Size*r.Size+1 || r.Actions["compare"] != r.Size*r.Size {
			t.Errorf("point %d: steps %d actions %v", i, r.Steps, r.Actions)
		}
	}
}

func TestRunSweepFailure(t *testing.T) {
	f := &fakeFetcher{fail: "hanoi"}
	if _, err := RunSweep(context.Background(), &SizeSweep{Algorithm: "hanoi", SizeMin: 1, SizeMax: 3, NumPoints: 3}, f, &bytes.Buffer{}); err == nil {
		t.Error("expected the failed points to fail the sweep")
	}
}

func TestRunSweepBadRange(t *testing.T) {
	if _, err := RunSweep(context.Background(), &SizeSweep{SizeMin: 5, SizeMax: 5, NumPoints: 3}, &fakeFetcher{}, &bytes.Buffer{}); err == nil {
		t.Error("expected an error for an empty range")
	}
}

func TestRunPlaylistForwardsKnapsackItems(t *testing.T) {
	path := writePlaylist(t, `
entries:
  - algorithm: knapsack_01
    capacity: 5
    items:
      - {weight: 2, value: 3}
      - {weight: 3, value: 4.5}
`)
	pl, err := LoadPlaylist(path)
	if err != nil {
		t.Fatal(err)
	}

	f := &fakeFetcher{}
	if _, err := RunPlaylist(context.Background(), pl, f, &fakeSaver{}, "test", &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	got := f.calls[0]
	if got.Capacity == nil || *got.Capacity != 5 {
		t.Errorf("capacity not forwarded: %+v", got)
	}
	want := []compute.Item{{Weight: 2, Value: 3}, {Weight: 3, Value: 4.5}}
	if len(got.Items) != 2 || got.Items[0] != want[0] || got.Items[1] != want[1] {
		t.Errorf("items = %+v, want %+v", got.Items, want)
	}
}
