package export

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/stepviz/internal/engine"
	"github.com/san-kum/stepviz/internal/render"
	"github.com/san-kum/stepviz/internal/scene"
	"github.com/san-kum/stepviz/internal/step"
)

func recordSort(t *testing.T, dir string) (*Trace, error) {
	t.Helper()
	canvas := render.NewCanvas()
	eng := engine.New(canvas, nil, step.Instant{}, scene.DefaultLayout(), nil)
	eng.RenderInitial(scene.KindArray, scene.Data{Array: []scene.ID{"5", "3", "8"}})

	steps := []step.Step{
		{Action: step.ActionCompare, Message: "compare", Indices: []int{0, 1}},
		{Action: step.ActionSwap, Message: "swap", Indices: []int{0, 1}},
		{Action: step.ActionSortedElement, Message: "done", Indices: []int{2}},
	}
	rec := NewRecorder(canvas, render.GetTheme("ocean"), dir)
	if err := rec.Begin("sort", scene.KindArray, len(steps)); err != nil {
		t.Fatal(err)
	}
	eng.AddObserver(rec.Observe)
	res, err := eng.RunSteps(context.Background(), steps)
	if err != nil {
		t.Fatal(err)
	}
	return rec.Finish(res)
}

func TestRecorderTrace(t *testing.T) {
	tr, err := recordSort(t, "")
	if err != nil {
		t.Fatal(err)
	}

	// initial + compare + swap point + swap step + sorted + end
	if len(tr.Frames) != 6 {
		t.Fatalf("expected 6 frames, got %d", len(tr.Frames))
	}
	if tr.Outcome != "completed" || tr.Visited != 3 {
		t.Errorf("outcome %q visited %d", tr.Outcome, tr.Visited)
	}

	first := tr.Frames[0]
	if first.Point != "initial" || first.Elements != 3 || first.File != "" {
		t.Errorf("unexpected first frame %+v", first)
	}
	if got := tr.Frames[1]; got.Action != "compare" || got.Markers["comparing"] != 2 {
		t.Errorf("compare frame %+v", got)
	}
	if got := tr.Frames[2]; got.Point != "swap" {
		t.Errorf("expected swap point, got %q", got.Point)
	}
	last := tr.Frames[len(tr.Frames)-1]
	if last.Point != "end" || last.Index != 3 || last.Message != "done" {
		t.Errorf("unexpected last frame %+v", last)
	}

	totals := strings.Join(tr.MarkerTotals(), ",")
	if !strings.Contains(totals, "comparing=") || !strings.Contains(totals, "sorted=") {
		t.Errorf("totals %s", totals)
	}
}

func TestRecorderWritesFrames(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	tr, err := recordSort(t, dir)
	if err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != len(tr.Frames) {
		t.Errorf("expected %d files, got %d", len(tr.Frames), len(entries))
	}
	data, err := os.ReadFile(filepath.Join(dir, "frame_0000.svg"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Error("frame is not an svg document")
	}

	path := filepath.Join(t.TempDir(), "trace.json")
	if err := WriteTrace(path, tr); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var back Trace
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	if back.Scenario != "sort" || len(back.Frames) != len(tr.Frames) || back.Frames[0].File != "frame_0000.svg" {
		t.Errorf("unexpected trace %+v", back)
	}
}

func TestCurveSVG(t *testing.T) {
	if CurveSVG([]Point{{1, 1}}, "", 100, 50, "#fff", "#000") != "" {
		t.Error("expected empty output for a single point")
	}

	svg := CurveSVG([]Point{{0, 0}, {10, 10}, {20, 40}}, "bubble_sort <steps>", 200, 100, "#0f0", "#111")
	if !strings.Contains(svg, `stroke="#0f0"`) || !strings.Contains(svg, `fill="#111"`) {
		t.Error("missing colors")
	}
	// the first point sits on the 10% margin
	if !strings.Contains(svg, "d=\"M16.7,91.7") {
		t.Errorf("unexpected path start:\n%s", svg)
	}
	if strings.Count(svg, " L") != 2 || strings.Count(svg, "<circle") != 3 {
		t.Error("expected two line segments and three dots")
	}
	if !strings.Contains(svg, "bubble_sort &lt;steps&gt;") {
		t.Error("caption should be escaped")
	}
}
