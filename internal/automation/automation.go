// Package automation runs scripted fetches against the compute service: a
// YAML playlist of algorithm requests stored one after another, and size
// sweeps that measure how step counts grow with the input.
package automation

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/san-kum/stepviz/internal/compute"
	"github.com/san-kum/stepviz/internal/scenario"
	"gopkg.in/yaml.v3"
)

// Fetcher turns an algorithm request into a scenario.
type Fetcher interface {
	Fetch(ctx context.Context, algorithm string, opts compute.FetchOptions) (*scenario.Scenario, error)
}

// Saver stores a fetched scenario and returns its id.
type Saver interface {
	Save(sc *scenario.Scenario, source string) (string, error)
}

// Playlist is a scripted sequence of fetches.
type Playlist struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Entries     []Entry `yaml:"entries"`
}

// Entry is a single request in a playlist.
type Entry struct {
	Algorithm string         `yaml:"algorithm"`
	Size      int            `yaml:"size"`
	Sorted    bool           `yaml:"sorted"`
	Target    *int           `yaml:"target"`
	Start     string         `yaml:"start"`
	Capacity  *int           `yaml:"capacity"`
	Items     []compute.Item `yaml:"items"`
	N         *int           `yaml:"n"`
	SaveAs    string         `yaml:"save_as"`
}

func (e Entry) options() compute.FetchOptions {
	return compute.FetchOptions{
		Size:      e.Size,
		Sorted:    e.Sorted,
		Target:    e.Target,
		StartNode: e.Start,
		Capacity:  e.Capacity,
		Items:     e.Items,
		N:         e.N,
	}
}

// LoadPlaylist loads a playlist from a YAML file
func LoadPlaylist(path string) (*Playlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var pl Playlist
	if err := yaml.Unmarshal(data, &pl); err != nil {
		return nil, err
	}
	for i, e := range pl.Entries {
		if e.Algorithm == "" {
			return nil, fmt.Errorf("playlist %s: entry %d has no algorithm", path, i+1)
		}
	}
	return &pl, nil
}

// RunPlaylist fetches and stores every entry in order and returns the stored
// ids. It stops at the first failure.
func RunPlaylist(ctx context.Context, pl *Playlist, f Fetcher, s Saver, source string, w io.Writer) ([]string, error) {
	ids := make([]string, 0, len(pl.Entries))

	for i, e := range pl.Entries {
		fmt.Fprintf(w, "fetching %d/%d: %s\n", i+1, len(pl.Entries), e.Algorithm)

		sc, err := f.Fetch(ctx, e.Algorithm, e.options())
		if err != nil {
			return ids, fmt.Errorf("entry %d: %w", i+1, err)
		}
		if e.SaveAs != "" {
			sc.Name = e.SaveAs
		}

		id, err := s.Save(sc, source)
		if err != nil {
			return ids, fmt.Errorf("entry %d save: %w", i+1, err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// SizeSweep fetches one algorithm at evenly spaced input sizes.
type SizeSweep struct {
	Algorithm string
	SizeMin   int
	SizeMax   int
	NumPoints int
	Sorted    bool
}

// SweepResult holds the step counts of one sweep point.
type SweepResult struct {
	Size    int
	Steps   int
	Actions map[string]int
}

// RunSweep fetches every sweep point concurrently and returns the results
// in size order. Any failed point fails the sweep.
func RunSweep(ctx context.Context, sweep *SizeSweep, f Fetcher, w io.Writer) ([]SweepResult, error) {
	if sweep.NumPoints < 2 || sweep.SizeMin < 1 || sweep.SizeMax <= sweep.SizeMin {
		return nil, fmt.Errorf("sweep needs at least 2 points over a growing size range, got %d points in [%d, %d]",
			sweep.NumPoints, sweep.SizeMin, sweep.SizeMax)
	}

	results := make([]SweepResult, sweep.NumPoints)
	errs := make([]error, sweep.NumPoints)
	sizeStep := float64(sweep.SizeMax-sweep.SizeMin) / float64(sweep.NumPoints-1)

	var wg sync.WaitGroup
	for i := 0; i < sweep.NumPoints; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			size := sweep.SizeMin + int(float64(idx)*sizeStep+0.5)
			sc, err := f.Fetch(ctx, sweep.Algorithm, compute.FetchOptions{Size: size, Sorted: sweep.Sorted})
			if err != nil {
				errs[idx] = fmt.Errorf("size %d: %w", size, err)
				return
			}

			actions := make(map[string]int)
			for _, st := range sc.Steps {
				actions[string(st.Action)]++
			}
			results[idx] = SweepResult{Size: size, Steps: len(sc.Steps), Actions: actions}
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	for i, r := range results {
		fmt.Fprintf(w, "sweep %d/%d: size=%d steps=%d\n", i+1, sweep.NumPoints, r.Size, r.Steps)
	}

	return results, nil
}
