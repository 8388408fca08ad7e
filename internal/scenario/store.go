package scenario

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/san-kum/stepviz/internal/step"
)

var (
	ErrNotFound = errors.New("scenario: not found")
	ErrBadID    = errors.New("scenario: bad id")
)

const (
	metadataFile = "metadata.json"
	scenarioFile = "scenario.json"
)

// Store keeps scenarios on disk, one directory per saved scenario.
type Store struct {
	baseDir string
}

func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Dir() string { return s.baseDir }

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type Metadata struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Algorithm string         `json:"algorithm,omitempty"`
	Kind      string         `json:"kind"`
	Timestamp time.Time      `json:"timestamp"`
	Steps     int            `json:"steps"`
	Actions   map[string]int `json:"actions"`
	Source    string         `json:"source,omitempty"`
}

// checkID rejects ids that would resolve outside the store directory.
func checkID(id string) error {
	if id == "" || id == "." || strings.Contains(id, "..") || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: %q", ErrBadID, id)
	}
	return nil
}

func summarize(steps []step.Step) map[string]int {
	counts := make(map[string]int)
	for _, st := range steps {
		counts[string(st.Action)]++
	}
	return counts
}

// Save writes sc under a new id and returns it. source records where the
// scenario came from (a file path or the compute service URL).
func (s *Store) Save(sc *Scenario, source string) (string, error) {
	now := time.Now()
	slug := strings.NewReplacer(" ", "-", "/", "-", `\`, "-", "..", "-").Replace(strings.ToLower(sc.Name))
	if slug == "" {
		slug = string(sc.Kind)
	}
	id := fmt.Sprintf("%s_%d", slug, now.UnixNano())
	dir := filepath.Join(s.baseDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	meta := Metadata{
		ID:        id,
		Name:      sc.Name,
		Algorithm: sc.Algorithm,
		Kind:      string(sc.Kind),
		Timestamp: now,
		Steps:     len(sc.Steps),
		Actions:   summarize(sc.Steps),
		Source:    source,
	}

	f, err := os.Create(filepath.Join(dir, metadataFile))
	if err != nil {
		return "", err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := WriteFile(filepath.Join(dir, scenarioFile), sc); err != nil {
		return "", err
	}
	return id, nil
}

// List returns the metadata of every readable scenario, newest first.
func (s *Store) List() ([]Metadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Metadata{}, nil
		}
		return nil, err
	}

	out := make([]Metadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		out = append(out, *meta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (s *Store) Load(id string) (*Metadata, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadScenario reads the scenario saved under id.
func (s *Store) LoadScenario(id string) (*Scenario, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	path := filepath.Join(s.baseDir, id, scenarioFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return LoadFile(path)
}

// Resolve loads a scenario from a file path or, failing that, a store id.
func (s *Store) Resolve(ref string) (*Scenario, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		return LoadFile(ref)
	}
	return s.LoadScenario(ref)
}
