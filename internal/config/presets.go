package config

import "sort"

// Preset is a named pacing. Fraction places the speed value between the
// configured bounds: 0 is the slowest, 1 the fastest.
type Preset struct {
	Name        string
	Description string
	Fraction    float64
	// Instant skips every delay.
	Instant bool
}

var Presets = map[string]*Preset{
	"slow":    {Name: "slow", Description: "about one step per second", Fraction: 0},
	"normal":  {Name: "normal", Description: "the default classroom pace", Fraction: 0.5},
	"fast":    {Name: "fast", Description: "skim through long step lists", Fraction: 0.9},
	"instant": {Name: "instant", Description: "no delay; jump to the final scene", Fraction: 1, Instant: true},
}

func GetPreset(name string) *Preset {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p
}

// ListPresets returns preset names from slowest to fastest.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := Presets[names[i]], Presets[names[j]]
		if a.Fraction != b.Fraction {
			return a.Fraction < b.Fraction
		}
		return a.Name < b.Name
	})
	return names
}

func (p *Preset) Value(s SpeedConfig) int {
	return s.Min + int(p.Fraction*float64(s.Max-s.Min)+0.5)
}
