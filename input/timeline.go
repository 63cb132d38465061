package input

import (
	"fmt"
	"os"
	"strings"

	"github.com/milk9111/orbiter/program"
	"gopkg.in/yaml.v3"
)

// Span holds keys down for ticks in [From, To).
type Span struct {
	From int      `yaml:"from"`
	To   int      `yaml:"to"`
	Keys []string `yaml:"keys"`
	Mods []string `yaml:"mods"`
}

// Timeline scripts key presses for headless runs. Overlapping spans combine.
type Timeline struct {
	Spans []Span `yaml:"spans"`
}

// LoadTimeline reads a yaml timeline from disk.
func LoadTimeline(path string) (Timeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Timeline{}, fmt.Errorf("input: load timeline %s: %w", path, err)
	}
	return ParseTimeline(data)
}

// ParseTimeline decodes and checks a yaml timeline.
func ParseTimeline(data []byte) (Timeline, error) {
	var tl Timeline
	if err := yaml.Unmarshal(data, &tl); err != nil {
		return Timeline{}, fmt.Errorf("input: unmarshal timeline: %w", err)
	}
	for i, span := range tl.Spans {
		if span.From < 0 || span.To < span.From {
			return Timeline{}, fmt.Errorf("input: span %d: invalid range [%d, %d)", i, span.From, span.To)
		}
		for _, k := range span.Keys {
			if _, err := ParseKey(k); err != nil {
				return Timeline{}, fmt.Errorf("input: span %d: %w", i, err)
			}
		}
		for _, m := range span.Mods {
			if _, err := parseMod(m); err != nil {
				return Timeline{}, fmt.Errorf("input: span %d: %w", i, err)
			}
		}
	}
	return tl, nil
}

// At returns the keyboard state for tick.
func (tl Timeline) At(tick int) Snapshot {
	s := Snapshot{Pressed: map[Key]bool{}}
	for _, span := range tl.Spans {
		if tick < span.From || tick >= span.To {
			continue
		}
		for _, k := range span.Keys {
			if key, err := ParseKey(k); err == nil {
				s.Pressed[key] = true
			}
		}
		for _, m := range span.Mods {
			if mod, err := parseMod(m); err == nil {
				s.Mods |= mod
			}
		}
	}
	return s
}

// Len is the first tick after every span has ended.
func (tl Timeline) Len() int {
	n := 0
	for _, span := range tl.Spans {
		if span.To > n {
			n = span.To
		}
	}
	return n
}

func parseMod(s string) (program.ModKey, error) {
	switch strings.ToLower(s) {
	case "shift":
		return program.ModShift, nil
	case "ctrl", "control":
		return program.ModControl, nil
	case "alt":
		return program.ModAlt, nil
	case "super", "meta":
		return program.ModSuper, nil
	default:
		return 0, fmt.Errorf("unknown modifier %q", s)
	}
}
