package narration

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrEmptyScript = errors.New("narration script has no segments")

// Segment is one narrated line and the footage it should play over.
type Segment struct {
	Text           string   `yaml:"text"`
	Keywords       []string `yaml:"keywords,omitempty"`
	MinDuration    float64  `yaml:"min_duration,omitempty"`
	PreferredStart *float64 `yaml:"preferred_start,omitempty"`
}

// LoadScript reads a YAML (or JSON) list of segments.
func LoadScript(path string) ([]Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read narration script: %w", err)
	}
	return ParseScript(data)
}

func ParseScript(data []byte) ([]Segment, error) {
	var segs []Segment
	if err := yaml.Unmarshal(data, &segs); err != nil {
		return nil, fmt.Errorf("parse narration script: %w", err)
	}
	if len(segs) == 0 {
		return nil, ErrEmptyScript
	}
	for i, s := range segs {
		if strings.TrimSpace(s.Text) == "" {
			return nil, fmt.Errorf("segment %d: empty text", i)
		}
		if s.MinDuration < 0 {
			return nil, fmt.Errorf("segment %d: negative min_duration %v", i, s.MinDuration)
		}
	}
	return segs, nil
}
