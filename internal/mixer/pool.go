package mixer

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var audioExts = map[string]bool{".mp3": true, ".wav": true, ".m4a": true, ".aac": true}

// Pool groups background tracks by mood, one sub-directory per mood.
type Pool struct {
	byMood map[string][]string
}

// LoadPool scans dir/<mood>/ for audio files. Missing directories are empty moods.
func LoadPool(dir string, moods []string) (*Pool, error) {
	p := &Pool{byMood: make(map[string][]string)}
	for _, mood := range moods {
		entries, err := os.ReadDir(filepath.Join(dir, mood))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() || !audioExts[strings.ToLower(filepath.Ext(e.Name()))] {
				continue
			}
			p.byMood[mood] = append(p.byMood[mood], filepath.Join(dir, mood, e.Name()))
		}
		sort.Strings(p.byMood[mood])
	}
	return p, nil
}

// Mood returns the tracks tagged with mood.
func (p *Pool) Mood(mood string) []string {
	return p.byMood[mood]
}

// All returns every track in the pool, sorted.
func (p *Pool) All() []string {
	var all []string
	for _, tracks := range p.byMood {
		all = append(all, tracks...)
	}
	sort.Strings(all)
	return all
}

// Select returns defaultPath if it exists, otherwise a random pool track, otherwise "".
func (p *Pool) Select(rng *rand.Rand, defaultPath string) string {
	if defaultPath != "" {
		if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
			return defaultPath
		}
	}
	all := p.All()
	if len(all) == 0 {
		return ""
	}
	return all[rng.Intn(len(all))]
}
