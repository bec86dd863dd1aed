package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Cache persists observations keyed by source-video identity.
// A hit is used as-is; there is no staleness check against the source file.
type Cache interface {
	Load(ctx context.Context, identity string) ([]Observation, bool, error)
	Save(ctx context.Context, identity string, obs []Observation) error
}

// Identity derives the cache key for a source video from its absolute path.
func Identity(videoPath string) string {
	abs, err := filepath.Abs(videoPath)
	if err != nil {
		abs = videoPath
	}
	sum := sha256.Sum256([]byte(abs))
	return filepath.Base(videoPath) + "-" + hex.EncodeToString(sum[:])[:12]
}

// FormatTimestamp renders a timestamp as a cache key.
func FormatTimestamp(ts float64) string {
	return strconv.FormatFloat(ts, 'f', 2, 64)
}

// ParseTimestamps turns a timestamp->text mapping back into ordered observations.
func ParseTimestamps(m map[string]string) ([]Observation, error) {
	obs := make([]Observation, 0, len(m))
	for k, v := range m {
		ts, err := strconv.ParseFloat(k, 64)
		if err != nil {
			return nil, fmt.Errorf("bad timestamp key %q: %w", k, err)
		}
		obs = append(obs, Observation{Timestamp: ts, Text: v})
	}
	sort.Slice(obs, func(i, j int) bool { return obs[i].Timestamp < obs[j].Timestamp })
	return obs, nil
}

type cacheFile struct {
	Source       string            `yaml:"source"`
	Interval     float64           `yaml:"interval,omitempty"`
	Observations map[string]string `yaml:"observations"`
}

// FileCache stores one YAML file per identity under Dir, or a single file at Path.
type FileCache struct {
	Dir      string
	Path     string
	Interval float64
}

func NewFileCache(dir string, interval float64) *FileCache {
	return &FileCache{Dir: dir, Interval: interval}
}

func (c *FileCache) file(identity string) string {
	if c.Path != "" {
		return c.Path
	}
	return filepath.Join(c.Dir, identity+".yaml")
}

func (c *FileCache) Load(_ context.Context, identity string) ([]Observation, bool, error) {
	data, err := os.ReadFile(c.file(identity))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read index cache: %w", err)
	}

	var f cacheFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, false, fmt.Errorf("parse index cache %s: %w", c.file(identity), err)
	}
	obs, err := ParseTimestamps(f.Observations)
	if err != nil {
		return nil, false, err
	}
	return obs, true, nil
}

func (c *FileCache) Save(_ context.Context, identity string, obs []Observation) error {
	f := cacheFile{
		Source:       identity,
		Interval:     c.Interval,
		Observations: make(map[string]string, len(obs)),
	}
	for _, o := range obs {
		f.Observations[FormatTimestamp(o.Timestamp)] = o.Text
	}
	data, err := yaml.Marshal(&f)
	if err != nil {
		return err
	}

	path := c.file(identity)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
