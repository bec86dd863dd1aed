package source

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FrameSource lists stills sampled at a fixed interval, in file-name order.
type FrameSource struct {
	paths    []string
	interval float64
}

func NewFrameSource(dir string, interval float64) (*FrameSource, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("frame interval must be > 0, got %v", interval)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".jpg" || ext == ".jpeg" || ext == ".png" {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	return &FrameSource{paths: paths, interval: interval}, nil
}

func (s *FrameSource) Count() int {
	return len(s.paths)
}

// Frames assigns each still the timestamp index*interval.
func (s *FrameSource) Frames() []Frame {
	frames := make([]Frame, len(s.paths))
	for i, p := range s.paths {
		frames[i] = Frame{Index: i, Timestamp: float64(i) * s.interval, Path: p}
	}
	return frames
}

// Decode reads a still from disk.
func Decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
