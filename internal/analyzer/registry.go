package analyzer

import (
	"fmt"
	"image"
)

// NewDetector creates a detector based on the specified variant
func NewDetector(variant string, threshold float64, width, height int) (Detector, error) {
	switch variant {
	case "absdiff", "":
		d := NewDiffDetector()
		if threshold > 0 {
			d.Threshold = threshold
		}
		if width > 0 && height > 0 {
			d.Width, d.Height = width, height
		}
		return d, nil
	case "never":
		return alwaysChanged{}, nil
	default:
		return nil, fmt.Errorf("unknown detector variant: %s", variant)
	}
}

// alwaysChanged disables static-frame reuse.
type alwaysChanged struct{}

func (alwaysChanged) Thumbnail(img image.Image) *image.Gray { return nil }
func (alwaysChanged) Changed(ref, cur *image.Gray) bool     { return true }
