package analyzer

import "image"

// Detector decides whether a sampled frame differs enough from a reference
// frame to need a fresh text extraction.
type Detector interface {
	// Thumbnail reduces a frame to the representation Changed compares.
	Thumbnail(img image.Image) *image.Gray
	// Changed reports whether cur is not near-identical to ref.
	Changed(ref, cur *image.Gray) bool
}
