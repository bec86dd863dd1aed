package analyzer

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/ivlev/reelcut/internal/system"
)

// DiffDetector compares downscaled grayscale frames by mean absolute difference.
type DiffDetector struct {
	Width     int
	Height    int
	Threshold float64 // mean per-pixel difference below which frames are static
}

// NewDiffDetector creates a detector with 200x150 thumbnails and threshold 5.
func NewDiffDetector() *DiffDetector {
	return &DiffDetector{
		Width:     200,
		Height:    150,
		Threshold: 5.0,
	}
}

func (d *DiffDetector) Thumbnail(img image.Image) *image.Gray {
	thumb := system.GetGray(image.Rect(0, 0, d.Width, d.Height))
	draw.ApproxBiLinear.Scale(thumb, thumb.Bounds(), img, img.Bounds(), draw.Src, nil)
	return thumb
}

func (d *DiffDetector) Changed(ref, cur *image.Gray) bool {
	if ref == nil || cur == nil {
		return true
	}
	return MeanAbsDiff(ref, cur) >= d.Threshold
}

// MeanAbsDiff averages |a-b| over the overlapping area of two gray images.
func MeanAbsDiff(a, b *image.Gray) float64 {
	r := a.Bounds().Intersect(b.Bounds())
	if r.Empty() {
		return 255
	}
	var sum uint64
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			pa := int(a.GrayAt(x, y).Y)
			pb := int(b.GrayAt(x, y).Y)
			if pa > pb {
				sum += uint64(pa - pb)
			} else {
				sum += uint64(pb - pa)
			}
		}
	}
	return float64(sum) / float64(r.Dx()*r.Dy())
}
