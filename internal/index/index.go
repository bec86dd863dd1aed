package index

import (
	"sort"
	"strings"
)

// Observation is the text seen on screen at one sampled instant.
type Observation struct {
	Timestamp float64
	Text      string
}

// Index answers "what text is visible during [start, end)?" for one source video.
type Index struct {
	obs []Observation
}

// New sorts a copy of obs by timestamp. Equal timestamps keep their input order.
func New(obs []Observation) *Index {
	sorted := make([]Observation, len(obs))
	copy(sorted, obs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})
	return &Index{obs: sorted}
}

func (x *Index) Len() int {
	return len(x.obs)
}

// Observations returns a copy of all observations in timestamp order.
func (x *Index) Observations() []Observation {
	out := make([]Observation, len(x.obs))
	copy(out, x.obs)
	return out
}

// ObservationsInWindow returns every observation with start <= timestamp < end.
func (x *Index) ObservationsInWindow(start, end float64) []Observation {
	if end <= start {
		return nil
	}
	lo := sort.Search(len(x.obs), func(i int) bool { return x.obs[i].Timestamp >= start })
	hi := sort.Search(len(x.obs), func(i int) bool { return x.obs[i].Timestamp >= end })
	if lo >= hi {
		return nil
	}
	return x.obs[lo:hi:hi]
}

// TextInWindow joins the text of the observations in [start, end) with spaces.
func (x *Index) TextInWindow(start, end float64) string {
	win := x.ObservationsInWindow(start, end)
	if len(win) == 0 {
		return ""
	}
	var b strings.Builder
	for i, o := range win {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(o.Text)
	}
	return b.String()
}
