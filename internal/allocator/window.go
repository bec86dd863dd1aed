package allocator

// Window is a span of source-video time.
type Window struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
}

func (w Window) Duration() float64 {
	return w.End - w.Start
}

// Conflicts reports whether w intrudes into u by more than tol on either side.
func (w Window) Conflicts(u Window, tol float64) bool {
	return !(w.End <= u.Start+tol || w.Start >= u.End-tol)
}

// Strategy records how a window was chosen.
type Strategy string

const (
	Matched       Strategy = "matched"
	FirstFit      Strategy = "first_fit"
	OverlapAtZero Strategy = "overlap_at_zero"
	Preferred     Strategy = "preferred"
)

// Allocation is the result of one allocation call.
type Allocation struct {
	Window   Window   `yaml:"window"`
	Score    int      `yaml:"score"`
	Strategy Strategy `yaml:"strategy"`
	Clamped  bool     `yaml:"clamped,omitempty"`
	Warning  string   `yaml:"warning,omitempty"`
}
