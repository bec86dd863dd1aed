package scorer

import (
	"math/rand"
	"strings"

	"github.com/ivlev/reelcut/internal/index"
)

// NoMatch is the score of a window where no keyword occurs.
const NoMatch = -1

// Weights shape the keyword score: Base per matched keyword plus Bonus per
// occurrence, counting at most Cap occurrences.
type Weights struct {
	Base  int
	Bonus int
	Cap   int
}

func DefaultWeights() Weights {
	return Weights{Base: 10, Bonus: 1, Cap: 5}
}

// Scorer rates source-video windows against a keyword set.
type Scorer struct {
	idx *index.Index
	w   Weights
}

func New(idx *index.Index, w Weights) *Scorer {
	return &Scorer{idx: idx, w: w}
}

// ScoreWindow returns the keyword score of [start, end), or NoMatch.
func (s *Scorer) ScoreWindow(keywords []string, start, end float64) int {
	text := strings.ToLower(s.idx.TextInWindow(start, end))
	return s.Score(keywords, text)
}

// Score rates already-lowercased text.
func (s *Scorer) Score(keywords []string, text string) int {
	total := 0
	if text != "" {
		for _, kw := range keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			n := strings.Count(text, kw)
			if n == 0 {
				continue
			}
			total += s.w.Base + min(n, s.w.Cap)*s.w.Bonus
		}
	}
	if total == 0 {
		return NoMatch
	}
	return total
}

// Candidate is a scored window start.
type Candidate struct {
	Start float64
	Score int
}

// PickPlateau picks uniformly among candidates scoring at least ratio*best.
// It returns false for an empty slice.
func PickPlateau(cands []Candidate, ratio float64, rng *rand.Rand) (Candidate, bool) {
	if len(cands) == 0 {
		return Candidate{}, false
	}
	top := 0
	for i, c := range cands {
		if c.Score > cands[top].Score {
			top = i
		}
	}
	best := cands[top].Score
	if best <= 0 {
		return cands[top], true
	}

	floor := float64(best) * ratio
	var plateau []Candidate
	for _, c := range cands {
		if float64(c.Score) >= floor {
			plateau = append(plateau, c)
		}
	}
	if len(plateau) == 1 || rng == nil {
		return plateau[0], true
	}
	return plateau[rng.Intn(len(plateau))], true
}
