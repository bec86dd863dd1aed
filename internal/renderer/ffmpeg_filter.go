package renderer

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ivlev/reelcut/internal/config"
	"github.com/ivlev/reelcut/internal/effects"
)

// Graph is an ffmpeg invocation minus the encoder and output settings.
type Graph struct {
	Inputs   [][]string
	Filter   string
	VideoOut string
	AudioOut string
	Duration float64
	Output   string
}

// Args returns the input, filter_complex and map arguments.
func (g *Graph) Args() []string {
	var args []string
	for _, in := range g.Inputs {
		args = append(args, in...)
	}
	args = append(args, "-filter_complex", g.Filter, "-map", g.VideoOut)
	if g.AudioOut != "" {
		args = append(args, "-map", g.AudioOut)
	}
	args = append(args, "-t", fmt.Sprintf("%.3f", g.Duration))
	return args
}

type cutOps struct {
	cut, comp, fade *Operation
}

// BuildFilterGraph translates ops into one filter_complex. Each cut is read
// with input seeking; narration clips are delayed onto the timeline and the
// background bed is looped with -stream_loop.
func BuildFilterGraph(ops []Operation, eff effects.Effect, base config.ClipParams) (*Graph, error) {
	cuts := map[int]*cutOps{}
	var narration []Operation
	var bg, bgFade, write *Operation

	for i := range ops {
		op := &ops[i]
		switch {
		case op.Kind == OpWrite:
			write = op
		case op.Track == TrackBackground && op.Kind == OpSetAudio:
			bg = op
		case op.Track == TrackBackground && op.Kind == OpFade:
			bgFade = op
		case op.Kind == OpSetAudio:
			narration = append(narration, *op)
		default:
			c := cuts[op.Index]
			if c == nil {
				c = &cutOps{}
				cuts[op.Index] = c
			}
			switch op.Kind {
			case OpCut:
				c.cut = op
			case OpComposite:
				c.comp = op
			case OpFade:
				c.fade = op
			}
		}
	}
	if write == nil {
		return nil, errors.New("render operations have no write step")
	}
	if len(cuts) == 0 {
		return nil, errors.New("render operations have no cuts")
	}

	indices := make([]int, 0, len(cuts))
	for idx := range cuts {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	g := &Graph{Duration: write.Duration, Output: write.Path}
	var filters []string
	var concatIn strings.Builder

	for n, idx := range indices {
		c := cuts[idx]
		if c.cut == nil {
			return nil, fmt.Errorf("cut %d has no source operation", idx)
		}
		input := len(g.Inputs)
		g.Inputs = append(g.Inputs, []string{
			"-ss", fmt.Sprintf("%.3f", c.cut.Start),
			"-t", fmt.Sprintf("%.3f", c.cut.Duration),
			"-i", c.cut.Source,
		})

		params := base
		params.Index = idx
		params.Duration = c.cut.Duration
		params.Zoom = 1
		params.FadeIn = 0
		params.Caption = ""
		if c.comp != nil {
			params.Zoom = c.comp.Zoom
			params.Caption = c.comp.Caption
		}
		if c.fade != nil {
			params.FadeIn = c.fade.Duration
		}

		// tpad clones the last frame when the source runs out before the cut does.
		label := fmt.Sprintf("[v%d]", n)
		filters = append(filters, fmt.Sprintf("[%d:v]setpts=PTS-STARTPTS,%s,tpad=stop_mode=clone:stop_duration=%.3f,trim=duration=%.3f,setpts=PTS-STARTPTS%s",
			input, eff.GenerateFilter(params), c.cut.Duration, c.cut.Duration, label))
		concatIn.WriteString(label)
	}
	filters = append(filters, fmt.Sprintf("%sconcat=n=%d:v=1:a=0[vout]", concatIn.String(), len(indices)))
	g.VideoOut = "[vout]"

	sort.SliceStable(narration, func(i, j int) bool { return narration[i].At < narration[j].At })
	var audioLabels []string
	for n, op := range narration {
		input := len(g.Inputs)
		g.Inputs = append(g.Inputs, []string{"-i", op.Source})
		label := fmt.Sprintf("[n%d]", n)
		delay := int(math.Max(0, op.At)*1000 + 0.5)
		filters = append(filters, fmt.Sprintf("[%d:a]atrim=duration=%.3f,asetpts=PTS-STARTPTS,volume=%.3f,adelay=%d:all=1%s",
			input, op.Duration, op.Gain, delay, label))
		audioLabels = append(audioLabels, label)
	}

	if bg != nil {
		input := len(g.Inputs)
		g.Inputs = append(g.Inputs, []string{"-stream_loop", fmt.Sprintf("%d", max(bg.Loops-1, 0)), "-i", bg.Source})
		chain := fmt.Sprintf("[%d:a]atrim=duration=%.3f,asetpts=PTS-STARTPTS,volume=%.3f", input, bg.Duration, bg.Gain)
		if bgFade != nil && bgFade.Duration > 0 {
			chain += fmt.Sprintf(",afade=t=out:st=%.3f:d=%.3f", bgFade.At, bgFade.Duration)
		}
		filters = append(filters, chain+"[bg]")
		audioLabels = append(audioLabels, "[bg]")
	}

	switch len(audioLabels) {
	case 0:
	case 1:
		filters = append(filters, fmt.Sprintf("%sapad,atrim=duration=%.3f[aout]", audioLabels[0], g.Duration))
		g.AudioOut = "[aout]"
	default:
		filters = append(filters, fmt.Sprintf("%samix=inputs=%d:duration=longest:normalize=0,apad,atrim=duration=%.3f[aout]",
			strings.Join(audioLabels, ""), len(audioLabels), g.Duration))
		g.AudioOut = "[aout]"
	}

	g.Filter = strings.Join(filters, ";")
	return g, nil
}
