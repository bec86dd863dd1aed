package effects

import (
	"fmt"
	"strings"

	"github.com/ivlev/reelcut/internal/config"
)

type Effect interface {
	GenerateFilter(params config.ClipParams) string
}

// DefaultEffect reframes a cut to the output size, with optional emphasis
// zoom, fade-in and burned-in caption.
type DefaultEffect struct{}

func (e *DefaultEffect) GenerateFilter(p config.ClipParams) string {
	var chain []string

	if p.Vertical {
		// Center crop to the output aspect before scaling.
		chain = append(chain, fmt.Sprintf("crop='min(iw,ih*%d/%d)':'min(ih,iw*%d/%d)'", p.Width, p.Height, p.Height, p.Width))
	}
	if p.Zoom > 1 {
		chain = append(chain, fmt.Sprintf("crop=iw/%.3f:ih/%.3f", p.Zoom, p.Zoom))
	}

	if p.Vertical {
		chain = append(chain, fmt.Sprintf("scale=%d:%d", p.Width, p.Height))
	} else {
		chain = append(chain, fmt.Sprintf(
			"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2",
			p.Width, p.Height, p.Width, p.Height,
		))
	}
	chain = append(chain, "setsar=1", fmt.Sprintf("fps=%d", p.FPS))

	if p.FadeIn > 0 {
		chain = append(chain, fmt.Sprintf("fade=t=in:st=0:d=%.3f", p.FadeIn))
	}

	if p.Caption != "" {
		text := fmt.Sprintf("drawtext=text='%s':fontsize=%d:fontcolor=white:borderw=3:bordercolor=black:x=(w-text_w)/2:y=h*0.78",
			EscapeDrawtext(p.Caption), p.FontSize)
		if p.FontFile != "" {
			text += fmt.Sprintf(":fontfile='%s'", EscapeDrawtext(p.FontFile))
		}
		chain = append(chain, text)
	}

	return strings.Join(chain, ",")
}

var drawtextEscaper = strings.NewReplacer(
	`\`, `\\\\`,
	`'`, "’",
	`:`, `\\:`,
	`%`, `\\%`,
)

// EscapeDrawtext escapes s for a quoted drawtext option inside filter_complex.
func EscapeDrawtext(s string) string {
	return drawtextEscaper.Replace(s)
}
