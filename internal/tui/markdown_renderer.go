package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// minMarkdownWidth keeps glamour from wrapping the welcome text into a sliver.
const minMarkdownWidth = 24

// markdownRenderer renders welcome-pane markdown. The view calls it on every frame,
// so the last output is kept until the source or the wrap width changes.
type markdownRenderer struct {
	width    int
	renderer *glamour.TermRenderer

	source   string
	rendered string
}

// render returns markdown as styled terminal text wrapped to width, or the raw
// markdown when glamour cannot render it.
func (r *markdownRenderer) render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}
	width = max(width, minMarkdownWidth)
	if r.renderer != nil && r.width == width && r.source == markdown {
		return r.rendered
	}

	if r.renderer == nil || r.width != width {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return markdown
		}
		r.renderer = renderer
		r.width = width
	}

	out, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	r.source = markdown
	r.rendered = strings.Trim(out, "\n")
	return r.rendered
}
