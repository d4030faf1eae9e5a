package markdown

import (
	"bytes"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
)

// Markdown wraps markdown source and renders it to sanitized HTML once.
type Markdown struct {
	// Source is the markdown source code.
	Source string

	renderedHTML *template.HTML
}

var (
	bfRenderer = blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.Safelink | blackfriday.NofollowLinks | blackfriday.Smartypants | blackfriday.SmartypantsDashes,
	})
	bfExtensions = blackfriday.NoIntraEmphasis | blackfriday.FencedCode | blackfriday.Autolink | blackfriday.Strikethrough | blackfriday.SpaceHeadings | blackfriday.NoEmptyLineBeforeBlock
	policy       = bluemonday.UGCPolicy()
)

func NewMarkdown(source string) *Markdown {
	return &Markdown{Source: source}
}

// Render converts the Markdown Source into sanitized HTML.
func (m *Markdown) Render() template.HTML {
	if m.renderedHTML != nil {
		return *m.renderedHTML
	}
	if m.Source == "" {
		empty := template.HTML("")
		m.renderedHTML = &empty
		return empty
	}

	safe := policy.SanitizeBytes(m.run())
	html := template.HTML(bytes.TrimSpace(safe))
	m.renderedHTML = &html
	return html
}

func (m *Markdown) run() []byte {
	return blackfriday.Run([]byte(m.Source),
		blackfriday.WithRenderer(bfRenderer),
		blackfriday.WithExtensions(bfExtensions),
	)
}
