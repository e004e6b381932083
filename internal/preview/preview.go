// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package preview renders a read-only visual approximation of an entity
// record, strictly from current form state. Rendering is a pure function:
// identical records produce identical markup, and nothing is fetched.
package preview

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/orgdesk/orgdesk/internal/editor"
	"github.com/orgdesk/orgdesk/internal/schema"
)

// DefaultDisplaySize is used when a font-size value is outside the lookup
// table and is not a literal pixel size.
const DefaultDisplaySize = "1.75rem"

// displaySizes maps the closed font-size enum to display sizes.
var displaySizes = map[string]string{
	"h1": "2.5rem",
	"h2": "2rem",
	"h3": "1.75rem",
	"h4": "1.5rem",
	"h5": "1.25rem",
	"h6": "1rem",
	"p":  "1rem",
}

var pixelSize = regexp.MustCompile(`^\d{1,3}px$`)

// DisplaySize resolves a stored font-size value to a CSS size. Heading
// tags map through the static table, literal pixel strings pass through,
// anything else falls back to the default instead of failing.
func DisplaySize(v string) string {
	if size, ok := displaySizes[v]; ok {
		return size
	}
	if pixelSize.MatchString(v) {
		return v
	}
	return DefaultDisplaySize
}

// URLResolver turns a stored remote media path into an absolute URL.
// api.Client satisfies this.
type URLResolver interface {
	MediaURL(path string) string
}

// Renderer renders entity previews.
type Renderer struct {
	resolver URLResolver
	tmpl     *template.Template
	md       goldmark.Markdown
	policy   *bluemonday.Policy
}

// New creates a Renderer using the given media URL resolver.
func New(resolver URLResolver) *Renderer {
	return &Renderer{
		resolver: resolver,
		tmpl:     template.Must(template.New("preview").Parse(previewTemplate)),
		md:       goldmark.New(),
		policy:   bluemonday.UGCPolicy(),
	}
}

type textBlock struct {
	Tag   string
	Text  string
	Style template.CSS
}

type mediaBlock struct {
	Label string
	URL   string
	Image bool
}

type previewData struct {
	BackgroundStyle template.CSS
	VideoURL        string
	Blocks          []textBlock
	Media           []mediaBlock
	Body            template.HTML
}

// Render produces the preview markup for a record.
func (p *Renderer) Render(r *editor.Record) (template.HTML, error) {
	entity := r.Entity()
	data := previewData{}

	for _, f := range entity.Fields {
		// Media-group members are handled via their group below.
		if _, inGroup := entity.GroupFor(f.Name); inGroup {
			continue
		}

		switch f.Kind {
		case schema.KindText, schema.KindTextarea:
			text := r.Value(f.Name)
			if text == "" {
				continue
			}
			data.Blocks = append(data.Blocks, p.styledBlock(r, f.Name, text))
		case schema.KindMarkdown:
			body, err := p.renderMarkdown(r.Value(f.Name))
			if err != nil {
				return "", err
			}
			data.Body = body
		case schema.KindFile:
			if mb, ok := p.fileBlock(r, f); ok {
				data.Media = append(data.Media, mb)
			}
		}
	}

	if len(entity.MediaGroups) > 0 {
		p.applyBackground(r, &entity.MediaGroups[0], &data)
	}

	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering preview: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// styledBlock builds a heading block from a text field and its optional
// style siblings (<name>Color, <name>FontSize). The heading tag comes from
// the closed font-size enum, never from the raw string.
func (p *Renderer) styledBlock(r *editor.Record, name, text string) textBlock {
	entity := r.Entity()

	tag := "p"
	size := ""
	if _, ok := entity.Field(name + "FontSize"); ok {
		raw := r.Value(name + "FontSize")
		tag = string(schema.ParseFontSize(raw))
		size = DisplaySize(raw)
	}

	var style strings.Builder
	if size != "" {
		fmt.Fprintf(&style, "font-size:%s;", size)
	}
	if _, ok := entity.Field(name + "Color"); ok {
		if c := r.Value(name + "Color"); isHexColor(c) {
			fmt.Fprintf(&style, "color:%s;", c)
		}
	}

	return textBlock{Tag: tag, Text: text, Style: template.CSS(style.String())}
}

// applyBackground maps the group's discriminant to the corresponding
// background: a color style, an image style, or a video element. Inactive
// members are ignored entirely.
func (p *Renderer) applyBackground(r *editor.Record, g *schema.MediaGroup, data *previewData) {
	switch r.Value(g.TypeField) {
	case schema.BGColor:
		if c := r.Value(g.Color); isHexColor(c) {
			data.BackgroundStyle = template.CSS("background-color:" + c + ";")
		}
	case schema.BGImage:
		if url := p.resolveURL(r, g.Image); url != "" {
			url = strings.ReplaceAll(url, "'", "%27")
			data.BackgroundStyle = template.CSS("background-image:url('" + url + "');")
		}
	case schema.BGVideo:
		if g.Video != "" {
			data.VideoURL = p.resolveURL(r, g.Video)
		}
	}
}

// fileBlock renders standalone file fields (logos, photos, brochures).
func (p *Renderer) fileBlock(r *editor.Record, f schema.Field) (mediaBlock, bool) {
	url := p.resolveURL(r, f.Name)
	if url == "" {
		return mediaBlock{}, false
	}
	return mediaBlock{
		Label: f.Label,
		URL:   url,
		Image: strings.HasPrefix(f.Accept, "image/"),
	}, true
}

// resolveURL prefers the local URL of a freshly staged file over the
// remote URL built from the stored path.
func (p *Renderer) resolveURL(r *editor.Record, name string) string {
	if staged := r.File(name); staged != nil && staged.PreviewURL != "" {
		return staged.PreviewURL
	}
	if path := r.Existing(name); path != "" {
		return p.resolver.MediaURL(path)
	}
	return ""
}

// renderMarkdown converts markdown to sanitized HTML.
func (p *Renderer) renderMarkdown(src string) (template.HTML, error) {
	if src == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := p.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return template.HTML(p.policy.SanitizeBytes(buf.Bytes())), nil
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

func isHexColor(s string) bool {
	return hexColor.MatchString(s)
}

const previewTemplate = `<div class="entity-preview"{{if .BackgroundStyle}} style="{{.BackgroundStyle}}"{{end}}>
{{- if .VideoURL}}
<video class="entity-preview-bg" src="{{.VideoURL}}" autoplay muted loop></video>
{{- end}}
{{- range .Blocks}}
{{- if eq .Tag "h1"}}<h1 style="{{.Style}}">{{.Text}}</h1>
{{- else if eq .Tag "h2"}}<h2 style="{{.Style}}">{{.Text}}</h2>
{{- else if eq .Tag "h3"}}<h3 style="{{.Style}}">{{.Text}}</h3>
{{- else if eq .Tag "h4"}}<h4 style="{{.Style}}">{{.Text}}</h4>
{{- else if eq .Tag "h5"}}<h5 style="{{.Style}}">{{.Text}}</h5>
{{- else if eq .Tag "h6"}}<h6 style="{{.Style}}">{{.Text}}</h6>
{{- else}}<p style="{{.Style}}">{{.Text}}</p>
{{- end}}
{{- end}}
{{- if .Body}}
<div class="entity-preview-body">{{.Body}}</div>
{{- end}}
{{- range .Media}}
{{- if .Image}}
<figure><img src="{{.URL}}" alt="{{.Label}}"><figcaption>{{.Label}}</figcaption></figure>
{{- else}}
<p><a href="{{.URL}}">{{.Label}}</a></p>
{{- end}}
{{- end}}
</div>`
