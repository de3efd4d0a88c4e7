package site

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/adocshq/adocs/internal/sections"
)

// Preview renders a documentation structure as a standalone HTML page:
// the outline on the left, section content (markdown) rendered inline.
type Preview struct {
	md goldmark.Markdown
}

// NewPreview creates a preview renderer.
func NewPreview() *Preview {
	return &Preview{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				highlighting.NewHighlighting(
					highlighting.WithStyle("github"),
				),
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				html.WithUnsafe(),
			),
		),
	}
}

type previewSection struct {
	Name        string
	Description string
	Icon        string
	IsCustom    bool
	ContentHTML template.HTML
	Children    []previewSection
}

type previewData struct {
	Title    string
	Sections []previewSection
}

// Render produces the HTML page for a repository's final structure.
func (p *Preview) Render(title string, st *sections.Structure) ([]byte, error) {
	tmpl, err := template.New("preview").Parse(previewTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing preview template: %w", err)
	}

	data := previewData{Title: title}
	data.Sections, err = p.convert(st.Sections)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering preview: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile renders the preview and writes it to path.
func (p *Preview) WriteFile(path, title string, st *sections.Structure) error {
	data, err := p.Render(title, st)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (p *Preview) convert(secs []sections.Section) ([]previewSection, error) {
	out := make([]previewSection, 0, len(secs))
	for _, sec := range secs {
		ps := previewSection{
			Name:        sec.Name,
			Description: sec.Description,
			Icon:        sec.Icon,
			IsCustom:    sec.IsCustom,
		}
		if sec.Content != "" {
			var buf bytes.Buffer
			if err := p.md.Convert([]byte(sec.Content), &buf); err != nil {
				return nil, fmt.Errorf("rendering section %q: %w", sec.Name, err)
			}
			ps.ContentHTML = template.HTML(buf.String())
		}
		children, err := p.convert(sec.Children)
		if err != nil {
			return nil, err
		}
		ps.Children = children
		out = append(out, ps)
	}
	return out, nil
}
