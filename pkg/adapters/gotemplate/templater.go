// Package gotemplate implements ports.Templater with html/template and a
// set of embedded builtin scene templates. Projects can override builtins
// or add their own by dropping HTML files into templates/components/.
package gotemplate

import (
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/RaaSaaR-org/vidgen/pkg/ports"
)

//go:embed templates/*.html
var builtinFS embed.FS

// Templater renders scene documents into standalone HTML pages.
type Templater struct {
	templates *template.Template
}

// New parses the builtin templates. Template names are the file stems:
// title-card, content-text, quote-card, lower-third, cta-card,
// split-screen, kinetic-text, slideshow, caption-overlay.
func New() (*Templater, error) {
	root := template.New("")
	entries, err := builtinFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("read builtin templates: %w", err)
	}
	for _, entry := range entries {
		data, err := builtinFS.ReadFile("templates/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read builtin template %s: %w", entry.Name(), err)
		}
		name := strings.TrimSuffix(entry.Name(), ".html")
		if _, err := root.New(name).Parse(string(data)); err != nil {
			return nil, fmt.Errorf("parse builtin template %s: %w", name, err)
		}
	}
	return &Templater{templates: root}, nil
}

// RegisterProjectTemplates loads <projectDir>/templates/components/*.html.
// Project templates with a builtin's name override the builtin.
func (t *Templater) RegisterProjectTemplates(projectDir string) error {
	dir := filepath.Join(projectDir, "templates", "components")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".html" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(entry.Name(), ".html")
		if _, err := t.templates.New(name).Parse(string(data)); err != nil {
			return fmt.Errorf("parse project template %q: %w", name, err)
		}
	}
	return nil
}

// Render produces the HTML page for one frame of a scene.
func (t *Templater) Render(doc ports.SceneDocument, theme ports.Theme) (string, error) {
	tmpl := t.templates.Lookup(doc.Template)
	if tmpl == nil {
		return "", fmt.Errorf("template %q not found", doc.Template)
	}

	data := t.buildContext(doc, theme)

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render template %q: %w", doc.Template, err)
	}
	return sb.String(), nil
}

// buildContext merges theme, frame info, dimensions, and scene props into
// one flat map. Scene props win over the base keys.
func (t *Templater) buildContext(doc ports.SceneDocument, theme ports.Theme) map[string]interface{} {
	effectiveBg := theme.Background
	backgroundImage := ""
	if doc.Background != nil {
		if doc.Background.Color != "" {
			effectiveBg = doc.Background.Color
		}
		backgroundImage = doc.Background.Image
	}

	data := map[string]interface{}{
		"frame":                doc.Frame,
		"total_frames":         doc.TotalFrames,
		"width":                doc.Width,
		"height":               doc.Height,
		"theme_primary":        template.CSS(theme.Primary),
		"theme_secondary":      template.CSS(theme.Secondary),
		"theme_background":     template.CSS(theme.Background),
		"effective_background": template.CSS(effectiveBg),
		"theme_text":           template.CSS(theme.Text),
		"theme_font_heading":   template.CSS(theme.FontHeading),
		"theme_font_body":      template.CSS(theme.FontBody),
		"background_image":     backgroundImage,
		"script":               doc.Script,
	}
	for key, value := range doc.Props {
		data[key] = value
	}

	switch doc.Template {
	case "lower-third":
		if _, ok := data["accent_color"]; !ok {
			data["accent_color"] = template.CSS(theme.Primary)
		}
		if _, ok := data["position"]; !ok {
			data["position"] = "left"
		}
	case "kinetic-text":
		if _, ok := data["style"]; !ok {
			data["style"] = "fade"
		}
		injectWords(data, doc)
	case "caption-overlay":
		if _, ok := data["style"]; !ok {
			data["style"] = "outline"
		}
		if _, ok := data["position"]; !ok {
			data["position"] = "bottom"
		}
		injectWords(data, doc)
	case "slideshow":
		injectSlides(data, doc)
	}
	return data
}

// injectWords splits the text prop (or the narration script) into indexed
// word objects for word-by-word reveal templates.
func injectWords(data map[string]interface{}, doc ports.SceneDocument) {
	text := doc.Script
	if t, ok := data["text"].(string); ok && t != "" {
		text = t
	}
	fields := strings.Fields(text)
	words := make([]map[string]interface{}, len(fields))
	for i, w := range fields {
		words[i] = map[string]interface{}{"word": w, "index": i}
	}
	data["words"] = words
	data["total_words"] = len(fields)
}

// injectSlides marks the active slide from the current frame's position so
// the slideshow advances at even intervals.
func injectSlides(data map[string]interface{}, doc ports.SceneDocument) {
	raw, _ := data["slides"].([]interface{})
	totalSlides := len(raw)
	if totalSlides == 0 {
		totalSlides = 1
	}

	progress := 0.0
	if doc.TotalFrames > 0 {
		progress = float64(doc.Frame) / float64(doc.TotalFrames)
	}
	activeIndex := int(progress * float64(totalSlides))
	if activeIndex >= totalSlides {
		activeIndex = totalSlides - 1
	}

	slides := make([]map[string]interface{}, 0, len(raw))
	for i, s := range raw {
		slide := map[string]interface{}{}
		if m, ok := s.(map[string]interface{}); ok {
			for k, v := range m {
				slide[k] = v
			}
		}
		slide["index"] = i
		slide["active"] = i == activeIndex
		slides = append(slides, slide)
	}
	data["slides"] = slides
	data["total_slides"] = totalSlides
}

var _ ports.Templater = (*Templater)(nil)
