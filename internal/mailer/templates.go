package mailer

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"strings"
)

//go:embed templates
var TemplatesFS embed.FS

// Templates maps an email name (file name without extension) to its parsed
// template set.
type Templates map[string]*template.Template

// LoadTemplates parses every email under templates/emails on top of the base
// layout. Each email gets its own set so their blocks don't collide.
func LoadTemplates() (Templates, error) {
	baseContent, err := fs.ReadFile(TemplatesFS, "templates/layouts/base.html")
	if err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(TemplatesFS, "templates/emails")
	if err != nil {
		return nil, err
	}

	templates := make(Templates, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		content, err := fs.ReadFile(TemplatesFS, "templates/emails/"+entry.Name())
		if err != nil {
			return nil, err
		}

		name := strings.TrimSuffix(entry.Name(), ".html")
		// Base first, then the email, whose blocks override the layout's.
		tmpl, err := template.New(name).Parse(string(baseContent))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", name, err)
		}
		if _, err := tmpl.Parse(string(content)); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		templates[name] = tmpl
	}

	return templates, nil
}

func (t Templates) Render(name string, data any) (string, error) {
	tmpl, ok := t[name]
	if !ok {
		return "", fmt.Errorf("unknown email template %q", name)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return b.String(), nil
}
