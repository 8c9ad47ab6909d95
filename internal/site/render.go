package site

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFiles embed.FS

// views renders a page template inside the shared layout. Each page is parsed
// into its own set so that every page can define "content".
type views struct {
	pages map[string]*template.Template
}

func loadViews() (*views, error) {
	entries, err := fs.Glob(templateFiles, "templates/*.html")
	if err != nil {
		return nil, err
	}
	out := &views{pages: make(map[string]*template.Template, len(entries))}
	for _, entry := range entries {
		name := strings.TrimSuffix(path.Base(entry), ".html")
		if name == "layout" {
			continue
		}
		tmpl, err := template.ParseFS(templateFiles, "templates/layout.html", entry)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		out.pages[name] = tmpl
	}
	return out, nil
}

// Render satisfies [echo.Renderer].
func (v *views) Render(w io.Writer, name string, data any, _ echo.Context) error {
	tmpl, ok := v.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}
