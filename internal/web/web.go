// Package web holds the embedded HTML templates and the renderer that pairs
// each page with the shared layout.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

//go:embed templates
var files embed.FS

type Renderer struct {
	pages map[string]*template.Template
}

var funcMap = template.FuncMap{
	"add": func(a, b int) int { return a + b },
	"sub": func(a, b int) int { return a - b },
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("Jan 2, 2006")
	},
	"title": func(s string) string {
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
	// deref64 unwraps optional ids for comparisons; nil reads as zero.
	"deref64": func(p *int64) int64 {
		if p == nil {
			return 0
		}
		return *p
	},
	// hasID marks the selected entries of a multi-select.
	"hasID": func(ids []int64, id int64) bool {
		for _, v := range ids {
			if v == id {
				return true
			}
		}
		return false
	},
}

// NewRenderer parses the layout and partials once, then clones that base for
// every page template so each page gets its own content block.
func NewRenderer() (*Renderer, error) {
	base, err := template.New("layout").Funcs(funcMap).ParseFS(files,
		"templates/layout.html",
		"templates/partials/*.html",
	)
	if err != nil {
		return nil, fmt.Errorf("parse base templates: %w", err)
	}

	pageFiles, err := fs.Glob(files, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("glob page templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(pageFiles))
	for _, file := range pageFiles {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone base templates: %w", err)
		}
		t, err := clone.ParseFS(files, file)
		if err != nil {
			return nil, fmt.Errorf("parse page template %s: %w", file, err)
		}
		name := strings.TrimSuffix(path.Base(file), ".html")
		pages[name] = t
	}

	return &Renderer{pages: pages}, nil
}

// Pages lists the registered page names; used by tests.
func (r *Renderer) Pages() []string {
	names := make([]string, 0, len(r.pages))
	for name := range r.pages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Renderer) Render(w io.Writer, page string, data any) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page template %q", page)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
