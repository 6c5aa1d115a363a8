// Package view renders the server-side pages from an embedded template set.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var files embed.FS

// Renderer implements echo.Renderer.  Each page is parsed together with the
// shared layout so that every page can be executed by its own name.
type Renderer struct {
	pages map[string]*template.Template
}

// Pages lists the renderable templates.
var Pages = []string{"login", "register", "dashboard", "habits", "calendar", "tasks", "settings", "404"}

func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(Pages))}
	for _, name := range Pages {
		t, err := template.ParseFS(files, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// MustNew is New for program start-up.
func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		t = r.pages["404"]
	}
	return t.ExecuteTemplate(w, "layout", data)
}
