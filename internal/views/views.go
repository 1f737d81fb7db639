// Package views renders the HTML pages and the cacheable listing fragments.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

//go:embed templates
var files embed.FS

// ViewerKey is the echo context key holding the logged-in *models.User.
const ViewerKey = "user"

// Renderer implements echo.Renderer. Every page is parsed together with the
// layout and the partials; fragments come from the partials alone.
type Renderer struct {
	pages    map[string]*template.Template
	partials *template.Template
}

// New parses the embedded templates. mediaURL maps a stored image key to
// the URL it is served from.
func New(mediaURL func(key string) string) (*Renderer, error) {
	funcs := template.FuncMap{
		"media": mediaURL,
		"date":  func(t time.Time) string { return t.Format("2 January 2006") },
	}

	partials, err := template.New("partials").Funcs(funcs).ParseFS(files, "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse partials: %w", err)
	}

	names, err := fs.Glob(files, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(names)), partials: partials}
	for _, name := range names {
		t, err := template.New(path.Base(name)).Funcs(funcs).ParseFS(files,
			"templates/layout.html", "templates/partials/*.html", name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[path.Base(name)] = t
	}
	return r, nil
}

// Render writes a full page. When data is an echo.Map the current viewer
// and CSRF token are added to it.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	if m, ok := data.(echo.Map); ok && c != nil {
		if _, set := m["Viewer"]; !set {
			m["Viewer"] = c.Get(ViewerKey)
		}
		m["CSRF"] = c.Get(middleware.DefaultCSRFConfig.ContextKey)
	}
	return t.ExecuteTemplate(w, "base", data)
}

// Fragment renders a named partial into memory so it can be cached.
func (r *Renderer) Fragment(name string, data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.partials.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
