package web

import (
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/mdobak/go-xerrors"
)

var ErrTemplateNotFound = xerrors.Message("Template not found")

// Renderer writes the page called name (for example "posts/index.html") with data.
type Renderer interface {
	Render(w io.Writer, name string, data any) error
}

// TemplateRenderer holds one template set per page: the base layout, every
// partial and the page itself.
type TemplateRenderer struct {
	pages map[string]*template.Template
}

// NewTemplateRenderer parses the "html" tree of files. funcs is merged over
// the default functions.
func NewTemplateRenderer(files fs.FS, funcs template.FuncMap) (*TemplateRenderer, error) {
	root, err := fs.Sub(files, "html")
	if err != nil {
		return nil, xerrors.New(err)
	}

	allFuncs := template.FuncMap{
		"humanDate": HumanDate,
		"mediaURL":  func(name string) string { return name },
	}
	for name, fn := range funcs {
		allFuncs[name] = fn
	}

	partials, err := fs.Glob(root, "partials/*.html")
	if err != nil {
		return nil, xerrors.New(err)
	}

	renderer := &TemplateRenderer{pages: make(map[string]*template.Template)}
	for _, dir := range []string{"posts", "users", "core"} {
		pages, err := fs.Glob(root, dir+"/*.html")
		if err != nil {
			return nil, xerrors.New(err)
		}

		for _, page := range pages {
			patterns := append([]string{"base.html"}, partials...)
			patterns = append(patterns, page)

			ts, err := template.New(path.Base(page)).Funcs(allFuncs).ParseFS(root, patterns...)
			if err != nil {
				return nil, xerrors.Newf("parse %s: %w", page, err)
			}
			renderer.pages[page] = ts
		}
	}

	return renderer, nil
}

func (r *TemplateRenderer) Render(w io.Writer, name string, data any) error {
	ts, ok := r.pages[name]
	if !ok {
		return xerrors.Newf("%w: %s", ErrTemplateNotFound, name)
	}
	if err := ts.ExecuteTemplate(w, "base", data); err != nil {
		return xerrors.New(err)
	}
	return nil
}

// Pages lists the names accepted by Render.
func (r *TemplateRenderer) Pages() []string {
	names := make([]string, 0, len(r.pages))
	for name := range r.pages {
		names = append(names, name)
	}
	return names
}

func HumanDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return strings.TrimSpace(t.UTC().Format("2 January 2006 15:04"))
}
