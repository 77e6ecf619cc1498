// Package views holds the embedded HTML templates and static assets.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"yatube/app/models"
)

//go:embed layout.html posts users core includes
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// pages maps a page name to its content template. Every page is
// parsed together with the layout and the includes.
var pages = map[string]string{
	"index":       "posts/index.html",
	"group_list":  "posts/group_list.html",
	"profile":     "posts/profile.html",
	"post_detail": "posts/post_detail.html",
	"create_post": "posts/create_post.html",
	"follow":      "posts/follow.html",
	"signup":      "users/signup.html",
	"login":       "users/login.html",
	"logged_out":  "users/logged_out.html",
	"404":         "core/404.html",
	"403csrf":     "core/403csrf.html",
}

// Base carries what the layout needs on every page.
type Base struct {
	Viewer *models.User
	Title  string
	// CSRFField is the hidden token input every form embeds.
	CSRFField template.HTML
}

// Renderer executes parsed page templates.
type Renderer struct {
	templates map[string]*template.Template
}

// New parses every page.
func New() (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template, len(pages))}
	for name, file := range pages {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"layout.html",
			"includes/*.html",
			file,
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		r.templates[name] = tmpl
	}
	return r, nil
}

// Render writes page name with status. The page is rendered to a
// buffer first so a template error never leaves a half written page.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Static serves the bundled assets; mount it under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServerFS(sub)
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		return t.Format("2 January 2006")
	},
	"linebreaks": func(s string) template.HTML {
		lines := strings.Split(template.HTMLEscapeString(s), "\n")
		return template.HTML(strings.Join(lines, "<br>"))
	},
	"selected": func(groupID *int, id int) bool {
		return groupID != nil && *groupID == id
	},
	"fieldError": func(errors map[string]string, field string) string {
		return errors[field]
	},
}
