// Package web serves the server-rendered views and the JSON API.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/wolfman30/doctor-booking/internal/doctors"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageFiles = map[string][]string{
	"home":         {"templates/layout.html", "templates/home.html"},
	"profile":      {"templates/layout.html", "templates/profile.html", "templates/booking.html"},
	"appointments": {"templates/layout.html", "templates/appointments.html"},
}

// Views holds the parsed page templates.
type Views struct {
	pages map[string]*template.Template
}

// NewViews parses the embedded templates.
func NewViews() (*Views, error) {
	funcs := template.FuncMap{
		"formatDate": doctors.FormatDate,
	}
	pages := make(map[string]*template.Template, len(pageFiles))
	for name, files := range pageFiles {
		t, err := template.New("layout").Funcs(funcs).ParseFS(templateFS, files...)
		if err != nil {
			return nil, fmt.Errorf("web: parse %s: %w", name, err)
		}
		pages[name] = t
	}
	return &Views{pages: pages}, nil
}

// Render executes page into a buffer and writes it with status, so a template
// error never produces a half-written page.
func (v *Views) Render(w http.ResponseWriter, status int, page string, data any) error {
	t, ok := v.pages[page]
	if !ok {
		return fmt.Errorf("web: unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("web: render %s: %w", page, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
