// Package web holds the server-rendered HTML of the storefront and admin panel.
package web

import (
	"embed"
	"html/template"
	"strings"
	"time"
)

//go:embed templates/*.html
var templatesFS embed.FS

var funcs = template.FuncMap{
	"join": strings.Join,
	"date": func(t time.Time) string {
		return t.UTC().Format("Jan 2, 2006")
	},
	"excerpt": func(s string, n int) string {
		r := []rune(s)
		if len(r) <= n {
			return s
		}
		return strings.TrimSpace(string(r[:n])) + "…"
	},
}

// Templates parses every embedded page and fragment. Each is addressed by
// its file name, e.g. "index.html".
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
}
