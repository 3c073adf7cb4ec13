package views

import (
	"errors"
	"html/template"
	"io"
	"io/fs"
)

var welcomeTmpl *template.Template

// loadTemplatesFromFS parses templates from the given fs and dir.
// Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	tmpl, err := template.ParseFS(sub, "*.html")
	if err != nil {
		return err
	}
	if tmpl.Lookup("welcome.html") == nil {
		return errors.New("welcome.html template missing")
	}
	welcomeTmpl = tmpl
	return nil
}

// LoadTemplates loads the embedded templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// WelcomeData lists the route hints shown on the root page.
type WelcomeData struct {
	Routes []string
}

// RenderWelcome writes the root page: a "<br/>"-separated route list.
func RenderWelcome(w io.Writer, data *WelcomeData) error {
	if welcomeTmpl == nil {
		return errors.New("welcome template not loaded: call views.LoadTemplates during startup")
	}
	return welcomeTmpl.ExecuteTemplate(w, "welcome.html", data)
}
