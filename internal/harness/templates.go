package harness

import (
	_ "embed"
	"fmt"
	"os"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"golang.org/x/tools/txtar"
)

//go:embed templates.txt
var defaultTemplates string

// loadTemplates parses the txtar template archive, preferring an
// external override file when one is configured and readable.
func (s *Synthesizer) loadTemplates() error {
	data := defaultTemplates
	if s.cfg.TemplateFile != "" {
		if b, err := os.ReadFile(s.cfg.TemplateFile); err == nil {
			data = string(b)
		}
	}

	archive := txtar.Parse([]byte(data))
	files := make(map[string]string, len(archive.Files))
	for _, f := range archive.Files {
		files[f.Name] = string(f.Data)
	}

	funcs := sprig.TxtFuncMap()
	for _, name := range []string{"preamble.tmpl", "case.tmpl"} {
		body, ok := files[name]
		if !ok {
			return fmt.Errorf("template archive is missing %s", name)
		}
		tmpl, err := template.New(name).Funcs(funcs).Parse(body)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", name, err)
		}
		switch name {
		case "preamble.tmpl":
			s.preamble = tmpl
		case "case.tmpl":
			s.testCase = tmpl
		}
	}
	return nil
}
