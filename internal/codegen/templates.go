package codegen

import (
	"bytes"
	"text/template"

	"github.com/chronicl/ts-api/internal/errors"
)

// Template names
const (
	ModuleTemplate = "module"
	IndexTemplate  = "index"
)

// TemplateRegistry provides a centralized way to access the client templates
type TemplateRegistry struct {
	templates map[string]string
}

// NewTemplateRegistry creates a registry with the built-in templates
func NewTemplateRegistry() *TemplateRegistry {
	registry := &TemplateRegistry{
		templates: make(map[string]string),
	}

	registry.registerModuleTemplates()

	return registry
}

// Get retrieves a template by name
func (tr *TemplateRegistry) Get(name string) (string, bool) {
	text, exists := tr.templates[name]
	return text, exists
}

// Set replaces a template
func (tr *TemplateRegistry) Set(name, text string) {
	tr.templates[name] = text
}

// Render executes the named template with data
func (tr *TemplateRegistry) Render(name string, data interface{}) (string, error) {
	text, ok := tr.Get(name)
	if !ok {
		return "", errors.New(errors.TemplateErrorCode, "template not found: "+name).
			WithContext("template", name)
	}
	return executeTemplate(name, text, data)
}

func (tr *TemplateRegistry) registerModuleTemplates() {
	tr.templates[ModuleTemplate] = `import { request as __request } from '../request';
import { CancelablePromise } from '../CancelablePromise';
{{range .Declarations}}
export {{.}}
{{end}}
export function request({{.Signature}}){{if .Response}}: {{.Response}}{{end}} {
    return __request(
        { url: {{quote .ServerURL}} },
        {
            method: {{quote .Method}},
            url: {{quote .URL}},
{{- range .Options}}
            {{.}}
{{- end}}
        }
    );
}
`

	tr.templates[IndexTemplate] = `{{range .}}{{indexLine .}}
{{end}}`
}

// executeTemplate executes a Go template with the given data
func executeTemplate(name, templateStr string, data interface{}) (string, error) {
	funcMap := template.FuncMap{
		"quote":     quote,
		"indexLine": IndexLine,
	}

	tmpl, err := template.New(name).Funcs(funcMap).Parse(templateStr)
	if err != nil {
		return "", errors.WrapTemplateError(name, "parse", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.WrapTemplateError(name, "execute", err)
	}

	return buf.String(), nil
}
