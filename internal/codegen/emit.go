package codegen

import (
	"sort"
	"strings"

	"github.com/chronicl/ts-api/internal/models"
)

// FileExtension is appended to every generated module name
const FileExtension = ".ts"

// Emitter renders client modules from assembled specs
type Emitter struct {
	templates *TemplateRegistry
}

// NewEmitter creates an emitter using the built-in templates
func NewEmitter() *Emitter {
	return &Emitter{templates: NewTemplateRegistry()}
}

// NewEmitterWithTemplates creates an emitter using custom templates
func NewEmitterWithTemplates(templates *TemplateRegistry) *Emitter {
	return &Emitter{templates: templates}
}

type moduleData struct {
	ClientFunctionSpec
	Declarations []string
}

// Emit renders the source text of one client module
func (e *Emitter) Emit(spec ClientFunctionSpec) (string, error) {
	data := moduleData{ClientFunctionSpec: spec}
	for _, t := range spec.Dependencies.Declarations() {
		data.Declarations = append(data.Declarations, strings.TrimSpace(t.Declaration))
	}
	return e.templates.Render(ModuleTemplate, data)
}

// Generate assembles and emits the module for a route
func (e *Emitter) Generate(route models.RouteDescriptor, serverURL string) (models.GeneratedModule, error) {
	source, err := e.Emit(Assemble(route, serverURL))
	if err != nil {
		return models.GeneratedModule{}, err
	}
	return models.GeneratedModule{FileName: FileName(route.Path), SourceText: source}, nil
}

// EmitIndex renders the index module re-exporting every file name's request
// function under that name. Names are emitted sorted and once each.
func (e *Emitter) EmitIndex(fileNames []string) (string, error) {
	names := append([]string(nil), fileNames...)
	sort.Strings(names)
	unique := names[:0]
	for i, name := range names {
		if i == 0 || name != names[i-1] {
			unique = append(unique, name)
		}
	}
	return e.templates.Render(IndexTemplate, unique)
}

// IndexLine is the re-export line for one module
func IndexLine(fileName string) string {
	return "import { request as " + fileName + " } from './" + fileName + "'; export { " + fileName + " };"
}
