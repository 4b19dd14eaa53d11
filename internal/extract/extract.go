// Package extract classifies declared handler parameter types into request channels.
package extract

import (
	"sort"
	"sync"

	"github.com/chronicl/ts-api/internal/models"
)

// Wrapper names understood by the default registry
const (
	WrapperJSON      = "Json"
	WrapperPath      = "Path"
	WrapperQuery     = "Query"
	WrapperForm      = "Form"
	WrapperData      = "Data"
	WrapperCookieJar = "CookieJar"
)

// Declared is a parameter type reduced to what classification needs
type Declared struct {
	// Wrapper is the outermost type constructor, e.g. "Json". Empty for bare types.
	Wrapper string

	// Ref is set when the parameter is a reference to another declared type
	Ref *Declared
}

// Reference wraps d as a reference
func Reference(d Declared) Declared {
	return Declared{Ref: &d}
}

// Registry maps wrapper shapes to extractor kinds
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]models.ExtractorKind
}

// NewRegistry creates a registry holding the built-in wrapper shapes
func NewRegistry() *Registry {
	r := &Registry{kinds: make(map[string]models.ExtractorKind)}
	r.Register(WrapperJSON, models.KindBody)
	r.Register(WrapperPath, models.KindPath)
	r.Register(WrapperQuery, models.KindQuery)
	// Form bodies are not modelled by the client yet
	r.Register(WrapperForm, models.KindOpaque)
	r.Register(WrapperData, models.KindOpaque)
	r.Register(WrapperCookieJar, models.KindOpaque)
	return r
}

// Register adds or replaces the kind for a wrapper shape
func (r *Registry) Register(wrapper string, kind models.ExtractorKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds[wrapper] = kind
}

// Lookup returns the kind registered for a wrapper and whether the wrapper is known
func (r *Registry) Lookup(wrapper string) (models.ExtractorKind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kind, ok := r.kinds[wrapper]
	return kind, ok
}

// Wrappers returns the registered wrapper names, sorted
func (r *Registry) Wrappers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Classify resolves the channel of a declared parameter. References inherit the
// classification of what they point to. The second result is false for opaque
// parameters, which contribute nothing to the generated client.
func (r *Registry) Classify(d Declared) (models.ExtractorKind, bool) {
	kind, _ := r.Resolve(d)
	return kind, kind.Serialized()
}

// Resolve is Classify that also reports whether the wrapper shape was known.
// Unknown shapes are opaque.
func (r *Registry) Resolve(d Declared) (kind models.ExtractorKind, known bool) {
	for d.Ref != nil {
		d = *d.Ref
	}
	if d.Wrapper == "" {
		return models.KindOpaque, false
	}
	kind, known = r.Lookup(d.Wrapper)
	if !known {
		return models.KindOpaque, false
	}
	return kind, true
}

// DefaultRegistry is the registry used by the package-level helpers
var DefaultRegistry = NewRegistry()

// Classify classifies d with the default registry
func Classify(d Declared) (models.ExtractorKind, bool) {
	return DefaultRegistry.Classify(d)
}
