package typeinfo

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/chronicl/ts-api/internal/models"
)

// Builtin TypeScript types. They are always defined and never declared.
var builtinNames = []string{
	"any", "bigint", "boolean", "Date", "never", "null", "number",
	"object", "string", "undefined", "unknown", "void",
}

// IsBuiltin reports whether name is a TypeScript builtin type
func IsBuiltin(name string) bool {
	for _, b := range builtinNames {
		if b == name {
			return true
		}
	}
	return false
}

// Builtin returns a descriptor for a builtin type name
func Builtin(name string) *models.TypeDescriptor {
	return &models.TypeDescriptor{Name: name}
}

// Registry is an explicit, name-keyed store of type descriptors. Referring to a
// name before it is defined hands out a placeholder that Define later fills in
// place, so descriptors may refer to each other in any order, cycles included.
type Registry struct {
	mu      sync.RWMutex
	types   map[string]*models.TypeDescriptor
	defined map[string]bool
}

// NewRegistry creates a registry seeded with the builtin types
func NewRegistry() *Registry {
	r := &Registry{
		types:   make(map[string]*models.TypeDescriptor),
		defined: make(map[string]bool),
	}
	for _, name := range builtinNames {
		r.types[name] = Builtin(name)
		r.defined[name] = true
	}
	return r
}

// Define sets the expression, declaration text and dependencies of name
func (r *Registry) Define(name, expr, declaration string, deps ...string) (*models.TypeDescriptor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("type name must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.defined[name] {
		return nil, fmt.Errorf("type %q is already defined", name)
	}

	t := r.ref(name)
	t.Expr = expr
	t.Declaration = declaration
	t.Dependencies = t.Dependencies[:0]
	for _, dep := range deps {
		t.Dependencies = append(t.Dependencies, r.ref(strings.TrimSpace(dep)))
	}
	r.defined[name] = true
	return t, nil
}

// Ref returns the descriptor for name, creating a placeholder if needed
func (r *Registry) Ref(name string) *models.TypeDescriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ref(name)
}

func (r *Registry) ref(name string) *models.TypeDescriptor {
	if t, ok := r.types[name]; ok {
		return t
	}
	t := &models.TypeDescriptor{Name: name}
	r.types[name] = t
	return t
}

// Lookup returns a defined descriptor
func (r *Registry) Lookup(name string) (*models.TypeDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.defined[name] {
		return nil, false
	}
	return r.types[name], true
}

// Undefined returns the names that were referenced but never defined, sorted
func (r *Registry) Undefined() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var missing []string
	for name := range r.types {
		if !r.defined[name] {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

// Validate returns an error naming every undefined reference
func (r *Registry) Validate() error {
	if missing := r.Undefined(); len(missing) > 0 {
		return fmt.Errorf("undefined types: %s", strings.Join(missing, ", "))
	}
	return nil
}
