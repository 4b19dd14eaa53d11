// Package typeinfo holds type descriptors and the traversal that gathers every
// declaration a generated client module needs.
package typeinfo

import (
	"sort"

	"github.com/chronicl/ts-api/internal/models"
)

// DependencySet maps canonical type names to descriptors
type DependencySet struct {
	entries map[string]*models.TypeDescriptor
}

// NewDependencySet creates an empty set
func NewDependencySet() *DependencySet {
	return &DependencySet{entries: make(map[string]*models.TypeDescriptor)}
}

// Collect adds t and everything reachable from it to into. A name already
// present stops the walk, which is what terminates self-referential types.
// The first descriptor seen for a name is kept.
func Collect(t *models.TypeDescriptor, into *DependencySet) {
	if t == nil || into.Contains(t.Name) {
		return
	}
	into.entries[t.Name] = t
	for _, dep := range t.Dependencies {
		Collect(dep, into)
	}
}

// Add collects t into the set
func (s *DependencySet) Add(t *models.TypeDescriptor) {
	Collect(t, s)
}

// Merge collects every entry of other into the set
func (s *DependencySet) Merge(other *DependencySet) {
	for _, name := range other.Names() {
		Collect(other.entries[name], s)
	}
}

// Contains reports whether a descriptor with the given name is present
func (s *DependencySet) Contains(name string) bool {
	_, ok := s.entries[name]
	return ok
}

// Get returns the descriptor stored under name
func (s *DependencySet) Get(name string) (*models.TypeDescriptor, bool) {
	t, ok := s.entries[name]
	return t, ok
}

// Len returns the number of entries
func (s *DependencySet) Len() int {
	return len(s.entries)
}

// Names returns every canonical name in sorted order
func (s *DependencySet) Names() []string {
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Declarations returns the descriptors that carry declaration text, sorted by name
func (s *DependencySet) Declarations() []*models.TypeDescriptor {
	var result []*models.TypeDescriptor
	for _, name := range s.Names() {
		if t := s.entries[name]; t.Declares() {
			result = append(result, t)
		}
	}
	return result
}
