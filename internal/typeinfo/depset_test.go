package typeinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronicl/ts-api/internal/models"
)

func TestCollect_AcyclicGraph(t *testing.T) {
	r := NewRegistry()
	_, err := r.Define("Error", "", "interface Error { message: string, }", "string")
	require.NoError(t, err)
	_, err = r.Define("AuthResponse", "", "interface AuthResponse { token: string, }", "string")
	require.NoError(t, err)
	result, err := r.Define("Result", "Result<AuthResponse, Error>",
		"type Result<T, E> = { ok: T } | { err: E };", "AuthResponse", "Error")
	require.NoError(t, err)

	set := NewDependencySet()
	Collect(result, set)

	assert.Equal(t, []string{"AuthResponse", "Error", "Result", "string"}, set.Names())
	assert.Equal(t, 4, set.Len())

	var declared []string
	for _, d := range set.Declarations() {
		declared = append(declared, d.Name)
	}
	assert.Equal(t, []string{"AuthResponse", "Error", "Result"}, declared)
}

func TestCollect_DirectCycleTerminates(t *testing.T) {
	r := NewRegistry()
	node, err := r.Define("Node", "", "interface Node { next?: Node, }", "Node")
	require.NoError(t, err)

	set := NewDependencySet()
	Collect(node, set)

	assert.Equal(t, []string{"Node"}, set.Names())
}

func TestCollect_ChainCycleTerminates(t *testing.T) {
	r := NewRegistry()
	_, err := r.Define("A", "", "interface A { b: B, }", "B")
	require.NoError(t, err)
	_, err = r.Define("B", "", "interface B { c: C, }", "C")
	require.NoError(t, err)
	_, err = r.Define("C", "", "interface C { a: A, }", "A")
	require.NoError(t, err)

	a, _ := r.Lookup("A")
	set := NewDependencySet()
	Collect(a, set)

	assert.Equal(t, []string{"A", "B", "C"}, set.Names())
}

func TestCollect_Idempotent(t *testing.T) {
	r := NewRegistry()
	user, err := r.Define("User", "", "interface User { id: string, }", "string")
	require.NoError(t, err)

	set := NewDependencySet()
	Collect(user, set)
	before := set.Names()
	Collect(user, set)

	assert.Equal(t, before, set.Names())
}

func TestCollect_OrderIndependent(t *testing.T) {
	r := NewRegistry()
	_, err := r.Define("Tag", "", "interface Tag { label: string, }", "string")
	require.NoError(t, err)
	_, err = r.Define("Post", "", "interface Post { tags: Tag[], }", "Tag")
	require.NoError(t, err)
	_, err = r.Define("Author", "", "interface Author { posts: Post[], }", "Post", "number")
	require.NoError(t, err)

	post, _ := r.Lookup("Post")
	author, _ := r.Lookup("Author")

	first := NewDependencySet()
	Collect(post, first)
	Collect(author, first)

	second := NewDependencySet()
	Collect(author, second)
	Collect(post, second)

	assert.Equal(t, first.Names(), second.Names())
}

func TestDependencySet_FirstInsertionWins(t *testing.T) {
	set := NewDependencySet()
	first := &models.TypeDescriptor{Name: "User", Declaration: "interface User { a: string, }"}
	second := &models.TypeDescriptor{Name: "User", Declaration: "interface User { b: number, }"}

	set.Add(first)
	set.Add(second)

	got, ok := set.Get("User")
	require.True(t, ok)
	assert.Same(t, first, got)
}

func TestDependencySet_Merge(t *testing.T) {
	a := NewDependencySet()
	a.Add(Builtin("string"))
	a.Add(&models.TypeDescriptor{Name: "User", Declaration: "interface User { }"})

	b := NewDependencySet()
	b.Add(Builtin("number"))
	b.Merge(a)

	assert.Equal(t, []string{"User", "number", "string"}, b.Names())
	assert.True(t, b.Contains("User"))
	assert.False(t, b.Contains("Missing"))
}

func TestCollect_NilIsIgnored(t *testing.T) {
	set := NewDependencySet()
	Collect(nil, set)
	assert.Equal(t, 0, set.Len())
}
