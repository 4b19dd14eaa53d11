package typeinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_BuiltinsAreDefined(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"string", "number", "boolean", "void", "unknown"} {
		desc, ok := r.Lookup(name)
		require.True(t, ok, name)
		assert.False(t, desc.Declares())
		assert.True(t, IsBuiltin(name))
	}
	assert.False(t, IsBuiltin("User"))
}

func TestRegistry_ForwardReferenceIsFilledInPlace(t *testing.T) {
	r := NewRegistry()

	list, err := r.Define("UserList", "", "interface UserList { users: User[], }", "User")
	require.NoError(t, err)
	assert.Equal(t, []string{"User"}, r.Undefined())
	require.Error(t, r.Validate())

	user, err := r.Define("User", "", "interface User { id: string, }", "string")
	require.NoError(t, err)

	assert.Same(t, user, list.Dependencies[0])
	assert.Equal(t, "interface User { id: string, }", list.Dependencies[0].Declaration)
	assert.Empty(t, r.Undefined())
	assert.NoError(t, r.Validate())
}

func TestRegistry_DefineErrors(t *testing.T) {
	r := NewRegistry()

	_, err := r.Define("  ", "", "")
	assert.Error(t, err)

	_, err = r.Define("User", "", "interface User { }")
	require.NoError(t, err)
	_, err = r.Define("User", "", "interface User { }")
	assert.ErrorContains(t, err, "already defined")

	_, err = r.Define("string", "", "")
	assert.Error(t, err)
}

func TestRegistry_ExprDefaultsToName(t *testing.T) {
	r := NewRegistry()

	plain, err := r.Define("User", "", "interface User { }")
	require.NoError(t, err)
	assert.Equal(t, "User", plain.TypeExpr())

	generic, err := r.Define("Page", "Page<User>", "interface Page<T> { items: T[], }", "User")
	require.NoError(t, err)
	assert.Equal(t, "Page<User>", generic.TypeExpr())
	assert.Equal(t, "Page", generic.Name)
}

func TestRegistry_LookupUndefined(t *testing.T) {
	r := NewRegistry()
	r.Ref("Ghost")

	_, ok := r.Lookup("Ghost")
	assert.False(t, ok)
	assert.ErrorContains(t, r.Validate(), "Ghost")
}
