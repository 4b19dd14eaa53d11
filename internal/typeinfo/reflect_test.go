package typeinfo

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronicl/ts-api/internal/models"
)

type Address struct {
	Street string  `json:"street"`
	Zip    *string `json:"zip"`
}

type Person struct {
	ID      uuid.UUID      `json:"id"`
	Name    string         `json:"name"`
	Tags    []string       `json:"tags,omitempty"`
	Home    Address        `json:"home"`
	Meta    map[string]int `json:"meta"`
	Created time.Time      `json:"created"`
	secret  string
	Skip    int `json:"-"`
}

type TreeNode struct {
	Value    int         `json:"value"`
	Children []*TreeNode `json:"children"`
	Parent   *TreeNode   `json:"parent,omitempty"`
}

type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

type Pair[A, B any] struct {
	First  A `json:"first"`
	Second B `json:"second"`
}

type Status string

type Base struct {
	ID string `json:"id"`
}

type Derived struct {
	Base
	Name string `json:"name"`
}

type Odd struct {
	ContentType string          `json:"content-type"`
	Count       int64           `json:"count,string"`
	Raw         json.RawMessage `json:"raw"`
	Blob        []byte          `json:"blob"`
	Any         interface{}     `json:"any"`
	Untagged    bool
}

type WithChan struct {
	C chan int `json:"c"`
}

type Owner struct {
	Peer *Peer    `json:"peer"`
	Feed chan int `json:"feed"`
}

type Peer struct {
	Owner *Owner `json:"owner"`
	Label Status `json:"label"`
}

type Money struct {
	Cents int64
}

func describe(t *testing.T, r *Reflector, v any) *models.TypeDescriptor {
	t.Helper()
	desc, err := r.Describe(reflect.TypeOf(v))
	require.NoError(t, err)
	return desc
}

func TestReflector_Primitives(t *testing.T) {
	r := NewReflector()

	tests := []struct {
		value any
		want  string
	}{
		{"", "string"},
		{0, "number"},
		{uint8(0), "number"},
		{1.5, "number"},
		{true, "boolean"},
		{time.Time{}, "string"},
		{uuid.UUID{}, "string"},
		{[]byte{}, "string"},
		{json.RawMessage{}, "unknown"},
		{[]int{}, "number[]"},
		{map[string]bool{}, "Record<string, boolean>"},
		{map[int]string{}, "Record<number, string>"},
	}

	for _, tt := range tests {
		t.Run(reflect.TypeOf(tt.value).String(), func(t *testing.T) {
			desc := describe(t, r, tt.value)
			assert.Equal(t, tt.want, desc.TypeExpr())
			assert.False(t, desc.Declares())
		})
	}
}

func TestReflector_Struct(t *testing.T) {
	r := NewReflector()
	desc := describe(t, r, Person{})

	assert.Equal(t, "Person", desc.Name)
	assert.Equal(t,
		"interface Person { id: string, name: string, tags?: string[], home: Address, meta: Record<string, number>, created: string, }",
		desc.Declaration)

	set := NewDependencySet()
	Collect(desc, set)
	assert.Equal(t, []string{"Address", "Person", "Record<string, number>", "number", "string", "string[]"}, set.Names())

	home, ok := set.Get("Address")
	require.True(t, ok)
	assert.Equal(t, "interface Address { street: string, zip?: string, }", home.Declaration)
}

func TestReflector_SelfReferenceTerminates(t *testing.T) {
	r := NewReflector()
	desc := describe(t, r, TreeNode{})

	assert.Equal(t, "interface TreeNode { value: number, children: TreeNode[], parent?: TreeNode, }", desc.Declaration)

	set := NewDependencySet()
	Collect(desc, set)
	assert.Equal(t, []string{"TreeNode", "TreeNode[]", "number"}, set.Names())
}

func TestReflector_Generics(t *testing.T) {
	r := NewReflector()

	page := describe(t, r, Page[Person]{})
	assert.Equal(t, "Page_Person", page.Name)
	assert.Equal(t, "interface Page_Person { items: Person[], total: number, }", page.Declaration)

	pair := describe(t, r, Pair[string, Page[int]]{})
	assert.Equal(t, "Pair_string_Page_int", pair.Name)
}

func TestReflector_NamedScalarAndEmbedding(t *testing.T) {
	r := NewReflector()

	status := describe(t, r, Status(""))
	assert.Equal(t, "type Status = string;", status.Declaration)

	derived := describe(t, r, Derived{})
	assert.Equal(t, "interface Derived { id: string, name: string, }", derived.Declaration)
}

func TestReflector_TagOptions(t *testing.T) {
	r := NewReflector()
	desc := describe(t, r, Odd{})

	assert.Equal(t,
		`interface Odd { "content-type": string, count: string, raw: unknown, blob: string, any: unknown, Untagged: boolean, }`,
		desc.Declaration)
}

func TestReflector_AnonymousStruct(t *testing.T) {
	r := NewReflector()
	desc := describe(t, r, []struct {
		A int `json:"a"`
	}{})

	assert.Equal(t, "{ a: number, }[]", desc.TypeExpr())
	assert.False(t, desc.Declares())
}

func TestReflector_Unsupported(t *testing.T) {
	r := NewReflector()

	_, err := r.Describe(reflect.TypeOf(WithChan{}))
	assert.ErrorContains(t, err, "unsupported type")

	_, err = r.Describe(reflect.TypeOf(func() {}))
	assert.Error(t, err)

	_, err = r.Describe(reflect.TypeOf(map[float64]string{}))
	assert.ErrorContains(t, err, "map key")

	_, err = r.Describe(nil)
	assert.Error(t, err)
}

func TestReflector_FailedDescribeLeavesNothingBehind(t *testing.T) {
	r := NewReflector()

	_, err := r.Describe(reflect.TypeOf(Owner{}))
	require.ErrorContains(t, err, "unsupported type")

	assert.False(t, r.cache.Contains(reflect.TypeOf(Peer{})))
	assert.False(t, r.cache.Contains(reflect.TypeOf(Status(""))))
	assert.NotContains(t, r.names, "Peer")
	assert.NotContains(t, r.names, "Owner")

	// Peer still reaches Owner, so it fails too instead of referring to an
	// undeclared interface
	_, err = r.Describe(reflect.TypeOf(Peer{}))
	assert.ErrorContains(t, err, "unsupported type")

	status := describe(t, r, Status(""))
	assert.Equal(t, "type Status = string;", status.Declaration)
}

func TestReflector_MemoizesAndOverrides(t *testing.T) {
	r := NewReflector()

	first := describe(t, r, Person{})
	second := describe(t, r, &Person{})
	assert.Same(t, first, second)

	r.Override(reflect.TypeOf(Money{}), Builtin("string"))
	money := describe(t, r, Money{})
	assert.Equal(t, "string", money.TypeExpr())
}

func TestNewReflectorWithCache_InvalidSize(t *testing.T) {
	_, err := NewReflectorWithCache(0)
	assert.Error(t, err)
}

func TestParseJSONTag(t *testing.T) {
	tests := []struct {
		tag      string
		name     string
		optional bool
		skip     bool
	}{
		{"", "Field", false, false},
		{"id", "id", false, false},
		{"id,omitempty", "id", true, false},
		{",omitempty", "Field", true, false},
		{"-", "", false, true},
		{"-,", "-", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			name, optional, skip, _ := parseJSONTag(tt.tag, "Field")
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.optional, optional)
			assert.Equal(t, tt.skip, skip)
		})
	}
}
