package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMethod(t *testing.T) {
	for _, m := range AllMethods() {
		parsed, err := ParseMethod(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}

	m, err := ParseMethod(" patch ")
	require.NoError(t, err)
	assert.Equal(t, MethodPatch, m)

	_, err = ParseMethod("fetch")
	assert.EqualError(t, err, `unknown HTTP method "fetch"`)
}

func TestMethod_Validity(t *testing.T) {
	assert.Len(t, AllMethods(), 9)
	assert.True(t, MethodTrace.IsValid())
	assert.False(t, Method(9).IsValid())
	assert.Equal(t, "Method(9)", Method(9).String())
	assert.Equal(t, "Method(-1)", Method(-1).String())
}

func TestExtractorKind(t *testing.T) {
	tests := []struct {
		kind       ExtractorKind
		name       string
		channel    string
		serialized bool
	}{
		{KindOpaque, "Opaque", "", false},
		{KindBody, "Body", "body", true},
		{KindPath, "Path", "path", true},
		{KindQuery, "Query", "query", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.name, tt.kind.String())
		assert.Equal(t, tt.channel, tt.kind.ChannelName())
		assert.Equal(t, tt.serialized, tt.kind.Serialized())
	}
}

func TestTypeDescriptor(t *testing.T) {
	result := &TypeDescriptor{Name: "Result", Expr: "Result<A, B>", Declaration: "type Result<T, E> = T | E;"}
	assert.Equal(t, "Result<A, B>", result.TypeExpr())
	assert.True(t, result.Declares())

	str := &TypeDescriptor{Name: "string"}
	assert.Equal(t, "string", str.TypeExpr())
	assert.False(t, str.Declares())
}

func TestRouteDescriptor(t *testing.T) {
	route := RouteDescriptor{
		Method: MethodGet,
		Path:   "/user/:id",
		Parameters: []ParameterEntry{
			{Kind: KindOpaque, Type: &TypeDescriptor{Name: "Data<State>"}},
			{Kind: KindPath, Type: &TypeDescriptor{Name: "number"}},
		},
	}
	assert.Equal(t, "GET /user/:id", route.String())

	serialized := route.SerializedParameters()
	require.Len(t, serialized, 1)
	assert.Equal(t, KindPath, serialized[0].Kind)
}

func TestClientExport_Files(t *testing.T) {
	export := ClientExport{
		SupportFiles: []ExportFile{{Path: "request.ts"}, {Path: "CancelablePromise.ts"}},
		Index:        ExportFile{Path: "api/index.ts"},
		Modules:      []ExportFile{{Path: "api/a.ts"}, {Path: "api/b.ts"}},
	}
	var paths []string
	for _, f := range export.Files() {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{"request.ts", "CancelablePromise.ts", "api/index.ts", "api/a.ts", "api/b.ts"}, paths)
}
