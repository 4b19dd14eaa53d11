package typeexpr

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronicl/ts-api/internal/errors"
	"github.com/chronicl/ts-api/internal/extract"
	"github.com/chronicl/ts-api/internal/models"
	"github.com/chronicl/ts-api/internal/typeinfo"
)

func TestParse_CanonicalForm(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"string", "string"},
		{"Json<User>", "Json<User>"},
		{"&Json<Result<AuthResponse,Error>>", "&Json<Result<AuthResponse, Error>>"},
		{"  Query < Filter >  ", "Query<Filter>"},
		{"Path<number>[]", "Path<number>[]"},
		{"&&Path<string>", "&&Path<string>"},
		{"Record<string, User[]>", "Record<string, User[]>"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, expr.String())
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, input := range []string{"", "   ", "Json<", "Json<>", "<User>", "Json<User>>", "Us-er"} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			require.Error(t, err)

			var syntaxErr *errors.SyntaxError
			require.True(t, stderrors.As(err, &syntaxErr))
			assert.Equal(t, errors.SyntaxErrorCode, syntaxErr.ErrorCode())
			assert.Equal(t, input, syntaxErr.Input)
		})
	}
}

func TestExpr_Declared(t *testing.T) {
	tests := []struct {
		input string
		kind  models.ExtractorKind
		ok    bool
	}{
		{"Json<User>", models.KindBody, true},
		{"&Json<User>", models.KindBody, true},
		{"&&Query<Filter>", models.KindQuery, true},
		{"Path<string>", models.KindPath, true},
		{"Data<State>", models.KindOpaque, false},
		{"CookieJar", models.KindOpaque, false},
		{"User", models.KindOpaque, false},
		{"Json<User>[]", models.KindOpaque, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr, err := Parse(tt.input)
			require.NoError(t, err)
			kind, ok := extract.Classify(expr.Declared())
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestExpr_Inner(t *testing.T) {
	expr, err := Parse("&Json<Result<AuthResponse, Error>>")
	require.NoError(t, err)

	inner, err := expr.Inner()
	require.NoError(t, err)
	assert.Equal(t, "Result<AuthResponse, Error>", inner.String())

	bare, err := Parse("CookieJar")
	require.NoError(t, err)
	_, err = bare.Inner()
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	r := typeinfo.NewRegistry()
	_, err := r.Define("Result", "", "type Result<T, E> = { ok: T } | { err: E };")
	require.NoError(t, err)
	_, err = r.Define("AuthResponse", "", "interface AuthResponse { token: string, }", "string")
	require.NoError(t, err)
	_, err = r.Define("Error", "", "interface Error { message: string, }", "string")
	require.NoError(t, err)

	expr, err := Parse("Result<AuthResponse, Error>[]")
	require.NoError(t, err)

	desc := Describe(expr, r)
	assert.Equal(t, "Result<AuthResponse, Error>[]", desc.TypeExpr())
	assert.False(t, desc.Declares())

	set := typeinfo.NewDependencySet()
	typeinfo.Collect(desc, set)

	var declared []string
	for _, d := range set.Declarations() {
		declared = append(declared, d.Name)
	}
	assert.Equal(t, []string{"AuthResponse", "Error", "Result"}, declared)

	bare, err := Parse("AuthResponse")
	require.NoError(t, err)
	auth, _ := r.Lookup("AuthResponse")
	assert.Same(t, auth, Describe(bare, r))
}
