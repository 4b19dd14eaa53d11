package tsapi

import (
	"context"
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronicl/ts-api/internal/codegen"
	"github.com/chronicl/ts-api/internal/errors"
)

type Login struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"min=8"`
}

type User struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Filter struct {
	Q     string `json:"q"`
	Limit int    `json:"limit" validate:"max=100"`
}

type PostRef struct {
	ID   int    `json:"id"`
	Slug string `json:"slug"`
}

type UserID string

type Store struct {
	Users map[int]User
}

type userService struct{}

func (userService) Login(ctx context.Context, body Json[Login]) (User, error) {
	return User{Name: body.Value.Username}, nil
}

func signatureError(t *testing.T, err error) *errors.SignatureError {
	t.Helper()
	var sigErr *errors.SignatureError
	require.True(t, stderrors.As(err, &sigErr), "expected SignatureError, got %v", err)
	return sigErr
}

func TestDescribe_Classification(t *testing.T) {
	route, handler, err := Describe(POST, "user/:id", func(ctx context.Context, id Path[int], body Json[Login], q *Query[Filter], store Data[*Store], n int) (Json[User], error) {
		return NewJson(User{}), nil
	})
	require.NoError(t, err)
	require.NotNil(t, handler)

	assert.Equal(t, "/user/:id", route.Path)
	assert.Equal(t, POST, route.Method)
	require.Len(t, route.Parameters, 5)

	kinds := make([]ExtractorKind, 0, len(route.Parameters))
	for _, p := range route.Parameters {
		kinds = append(kinds, p.Kind)
	}
	assert.Equal(t, []ExtractorKind{KindPath, KindBody, KindQuery, KindOpaque, KindOpaque}, kinds)

	assert.Equal(t, "number", route.Parameters[0].Type.TypeExpr())
	assert.Equal(t, "Login", route.Parameters[1].Type.Name)
	assert.Equal(t, "Filter", route.Parameters[2].Type.Name)
	assert.Equal(t, "int", route.Parameters[4].Type.Name)

	require.NotNil(t, route.Response)
	assert.Equal(t, "User", route.Response.Name)
}

func TestDescribe_ErrorOnlyHandlerHasNoResponse(t *testing.T) {
	route, _, err := Describe(DELETE, "/session", func(ctx context.Context) error { return nil })
	require.NoError(t, err)
	assert.Nil(t, route.Response)
	assert.Empty(t, route.Parameters)
}

func TestDescribe_SignatureErrors(t *testing.T) {
	tests := []struct {
		name   string
		method Method
		path   string
		fn     interface{}
		reason string
	}{
		{"not a function", GET, "/a", 42, "handler must be a function"},
		{"nil function", GET, "/a", (func(context.Context) error)(nil), "handler must be a function"},
		{"no parameters", GET, "/a", func() error { return nil }, "context.Context as its first parameter"},
		{"first parameter not context", GET, "/a", func(s string) error { return nil }, "first parameter must be context.Context"},
		{"variadic", GET, "/a", func(ctx context.Context, xs ...int) error { return nil }, "variadic"},
		{"no results", GET, "/a", func(ctx context.Context) {}, "must return"},
		{"last result not error", GET, "/a", func(ctx context.Context) (User, string) { return User{}, "" }, "last result"},
		{"response wrapper", GET, "/a/:id", func(ctx context.Context) (Path[int], error) { return Path[int]{}, nil }, "plain type or Json[T]"},
		{"path without segments", GET, "/a", func(ctx context.Context, id Path[int]) error { return nil }, "without dynamic segments"},
		{"scalar path with two segments", GET, "/a/:x/:y", func(ctx context.Context, id Path[int]) error { return nil }, "exactly one dynamic segment"},
		{"query on scalar", GET, "/a", func(ctx context.Context, q Query[string]) error { return nil }, "requires a struct"},
		{"channel response", GET, "/a", func(ctx context.Context) (chan int, error) { return nil, nil }, "cannot be described"},
		{"unknown method", Method(42), "/a", func(ctx context.Context) error { return nil }, "unknown method"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Describe(tt.method, tt.path, tt.fn)
			require.Error(t, err)
			sigErr := signatureError(t, err)
			assert.Contains(t, sigErr.Reason, tt.reason)
			assert.Equal(t, errors.SignatureErrorCode, sigErr.ErrorCode())
		})
	}
}

func TestDescribe_MethodExpressionIsRejectedWithSuggestion(t *testing.T) {
	_, _, err := Describe(POST, "/user/login", userService.Login)
	sigErr := signatureError(t, err)
	assert.Contains(t, sigErr.Reason, "receiver")
	assert.NotEmpty(t, sigErr.Suggestions())

	// the bound method value is accepted
	svc := userService{}
	route, _, err := Describe(POST, "/user/login", svc.Login)
	require.NoError(t, err)
	assert.Equal(t, KindBody, route.Parameters[0].Kind)
}

func TestServe_JsonBody(t *testing.T) {
	_, handler, err := Describe(POST, "/user/login", func(ctx context.Context, body Json[Login]) (User, error) {
		return User{ID: 1, Name: body.Value.Username}, nil
	})
	require.NoError(t, err)

	rc := newFakeContext("POST", "/user/login").withBody(`{"username":"ada","password":"lovelace1"}`)
	require.NoError(t, handler(rc))
	assert.Equal(t, http.StatusOK, rc.status)
	assert.Equal(t, User{ID: 1, Name: "ada"}, rc.response)
}

func TestServe_ValidationFailureIsBadRequest(t *testing.T) {
	called := false
	_, handler, err := Describe(POST, "/user/login", func(ctx context.Context, body Json[Login]) (User, error) {
		called = true
		return User{}, nil
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty body", "", "request body is empty"},
		{"malformed", "{", "invalid body"},
		{"missing field", `{"password":"longenough"}`, "Username: required"},
		{"too short", `{"username":"ada","password":"short"}`, "Password: must be at least 8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := handler(newFakeContext("POST", "/user/login").withBody(tt.body))
			var httpErr *HTTPError
			require.True(t, stderrors.As(err, &httpErr))
			assert.Equal(t, http.StatusBadRequest, httpErr.Code)
			assert.Contains(t, httpErr.Error(), tt.want)
		})
	}
	assert.False(t, called)
}

func TestServe_PathScalarAndUUID(t *testing.T) {
	_, byInt, err := Describe(GET, "/user/:id", func(ctx context.Context, id Path[int]) (User, error) {
		return User{ID: id.Value}, nil
	})
	require.NoError(t, err)

	rc := newFakeContext("GET", "/user/7").withParam("id", "7")
	require.NoError(t, byInt(rc))
	assert.Equal(t, User{ID: 7}, rc.response)

	bad := byInt(newFakeContext("GET", "/user/x").withParam("id", "x"))
	var httpErr *HTTPError
	require.True(t, stderrors.As(bad, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)

	want := uuid.New()
	var got uuid.UUID
	_, byUUID, err := Describe(GET, "/session/:token", func(ctx context.Context, token Path[uuid.UUID]) error {
		got = token.Value
		return nil
	})
	require.NoError(t, err)

	rc = newFakeContext("GET", "/session").withParam("token", want.String())
	require.NoError(t, byUUID(rc))
	assert.Equal(t, want, got)
	assert.Equal(t, http.StatusNoContent, rc.status)
}

func TestServe_PathStruct(t *testing.T) {
	route, handler, err := Describe(GET, "/user/:id/posts/:slug", func(ctx context.Context, ref Path[PostRef]) (PostRef, error) {
		return ref.Value, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "PostRef", route.Parameters[0].Type.Name)

	rc := newFakeContext("GET", "/user/3/posts/hello").withParam("id", "3").withParam("slug", "hello")
	require.NoError(t, handler(rc))
	assert.Equal(t, PostRef{ID: 3, Slug: "hello"}, rc.response)
}

func TestDescribe_PathOptionMatchesBinding(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		fn     interface{}
		option string
	}{
		{"named string", "/user/:id", func(ctx context.Context, id Path[UserID]) error { return nil }, "path: { id: path },"},
		{"uuid", "/session/:token", func(ctx context.Context, token Path[uuid.UUID]) error { return nil }, "path: { token: path },"},
		{"int", "/user/:id", func(ctx context.Context, id Path[int]) error { return nil }, "path: { id: path },"},
		{"struct", "/user/:id/posts/:slug", func(ctx context.Context, ref Path[PostRef]) error { return nil }, "path,"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route, _, err := Describe(GET, tt.path, tt.fn)
			require.NoError(t, err)
			spec := codegen.Assemble(route, "http://localhost:3000")
			assert.Equal(t, []string{tt.option}, spec.Options)
		})
	}
}

func TestDescribe_PathStructFieldsNameSegments(t *testing.T) {
	route, _, err := Describe(GET, "/user/:id/posts/:slug", func(ctx context.Context, ref Path[PostRef]) error { return nil })
	require.NoError(t, err)

	decl := route.Parameters[0].Type.Declaration
	for _, segment := range codegen.DynamicSegments(route.Path) {
		assert.Contains(t, decl, " "+segment+": ")
	}
}

func TestServe_PathNamedScalar(t *testing.T) {
	var got UserID
	_, handler, err := Describe(GET, "/user/:id", func(ctx context.Context, id Path[UserID]) error {
		got = id.Value
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, handler(newFakeContext("GET", "/user/ada").withParam("id", "ada")))
	assert.Equal(t, UserID("ada"), got)
}

func TestServe_QueryFormAndCookies(t *testing.T) {
	var gotQuery Filter
	var gotForm Login
	var session string
	_, handler, err := Describe(POST, "/search", func(ctx context.Context, q Query[Filter], f *Form[Login], jar CookieJar) error {
		gotQuery = q.Value
		gotForm = f.Value
		if c, ok := jar.Get("session"); ok {
			session = c.Value
		}
		return nil
	})
	require.NoError(t, err)

	rc := newFakeContext("POST", "/search")
	rc.query.Set("q", "go")
	rc.query.Set("limit", "10")
	rc.query.Set("unknown", "ignored")
	rc.form.Set("username", "ada")
	rc.form.Set("password", "lovelace1")
	rc.cookies = []*http.Cookie{{Name: "session", Value: "abc"}}

	require.NoError(t, handler(rc))
	assert.Equal(t, Filter{Q: "go", Limit: 10}, gotQuery)
	assert.Equal(t, Login{Username: "ada", Password: "lovelace1"}, gotForm)
	assert.Equal(t, "abc", session)

	rc.query.Set("limit", "500")
	err = handler(rc)
	var httpErr *HTTPError
	require.True(t, stderrors.As(err, &httpErr))
	assert.Contains(t, httpErr.Error(), "Limit: must be at most 100")
}

func TestServe_NilResponseAndHandlerError(t *testing.T) {
	boom := stderrors.New("boom")
	_, handler, err := Describe(GET, "/maybe/:id", func(ctx context.Context, id Path[int]) (*User, error) {
		if id.Value < 0 {
			return nil, boom
		}
		return nil, nil
	})
	require.NoError(t, err)

	rc := newFakeContext("GET", "/maybe/1").withParam("id", "1")
	require.NoError(t, handler(rc))
	assert.Equal(t, http.StatusOK, rc.status)
	assert.Nil(t, rc.response)

	err = handler(newFakeContext("GET", "/maybe/-1").withParam("id", "-1"))
	assert.ErrorIs(t, err, boom)
}

func TestServe_OpaqueParameterGetsZeroValue(t *testing.T) {
	got := -1
	_, handler, err := Describe(GET, "/zero", func(ctx context.Context, n int) error {
		got = n
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, handler(newFakeContext("GET", "/zero")))
	assert.Equal(t, 0, got)
}

func TestErrorResponse(t *testing.T) {
	code, body := ErrorResponse(NewHTTPError(http.StatusNotFound, "missing"))
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "missing", body.Error)

	code, body = ErrorResponse(stderrors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "boom", body.Error)
}
