package typeinfo

import (
	"encoding"
	"encoding/json"
	"fmt"
	"path"
	"reflect"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/chronicl/ts-api/internal/models"
)

// DefaultCacheSize bounds the number of completed descriptors a Reflector memoizes
const DefaultCacheSize = 1024

var (
	timeType        = reflect.TypeOf(time.Time{})
	uuidType        = reflect.TypeOf(uuid.UUID{})
	rawMessageType  = reflect.TypeOf(json.RawMessage{})
	textMarshalType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// Reflector derives TypeScript descriptors from Go types. It is the ordinary
// reflection step that feeds the dependency collector.
type Reflector struct {
	mu        sync.Mutex
	cache     *lru.Cache[reflect.Type, *models.TypeDescriptor]
	overrides map[reflect.Type]*models.TypeDescriptor
	names     map[string]reflect.Type
}

// NewReflector creates a reflector with the default cache size
func NewReflector() *Reflector {
	r, err := NewReflectorWithCache(DefaultCacheSize)
	if err != nil {
		panic(err)
	}
	return r
}

// NewReflectorWithCache creates a reflector memoizing up to size descriptors
func NewReflectorWithCache(size int) (*Reflector, error) {
	cache, err := lru.New[reflect.Type, *models.TypeDescriptor](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create descriptor cache: %w", err)
	}
	return &Reflector{
		cache:     cache,
		overrides: make(map[reflect.Type]*models.TypeDescriptor),
		names:     make(map[string]reflect.Type),
	}, nil
}

// Override makes t describe as desc instead of being reflected
func (r *Reflector) Override(t reflect.Type, desc *models.TypeDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overrides[t] = desc
	r.cache.Remove(t)
}

// Describe returns the descriptor for t
func (r *Reflector) Describe(t reflect.Type) (*models.TypeDescriptor, error) {
	if t == nil {
		return nil, fmt.Errorf("cannot describe nil type")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	b := &describeState{
		reflector:  r,
		inProgress: make(map[reflect.Type]*models.TypeDescriptor),
		staged:     make(map[reflect.Type]*models.TypeDescriptor),
		names:      make(map[string]reflect.Type),
	}
	desc, err := b.describe(t)
	if err != nil {
		return nil, err
	}
	b.commit()
	return desc, nil
}

// describeState tracks the structs currently being expanded (cycle detection).
// Completed descriptors and claimed names reach the reflector only when the
// whole Describe call succeeds.
type describeState struct {
	reflector  *Reflector
	inProgress map[reflect.Type]*models.TypeDescriptor
	staged     map[reflect.Type]*models.TypeDescriptor
	names      map[string]reflect.Type
}

func (b *describeState) commit() {
	for t, desc := range b.staged {
		b.reflector.cache.Add(t, desc)
	}
	for name, t := range b.names {
		b.reflector.names[name] = t
	}
}

func (b *describeState) describe(t reflect.Type) (*models.TypeDescriptor, error) {
	if desc, ok := b.reflector.overrides[t]; ok {
		return desc, nil
	}
	if desc, ok := b.reflector.cache.Get(t); ok {
		return desc, nil
	}
	if desc, ok := b.staged[t]; ok {
		return desc, nil
	}
	if desc, ok := b.inProgress[t]; ok {
		return desc, nil
	}

	if desc := specialType(t); desc != nil {
		return desc, nil
	}

	switch t.Kind() {
	case reflect.Bool:
		return b.namedScalar(t, "boolean")
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return b.namedScalar(t, "number")
	case reflect.String:
		return b.namedScalar(t, "string")
	case reflect.Interface:
		return Builtin("unknown"), nil
	case reflect.Pointer:
		return b.describe(t.Elem())
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 && t.Kind() == reflect.Slice {
			// encoding/json writes []byte as base64
			return Builtin("string"), nil
		}
		elem, err := b.describe(t.Elem())
		if err != nil {
			return nil, err
		}
		return composite(arrayExpr(elem.TypeExpr()), elem), nil
	case reflect.Map:
		if err := validateMapKey(t.Key()); err != nil {
			return nil, err
		}
		key, err := b.describe(t.Key())
		if err != nil {
			return nil, err
		}
		if key.TypeExpr() != "number" {
			key = Builtin("string")
		}
		value, err := b.describe(t.Elem())
		if err != nil {
			return nil, err
		}
		return composite(fmt.Sprintf("Record<%s, %s>", key.TypeExpr(), value.TypeExpr()), key, value), nil
	case reflect.Struct:
		if t.Name() == "" {
			return b.anonymousStruct(t)
		}
		return b.namedStruct(t)
	default:
		return nil, fmt.Errorf("unsupported type: %s (kind: %s)", t.String(), t.Kind())
	}
}

// specialType maps types with a dedicated JSON encoding
func specialType(t reflect.Type) *models.TypeDescriptor {
	switch t {
	case timeType, uuidType:
		return Builtin("string")
	case rawMessageType:
		return Builtin("unknown")
	}
	if t.Kind() == reflect.Struct && t.NumField() == 0 && t.Name() == "" {
		return Builtin("object")
	}
	return nil
}

// namedScalar declares defined scalar types (type Status string) as aliases
func (b *describeState) namedScalar(t reflect.Type, base string) (*models.TypeDescriptor, error) {
	if t.Name() == "" || t.PkgPath() == "" {
		return Builtin(base), nil
	}
	name, err := b.claimName(t)
	if err != nil {
		return nil, err
	}
	desc := &models.TypeDescriptor{
		Name:         name,
		Declaration:  fmt.Sprintf("type %s = %s;", name, base),
		Dependencies: []*models.TypeDescriptor{Builtin(base)},
	}
	b.staged[t] = desc
	return desc, nil
}

func (b *describeState) namedStruct(t reflect.Type) (*models.TypeDescriptor, error) {
	name, err := b.claimName(t)
	if err != nil {
		return nil, err
	}

	desc := &models.TypeDescriptor{Name: name}
	b.inProgress[t] = desc
	defer delete(b.inProgress, t)

	body, deps, err := b.structBody(t)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.String(), err)
	}
	desc.Declaration = fmt.Sprintf("interface %s %s", name, body)
	desc.Dependencies = deps

	b.staged[t] = desc
	return desc, nil
}

func (b *describeState) anonymousStruct(t reflect.Type) (*models.TypeDescriptor, error) {
	body, deps, err := b.structBody(t)
	if err != nil {
		return nil, err
	}
	return composite(body, deps...), nil
}

// structBody renders "{ a: string, b?: number, }" and returns the field types
func (b *describeState) structBody(t reflect.Type) (string, []*models.TypeDescriptor, error) {
	var fields []string
	var deps []*models.TypeDescriptor
	seen := make(map[*models.TypeDescriptor]bool)

	var walk func(t reflect.Type) error
	walk = func(t reflect.Type) error {
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			tag := field.Tag.Get("json")

			if field.Anonymous && tag == "" {
				ft := field.Type
				if ft.Kind() == reflect.Pointer {
					ft = ft.Elem()
				}
				if ft.Kind() == reflect.Struct {
					if err := walk(ft); err != nil {
						return err
					}
					continue
				}
			}
			if !field.IsExported() {
				continue
			}

			jsonName, optional, skip, stringEncoded := parseJSONTag(tag, field.Name)
			if skip {
				continue
			}
			if field.Type.Kind() == reflect.Pointer {
				optional = true
			}

			var fd *models.TypeDescriptor
			if stringEncoded {
				fd = Builtin("string")
			} else {
				var err error
				fd, err = b.describe(field.Type)
				if err != nil {
					return fmt.Errorf("field %s: %w", field.Name, err)
				}
			}

			marker := ""
			if optional {
				marker = "?"
			}
			fields = append(fields, fmt.Sprintf("%s%s: %s", propertyName(jsonName), marker, fd.TypeExpr()))
			if !seen[fd] {
				seen[fd] = true
				deps = append(deps, fd)
			}
		}
		return nil
	}

	if err := walk(t); err != nil {
		return "", nil, err
	}
	if len(fields) == 0 {
		return "{ }", deps, nil
	}
	return "{ " + strings.Join(fields, ", ") + ", }", deps, nil
}

// claimName returns the declaration name for t, qualifying it with the package
// name when a different type already owns the bare name
func (b *describeState) claimName(t reflect.Type) (string, error) {
	name := typeName(t)
	if name == "" {
		return "", fmt.Errorf("type %s has no name", t.String())
	}
	if owner, ok := b.owner(name); ok && owner != t {
		name = sanitize(path.Base(t.PkgPath())) + "_" + name
		if owner, ok := b.owner(name); ok && owner != t {
			return "", fmt.Errorf("type name %q is claimed by both %s and %s", name, owner.String(), t.String())
		}
	}
	b.names[name] = t
	return name, nil
}

func (b *describeState) owner(name string) (reflect.Type, bool) {
	if t, ok := b.names[name]; ok {
		return t, true
	}
	t, ok := b.reflector.names[name]
	return t, ok
}

// typeName returns the Go name of t; generic instantiations such as
// Page[example.com/models.User] become Page_User
func typeName(t reflect.Type) string {
	name := t.Name()
	open := strings.IndexByte(name, '[')
	if open < 0 {
		return name
	}
	base := name[:open]
	args := splitTypeArgs(name[open+1 : len(name)-1])
	parts := []string{base}
	for _, arg := range args {
		parts = append(parts, shortArgName(arg))
	}
	return strings.Join(parts, "_")
}

// splitTypeArgs splits a type argument list on top-level commas
func splitTypeArgs(s string) []string {
	var args []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, s[start:i])
				start = i + 1
			}
		}
	}
	return append(args, s[start:])
}

func shortArgName(arg string) string {
	arg = strings.TrimSpace(arg)
	prefix := ""
	for strings.HasPrefix(arg, "*") || strings.HasPrefix(arg, "[]") {
		if strings.HasPrefix(arg, "*") {
			prefix += "Ptr"
			arg = arg[1:]
		} else {
			prefix += "Slice"
			arg = arg[2:]
		}
	}
	if open := strings.IndexByte(arg, '['); open >= 0 {
		inner := splitTypeArgs(arg[open+1 : len(arg)-1])
		parts := []string{shortArgName(arg[:open])}
		for _, a := range inner {
			parts = append(parts, shortArgName(a))
		}
		return prefix + strings.Join(parts, "_")
	}
	if dot := strings.LastIndexByte(arg, '.'); dot >= 0 {
		arg = arg[dot+1:]
	}
	return prefix + sanitize(arg)
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func composite(expr string, deps ...*models.TypeDescriptor) *models.TypeDescriptor {
	return &models.TypeDescriptor{Name: expr, Dependencies: deps}
}

func arrayExpr(elem string) string {
	if strings.ContainsAny(elem, " |&") && !strings.HasPrefix(elem, "{") && !strings.HasPrefix(elem, "Record<") {
		return "(" + elem + ")[]"
	}
	return elem + "[]"
}

// validateMapKey rejects key types encoding/json cannot encode as object keys
func validateMapKey(t reflect.Type) error {
	switch t.Kind() {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return nil
	}
	if t.Implements(textMarshalType) {
		return nil
	}
	return fmt.Errorf("unsupported map key type: %s", t.String())
}

// parseJSONTag parses a json struct tag and returns the JSON name and flags
func parseJSONTag(tag, fieldName string) (jsonName string, optional, skip, stringEncoded bool) {
	if tag == "" {
		return fieldName, false, false, false
	}

	parts := strings.Split(tag, ",")
	jsonName = parts[0]

	if jsonName == "-" && len(parts) == 1 {
		return "", false, true, false
	}
	if jsonName == "" {
		jsonName = fieldName
	}

	for _, opt := range parts[1:] {
		switch opt {
		case "omitempty", "omitzero":
			optional = true
		case "string":
			stringEncoded = true
		}
	}
	return jsonName, optional, false, stringEncoded
}

// propertyName quotes property names that are not plain identifiers
func propertyName(name string) string {
	if name == "" {
		return `""`
	}
	for i, r := range name {
		if !(unicode.IsLetter(r) || r == '_' || r == '$' || (i > 0 && unicode.IsDigit(r))) {
			return fmt.Sprintf("%q", name)
		}
	}
	return name
}
