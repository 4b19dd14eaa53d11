package codegen

import (
	"fmt"
	"strings"
	"unicode"
)

// SegmentKind classifies one path segment
type SegmentKind int

const (
	SegmentStatic SegmentKind = iota
	SegmentParam              // :name
	SegmentWildcard           // *name
)

// Segment is one non-empty component of a route path
type Segment struct {
	Kind SegmentKind
	Name string // bare name without the ':' or '*' marker
}

// IsDynamic reports whether the segment is filled in at call time
func (s Segment) IsDynamic() bool {
	return s.Kind != SegmentStatic
}

// ParsePath splits a route path into its non-empty segments
func ParsePath(path string) []Segment {
	var segments []Segment
	for _, part := range strings.Split(path, "/") {
		switch {
		case part == "":
			continue
		case strings.HasPrefix(part, ":"):
			segments = append(segments, Segment{Kind: SegmentParam, Name: part[1:]})
		case strings.HasPrefix(part, "*"):
			segments = append(segments, Segment{Kind: SegmentWildcard, Name: part[1:]})
		default:
			segments = append(segments, Segment{Kind: SegmentStatic, Name: part})
		}
	}
	return segments
}

// DynamicSegments returns the names of the dynamic segments of path in order
func DynamicSegments(path string) []string {
	var names []string
	for _, seg := range ParsePath(path) {
		if seg.IsDynamic() {
			names = append(names, seg.Name)
		}
	}
	return names
}

// CheckPathChannel reports whether a Path parameter can fill the dynamic
// segments of path. A scalar binds exactly one segment; an object binds them
// by property name.
func CheckPathChannel(path string, scalar bool) error {
	segments := DynamicSegments(path)
	switch {
	case len(segments) == 0:
		return fmt.Errorf("Path used on a route without dynamic segments")
	case scalar && len(segments) != 1:
		return fmt.Errorf("a scalar Path needs exactly one dynamic segment, route has %d", len(segments))
	}
	return nil
}

// NormalizePath ensures the path starts with a single '/'
func NormalizePath(path string) string {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

// ClientPath rewrites dynamic segments into the client's placeholder form:
// /user/:id becomes /user/{id}
func ClientPath(path string) string {
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if strings.HasPrefix(part, ":") || (strings.HasPrefix(part, "*") && len(part) > 1) {
			parts[i] = "{" + part[1:] + "}"
		}
	}
	return strings.Join(parts, "/")
}

// FileName derives the client module name for a route path. Segments lose
// their dynamic markers, are joined with '_' and converted to lowerCamelCase.
// The root path yields "root".
func FileName(path string) string {
	var names []string
	for _, seg := range ParsePath(path) {
		if seg.Name != "" {
			names = append(names, seg.Name)
		}
	}
	name := lowerCamel(strings.Join(names, "_"))
	if name == "" {
		return "root"
	}
	return escapeIdentifier(name)
}

// lowerCamel converts s to lowerCamelCase. Words are split on any
// non-alphanumeric character and on lower-to-upper case boundaries.
func lowerCamel(s string) string {
	words := splitWords(s)
	var b strings.Builder
	for i, word := range words {
		word = strings.ToLower(word)
		if i > 0 {
			runes := []rune(word)
			runes[0] = unicode.ToUpper(runes[0])
			word = string(runes)
		}
		b.WriteString(word)
	}
	return b.String()
}

func splitWords(s string) []string {
	var words []string
	var current []rune
	runes := []rune(s)

	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}

	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && len(current) > 0 {
			prev := current[len(current)-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			// fooBar | HTTPServer
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		current = append(current, r)
	}
	flush()
	return words
}

// TypeScript reserved words that cannot name an imported binding
var reservedWords = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true, "do": true,
	"else": true, "enum": true, "export": true, "extends": true, "false": true,
	"finally": true, "for": true, "function": true, "if": true, "implements": true,
	"import": true, "in": true, "instanceof": true, "interface": true, "let": true,
	"new": true, "null": true, "package": true, "private": true, "protected": true,
	"public": true, "return": true, "static": true, "super": true, "switch": true,
	"this": true, "throw": true, "true": true, "try": true, "type": true,
	"typeof": true, "var": true, "void": true, "while": true, "with": true,
	"yield": true,
}

// escapeIdentifier makes name usable as a TypeScript binding
func escapeIdentifier(name string) string {
	if reservedWords[name] {
		return name + "_"
	}
	if name != "" && unicode.IsDigit([]rune(name)[0]) {
		return "_" + name
	}
	return name
}

// quote renders s as a single-quoted TypeScript string literal
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)
	return "'" + r.Replace(s) + "'"
}
