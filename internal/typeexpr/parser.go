// Package typeexpr parses declared type expressions such as
// "&Json<Result<AuthResponse, Error>>" or "Query<Filter>[]".
package typeexpr

import (
	stderrors "errors"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/chronicl/ts-api/internal/errors"
	"github.com/chronicl/ts-api/internal/extract"
)

// Expr is one parsed type expression
type Expr struct {
	Pos lexer.Position

	Refs []string `parser:"@'&'*"`
	Name string   `parser:"@Ident"`
	Args []*Expr  `parser:"( '<' @@ ( ',' @@ )* '>' )?"`
	Dims []string `parser:"( @'[' ']' )*"`
}

// Parser parses type expressions
type Parser struct {
	parser *participle.Parser[Expr]
}

// NewParser creates a type expression parser
func NewParser() *Parser {
	lex := lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Ident", Pattern: `[a-zA-Z_$][a-zA-Z0-9_$]*`},
		{Name: "Punct", Pattern: `[&<>,\[\]]`},
		{Name: "Whitespace", Pattern: `\s+`},
	})

	parser := participle.MustBuild[Expr](
		participle.Lexer(lex),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	)

	return &Parser{parser: parser}
}

// Parse parses input into an expression
func (p *Parser) Parse(input string) (*Expr, error) {
	if strings.TrimSpace(input) == "" {
		return nil, errors.NewSyntaxError("empty type expression").WithInput(input)
	}
	expr, err := p.parser.ParseString("", input)
	if err != nil {
		perr := errors.WrapParseError(input, err)
		var located participle.Error
		if stderrors.As(err, &located) {
			perr = perr.WithPosition(located.Position().Offset)
		}
		return nil, perr
	}
	return expr, nil
}

var defaultParser = NewParser()

// Parse parses input with a shared parser
func Parse(input string) (*Expr, error) {
	return defaultParser.Parse(input)
}

// String prints the expression in canonical form, e.g. "&Json<Result<A, B>>"
func (e *Expr) String() string {
	return strings.Repeat("&", len(e.Refs)) + e.TypeString()
}

// TypeString prints the expression without reference markers at any depth
func (e *Expr) TypeString() string {
	var b strings.Builder
	b.WriteString(e.Name)
	if len(e.Args) > 0 {
		b.WriteByte('<')
		for i, arg := range e.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(arg.TypeString())
		}
		b.WriteByte('>')
	}
	b.WriteString(strings.Repeat("[]", len(e.Dims)))
	return b.String()
}

// IsRef reports whether the expression is taken by reference
func (e *Expr) IsRef() bool {
	return len(e.Refs) > 0
}

// Declared reduces the expression to what parameter classification needs.
// Every reference marker becomes one level of reference around the outer wrapper.
func (e *Expr) Declared() extract.Declared {
	d := extract.Declared{Wrapper: e.Name}
	if len(e.Dims) > 0 {
		// Json<T>[] is not a wrapper shape
		d.Wrapper = ""
	}
	for range e.Refs {
		d = extract.Reference(d)
	}
	return d
}

// Inner returns the single type argument of a wrapper such as Json<T>
func (e *Expr) Inner() (*Expr, error) {
	if len(e.Args) != 1 {
		return nil, errors.NewSyntaxError(
			"wrapper "+e.Name+" takes exactly one type argument").
			WithInput(e.String()).
			WithPosition(e.Pos.Offset)
	}
	return e.Args[0], nil
}
