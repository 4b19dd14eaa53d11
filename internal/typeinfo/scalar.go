package typeinfo

import (
	"strconv"
	"strings"

	"github.com/chronicl/ts-api/internal/models"
)

var scalarExprs = map[string]bool{
	"string":  true,
	"number":  true,
	"boolean": true,
	"bigint":  true,
}

// IsScalar reports whether values of t travel as a single primitive on the
// wire. Besides the builtin scalars this covers aliases that resolve to one,
// such as `type UserId = string;`, and unions of string or number literals.
func IsScalar(t *models.TypeDescriptor) bool {
	seen := make(map[*models.TypeDescriptor]bool)
	for t != nil && !seen[t] {
		seen[t] = true
		if !t.Declares() {
			return scalarExprs[t.TypeExpr()]
		}

		rhs, ok := aliasTarget(t)
		if !ok {
			return false
		}
		if literalUnion(rhs) {
			return true
		}
		next := dependencySpelled(t, rhs)
		if next == nil {
			// aliases of builtins may omit the dependency
			return scalarExprs[rhs]
		}
		t = next
	}
	return false
}

// aliasTarget returns the right-hand side of a non-generic `type Name = rhs;`
func aliasTarget(t *models.TypeDescriptor) (string, bool) {
	decl := strings.TrimSpace(t.Declaration)
	rest, ok := strings.CutPrefix(decl, "type ")
	if !ok {
		return "", false
	}
	name, rhs, ok := strings.Cut(rest, "=")
	if !ok || strings.TrimSpace(name) != t.Name {
		return "", false
	}
	rhs = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rhs), ";"))
	return rhs, rhs != ""
}

func dependencySpelled(t *models.TypeDescriptor, expr string) *models.TypeDescriptor {
	for _, dep := range t.Dependencies {
		if dep != nil && dep.TypeExpr() == expr {
			return dep
		}
	}
	return nil
}

func literalUnion(expr string) bool {
	for _, member := range strings.Split(expr, "|") {
		member = strings.TrimSpace(member)
		if len(member) >= 2 && (member[0] == '\'' || member[0] == '"') && member[len(member)-1] == member[0] {
			continue
		}
		if _, err := strconv.ParseFloat(member, 64); err == nil {
			continue
		}
		return false
	}
	return true
}
