package typeexpr

import "github.com/chronicl/ts-api/internal/models"

// Resolver looks up the descriptor for a bare type name
type Resolver interface {
	Ref(name string) *models.TypeDescriptor
}

// Describe turns an expression into a descriptor. A bare name resolves to the
// named descriptor. Generic instantiations and arrays become composite
// descriptors that declare nothing themselves and depend on every named part.
func Describe(e *Expr, r Resolver) *models.TypeDescriptor {
	var t *models.TypeDescriptor
	if len(e.Args) == 0 {
		t = r.Ref(e.Name)
	} else {
		deps := []*models.TypeDescriptor{r.Ref(e.Name)}
		for _, arg := range e.Args {
			deps = append(deps, Describe(arg, r))
		}
		generic := &Expr{Name: e.Name, Args: e.Args}
		t = &models.TypeDescriptor{Name: generic.TypeString(), Dependencies: deps}
	}
	for range e.Dims {
		t = &models.TypeDescriptor{Name: t.TypeExpr() + "[]", Dependencies: []*models.TypeDescriptor{t}}
	}
	return t
}
