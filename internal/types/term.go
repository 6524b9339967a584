// Package types implements the first-order type checker: term construction
// from the AST and Robinson unification without an occurs check.
package types

import "fmt"

// Term is a type-level term: a scalar constant, a type variable, an applied
// type constructor, or a curried function arrow.
type Term interface {
	isTerm()
	String() string
}

// Constant is one of the four built-in scalar kinds.
type Constant struct {
	Kind ConstantKind
}

// ConstantKind enumerates the scalar base types.
type ConstantKind int

const (
	Bool ConstantKind = iota
	Integer
	Float
	String
)

func (k ConstantKind) String() string {
	switch k {
	case Bool:
		return "Bool"
	case Integer:
		return "Integer"
	case Float:
		return "Float"
	case String:
		return "String"
	default:
		return "?"
	}
}

func (c *Constant) isTerm()        {}
func (c *Constant) String() string { return fmt.Sprintf("Constant(%s)", c.Kind) }

// Var is an unresolved type variable.
type Var struct {
	Name string
}

func (v *Var) isTerm()        {}
func (v *Var) String() string { return fmt.Sprintf("Var(%s)", v.Name) }

// TypeApp is a named type constructor applied to zero or more argument terms,
// e.g. `Type("List", [Constant(Integer)])` for `List Int`.
type TypeApp struct {
	Name string
	Args []Term
}

func (t *TypeApp) isTerm() {}
func (t *TypeApp) String() string {
	return fmt.Sprintf("Type(%s, %v)", t.Name, t.Args)
}

// Function is a single-argument curried arrow; an N-ary function nests N of
// these.
type Function struct {
	From Term
	To   Term
}

func (f *Function) isTerm()        {}
func (f *Function) String() string { return fmt.Sprintf("Function(%s -> %s)", f.From, f.To) }

// Equal is syntactic term equality (no substitution applied).
func Equal(a, b Term) bool {
	switch av := a.(type) {
	case *Constant:
		bv, ok := b.(*Constant)
		return ok && av.Kind == bv.Kind
	case *Var:
		bv, ok := b.(*Var)
		return ok && av.Name == bv.Name
	case *TypeApp:
		bv, ok := b.(*TypeApp)
		if !ok || av.Name != bv.Name || len(av.Args) != len(bv.Args) {
			return false
		}
		for i := range av.Args {
			if !Equal(av.Args[i], bv.Args[i]) {
				return false
			}
		}
		return true
	case *Function:
		bv, ok := b.(*Function)
		return ok && Equal(av.From, bv.From) && Equal(av.To, bv.To)
	default:
		return false
	}
}

// CurriedFunction builds the nested Function term for an N-ary signature
// ending in result, e.g. CurriedFunction([a,b], r) = Function(a, Function(b, r)).
func CurriedFunction(params []Term, result Term) Term {
	t := result
	for i := len(params) - 1; i >= 0; i-- {
		t = &Function{From: params[i], To: t}
	}
	return t
}

// ListOf is shorthand for the `List a` type application.
func ListOf(elem Term) Term { return &TypeApp{Name: "List", Args: []Term{elem}} }

// Display renders a term the way erm source spells it (`List String`,
// `a -> b`), as opposed to Term.String's internal debug form.
func Display(t Term) string {
	switch v := t.(type) {
	case *Constant:
		return v.Kind.String()
	case *Var:
		return v.Name
	case *TypeApp:
		s := v.Name
		for _, a := range v.Args {
			s += " " + displayArg(a)
		}
		return s
	case *Function:
		return displayArg(v.From) + " -> " + Display(v.To)
	default:
		return "?"
	}
}

// displayArg wraps a term in parens when it needs them as a function/type
// application argument (a bare function arrow or a TypeApp with at least
// one argument).
func displayArg(t Term) string {
	switch v := t.(type) {
	case *Function:
		return "(" + Display(v) + ")"
	case *TypeApp:
		if len(v.Args) > 0 {
			return "(" + Display(v) + ")"
		}
		return Display(v)
	default:
		return Display(t)
	}
}
