package types

import "github.com/erm-lang/erm/internal/ast"

// BindingKind distinguishes the four shapes a name can resolve to during
// checking, mirroring spec.md §3's Binding variants.
type BindingKind int

const (
	BindUserFunc BindingKind = iota
	BindUserExpr
	BindUserArg
	BindBuiltin
)

// Binding is what a name resolves to while building a term.
type Binding struct {
	Kind    BindingKind
	Func    *ast.Function
	Expr    ast.Expr
	ArgTerm Term
	Builtin func(*Checker) Term
	// DefiningEnv, when set (Env.scopes non-nil), is the environment a
	// BindUserFunc/BindUserExpr binding's body must be checked against
	// instead of whatever env it happened to be looked up through — the
	// module it was written in, including names that module never exposes.
	DefiningEnv Env
}

// IsSet reports whether e was built by NewEnv/Push rather than left as the
// Env zero value.
func (e Env) IsSet() bool {
	return e.scopes != nil
}

// Scope maps names to Bindings; multiple Scopes are layered innermost-first.
type Scope map[string]Binding

// Env is the checker's layered lookup structure: local scopes searched
// before the module-level scope built from top-level statements.
type Env struct {
	scopes []Scope
}

// NewEnv builds the base Env from a module's top-level statements plus the
// built-in table.
func NewEnv(m *ast.Module, builtins map[string]func(*Checker) Term) Env {
	base := Scope{}
	for name, fn := range builtins {
		base[name] = Binding{Kind: BindBuiltin, Builtin: fn}
	}
	for _, stmt := range m.Statements {
		switch s := stmt.(type) {
		case *ast.Binding:
			base[s.Name] = Binding{Kind: BindUserExpr, Expr: s.Expr}
		case *ast.Function:
			base[s.Name] = Binding{Kind: BindUserFunc, Func: s}
		}
	}
	return Env{scopes: []Scope{base}}
}

// Push returns a new Env with scope prepended (innermost), leaving e
// unmodified.
func (e Env) Push(scope Scope) Env {
	next := make([]Scope, 0, len(e.scopes)+1)
	next = append(next, scope)
	next = append(next, e.scopes...)
	return Env{scopes: next}
}

// Get looks up name through local scopes, innermost first, then the module
// scope.
func (e Env) Get(name string) (Binding, bool) {
	for _, s := range e.scopes {
		if b, ok := s[name]; ok {
			return b, true
		}
	}
	return Binding{}, false
}
