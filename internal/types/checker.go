package types

import (
	"fmt"

	"github.com/erm-lang/erm/internal/ast"
	"github.com/erm-lang/erm/internal/errors"
)

// Checker builds type terms for a module's expressions and unifies them,
// threading a counter for fresh type variables and a single persistent
// substitution across the whole recursive descent, so a constraint learned
// deep in one branch (e.g. a case branch's result type) is visible to every
// other branch and to whatever uses the resulting term afterward.
type Checker struct {
	env        Env
	operators  map[string]string
	varCounter int
	subs       Substitution
}

// unify unifies x and y against the checker's running substitution,
// updating it in place on success.
func (c *Checker) unify(x, y Term) error {
	subs, err := Unify(x, y, c.subs)
	if err != nil {
		return err
	}
	c.subs = subs
	return nil
}

// Check verifies that `main` has type `List String -> String` using only
// the given module's own top-level statements (no resolved imports) —
// convenient for single-file checking and tests.
func Check(m *ast.Module, builtins map[string]func(*Checker) Term) error {
	return CheckMain(NewEnv(m, builtins), BuildOperatorTable(m))
}

// CheckMain verifies that `main` has type `List String -> String` by
// looking it up through env, which the caller has already populated with
// whatever resolved-import bindings are in scope, resolving operators
// through the given table (built by BuildOperatorTable over the root
// module so user infix declarations are honored).
func CheckMain(env Env, operators map[string]string) error {
	c := &Checker{env: env, operators: operators}

	mainTerm, err := c.exprToTerm(&ast.VarName{Name: ast.SimpleName("main")}, c.env)
	if err != nil {
		return err
	}

	target := &Function{From: ListOf(&Constant{String}), To: &Constant{String}}
	if err := c.unify(mainTerm, target); err != nil {
		return fmt.Errorf("main: %w", err)
	}
	return nil
}

// CheckExpr builds and returns the type term for a single expression under
// env without constraining it to any particular target type. The REPL uses
// this to type-check one definition or bare expression at a time, where
// there is no `main` to check against. The returned term is fully resolved
// against every constraint unification learned while building it.
func CheckExpr(env Env, operators map[string]string, expr ast.Expr) (Term, error) {
	c := &Checker{env: env, operators: operators}
	term, err := c.exprToTerm(expr, env)
	if err != nil {
		return nil, err
	}
	return c.subs.Resolve(term), nil
}

func (c *Checker) fresh() Term {
	c.varCounter++
	return &Var{Name: fmt.Sprintf("t%d", c.varCounter)}
}

func checkError(message string) error {
	return errors.New(errors.ChkUnboundVar, "", 0, 0, message)
}

// exprToTerm builds the term for a single expression, looking up bindings
// in env as needed.
func (c *Checker) exprToTerm(expr ast.Expr, env Env) (Term, error) {
	switch e := expr.(type) {
	case *ast.BoolLit:
		return &Constant{Bool}, nil
	case *ast.IntLit:
		return &Constant{Integer}, nil
	case *ast.FloatLit:
		return &Constant{Float}, nil
	case *ast.StringLit:
		return &Constant{String}, nil
	case *ast.ListLit:
		return c.listToTerm(e, env)
	case *ast.VarName:
		return c.varToTerm(e, env)
	case *ast.Call:
		return c.callToTerm(e, env)
	case *ast.BinOp:
		return c.binOpToTerm(e, env)
	case *ast.If:
		return c.ifToTerm(e, env)
	case *ast.Case:
		return c.caseToTerm(e, env)
	case *ast.Let:
		return c.letToTerm(e, env)
	case *ast.Lambda:
		return c.lambdaToTerm(e, env)
	default:
		return nil, checkError(fmt.Sprintf("unhandled expression %T", expr))
	}
}

func (c *Checker) listToTerm(e *ast.ListLit, env Env) (Term, error) {
	if len(e.Elements) == 0 {
		return ListOf(c.fresh()), nil
	}
	elemTerm, err := c.exprToTerm(e.Elements[0], env)
	if err != nil {
		return nil, err
	}
	for _, el := range e.Elements[1:] {
		t, err := c.exprToTerm(el, env)
		if err != nil {
			return nil, err
		}
		if err := c.unify(elemTerm, t); err != nil {
			return nil, err
		}
	}
	return ListOf(elemTerm), nil
}

func (c *Checker) varToTerm(e *ast.VarName, env Env) (Term, error) {
	name := e.Name.Leaf()
	if qualified := e.Name.String(); qualified != name {
		if b, ok := env.Get(qualified); ok {
			return c.bindingToTerm(b, env)
		}
	}
	b, ok := env.Get(name)
	if !ok {
		return nil, checkError("unknown binding: " + e.Name.String())
	}
	return c.bindingToTerm(b, env)
}

func (c *Checker) bindingToTerm(b Binding, env Env) (Term, error) {
	// A binding carried over from another module closes over that module's
	// own environment, not whatever env this lookup happens to be passing
	// through — its own private siblings must resolve even when the
	// importer never exposes them.
	if b.DefiningEnv.IsSet() {
		env = b.DefiningEnv
	}
	switch b.Kind {
	case BindBuiltin:
		return b.Builtin(c), nil
	case BindUserArg:
		return b.ArgTerm, nil
	case BindUserExpr:
		return c.exprToTerm(b.Expr, env)
	case BindUserFunc:
		return c.funcToTerm(b.Func, env)
	default:
		return nil, checkError("unhandled binding")
	}
}

// funcToTerm builds the curried signature for a user function: each
// parameter pattern becomes a fresh Var bound in a scope used to infer the
// body's term, then the whole thing is wrapped into nested Function terms.
func (c *Checker) funcToTerm(fn *ast.Function, env Env) (Term, error) {
	scope := Scope{}
	paramTerms := make([]Term, len(fn.Args))
	for i, pat := range fn.Args {
		t := c.patternArgTerm(pat)
		paramTerms[i] = t
		bindPattern(scope, pat, t)
	}
	bodyEnv := env.Push(scope)
	bodyTerm, err := c.exprToTerm(fn.Expr, bodyEnv)
	if err != nil {
		return nil, err
	}
	return CurriedFunction(paramTerms, bodyTerm), nil
}

// patternArgTerm assigns a term to a parameter pattern: a fresh Var for a
// bound name or wildcard, the obvious Constant for a literal pattern.
func (c *Checker) patternArgTerm(pat ast.Pattern) Term {
	switch pat.(type) {
	case *ast.BoolPattern:
		return &Constant{Bool}
	case *ast.IntPattern:
		return &Constant{Integer}
	default:
		return c.fresh()
	}
}

func bindPattern(scope Scope, pat ast.Pattern, t Term) {
	if name, ok := pat.(*ast.NamePattern); ok {
		scope[name.Name] = Binding{Kind: BindUserArg, ArgTerm: t}
	}
}

func (c *Checker) callToTerm(e *ast.Call, env Env) (Term, error) {
	sig, err := c.exprToTerm(e.Function, env)
	if err != nil {
		return nil, err
	}
	argTerms := make([]Term, len(e.Args))
	for i, a := range e.Args {
		t, err := c.exprToTerm(a, env)
		if err != nil {
			return nil, err
		}
		argTerms[i] = t
	}
	return c.resolveFunctionAndArgs(sig, argTerms)
}

// resolveFunctionAndArgs applies argTerms to sig one at a time, unifying
// each against the function's `from` slot against the checker's running
// substitution. A non-function signature with args still to apply is
// TooManyArguments; fewer args than the signature's arity yields the
// remaining function term (partial application).
func (c *Checker) resolveFunctionAndArgs(sig Term, argTerms []Term) (Term, error) {
	if len(argTerms) == 0 {
		return sig, nil
	}
	fn, ok := sig.(*Function)
	if !ok {
		return nil, checkError("too many arguments")
	}
	if err := c.unify(argTerms[0], fn.From); err != nil {
		return nil, err
	}
	return c.resolveFunctionAndArgs(fn.To, argTerms[1:])
}

func (c *Checker) binOpToTerm(e *ast.BinOp, env Env) (Term, error) {
	fnName, ok := c.operators[e.Op]
	if !ok {
		return nil, checkError("unknown operator: " + e.Op)
	}
	b, ok := env.Get(fnName)
	if !ok {
		return nil, checkError("unknown function: " + fnName)
	}
	sig, err := c.bindingToTerm(b, env)
	if err != nil {
		return nil, err
	}
	leftTerm, err := c.exprToTerm(e.Left, env)
	if err != nil {
		return nil, err
	}
	rightTerm, err := c.exprToTerm(e.Right, env)
	if err != nil {
		return nil, err
	}
	return c.resolveFunctionAndArgs(sig, []Term{leftTerm, rightTerm})
}

func (c *Checker) ifToTerm(e *ast.If, env Env) (Term, error) {
	condTerm, err := c.exprToTerm(e.Cond, env)
	if err != nil {
		return nil, err
	}
	if err := c.unify(condTerm, &Constant{Bool}); err != nil {
		return nil, err
	}
	thenTerm, err := c.exprToTerm(e.Then, env)
	if err != nil {
		return nil, err
	}
	elseTerm, err := c.exprToTerm(e.Else, env)
	if err != nil {
		return nil, err
	}
	if err := c.unify(thenTerm, elseTerm); err != nil {
		return nil, err
	}
	return c.subs.Resolve(thenTerm), nil
}

func (c *Checker) caseToTerm(e *ast.Case, env Env) (Term, error) {
	scrutTerm, err := c.exprToTerm(e.Scrutinee, env)
	if err != nil {
		return nil, err
	}

	var resultTerm Term
	for _, branch := range e.Branches {
		scope := Scope{}
		patTerm := c.patternArgTerm(branch.Pattern)
		bindPattern(scope, branch.Pattern, scrutTerm)
		if err := c.unify(scrutTerm, patTerm); err != nil {
			return nil, err
		}
		branchEnv := env.Push(scope)
		bodyTerm, err := c.exprToTerm(branch.Expr, branchEnv)
		if err != nil {
			return nil, err
		}
		if resultTerm == nil {
			resultTerm = bodyTerm
			continue
		}
		if err := c.unify(resultTerm, bodyTerm); err != nil {
			return nil, err
		}
	}
	if resultTerm == nil {
		return nil, checkError("case expression has no branches")
	}
	return c.subs.Resolve(resultTerm), nil
}

func (c *Checker) letToTerm(e *ast.Let, env Env) (Term, error) {
	scope := Scope{}
	for _, b := range e.Bindings {
		if len(b.Args) == 0 {
			scope[b.Name] = Binding{Kind: BindUserExpr, Expr: b.Expr}
		} else {
			scope[b.Name] = Binding{Kind: BindUserFunc, Func: &ast.Function{Name: b.Name, Args: b.Args, Expr: b.Expr}}
		}
	}
	bodyEnv := env.Push(scope)
	return c.exprToTerm(e.Body, bodyEnv)
}

func (c *Checker) lambdaToTerm(e *ast.Lambda, env Env) (Term, error) {
	return c.funcToTerm(&ast.Function{Args: e.Args, Expr: e.Body}, env)
}
