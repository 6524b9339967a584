// Package runtime wires the module resolver, type checker and evaluator
// together into the single entry point the CLI and REPL both call.
package runtime

import (
	"strings"

	"github.com/erm-lang/erm/internal/ast"
	"github.com/erm-lang/erm/internal/eval"
	"github.com/erm-lang/erm/internal/module"
	"github.com/erm-lang/erm/internal/types"
)

// Program is a fully resolved, checked module ready for evaluation: its own
// AST, the merged environments used by the checker and evaluator, and the
// operator table both layers agree on.
type Program struct {
	Module    *ast.Module
	TypeEnv   types.Env
	EvalEnv   *eval.Env
	Evaluator *eval.Evaluator
	Operators map[string]string
}

// Load parses source as the root module at path, resolves its (prelude
// plus user) imports under sourceDirs, and merges everything into the flat
// environments the checker/evaluator operate over.
func Load(source, path string, sourceDirs []string) (*Program, error) {
	resolver := module.NewResolver(sourceDirs)
	root, _, err := resolver.ResolveRoot(source, path)
	if err != nil {
		return nil, err
	}

	operators := types.BuildOperatorTable(root)
	evaluator := eval.New(operators)

	typeEnv := types.NewEnv(root, types.Builtins())
	evalEnv := eval.NewModuleEnv(evaluator.Builtins())

	for _, stmt := range root.Statements {
		name := stmtName(stmt)
		if name == "" {
			continue
		}
		evalEnv.Define(name, stmt)
	}

	// importScope is the flat, cross-module lookup surface: every resolved
	// module's exposed names, qualified always and unqualified wherever the
	// root's own import clause asks for it. It is mutated in place below as
	// each module's own environment is built, and pushed onto typeEnv once
	// at the end, so every Env sharing this map sees the final contents.
	importScope := types.Scope{}
	for _, scope := range resolver.AllScopes() {
		if scope.Module == nil {
			continue // Basics/String/List: builtin-backed, nothing of their own
		}

		// Give this module its own environment: the cross-module scope above
		// plus every one of its own top-level statements, unqualified —
		// private helpers included — so one of its exposed functions can
		// reach a sibling it never exports instead of only the names its
		// importer happens to expose.
		moduleEvalEnv := evalEnv.Child()
		privateTypeScope := types.Scope{}
		for _, stmt := range scope.Module.Statements {
			name := stmtName(stmt)
			if name == "" {
				continue
			}
			privateTypeScope[name] = stmtBinding(stmt)
			moduleEvalEnv.Define(name, stmt)
		}
		moduleTypeEnv := typeEnv.Push(importScope).Push(privateTypeScope)

		all, names := exposedUnqualified(root, scope.Identity)
		for name, stmt := range scope.Exposed {
			qualified := scope.Identity + "." + name
			b := stmtBinding(stmt)
			b.DefiningEnv = moduleTypeEnv
			importScope[qualified] = b
			evalEnv.DefineFrom(qualified, moduleEvalEnv, name)
			if all || names[name] {
				importScope[name] = b
				evalEnv.DefineFrom(name, moduleEvalEnv, name)
			}
		}
	}
	typeEnv = typeEnv.Push(importScope)

	return &Program{
		Module:    root,
		TypeEnv:   typeEnv,
		EvalEnv:   evalEnv,
		Evaluator: evaluator,
		Operators: operators,
	}, nil
}

func stmtName(stmt ast.Stmt) string {
	switch s := stmt.(type) {
	case *ast.Binding:
		return s.Name
	case *ast.Function:
		return s.Name
	default:
		return ""
	}
}

func stmtBinding(stmt ast.Stmt) types.Binding {
	switch s := stmt.(type) {
	case *ast.Function:
		return types.Binding{Kind: types.BindUserFunc, Func: s}
	case *ast.Binding:
		return types.Binding{Kind: types.BindUserExpr, Expr: s.Expr}
	default:
		return types.Binding{}
	}
}

// exposedUnqualified reports, for a dotted module identity, whether the
// root module's own import clause pulls all of its names in unqualified
// (via `exposing (..)`), or which specific names it pulls in by listing
// them.
func exposedUnqualified(root *ast.Module, identity string) (all bool, names map[string]bool) {
	names = map[string]bool{}
	for _, imp := range root.Imports {
		if strings.Join(imp.Module, ".") != identity || imp.Exposing == nil {
			continue
		}
		if imp.Exposing.All {
			return true, names
		}
		for _, item := range imp.Exposing.Items {
			names[item.Name] = true
		}
	}
	return false, names
}

// Check type-checks the program's main binding against the merged
// environment built by Load (module-local plus resolved imports).
func (p *Program) Check() error {
	return types.CheckMain(p.TypeEnv, p.Operators)
}

// Run evaluates main applied to args.
func (p *Program) Run(args []string) (eval.Value, error) {
	elements := make([]eval.Value, len(args))
	for i, a := range args {
		elements[i] = &eval.StringValue{Value: a}
	}
	argsList := &eval.ListValue{Elements: elements}

	mainVal, err := p.Evaluator.Eval(&ast.VarName{Name: ast.SimpleName("main")}, p.EvalEnv)
	if err != nil {
		return nil, err
	}
	return p.Evaluator.Apply(mainVal, []eval.Value{argsList})
}
