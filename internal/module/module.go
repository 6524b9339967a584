// Package module implements transitive import resolution: translating a
// dotted module name to a source file, parsing it, and recursively resolving
// its own imports into a set of scopes.
package module

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/erm-lang/erm/internal/ast"
	"github.com/erm-lang/erm/internal/errors"
	"github.com/erm-lang/erm/internal/parser"
)

// Scope is what a resolved module contributes to an importer: the bindings
// it exposes plus any infix declarations it carries.
type Scope struct {
	Identity string
	Module   *ast.Module
	Exposed  map[string]ast.Stmt
	Infixes  map[string]*ast.Infix
}

// Resolver walks a root module's imports transitively, caching already
// resolved modules and detecting cycles via a load stack.
type Resolver struct {
	sourceDirs []string
	cache      map[string]*Scope
	loadStack  []string
}

// NewResolver builds a Resolver that searches sourceDirs, in order, for
// each imported module's file.
func NewResolver(sourceDirs []string) *Resolver {
	return &Resolver{
		sourceDirs: sourceDirs,
		cache:      make(map[string]*Scope),
	}
}

// preludeImports are spliced ahead of every resolved module's own imports
// unless already present, per the fixed prelude.
var preludeImports = []string{"Basics", "String", "List"}

// isVirtualModule reports whether name is one of the prelude modules whose
// bindings are built in rather than loaded from a source file.
func isVirtualModule(name string) bool {
	switch name {
	case "Basics", "String", "List":
		return true
	default:
		return false
	}
}

// ResolveRoot parses the file at path as the root module, splices in the
// prelude imports, and resolves every import transitively. It returns the
// root module's own AST plus the scopes of everything it (transitively)
// imports.
func (r *Resolver) ResolveRoot(source, path string) (*ast.Module, []*Scope, error) {
	p := parser.New(source, path)
	mod, err := p.Parse()
	if err != nil {
		return nil, nil, err
	}

	withPrelude(mod)

	var scopes []*Scope
	for _, imp := range mod.Imports {
		name := strings.Join(imp.Module, ".")
		scope, err := r.resolve(name)
		if err != nil {
			return nil, nil, err
		}
		scopes = append(scopes, scope)
	}
	return mod, scopes, nil
}

// withPrelude prepends any prelude import not already present in mod's
// import list, matching on the dotted module name.
func withPrelude(mod *ast.Module) {
	have := make(map[string]bool, len(mod.Imports))
	for _, imp := range mod.Imports {
		have[strings.Join(imp.Module, ".")] = true
	}
	var prepend []*ast.Import
	for _, name := range preludeImports {
		if !have[name] {
			prepend = append(prepend, &ast.Import{Module: []string{name}})
		}
	}
	mod.Imports = append(prepend, mod.Imports...)
}

func (r *Resolver) resolve(name string) (*Scope, error) {
	if scope, ok := r.cache[name]; ok {
		return scope, nil
	}
	for _, inProgress := range r.loadStack {
		if inProgress == name {
			// Re-entrant resolution of a module already being loaded: a
			// module is cached only once its own load finishes, so this
			// returns an empty placeholder scope rather than failing. The
			// importer only checks for an error; the module's full scope is
			// in the cache once its outer load completes.
			if scope, ok := r.cache[name]; ok {
				return scope, nil
			}
			return &Scope{Identity: name, Exposed: map[string]ast.Stmt{}, Infixes: map[string]*ast.Infix{}}, nil
		}
	}

	// Basics/String/List are virtual: their bindings come straight from the
	// built-in tables (already keyed "Basics.add" etc.) rather than from a
	// source file on disk, so prelude splicing never fails looking for one.
	if isVirtualModule(name) {
		scope := &Scope{Identity: name, Exposed: map[string]ast.Stmt{}, Infixes: map[string]*ast.Infix{}}
		r.cache[name] = scope
		return scope, nil
	}

	path, err := r.findFile(name)
	if err != nil {
		return nil, errors.New(errors.ModNotFound, "", 0, 0, "unable to find module "+name)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.ModReadError, path, 0, 0, "failed to read module "+name+": "+err.Error())
	}

	r.loadStack = append(r.loadStack, name)
	defer func() { r.loadStack = r.loadStack[:len(r.loadStack)-1] }()

	p := parser.New(string(content), path)
	mod, err := p.Parse()
	if err != nil {
		return nil, errors.New(errors.ModParse, path, 0, 0, "failed to parse module "+name+": "+err.Error())
	}

	withPrelude(mod)
	for _, imp := range mod.Imports {
		depName := strings.Join(imp.Module, ".")
		if _, err := r.resolve(depName); err != nil {
			return nil, err
		}
	}

	scope := buildScope(name, mod)
	r.cache[name] = scope
	return scope, nil
}

// buildScope filters a parsed module's top-level statements by its
// exposing clause to produce the names visible to an importer.
func buildScope(identity string, mod *ast.Module) *Scope {
	exposed := make(map[string]ast.Stmt)
	infixes := make(map[string]*ast.Infix)

	wantAll := mod.Exposing.All
	want := make(map[string]bool, len(mod.Exposing.Items))
	for _, item := range mod.Exposing.Items {
		want[item.Name] = true
	}

	for _, stmt := range mod.Statements {
		switch s := stmt.(type) {
		case *ast.Binding:
			if wantAll || want[s.Name] {
				exposed[s.Name] = s
			}
		case *ast.Function:
			if wantAll || want[s.Name] {
				exposed[s.Name] = s
			}
		case *ast.TypeDecl:
			if wantAll || want[s.Name] {
				exposed[s.Name] = s
			}
		case *ast.Infix:
			infixes[s.Operator] = s
		}
	}

	return &Scope{Identity: identity, Module: mod, Exposed: exposed, Infixes: infixes}
}

// AllScopes returns every module scope resolved so far, keyed by dotted
// module name, including transitive dependencies not present in
// ResolveRoot's direct-import slice.
func (r *Resolver) AllScopes() map[string]*Scope {
	return r.cache
}

// findFile translates a dotted module name to a file path by searching the
// configured source directories in order.
func (r *Resolver) findFile(name string) (string, error) {
	rel := strings.ReplaceAll(name, ".", string(filepath.Separator)) + ".em"
	for _, dir := range r.sourceDirs {
		candidate := filepath.Join(dir, rel)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", os.ErrNotExist
}
