package module

import (
	"os"
	"path/filepath"
	"testing"
)

func writeModule(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestResolveRootSplicesPreludeWithoutTouchingDisk(t *testing.T) {
	dir := t.TempDir()
	root := "module Main exposing (..)\n\nmain args = \"hello\"\n"

	r := NewResolver([]string{dir})
	mod, scopes, err := r.ResolveRoot(root, filepath.Join(dir, "Main.em"))
	if err != nil {
		t.Fatalf("ResolveRoot failed: %v (Basics/String/List should never hit the filesystem)", err)
	}
	if len(mod.Imports) != 3 {
		t.Fatalf("expected exactly the 3 spliced prelude imports, got %d", len(mod.Imports))
	}
	if len(scopes) != 3 {
		t.Fatalf("expected 3 resolved scopes for the prelude, got %d", len(scopes))
	}
	for _, name := range []string{"Basics", "String", "List"} {
		if _, ok := r.AllScopes()[name]; !ok {
			t.Errorf("expected %s to be resolved as a virtual scope", name)
		}
	}
}

func TestResolveUserModule(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "Helper.em", "module Helper exposing (greet)\n\ngreet = \"hi\"\nsecret = \"unexposed\"\n")

	root := "module Main exposing (..)\n\nimport Helper\n\nmain args = Helper.greet\n"
	r := NewResolver([]string{dir})
	_, scopes, err := r.ResolveRoot(root, filepath.Join(dir, "Main.em"))
	if err != nil {
		t.Fatalf("ResolveRoot failed: %v", err)
	}

	var helper *Scope
	for _, s := range scopes {
		if s.Identity == "Helper" {
			helper = s
		}
	}
	if helper == nil {
		t.Fatal("expected Helper to be among the resolved scopes")
	}
	if _, ok := helper.Exposed["greet"]; !ok {
		t.Error("expected greet to be exposed")
	}
	if _, ok := helper.Exposed["secret"]; ok {
		t.Error("secret should not be exposed since Helper only exposes greet")
	}
}

func TestResolveMissingModuleErrors(t *testing.T) {
	dir := t.TempDir()
	root := "module Main exposing (..)\n\nimport DoesNotExist\n\nmain args = \"hi\"\n"
	r := NewResolver([]string{dir})
	if _, _, err := r.ResolveRoot(root, filepath.Join(dir, "Main.em")); err == nil {
		t.Fatal("expected an error resolving a module with no backing file")
	}
}

func TestResolveCyclicImportsDoNotHang(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "A.em", "module A exposing (..)\n\nimport B\n\na = \"a\"\n")
	writeModule(t, dir, "B.em", "module B exposing (..)\n\nimport A\n\nb = \"b\"\n")

	root := "module Main exposing (..)\n\nimport A\n\nmain args = \"hi\"\n"
	r := NewResolver([]string{dir})
	if _, _, err := r.ResolveRoot(root, filepath.Join(dir, "Main.em")); err != nil {
		t.Fatalf("expected cyclic imports to resolve via the in-progress scope, got %v", err)
	}
}
