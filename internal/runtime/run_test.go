package runtime

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func loadAndRun(t *testing.T, source string, args []string) string {
	t.Helper()
	return loadAndRunIn(t, source, nil, args)
}

func loadAndRunIn(t *testing.T, source string, sourceDirs []string, args []string) string {
	t.Helper()
	program, err := Load(source, "<test>", sourceDirs)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := program.Check(); err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	result, err := program.Run(args)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return result.String()
}

// TestScenarioHelloWorld is spec scenario 1.
func TestScenarioHelloWorld(t *testing.T) {
	source := "module Main exposing (..)\n\nmain args = \"hello, world\"\n"
	if got := loadAndRun(t, source, nil); got != "hello, world" {
		t.Fatalf("got %q, want %q", got, "hello, world")
	}
}

// TestScenarioStringFromIntAddition is spec scenario 2.
func TestScenarioStringFromIntAddition(t *testing.T) {
	source := "module Main exposing (..)\n\nmain args = String.fromInt (1 + 3)\n"
	if got := loadAndRun(t, source, nil); got != "4" {
		t.Fatalf("got %q, want %q", got, "4")
	}
}

// TestScenarioOperatorPrecedence is spec scenario 3: * binds tighter than +/-.
func TestScenarioOperatorPrecedence(t *testing.T) {
	source := "module Main exposing (..)\n\nmain args = String.fromInt (10 - 11 * 12 + 13)\n"
	if got := loadAndRun(t, source, nil); got != "-109" {
		t.Fatalf("got %q, want %q", got, "-109")
	}
}

// TestScenarioArgsPassedToMain is spec scenario 4.
func TestScenarioArgsPassedToMain(t *testing.T) {
	source := "module Main exposing (..)\n\nmain args = String.join \"\" args\n"
	if got := loadAndRun(t, source, []string{"Hello", " world"}); got != "Hello world" {
		t.Fatalf("got %q, want %q", got, "Hello world")
	}
}

// TestScenarioPartialApplication is spec scenario 5.
func TestScenarioPartialApplication(t *testing.T) {
	source := "module Main exposing (..)\n\n" +
		"add x y = x + y\n" +
		"main args = String.fromInt ((add 2) 3)\n"
	if got := loadAndRun(t, source, nil); got != "5" {
		t.Fatalf("got %q, want %q", got, "5")
	}
}

// TestScenarioCaseAndAppend is spec scenario 6.
func TestScenarioCaseAndAppend(t *testing.T) {
	source := "module Main exposing (..)\n\n" +
		"toText arg =\n" +
		"  case arg of\n" +
		"    True -> \"Hi\"\n" +
		"    False -> \"Bye\"\n" +
		"main args = (toText True) ++ (toText False)\n"
	if got := loadAndRun(t, source, nil); got != "HiBye" {
		t.Fatalf("got %q, want %q", got, "HiBye")
	}
}

// TestScenarioMixedListTypeError is spec scenario 7: checking must fail.
func TestScenarioMixedListTypeError(t *testing.T) {
	source := "module Main exposing (..)\n\nmain args = String.join \",\" [\"Hello\", 1]\n"
	program, err := Load(source, "<test>", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := program.Check(); err == nil {
		t.Fatal("expected a type error unifying String and Integer list elements")
	}
}

// TestBoundaryEmptyArgs checks an empty argument list is a valid List String.
func TestBoundaryEmptyArgs(t *testing.T) {
	source := "module Main exposing (..)\n\nmain args = String.join \",\" args\n"
	if got := loadAndRun(t, source, nil); got != "" {
		t.Fatalf("got %q, want empty string", got)
	}
}

// TestBoundaryPreludeReferenceWithoutExplicitImport exercises a qualified
// prelude call with no user `import` statement at all.
func TestBoundaryPreludeReferenceWithoutExplicitImport(t *testing.T) {
	source := "module Main exposing (..)\n\nmain args = String.append \"a\" \"b\"\n"
	if got := loadAndRun(t, source, nil); got != "ab" {
		t.Fatalf("got %q, want %q", got, "ab")
	}
}

// TestExposedFunctionCanCallPrivateSibling is a multi-file regression test:
// an imported module's exposed function must be able to resolve a helper its
// own module never exposes, not just the names the importer happens to see.
func TestExposedFunctionCanCallPrivateSibling(t *testing.T) {
	dir := t.TempDir()
	helperSource := "module Helper exposing (greet)\n\n" +
		"shout name = name ++ \"!\"\n" +
		"greet name = \"Hello, \" ++ (shout name)\n"
	if err := os.WriteFile(filepath.Join(dir, "Helper.em"), []byte(helperSource), 0644); err != nil {
		t.Fatalf("write Helper.em: %v", err)
	}

	rootSource := "module Main exposing (..)\n\n" +
		"import Helper\n\n" +
		"main args = Helper.greet \"world\"\n"

	got := loadAndRunIn(t, rootSource, []string{dir}, nil)
	if got != "Hello, world!" {
		t.Fatalf("got %q, want %q", got, "Hello, world!")
	}
}

func TestRuntimeErrorsAreReported(t *testing.T) {
	source := "module Main exposing (..)\n\nmain args = String.fromInt (1 / 0)\n"
	program, err := Load(source, "<test>", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := program.Check(); err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if _, err := program.Run(nil); err == nil {
		t.Fatal("expected division by zero to surface as a runtime error")
	} else if !strings.Contains(err.Error(), "EVL005") {
		t.Fatalf("expected a divide-by-zero (EVL005) error, got %v", err)
	}
}
