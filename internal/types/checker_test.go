package types

import (
	"strings"
	"testing"

	"github.com/erm-lang/erm/internal/parser"
)

func checkSource(t *testing.T, source string) error {
	t.Helper()
	p := parser.New(source, "test.em")
	mod, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return Check(mod, Builtins())
}

func TestCheckAcceptsHelloWorld(t *testing.T) {
	source := "module Main exposing (..)\n\nmain args = \"hello, world\"\n"
	if err := checkSource(t, source); err != nil {
		t.Fatalf("expected hello world to check, got %v", err)
	}
}

func TestCheckAcceptsArithmeticThroughStringFromInt(t *testing.T) {
	source := "module Main exposing (..)\n\nmain args = String.fromInt (1 + 3)\n"
	if err := checkSource(t, source); err != nil {
		t.Fatalf("expected arithmetic program to check, got %v", err)
	}
}

func TestCheckAcceptsPartialApplication(t *testing.T) {
	source := "module Main exposing (..)\n\n" +
		"add x y = x + y\n" +
		"main args = String.fromInt ((add 2) 3)\n"
	if err := checkSource(t, source); err != nil {
		t.Fatalf("expected partial application to check, got %v", err)
	}
}

func TestCheckAcceptsCaseExpression(t *testing.T) {
	source := "module Main exposing (..)\n\n" +
		"toText arg =\n" +
		"  case arg of\n" +
		"    True -> \"Hi\"\n" +
		"    False -> \"Bye\"\n" +
		"main args = (toText True) ++ (toText False)\n"
	if err := checkSource(t, source); err != nil {
		t.Fatalf("expected case expression to check, got %v", err)
	}
}

func TestCheckRejectsMixedListElementTypes(t *testing.T) {
	source := "module Main exposing (..)\n\nmain args = String.join \",\" [\"Hello\", 1]\n"
	err := checkSource(t, source)
	if err == nil {
		t.Fatal("expected a unify error mixing String and Integer list elements")
	}
	if !strings.Contains(err.Error(), "CHK001") {
		t.Fatalf("expected a unify (CHK001) error, got %v", err)
	}
}

func TestCheckRejectsWrongMainSignature(t *testing.T) {
	source := "module Main exposing (..)\n\nmain args = 1\n"
	if err := checkSource(t, source); err == nil {
		t.Fatal("expected main : Int to fail against the required List String -> String signature")
	}
}

func TestCheckAcceptsEmptyListLiteral(t *testing.T) {
	source := "module Main exposing (..)\n\nmain args = String.join \"\" []\n"
	if err := checkSource(t, source); err != nil {
		t.Fatalf("expected an empty list literal to check, got %v", err)
	}
}

func TestCheckAcceptsNestedIf(t *testing.T) {
	source := "module Main exposing (..)\n\n" +
		"main args =\n" +
		"  if True then\n" +
		"    if False then \"a\" else \"b\"\n" +
		"  else\n" +
		"    \"c\"\n"
	if err := checkSource(t, source); err != nil {
		t.Fatalf("expected nested if to check, got %v", err)
	}
}

func TestCheckRejectsInconsistentIfBranchArguments(t *testing.T) {
	source := "module Main exposing (..)\n\n" +
		"same x y =\n" +
		"  if True then x else y\n" +
		"main args = String.fromInt (same 1 \"str\")\n"
	err := checkSource(t, source)
	if err == nil {
		t.Fatal("expected same's if-branches to force x and y to share one type, rejecting 1 and \"str\"")
	}
	if !strings.Contains(err.Error(), "CHK001") {
		t.Fatalf("expected a unify (CHK001) error, got %v", err)
	}
}

func TestCheckAcceptsShadowingAcrossLet(t *testing.T) {
	source := "module Main exposing (..)\n\n" +
		"main args =\n" +
		"  let\n" +
		"    x = \"outer\"\n" +
		"  in\n" +
		"    let\n" +
		"      x = \"inner\"\n" +
		"    in\n" +
		"      x\n"
	if err := checkSource(t, source); err != nil {
		t.Fatalf("expected shadowed let bindings to check, got %v", err)
	}
}
