package eval

import (
	"testing"

	"github.com/erm-lang/erm/internal/ast"
)

func newTestEvaluator() (*Evaluator, *Env) {
	operators := map[string]string{
		"+":  "Basics.add",
		"-":  "Basics.sub",
		"++": "Basics.append",
		"::": "Basics.cons",
	}
	ev := New(operators)
	return ev, NewModuleEnv(ev.Builtins())
}

func TestEvalLiterals(t *testing.T) {
	ev, env := newTestEvaluator()

	cases := []struct {
		expr ast.Expr
		want string
	}{
		{&ast.IntLit{Value: 42}, "42"},
		{&ast.BoolLit{Value: true}, "True"},
		{&ast.StringLit{Value: "hi"}, "hi"},
	}
	for _, c := range cases {
		v, err := ev.Eval(c.expr, env)
		if err != nil {
			t.Fatalf("eval %v: %v", c.expr, err)
		}
		if v.String() != c.want {
			t.Errorf("eval %v = %s, want %s", c.expr, v.String(), c.want)
		}
	}
}

func TestEvalArithmeticBinOp(t *testing.T) {
	ev, env := newTestEvaluator()
	expr := &ast.BinOp{Op: "+", Left: &ast.IntLit{Value: 1}, Right: &ast.IntLit{Value: 3}}
	v, err := ev.Eval(expr, env)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.String() != "4" {
		t.Fatalf("expected 4, got %s", v.String())
	}
}

func TestEvalStringAppend(t *testing.T) {
	ev, env := newTestEvaluator()
	expr := &ast.BinOp{Op: "++", Left: &ast.StringLit{Value: "Hi"}, Right: &ast.StringLit{Value: "Bye"}}
	v, err := ev.Eval(expr, env)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.String() != "HiBye" {
		t.Fatalf("expected HiBye, got %s", v.String())
	}
}

func TestPartialApplication(t *testing.T) {
	ev, env := newTestEvaluator()

	// add x y = x + y
	addFn := &ast.Function{
		Name: "add",
		Args: []ast.Pattern{&ast.NamePattern{Name: "x"}, &ast.NamePattern{Name: "y"}},
		Expr: &ast.BinOp{Op: "+", Left: &ast.VarName{Name: ast.SimpleName("x")}, Right: &ast.VarName{Name: ast.SimpleName("y")}},
	}
	env.Define("add", addFn)

	addVal, err := ev.Eval(&ast.VarName{Name: ast.SimpleName("add")}, env)
	if err != nil {
		t.Fatalf("lookup add: %v", err)
	}

	partial, err := ev.Apply(addVal, []Value{&IntValue{2}})
	if err != nil {
		t.Fatalf("partial application failed: %v", err)
	}
	if _, ok := partial.(*PartiallyAppliedFunc); !ok {
		t.Fatalf("expected a partially applied function, got %T", partial)
	}

	result, err := ev.Apply(partial, []Value{&IntValue{3}})
	if err != nil {
		t.Fatalf("saturating application failed: %v", err)
	}
	if result.String() != "5" {
		t.Fatalf("expected 5, got %s", result.String())
	}
}

func TestApplyTooManyArgumentsErrors(t *testing.T) {
	ev, env := newTestEvaluator()
	addFn := &ast.Function{
		Name: "add",
		Args: []ast.Pattern{&ast.NamePattern{Name: "x"}, &ast.NamePattern{Name: "y"}},
		Expr: &ast.BinOp{Op: "+", Left: &ast.VarName{Name: ast.SimpleName("x")}, Right: &ast.VarName{Name: ast.SimpleName("y")}},
	}
	env.Define("add", addFn)
	addVal, _ := ev.Eval(&ast.VarName{Name: ast.SimpleName("add")}, env)

	if _, err := ev.Apply(addVal, []Value{&IntValue{1}, &IntValue{2}, &IntValue{3}}); err == nil {
		t.Fatal("expected an error applying three arguments to a two-argument function")
	}
}

func TestEvalCaseDispatchesFirstMatchingBranch(t *testing.T) {
	ev, env := newTestEvaluator()
	caseExpr := &ast.Case{
		Scrutinee: &ast.BoolLit{Value: false},
		Branches: []ast.CaseBranch{
			{Pattern: &ast.BoolPattern{Value: true}, Expr: &ast.StringLit{Value: "Hi"}},
			{Pattern: &ast.BoolPattern{Value: false}, Expr: &ast.StringLit{Value: "Bye"}},
		},
	}
	v, err := ev.Eval(caseExpr, env)
	if err != nil {
		t.Fatalf("eval case: %v", err)
	}
	if v.String() != "Bye" {
		t.Fatalf("expected Bye, got %s", v.String())
	}
}

func TestEvalLetShadowing(t *testing.T) {
	ev, env := newTestEvaluator()
	letExpr := &ast.Let{
		Bindings: []ast.LetBinding{{Name: "x", Expr: &ast.StringLit{Value: "outer"}}},
		Body: &ast.Let{
			Bindings: []ast.LetBinding{{Name: "x", Expr: &ast.StringLit{Value: "inner"}}},
			Body:     &ast.VarName{Name: ast.SimpleName("x")},
		},
	}
	v, err := ev.Eval(letExpr, env)
	if err != nil {
		t.Fatalf("eval let: %v", err)
	}
	if v.String() != "inner" {
		t.Fatalf("expected the inner binding to shadow the outer one, got %s", v.String())
	}
}

func TestEvalListLiteralEmpty(t *testing.T) {
	ev, env := newTestEvaluator()
	v, err := ev.Eval(&ast.ListLit{}, env)
	if err != nil {
		t.Fatalf("eval empty list: %v", err)
	}
	list, ok := v.(*ListValue)
	if !ok || len(list.Elements) != 0 {
		t.Fatalf("expected an empty ListValue, got %v", v)
	}
}

func TestDivideByZero(t *testing.T) {
	_, err := basicsDiv([]Value{&IntValue{1}, &IntValue{0}})
	if err == nil {
		t.Fatal("expected a divide-by-zero error")
	}
}
