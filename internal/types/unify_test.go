package types

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestUnifyConstants(t *testing.T) {
	_, err := Unify(&Constant{Integer}, &Constant{Integer}, Substitution{})
	if err != nil {
		t.Fatalf("Integer/Integer should unify: %v", err)
	}

	_, err = Unify(&Constant{Integer}, &Constant{String}, Substitution{})
	if err == nil {
		t.Fatal("Integer/String should not unify")
	}
}

func TestUnifyVariableBinds(t *testing.T) {
	subs, err := Unify(&Var{Name: "a"}, &Constant{Integer}, Substitution{})
	if err != nil {
		t.Fatalf("var/constant should unify: %v", err)
	}
	if Display(subs["a"]) != "Integer" {
		t.Fatalf("expected a bound to Integer, got %s", Display(subs["a"]))
	}
}

func TestUnifyCommutative(t *testing.T) {
	// Unifying x with y should succeed exactly when y with x does, modulo
	// which variable ends up in the substitution.
	x := &Var{Name: "x"}
	y := &Constant{Bool}

	s1, err1 := Unify(x, y, Substitution{})
	s2, err2 := Unify(y, x, Substitution{})

	if (err1 == nil) != (err2 == nil) {
		t.Fatalf("unify should be symmetric in success/failure: %v vs %v", err1, err2)
	}
	if Display(s1["x"]) != Display(s2["x"]) {
		t.Fatalf("expected same resolved term, got %s vs %s", Display(s1["x"]), Display(s2["x"]))
	}
}

func TestUnifyFunctionArrows(t *testing.T) {
	f := &Function{From: &Constant{Integer}, To: &Constant{String}}
	g := &Function{From: &Var{Name: "a"}, To: &Var{Name: "b"}}

	subs, err := Unify(f, g, Substitution{})
	if err != nil {
		t.Fatalf("arrow unification failed: %v", err)
	}
	if Display(subs["a"]) != "Integer" || Display(subs["b"]) != "String" {
		t.Fatalf("expected a=Integer b=String, got a=%s b=%s", Display(subs["a"]), Display(subs["b"]))
	}
}

func TestUnifyListOf(t *testing.T) {
	_, err := Unify(ListOf(&Constant{Integer}), ListOf(&Constant{Integer}), Substitution{})
	if err != nil {
		t.Fatalf("List Integer should unify with itself: %v", err)
	}

	_, err = Unify(ListOf(&Constant{Integer}), ListOf(&Constant{String}), Substitution{})
	if err == nil {
		t.Fatal("List Integer should not unify with List String")
	}

	_, err = Unify(ListOf(&Constant{Integer}), &Constant{Integer}, Substitution{})
	if err == nil {
		t.Fatal("List Integer should not unify with a bare Integer")
	}
}

func TestExtendDoesNotMutateOriginal(t *testing.T) {
	base := Substitution{}
	extended := base.Extend("a", &Constant{Bool})
	if len(base) != 0 {
		t.Fatalf("Extend must not mutate the receiver, base has %d entries", len(base))
	}
	if len(extended) != 1 {
		t.Fatalf("expected one entry in the extended substitution, got %d", len(extended))
	}
}

func TestUnifyTypeAppArgsStructurally(t *testing.T) {
	left := &TypeApp{Name: "List", Args: []Term{&Var{Name: "a"}}}
	right := &TypeApp{Name: "List", Args: []Term{&Constant{Integer}}}

	subs, err := Unify(left, right, Substitution{})
	if err != nil {
		t.Fatalf("List a should unify with List Integer: %v", err)
	}

	want := &Constant{Integer}
	if diff := cmp.Diff(want, subs["a"]); diff != "" {
		t.Errorf("unexpected binding for a (-want +got):\n%s", diff)
	}
}

func TestDisplayRendersSourceSyntax(t *testing.T) {
	cases := []struct {
		term Term
		want string
	}{
		{&Constant{String}, "String"},
		{ListOf(&Constant{Integer}), "List Integer"},
		{&Function{From: &Constant{Bool}, To: &Constant{Bool}}, "Bool -> Bool"},
		{CurriedFunction([]Term{&Constant{Integer}, &Constant{Integer}}, &Constant{Integer}), "Integer -> Integer -> Integer"},
		{&Function{From: &Function{From: &Constant{Bool}, To: &Constant{Bool}}, To: &Constant{Bool}}, "(Bool -> Bool) -> Bool"},
	}
	for _, c := range cases {
		if got := Display(c.term); got != c.want {
			t.Errorf("Display(%v) = %q, want %q", c.term, got, c.want)
		}
	}
}
