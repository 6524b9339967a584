package types

import "github.com/erm-lang/erm/internal/errors"

// Substitution is a finite map from type variable name to term. The
// original implementation used a persistent (im::HashMap) map so sibling
// unification branches could share structure; the standard library has no
// equivalent in this dependency set, so Extend copies the map on write,
// which keeps the same non-mutation contract at the cost of O(n) extension
// rather than O(log n) — acceptable at the program sizes this interpreter
// targets.
type Substitution map[string]Term

// Extend returns a new Substitution with name bound to term, leaving s
// unmodified.
func (s Substitution) Extend(name string, term Term) Substitution {
	next := make(Substitution, len(s)+1)
	for k, v := range s {
		next[k] = v
	}
	next[name] = term
	return next
}

// UnifyError reports two terms that cannot be made equal under any
// substitution.
type UnifyError struct {
	X, Y Term
}

func (e *UnifyError) Error() string {
	return errors.Report(errors.New(errors.ChkUnify, "", 0, 0,
		"failed to unify "+e.X.String()+" with "+e.Y.String()))
}

// Unify implements first-order (Robinson) unification. It intentionally has
// no occurs check, matching the source interpreter this checker is modelled
// on.
func Unify(x, y Term, subs Substitution) (Substitution, error) {
	if Equal(x, y) {
		return subs, nil
	}

	if v, ok := x.(*Var); ok {
		return unifyVariable(v.Name, x, y, subs)
	}
	if v, ok := y.(*Var); ok {
		return unifyVariable(v.Name, y, x, subs)
	}

	switch xv := x.(type) {
	case *Function:
		yv, ok := y.(*Function)
		if !ok {
			return nil, &UnifyError{x, y}
		}
		subs, err := Unify(xv.From, yv.From, subs)
		if err != nil {
			return nil, err
		}
		return Unify(xv.To, yv.To, subs)
	case *TypeApp:
		yv, ok := y.(*TypeApp)
		if !ok || xv.Name != yv.Name || len(xv.Args) != len(yv.Args) {
			return nil, &UnifyError{x, y}
		}
		for i := range xv.Args {
			var err error
			subs, err = Unify(xv.Args[i], yv.Args[i], subs)
			if err != nil {
				return nil, err
			}
		}
		return subs, nil
	default:
		return nil, &UnifyError{x, y}
	}
}

// Resolve walks t, replacing any type variable bound in s (following chains
// of variable-to-variable bindings) with what it's ultimately bound to, and
// rebuilding Function/TypeApp nodes so every variable reachable from t
// reflects what unification has learned about it so far.
func (s Substitution) Resolve(t Term) Term {
	switch v := t.(type) {
	case *Var:
		if bound, ok := s[v.Name]; ok {
			return s.Resolve(bound)
		}
		return t
	case *Function:
		return &Function{From: s.Resolve(v.From), To: s.Resolve(v.To)}
	case *TypeApp:
		args := make([]Term, len(v.Args))
		for i, a := range v.Args {
			args[i] = s.Resolve(a)
		}
		return &TypeApp{Name: v.Name, Args: args}
	default:
		return t
	}
}

func unifyVariable(name string, v, x Term, subs Substitution) (Substitution, error) {
	if term, ok := subs[name]; ok {
		return Unify(term, x, subs)
	}
	if xv, ok := x.(*Var); ok {
		if term, ok := subs[xv.Name]; ok {
			return Unify(v, term, subs)
		}
	}
	return subs.Extend(name, x), nil
}
