package eval

import (
	"github.com/erm-lang/erm/internal/ast"
	"github.com/erm-lang/erm/internal/errors"
)

// Evaluator reduces expressions to values under a chain of environments. It
// carries the operator table resolved by the checker so BinOp dispatches to
// the same backing function names.
type Evaluator struct {
	operators map[string]string
}

// New builds an Evaluator using the given operator table (the merged
// default-plus-user-infix table built during parsing/checking).
func New(operators map[string]string) *Evaluator {
	return &Evaluator{operators: operators}
}

func evalError(code errors.Code, message string) error {
	return errors.New(code, "", 0, 0, message)
}

// Eval reduces expr to a Value under env.
func (ev *Evaluator) Eval(expr ast.Expr, env *Env) (Value, error) {
	switch e := expr.(type) {
	case *ast.BoolLit:
		return &BoolValue{e.Value}, nil
	case *ast.IntLit:
		return &IntValue{e.Value}, nil
	case *ast.FloatLit:
		return &FloatValue{e.Value}, nil
	case *ast.StringLit:
		return &StringValue{e.Value}, nil
	case *ast.ListLit:
		return ev.evalList(e, env)
	case *ast.VarName:
		return ev.evalVar(e, env)
	case *ast.Call:
		return ev.evalCall(e, env)
	case *ast.BinOp:
		return ev.evalBinOp(e, env)
	case *ast.If:
		return ev.evalIf(e, env)
	case *ast.Case:
		return ev.evalCase(e, env)
	case *ast.Let:
		return ev.evalLet(e, env)
	case *ast.Lambda:
		return ev.evalLambda(e, env)
	default:
		return nil, evalError(errors.EvlTypeMismatch, "unsupported expression")
	}
}

func (ev *Evaluator) evalList(e *ast.ListLit, env *Env) (Value, error) {
	vals := make([]Value, len(e.Elements))
	for i, el := range e.Elements {
		v, err := ev.Eval(el, env)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return &ListValue{Elements: vals}, nil
}

func (ev *Evaluator) evalVar(e *ast.VarName, env *Env) (Value, error) {
	name := e.Name.Leaf()
	if qualified := e.Name.String(); qualified != name {
		if b, ok := env.Lookup(qualified); ok {
			return ev.valueFromBinding(b)
		}
	}
	b, ok := env.Lookup(name)
	if !ok {
		return nil, evalError(errors.EvlUnboundVar, "unbound variable: "+e.Name.String())
	}
	return ev.valueFromBinding(b)
}

func (ev *Evaluator) valueFromBinding(b EnvBinding) (Value, error) {
	switch b.Kind {
	case BindValue:
		return b.Value, nil
	case BindExpr:
		return ev.Eval(b.Expr, b.DefiningEnv)
	case BindFunc:
		return &PartiallyAppliedFunc{Func: &FuncDescriptor{
			Arity:   len(b.Func.Args),
			Name:    b.Func.Name,
			Params:  b.Func.Args,
			Body:    b.Func.Expr,
			Closure: b.DefiningEnv,
		}}, nil
	case BindBuiltin:
		return &PartiallyAppliedFunc{Func: b.Builtin}, nil
	default:
		return nil, evalError(errors.EvlTypeMismatch, "unhandled binding kind")
	}
}

func (ev *Evaluator) evalCall(e *ast.Call, env *Env) (Value, error) {
	fnVal, err := ev.Eval(e.Function, env)
	if err != nil {
		return nil, err
	}
	paf, ok := fnVal.(*PartiallyAppliedFunc)
	if !ok {
		return nil, evalError(errors.EvlNotAFunction, "value is not a function")
	}
	argVals := make([]Value, len(e.Args))
	for i, a := range e.Args {
		v, err := ev.Eval(a, env)
		if err != nil {
			return nil, err
		}
		argVals[i] = v
	}
	return ev.apply(paf, argVals)
}

// Apply applies fnVal (expected to be a PartiallyAppliedFunc) to args; the
// CLI/REPL entry points use this to invoke `main` with its argument list.
func (ev *Evaluator) Apply(fnVal Value, args []Value) (Value, error) {
	return ev.applyFuncValue("apply", fnVal, args)
}

// apply implements the three-way arity comparison: under-application
// returns a new PartiallyAppliedFunc, exact application binds parameters
// into a scope on the function's defining environment and evaluates the
// body (or calls the builtin), and over-application fails.
func (ev *Evaluator) apply(paf *PartiallyAppliedFunc, args []Value) (Value, error) {
	total := len(paf.Values) + len(args)
	arity := paf.Func.Arity

	if total < arity {
		combined := make([]Value, 0, total)
		combined = append(combined, paf.Values...)
		combined = append(combined, args...)
		return &PartiallyAppliedFunc{Func: paf.Func, Values: combined}, nil
	}
	if total > arity {
		return nil, evalError(errors.EvlTypeMismatch, "too many arguments")
	}

	allArgs := make([]Value, 0, arity)
	allArgs = append(allArgs, paf.Values...)
	allArgs = append(allArgs, args...)

	if paf.Func.Builtin != nil {
		return paf.Func.Builtin(allArgs)
	}

	callEnv := paf.Func.Closure.Child()
	for i, param := range paf.Func.Params {
		v := allArgs[i]
		if name, ok := param.(*ast.NamePattern); ok {
			callEnv.Bind(name.Name, v)
		}
	}
	return ev.Eval(paf.Func.Body, callEnv)
}

// applyFuncValue applies a function Value (expected to be a
// PartiallyAppliedFunc) to args, used by the pipe builtins which receive
// their function argument as a plain Value rather than through evalCall.
func (ev *Evaluator) applyFuncValue(name string, fnVal Value, args []Value) (Value, error) {
	paf, ok := fnVal.(*PartiallyAppliedFunc)
	if !ok {
		return nil, evalError(errors.EvlNotAFunction, name+": argument is not a function")
	}
	return ev.apply(paf, args)
}

func (ev *Evaluator) evalBinOp(e *ast.BinOp, env *Env) (Value, error) {
	fnName, ok := ev.operators[e.Op]
	if !ok {
		return nil, evalError(errors.EvlTypeMismatch, "unknown operator: "+e.Op)
	}
	b, ok := env.Lookup(fnName)
	if !ok {
		return nil, evalError(errors.EvlUnboundVar, "unknown function: "+fnName)
	}
	fnVal, err := ev.valueFromBinding(b)
	if err != nil {
		return nil, err
	}
	paf, ok := fnVal.(*PartiallyAppliedFunc)
	if !ok {
		return nil, evalError(errors.EvlNotAFunction, "operator backing value is not a function")
	}
	left, err := ev.Eval(e.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := ev.Eval(e.Right, env)
	if err != nil {
		return nil, err
	}
	return ev.apply(paf, []Value{left, right})
}

func (ev *Evaluator) evalIf(e *ast.If, env *Env) (Value, error) {
	condVal, err := ev.Eval(e.Cond, env)
	if err != nil {
		return nil, err
	}
	cond, ok := condVal.(*BoolValue)
	if !ok {
		return nil, evalError(errors.EvlTypeMismatch, "if condition is not a Bool")
	}
	if cond.Value {
		return ev.Eval(e.Then, env)
	}
	return ev.Eval(e.Else, env)
}

func (ev *Evaluator) evalCase(e *ast.Case, env *Env) (Value, error) {
	scrutVal, err := ev.Eval(e.Scrutinee, env)
	if err != nil {
		return nil, err
	}
	for _, branch := range e.Branches {
		branchEnv, ok := matchPattern(branch.Pattern, scrutVal, env)
		if !ok {
			continue
		}
		return ev.Eval(branch.Expr, branchEnv)
	}
	return nil, evalError(errors.EvlNoMatchingArm, "no matching case")
}

// matchPattern reports whether pattern matches value and, if so, returns
// the environment extended with any bindings it introduces.
func matchPattern(pattern ast.Pattern, value Value, env *Env) (*Env, bool) {
	switch p := pattern.(type) {
	case *ast.NamePattern:
		child := env.Child()
		child.Bind(p.Name, value)
		return child, true
	case *ast.WildcardPattern:
		return env, true
	case *ast.BoolPattern:
		v, ok := value.(*BoolValue)
		return env, ok && v.Value == p.Value
	case *ast.IntPattern:
		v, ok := value.(*IntValue)
		return env, ok && v.Value == p.Value
	default:
		return env, false
	}
}

func (ev *Evaluator) evalLet(e *ast.Let, env *Env) (Value, error) {
	letEnv := env.Child()
	for _, b := range e.Bindings {
		if len(b.Args) == 0 {
			letEnv.Define(b.Name, &ast.Binding{Name: b.Name, Expr: b.Expr})
		} else {
			letEnv.Define(b.Name, &ast.Function{Name: b.Name, Args: b.Args, Expr: b.Expr})
		}
	}
	return ev.Eval(e.Body, letEnv)
}

func (ev *Evaluator) evalLambda(e *ast.Lambda, env *Env) (Value, error) {
	return &PartiallyAppliedFunc{Func: &FuncDescriptor{
		Arity:   len(e.Args),
		Name:    "<lambda>",
		Params:  e.Args,
		Body:    e.Body,
		Closure: env,
	}}, nil
}
