package eval

import (
	"strconv"
	"strings"

	"github.com/erm-lang/erm/internal/errors"
)

func wrongArity(name string) error {
	return evalError(errors.EvlTypeMismatch, name+": wrong arity")
}

func wrongArgType(name string) error {
	return evalError(errors.EvlTypeMismatch, name+": wrong argument type")
}

// Builtins returns the evaluator-side implementations of spec.md §4.6's
// required primitives, keyed the same as the checker's term table in
// internal/types.Builtins so both layers agree on arity and name. The pipe
// operators are included for parser/precedence completeness even though
// they aren't in the required primitive table; they close over ev so they
// can apply their function argument through the normal call path.
func (ev *Evaluator) Builtins() map[string]*FuncDescriptor {
	return map[string]*FuncDescriptor{
		"Basics.add": arith("Basics.add", func(a, b int32) int32 { return a + b }, func(a, b float32) float32 { return a + b }),
		"Basics.sub": arith("Basics.sub", func(a, b int32) int32 { return a - b }, func(a, b float32) float32 { return a - b }),
		"Basics.mul": arith("Basics.mul", func(a, b int32) int32 { return a * b }, func(a, b float32) float32 { return a * b }),
		"Basics.div": {Arity: 2, Name: "Basics.div", Builtin: basicsDiv},

		"Basics.gt": compareOp("Basics.gt", func(c int) bool { return c > 0 }),
		"Basics.lt": compareOp("Basics.lt", func(c int) bool { return c < 0 }),
		"Basics.ge": compareOp("Basics.ge", func(c int) bool { return c >= 0 }),
		"Basics.le": compareOp("Basics.le", func(c int) bool { return c <= 0 }),
		"Basics.eq": compareOp("Basics.eq", func(c int) bool { return c == 0 }),
		"Basics.neq": compareOp("Basics.neq", func(c int) bool { return c != 0 }),

		"Basics.and": {Arity: 2, Name: "Basics.and", Builtin: basicsAnd},
		"Basics.or":  {Arity: 2, Name: "Basics.or", Builtin: basicsOr},

		"Basics.append": {Arity: 2, Name: "Basics.append", Builtin: basicsAppend},
		"Basics.cons":   {Arity: 2, Name: "Basics.cons", Builtin: basicsCons},

		"Basics.pipeRight": {Arity: 2, Name: "Basics.pipeRight", Builtin: func(args []Value) (Value, error) {
			return ev.applyFuncValue("Basics.pipeRight", args[1], []Value{args[0]})
		}},
		"Basics.pipeLeft": {Arity: 2, Name: "Basics.pipeLeft", Builtin: func(args []Value) (Value, error) {
			return ev.applyFuncValue("Basics.pipeLeft", args[0], []Value{args[1]})
		}},

		"String.fromInt":  {Arity: 1, Name: "String.fromInt", Builtin: stringFromInt},
		"String.fromBool": {Arity: 1, Name: "String.fromBool", Builtin: stringFromBool},
		"String.append":   {Arity: 2, Name: "String.append", Builtin: basicsAppend},
		"String.join":     {Arity: 2, Name: "String.join", Builtin: stringJoin},

		"List.sum": {Arity: 1, Name: "List.sum", Builtin: listSum},
	}
}

func arith(name string, onInt func(a, b int32) int32, onFloat func(a, b float32) float32) *FuncDescriptor {
	return &FuncDescriptor{Arity: 2, Name: name, Builtin: func(args []Value) (Value, error) {
		if len(args) != 2 {
			return nil, wrongArity(name)
		}
		switch a := args[0].(type) {
		case *IntValue:
			b, ok := args[1].(*IntValue)
			if !ok {
				return nil, wrongArgType(name)
			}
			return &IntValue{onInt(a.Value, b.Value)}, nil
		case *FloatValue:
			b, ok := args[1].(*FloatValue)
			if !ok {
				return nil, wrongArgType(name)
			}
			return &FloatValue{onFloat(a.Value, b.Value)}, nil
		default:
			return nil, wrongArgType(name)
		}
	}}
}

func basicsDiv(args []Value) (Value, error) {
	if len(args) != 2 {
		return nil, wrongArity("Basics.div")
	}
	switch a := args[0].(type) {
	case *IntValue:
		b, ok := args[1].(*IntValue)
		if !ok {
			return nil, wrongArgType("Basics.div")
		}
		if b.Value == 0 {
			return nil, evalError(errors.EvlDivideByZero, "division by zero")
		}
		return &IntValue{a.Value / b.Value}, nil
	case *FloatValue:
		b, ok := args[1].(*FloatValue)
		if !ok {
			return nil, wrongArgType("Basics.div")
		}
		return &FloatValue{a.Value / b.Value}, nil
	default:
		return nil, wrongArgType("Basics.div")
	}
}

// numericCompare returns -1/0/1 comparing two numeric values of the same
// kind, or an error if they aren't both Int or both Float.
func numericCompare(name string, a, b Value) (int, error) {
	switch av := a.(type) {
	case *IntValue:
		bv, ok := b.(*IntValue)
		if !ok {
			return 0, wrongArgType(name)
		}
		switch {
		case av.Value < bv.Value:
			return -1, nil
		case av.Value > bv.Value:
			return 1, nil
		default:
			return 0, nil
		}
	case *FloatValue:
		bv, ok := b.(*FloatValue)
		if !ok {
			return 0, wrongArgType(name)
		}
		switch {
		case av.Value < bv.Value:
			return -1, nil
		case av.Value > bv.Value:
			return 1, nil
		default:
			return 0, nil
		}
	default:
		return 0, wrongArgType(name)
	}
}

func compareOp(name string, test func(cmp int) bool) *FuncDescriptor {
	return &FuncDescriptor{Arity: 2, Name: name, Builtin: func(args []Value) (Value, error) {
		if len(args) != 2 {
			return nil, wrongArity(name)
		}
		c, err := numericCompare(name, args[0], args[1])
		if err != nil {
			return nil, err
		}
		return &BoolValue{test(c)}, nil
	}}
}

func basicsAnd(args []Value) (Value, error) {
	a, ok1 := args[0].(*BoolValue)
	b, ok2 := args[1].(*BoolValue)
	if !ok1 || !ok2 {
		return nil, wrongArgType("Basics.and")
	}
	return &BoolValue{a.Value && b.Value}, nil
}

func basicsOr(args []Value) (Value, error) {
	a, ok1 := args[0].(*BoolValue)
	b, ok2 := args[1].(*BoolValue)
	if !ok1 || !ok2 {
		return nil, wrongArgType("Basics.or")
	}
	return &BoolValue{a.Value || b.Value}, nil
}

func basicsAppend(args []Value) (Value, error) {
	a, ok1 := args[0].(*StringValue)
	b, ok2 := args[1].(*StringValue)
	if !ok1 || !ok2 {
		return nil, wrongArgType("Basics.append")
	}
	return &StringValue{a.Value + b.Value}, nil
}

func basicsCons(args []Value) (Value, error) {
	rest, ok := args[1].(*ListValue)
	if !ok {
		return nil, wrongArgType("Basics.cons")
	}
	elements := make([]Value, 0, len(rest.Elements)+1)
	elements = append(elements, args[0])
	elements = append(elements, rest.Elements...)
	return &ListValue{elements}, nil
}

func stringFromInt(args []Value) (Value, error) {
	v, ok := args[0].(*IntValue)
	if !ok {
		return nil, wrongArgType("String.fromInt")
	}
	return &StringValue{strconv.Itoa(int(v.Value))}, nil
}

func stringFromBool(args []Value) (Value, error) {
	v, ok := args[0].(*BoolValue)
	if !ok {
		return nil, wrongArgType("String.fromBool")
	}
	return &StringValue{v.String()}, nil
}

func stringJoin(args []Value) (Value, error) {
	sep, ok := args[0].(*StringValue)
	if !ok {
		return nil, wrongArgType("String.join")
	}
	list, ok := args[1].(*ListValue)
	if !ok {
		return nil, wrongArgType("String.join")
	}
	parts := make([]string, len(list.Elements))
	for i, el := range list.Elements {
		s, ok := el.(*StringValue)
		if !ok {
			return nil, wrongArgType("String.join")
		}
		parts[i] = s.Value
	}
	return &StringValue{strings.Join(parts, sep.Value)}, nil
}

func listSum(args []Value) (Value, error) {
	list, ok := args[0].(*ListValue)
	if !ok {
		return nil, wrongArgType("List.sum")
	}
	var sum int32
	for _, el := range list.Elements {
		v, ok := el.(*IntValue)
		if !ok {
			return nil, wrongArgType("List.sum")
		}
		sum += v.Value
	}
	return &IntValue{sum}, nil
}
