// Package eval reduces a checked module's expressions to values under an
// environment: curried partial application, pattern matching, and the
// built-in primitives spec'd for arithmetic, comparison, and strings/lists.
package eval

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/erm-lang/erm/internal/ast"
)

// Value is a runtime value.
type Value interface {
	Type() string
	String() string
}

// IntValue is a signed integer.
type IntValue struct{ Value int32 }

func (v *IntValue) Type() string   { return "Int" }
func (v *IntValue) String() string { return strconv.Itoa(int(v.Value)) }

// FloatValue is a floating point number.
type FloatValue struct{ Value float32 }

func (v *FloatValue) Type() string   { return "Float" }
func (v *FloatValue) String() string { return fmt.Sprintf("%g", v.Value) }

// StringValue is a string.
type StringValue struct{ Value string }

func (v *StringValue) Type() string   { return "String" }
func (v *StringValue) String() string { return v.Value }

// BoolValue is a boolean.
type BoolValue struct{ Value bool }

func (v *BoolValue) Type() string { return "Bool" }
func (v *BoolValue) String() string {
	if v.Value {
		return "True"
	}
	return "False"
}

// ListValue is an ordered sequence of values.
type ListValue struct{ Elements []Value }

func (v *ListValue) Type() string { return "List" }
func (v *ListValue) String() string {
	parts := make([]string, len(v.Elements))
	for i, e := range v.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// FuncDescriptor is what a PartiallyAppliedFunc wraps: either a user
// function closing over its defining environment, or a built-in.
type FuncDescriptor struct {
	Arity   int
	Name    string
	Params  []ast.Pattern
	Body    ast.Expr
	Closure *Env
	Builtin func(args []Value) (Value, error)
}

// PartiallyAppliedFunc carries a descriptor plus however many argument
// values have been supplied so far; full saturation evaluates the body (or
// calls the builtin).
type PartiallyAppliedFunc struct {
	Func   *FuncDescriptor
	Values []Value
}

func (p *PartiallyAppliedFunc) Type() string { return "Function" }
func (p *PartiallyAppliedFunc) String() string {
	return fmt.Sprintf("<function:%s/%d>", p.Func.Name, p.Func.Arity)
}
