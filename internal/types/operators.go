package types

import "github.com/erm-lang/erm/internal/ast"

// defaultOperatorFunctions mirrors the parser's default precedence table's
// backing-function names (the checker only needs the name, not precedence).
var defaultOperatorFunctions = map[string]string{
	"*":  "Basics.mul",
	"/":  "Basics.div",
	"+":  "Basics.add",
	"-":  "Basics.sub",
	"++": "Basics.append",
	"::": "Basics.cons",
	"==": "Basics.eq",
	"/=": "Basics.neq",
	"<":  "Basics.lt",
	">":  "Basics.gt",
	"<=": "Basics.le",
	">=": "Basics.ge",
	"&&": "Basics.and",
	"||": "Basics.or",
	"|>": "Basics.pipeRight",
	"<|": "Basics.pipeLeft",
}

// BuildOperatorTable merges the default operator-to-function map with any
// `infix`/`infixl`/`infixr` declarations present in the module.
func BuildOperatorTable(m *ast.Module) map[string]string {
	table := make(map[string]string, len(defaultOperatorFunctions))
	for op, fn := range defaultOperatorFunctions {
		table[op] = fn
	}
	for _, stmt := range m.Statements {
		if infix, ok := stmt.(*ast.Infix); ok {
			table[infix.Operator] = infix.FunctionName
		}
	}
	return table
}
