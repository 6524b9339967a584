// Package repl implements the interactive read-eval-print loop: each line is
// type-checked and evaluated against a single, growing environment shared
// across the whole session.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/erm-lang/erm/internal/ast"
	"github.com/erm-lang/erm/internal/eval"
	"github.com/erm-lang/erm/internal/parser"
	"github.com/erm-lang/erm/internal/types"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

// REPL holds the state that persists across lines: the accumulated checker
// and evaluator environments, the operator table, and line history.
type REPL struct {
	evaluator *eval.Evaluator
	operators map[string]string

	typeEnv   types.Env
	replScope types.Scope
	evalEnv   *eval.Env

	history []string
	counter int
}

// New builds a REPL whose environment starts with just the built-in table —
// the same Basics/String/List names every program sees qualified, without
// needing to resolve any import.
func New() *REPL {
	empty := &ast.Module{}
	operators := types.BuildOperatorTable(empty)

	r := &REPL{
		evaluator: eval.New(operators),
		operators: operators,
		replScope: types.Scope{},
	}
	r.typeEnv = types.NewEnv(empty, types.Builtins()).Push(r.replScope)
	r.evalEnv = eval.NewModuleEnv(r.evaluator.Builtins())
	return r
}

// Start runs the read-eval-print loop against the real terminal via liner,
// which reads the process's own stdin and writes the prompt to its stdout;
// in is not read, and out receives every other message the loop prints.
func (r *REPL) Start(in io.Reader, out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(true)

	historyFile := filepath.Join(os.TempDir(), ".erm_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	line.SetCompleter(func(input string) (c []string) {
		if !strings.HasPrefix(input, ":") {
			return nil
		}
		for _, cmd := range []string{":help", ":quit", ":type", ":clear", ":history"} {
			if strings.HasPrefix(cmd, input) {
				c = append(c, cmd)
			}
		}
		return c
	})

	for {
		input, err := line.Prompt("erm> ")
		if err == io.EOF {
			fmt.Fprintln(out, green("\nGoodbye!"))
			break
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
			continue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		line.AppendHistory(input)
		r.history = append(r.history, input)

		if strings.HasPrefix(input, ":") {
			if input == ":quit" || input == ":q" {
				fmt.Fprintln(out, green("Goodbye!"))
				break
			}
			r.handleCommand(input, out)
			continue
		}

		r.processLine(input, out)
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

func (r *REPL) handleCommand(input string, out io.Writer) {
	parts := strings.Fields(input)
	switch parts[0] {
	case ":help", ":h":
		fmt.Fprintln(out, "Commands:")
		fmt.Fprintln(out, "  :help, :h        show this help")
		fmt.Fprintln(out, "  :quit, :q        exit the REPL")
		fmt.Fprintln(out, "  :type <expr>     show an expression's inferred type")
		fmt.Fprintln(out, "  :history         show input history")
		fmt.Fprintln(out, "  :clear           clear the screen")
	case ":type":
		if len(parts) < 2 {
			fmt.Fprintln(out, "Usage: :type <expression>")
			return
		}
		expr := strings.Join(parts[1:], " ")
		r.printType(expr, out)
	case ":history":
		for i, h := range r.history {
			fmt.Fprintf(out, "  %3d  %s\n", i+1, h)
		}
	case ":clear":
		fmt.Fprint(out, "\033[H\033[2J")
	default:
		fmt.Fprintf(out, "Unknown command: %s\n", parts[0])
		fmt.Fprintln(out, "Type :help for help")
	}
}

// processLine tries input first as a top-level definition (`name = expr` or
// `name args = expr`); if that fails to parse it tries again wrapping input
// as the body of a synthetic binding, so a bare expression can be evaluated
// without naming it.
func (r *REPL) processLine(input string, out io.Writer) {
	if mod, err := r.parseAsModule(input); err == nil && len(mod.Statements) > 0 {
		r.defineAll(mod, out)
		return
	}

	name := fmt.Sprintf("_repl%d", r.counter)
	r.counter++
	wrapped := name + " = (" + input + ")"
	mod, err := r.parseAsModule(wrapped)
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("Parse error"), err)
		return
	}
	r.defineAll(mod, out)
	r.printBinding(name, out)
}

func (r *REPL) parseAsModule(body string) (*ast.Module, error) {
	source := "module Repl exposing (..)\n\n" + body + "\n"
	p := parser.New(source, "<repl>")
	return p.Parse()
}

func (r *REPL) defineAll(mod *ast.Module, out io.Writer) {
	for _, stmt := range mod.Statements {
		switch s := stmt.(type) {
		case *ast.Binding:
			r.replScope[s.Name] = types.Binding{Kind: types.BindUserExpr, Expr: s.Expr}
			r.evalEnv.Define(s.Name, s)
			if !strings.HasPrefix(s.Name, "_repl") {
				r.printBinding(s.Name, out)
			}
		case *ast.Function:
			r.replScope[s.Name] = types.Binding{Kind: types.BindUserFunc, Func: s}
			r.evalEnv.Define(s.Name, s)
			fmt.Fprintf(out, "%s %s\n", cyan(s.Name), dim("defined"))
		case *ast.Infix:
			// r.operators is the same map the evaluator and checker already
			// hold a reference to, so mutating it in place is enough.
			r.operators[s.Operator] = s.FunctionName
		}
	}
}

// printBinding type-checks and evaluates the named value binding, then
// prints its inferred type and resulting value.
func (r *REPL) printBinding(name string, out io.Writer) {
	b, ok := r.replScope[name]
	if !ok {
		return
	}

	term, err := types.CheckExpr(r.typeEnv, r.operators, b.Expr)
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("Type error"), err)
		return
	}

	val, err := r.evaluator.Eval(b.Expr, r.evalEnv)
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("Runtime error"), err)
		return
	}

	fmt.Fprintf(out, "%s : %s = %s\n", cyan(name), yellow(types.Display(term)), green(val.String()))
}

func (r *REPL) printType(input string, out io.Writer) {
	source := "module Repl exposing (..)\n\n_replType = (" + input + ")\n"
	p := parser.New(source, "<repl>")
	mod, err := p.Parse()
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("Parse error"), err)
		return
	}
	binding, ok := mod.Statements[len(mod.Statements)-1].(*ast.Binding)
	if !ok {
		fmt.Fprintln(out, red("Error")+": expected an expression")
		return
	}
	term, err := types.CheckExpr(r.typeEnv, r.operators, binding.Expr)
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("Type error"), err)
		return
	}
	fmt.Fprintf(out, "%s : %s\n", input, yellow(types.Display(term)))
}
