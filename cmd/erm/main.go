// Command erm is the interpreter's CLI: run a program, start the REPL, or
// type-check/dump a file without running it.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/erm-lang/erm/internal/ast"
	"github.com/erm-lang/erm/internal/lexer"
	"github.com/erm-lang/erm/internal/parser"
	"github.com/erm-lang/erm/internal/project"
	"github.com/erm-lang/erm/internal/repl"
	"github.com/erm-lang/erm/internal/runtime"
)

var (
	// Version info, set by ldflags during build.
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"

	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	var (
		versionFlag = flag.Bool("version", false, "print version information")
		helpFlag    = flag.Bool("help", false, "show help")
	)

	flag.Parse()

	if *versionFlag {
		printVersion()
		return
	}

	if *helpFlag || flag.NArg() == 0 {
		printHelp()
		return
	}

	command := flag.Arg(0)
	switch command {
	case "run":
		if flag.NArg() < 2 {
			fmt.Fprintf(os.Stderr, "%s: missing file argument\n", red("Error"))
			fmt.Println("Usage: erm run <file.em> [args...]")
			os.Exit(1)
		}
		runFile(flag.Arg(1), flag.Args()[2:])

	case "repl":
		runREPL()

	case "check":
		if flag.NArg() < 2 {
			fmt.Fprintf(os.Stderr, "%s: missing file argument\n", red("Error"))
			fmt.Println("Usage: erm check <file.em>")
			os.Exit(1)
		}
		checkFile(flag.Arg(1))

	case "ast":
		if flag.NArg() < 2 {
			fmt.Fprintf(os.Stderr, "%s: missing file argument\n", red("Error"))
			fmt.Println("Usage: erm ast <file.em>")
			os.Exit(1)
		}
		dumpAST(flag.Arg(1))

	default:
		// No subcommand matched a known name: treat the first argument as a
		// file to run, the way a shebang line (`#!/usr/bin/env erm`) invokes it.
		runFile(command, flag.Args()[1:])
	}
}

func printVersion() {
	fmt.Printf("erm %s\n", bold(Version))
	if Commit != "unknown" {
		fmt.Printf("Commit: %s\n", Commit)
	}
	if BuildTime != "unknown" {
		fmt.Printf("Built:  %s\n", BuildTime)
	}
}

func printHelp() {
	fmt.Println(bold("erm - a small indentation-sensitive functional language"))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  erm <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Printf("  %s <file> [args]   run a program, passing args to main\n", cyan("run"))
	fmt.Printf("  %s               start the interactive REPL\n", cyan("repl"))
	fmt.Printf("  %s <file>        type-check a file without running it\n", cyan("check"))
	fmt.Printf("  %s <file>          print a file's parsed syntax tree\n", cyan("ast"))
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --version   print version information")
	fmt.Println("  --help      show this help message")
	fmt.Println()
	fmt.Println("A bare file path (or '-' for stdin) is also accepted in place of a command:")
	fmt.Printf("  %s\n", cyan("erm hello.em arg1 arg2"))
}

// readSource reads path, or stdin when path is "-", stripping a leading
// shebang line so `#!/usr/bin/env erm` scripts run unmodified.
func readSource(path string) (string, error) {
	var content []byte
	var err error
	if path == "-" {
		content, err = io.ReadAll(os.Stdin)
	} else {
		content, err = os.ReadFile(path)
	}
	if err != nil {
		return "", err
	}
	content = lexer.Normalize(content)
	text := string(content)
	if strings.HasPrefix(text, "#!") {
		if idx := strings.IndexByte(text, '\n'); idx >= 0 {
			text = text[idx+1:]
		} else {
			text = ""
		}
	}
	return text, nil
}

func sourceDirs(path string) []string {
	dir := filepath.Dir(path)
	if dir == "" {
		dir = "."
	}
	settings, err := project.Load(dir)
	if err != nil {
		return []string{dir}
	}
	return settings.SourceDirectories
}

func runFile(path string, args []string) {
	source, err := readSource(path)
	if err != nil {
		fmt.Fprintf(os.Stdout, "%s: cannot read file '%s': %v\n", red("Error"), path, err)
		os.Exit(1)
	}

	program, err := runtime.Load(source, path, sourceDirs(path))
	if err != nil {
		fmt.Fprintf(os.Stdout, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}

	if err := program.Check(); err != nil {
		fmt.Fprintf(os.Stdout, "%s: %v\n", red("Type error"), err)
		os.Exit(1)
	}

	result, err := program.Run(args)
	if err != nil {
		fmt.Fprintf(os.Stdout, "%s: %v\n", red("Runtime error"), err)
		os.Exit(1)
	}

	fmt.Println(result.String())
}

func checkFile(path string) {
	source, err := readSource(path)
	if err != nil {
		fmt.Fprintf(os.Stdout, "%s: cannot read file '%s': %v\n", red("Error"), path, err)
		os.Exit(1)
	}

	program, err := runtime.Load(source, path, sourceDirs(path))
	if err != nil {
		fmt.Fprintf(os.Stdout, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}

	if err := program.Check(); err != nil {
		fmt.Fprintf(os.Stdout, "%s: %v\n", red("Type error"), err)
		os.Exit(1)
	}

	fmt.Printf("%s %s type-checks\n", green("✓"), path)
}

func dumpAST(path string) {
	source, err := readSource(path)
	if err != nil {
		fmt.Fprintf(os.Stdout, "%s: cannot read file '%s': %v\n", red("Error"), path, err)
		os.Exit(1)
	}

	p := parser.New(source, path)
	mod, err := p.Parse()
	if err != nil {
		fmt.Fprintf(os.Stdout, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}

	dump, err := ast.Print(mod)
	if err != nil {
		fmt.Fprintf(os.Stdout, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}
	fmt.Println(dump)
}

func runREPL() {
	fmt.Printf("%s v%s\n", bold("erm"), Version)
	fmt.Println("Type :help for help, :quit to exit")
	fmt.Println()

	r := repl.New()
	r.Start(bufio.NewReader(os.Stdin), os.Stdout)
}
