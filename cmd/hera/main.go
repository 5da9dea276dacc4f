// Command hera is the toolchain's CLI entry point: `hera [FLAGS] <path>`
// executes a program, `hera preprocess <path>` prints its expanded op
// list, `hera debug <path>` enters the interactive debugger, and
// `hera disassemble <path>` decodes a `.lcode` file. main.go is kept flat:
// a block of `flag.Bool`/`flag.String` declarations followed by a switch
// on the subcommand, rather than a CLI framework.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/haverford/hera/ast"
	"github.com/haverford/hera/check"
	"github.com/haverford/hera/config"
	"github.com/haverford/hera/debugger"
	"github.com/haverford/hera/diag"
	"github.com/haverford/hera/disassembler"
	"github.com/haverford/hera/encoder"
	"github.com/haverford/hera/parser"
	"github.com/haverford/hera/preprocess"
	"github.com/haverford/hera/tty"
	"github.com/haverford/hera/vm"
	"github.com/haverford/hera/xref"
)

const (
	exitOK       = 0
	exitCLIMisue = 1
	exitCompile  = 3
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "hera:", err)
		return exitCLIMisue
	}

	var (
		noColor     bool
		noDebugOps  bool
		noRetWarn   bool
		bigStack    bool
		quiet       bool
		verbose     bool
		showVersion bool
		showHelp    bool
		showCredits bool
		throttle    int
		initSpec    string
		printCode   bool
		printData   bool
		warnOctalOn bool
	)

	fs := flag.NewFlagSet("hera", flag.ContinueOnError)
	fs.BoolVar(&noColor, "no-color", false, "disable colored output")
	fs.BoolVar(&noDebugOps, "no-debug-ops", false, "disable debug-only pseudo-ops")
	fs.BoolVar(&noRetWarn, "no-ret-warn", false, "suppress the unbalanced-RETURN warning")
	fs.BoolVar(&bigStack, "big-stack", false, "raise the data segment's starting address")
	fs.BoolVar(&quiet, "quiet", false, "suppress warnings")
	fs.BoolVar(&quiet, "q", false, "suppress warnings (shorthand)")
	fs.BoolVar(&verbose, "verbose", false, "print final machine state")
	fs.BoolVar(&showVersion, "version", false, "print version and exit")
	fs.BoolVar(&showVersion, "v", false, "print version and exit (shorthand)")
	fs.BoolVar(&showHelp, "help", false, "print usage and exit")
	fs.BoolVar(&showHelp, "h", false, "print usage and exit (shorthand)")
	fs.BoolVar(&showCredits, "credits", false, "print credits and exit")
	fs.IntVar(&throttle, "throttle", cfg.Run.Throttle, "maximum real ops to execute (0 = unlimited)")
	fs.StringVar(&initSpec, "init", "", "initial register values, e.g. R1=5,R2=10")
	fs.BoolVar(&printCode, "code", false, "print the code segment instead of running")
	fs.BoolVar(&printData, "data", false, "print the data segment instead of running")
	fs.BoolVar(&warnOctalOn, "warn-octal-on", false, "warn on deprecated zero-prefix octal literals")
	fs.SetOutput(os.Stderr)

	if err := fs.Parse(args); err != nil {
		return exitCLIMisue
	}
	positional := fs.Args()

	if showVersion {
		fmt.Println("hera (HERA toolchain) dev")
		return exitOK
	}
	if showCredits {
		fmt.Println("HERA: Haverford Educational RISC Architecture toolchain")
		return exitOK
	}
	if showHelp || len(positional) == 0 {
		printHelp()
		return exitOK
	}
	if quiet && verbose {
		fmt.Fprintln(os.Stderr, "hera: --quiet and --verbose are mutually exclusive")
		return exitCLIMisue
	}

	color := tty.Colorizer{Enabled: cfg.Display.Color && !noColor && tty.IsTerminal(os.Stdout)}

	subcommand := positional[0]
	var path string
	switch subcommand {
	case "preprocess", "debug", "disassemble":
		if len(positional) < 2 {
			fmt.Fprintf(os.Stderr, "hera: %s requires a path\n", subcommand)
			return exitCLIMisue
		}
		path = positional[1]
	default:
		subcommand = "run"
		path = positional[0]
	}

	if subcommand == "disassemble" {
		return runDisassemble(path)
	}

	source, err := readSource(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, color.Errorf("hera: %v", err))
		return exitCLIMisue
	}

	searchRoot := cfg.HeraCDir()
	sink := diag.New()
	prog := parser.Parse(source, path, sink, parser.OSIncluder{SearchRoot: searchRoot})

	dataOrigin := check.DefaultDataOrigin
	if bigStack || cfg.Run.BigStack {
		dataOrigin = check.BigStackDataOrigin
	}
	check.Check(prog, sink, dataOrigin)

	if sink.HasErrors() {
		fmt.Fprint(os.Stderr, sink.Render())
		return exitCompile
	}

	ops := preprocess.Run(prog, sink)
	if sink.HasErrors() {
		fmt.Fprint(os.Stderr, sink.Render())
		return exitCompile
	}

	if !warnOctalOn && !cfg.Run.WarnOctalOn {
		dropOctalWarnings(sink)
	}
	if !quiet {
		fmt.Fprint(os.Stderr, sink.Render())
	}

	switch subcommand {
	case "preprocess":
		return runPreprocess(prog, ops)
	case "debug":
		return runDebug(prog, ops, dataOrigin, cfg)
	default:
		return runExecute(ops, dataOrigin, throttle, initSpec, printCode, printData, prog, verbose, noRetWarn || cfg.Run.NoRetWarn)
	}
}

func runPreprocess(prog *ast.Program, ops []*ast.Op) int {
	x := xref.Build(prog.Symbols)
	fmt.Print(disassembler.FormatProgram(ops, x.Func()))
	return exitOK
}

func runExecute(ops []*ast.Op, dataOrigin, throttle int, initSpec string, printCode, printData bool, prog *ast.Program, verbose, suppressRetWarn bool) int {
	if printCode || printData {
		words := make([]uint16, 0, len(ops))
		for _, op := range ops {
			w, err := encoder.Encode(op)
			if err != nil {
				fmt.Fprintln(os.Stderr, "hera:", err)
				return exitCompile
			}
			words = append(words, w)
		}
		if printCode {
			fmt.Print(encoder.WriteCode(words))
		}
		if printData {
			data := encoder.BuildDataWords(prog)
			fmt.Print(encoder.WriteData(data, dataOrigin))
		}
		return exitOK
	}

	machine := vm.New(dataOrigin)
	machine.Throttle = throttle
	machine.LoadData(encoder.BuildDataWords(prog), dataOrigin)
	if err := machine.ParseInit(initSpec); err != nil {
		fmt.Fprintln(os.Stderr, "hera:", err)
		return exitCLIMisue
	}

	machine.Run(ops)

	if verbose {
		printState(machine)
	}
	for _, w := range machine.Warnings {
		if suppressRetWarn && strings.Contains(w, "RETURN executed with no matching CALL") {
			continue
		}
		fmt.Fprintln(os.Stderr, "warning:", w)
	}
	return exitOK
}

func runDebug(prog *ast.Program, ops []*ast.Op, dataOrigin int, cfg *config.Config) int {
	machine := vm.New(dataOrigin)
	machine.LoadData(encoder.BuildDataWords(prog), dataOrigin)
	dbg := debugger.New(machine, prog, ops, cfg.Debugger.HistorySize)

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("(hera) ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			fmt.Print("(hera) ")
			continue
		}
		if !dispatchDebugCommand(dbg, line) {
			break
		}
		fmt.Print("(hera) ")
	}
	return exitOK
}

func dispatchDebugCommand(dbg *debugger.Debugger, line string) bool {
	fields := strings.Fields(line)
	cmd := fields[0]
	rest := strings.TrimSpace(strings.TrimPrefix(line, cmd))
	switch cmd {
	case "quit", "q":
		return false
	case "next", "n":
		if err := dbg.Next(); err != nil {
			fmt.Println(err)
		}
	case "step", "s":
		if err := dbg.Step(); err != nil {
			fmt.Println(err)
		}
	case "continue", "c":
		if err := dbg.Continue(); err != nil {
			fmt.Println(err)
		}
		if msg := dbg.LastStop(); msg != "" {
			fmt.Println(msg)
		}
	case "undo":
		if err := dbg.Undo(); err != nil {
			fmt.Println(err)
		}
	case "break", "b":
		addr, err := strconv.ParseInt(strings.TrimSpace(rest), 0, 32)
		if err != nil {
			fmt.Println("break: invalid address", rest)
			break
		}
		bp := dbg.SetBreakpoint(int(addr))
		fmt.Printf("breakpoint %d at 0x%04x\n", bp.ID, bp.Address)
	case "print", "p":
		spec, expr := debugger.ParseFormatSpec(rest)
		vals, err := dbg.Eval.EvalSequence(expr)
		if err != nil {
			fmt.Println(err)
			break
		}
		lookup := func(addr uint16) (string, bool) { return dbg.Xref.ReverseLookup(int(addr)) }
		parts := make([]string, len(vals))
		for i, v := range vals {
			parts[i] = debugger.Render(v, spec, lookup)
		}
		fmt.Println(strings.Join(parts, ", "))
	default:
		fmt.Println("unknown command:", cmd)
	}
	return true
}

func runDisassemble(path string) int {
	data, err := os.ReadFile(path) // #nosec G304 -- user-supplied path, CLI tool
	if err != nil {
		fmt.Fprintln(os.Stderr, "hera:", err)
		return exitCLIMisue
	}
	var words []uint16
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		n, err := strconv.ParseUint(line, 16, 16)
		if err != nil {
			fmt.Fprintln(os.Stderr, "hera: bad hex word", line)
			return exitCompile
		}
		words = append(words, uint16(n))
	}
	ops, err := disassembler.DecodeProgram(words)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hera:", err)
		return exitCompile
	}
	fmt.Print(disassembler.FormatProgram(ops, nil))
	return exitOK
}

func readSource(path string) (string, error) {
	if path == "-" {
		data, err := readAll(os.Stdin)
		return data, err
	}
	data, err := os.ReadFile(path) // #nosec G304 -- user-supplied path, CLI tool
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func readAll(f *os.File) (string, error) {
	var sb strings.Builder
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		sb.WriteString(scanner.Text())
		sb.WriteByte('\n')
	}
	return sb.String(), scanner.Err()
}

func printState(v *vm.VM) {
	for i := 0; i < vm.NumRegisters; i++ {
		fmt.Printf("R%-2d = 0x%04x  ", i, v.Registers[i])
		if i%4 == 3 {
			fmt.Println()
		}
	}
	fmt.Printf("\nflags: sign=%t zero=%t overflow=%t carry=%t carry-block=%t\n",
		v.Flags.Sign, v.Flags.Zero, v.Flags.Overflow, v.Flags.Carry, v.Flags.CarryBlock)
}

// dropOctalWarnings removes the lexer's deprecated-zero-prefix-octal
// warnings from sink unless --warn-octal-on (or its config counterpart) is
// set.
func dropOctalWarnings(sink *diag.Sink) {
	kept := sink.Warnings[:0]
	for _, w := range sink.Warnings {
		if strings.Contains(w.Text, "zero-prefixed octal") {
			continue
		}
		kept = append(kept, w)
	}
	sink.Warnings = kept
}

func printHelp() {
	fmt.Println(`hera [FLAGS] <path>          assemble and run a HERA program
hera preprocess <path>       print the expanded (real) op list
hera debug <path>            enter the interactive debugger
hera disassemble <path>      decode a .lcode file

path == "-" reads standard input.

Flags:
  --no-color --no-debug-ops --no-ret-warn --big-stack
  --quiet|-q --verbose --version|-v --help|-h --credits
  --throttle N --init R1=v,R2=v,... --code --data --warn-octal-on`)
}
