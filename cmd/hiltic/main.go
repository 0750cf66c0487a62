// Command hiltic is hiltigo's compiler driver CLI: it parses HILTI/Spicy
// source files, runs them through the fixed-point pipeline, and either
// reports diagnostics or hands the result to the JIT (spec.md's External
// Interfaces section).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/hiltigo/hiltigo/internal/ast"
	"github.com/hiltigo/hiltigo/internal/astctx"
	"github.com/hiltigo/hiltigo/internal/config"
	"github.com/hiltigo/hiltigo/internal/diag"
	"github.com/hiltigo/hiltigo/internal/driver"
	"github.com/hiltigo/hiltigo/internal/grammar"
	"github.com/hiltigo/hiltigo/internal/jit"
	"github.com/hiltigo/hiltigo/internal/plugin"
)

var (
	// Version info - set by ldflags during build
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
		versionFlag = flag.Bool("version", false, "Print version information")
		helpFlag    = flag.Bool("help", false, "Show help")
		debugFlag   = flag.String("D", "", "Comma-separated debug streams to enable (resolver,grammar,codegen,jit)")
		configFlag  = flag.String("config", ".hiltic.yaml", "Path to project configuration file")
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

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: loading config: %v\n", red("Error"), err)
		os.Exit(1)
	}
	cfg = cfg.MergeEnv()
	if *debugFlag != "" {
		cfg.DebugStreams = append(cfg.DebugStreams, strings.Split(*debugFlag, ",")...)
	}

	command := flag.Arg(0)

	switch command {
	case "compile":
		if flag.NArg() < 2 {
			fmt.Fprintf(os.Stderr, "%s: missing file argument\n", red("Error"))
			fmt.Println("Usage: hiltic compile <file.hlt|file.spicy> [...]")
			os.Exit(1)
		}
		runCompile(flag.Args()[1:], cfg, true)

	case "check":
		if flag.NArg() < 2 {
			fmt.Fprintf(os.Stderr, "%s: missing file argument\n", red("Error"))
			fmt.Println("Usage: hiltic check <file.hlt|file.spicy> [...]")
			os.Exit(1)
		}
		runCompile(flag.Args()[1:], cfg, false)

	case "dump-ast":
		if flag.NArg() < 2 {
			fmt.Fprintf(os.Stderr, "%s: missing file argument\n", red("Error"))
			os.Exit(1)
		}
		runDumpAST(flag.Args()[1:], cfg)

	case "dump-cxx":
		if flag.NArg() < 2 {
			fmt.Fprintf(os.Stderr, "%s: missing file argument\n", red("Error"))
			os.Exit(1)
		}
		runDumpCxx(flag.Args()[1:], cfg)

	case "grammar":
		if flag.NArg() < 2 {
			fmt.Fprintf(os.Stderr, "%s: missing file argument\n", red("Error"))
			os.Exit(1)
		}
		runGrammar(flag.Arg(1), cfg)

	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", red("Error"), command)
		printHelp()
		os.Exit(1)
	}
}

func buildDriver(cfg config.Config) *driver.Driver {
	ctx := astctx.New()
	plugins := plugin.NewRegistry()
	// registerFrontEnds (frontend.go) registers the HILTI and Spicy
	// plugins; the driver itself only knows about the Registry interface.
	registerFrontEnds(plugins)
	return driver.New(ctx, plugins, driver.Options{IterationCap: cfg.FixedPointIterationCap})
}

func runCompile(paths []string, cfg config.Config, emitCode bool) {
	d := buildDriver(cfg)
	loadSources(d, paths)

	if !d.Run() {
		printDiagnostics(d.Errors)
		os.Exit(1)
	}
	fmt.Printf("%s %d file(s) compiled cleanly\n", green("OK"), len(paths))

	if !emitCode {
		return
	}
	units, errs := d.Codegen()
	if len(errs) > 0 {
		printDiagnostics(errs)
		os.Exit(1)
	}

	q := jit.NewQueue(jit.DefaultCompiler(), cfg.JITConcurrency)
	ctx := context.Background()
	for i, u := range units {
		job := jit.Job{Name: fmt.Sprintf("module-%d", i), Source: u.Render()}
		result, rep := q.Submit(ctx, job)
		if rep != nil {
			printDiagnostics([]*diag.Report{rep})
			os.Exit(1)
		}
		fmt.Printf("%s compiled %s -> %s (%s)\n", cyan("JIT"), u.ModuleName, result.ObjectPath, result.Duration)
	}
}

func runDumpAST(paths []string, cfg config.Config) {
	d := buildDriver(cfg)
	loadSources(d, paths)
	d.Run()
	for _, u := range d.Units {
		fmt.Printf("%s %s (%d top-level declarations)\n", bold(u.Path), yellow(u.Plugin.Name), len(u.File.Children()))
	}
	printDiagnostics(d.Errors)
}

func runDumpCxx(paths []string, cfg config.Config) {
	d := buildDriver(cfg)
	loadSources(d, paths)
	if !d.Run() {
		printDiagnostics(d.Errors)
		os.Exit(1)
	}
	units, errs := d.Codegen()
	printDiagnostics(errs)
	for _, u := range units {
		fmt.Println(u.Render())
	}
}

func runGrammar(path string, cfg config.Config) {
	d := buildDriver(cfg)
	loadSources(d, []string{path})
	if !d.Run() {
		printDiagnostics(d.Errors)
		os.Exit(1)
	}

	unit := findUnitType(d)
	if unit == nil {
		fmt.Printf("%s no Spicy unit type found in %s\n", yellow("Note"), path)
		return
	}

	g := grammar.Build(unit.Fields)
	if errs := g.Finalize(); len(errs) > 0 {
		printDiagnostics(errs)
		os.Exit(1)
	}
	fmt.Print(g.Dump())
}

// findUnitType returns the UnqualifiedTypePayload (Kind: KindUnit) of the
// first Spicy unit type declared at module scope across d's units, or nil
// if none was parsed.
func findUnitType(d *driver.Driver) *ast.UnqualifiedTypePayload {
	for _, u := range d.Units {
		fp, ok := u.File.Payload().(*ast.FilePayload)
		if !ok || fp.Module == nil {
			continue
		}
		module := fp.Module.Payload().(*ast.ModulePayload)
		for _, decl := range module.Body {
			td, ok := decl.Payload().(*ast.TypeDeclPayload)
			if !ok {
				continue
			}
			if unit := ast.Unqualified(td.Type); unit != nil && unit.Kind == ast.KindUnit {
				return unit
			}
		}
	}
	return nil
}

func loadSources(d *driver.Driver, paths []string) {
	for _, p := range paths {
		src, err := os.ReadFile(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: reading %s: %v\n", red("Error"), p, err)
			os.Exit(1)
		}
		ext := filepath.Ext(p)
		if rep := d.AddSource(p, ext, src); rep != nil {
			printDiagnostics([]*diag.Report{rep})
			os.Exit(1)
		}
	}
}

func printDiagnostics(reports []*diag.Report) {
	width := terminalWidth()
	for _, r := range reports {
		line := fmt.Sprintf("[%s] %s: %s", r.Phase, r.Code, r.Message)
		if len(line) > width {
			line = line[:width-1] + "…"
		}
		fmt.Fprintf(os.Stderr, "%s%s\n", red("error"), line)
	}
}

func printVersion() {
	fmt.Printf("hiltic %s (%s, built %s)\n", Version, Commit, BuildTime)
}

func printHelp() {
	fmt.Println(bold("hiltic") + " - HILTI/Spicy compiler driver")
	fmt.Println()
	fmt.Println("Usage: hiltic <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  compile <files...>   Parse, resolve, and JIT-compile the given files")
	fmt.Println("  check <files...>     Parse and resolve without invoking the JIT")
	fmt.Println("  dump-ast <files...>  Print a summary of each file's parsed AST")
	fmt.Println("  dump-cxx <files...>  Print the generated C++ translation unit(s)")
	fmt.Println("  grammar <file>       Print the LL(1) grammar derived from a unit")
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
}
