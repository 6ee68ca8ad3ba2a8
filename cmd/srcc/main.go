// Command srcc is the ahead-of-time SRC-to-C compiler driver (spec.md §6).
// It wires the core pipeline (internal/pipeline) to a file system and a C
// toolchain invocation, using plain flag parsing and fmt.Printf status
// output.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"srcc/internal/cache"
	"srcc/internal/compileserver"
	"srcc/internal/errors"
	"srcc/internal/pipeline"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "serve" {
		os.Exit(runServe(os.Args[2:]))
	}
	os.Exit(runCompile(os.Args[1:]))
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: srcc [options] filename.src
       srcc serve [options]

options:
  -o NAME              output executable name (default derived from input)
  -O {0,1,2}           optimisation level (default 0)
  -R, -no-runtime      emit C without linking the runtime stubs
  -c                   stop after emitting C (do not invoke the C toolchain)
  -v, -verbose-assembly  annotate emitted C with source line comments
  -dump STAGE          print an intermediate stage (tokens|ast|typed|optimized|c) and exit
  -cache-dsn DSN        build cache backend (sqlite://PATH, postgres://, mysql://, sqlserver://; no cache when unset)
  -h                   show this help`)
}

func runCompile(args []string) int {
	fs := flag.NewFlagSet("srcc", flag.ContinueOnError)
	fs.Usage = usage

	outName := fs.String("o", "", "output executable name")
	optLevel := fs.Int("O", 0, "optimisation level {0,1,2}")
	noRuntime := fs.Bool("R", false, "emit C without linking the runtime stubs")
	fs.BoolVar(noRuntime, "no-runtime", false, "alias of -R")
	stopAtC := fs.Bool("c", false, "stop after emitting C")
	verbose := fs.Bool("v", false, "annotate emitted C with source line comments")
	fs.BoolVar(verbose, "verbose-assembly", false, "alias of -v")
	dumpStage := fs.String("dump", "", "print an intermediate stage and exit: tokens|ast|typed|optimized|c")
	cacheDSN := fs.String("cache-dsn", "", "build cache backend DSN")
	help := fs.Bool("h", false, "show help")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *help || fs.NArg() == 0 {
		usage()
		if *help {
			return 0
		}
		return 2
	}
	if *optLevel < 0 || *optLevel > 2 {
		fmt.Fprintln(os.Stderr, "srcc: -O must be 0, 1, or 2")
		return 2
	}

	file := fs.Arg(0)
	start := time.Now()

	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: I/O error: %v\n", file, err)
		return 2
	}

	opts := pipeline.Options{OptLevel: *optLevel, Verbose: *verbose, NoRuntime: *noRuntime}

	c, err := openCache(*cacheDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: I/O error: %v\n", file, err)
		return 2
	}
	if c != nil {
		defer c.Close()
	}

	var key string
	var cText string
	var res *pipeline.Result
	cached := false

	if c != nil {
		key = cache.Key(src, *optLevel, *verbose, *noRuntime)
		if text, ok, lookErr := c.Get(key); lookErr == nil && ok {
			cText = text
			cached = true
		}
	}

	if !cached {
		res, err = pipeline.Run(file, src, opts)
		if err != nil {
			return reportError(err)
		}
		cText = res.C
		if c != nil {
			c.Put(key, *optLevel, *verbose, cText)
		}
	}

	if *dumpStage != "" {
		return dump(*dumpStage, res, cText)
	}

	if *verbose {
		printVerboseSummary(file, src, cached, time.Since(start))
	}

	cPath := outputCPath(file)
	if err := os.WriteFile(cPath, []byte(cText), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "%s: I/O error: %v\n", file, err)
		return 2
	}

	if *stopAtC {
		fmt.Printf("wrote %s\n", cPath)
		return 0
	}

	exe := *outName
	if exe == "" {
		exe = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	}
	if err := invokeToolchain(cPath, exe, *noRuntime); err != nil {
		fmt.Fprintf(os.Stderr, "%s: toolchain error: %v\n", file, err)
		return 3
	}
	fmt.Printf("wrote %s\n", exe)
	return 0
}

func openCache(dsn string) (*cache.Cache, error) {
	if dsn == "" {
		// Build cache is opt-in: without -cache-dsn, compiles never touch
		// the filesystem cache directory.
		return nil, nil
	}
	return cache.Open(dsn)
}

func outputCPath(srcFile string) string {
	base := strings.TrimSuffix(filepath.Base(srcFile), filepath.Ext(srcFile))
	return base + ".c"
}

// invokeToolchain shells out to cc, linking runtime.c unless -R was given.
// The runtime sources are expected alongside the srcc binary's working
// directory convention: a "runtime" subdirectory of the current module.
func invokeToolchain(cPath, exePath string, noRuntime bool) error {
	args := []string{"-O0", "-o", exePath, cPath}
	if !noRuntime {
		if _, err := os.Stat("runtime/runtime.c"); err == nil {
			args = append(args, "runtime/runtime.c", "-Iruntime")
		}
	}
	cmd := exec.Command("cc", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func reportError(err error) int {
	ce, ok := err.(*errors.CompileError)
	if !ok {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Fprintln(os.Stderr, ce.Error())
	return ce.ExitCode()
}

func dump(stage string, res *pipeline.Result, cText string) int {
	if res == nil {
		// A cache hit never runs the pipeline, so only "c" is available.
		if stage != "c" {
			fmt.Fprintf(os.Stderr, "srcc: -dump %s unavailable for a cached result; rerun with an empty -cache-dsn\n", stage)
			return 2
		}
		fmt.Print(cText)
		return 0
	}
	switch stage {
	case "tokens":
		fmt.Print(pipeline.DumpTokens(res.Tokens))
	case "ast":
		fmt.Print(pipeline.DumpTree(res.AST))
	case "typed":
		fmt.Print(pipeline.DumpTree(res.Typed))
	case "optimized":
		fmt.Print(pipeline.DumpTree(res.Optimized))
	case "c":
		fmt.Print(cText)
	default:
		fmt.Fprintf(os.Stderr, "srcc: unknown -dump stage %q\n", stage)
		return 2
	}
	return 0
}

// printVerboseSummary prints the -v status line after a build: elapsed
// time and input size, human-formatted, and only colourised when stdout is
// a real terminal.
func printVerboseSummary(file string, src []byte, cacheHit bool, elapsed time.Duration) {
	label := "compiled"
	if cacheHit {
		label = "cache hit"
	}
	if isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Printf("\033[32m%s\033[0m %s (%s) in %s\n", label, file, humanize.Bytes(uint64(len(src))), elapsed)
	} else {
		fmt.Printf("%s %s (%s) in %s\n", label, file, humanize.Bytes(uint64(len(src))), elapsed)
	}
}

func runServe(args []string) int {
	fs := flag.NewFlagSet("srcc serve", flag.ContinueOnError)
	addr := fs.String("address", "127.0.0.1", "listen address")
	port := fs.Int("port", 8765, "listen port")
	maxConcurrent := fs.Int("max-concurrent", 4, "maximum concurrent compiles")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	srv := compileserver.New(*addr, *port, *maxConcurrent)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessionID := uuid.NewString()
	fmt.Printf("srcc serve %s: listening on %s:%d\n", sessionID, *addr, *port)
	if err := srv.ListenAndServe(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "srcc serve: %v\n", err)
		return 3
	}
	return 0
}
