package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/wasm-patch/patch"
	"github.com/wippyai/wasm-patch/verify"
)

// Exit statuses. A clean run that changed nothing is distinguished from
// both a successful patch run and a failed one.
const (
	exitPatched = 0
	exitClean   = 1
	exitError   = 2
)

func main() {
	var (
		dryRun      = flag.Bool("n", false, "Report what would be patched without writing")
		verifyAfter = flag.Bool("verify", false, "Recompile each patched module with wazero")
		interactive = flag.Bool("i", false, "Interactive inspector TUI")
		verbose     = flag.Bool("v", false, "Enable debug logging")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: wasmpatch [-n] [-verify] [-v] <file.wasm | dir>")
		fmt.Fprintln(os.Stderr, "       wasmpatch -i <file.wasm | dir>")
		os.Exit(exitError)
	}
	path := flag.Arg(0)

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: create logger: %v\n", err)
			os.Exit(exitError)
		}
		defer logger.Sync()
		patch.SetLogger(logger)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode requires a terminal")
			os.Exit(exitError)
		}
		if err := runInteractive(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(exitError)
		}
		return
	}

	os.Exit(run(path, *dryRun, *verifyAfter))
}

// run processes every candidate under path. Candidates are independent: a
// failure is reported and forces the error status, but later candidates
// are still attempted.
func run(path string, dryRun, verifyAfter bool) int {
	candidates, err := patch.Candidates(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s: %v\n", path, err)
		return exitError
	}

	anyPatched := false
	failed := false
	for _, p := range candidates {
		did, err := processFile(p, dryRun, verifyAfter)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %s: %v\n", p, err)
			failed = true
			continue
		}
		if did {
			anyPatched = true
			if dryRun {
				fmt.Printf("would patch: %s\n", p)
			} else {
				fmt.Printf("patched: %s\n", p)
			}
		}
	}

	switch {
	case failed:
		return exitError
	case anyPatched:
		return exitPatched
	default:
		fmt.Println("no changes needed")
		return exitClean
	}
}

func processFile(path string, dryRun, verifyAfter bool) (bool, error) {
	if dryRun {
		data, err := os.ReadFile(path)
		if err != nil {
			return false, err
		}
		rep, err := patch.Inspect(data)
		if err != nil {
			return false, err
		}
		return rep.NeedsPatch(), nil
	}

	patched, err := patch.File(path)
	if err != nil || !patched {
		return patched, err
	}

	if verifyAfter {
		data, err := os.ReadFile(path)
		if err != nil {
			return true, err
		}
		if err := verify.Module(context.Background(), data); err != nil {
			return true, fmt.Errorf("post-patch verification: %w", err)
		}
	}
	return true, nil
}
