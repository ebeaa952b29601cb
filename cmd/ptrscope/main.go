// Command ptrscope explores ownership lineages: create shared and weak
// handles, copy and move them, and watch when resources are released.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/ownership"
	"github.com/wippyai/ownership/budget"
	"github.com/wippyai/ownership/track"
)

func main() {
	var (
		scriptFile  = flag.String("script", "", "Run YAML scenarios from file")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		maxCounters = flag.Int64("max-counters", 0, "Limit live counters (0 = unlimited)")
		verbose     = flag.Bool("v", false, "Log lifecycle events to stderr")
	)
	flag.Parse()

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = logger.Sync() }()
		ownership.SetLogger(logger)
	}

	tr := track.New(nil)
	opts := []ownership.Option{
		ownership.WithAllocator(budget.New(budget.Config{MaxCounters: *maxCounters}, tr)),
	}

	if err := run(*scriptFile, *interactive, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if n := tr.LiveCount(); n != 0 {
		fmt.Fprintf(os.Stderr, "Error: %d counters still live: %v\n", n, tr.Live())
		os.Exit(1)
	}
}

func run(scriptFile string, interactive bool, opts []ownership.Option) error {
	if scriptFile != "" {
		script, err := LoadScript(scriptFile)
		if err != nil {
			return err
		}
		if failed := script.Run(os.Stdout, opts...); failed > 0 {
			return fmt.Errorf("%d scenario(s) failed", failed)
		}
		return nil
	}

	sess := newSession(opts...)
	defer sess.Close()
	if interactive || term.IsTerminal(int(os.Stdout.Fd())) {
		return runInteractive(sess)
	}
	return runLines(os.Stdin, os.Stdout, sess)
}
