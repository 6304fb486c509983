// Command pdfannotate views PDF files and records text annotations in
// .paj sidecar files next to them.
//
// Usage:
//
//	pdfannotate init <file.pdf>
//	pdfannotate pages <file.pdf|file.paj>
//	pdfannotate view [-page n] [-scale s] [-ocr] [-o out.html] <file.pdf|file.paj>
//	pdfannotate annotate -page n -start node:offset -end node:offset [-note text] <file.pdf|file.paj>
//
// view writes a self-contained HTML page: the rendered page, its text
// layer with the replayed highlights and the annotation notes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
)

// env is what a command runs against
type env struct {
	ctx    context.Context
	stdout io.Writer
	stderr io.Writer
	log    *logrus.Logger
}

type command struct {
	name  string
	usage string
	run   func(e env, args []string) error
}

var commands = []command{
	{"init", "init <file.pdf>", runInit},
	{"pages", "pages <file.pdf|file.paj>", runPages},
	{"view", "view [-page n] [-scale s] [-ocr] [-o out.html] <file.pdf|file.paj>", runView},
	{"annotate", "annotate -page n -start node:offset -end node:offset [-note text] <file.pdf|file.paj>", runAnnotate},
}

// errUsage marks errors caused by bad arguments
var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("pdfannotate", flag.ContinueOnError)
	global.SetOutput(stderr)
	verbose := global.Bool("v", false, "Log debug diagnostics")
	global.Usage = func() { usage(stderr) }
	if err := global.Parse(args); err != nil {
		return 2
	}

	log := logrus.New()
	log.SetOutput(stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if global.NArg() == 0 {
		usage(stderr)
		return 2
	}
	name, rest := global.Arg(0), global.Args()[1:]
	for _, c := range commands {
		if c.name != name {
			continue
		}
		err := c.run(env{ctx: ctx, stdout: stdout, stderr: stderr, log: log}, rest)
		switch {
		case err == nil:
			return 0
		case errors.Is(err, flag.ErrHelp):
			return 0
		case errors.Is(err, errUsage):
			fmt.Fprintf(stderr, "pdfannotate %s: %v\nusage: pdfannotate %s\n", name, err, c.usage)
			return 2
		default:
			fmt.Fprintf(stderr, "pdfannotate %s: %v\n", name, err)
			return 1
		}
	}

	fmt.Fprintf(stderr, "pdfannotate: unknown command %q\n", name)
	usage(stderr)
	return 2
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pdfannotate [-v] <command> [flags] <file>")
	fmt.Fprintln(w, "\nCommands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %s\n", c.usage)
	}
}

// flags returns a flag set that reports errors to e.stderr
func (e env) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	return fs
}

// file parses fs and returns its single positional argument
func file(fs *flag.FlagSet, args []string) (string, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", errUsage, err)
	}
	if fs.NArg() != 1 {
		return "", fmt.Errorf("%w: want exactly one file, got %d", errUsage, fs.NArg())
	}
	return fs.Arg(0), nil
}
