// Command spatialam plans spatial 3D-printing toolpaths. It evaluates a
// toolpath source file, analyzes the resulting lattice and writes the
// ordered robot program records in the selected encoding.
//
// Usage:
//
//	spatialam [-config file] [-format msgpack|json|cbor] [-o out] [-trail] [-v] source.lisp
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fgam/spatialam/pkg/config"
	"github.com/fgam/spatialam/pkg/export"
	"github.com/fgam/spatialam/pkg/logging"
)

// Output is what the command writes.
type Output struct {
	Plan  PlanResult   `codec:"plan" json:"plan"`
	Trail *TrailResult `codec:"trail,omitempty" json:"trail,omitempty"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("spatialam", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		cfgPath = fs.String("config", "", "YAML configuration file")
		format  = fs.String("format", "msgpack", "output encoding: msgpack, json or cbor")
		out     = fs.String("o", "-", "output file, - for stdout")
		trail   = fs.Bool("trail", false, "also search for the longest continuous trail")
		verbose = fs.Bool("v", false, "log progress to stderr")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: spatialam [flags] source.lisp (- for stdin)")
		fs.PrintDefaults()
		return 2
	}
	if *verbose {
		logging.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		defer logging.SetLogger(nil)
	}

	f, err := export.ParseFormat(*format)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	cfg := config.Default()
	if *cfgPath != "" {
		if cfg, err = config.Load(*cfgPath); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}
	source, err := readSource(fs.Arg(0), stdin)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	app := NewAppWithConfig(cfg)
	result := Output{Plan: app.Plan(string(source))}
	for _, e := range result.Plan.Errors {
		if e.Line > 0 {
			fmt.Fprintf(stderr, "error: line %d: %s\n", e.Line, e.Message)
		} else {
			fmt.Fprintf(stderr, "error: %s\n", e.Message)
		}
	}
	for _, w := range result.Plan.Warnings {
		fmt.Fprintf(stderr, "warning: %s\n", w.Message)
	}
	if len(result.Plan.Errors) > 0 {
		return 1
	}

	if *trail {
		tr, err := app.LongestTrail(context.Background(), result.Plan.Design)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		result.Trail = &tr
	}

	if err := write(*out, stdout, result, f); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func readSource(name string, stdin io.Reader) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(name)
}

func write(name string, stdout io.Writer, v any, f export.Format) error {
	if name == "-" {
		return export.Encode(stdout, v, f)
	}
	file, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := export.Encode(file, v, f); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
