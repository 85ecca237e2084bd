// Command synless is the CLI entry point: it wires an Engine to the
// bundled language loaders, reads an init script, and drives the
// engine loop against a plain stdin/stdout terminal frontend until the
// init script (or a quit/abort builtin) ends the session.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/synless-editor/synless/engine"
	"github.com/synless-editor/synless/keymap"
	"github.com/synless-editor/synless/lang"
	"github.com/synless-editor/synless/languages/bazel"
	"github.com/synless-editor/synless/languages/gomod"
	"github.com/synless-editor/synless/languages/jsonlang"
	"github.com/synless-editor/synless/languages/protobuf"
	"github.com/synless-editor/synless/languages/sql"
	"github.com/synless-editor/synless/languages/starlark"
	"github.com/synless-editor/synless/languages/thrift"
	"github.com/synless-editor/synless/languages/yamldoc"
)

// stdioFrontend is the simplest possible Frontend: it reads one
// keypress (a single printable rune or one of a handful of named
// control keys) per line from stdin and writes the rendered grid to
// stdout. No TUI library is used here -- none of the retrieval pack's
// complete example repos exercises one, so this stays on bufio/fmt
// the way the teacher's own CLI-facing code does (see DESIGN.md).
type stdioFrontend struct {
	in *bufio.Reader
}

func newStdioFrontend() *stdioFrontend {
	return &stdioFrontend{in: bufio.NewReader(os.Stdin)}
}

func (f *stdioFrontend) ReadKey() (keymap.KeySpec, error) {
	line, err := f.in.ReadString('\n')
	if err != nil {
		return keymap.KeySpec{}, err
	}
	switch line {
	case "\n":
		return keymap.KeySpec{Code: '\r'}, nil
	case "<esc>\n":
		return keymap.KeySpec{Code: 0x1b}, nil
	case "<bs>\n":
		return keymap.KeySpec{Code: 0x7f}, nil
	}
	r := []rune(line)
	if len(r) == 0 {
		return keymap.KeySpec{}, fmt.Errorf("empty key line")
	}
	return keymap.KeySpec{Code: r[0]}, nil
}

func (f *stdioFrontend) Display(grid []string) error {
	for _, line := range grid {
		if _, err := fmt.Println(line); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: synless <init-script.star>")
		return 2
	}

	registry := lang.NewRegistry()
	if err := registry.Add(gomod.Language()); err != nil {
		fmt.Fprintf(os.Stderr, "registering gomod language: %v\n", err)
		return 1
	}
	if err := registry.Add(bazel.Language()); err != nil {
		fmt.Fprintf(os.Stderr, "registering bazel language: %v\n", err)
		return 1
	}
	if err := registry.Add(yamldoc.Language()); err != nil {
		fmt.Fprintf(os.Stderr, "registering yamldoc language: %v\n", err)
		return 1
	}
	if err := registry.Add(jsonlang.Language()); err != nil {
		fmt.Fprintf(os.Stderr, "registering json language: %v\n", err)
		return 1
	}
	if err := registry.Add(protobuf.Language()); err != nil {
		fmt.Fprintf(os.Stderr, "registering protobuf language: %v\n", err)
		return 1
	}
	if err := registry.Add(thrift.Language()); err != nil {
		fmt.Fprintf(os.Stderr, "registering thrift language: %v\n", err)
		return 1
	}
	if err := registry.Add(sql.Language()); err != nil {
		fmt.Fprintf(os.Stderr, "registering sql language: %v\n", err)
		return 1
	}
	if err := registry.Add(starlark.Language()); err != nil {
		fmt.Fprintf(os.Stderr, "registering starlark language: %v\n", err)
		return 1
	}

	e := engine.New(registry, newStdioFrontend(), engine.PlainPrinter{})
	e.RegisterLoader(gomod.LanguageName, gomod.Load)
	e.RegisterLoader(bazel.LanguageName, bazel.Load)
	e.RegisterLoader(yamldoc.LanguageName, yamldoc.Load)
	e.RegisterLoader(protobuf.LanguageName, protobuf.Load)
	e.RegisterLoader(thrift.LanguageName, thrift.Load)
	e.RegisterLoader(sql.LanguageName, sql.Load)
	e.RegisterLoader(starlark.LanguageName, starlark.Load)

	initPath := args[0]
	src, err := os.ReadFile(initPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading init script %s: %v\n", initPath, err)
		return 1
	}
	if _, err := e.Machine().LoadInit(initPath, src); err != nil {
		fmt.Fprintf(os.Stderr, "running init script: %v\n", err)
		return 1
	}

	return e.RunLoop()
}
