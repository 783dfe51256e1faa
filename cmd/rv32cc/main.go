// Command rv32cc compiles a single C-subset translation unit to RV32IMF/D
// assembly text.
package main

import (
	"fmt"
	"io"
	"os"

	"rv32cc/ast"
	"rv32cc/codegen"
	"rv32cc/frontend"
	"rv32cc/util"
)

func main() {
	opt, err := util.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "argument error: %s\n", err)
		os.Exit(1)
	}

	if err := run(opt); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

// run executes the compiler's stages in sequence: read source, lex (and
// stop early if -ts was given), parse, generate code, flush output.
func run(opt util.Options) error {
	src, err := readSource(opt.Src)
	if err != nil {
		return fmt.Errorf("could not read source: %s", err)
	}

	if opt.TokenStream {
		toks, err := frontend.LexForDisplay(src)
		if err != nil {
			return fmt.Errorf("lexical error: %s", err)
		}
		for _, t := range toks {
			fmt.Println(t)
		}
		return nil
	}

	root, err := frontend.Parse(src)
	if err != nil {
		return fmt.Errorf("parse error: %s", err)
	}

	if opt.Verbose {
		printTree(root)
	}

	out, closeFn, err := openOutput(opt.Out)
	if err != nil {
		return err
	}
	defer closeFn()

	w := util.NewWriter(out)
	if err := codegen.Generate(root, w); err != nil {
		return fmt.Errorf("code generation error: %s", err)
	}
	return w.Flush()
}

// readSource reads the named file, or stdin when path is empty.
func readSource(path string) (string, error) {
	if path == "" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	return util.ReadSource(path)
}

// openOutput opens the named file for writing, or returns stdout when path
// is empty.
func openOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open output file: %s", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// printTree dumps the parsed syntax tree to stderr for -vb diagnostics.
func printTree(root *ast.Node) {
	root.Print(0)
}
