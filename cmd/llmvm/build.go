package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nullmodel/llmvm/assembler"
	"github.com/nullmodel/llmvm/bytecode"
)

func runBuild(args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	output := fs.String("o", "", "output image path (default: <source>.bin)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("build requires exactly one source file")
	}
	srcPath := fs.Arg(0)

	source, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", srcPath, err)
	}

	prog, errs := assembler.Assemble(string(source))
	if errs != nil {
		return fmt.Errorf("assembling %s:\n%s", srcPath, errs.Error())
	}

	out := *output
	if out == "" {
		out = strings.TrimSuffix(srcPath, filepath.Ext(srcPath)) + ".bin"
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	defer f.Close()

	if err := bytecode.Write(f, prog.Text, prog.Data); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}

	fmt.Printf("wrote %s (%d text words, %d data words)\n", out, len(prog.Text), len(prog.Data))
	return nil
}
