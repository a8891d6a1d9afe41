// Command llmvm is the CLI front end for the Language-Logic Machine: a
// `build` subcommand that assembles a source file into a bytecode image,
// and a `run` subcommand that loads and executes one. Flags follow the
// teacher's stdlib `flag` convention (main.go) rather than reaching for a
// CLI framework (spec.md §6.6 names this surface an external collaborator,
// specified for completeness only).
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "build":
		err = runBuild(os.Args[2:])
	case "run":
		err = runRun(os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: llmvm build [-o output] <source-file>")
	fmt.Fprintln(os.Stderr, "       llmvm run [-debug] [-inspect] [-stub-llm] <image-file>")
}
