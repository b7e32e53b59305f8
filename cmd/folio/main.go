// Command folio validates, deduplicates and exports portfolio snapshot data,
// and serves the admin quality API.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and maps the result to a process exit code: 0 on
// success, 1 when a snapshot is invalid or a command fails.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errInvalidSnapshot):
		return 1
	default:
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
}
