package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/halvard/kinocut/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// Commands report their own failures through the formatter;
		// anything else (flag errors, cobra internals) surfaces here.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
