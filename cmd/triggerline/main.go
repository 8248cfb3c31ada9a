package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/neurokit/triggerline/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Dispatch failures were already printed by the command's formatter;
		// command errors (bad flags, unreadable files) print here.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) || exitErr.Code == cli.ExitCommandError {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
