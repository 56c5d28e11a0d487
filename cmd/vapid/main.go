// Command vapid generates signing keys and Authorization headers for
// Web Push application servers.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/web-push-libs/vapid/cmd/vapid/cmd"
	"github.com/web-push-libs/vapid/pkg/clierror"
)

func main() {
	err := cmd.Execute()
	if err == nil {
		return
	}

	var cliErr *clierror.CLIError
	if errors.As(err, &cliErr) {
		clierror.PrintError(cliErr, cmd.OutputFormat())
		os.Exit(cliErr.ExitCode)
	}

	// Flag and argument errors from cobra arrive unwrapped.
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(clierror.ExitGeneral)
}
