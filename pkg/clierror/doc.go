// Package clierror provides structured error handling for CLI commands.
//
// A CLIError carries a process exit code, a user-facing message, and
// optional troubleshooting hints, keeping what operators see separate
// from the underlying Go error.
//
// # Usage
//
//	key, err := store.Load()
//	if err != nil {
//	    clierror.PrintError(clierror.KeyNotFound(store.Path()), output)
//	    os.Exit(clierror.ExitKey)
//	}
package clierror
