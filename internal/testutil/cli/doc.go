// Package cli provides shared test utilities for cobra-based CLI tests:
// command execution with output capture, result assertions, and fixtures
// for key files and claims documents.
//
// # Basic Usage
//
// Execute a command and check output:
//
//	result := cli.Run(myCmd, "--help")
//	result.AssertSuccess(t)
//	result.AssertContains(t, "Usage:")
//
// Run captures both streams separately; result.Stdout and result.Stderr
// hold whatever the command printed, and result.Err holds the Execute
// error, if any.
//
// # Key and Claims Fixtures
//
// Commands that sign tokens need a key file and a claims document:
//
//	keyPath := cli.TempKeyPath(t)
//	claimsPath := cli.WriteClaimsFile(t, `{"sub":"mailto:ops@example.com","aud":"https://push.example.net"}`)
//	result := cli.Run(rootCmd, "sign", claimsPath, "--key", keyPath)
//
// Header-printing commands can be checked through the parsed form:
//
//	headers := result.Headers(t)
//	if !strings.HasPrefix(headers["Authorization"], "Bearer ") { ... }
//
// # Resetting Commands
//
// For a command tree that an earlier test already executed, clear the
// stale argument state first:
//
//	result := cli.Reset(rootCmd).Run("--help")
package cli
