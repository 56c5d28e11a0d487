package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// CommandResult captures the output and error from a command execution.
type CommandResult struct {
	Stdout string
	Stderr string
	Err    error
}

// Run executes a cobra command with the given arguments, capturing both
// output streams.
//
// Example:
//
//	result := cli.Run(rootCmd, "keygen", "--key", keyPath)
//	result.AssertSuccess(t)
//	result.AssertContains(t, "Application Server Key")
func Run(cmd *cobra.Command, args ...string) *CommandResult {
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return &CommandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
		Err:    err,
	}
}

// CommandRunner wraps a cobra command for fluent test execution.
type CommandRunner struct {
	cmd *cobra.Command
}

// Reset creates a CommandRunner that clears leftover argument state
// before execution. Use it when a test reuses a command tree that an
// earlier Run already executed.
//
// Example:
//
//	result := cli.Reset(rootCmd).Run("--help")
func Reset(cmd *cobra.Command) *CommandRunner {
	cmd.SetArgs([]string{})
	return &CommandRunner{cmd: cmd}
}

// Run executes the wrapped command with the given arguments.
func (r *CommandRunner) Run(args ...string) *CommandResult {
	return Run(r.cmd, args...)
}

// AssertSuccess fails the test if the command returned an error.
func (r *CommandResult) AssertSuccess(t *testing.T) {
	t.Helper()
	if r.Err != nil {
		t.Fatalf("expected command to succeed, got error: %v\nstdout: %s\nstderr: %s",
			r.Err, r.Stdout, r.Stderr)
	}
}

// AssertError fails the test if the command did not return an error.
func (r *CommandResult) AssertError(t *testing.T) {
	t.Helper()
	if r.Err == nil {
		t.Fatalf("expected command to fail, but it succeeded\nstdout: %s", r.Stdout)
	}
}

// AssertContains fails the test if stdout does not contain the expected string.
func (r *CommandResult) AssertContains(t *testing.T, expected string) {
	t.Helper()
	if !strings.Contains(r.Stdout, expected) {
		t.Errorf("expected stdout to contain %q, got:\n%s", expected, r.Stdout)
	}
}

// AssertNotContains fails the test if stdout contains the unexpected string.
func (r *CommandResult) AssertNotContains(t *testing.T, unexpected string) {
	t.Helper()
	if strings.Contains(r.Stdout, unexpected) {
		t.Errorf("expected stdout NOT to contain %q, got:\n%s", unexpected, r.Stdout)
	}
}

// AssertPrefix fails the test if stdout does not start with the expected prefix.
func (r *CommandResult) AssertPrefix(t *testing.T, expected string) {
	t.Helper()
	trimmed := strings.TrimSpace(r.Stdout)
	if !strings.HasPrefix(trimmed, expected) {
		t.Errorf("expected stdout to start with %q, got:\n%s", expected, r.Stdout)
	}
}

// AssertExact fails the test if stdout does not exactly match the expected string.
func (r *CommandResult) AssertExact(t *testing.T, expected string) {
	t.Helper()
	if r.Stdout != expected {
		t.Errorf("expected stdout to be exactly %q, got %q", expected, r.Stdout)
	}
}

// AssertStderrContains fails the test if stderr does not contain the expected string.
func (r *CommandResult) AssertStderrContains(t *testing.T, expected string) {
	t.Helper()
	if !strings.Contains(r.Stderr, expected) {
		t.Errorf("expected stderr to contain %q, got:\n%s", expected, r.Stderr)
	}
}

// Headers parses "Name: value" stdout lines back into a header map.
// Commands that print HTTP headers (sign in text mode) emit one header
// per line; any other line fails the test.
//
// Example:
//
//	headers := result.Headers(t)
//	auth := headers["Authorization"]
func (r *CommandResult) Headers(t *testing.T) map[string]string {
	t.Helper()
	headers := map[string]string{}
	for _, line := range strings.Split(strings.TrimSpace(r.Stdout), "\n") {
		name, value, found := strings.Cut(line, ": ")
		if !found {
			t.Fatalf("output line %q is not a header line", line)
		}
		headers[name] = value
	}
	return headers
}

// TempKeyPath returns a path for a signing key inside a fresh temp directory.
// The file does not exist yet; commands under test create it. The directory
// is cleaned up when the test completes.
//
// Example:
//
//	keyPath := cli.TempKeyPath(t)
//	result := cli.Run(rootCmd, "keygen", "--key", keyPath)
func TempKeyPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "private_key.pem")
}

// WriteClaimsFile writes a claims JSON document to a temp file and returns
// its path. The file is created with owner-only permissions and cleaned up
// when the test completes.
//
// Example:
//
//	claimsPath := cli.WriteClaimsFile(t, `{"sub":"mailto:ops@example.com","aud":"https://push.example.net"}`)
//	result := cli.Run(rootCmd, "sign", claimsPath)
func WriteClaimsFile(t *testing.T, content string) string {
	t.Helper()
	claimsPath := filepath.Join(t.TempDir(), "claims.json")
	if err := os.WriteFile(claimsPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write claims file: %v", err)
	}
	return claimsPath
}
