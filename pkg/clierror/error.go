package clierror

import (
	"encoding/json"
	"fmt"
	"os"
)

// Exit codes reported by the vapid CLI.
const (
	ExitSuccess   = 0 // Operation completed successfully
	ExitGeneral   = 1 // Unknown/unhandled error
	ExitUsage     = 2 // Bad arguments or unusable claims input
	ExitKey       = 3 // Key missing, unreadable, or refused
	ExitSignature = 4 // Token or signature failed verification
)

// Error codes (strings) for programmatic error handling
const (
	CodeKeyNotFound      = "KEY_NOT_FOUND"
	CodeKeyUnreadable    = "KEY_UNREADABLE"
	CodeKeyExists        = "KEY_EXISTS"
	CodeClaimsFile       = "CLAIMS_FILE"
	CodeClaimsInvalid    = "CLAIMS_INVALID"
	CodeSignatureInvalid = "SIGNATURE_INVALID"
	CodeVaultUnavailable = "VAULT_UNAVAILABLE"
	CodeInternalError    = "INTERNAL_ERROR"
)

// CLIError represents a structured error for CLI output.
type CLIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Hint      string `json:"hint,omitempty"`
	Retryable bool   `json:"retryable"`
	ExitCode  int    `json:"-"` // Not serialized, used for os.Exit
}

// Error implements the error interface.
func (e *CLIError) Error() string {
	return e.Message
}

// KeyNotFound creates an error for a missing private key.
func KeyNotFound(path string) *CLIError {
	return &CLIError{
		Code:      CodeKeyNotFound,
		Message:   fmt.Sprintf("no private key found at '%s'", path),
		Hint:      "Run 'vapid keygen' to create one, or point --key at an existing key file",
		Retryable: false,
		ExitCode:  ExitKey,
	}
}

// KeyUnreadable creates an error for a key file that exists but cannot
// be used.
func KeyUnreadable(path string, err error) *CLIError {
	return &CLIError{
		Code:      CodeKeyUnreadable,
		Message:   fmt.Sprintf("cannot use key at '%s': %s", path, err),
		Hint:      "The file must be a P-256 private key in PEM or base64 DER form, readable only by its owner",
		Retryable: false,
		ExitCode:  ExitKey,
	}
}

// KeyExists creates an error for keygen refusing to overwrite a key.
func KeyExists(path string) *CLIError {
	return &CLIError{
		Code:      CodeKeyExists,
		Message:   fmt.Sprintf("a private key already exists at '%s'", path),
		Hint:      "Pass --force to replace it; push subscriptions made against the old key stop working",
		Retryable: false,
		ExitCode:  ExitKey,
	}
}

// ClaimsFile creates an error for a claims file that cannot be read or
// parsed.
func ClaimsFile(path string, err error) *CLIError {
	return &CLIError{
		Code:      CodeClaimsFile,
		Message:   fmt.Sprintf("cannot read claims from '%s': %s", path, err),
		Hint:      "Pass a JSON object with at least \"sub\" and \"aud\" members",
		Retryable: false,
		ExitCode:  ExitUsage,
	}
}

// ClaimsInvalid creates an error for a claim set the signer rejected.
func ClaimsInvalid(err error) *CLIError {
	return &CLIError{
		Code:      CodeClaimsInvalid,
		Message:   err.Error(),
		Hint:      "Add the missing claim to the claims file",
		Retryable: false,
		ExitCode:  ExitUsage,
	}
}

// SignatureInvalid creates an error for a signature or token that failed
// verification.
func SignatureInvalid() *CLIError {
	return &CLIError{
		Code:      CodeSignatureInvalid,
		Message:   "signature does not match the public key",
		Hint:      "Check that the token was signed by the key the public key belongs to",
		Retryable: false,
		ExitCode:  ExitSignature,
	}
}

// VaultUnavailable creates an error for a failed Vault request.
func VaultUnavailable(err error) *CLIError {
	return &CLIError{
		Code:      CodeVaultUnavailable,
		Message:   fmt.Sprintf("vault request failed: %s", err),
		Hint:      "Check VAULT_ADDR, VAULT_TOKEN, and that the KV mount exists",
		Retryable: true,
		ExitCode:  ExitGeneral,
	}
}

// InternalError creates an error for unexpected internal errors.
func InternalError(err error) *CLIError {
	msg := "an unexpected internal error occurred"
	if err != nil {
		msg = fmt.Sprintf("internal error: %s", err.Error())
	}
	return &CLIError{
		Code:      CodeInternalError,
		Message:   msg,
		Hint:      "",
		Retryable: false,
		ExitCode:  ExitGeneral,
	}
}

// FormatError returns the error formatted for the given output format.
// Supported formats: "json" for JSON output, anything else for human-readable format.
func FormatError(err *CLIError, outputFormat string) string {
	if outputFormat == "json" {
		data, jsonErr := json.MarshalIndent(err, "", "  ")
		if jsonErr != nil {
			// Fallback to simple JSON if marshaling fails
			return fmt.Sprintf(`{"code":"%s","message":"%s"}`, err.Code, err.Message)
		}
		return string(data)
	}

	output := fmt.Sprintf("Error [%s]: %s", err.Code, err.Message)
	if err.Hint != "" {
		output += fmt.Sprintf("\nHint: %s", err.Hint)
	}
	return output
}

// PrintError prints the error to stderr in the appropriate format.
func PrintError(err *CLIError, outputFormat string) {
	fmt.Fprintln(os.Stderr, FormatError(err, outputFormat))
}
