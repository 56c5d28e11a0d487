package vapid

import (
	"errors"
	"fmt"
)

// VAPID error codes.
const (
	ErrCodeNoKey            = "vapid.no_key"            // Signing attempted without key material
	ErrCodeKeyFormat        = "vapid.key_format"        // Key bytes could not be parsed
	ErrCodeMissingClaim     = "vapid.missing_claim"     // Claim set cannot be signed as provided
	ErrCodeInvalidSignature = "vapid.invalid_signature" // Token failed verification
)

// ErrVerificationFailed marks a token whose structure was sound but whose
// signature did not match the given public key. It is always wrapped in an
// Error with code ErrCodeInvalidSignature; check with errors.Is to tell a
// cryptographic rejection apart from malformed input.
var ErrVerificationFailed = errors.New("signature does not match public key")

// Error represents a VAPID failure with a structured code.
type Error struct {
	Code    string // One of the ErrCode* constants
	Message string // Human-readable error description
	Err     error  // Underlying cause, if any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap allows errors.Is and errors.As to reach the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// newError creates an Error with the given code, message, and cause.
func newError(code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     cause,
	}
}

// ErrNoKey creates an error for an operation that needs key material when
// none is attached.
func ErrNoKey() *Error {
	return newError(ErrCodeNoKey, "no key defined; generate or load one first", nil)
}

// ErrKeyFormat creates an error for key material that could not be parsed.
func ErrKeyFormat(cause error) *Error {
	return newError(ErrCodeKeyFormat, "unusable key material", cause)
}

// ErrMissingClaim creates an error for a required claim absent from the
// claim set. The purpose describes what the claim is for, so the caller
// knows what to supply.
func ErrMissingClaim(claim, purpose string) *Error {
	return newError(ErrCodeMissingClaim, fmt.Sprintf("missing '%s' from claims; %s", claim, purpose), nil)
}

// ErrInvalidSubject creates an error for a sub claim that is present but
// not a contact reference a push service operator can use.
func ErrInvalidSubject(sub string) *Error {
	return newError(ErrCodeMissingClaim, fmt.Sprintf("claim 'sub' value %q is not a mailto: or https: reference", sub), nil)
}

// ErrInvalidSignature creates an error for a token that failed
// verification. Malformed tokens and genuine signature mismatches both
// carry this code; only the latter wrap ErrVerificationFailed.
func ErrInvalidSignature(cause error) *Error {
	return newError(ErrCodeInvalidSignature, "token rejected", cause)
}

// ErrorCode extracts the VAPID error code from an error.
// Returns empty string if the error is not a vapid Error.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Code
	}
	return ""
}

// IsNoKey returns true if the error reports missing key material.
func IsNoKey(err error) bool {
	return ErrorCode(err) == ErrCodeNoKey
}

// IsKeyFormat returns true if the error reports unparseable key material.
func IsKeyFormat(err error) bool {
	return ErrorCode(err) == ErrCodeKeyFormat
}

// IsMissingClaim returns true if the error reports an unusable claim set.
func IsMissingClaim(err error) bool {
	return ErrorCode(err) == ErrCodeMissingClaim
}

// IsInvalidSignature returns true if the error reports a rejected token.
func IsInvalidSignature(err error) bool {
	return ErrorCode(err) == ErrCodeInvalidSignature
}
