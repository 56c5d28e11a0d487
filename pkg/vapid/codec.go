package vapid

import (
	"encoding/base64"
	"strings"
)

// base64URLEncode encodes data as base64url without padding. Every wire
// field this package emits uses this form.
func base64URLEncode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// base64URLDecode decodes base64url data, padded or not. Tokens and
// signatures assembled by other tooling sometimes arrive with padding
// intact.
func base64URLDecode(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}

// decodeKeyBase64 decodes key material that may use the base64url or
// standard alphabet, padded or not. Only key input is this forgiving;
// token fields go through base64URLDecode.
func decodeKeyBase64(s string) ([]byte, error) {
	s = strings.TrimRight(strings.TrimSpace(s), "=")
	if b, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}
