package vapid

import (
	"strings"
	"time"
)

// Claims is the JWT claim set carried in a VAPID token. Only sub, aud,
// and exp have defined semantics; arbitrary extra keys pass through
// signing untouched.
type Claims map[string]any

// DefaultTokenLifetime is how far ahead exp is set when the caller leaves
// it out.
const DefaultTokenLifetime = 24 * time.Hour

// withDefaultExpiry returns a copy of the claim set with exp set to
// now + DefaultTokenLifetime when absent. The receiver is never written
// to, so callers can reuse their claim maps across signings.
func (c Claims) withDefaultExpiry(now time.Time) Claims {
	out := make(Claims, len(c)+1)
	for k, v := range c {
		out[k] = v
	}
	if isEmptyClaim(out["exp"]) {
		out["exp"] = now.Add(DefaultTokenLifetime).Unix()
	}
	return out
}

// validate checks the claim set against the requirements of the given
// draft revision. sub is always required; aud only under draft 01.
// Extra claims are never rejected.
func (c Claims) validate(draft Draft) error {
	if draft == Draft01 && isEmptyClaim(c["aud"]) {
		return ErrMissingClaim("aud", "'aud' is your site's URL")
	}
	if isEmptyClaim(c["sub"]) {
		return ErrMissingClaim("sub", "'sub' is your admin email as a mailto: link")
	}
	if draft == Draft02 {
		if sub, ok := c["sub"].(string); ok && !validSubject(sub) {
			return ErrInvalidSubject(sub)
		}
	}
	return nil
}

// validSubject reports whether sub is a contact reference a push service
// operator can use: a mailto: address or an HTTPS URL.
func validSubject(sub string) bool {
	return strings.HasPrefix(sub, "mailto:") || strings.HasPrefix(sub, "https://")
}

// isEmptyClaim reports whether a claim value counts as unset. Zero and
// empty-string values are treated the same as missing ones.
func isEmptyClaim(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case int:
		return t == 0
	case int64:
		return t == 0
	case float64:
		return t == 0
	default:
		return false
	}
}
