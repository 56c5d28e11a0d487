package vapid

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"
)

// Validate signs an opaque verification token issued by a push service
// dashboard and returns the base64url signature to paste back. The token
// is signed as raw bytes, not routed through the JWT path.
func (v *Vapid) Validate(token string) (string, error) {
	if v.key == nil {
		return "", ErrNoKey()
	}

	digest := sha256.Sum256([]byte(token))
	r, s, err := ecdsa.Sign(rand.Reader, v.key.private, digest[:])
	if err != nil {
		return "", fmt.Errorf("failed to sign verification token: %w", err)
	}

	sig := make([]byte, 2*coordinateSize)
	r.FillBytes(sig[:coordinateSize])
	s.FillBytes(sig[coordinateSize:])
	return base64URLEncode(sig), nil
}

// VerifyToken reports whether sig is this instance's signature over the
// verification token: the inverse of Validate. Both raw 64-byte and DER
// signatures are accepted, padded or unpadded base64url.
func (v *Vapid) VerifyToken(sig, token string) bool {
	if v.key == nil {
		return false
	}

	raw, err := base64URLDecode(sig)
	if err != nil {
		return false
	}
	if len(raw) != 2*coordinateSize {
		if raw, err = SignatureFromDER(raw); err != nil {
			return false
		}
	}
	r := new(big.Int).SetBytes(raw[:coordinateSize])
	s := new(big.Int).SetBytes(raw[coordinateSize:])

	digest := sha256.Sum256([]byte(token))
	return ecdsa.Verify(v.key.Public(), digest[:], r, s)
}
