package vapid

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// jwtHeader is the header segment of every VAPID token. The field order
// is part of the wire format, so the header is a byte literal rather
// than a marshaled struct.
const jwtHeader = `{"typ":"JWT","alg":"ES256"}`

// signToken builds and signs a compact ES256 token over the claim set.
// The signature is the raw 64-byte (r || s) form; all three segments are
// base64url without padding.
func signToken(key *Key, claims Claims) (string, error) {
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("failed to marshal claims: %w", err)
	}

	signingInput := base64URLEncode([]byte(jwtHeader)) + "." + base64URLEncode(payload)
	digest := sha256.Sum256([]byte(signingInput))

	r, s, err := ecdsa.Sign(rand.Reader, key.private, digest[:])
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	sig := make([]byte, 2*coordinateSize)
	r.FillBytes(sig[:coordinateSize])
	s.FillBytes(sig[coordinateSize:])

	return signingInput + "." + base64URLEncode(sig), nil
}

// Verify checks a compact token against a base64url raw public key (the
// PublicRawString form) and returns the decoded claim set.
//
// Everything before the last "." is the signing input; the remainder is
// the signature. A 64-byte signature verifies directly as (r, s) and any
// other length is treated as DER. Malformed tokens and keys produce an
// invalid-signature error wrapping the structural cause; a genuine
// mismatch wraps ErrVerificationFailed instead.
func Verify(token, publicKey string) (Claims, error) {
	pub, err := DecodePublicKey(publicKey)
	if err != nil {
		return nil, ErrInvalidSignature(err)
	}
	return verifyToken(token, pub)
}

// verifyToken checks a compact token against an already-parsed public key.
func verifyToken(token string, pub *ecdsa.PublicKey) (Claims, error) {
	idx := strings.LastIndex(token, ".")
	if idx < 0 {
		return nil, ErrInvalidSignature(fmt.Errorf("token has no signature segment"))
	}
	signingInput, sigPart := token[:idx], token[idx+1:]

	sig, err := base64URLDecode(sigPart)
	if err != nil {
		return nil, ErrInvalidSignature(fmt.Errorf("failed to decode signature: %w", err))
	}
	if len(sig) != 2*coordinateSize {
		if sig, err = SignatureFromDER(sig); err != nil {
			return nil, ErrInvalidSignature(err)
		}
	}
	r := new(big.Int).SetBytes(sig[:coordinateSize])
	s := new(big.Int).SetBytes(sig[coordinateSize:])

	digest := sha256.Sum256([]byte(signingInput))
	if !ecdsa.Verify(pub, digest[:], r, s) {
		return nil, ErrInvalidSignature(ErrVerificationFailed)
	}

	parts := strings.Split(signingInput, ".")
	if len(parts) != 2 {
		return nil, ErrInvalidSignature(fmt.Errorf("token has %d segments, expected 3", len(parts)+1))
	}
	payload, err := base64URLDecode(parts[1])
	if err != nil {
		return nil, ErrInvalidSignature(fmt.Errorf("failed to decode claims: %w", err))
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, ErrInvalidSignature(fmt.Errorf("failed to unmarshal claims: %w", err))
	}
	return claims, nil
}
