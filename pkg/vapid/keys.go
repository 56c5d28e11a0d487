package vapid

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"math/big"

	"github.com/go-jose/go-jose/v4"
)

// coordinateSize is the byte length of a P-256 coordinate and of each
// half of a raw signature.
const coordinateSize = 32

// rawPublicKeySize is the length of an uncompressed P-256 point:
// one tag byte (0x04) plus the X and Y coordinates.
const rawPublicKeySize = 1 + 2*coordinateSize

// Key holds a P-256 key pair for VAPID signing. The public key is always
// derived from the private scalar; the two cannot disagree.
type Key struct {
	private *ecdsa.PrivateKey
}

// GenerateKey generates a new P-256 key pair using cryptographically
// secure random number generation.
func GenerateKey() (*Key, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate P-256 key pair: %w", err)
	}
	return &Key{private: priv}, nil
}

// NewKey wraps an existing ECDSA private key.
//
// Returns a key-format error if the key is nil or not on the P-256 curve.
func NewKey(priv *ecdsa.PrivateKey) (*Key, error) {
	if priv == nil {
		return nil, ErrKeyFormat(fmt.Errorf("private key is nil"))
	}
	if priv.Curve != elliptic.P256() {
		return nil, ErrKeyFormat(fmt.Errorf("unsupported curve %q, only P-256 is allowed", priv.Curve.Params().Name))
	}
	return &Key{private: priv}, nil
}

// ParsePrivateKeyPEM parses a P-256 private key from PEM-encoded data.
// Accepts SEC1 format ("EC PRIVATE KEY" block).
//
// Returns a key-format error if the PEM is malformed or contains a
// non-P-256 key. Error messages never contain key material.
func ParsePrivateKeyPEM(data []byte) (*Key, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ErrKeyFormat(fmt.Errorf("no valid PEM data found"))
	}
	if block.Type != "EC PRIVATE KEY" {
		return nil, ErrKeyFormat(fmt.Errorf("unexpected PEM block type %q, expected EC PRIVATE KEY", block.Type))
	}
	priv, err := x509.ParseECPrivateKey(block.Bytes)
	if err != nil {
		return nil, ErrKeyFormat(fmt.Errorf("failed to parse EC private key: %w", err))
	}
	return NewKey(priv)
}

// ParsePrivateKeyDER parses a P-256 private key from a base64 SEC1 DER
// blob. Both the base64url and standard alphabets are accepted, padded
// or not.
func ParsePrivateKeyDER(s string) (*Key, error) {
	der, err := decodeKeyBase64(s)
	if err != nil {
		return nil, ErrKeyFormat(fmt.Errorf("failed to decode base64 key data: %w", err))
	}
	priv, err := x509.ParseECPrivateKey(der)
	if err != nil {
		return nil, ErrKeyFormat(fmt.Errorf("failed to parse EC private key: %w", err))
	}
	return NewKey(priv)
}

// Private returns the underlying ECDSA private key.
func (k *Key) Private() *ecdsa.PrivateKey {
	return k.private
}

// Public returns the derived ECDSA public key.
func (k *Key) Public() *ecdsa.PublicKey {
	return &k.private.PublicKey
}

// PrivatePEM encodes the private key as a SEC1 "EC PRIVATE KEY" PEM block.
func (k *Key) PrivatePEM() ([]byte, error) {
	der, err := x509.MarshalECPrivateKey(k.private)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal EC private key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der}), nil
}

// PublicPEM encodes the public key as a PKIX "PUBLIC KEY" PEM block.
func (k *Key) PublicPEM() ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(k.Public())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal PKIX public key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}

// PublicRaw returns the public key as a 65-byte uncompressed EC point
// (0x04 || X || Y). This is the byte form push services consume.
func (k *Key) PublicRaw() []byte {
	pub := k.Public()
	raw := make([]byte, rawPublicKeySize)
	raw[0] = 4
	pub.X.FillBytes(raw[1 : 1+coordinateSize])
	pub.Y.FillBytes(raw[1+coordinateSize:])
	return raw
}

// PublicRawString returns the base64url form of PublicRaw. This value is
// carried in the Crypto-Key p256ecdsa segment, the draft-02 k parameter,
// and the applicationServerKey field of a push subscription.
func (k *Key) PublicRawString() string {
	return base64URLEncode(k.PublicRaw())
}

// JWK returns the public key as a go-jose JSONWebKey for services and
// tooling that exchange keys as JWK documents.
func (k *Key) JWK() jose.JSONWebKey {
	return jose.JSONWebKey{
		Key:       k.Public(),
		Algorithm: string(jose.ES256),
		Use:       "sig",
	}
}

// ParsePublicKeyRaw parses a 65-byte uncompressed EC point into a P-256
// public key.
//
// Returns a key-format error if:
//   - the input is not exactly 65 bytes
//   - the leading tag byte is not 0x04
//   - the coordinates are not a point on the curve
func ParsePublicKeyRaw(raw []byte) (*ecdsa.PublicKey, error) {
	if len(raw) != rawPublicKeySize {
		return nil, ErrKeyFormat(fmt.Errorf("public key must be %d bytes, got %d", rawPublicKeySize, len(raw)))
	}
	if raw[0] != 4 {
		return nil, ErrKeyFormat(fmt.Errorf("public key is not an uncompressed EC point: leading byte %#02x, expected 0x04", raw[0]))
	}

	x := new(big.Int).SetBytes(raw[1 : 1+coordinateSize])
	y := new(big.Int).SetBytes(raw[1+coordinateSize:])
	if !elliptic.P256().IsOnCurve(x, y) {
		return nil, ErrKeyFormat(fmt.Errorf("public key point is not on the P-256 curve"))
	}

	return &ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y}, nil
}

// DecodePublicKey parses a base64url uncompressed EC point, the inverse
// of PublicRawString.
func DecodePublicKey(s string) (*ecdsa.PublicKey, error) {
	raw, err := base64URLDecode(s)
	if err != nil {
		return nil, ErrKeyFormat(fmt.Errorf("failed to decode base64 public key: %w", err))
	}
	return ParsePublicKeyRaw(raw)
}
