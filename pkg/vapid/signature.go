package vapid

import (
	"encoding/asn1"
	"fmt"
	"math/big"
)

// ecdsaSignature is the ASN.1 ECDSA-Sig-Value structure carried by DER
// signatures.
type ecdsaSignature struct {
	R, S *big.Int
}

// SignatureToDER converts a raw 64-byte (r || s) ECDSA signature into DER
// form. Input of any other length is returned unchanged: 64 bytes is the
// only shape that identifies the raw form, and callers route
// already-encoded material through the same path.
func SignatureToDER(sig []byte) []byte {
	if len(sig) != 2*coordinateSize {
		return sig
	}
	r := new(big.Int).SetBytes(sig[:coordinateSize])
	s := new(big.Int).SetBytes(sig[coordinateSize:])
	der, _ := asn1.Marshal(ecdsaSignature{R: r, S: s})
	return der
}

// SignatureFromDER converts a DER ECDSA signature into the raw 64-byte
// (r || s) form used in compact tokens. Each half is left-padded to 32
// bytes.
func SignatureFromDER(der []byte) ([]byte, error) {
	var sig ecdsaSignature
	rest, err := asn1.Unmarshal(der, &sig)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DER signature: %w", err)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("trailing data after DER signature")
	}
	if sig.R.Sign() < 0 || sig.S.Sign() < 0 {
		return nil, fmt.Errorf("DER signature contains negative integers")
	}
	if sig.R.BitLen() > 8*coordinateSize || sig.S.BitLen() > 8*coordinateSize {
		return nil, fmt.Errorf("DER signature integers are wider than %d bytes", coordinateSize)
	}

	raw := make([]byte, 2*coordinateSize)
	sig.R.FillBytes(raw[:coordinateSize])
	sig.S.FillBytes(raw[coordinateSize:])
	return raw, nil
}
