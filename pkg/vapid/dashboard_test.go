package vapid

import (
	"encoding/base64"
	"testing"
)

func TestValidateVerifyTokenRoundTrip(t *testing.T) {
	t.Parallel()
	v := newTestVapid(t)
	const token = "1gRhRLWqxp4k2s3BUf1lIcYU6M2tZVZXf7XuQgPgtnE"

	sig, err := v.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	raw, err := base64URLDecode(sig)
	if err != nil {
		t.Fatalf("signature is not base64url: %v", err)
	}
	if len(raw) != 64 {
		t.Errorf("signature length = %d, want 64", len(raw))
	}

	if !v.VerifyToken(sig, token) {
		t.Error("VerifyToken rejected our own signature")
	}
}

func TestVerifyTokenRejectsMismatch(t *testing.T) {
	t.Parallel()
	v := newTestVapid(t)

	sig, err := v.Validate("dashboard challenge one")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	t.Log("Signature over one token must not verify another")
	if v.VerifyToken(sig, "dashboard challenge two") {
		t.Error("VerifyToken accepted signature for a different token")
	}

	t.Log("A different instance's signature must not verify either")
	other := newTestVapid(t)
	if other.VerifyToken(sig, "dashboard challenge one") {
		t.Error("VerifyToken accepted a foreign key's signature")
	}
}

func TestVerifyTokenSignatureEncodings(t *testing.T) {
	t.Parallel()
	v := newTestVapid(t)
	const token = "encoding tolerance check"

	sig, err := v.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	raw, err := base64URLDecode(sig)
	if err != nil {
		t.Fatalf("decode signature: %v", err)
	}

	tests := []struct {
		name string
		sig  string
		want bool
	}{
		{"unpadded", sig, true},
		{"padded", base64.URLEncoding.EncodeToString(raw), true},
		{"der", base64URLEncode(SignatureToDER(raw)), true},
		{"not_base64", "!!!", false},
		{"wrong_length", base64URLEncode(raw[:40]), false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := v.VerifyToken(tt.sig, token); got != tt.want {
				t.Errorf("VerifyToken = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateWithoutKey(t *testing.T) {
	t.Parallel()
	v := New()

	_, err := v.Validate("some token")
	if err == nil {
		t.Fatal("Validate without key material should fail")
	}
	if !IsNoKey(err) {
		t.Errorf("error code = %q, want %q", ErrorCode(err), ErrCodeNoKey)
	}

	if v.VerifyToken("c2ln", "some token") {
		t.Error("VerifyToken without key material should report false")
	}
}
