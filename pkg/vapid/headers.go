package vapid

import (
	"fmt"
	"strings"
	"time"
)

// Draft selects which revision of the VAPID draft the emitted headers
// follow.
type Draft int

const (
	// Draft01 sends the token as "Authorization: Bearer" with the public
	// key in a separate Crypto-Key header.
	Draft01 Draft = iota + 1
	// Draft02 sends token and key together in a single
	// "Authorization: vapid" header.
	Draft02
)

// String returns the two-digit revision name.
func (d Draft) String() string {
	switch d {
	case Draft01:
		return "01"
	case Draft02:
		return "02"
	default:
		return fmt.Sprintf("Draft(%d)", int(d))
	}
}

// ParseDraft maps a revision string to a Draft.
func ParseDraft(s string) (Draft, error) {
	switch s {
	case "01", "1":
		return Draft01, nil
	case "02", "2":
		return Draft02, nil
	default:
		return 0, fmt.Errorf("unknown VAPID draft revision %q", s)
	}
}

// Headers holds the HTTP headers to attach to a push request.
type Headers map[string]string

// DefaultCryptoKeySeparator joins an existing Crypto-Key value with the
// appended p256ecdsa segment. Servers speaking the earliest revision of
// the protocol expect ";" instead; select that explicitly with
// WithCryptoKeySeparator rather than guessing from the existing value.
const DefaultCryptoKeySeparator = ","

// Vapid signs claim sets into push request headers. Configuration is
// fixed at construction; key material is attached at construction or
// generated later with EnsureKey.
type Vapid struct {
	key       *Key
	draft     Draft
	separator string
}

// Option configures a Vapid instance.
type Option func(*Vapid)

// WithKey attaches existing key material.
func WithKey(key *Key) Option {
	return func(v *Vapid) {
		v.key = key
	}
}

// WithDraft selects the draft revision for emitted headers.
func WithDraft(d Draft) Option {
	return func(v *Vapid) {
		v.draft = d
	}
}

// WithCryptoKeySeparator sets the string joining an existing Crypto-Key
// value and the appended p256ecdsa segment under draft 01.
func WithCryptoKeySeparator(sep string) Option {
	return func(v *Vapid) {
		v.separator = sep
	}
}

// New creates a Vapid instance. The default configuration emits draft-01
// headers with the "," Crypto-Key separator and carries no key material.
func New(opts ...Option) *Vapid {
	v := &Vapid{
		draft:     Draft01,
		separator: DefaultCryptoKeySeparator,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Key returns the attached key material, or nil when none is set.
func (v *Vapid) Key() *Key {
	return v.key
}

// Draft returns the configured draft revision.
func (v *Vapid) Draft() Draft {
	return v.draft
}

// EnsureKey generates and attaches a new key pair when none is set.
// Existing key material is never replaced. Not safe to call concurrently
// with Sign.
func (v *Vapid) EnsureKey() (*Key, error) {
	if v.key != nil {
		return v.key, nil
	}
	key, err := GenerateKey()
	if err != nil {
		return nil, err
	}
	v.key = key
	return key, nil
}

// Sign validates the claim set and produces the push request headers for
// the configured draft revision.
//
// exp is filled with a 24 hour expiry when absent; the caller's map is
// left untouched. Returns a no-key error when no key material is
// attached and a missing-claim error when a required claim is absent.
func (v *Vapid) Sign(claims Claims) (Headers, error) {
	return v.sign(claims, "")
}

// SignWithCryptoKey signs like Sign and joins the p256ecdsa segment onto
// an existing Crypto-Key value, such as the dh parameter from payload
// encryption. Only meaningful under draft 01: draft 02 emits no
// Crypto-Key header, so a non-empty existing value is rejected there.
func (v *Vapid) SignWithCryptoKey(claims Claims, existing string) (Headers, error) {
	return v.sign(claims, existing)
}

func (v *Vapid) sign(claims Claims, existingCryptoKey string) (Headers, error) {
	if v.key == nil {
		return nil, ErrNoKey()
	}

	filled := claims.withDefaultExpiry(time.Now())
	if err := filled.validate(v.draft); err != nil {
		return nil, err
	}

	token, err := signToken(v.key, filled)
	if err != nil {
		return nil, err
	}
	publicKey := v.key.PublicRawString()

	if v.draft == Draft02 {
		if existingCryptoKey != "" {
			return nil, fmt.Errorf("draft-02 headers carry no Crypto-Key to merge an existing value into")
		}
		return Headers{
			"Authorization": fmt.Sprintf("vapid t=%s,k=%s", token, publicKey),
		}, nil
	}

	cryptoKey := "p256ecdsa=" + publicKey
	if existingCryptoKey != "" {
		cryptoKey = existingCryptoKey + v.separator + cryptoKey
	}
	return Headers{
		"Authorization": "Bearer " + strings.TrimRight(token, "="),
		"Crypto-Key":    cryptoKey,
	}, nil
}
