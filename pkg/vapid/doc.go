// Package vapid implements VAPID (Voluntary Application Server
// Identification) authentication for Web Push.
//
// An application server proves its identity to a push service by signing
// a small JWT claim set with a P-256 key and attaching the result to each
// push message request. Subscriptions created with an applicationServerKey
// are then only deliverable by the holder of the matching private key.
//
// # Headers
//
// Two draft revisions of the header format are in circulation. Draft 01
// sends the token and key separately:
//
//	Authorization: Bearer <JWT>
//	Crypto-Key: p256ecdsa=<base64url public key>
//
// Draft 02 folds both into a single header:
//
//	Authorization: vapid t=<JWT>,k=<base64url public key>
//
// # Usage
//
// Generate a key once, persist it, and sign claim sets per push origin:
//
//	key, err := vapid.GenerateKey()
//	v := vapid.New(vapid.WithKey(key))
//	headers, err := v.Sign(vapid.Claims{
//		"aud": "https://push.services.mozilla.com",
//		"sub": "mailto:admin@example.com",
//	})
//
// The exp claim is filled with a 24 hour expiry when absent. Claim sets
// are validated before signing: sub is always required, aud only under
// draft 01.
package vapid
