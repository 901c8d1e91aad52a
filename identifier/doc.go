// Package identifier implements self-certifying identifiers derived from
// Ed25519 public keys, together with the small set of CESR text primitives
// the ledger exchanges (signatures and group counters).
//
// An identifier is the public key itself, rendered as URL-safe base64 with a
// one-character derivation code in front:
//
//	B  Ed25519 non-transferable key (44 characters)
//	D  Ed25519 transferable key     (44 characters)
//
// Because the encoding is injective, possession of the private key proves
// control of the identifier without any registry lookup. Derive and Resolve
// are pure functions and safe for concurrent use.
package identifier
