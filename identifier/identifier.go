package identifier

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"go.dedis.ch/kyber/v4/suites"
)

// Identifier is a self-certifying identifier: the CESR text form of a public
// key prefixed with the derivation code of its algorithm.
type Identifier string

// Code is a one-character derivation code denoting the key algorithm.
type Code string

const (
	// Ed25519NonTransferable is the default code used by Derive.
	Ed25519NonTransferable Code = "B"
	// Ed25519Transferable marks a key whose control may later be rotated.
	Ed25519Transferable Code = "D"
)

// KeySize is the size of a raw Ed25519 public key.
const KeySize = ed25519.PublicKeySize

// Errors returned when deriving or parsing identifiers.
var (
	ErrInvalidKeyLength    = errors.New("invalid public key length")
	ErrMalformedIdentifier = errors.New("malformed identifier")
	ErrUnknownCode         = errors.New("unknown derivation code")
	ErrInvalidKey          = errors.New("not an Ed25519 public key")
)

var suite suites.Suite = suites.MustFind("Ed25519")

// Prefix is the decoded form of an identifier.
type Prefix struct {
	Code Code
	Key  ed25519.PublicKey
}

func (c Code) known() bool {
	return c == Ed25519NonTransferable || c == Ed25519Transferable
}

// Derive returns the non-transferable Ed25519 identifier of publicKey.
// Derive and Resolve accept exactly the same keys.
func Derive(publicKey []byte) (Identifier, error) {
	return DeriveWithCode(Ed25519NonTransferable, publicKey)
}

// DeriveWithCode returns the identifier of publicKey under the given
// derivation code.
func DeriveWithCode(code Code, publicKey []byte) (Identifier, error) {
	if !code.known() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCode, string(code))
	}
	if len(publicKey) != KeySize {
		return "", fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKeyLength, KeySize, len(publicKey))
	}
	if err := checkPoint(publicKey); err != nil {
		return "", err
	}
	return Identifier(EncodePrimitive(string(code), publicKey)), nil
}

// MustDerive is like Derive but panics on error.
func MustDerive(publicKey []byte) Identifier {
	id, err := Derive(publicKey)
	if err != nil {
		panic(err)
	}
	return id
}

// Parse decodes an identifier back to its derivation code and public key.
// The key must be a valid point of the Ed25519 curve.
func Parse(id Identifier) (Prefix, error) {
	if len(id) == 0 {
		return Prefix{}, fmt.Errorf("%w: empty identifier", ErrMalformedIdentifier)
	}
	code := Code(id[:1])
	if !code.known() {
		return Prefix{}, fmt.Errorf("%w: unknown derivation code %q", ErrMalformedIdentifier, string(code))
	}
	raw, err := DecodePrimitive(string(code), string(id), KeySize)
	if err != nil {
		return Prefix{}, fmt.Errorf("%w: %v", ErrMalformedIdentifier, err)
	}
	if err := checkPoint(raw); err != nil {
		return Prefix{}, fmt.Errorf("%w: %w", ErrMalformedIdentifier, err)
	}
	return Prefix{Code: code, Key: ed25519.PublicKey(raw)}, nil
}

// checkPoint rejects keys that do not decode to a point of the curve.
func checkPoint(key []byte) error {
	if err := suite.Point().UnmarshalBinary(key); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return nil
}

// Resolve returns the public key an identifier was derived from.
func Resolve(id Identifier) (ed25519.PublicKey, error) {
	p, err := Parse(id)
	if err != nil {
		return nil, err
	}
	return p.Key, nil
}

// Length is the number of characters of an identifier.
func Length() int {
	return PrimitiveLength(string(Ed25519NonTransferable), KeySize)
}

// String returns the CESR text of id.
func (id Identifier) String() string {
	return string(id)
}
