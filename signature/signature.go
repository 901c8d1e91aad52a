// Package signature verifies detached signatures against self-certifying
// identifiers.
package signature

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/luca-patrignani/microledger/identifier"
)

// ErrInvalidSignatureLength is returned for signatures that are not 64 bytes.
var ErrInvalidSignatureLength = errors.New("invalid signature length")

// Verifier checks a detached signature over message against the key an
// identifier was derived from. A well-formed but wrong signature yields
// false and a nil error; errors are reserved for structurally invalid input.
type Verifier interface {
	Verify(message, sig []byte, id identifier.Identifier) (bool, error)
}

// Ed25519 verifies Ed25519 signatures.
type Ed25519 struct{}

// Verify implements Verifier.
func (Ed25519) Verify(message, sig []byte, id identifier.Identifier) (bool, error) {
	pub, err := identifier.Resolve(id)
	if err != nil {
		return false, err
	}
	if len(sig) != ed25519.SignatureSize {
		return false, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSignatureLength, ed25519.SignatureSize, len(sig))
	}
	return ed25519.Verify(pub, message, sig), nil
}

// Default is the verifier used when none is configured.
var Default Verifier = Ed25519{}

// Verify checks sig with the default verifier.
func Verify(message, sig []byte, id identifier.Identifier) (bool, error) {
	return Default.Verify(message, sig, id)
}

// VerifierFunc adapts a function to the Verifier interface.
type VerifierFunc func(message, sig []byte, id identifier.Identifier) (bool, error)

// Verify implements Verifier.
func (f VerifierFunc) Verify(message, sig []byte, id identifier.Identifier) (bool, error) {
	return f(message, sig, id)
}
