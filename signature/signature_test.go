package signature

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luca-patrignani/microledger/identifier"
)

func TestVerifyValidSignature(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	id := identifier.MustDerive(pub)
	msg := []byte("hello")

	ok, err := Verify(msg, ed25519.Sign(priv, msg), id)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyTransferableIdentifier(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	id, err := identifier.DeriveWithCode(identifier.Ed25519Transferable, pub)
	require.NoError(t, err)
	msg := []byte("rotate")

	ok, err := Ed25519{}.Verify(msg, ed25519.Sign(priv, msg), id)
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestVerifyBadSignatureIsNotAnError checks that tampered messages and
// foreign keys yield false rather than an error.
func TestVerifyBadSignatureIsNotAnError(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	_, otherPriv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	id := identifier.MustDerive(pub)
	msg := []byte("hello")

	ok, err := Verify([]byte("hellO"), ed25519.Sign(priv, msg), id)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = Verify(msg, ed25519.Sign(otherPriv, msg), id)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = Verify(msg, make([]byte, ed25519.SignatureSize), id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyStructuralErrors(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	id := identifier.MustDerive(pub)
	msg := []byte("hello")
	sig := ed25519.Sign(priv, msg)

	_, err = Verify(msg, sig[:63], id)
	assert.ErrorIs(t, err, ErrInvalidSignatureLength)

	_, err = Verify(msg, append(sig, 0), id)
	assert.ErrorIs(t, err, ErrInvalidSignatureLength)

	_, err = Verify(msg, sig, "Xnot-an-identifier")
	assert.ErrorIs(t, err, identifier.ErrMalformedIdentifier)
}

func TestVerifierFunc(t *testing.T) {
	called := false
	var v Verifier = VerifierFunc(func(message, sig []byte, id identifier.Identifier) (bool, error) {
		called = true
		return true, nil
	})
	ok, err := v.Verify(nil, nil, "")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, called)
}
