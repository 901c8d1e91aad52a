package identifier

import (
	"bytes"
	"crypto/ed25519"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveAndResolve(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	id, err := Derive(pub)
	require.NoError(t, err)
	assert.Len(t, string(id), 44)
	assert.Equal(t, "B", string(id[:1]))
	assert.Equal(t, Length(), len(id))

	key, err := Resolve(id)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(pub, key))
}

func TestDeriveIsDeterministic(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	assert.Equal(t, MustDerive(pub), MustDerive(pub))
}

// TestDeriveIsInjective checks that distinct keys never collide.
func TestDeriveIsInjective(t *testing.T) {
	seen := make(map[Identifier]bool)
	for i := 0; i < 64; i++ {
		pub, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		id := MustDerive(pub)
		require.False(t, seen[id], "identifier collision for %s", id)
		seen[id] = true
	}
}

func TestDeriveWithCode(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	nt, err := DeriveWithCode(Ed25519NonTransferable, pub)
	require.NoError(t, err)
	tr, err := DeriveWithCode(Ed25519Transferable, pub)
	require.NoError(t, err)
	assert.NotEqual(t, nt, tr)
	assert.Equal(t, nt[1:], tr[1:])

	p, err := Parse(tr)
	require.NoError(t, err)
	assert.Equal(t, Ed25519Transferable, p.Code)
	assert.True(t, bytes.Equal(pub, p.Key))

	_, err = DeriveWithCode("Z", pub)
	assert.ErrorIs(t, err, ErrUnknownCode)
}

func TestDeriveInvalidKeyLength(t *testing.T) {
	for _, size := range []int{0, 31, 33, 64} {
		_, err := Derive(make([]byte, size))
		assert.ErrorIs(t, err, ErrInvalidKeyLength, "size %d", size)
	}
}

// TestDeriveRejectsOffCurveKey checks that a key Resolve would refuse is
// refused by Derive too.
func TestDeriveRejectsOffCurveKey(t *testing.T) {
	key := bytes.Repeat([]byte{0x02}, KeySize)

	_, err := Derive(key)
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = DeriveWithCode(Ed25519Transferable, key)
	assert.ErrorIs(t, err, ErrInvalidKey)
	assert.Panics(t, func() { MustDerive(key) })

	forged := Identifier(EncodePrimitive(string(Ed25519NonTransferable), key))
	_, err = Resolve(forged)
	assert.ErrorIs(t, err, ErrMalformedIdentifier)
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestResolveMalformed(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	id := string(MustDerive(pub))

	tests := []struct {
		name string
		id   Identifier
	}{
		{"empty", ""},
		{"unknown code", Identifier("X" + id[1:])},
		{"too short", Identifier(id[:43])},
		{"too long", Identifier(id + "A")},
		{"invalid base64", Identifier("B" + strings.Repeat("*", 43))},
		{"signature code", Identifier("0B" + id[2:])},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.id)
			assert.ErrorIs(t, err, ErrMalformedIdentifier)
		})
	}
}

func TestSignatureRoundTrip(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	sig := ed25519.Sign(priv, []byte("hello"))

	text, err := EncodeSignature(sig)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, SignatureCode))
	assert.Len(t, text, SignatureLength())
	assert.Equal(t, 88, SignatureLength())

	raw, err := DecodeSignature(text)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(sig, raw))

	_, err = EncodeSignature(sig[:10])
	assert.ErrorIs(t, err, ErrMalformedPrimitive)
	_, err = DecodeSignature("1B" + text[2:])
	assert.ErrorIs(t, err, ErrMalformedPrimitive)
}

func TestCount(t *testing.T) {
	tests := []struct {
		n    int
		text string
	}{
		{0, "AA"},
		{1, "AB"},
		{63, "A_"},
		{64, "BA"},
		{4095, "__"},
	}
	for _, tt := range tests {
		got, err := EncodeCount(tt.n, 2)
		require.NoError(t, err)
		assert.Equal(t, tt.text, got)

		n, err := DecodeCount(tt.text)
		require.NoError(t, err)
		assert.Equal(t, tt.n, n)
	}

	_, err := EncodeCount(4096, 2)
	assert.ErrorIs(t, err, ErrMalformedPrimitive)
	_, err = DecodeCount("A*")
	assert.ErrorIs(t, err, ErrMalformedPrimitive)
}
