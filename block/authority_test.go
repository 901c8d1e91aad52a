package block

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/luca-patrignani/microledger/identifier"
)

func TestAuthorityValidate(t *testing.T) {
	a, _ := newIdentifier(t)
	b, _ := newIdentifier(t)
	c, _ := newIdentifier(t)

	tests := []struct {
		name      string
		authority Authority
		want      error
	}{
		{"single", Single(a), nil},
		{"all of", AllOf(a, b, c), nil},
		{"two of three", Threshold(2, a, b, c), nil},
		{"empty", Authority{Policy: PolicySingle, Threshold: 1}, ErrEmptyAuthoritySet},
		{"duplicate", AllOf(a, a), ErrDuplicateIdentifier},
		{"zero threshold", Threshold(0, a, b), ErrInvalidThreshold},
		{"threshold above size", Threshold(3, a, b), ErrInvalidThreshold},
		{"single with two ids", Authority{Policy: PolicySingle, Threshold: 1, Identifiers: []identifier.Identifier{a, b}}, ErrInvalidThreshold},
		{"all with wrong threshold", Authority{Policy: PolicyAll, Threshold: 1, Identifiers: []identifier.Identifier{a, b}}, ErrInvalidThreshold},
		{"unknown policy", Authority{Policy: "most", Threshold: 1, Identifiers: []identifier.Identifier{a}}, ErrUnknownPolicy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.authority.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuthoritySatisfied(t *testing.T) {
	a, _ := newIdentifier(t)
	b, _ := newIdentifier(t)
	c, _ := newIdentifier(t)
	outsider, _ := newIdentifier(t)
	ids := func(xs ...identifier.Identifier) []identifier.Identifier { return xs }

	tests := []struct {
		name      string
		authority Authority
		signers   []identifier.Identifier
		want      bool
	}{
		{"single signed", Single(a), ids(a), true},
		{"single unsigned", Single(a), ids(), false},
		{"single by outsider", Single(a), ids(outsider), false},
		{"all complete", AllOf(a, b, c), ids(c, b, a), true},
		{"all missing one", AllOf(a, b, c), ids(a, b), false},
		{"all repeated signer", AllOf(a, b), ids(a, a), false},
		{"threshold met", Threshold(2, a, b, c), ids(a, c), true},
		{"threshold exceeded", Threshold(2, a, b, c), ids(a, b, c), true},
		{"threshold short", Threshold(2, a, b, c), ids(b), false},
		{"threshold outsider ignored", Threshold(2, a, b, c), ids(b, outsider), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.authority.Satisfied(tt.signers))
		})
	}
}

func TestAuthorityEqualAndClone(t *testing.T) {
	a, _ := newIdentifier(t)
	b, _ := newIdentifier(t)

	orig := AllOf(a, b)
	clone := orig.Clone()
	assert.True(t, orig.Equal(clone))

	clone.Identifiers[0] = b
	assert.Equal(t, a, orig.Identifiers[0])
	assert.False(t, orig.Equal(clone))
	assert.False(t, AllOf(a, b).Equal(Threshold(2, a, b)))
	assert.True(t, orig.Contains(b))
}
