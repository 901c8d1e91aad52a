package block

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"

	"lukechampine.com/blake3"

	"github.com/luca-patrignani/microledger/identifier"
)

// Algorithm is the CESR derivation code of a digest algorithm.
type Algorithm string

const (
	// Blake3_256 is the default digest.
	Blake3_256 Algorithm = "E"
	// SHA2_256 is SHA-256.
	SHA2_256 Algorithm = "I"
)

const digestSize = 32

// ErrUnknownDigest is returned for a digest code other than E or I.
var ErrUnknownDigest = errors.New("unknown digest algorithm")

// Digest is the CESR text form of a block digest. The empty digest is the
// prior-digest of the genesis block.
type Digest string

func (alg Algorithm) sum(data []byte) ([]byte, error) {
	switch alg {
	case Blake3_256:
		sum := blake3.Sum256(data)
		return sum[:], nil
	case SHA2_256:
		sum := sha256.Sum256(data)
		return sum[:], nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDigest, string(alg))
	}
}

// ComputeDigest hashes data with alg.
func ComputeDigest(alg Algorithm, data []byte) (Digest, error) {
	sum, err := alg.sum(data)
	if err != nil {
		return "", err
	}
	return Digest(identifier.EncodePrimitive(string(alg), sum)), nil
}

// Algorithm returns the algorithm the digest was computed with.
func (d Digest) Algorithm() (Algorithm, error) {
	if d == "" {
		return "", fmt.Errorf("%w: empty digest", ErrUnknownDigest)
	}
	alg := Algorithm(d[:1])
	if _, err := alg.sum(nil); err != nil {
		return "", err
	}
	if _, err := identifier.DecodePrimitive(string(alg), string(d), digestSize); err != nil {
		return "", err
	}
	return alg, nil
}

// Verify reports whether d is the digest of data.
func (d Digest) Verify(data []byte) bool {
	alg, err := d.Algorithm()
	if err != nil {
		return false
	}
	other, err := ComputeDigest(alg, data)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(d), []byte(other)) == 1
}

// String returns the CESR text of d.
func (d Digest) String() string {
	return string(d)
}
