package microledger

import (
	"io"
	"log/slog"

	"github.com/luca-patrignani/microledger/block"
	"github.com/luca-patrignani/microledger/identifier"
	"github.com/luca-patrignani/microledger/signature"
)

type config struct {
	seed     *block.Authority
	verifier signature.Verifier
	digest   block.Algorithm
	logger   *slog.Logger
}

type option func(config) config

func defaultConfig() config {
	return config{
		verifier: signature.Default,
		digest:   block.Blake3_256,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithSeed fixes the authority allowed to sign the genesis block. Without a
// seed, whoever validly signs the genesis block becomes the seed.
func WithSeed(authority block.Authority) option {
	return func(c config) config {
		seed := authority.Clone()
		c.seed = &seed
		return c
	}
}

// WithSeedIdentifiers is WithSeed for a single identifier, or for a set of
// identifiers that must all sign the genesis block.
func WithSeedIdentifiers(ids ...identifier.Identifier) option {
	if len(ids) == 1 {
		return WithSeed(block.Single(ids[0]))
	}
	return WithSeed(block.AllOf(ids...))
}

// WithVerifier replaces the Ed25519 signature verifier.
func WithVerifier(v signature.Verifier) option {
	return func(c config) config {
		c.verifier = v
		return c
	}
}

// WithDigestAlgorithm selects the digest used to link new blocks.
func WithDigestAlgorithm(alg block.Algorithm) option {
	return func(c config) config {
		c.digest = alg
		return c
	}
}

// WithLogger sets the logger anchors and rejections are reported to.
func WithLogger(logger *slog.Logger) option {
	return func(c config) config {
		c.logger = logger
		return c
	}
}
