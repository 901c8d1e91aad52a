package microledger

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/luca-patrignani/microledger/block"
	"github.com/luca-patrignani/microledger/identifier"
	"github.com/luca-patrignani/microledger/signature"
)

// Errors returned when a block is refused.
var (
	ErrUnauthorizedSigner          = errors.New("signer is not in the current authority set")
	ErrInsufficientSignatures      = errors.New("insufficient signatures")
	ErrSignatureVerificationFailed = errors.New("signature verification failed")
	ErrChainLinkageMismatch        = errors.New("block does not extend the current tip")
	ErrDuplicateSigner             = errors.New("duplicate signer")
)

// State is the lifecycle stage of a ledger.
type State int

const (
	// Empty means no block has been anchored yet.
	Empty State = iota
	// Active means the genesis block has been anchored.
	Active
)

// String returns "empty" or "active".
func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "empty"
}

// Microledger is an append-only chain of signed blocks. Each block names the
// authority allowed to sign the block after it, so rotating keys is the same
// operation as recording events.
type Microledger struct {
	mu       sync.RWMutex
	blocks   []block.Signed
	encoded  []string
	seed     *block.Authority
	verifier signature.Verifier
	digest   block.Algorithm
	log      *slog.Logger
}

// New creates an empty ledger.
func New(opts ...option) (*Microledger, error) {
	c := defaultConfig()
	for _, opt := range opts {
		c = opt(c)
	}
	if c.seed != nil {
		if err := c.seed.Validate(); err != nil {
			return nil, fmt.Errorf("invalid seed: %w", err)
		}
	}
	if _, err := block.ComputeDigest(c.digest, nil); err != nil {
		return nil, err
	}
	if c.verifier == nil {
		return nil, errors.New("nil verifier")
	}
	if c.logger == nil {
		return nil, errors.New("nil logger")
	}
	return &Microledger{
		blocks:   make([]block.Signed, 0),
		seed:     c.seed,
		verifier: c.verifier,
		digest:   c.digest,
		log:      c.logger,
	}, nil
}

// PreAnchorBlock drafts the next block and returns the canonical bytes the
// current authority has to sign. The ledger is not modified.
func (m *Microledger) PreAnchorBlock(events []string, next block.Authority) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var previous block.Digest
	if n := len(m.blocks); n > 0 {
		d, err := m.blocks[n-1].Block.Digest(m.digest)
		if err != nil {
			return nil, err
		}
		previous = d
	}
	b, err := block.BuildUnsigned(uint64(len(m.blocks)), events, next, previous)
	if err != nil {
		return nil, err
	}
	return b.CanonicalBytes(), nil
}

// AnchorBlock verifies the signatures over a pre-anchored block and, if the
// current authority is satisfied, appends it. It returns the signed block
// serialization. On any error the ledger is left untouched.
func (m *Microledger) AnchorBlock(unsigned []byte, sigs []block.Signature) ([]byte, error) {
	b, err := block.Parse(unsigned)
	if err != nil {
		return nil, err
	}
	encoded, err := m.anchor(block.AttachSignatures(b, sigs))
	if err != nil {
		return nil, err
	}
	return []byte(encoded), nil
}

// Anchor appends an already signed block, applying the same checks as
// AnchorBlock. It is used to replay a chain received from elsewhere.
func (m *Microledger) Anchor(signed block.Signed) error {
	b, err := block.Parse(signed.Block.CanonicalBytes())
	if err != nil {
		return err
	}
	_, err = m.anchor(block.AttachSignatures(b, signed.Signatures))
	return err
}

func (m *Microledger) anchor(signed block.Signed) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var prev *block.Signed
	if n := len(m.blocks); n > 0 {
		prev = &m.blocks[n-1]
	}
	authority, err := m.authorize(signed, len(m.blocks), prev, m.seed)
	if err != nil {
		m.log.Warn("rejected block", "sequence", signed.Block.Sequence, "signers", len(signed.Signatures), "err", err)
		return "", err
	}
	encoded, err := signed.Encode()
	if err != nil {
		return "", err
	}

	if m.seed == nil {
		m.seed = &authority
		m.log.Info("seed authority established", "policy", authority.Policy, "identifiers", len(authority.Identifiers))
	}
	m.blocks = append(m.blocks, signed)
	m.encoded = append(m.encoded, string(encoded))
	m.log.Info("anchored block", "sequence", signed.Block.Sequence, "events", len(signed.Block.Events), "signers", len(signed.Signatures))
	return string(encoded), nil
}

// authorize checks that signed may be the block at position index, given
// its predecessor (nil for genesis) and the seed authority (nil if not yet
// established). It returns the authority the block was checked against.
func (m *Microledger) authorize(signed block.Signed, index int, prev *block.Signed, seed *block.Authority) (block.Authority, error) {
	b := signed.Block
	if b.Sequence != uint64(index) {
		return block.Authority{}, fmt.Errorf("%w: expected sequence %d, got %d", ErrChainLinkageMismatch, index, b.Sequence)
	}

	var authority block.Authority
	switch {
	case prev != nil:
		if !b.Previous.Verify(prev.Block.CanonicalBytes()) {
			return block.Authority{}, fmt.Errorf("%w: previous digest %q does not match block %d", ErrChainLinkageMismatch, b.Previous, index-1)
		}
		authority = prev.Block.Authority
	case b.Previous != "":
		return block.Authority{}, fmt.Errorf("%w: genesis block references %q", ErrChainLinkageMismatch, b.Previous)
	case seed != nil:
		authority = *seed
	default:
		authority = implicitSeed(signed.Signers())
	}

	if len(signed.Signatures) == 0 {
		return block.Authority{}, fmt.Errorf("%w: block %d is unsigned", ErrInsufficientSignatures, index)
	}
	seen := make(map[identifier.Identifier]bool, len(signed.Signatures))
	for _, sig := range signed.Signatures {
		if seen[sig.Signer] {
			return block.Authority{}, fmt.Errorf("%w: %s", ErrDuplicateSigner, sig.Signer)
		}
		seen[sig.Signer] = true
		if !authority.Contains(sig.Signer) {
			return block.Authority{}, fmt.Errorf("%w: %s", ErrUnauthorizedSigner, sig.Signer)
		}
	}
	if !authority.Satisfied(signed.Signers()) {
		return block.Authority{}, fmt.Errorf("%w: %d of %d required", ErrInsufficientSignatures, len(signed.Signatures), authority.Required())
	}

	message := b.CanonicalBytes()
	for _, sig := range signed.Signatures {
		ok, err := m.verifier.Verify(message, sig.Bytes, sig.Signer)
		if err != nil {
			return block.Authority{}, fmt.Errorf("%w: %s: %w", ErrSignatureVerificationFailed, sig.Signer, err)
		}
		if !ok {
			return block.Authority{}, fmt.Errorf("%w: %s", ErrSignatureVerificationFailed, sig.Signer)
		}
	}
	return authority.Clone(), nil
}

func implicitSeed(signers []identifier.Identifier) block.Authority {
	if len(signers) == 1 {
		return block.Single(signers[0])
	}
	return block.AllOf(signers...)
}

// Blocks returns the signed serializations of the anchored blocks in chain
// order. The returned slice is a copy.
func (m *Microledger) Blocks() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, len(m.encoded))
	copy(out, m.encoded)
	return out
}

// SignedBlocks returns deep copies of the anchored blocks.
func (m *Microledger) SignedBlocks() []block.Signed {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]block.Signed, len(m.blocks))
	for i, b := range m.blocks {
		out[i] = b.Clone()
	}
	return out
}

// Stream returns the whole ledger as one CESR stream, readable by Load.
func (m *Microledger) Stream() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []byte
	for _, e := range m.encoded {
		out = append(out, e...)
	}
	return out
}

// Len returns the number of anchored blocks.
func (m *Microledger) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blocks)
}

// State reports whether the ledger holds any block.
func (m *Microledger) State() State {
	if m.Len() == 0 {
		return Empty
	}
	return Active
}

// Tip returns the latest anchored block.
func (m *Microledger) Tip() (block.Signed, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.blocks) == 0 {
		return block.Signed{}, false
	}
	return m.blocks[len(m.blocks)-1].Clone(), true
}

// GetByIndex returns the anchored block at position index.
func (m *Microledger) GetByIndex(index int) (block.Signed, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if index < 0 || index >= len(m.blocks) {
		return block.Signed{}, fmt.Errorf("index %d out of range", index)
	}
	return m.blocks[index].Clone(), nil
}

// CurrentAuthority returns the authority allowed to sign the next block. It
// reports false for an empty ledger without a seed, where any signer may
// establish the chain.
func (m *Microledger) CurrentAuthority() (block.Authority, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if n := len(m.blocks); n > 0 {
		return m.blocks[n-1].Block.Authority.Clone(), true
	}
	if m.seed != nil {
		return m.seed.Clone(), true
	}
	return block.Authority{}, false
}

// Seed returns the genesis authority, if known.
func (m *Microledger) Seed() (block.Authority, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.seed == nil {
		return block.Authority{}, false
	}
	return m.seed.Clone(), true
}
