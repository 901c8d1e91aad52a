package microledger

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/luca-patrignani/microledger/block"
)

// Load rebuilds a ledger from a concatenated stream of signed blocks by
// anchoring them one by one. The options are those of New; without a seed
// the signers of the first block become the seed.
func Load(stream []byte, opts ...option) (*Microledger, error) {
	m, err := New(opts...)
	if err != nil {
		return nil, err
	}
	blocks, err := block.ParseStream(stream)
	if err != nil {
		return nil, err
	}
	for i, b := range blocks {
		if err := m.Anchor(b); err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
	}
	return m, nil
}

// Verify re-checks the whole chain: sequence numbers, digest linkage,
// authority transfer and every signature. All broken blocks are reported.
func (m *Microledger) Verify() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.blocks) == 0 {
		return errors.New("empty microledger")
	}

	var result error
	for i := range m.blocks {
		var prev *block.Signed
		if i > 0 {
			prev = &m.blocks[i-1]
		}
		if _, err := m.authorize(m.blocks[i], i, prev, m.seed); err != nil {
			result = multierr.Append(result, fmt.Errorf("block %d invalid: %w", i, err))
		}
	}
	return result
}
