// Package microledger implements an append-only chain of signed blocks
// controlled by self-certifying identifiers.
//
// # Core Components
//
// Microledger: the ordered sequence of anchored blocks together with the
// seed authority that may sign the genesis block.
//
// Every block declares the Authority allowed to sign the block that follows
// it. Naming a different set of identifiers in the next block is how keys
// are rotated; there is no separate rotation operation.
//
// # Anchoring
//
// Extending the chain takes two calls, with signing done by the caller in
// between:
//
//	unsigned, err := m.PreAnchorBlock([]string{"hello"}, block.Single(next))
//	sig := ed25519.Sign(priv, unsigned)
//	signed, err := m.AnchorBlock(unsigned, []block.Signature{{Signer: current, Bytes: sig}})
//
// PreAnchorBlock never changes the ledger. AnchorBlock is atomic: either the
// block is fully verified and appended, or the ledger is untouched.
//
// # Security Properties
//
//   - Linkage: each block carries the digest of its predecessor
//   - Authority transfer: block n is signed by the authority declared in block n-1
//   - Tamper detection: blocks are re-parsed and must be canonical before verification
//
// A Microledger is safe for concurrent use; anchoring is serialized
// internally.
package microledger
