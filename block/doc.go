// Package block implements the data model of a microledger entry.
//
// # Core Components
//
// Block: sequence number, ordered events, the Authority allowed to sign the
// next block, and the Digest of the previous block.
//
// Authority: a tagged policy (single, all, threshold) over a set of
// identifiers. Satisfied is a pure function over the policy.
//
// Signed: a Block plus the signatures that anchored it.
//
// # Serialization
//
// CanonicalBytes is the exact byte sequence that is signed and hashed. It is
// compact JSON with a fixed field order, so independent implementations
// reproduce it byte for byte. Parse only accepts canonical input.
//
// A signed block is encoded as a CESR stream fragment: the canonical JSON
// followed by a -C counter and (identifier, signature) couples. Signed blocks
// can be concatenated and read back with ParseStream.
package block
