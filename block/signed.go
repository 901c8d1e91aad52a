package block

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/luca-patrignani/microledger/identifier"
)

// receiptCouples is the CESR counter code of a group of
// (identifier, signature) couples.
const receiptCouples = "-C"

const countWidth = 2

// Signature is a detached signature over a block's canonical bytes,
// attributed to the identifier that produced it.
type Signature struct {
	Signer identifier.Identifier
	Bytes  []byte
}

// Signed is an anchored block: the block and the signatures proving its
// authorization, in the order they were supplied.
type Signed struct {
	Block      Block
	Signatures []Signature
}

// AttachSignatures returns a signed copy of b. It does not verify anything;
// deciding whether the signatures are acceptable is up to the ledger.
func AttachSignatures(b Block, sigs []Signature) Signed {
	out := make([]Signature, len(sigs))
	for i, s := range sigs {
		out[i] = Signature{Signer: s.Signer, Bytes: append([]byte(nil), s.Bytes...)}
	}
	return Signed{Block: b.Clone(), Signatures: out}
}

// Signers lists the identifiers that signed s.
func (s Signed) Signers() []identifier.Identifier {
	ids := make([]identifier.Identifier, len(s.Signatures))
	for i, sig := range s.Signatures {
		ids[i] = sig.Signer
	}
	return ids
}

// Clone returns a deep copy of s.
func (s Signed) Clone() Signed {
	return AttachSignatures(s.Block, s.Signatures)
}

// Encode renders s as a CESR stream fragment: the canonical block followed
// by a -C group of (identifier, signature) couples.
func (s Signed) Encode() ([]byte, error) {
	count, err := identifier.EncodeCount(len(s.Signatures), countWidth)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Write(s.Block.CanonicalBytes())
	buf.WriteString(receiptCouples)
	buf.WriteString(count)
	for _, sig := range s.Signatures {
		text, err := identifier.EncodeSignature(sig.Bytes)
		if err != nil {
			return nil, fmt.Errorf("signature of %s: %w", sig.Signer, err)
		}
		buf.WriteString(string(sig.Signer))
		buf.WriteString(text)
	}
	return buf.Bytes(), nil
}

// ParseSigned decodes exactly one signed block.
func ParseSigned(data []byte) (Signed, error) {
	s, rest, err := parseSigned(data)
	if err != nil {
		return Signed{}, err
	}
	if len(rest) != 0 {
		return Signed{}, fmt.Errorf("%w: %d trailing bytes after signed block", ErrMalformedBlock, len(rest))
	}
	return s, nil
}

// ParseStream decodes a concatenation of signed blocks, as returned one by
// one by a ledger, in stream order.
func ParseStream(data []byte) ([]Signed, error) {
	var out []Signed
	for len(data) > 0 {
		s, rest, err := parseSigned(data)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", len(out), err)
		}
		out = append(out, s)
		data = rest
	}
	return out, nil
}

func parseSigned(data []byte) (Signed, []byte, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return Signed{}, nil, fmt.Errorf("%w: %v", ErrMalformedBlock, err)
	}
	end := int(dec.InputOffset())
	b, err := Parse(data[:end])
	if err != nil {
		return Signed{}, nil, err
	}

	rest := data[end:]
	header := len(receiptCouples) + countWidth
	if len(rest) < header || string(rest[:len(receiptCouples)]) != receiptCouples {
		return Signed{}, nil, fmt.Errorf("%w: missing signature group", ErrMalformedBlock)
	}
	n, err := identifier.DecodeCount(string(rest[len(receiptCouples):header]))
	if err != nil {
		return Signed{}, nil, fmt.Errorf("%w: %v", ErrMalformedBlock, err)
	}
	rest = rest[header:]

	idLen, sigLen := identifier.Length(), identifier.SignatureLength()
	if len(rest) < n*(idLen+sigLen) {
		return Signed{}, nil, fmt.Errorf("%w: signature group truncated", ErrMalformedBlock)
	}
	sigs := make([]Signature, n)
	for i := range sigs {
		id := identifier.Identifier(rest[:idLen])
		if _, err := identifier.Parse(id); err != nil {
			return Signed{}, nil, fmt.Errorf("%w: signer %d: %w", ErrMalformedBlock, i, err)
		}
		raw, err := identifier.DecodeSignature(string(rest[idLen : idLen+sigLen]))
		if err != nil {
			return Signed{}, nil, fmt.Errorf("%w: signature %d: %v", ErrMalformedBlock, i, err)
		}
		sigs[i] = Signature{Signer: id, Bytes: raw}
		rest = rest[idLen+sigLen:]
	}
	return Signed{Block: b, Signatures: sigs}, rest, nil
}
