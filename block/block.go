package block

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/luca-patrignani/microledger/identifier"
)

// Errors returned when building or parsing blocks.
var (
	ErrEmptyEventSet  = errors.New("empty event set")
	ErrMalformedBlock = errors.New("malformed block")
	ErrNonCanonical   = errors.New("block serialization is not canonical")
)

// Block is one entry of a microledger. Authority names who may sign the
// next block; Previous is the digest of the prior block and is empty only
// for the genesis block.
type Block struct {
	Sequence  uint64
	Events    []string
	Authority Authority
	Previous  Digest
}

// BuildUnsigned constructs a block ready to be signed. Events are opaque and
// kept byte for byte, but must be valid UTF-8.
func BuildUnsigned(sequence uint64, events []string, authority Authority, previous Digest) (Block, error) {
	if len(events) == 0 {
		return Block{}, ErrEmptyEventSet
	}
	for i, e := range events {
		if !utf8.ValidString(e) {
			return Block{}, fmt.Errorf("%w: event %d is not valid UTF-8", ErrMalformedBlock, i)
		}
	}
	if err := authority.Validate(); err != nil {
		return Block{}, err
	}
	if sequence == 0 && previous != "" {
		return Block{}, fmt.Errorf("%w: genesis block cannot reference a previous block", ErrMalformedBlock)
	}
	if sequence > 0 {
		if previous == "" {
			return Block{}, fmt.Errorf("%w: block %d has no previous digest", ErrMalformedBlock, sequence)
		}
		if _, err := previous.Algorithm(); err != nil {
			return Block{}, fmt.Errorf("%w: previous digest: %v", ErrMalformedBlock, err)
		}
	}

	return Block{
		Sequence:  sequence,
		Events:    append([]string(nil), events...),
		Authority: authority.Clone(),
		Previous:  previous,
	}, nil
}

// IsGenesis reports whether b is the first block of a chain.
func (b Block) IsGenesis() bool {
	return b.Sequence == 0
}

// CanonicalBytes returns the byte sequence that is signed and hashed:
// compact JSON with a fixed field order, decimal integers and no HTML
// escaping.
//
//	{"sequence":N,"events":[...],"authority":{"policy":P,"threshold":K,"identifiers":[...]},"previous":D}
func (b Block) CanonicalBytes() []byte {
	var buf bytes.Buffer
	buf.WriteString(`{"sequence":`)
	buf.WriteString(strconv.FormatUint(b.Sequence, 10))
	buf.WriteString(`,"events":`)
	writeStrings(&buf, b.Events)
	buf.WriteString(`,"authority":{"policy":`)
	writeString(&buf, string(b.Authority.Policy))
	buf.WriteString(`,"threshold":`)
	buf.WriteString(strconv.Itoa(b.Authority.Threshold))
	buf.WriteString(`,"identifiers":`)
	ids := make([]string, len(b.Authority.Identifiers))
	for i, id := range b.Authority.Identifiers {
		ids[i] = string(id)
	}
	writeStrings(&buf, ids)
	buf.WriteString(`},"previous":`)
	writeString(&buf, string(b.Previous))
	buf.WriteByte('}')
	return buf.Bytes()
}

// Digest hashes the canonical bytes of b.
func (b Block) Digest(alg Algorithm) (Digest, error) {
	return ComputeDigest(alg, b.CanonicalBytes())
}

// Clone returns a deep copy of b.
func (b Block) Clone() Block {
	b.Events = append([]string(nil), b.Events...)
	b.Authority = b.Authority.Clone()
	return b
}

func writeString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	// json.Encoder adds a trailing newline.
	buf.Truncate(buf.Len() - 1)
}

func writeStrings(buf *bytes.Buffer, ss []string) {
	buf.WriteByte('[')
	for i, s := range ss {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeString(buf, s)
	}
	buf.WriteByte(']')
}

type wireAuthority struct {
	Policy      *string  `json:"policy"`
	Threshold   *int     `json:"threshold"`
	Identifiers []string `json:"identifiers"`
}

type wireBlock struct {
	Sequence  *uint64        `json:"sequence"`
	Events    []string       `json:"events"`
	Authority *wireAuthority `json:"authority"`
	Previous  *string        `json:"previous"`
}

// Parse decodes an unsigned block and checks that data is exactly its
// canonical form, so that what gets verified is what was signed.
func Parse(data []byte) (Block, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var w wireBlock
	if err := dec.Decode(&w); err != nil {
		return Block{}, fmt.Errorf("%w: %v", ErrMalformedBlock, err)
	}
	if dec.InputOffset() != int64(len(data)) {
		return Block{}, fmt.Errorf("%w: trailing data after block", ErrMalformedBlock)
	}
	if w.Sequence == nil || w.Authority == nil || w.Authority.Policy == nil ||
		w.Authority.Threshold == nil || w.Previous == nil {
		return Block{}, fmt.Errorf("%w: missing field", ErrMalformedBlock)
	}

	ids := make([]identifier.Identifier, len(w.Authority.Identifiers))
	for i, id := range w.Authority.Identifiers {
		ids[i] = identifier.Identifier(id)
	}
	authority := Authority{
		Policy:      Policy(*w.Authority.Policy),
		Threshold:   *w.Authority.Threshold,
		Identifiers: ids,
	}
	b, err := BuildUnsigned(*w.Sequence, w.Events, authority, Digest(*w.Previous))
	if err != nil {
		if errors.Is(err, ErrMalformedBlock) {
			return Block{}, err
		}
		return Block{}, fmt.Errorf("%w: %w", ErrMalformedBlock, err)
	}
	if !bytes.Equal(b.CanonicalBytes(), data) {
		return Block{}, ErrNonCanonical
	}
	return b, nil
}
