package block

import (
	"errors"
	"fmt"

	"github.com/luca-patrignani/microledger/identifier"
)

// Policy tells how many members of an authority set must sign.
type Policy string

const (
	// PolicySingle names exactly one identifier, which must sign.
	PolicySingle Policy = "single"
	// PolicyAll requires every listed identifier to sign.
	PolicyAll Policy = "all"
	// PolicyThreshold requires at least Threshold distinct listed identifiers to sign.
	PolicyThreshold Policy = "threshold"
)

// Errors returned when an authority cannot be satisfied.
var (
	ErrEmptyAuthoritySet   = errors.New("empty authority set")
	ErrInvalidThreshold    = errors.New("invalid signing threshold")
	ErrUnknownPolicy       = errors.New("unknown signing policy")
	ErrDuplicateIdentifier = errors.New("duplicate identifier in authority set")
)

// Authority is the set of identifiers allowed to sign the next block,
// together with the policy deciding when enough of them did.
type Authority struct {
	Policy      Policy
	Threshold   int
	Identifiers []identifier.Identifier
}

// Single returns an authority controlled by one identifier.
func Single(id identifier.Identifier) Authority {
	return Authority{Policy: PolicySingle, Threshold: 1, Identifiers: []identifier.Identifier{id}}
}

// AllOf returns an authority that every one of ids must sign for.
func AllOf(ids ...identifier.Identifier) Authority {
	return Authority{Policy: PolicyAll, Threshold: len(ids), Identifiers: cloneIdentifiers(ids)}
}

// Threshold returns a k-of-n authority over ids.
func Threshold(k int, ids ...identifier.Identifier) Authority {
	return Authority{Policy: PolicyThreshold, Threshold: k, Identifiers: cloneIdentifiers(ids)}
}

// Validate checks that the authority can ever be satisfied and that every
// identifier resolves to a public key.
func (a Authority) Validate() error {
	if len(a.Identifiers) == 0 {
		return ErrEmptyAuthoritySet
	}
	seen := make(map[identifier.Identifier]bool, len(a.Identifiers))
	for _, id := range a.Identifiers {
		if seen[id] {
			return fmt.Errorf("%w: %s", ErrDuplicateIdentifier, id)
		}
		seen[id] = true
		if _, err := identifier.Parse(id); err != nil {
			return err
		}
	}
	switch a.Policy {
	case PolicySingle:
		if len(a.Identifiers) != 1 || a.Threshold != 1 {
			return fmt.Errorf("%w: single policy needs exactly one identifier and threshold 1", ErrInvalidThreshold)
		}
	case PolicyAll:
		if a.Threshold != len(a.Identifiers) {
			return fmt.Errorf("%w: all policy needs threshold %d, got %d", ErrInvalidThreshold, len(a.Identifiers), a.Threshold)
		}
	case PolicyThreshold:
		if a.Threshold < 1 || a.Threshold > len(a.Identifiers) {
			return fmt.Errorf("%w: %d of %d", ErrInvalidThreshold, a.Threshold, len(a.Identifiers))
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPolicy, string(a.Policy))
	}
	return nil
}

// Contains reports whether id belongs to the authority set.
func (a Authority) Contains(id identifier.Identifier) bool {
	for _, member := range a.Identifiers {
		if member == id {
			return true
		}
	}
	return false
}

// Required returns how many distinct members must sign.
func (a Authority) Required() int {
	switch a.Policy {
	case PolicySingle:
		return 1
	case PolicyAll:
		return len(a.Identifiers)
	default:
		return a.Threshold
	}
}

// Satisfied reports whether the given signers meet the policy. Signers that
// are not members are ignored and repeated signers count once.
func (a Authority) Satisfied(signers []identifier.Identifier) bool {
	counted := make(map[identifier.Identifier]bool, len(signers))
	for _, s := range signers {
		if a.Contains(s) {
			counted[s] = true
		}
	}
	return len(counted) >= a.Required()
}

// Equal reports whether both authorities declare the same policy over the
// same ordered identifiers.
func (a Authority) Equal(other Authority) bool {
	if a.Policy != other.Policy || a.Threshold != other.Threshold || len(a.Identifiers) != len(other.Identifiers) {
		return false
	}
	for i := range a.Identifiers {
		if a.Identifiers[i] != other.Identifiers[i] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of a.
func (a Authority) Clone() Authority {
	a.Identifiers = cloneIdentifiers(a.Identifiers)
	return a
}

func cloneIdentifiers(ids []identifier.Identifier) []identifier.Identifier {
	if ids == nil {
		return nil
	}
	out := make([]identifier.Identifier, len(ids))
	copy(out, ids)
	return out
}
